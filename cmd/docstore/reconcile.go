package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/cocrafter/docstore/config"
)

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Remove orphaned blobs from storage",
	Long: `Delete blobs that have no matching document row.

Blob cleanup after folder deletes, document deletes and renames is
best-effort; a crash or a storage outage at the wrong moment can leave
blobs behind. This command lists every stored document blob, compares
it against the metadata database and removes the orphans.

Run this periodically to reclaim storage space.`,
	RunE: runReconcile,
}

func init() {
	rootCmd.AddCommand(reconcileCmd)
}

func runReconcile(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := config.FromContext(ctx)
	if err != nil {
		return err
	}

	service, closeAll, err := buildService(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeAll()

	slog.Info("starting reconciliation")

	removed, err := service.Reconcile(ctx)
	if err != nil {
		return fmt.Errorf("reconcile: %w", err)
	}

	slog.Info("reconciliation complete", "blobs_removed", removed)
	return nil
}
