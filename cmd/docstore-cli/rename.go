package main

import (
	"context"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var renameCmd = &cobra.Command{
	Use:   "rename <id> <new-name>",
	Short: "Rename a folder or document",
	Long: `Rename a folder or document by ID.

The target type is inferred from the ID: document IDs start with
"Document-", everything else is treated as a folder.

Examples:
  docstore-cli rename Folder-2 "Quarterly Reports"
  docstore-cli rename Document-3 q1-report.pdf`,
	Args: cobra.ExactArgs(2),
	RunE: runRename,
}

func runRename(_ *cobra.Command, args []string) error {
	id, name := args[0], args[1]

	client, err := getClient()
	if err != nil {
		return err
	}

	ctx := context.Background()
	formatter := getFormatter()

	if strings.HasPrefix(id, "Document-") {
		doc, renameErr := client.RenameDocument(ctx, id, name)
		if renameErr != nil {
			return renameErr
		}
		return formatter.FormatDocument(os.Stdout, doc)
	}

	if err := client.RenameFolder(ctx, id, name); err != nil {
		return err
	}
	return formatter.FormatMessage(os.Stdout, "Renamed "+id)
}
