package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
)

var rmForce bool

var rmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete a folder or document",
	Long: `Delete a folder or document by ID.

Deleting a folder removes every subfolder and document beneath it, so
folder deletes ask for confirmation unless --force is given. The target
type is inferred from the ID: document IDs start with "Document-",
everything else is treated as a folder.

Examples:
  docstore-cli rm Document-3
  docstore-cli rm Folder-2
  docstore-cli rm --force Folder-2`,
	Args: cobra.ExactArgs(1),
	RunE: runRm,
}

func init() {
	rmCmd.Flags().BoolVarP(&rmForce, "force", "f", false, "skip the confirmation prompt")
}

func runRm(_ *cobra.Command, args []string) error {
	id := args[0]

	client, err := getClient()
	if err != nil {
		return err
	}

	ctx := context.Background()
	formatter := getFormatter()

	if strings.HasPrefix(id, "Document-") {
		if deleteErr := client.DeleteDocument(ctx, id); deleteErr != nil {
			return deleteErr
		}
		return formatter.FormatMessage(os.Stdout, "Deleted "+id)
	}

	if !rmForce {
		prompt := promptui.Prompt{
			Label:     fmt.Sprintf("Delete folder '%s' and everything inside it", id),
			IsConfirm: true,
		}
		if _, promptErr := prompt.Run(); promptErr != nil {
			fmt.Println("Cancelled.")
			return nil //nolint:nilerr // User cancelled, not an error
		}
	}

	if err := client.DeleteFolder(ctx, id); err != nil {
		return err
	}
	return formatter.FormatMessage(os.Stdout, "Deleted "+id)
}
