package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"
)

var mkdirParent string

var mkdirCmd = &cobra.Command{
	Use:   "mkdir",
	Short: "Create a folder",
	Long: `Create a folder under a parent folder.

The server assigns both the folder ID and its initial name; use
'rename' to give it a meaningful name afterwards.

Examples:
  # Create a folder under the root
  docstore-cli mkdir

  # Create a nested folder
  docstore-cli mkdir --parent Folder-2`,
	Args: cobra.NoArgs,
	RunE: runMkdir,
}

func init() {
	mkdirCmd.Flags().StringVarP(&mkdirParent, "parent", "P", "", "parent folder ID (default: root)")
}

func runMkdir(_ *cobra.Command, _ []string) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	folder, err := client.CreateFolder(context.Background(), mkdirParent)
	if err != nil {
		return err
	}

	formatter := getFormatter()
	return formatter.FormatFolder(os.Stdout, folder)
}
