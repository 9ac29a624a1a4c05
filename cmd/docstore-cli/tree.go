package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"
)

var treeCmd = &cobra.Command{
	Use:   "tree",
	Short: "Print the folder hierarchy",
	Long: `Print the full folder hierarchy including documents.

Folders show their IDs in parentheses, documents in brackets:

  root (root)
  ├── Quarterly Reports (Folder-1)
  │   └── q1.pdf [Document-1]
  └── Invoices (Folder-2)

Examples:
  docstore-cli tree
  docstore-cli tree --json | jq .`,
	Args: cobra.NoArgs,
	RunE: runTree,
}

func runTree(_ *cobra.Command, _ []string) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	root, err := client.Hierarchy(context.Background())
	if err != nil {
		return err
	}

	formatter := getFormatter()
	return formatter.FormatTree(os.Stdout, root)
}
