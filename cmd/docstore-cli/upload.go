package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/cocrafter/docstore/clientcli"
)

var (
	uploadFolder string
	uploadName   string
)

var uploadCmd = &cobra.Command{
	Use:   "upload <local-path>",
	Short: "Upload a file as a document",
	Long: `Upload a local file as a document.

Examples:
  # Upload into the root folder
  docstore-cli upload ./report.pdf

  # Upload into a specific folder
  docstore-cli upload --folder Folder-2 ./report.pdf

  # Upload under a different name
  docstore-cli upload --name q1-report.pdf ./report.pdf`,
	Args: cobra.ExactArgs(1),
	RunE: runUpload,
}

func init() {
	uploadCmd.Flags().StringVarP(&uploadFolder, "folder", "f", "", "target folder ID (default: root)")
	uploadCmd.Flags().StringVarP(&uploadName, "name", "n", "", "document name (default: local file name)")
}

func runUpload(_ *cobra.Command, args []string) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	doc, err := client.Upload(context.Background(), clientcli.UploadOptions{
		LocalPath: args[0],
		FolderID:  uploadFolder,
		Name:      uploadName,
	})
	if err != nil {
		return err
	}

	formatter := getFormatter()
	return formatter.FormatDocument(os.Stdout, doc)
}
