package main

import (
	"context"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/cocrafter/docstore/clientcli"
)

var (
	downloadOutput string
	downloadStdout bool
)

var downloadCmd = &cobra.Command{
	Use:   "download <document-id> [local-path]",
	Short: "Download a document",
	Long: `Download a document by ID.

Without a local path the file is written under the document's stored
name in the current directory.

Examples:
  docstore-cli download Document-3
  docstore-cli download Document-3 ./report.pdf
  docstore-cli download --stdout Document-3 | less
  docstore-cli download -o ./report.pdf Document-3`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runDownload,
}

func init() {
	downloadCmd.Flags().StringVarP(&downloadOutput, "output", "o", "", "output file path")
	downloadCmd.Flags().BoolVar(&downloadStdout, "stdout", false, "write to stdout")
}

func runDownload(_ *cobra.Command, args []string) error {
	documentID := args[0]

	localPath := ""
	if len(args) > 1 {
		localPath = args[1]
	}
	if downloadOutput != "" {
		localPath = downloadOutput
	}
	if downloadStdout {
		localPath = "-"
	}

	client, err := getClient()
	if err != nil {
		return err
	}

	opts := clientcli.DownloadOptions{
		DocumentID: documentID,
		LocalPath:  localPath,
	}

	result, reader, err := client.Download(context.Background(), opts)
	if err != nil {
		return err
	}

	// If stdout, write content to stdout
	if reader != nil {
		defer func() { _ = reader.Close() }()
		if _, err := io.Copy(os.Stdout, reader); err != nil {
			return err
		}
		// Don't print metadata when writing to stdout (unless JSON mode)
		if jsonOutput {
			formatter := getFormatter()
			return formatter.FormatDownload(os.Stderr, result)
		}
		return nil
	}

	formatter := getFormatter()
	return formatter.FormatDownload(os.Stdout, result)
}
