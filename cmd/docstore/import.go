package main

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cocrafter/docstore"
	"github.com/cocrafter/docstore/config"
)

var importCmd = &cobra.Command{
	Use:   "import [flags] <file1> [file2] ...",
	Short: "Import local files as documents",
	Long: `Import files from local paths into docstore.

This command uploads files to blob storage and registers their metadata
in the database. All files land in a single target folder; directory
structure is not preserved.

Examples:
  # Import a single file into the root folder
  docstore import /path/to/report.pdf

  # Import into a specific folder
  docstore import --folder Folder-2 /path/to/report.pdf

  # Import a directory recursively
  docstore import -r /path/to/archive`,
	Args: cobra.MinimumNArgs(1),
	RunE: runImport,
}

var (
	importFolder    string
	importRecursive bool
	importQuiet     bool
)

func init() {
	importCmd.Flags().StringVarP(&importFolder, "folder", "f", docstore.RootFolderID, "target folder ID")
	importCmd.Flags().BoolVarP(&importRecursive, "recursive", "r", false, "recursively import directories")
	importCmd.Flags().BoolVarP(&importQuiet, "quiet", "q", false, "suppress per-file output")
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
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

	// Collect files from all arguments
	var files []string
	for _, arg := range args {
		collected, collectErr := collectFiles(arg, importRecursive)
		if collectErr != nil {
			return fmt.Errorf("collect files from %s: %w", arg, collectErr)
		}
		files = append(files, collected...)
	}

	if len(files) == 0 {
		slog.Info("no files to import")
		return nil
	}

	imported := 0
	for _, path := range files {
		f, openErr := os.Open(path)
		if openErr != nil {
			return fmt.Errorf("open %s: %w", path, openErr)
		}

		doc, uploadErr := service.UploadDocument(ctx, importFolder, filepath.Base(path), f)
		_ = f.Close()

		if uploadErr != nil {
			return fmt.Errorf("import %s: %w", path, uploadErr)
		}

		imported++
		if !importQuiet {
			slog.Info("imported", "id", doc.ID, "name", doc.Name, "folder", doc.FolderID)
		}
	}

	slog.Info("import complete", "imported", imported, "folder", importFolder)
	return nil
}

// collectFiles gathers files from a path, optionally recursively.
func collectFiles(path string, recursive bool) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	if !info.IsDir() {
		return []string{path}, nil
	}

	if !recursive {
		return nil, fmt.Errorf("%s is a directory (use -r to import recursively)", path)
	}

	var files []string
	walkErr := filepath.WalkDir(path, func(walkPath string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}

		if d.IsDir() {
			return nil
		}

		files = append(files, walkPath)
		return nil
	})

	if walkErr != nil {
		return nil, walkErr
	}

	return files, nil
}
