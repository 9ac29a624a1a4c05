package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/cocrafter/docstore/config"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Version: version,
	Use:     "docstore",
	Short:   "Document management server",
	Long: `Docstore is a document management server that keeps a folder
hierarchy in a relational database and document contents in blob storage
(local filesystem or S3), exposed over a JSON REST API.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		configFile, _ := cmd.Flags().GetString("config")

		var configFiles []string
		if configFile != "" {
			configFiles = []string{configFile}
		}

		cfg, err := config.Load(configFiles, cmd.Flags())
		if err != nil {
			return err
		}

		setupLogging(cfg.Log.Level)

		cmd.SetContext(config.WithContext(cmd.Context(), cfg))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config.yaml)")
	rootCmd.PersistentFlags().String("db-type", "", "database type: sqlite, postgres (default: sqlite, env: DOCSTORE_DATABASE_TYPE)")
	rootCmd.PersistentFlags().String("db-dsn", "", "database connection string (default: docstore.db, env: DOCSTORE_DATABASE_DSN)")
	rootCmd.PersistentFlags().String("backend", "", "blob backend: filesystem, s3 (default: filesystem, env: DOCSTORE_BLOB_BACKEND)")
	rootCmd.PersistentFlags().String("blob-path", "", "filesystem blob directory (default: ./data, env: DOCSTORE_BLOB_PATH)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
