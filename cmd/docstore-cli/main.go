package main

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/cocrafter/docstore/clientcli"
)

var (
	version = "dev"

	cfgFile     string
	profileName string
	server      string
	jsonOutput  bool
	quiet       bool
)

var rootCmd = &cobra.Command{
	Use:     "docstore-cli",
	Version: version,
	Short:   "Client for docstore servers",
	Long: `Docstore CLI - Client for docstore document management servers

Manage folders and documents from the command line:
  - tree:     Print the full folder hierarchy
  - mkdir:    Create a folder
  - upload:   Upload a local file as a document
  - download: Download a document
  - rename:   Rename a folder or document
  - rm:       Delete a folder or document

Use 'configure' to save connection profiles for multiple servers.`,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default: ~/.docstore/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&profileName, "profile", "p", "", "profile name (env: DOCSTORE_PROFILE)")
	rootCmd.PersistentFlags().StringVarP(&server, "server", "s", "", "server URL (default: http://localhost:8021, env: DOCSTORE_SERVER)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress non-essential output")

	rootCmd.AddCommand(configureCmd)
	rootCmd.AddCommand(treeCmd)
	rootCmd.AddCommand(mkdirCmd)
	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(downloadCmd)
	rootCmd.AddCommand(renameCmd)
	rootCmd.AddCommand(rmCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// getConfigPath returns the config file path from the flag or the default.
func getConfigPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	return clientcli.DefaultConfigPath()
}

// resolveEndpoint picks the server endpoint.
// Precedence: --server flag > DOCSTORE_SERVER env > profile > default.
func resolveEndpoint() (string, error) {
	if server != "" {
		return server, nil
	}

	if env := os.Getenv("DOCSTORE_SERVER"); env != "" {
		return env, nil
	}

	name := profileName
	if name == "" {
		name = os.Getenv("DOCSTORE_PROFILE")
	}

	cfg, err := clientcli.LoadConfigFile(getConfigPath())
	if err != nil {
		// Missing config file just means no profiles; fall through to the
		// default endpoint unless a profile was explicitly requested.
		if name == "" && errors.Is(err, os.ErrNotExist) {
			return clientcli.DefaultEndpoint, nil
		}
		return "", err
	}

	profile, err := cfg.GetProfile(name)
	if err != nil {
		if name == "" && errors.Is(err, clientcli.ErrNoProfiles) {
			return clientcli.DefaultEndpoint, nil
		}
		return "", err
	}

	return profile.Endpoint, nil
}

// getFormatter returns the appropriate formatter based on flags.
func getFormatter() clientcli.Formatter {
	return clientcli.NewFormatter(jsonOutput, quiet)
}

// getClient creates and returns a configured client.
func getClient() (*clientcli.Client, error) {
	endpoint, err := resolveEndpoint()
	if err != nil {
		return nil, err
	}

	return clientcli.New(&clientcli.Config{Endpoint: endpoint})
}
