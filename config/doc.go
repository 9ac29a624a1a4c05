// Package config provides configuration loading and validation for docstore.
//
// The package handles YAML configuration files, environment variables, and CLI flags
// with automatic merging and validation using go-playground/validator.
//
// # Configuration Precedence
//
// Values are loaded in this order (later sources override earlier ones):
//
//  1. Default values
//  2. Configuration file(s) - multiple files merged left-to-right
//  3. Environment variables (DOCSTORE_ prefix)
//  4. CLI flags
//
// # Usage
//
//	cfg, err := config.Load([]string{"config.yaml"}, cmd.Flags())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Store in context for subcommands
//	ctx = config.WithContext(ctx, cfg)
//
//	// Retrieve later
//	cfg, err = config.FromContext(ctx)
//
// # Environment Variables
//
// All config keys map to environment variables with DOCSTORE_ prefix:
//   - server.port → DOCSTORE_SERVER_PORT
//   - database.type → DOCSTORE_DATABASE_TYPE
//   - blob.backend → DOCSTORE_BLOB_BACKEND
//
// # Configuration Structure
//
// The Config struct contains:
//   - Server: port and max_upload_size
//   - Service: cleanup_timeout for background blob cleanup
//   - Database: type, DSN, and table names
//   - Blob: backend selection (filesystem/s3) plus backend settings
//   - CORS: cross-origin resource sharing settings
//   - Log: logging level
//
// # Validation
//
// Configuration is validated using struct tags:
//   - Port must be 1-65535
//   - Blob backend must be filesystem or s3
//   - Log level must be debug, info, warn, or error
package config
