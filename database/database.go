package database

import (
	"context"
	"fmt"

	"github.com/cocrafter/docstore"
	"github.com/cocrafter/docstore/database/postgres"
	"github.com/cocrafter/docstore/database/sqlite"
)

// Config holds the configuration for connecting to a metadata backend.
type Config struct {
	// Type specifies the database type: "sqlite" or "postgres"
	Type string `mapstructure:"type"`
	// DSN is the data source name (connection string)
	DSN string `mapstructure:"dsn"`
	// Tables holds the folder and document table names
	Tables docstore.Tables `mapstructure:"tables"`
}

// Database is the common surface of the metadata backends.
type Database interface {
	// Ping verifies the connection is alive.
	Ping(ctx context.Context) error
	// Migrate creates the folder and document tables and their indexes.
	Migrate(ctx context.Context) error
	// Validate checks the live schema against the expected structure.
	Validate(ctx context.Context) error
	// GetRepo returns the MetadataRepo for metadata operations.
	GetRepo() docstore.MetadataRepo
	// Close releases the underlying connections.
	Close() error
}

// Connect establishes a connection to the configured database backend.
// Migration and schema validation are separate steps so callers control
// when schema changes happen.
func Connect(ctx context.Context, cfg Config) (Database, error) {
	if err := cfg.Tables.Validate(); err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}

	switch cfg.Type {
	case "sqlite":
		return sqlite.Connect(ctx, cfg.DSN, cfg.Tables)
	case "postgres":
		return postgres.Connect(ctx, cfg.DSN, cfg.Tables)
	default:
		return nil, fmt.Errorf("unsupported database type: %s", cfg.Type)
	}
}
