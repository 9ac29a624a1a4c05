package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/cocrafter/docstore"
	"github.com/cocrafter/docstore/blob/filesystem"
	"github.com/cocrafter/docstore/blob/s3"
	"github.com/cocrafter/docstore/config"
	"github.com/cocrafter/docstore/database"
)

// openDatabase connects to the configured database, verifies connectivity
// and schema, and returns the metadata repo plus a close function.
func openDatabase(ctx context.Context, cfg *config.Config) (docstore.MetadataRepo, func(), error) {
	db, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("connect database: %w", err)
	}

	closeDB := func() { _ = db.Close() }

	if err = db.Ping(ctx); err != nil {
		closeDB()
		return nil, nil, fmt.Errorf("ping database: %w", err)
	}

	if err = db.Validate(ctx); err != nil {
		closeDB()
		return nil, nil, fmt.Errorf("validate database schema: %w", err)
	}

	return db.GetRepo(), closeDB, nil
}

// openBlobStore builds the configured blob backend and returns it plus a
// close function. For the s3 backend the bucket is created if missing.
func openBlobStore(ctx context.Context, cfg *config.Config) (docstore.BlobStore, func(), error) {
	switch cfg.Blob.Backend {
	case "s3":
		store, err := s3.NewFromConfig(ctx, cfg.Blob.S3)
		if err != nil {
			return nil, nil, fmt.Errorf("create s3 store: %w", err)
		}

		if err := store.EnsureBucket(ctx); err != nil {
			return nil, nil, fmt.Errorf("ensure bucket: %w", err)
		}

		return store, func() {}, nil

	case "filesystem":
		if err := os.MkdirAll(cfg.Blob.Path, 0o750); err != nil {
			return nil, nil, fmt.Errorf("create blob directory: %w", err)
		}

		root, err := os.OpenRoot(cfg.Blob.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("open blob root: %w", err)
		}

		return filesystem.NewStore(root), func() { _ = root.Close() }, nil

	default:
		return nil, nil, fmt.Errorf("unknown blob backend: %s", cfg.Blob.Backend)
	}
}

// buildService wires the database and blob store into a docstore service.
// The returned close function releases both backends.
func buildService(ctx context.Context, cfg *config.Config) (*docstore.Service, func(), error) {
	repo, closeDB, err := openDatabase(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	blobs, closeBlobs, err := openBlobStore(ctx, cfg)
	if err != nil {
		closeDB()
		return nil, nil, err
	}

	service, err := docstore.NewService(repo, blobs, docstore.ServiceConfig{
		CleanupTimeout: time.Duration(cfg.Service.CleanupTimeout) * time.Second,
	})
	if err != nil {
		closeBlobs()
		closeDB()
		return nil, nil, fmt.Errorf("create service: %w", err)
	}

	closeAll := func() {
		closeBlobs()
		closeDB()
	}

	return service, closeAll, nil
}
