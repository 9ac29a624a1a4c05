// Package filesystem provides a local-filesystem blob store for docstore.
// Writes are atomic via temp files, and the os.Root sandbox prevents path
// traversal out of the storage directory.
package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/cocrafter/docstore"
)

// Store provides file system blob operations.
type Store struct {
	root *os.Root
}

// NewStore creates a new Store with the given root directory.
// The root provides sandboxed file operations preventing path traversal.
func NewStore(root *os.Root) *Store {
	return &Store{root: root}
}

type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (r *ctxReader) Read(p []byte) (n int, err error) {
	if err := r.ctx.Err(); err != nil {
		return 0, err
	}
	return r.r.Read(p)
}

// Put atomically writes content to the given key using a temp file and
// rename, creating intermediate directories as needed. Returns the number of
// bytes written. The operation respects context cancellation.
func (s *Store) Put(ctx context.Context, key string, content io.Reader) (int64, error) {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return 0, ctxErr
	}

	tmpFile := tmpFileName()
	t, createErr := s.root.Create(tmpFile)
	if createErr != nil {
		return 0, fmt.Errorf("could not open temp file: %w", createErr)
	}

	success := false
	defer func() {
		if closeErr := t.Close(); closeErr != nil {
			slog.Warn("failed to close tmp file", "err", closeErr)
		}
		if !success {
			if rmErr := s.root.Remove(t.Name()); rmErr != nil {
				slog.Warn("failed to remove tmp file", "err", rmErr)
			}
		}
	}()

	written, err := io.Copy(t, &ctxReader{ctx: ctx, r: content})
	if err != nil {
		return 0, fmt.Errorf("could not copy blob contents: %w", err)
	}

	if err := t.Sync(); err != nil {
		return 0, fmt.Errorf("could not sync written blob: %w", err)
	}

	destDir := filepath.Dir(key)
	if destDir != "." {
		if err := s.root.MkdirAll(destDir, 0o755); err != nil {
			return 0, fmt.Errorf("could not create intermediate directories: %w", err)
		}
	}

	if renameErr := s.root.Rename(tmpFile, key); renameErr != nil {
		return 0, fmt.Errorf("failed to rename blob: %w", renameErr)
	}

	success = true
	return written, nil
}

// Get opens a blob for reading. Returns docstore.ErrNotFound if the key does
// not exist.
func (s *Store) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := s.root.Open(key)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, docstore.ErrNotFound
		}
		return nil, fmt.Errorf("failed to open blob: %w", err)
	}

	return f, nil
}

// Copy duplicates the blob at src under dst. Overwrites dst if it exists.
// Returns docstore.ErrNotFound if src does not exist.
func (s *Store) Copy(ctx context.Context, src, dst string) error {
	f, err := s.Get(ctx, src)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	if _, err := s.Put(ctx, dst, f); err != nil {
		return fmt.Errorf("copy %s to %s: %w", src, dst, err)
	}

	return nil
}

// Delete removes a blob. Returns docstore.ErrNotFound if the key does not
// exist. Empty parent directories are pruned best-effort.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := s.root.Remove(key)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return docstore.ErrNotFound
		}
		return fmt.Errorf("could not delete blob: %w", err)
	}

	// Prune now-empty directories so deleted documents leave no husks.
	for dir := filepath.Dir(key); dir != "." && dir != "/"; dir = filepath.Dir(dir) {
		if rmErr := s.root.Remove(dir); rmErr != nil {
			break
		}
	}

	return nil
}

// List recursively walks the root directory and returns every key with the
// given prefix. Intended for reconciliation sweeps.
func (s *Store) List(ctx context.Context, prefix string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	keys := []string{}

	err := fs.WalkDir(s.root.FS(), ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		if d.IsDir() {
			return nil
		}

		key := filepath.ToSlash(path)
		if strings.HasPrefix(filepath.Base(key), ".t") {
			// In-flight temp files are not blobs.
			return nil
		}

		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list blobs: %w", err)
	}

	return keys, nil
}

func tmpFileName() string {
	return fmt.Sprintf(".t%s", uuid.New().String())
}
