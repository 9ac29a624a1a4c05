package filesystem_test

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cocrafter/docstore"
	"github.com/cocrafter/docstore/blob/filesystem"
)

func newStore(t *testing.T) (*filesystem.Store, string) {
	t.Helper()

	dir := t.TempDir()
	root, err := os.OpenRoot(dir)
	require.NoError(t, err)
	t.Cleanup(func() { _ = root.Close() })

	return filesystem.NewStore(root), dir
}

func readAll(t *testing.T, r io.ReadCloser) string {
	t.Helper()
	defer func() { _ = r.Close() }()
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	return string(data)
}

func TestStorePutGet(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()

	t.Run("round trip with nested key", func(t *testing.T) {
		n, err := store.Put(ctx, "documents/Document-1/a.txt", bytes.NewReader([]byte("hello")))
		require.NoError(t, err)
		assert.Equal(t, int64(5), n)

		r, err := store.Get(ctx, "documents/Document-1/a.txt")
		require.NoError(t, err)
		assert.Equal(t, "hello", readAll(t, r))
	})

	t.Run("overwrite", func(t *testing.T) {
		_, err := store.Put(ctx, "documents/Document-1/a.txt", bytes.NewReader([]byte("updated")))
		require.NoError(t, err)

		r, err := store.Get(ctx, "documents/Document-1/a.txt")
		require.NoError(t, err)
		assert.Equal(t, "updated", readAll(t, r))
	})

	t.Run("missing key", func(t *testing.T) {
		_, err := store.Get(ctx, "documents/Document-99/gone.txt")
		assert.ErrorIs(t, err, docstore.ErrNotFound)
	})

	t.Run("empty content", func(t *testing.T) {
		n, err := store.Put(ctx, "documents/Document-2/empty", bytes.NewReader(nil))
		require.NoError(t, err)
		assert.Equal(t, int64(0), n)

		r, err := store.Get(ctx, "documents/Document-2/empty")
		require.NoError(t, err)
		assert.Equal(t, "", readAll(t, r))
	})
}

func TestStorePutLeavesNoTempFiles(t *testing.T) {
	store, dir := newStore(t)
	ctx := context.Background()

	_, err := store.Put(ctx, "documents/Document-1/a.txt", bytes.NewReader([]byte("hello")))
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotContains(t, e.Name(), ".t", "leftover temp file: %s", e.Name())
	}
}

func TestStoreCopy(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()

	t.Run("duplicates content", func(t *testing.T) {
		_, err := store.Put(ctx, "documents/Document-1/a.txt", bytes.NewReader([]byte("hello")))
		require.NoError(t, err)

		err = store.Copy(ctx, "documents/Document-1/a.txt", "documents/Document-1/b.txt")
		require.NoError(t, err)

		r, err := store.Get(ctx, "documents/Document-1/b.txt")
		require.NoError(t, err)
		assert.Equal(t, "hello", readAll(t, r))

		// Source is untouched.
		r, err = store.Get(ctx, "documents/Document-1/a.txt")
		require.NoError(t, err)
		assert.Equal(t, "hello", readAll(t, r))
	})

	t.Run("missing source", func(t *testing.T) {
		err := store.Copy(ctx, "documents/Document-99/gone.txt", "documents/Document-99/copy.txt")
		assert.ErrorIs(t, err, docstore.ErrNotFound)
	})
}

func TestStoreDelete(t *testing.T) {
	store, dir := newStore(t)
	ctx := context.Background()

	t.Run("removes blob and empty parents", func(t *testing.T) {
		_, err := store.Put(ctx, "documents/Document-1/a.txt", bytes.NewReader([]byte("hello")))
		require.NoError(t, err)

		err = store.Delete(ctx, "documents/Document-1/a.txt")
		require.NoError(t, err)

		_, err = store.Get(ctx, "documents/Document-1/a.txt")
		assert.ErrorIs(t, err, docstore.ErrNotFound)

		_, err = os.Stat(filepath.Join(dir, "documents", "Document-1"))
		assert.True(t, os.IsNotExist(err), "empty document directory should be pruned")
	})

	t.Run("missing key", func(t *testing.T) {
		err := store.Delete(ctx, "documents/Document-99/gone.txt")
		assert.ErrorIs(t, err, docstore.ErrNotFound)
	})

	t.Run("keeps non-empty parents", func(t *testing.T) {
		_, err := store.Put(ctx, "documents/Document-2/a.txt", bytes.NewReader([]byte("a")))
		require.NoError(t, err)
		_, err = store.Put(ctx, "documents/Document-2/b.txt", bytes.NewReader([]byte("b")))
		require.NoError(t, err)

		require.NoError(t, store.Delete(ctx, "documents/Document-2/a.txt"))

		r, err := store.Get(ctx, "documents/Document-2/b.txt")
		require.NoError(t, err)
		assert.Equal(t, "b", readAll(t, r))
	})
}

func TestStoreList(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()

	keys := []string{
		"documents/Document-1/a.txt",
		"documents/Document-2/b.txt",
		"other/c.txt",
	}
	for _, key := range keys {
		_, err := store.Put(ctx, key, bytes.NewReader([]byte("x")))
		require.NoError(t, err)
	}

	t.Run("filters by prefix", func(t *testing.T) {
		got, err := store.List(ctx, "documents/")
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{
			"documents/Document-1/a.txt",
			"documents/Document-2/b.txt",
		}, got)
	})

	t.Run("empty prefix returns everything", func(t *testing.T) {
		got, err := store.List(ctx, "")
		require.NoError(t, err)
		assert.Len(t, got, 3)
	})

	t.Run("no matches", func(t *testing.T) {
		got, err := store.List(ctx, "missing/")
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

func TestStoreContextCancellation(t *testing.T) {
	store, _ := newStore(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.Put(ctx, "documents/Document-1/a.txt", bytes.NewReader([]byte("x")))
	assert.ErrorIs(t, err, context.Canceled)

	_, err = store.Get(ctx, "documents/Document-1/a.txt")
	assert.ErrorIs(t, err, context.Canceled)

	_, err = store.List(ctx, "")
	assert.ErrorIs(t, err, context.Canceled)
}
