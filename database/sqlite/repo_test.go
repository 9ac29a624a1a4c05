package sqlite_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cocrafter/docstore"
	"github.com/cocrafter/docstore/database/sqlite"
)

// setupRepo opens a fresh in-memory database, runs migrations and returns
// the repo. Each test gets its own database.
func setupRepo(t *testing.T) docstore.MetadataRepo {
	t.Helper()
	ctx := context.Background()

	tables := docstore.Tables{Folders: "docstore_folders", Documents: "docstore_documents"}

	db, err := sqlite.Connect(ctx, ":memory:", tables)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, db.Migrate(ctx))
	require.NoError(t, db.Validate(ctx))

	return db.GetRepo()
}

func TestEnsureRoot(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.EnsureRoot(ctx))

	root, err := repo.GetFolder(ctx, docstore.RootFolderID)
	require.NoError(t, err)
	assert.Equal(t, docstore.RootFolderName, root.Name)
	assert.Nil(t, root.ParentID)

	// Second call is a no-op
	require.NoError(t, repo.EnsureRoot(ctx))

	folders, err := repo.ListFolders(ctx)
	require.NoError(t, err)
	assert.Len(t, folders, 1)
}

func TestCreateFolder(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	require.NoError(t, repo.EnsureRoot(ctx))

	t.Run("allocates sequential ids under root", func(t *testing.T) {
		f1, err := repo.CreateFolder(ctx, docstore.RootFolderID)
		require.NoError(t, err)
		assert.Equal(t, "Folder-1", f1.ID)
		assert.Equal(t, "Folder-1", f1.Name)
		require.NotNil(t, f1.ParentID)
		assert.Equal(t, docstore.RootFolderID, *f1.ParentID)

		f2, err := repo.CreateFolder(ctx, docstore.RootFolderID)
		require.NoError(t, err)
		assert.Equal(t, "Folder-2", f2.ID)
	})

	t.Run("nested ids extend the parent id", func(t *testing.T) {
		child, err := repo.CreateFolder(ctx, "Folder-1")
		require.NoError(t, err)
		assert.Equal(t, "Folder-1-1", child.ID)

		grandchild, err := repo.CreateFolder(ctx, "Folder-1-1")
		require.NoError(t, err)
		assert.Equal(t, "Folder-1-1-1", grandchild.ID)
	})

	t.Run("unknown parent", func(t *testing.T) {
		_, err := repo.CreateFolder(ctx, "Folder-99")
		assert.ErrorIs(t, err, docstore.ErrNotFound)
	})
}

func TestRenameFolder(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	require.NoError(t, repo.EnsureRoot(ctx))

	folder, err := repo.CreateFolder(ctx, docstore.RootFolderID)
	require.NoError(t, err)

	t.Run("updates name only", func(t *testing.T) {
		require.NoError(t, repo.RenameFolder(ctx, folder.ID, "reports"))

		got, err := repo.GetFolder(ctx, folder.ID)
		require.NoError(t, err)
		assert.Equal(t, "reports", got.Name)
		assert.Equal(t, folder.ID, got.ID)
	})

	t.Run("unknown folder", func(t *testing.T) {
		err := repo.RenameFolder(ctx, "Folder-99", "x")
		assert.ErrorIs(t, err, docstore.ErrNotFound)
	})
}

func TestDeleteFolderTree(t *testing.T) {
	ctx := context.Background()

	// root
	//   Folder-1
	//     Folder-1-1 (doc B)
	//   Folder-2 (doc C)
	// root holds doc A
	seed := func(t *testing.T) docstore.MetadataRepo {
		repo := setupRepo(t)
		require.NoError(t, repo.EnsureRoot(ctx))

		for _, parent := range []string{docstore.RootFolderID, docstore.RootFolderID, "Folder-1"} {
			_, err := repo.CreateFolder(ctx, parent)
			require.NoError(t, err)
		}

		docs := []docstore.Document{
			{ID: "Document-1", Name: "a.txt", FolderID: docstore.RootFolderID, Path: "documents/Document-1/a.txt"},
			{ID: "Document-2", Name: "b.txt", FolderID: "Folder-1-1", Path: "documents/Document-2/b.txt"},
			{ID: "Document-3", Name: "c.txt", FolderID: "Folder-2", Path: "documents/Document-3/c.txt"},
		}
		for _, doc := range docs {
			require.NoError(t, repo.InsertDocument(ctx, doc))
		}
		return repo
	}

	t.Run("removes subtree and returns blob keys", func(t *testing.T) {
		repo := seed(t)

		blobKeys, folders, err := repo.DeleteFolderTree(ctx, "Folder-1")
		require.NoError(t, err)
		assert.Equal(t, 2, folders)
		assert.ElementsMatch(t, []string{"documents/Document-2/b.txt"}, blobKeys)

		_, err = repo.GetFolder(ctx, "Folder-1")
		assert.ErrorIs(t, err, docstore.ErrNotFound)
		_, err = repo.GetFolder(ctx, "Folder-1-1")
		assert.ErrorIs(t, err, docstore.ErrNotFound)
		_, err = repo.GetDocument(ctx, "Document-2")
		assert.ErrorIs(t, err, docstore.ErrNotFound)

		// Siblings and root content survive
		_, err = repo.GetFolder(ctx, "Folder-2")
		assert.NoError(t, err)
		_, err = repo.GetDocument(ctx, "Document-1")
		assert.NoError(t, err)
		_, err = repo.GetDocument(ctx, "Document-3")
		assert.NoError(t, err)
	})

	t.Run("collects documents from every level", func(t *testing.T) {
		repo := seed(t)

		blobKeys, folders, err := repo.DeleteFolderTree(ctx, docstore.RootFolderID)
		require.NoError(t, err)
		assert.Equal(t, 4, folders)
		assert.ElementsMatch(t, []string{
			"documents/Document-1/a.txt",
			"documents/Document-2/b.txt",
			"documents/Document-3/c.txt",
		}, blobKeys)
	})

	t.Run("unknown folder", func(t *testing.T) {
		repo := seed(t)

		_, _, err := repo.DeleteFolderTree(ctx, "Folder-99")
		assert.ErrorIs(t, err, docstore.ErrNotFound)
	})
}

func TestListFolders(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	require.NoError(t, repo.EnsureRoot(ctx))

	_, err := repo.CreateFolder(ctx, docstore.RootFolderID)
	require.NoError(t, err)
	_, err = repo.CreateFolder(ctx, "Folder-1")
	require.NoError(t, err)

	folders, err := repo.ListFolders(ctx)
	require.NoError(t, err)

	ids := make([]string, len(folders))
	for i, f := range folders {
		ids[i] = f.ID
	}
	assert.ElementsMatch(t, []string{"root", "Folder-1", "Folder-1-1"}, ids)
}

func TestDocuments(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	require.NoError(t, repo.EnsureRoot(ctx))

	doc := docstore.Document{
		ID:       "Document-1",
		Name:     "a.txt",
		FolderID: docstore.RootFolderID,
		Path:     "documents/Document-1/a.txt",
	}

	t.Run("insert and get", func(t *testing.T) {
		require.NoError(t, repo.InsertDocument(ctx, doc))

		got, err := repo.GetDocument(ctx, doc.ID)
		require.NoError(t, err)
		assert.Equal(t, doc, got)
	})

	t.Run("duplicate id", func(t *testing.T) {
		err := repo.InsertDocument(ctx, doc)
		assert.ErrorIs(t, err, docstore.ErrConflict)
	})

	t.Run("unknown folder", func(t *testing.T) {
		err := repo.InsertDocument(ctx, docstore.Document{
			ID:       "Document-2",
			Name:     "b.txt",
			FolderID: "Folder-99",
			Path:     "documents/Document-2/b.txt",
		})
		assert.ErrorIs(t, err, docstore.ErrNotFound)
	})

	t.Run("count", func(t *testing.T) {
		count, err := repo.CountDocuments(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})

	t.Run("update name and path", func(t *testing.T) {
		require.NoError(t, repo.UpdateDocument(ctx, doc.ID, "renamed.txt", "documents/Document-1/renamed.txt"))

		got, err := repo.GetDocument(ctx, doc.ID)
		require.NoError(t, err)
		assert.Equal(t, "renamed.txt", got.Name)
		assert.Equal(t, "documents/Document-1/renamed.txt", got.Path)
	})

	t.Run("update unknown document", func(t *testing.T) {
		err := repo.UpdateDocument(ctx, "Document-99", "x", "y")
		assert.ErrorIs(t, err, docstore.ErrNotFound)
	})

	t.Run("list", func(t *testing.T) {
		docs, err := repo.ListDocuments(ctx)
		require.NoError(t, err)
		require.Len(t, docs, 1)
		assert.Equal(t, "Document-1", docs[0].ID)
	})

	t.Run("delete returns blob key", func(t *testing.T) {
		path, err := repo.DeleteDocument(ctx, doc.ID)
		require.NoError(t, err)
		assert.Equal(t, "documents/Document-1/renamed.txt", path)

		_, err = repo.GetDocument(ctx, doc.ID)
		assert.ErrorIs(t, err, docstore.ErrNotFound)
	})

	t.Run("delete unknown document", func(t *testing.T) {
		_, err := repo.DeleteDocument(ctx, "Document-99")
		assert.ErrorIs(t, err, docstore.ErrNotFound)
	})
}

func TestValidateDetectsMissingTables(t *testing.T) {
	ctx := context.Background()
	tables := docstore.Tables{Folders: "docstore_folders", Documents: "docstore_documents"}

	db, err := sqlite.Connect(ctx, ":memory:", tables)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	// No migration has run yet
	assert.Error(t, db.Validate(ctx))
}
