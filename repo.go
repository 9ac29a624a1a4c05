package docstore

import (
	"context"
	"io"
)

// MetadataRepo defines the interface for folder and document metadata
// persistence. Implementations must enforce referential integrity between
// documents and folders (foreign key with cascading delete) and handle
// concurrent access safely.
//
// All methods accept a context for cancellation and timeout control.
type MetadataRepo interface {
	// EnsureRoot inserts the sentinel root folder if it does not exist.
	// Idempotent and race-safe: losing an insert race is a no-op.
	EnsureRoot(ctx context.Context) error

	// ListFolders returns every folder ordered by ascending ID.
	ListFolders(ctx context.Context) ([]Folder, error)

	// GetFolder returns a folder by ID. Returns ErrNotFound if unknown.
	GetFolder(ctx context.Context, id string) (Folder, error)

	// CreateFolder allocates the next sibling ID under parentID (see
	// NextFolderID) and inserts the folder, both inside one transaction
	// serialized per parent. Returns ErrNotFound if the parent does not
	// exist and ErrConflict if the allocated ID collides; callers retry
	// conflicts with a recomputed ID.
	CreateFolder(ctx context.Context, parentID string) (Folder, error)

	// RenameFolder updates a folder's display name, never its ID.
	// Returns ErrNotFound if the folder does not exist.
	RenameFolder(ctx context.Context, id, name string) error

	// DeleteFolderTree deletes the folder, every descendant folder and
	// every document contained in that subtree in a single transaction.
	// No partial deletion is ever observable. It returns the blob keys of
	// the removed documents so callers can reclaim storage, plus the
	// number of folders removed. Returns ErrNotFound if the folder does
	// not exist. Deleting the sentinel root is the caller's responsibility
	// to refuse.
	DeleteFolderTree(ctx context.Context, id string) (blobKeys []string, folders int, err error)

	// ListDocuments returns every document ordered by ascending ID.
	ListDocuments(ctx context.Context) ([]Document, error)

	// GetDocument returns a document by ID. Returns ErrNotFound if unknown.
	GetDocument(ctx context.Context, id string) (Document, error)

	// CountDocuments returns the total number of document rows.
	CountDocuments(ctx context.Context) (int, error)

	// InsertDocument inserts a document row. Returns ErrConflict if the ID
	// is taken and ErrNotFound if the folder does not exist.
	InsertDocument(ctx context.Context, doc Document) error

	// UpdateDocument sets a document's name and blob key.
	// Returns ErrNotFound if the document does not exist.
	UpdateDocument(ctx context.Context, id, name, path string) error

	// DeleteDocument removes a document row and returns its blob key.
	// Returns ErrNotFound if the document does not exist.
	DeleteDocument(ctx context.Context, id string) (blobKey string, err error)
}

// BlobStore defines the interface for raw file byte storage, addressed by
// key. Implementations can use S3-compatible object storage or the local
// filesystem.
//
// All methods accept a context for cancellation and timeout control.
// Implementations should respect cancellation during large transfers.
type BlobStore interface {
	// Put stores content under key, overwriting any existing object.
	// Returns the number of bytes written.
	Put(ctx context.Context, key string, content io.Reader) (int64, error)

	// Get opens the object at key for reading. Returns ErrNotFound if the
	// key does not exist. The caller must close the returned reader.
	Get(ctx context.Context, key string) (io.ReadCloser, error)

	// Copy duplicates the object at src under dst. Idempotent: copying
	// onto an existing dst overwrites it. Returns ErrNotFound if src does
	// not exist.
	Copy(ctx context.Context, src, dst string) error

	// Delete removes the object at key. Backends either return ErrNotFound
	// for a missing key or treat the delete as a no-op; callers must not
	// rely on the distinction.
	Delete(ctx context.Context, key string) error

	// List returns every key under the given prefix. Used by
	// reconciliation sweeps; can be expensive on large stores.
	List(ctx context.Context, prefix string) ([]string, error)
}
