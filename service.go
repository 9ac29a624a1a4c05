package docstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"
)

// createAttempts bounds the retry loop around ID allocation conflicts for
// folders and documents.
const createAttempts = 3

// Service orchestrates folder-tree and document operations over a metadata
// repository and a blob store.
//
// Blob operations are never covered by the metadata store's transaction, so
// every mutation is sequenced to keep the metadata commit authoritative:
// destructive blob work happens only after the row commit, and copies before
// it. Blobs orphaned by a failed cleanup are reclaimed by Reconcile.
type Service struct {
	repo           MetadataRepo
	blobs          BlobStore
	cleanupTimeout time.Duration
}

// ServiceConfig holds configuration options for Service.
type ServiceConfig struct {
	CleanupTimeout time.Duration // Timeout for post-commit blob cleanup (default: 30s)
}

func NewService(repo MetadataRepo, blobs BlobStore, cfg ServiceConfig) (*Service, error) {
	if repo == nil {
		return nil, errors.New("new service: metadata repo is required")
	}
	if blobs == nil {
		return nil, errors.New("new service: blob store is required")
	}

	cleanupTimeout := cfg.CleanupTimeout
	if cleanupTimeout <= 0 {
		cleanupTimeout = 30 * time.Second
	}

	return &Service{repo: repo, blobs: blobs, cleanupTimeout: cleanupTimeout}, nil
}

// Hierarchy materializes the full folder tree rooted at the sentinel root.
// The root is inserted on first access; two concurrent first reads are safe
// because the insert ignores conflicts. The result is a projection computed
// fresh on every call, never cached.
func (s *Service) Hierarchy(ctx context.Context) (*HierarchyNode, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("hierarchy: %w", err)
	}

	if err := s.repo.EnsureRoot(ctx); err != nil {
		return nil, fmt.Errorf("hierarchy: ensure root: %w", err)
	}

	folders, err := s.repo.ListFolders(ctx)
	if err != nil {
		return nil, fmt.Errorf("hierarchy: list folders: %w", err)
	}

	documents, err := s.repo.ListDocuments(ctx)
	if err != nil {
		return nil, fmt.Errorf("hierarchy: list documents: %w", err)
	}

	root, err := BuildHierarchy(folders, documents)
	if err != nil {
		return nil, fmt.Errorf("hierarchy: %w", err)
	}

	return root, nil
}

// CreateFolder creates a new folder under parentID with a derived sibling ID
// (see NextFolderID). The folder's name is initialized to its ID. A residual
// allocation race surfaces as ErrConflict from the repo and is retried with a
// recomputed ID a bounded number of times.
func (s *Service) CreateFolder(ctx context.Context, parentID string) (Folder, error) {
	if err := ctx.Err(); err != nil {
		return Folder{}, fmt.Errorf("create folder: %w", err)
	}

	if parentID == "" {
		return Folder{}, fmt.Errorf("create folder: %w: parent id cannot be empty", ErrInvalidInput)
	}

	// Creating under root must work before the first hierarchy read.
	if parentID == RootFolderID {
		if err := s.repo.EnsureRoot(ctx); err != nil {
			return Folder{}, fmt.Errorf("create folder: ensure root: %w", err)
		}
	}

	var lastErr error
	for attempt := 0; attempt < createAttempts; attempt++ {
		folder, err := s.repo.CreateFolder(ctx, parentID)
		if err == nil {
			return folder, nil
		}
		if !errors.Is(err, ErrConflict) {
			return Folder{}, fmt.Errorf("create folder under %s: %w", parentID, err)
		}
		lastErr = err
	}

	return Folder{}, fmt.Errorf("create folder under %s: allocation kept colliding: %w", parentID, lastErr)
}

// RenameFolder changes a folder's display name. The ID never changes.
func (s *Service) RenameFolder(ctx context.Context, id, name string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("rename folder: %w", err)
	}

	if !IsValidName(name) {
		return fmt.Errorf("rename folder %s: %w: invalid name %q", id, ErrInvalidInput, name)
	}

	if err := s.repo.RenameFolder(ctx, id, name); err != nil {
		return fmt.Errorf("rename folder %s: %w", id, err)
	}

	return nil
}

// DeleteFolder removes a folder, its entire subtree and every document
// transitively contained, in one all-or-nothing metadata transaction. The
// sentinel root is refused with ErrRootImmutable.
//
// Blob objects of deleted documents are removed best-effort after the commit
// using a background context; failures are logged and left to Reconcile.
func (s *Service) DeleteFolder(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("delete folder: %w", err)
	}

	if id == RootFolderID {
		return fmt.Errorf("delete folder %s: %w", id, ErrRootImmutable)
	}

	blobKeys, folders, err := s.repo.DeleteFolderTree(ctx, id)
	if err != nil {
		return fmt.Errorf("delete folder %s: %w", id, err)
	}

	slog.Info("deleted folder subtree", "id", id, "folders", folders, "documents", len(blobKeys))

	if len(blobKeys) > 0 {
		// The rows are gone; use a background context so cleanup survives
		// request cancellation.
		cleanupCtx, cancel := context.WithTimeout(context.Background(), s.cleanupTimeout)
		defer cancel()

		for _, key := range blobKeys {
			if delErr := s.blobs.Delete(cleanupCtx, key); delErr != nil && !errors.Is(delErr, ErrNotFound) {
				slog.Warn("failed to delete blob after cascade, leaving for reconcile", "key", key, "err", delErr)
			}
		}
	}

	return nil
}

// UploadDocument stores the file bytes under documents/<id>/<filename> and
// inserts the metadata row. The blob is written first and the row commit is
// the authoritative step; if the insert fails the blob is cleaned up. An ID
// collision (a previously deleted document freed a count slot) is retried
// with the next ID.
func (s *Service) UploadDocument(ctx context.Context, parentID, filename string, content io.Reader) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, fmt.Errorf("upload document: %w", err)
	}

	if parentID == "" {
		return Document{}, fmt.Errorf("upload document: %w: parent id cannot be empty", ErrInvalidInput)
	}

	if !IsValidName(filename) {
		return Document{}, fmt.Errorf("upload document: %w: invalid filename %q", ErrInvalidInput, filename)
	}

	if _, err := s.repo.GetFolder(ctx, parentID); err != nil {
		return Document{}, fmt.Errorf("upload document: folder %s: %w", parentID, err)
	}

	total, err := s.repo.CountDocuments(ctx)
	if err != nil {
		return Document{}, fmt.Errorf("upload document: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt < createAttempts; attempt++ {
		doc := Document{
			ID:       NextDocumentID(total + attempt),
			Name:     filename,
			FolderID: parentID,
			Path:     "",
		}
		doc.Path = DocumentKey(doc.ID, filename)

		if _, err := s.blobs.Put(ctx, doc.Path, content); err != nil {
			return Document{}, fmt.Errorf("upload document %s: %w: %v", doc.ID, ErrStorage, err)
		}

		insertErr := s.repo.InsertDocument(ctx, doc)
		if insertErr == nil {
			return doc, nil
		}

		// Row insert failed; remove the just-written blob so nothing
		// dangles. Cleanup uses a background context since the request
		// context may already be cancelled.
		cleanupCtx, cancel := context.WithTimeout(context.Background(), s.cleanupTimeout)
		if delErr := s.blobs.Delete(cleanupCtx, doc.Path); delErr != nil && !errors.Is(delErr, ErrNotFound) {
			slog.Warn("failed to clean up blob after insert failure", "key", doc.Path, "err", delErr)
		}
		cancel()

		if !errors.Is(insertErr, ErrConflict) {
			return Document{}, fmt.Errorf("upload document %s: %w", doc.ID, insertErr)
		}
		lastErr = insertErr

		// The content reader is consumed; retrying needs a rewind.
		seeker, ok := content.(io.Seeker)
		if !ok {
			return Document{}, fmt.Errorf("upload document: %w", insertErr)
		}
		if _, seekErr := seeker.Seek(0, io.SeekStart); seekErr != nil {
			return Document{}, fmt.Errorf("upload document: rewind after conflict: %w", seekErr)
		}
	}

	return Document{}, fmt.Errorf("upload document: allocation kept colliding: %w", lastErr)
}

// FetchDocument returns a document's metadata and a reader over its bytes.
// The caller must close the reader.
func (s *Service) FetchDocument(ctx context.Context, id string) (Document, io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, nil, fmt.Errorf("fetch document: %w", err)
	}

	doc, err := s.repo.GetDocument(ctx, id)
	if err != nil {
		return Document{}, nil, fmt.Errorf("fetch document %s: %w", id, err)
	}

	content, err := s.blobs.Get(ctx, doc.Path)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			// Row exists but bytes are gone: integrity, not a plain 404.
			return Document{}, nil, fmt.Errorf("fetch document %s: blob %s missing: %w", id, doc.Path, ErrIntegrity)
		}
		return Document{}, nil, fmt.Errorf("fetch document %s: %w: %v", id, ErrStorage, err)
	}

	return doc, content, nil
}

// RenameDocument changes a document's name and moves its blob so the key's
// final segment matches. Sequencing removes the partial-failure hazard of
// copy-delete-update: the copy is idempotent and retried, the row update is
// the authoritative commit, and the old key is deleted best-effort afterwards
// (orphans are reclaimed by Reconcile).
func (s *Service) RenameDocument(ctx context.Context, id, newName string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, fmt.Errorf("rename document: %w", err)
	}

	if !IsValidName(newName) {
		return Document{}, fmt.Errorf("rename document %s: %w: invalid name %q", id, ErrInvalidInput, newName)
	}

	doc, err := s.repo.GetDocument(ctx, id)
	if err != nil {
		return Document{}, fmt.Errorf("rename document %s: %w", id, err)
	}

	oldPath := doc.Path
	newPath := RenamedKey(oldPath, newName)

	if newPath != oldPath {
		copyErr := blobRetry.do(ctx, func() error {
			return s.blobs.Copy(ctx, oldPath, newPath)
		})
		if copyErr != nil {
			return Document{}, fmt.Errorf("rename document %s: copy blob: %w: %v", id, ErrStorage, copyErr)
		}
	}

	if err := s.repo.UpdateDocument(ctx, id, newName, newPath); err != nil {
		return Document{}, fmt.Errorf("rename document %s: %w", id, err)
	}

	if newPath != oldPath {
		if delErr := s.blobs.Delete(ctx, oldPath); delErr != nil && !errors.Is(delErr, ErrNotFound) {
			slog.Warn("failed to delete old blob after rename, leaving for reconcile", "key", oldPath, "err", delErr)
		}
	}

	doc.Name = newName
	doc.Path = newPath
	return doc, nil
}

// DeleteDocument removes a document row and then its blob. The row delete is
// the authoritative step; a failed blob delete is logged and reclaimed by
// Reconcile.
func (s *Service) DeleteDocument(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}

	blobKey, err := s.repo.DeleteDocument(ctx, id)
	if err != nil {
		return fmt.Errorf("delete document %s: %w", id, err)
	}

	if delErr := s.blobs.Delete(ctx, blobKey); delErr != nil && !errors.Is(delErr, ErrNotFound) {
		slog.Warn("failed to delete blob, leaving for reconcile", "key", blobKey, "err", delErr)
	}

	return nil
}

// Reconcile removes blobs under documents/ whose key no longer appears in
// the documents table. It is the idempotent backstop for every best-effort
// blob cleanup in this service; run it periodically or after incidents.
// Returns the number of objects removed.
func (s *Service) Reconcile(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("reconcile: %w", err)
	}

	keys, err := s.blobs.List(ctx, DocumentKeyPrefix)
	if err != nil {
		return 0, fmt.Errorf("reconcile: list blobs: %w", err)
	}

	documents, err := s.repo.ListDocuments(ctx)
	if err != nil {
		return 0, fmt.Errorf("reconcile: list documents: %w", err)
	}

	live := make(map[string]struct{}, len(documents))
	for _, d := range documents {
		live[d.Path] = struct{}{}
	}

	removed := 0
	for _, key := range keys {
		if !strings.HasPrefix(key, DocumentKeyPrefix) {
			continue
		}
		if _, ok := live[key]; ok {
			continue
		}

		if delErr := s.blobs.Delete(ctx, key); delErr != nil {
			if errors.Is(delErr, ErrNotFound) {
				continue
			}
			return removed, fmt.Errorf("reconcile %s: %w", key, delErr)
		}

		slog.Info("removed orphaned blob", "key", key)
		removed++
	}

	return removed, nil
}
