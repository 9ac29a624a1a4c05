// Package sqlite implements the metadata repo on SQLite via modernc.org/sqlite.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/cocrafter/docstore"
)

type Repo struct {
	db     *sql.DB
	tables docstore.Tables
}

func NewRepo(db *sql.DB, tables docstore.Tables) (*Repo, error) {
	if err := tables.Validate(); err != nil {
		return nil, fmt.Errorf("new repo: %w", err)
	}

	return &Repo{db: db, tables: tables}, nil
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func isForeignKeyViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}

func (r *Repo) EnsureRoot(ctx context.Context) error {
	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`INSERT OR IGNORE INTO %s (id, name, parent_id) VALUES (?, ?, NULL)`, r.tables.Folders)

	if _, err := r.db.ExecContext(ctx, query, docstore.RootFolderID, docstore.RootFolderName); err != nil {
		return fmt.Errorf("ensure root: %w", err)
	}

	return nil
}

func (r *Repo) ListFolders(ctx context.Context) ([]docstore.Folder, error) {
	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`SELECT id, name, parent_id FROM %s ORDER BY id`, r.tables.Folders)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list folders: %w", err)
	}
	defer func() { _ = rows.Close() }()

	folders := []docstore.Folder{}
	for rows.Next() {
		var f docstore.Folder
		if err := rows.Scan(&f.ID, &f.Name, &f.ParentID); err != nil {
			return nil, fmt.Errorf("list folders: scan: %w", err)
		}
		folders = append(folders, f)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list folders: rows: %w", err)
	}

	return folders, nil
}

func (r *Repo) GetFolder(ctx context.Context, id string) (docstore.Folder, error) {
	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`SELECT id, name, parent_id FROM %s WHERE id = ?`, r.tables.Folders)

	var f docstore.Folder
	err := r.db.QueryRowContext(ctx, query, id).Scan(&f.ID, &f.Name, &f.ParentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return docstore.Folder{}, docstore.ErrNotFound
		}
		return docstore.Folder{}, fmt.Errorf("get folder: %w", err)
	}

	return f, nil
}

// CreateFolder allocates the next sibling ID and inserts the folder in one
// transaction. SQLite serializes writers globally, which covers the
// per-parent serialization the allocator needs.
func (r *Repo) CreateFolder(ctx context.Context, parentID string) (docstore.Folder, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return docstore.Folder{}, fmt.Errorf("create folder: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	parentQuery := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`SELECT id FROM %s WHERE id = ?`, r.tables.Folders)
	var parent string
	if err := tx.QueryRowContext(ctx, parentQuery, parentID).Scan(&parent); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return docstore.Folder{}, docstore.ErrNotFound
		}
		return docstore.Folder{}, fmt.Errorf("create folder: check parent: %w", err)
	}

	childQuery := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`SELECT id FROM %s WHERE parent_id = ? ORDER BY id ASC`, r.tables.Folders)

	rows, err := tx.QueryContext(ctx, childQuery, parentID)
	if err != nil {
		return docstore.Folder{}, fmt.Errorf("create folder: list children: %w", err)
	}

	var childIDs []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			_ = rows.Close()
			return docstore.Folder{}, fmt.Errorf("create folder: scan child: %w", err)
		}
		childIDs = append(childIDs, id)
	}
	_ = rows.Close()
	if err := rows.Err(); err != nil {
		return docstore.Folder{}, fmt.Errorf("create folder: rows: %w", err)
	}

	newID, err := docstore.NextFolderID(parentID, childIDs)
	if err != nil {
		return docstore.Folder{}, fmt.Errorf("create folder: %w", err)
	}

	insertQuery := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`INSERT INTO %s (id, name, parent_id) VALUES (?, ?, ?)`, r.tables.Folders)

	if _, err := tx.ExecContext(ctx, insertQuery, newID, newID, parentID); err != nil {
		if isUniqueViolation(err) {
			return docstore.Folder{}, fmt.Errorf("create folder %s: %w", newID, docstore.ErrConflict)
		}
		return docstore.Folder{}, fmt.Errorf("create folder: insert: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return docstore.Folder{}, fmt.Errorf("create folder: commit: %w", err)
	}

	return docstore.Folder{ID: newID, Name: newID, ParentID: &parentID}, nil
}

func (r *Repo) RenameFolder(ctx context.Context, id, name string) error {
	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`UPDATE %s SET name = ? WHERE id = ?`, r.tables.Folders)

	result, err := r.db.ExecContext(ctx, query, name, id)
	if err != nil {
		return fmt.Errorf("rename folder: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rename folder: rows affected: %w", err)
	}

	if affected == 0 {
		return fmt.Errorf("rename folder: %w", docstore.ErrNotFound)
	}

	return nil
}

// DeleteFolderTree removes the subtree rooted at id plus its documents in
// one transaction, computing the closure with a recursive CTE over the
// parent_id relation. Deleted document paths are returned for blob cleanup.
func (r *Repo) DeleteFolderTree(ctx context.Context, id string) ([]string, int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("delete folder tree: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	existsQuery := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`SELECT 1 FROM %s WHERE id = ?`, r.tables.Folders)
	var one int
	if err := tx.QueryRowContext(ctx, existsQuery, id).Scan(&one); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, 0, docstore.ErrNotFound
		}
		return nil, 0, fmt.Errorf("delete folder tree: %w", err)
	}

	deleteDocsQuery := fmt.Sprintf( //nolint:gosec // G201: table names are validated
		`WITH RECURSIVE folder_tree AS (
			SELECT id FROM %s WHERE id = ?
			UNION ALL
			SELECT f.id FROM %s f
			INNER JOIN folder_tree ft ON f.parent_id = ft.id
		)
		DELETE FROM %s
		WHERE folder_id IN (SELECT id FROM folder_tree)
		RETURNING path`, r.tables.Folders, r.tables.Folders, r.tables.Documents)

	rows, err := tx.QueryContext(ctx, deleteDocsQuery, id)
	if err != nil {
		return nil, 0, fmt.Errorf("delete folder tree: delete documents: %w", err)
	}

	var blobKeys []string
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			_ = rows.Close()
			return nil, 0, fmt.Errorf("delete folder tree: scan path: %w", err)
		}
		blobKeys = append(blobKeys, path)
	}
	_ = rows.Close()
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("delete folder tree: rows: %w", err)
	}

	deleteFoldersQuery := fmt.Sprintf( //nolint:gosec // G201: table names are validated
		`WITH RECURSIVE folder_tree AS (
			SELECT id FROM %s WHERE id = ?
			UNION ALL
			SELECT f.id FROM %s f
			INNER JOIN folder_tree ft ON f.parent_id = ft.id
		)
		DELETE FROM %s
		WHERE id IN (SELECT id FROM folder_tree)`, r.tables.Folders, r.tables.Folders, r.tables.Folders)

	result, err := tx.ExecContext(ctx, deleteFoldersQuery, id)
	if err != nil {
		return nil, 0, fmt.Errorf("delete folder tree: delete folders: %w", err)
	}

	folders, err := result.RowsAffected()
	if err != nil {
		return nil, 0, fmt.Errorf("delete folder tree: rows affected: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, 0, fmt.Errorf("delete folder tree: commit: %w", err)
	}

	return blobKeys, int(folders), nil
}

func (r *Repo) ListDocuments(ctx context.Context) ([]docstore.Document, error) {
	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`SELECT id, name, folder_id, path FROM %s ORDER BY id`, r.tables.Documents)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer func() { _ = rows.Close() }()

	documents := []docstore.Document{}
	for rows.Next() {
		var d docstore.Document
		if err := rows.Scan(&d.ID, &d.Name, &d.FolderID, &d.Path); err != nil {
			return nil, fmt.Errorf("list documents: scan: %w", err)
		}
		documents = append(documents, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list documents: rows: %w", err)
	}

	return documents, nil
}

func (r *Repo) GetDocument(ctx context.Context, id string) (docstore.Document, error) {
	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`SELECT id, name, folder_id, path FROM %s WHERE id = ?`, r.tables.Documents)

	var d docstore.Document
	err := r.db.QueryRowContext(ctx, query, id).Scan(&d.ID, &d.Name, &d.FolderID, &d.Path)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return docstore.Document{}, docstore.ErrNotFound
		}
		return docstore.Document{}, fmt.Errorf("get document: %w", err)
	}

	return d, nil
}

func (r *Repo) CountDocuments(ctx context.Context) (int, error) {
	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`SELECT COUNT(*) FROM %s`, r.tables.Documents)

	var count int
	if err := r.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("count documents: %w", err)
	}

	return count, nil
}

func (r *Repo) InsertDocument(ctx context.Context, doc docstore.Document) error {
	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`INSERT INTO %s (id, name, folder_id, path) VALUES (?, ?, ?, ?)`, r.tables.Documents)

	_, err := r.db.ExecContext(ctx, query, doc.ID, doc.Name, doc.FolderID, doc.Path)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("insert document %s: %w", doc.ID, docstore.ErrConflict)
		}
		if isForeignKeyViolation(err) {
			return fmt.Errorf("insert document %s: folder %s: %w", doc.ID, doc.FolderID, docstore.ErrNotFound)
		}
		return fmt.Errorf("insert document: %w", err)
	}

	return nil
}

func (r *Repo) UpdateDocument(ctx context.Context, id, name, path string) error {
	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`UPDATE %s SET name = ?, path = ? WHERE id = ?`, r.tables.Documents)

	result, err := r.db.ExecContext(ctx, query, name, path, id)
	if err != nil {
		return fmt.Errorf("update document: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update document: rows affected: %w", err)
	}

	if affected == 0 {
		return fmt.Errorf("update document: %w", docstore.ErrNotFound)
	}

	return nil
}

func (r *Repo) DeleteDocument(ctx context.Context, id string) (string, error) {
	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`DELETE FROM %s WHERE id = ? RETURNING path`, r.tables.Documents)

	var path string
	err := r.db.QueryRowContext(ctx, query, id).Scan(&path)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", docstore.ErrNotFound
		}
		return "", fmt.Errorf("delete document: %w", err)
	}

	return path, nil
}
