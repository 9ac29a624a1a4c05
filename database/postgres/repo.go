// Package postgres implements the metadata repo on PostgreSQL via pgx.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cocrafter/docstore"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

type Repo struct {
	pool   *pgxpool.Pool
	tables docstore.Tables
}

func NewRepo(pool *pgxpool.Pool, tables docstore.Tables) (*Repo, error) {
	if err := tables.Validate(); err != nil {
		return nil, fmt.Errorf("new repo: %w", err)
	}

	return &Repo{pool: pool, tables: tables}, nil
}

// Ping verifies database connectivity
func (r *Repo) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func (r *Repo) foldersTable() string {
	return pgx.Identifier{r.tables.Folders}.Sanitize()
}

func (r *Repo) documentsTable() string {
	return pgx.Identifier{r.tables.Documents}.Sanitize()
}

func pgErrCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

func (r *Repo) EnsureRoot(ctx context.Context) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, name, parent_id)
		VALUES ($1, $2, NULL)
		ON CONFLICT (id) DO NOTHING
	`, r.foldersTable())

	_, err := r.pool.Exec(ctx, query, docstore.RootFolderID, docstore.RootFolderName)
	if err != nil {
		// The partial unique index on "parent_id IS NULL" can still fire if
		// another connection won the race; that loss is a benign no-op.
		if pgErrCode(err) == pgUniqueViolation {
			return nil
		}
		return fmt.Errorf("ensure root: %w", err)
	}

	return nil
}

func (r *Repo) ListFolders(ctx context.Context) ([]docstore.Folder, error) {
	query := fmt.Sprintf(`
		SELECT id, name, parent_id
		FROM %s
		ORDER BY id
	`, r.foldersTable())

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list folders: %w", err)
	}
	defer rows.Close()

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
	query := fmt.Sprintf(`
		SELECT id, name, parent_id
		FROM %s
		WHERE id = $1
	`, r.foldersTable())

	var f docstore.Folder
	err := r.pool.QueryRow(ctx, query, id).Scan(&f.ID, &f.Name, &f.ParentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return docstore.Folder{}, docstore.ErrNotFound
		}
		return docstore.Folder{}, fmt.Errorf("get folder: %w", err)
	}

	return f, nil
}

// CreateFolder allocates the next sibling ID and inserts the folder in one
// transaction. The FOR UPDATE lock on the parent row is the per-parent
// serialization point: two concurrent creations under the same parent queue
// behind each other instead of computing the same ID.
func (r *Repo) CreateFolder(ctx context.Context, parentID string) (docstore.Folder, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return docstore.Folder{}, fmt.Errorf("create folder: begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	lockQuery := fmt.Sprintf(`SELECT id FROM %s WHERE id = $1 FOR UPDATE`, r.foldersTable())
	var lockedID string
	if err := tx.QueryRow(ctx, lockQuery, parentID).Scan(&lockedID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return docstore.Folder{}, docstore.ErrNotFound
		}
		return docstore.Folder{}, fmt.Errorf("create folder: lock parent: %w", err)
	}

	childQuery := fmt.Sprintf(`
		SELECT id
		FROM %s
		WHERE parent_id = $1
		ORDER BY id ASC
	`, r.foldersTable())

	rows, err := tx.Query(ctx, childQuery, parentID)
	if err != nil {
		return docstore.Folder{}, fmt.Errorf("create folder: list children: %w", err)
	}

	var childIDs []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return docstore.Folder{}, fmt.Errorf("create folder: scan child: %w", err)
		}
		childIDs = append(childIDs, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return docstore.Folder{}, fmt.Errorf("create folder: rows: %w", err)
	}

	newID, err := docstore.NextFolderID(parentID, childIDs)
	if err != nil {
		return docstore.Folder{}, fmt.Errorf("create folder: %w", err)
	}

	insertQuery := fmt.Sprintf(`
		INSERT INTO %s (id, name, parent_id)
		VALUES ($1, $2, $3)
	`, r.foldersTable())

	if _, err := tx.Exec(ctx, insertQuery, newID, newID, parentID); err != nil {
		if pgErrCode(err) == pgUniqueViolation {
			return docstore.Folder{}, fmt.Errorf("create folder %s: %w", newID, docstore.ErrConflict)
		}
		return docstore.Folder{}, fmt.Errorf("create folder: insert: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return docstore.Folder{}, fmt.Errorf("create folder: commit: %w", err)
	}

	return docstore.Folder{ID: newID, Name: newID, ParentID: &parentID}, nil
}

func (r *Repo) RenameFolder(ctx context.Context, id, name string) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET name = $1
		WHERE id = $2
	`, r.foldersTable())

	result, err := r.pool.Exec(ctx, query, name, id)
	if err != nil {
		return fmt.Errorf("rename folder: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("rename folder: %w", docstore.ErrNotFound)
	}

	return nil
}

// DeleteFolderTree removes the subtree rooted at id plus its documents in
// one transaction, computing the closure with a recursive CTE over the
// parent_id relation. Deleted document paths are returned for blob cleanup.
func (r *Repo) DeleteFolderTree(ctx context.Context, id string) ([]string, int, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("delete folder tree: begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	existsQuery := fmt.Sprintf(`SELECT 1 FROM %s WHERE id = $1`, r.foldersTable())
	var one int
	if err := tx.QueryRow(ctx, existsQuery, id).Scan(&one); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, 0, docstore.ErrNotFound
		}
		return nil, 0, fmt.Errorf("delete folder tree: %w", err)
	}

	deleteDocsQuery := fmt.Sprintf(`
		WITH RECURSIVE folder_tree AS (
			SELECT id
			FROM %s
			WHERE id = $1
			UNION ALL
			SELECT f.id
			FROM %s f
			INNER JOIN folder_tree ft ON f.parent_id = ft.id
		)
		DELETE FROM %s
		WHERE folder_id IN (SELECT id FROM folder_tree)
		RETURNING path
	`, r.foldersTable(), r.foldersTable(), r.documentsTable())

	rows, err := tx.Query(ctx, deleteDocsQuery, id)
	if err != nil {
		return nil, 0, fmt.Errorf("delete folder tree: delete documents: %w", err)
	}

	var blobKeys []string
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			rows.Close()
			return nil, 0, fmt.Errorf("delete folder tree: scan path: %w", err)
		}
		blobKeys = append(blobKeys, path)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("delete folder tree: rows: %w", err)
	}

	deleteFoldersQuery := fmt.Sprintf(`
		WITH RECURSIVE folder_tree AS (
			SELECT id
			FROM %s
			WHERE id = $1
			UNION ALL
			SELECT f.id
			FROM %s f
			INNER JOIN folder_tree ft ON f.parent_id = ft.id
		)
		DELETE FROM %s
		WHERE id IN (SELECT id FROM folder_tree)
	`, r.foldersTable(), r.foldersTable(), r.foldersTable())

	result, err := tx.Exec(ctx, deleteFoldersQuery, id)
	if err != nil {
		return nil, 0, fmt.Errorf("delete folder tree: delete folders: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, 0, fmt.Errorf("delete folder tree: commit: %w", err)
	}

	return blobKeys, int(result.RowsAffected()), nil
}

func (r *Repo) ListDocuments(ctx context.Context) ([]docstore.Document, error) {
	query := fmt.Sprintf(`
		SELECT id, name, folder_id, path
		FROM %s
		ORDER BY id
	`, r.documentsTable())

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

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
	query := fmt.Sprintf(`
		SELECT id, name, folder_id, path
		FROM %s
		WHERE id = $1
	`, r.documentsTable())

	var d docstore.Document
	err := r.pool.QueryRow(ctx, query, id).Scan(&d.ID, &d.Name, &d.FolderID, &d.Path)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return docstore.Document{}, docstore.ErrNotFound
		}
		return docstore.Document{}, fmt.Errorf("get document: %w", err)
	}

	return d, nil
}

func (r *Repo) CountDocuments(ctx context.Context) (int, error) {
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s`, r.documentsTable())

	var count int
	if err := r.pool.QueryRow(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("count documents: %w", err)
	}

	return count, nil
}

func (r *Repo) InsertDocument(ctx context.Context, doc docstore.Document) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, name, folder_id, path)
		VALUES ($1, $2, $3, $4)
	`, r.documentsTable())

	_, err := r.pool.Exec(ctx, query, doc.ID, doc.Name, doc.FolderID, doc.Path)
	if err != nil {
		switch pgErrCode(err) {
		case pgUniqueViolation:
			return fmt.Errorf("insert document %s: %w", doc.ID, docstore.ErrConflict)
		case pgForeignKeyViolation:
			return fmt.Errorf("insert document %s: folder %s: %w", doc.ID, doc.FolderID, docstore.ErrNotFound)
		}
		return fmt.Errorf("insert document: %w", err)
	}

	return nil
}

func (r *Repo) UpdateDocument(ctx context.Context, id, name, path string) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET name = $1, path = $2
		WHERE id = $3
	`, r.documentsTable())

	result, err := r.pool.Exec(ctx, query, name, path, id)
	if err != nil {
		return fmt.Errorf("update document: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("update document: %w", docstore.ErrNotFound)
	}

	return nil
}

func (r *Repo) DeleteDocument(ctx context.Context, id string) (string, error) {
	query := fmt.Sprintf(`
		DELETE FROM %s
		WHERE id = $1
		RETURNING path
	`, r.documentsTable())

	var path string
	err := r.pool.QueryRow(ctx, query, id).Scan(&path)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", docstore.ErrNotFound
		}
		return "", fmt.Errorf("delete document: %w", err)
	}

	return path, nil
}
