package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cocrafter/docstore"
)

func createMetadataTables(ctx context.Context, pool *pgxpool.Pool, tables docstore.Tables) error {
	foldersTable := pgx.Identifier{tables.Folders}.Sanitize()
	documentsTable := pgx.Identifier{tables.Documents}.Sanitize()
	indexSingleRoot := pgx.Identifier{fmt.Sprintf("idx_%s_single_root", tables.Folders)}.Sanitize()
	indexParent := pgx.Identifier{fmt.Sprintf("idx_%s_parent", tables.Folders)}.Sanitize()
	indexDocFolder := pgx.Identifier{fmt.Sprintf("idx_%s_folder", tables.Documents)}.Sanitize()

	sql := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			parent_id TEXT REFERENCES %s (id) ON DELETE CASCADE
		);

		CREATE UNIQUE INDEX IF NOT EXISTS %s
		ON %s ((1))
		WHERE (parent_id IS NULL);

		CREATE INDEX IF NOT EXISTS %s
		ON %s (parent_id);

		CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			folder_id TEXT NOT NULL REFERENCES %s (id) ON DELETE CASCADE,
			path TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS %s
		ON %s (folder_id);
	`,
		foldersTable, foldersTable,
		indexSingleRoot, foldersTable,
		indexParent, foldersTable,
		documentsTable, foldersTable,
		indexDocFolder, documentsTable,
	)

	_, err := pool.Exec(ctx, sql)
	if err != nil {
		return fmt.Errorf("create metadata tables: %w", err)
	}
	return nil
}
