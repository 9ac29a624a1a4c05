package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/cocrafter/docstore"
)

func createMetadataTables(ctx context.Context, db *sql.DB, tables docstore.Tables) error {
	if err := tables.Validate(); err != nil {
		return err
	}

	stmt := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			parent_id TEXT REFERENCES %s (id) ON DELETE CASCADE
		);

		CREATE UNIQUE INDEX IF NOT EXISTS idx_%s_single_root
		ON %s ((1))
		WHERE parent_id IS NULL;

		CREATE INDEX IF NOT EXISTS idx_%s_parent
		ON %s (parent_id);

		CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			folder_id TEXT NOT NULL REFERENCES %s (id) ON DELETE CASCADE,
			path TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_%s_folder
		ON %s (folder_id);
	`,
		tables.Folders, tables.Folders,
		tables.Folders, tables.Folders,
		tables.Folders, tables.Folders,
		tables.Documents, tables.Folders,
		tables.Documents, tables.Documents,
	)

	if _, err := db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("create metadata tables: %w", err)
	}
	return nil
}

type columnInfo struct {
	name       string
	dataType   string
	isNullable bool
}

type tableValidation struct {
	tableName      string
	expectedSchema map[string]columnInfo
}

var foldersTableSchema = map[string]columnInfo{
	"id":        {"id", "text", false},
	"name":      {"name", "text", false},
	"parent_id": {"parent_id", "text", true},
}

var documentsTableSchema = map[string]columnInfo{
	"id":        {"id", "text", false},
	"name":      {"name", "text", false},
	"folder_id": {"folder_id", "text", false},
	"path":      {"path", "text", false},
}

func getTableValidations(tables docstore.Tables) []tableValidation {
	return []tableValidation{
		{tableName: tables.Folders, expectedSchema: foldersTableSchema},
		{tableName: tables.Documents, expectedSchema: documentsTableSchema},
	}
}

func validateTableSchema(ctx context.Context, db *sql.DB, tableName string, expectedSchema map[string]columnInfo) error {
	if !docstore.IsValidTableName(tableName) {
		return fmt.Errorf("validate table schema: invalid table name: %s", tableName)
	}

	query := fmt.Sprintf(`PRAGMA table_info(%s)`, tableName)

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return fmt.Errorf("validate table schema: query columns: %w", err)
	}
	defer func() { _ = rows.Close() }()

	actualColumns := make(map[string]columnInfo)
	for rows.Next() {
		var (
			cid        int
			name       string
			dataType   string
			notNull    int
			defaultVal sql.NullString
			pk         int
		)
		if err := rows.Scan(&cid, &name, &dataType, &notNull, &defaultVal, &pk); err != nil {
			return fmt.Errorf("validate table schema: scan column: %w", err)
		}
		actualColumns[name] = columnInfo{
			name:     name,
			dataType: strings.ToLower(dataType),
			// Primary keys are implicitly NOT NULL in SQLite.
			isNullable: notNull == 0 && pk == 0,
		}
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("validate table schema: rows error: %w", err)
	}

	if len(actualColumns) == 0 {
		return fmt.Errorf("validate table schema: table %s does not exist", tableName)
	}

	var problems []string
	for colName, expected := range expectedSchema {
		actual, exists := actualColumns[colName]
		if !exists {
			problems = append(problems, fmt.Sprintf("missing column %s", colName))
			continue
		}

		if actual.dataType != expected.dataType {
			problems = append(problems,
				fmt.Sprintf("%s: expected %s, got %s", colName, expected.dataType, actual.dataType))
		}

		if actual.isNullable != expected.isNullable {
			problems = append(problems,
				fmt.Sprintf("%s: expected nullable=%v, got nullable=%v", colName, expected.isNullable, actual.isNullable))
		}
	}

	if len(problems) > 0 {
		return errors.New("table " + tableName + " schema validation failed: " + strings.Join(problems, "; "))
	}

	return nil
}
