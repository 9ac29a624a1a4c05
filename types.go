package docstore

import (
	"errors"
	"fmt"
	"regexp"
)

const (
	// RootFolderID is the fixed ID of the sentinel root folder. It is
	// created lazily on first hierarchy read and anchors the whole tree.
	RootFolderID = "root"

	// RootFolderName is the display name of the sentinel root folder.
	RootFolderName = "root"
)

// Folder is a node in the folder tree. The sentinel root is the only
// folder with a nil ParentID.
type Folder struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	ParentID *string `json:"parentId"`
}

// IsRoot reports whether the folder is the sentinel root.
func (f Folder) IsRoot() bool {
	return f.ParentID == nil
}

// Document is a stored file. Name is the user-visible filename; Path is
// the blob store key (documents/<id>/<filename>) and follows Name on rename.
type Document struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	FolderID string `json:"folderId"`
	Path     string `json:"path"`
}

// HierarchyNode is a folder augmented with its children and documents.
// It is a projection computed fresh on every hierarchy read, never persisted.
type HierarchyNode struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	ParentID  *string          `json:"parentId"`
	Children  []*HierarchyNode `json:"children"`
	Documents []Document       `json:"documents"`
}

// Tables holds configurable table names for metadata storage.
// This allows multi-tenant deployments to use different table names.
type Tables struct {
	Folders   string `mapstructure:"folders"`
	Documents string `mapstructure:"documents"`
}

var validTableNameRegex = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// IsValidTableName checks if a table name is valid (lowercase, alphanumeric with underscores, max 63 chars).
func IsValidTableName(name string) bool {
	return validTableNameRegex.MatchString(name) && len(name) <= 63
}

// Validate checks that all required table names are set and valid.
func (t Tables) Validate() error {
	if t.Folders == "" {
		return errors.New("validate tables: folders table name cannot be empty")
	}

	if !IsValidTableName(t.Folders) {
		return fmt.Errorf("validate tables: invalid folders table name: %s (must match ^[a-z_][a-z0-9_]*$ and be <= 63 chars)", t.Folders)
	}

	if t.Documents == "" {
		return errors.New("validate tables: documents table name cannot be empty")
	}

	if !IsValidTableName(t.Documents) {
		return fmt.Errorf("validate tables: invalid documents table name: %s (must match ^[a-z_][a-z0-9_]*$ and be <= 63 chars)", t.Documents)
	}

	if t.Folders == t.Documents {
		return fmt.Errorf("validate tables: folders and documents cannot share table name %s", t.Folders)
	}

	return nil
}
