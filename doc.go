// Package docstore implements a document-management backend: folders
// organized in a rooted tree with file documents attached to them.
// Folder and document metadata lives in a relational store behind the
// MetadataRepo interface; file bytes live in an object store behind the
// BlobStore interface.
//
// The package root holds the domain model and the tree logic: hierarchy
// materialization (BuildHierarchy), deterministic sibling ID allocation
// (NextFolderID) and the Service orchestrating cascade deletion, document
// upload/rename and blob/metadata sequencing.
package docstore
