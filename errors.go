package docstore

import "errors"

var (
	// ErrNotFound is returned when a folder or document does not exist
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")
	// ErrIntegrity is returned when stored data violates a tree invariant
	// (orphaned reference, duplicate root, malformed ID). Fatal, not retried.
	ErrIntegrity = errors.New("integrity violation")
	// ErrConflict is returned when an insert collides with an existing ID
	ErrConflict = errors.New("id conflict")
	// ErrRootImmutable is returned when a delete targets the sentinel root
	ErrRootImmutable = errors.New("root folder cannot be deleted")
	// ErrStorage is returned when the blob store fails
	ErrStorage = errors.New("storage failure")
)
