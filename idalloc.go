package docstore

import (
	"fmt"
	"strconv"
	"strings"
)

// folderIDPrefix starts every top-level folder ID; nested folders use the
// parent ID itself as prefix, producing IDs like Folder-1-1.
const folderIDPrefix = "Folder"

// documentIDPrefix starts every document ID.
const documentIDPrefix = "Document"

// NextFolderID derives the ID for a new child of parentID from the IDs of
// the existing children. The first child of the root is Folder-1, the first
// child of Folder-1 is Folder-1-1, and each further sibling increments the
// numeric suffix past the highest existing one. The numeric maximum is taken
// over parsed suffixes, so growth stays monotonic across digit boundaries
// (Folder-9, Folder-10, Folder-11, ...).
//
// A child ID without a trailing -<digits> suffix is a data-integrity failure
// and returns an error wrapping ErrIntegrity.
func NextFolderID(parentID string, childIDs []string) (string, error) {
	prefix := parentID
	if parentID == RootFolderID {
		prefix = folderIDPrefix
	}

	maxSuffix := 0
	for _, id := range childIDs {
		n, err := idSuffix(id)
		if err != nil {
			return "", fmt.Errorf("next folder id under %s: %w", parentID, err)
		}
		if n > maxSuffix {
			maxSuffix = n
		}
	}

	return fmt.Sprintf("%s-%d", prefix, maxSuffix+1), nil
}

// NextDocumentID derives a document ID from the current document count.
func NextDocumentID(total int) string {
	return fmt.Sprintf("%s-%d", documentIDPrefix, total+1)
}

func idSuffix(id string) (int, error) {
	i := strings.LastIndexByte(id, '-')
	if i < 0 || i == len(id)-1 {
		return 0, fmt.Errorf("malformed id %q: %w", id, ErrIntegrity)
	}

	n, err := strconv.Atoi(id[i+1:])
	if err != nil {
		return 0, fmt.Errorf("malformed id %q: non-numeric suffix: %w", id, ErrIntegrity)
	}

	return n, nil
}
