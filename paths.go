package docstore

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// DocumentKeyPrefix is the blob-store prefix under which all document
// objects live.
const DocumentKeyPrefix = "documents/"

// DocumentKey returns the blob store key for a document:
// documents/<documentID>/<filename>.
func DocumentKey(documentID, filename string) string {
	return DocumentKeyPrefix + documentID + "/" + filename
}

// RenamedKey replaces the final segment of a blob key with the new filename,
// keeping every earlier segment untouched.
func RenamedKey(key, newName string) string {
	i := strings.LastIndexByte(key, '/')
	if i < 0 {
		return newName
	}
	return key[:i+1] + newName
}

// IsValidName validates a user-supplied folder or document name.
// It checks that the name:
//   - is not empty, ".", or ".."
//   - does not contain "/" (names are single path segments)
//   - does not contain invalid characters: \ ? # ~
//   - is valid UTF-8 and at most 255 bytes
//   - does not contain null bytes, control characters (< 0x20), or DEL (0x7f)
//
// Returns true if the name is valid, false otherwise.
func IsValidName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}

	if len(name) > 255 {
		return false
	}

	if strings.ContainsAny(name, `/\?#~`) {
		return false
	}

	if !utf8.ValidString(name) {
		return false
	}

	for _, r := range name {
		if r < 0x20 || r == 0x7f {
			return false
		}
		if unicode.IsSpace(r) && r != ' ' {
			return false
		}
	}

	return true
}
