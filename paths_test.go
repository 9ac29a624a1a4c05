package docstore_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cocrafter/docstore"
)

func TestDocumentKey(t *testing.T) {
	assert.Equal(t, "documents/Document-1/report.pdf", docstore.DocumentKey("Document-1", "report.pdf"))
	assert.Equal(t, "documents/Document-12/a b.txt", docstore.DocumentKey("Document-12", "a b.txt"))
}

func TestRenamedKey(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		newName string
		want    string
	}{
		{
			name:    "replaces final segment",
			key:     "documents/Document-1/report.pdf",
			newName: "final.pdf",
			want:    "documents/Document-1/final.pdf",
		},
		{
			name:    "same name is a no-op",
			key:     "documents/Document-1/report.pdf",
			newName: "report.pdf",
			want:    "documents/Document-1/report.pdf",
		},
		{
			name:    "key without separators",
			key:     "orphan",
			newName: "renamed",
			want:    "renamed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, docstore.RenamedKey(tt.key, tt.newName))
		})
	}
}

func TestIsValidName(t *testing.T) {
	valid := []string{
		"report.pdf",
		"with space.txt",
		"ünïcödé.md",
		"no-extension",
		strings.Repeat("a", 255),
	}
	for _, name := range valid {
		t.Run("valid "+name, func(t *testing.T) {
			assert.True(t, docstore.IsValidName(name))
		})
	}

	invalid := map[string]string{
		"empty":             "",
		"dot":               ".",
		"dotdot":            "..",
		"slash":             "a/b.txt",
		"backslash":         `a\b.txt`,
		"question mark":     "what?.txt",
		"hash":              "a#b.txt",
		"tilde":             "a~b.txt",
		"null byte":         "a\x00b",
		"control character": "a\x01b",
		"newline":           "a\nb",
		"tab":               "a\tb",
		"del":               "a\x7fb",
		"too long":          strings.Repeat("a", 256),
		"invalid utf8":      "a\xff\xfeb",
	}
	for label, name := range invalid {
		t.Run("invalid "+label, func(t *testing.T) {
			assert.False(t, docstore.IsValidName(name))
		})
	}
}
