package clientcli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
)

// Formatter formats results for output.
type Formatter interface {
	FormatTree(w io.Writer, root *TreeNode) error
	FormatFolder(w io.Writer, folder Folder) error
	FormatDocument(w io.Writer, doc Document) error
	FormatDownload(w io.Writer, result *DownloadResult) error
	FormatMessage(w io.Writer, message string) error
	FormatProfileList(w io.Writer, profiles []Profile, defaultName string) error
}

// NewFormatter returns the appropriate formatter based on flags.
func NewFormatter(jsonOutput, quiet bool) Formatter {
	if jsonOutput {
		return &JSONFormatter{}
	}
	return &HumanFormatter{Quiet: quiet}
}

// HumanFormatter outputs human-readable text.
type HumanFormatter struct {
	Quiet bool
}

// FormatTree renders the hierarchy as an indented tree.
func (f *HumanFormatter) FormatTree(w io.Writer, root *TreeNode) error {
	if root == nil {
		_, _ = fmt.Fprintln(w, "No folders found")
		return nil
	}

	_, _ = fmt.Fprintf(w, "%s (%s)\n", root.Name, root.ID)
	printTreeChildren(w, root, "")
	return nil
}

func printTreeChildren(w io.Writer, node *TreeNode, prefix string) {
	entries := len(node.Children) + len(node.Documents)
	i := 0

	for _, child := range node.Children {
		i++
		connector, childPrefix := treeBranch(prefix, i == entries)
		_, _ = fmt.Fprintf(w, "%s%s (%s)\n", connector, child.Name, child.ID)
		printTreeChildren(w, child, childPrefix)
	}

	for _, doc := range node.Documents {
		i++
		connector, _ := treeBranch(prefix, i == entries)
		_, _ = fmt.Fprintf(w, "%s%s [%s]\n", connector, doc.Name, doc.ID)
	}
}

func treeBranch(prefix string, last bool) (connector, childPrefix string) {
	if last {
		return prefix + "└── ", prefix + "    "
	}
	return prefix + "├── ", prefix + "│   "
}

// FormatFolder formats a created folder as human-readable text.
func (f *HumanFormatter) FormatFolder(w io.Writer, folder Folder) error {
	if !f.Quiet {
		parent := ""
		if folder.ParentID != nil {
			parent = *folder.ParentID
		}
		_, _ = fmt.Fprintf(w, "Created folder: %s (parent: %s)\n", folder.ID, parent)
	}
	return nil
}

// FormatDocument formats a document as human-readable text.
func (f *HumanFormatter) FormatDocument(w io.Writer, doc Document) error {
	if !f.Quiet {
		_, _ = fmt.Fprintf(w, "%s: %s (folder: %s)\n", doc.ID, doc.Name, doc.FolderID)
	}
	return nil
}

// FormatDownload formats a download result as human-readable text.
func (f *HumanFormatter) FormatDownload(w io.Writer, result *DownloadResult) error {
	if !f.Quiet {
		if result.LocalPath == "-" {
			_, _ = fmt.Fprintf(w, "Downloaded: %s (%s)\n", result.Name, formatSize(result.Size))
		} else {
			_, _ = fmt.Fprintf(w, "Downloaded: %s -> %s (%s)\n", result.Name, result.LocalPath, formatSize(result.Size))
		}
	}
	return nil
}

// FormatMessage prints a plain acknowledgement message.
func (f *HumanFormatter) FormatMessage(w io.Writer, message string) error {
	if !f.Quiet {
		_, _ = fmt.Fprintln(w, message)
	}
	return nil
}

// FormatProfileList formats the profile list as human-readable text.
func (f *HumanFormatter) FormatProfileList(w io.Writer, profiles []Profile, defaultName string) error {
	if len(profiles) == 0 {
		_, _ = fmt.Fprintln(w, "No profiles configured")
		return nil
	}

	for i := range profiles {
		p := &profiles[i]
		marker := " "
		if p.Name == defaultName {
			marker = "*"
		}
		_, _ = fmt.Fprintf(w, "%s %s\t%s\n", marker, p.Name, p.Endpoint)
	}
	return nil
}

// JSONFormatter outputs newline-delimited JSON.
type JSONFormatter struct{}

func (f *JSONFormatter) FormatTree(w io.Writer, root *TreeNode) error {
	return json.NewEncoder(w).Encode(root)
}

func (f *JSONFormatter) FormatFolder(w io.Writer, folder Folder) error {
	return json.NewEncoder(w).Encode(folder)
}

func (f *JSONFormatter) FormatDocument(w io.Writer, doc Document) error {
	return json.NewEncoder(w).Encode(doc)
}

func (f *JSONFormatter) FormatDownload(w io.Writer, result *DownloadResult) error {
	return json.NewEncoder(w).Encode(result)
}

func (f *JSONFormatter) FormatMessage(w io.Writer, message string) error {
	return json.NewEncoder(w).Encode(map[string]string{"message": message})
}

func (f *JSONFormatter) FormatProfileList(w io.Writer, profiles []Profile, defaultName string) error {
	type profileOut struct {
		Profile
		IsDefault bool `json:"is_default"`
	}

	out := make([]profileOut, len(profiles))
	for i := range profiles {
		out[i] = profileOut{Profile: profiles[i], IsDefault: profiles[i].Name == defaultName}
	}
	return json.NewEncoder(w).Encode(out)
}

// formatSize renders a byte count using binary units.
func formatSize(size int64) string {
	const unit = 1024
	if size < unit {
		return strconv.FormatInt(size, 10) + " B"
	}

	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(size)/float64(div), "KMGTPE"[exp])
}
