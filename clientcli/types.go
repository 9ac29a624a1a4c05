package clientcli

// Folder mirrors a folder row returned by the server.
type Folder struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	ParentID *string `json:"parentId"`
}

// Document mirrors a document row returned by the server.
type Document struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	FolderID string `json:"folderId"`
	Path     string `json:"path"`
}

// TreeNode mirrors a node of the hierarchy returned by the server.
type TreeNode struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	ParentID  *string     `json:"parentId"`
	Children  []*TreeNode `json:"children"`
	Documents []Document  `json:"documents"`
}

// UploadOptions configures an upload operation.
type UploadOptions struct {
	LocalPath string
	FolderID  string // empty means the root folder
	Name      string // optional, defaults to the local file name
}

// DownloadOptions configures a download operation.
type DownloadOptions struct {
	DocumentID string
	LocalPath  string // empty = derive from document name, "-" = stdout
}

// DownloadResult represents the result of downloading a document.
type DownloadResult struct {
	DocumentID string `json:"document_id"`
	Name       string `json:"name"`
	LocalPath  string `json:"local_path"`
	Size       int64  `json:"size_bytes"`
}

// errorResponse mirrors the JSON error body returned by the server.
type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
