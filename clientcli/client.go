package clientcli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// DefaultTimeout is the default HTTP client timeout.
const DefaultTimeout = 30 * time.Second

// Client performs operations against a docstore server.
type Client struct {
	endpoint   string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// New creates a new Client with the given config and options.
func New(cfg *Config, opts ...Option) (*Client, error) {
	if cfg == nil {
		return nil, ErrConfigRequired
	}

	cfg = cfg.WithDefaults()

	c := &Client{
		endpoint:   strings.TrimSuffix(cfg.Endpoint, "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Hierarchy fetches the full folder tree.
func (c *Client) Hierarchy(ctx context.Context) (*TreeNode, error) {
	var root TreeNode
	if err := c.doJSON(ctx, http.MethodGet, "/api/v2/folders", nil, &root); err != nil {
		return nil, err
	}
	return &root, nil
}

// CreateFolder creates a folder under the given parent.
// An empty parentID targets the root folder.
func (c *Client) CreateFolder(ctx context.Context, parentID string) (Folder, error) {
	body := map[string]string{"parentId": parentID}

	var folder Folder
	if err := c.doJSON(ctx, http.MethodPost, "/api/v2/folders", body, &folder); err != nil {
		return Folder{}, err
	}
	return folder, nil
}

// RenameFolder renames a folder.
func (c *Client) RenameFolder(ctx context.Context, id, name string) error {
	if id == "" {
		return fmt.Errorf("rename folder: %w", ErrEmptyID)
	}
	if name == "" {
		return fmt.Errorf("rename folder: %w", ErrEmptyName)
	}

	body := map[string]string{"name": name}
	return c.doJSON(ctx, http.MethodPatch, "/api/v2/folders/"+id, body, nil)
}

// DeleteFolder deletes a folder and everything beneath it.
func (c *Client) DeleteFolder(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("delete folder: %w", ErrEmptyID)
	}
	return c.doJSON(ctx, http.MethodDelete, "/api/v2/folders/"+id, nil, nil)
}

// Upload uploads a local file as a document.
func (c *Client) Upload(ctx context.Context, opts UploadOptions) (Document, error) {
	if opts.LocalPath == "" {
		return Document{}, fmt.Errorf("upload: %w", ErrEmptyPath)
	}

	file, err := os.Open(opts.LocalPath) //#nosec G304 -- localPath is user-provided input
	if err != nil {
		return Document{}, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	name := opts.Name
	if name == "" {
		name = filepath.Base(opts.LocalPath)
	}

	// The whole multipart body is buffered so the request has a known
	// content length. Documents are expected to be modest in size.
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	part, err := mw.CreateFormFile("data", name)
	if err != nil {
		return Document{}, fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return Document{}, fmt.Errorf("read file: %w", err)
	}

	if opts.FolderID != "" {
		if err := mw.WriteField("parentId", opts.FolderID); err != nil {
			return Document{}, fmt.Errorf("write form field: %w", err)
		}
	}

	if err := mw.Close(); err != nil {
		return Document{}, fmt.Errorf("close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/api/v2/documents", &buf)
	if err != nil {
		return Document{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Document{}, fmt.Errorf("do request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return Document{}, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return Document{}, parseServerError(resp.StatusCode, respBody)
	}

	var doc Document
	if err := json.Unmarshal(respBody, &doc); err != nil {
		return Document{}, fmt.Errorf("parse response: %w", err)
	}

	return doc, nil
}

// Download downloads a document from the server.
// If opts.LocalPath is "-", the content is returned via the io.ReadCloser and must be closed by the caller.
// Otherwise, the content is written to the file and the io.ReadCloser is nil.
func (c *Client) Download(ctx context.Context, opts DownloadOptions) (*DownloadResult, io.ReadCloser, error) {
	if opts.DocumentID == "" {
		return nil, nil, fmt.Errorf("download: %w", ErrEmptyID)
	}

	url := c.endpoint + "/api/v2/documents/" + opts.DocumentID

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("do request: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		return nil, nil, parseServerError(resp.StatusCode, body)
	}

	name := filenameFromDisposition(resp.Header.Get("Content-Disposition"))

	result := &DownloadResult{
		DocumentID: opts.DocumentID,
		Name:       name,
		Size:       resp.ContentLength,
	}

	// If stdout requested, return the body for the caller to handle
	if opts.LocalPath == "-" {
		result.LocalPath = "-"
		return result, resp.Body, nil
	}

	localPath := opts.LocalPath
	if localPath == "" {
		localPath = name
		if localPath == "" {
			localPath = opts.DocumentID
		}
	}
	result.LocalPath = localPath

	dir := filepath.Dir(localPath)
	if dir != "" && dir != "." {
		if mkdirErr := os.MkdirAll(dir, 0o750); mkdirErr != nil {
			_ = resp.Body.Close()
			return nil, nil, fmt.Errorf("create directory: %w", mkdirErr)
		}
	}

	file, createErr := os.Create(localPath) //#nosec G304 -- localPath is user-provided input
	if createErr != nil {
		_ = resp.Body.Close()
		return nil, nil, fmt.Errorf("create file: %w", createErr)
	}

	written, copyErr := io.Copy(file, resp.Body)
	_ = resp.Body.Close()
	if copyErr != nil {
		_ = file.Close()
		return nil, nil, fmt.Errorf("write file: %w", copyErr)
	}

	if closeErr := file.Close(); closeErr != nil {
		return nil, nil, fmt.Errorf("close file: %w", closeErr)
	}

	result.Size = written
	return result, nil, nil
}

// RenameDocument renames a document.
func (c *Client) RenameDocument(ctx context.Context, id, name string) (Document, error) {
	if id == "" {
		return Document{}, fmt.Errorf("rename document: %w", ErrEmptyID)
	}
	if name == "" {
		return Document{}, fmt.Errorf("rename document: %w", ErrEmptyName)
	}

	body := map[string]string{"name": name}

	var doc Document
	if err := c.doJSON(ctx, http.MethodPatch, "/api/v2/documents/"+id, body, &doc); err != nil {
		return Document{}, err
	}
	return doc, nil
}

// DeleteDocument deletes a document.
func (c *Client) DeleteDocument(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("delete document: %w", ErrEmptyID)
	}
	return c.doJSON(ctx, http.MethodDelete, "/api/v2/documents/"+id, nil, nil)
}

// doJSON performs a JSON request and decodes the JSON response into out.
// Pass nil for body on body-less requests and nil for out to discard the
// response.
func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) error {
	var reqBody io.Reader = http.NoBody
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint+path, reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return parseServerError(resp.StatusCode, respBody)
	}

	if out == nil {
		return nil
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}

	return nil
}

// filenameFromDisposition extracts the filename parameter from a
// Content-Disposition header. Returns "" if absent or malformed.
func filenameFromDisposition(header string) string {
	const marker = "filename="
	idx := strings.Index(header, marker)
	if idx < 0 {
		return ""
	}

	name := header[idx+len(marker):]
	name = strings.Trim(name, `"`)

	// Strip any path components a hostile server might send.
	return filepath.Base(filepath.Clean(name))
}

// parseServerError converts an HTTP error response into an APIError.
func parseServerError(statusCode int, body []byte) error {
	var errResp errorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != "" {
		return &APIError{
			StatusCode: statusCode,
			Code:       errResp.Error,
			Body:       errResp.Message,
		}
	}

	return &APIError{
		StatusCode: statusCode,
		Body:       string(body),
	}
}

// APIError represents an error response from the server.
type APIError struct {
	StatusCode int
	Code       string
	Body       string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return "server error: " + strconv.Itoa(e.StatusCode) + " (" + e.Code + ") - " + e.Body
	}
	return "server error: " + strconv.Itoa(e.StatusCode) + " - " + e.Body
}

// Is reports whether target matches this error.
// It matches if target is an *APIError with the same StatusCode.
func (e *APIError) Is(target error) bool {
	var t *APIError
	ok := errors.As(target, &t)
	if !ok {
		return false
	}
	return t.StatusCode == e.StatusCode
}
