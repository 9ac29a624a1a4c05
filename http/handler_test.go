package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/cocrafter/docstore"
	docstorehttp "github.com/cocrafter/docstore/http"
)

type SpyService struct {
	mock.Mock
}

func (s *SpyService) Hierarchy(ctx context.Context) (*docstore.HierarchyNode, error) {
	args := s.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*docstore.HierarchyNode), args.Error(1)
}

func (s *SpyService) CreateFolder(ctx context.Context, parentID string) (docstore.Folder, error) {
	args := s.Called(ctx, parentID)
	return args.Get(0).(docstore.Folder), args.Error(1)
}

func (s *SpyService) RenameFolder(ctx context.Context, id, name string) error {
	args := s.Called(ctx, id, name)
	return args.Error(0)
}

func (s *SpyService) DeleteFolder(ctx context.Context, id string) error {
	args := s.Called(ctx, id)
	return args.Error(0)
}

func (s *SpyService) UploadDocument(ctx context.Context, parentID, filename string, content io.Reader) (docstore.Document, error) {
	args := s.Called(ctx, parentID, filename, content)
	return args.Get(0).(docstore.Document), args.Error(1)
}

func (s *SpyService) FetchDocument(ctx context.Context, id string) (docstore.Document, io.ReadCloser, error) {
	args := s.Called(ctx, id)
	if args.Get(1) == nil {
		return args.Get(0).(docstore.Document), nil, args.Error(2)
	}
	return args.Get(0).(docstore.Document), args.Get(1).(io.ReadCloser), args.Error(2)
}

func (s *SpyService) RenameDocument(ctx context.Context, id, newName string) (docstore.Document, error) {
	args := s.Called(ctx, id, newName)
	return args.Get(0).(docstore.Document), args.Error(1)
}

func (s *SpyService) DeleteDocument(ctx context.Context, id string) error {
	args := s.Called(ctx, id)
	return args.Error(0)
}

func newHandler(t *testing.T, cfg docstorehttp.HandlerConfig) (http.Handler, *SpyService) {
	t.Helper()
	service := new(SpyService)
	handler := docstorehttp.NewHandler(&cfg, service)
	return handler.Router(), service
}

func strptr(s string) *string { return &s }

func decodeJSON[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func TestHandleHierarchy(t *testing.T) {
	t.Run("returns tree", func(t *testing.T) {
		router, service := newHandler(t, docstorehttp.HandlerConfig{})

		root := &docstore.HierarchyNode{
			ID:        "root",
			Name:      "root",
			Children:  []*docstore.HierarchyNode{},
			Documents: []docstore.Document{},
		}
		service.On("Hierarchy", mock.Anything).Return(root, nil)

		req := httptest.NewRequest(http.MethodGet, "/api/v2/folders", http.NoBody)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		got := decodeJSON[docstore.HierarchyNode](t, rec)
		assert.Equal(t, "root", got.ID)
	})

	t.Run("integrity failure maps to 500", func(t *testing.T) {
		router, service := newHandler(t, docstorehttp.HandlerConfig{})

		service.On("Hierarchy", mock.Anything).Return(nil, docstore.ErrIntegrity)

		req := httptest.NewRequest(http.MethodGet, "/api/v2/folders", http.NoBody)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		got := decodeJSON[docstorehttp.ErrorResponse](t, rec)
		assert.Equal(t, "internal_error", got.Error)
	})
}

func TestHandleCreateFolder(t *testing.T) {
	t.Run("creates under given parent", func(t *testing.T) {
		router, service := newHandler(t, docstorehttp.HandlerConfig{})

		want := docstore.Folder{ID: "Folder-1-1", Name: "Folder-1-1", ParentID: strptr("Folder-1")}
		service.On("CreateFolder", mock.Anything, "Folder-1").Return(want, nil)

		req := httptest.NewRequest(http.MethodPost, "/api/v2/folders", strings.NewReader(`{"parentId":"Folder-1"}`))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		got := decodeJSON[docstore.Folder](t, rec)
		assert.Equal(t, want, got)
	})

	t.Run("empty parent defaults to root", func(t *testing.T) {
		router, service := newHandler(t, docstorehttp.HandlerConfig{})

		want := docstore.Folder{ID: "Folder-1", Name: "Folder-1", ParentID: strptr("root")}
		service.On("CreateFolder", mock.Anything, "root").Return(want, nil)

		req := httptest.NewRequest(http.MethodPost, "/api/v2/folders", strings.NewReader(`{}`))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		service.AssertCalled(t, "CreateFolder", mock.Anything, "root")
	})

	t.Run("malformed body", func(t *testing.T) {
		router, service := newHandler(t, docstorehttp.HandlerConfig{})

		req := httptest.NewRequest(http.MethodPost, "/api/v2/folders", strings.NewReader(`{`))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		service.AssertNotCalled(t, "CreateFolder", mock.Anything, mock.Anything)
	})

	t.Run("unknown parent maps to 404", func(t *testing.T) {
		router, service := newHandler(t, docstorehttp.HandlerConfig{})

		service.On("CreateFolder", mock.Anything, "Folder-99").Return(docstore.Folder{}, docstore.ErrNotFound)

		req := httptest.NewRequest(http.MethodPost, "/api/v2/folders", strings.NewReader(`{"parentId":"Folder-99"}`))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestHandleRenameFolder(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		router, service := newHandler(t, docstorehttp.HandlerConfig{})

		service.On("RenameFolder", mock.Anything, "Folder-1", "reports").Return(nil)

		req := httptest.NewRequest(http.MethodPatch, "/api/v2/folders/Folder-1", strings.NewReader(`{"name":"reports"}`))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		got := decodeJSON[map[string]string](t, rec)
		assert.Equal(t, "Folder-1", got["id"])
		assert.Equal(t, "reports", got["name"])
	})

	t.Run("invalid name maps to 400", func(t *testing.T) {
		router, service := newHandler(t, docstorehttp.HandlerConfig{})

		service.On("RenameFolder", mock.Anything, "Folder-1", "a/b").Return(docstore.ErrInvalidInput)

		req := httptest.NewRequest(http.MethodPatch, "/api/v2/folders/Folder-1", strings.NewReader(`{"name":"a/b"}`))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		got := decodeJSON[docstorehttp.ErrorResponse](t, rec)
		assert.Equal(t, "invalid_input", got.Error)
	})
}

func TestHandleDeleteFolder(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		router, service := newHandler(t, docstorehttp.HandlerConfig{})

		service.On("DeleteFolder", mock.Anything, "Folder-1").Return(nil)

		req := httptest.NewRequest(http.MethodDelete, "/api/v2/folders/Folder-1", http.NoBody)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("root maps to 400 root_immutable", func(t *testing.T) {
		router, service := newHandler(t, docstorehttp.HandlerConfig{})

		service.On("DeleteFolder", mock.Anything, "root").Return(docstore.ErrRootImmutable)

		req := httptest.NewRequest(http.MethodDelete, "/api/v2/folders/root", http.NoBody)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		got := decodeJSON[docstorehttp.ErrorResponse](t, rec)
		assert.Equal(t, "root_immutable", got.Error)
	})

	t.Run("not found maps to 404", func(t *testing.T) {
		router, service := newHandler(t, docstorehttp.HandlerConfig{})

		service.On("DeleteFolder", mock.Anything, "Folder-99").Return(docstore.ErrNotFound)

		req := httptest.NewRequest(http.MethodDelete, "/api/v2/folders/Folder-99", http.NoBody)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func multipartBody(t *testing.T, filename, content, parentID string) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	part, err := mw.CreateFormFile("data", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)

	if parentID != "" {
		require.NoError(t, mw.WriteField("parentId", parentID))
	}
	require.NoError(t, mw.Close())

	return &buf, mw.FormDataContentType()
}

func TestHandleUploadDocument(t *testing.T) {
	t.Run("uploads multipart file", func(t *testing.T) {
		router, service := newHandler(t, docstorehttp.HandlerConfig{})

		want := docstore.Document{ID: "Document-1", Name: "a.txt", FolderID: "Folder-1", Path: "documents/Document-1/a.txt"}
		service.On("UploadDocument", mock.Anything, "Folder-1", "a.txt", mock.Anything).Return(want, nil)

		body, contentType := multipartBody(t, "a.txt", "hello", "Folder-1")
		req := httptest.NewRequest(http.MethodPost, "/api/v2/documents", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		got := decodeJSON[docstore.Document](t, rec)
		assert.Equal(t, want, got)
	})

	t.Run("missing parentId defaults to root", func(t *testing.T) {
		router, service := newHandler(t, docstorehttp.HandlerConfig{})

		want := docstore.Document{ID: "Document-1", Name: "a.txt", FolderID: "root", Path: "documents/Document-1/a.txt"}
		service.On("UploadDocument", mock.Anything, "root", "a.txt", mock.Anything).Return(want, nil)

		body, contentType := multipartBody(t, "a.txt", "hello", "")
		req := httptest.NewRequest(http.MethodPost, "/api/v2/documents", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		service.AssertCalled(t, "UploadDocument", mock.Anything, "root", "a.txt", mock.Anything)
	})

	t.Run("missing file field", func(t *testing.T) {
		router, service := newHandler(t, docstorehttp.HandlerConfig{})

		req := httptest.NewRequest(http.MethodPost, "/api/v2/documents", strings.NewReader("not multipart"))
		req.Header.Set("Content-Type", "text/plain")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		service.AssertNotCalled(t, "UploadDocument", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("oversize upload maps to 413", func(t *testing.T) {
		router, service := newHandler(t, docstorehttp.HandlerConfig{MaxUploadSize: 16})

		body, contentType := multipartBody(t, "a.txt", strings.Repeat("x", 1024), "")
		req := httptest.NewRequest(http.MethodPost, "/api/v2/documents", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
		service.AssertNotCalled(t, "UploadDocument", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

type stubReadCloser struct {
	io.Reader
	closed bool
}

func (s *stubReadCloser) Close() error {
	s.closed = true
	return nil
}

func TestHandleFetchDocument(t *testing.T) {
	t.Run("streams content with attachment disposition", func(t *testing.T) {
		router, service := newHandler(t, docstorehttp.HandlerConfig{})

		doc := docstore.Document{ID: "Document-1", Name: "a.txt", FolderID: "root", Path: "documents/Document-1/a.txt"}
		content := &stubReadCloser{Reader: strings.NewReader("hello")}
		service.On("FetchDocument", mock.Anything, "Document-1").Return(doc, content, nil)

		req := httptest.NewRequest(http.MethodGet, "/api/v2/documents/Document-1", http.NoBody)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "hello", rec.Body.String())
		assert.Contains(t, rec.Header().Get("Content-Disposition"), `attachment`)
		assert.Contains(t, rec.Header().Get("Content-Disposition"), `a.txt`)
		assert.True(t, content.closed)
	})

	t.Run("unknown document maps to 404", func(t *testing.T) {
		router, service := newHandler(t, docstorehttp.HandlerConfig{})

		service.On("FetchDocument", mock.Anything, "Document-99").Return(docstore.Document{}, nil, docstore.ErrNotFound)

		req := httptest.NewRequest(http.MethodGet, "/api/v2/documents/Document-99", http.NoBody)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("missing blob maps to 500", func(t *testing.T) {
		router, service := newHandler(t, docstorehttp.HandlerConfig{})

		service.On("FetchDocument", mock.Anything, "Document-1").Return(docstore.Document{}, nil, docstore.ErrIntegrity)

		req := httptest.NewRequest(http.MethodGet, "/api/v2/documents/Document-1", http.NoBody)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

func TestHandleRenameDocument(t *testing.T) {
	t.Run("returns updated document", func(t *testing.T) {
		router, service := newHandler(t, docstorehttp.HandlerConfig{})

		want := docstore.Document{ID: "Document-1", Name: "b.txt", FolderID: "root", Path: "documents/Document-1/b.txt"}
		service.On("RenameDocument", mock.Anything, "Document-1", "b.txt").Return(want, nil)

		req := httptest.NewRequest(http.MethodPatch, "/api/v2/documents/Document-1", strings.NewReader(`{"name":"b.txt"}`))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		got := decodeJSON[docstore.Document](t, rec)
		assert.Equal(t, want, got)
	})

	t.Run("storage failure maps to 500", func(t *testing.T) {
		router, service := newHandler(t, docstorehttp.HandlerConfig{})

		service.On("RenameDocument", mock.Anything, "Document-1", "b.txt").Return(docstore.Document{}, docstore.ErrStorage)

		req := httptest.NewRequest(http.MethodPatch, "/api/v2/documents/Document-1", strings.NewReader(`{"name":"b.txt"}`))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		got := decodeJSON[docstorehttp.ErrorResponse](t, rec)
		assert.Equal(t, "storage_error", got.Error)
	})
}

func TestHandleDeleteDocument(t *testing.T) {
	router, service := newHandler(t, docstorehttp.HandlerConfig{})

	service.On("DeleteDocument", mock.Anything, "Document-1").Return(nil)

	req := httptest.NewRequest(http.MethodDelete, "/api/v2/documents/Document-1", http.NoBody)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	got := decodeJSON[docstorehttp.MessageResponse](t, rec)
	assert.Equal(t, "Document deleted", got.Message)
}

func TestCORS(t *testing.T) {
	router, _ := newHandler(t, docstorehttp.HandlerConfig{
		CORS: docstorehttp.CORSConfig{
			Enabled:        true,
			AllowedOrigins: []string{"https://app.example.com"},
			AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE"},
		},
	})

	req := httptest.NewRequest(http.MethodOptions, "/api/v2/folders", http.NoBody)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, "https://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestHandleErrorUnknown(t *testing.T) {
	rec := httptest.NewRecorder()
	docstorehttp.HandleError(rec, errors.New("boom"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var got docstorehttp.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "internal_error", got.Error)
}
