package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/cocrafter/docstore"
)

type Service interface {
	Hierarchy(ctx context.Context) (*docstore.HierarchyNode, error)
	CreateFolder(ctx context.Context, parentID string) (docstore.Folder, error)
	RenameFolder(ctx context.Context, id, name string) error
	DeleteFolder(ctx context.Context, id string) error
	UploadDocument(ctx context.Context, parentID, filename string, content io.Reader) (docstore.Document, error)
	FetchDocument(ctx context.Context, id string) (docstore.Document, io.ReadCloser, error)
	RenameDocument(ctx context.Context, id, newName string) (docstore.Document, error)
	DeleteDocument(ctx context.Context, id string) error
}

type CORSConfig struct {
	Enabled          bool     `mapstructure:"enabled"`
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	ExposedHeaders   []string `mapstructure:"exposed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

type HandlerConfig struct {
	// MaxUploadSize caps document upload bodies in bytes. Zero means no cap.
	MaxUploadSize int64
	CORS          CORSConfig
}

// Handler provides HTTP handlers for folder and document operations.
type Handler struct {
	config  HandlerConfig
	service Service
}

// NewHandler creates a new Handler with the given configuration and service.
func NewHandler(config *HandlerConfig, service Service) *Handler {
	return &Handler{
		config:  *config,
		service: service,
	}
}

// Router returns an http.Handler with the API routes mounted under /api/v2.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(RequestLogger)

	if h.config.CORS.Enabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   h.config.CORS.AllowedOrigins,
			AllowedMethods:   h.config.CORS.AllowedMethods,
			AllowedHeaders:   h.config.CORS.AllowedHeaders,
			ExposedHeaders:   h.config.CORS.ExposedHeaders,
			AllowCredentials: h.config.CORS.AllowCredentials,
			MaxAge:           h.config.CORS.MaxAge,
		}))
	}

	r.Route("/api/v2", func(r chi.Router) {
		r.Route("/folders", func(r chi.Router) {
			r.Get("/", h.handleHierarchy)
			r.Post("/", h.handleCreateFolder)
			r.Patch("/{id}", h.handleRenameFolder)
			r.Delete("/{id}", h.handleDeleteFolder)
		})

		r.Route("/documents", func(r chi.Router) {
			r.Post("/", h.handleUploadDocument)
			r.Get("/{id}", h.handleFetchDocument)
			r.Patch("/{id}", h.handleRenameDocument)
			r.Delete("/{id}", h.handleDeleteDocument)
		})
	})

	return r
}

func (h *Handler) handleHierarchy(w http.ResponseWriter, r *http.Request) {
	root, err := h.service.Hierarchy(r.Context())
	if err != nil {
		HandleError(w, err)
		return
	}

	_ = WriteJSON(w, http.StatusOK, root)
}

type createFolderRequest struct {
	ParentID string `json:"parentId"`
}

func (h *Handler) handleCreateFolder(w http.ResponseWriter, r *http.Request) {
	var req createFolderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_input", "Malformed JSON body")
		return
	}

	if req.ParentID == "" {
		req.ParentID = docstore.RootFolderID
	}

	folder, err := h.service.CreateFolder(r.Context(), req.ParentID)
	if err != nil {
		HandleError(w, err)
		return
	}

	_ = WriteJSON(w, http.StatusOK, folder)
}

type renameRequest struct {
	Name string `json:"name"`
}

type renamedFolderResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (h *Handler) handleRenameFolder(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req renameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_input", "Malformed JSON body")
		return
	}

	if err := h.service.RenameFolder(r.Context(), id, req.Name); err != nil {
		HandleError(w, err)
		return
	}

	_ = WriteJSON(w, http.StatusOK, renamedFolderResponse{ID: id, Name: req.Name})
}

func (h *Handler) handleDeleteFolder(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.service.DeleteFolder(r.Context(), id); err != nil {
		HandleError(w, err)
		return
	}

	_ = WriteJSON(w, http.StatusOK, MessageResponse{Message: "Folder deleted"})
}

func (h *Handler) handleUploadDocument(w http.ResponseWriter, r *http.Request) {
	if h.config.MaxUploadSize > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.config.MaxUploadSize)
	}

	file, header, err := r.FormFile("data")
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			WriteError(w, http.StatusRequestEntityTooLarge, "too_large", "Upload exceeds the size limit")
			return
		}
		WriteError(w, http.StatusBadRequest, "invalid_input", "Missing multipart file field 'data'")
		return
	}
	defer func() { _ = file.Close() }()

	parentID := r.FormValue("parentId")
	if parentID == "" {
		parentID = docstore.RootFolderID
	}

	doc, err := h.service.UploadDocument(r.Context(), parentID, header.Filename, file)
	if err != nil {
		HandleError(w, err)
		return
	}

	_ = WriteJSON(w, http.StatusOK, doc)
}

func (h *Handler) handleFetchDocument(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	doc, content, err := h.service.FetchDocument(r.Context(), id)
	if err != nil {
		HandleError(w, err)
		return
	}
	defer func() { _ = content.Close() }()

	disposition := mime.FormatMediaType("attachment", map[string]string{"filename": doc.Name})
	w.Header().Set("Content-Disposition", disposition)
	w.Header().Set("Content-Type", "application/octet-stream")
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, content); err != nil {
		// Headers are already written. Nothing to do beyond logging.
		HandleStreamError(r, err)
	}
}

func (h *Handler) handleRenameDocument(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req renameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_input", "Malformed JSON body")
		return
	}

	doc, err := h.service.RenameDocument(r.Context(), id, req.Name)
	if err != nil {
		HandleError(w, err)
		return
	}

	_ = WriteJSON(w, http.StatusOK, doc)
}

func (h *Handler) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.service.DeleteDocument(r.Context(), id); err != nil {
		HandleError(w, err)
		return
	}

	_ = WriteJSON(w, http.StatusOK, MessageResponse{Message: "Document deleted"})
}
