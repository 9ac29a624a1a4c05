package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/cocrafter/docstore"
)

// ErrorResponse represents a JSON error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// MessageResponse represents a JSON acknowledgement response
type MessageResponse struct {
	Message string `json:"message"`
}

// WriteError writes a JSON error response
func WriteError(w http.ResponseWriter, code int, errCode, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(ErrorResponse{
		Error:   errCode,
		Message: message,
	}); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}

// HandleError writes appropriate error response based on error type
func HandleError(w http.ResponseWriter, err error) {
	slog.Error("request error", "error", err)

	if errors.Is(err, docstore.ErrNotFound) {
		WriteError(w, http.StatusNotFound, "not_found", "Resource not found")
		return
	}

	if errors.Is(err, docstore.ErrRootImmutable) {
		WriteError(w, http.StatusBadRequest, "root_immutable", "The root folder cannot be renamed or deleted")
		return
	}

	if errors.Is(err, docstore.ErrInvalidInput) {
		WriteError(w, http.StatusBadRequest, "invalid_input", "Invalid input")
		return
	}

	if errors.Is(err, docstore.ErrStorage) {
		WriteError(w, http.StatusInternalServerError, "storage_error", "Blob storage operation failed")
		return
	}

	// ErrIntegrity, ErrConflict and everything else surface as internal
	// errors: the client cannot fix them by changing the request.
	WriteError(w, http.StatusInternalServerError, "internal_error", "Internal server error")
}

// WriteJSON writes a JSON response
func WriteJSON(w http.ResponseWriter, code int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	return json.NewEncoder(w).Encode(data)
}
