package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"webvideo/internal/panel"
	"webvideo/internal/renderer"
	"webvideo/pkg/types"
)

// HTTPError allows services to provide an HTTP status code for an error.
type HTTPError interface {
	error
	StatusCode() int
}

// writeJSONError writes a consistent JSON error payload.
func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(types.ErrorResponse{Error: msg, Code: status})
}

// statusFor maps service errors to HTTP status codes.
func statusFor(err error) int {
	var he HTTPError
	switch {
	case panel.IsPanelNotFound(err):
		return http.StatusNotFound
	case panel.IsNotReady(err), errors.Is(err, renderer.ErrNotReady), errors.Is(err, renderer.ErrDisposed):
		return http.StatusConflict
	case errors.As(err, &he):
		return he.StatusCode()
	}
	return http.StatusInternalServerError
}

func writeServiceError(w http.ResponseWriter, err error) {
	writeJSONError(w, statusFor(err), err.Error())
}
