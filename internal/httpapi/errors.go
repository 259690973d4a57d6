package httpapi

import (
	"encoding/json"
	"net/http"

	"assistd/internal/backend"
	"assistd/internal/queue"
	"assistd/internal/workflow"
	"assistd/pkg/types"
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

// statusForError maps well-known service errors to HTTP status codes.
func statusForError(err error) int {
	switch {
	case queue.IsNotFound(err):
		return http.StatusNotFound
	case queue.IsNotFinished(err):
		return http.StatusConflict
	case queue.IsGenerationFailed(err):
		return http.StatusBadGateway
	case backend.IsUnknownOperation(err), workflow.IsUnknownReport(err):
		return http.StatusBadRequest
	}
	if he, ok := err.(HTTPError); ok {
		return he.StatusCode()
	}
	return http.StatusInternalServerError
}
