package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"topicpress/internal/content"
	"topicpress/internal/integrity"
	"topicpress/internal/media"
)

// errorResponse is the JSON body of every failed API call.
type errorResponse struct {
	Error      string `json:"error"`
	TopicCount *int   `json:"topicCount,omitempty"`
}

// writeJSONError writes {"error": msg} with status.
func writeJSONError(w http.ResponseWriter, r *http.Request, msg string, status int) {
	render.Status(r, status)
	render.JSON(w, r, errorResponse{Error: msg})
}

// writeError maps a service error to a status code and a short message.
// notFound is the message used for content.ErrNotFound; fallback is shown
// for anything unexpected, whose details only go to the log.
func writeError(w http.ResponseWriter, r *http.Request, err error, notFound, fallback string) {
	var verr *content.ValidationError
	var blocked *integrity.BlockedError

	switch {
	case errors.As(err, &verr):
		writeJSONError(w, r, verr.Message, http.StatusBadRequest)
	case errors.As(err, &blocked):
		count := blocked.Count
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, errorResponse{
			Error:      fmt.Sprintf("Cannot delete category %q because it is used by %d topic(s)", blocked.Category, count),
			TopicCount: &count,
		})
	case errors.Is(err, content.ErrDuplicateCategory):
		writeJSONError(w, r, "Category already exists", http.StatusBadRequest)
	case errors.Is(err, content.ErrUnknownCategory):
		writeJSONError(w, r, "Selected category does not exist", http.StatusBadRequest)
	case errors.Is(err, content.ErrNotFound):
		writeJSONError(w, r, notFound, http.StatusNotFound)
	case errors.Is(err, media.ErrNotAnImage):
		writeJSONError(w, r, "Only image files are allowed!", http.StatusBadRequest)
	case errors.Is(err, media.ErrTooLarge):
		writeJSONError(w, r, "File too large.", http.StatusBadRequest)
	default:
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeJSONError(w, r, fallback, http.StatusInternalServerError)
	}
}
