package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/goliatone/go-applyform/pkg/applications"
	"github.com/goliatone/go-applyform/pkg/attachments"
	"github.com/goliatone/go-applyform/pkg/formdata"
)

// errorResponse is the JSON body of every error reply.
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// writeJSON marshals v as JSON and writes it with the given status code.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.WithError(err).Warn("encode response failed", nil)
	}
}

// writeError writes a structured JSON error response.
func (s *Server) writeError(w http.ResponseWriter, status int, code, message string) {
	s.writeJSON(w, status, errorResponse{Error: message, Code: code})
}

// errorToHTTP maps domain errors to responses. Upstream messages are logged,
// never echoed.
func (s *Server) errorToHTTP(w http.ResponseWriter, r *http.Request, err error) {
	var statusErr *applications.StatusError
	switch {
	case errors.Is(err, applications.ErrFormNotFound):
		s.writeError(w, http.StatusNotFound, "FORM_NOT_FOUND", "form not found")
	case errors.Is(err, attachments.ErrNotFound):
		s.writeError(w, http.StatusNotFound, "ATTACHMENT_NOT_FOUND", "attachment not found")
	case errors.Is(err, attachments.ErrBusy):
		s.writeError(w, http.StatusConflict, "ATTACHMENT_BUSY", "attachment is being uploaded or deleted")
	case errors.Is(err, formdata.ErrConflictingKeys), errors.Is(err, formdata.ErrIndexOutOfRange), errors.Is(err, errInvalidForm):
		s.writeError(w, http.StatusBadRequest, "INVALID_FORM_DATA", "form data is invalid")
	case errors.Is(err, errRequestTooLarge):
		s.writeError(w, http.StatusRequestEntityTooLarge, "REQUEST_TOO_LARGE", "upload exceeds the size limit")
	case errors.Is(err, context.Canceled):
		// client went away; nothing useful to write
	case errors.As(err, &statusErr):
		s.logger.WithError(err).Error("upstream request failed", map[string]any{
			"path":   r.URL.Path,
			"status": statusErr.StatusCode,
		})
		s.writeError(w, http.StatusBadGateway, "UPSTREAM_ERROR", "the application service returned an error")
	default:
		s.logger.WithError(err).Error("request failed", map[string]any{"path": r.URL.Path})
		s.writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}
