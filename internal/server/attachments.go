package server

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/url"
	"slices"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/goliatone/go-applyform/pkg/attachments"
	"github.com/goliatone/go-applyform/pkg/formpath"
	"github.com/goliatone/go-applyform/pkg/jsonschema"
	"github.com/goliatone/go-applyform/pkg/widgets"
)

const (
	deleteAttachmentKey = "delete_attachment"
	fileInputSuffix     = "--file"
)

type uploadedAttachment struct {
	ApplicationAttachmentID string `json:"application_attachment_id"`
	Field                   string `json:"field"`
	FileName                string `json:"file_name"`
}

// newManager returns nil when no attachment client is configured.
func (s *Server) newManager(applicationID string, opts ...attachments.Option) *attachments.Manager {
	if s.deps.Attachments == nil {
		return nil
	}
	opts = append(opts, attachments.WithLogger(s.logger))
	if s.deps.Metrics != nil {
		opts = append(opts, attachments.WithObserver(s.deps.Metrics))
	}
	return attachments.NewManager(s.deps.Attachments, applicationID, opts...)
}

// attachmentLookup loads the attachment list so widgets can show file
// names. A failed load degrades to "previously uploaded" labels.
func (s *Server) attachmentLookup(r *http.Request, applicationID string) widgets.AttachmentLookup {
	manager := s.newManager(applicationID)
	if manager == nil {
		return nil
	}
	if err := manager.Refresh(r.Context()); err != nil {
		s.logger.WithError(err).Warn("attachment list unavailable", map[string]any{
			"application_id": applicationID,
		})
	}
	return manager
}

func (s *Server) requireManager(w http.ResponseWriter, applicationID string) (*attachments.Manager, bool) {
	manager := s.newManager(applicationID)
	if manager == nil {
		s.writeError(w, http.StatusServiceUnavailable, "ATTACHMENTS_UNAVAILABLE", "attachments are not configured")
		return nil, false
	}
	return manager, true
}

func (s *Server) handleListAttachments(w http.ResponseWriter, r *http.Request) {
	manager, ok := s.requireManager(w, chi.URLParam(r, "applicationID"))
	if !ok {
		return
	}
	if err := manager.Refresh(r.Context()); err != nil {
		s.errorToHTTP(w, r, err)
		return
	}

	state := attachments.DefaultSort
	query := r.URL.Query()
	if key := query.Get("sort"); key != "" {
		state = attachments.SortState{Key: attachments.SortKey(key), Direction: attachments.Ascending}
		if query.Get("direction") == string(attachments.Descending) {
			state.Direction = attachments.Descending
		}
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"data": attachments.Sort(manager.Attachments(), state),
		"sort": state,
	})
}

// handleUploadAttachment accepts `field`, optional `multiple` and the file
// under attachments.FileField.
func (s *Server) handleUploadAttachment(w http.ResponseWriter, r *http.Request) {
	applicationID := chi.URLParam(r, "applicationID")
	manager, ok := s.requireManager(w, applicationID)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadBytes)
	if err := parseForm(r); err != nil {
		s.errorToHTTP(w, r, err)
		return
	}
	field := strings.TrimSpace(r.FormValue("field"))
	if field == "" {
		s.writeError(w, http.StatusBadRequest, "MISSING_FIELD", "field is required")
		return
	}
	file, header, err := r.FormFile(attachments.FileField)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "MISSING_FILE", attachments.FileField+" is required")
		return
	}
	defer file.Close()

	id, err := s.upload(r, manager, field, r.FormValue("multiple") == "true", header, file)
	if err != nil {
		s.errorToHTTP(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, map[string]any{
		"data": uploadedAttachment{ApplicationAttachmentID: id, Field: field, FileName: header.Filename},
	})
}

func (s *Server) handleDeleteAttachment(w http.ResponseWriter, r *http.Request) {
	applicationID := chi.URLParam(r, "applicationID")
	raw := chi.URLParam(r, "attachmentID")
	if _, err := uuid.Parse(raw); err != nil {
		s.writeError(w, http.StatusBadRequest, "INVALID_ID", "invalid UUID: "+raw)
		return
	}
	manager, ok := s.requireManager(w, applicationID)
	if !ok {
		return
	}
	if err := s.deleteAttachment(r, manager, raw); err != nil {
		s.errorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) upload(r *http.Request, manager *attachments.Manager, field string, multiple bool, header *multipart.FileHeader, body multipart.File) (string, error) {
	pending, err := manager.StartUpload(r.Context(), attachments.UploadRequest{
		Field:    field,
		Multiple: multiple,
		FileName: header.Filename,
		Size:     header.Size,
		Body:     body,
	})
	if err != nil {
		return "", err
	}
	return pending.Wait(r.Context())
}

func (s *Server) deleteAttachment(r *http.Request, manager *attachments.Manager, id string) error {
	if err := manager.Refresh(r.Context()); err != nil {
		return err
	}
	if err := manager.RequestDelete(id); err != nil {
		return err
	}
	return manager.ConfirmDelete(r.Context())
}

// applyAttachmentActions handles the attachment controls of a form posted
// without scripts: a `delete_attachment` button deletes the file and drops
// its id from every field, and each `<field>--file` input is uploaded and
// bound to <field>. It returns the form-level messages for failures.
func (s *Server) applyAttachmentActions(r *http.Request, manager *attachments.Manager, values url.Values, schema map[string]any) []string {
	var messages []string

	if id := values.Get(deleteAttachmentKey); id != "" {
		values.Del(deleteAttachmentKey)
		// An id missing from the list is a dangling reference; dropping it
		// from the fields is all that is left to do.
		if err := s.deleteAttachment(r, manager, id); err != nil && !errors.Is(err, attachments.ErrNotFound) {
			s.logger.WithError(err).Warn("attachment delete failed", map[string]any{"attachment_id": id})
			messages = append(messages, "The file could not be deleted. Please try again.")
		} else {
			for key, list := range values {
				values[key] = slices.DeleteFunc(list, func(v string) bool { return v == id })
			}
		}
	}

	if r.MultipartForm == nil {
		return messages
	}
	fields := make([]string, 0, len(r.MultipartForm.File))
	for key := range r.MultipartForm.File {
		fields = append(fields, key)
	}
	slices.Sort(fields)

	for _, key := range fields {
		field, ok := strings.CutSuffix(key, fileInputSuffix)
		if !ok || field == "" {
			continue
		}
		multiple := isArrayField(schema, field)
		for _, header := range r.MultipartForm.File[key] {
			if header.Filename == "" && header.Size == 0 {
				continue
			}
			id, err := s.uploadHeader(r, manager, field, multiple, header)
			if err != nil {
				s.logger.WithError(err).Warn("attachment upload failed", map[string]any{"field": field})
				messages = append(messages, fmt.Sprintf("%s could not be uploaded. Please try again.", header.Filename))
				continue
			}
			if multiple {
				values.Add(field, id)
			} else {
				values.Set(field, id)
			}
		}
	}
	return messages
}

func (s *Server) uploadHeader(r *http.Request, manager *attachments.Manager, field string, multiple bool, header *multipart.FileHeader) (string, error) {
	file, err := header.Open()
	if err != nil {
		return "", fmt.Errorf("server: open upload %q: %w", header.Filename, err)
	}
	defer file.Close()
	return s.upload(r, manager, field, multiple, header, file)
}

// isArrayField reports whether the HTML field name addresses an array in
// the form schema.
func isArrayField(schema map[string]any, field string) bool {
	if schema == nil {
		return false
	}
	var pointer strings.Builder
	for _, segment := range formpath.ParseSegments(field) {
		pointer.WriteString("/properties/")
		pointer.WriteString(segment.String())
	}
	sub, ok := jsonschema.FieldSchema(schema, pointer.String())
	return ok && jsonschema.SchemaType(sub) == "array"
}
