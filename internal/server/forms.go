package server

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/goliatone/go-applyform/pkg/applications"
	"github.com/goliatone/go-applyform/pkg/formdata"
	"github.com/goliatone/go-applyform/pkg/jsonschema"
	"github.com/goliatone/go-applyform/pkg/model"
	"github.com/goliatone/go-applyform/pkg/orchestrator"
	"github.com/goliatone/go-applyform/pkg/render"
	"github.com/goliatone/go-applyform/pkg/widgets"
)

const (
	msgSaveFailed = "Your changes could not be saved. Please try again."
	// multipartMemory is how much of a multipart body is kept in memory
	// before spilling to temp files.
	multipartMemory = 32 << 20
)

type renderInput struct {
	applicationID string
	formID        string
	definition    *applications.Form
	data          map[string]any
	warnings      []model.FormValidationWarning
	formErrors    []string
	print         bool
	lookup        widgets.AttachmentLookup
}

func (s *Server) handleRenderForm(w http.ResponseWriter, r *http.Request) {
	s.renderSaved(w, r, false)
}

func (s *Server) handlePrintForm(w http.ResponseWriter, r *http.Request) {
	s.renderSaved(w, r, true)
}

func (s *Server) renderSaved(w http.ResponseWriter, r *http.Request, printView bool) {
	applicationID := chi.URLParam(r, "applicationID")
	formID := chi.URLParam(r, "formID")

	response, warnings, err := s.deps.Responses.Response(r.Context(), applicationID, formID, r.URL.Query().Get("application_form_id"))
	if err != nil {
		s.errorToHTTP(w, r, err)
		return
	}
	s.renderForm(w, r, renderInput{
		applicationID: applicationID,
		formID:        formID,
		data:          response,
		warnings:      warnings,
		print:         printView,
		lookup:        s.attachmentLookup(r, applicationID),
	})
}

// handleSaveForm shapes the posted values, applies attachment actions from
// no-script submissions, saves, and re-renders the form with the returned
// warnings. A failed save keeps the user's input and shows a form-level
// alert.
func (s *Server) handleSaveForm(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	applicationID := chi.URLParam(r, "applicationID")
	formID := chi.URLParam(r, "formID")

	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadBytes)
	if err := parseForm(r); err != nil {
		s.errorToHTTP(w, r, err)
		return
	}

	definition, err := s.deps.Forms.Form(ctx, formID)
	if err != nil {
		s.errorToHTTP(w, r, err)
		return
	}
	var schema map[string]any
	if processed, err := jsonschema.Process(ctx, definition.JSONSchema); err == nil {
		schema = processed.FormSchema
	}

	values := cloneValues(r.PostForm)
	var formErrors []string
	var lookup widgets.AttachmentLookup
	if manager := s.newManager(applicationID); manager != nil {
		formErrors = s.applyAttachmentActions(r, manager, values, schema)
		lookup = manager
	}

	shaped, err := formdata.Shape(values, formdata.WithSchema(schema))
	if err != nil {
		s.errorToHTTP(w, r, err)
		return
	}

	var warnings []model.FormValidationWarning
	result, err := s.deps.Responses.Save(ctx, applicationID, formID, shaped)
	if err != nil {
		s.logger.WithError(err).Error("save application form failed", map[string]any{
			"application_id": applicationID,
			"form_id":        formID,
		})
		formErrors = append(formErrors, msgSaveFailed)
	} else {
		warnings = result.Warnings
		if s.deps.Metrics != nil {
			s.deps.Metrics.ValidationIssues.Add(float64(len(warnings)))
		}
	}

	s.renderForm(w, r, renderInput{
		applicationID: applicationID,
		formID:        formID,
		definition:    &definition,
		data:          shaped,
		warnings:      warnings,
		formErrors:    formErrors,
		lookup:        lookup,
	})
}

func (s *Server) renderForm(w http.ResponseWriter, r *http.Request, in renderInput) {
	opts := render.RenderOptions{
		UpdateOnInput: s.opts.UpdateOnInput,
		Attachments:   in.lookup,
		FormErrors:    in.formErrors,
		Locale:        preferredLocale(r),
	}
	if !in.print {
		opts.Action = "/applications/" + url.PathEscape(in.applicationID) + "/forms/" + url.PathEscape(in.formID)
		opts.HiddenFields = render.MergeHiddenFields(nil, render.ActionField("form_id", in.formID))
	}

	out, err := s.deps.Orchestrator.Generate(r.Context(), orchestrator.Request{
		ApplicationID: in.applicationID,
		FormID:        in.formID,
		Form:          in.definition,
		FormData:      in.data,
		Warnings:      in.warnings,
		Print:         in.print,
		ThemeName:     s.opts.ThemeName,
		ThemeVariant:  s.opts.ThemeVariant,
		RenderOptions: opts,
	})
	if err != nil {
		s.errorToHTTP(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(out); err != nil {
		s.logger.WithError(err).Warn("write form response failed", nil)
	}
}

func parseForm(r *http.Request) error {
	var err error
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		err = r.ParseMultipartForm(multipartMemory)
	} else {
		err = r.ParseForm()
	}
	if err == nil {
		return nil
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return errRequestTooLarge
	}
	return fmt.Errorf("%w: %v", errInvalidForm, err)
}

func cloneValues(values url.Values) url.Values {
	out := make(url.Values, len(values))
	for key, list := range values {
		out[key] = append([]string(nil), list...)
	}
	return out
}

// preferredLocale returns the first language tag of Accept-Language.
func preferredLocale(r *http.Request) string {
	header := r.Header.Get("Accept-Language")
	if header == "" {
		return ""
	}
	first, _, _ := strings.Cut(header, ",")
	tag, _, _ := strings.Cut(first, ";")
	return strings.TrimSpace(tag)
}
