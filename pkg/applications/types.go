package applications

import (
	"github.com/goliatone/go-applyform/internal/httpclient"
	"github.com/goliatone/go-applyform/pkg/model"
	"github.com/goliatone/go-applyform/pkg/uischema"
)

// StatusError is returned for non-2xx API responses.
type StatusError = httpclient.StatusError

// Form is a competition form definition.
type Form struct {
	FormID     string            `json:"form_id"`
	FormName   string            `json:"form_name"`
	JSONSchema map[string]any    `json:"form_json_schema"`
	UISchema   uischema.UISchema `json:"form_ui_schema"`
}

// Form statuses reported for an application form.
const (
	StatusNotStarted = "not_started"
	StatusInProgress = "in_progress"
	StatusComplete   = "complete"
)

// ApplicationForm is one form of an application with its saved response.
type ApplicationForm struct {
	ApplicationFormID      string                        `json:"application_form_id"`
	ApplicationID          string                        `json:"application_id"`
	FormID                 string                        `json:"form_id"`
	Form                   Form                          `json:"form"`
	ApplicationResponse    map[string]any                `json:"application_response"`
	ApplicationFormStatus  string                        `json:"application_form_status"`
	IsIncludedInSubmission *bool                         `json:"is_included_in_submission,omitempty"`
	IsRequired             bool                          `json:"is_required"`
	Warnings               []model.FormValidationWarning `json:"warnings,omitempty"`
}

// SaveResult is the outcome of UpdateApplicationForm. Warnings are
// validation findings; the save itself succeeded.
type SaveResult struct {
	ApplicationFormStatus string                        `json:"application_form_status"`
	Warnings              []model.FormValidationWarning `json:"warnings"`
}

type envelope[T any] struct {
	Data     T                             `json:"data"`
	Message  string                        `json:"message,omitempty"`
	Warnings []model.FormValidationWarning `json:"warnings,omitempty"`
}
