package applications

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/goliatone/go-applyform/internal/httpclient"
	"github.com/goliatone/go-applyform/pkg/model"
)

// Client saves application responses.
type Client struct {
	transport *httpclient.Client
}

// NewClient wraps a configured transport.
func NewClient(transport *httpclient.Client) *Client {
	return &Client{transport: transport}
}

func formPath(applicationID, formID string) string {
	return "/applications/" + url.PathEscape(applicationID) + "/forms/" + url.PathEscape(formID)
}

// UpdateApplicationForm stores response for the form. The API reports
// validation findings as warnings alongside a successful save.
func (c *Client) UpdateApplicationForm(ctx context.Context, applicationID, formID string, response map[string]any) (SaveResult, error) {
	body, err := httpclient.JSONBody(map[string]any{"application_response": response})
	if err != nil {
		return SaveResult{}, fmt.Errorf("applications: %w", err)
	}

	var out envelope[SaveResult]
	err = c.transport.Do(ctx, httpclient.Request{
		Operation:   "update_application_form",
		Method:      http.MethodPut,
		Path:        formPath(applicationID, formID),
		ContentType: "application/json",
		Body:        body,
	}, &out)
	if err != nil {
		return SaveResult{}, fmt.Errorf("applications: save form %s: %w", formID, err)
	}

	result := out.Data
	if len(result.Warnings) == 0 {
		result.Warnings = out.Warnings
	}
	if result.Warnings == nil {
		result.Warnings = []model.FormValidationWarning{}
	}
	return result, nil
}

// SetIncluded marks whether an optional form is part of the submission.
func (c *Client) SetIncluded(ctx context.Context, applicationID, formID string, included bool) error {
	body, err := httpclient.JSONBody(map[string]any{"is_included_in_submission": included})
	if err != nil {
		return fmt.Errorf("applications: %w", err)
	}
	err = c.transport.Do(ctx, httpclient.Request{
		Operation:   "set_form_inclusion",
		Method:      http.MethodPut,
		Path:        formPath(applicationID, formID) + "/inclusion",
		ContentType: "application/json",
		Body:        body,
	}, nil)
	if err != nil {
		return fmt.Errorf("applications: set inclusion of form %s: %w", formID, err)
	}
	return nil
}

// ApplicationForm loads one application form with its saved response and
// the latest validation warnings.
func (c *Client) ApplicationForm(ctx context.Context, applicationID, appFormID string) (ApplicationForm, error) {
	var out envelope[ApplicationForm]
	err := c.transport.Do(ctx, httpclient.Request{
		Operation: "get_application_form",
		Method:    http.MethodGet,
		Path:      "/applications/" + url.PathEscape(applicationID) + "/application_form/" + url.PathEscape(appFormID),
	}, &out)
	if err != nil {
		return ApplicationForm{}, fmt.Errorf("applications: fetch application form %s: %w", appFormID, err)
	}
	form := out.Data
	if len(form.Warnings) == 0 {
		form.Warnings = out.Warnings
	}
	if form.ApplicationResponse == nil {
		form.ApplicationResponse = map[string]any{}
	}
	return form, nil
}
