package server

import (
	"context"
	"sync"

	"github.com/goliatone/go-applyform/pkg/applications"
	"github.com/goliatone/go-applyform/pkg/formdata"
	"github.com/goliatone/go-applyform/pkg/model"
	"github.com/goliatone/go-applyform/pkg/validation"
)

// ResponseStore loads and saves application responses.
type ResponseStore interface {
	// Response returns the saved response of a form and the warnings the
	// backend last reported for it. applicationFormID may be empty, in
	// which case stores that need it return an empty response.
	Response(ctx context.Context, applicationID, formID, applicationFormID string) (map[string]any, []model.FormValidationWarning, error)
	Save(ctx context.Context, applicationID, formID string, response map[string]any) (applications.SaveResult, error)
}

// APIStore saves through the application API.
type APIStore struct {
	client *applications.Client
}

// NewAPIStore wraps client.
func NewAPIStore(client *applications.Client) *APIStore {
	return &APIStore{client: client}
}

// Response loads the application form when its id is known.
func (s *APIStore) Response(ctx context.Context, applicationID, _ string, applicationFormID string) (map[string]any, []model.FormValidationWarning, error) {
	if applicationFormID == "" {
		return map[string]any{}, nil, nil
	}
	form, err := s.client.ApplicationForm(ctx, applicationID, applicationFormID)
	if err != nil {
		return nil, nil, err
	}
	if form.ApplicationResponse == nil {
		form.ApplicationResponse = map[string]any{}
	}
	return form.ApplicationResponse, form.Warnings, nil
}

// Save forwards to UpdateApplicationForm.
func (s *APIStore) Save(ctx context.Context, applicationID, formID string, response map[string]any) (applications.SaveResult, error) {
	return s.client.UpdateApplicationForm(ctx, applicationID, formID, response)
}

type memoryKey struct {
	applicationID string
	formID        string
}

type memoryEntry struct {
	response map[string]any
	warnings []model.FormValidationWarning
}

// MemoryStore keeps responses in process and validates them locally
// against the form schema, standing in for the backend in mock mode.
type MemoryStore struct {
	forms applications.FormFetcher

	mu      sync.RWMutex
	entries map[memoryKey]memoryEntry
}

// NewMemoryStore validates saves against forms from fetcher.
func NewMemoryStore(fetcher applications.FormFetcher) *MemoryStore {
	return &MemoryStore{forms: fetcher, entries: map[memoryKey]memoryEntry{}}
}

// Response returns the last saved response for the form.
func (s *MemoryStore) Response(_ context.Context, applicationID, formID, _ string) (map[string]any, []model.FormValidationWarning, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.entries[memoryKey{applicationID, formID}]
	if !ok {
		return map[string]any{}, nil, nil
	}
	return formdata.Reshape(entry.response), entry.warnings, nil
}

// Save validates response against the complete form schema, conditionals
// included, and stores it. Validation findings are returned as warnings;
// the save still succeeds.
func (s *MemoryStore) Save(ctx context.Context, applicationID, formID string, response map[string]any) (applications.SaveResult, error) {
	definition, err := s.forms.Form(ctx, formID)
	if err != nil {
		return applications.SaveResult{}, err
	}
	found, err := validation.Validate(definition.JSONSchema, response)
	if err != nil {
		return applications.SaveResult{}, err
	}

	status := applications.StatusComplete
	if len(found) > 0 {
		status = applications.StatusInProgress
	}
	s.mu.Lock()
	s.entries[memoryKey{applicationID, formID}] = memoryEntry{
		response: formdata.Reshape(response),
		warnings: found,
	}
	s.mu.Unlock()
	return applications.SaveResult{ApplicationFormStatus: status, Warnings: found}, nil
}
