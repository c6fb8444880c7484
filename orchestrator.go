// Package applyform renders grant application forms from a JSON schema and a
// UI schema, shapes posted values back into responses, and maps validation
// warnings onto fields. Most callers only need this package; the pipeline
// stages live under pkg/.
package applyform

import (
	"context"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-applyform/pkg/applications"
	"github.com/goliatone/go-applyform/pkg/model"
	"github.com/goliatone/go-applyform/pkg/orchestrator"
	"github.com/goliatone/go-applyform/pkg/render"
)

// RenderOptions carries per-request rendering inputs such as the form
// action, hidden fields and the attachment lookup.
type RenderOptions = render.RenderOptions

// Request describes one form to render.
type Request = orchestrator.Request

// Form is a competition form definition.
type Form = applications.Form

// Warning is a validation warning as reported by the application API.
type Warning = model.FormValidationWarning

// NewOrchestrator exposes the orchestrator constructor from the top-level
// module.
func NewOrchestrator(options ...orchestrator.Option) *orchestrator.Orchestrator {
	return orchestrator.New(options...)
}

// GenerateHTML fetches formID, prefills it with data and warnings, and
// renders it with the default HTML renderer.
func GenerateHTML(ctx context.Context, fetcher applications.FormFetcher, formID string, data map[string]any, warnings []Warning, options ...orchestrator.Option) ([]byte, error) {
	options = append([]orchestrator.Option{orchestrator.WithFormFetcher(fetcher)}, options...)
	gen := orchestrator.New(options...)
	return gen.Generate(ctx, orchestrator.Request{
		FormID:   formID,
		FormData: data,
		Warnings: warnings,
	})
}

// GenerateHTMLFromDefinition renders an already loaded definition, skipping
// the fetch.
func GenerateHTMLFromDefinition(ctx context.Context, form Form, data map[string]any, warnings []Warning, options ...orchestrator.Option) ([]byte, error) {
	gen := orchestrator.New(options...)
	return gen.Generate(ctx, orchestrator.Request{
		FormID:   form.FormID,
		Form:     &form,
		FormData: data,
		Warnings: warnings,
	})
}

// WithThemeSelector passes a go-theme selector through to the orchestrator so
// theme/variant choices can be resolved ahead of rendering.
func WithThemeSelector(selector theme.ThemeSelector) orchestrator.Option {
	return orchestrator.WithThemeSelector(selector)
}

// WithThemeFallbacks forwards fallback partials used when deriving renderer
// configuration from a theme selection.
func WithThemeFallbacks(fallbacks map[string]string) orchestrator.Option {
	return orchestrator.WithThemeFallbacks(fallbacks)
}
