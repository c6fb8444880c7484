package render

import (
	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-applyform/pkg/widgets"
)

// RenderOptions carry per-request data that does not belong to the form
// model itself.
type RenderOptions struct {
	// Action and Method populate the <form> element. Method defaults to POST.
	Action string
	Method string
	// HiddenFields are emitted as hidden inputs in name order.
	HiddenFields map[string]string
	// FormErrors are shown in the form-level alert, e.g. a failed save.
	FormErrors []string
	// StructureError replaces the widget markup with the "Error rendering
	// form" alert. The pipeline sets it when the tree cannot be built.
	StructureError error
	// OnRenderError is called when a widget fails to render and the renderer
	// falls back to the alert.
	OnRenderError func(error)
	// UpdateOnInput switches inputs to controlled mode.
	UpdateOnInput bool
	// Attachments resolves attachment ids to file names.
	Attachments widgets.AttachmentLookup
	// Locale selects the chrome strings; Translator overrides the built-in
	// English catalog.
	Locale     string
	Translator Translator
	// Theme carries the resolved theme selection: partial overrides, tokens
	// and asset URLs.
	Theme *theme.RendererConfig
}

// ResolvedMethod returns the method to put on the <form> element.
func (o RenderOptions) ResolvedMethod() string {
	if o.Method == "" {
		return "post"
	}
	return o.Method
}
