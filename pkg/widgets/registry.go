package widgets

import (
	"bytes"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/goliatone/go-applyform/pkg/model"
	rendertemplate "github.com/goliatone/go-applyform/pkg/render/template"
)

// Renderer writes the markup of a single widget into buf.
type Renderer func(buf *bytes.Buffer, widget model.Widget, data ComponentData) error

// AttachmentLookup resolves attachment ids to display names.
type AttachmentLookup interface {
	FileName(id string) (string, bool)
}

// ComponentData carries helpers and configuration for widget renderers.
type ComponentData struct {
	Template    rendertemplate.TemplateRenderer
	RenderChild func(child model.Widget) (string, error)
	Config      map[string]any
	Attachments AttachmentLookup
	// UpdateOnInput switches inputs to controlled mode.
	UpdateOnInput bool
	// Partials maps a widget partial key (e.g. "widgets.text") to an
	// override template supplied by the active theme.
	Partials map[string]string
}

// Descriptor bundles a renderer with its registered name.
type Descriptor struct {
	Name     string
	Renderer Renderer
}

// UnknownWidgetError is returned when a widget type has no renderer.
type UnknownWidgetError struct {
	Type model.WidgetType
}

func (e *UnknownWidgetError) Error() string {
	return fmt.Sprintf("widgets: no renderer registered for widget type %q", e.Type)
}

// Registry maps widget types to renderers. Names are matched case
// insensitively.
type Registry struct {
	mu      sync.RWMutex
	widgets map[string]Descriptor
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		widgets: make(map[string]Descriptor),
	}
}

// Clone returns a copy of the registry to allow isolated overrides.
func (r *Registry) Clone() *Registry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cloned := New()
	for name, descriptor := range r.widgets {
		cloned.widgets[name] = descriptor
	}
	return cloned
}

// Register associates a renderer with a widget type. Existing entries are
// replaced.
func (r *Registry) Register(widget model.WidgetType, descriptor Descriptor) error {
	name := normalize(string(widget))
	if name == "" {
		return fmt.Errorf("widgets: widget type is required")
	}
	if descriptor.Renderer == nil {
		return fmt.Errorf("widgets: renderer for %q is nil", widget)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	descriptor.Name = string(widget)
	r.widgets[name] = descriptor
	return nil
}

// MustRegister mirrors Register but panics on error.
func (r *Registry) MustRegister(widget model.WidgetType, descriptor Descriptor) {
	if err := r.Register(widget, descriptor); err != nil {
		panic(err)
	}
}

// Descriptor fetches the renderer registered for a widget type.
func (r *Registry) Descriptor(widget model.WidgetType) (Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	descriptor, ok := r.widgets[normalize(string(widget))]
	return descriptor, ok
}

// Names returns the registered widget type names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.widgets))
	for _, descriptor := range r.widgets {
		names = append(names, descriptor.Name)
	}
	slices.Sort(names)
	return names
}

// Render dispatches to the widget's renderer. Unknown types fail with
// *UnknownWidgetError.
func (r *Registry) Render(buf *bytes.Buffer, widget model.Widget, data ComponentData) error {
	descriptor, ok := r.Descriptor(widget.Type)
	if !ok {
		return &UnknownWidgetError{Type: widget.Type}
	}
	return descriptor.Renderer(buf, widget, data)
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
