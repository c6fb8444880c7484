package vanilla

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-applyform/pkg/model"
	"github.com/goliatone/go-applyform/pkg/render"
	rendertemplate "github.com/goliatone/go-applyform/pkg/render/template"
	gotemplate "github.com/goliatone/go-applyform/pkg/render/template/gotemplate"
	"github.com/goliatone/go-applyform/pkg/widgets"
)

// Name is the registry key of the HTML renderer.
const Name = "html"

const (
	formTemplate = "vanilla/form"
	// StylesheetAsset is the theme asset key that points at the form
	// stylesheet.
	StylesheetAsset = "vanilla.stylesheet"
)

type Option func(*config)

type config struct {
	templateFS       []fs.FS
	templateRenderer rendertemplate.TemplateRenderer
	registry         *widgets.Registry
	stylesheets      []string
	inlineStyles     bool
}

// WithTemplatesFS adds a template bundle consulted before the embedded
// defaults. Bundles may override `vanilla/form` and any `widgets/*` template.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		if files != nil {
			cfg.templateFS = append(cfg.templateFS, files)
		}
	}
}

// WithTemplatesDir loads override templates from a directory on disk.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		if path == "" {
			return
		}
		cfg.templateFS = append(cfg.templateFS, os.DirFS(path))
	}
}

// WithTemplateRenderer injects a custom template renderer implementation.
func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.templateRenderer = renderer
		}
	}
}

// WithWidgetRegistry replaces the default widget registry.
func WithWidgetRegistry(registry *widgets.Registry) Option {
	return func(cfg *config) {
		if registry != nil {
			cfg.registry = registry
		}
	}
}

// WithStylesheet links an external stylesheet from the form document.
func WithStylesheet(href string) Option {
	return func(cfg *config) {
		if href = strings.TrimSpace(href); href != "" {
			cfg.stylesheets = append(cfg.stylesheets, href)
		}
	}
}

// WithDefaultStyles inlines the embedded stylesheet.
func WithDefaultStyles() Option {
	return func(cfg *config) {
		cfg.inlineStyles = true
	}
}

// Renderer turns a resolved form into a USWDS form document.
type Renderer struct {
	templates    rendertemplate.TemplateRenderer
	widgets      *widgets.Registry
	stylesheets  []string
	inlineStyles string
}

// New constructs the HTML renderer applying any provided options.
func New(options ...Option) (*Renderer, error) {
	cfg := config{}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	renderer := cfg.templateRenderer
	if renderer == nil {
		engineOpts := make([]gotemplate.Option, 0, len(cfg.templateFS)+3)
		for _, files := range cfg.templateFS {
			engineOpts = append(engineOpts, gotemplate.WithFS(files))
		}
		engineOpts = append(engineOpts,
			gotemplate.WithFS(TemplatesFS()),
			gotemplate.WithFS(widgets.TemplatesFS()),
			gotemplate.WithExtension(widgets.TemplateExtension),
		)
		engine, err := gotemplate.New(engineOpts...)
		if err != nil {
			return nil, fmt.Errorf("vanilla renderer: configure template renderer: %w", err)
		}
		renderer = engine
	}

	registry := cfg.registry
	if registry == nil {
		registry = widgets.NewDefaultRegistry()
	}

	out := &Renderer{
		templates:   renderer,
		widgets:     registry,
		stylesheets: cfg.stylesheets,
	}
	if cfg.inlineStyles {
		out.inlineStyles = defaultStylesheet()
	}
	return out, nil
}

func (r *Renderer) Name() string {
	return Name
}

func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

// Render writes the form document. A structural error in opts, or any
// widget failing to render, replaces the form body with the error alert.
func (r *Renderer) Render(ctx context.Context, form model.Form, opts render.RenderOptions) ([]byte, error) {
	if r.templates == nil {
		return nil, fmt.Errorf("vanilla renderer: template renderer is nil")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	renderErr := opts.StructureError
	var body string
	if renderErr == nil {
		body, renderErr = r.renderWidgets(form, opts)
		if renderErr != nil && opts.OnRenderError != nil {
			opts.OnRenderError(renderErr)
		}
	}

	mapping := render.MapWarnings(form.Warnings)
	payload := map[string]any{
		"form": map[string]any{
			"id":        form.ID,
			"title":     form.Title,
			"action":    opts.Action,
			"method":    opts.ResolvedMethod(),
			"print":     form.Print,
			"multipart": !form.Print && hasAttachments(form.Widgets),
		},
		"body":            body,
		"structure_error": renderErr != nil,
		"summary":         mapping.Summary,
		"form_errors":     render.MergeFormErrors(opts.FormErrors, mapping.Form...),
		"nav":             form.Nav,
		"hidden":          render.SortedHiddenFields(opts.HiddenFields),
		"chrome":          chrome(render.Messages(opts.Locale, opts.Translator)),
		"theme":           themeView(opts.Theme),
		"stylesheets":     r.stylesheetLinks(opts.Theme),
		"inline_styles":   r.inlineStyles,
	}

	result, err := r.templates.RenderTemplate(formTemplate, payload)
	if err != nil {
		return nil, fmt.Errorf("vanilla renderer: render template: %w", err)
	}
	return []byte(result), nil
}

func (r *Renderer) renderWidgets(form model.Form, opts render.RenderOptions) (string, error) {
	data := widgets.ComponentData{
		Template:      r.templates,
		Attachments:   opts.Attachments,
		UpdateOnInput: opts.UpdateOnInput,
		Config:        map[string]any{"print": form.Print},
	}
	if opts.Theme != nil {
		data.Partials = opts.Theme.Partials
	}
	data.RenderChild = func(child model.Widget) (string, error) {
		var buf bytes.Buffer
		if err := r.widgets.Render(&buf, child, data); err != nil {
			return "", err
		}
		return buf.String(), nil
	}

	var out strings.Builder
	for _, widget := range form.Widgets {
		rendered, err := data.RenderChild(widget)
		if err != nil {
			return "", fmt.Errorf("vanilla renderer: widget %q: %w", widget.Name, err)
		}
		out.WriteString(rendered)
	}
	return out.String(), nil
}

func (r *Renderer) stylesheetLinks(cfg *theme.RendererConfig) []string {
	links := append([]string(nil), r.stylesheets...)
	if cfg != nil && cfg.AssetURL != nil {
		if href := cfg.AssetURL(StylesheetAsset); href != "" {
			links = append(links, href)
		}
	}
	return links
}

func hasAttachments(list []model.Widget) bool {
	for _, widget := range list {
		if widget.Type.IsAttachment() || hasAttachments(widget.Children) {
			return true
		}
	}
	return false
}

// chrome re-keys the message catalog so templates can use plain identifiers.
func chrome(messages map[string]string) map[string]string {
	return map[string]string{
		"error_rendering_title": messages[render.MsgErrorRenderingTitle],
		"error_rendering_body":  messages[render.MsgErrorRenderingBody],
		"warnings_title":        messages[render.MsgWarningsTitle],
		"form_error_title":      messages[render.MsgFormErrorTitle],
		"nav_title":             messages[render.MsgNavTitle],
		"required_legend":       messages[render.MsgRequiredLegend],
		"save":                  messages[render.MsgSave],
		"print_title":           messages[render.MsgPrintTitle],
	}
}

func themeView(cfg *theme.RendererConfig) map[string]any {
	if cfg == nil {
		return map[string]any{}
	}
	keys := make([]string, 0, len(cfg.CSSVars))
	for key := range cfg.CSSVars {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	decls := make([]string, 0, len(keys))
	for _, key := range keys {
		decls = append(decls, key+": "+cfg.CSSVars[key])
	}
	return map[string]any{
		"name":           cfg.Theme,
		"variant":        cfg.Variant,
		"css_vars_style": strings.Join(decls, "; "),
	}
}
