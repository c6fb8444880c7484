package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	theme "github.com/goliatone/go-theme"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/goliatone/go-applyform/internal/logger"
	"github.com/goliatone/go-applyform/pkg/applications"
	"github.com/goliatone/go-applyform/pkg/formtree"
	"github.com/goliatone/go-applyform/pkg/jsonschema"
	"github.com/goliatone/go-applyform/pkg/model"
	"github.com/goliatone/go-applyform/pkg/render"
	"github.com/goliatone/go-applyform/pkg/renderers/vanilla"
	"github.com/goliatone/go-applyform/pkg/warnings"
)

const tracerName = "github.com/goliatone/go-applyform/pkg/orchestrator"

// Failure reasons reported to the RenderObserver.
const (
	ReasonFetch   = "fetch"
	ReasonProcess = "process"
	ReasonBuild   = "build"
	ReasonWidget  = "widget"
	ReasonRender  = "render"
)

var (
	// ErrFormIDRequired is returned when a request names no form and carries
	// no preloaded definition.
	ErrFormIDRequired = errors.New("orchestrator: form id is required")
	// ErrNoFetcher is returned when a form must be fetched but no fetcher is
	// configured.
	ErrNoFetcher = errors.New("orchestrator: form fetcher is not configured")
)

// RenderObserver receives one call per Generate. reason is empty on success.
type RenderObserver interface {
	ObserveRender(mode, reason string, elapsed time.Duration)
}

// Option customises the orchestrator configuration.
type Option func(*Orchestrator)

// WithFormFetcher sets the source of form definitions.
func WithFormFetcher(fetcher applications.FormFetcher) Option {
	return func(o *Orchestrator) {
		o.fetcher = fetcher
	}
}

// WithRegistry injects a renderer registry.
func WithRegistry(registry *render.Registry) Option {
	return func(o *Orchestrator) {
		o.registry = registry
	}
}

// WithDefaultRenderer overrides the renderer used when a request omits an
// explicit Renderer field.
func WithDefaultRenderer(name string) Option {
	return func(o *Orchestrator) {
		o.defaultRenderer = name
	}
}

// WithThemeSelector resolves theme and variant names before rendering.
func WithThemeSelector(selector theme.ThemeSelector) Option {
	return func(o *Orchestrator) {
		o.themeSelector = selector
	}
}

// WithDefaultTheme sets the theme used when a request names none.
func WithDefaultTheme(name, variant string) Option {
	return func(o *Orchestrator) {
		o.defaultTheme = name
		o.defaultVariant = variant
	}
}

// WithThemeFallbacks replaces the partials used for widgets a theme does not
// override.
func WithThemeFallbacks(fallbacks map[string]string) Option {
	return func(o *Orchestrator) {
		o.themeFallbacks = fallbacks
	}
}

// WithUIDecorators registers decorators that run against the built form
// before rendering.
func WithUIDecorators(decorators ...model.Decorator) Option {
	return func(o *Orchestrator) {
		o.decorators = append(o.decorators, decorators...)
	}
}

// WithProcessOptions forwards options to jsonschema.Process.
func WithProcessOptions(opts ...jsonschema.Option) Option {
	return func(o *Orchestrator) {
		o.processOpts = append(o.processOpts, opts...)
	}
}

// WithLogger sets the logger used for structural render errors.
func WithLogger(l logger.Logger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithRenderObserver records pipeline outcomes, typically prometheus.
func WithRenderObserver(observer RenderObserver) Option {
	return func(o *Orchestrator) {
		o.observer = observer
	}
}

// WithTracer replaces the global otel tracer.
func WithTracer(tracer trace.Tracer) Option {
	return func(o *Orchestrator) {
		if tracer != nil {
			o.tracer = tracer
		}
	}
}

// Orchestrator coordinates the pipeline from form definition to rendered
// output.
type Orchestrator struct {
	fetcher         applications.FormFetcher
	registry        *render.Registry
	defaultRenderer string
	themeSelector   theme.ThemeSelector
	defaultTheme    string
	defaultVariant  string
	themeFallbacks  map[string]string
	decorators      []model.Decorator
	processOpts     []jsonschema.Option
	logger          logger.Logger
	observer        RenderObserver
	tracer          trace.Tracer
	initialiseErr   error
}

// New constructs an Orchestrator applying any provided options. Missing
// dependencies are initialised with the built-in implementations.
func New(options ...Option) *Orchestrator {
	o := &Orchestrator{defaultRenderer: vanilla.Name}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(o)
	}
	o.applyDefaults()
	return o
}

// Request describes one form render.
type Request struct {
	ApplicationID string
	FormID        string
	// Form bypasses the fetcher when the definition is already loaded.
	Form *applications.Form
	// FormData is the current application response.
	FormData map[string]any
	// Warnings are backend validation warnings to show against fields.
	Warnings []model.FormValidationWarning
	// Print renders the read-only variant.
	Print bool

	// Renderer names the renderer to use; empty selects the default.
	Renderer     string
	ThemeName    string
	ThemeVariant string

	// RenderOptions carries per-request renderer inputs. StructureError and
	// Theme are filled by the pipeline.
	RenderOptions render.RenderOptions
}

// Prepared is the pipeline output before rendering.
type Prepared struct {
	Definition applications.Form
	Processed  jsonschema.Result
	Form       model.Form
	// StructureError is set when the UI schema or form schema cannot be
	// turned into widgets. Form then carries no widgets.
	StructureError error
}

// Generate runs fetch → process → build → (print) → render and returns the
// rendered bytes (HTML for the default renderer).
func (o *Orchestrator) Generate(ctx context.Context, req Request) ([]byte, error) {
	if ctx == nil {
		return nil, errors.New("orchestrator: context is required")
	}
	if err := o.initialiseErr; err != nil {
		return nil, err
	}
	started := time.Now()
	mode := "edit"
	if req.Print {
		mode = "print"
	}

	ctx, span := o.tracer.Start(ctx, "orchestrator.generate", trace.WithAttributes(
		attribute.String("applyform.form_id", req.FormID),
		attribute.String("applyform.application_id", req.ApplicationID),
		attribute.String("applyform.mode", mode),
	))
	defer span.End()

	reason := ""
	defer func() {
		if o.observer != nil {
			o.observer.ObserveRender(mode, reason, time.Since(started))
		}
	}()

	prepared, err := o.Prepare(ctx, req)
	if err != nil {
		reason = ReasonFetch
		span.RecordError(err)
		span.SetStatus(codes.Error, "prepare failed")
		return nil, err
	}
	if prepared.StructureError != nil {
		reason = ReasonBuild
	}

	renderer, err := o.rendererFor(req.Renderer)
	if err != nil {
		reason = ReasonRender
		return nil, err
	}

	opts := req.RenderOptions
	opts.StructureError = prepared.StructureError
	if opts.Theme == nil {
		cfg, err := o.resolveTheme(req.ThemeName, req.ThemeVariant)
		if err != nil {
			reason = ReasonRender
			span.RecordError(err)
			return nil, err
		}
		opts.Theme = cfg
	}
	callerHook := opts.OnRenderError
	opts.OnRenderError = func(renderErr error) {
		reason = ReasonWidget
		o.logger.WithError(renderErr).Error("form widget failed to render", map[string]any{
			"form_id": prepared.Form.ID,
		})
		if callerHook != nil {
			callerHook(renderErr)
		}
	}

	_, renderSpan := o.tracer.Start(ctx, "orchestrator.render", trace.WithAttributes(
		attribute.String("applyform.renderer", renderer.Name()),
	))
	output, err := renderer.Render(ctx, prepared.Form, opts)
	renderSpan.End()
	if err != nil {
		reason = ReasonRender
		span.RecordError(err)
		span.SetStatus(codes.Error, "render failed")
		return nil, fmt.Errorf("orchestrator: render output: %w", err)
	}
	return output, nil
}

// Prepare runs every stage except rendering. Fetch failures are returned as
// errors; schema and layout failures are reported through
// Prepared.StructureError so the caller can still render the error alert.
func (o *Orchestrator) Prepare(ctx context.Context, req Request) (Prepared, error) {
	if err := ctx.Err(); err != nil {
		return Prepared{}, err
	}

	definition, err := o.load(ctx, req)
	if err != nil {
		return Prepared{}, err
	}

	prepared := Prepared{
		Definition: definition,
		Form: model.Form{
			ID:      definition.FormID,
			Title:   definition.FormName,
			Widgets: []model.Widget{},
			Print:   req.Print,
		},
	}

	_, processSpan := o.tracer.Start(ctx, "orchestrator.process")
	processed, err := jsonschema.Process(ctx, definition.JSONSchema, o.processOpts...)
	processSpan.End()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Prepared{}, ctxErr
		}
		prepared.StructureError = fmt.Errorf("orchestrator: process schema: %w", err)
		o.logStructureError(definition.FormID, ReasonProcess, prepared.StructureError)
		return prepared, nil
	}
	prepared.Processed = processed

	_, buildSpan := o.tracer.Start(ctx, "orchestrator.build")
	defer buildSpan.End()

	mapped := warnings.BuildTree(definition.UISchema, req.Warnings, processed.FormSchema)
	widgets, err := formtree.Build(ctx, formtree.Input{
		UISchema:   definition.UISchema,
		FormSchema: processed.FormSchema,
		FormData:   req.FormData,
		Warnings:   req.Warnings,
		Mapped:     mapped,
		Required:   jsonschema.NewRequiredSet(jsonschema.RequiredPaths(processed.FormSchema)),
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Prepared{}, ctxErr
		}
		prepared.StructureError = err
		o.logStructureError(definition.FormID, ReasonBuild, err)
		return prepared, nil
	}
	if req.Print {
		widgets = formtree.ToPrint(widgets)
	}

	prepared.Form.Widgets = widgets
	prepared.Form.Nav = formtree.NavItems(definition.UISchema)
	prepared.Form.Warnings = mapped

	for _, decorator := range o.decorators {
		if decorator == nil {
			continue
		}
		if err := decorator.Decorate(&prepared.Form); err != nil {
			return Prepared{}, fmt.Errorf("orchestrator: decorate form: %w", err)
		}
	}
	return prepared, nil
}

func (o *Orchestrator) load(ctx context.Context, req Request) (applications.Form, error) {
	if req.Form != nil {
		return *req.Form, nil
	}
	if req.FormID == "" {
		return applications.Form{}, ErrFormIDRequired
	}
	if o.fetcher == nil {
		return applications.Form{}, ErrNoFetcher
	}

	ctx, span := o.tracer.Start(ctx, "orchestrator.load")
	defer span.End()
	definition, err := o.fetcher.Form(ctx, req.FormID)
	if err != nil {
		span.RecordError(err)
		return applications.Form{}, fmt.Errorf("orchestrator: load form %s: %w", req.FormID, err)
	}
	return definition, nil
}

func (o *Orchestrator) logStructureError(formID, stage string, err error) {
	o.logger.WithError(err).Error("form structure could not be rendered", map[string]any{
		"form_id": formID,
		"stage":   stage,
	})
}

func (o *Orchestrator) resolveTheme(name, variant string) (*theme.RendererConfig, error) {
	if o.themeSelector == nil {
		return nil, nil
	}
	if name == "" {
		name = o.defaultTheme
		if variant == "" {
			variant = o.defaultVariant
		}
	}
	selection, err := o.themeSelector.Select(name, variant)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: select theme: %w", err)
	}
	return RendererConfigFromSelection(selection, o.themeFallbacks), nil
}

func (o *Orchestrator) rendererFor(name string) (render.Renderer, error) {
	if o.registry == nil {
		return nil, errors.New("orchestrator: renderer registry is nil")
	}

	target := name
	if target == "" {
		target = o.defaultRenderer
	}

	if target != "" {
		renderer, err := o.registry.Get(target)
		if err == nil {
			return renderer, nil
		}
		if name != "" {
			return nil, fmt.Errorf("orchestrator: renderer %q: %w", name, err)
		}
	}

	names := o.registry.List()
	if len(names) == 0 {
		return nil, errors.New("orchestrator: no renderers registered")
	}

	renderer, err := o.registry.Get(names[0])
	if err != nil {
		return nil, fmt.Errorf("orchestrator: renderer %q: %w", names[0], err)
	}
	return renderer, nil
}

func (o *Orchestrator) applyDefaults() {
	if o.registry == nil {
		o.registry = render.NewRegistry()
		renderer, err := vanilla.New()
		if err != nil {
			o.initialiseErr = fmt.Errorf("orchestrator: default renderer: %w", err)
		} else {
			o.registry.MustRegister(renderer)
		}
	}
	if o.defaultRenderer == "" {
		o.defaultRenderer = vanilla.Name
	}
	if o.themeFallbacks == nil {
		o.themeFallbacks = defaultThemeFallbacks()
	}
	if o.logger == nil {
		o.logger = logger.NewNoOpLogger()
	}
	if o.tracer == nil {
		o.tracer = otel.Tracer(tracerName)
	}
}
