package tui

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/spf13/cast"

	"github.com/goliatone/go-applyform/pkg/formdata"
	"github.com/goliatone/go-applyform/pkg/formpath"
	"github.com/goliatone/go-applyform/pkg/jsonschema"
	"github.com/goliatone/go-applyform/pkg/model"
	"github.com/goliatone/go-applyform/pkg/render"
)

// Name is the registry key of the terminal renderer.
const Name = "tui"

const noAnswer = "(no answer)"

// Renderer fills a form interactively in the terminal. Each widget becomes a
// prompt; the answers are emitted as the response a browser save would have
// produced.
type Renderer struct {
	driver            PromptDriver
	outputFormat      OutputFormat
	schema            map[string]any
	submitTransformer SubmitTransformer
	theme             Theme
}

// New constructs a TUI renderer with defaults (survey driver, JSON output).
func New(options ...Option) *Renderer {
	r := &Renderer{
		driver:       newSurveyDriver(),
		outputFormat: OutputFormatJSON,
	}
	for _, opt := range options {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Name reports the renderer identifier.
func (r *Renderer) Name() string {
	return Name
}

// ContentType reports the serialization format used by Render.
func (r *Renderer) ContentType() string {
	switch r.outputFormat {
	case OutputFormatFormURLEncoded:
		return "application/x-www-form-urlencoded"
	case OutputFormatPrettyText:
		return "text/plain"
	default:
		return "application/json"
	}
}

// Render prompts for every editable widget in document order and serializes
// the answers. Attachment and budget widgets are listed but keep their saved
// values; files and budget tables are edited in the browser.
func (r *Renderer) Render(ctx context.Context, form model.Form, opts render.RenderOptions) ([]byte, error) {
	if ctx == nil {
		return nil, errors.New("tui: context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.driver == nil {
		return nil, errors.New("tui: prompt driver is nil")
	}
	if opts.StructureError != nil {
		return nil, fmt.Errorf("tui: form cannot be filled: %w", opts.StructureError)
	}
	if form.Print {
		return nil, ErrPrintMode
	}

	if form.Title != "" {
		if err := r.driver.Info(ctx, r.theme.SectionPrefix+form.Title); err != nil {
			return nil, err
		}
	}
	for _, message := range opts.FormErrors {
		if err := r.driver.Info(ctx, r.theme.ErrorPrefix+message); err != nil {
			return nil, err
		}
	}

	state := NewState()
	for _, widget := range form.Widgets {
		if err := r.promptWidget(ctx, widget, state, opts); err != nil {
			return nil, err
		}
	}
	return r.serialize(state.Values())
}

func (r *Renderer) promptWidget(ctx context.Context, widget model.Widget, state *State, opts render.RenderOptions) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	state.AddErrors(widget.Name, widget.RawErrors...)

	switch {
	case widget.Type == model.WidgetFieldset:
		if widget.Label != "" {
			if err := r.driver.Info(ctx, r.theme.SectionPrefix+widget.Label); err != nil {
				return err
			}
		}
		for _, child := range widget.Children {
			if err := r.promptWidget(ctx, child, state, opts); err != nil {
				return err
			}
		}
		return nil
	case widget.Type.IsAttachment():
		carry(state, widget.Name, widget.Value)
		return r.driver.Info(ctx, r.theme.InfoPrefix+attachmentSummary(widget, opts))
	case widget.Type.IsBudget():
		carry(state, widget.Name, widget.Value)
		return r.driver.Info(ctx, r.theme.InfoPrefix+widget.Label+": budget tables are edited in the browser")
	case widget.Type == model.WidgetPrint:
		carry(state, widget.Name, widget.Value)
		return nil
	case widget.Disabled || widget.ReadOnly:
		carry(state, widget.Name, widget.Value)
		return nil
	}

	if err := r.showErrors(ctx, state.ErrorsFor(widget.Name)); err != nil {
		return err
	}

	switch widget.Type {
	case model.WidgetCheckbox:
		return r.promptCheckbox(ctx, widget, state)
	case model.WidgetSelect, model.WidgetRadio:
		return r.promptSelect(ctx, widget, state)
	case model.WidgetMultiSelect:
		return r.promptMultiSelect(ctx, widget, state)
	case model.WidgetTextArea:
		return r.promptTextArea(ctx, widget, state)
	default:
		return r.promptText(ctx, widget, state)
	}
}

func (r *Renderer) showErrors(ctx context.Context, messages []string) error {
	for _, message := range messages {
		if err := r.driver.Info(ctx, r.theme.ErrorPrefix+message); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) promptText(ctx context.Context, widget model.Widget, state *State) error {
	answer, err := r.driver.Input(ctx, InputConfig{
		Message:   displayLabel(widget),
		Default:   stringValue(widget.Value),
		Help:      widget.Description,
		Validator: textValidator(widget),
	})
	if err != nil {
		return err
	}
	state.Set(widget.Name, answer)
	return nil
}

func (r *Renderer) promptTextArea(ctx context.Context, widget model.Widget, state *State) error {
	validate := textValidator(widget)
	for {
		answer, err := r.driver.TextArea(ctx, TextAreaConfig{
			Message: displayLabel(widget),
			Default: stringValue(widget.Value),
			Help:    widget.Description,
		})
		if err != nil {
			return err
		}
		if err := validate(answer); err != nil {
			if err := r.driver.Info(ctx, r.theme.ErrorPrefix+err.Error()); err != nil {
				return err
			}
			continue
		}
		state.Set(widget.Name, answer)
		return nil
	}
}

func (r *Renderer) promptCheckbox(ctx context.Context, widget model.Widget, state *State) error {
	answer, err := r.driver.Confirm(ctx, ConfirmConfig{
		Message: displayLabel(widget),
		Default: cast.ToBool(widget.Value),
		Help:    widget.Description,
	})
	if err != nil {
		return err
	}
	state.Set(widget.Name, cast.ToString(answer))
	return nil
}

func (r *Renderer) promptSelect(ctx context.Context, widget model.Widget, state *State) error {
	labels, values := choices(widget.Options.EnumOptions)
	if !widget.Required {
		labels = append([]string{noAnswer}, labels...)
		values = append([]string{""}, values...)
	}
	idx, err := r.driver.Select(ctx, SelectConfig{
		Message:      displayLabel(widget),
		Options:      labels,
		DefaultIndex: indexOf(values, stringValue(widget.Value)),
		Help:         widget.Description,
	})
	if err != nil {
		return err
	}
	if idx < 0 || idx >= len(values) {
		state.Set(widget.Name)
		return nil
	}
	state.Set(widget.Name, values[idx])
	return nil
}

func (r *Renderer) promptMultiSelect(ctx context.Context, widget model.Widget, state *State) error {
	labels, values := choices(widget.Options.EnumOptions)
	indices, err := r.driver.MultiSelect(ctx, SelectConfig{
		Message:      displayLabel(widget),
		Options:      labels,
		DefaultIndex: -1,
		Defaults:     indicesOf(values, stringValues(widget.Value)),
		Help:         widget.Description,
	})
	if err != nil {
		return err
	}
	state.Set(widget.Name, defaultsFromIndices(values, indices)...)
	return nil
}

func displayLabel(widget model.Widget) string {
	label := widget.Label
	if label == "" {
		label = widget.Name
	}
	if widget.Required {
		label += " *"
	}
	return label
}

// textValidator enforces the length limits and numeric types the browser
// would enforce. Missing required answers are allowed; the save reports
// them as warnings.
func textValidator(widget model.Widget) func(string) error {
	kind := jsonschema.SchemaType(widget.Schema)
	return func(answer string) error {
		answer = strings.TrimSpace(answer)
		if answer == "" {
			return nil
		}
		length := utf8.RuneCountInString(answer)
		if widget.MaxLength != nil && length > *widget.MaxLength {
			return fmt.Errorf("must be at most %d characters", *widget.MaxLength)
		}
		if widget.MinLength != nil && length < *widget.MinLength {
			return fmt.Errorf("must be at least %d characters", *widget.MinLength)
		}
		switch kind {
		case "integer":
			if _, err := cast.ToInt64E(answer); err != nil {
				return fmt.Errorf("must be a whole number")
			}
		case "number":
			if _, err := cast.ToFloat64E(answer); err != nil {
				return fmt.Errorf("must be a number")
			}
		}
		return nil
	}
}

func choices(options []model.EnumOption) (labels, values []string) {
	labels = make([]string, 0, len(options))
	values = make([]string, 0, len(options))
	for _, option := range options {
		value := stringValue(option.Value)
		label := option.Label
		if label == "" {
			label = value
		}
		labels = append(labels, label)
		values = append(values, value)
	}
	return labels, values
}

func attachmentSummary(widget model.Widget, opts render.RenderOptions) string {
	ids := stringValues(widget.Value)
	if len(ids) == 0 {
		return widget.Label + ": no files uploaded"
	}
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		name := "previously uploaded file"
		if opts.Attachments != nil {
			if found, ok := opts.Attachments.FileName(id); ok {
				name = found
			}
		}
		names = append(names, name)
	}
	return widget.Label + ": " + strings.Join(names, ", ")
}

// carry keeps a value the session does not prompt for, flattened into HTML
// field names.
func carry(state *State, name string, value any) {
	switch typed := value.(type) {
	case map[string]any:
		for key, child := range typed {
			carry(state, name+formpath.Delimiter+key, child)
		}
	case []any:
		state.Set(name, stringValues(typed)...)
	default:
		state.Set(name, stringValue(typed))
	}
}

func (r *Renderer) serialize(values url.Values) ([]byte, error) {
	switch r.outputFormat {
	case OutputFormatFormURLEncoded:
		return []byte(values.Encode()), nil
	case OutputFormatPrettyText:
		return []byte(prettyPrint(values)), nil
	}

	shaped, err := formdata.Shape(values, formdata.WithSchema(r.schema))
	if err != nil {
		return nil, fmt.Errorf("tui: shape answers: %w", err)
	}
	if r.submitTransformer != nil {
		shaped, err = r.submitTransformer(shaped)
		if err != nil {
			return nil, fmt.Errorf("tui: submit transformer: %w", err)
		}
	}
	return json.MarshalIndent(shaped, "", "  ")
}

func prettyPrint(values url.Values) string {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, key := range keys {
		fmt.Fprintf(&b, "%s: %s\n", key, strings.Join(values[key], ", "))
	}
	return b.String()
}
