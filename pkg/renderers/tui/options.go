package tui

// OutputFormat controls how collected values are serialized.
type OutputFormat string

const (
	// OutputFormatJSON emits the shaped application response as JSON.
	OutputFormatJSON OutputFormat = "json"
	// OutputFormatFormURLEncoded emits the flat field values the HTML form
	// would have posted.
	OutputFormatFormURLEncoded OutputFormat = "form"
	// OutputFormatPrettyText emits a human-friendly text summary.
	OutputFormatPrettyText OutputFormat = "pretty"
)

// Theme captures optional formatting hints the driver can apply when printing
// messages.
type Theme struct {
	SectionPrefix string
	InfoPrefix    string
	ErrorPrefix   string
}

// SubmitTransformer mutates the shaped response before serialization.
type SubmitTransformer func(map[string]any) (map[string]any, error)

// Option configures the TUI renderer.
type Option func(*Renderer)

// WithPromptDriver overrides the prompt driver used by the renderer.
func WithPromptDriver(driver PromptDriver) Option {
	return func(r *Renderer) {
		if driver != nil {
			r.driver = driver
		}
	}
}

// WithOutputFormat selects the output serialization format.
func WithOutputFormat(format OutputFormat) Option {
	return func(r *Renderer) {
		if format != "" {
			r.outputFormat = format
		}
	}
}

// WithFormSchema lets the JSON output coerce numbers, booleans and lists the
// way a server-side save does.
func WithFormSchema(schema map[string]any) Option {
	return func(r *Renderer) {
		r.schema = schema
	}
}

// WithSubmitTransformer allows callers to mutate the shaped response prior to
// serialization.
func WithSubmitTransformer(fn SubmitTransformer) Option {
	return func(r *Renderer) {
		r.submitTransformer = fn
	}
}

// WithTheme applies optional message prefixes.
func WithTheme(theme Theme) Option {
	return func(r *Renderer) {
		r.theme = theme
	}
}
