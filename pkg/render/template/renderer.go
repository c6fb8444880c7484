package template

import (
	"io"
)

// TemplateRenderer is the engine contract widget renderers and the form
// document renderer depend on. Names are resolved relative to the engine's
// template roots; the engine appends its extension when it is missing.
type TemplateRenderer interface {
	Render(name string, data any, out ...io.Writer) (string, error)
	RenderTemplate(name string, data any, out ...io.Writer) (string, error)
	RenderString(templateContent string, data any, out ...io.Writer) (string, error)
	RegisterFilter(name string, fn func(input any, param any) (any, error)) error
	GlobalContext(data any) error
}
