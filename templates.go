package applyform

import (
	"io/fs"

	"github.com/goliatone/go-applyform/pkg/renderers/vanilla"
	"github.com/goliatone/go-applyform/pkg/widgets"
)

// EmbeddedTemplates exposes the built-in document templates so callers can
// reuse or extend them without importing the renderer package directly.
func EmbeddedTemplates() fs.FS {
	return vanilla.TemplatesFS()
}

// EmbeddedWidgetTemplates exposes the built-in widget partials. Theme
// manifests override them by key, e.g. "widgets.text".
func EmbeddedWidgetTemplates() fs.FS {
	return widgets.TemplatesFS()
}

// StylesheetFS exposes the form stylesheet for mounting under
// orchestrator.DefaultAssetPrefix.
func StylesheetFS() fs.FS {
	return vanilla.AssetsFS()
}
