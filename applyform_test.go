package applyform

import (
	"context"
	"io/fs"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/goliatone/go-applyform/pkg/applications"
	"github.com/goliatone/go-applyform/pkg/renderers/vanilla"
)

const titleForm = `{
  "form_id": "title",
  "form_name": "Title only",
  "form_json_schema": {
    "type": "object",
    "required": ["title"],
    "properties": {"title": {"type": "string", "title": "Project title"}}
  },
  "form_ui_schema": [{"type": "field", "definition": "/properties/title"}]
}`

func TestGenerateHTML(t *testing.T) {
	fetcher := applications.NewFixtureFetcher(fstest.MapFS{"title.json": {Data: []byte(titleForm)}})

	out, err := GenerateHTML(context.Background(), fetcher, "title", map[string]any{"title": "Rivers"}, nil)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !strings.Contains(string(out), `value="Rivers"`) {
		t.Fatalf("expected prefilled value, got:\n%s", out)
	}
}

func TestGenerateHTMLFromDefinition_ShowsWarnings(t *testing.T) {
	fetcher := applications.NewFixtureFetcher(fstest.MapFS{"title.json": {Data: []byte(titleForm)}})
	form, err := fetcher.Form(context.Background(), "title")
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	out, err := GenerateHTMLFromDefinition(context.Background(), form, nil, []Warning{
		{Field: "$", Message: "'title' is a required property", Type: "required"},
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !strings.Contains(string(out), "Project title is required") {
		t.Fatalf("expected mapped warning, got:\n%s", out)
	}
}

func TestEmbeddedFilesystems(t *testing.T) {
	if _, err := fs.ReadFile(EmbeddedTemplates(), "vanilla/form.tmpl"); err != nil {
		t.Fatalf("form template: %v", err)
	}
	if _, err := fs.ReadFile(EmbeddedWidgetTemplates(), "widgets/text.tmpl"); err != nil {
		t.Fatalf("text widget template: %v", err)
	}
	if _, err := fs.ReadFile(StylesheetFS(), vanilla.StylesheetName); err != nil {
		t.Fatalf("stylesheet: %v", err)
	}
}
