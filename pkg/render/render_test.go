package render_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-applyform/pkg/model"
	"github.com/goliatone/go-applyform/pkg/render"
	"github.com/goliatone/go-applyform/pkg/warnings"
)

type namedRenderer string

func (n namedRenderer) Name() string        { return string(n) }
func (n namedRenderer) ContentType() string { return "text/plain" }
func (n namedRenderer) Render(context.Context, model.Form, render.RenderOptions) ([]byte, error) {
	return []byte(n), nil
}

func TestRegistry(t *testing.T) {
	registry := render.NewRegistry()
	registry.MustRegister(namedRenderer("json"))
	registry.MustRegister(namedRenderer("html"))

	assert.Equal(t, []string{"html", "json"}, registry.List())
	assert.Error(t, registry.Register(namedRenderer("html")))
	assert.Error(t, registry.Register(namedRenderer("")))

	got, err := registry.Get("json")
	require.NoError(t, err)
	assert.Equal(t, "json", got.Name())

	_, err = registry.Get("pdf")
	assert.Error(t, err)
}

func TestMergeAndSortHiddenFields(t *testing.T) {
	merged := render.MergeHiddenFields(map[string]string{" existing ": "keep", "": "ignored"},
		render.CSRFToken("_csrf", "token123"),
		render.ActionField("form_id", "sf424"),
		render.Hidden("  ", "skip"),
	)
	want := []render.HiddenField{
		{Name: "$ACTION_form_id", Value: "sf424"},
		{Name: "_csrf", Value: "token123"},
		{Name: "existing", Value: "keep"},
	}
	if diff := cmp.Diff(want, render.SortedHiddenFields(merged)); diff != "" {
		t.Fatalf("hidden fields mismatch (-want +got):\n%s", diff)
	}
	assert.Empty(t, render.SortedHiddenFields(nil))
}

func TestMapWarnings(t *testing.T) {
	mapping := render.MapWarnings([]model.MappedWarning{
		{Message: "'title' is a required property", Formatted: "Project title is required", HTMLField: "title"},
		{Message: "'title' is a required property", Formatted: "Project title is required", HTMLField: "title"},
		{Message: "Something odd happened"},
	})

	want := render.ErrorMapping{
		Summary: []warnings.SummaryItem{{Href: "#title", Text: "Project title is required"}},
		Form:    []string{"Something odd happened"},
	}
	if diff := cmp.Diff(want, mapping); diff != "" {
		t.Fatalf("mapping mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []string{"a", "b"}, render.MergeFormErrors([]string{" a ", "b"}, "a", ""))
}

type catalog map[string]string

func (c catalog) Translate(_ string, key string, _ ...any) (string, error) {
	if msg, ok := c[key]; ok {
		return msg, nil
	}
	return "", errors.New("missing")
}

func TestMessages(t *testing.T) {
	english := render.Messages("en", nil)
	assert.Equal(t, "Error rendering form", english[render.MsgErrorRenderingTitle])

	spanish := render.Messages("es", catalog{render.MsgSave: "Guardar"})
	assert.Equal(t, "Guardar", spanish[render.MsgSave])
	assert.Equal(t, render.DefaultMessages[render.MsgNavTitle], spanish[render.MsgNavTitle])

	translator := render.CatalogTranslator{"es": {render.MsgSave: "Guardar"}}
	msg, err := translator.Translate("es-MX", render.MsgSave)
	require.NoError(t, err)
	assert.Equal(t, "Guardar", msg)
	_, err = translator.Translate("fr", render.MsgSave)
	assert.Error(t, err)
}
