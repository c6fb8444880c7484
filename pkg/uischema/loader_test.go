package uischema_test

import (
	"errors"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-applyform/pkg/uischema"
)

func TestParse_DefinitionAcceptsStringOrList(t *testing.T) {
	data := []byte(`[
  {"type": "field", "definition": "/properties/a"},
  {"type": "multiField", "name": "combo", "definition": ["/properties/b", "/properties/c"]}
]`)

	ui, err := uischema.Parse(data, "inline.json")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	want := uischema.UISchema{
		{Type: uischema.NodeField, Definition: uischema.Definition{"/properties/a"}},
		{Type: uischema.NodeMultiField, Name: "combo", Definition: uischema.Definition{"/properties/b", "/properties/c"}},
	}
	if diff := cmp.Diff(want, ui); diff != "" {
		t.Fatalf("ui schema mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_YAML(t *testing.T) {
	data := []byte(`
- type: section
  name: s1
  label: Section one
  children:
    - type: field
      definition: /properties/title
      widget: TextArea
`)
	ui, err := uischema.Parse(data, "inline.yaml")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(ui) != 1 || len(ui[0].Children) != 1 {
		t.Fatalf("unexpected tree: %#v", ui)
	}
	child := ui[0].Children[0]
	if child.Definition.First() != "/properties/title" || child.Widget != "TextArea" {
		t.Fatalf("unexpected child: %#v", child)
	}
}

func TestParse_WrappedDocument(t *testing.T) {
	data := []byte(`{"uiSchema": [{"type": "field", "schema": {"type": "string", "title": "Inline"}}]}`)
	ui, err := uischema.Parse(data, "wrapped.json")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(ui) != 1 || ui[0].Schema["title"] != "Inline" {
		t.Fatalf("unexpected tree: %#v", ui)
	}
}

func TestParse_StructuralErrors(t *testing.T) {
	cases := []struct {
		name string
		data string
		want error
	}{
		{"missing type", `[{"definition": "/properties/a"}]`, uischema.ErrMissingType},
		{"unknown type", `[{"type": "grid"}]`, uischema.ErrUnknownNodeType},
		{"field without definition", `[{"type": "field", "name": "x"}]`, uischema.ErrMissingDefinition},
		{"multiField without name", `[{"type": "multiField", "definition": ["/properties/a"]}]`, uischema.ErrMissingName},
		{"nested section", `[{"type": "section", "name": "s", "children": [{"type": "section", "name": "t"}]}]`, uischema.ErrNestedSection},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := uischema.Parse([]byte(tc.data), "bad.json")
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
			var nodeErr *uischema.NodeError
			if !errors.As(err, &nodeErr) {
				t.Fatalf("expected NodeError, got %T", err)
			}
		})
	}
}

func TestParse_EmptyList(t *testing.T) {
	ui, err := uischema.Parse([]byte(`[]`), "empty.json")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(ui) != 0 {
		t.Fatalf("expected empty schema, got %d nodes", len(ui))
	}
}

func TestLoadFS(t *testing.T) {
	fsys := fstest.MapFS{
		"forms/one.json": {Data: []byte(`[{"type": "field", "definition": "/properties/a"}]`)},
		"forms/two.yml":  {Data: []byte("- type: field\n  definition: /properties/b\n")},
		"README.md":      {Data: []byte("ignored")},
	}

	store, err := uischema.LoadFS(fsys)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff([]string{"one", "two"}, store.Names()); diff != "" {
		t.Fatalf("names mismatch (-want +got):\n%s", diff)
	}
	two, ok := store.Get("two")
	if !ok || two[0].Definition.First() != "/properties/b" {
		t.Fatalf("unexpected schema two: %#v", two)
	}
}

func TestLoadFS_Duplicate(t *testing.T) {
	fsys := fstest.MapFS{
		"a/form.json": {Data: []byte(`[]`)},
		"b/form.yaml": {Data: []byte(`[]`)},
	}
	if _, err := uischema.LoadFS(fsys); err == nil {
		t.Fatalf("expected duplicate schema error")
	}
}

func TestEmbeddedStore(t *testing.T) {
	store, err := uischema.EmbeddedStore()
	if err != nil {
		t.Fatalf("embedded store: %v", err)
	}
	ui, ok := store.Get("sf424a")
	if !ok {
		t.Fatalf("expected sf424a schema")
	}
	sections := ui.Sections()
	if len(sections) != 6 {
		t.Fatalf("expected 6 sections, got %d", len(sections))
	}
	if sections[3].Children[0].Definition.First() != "/properties/forecasted_cash_needs" {
		t.Fatalf("unexpected section D definition: %#v", sections[3].Children[0].Definition)
	}
	if _, ok := store.Get("project_abstract"); !ok {
		t.Fatalf("expected project_abstract schema")
	}
}

func TestDefinition_MarshalSingleAsString(t *testing.T) {
	got, err := uischema.Definition{"/properties/a"}.MarshalJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(got) != `"/properties/a"` {
		t.Fatalf("unexpected json %s", got)
	}
}
