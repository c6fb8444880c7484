package formtree

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-applyform/pkg/model"
	"github.com/goliatone/go-applyform/pkg/uischema"
)

func testSchema() map[string]any {
	return map[string]any{
		"type":     "object",
		"required": []any{"title", "applicant"},
		"properties": map[string]any{
			"title": map[string]any{"type": "string", "title": "Project title", "maxLength": float64(120)},
			"abstract": map[string]any{
				"type": "string", "title": "Abstract", "maxLength": float64(4000),
			},
			"agree": map[string]any{"type": "boolean", "title": "Do you agree?"},
			"state": map[string]any{
				"type": "string", "title": "State", "enum": []any{"VA", "MD"},
			},
			"upload": map[string]any{"type": "string", "format": "uuid", "title": "Narrative"},
			"applicant": map[string]any{
				"type":     "object",
				"required": []any{"last_name"},
				"properties": map[string]any{
					"first_name": map[string]any{"type": "string", "title": "First name"},
					"last_name":  map[string]any{"type": "string", "title": "Last name"},
				},
			},
			"contact": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"phone": map[string]any{"type": "string"},
				},
			},
			"placeholder": map[string]any{"type": "null", "title": "Unused"},
		},
	}
}

func field(def string) uischema.Node {
	return uischema.Node{Type: uischema.NodeField, Definition: uischema.Definition{def}}
}

func TestBuild_EmptyUISchema(t *testing.T) {
	got, err := Build(context.Background(), Input{FormSchema: testSchema()})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil list, got %#v", got)
	}
}

func TestBuild_OrderAndSections(t *testing.T) {
	ui := uischema.UISchema{
		field("/properties/title"),
		{
			Type:        uischema.NodeSection,
			Name:        "applicant",
			Label:       "Applicant",
			Description: "Who is applying",
			Children: []uischema.Node{
				field("/properties/applicant/properties/first_name"),
				field("/properties/applicant/properties/last_name"),
			},
		},
		field("/properties/agree"),
	}
	data := map[string]any{
		"title":     "Rivers",
		"applicant": map[string]any{"first_name": "Ada"},
		"agree":     true,
	}

	got, err := Build(context.Background(), Input{UISchema: ui, FormSchema: testSchema(), FormData: data})
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	type summary struct {
		Name     string
		Type     model.WidgetType
		Value    any
		Required bool
	}
	flatten := func(ws []model.Widget) []summary {
		var out []summary
		for i := range ws {
			ws[i].Walk(func(w *model.Widget) {
				out = append(out, summary{Name: w.Name, Type: w.Type, Value: w.Value, Required: w.Required})
			})
		}
		return out
	}

	want := []summary{
		{Name: "title", Type: model.WidgetText, Value: "Rivers", Required: true},
		{Name: "applicant", Type: model.WidgetFieldset},
		{Name: "applicant--first_name", Type: model.WidgetText, Value: "Ada"},
		{Name: "applicant--last_name", Type: model.WidgetText, Required: true},
		{Name: "agree", Type: model.WidgetCheckbox, Value: true},
	}
	if diff := cmp.Diff(want, flatten(got)); diff != "" {
		t.Fatalf("widget tree mismatch (-want +got):\n%s", diff)
	}
	if got[1].Label != "Applicant" || got[1].Description != "Who is applying" {
		t.Fatalf("section metadata not carried: %+v", got[1])
	}
}

func TestBuild_MissingDefinitionAborts(t *testing.T) {
	ui := uischema.UISchema{
		field("/properties/title"),
		{
			Type: uischema.NodeSection,
			Name: "broken",
			Children: []uischema.Node{
				{Type: uischema.NodeField},
			},
		},
	}

	got, err := Build(context.Background(), Input{UISchema: ui, FormSchema: testSchema()})
	if got != nil {
		t.Fatalf("expected no partial output, got %d widgets", len(got))
	}
	var nodeErr *NodeError
	if !errors.As(err, &nodeErr) {
		t.Fatalf("expected *NodeError, got %v", err)
	}
	if !errors.Is(err, ErrMissingDefinition) {
		t.Fatalf("expected ErrMissingDefinition, got %v", err)
	}
}

func TestBuild_NestedSectionRejected(t *testing.T) {
	ui := uischema.UISchema{{
		Type: uischema.NodeSection,
		Name: "outer",
		Children: []uischema.Node{{
			Type:     uischema.NodeSection,
			Name:     "inner",
			Children: []uischema.Node{field("/properties/title")},
		}},
	}}
	_, err := Build(context.Background(), Input{UISchema: ui, FormSchema: testSchema()})
	if !errors.Is(err, ErrNestedSection) {
		t.Fatalf("expected ErrNestedSection, got %v", err)
	}
}

func TestBuild_UnresolvedDefinition(t *testing.T) {
	ui := uischema.UISchema{field("/properties/missing")}
	_, err := Build(context.Background(), Input{UISchema: ui, FormSchema: testSchema()})
	if !errors.Is(err, ErrUnresolvedDefinition) {
		t.Fatalf("expected ErrUnresolvedDefinition, got %v", err)
	}
}

func TestBuild_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Build(ctx, Input{UISchema: uischema.UISchema{field("/properties/title")}}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestBuild_WarningsBecomeRawErrors(t *testing.T) {
	ui := uischema.UISchema{
		field("/properties/title"),
		field("/properties/applicant/properties/last_name"),
	}
	warns := []model.FormValidationWarning{
		{Field: "$.title", Message: "'title' is a required property", Type: "required"},
		{Field: "$.applicant", Message: "'last_name' is a required property", Type: "required"},
	}

	got, err := Build(context.Background(), Input{UISchema: ui, FormSchema: testSchema(), Warnings: warns})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if diff := cmp.Diff([]string{"Project title is required"}, got[0].RawErrors); diff != "" {
		t.Fatalf("title errors mismatch (-want +got):\n%s", diff)
	}
	if len(got[1].RawErrors) != 1 {
		t.Fatalf("expected nested required warning on last name, got %v", got[1].RawErrors)
	}
}

func TestResolveField(t *testing.T) {
	cases := []struct {
		name     string
		node     uischema.Node
		wantType model.WidgetType
		check    func(t *testing.T, w model.Widget)
	}{
		{
			name:     "long text becomes textarea",
			node:     field("/properties/abstract"),
			wantType: model.WidgetTextArea,
			check: func(t *testing.T, w model.Widget) {
				if w.MaxLength == nil || *w.MaxLength != 4000 {
					t.Fatalf("expected maxLength 4000, got %v", w.MaxLength)
				}
			},
		},
		{
			name:     "enum select gets placeholder",
			node:     field("/properties/state"),
			wantType: model.WidgetSelect,
			check: func(t *testing.T, w model.Widget) {
				want := model.Options{
					EnumOptions: []model.EnumOption{{Value: "VA", Label: "VA"}, {Value: "MD", Label: "MD"}},
					EmptyValue:  EmptySelectLabel,
				}
				if diff := cmp.Diff(want, w.Options); diff != "" {
					t.Fatalf("options mismatch (-want +got):\n%s", diff)
				}
			},
		},
		{
			name:     "boolean radio gets yes and no",
			node:     uischema.Node{Type: uischema.NodeField, Definition: uischema.Definition{"/properties/agree"}, Widget: "Radio"},
			wantType: model.WidgetRadio,
			check: func(t *testing.T, w model.Widget) {
				want := []model.EnumOption{{Value: "true", Label: "Yes"}, {Value: "false", Label: "No"}}
				if diff := cmp.Diff(want, w.Options.EnumOptions); diff != "" {
					t.Fatalf("options mismatch (-want +got):\n%s", diff)
				}
			},
		},
		{
			name:     "uuid string is an attachment",
			node:     field("/properties/upload"),
			wantType: model.WidgetAttachment,
		},
		{
			name:     "null type disables the field",
			node:     field("/properties/placeholder"),
			wantType: model.WidgetText,
			check: func(t *testing.T, w model.Widget) {
				if !w.Disabled {
					t.Fatalf("expected null schema to disable widget")
				}
			},
		},
		{
			name: "inline schema overrides definition",
			node: uischema.Node{
				Type:       uischema.NodeField,
				Definition: uischema.Definition{"/properties/title"},
				Schema:     map[string]any{"title": "Short title"},
			},
			wantType: model.WidgetText,
			check: func(t *testing.T, w model.Widget) {
				if w.Label != "Short title" || w.Name != "title" {
					t.Fatalf("unexpected label/name: %q %q", w.Label, w.Name)
				}
			},
		},
		{
			name: "schema only field is named from its title",
			node: uischema.Node{
				Type:   uischema.NodeField,
				Schema: map[string]any{"type": "string", "title": "Extra notes"},
			},
			wantType: model.WidgetText,
			check: func(t *testing.T, w model.Widget) {
				if w.Name != "Extra-notes" {
					t.Fatalf("unexpected name %q", w.Name)
				}
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w, err := ResolveField(FieldInput{Node: tc.node, FormSchema: testSchema()})
			if err != nil {
				t.Fatalf("resolve: %v", err)
			}
			if w.Type != tc.wantType {
				t.Fatalf("type: want %q, got %q", tc.wantType, w.Type)
			}
			if tc.check != nil {
				tc.check(t, w)
			}
		})
	}
}

func TestResolveField_MultiField(t *testing.T) {
	node := uischema.Node{
		Type:       uischema.NodeMultiField,
		Name:       "people",
		Definition: uischema.Definition{"/properties/applicant", "/properties/contact"},
	}
	data := map[string]any{
		"applicant": map[string]any{"first_name": "Ada"},
		"contact":   map[string]any{"phone": "555"},
	}
	warns := []model.FormValidationWarning{
		{Field: "$.contact.phone", Message: "bad phone"},
		{Field: "$.title", Message: "unrelated"},
	}

	w, err := ResolveField(FieldInput{Node: node, FormSchema: testSchema(), FormData: data, Warnings: warns})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if diff := cmp.Diff(map[string]any{"first_name": "Ada", "phone": "555"}, w.Value); diff != "" {
		t.Fatalf("merged value mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"bad phone"}, w.RawErrors); diff != "" {
		t.Fatalf("multiField errors mismatch (-want +got):\n%s", diff)
	}
	if w.ID != "people" {
		t.Fatalf("expected id from node name, got %q", w.ID)
	}
}

func TestResolveField_BudgetKeepsRawWarnings(t *testing.T) {
	schema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"activity_line_items": map[string]any{"type": "array", "items": map[string]any{"type": "object"}},
		},
	}
	warns := []model.FormValidationWarning{{Field: "$.activity_line_items[0].activity_title", Message: "too long"}}
	node := uischema.Node{
		Type:       uischema.NodeField,
		Definition: uischema.Definition{"/properties/activity_line_items"},
		Widget:     string(model.WidgetBudgetSectionA),
	}
	data := map[string]any{"activity_line_items": []any{}}

	w, err := ResolveField(FieldInput{Node: node, FormSchema: schema, FormData: data, Warnings: warns})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if w.Type != model.WidgetBudgetSectionA {
		t.Fatalf("unexpected type %q", w.Type)
	}
	if len(w.Warnings) != 1 || w.FormData == nil || len(w.RawErrors) != 0 {
		t.Fatalf("budget widget should carry raw warnings and form data: %+v", w)
	}
}
