package warnings

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-applyform/pkg/model"
	"github.com/goliatone/go-applyform/pkg/uischema"
)

func testSchema() map[string]any {
	return map[string]any{
		"type":     "object",
		"required": []any{"applicant"},
		"properties": map[string]any{
			"title": map[string]any{"type": "string", "title": "Project title?"},
			"tags":  map[string]any{"type": "array", "title": "Tags"},
			"applicant": map[string]any{
				"type":     "object",
				"title":    "Applicant",
				"required": []any{"first_name", "last_name"},
				"properties": map[string]any{
					"first_name": map[string]any{"type": "string", "title": "First name"},
					"last_name":  map[string]any{"type": "string", "title": "Last name"},
				},
			},
		},
	}
}

func TestFormat(t *testing.T) {
	cases := []struct {
		name      string
		message   string
		title     string
		fieldName string
		want      string
	}{
		{"title substitution", "'title' is too long", "Project title?", "title", "Project title is too long"},
		{"empty array", "[] should be non-empty", "Tags", "tags", "Tags is required"},
		{"required property", "'first_name' is a required property", "First name", "first_name", "First name is required"},
		{"default title", "'x' is invalid", "", "x", "Field is invalid"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Format(tc.message, tc.title, tc.fieldName); got != tc.want {
				t.Fatalf("Format() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestBuildTree_DirectAndNested(t *testing.T) {
	ui := uischema.UISchema{
		{Type: uischema.NodeField, Definition: uischema.Definition{"/properties/title"}},
		{
			Type: uischema.NodeSection, Name: "applicant", Label: "Applicant",
			Children: []uischema.Node{
				{Type: uischema.NodeField, Definition: uischema.Definition{"/properties/applicant/properties/first_name"}},
				{Type: uischema.NodeField, Definition: uischema.Definition{"/properties/applicant/properties/last_name"}},
			},
		},
	}
	warnings := []model.FormValidationWarning{
		{Field: "$.title", Message: "'title' is too long", Type: "maxLength"},
		{Field: "$.applicant", Message: "'last_name' is a required property", Type: "required"},
	}

	got := BuildTree(ui, warnings, testSchema())
	want := []model.MappedWarning{
		{
			Field: "$.title", Message: "'title' is too long", Type: "maxLength",
			Formatted: "Project title is too long", HTMLField: "title", Definition: "/properties/title",
		},
		{
			Field: "$.applicant", Message: "'last_name' is a required property", Type: "required",
			Formatted: "Applicant Last name is required", HTMLField: "applicant--last_name",
			Definition: "/properties/applicant/properties/last_name",
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("mapped warnings mismatch (-want +got):\n%s", diff)
	}

	if diff := cmp.Diff([]string{"Applicant Last name is required"}, ForField(got, "/properties/applicant/properties/last_name")); diff != "" {
		t.Fatalf("ForField mismatch (-want +got):\n%s", diff)
	}
	if got := ForField(got, "/properties/applicant/properties/first_name"); len(got) != 0 {
		t.Fatalf("expected no warnings for first_name, got %v", got)
	}
}

func TestBuildTree_Budget(t *testing.T) {
	ui := uischema.UISchema{
		{
			Type: uischema.NodeMultiField, Name: "budget_b", Widget: string(model.WidgetBudgetSectionB),
			Definition: uischema.Definition{"/properties/activity_line_items", "/properties/total_budget_categories"},
		},
	}
	warnings := []model.FormValidationWarning{
		{Field: "$.activity_line_items[2].budget_categories.travel_amount", Message: "does not match pattern", Type: "pattern"},
		{Field: "$.remarks", Message: "too long", Type: "maxLength"},
	}
	got := BuildTree(ui, warnings, map[string]any{})
	if len(got) != 1 {
		t.Fatalf("expected one budget warning, got %#v", got)
	}
	if got[0].Formatted != "Row 8 Column 3: does not match pattern" {
		t.Fatalf("unexpected formatted text %q", got[0].Formatted)
	}
	if got[0].HTMLField != "activity_line_items[2]--budget_categories--travel_amount" {
		t.Fatalf("unexpected html field %q", got[0].HTMLField)
	}
}

func TestBuildTree_NoWarnings(t *testing.T) {
	if got := BuildTree(uischema.UISchema{{Type: uischema.NodeField, Definition: uischema.Definition{"/properties/title"}}}, nil, testSchema()); got != nil {
		t.Fatalf("expected nil, got %v", got)
	}
}

func TestSummary_Deduplicates(t *testing.T) {
	mapped := []model.MappedWarning{
		{Message: "a", HTMLField: "x"},
		{Message: "a", HTMLField: "x"},
		{Message: "raw", Formatted: "b", HTMLField: "y"},
	}
	want := []SummaryItem{{Href: "#x", Text: "a"}, {Href: "#y", Text: "b"}}
	if diff := cmp.Diff(want, Summary(mapped)); diff != "" {
		t.Fatalf("summary mismatch (-want +got):\n%s", diff)
	}
}

func TestHTMLFieldName(t *testing.T) {
	if got := HTMLFieldName("", map[string]any{"title": "Inline field"}); got != "Inline-field" {
		t.Fatalf("unexpected name %q", got)
	}
	if got := HTMLFieldName("", nil); got != "untitled" {
		t.Fatalf("unexpected name %q", got)
	}
}
