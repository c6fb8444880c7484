package formdata

import (
	"errors"
	"net/url"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestPrune(t *testing.T) {
	in := map[string]any{
		"a": map[string]any{"b": "", "c": map[string]any{}},
		"d": "x",
	}
	want := map[string]any{"d": "x"}
	if diff := cmp.Diff(want, Prune(in)); diff != "" {
		t.Fatalf("prune mismatch (-want +got):\n%s", diff)
	}
}

func TestPrune_KeepsFalseZeroAndLists(t *testing.T) {
	in := map[string]any{
		"agree":  false,
		"count":  float64(0),
		"tags":   []any{},
		"nested": map[string]any{"flag": false},
		"items": []any{
			map[string]any{"name": ""},
			nil,
			map[string]any{"name": "kept"},
			"",
		},
	}
	want := map[string]any{
		"agree":  false,
		"count":  float64(0),
		"tags":   []any{},
		"nested": map[string]any{"flag": false},
		"items": []any{
			map[string]any{"name": "kept"},
			"",
		},
	}
	if diff := cmp.Diff(want, Prune(in)); diff != "" {
		t.Fatalf("prune mismatch (-want +got):\n%s", diff)
	}
}

func TestShape(t *testing.T) {
	values := url.Values{
		"$ACTION_REF_1":     {"x"},
		"$ACTION_KEY":       {"k"},
		"apply-form-button": {"save"},
		"title":             {"Rivers"},
		"applicant--name":   {"Ada"},
		"applicant--age":    {"36"},
		"applicant--zip":    {"01234"},
		"agree":             {"false", "true"},
		"declined":          {"false"},
		"tags":              {"a", "b"},
		"empty--value":      {""},
		"activity_line_items[1]--budget_summary--total_amount": {"12.50"},
	}

	got, err := Shape(values)
	if err != nil {
		t.Fatalf("shape: %v", err)
	}
	want := map[string]any{
		"title": "Rivers",
		"applicant": map[string]any{
			"name": "Ada",
			"age":  float64(36),
			"zip":  "01234",
		},
		"agree":    true,
		"declined": false,
		"tags":     []any{"a", "b"},
		"activity_line_items": []any{
			map[string]any{"budget_summary": map[string]any{"total_amount": "12.50"}},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("shape mismatch (-want +got):\n%s", diff)
	}
}

func TestShape_WithSchema(t *testing.T) {
	schema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"ein":    map[string]any{"type": "string"},
			"amount": map[string]any{"type": "number"},
			"agree":  map[string]any{"type": "boolean"},
			"states": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string", "enum": []any{"VA", "MD"}},
			},
			"activity_line_items": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"activity_title": map[string]any{"type": "string"},
					},
				},
			},
		},
	}
	values := url.Values{
		"ein":                                   {"123"},
		"amount":                                {"12.50"},
		"agree":                                 {"true"},
		"states":                                {"VA"},
		"activity_line_items[0]--activity_title": {"2024"},
	}

	got, err := Shape(values, WithSchema(schema))
	if err != nil {
		t.Fatalf("shape: %v", err)
	}
	want := map[string]any{
		"ein":    "123",
		"amount": 12.5,
		"agree":  true,
		"states": []any{"VA"},
		"activity_line_items": []any{
			map[string]any{"activity_title": "2024"},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("shape mismatch (-want +got):\n%s", diff)
	}

	again := Reshape(got, WithSchema(schema))
	if diff := cmp.Diff(got, again); diff != "" {
		t.Fatalf("reshape should be a no-op (-want +got):\n%s", diff)
	}
}

func TestShape_Idempotent(t *testing.T) {
	inputs := []url.Values{
		{"a--b": {"1"}, "a--c": {""}, "d": {"true"}},
		{"items[0]--x": {""}, "items[2]--x": {"7.5"}, "note": {"1e3"}},
		{"only--empty": {""}},
		{"list": {"false", "0", "x"}},
	}
	for _, values := range inputs {
		shaped, err := Shape(values)
		if err != nil {
			t.Fatalf("shape %v: %v", values, err)
		}
		if diff := cmp.Diff(shaped, Reshape(shaped)); diff != "" {
			t.Fatalf("reshape(shape(%v)) changed data (-want +got):\n%s", values, diff)
		}
	}
}

func TestShape_EmptyInput(t *testing.T) {
	got, err := Shape(url.Values{"only--empty": {""}})
	if err != nil {
		t.Fatalf("shape: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil map, got %#v", got)
	}
}

func TestShape_ConflictingKeys(t *testing.T) {
	_, err := Shape(url.Values{"a": {"x"}, "a--b": {"y"}})
	if !errors.Is(err, ErrConflictingKeys) {
		t.Fatalf("expected ErrConflictingKeys, got %v", err)
	}
}

func TestShape_RejectsOversizedIndex(t *testing.T) {
	_, err := Shape(url.Values{
		"project_title":                                 {"Rivers"},
		"activity_line_items[30000000]--activity_title": {"x"},
	})
	if !errors.Is(err, ErrIndexOutOfRange) {
		t.Fatalf("expected ErrIndexOutOfRange, got %v", err)
	}

	got, err := Shape(url.Values{"activity_line_items[1]--activity_title": {"Planning"}})
	if err != nil {
		t.Fatalf("shape: %v", err)
	}
	want := map[string]any{
		"activity_line_items": []any{map[string]any{"activity_title": "Planning"}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("shape mismatch (-want +got):\n%s", diff)
	}
}

func TestShapeMap(t *testing.T) {
	got, err := ShapeMap(map[string][]string{"a--b": {"c"}})
	if err != nil {
		t.Fatalf("shape: %v", err)
	}
	if diff := cmp.Diff(map[string]any{"a": map[string]any{"b": "c"}}, got); diff != "" {
		t.Fatalf("shape mismatch (-want +got):\n%s", diff)
	}
}
