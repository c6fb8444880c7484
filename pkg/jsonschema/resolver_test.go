package jsonschema

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestResolver_ResolveLocalRef(t *testing.T) {
	payload := map[string]any{
		"$defs": map[string]any{
			"name": map[string]any{"type": "string", "maxLength": float64(60)},
		},
		"type": "object",
		"properties": map[string]any{
			"name": map[string]any{"$ref": "#/$defs/name", "title": "Applicant"},
		},
	}

	resolved, err := NewResolver(ResolveOptions{}).Resolve(context.Background(), payload)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	got := resolved["properties"].(map[string]any)["name"]
	want := map[string]any{"type": "string", "maxLength": float64(60), "title": "Applicant"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("resolved ref mismatch (-want +got):\n%s", diff)
	}
	if _, ok := payload["properties"].(map[string]any)["name"].(map[string]any)["$ref"]; !ok {
		t.Fatalf("expected input payload to stay untouched")
	}
}

func TestResolver_ResolveAnchorRef(t *testing.T) {
	payload := map[string]any{
		"$defs": map[string]any{
			"amount": map[string]any{"$anchor": "amount", "type": "string"},
		},
		"properties": map[string]any{
			"total": map[string]any{"$ref": "#amount"},
		},
	}

	resolved, err := Dereference(context.Background(), payload)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	total := resolved["properties"].(map[string]any)["total"].(map[string]any)
	if total["type"] != "string" {
		t.Fatalf("expected anchor target type string, got %v", total["type"])
	}
}

func TestResolver_ResolveRefInsideAllOf(t *testing.T) {
	payload := map[string]any{
		"$defs": map[string]any{
			"summary": map[string]any{
				"type":       "object",
				"properties": map[string]any{"total_amount": map[string]any{"type": "string"}},
			},
		},
		"properties": map[string]any{
			"budget_summary": map[string]any{
				"allOf": []any{map[string]any{"$ref": "#/$defs/summary"}},
			},
		},
	}

	resolved, err := Dereference(context.Background(), payload)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	member := resolved["properties"].(map[string]any)["budget_summary"].(map[string]any)["allOf"].([]any)[0].(map[string]any)
	if member["type"] != "object" {
		t.Fatalf("expected allOf member to be inlined, got %#v", member)
	}
}

func TestResolver_CycleDetection(t *testing.T) {
	payload := map[string]any{
		"$defs": map[string]any{
			"node": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"child": map[string]any{"$ref": "#/$defs/node"},
				},
			},
		},
		"properties": map[string]any{
			"root": map[string]any{"$ref": "#/$defs/node"},
		},
	}

	_, err := Dereference(context.Background(), payload)
	if err == nil || !strings.Contains(err.Error(), "cycle") {
		t.Fatalf("expected cycle error, got %v", err)
	}
}

func TestResolver_ExternalRefRejected(t *testing.T) {
	payload := map[string]any{
		"properties": map[string]any{
			"x": map[string]any{"$ref": "https://example.com/schema.json"},
		},
	}
	_, err := Dereference(context.Background(), payload)
	if !errors.Is(err, ErrExternalRef) {
		t.Fatalf("expected ErrExternalRef, got %v", err)
	}
}

func TestResolver_MissingTarget(t *testing.T) {
	payload := map[string]any{
		"properties": map[string]any{
			"x": map[string]any{"$ref": "#/$defs/missing"},
		},
	}
	if _, err := Dereference(context.Background(), payload); err == nil {
		t.Fatalf("expected missing target error")
	}
}

func TestResolver_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Dereference(ctx, map[string]any{"type": "object"})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
