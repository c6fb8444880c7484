package formpath

import (
	"errors"
	"strconv"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestPointerToHTMLName(t *testing.T) {
	cases := []struct {
		pointer string
		want    string
	}{
		{"/properties/a/properties/b", "a--b"},
		{"/properties/activity_line_items", "activity_line_items"},
		{"/a/b[0]/c", "a--b[0]--c"},
		{"", ""},
		{"/", ""},
	}
	for _, tc := range cases {
		if got := PointerToHTMLName(tc.pointer); got != tc.want {
			t.Fatalf("PointerToHTMLName(%q) = %q, want %q", tc.pointer, got, tc.want)
		}
	}
}

func TestHTMLNameRoundTrip_DataPointers(t *testing.T) {
	pointers := []string{
		"/a",
		"/a/b",
		"/activity_line_items[0]/budget_summary/total_amount",
		"/x[1][2]/y",
	}
	for _, pointer := range pointers {
		name := PointerToHTMLName(pointer)
		if got := HTMLNameToPointer(name); got != pointer {
			t.Fatalf("round trip %q -> %q -> %q", pointer, name, got)
		}
	}
}

func TestHTMLNameToPointer_DropsSchemaProperties(t *testing.T) {
	name := PointerToHTMLName("/properties/a/properties/b")
	if got := HTMLNameToPointer(name); got != "/a/b" {
		t.Fatalf("expected /a/b, got %q", got)
	}
}

func TestPointerToJSONPath(t *testing.T) {
	cases := []struct {
		name    string
		pointer string
		want    string
	}{
		{"empty", "", "$"},
		{"root slash", "/", "$['']"},
		{"properties dropped", "/properties/a/properties/b", "$.a.b"},
		{"special chars quoted", "/properties/a b", "$['a b']"},
		{"hyphen quoted", "/properties/first-name", "$['first-name']"},
		{"escaped slash", "/properties/a~1b", "$['a/b']"},
		{"escaped tilde", "/properties/a~0b", "$['a~b']"},
		{"indexed segment", "/properties/items[0]/properties/name", "$.items[0].name"},
		{"numeric segment", "/items/2/name", "$.items[2].name"},
		{"properties as substring kept", "/properties/my_properties", "$.my_properties"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := PointerToJSONPath(tc.pointer)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("PointerToJSONPath(%q) = %q, want %q", tc.pointer, got, tc.want)
			}
		})
	}
}

func TestPointerToJSONPath_InvalidPointer(t *testing.T) {
	_, err := PointerToJSONPath("properties/a")
	if !errors.Is(err, ErrInvalidPointer) {
		t.Fatalf("expected ErrInvalidPointer, got %v", err)
	}
}

func TestJSONPathToHTMLName(t *testing.T) {
	cases := []struct {
		path string
		want string
	}{
		{"$.somethig[0].another.this_one", "somethig[0]--another--this_one"},
		{"$.a.b", "a--b"},
		{"$['a.b'].c", "a.b--c"},
		{"$", ""},
		{"$.activity_line_items", "activity_line_items"},
	}
	for _, tc := range cases {
		if got := JSONPathToHTMLName(tc.path); got != tc.want {
			t.Fatalf("JSONPathToHTMLName(%q) = %q, want %q", tc.path, got, tc.want)
		}
	}
}

func TestParseSegments(t *testing.T) {
	got := ParseSegments("a[0]--b--c[1][2]")
	want := []Segment{
		{Key: "a", Indexes: []int{0}},
		{Key: "b"},
		{Key: "c", Indexes: []int{1, 2}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("segments mismatch (-want +got):\n%s", diff)
	}
	if got[2].String() != "c[1][2]" {
		t.Fatalf("unexpected segment string %q", got[2].String())
	}
}

func TestGet(t *testing.T) {
	data := map[string]any{
		"activity_line_items": []any{
			map[string]any{
				"budget_summary": map[string]any{"total_amount": "10.00"},
			},
		},
		"name": "x",
	}

	value, ok := Get(data, "activity_line_items[0]--budget_summary--total_amount")
	if !ok || value != "10.00" {
		t.Fatalf("expected 10.00, got %v (ok=%v)", value, ok)
	}
	if _, ok := Get(data, "activity_line_items[3]--budget_summary"); ok {
		t.Fatalf("expected out of range index to be absent")
	}
	if _, ok := Get(data, "name--nested"); ok {
		t.Fatalf("expected descent into scalar to be absent")
	}
	if _, ok := Get(data, ""); ok {
		t.Fatalf("expected empty name to be absent")
	}
}

func TestSet(t *testing.T) {
	got, err := Set(nil, "a[1]--b", "v")
	if err != nil {
		t.Fatalf("set: %v", err)
	}
	got, err = Set(got, "c--d", true)
	if err != nil {
		t.Fatalf("set: %v", err)
	}
	want := map[string]any{
		"a": []any{nil, map[string]any{"b": "v"}},
		"c": map[string]any{"d": true},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("set mismatch (-want +got):\n%s", diff)
	}
}

func TestSet_RejectsIndexAboveLimit(t *testing.T) {
	data := map[string]any{"kept": "x"}

	got, err := Set(data, "activity_line_items[30000000]--activity_title", "v")
	if !errors.Is(err, ErrIndexOutOfRange) {
		t.Fatalf("expected ErrIndexOutOfRange, got %v", err)
	}
	if diff := cmp.Diff(map[string]any{"kept": "x"}, got); diff != "" {
		t.Fatalf("data changed on rejected set (-want +got):\n%s", diff)
	}

	nested := IndexedName("rows", 0) + "[" + strconv.Itoa(MaxArrayIndex+1) + "]"
	if _, err := Set(nil, nested, "v"); !errors.Is(err, ErrIndexOutOfRange) {
		t.Fatalf("expected nested index to be rejected, got %v", err)
	}

	got, err = Set(nil, IndexedName("rows", MaxArrayIndex), "last")
	if err != nil {
		t.Fatalf("set at limit: %v", err)
	}
	rows, _ := got["rows"].([]any)
	if len(rows) != MaxArrayIndex+1 || rows[MaxArrayIndex] != "last" {
		t.Fatalf("expected %d rows ending in %q, got %d", MaxArrayIndex+1, "last", len(rows))
	}
}

func TestResolvePointer(t *testing.T) {
	doc := map[string]any{
		"properties": map[string]any{
			"a/b": map[string]any{"type": "string"},
			"list": []any{"x", "y"},
		},
	}

	value, err := ResolvePointer(doc, "/properties/a~1b/type")
	if err != nil || value != "string" {
		t.Fatalf("expected string, got %v (%v)", value, err)
	}
	value, ok := Lookup(doc, "/properties/list/1")
	if !ok || value != "y" {
		t.Fatalf("expected y, got %v", value)
	}
	if _, err := ResolvePointer(doc, "/properties/missing"); !errors.Is(err, ErrPointerNotFound) {
		t.Fatalf("expected ErrPointerNotFound, got %v", err)
	}
	if _, ok := Lookup(doc, "no-slash"); ok {
		t.Fatalf("expected invalid pointer lookup to fail")
	}
	root, ok := Lookup(doc, "")
	if !ok {
		t.Fatalf("expected empty pointer to resolve root")
	}
	if diff := cmp.Diff(doc, root); diff != "" {
		t.Fatalf("root mismatch (-want +got):\n%s", diff)
	}
}

func TestLastSegment(t *testing.T) {
	if got := LastSegment("/properties/a/properties/b"); got != "b" {
		t.Fatalf("expected b, got %q", got)
	}
	if got := LastSegment("plain"); got != "plain" {
		t.Fatalf("expected plain, got %q", got)
	}
}
