package budget

import (
	"strconv"
	"strings"

	"github.com/spf13/cast"

	"github.com/goliatone/go-applyform/pkg/formpath"
)

// Values is a read view over budget data in either of the two shapes a
// budget widget receives:
//
//   - root: the whole response, `{activity_line_items: [...], total_budget_summary: {...}}`
//   - spread: the widget's merged value, `{"0": {...}, "1": {...}, <total keys>...}`
//
// Cells are addressed by their HTML input name in both cases.
type Values struct {
	root   map[string]any
	value  map[string]any
	spread bool
}

// Normalize picks the most complete source. Root form data wins when it holds
// an activity list; otherwise value is inspected for either shape.
func Normalize(value any, root map[string]any) Values {
	if items, ok := root[ActivityLineItems].([]any); ok && len(items) > 0 {
		return Values{root: root}
	}

	obj, _ := value.(map[string]any)
	if _, ok := obj[ActivityLineItems]; ok {
		return Values{root: obj}
	}
	if isSpread(obj) {
		return Values{root: root, value: obj, spread: true}
	}
	if obj != nil {
		return Values{root: root, value: obj}
	}
	return Values{root: root}
}

func isSpread(obj map[string]any) bool {
	for idx := 0; idx < ActivityRows; idx++ {
		if _, ok := obj[strconv.Itoa(idx)]; ok {
			return true
		}
	}
	return false
}

// Activities returns ActivityRows activity maps; missing rows are empty maps.
func (v Values) Activities() []map[string]any {
	out := make([]map[string]any, ActivityRows)
	for idx := range out {
		out[idx] = v.activity(idx)
		if out[idx] == nil {
			out[idx] = map[string]any{}
		}
	}
	return out
}

func (v Values) activity(idx int) map[string]any {
	if v.spread {
		item, _ := v.value[strconv.Itoa(idx)].(map[string]any)
		return item
	}
	items, _ := v.root[ActivityLineItems].([]any)
	if idx < 0 || idx >= len(items) {
		return nil
	}
	item, _ := items[idx].(map[string]any)
	return item
}

// Lookup returns the raw value stored under an HTML cell name.
func (v Values) Lookup(name string) (any, bool) {
	segments := formpath.ParseSegments(name)
	if len(segments) == 0 {
		return nil, false
	}

	first := segments[0]
	if first.Key == ActivityLineItems && len(first.Indexes) == 1 {
		item := v.activity(first.Indexes[0])
		if item == nil {
			return nil, false
		}
		return formpath.Get(item, joinSegments(segments[1:]))
	}

	if found, ok := formpath.Get(v.root, name); ok {
		return found, true
	}
	if v.value == nil {
		return nil, false
	}
	if found, ok := formpath.Get(v.value, name); ok {
		return found, true
	}
	// A widget bound to a single group receives that group's contents.
	if len(segments) > 1 {
		return formpath.Get(v.value, joinSegments(segments[1:]))
	}
	return nil, false
}

// String returns the cell value as display text, "" when absent.
func (v Values) String(name string) string {
	raw, ok := v.Lookup(name)
	if !ok || raw == nil {
		return ""
	}
	text, err := cast.ToStringE(raw)
	if err != nil {
		return ""
	}
	return text
}

func joinSegments(segments []formpath.Segment) string {
	parts := make([]string, len(segments))
	for idx, seg := range segments {
		parts[idx] = seg.String()
	}
	return strings.Join(parts, formpath.Delimiter)
}
