package warnings

import (
	"strings"

	"github.com/goliatone/go-applyform/pkg/model"
)

// DefaultTitle stands in for fields whose schema has no title.
const DefaultTitle = "Field"

// Format rewrites a backend message for display. The first occurrence of the
// field name becomes the field title, quotes are dropped, and the two stock
// jsonschema phrasings for missing values become "<title> is required" and
// "is required".
func Format(message, title, fieldName string) string {
	display := strings.Replace(title, "?", "", 1)
	if title == "" {
		display = DefaultTitle
	}

	out := message
	if fieldName != "" {
		out = strings.Replace(out, fieldName, display, 1)
	}
	out = strings.ReplaceAll(out, "'", "")
	out = strings.Replace(out, "[] should be non-empty", display+" is required", 1)
	out = strings.Replace(out, "is a required property", "is required", 1)
	return out
}

// ForField returns the display messages of the mapped warnings bound to
// definition.
func ForField(mapped []model.MappedWarning, definition string) []string {
	if len(mapped) == 0 {
		return []string{}
	}
	out := []string{}
	for _, warning := range mapped {
		if warning.Definition == definition {
			out = append(out, warning.Text())
		}
	}
	return out
}

// SummaryItem is one entry of the top-of-form alert.
type SummaryItem struct {
	Href string `json:"href"`
	Text string `json:"text"`
}

// Summary lists mapped warnings once each, in order, linking to the input
// they belong to.
func Summary(mapped []model.MappedWarning) []SummaryItem {
	seen := map[string]struct{}{}
	var out []SummaryItem
	for _, warning := range mapped {
		item := SummaryItem{Text: warning.Text()}
		if warning.HTMLField != "" {
			item.Href = "#" + warning.HTMLField
		}
		key := item.Href + "\x00" + item.Text
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, item)
	}
	return out
}
