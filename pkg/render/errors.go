package render

import (
	"strings"

	"github.com/goliatone/go-applyform/pkg/model"
	"github.com/goliatone/go-applyform/pkg/warnings"
)

// ErrorMapping splits mapped warnings into the top-of-form summary and the
// messages that have no widget to attach to.
type ErrorMapping struct {
	Summary []warnings.SummaryItem
	Form    []string
}

// MapWarnings builds the alert content for mapped warnings. Warnings with no
// HTML field cannot link anywhere and become form-level messages.
func MapWarnings(mapped []model.MappedWarning) ErrorMapping {
	var mapping ErrorMapping
	var linked []model.MappedWarning
	for _, warning := range mapped {
		if warning.HTMLField == "" {
			mapping.Form = append(mapping.Form, warning.Text())
			continue
		}
		linked = append(linked, warning)
	}
	mapping.Summary = warnings.Summary(linked)
	mapping.Form = normalizeMessages(mapping.Form)
	return mapping
}

// MergeFormErrors concatenates form-level messages, trimming whitespace and
// dropping duplicates while preserving order.
func MergeFormErrors(existing []string, extras ...string) []string {
	combined := make([]string, 0, len(existing)+len(extras))
	combined = append(combined, existing...)
	combined = append(combined, extras...)
	return normalizeMessages(combined)
}

func normalizeMessages(messages []string) []string {
	if len(messages) == 0 {
		return nil
	}
	out := make([]string, 0, len(messages))
	seen := make(map[string]struct{}, len(messages))
	for _, message := range messages {
		trimmed := strings.TrimSpace(message)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
