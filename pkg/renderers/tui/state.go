package tui

import (
	"net/url"
	"slices"
	"strings"

	"github.com/spf13/cast"
)

// State tracks the answers of one fill session keyed by HTML field name, the
// same keys a browser would post.
type State struct {
	values url.Values
	errors map[string][]string
}

// NewState returns an empty state.
func NewState() *State {
	return &State{values: url.Values{}, errors: map[string][]string{}}
}

// Values returns the collected values (mutable).
func (s *State) Values() url.Values {
	if s == nil {
		return nil
	}
	return s.values
}

// ErrorsFor returns the messages recorded for a field.
func (s *State) ErrorsFor(name string) []string {
	if s == nil {
		return nil
	}
	return s.errors[name]
}

// AddErrors records server or validation messages for a field.
func (s *State) AddErrors(name string, messages ...string) {
	if s == nil || len(messages) == 0 {
		return
	}
	s.errors[name] = append(s.errors[name], messages...)
}

// Set replaces the answer for name. Empty answers remove the key so the
// shaped response leaves the field out.
func (s *State) Set(name string, values ...string) {
	values = slices.DeleteFunc(slices.Clone(values), func(v string) bool {
		return strings.TrimSpace(v) == ""
	})
	if len(values) == 0 {
		s.values.Del(name)
		return
	}
	s.values[name] = values
}

// Get returns the first answer for name.
func (s *State) Get(name string) string {
	return s.values.Get(name)
}

// stringValue renders a widget value as prompt text.
func stringValue(value any) string {
	switch typed := value.(type) {
	case nil:
		return ""
	case []any, map[string]any:
		return ""
	default:
		return cast.ToString(typed)
	}
}

// stringValues renders a list value as prompt text, one entry per item.
func stringValues(value any) []string {
	list, ok := value.([]any)
	if !ok {
		if s := stringValue(value); s != "" {
			return []string{s}
		}
		return nil
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		if s := stringValue(item); s != "" {
			out = append(out, s)
		}
	}
	return out
}
