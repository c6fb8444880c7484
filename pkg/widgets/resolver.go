package widgets

import (
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-applyform/pkg/jsonschema"
	"github.com/goliatone/go-applyform/pkg/model"
)

// Matcher decides whether a widget type should handle the supplied schema.
type Matcher func(schema map[string]any) bool

type rule struct {
	widget   model.WidgetType
	priority int
	match    Matcher
	order    int
}

// Resolver infers a widget type from a field schema. Explicit widget names
// win; otherwise matchers run by descending priority, ties falling back to
// registration order. When nothing matches the fallback type is returned.
type Resolver struct {
	mu       sync.RWMutex
	rules    []rule
	fallback model.WidgetType
}

// NewResolver constructs a resolver with the built-in matchers registered and
// Text as the fallback.
func NewResolver() *Resolver {
	res := &Resolver{fallback: model.WidgetText}
	res.registerBuiltins()
	return res
}

// Register adds a matcher. Higher priority values take precedence.
func (r *Resolver) Register(widget model.WidgetType, priority int, matcher Matcher) {
	if r == nil || matcher == nil {
		return
	}
	if strings.TrimSpace(string(widget)) == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.rules = append(r.rules, rule{
		widget:   widget,
		priority: priority,
		match:    matcher,
		order:    len(r.rules),
	})
}

// Resolve returns the widget type for a field. explicit is the UI schema
// `widget` value.
func (r *Resolver) Resolve(explicit string, schema map[string]any) model.WidgetType {
	if trimmed := strings.TrimSpace(explicit); trimmed != "" {
		return model.WidgetType(trimmed)
	}
	if r == nil {
		return model.WidgetText
	}

	r.mu.RLock()
	rules := append([]rule(nil), r.rules...)
	fallback := r.fallback
	r.mu.RUnlock()

	sort.SliceStable(rules, func(i, j int) bool {
		if rules[i].priority == rules[j].priority {
			return rules[i].order < rules[j].order
		}
		return rules[i].priority > rules[j].priority
	})
	for _, entry := range rules {
		if entry.match(schema) {
			return entry.widget
		}
	}
	return fallback
}

var defaultResolver = NewResolver()

// DetermineWidgetType applies the built-in inference rules:
//
//	explicit widget            -> that widget
//	string + format uuid       -> Attachment
//	array of uuid strings      -> AttachmentArray
//	array of enum items        -> MultiSelect
//	any other array            -> Select
//	enum                       -> Select
//	boolean                    -> Checkbox
//	maxLength > 255            -> TextArea
//	otherwise                  -> Text
func DetermineWidgetType(explicit string, schema map[string]any) model.WidgetType {
	return defaultResolver.Resolve(explicit, schema)
}

func (r *Resolver) registerBuiltins() {
	r.Register(model.WidgetAttachment, 100, isUUIDString)

	r.Register(model.WidgetAttachmentArray, 90, func(schema map[string]any) bool {
		item, ok := arrayItem(schema)
		return ok && isUUIDString(item)
	})

	r.Register(model.WidgetMultiSelect, 80, func(schema map[string]any) bool {
		item, ok := arrayItem(schema)
		return ok && hasEnum(item)
	})

	r.Register(model.WidgetSelect, 70, func(schema map[string]any) bool {
		if jsonschema.SchemaType(schema) == "array" {
			return schema["items"] != nil
		}
		return hasEnum(schema)
	})

	r.Register(model.WidgetCheckbox, 60, func(schema map[string]any) bool {
		return jsonschema.SchemaType(schema) == "boolean"
	})

	r.Register(model.WidgetTextArea, 50, func(schema map[string]any) bool {
		max, ok := number(schema["maxLength"])
		return ok && max > 255
	})
}

func isUUIDString(schema map[string]any) bool {
	return jsonschema.SchemaType(schema) == "string" && schema["format"] == "uuid"
}

// arrayItem returns the item schema of an array; tuple forms use the first
// entry.
func arrayItem(schema map[string]any) (map[string]any, bool) {
	if jsonschema.SchemaType(schema) != "array" {
		return nil, false
	}
	switch items := schema["items"].(type) {
	case map[string]any:
		return items, true
	case []any:
		if len(items) == 0 {
			return nil, false
		}
		item, ok := items[0].(map[string]any)
		return item, ok
	}
	return nil, false
}

func hasEnum(schema map[string]any) bool {
	values, ok := schema["enum"].([]any)
	return ok && len(values) > 0
}

func number(value any) (float64, bool) {
	switch typed := value.(type) {
	case float64:
		return typed, true
	case int:
		return float64(typed), true
	case int64:
		return float64(typed), true
	}
	return 0, false
}
