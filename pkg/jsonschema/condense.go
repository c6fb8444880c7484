package jsonschema

import (
	"strings"

	"github.com/goliatone/go-applyform/pkg/formpath"
)

// CondenseProperties hoists the contents of every `properties` keyword one
// level up so fields can be addressed without the `properties` segments:
// `{properties: {a: {properties: {b: x}}}}` becomes `{a: {b: x}}`.
func CondenseProperties(schema map[string]any) map[string]any {
	out := make(map[string]any, len(schema))
	for _, key := range sortedKeys(schema) {
		value := schema[key]
		if key == "properties" {
			if props, ok := value.(map[string]any); ok {
				for innerKey, innerValue := range CondenseProperties(props) {
					out[innerKey] = innerValue
				}
				continue
			}
		}
		if obj, ok := value.(map[string]any); ok {
			out[key] = CondenseProperties(obj)
			continue
		}
		out[key] = value
	}
	return out
}

// FieldSchema returns the subschema addressed by a pointer such as
// `/properties/a/properties/b`. Pointers into array items may use
// `name[idx]` segments; the index is ignored and `items` is followed.
func FieldSchema(schema map[string]any, pointer string) (map[string]any, bool) {
	if value, ok := formpath.Lookup(schema, pointer); ok {
		obj, isObj := value.(map[string]any)
		return obj, isObj
	}
	tokens, err := formpath.ParsePointer(pointer)
	if err != nil {
		return nil, false
	}
	var current any = schema
	for _, token := range tokens {
		key := token
		indexed := false
		if open := strings.Index(token, "["); open > 0 && strings.HasSuffix(token, "]") {
			key = token[:open]
			indexed = true
		}
		obj, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		next, ok := obj[key]
		if !ok {
			return nil, false
		}
		if indexed {
			nextObj, ok := next.(map[string]any)
			if !ok {
				return nil, false
			}
			next, ok = nextObj["items"]
			if !ok {
				return nil, false
			}
		}
		current = next
	}
	obj, ok := current.(map[string]any)
	return obj, ok
}

// SchemaType returns the primary `type` of a subschema. Union types report
// their first non-null member.
func SchemaType(schema map[string]any) string {
	switch typed := schema["type"].(type) {
	case string:
		return typed
	case []any:
		for _, item := range typed {
			if str, ok := item.(string); ok && str != "null" {
				return str
			}
		}
		if len(typed) > 0 {
			if str, ok := typed[0].(string); ok {
				return str
			}
		}
	}
	return ""
}

// EffectiveSchema resolves the schema of a UI field: the subschema at
// definition shallow-merged with the inline override, whose keys win. Either
// input may be empty. The result is a fresh map.
func EffectiveSchema(schema map[string]any, definition string, override map[string]any) map[string]any {
	out := map[string]any{}
	if definition != "" {
		if found, ok := FieldSchema(schema, definition); ok {
			for key, value := range found {
				out[key] = value
			}
		}
	}
	for key, value := range override {
		out[key] = value
	}
	return out
}
