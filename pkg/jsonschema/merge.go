package jsonschema

import (
	"fmt"
	"reflect"
)

// MergeError reports two allOf members that cannot be combined.
type MergeError struct {
	Path    string
	Keyword string
	Left    any
	Right   any
}

func (e *MergeError) Error() string {
	return fmt.Sprintf("jsonschema merge: conflicting %q at %s: %v vs %v", e.Keyword, displayPath(e.Path), e.Left, e.Right)
}

func displayPath(path string) string {
	if path == "" {
		return "/"
	}
	return path
}

var (
	annotationKeywords = map[string]struct{}{
		"title": {}, "description": {}, "$comment": {}, "$id": {}, "$schema": {},
		"$anchor": {}, "default": {}, "examples": {}, "deprecated": {},
	}
	lowerBoundKeywords = map[string]struct{}{
		"minLength": {}, "minimum": {}, "exclusiveMinimum": {}, "minItems": {},
		"minProperties": {}, "minContains": {},
	}
	upperBoundKeywords = map[string]struct{}{
		"maxLength": {}, "maximum": {}, "exclusiveMaximum": {}, "maxItems": {},
		"maxProperties": {}, "maxContains": {},
	}
	schemaMapKeywords = map[string]struct{}{
		"properties": {}, "$defs": {}, "definitions": {}, "patternProperties": {},
	}
)

// MergeAllOf folds every non-conditional allOf in node into its parent. Nested
// allOfs are merged bottom-up. Keywords combine as follows: schema maps such
// as `properties` merge per key, `required` is unioned in first-seen order,
// annotations keep the first value, numeric bounds keep the tighter value,
// `enum` is intersected, and any other keyword must be equal in every member.
func MergeAllOf(node any) (any, error) {
	return mergeNode(node, "")
}

func mergeNode(node any, path string) (any, error) {
	switch typed := node.(type) {
	case map[string]any:
		out := make(map[string]any, len(typed))
		for _, key := range sortedKeys(typed) {
			child, err := mergeNode(typed[key], path+"/"+key)
			if err != nil {
				return nil, err
			}
			out[key] = child
		}
		members, ok := out["allOf"].([]any)
		if !ok {
			return out, nil
		}
		delete(out, "allOf")
		for idx, member := range members {
			memberMap, ok := member.(map[string]any)
			if !ok {
				return nil, &MergeError{Path: fmt.Sprintf("%s/allOf/%d", path, idx), Keyword: "allOf", Left: out, Right: member}
			}
			merged, err := mergeSchemas(out, memberMap, path)
			if err != nil {
				return nil, err
			}
			out = merged
		}
		return out, nil
	case []any:
		out := make([]any, len(typed))
		for idx, item := range typed {
			child, err := mergeNode(item, fmt.Sprintf("%s/%d", path, idx))
			if err != nil {
				return nil, err
			}
			out[idx] = child
		}
		return out, nil
	default:
		return typed, nil
	}
}

func mergeSchemas(base, other map[string]any, path string) (map[string]any, error) {
	out := cloneAny(base).(map[string]any)
	for _, key := range sortedKeys(other) {
		incoming := other[key]
		existing, present := out[key]
		if !present {
			out[key] = cloneAny(incoming)
			continue
		}
		merged, err := mergeKeyword(key, existing, incoming, path)
		if err != nil {
			return nil, err
		}
		out[key] = merged
	}
	return out, nil
}

func mergeKeyword(key string, existing, incoming any, path string) (any, error) {
	conflict := &MergeError{Path: path, Keyword: key, Left: existing, Right: incoming}

	if _, ok := annotationKeywords[key]; ok {
		return existing, nil
	}
	if _, ok := schemaMapKeywords[key]; ok {
		left, lok := existing.(map[string]any)
		right, rok := incoming.(map[string]any)
		if !lok || !rok {
			return nil, conflict
		}
		out := cloneAny(left).(map[string]any)
		for _, name := range sortedKeys(right) {
			rightChild := right[name]
			leftChild, present := out[name]
			if !present {
				out[name] = cloneAny(rightChild)
				continue
			}
			leftSchema, lok := leftChild.(map[string]any)
			rightSchema, rok := rightChild.(map[string]any)
			if !lok || !rok {
				if reflect.DeepEqual(leftChild, rightChild) {
					continue
				}
				return nil, &MergeError{Path: path + "/" + key + "/" + name, Keyword: name, Left: leftChild, Right: rightChild}
			}
			merged, err := mergeSchemas(leftSchema, rightSchema, path+"/"+key+"/"+name)
			if err != nil {
				return nil, err
			}
			out[name] = merged
		}
		return out, nil
	}

	switch key {
	case "required":
		return unionStrings(existing, incoming), nil
	case "items", "additionalProperties", "contains", "propertyNames":
		left, lok := existing.(map[string]any)
		right, rok := incoming.(map[string]any)
		if lok && rok {
			return mergeSchemas(left, right, path+"/"+key)
		}
	case "enum":
		left, lok := existing.([]any)
		right, rok := incoming.([]any)
		if !lok || !rok {
			return nil, conflict
		}
		intersection := make([]any, 0, len(left))
		for _, candidate := range left {
			for _, other := range right {
				if reflect.DeepEqual(candidate, other) {
					intersection = append(intersection, candidate)
					break
				}
			}
		}
		if len(intersection) == 0 {
			return nil, conflict
		}
		return intersection, nil
	}

	if _, ok := lowerBoundKeywords[key]; ok {
		return pickBound(existing, incoming, conflict, func(a, b float64) bool { return a >= b })
	}
	if _, ok := upperBoundKeywords[key]; ok {
		return pickBound(existing, incoming, conflict, func(a, b float64) bool { return a <= b })
	}

	if reflect.DeepEqual(existing, incoming) {
		return existing, nil
	}
	return nil, conflict
}

func pickBound(existing, incoming any, conflict error, keepExisting func(a, b float64) bool) (any, error) {
	left, lok := toFloat(existing)
	right, rok := toFloat(incoming)
	if !lok || !rok {
		return nil, conflict
	}
	if keepExisting(left, right) {
		return existing, nil
	}
	return incoming, nil
}

func unionStrings(existing, incoming any) []any {
	seen := make(map[string]struct{})
	out := make([]any, 0)
	for _, list := range []any{existing, incoming} {
		for _, name := range stringList(list) {
			if _, dup := seen[name]; dup {
				continue
			}
			seen[name] = struct{}{}
			out = append(out, name)
		}
	}
	return out
}

func stringList(value any) []string {
	switch typed := value.(type) {
	case []string:
		return typed
	case []any:
		out := make([]string, 0, len(typed))
		for _, item := range typed {
			if str, ok := item.(string); ok {
				out = append(out, str)
			}
		}
		return out
	default:
		return nil
	}
}

func toFloat(value any) (float64, bool) {
	switch typed := value.(type) {
	case float64:
		return typed, true
	case float32:
		return float64(typed), true
	case int:
		return float64(typed), true
	case int64:
		return float64(typed), true
	case int32:
		return float64(typed), true
	case uint64:
		return float64(typed), true
	default:
		return 0, false
	}
}
