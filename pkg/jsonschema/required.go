package jsonschema

import (
	"strings"
)

// RequiredPaths lists the unconditionally required property paths of a
// dereferenced schema, e.g. `reporting_entity/address/city`. A required
// object property contributes its own path followed by the paths required
// inside it. if/then/else rules are not evaluated.
func RequiredPaths(schema map[string]any) []string {
	return collectRequired(schema, "")
}

func collectRequired(schema map[string]any, parentPath string) []string {
	names := stringList(schema["required"])
	if len(names) == 0 {
		return nil
	}
	properties, ok := schema["properties"].(map[string]any)
	if !ok {
		return nil
	}
	var out []string
	for _, name := range names {
		path := joinPath(parentPath, name)
		out = append(out, path)
		child, ok := properties[name].(map[string]any)
		if !ok || !isObjectSchema(child) {
			continue
		}
		out = append(out, collectRequired(child, path)...)
	}
	return out
}

func isObjectSchema(schema map[string]any) bool {
	switch typed := schema["type"].(type) {
	case string:
		return typed == "object"
	case []any:
		for _, item := range typed {
			if item == "object" {
				return true
			}
		}
	}
	return false
}

// RequiredSet is a lookup form of RequiredPaths.
type RequiredSet map[string]struct{}

// NewRequiredSet indexes paths.
func NewRequiredSet(paths []string) RequiredSet {
	set := make(RequiredSet, len(paths))
	for _, path := range paths {
		set[path] = struct{}{}
	}
	return set
}

// Has reports whether path is required.
func (s RequiredSet) Has(path string) bool {
	_, ok := s[path]
	return ok
}

// IsFieldRequired reports whether any of the schema pointers in definitions
// resolves to a required path.
func IsFieldRequired(required RequiredSet, definitions ...string) bool {
	for _, def := range definitions {
		if def == "" {
			continue
		}
		if required.Has(StripPropertyPaths(def)) {
			return true
		}
	}
	return false
}

// StripPropertyPaths turns `/properties/a/properties/b` into `a/b`.
func StripPropertyPaths(pointer string) string {
	cleaned := strings.ReplaceAll(pointer, "properties/", "")
	return strings.TrimPrefix(cleaned, "/")
}
