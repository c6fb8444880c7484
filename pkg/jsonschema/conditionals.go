package jsonschema

import (
	"fmt"
	"sort"
)

// ConditionalRule is one `if`/`then`(/`else`) member lifted out of an allOf.
type ConditionalRule map[string]any

// ConditionalRules maps a property path (relative to the root `properties`,
// e.g. `person_name/properties/application_info` or `ref/allOf[0]`) to the
// conditionals that applied there.
type ConditionalRules map[string][]ConditionalRule

// Issue records malformed input found while processing. Issues never abort
// processing.
type Issue struct {
	Path    string
	Message string
}

func (i Issue) String() string {
	if i.Path == "" {
		return i.Message
	}
	return fmt.Sprintf("%s: %s", i.Path, i.Message)
}

// ExtractConditionals walks a `properties` map and removes every allOf whose
// members are all if/then conditionals, returning them keyed by parent path.
// An empty or non-array allOf is dropped and reported as an Issue.
func ExtractConditionals(properties map[string]any) (map[string]any, ConditionalRules, []Issue) {
	extractor := &conditionalExtractor{rules: ConditionalRules{}}
	cleaned := extractor.walkObject(properties, "")
	return cleaned, extractor.rules, extractor.issues
}

type conditionalExtractor struct {
	rules  ConditionalRules
	issues []Issue
}

func (e *conditionalExtractor) walkObject(node map[string]any, parentPath string) map[string]any {
	out := make(map[string]any, len(node))
	for _, key := range sortedKeys(node) {
		value := node[key]
		if key == "allOf" {
			members, ok := value.([]any)
			if !ok || len(members) == 0 {
				e.issues = append(e.issues, Issue{
					Path:    parentPath,
					Message: fmt.Sprintf("malformed allOf: expected a non-empty array, got %T", value),
				})
				continue
			}
			if rules, ok := conditionalMembers(members); ok {
				e.rules[parentPath] = append(e.rules[parentPath], rules...)
				continue
			}
		}

		switch typed := value.(type) {
		case map[string]any:
			out[key] = e.walkObject(typed, joinPath(parentPath, key))
		case []any:
			items := make([]any, len(typed))
			for idx, item := range typed {
				obj, ok := item.(map[string]any)
				if !ok {
					items[idx] = item
					continue
				}
				items[idx] = e.walkObject(obj, fmt.Sprintf("%s/%s[%d]", parentPath, key, idx))
			}
			out[key] = items
		default:
			out[key] = value
		}
	}
	return out
}

func conditionalMembers(members []any) ([]ConditionalRule, bool) {
	rules := make([]ConditionalRule, 0, len(members))
	for _, member := range members {
		obj, ok := member.(map[string]any)
		if !ok || !isIfThenElement(obj) {
			return nil, false
		}
		rules = append(rules, ConditionalRule(cloneAny(obj).(map[string]any)))
	}
	return rules, true
}

func isIfThenElement(node map[string]any) bool {
	_, hasIf := node["if"]
	_, hasThen := node["then"]
	if !hasIf || !hasThen {
		return false
	}
	for key := range node {
		switch key {
		case "if", "then", "else":
		default:
			return false
		}
	}
	return true
}

func joinPath(parent, key string) string {
	if parent == "" {
		return key
	}
	return parent + "/" + key
}

func sortedKeys(node map[string]any) []string {
	keys := make([]string, 0, len(node))
	for key := range node {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
