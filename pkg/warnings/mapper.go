package warnings

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/goliatone/go-applyform/pkg/budget"
	"github.com/goliatone/go-applyform/pkg/formpath"
	"github.com/goliatone/go-applyform/pkg/jsonschema"
	"github.com/goliatone/go-applyform/pkg/model"
	"github.com/goliatone/go-applyform/pkg/uischema"
)

var (
	trailingProperty = regexp.MustCompile(`/properties/[^/]+$`)
	quotedToken      = regexp.MustCompile(`'\S+'`)
	whitespace       = regexp.MustCompile(`\s`)
)

// BuildTree walks the UI schema in order and localises every backend warning
// that belongs to a field node. Direct matches compare the warning path with
// the field's JSON path; nested matches attribute a parent object's
// `required` failure to the missing child. Budget widgets are delegated to
// budget.ErrorLabels so the summary shows cell coordinates.
func BuildTree(ui uischema.UISchema, warnings []model.FormValidationWarning, schema map[string]any) []model.MappedWarning {
	if len(warnings) == 0 {
		return nil
	}
	var out []model.MappedWarning
	for _, node := range ui {
		out = append(out, mapNode(node, warnings, schema)...)
	}
	return out
}

func mapNode(node uischema.Node, warnings []model.FormValidationWarning, schema map[string]any) []model.MappedWarning {
	if node.Type == uischema.NodeSection {
		var out []model.MappedWarning
		for _, child := range node.Children {
			out = append(out, mapNode(child, warnings, schema)...)
		}
		return out
	}

	if section, ok := budget.SectionForWidget(model.WidgetType(node.Widget)); ok {
		return mapBudget(section, node, warnings)
	}

	if mapped, ok := FindWarning(warnings, node.Definition.First(), node.Schema, schema); ok {
		return []model.MappedWarning{mapped}
	}
	return nil
}

// FindWarning returns the first warning for a single field, formatted for
// display.
func FindWarning(warnings []model.FormValidationWarning, definition string, override, schema map[string]any) (model.MappedWarning, bool) {
	fieldSchema := jsonschema.EffectiveSchema(schema, definition, override)
	path := ""
	if definition != "" {
		path, _ = formpath.PointerToJSONPath(definition)
	}
	fieldName := formpath.LastSegment(definition)
	htmlField := HTMLFieldName(definition, fieldSchema)

	for _, warning := range warnings {
		if path != "" && warning.Field == path {
			return model.MappedWarning{
				Field:      warning.Field,
				Message:    warning.Message,
				Type:       warning.Type,
				Value:      warning.Value,
				Formatted:  Format(warning.Message, title(fieldSchema), fieldName),
				HTMLField:  htmlField,
				Definition: definition,
			}, true
		}
	}

	if definition == "" || len(fieldSchema) == 0 {
		return model.MappedWarning{}, false
	}
	return nestedWarning(warnings, definition, path, fieldName, htmlField, fieldSchema, schema)
}

func nestedWarning(warnings []model.FormValidationWarning, definition, path, fieldName, htmlField string, fieldSchema, schema map[string]any) (model.MappedWarning, bool) {
	parentDef := trailingProperty.ReplaceAllString(definition, "")
	parentSchema := schema
	if parentDef != "" {
		found, ok := jsonschema.FieldSchema(schema, parentDef)
		if !ok {
			return model.MappedWarning{}, false
		}
		parentSchema = found
	}
	if !listsRequired(parentSchema, fieldName) {
		return model.MappedWarning{}, false
	}

	for _, warning := range warnings {
		if warning.Field == path || !strings.Contains(path, warning.Field) {
			continue
		}
		// Required failures name the missing property; skip ones about siblings.
		if quoted := quotedToken.FindString(warning.Message); quoted != "" && strings.Trim(quoted, "'") != fieldName {
			continue
		}

		message := replaceFirst(warning.Message, quotedToken.FindString(warning.Message), fieldName)
		formatted := Format(message, title(fieldSchema), fieldName)
		if parentTitle := title(parentSchema); parentTitle != "" && parentDef != "" {
			formatted = parentTitle + " " + formatted
		}
		return model.MappedWarning{
			Field:      warning.Field,
			Message:    warning.Message,
			Type:       warning.Type,
			Value:      warning.Value,
			Formatted:  formatted,
			HTMLField:  htmlField,
			Definition: definition,
		}, true
	}
	return model.MappedWarning{}, false
}

func mapBudget(section budget.Section, node uischema.Node, warnings []model.FormValidationWarning) []model.MappedWarning {
	var prefixes []string
	for _, def := range node.Definition {
		prefixes = append(prefixes, formpath.PointerToHTMLName(def))
	}

	var out []model.MappedWarning
	for _, warning := range warnings {
		htmlField := formpath.JSONPathToHTMLName(warning.Field)
		if !hasNamePrefix(htmlField, prefixes) {
			continue
		}
		formatted := warning.Message
		labels := budget.ErrorLabels(section, htmlField, warnings)
		if len(labels) > 0 && strings.HasPrefix(labels[0], "Row ") {
			formatted = fmt.Sprintf("%s: %s", labels[0], warning.Message)
		} else if len(labels) > 0 {
			formatted = labels[0]
		}
		out = append(out, model.MappedWarning{
			Field:      warning.Field,
			Message:    warning.Message,
			Type:       warning.Type,
			Value:      warning.Value,
			Formatted:  formatted,
			HTMLField:  htmlField,
			Definition: node.Definition.First(),
		})
	}
	return out
}

func hasNamePrefix(name string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if name == prefix || strings.HasPrefix(name, prefix+formpath.Delimiter) || strings.HasPrefix(name, prefix+"[") {
			return true
		}
	}
	return false
}

func listsRequired(schema map[string]any, field string) bool {
	switch required := schema["required"].(type) {
	case []any:
		for _, item := range required {
			if item == field {
				return true
			}
		}
	case []string:
		for _, item := range required {
			if item == field {
				return true
			}
		}
	}
	return false
}

// HTMLFieldName derives the HTML name of a field: the definition pointer
// without `properties` segments, or the schema title with whitespace turned
// into dashes, or "untitled".
func HTMLFieldName(definition string, schema map[string]any) string {
	if definition != "" {
		return formpath.PointerToHTMLName(definition)
	}
	name := "untitled"
	if t, ok := schema["title"].(string); ok {
		name = t
	}
	return whitespace.ReplaceAllString(name, "-")
}

func title(schema map[string]any) string {
	t, _ := schema["title"].(string)
	return t
}

func replaceFirst(s, old, replacement string) string {
	if old == "" {
		return s
	}
	return strings.Replace(s, old, replacement, 1)
}
