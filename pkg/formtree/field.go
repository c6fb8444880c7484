package formtree

import (
	"fmt"
	"strings"

	"github.com/spf13/cast"

	"github.com/goliatone/go-applyform/pkg/formpath"
	"github.com/goliatone/go-applyform/pkg/jsonschema"
	"github.com/goliatone/go-applyform/pkg/model"
	"github.com/goliatone/go-applyform/pkg/uischema"
	"github.com/goliatone/go-applyform/pkg/warnings"
	"github.com/goliatone/go-applyform/pkg/widgets"
)

// EmptySelectLabel is the placeholder option of Select widgets.
const EmptySelectLabel = "- Select -"

// FieldInput describes a single field or multiField node to resolve.
type FieldInput struct {
	Node       uischema.Node
	FormSchema map[string]any
	FormData   map[string]any
	Warnings   []model.FormValidationWarning
	Mapped     []model.MappedWarning
	Required   jsonschema.RequiredSet
}

// ResolveField turns one field or multiField node into a widget using the
// built-in widget type rules.
func ResolveField(in FieldInput) (model.Widget, error) {
	return resolveField(in, nil)
}

func resolveField(in FieldInput, resolver *widgets.Resolver) (model.Widget, error) {
	if resolver == nil {
		resolver = widgets.NewResolver()
	}
	switch in.Node.Type {
	case uischema.NodeField:
		return resolveSingle(in, resolver)
	case uischema.NodeMultiField:
		return resolveMulti(in, resolver)
	default:
		return model.Widget{}, fmt.Errorf("formtree: cannot resolve %q node as a field", in.Node.Type)
	}
}

func resolveSingle(in FieldInput, resolver *widgets.Resolver) (model.Widget, error) {
	node := in.Node
	definition := node.Definition.First()
	if definition == "" && len(node.Schema) == 0 {
		return model.Widget{}, ErrMissingDefinition
	}
	if definition != "" && len(node.Schema) == 0 {
		if _, ok := jsonschema.FieldSchema(in.FormSchema, definition); !ok {
			return model.Widget{}, fmt.Errorf("%w: %s", ErrUnresolvedDefinition, definition)
		}
	}

	fieldSchema := jsonschema.EffectiveSchema(in.FormSchema, definition, node.Schema)
	name := warnings.HTMLFieldName(definition, node.Schema)
	if node.Name != "" && definition == "" {
		name = node.Name
	}
	value, _ := formpath.Get(in.FormData, name)

	widget := model.Widget{
		ID:         name,
		Name:       name,
		Type:       resolver.Resolve(node.Widget, fieldSchema),
		Value:      value,
		Required:   jsonschema.IsFieldRequired(in.Required, definition),
		Disabled:   jsonschema.SchemaType(fieldSchema) == "null",
		RawErrors:  warnings.ForField(in.Mapped, definition),
		Schema:     fieldSchema,
		Definition: []string(node.Definition),
	}
	applySchema(&widget, fieldSchema)
	if widget.Type.IsBudget() {
		widget.RawErrors = nil
		widget.Warnings = in.Warnings
		widget.FormData = in.FormData
	}
	return widget, nil
}

func resolveMulti(in FieldInput, resolver *widgets.Resolver) (model.Widget, error) {
	node := in.Node
	if strings.TrimSpace(node.Name) == "" {
		return model.Widget{}, uischema.ErrMissingName
	}

	fieldSchema := map[string]any{}
	merged := map[string]any{}
	var (
		fieldWarnings []model.FormValidationWarning
		seen          = map[int]struct{}{}
	)
	for _, def := range node.Definition {
		if sub, ok := jsonschema.FieldSchema(in.FormSchema, def); ok {
			for key, value := range sub {
				fieldSchema[key] = value
			}
		}
		defName := formpath.LastSegment(def)
		if value, ok := formpath.Get(in.FormData, defName); ok {
			if obj, isObj := value.(map[string]any); isObj {
				for key, item := range obj {
					merged[key] = item
				}
			}
		}
		for idx, warning := range in.Warnings {
			if _, dup := seen[idx]; dup {
				continue
			}
			if defName != "" && strings.Contains(warning.Field, defName) {
				seen[idx] = struct{}{}
				fieldWarnings = append(fieldWarnings, warning)
			}
		}
	}
	for key, value := range node.Schema {
		fieldSchema[key] = value
	}

	widget := model.Widget{
		ID:         node.Name,
		Name:       node.Name,
		Type:       resolver.Resolve(node.Widget, fieldSchema),
		Value:      merged,
		Required:   jsonschema.IsFieldRequired(in.Required, node.Definition...),
		Disabled:   jsonschema.SchemaType(fieldSchema) == "null",
		Warnings:   fieldWarnings,
		Schema:     fieldSchema,
		Definition: []string(node.Definition),
	}
	applySchema(&widget, fieldSchema)
	if widget.Type.IsBudget() {
		widget.Warnings = in.Warnings
		widget.FormData = in.FormData
	} else {
		for _, warning := range fieldWarnings {
			widget.RawErrors = append(widget.RawErrors, warning.Message)
		}
	}
	return widget, nil
}

func applySchema(widget *model.Widget, schema map[string]any) {
	widget.Label, _ = schema["title"].(string)
	widget.Description, _ = schema["description"].(string)
	widget.MinLength = optionalInt(schema["minLength"])
	widget.MaxLength = optionalInt(schema["maxLength"])
	widget.Options = EnumOptions(widget.Type, schema)
}

// EnumOptions lists the choices of Select, MultiSelect and Radio widgets.
// Booleans become true/false labelled Yes/No, arrays use their item enum.
// Other widget types get no options.
func EnumOptions(widgetType model.WidgetType, schema map[string]any) model.Options {
	if widgetType != model.WidgetSelect && widgetType != model.WidgetMultiSelect && widgetType != model.WidgetRadio {
		return model.Options{}
	}

	var enums []any
	switch jsonschema.SchemaType(schema) {
	case "boolean":
		enums = []any{"true", "false"}
	case "array":
		if item := arrayItem(schema); item != nil {
			enums, _ = item["enum"].([]any)
		}
	default:
		enums, _ = schema["enum"].([]any)
	}

	isBoolean := jsonschema.SchemaType(schema) == "boolean"
	opts := model.Options{EnumOptions: make([]model.EnumOption, 0, len(enums))}
	for _, raw := range enums {
		value := cast.ToString(raw)
		label := value
		if isBoolean {
			label = "No"
			if value == "true" {
				label = "Yes"
			}
		}
		opts.EnumOptions = append(opts.EnumOptions, model.EnumOption{Value: value, Label: label})
	}
	if widgetType == model.WidgetSelect {
		opts.EmptyValue = EmptySelectLabel
	}
	return opts
}

func arrayItem(schema map[string]any) map[string]any {
	switch items := schema["items"].(type) {
	case map[string]any:
		return items
	case []any:
		if len(items) > 0 {
			item, _ := items[0].(map[string]any)
			return item
		}
	}
	return nil
}

func optionalInt(value any) *int {
	if value == nil {
		return nil
	}
	n, err := cast.ToIntE(value)
	if err != nil {
		return nil
	}
	return &n
}
