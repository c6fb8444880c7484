package validation

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/goliatone/go-applyform/pkg/model"
)

// ErrInvalidSchema wraps schemas gojsonschema cannot compile.
var ErrInvalidSchema = errors.New("validation: invalid schema")

// SchemaIssue describes why a schema failed to compile.
type SchemaIssue struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// SchemaValidationResult captures the outcome of CheckSchema.
type SchemaValidationResult struct {
	Valid  bool          `json:"valid"`
	Issues []SchemaIssue `json:"issues,omitempty"`
}

// keyword renames gojsonschema error types to the validator keyword the
// backend reports.
func keyword(errorType string) string {
	switch errorType {
	case "invalid_type":
		return "type"
	case "array_min_items":
		return "minItems"
	case "array_max_items":
		return "maxItems"
	case "string_gte":
		return "minLength"
	case "string_lte":
		return "maxLength"
	case "number_gte":
		return "minimum"
	case "number_lte":
		return "maximum"
	case "additional_property_not_allowed":
		return "additionalProperties"
	}
	return errorType
}

// Validate checks data against schema. Every failure becomes a warning
// whose Field is a JSON path (`$.a.b[0].c`). Required failures point at the
// object that lists the missing property and name it in quotes, e.g.
// `'title' is a required property`.
func Validate(schema, data map[string]any) ([]model.FormValidationWarning, error) {
	compiled, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(schema))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSchema, err)
	}
	if data == nil {
		data = map[string]any{}
	}
	result, err := compiled.Validate(gojsonschema.NewGoLoader(data))
	if err != nil {
		return nil, fmt.Errorf("validation: validate document: %w", err)
	}
	if result.Valid() {
		return []model.FormValidationWarning{}, nil
	}

	out := make([]model.FormValidationWarning, 0, len(result.Errors()))
	seen := map[string]struct{}{}
	for _, resultErr := range result.Errors() {
		// Composite keywords repeat the failures of their branches.
		switch resultErr.Type() {
		case "number_any_of", "number_one_of", "number_all_of", "condition_then", "condition_else":
			continue
		}
		warning := toWarning(resultErr)
		key := warning.Field + "\x00" + warning.Message
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, warning)
	}
	return out, nil
}

// CheckSchema reports whether schema compiles.
func CheckSchema(schema map[string]any) SchemaValidationResult {
	if _, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(schema)); err != nil {
		return SchemaValidationResult{Issues: []SchemaIssue{issueFromError(err)}}
	}
	return SchemaValidationResult{Valid: true}
}

func toWarning(resultErr gojsonschema.ResultError) model.FormValidationWarning {
	message := resultErr.Description()
	switch resultErr.Type() {
	case "required":
		if property, ok := resultErr.Details()["property"].(string); ok {
			message = fmt.Sprintf("'%s' is a required property", property)
		}
	case "array_min_items":
		if list, ok := resultErr.Value().([]any); ok && len(list) == 0 {
			message = "[] should be non-empty"
		}
	}

	return model.FormValidationWarning{
		Field:   contextToJSONPath(resultErr.Context()),
		Message: message,
		Type:    keyword(resultErr.Type()),
		Value:   resultErr.Value(),
	}
}

// contextToJSONPath turns `(root).items.0.title` into `$.items[0].title`.
func contextToJSONPath(ctx *gojsonschema.JsonContext) string {
	if ctx == nil {
		return "$"
	}
	parts := strings.Split(ctx.String(), ".")
	var b strings.Builder
	b.WriteString("$")
	for _, part := range parts {
		if part == "" || part == "(root)" {
			continue
		}
		if _, err := strconv.Atoi(part); err == nil {
			b.WriteString("[" + part + "]")
			continue
		}
		b.WriteString("." + part)
	}
	return b.String()
}

func issueFromError(err error) SchemaIssue {
	msg := strings.TrimSpace(err.Error())
	field := ""
	// gojsonschema reports keyword errors as "<keyword> ... of <path>".
	if idx := strings.LastIndex(msg, " of "); idx >= 0 {
		field = strings.TrimSpace(msg[idx+4:])
	}
	return SchemaIssue{Field: field, Message: msg}
}
