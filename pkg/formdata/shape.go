package formdata

import (
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/goliatone/go-applyform/pkg/formpath"
	"github.com/goliatone/go-applyform/pkg/jsonschema"
)

// ErrConflictingKeys is returned when one field name is both a value and the
// parent of another field.
var ErrConflictingKeys = errors.New("formdata: field is both a value and a parent")

// ErrIndexOutOfRange is returned for field names whose array index is above
// formpath.MaxArrayIndex.
var ErrIndexOutOfRange = formpath.ErrIndexOutOfRange

// ActionPrefix marks framework bookkeeping keys that never reach the API.
const ActionPrefix = "$ACTION_"

// ignoredKeys are submit-button and action markers dropped before shaping.
var ignoredKeys = map[string]struct{}{
	"apply-form-button": {},
	"delete_attachment": {},
}

// Option customises coercion.
type Option func(*config)

type config struct {
	schema map[string]any
}

// WithSchema lets the form schema drive coercion: string fields keep their
// text, numbers and booleans are parsed, and array fields always become
// lists. Fields the schema does not describe fall back to the untyped rules.
func WithSchema(schema map[string]any) Option {
	return func(cfg *config) {
		cfg.schema = schema
	}
}

// Shape nests and coerces flat form values. Keys with several values become
// lists, except the hidden "false" companion of a checked checkbox, which
// collapses to its last value.
func Shape(values url.Values, opts ...Option) (map[string]any, error) {
	cfg := newConfig(opts)

	keys := make([]string, 0, len(values))
	for key := range values {
		if skipKey(key) {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)

	out := map[string]any{}
	for _, key := range keys {
		if err := checkConflict(out, key); err != nil {
			return nil, err
		}
		shaped, err := formpath.Set(out, key, cfg.coerceValues(key, values[key]))
		if err != nil {
			return nil, err
		}
		out = shaped
	}

	pruned, _ := Prune(out).(map[string]any)
	if pruned == nil {
		pruned = map[string]any{}
	}
	return pruned, nil
}

// ShapeMap is Shape for callers holding a plain map.
func ShapeMap(values map[string][]string, opts ...Option) (map[string]any, error) {
	return Shape(url.Values(values), opts...)
}

// Reshape coerces and prunes already nested data.
func Reshape(data map[string]any, opts ...Option) map[string]any {
	cfg := newConfig(opts)
	coerced, _ := cfg.coerceTree("", data).(map[string]any)
	pruned, _ := Prune(coerced).(map[string]any)
	if pruned == nil {
		pruned = map[string]any{}
	}
	return pruned
}

func newConfig(opts []Option) config {
	var cfg config
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

func skipKey(key string) bool {
	if strings.HasPrefix(key, ActionPrefix) {
		return true
	}
	_, ignored := ignoredKeys[key]
	return ignored
}

// checkConflict rejects names whose parent already holds a scalar, or that
// would overwrite an object built by earlier names.
func checkConflict(data map[string]any, name string) error {
	segments := formpath.ParseSegments(name)
	for idx := 1; idx < len(segments); idx++ {
		prefix := joinSegments(segments[:idx])
		if value, ok := formpath.Get(data, prefix); ok && value != nil {
			switch value.(type) {
			case map[string]any, []any:
			default:
				return fmt.Errorf("%w: %s", ErrConflictingKeys, prefix)
			}
		}
	}
	if value, ok := formpath.Get(data, name); ok {
		if _, isObj := value.(map[string]any); isObj {
			return fmt.Errorf("%w: %s", ErrConflictingKeys, name)
		}
	}
	return nil
}

func joinSegments(segments []formpath.Segment) string {
	parts := make([]string, len(segments))
	for idx, seg := range segments {
		parts[idx] = seg.String()
	}
	return strings.Join(parts, formpath.Delimiter)
}

func (cfg config) fieldType(name string) (string, string) {
	if cfg.schema == nil || name == "" {
		return "", ""
	}
	field, ok := jsonschema.FieldSchema(cfg.schema, schemaPointer(name))
	if !ok {
		return "", ""
	}
	kind := jsonschema.SchemaType(field)
	itemKind := ""
	if items, ok := field["items"].(map[string]any); ok {
		itemKind = jsonschema.SchemaType(items)
	}
	return kind, itemKind
}

// schemaPointer maps `a--b[0]--c` to `/properties/a/properties/b[0]/properties/c`.
func schemaPointer(name string) string {
	parts := strings.Split(name, formpath.Delimiter)
	for idx, part := range parts {
		parts[idx] = "properties/" + part
	}
	return "/" + strings.Join(parts, "/")
}

func (cfg config) coerceValues(name string, raw []string) any {
	kind, itemKind := cfg.fieldType(name)
	if kind == "array" {
		out := make([]any, 0, len(raw))
		for _, item := range raw {
			out = append(out, coerceScalar(item, itemKind))
		}
		return out
	}
	if len(raw) == 0 {
		return nil
	}
	if len(raw) == 1 || isCheckboxPair(raw) || kind == "boolean" {
		return coerceScalar(raw[len(raw)-1], kind)
	}
	out := make([]any, 0, len(raw))
	for _, item := range raw {
		out = append(out, coerceScalar(item, kind))
	}
	return out
}

func isCheckboxPair(raw []string) bool {
	return len(raw) == 2 && raw[0] == "false" && raw[1] == "true"
}

func (cfg config) coerceTree(name string, value any) any {
	switch typed := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(typed))
		for key, item := range typed {
			out[key] = cfg.coerceTree(formpath.JoinName(name, key), item)
		}
		return out
	case []any:
		_, itemKind := cfg.fieldType(name)
		out := make([]any, len(typed))
		for idx, item := range typed {
			switch item.(type) {
			case map[string]any, []any:
				out[idx] = cfg.coerceTree(formpath.IndexedName(name, idx), item)
			default:
				out[idx] = coerceAny(item, itemKind)
			}
		}
		return out
	default:
		kind, _ := cfg.fieldType(name)
		return coerceAny(value, kind)
	}
}

func coerceAny(value any, kind string) any {
	if text, ok := value.(string); ok {
		return coerceScalar(text, kind)
	}
	return value
}

// coerceScalar converts one submitted string. Without a schema type only
// "true", "false" and canonical numbers are converted, so values such as
// "01234" or "12.50" keep their text.
func coerceScalar(raw, kind string) any {
	switch kind {
	case "string":
		return raw
	case "boolean":
		if b, err := strconv.ParseBool(raw); err == nil {
			return b
		}
		return raw
	case "number", "integer":
		if f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64); err == nil {
			return f
		}
		return raw
	}

	switch raw {
	case "true":
		return true
	case "false":
		return false
	}
	if f, ok := canonicalNumber(raw); ok {
		return f
	}
	return raw
}

func canonicalNumber(raw string) (float64, bool) {
	if raw == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	if strconv.FormatFloat(f, 'f', -1, 64) != raw {
		return 0, false
	}
	return f, true
}
