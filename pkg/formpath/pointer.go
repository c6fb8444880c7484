package formpath

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Delimiter joins nested segments inside HTML field names.
const Delimiter = "--"

const propertiesSegment = "properties"

// ErrInvalidPointer is returned when a non-empty pointer does not start with "/".
var ErrInvalidPointer = errors.New("formpath: invalid json pointer")

// ErrPointerNotFound is returned when a pointer cannot be resolved.
var ErrPointerNotFound = errors.New("formpath: pointer not found")

var (
	specialChars  = regexp.MustCompile(`[\s~!@#$%^&*()+\-=[\]{};':"\\|,.<>/?]+`)
	indexedKey    = regexp.MustCompile(`^([^\[\]]+)((?:\[\d+\])+)$`)
	numericToken  = regexp.MustCompile(`^\d+$`)
	quotedSegment = regexp.MustCompile(`\['((?:[^'\\]|\\.)*)'\]`)
)

// PointerToHTMLName strips `properties` segments and joins what remains with
// "--". `/properties/a/properties/b` becomes `a--b`.
func PointerToHTMLName(pointer string) string {
	parts := strings.Split(pointer, "/")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if part == "" || part == propertiesSegment {
			continue
		}
		out = append(out, part)
	}
	return strings.Join(out, Delimiter)
}

// HTMLNameToPointer is the inverse of PointerToHTMLName for data pointers:
// `a--b[0]--c` becomes `/a/b[0]/c`. Schema `properties` segments are not
// restored.
func HTMLNameToPointer(name string) string {
	return "/" + strings.ReplaceAll(name, Delimiter, "/")
}

// PointerToJSONPath converts a schema pointer into the JSON Path notation used
// by backend validation warnings. `properties` segments are dropped, keys
// containing special characters are bracket quoted and `name[idx]` segments
// keep their index suffix.
//
//	""                              -> "$"
//	"/"                             -> "$['']"
//	"/properties/a/properties/b"    -> "$.a.b"
//	"/properties/a b"               -> "$['a b']"
func PointerToJSONPath(pointer string) (string, error) {
	if pointer == "" {
		return "$", nil
	}
	if pointer == "/" {
		return "$['']", nil
	}
	tokens, err := ParsePointer(pointer)
	if err != nil {
		return "", err
	}

	var builder strings.Builder
	builder.WriteString("$")
	for _, token := range tokens {
		if token == propertiesSegment {
			continue
		}
		writeJSONPathToken(&builder, token)
	}
	return builder.String(), nil
}

// MustPointerToJSONPath panics when the pointer is malformed. Intended for
// static definitions.
func MustPointerToJSONPath(pointer string) string {
	path, err := PointerToJSONPath(pointer)
	if err != nil {
		panic(err)
	}
	return path
}

func writeJSONPathToken(builder *strings.Builder, token string) {
	if numericToken.MatchString(token) {
		builder.WriteString("[")
		builder.WriteString(token)
		builder.WriteString("]")
		return
	}
	if match := indexedKey.FindStringSubmatch(token); match != nil && !specialChars.MatchString(match[1]) {
		builder.WriteString(".")
		builder.WriteString(match[1])
		builder.WriteString(match[2])
		return
	}
	if token == "" || specialChars.MatchString(token) {
		builder.WriteString("['")
		builder.WriteString(token)
		builder.WriteString("']")
		return
	}
	builder.WriteString(".")
	builder.WriteString(token)
}

// JSONPathToHTMLName converts a JSON Path into an HTML field name:
// `$.a[0].b` becomes `a[0]--b`. Bracket-quoted keys are unwrapped.
func JSONPathToHTMLName(path string) string {
	trimmed := strings.TrimSpace(path)
	trimmed = strings.TrimPrefix(trimmed, "$")
	if trimmed == "" {
		return ""
	}
	trimmed = quotedSegment.ReplaceAllStringFunc(trimmed, func(match string) string {
		inner := quotedSegment.FindStringSubmatch(match)[1]
		return "." + strings.ReplaceAll(inner, ".", "\x00")
	})
	trimmed = strings.TrimPrefix(trimmed, ".")
	name := strings.ReplaceAll(trimmed, ".", Delimiter)
	return strings.ReplaceAll(name, "\x00", ".")
}

// PointerToFieldName is JSONPathToHTMLName under the name used by the warning
// mapper.
func PointerToFieldName(path string) string {
	return JSONPathToHTMLName(path)
}

// ParsePointer splits a pointer into its unescaped reference tokens.
func ParsePointer(pointer string) ([]string, error) {
	if pointer == "" {
		return nil, nil
	}
	if !strings.HasPrefix(pointer, "/") {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPointer, pointer)
	}
	parts := strings.Split(pointer[1:], "/")
	for idx, part := range parts {
		parts[idx] = UnescapeToken(part)
	}
	return parts, nil
}

// UnescapeToken decodes RFC 6901 escapes.
func UnescapeToken(token string) string {
	token = strings.ReplaceAll(token, "~1", "/")
	return strings.ReplaceAll(token, "~0", "~")
}

// EscapeToken encodes a key for use inside a pointer.
func EscapeToken(token string) string {
	token = strings.ReplaceAll(token, "~", "~0")
	return strings.ReplaceAll(token, "/", "~1")
}

// LastSegment returns the final reference token of a pointer, e.g. the field
// name for `/properties/a/properties/b`.
func LastSegment(pointer string) string {
	idx := strings.LastIndex(pointer, "/")
	if idx < 0 {
		return pointer
	}
	return pointer[idx+1:]
}

// ResolvePointer walks a decoded JSON document. Missing keys, out of range
// indices and descents into scalars return ErrPointerNotFound.
func ResolvePointer(doc any, pointer string) (any, error) {
	tokens, err := ParsePointer(pointer)
	if err != nil {
		return nil, err
	}
	current := doc
	for _, token := range tokens {
		switch typed := current.(type) {
		case map[string]any:
			value, ok := typed[token]
			if !ok {
				return nil, fmt.Errorf("%w: %q", ErrPointerNotFound, pointer)
			}
			current = value
		case []any:
			idx, convErr := strconv.Atoi(token)
			if convErr != nil || idx < 0 || idx >= len(typed) {
				return nil, fmt.Errorf("%w: %q", ErrPointerNotFound, pointer)
			}
			current = typed[idx]
		default:
			return nil, fmt.Errorf("%w: %q", ErrPointerNotFound, pointer)
		}
	}
	return current, nil
}

// Lookup is ResolvePointer without the error: absent paths report false.
func Lookup(doc any, pointer string) (any, bool) {
	value, err := ResolvePointer(doc, pointer)
	if err != nil {
		return nil, false
	}
	return value, true
}
