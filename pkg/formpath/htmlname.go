package formpath

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Segment is one "--" separated part of an HTML field name. `items[2]` yields
// Key "items" with Indexes [2].
type Segment struct {
	Key     string
	Indexes []int
}

var indexSuffix = regexp.MustCompile(`\[(\d+)\]`)

// MaxArrayIndex is the largest array index Set accepts. Set grows slices up
// to the index, so the bound caps what a single posted name can allocate.
const MaxArrayIndex = 9999

// ErrIndexOutOfRange is returned by Set for indices above MaxArrayIndex.
var ErrIndexOutOfRange = errors.New("formpath: array index out of range")

// ParseSegments splits an HTML field name into keys and array indices.
func ParseSegments(name string) []Segment {
	if strings.TrimSpace(name) == "" {
		return nil
	}
	parts := strings.Split(name, Delimiter)
	segments := make([]Segment, 0, len(parts))
	for _, part := range parts {
		segments = append(segments, parseSegment(part))
	}
	return segments
}

func parseSegment(part string) Segment {
	open := strings.Index(part, "[")
	if open < 0 || !strings.HasSuffix(part, "]") {
		return Segment{Key: part}
	}
	suffix := part[open:]
	matches := indexSuffix.FindAllStringSubmatch(suffix, -1)
	if len(matches) == 0 || joinedLength(matches) != len(suffix) {
		return Segment{Key: part}
	}
	seg := Segment{Key: part[:open]}
	for _, match := range matches {
		idx, err := strconv.Atoi(match[1])
		if err != nil {
			return Segment{Key: part}
		}
		seg.Indexes = append(seg.Indexes, idx)
	}
	return seg
}

func joinedLength(matches [][]string) int {
	total := 0
	for _, match := range matches {
		total += len(match[0])
	}
	return total
}

// String renders the segment back into HTML name notation.
func (s Segment) String() string {
	var builder strings.Builder
	builder.WriteString(s.Key)
	for _, idx := range s.Indexes {
		builder.WriteString("[")
		builder.WriteString(strconv.Itoa(idx))
		builder.WriteString("]")
	}
	return builder.String()
}

// JoinName builds an HTML field name from a parent name and a child segment.
func JoinName(parent, child string) string {
	switch {
	case parent == "":
		return child
	case child == "":
		return parent
	default:
		return parent + Delimiter + child
	}
}

// IndexedName returns `name[idx]`.
func IndexedName(name string, idx int) string {
	return name + "[" + strconv.Itoa(idx) + "]"
}

// Get reads the value addressed by an HTML field name from nested form data.
// Maps are walked by key and slices by index. Absent paths report false.
func Get(data any, name string) (any, bool) {
	segments := ParseSegments(name)
	if len(segments) == 0 {
		return nil, false
	}
	current := data
	for _, seg := range segments {
		obj, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = obj[seg.Key]
		if !ok {
			return nil, false
		}
		for _, idx := range seg.Indexes {
			items, ok := current.([]any)
			if !ok || idx < 0 || idx >= len(items) {
				return nil, false
			}
			current = items[idx]
		}
	}
	return current, true
}

// Set writes value at the HTML field name, creating intermediate maps and
// growing slices as needed. The (possibly new) root is returned. Names with
// an index above MaxArrayIndex leave data untouched and return
// ErrIndexOutOfRange.
func Set(data map[string]any, name string, value any) (map[string]any, error) {
	if data == nil {
		data = map[string]any{}
	}
	segments := ParseSegments(name)
	if len(segments) == 0 {
		return data, nil
	}
	if err := CheckIndexes(segments); err != nil {
		return data, fmt.Errorf("%w: %s", err, name)
	}
	setSegments(data, segments, value)
	return data, nil
}

// CheckIndexes reports ErrIndexOutOfRange when any index in segments is
// above MaxArrayIndex.
func CheckIndexes(segments []Segment) error {
	for _, seg := range segments {
		for _, idx := range seg.Indexes {
			if idx > MaxArrayIndex {
				return ErrIndexOutOfRange
			}
		}
	}
	return nil
}

func setSegments(obj map[string]any, segments []Segment, value any) {
	seg := segments[0]
	rest := segments[1:]
	if len(seg.Indexes) == 0 {
		if len(rest) == 0 {
			obj[seg.Key] = value
			return
		}
		child, ok := obj[seg.Key].(map[string]any)
		if !ok {
			child = map[string]any{}
			obj[seg.Key] = child
		}
		setSegments(child, rest, value)
		return
	}
	obj[seg.Key] = setIndexed(obj[seg.Key], seg.Indexes, rest, value)
}

func setIndexed(current any, indexes []int, rest []Segment, value any) any {
	items, _ := current.([]any)
	idx := indexes[0]
	for len(items) <= idx {
		items = append(items, nil)
	}
	if len(indexes) > 1 {
		items[idx] = setIndexed(items[idx], indexes[1:], rest, value)
		return items
	}
	if len(rest) == 0 {
		items[idx] = value
		return items
	}
	child, ok := items[idx].(map[string]any)
	if !ok {
		child = map[string]any{}
		items[idx] = child
	}
	setSegments(child, rest, value)
	return items
}
