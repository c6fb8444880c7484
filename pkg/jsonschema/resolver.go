package jsonschema

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/goliatone/go-applyform/pkg/formpath"
)

const defaultMaxRefDepth = 64

// ErrExternalRef is returned for `$ref` values that point outside the
// document. Form schemas are served self-contained by the API.
var ErrExternalRef = errors.New("jsonschema resolver: external refs are not supported")

// ResolveOptions configures JSON Schema ref resolution.
type ResolveOptions struct {
	// MaxRefDepth caps the depth of $ref resolution chains.
	MaxRefDepth int
}

// Resolver inlines local `$ref` references (`#/$defs/...`, `#anchor`) so every
// property definition can be read in place.
type Resolver struct {
	opts ResolveOptions
}

// NewResolver constructs a resolver with the supplied options.
func NewResolver(opts ResolveOptions) *Resolver {
	if opts.MaxRefDepth <= 0 {
		opts.MaxRefDepth = defaultMaxRefDepth
	}
	return &Resolver{opts: opts}
}

// Dereference resolves a schema with default options.
func Dereference(ctx context.Context, payload map[string]any) (map[string]any, error) {
	return NewResolver(ResolveOptions{}).Resolve(ctx, payload)
}

// Resolve returns a copy of payload with every local `$ref` expanded. Keywords
// next to a `$ref` override the referenced definition.
func (r *Resolver) Resolve(ctx context.Context, payload map[string]any) (map[string]any, error) {
	if r == nil {
		return nil, errors.New("jsonschema resolver: resolver is nil")
	}
	if payload == nil {
		return nil, errors.New("jsonschema resolver: payload is nil")
	}

	anchors := make(map[string]string)
	indexAnchors(payload, "", anchors)

	session := &resolveSession{
		ctx:     ctx,
		root:    payload,
		anchors: anchors,
		opts:    r.opts,
		state:   &resolveState{stack: make([]string, 0, 4), inStack: make(map[string]struct{})},
	}
	resolved, err := session.resolveNode(payload)
	if err != nil {
		return nil, err
	}
	output, ok := resolved.(map[string]any)
	if !ok {
		return nil, errors.New("jsonschema resolver: resolved root is not an object")
	}
	return output, nil
}

type resolveSession struct {
	ctx     context.Context
	root    map[string]any
	anchors map[string]string
	opts    ResolveOptions
	state   *resolveState
}

func (s *resolveSession) resolveNode(node any) (any, error) {
	if s.ctx != nil {
		if err := s.ctx.Err(); err != nil {
			return nil, err
		}
	}
	switch typed := node.(type) {
	case map[string]any:
		if ref, ok := typed["$ref"].(string); ok && strings.TrimSpace(ref) != "" {
			return s.resolveRef(strings.TrimSpace(ref), typed)
		}
		resolved := make(map[string]any, len(typed))
		for key, value := range typed {
			child, err := s.resolveNode(value)
			if err != nil {
				return nil, err
			}
			resolved[key] = child
		}
		return resolved, nil
	case []any:
		resolved := make([]any, len(typed))
		for idx, value := range typed {
			child, err := s.resolveNode(value)
			if err != nil {
				return nil, err
			}
			resolved[idx] = child
		}
		return resolved, nil
	default:
		return typed, nil
	}
}

func (s *resolveSession) resolveRef(ref string, refObj map[string]any) (any, error) {
	pointer, err := s.refPointer(ref)
	if err != nil {
		return nil, err
	}
	if len(s.state.stack) >= s.opts.MaxRefDepth {
		return nil, fmt.Errorf("jsonschema resolver: ref depth exceeds %d", s.opts.MaxRefDepth)
	}
	if s.state.contains(pointer) {
		return nil, fmt.Errorf("jsonschema resolver: ref cycle detected at %s", ref)
	}
	target, err := formpath.ResolvePointer(s.root, pointer)
	if err != nil {
		return nil, fmt.Errorf("jsonschema resolver: resolve %s: %w", ref, err)
	}

	merged := mergeRefTarget(target, refObj)
	s.state.push(pointer)
	resolved, err := s.resolveNode(merged)
	s.state.pop(pointer)
	if err != nil {
		return nil, err
	}
	return resolved, nil
}

func (s *resolveSession) refPointer(ref string) (string, error) {
	if !strings.HasPrefix(ref, "#") {
		return "", fmt.Errorf("%w: %s", ErrExternalRef, ref)
	}
	fragment, err := url.PathUnescape(strings.TrimPrefix(ref, "#"))
	if err != nil {
		return "", fmt.Errorf("jsonschema resolver: invalid ref %q: %w", ref, err)
	}
	if fragment == "" || strings.HasPrefix(fragment, "/") {
		return fragment, nil
	}
	pointer, ok := s.anchors[fragment]
	if !ok {
		return "", fmt.Errorf("jsonschema resolver: anchor %q not found", fragment)
	}
	return pointer, nil
}

func indexAnchors(node any, pointer string, anchors map[string]string) {
	switch typed := node.(type) {
	case map[string]any:
		if anchor, ok := typed["$anchor"].(string); ok && anchor != "" {
			if _, exists := anchors[anchor]; !exists {
				anchors[anchor] = pointer
			}
		}
		for key, value := range typed {
			indexAnchors(value, pointer+"/"+formpath.EscapeToken(key), anchors)
		}
	case []any:
		for idx, value := range typed {
			indexAnchors(value, fmt.Sprintf("%s/%d", pointer, idx), anchors)
		}
	}
}

func mergeRefTarget(target any, refObj map[string]any) any {
	merged := cloneAny(target)
	mergedMap, ok := merged.(map[string]any)
	if !ok {
		return merged
	}
	for key, value := range refObj {
		if key == "$ref" {
			continue
		}
		mergedMap[key] = cloneAny(value)
	}
	return mergedMap
}

func cloneAny(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(typed))
		for key, val := range typed {
			out[key] = cloneAny(val)
		}
		return out
	case []any:
		out := make([]any, len(typed))
		for idx, val := range typed {
			out[idx] = cloneAny(val)
		}
		return out
	default:
		return typed
	}
}

type resolveState struct {
	stack   []string
	inStack map[string]struct{}
}

func (s *resolveState) push(ref string) {
	s.stack = append(s.stack, ref)
	if s.inStack == nil {
		s.inStack = make(map[string]struct{})
	}
	s.inStack[ref] = struct{}{}
}

func (s *resolveState) pop(ref string) {
	if len(s.stack) == 0 {
		return
	}
	last := s.stack[len(s.stack)-1]
	s.stack = s.stack[:len(s.stack)-1]
	delete(s.inStack, last)
	if ref != last {
		delete(s.inStack, ref)
	}
}

func (s *resolveState) contains(ref string) bool {
	_, ok := s.inStack[ref]
	return ok
}
