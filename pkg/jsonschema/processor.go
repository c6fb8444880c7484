package jsonschema

import (
	"context"
	"errors"
	"fmt"
)

// ErrNilSchema is returned when Process receives no schema.
var ErrNilSchema = errors.New("jsonschema: schema is nil")

// Result is the processed form schema plus the conditional rules lifted out of
// it.
type Result struct {
	FormSchema       map[string]any
	ConditionalRules ConditionalRules
	Issues           []Issue
}

// Option customises Process.
type Option func(*processConfig)

type processConfig struct {
	resolver    *Resolver
	dereference bool
}

// WithResolver swaps the ref resolver used before merging.
func WithResolver(resolver *Resolver) Option {
	return func(cfg *processConfig) {
		if resolver != nil {
			cfg.resolver = resolver
		}
	}
}

// WithoutDereference skips `$ref` expansion for schemas that are already
// dereferenced.
func WithoutDereference() Option {
	return func(cfg *processConfig) {
		cfg.dereference = false
	}
}

// Process prepares a raw form schema for rendering: refs are expanded,
// if/then allOf blocks under `properties` are lifted into ConditionalRules,
// and the remaining allOf blocks under `properties` are merged. Top-level
// keywords outside `properties` are left untouched. The input is not
// modified.
func Process(ctx context.Context, schema map[string]any, opts ...Option) (Result, error) {
	if schema == nil {
		return Result{}, ErrNilSchema
	}
	cfg := processConfig{resolver: NewResolver(ResolveOptions{}), dereference: true}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	working := cloneAny(schema).(map[string]any)
	if cfg.dereference {
		resolved, err := cfg.resolver.Resolve(ctx, working)
		if err != nil {
			return Result{}, fmt.Errorf("jsonschema: dereference: %w", err)
		}
		working = resolved
	}

	properties, _ := working["properties"].(map[string]any)
	if properties == nil {
		properties = map[string]any{}
	}
	cleaned, rules, issues := ExtractConditionals(properties)

	merged, err := MergeAllOf(map[string]any{"properties": cleaned})
	if err != nil {
		return Result{}, err
	}
	for key, value := range merged.(map[string]any) {
		working[key] = value
	}

	return Result{
		FormSchema:       working,
		ConditionalRules: rules,
		Issues:           issues,
	}, nil
}
