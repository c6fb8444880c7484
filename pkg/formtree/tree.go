package formtree

import (
	"context"
	"errors"
	"fmt"

	"github.com/goliatone/go-applyform/pkg/jsonschema"
	"github.com/goliatone/go-applyform/pkg/model"
	"github.com/goliatone/go-applyform/pkg/uischema"
	"github.com/goliatone/go-applyform/pkg/warnings"
	"github.com/goliatone/go-applyform/pkg/widgets"
)

// NodeError locates the UI schema node that could not be resolved.
type NodeError = uischema.NodeError

var (
	// ErrMissingDefinition is returned for nodes with neither definition nor schema.
	ErrMissingDefinition = uischema.ErrMissingDefinition
	// ErrNestedSection is returned for sections placed inside sections.
	ErrNestedSection = uischema.ErrNestedSection
	// ErrUnresolvedDefinition is returned when a definition pointer does not
	// address a subschema and no inline schema is supplied.
	ErrUnresolvedDefinition = errors.New("formtree: definition does not resolve to a schema")
)

// Input bundles everything a build needs. Mapped and Required are derived
// from the other fields when left nil.
type Input struct {
	UISchema   uischema.UISchema
	FormSchema map[string]any
	FormData   map[string]any
	Warnings   []model.FormValidationWarning
	Mapped     []model.MappedWarning
	Required   jsonschema.RequiredSet
}

// Option customises a build.
type Option func(*config)

type config struct {
	resolver *widgets.Resolver
}

// WithResolver replaces the widget type resolver.
func WithResolver(resolver *widgets.Resolver) Option {
	return func(cfg *config) {
		if resolver != nil {
			cfg.resolver = resolver
		}
	}
}

// Build resolves every UI schema node into widgets, preserving order. An
// empty UI schema yields an empty, non-nil list.
func Build(ctx context.Context, in Input, opts ...Option) ([]model.Widget, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cfg := config{resolver: widgets.NewResolver()}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	if err := uischema.Validate(in.UISchema); err != nil {
		return nil, err
	}

	if in.Mapped == nil {
		in.Mapped = warnings.BuildTree(in.UISchema, in.Warnings, in.FormSchema)
	}
	if in.Required == nil {
		in.Required = jsonschema.NewRequiredSet(jsonschema.RequiredPaths(in.FormSchema))
	}

	out := make([]model.Widget, 0, len(in.UISchema))
	for idx, node := range in.UISchema {
		path := fmt.Sprintf("[%d]", idx)
		if node.Type == uischema.NodeSection {
			section, err := buildSection(node, path, in, cfg)
			if err != nil {
				return nil, err
			}
			out = append(out, section)
			continue
		}
		widget, err := resolveNode(node, path, in, cfg)
		if err != nil {
			return nil, err
		}
		out = append(out, widget)
	}
	return out, nil
}

func buildSection(node uischema.Node, path string, in Input, cfg config) (model.Widget, error) {
	section := model.Widget{
		ID:          node.Name,
		Name:        node.Name,
		Type:        model.WidgetFieldset,
		Label:       node.Label,
		Description: node.Description,
		Children:    make([]model.Widget, 0, len(node.Children)),
	}
	for idx, child := range node.Children {
		childPath := fmt.Sprintf("%s.children[%d]", path, idx)
		if child.Type == uischema.NodeSection {
			return model.Widget{}, &NodeError{Path: childPath, Name: child.Name, Err: ErrNestedSection}
		}
		widget, err := resolveNode(child, childPath, in, cfg)
		if err != nil {
			return model.Widget{}, err
		}
		section.Children = append(section.Children, widget)
	}
	return section, nil
}

func resolveNode(node uischema.Node, path string, in Input, cfg config) (model.Widget, error) {
	widget, err := resolveField(FieldInput{
		Node:       node,
		FormSchema: in.FormSchema,
		FormData:   in.FormData,
		Warnings:   in.Warnings,
		Mapped:     in.Mapped,
		Required:   in.Required,
	}, cfg.resolver)
	if err != nil {
		var nodeErr *NodeError
		if errors.As(err, &nodeErr) {
			return model.Widget{}, err
		}
		return model.Widget{}, &NodeError{Path: path, Name: node.Name, Err: err}
	}
	return widget, nil
}
