package uischema

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMissingType is returned for nodes without a `type`.
	ErrMissingType = errors.New("uischema: node type is required")
	// ErrUnknownNodeType is returned for types other than field, section and multiField.
	ErrUnknownNodeType = errors.New("uischema: unknown node type")
	// ErrMissingDefinition is returned for field nodes with neither definition nor schema.
	ErrMissingDefinition = errors.New("uischema: node requires definition or schema")
	// ErrMissingName is returned for multiField nodes without a name.
	ErrMissingName = errors.New("uischema: multiField requires a name")
	// ErrNestedSection is returned for sections placed inside sections.
	ErrNestedSection = errors.New("uischema: sections cannot be nested")
)

// NodeError locates a structural problem in the UI schema tree.
type NodeError struct {
	Path string
	Name string
	Err  error
}

func (e *NodeError) Error() string {
	label := e.Path
	if e.Name != "" {
		label = fmt.Sprintf("%s (%s)", e.Path, e.Name)
	}
	return fmt.Sprintf("uischema node %s: %v", label, e.Err)
}

func (e *NodeError) Unwrap() error {
	return e.Err
}

// Validate checks node shapes and returns the first structural problem as a
// *NodeError.
func Validate(ui UISchema) error {
	for idx, node := range ui {
		if err := validateNode(node, fmt.Sprintf("[%d]", idx), false); err != nil {
			return err
		}
	}
	return nil
}

// ValidateNode checks a single node outside of a tree.
func ValidateNode(node Node, path string, inSection bool) error {
	return validateNode(node, path, inSection)
}

func validateNode(node Node, path string, inSection bool) error {
	fail := func(err error) error {
		return &NodeError{Path: path, Name: node.Name, Err: err}
	}

	switch node.Type {
	case "":
		return fail(ErrMissingType)
	case NodeField:
		if !hasDefinition(node) && len(node.Schema) == 0 {
			return fail(ErrMissingDefinition)
		}
	case NodeMultiField:
		if strings.TrimSpace(node.Name) == "" {
			return fail(ErrMissingName)
		}
		if !hasDefinition(node) && len(node.Schema) == 0 {
			return fail(ErrMissingDefinition)
		}
	case NodeSection:
		if inSection {
			return fail(ErrNestedSection)
		}
		for idx, child := range node.Children {
			if err := validateNode(child, fmt.Sprintf("%s.children[%d]", path, idx), true); err != nil {
				return err
			}
		}
	default:
		return fail(fmt.Errorf("%w %q", ErrUnknownNodeType, node.Type))
	}
	return nil
}

func hasDefinition(node Node) bool {
	for _, def := range node.Definition {
		if strings.TrimSpace(def) != "" {
			return true
		}
	}
	return false
}
