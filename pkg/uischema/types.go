package uischema

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// NodeType discriminates UI schema nodes.
type NodeType string

const (
	NodeField      NodeType = "field"
	NodeSection    NodeType = "section"
	NodeMultiField NodeType = "multiField"
)

// UISchema is the ordered layout tree of a form.
type UISchema []Node

// Node is one entry of the layout tree. Which fields apply depends on Type:
// field nodes use Definition/Schema/Widget/Name, sections use
// Label/Name/Description/Children, multiField nodes use Definition (one
// pointer per constituent), Name and Widget.
type Node struct {
	Type        NodeType       `json:"type" yaml:"type"`
	Name        string         `json:"name,omitempty" yaml:"name,omitempty"`
	Label       string         `json:"label,omitempty" yaml:"label,omitempty"`
	Description string         `json:"description,omitempty" yaml:"description,omitempty"`
	Definition  Definition     `json:"definition,omitempty" yaml:"definition,omitempty"`
	Schema      map[string]any `json:"schema,omitempty" yaml:"schema,omitempty"`
	Widget      string         `json:"widget,omitempty" yaml:"widget,omitempty"`
	Children    []Node         `json:"children,omitempty" yaml:"children,omitempty"`
}

// Definition holds one or more JSON pointers into the form schema. It decodes
// from either a string or a list of strings.
type Definition []string

// First returns the first pointer or "".
func (d Definition) First() string {
	if len(d) == 0 {
		return ""
	}
	return d[0]
}

// UnmarshalJSON accepts `"/properties/a"` or `["/properties/a", ...]`.
func (d *Definition) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		*d = nil
		return nil
	}
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*d = definitionFrom(single)
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("uischema: definition must be a string or a list of strings: %w", err)
	}
	*d = Definition(list)
	return nil
}

// UnmarshalYAML mirrors UnmarshalJSON for YAML documents.
func (d *Definition) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var single string
		if err := node.Decode(&single); err != nil {
			return err
		}
		*d = definitionFrom(single)
		return nil
	case yaml.SequenceNode:
		var list []string
		if err := node.Decode(&list); err != nil {
			return err
		}
		*d = Definition(list)
		return nil
	default:
		return fmt.Errorf("uischema: definition must be a string or a list of strings (line %d)", node.Line)
	}
}

// MarshalJSON writes single pointers as a plain string.
func (d Definition) MarshalJSON() ([]byte, error) {
	if len(d) == 1 {
		return json.Marshal(d[0])
	}
	return json.Marshal([]string(d))
}

func definitionFrom(single string) Definition {
	if strings.TrimSpace(single) == "" {
		return nil
	}
	return Definition{single}
}

// Sections returns the top-level section nodes in order.
func (s UISchema) Sections() []Node {
	var out []Node
	for _, node := range s {
		if node.Type == NodeSection {
			out = append(out, node)
		}
	}
	return out
}
