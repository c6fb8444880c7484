package uischema

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// Store keeps parsed UI schemas keyed by name (the file name without its
// extension). It is safe for concurrent readers when treated as immutable after
// construction.
type Store struct {
	schemas map[string]UISchema
}

// LoadFS walks the provided filesystem and parses JSON/YAML UI schema files.
// When fsys is nil or no schema files are present, the returned store is empty.
func LoadFS(fsys fs.FS) (*Store, error) {
	store := &Store{schemas: make(map[string]UISchema)}
	if fsys == nil {
		return store, nil
	}

	err := fs.WalkDir(fsys, ".", func(filePath string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() || !isSchemaFile(filePath) {
			return nil
		}

		data, err := fs.ReadFile(fsys, filePath)
		if err != nil {
			return fmt.Errorf("uischema: read %s: %w", filePath, err)
		}
		ui, err := Parse(data, filePath)
		if err != nil {
			return err
		}

		name := schemaName(filePath)
		if _, exists := store.schemas[name]; exists {
			return fmt.Errorf("uischema: duplicate schema %q (file %s)", name, filePath)
		}
		store.schemas[name] = ui
		return nil
	})
	if err != nil {
		return nil, err
	}
	return store, nil
}

// Get returns the UI schema registered under name.
func (s *Store) Get(name string) (UISchema, bool) {
	if s == nil {
		return nil, false
	}
	ui, ok := s.schemas[strings.TrimSpace(name)]
	return ui, ok
}

// Names lists stored schema names in sorted order.
func (s *Store) Names() []string {
	if s == nil {
		return nil
	}
	names := make([]string, 0, len(s.schemas))
	for name := range s.schemas {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Empty reports whether the store holds any schemas.
func (s *Store) Empty() bool {
	return s == nil || len(s.schemas) == 0
}

// Parse decodes a UI schema from JSON or YAML and validates its structure.
// Either a bare node list or an object with a `uiSchema` key is accepted.
func Parse(data []byte, source string) (UISchema, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, fmt.Errorf("uischema: file %s is empty", source)
	}

	ui, err := decode(data)
	if err != nil {
		return nil, fmt.Errorf("uischema: parse %s: %w", source, err)
	}
	if err := Validate(ui); err != nil {
		return nil, fmt.Errorf("uischema: %s: %w", source, err)
	}
	return ui, nil
}

type wrappedDocument struct {
	UISchema UISchema `json:"uiSchema" yaml:"uiSchema"`
}

func decode(data []byte) (UISchema, error) {
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "[") || strings.HasPrefix(trimmed, "{") {
		var ui UISchema
		if err := json.Unmarshal(data, &ui); err == nil {
			return ui, nil
		}
		var doc wrappedDocument
		if err := json.Unmarshal(data, &doc); err == nil && doc.UISchema != nil {
			return doc.UISchema, nil
		}
	}

	var ui UISchema
	if err := yaml.Unmarshal(data, &ui); err == nil {
		return ui, nil
	}
	var doc wrappedDocument
	if err := yaml.Unmarshal(data, &doc); err == nil && doc.UISchema != nil {
		return doc.UISchema, nil
	}
	return nil, fmt.Errorf("invalid JSON or YAML")
}

func isSchemaFile(filePath string) bool {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".json", ".yaml", ".yml":
		return true
	default:
		return false
	}
}

func schemaName(filePath string) string {
	base := path.Base(filepath.ToSlash(filePath))
	return strings.TrimSuffix(base, path.Ext(base))
}
