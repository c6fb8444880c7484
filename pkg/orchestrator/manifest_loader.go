package orchestrator

import (
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	theme "github.com/goliatone/go-theme"
	"gopkg.in/yaml.v3"
)

type manifestFile struct {
	Name      string                 `yaml:"name"`
	Version   string                 `yaml:"version"`
	Tokens    map[string]string      `yaml:"tokens"`
	Templates map[string]string      `yaml:"templates"`
	Assets    assetsFile             `yaml:"assets"`
	Variants  map[string]variantFile `yaml:"variants"`
}

type assetsFile struct {
	Prefix string            `yaml:"prefix"`
	Files  map[string]string `yaml:"files"`
}

type variantFile struct {
	Tokens    map[string]string `yaml:"tokens"`
	Templates map[string]string `yaml:"templates"`
	Assets    assetsFile        `yaml:"assets"`
}

// LoadManifests reads every `*.yaml` / `*.yml` file at the root of fsys as a
// theme manifest, in file name order. A manifest without a name takes its
// file name.
func LoadManifests(fsys fs.FS) ([]*theme.Manifest, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("orchestrator: list theme manifests: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	var out []*theme.Manifest
	for _, entry := range entries {
		ext := path.Ext(entry.Name())
		if entry.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		data, err := fs.ReadFile(fsys, entry.Name())
		if err != nil {
			return nil, fmt.Errorf("orchestrator: read theme manifest %s: %w", entry.Name(), err)
		}
		var file manifestFile
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("orchestrator: decode theme manifest %s: %w", entry.Name(), err)
		}
		if strings.TrimSpace(file.Name) == "" {
			file.Name = strings.TrimSuffix(entry.Name(), ext)
		}
		out = append(out, file.manifest())
	}
	return out, nil
}

func (f manifestFile) manifest() *theme.Manifest {
	m := &theme.Manifest{
		Name:      f.Name,
		Version:   f.Version,
		Tokens:    f.Tokens,
		Templates: f.Templates,
		Assets:    theme.Assets{Prefix: f.Assets.Prefix, Files: f.Assets.Files},
	}
	if len(f.Variants) > 0 {
		m.Variants = make(map[string]theme.Variant, len(f.Variants))
		for name, v := range f.Variants {
			m.Variants[name] = theme.Variant{
				Tokens:    v.Tokens,
				Templates: v.Templates,
				Assets:    theme.Assets{Prefix: v.Assets.Prefix, Files: v.Assets.Files},
			}
		}
	}
	return m
}
