package orchestrator

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-applyform/pkg/renderers/vanilla"
)

var (
	// ErrThemeNotFound is returned when no manifest matches the requested theme.
	ErrThemeNotFound = errors.New("orchestrator: theme not found")
	// ErrVariantNotFound is returned when the manifest has no such variant.
	ErrVariantNotFound = errors.New("orchestrator: theme variant not found")
)

// DefaultThemeName names the built-in USWDS manifest.
const DefaultThemeName = "uswds"

// DefaultAssetPrefix is where the server mounts the embedded stylesheet.
const DefaultAssetPrefix = "/assets/applyform"

// DefaultManifest returns the built-in theme. It carries the USWDS palette
// as tokens and points the form stylesheet at DefaultAssetPrefix.
func DefaultManifest() *theme.Manifest {
	return &theme.Manifest{
		Name:    DefaultThemeName,
		Version: "1.0.0",
		Tokens: map[string]string{
			"apply-form-primary": "#005ea2",
			"apply-form-error":   "#b50909",
			"apply-form-warning": "#ffbe2e",
			"apply-form-ink":     "#1b1b1b",
		},
		Assets: theme.Assets{
			Prefix: DefaultAssetPrefix,
			Files: map[string]string{
				vanilla.StylesheetAsset: vanilla.StylesheetName,
			},
		},
		Variants: map[string]theme.Variant{
			"high-contrast": {
				Tokens: map[string]string{
					"apply-form-primary": "#162e51",
					"apply-form-ink":     "#000000",
				},
			},
		},
	}
}

// ManifestSelector picks a theme from a fixed set of manifests. Empty names
// select the defaults it was built with.
type ManifestSelector struct {
	manifests      map[string]*theme.Manifest
	defaultTheme   string
	defaultVariant string
}

var _ theme.ThemeSelector = (*ManifestSelector)(nil)

// NewManifestSelector indexes manifests by name. The first manifest is the
// default when defaultTheme is empty.
func NewManifestSelector(defaultTheme, defaultVariant string, manifests ...*theme.Manifest) (*ManifestSelector, error) {
	selector := &ManifestSelector{
		manifests:      make(map[string]*theme.Manifest, len(manifests)),
		defaultTheme:   strings.TrimSpace(defaultTheme),
		defaultVariant: strings.TrimSpace(defaultVariant),
	}
	for _, manifest := range manifests {
		if manifest == nil || strings.TrimSpace(manifest.Name) == "" {
			return nil, errors.New("orchestrator: theme manifest requires a name")
		}
		if _, exists := selector.manifests[manifest.Name]; exists {
			return nil, fmt.Errorf("orchestrator: theme %q registered twice", manifest.Name)
		}
		selector.manifests[manifest.Name] = manifest
		if selector.defaultTheme == "" {
			selector.defaultTheme = manifest.Name
		}
	}
	return selector, nil
}

// Select resolves name and variant, falling back to the defaults.
func (s *ManifestSelector) Select(name, variant string, _ ...theme.QueryOption) (*theme.Selection, error) {
	if name = strings.TrimSpace(name); name == "" {
		name = s.defaultTheme
	}
	manifest, ok := s.manifests[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrThemeNotFound, name)
	}

	if variant = strings.TrimSpace(variant); variant == "" && name == s.defaultTheme {
		variant = s.defaultVariant
	}
	if variant != "" {
		if _, ok := manifest.Variants[variant]; !ok {
			return nil, fmt.Errorf("%w: %s/%s", ErrVariantNotFound, name, variant)
		}
	}
	return &theme.Selection{Theme: name, Variant: variant, Manifest: manifest}, nil
}

// Names lists the registered themes, sorted.
func (s *ManifestSelector) Names() []string {
	names := make([]string, 0, len(s.manifests))
	for name := range s.manifests {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// defaultThemeFallbacks maps every widget partial key to its embedded
// template so a theme only lists the partials it overrides.
func defaultThemeFallbacks() map[string]string {
	names := []string{
		"text", "textarea", "select", "multiselect", "radio", "checkbox",
		"attachment", "attachment_array", "print", "print_attachment", "fieldset",
	}
	out := make(map[string]string, len(names)+1)
	for _, name := range names {
		out["widgets."+name] = "widgets/" + name
	}
	out["widgets.budget"] = "widgets/budget_table"
	return out
}

// RendererConfigFromSelection flattens a selection into the renderer view:
// variant tokens override base tokens, every token becomes a `--token` CSS
// variable, template partials layer fallbacks < manifest < variant, and
// asset keys resolve against the manifest prefix.
func RendererConfigFromSelection(selection *theme.Selection, fallbacks map[string]string) *theme.RendererConfig {
	if selection == nil || selection.Manifest == nil {
		return nil
	}
	manifest := selection.Manifest
	variant, hasVariant := manifest.Variants[selection.Variant]

	tokens := mergeStrings(manifest.Tokens)
	partials := mergeStrings(fallbacks, manifest.Templates)
	files := mergeStrings(manifest.Assets.Files)
	prefix := manifest.Assets.Prefix
	if hasVariant {
		tokens = mergeStrings(tokens, variant.Tokens)
		partials = mergeStrings(partials, variant.Templates)
		files = mergeStrings(files, variant.Assets.Files)
		if variant.Assets.Prefix != "" {
			prefix = variant.Assets.Prefix
		}
	}

	cssVars := make(map[string]string, len(tokens))
	for key, value := range tokens {
		cssVars["--"+key] = value
	}

	return &theme.RendererConfig{
		Theme:    selection.Theme,
		Variant:  selection.Variant,
		Tokens:   tokens,
		CSSVars:  cssVars,
		Partials: partials,
		AssetURL: func(key string) string {
			file, ok := files[key]
			if !ok || file == "" {
				return ""
			}
			if strings.Contains(file, "://") || strings.HasPrefix(file, "/") {
				return file
			}
			return strings.TrimRight(prefix, "/") + "/" + file
		},
	}
}

func mergeStrings(layers ...map[string]string) map[string]string {
	out := make(map[string]string)
	for _, layer := range layers {
		for key, value := range layer {
			out[key] = value
		}
	}
	return out
}
