package render

import (
	"errors"
	"fmt"
	"strings"
)

// Translator resolves a message key for a locale.
type Translator interface {
	Translate(locale, key string, args ...any) (string, error)
}

// ErrMissingTranslator is reported when no translator is configured.
var ErrMissingTranslator = errors.New("render: translator not configured")

// Chrome message keys.
const (
	MsgErrorRenderingTitle = "form.error_rendering.title"
	MsgErrorRenderingBody  = "form.error_rendering.body"
	MsgWarningsTitle       = "form.warnings.title"
	MsgFormErrorTitle      = "form.error.title"
	MsgNavTitle            = "form.nav.title"
	MsgRequiredLegend      = "form.required_legend"
	MsgSave                = "form.save"
	MsgPrintTitle          = "form.print.title"
)

// DefaultMessages is the built-in English catalog.
var DefaultMessages = map[string]string{
	MsgErrorRenderingTitle: "Error rendering form",
	MsgErrorRenderingBody:  "This form could not be rendered. Please try again later.",
	MsgWarningsTitle:       "Your form has errors",
	MsgFormErrorTitle:      "Your changes could not be saved",
	MsgNavTitle:            "Sections in this form",
	MsgRequiredLegend:      "A red asterisk (*) indicates a required field.",
	MsgSave:                "Save",
	MsgPrintTitle:          "Print view",
}

// CatalogTranslator serves messages from a locale -> key -> text map.
type CatalogTranslator map[string]map[string]string

// Translate looks key up for locale, then for the locale's base language.
func (c CatalogTranslator) Translate(locale, key string, args ...any) (string, error) {
	for _, candidate := range []string{locale, baseLanguage(locale)} {
		if msg, ok := c[candidate][key]; ok {
			if len(args) > 0 {
				return fmt.Sprintf(msg, args...), nil
			}
			return msg, nil
		}
	}
	return "", fmt.Errorf("render: no %q translation for %q", locale, key)
}

func baseLanguage(locale string) string {
	if idx := strings.IndexAny(locale, "-_"); idx > 0 {
		return locale[:idx]
	}
	return locale
}

// Messages resolves every chrome key for locale, falling back to the
// English catalog.
func Messages(locale string, t Translator) map[string]string {
	out := make(map[string]string, len(DefaultMessages))
	for key, fallback := range DefaultMessages {
		out[key] = translate(locale, key, fallback, t)
	}
	return out
}

func translate(locale, key, fallback string, t Translator) string {
	if t == nil {
		return fallback
	}
	msg, err := t.Translate(locale, key)
	if err != nil || strings.TrimSpace(msg) == "" {
		return fallback
	}
	return msg
}
