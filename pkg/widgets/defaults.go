package widgets

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"strings"

	"github.com/goliatone/go-applyform/pkg/budget"
	"github.com/goliatone/go-applyform/pkg/model"
)

//go:embed templates/widgets/*.tmpl
var embeddedTemplates embed.FS

// TemplateExtension is the suffix of every widget template.
const TemplateExtension = ".tmpl"

const templatePrefix = "widgets/"

// TemplatesFS exposes the embedded widget templates. Template names are
// relative to its root, e.g. `widgets/text`.
func TemplatesFS() fs.FS {
	sub, err := fs.Sub(embeddedTemplates, "templates")
	if err != nil {
		return embeddedTemplates
	}
	return sub
}

// NewDefaultRegistry registers a renderer for every widget type.
func NewDefaultRegistry() *Registry {
	registry := New()

	fields := map[model.WidgetType]string{
		model.WidgetText:            "text",
		model.WidgetTextArea:        "textarea",
		model.WidgetSelect:          "select",
		model.WidgetMultiSelect:     "multiselect",
		model.WidgetRadio:           "radio",
		model.WidgetCheckbox:        "checkbox",
		model.WidgetAttachment:      "attachment",
		model.WidgetAttachmentArray: "attachment_array",
		model.WidgetPrint:           "print",
		model.WidgetPrintAttachment: "print_attachment",
	}
	for widget, name := range fields {
		registry.MustRegister(widget, Descriptor{
			Renderer: templateRenderer("widgets."+name, templatePrefix+name),
		})
	}

	registry.MustRegister(model.WidgetFieldset, Descriptor{
		Renderer: fieldsetRenderer,
	})

	for _, widget := range model.BudgetWidgetTypes {
		section, _ := budget.SectionForWidget(widget)
		registry.MustRegister(widget, Descriptor{
			Renderer: budgetRenderer(section),
		})
	}
	return registry
}

func resolveTemplate(data ComponentData, partialKey, templateName string) string {
	if data.Partials != nil {
		if candidate := strings.TrimSpace(data.Partials[partialKey]); candidate != "" {
			return candidate
		}
	}
	return templateName
}

func templateRenderer(partialKey, templateName string) Renderer {
	return func(buf *bytes.Buffer, widget model.Widget, data ComponentData) error {
		if data.Template == nil {
			return fmt.Errorf("widgets: template renderer not configured for %q", templateName)
		}

		payload := map[string]any{
			"widget": BuildProps(widget, data),
			"config": data.Config,
		}
		resolved := resolveTemplate(data, partialKey, templateName)
		rendered, err := data.Template.RenderTemplate(resolved, payload)
		if err != nil {
			return fmt.Errorf("widgets: render template %q: %w", resolved, err)
		}
		buf.WriteString(rendered)
		return nil
	}
}

func fieldsetRenderer(buf *bytes.Buffer, widget model.Widget, data ComponentData) error {
	if data.Template == nil {
		return fmt.Errorf("widgets: template renderer not configured for fieldset")
	}
	if data.RenderChild == nil {
		return fmt.Errorf("widgets: fieldset %q requires a child renderer", widget.Name)
	}

	var children strings.Builder
	for _, child := range widget.Children {
		rendered, err := data.RenderChild(child)
		if err != nil {
			return err
		}
		children.WriteString(rendered)
	}

	props := BuildProps(widget, data)
	props.ChildrenHTML = children.String()
	resolved := resolveTemplate(data, "widgets.fieldset", templatePrefix+"fieldset")
	rendered, err := data.Template.RenderTemplate(resolved, map[string]any{
		"widget": props,
		"config": data.Config,
	})
	if err != nil {
		return fmt.Errorf("widgets: render template %q: %w", resolved, err)
	}
	buf.WriteString(rendered)
	return nil
}

func budgetRenderer(section budget.Section) Renderer {
	return func(buf *bytes.Buffer, widget model.Widget, data ComponentData) error {
		if data.Template == nil {
			return fmt.Errorf("widgets: template renderer not configured for budget section %s", section)
		}
		resolved := resolveTemplate(data, "widgets.budget", templatePrefix+"budget_table")
		rendered, err := data.Template.RenderTemplate(resolved, map[string]any{
			"table":  BuildBudgetTable(section, widget),
			"config": data.Config,
		})
		if err != nil {
			return fmt.Errorf("widgets: render budget section %s: %w", section, err)
		}
		buf.WriteString(rendered)
		return nil
	}
}
