package formtree

import (
	"github.com/goliatone/go-applyform/pkg/model"
	"github.com/goliatone/go-applyform/pkg/uischema"
)

// SectionAnchorPrefix prefixes the id of every rendered section.
const SectionAnchorPrefix = "form-section-"

// NavItems lists the "sections in this form" links in UI schema order.
func NavItems(ui uischema.UISchema) []model.NavItem {
	results := []model.NavItem{}
	for _, node := range ui {
		if node.Type != uischema.NodeSection && len(node.Children) == 0 {
			continue
		}
		if node.Name != "" && node.Label != "" {
			results = append(results, model.NavItem{Href: SectionAnchorPrefix + node.Name, Text: node.Label})
		}
		if len(node.Children) > 0 && allLabelled(node.Children) {
			results = append(results, NavItems(node.Children)...)
		}
	}
	return results
}

func allLabelled(nodes []uischema.Node) bool {
	for _, node := range nodes {
		if node.Label == "" || node.Name == "" {
			return false
		}
	}
	return true
}

// ToPrint switches a widget tree to its read-only variants. Attachment
// widgets become PrintAttachment, budget tables stay but are marked
// read-only, everything else becomes Print. The input is not modified.
func ToPrint(widgets []model.Widget) []model.Widget {
	out := make([]model.Widget, len(widgets))
	for idx, widget := range widgets {
		switch {
		case widget.Type == model.WidgetFieldset:
			widget.Children = ToPrint(widget.Children)
		case widget.Type.IsBudget():
			widget.ReadOnly = true
		case widget.Type == model.WidgetAttachment || widget.Type == model.WidgetAttachmentArray:
			widget.Type = model.WidgetPrintAttachment
		case widget.Type == model.WidgetPrintAttachment:
		default:
			widget.Type = model.WidgetPrint
		}
		out[idx] = widget
	}
	return out
}
