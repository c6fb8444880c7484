package formtree

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-applyform/pkg/model"
	"github.com/goliatone/go-applyform/pkg/uischema"
)

func TestNavItems(t *testing.T) {
	ui := uischema.UISchema{
		field("/properties/title"),
		{Type: uischema.NodeSection, Name: "applicant", Label: "Applicant", Children: []uischema.Node{field("/properties/applicant/properties/first_name")}},
		{Type: uischema.NodeSection, Name: "budget", Label: "Budget", Children: []uischema.Node{field("/properties/title")}},
		{Type: uischema.NodeSection, Name: "unlabelled", Children: []uischema.Node{field("/properties/title")}},
	}
	want := []model.NavItem{
		{Href: "form-section-applicant", Text: "Applicant"},
		{Href: "form-section-budget", Text: "Budget"},
	}
	if diff := cmp.Diff(want, NavItems(ui)); diff != "" {
		t.Fatalf("nav mismatch (-want +got):\n%s", diff)
	}
	if got := NavItems(nil); got == nil || len(got) != 0 {
		t.Fatalf("expected empty nav list, got %#v", got)
	}
}

func TestToPrint(t *testing.T) {
	in := []model.Widget{
		{Name: "title", Type: model.WidgetText},
		{Name: "files", Type: model.WidgetAttachmentArray},
		{Name: "section", Type: model.WidgetFieldset, Children: []model.Widget{
			{Name: "upload", Type: model.WidgetAttachment},
			{Name: "agree", Type: model.WidgetCheckbox},
		}},
		{Name: "budget", Type: model.WidgetBudgetSectionB},
	}

	got := ToPrint(in)

	var types []model.WidgetType
	for i := range got {
		got[i].Walk(func(w *model.Widget) { types = append(types, w.Type) })
	}
	want := []model.WidgetType{
		model.WidgetPrint,
		model.WidgetPrintAttachment,
		model.WidgetFieldset,
		model.WidgetPrintAttachment,
		model.WidgetPrint,
		model.WidgetBudgetSectionB,
	}
	if diff := cmp.Diff(want, types); diff != "" {
		t.Fatalf("print types mismatch (-want +got):\n%s", diff)
	}
	if !got[3].ReadOnly {
		t.Fatalf("budget tables should be read-only in print mode")
	}
	if in[0].Type != model.WidgetText || in[2].Children[0].Type != model.WidgetAttachment {
		t.Fatalf("input tree must not be modified")
	}
}
