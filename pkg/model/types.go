package model

// WidgetType names a renderer registered in the widget registry.
type WidgetType string

const (
	WidgetText            WidgetType = "Text"
	WidgetTextArea        WidgetType = "TextArea"
	WidgetSelect          WidgetType = "Select"
	WidgetMultiSelect     WidgetType = "MultiSelect"
	WidgetRadio           WidgetType = "Radio"
	WidgetCheckbox        WidgetType = "Checkbox"
	WidgetAttachment      WidgetType = "Attachment"
	WidgetAttachmentArray WidgetType = "AttachmentArray"
	WidgetPrint           WidgetType = "Print"
	WidgetPrintAttachment WidgetType = "PrintAttachment"
	WidgetFieldset        WidgetType = "Fieldset"

	WidgetBudgetSectionA WidgetType = "Budget424aSectionA"
	WidgetBudgetSectionB WidgetType = "Budget424aSectionB"
	WidgetBudgetSectionC WidgetType = "Budget424aSectionC"
	WidgetBudgetSectionD WidgetType = "Budget424aSectionD"
	WidgetBudgetSectionE WidgetType = "Budget424aSectionE"
	WidgetBudgetSectionF WidgetType = "Budget424aSectionF"
)

// BudgetWidgetTypes lists the SF-424A section widgets in form order.
var BudgetWidgetTypes = []WidgetType{
	WidgetBudgetSectionA,
	WidgetBudgetSectionB,
	WidgetBudgetSectionC,
	WidgetBudgetSectionD,
	WidgetBudgetSectionE,
	WidgetBudgetSectionF,
}

// IsBudget reports whether t is one of the SF-424A section widgets.
func (t WidgetType) IsBudget() bool {
	for _, candidate := range BudgetWidgetTypes {
		if t == candidate {
			return true
		}
	}
	return false
}

// IsAttachment reports whether t binds attachment ids.
func (t WidgetType) IsAttachment() bool {
	return t == WidgetAttachment || t == WidgetAttachmentArray || t == WidgetPrintAttachment
}

// EnumOption is one selectable value.
type EnumOption struct {
	Value any    `json:"value"`
	Label string `json:"label"`
}

// Options carries choice lists for Select, MultiSelect and Radio widgets.
type Options struct {
	EnumOptions []EnumOption `json:"enumOptions,omitempty"`
	EmptyValue  string       `json:"emptyValue,omitempty"`
}

// FormValidationWarning is a validation message reported by the backend.
// Field is a JSON path such as `$.activity_line_items[0].activity_title`.
type FormValidationWarning struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Type    string `json:"type"`
	Value   any    `json:"value,omitempty"`
}

// MappedWarning is a warning localised to the widget it belongs to.
type MappedWarning struct {
	Field      string `json:"field"`
	Message    string `json:"message"`
	Type       string `json:"type"`
	Value      any    `json:"value,omitempty"`
	Formatted  string `json:"formatted,omitempty"`
	HTMLField  string `json:"htmlField,omitempty"`
	Definition string `json:"definition,omitempty"`
}

// Text returns the formatted message, falling back to the raw one.
func (w MappedWarning) Text() string {
	if w.Formatted != "" {
		return w.Formatted
	}
	return w.Message
}

// NavItem links to a section anchor.
type NavItem struct {
	Href string `json:"href"`
	Text string `json:"text"`
}

// Widget is a fully resolved node of the form tree. Fieldset widgets carry
// their children; every other widget is a leaf.
type Widget struct {
	ID          string                  `json:"id"`
	Name        string                  `json:"name"`
	Type        WidgetType              `json:"type"`
	Label       string                  `json:"label,omitempty"`
	Description string                  `json:"description,omitempty"`
	Value       any                     `json:"value,omitempty"`
	Required    bool                    `json:"required,omitempty"`
	Disabled    bool                    `json:"disabled,omitempty"`
	ReadOnly    bool                    `json:"readOnly,omitempty"`
	RawErrors   []string                `json:"rawErrors,omitempty"`
	Warnings    []FormValidationWarning `json:"warnings,omitempty"`
	Schema      map[string]any          `json:"schema,omitempty"`
	Options     Options                 `json:"options,omitempty"`
	MinLength   *int                    `json:"minLength,omitempty"`
	MaxLength   *int                    `json:"maxLength,omitempty"`
	Definition  []string                `json:"definition,omitempty"`
	Children    []Widget                `json:"children,omitempty"`
	FormData    map[string]any          `json:"-"`
}

// Walk visits w and every descendant depth first.
func (w *Widget) Walk(fn func(*Widget)) {
	if w == nil || fn == nil {
		return
	}
	fn(w)
	for idx := range w.Children {
		w.Children[idx].Walk(fn)
	}
}

// Form is the resolved form handed to renderers.
type Form struct {
	ID       string          `json:"id,omitempty"`
	Title    string          `json:"title,omitempty"`
	Widgets  []Widget        `json:"widgets"`
	Nav      []NavItem       `json:"nav,omitempty"`
	Warnings []MappedWarning `json:"warnings,omitempty"`
	Print    bool            `json:"print,omitempty"`
}
