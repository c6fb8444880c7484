package widgets

import (
	"fmt"
	"strings"

	"github.com/spf13/cast"

	"github.com/goliatone/go-applyform/pkg/model"
)

// PreviouslyUploaded labels attachment ids missing from the attachment list.
const PreviouslyUploaded = "(Previously uploaded file)"

// Props is the template view of a widget. Every field template receives the
// same shape under the `widget` key.
type Props struct {
	ID              string        `json:"id"`
	Name            string        `json:"name"`
	Type            string        `json:"type"`
	Label           string        `json:"label"`
	DescriptionHTML string        `json:"description_html,omitempty"`
	Value           string        `json:"value"`
	Values          []string      `json:"values,omitempty"`
	Checked         bool          `json:"checked,omitempty"`
	Required        bool          `json:"required,omitempty"`
	Disabled        bool          `json:"disabled,omitempty"`
	ReadOnly        bool          `json:"readonly,omitempty"`
	Controlled      bool          `json:"controlled,omitempty"`
	RawErrors       []string      `json:"raw_errors,omitempty"`
	HintID          string        `json:"hint_id,omitempty"`
	ErrorID         string        `json:"error_id,omitempty"`
	DescribedBy     []string      `json:"described_by,omitempty"`
	Options         []OptionProps `json:"options,omitempty"`
	EmptyValue      string        `json:"empty_value,omitempty"`
	MinLength       *int          `json:"min_length,omitempty"`
	MaxLength       *int          `json:"max_length,omitempty"`
	Attachments     []FileProps   `json:"attachments,omitempty"`
	Display         string        `json:"display,omitempty"`
	ChildrenHTML    string        `json:"children_html,omitempty"`
}

// OptionProps is one choice of a select, radio or multi-select widget.
type OptionProps struct {
	Value    string `json:"value"`
	Label    string `json:"label"`
	Selected bool   `json:"selected,omitempty"`
}

// FileProps is one bound attachment.
type FileProps struct {
	ID       string `json:"id"`
	FileName string `json:"file_name"`
}

// BuildProps derives the template view of w.
func BuildProps(w model.Widget, data ComponentData) Props {
	props := Props{
		ID:              w.ID,
		Name:            w.Name,
		Type:            string(w.Type),
		Label:           w.Label,
		DescriptionHTML: SanitizeDescription(w.Description),
		Required:        w.Required,
		Disabled:        w.Disabled,
		ReadOnly:        w.ReadOnly,
		Controlled:      data.UpdateOnInput,
		RawErrors:       w.RawErrors,
		EmptyValue:      w.Options.EmptyValue,
		MinLength:       w.MinLength,
		MaxLength:       w.MaxLength,
	}
	if props.ID == "" {
		props.ID = w.Name
	}
	if props.Label == "" {
		if title, ok := w.Schema["title"].(string); ok {
			props.Label = title
		}
	}
	if props.DescriptionHTML == "" {
		if desc, ok := w.Schema["description"].(string); ok {
			props.DescriptionHTML = SanitizeDescription(desc)
		}
	}

	if props.DescriptionHTML != "" {
		props.HintID = props.ID + "-hint"
		props.DescribedBy = append(props.DescribedBy, props.HintID)
	}
	if len(props.RawErrors) > 0 {
		props.ErrorID = props.ID + "-error"
		props.DescribedBy = append(props.DescribedBy, props.ErrorID)
	}

	props.Value = scalarString(w.Value)
	props.Values = stringList(w.Value)
	props.Checked = truthy(w.Value)

	selected := make(map[string]struct{}, len(props.Values))
	for _, value := range props.Values {
		selected[value] = struct{}{}
	}
	for _, opt := range w.Options.EnumOptions {
		value := scalarString(opt.Value)
		_, isSelected := selected[value]
		props.Options = append(props.Options, OptionProps{
			Value:    value,
			Label:    opt.Label,
			Selected: isSelected || (props.Value != "" && props.Value == value),
		})
	}

	if w.Type.IsAttachment() {
		for _, id := range props.Values {
			props.Attachments = append(props.Attachments, FileProps{ID: id, FileName: fileName(data.Attachments, id)})
		}
	}
	props.Display = displayValue(w, props)
	return props
}

func fileName(lookup AttachmentLookup, id string) string {
	if lookup != nil {
		if name, ok := lookup.FileName(id); ok {
			return name
		}
	}
	return PreviouslyUploaded
}

// displayValue is the read-only text shown by print widgets.
func displayValue(w model.Widget, props Props) string {
	if len(props.Attachments) > 0 {
		names := make([]string, len(props.Attachments))
		for idx, file := range props.Attachments {
			names[idx] = file.FileName
		}
		return strings.Join(names, ", ")
	}
	if b, ok := w.Value.(bool); ok {
		if b {
			return "Yes"
		}
		return "No"
	}

	labels := map[string]string{}
	for _, opt := range props.Options {
		labels[opt.Value] = opt.Label
	}
	parts := make([]string, 0, len(props.Values))
	for _, value := range props.Values {
		if label, ok := labels[value]; ok {
			parts = append(parts, label)
			continue
		}
		parts = append(parts, value)
	}
	return strings.Join(parts, ", ")
}

func scalarString(value any) string {
	switch typed := value.(type) {
	case nil:
		return ""
	case []any, map[string]any:
		return ""
	case string:
		return typed
	}
	text, err := cast.ToStringE(value)
	if err != nil {
		return fmt.Sprint(value)
	}
	return text
}

func stringList(value any) []string {
	switch typed := value.(type) {
	case nil:
		return nil
	case []any:
		out := make([]string, 0, len(typed))
		for _, item := range typed {
			if text := scalarString(item); text != "" {
				out = append(out, text)
			}
		}
		return out
	case []string:
		return append([]string(nil), typed...)
	case map[string]any:
		return nil
	}
	if text := scalarString(value); text != "" {
		return []string{text}
	}
	return nil
}

func truthy(value any) bool {
	b, err := cast.ToBoolE(value)
	return err == nil && b
}
