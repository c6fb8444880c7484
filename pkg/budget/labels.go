package budget

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/goliatone/go-applyform/pkg/formpath"
	"github.com/goliatone/go-applyform/pkg/model"
)

// RequiredMessage replaces coordinates when the activity list itself failed.
const RequiredMessage = "This field is required."

// LabelStyle selects how a row or column is written in an error label.
type LabelStyle string

const (
	LabelLetter LabelStyle = "letter"
	LabelNumber LabelStyle = "number"
)

// LabelOptions tunes ErrorLabels output.
type LabelOptions struct {
	ColumnStyle LabelStyle
	RowStyle    LabelStyle
}

// LabelOption mutates LabelOptions.
type LabelOption func(*LabelOptions)

// WithColumnStyle overrides the column label style.
func WithColumnStyle(style LabelStyle) LabelOption {
	return func(o *LabelOptions) {
		o.ColumnStyle = style
	}
}

// WithRowStyle overrides the row label style. Only Section B honours letters.
func WithRowStyle(style LabelStyle) LabelOption {
	return func(o *LabelOptions) {
		o.RowStyle = style
	}
}

// DefaultLabelOptions returns the label defaults for section. Section B
// numbers its activity columns; every other table uses column letters.
func DefaultLabelOptions(section Section) LabelOptions {
	opts := LabelOptions{
		ColumnStyle: LabelLetter,
		RowStyle:    LabelNumber,
	}
	if section == SectionB {
		opts.ColumnStyle = LabelNumber
	}
	return opts
}

var (
	containsFailure = regexp.MustCompile(`(?i)does not contain|minContains|items matching`)

	activityIndexRe = regexp.MustCompile(`activity_line_items\[(\d+)\]`)

	summaryFieldRe      = regexp.MustCompile(`--(?:budget_summary--)?([a-z_]+)$`)
	categoryFieldRe     = regexp.MustCompile(`activity_line_items\[(\d+)\]--budget_categories--([a-z_]+)$`)
	categoryTotalRe     = regexp.MustCompile(`^total_budget_categories--([a-z_]+)$`)
	activityTitleRe     = regexp.MustCompile(`--activity_title$`)
	resourceFieldRe     = regexp.MustCompile(`--non_federal_resources--([a-z_]+)$`)
	resourceTotalRe     = regexp.MustCompile(`^total_non_federal_resources--([a-z_]+)$`)
	cashNeedRowRe       = regexp.MustCompile(`^forecasted_cash_needs--([a-z_]+)--`)
	trailingKeyRe       = regexp.MustCompile(`--([a-z_]+)$`)
	fundEstimateFieldRe = regexp.MustCompile(`--federal_fund_estimates--([a-z_]+)$`)
	fundEstimateTotalRe = regexp.MustCompile(`^total_federal_fund_estimates--([a-z_]+)$`)
)

var (
	summaryColumnByKey = map[string]int{
		ActivityTitle:                              1,
		AssistanceListingNumber:                    2,
		"federal_estimated_unobligated_amount":     3,
		"non_federal_estimated_unobligated_amount": 4,
		"federal_new_or_revised_amount":            5,
		"non_federal_new_or_revised_amount":        6,
		TotalAmount:                                7,
	}
	resourceColumnByKey = map[string]int{
		"applicant_amount": 2,
		"state_amount":     3,
		"other_amount":     4,
	}
	resourceTotalColumnByKey = map[string]int{
		"applicant_amount": 2,
		"state_amount":     3,
		"other_amount":     4,
		TotalAmount:        5,
	}
	cashNeedRowByKey = map[string]int{
		"federal_forecasted_cash_needs":     13,
		"non_federal_forecasted_cash_needs": 14,
		"total_forecasted_cash_needs":       15,
	}
	quarterColumnByKey = map[string]int{
		"first_quarter_amount":  1,
		"second_quarter_amount": 2,
		"third_quarter_amount":  3,
		"fourth_quarter_amount": 4,
		TotalAmount:             5,
	}
	yearColumnByKey = map[string]int{
		"first_year_amount":  2,
		"second_year_amount": 3,
		"third_year_amount":  4,
		"fourth_year_amount": 5,
	}
	explanationRowByKey = map[string]int{
		DirectChargesExplanation:   21,
		IndirectChargesExplanation: 22,
		Remarks:                    23,
	}
	categoryIndexByKey = func() map[string]int {
		out := make(map[string]int, len(CategoryRows))
		for idx, row := range CategoryRows {
			out[row.Key] = idx
		}
		return out
	}()
)

// position is a parsed cell location. rowIndex is set for Section B only.
type position struct {
	row      int
	rowIndex int
	hasIndex bool
	column   int
}

// ErrorLabels returns the messages to show under the budget cell whose HTML
// name is id. Warnings addressed to the cell are summarised as
// `Row <r> Column <c>`; cells whose coordinates cannot be derived fall back to
// the raw warning messages. Warning fields may be JSON paths or HTML names.
func ErrorLabels(section Section, id string, warnings []model.FormValidationWarning, opts ...LabelOption) []string {
	options := DefaultLabelOptions(section)
	for _, opt := range opts {
		if opt != nil {
			opt(&options)
		}
	}

	fields := make([]string, len(warnings))
	for idx, warning := range warnings {
		fields[idx] = fieldName(warning.Field)
	}

	if section == SectionA && activityListRequired(id, warnings, fields) {
		return []string{RequiredMessage}
	}

	var matching []string
	for idx, warning := range warnings {
		if fields[idx] == id {
			matching = append(matching, warning.Message)
		}
	}
	if len(matching) == 0 {
		return []string{}
	}

	pos, ok := parsePosition(section, id)
	if !ok {
		return matching
	}

	column := strconv.Itoa(pos.column)
	if options.ColumnStyle == LabelLetter {
		column = ToColumnLetter(pos.column)
	}

	// Section B rows are always absolute (6 + category index); only the
	// letter style reads the index directly.
	row := strconv.Itoa(pos.row)
	if section == SectionB && pos.hasIndex && options.RowStyle == LabelLetter {
		row = rowLetter(pos.rowIndex)
	}

	return []string{fmt.Sprintf("Row %s Column %s", row, column)}
}

func activityListRequired(id string, warnings []model.FormValidationWarning, fields []string) bool {
	var containsErr, emptyErr bool
	for idx, warning := range warnings {
		if fields[idx] != ActivityLineItems {
			continue
		}
		if containsFailure.MatchString(warning.Message) {
			containsErr = true
		}
		if warning.Type == "minItems" {
			emptyErr = true
		}
	}

	firstTitle := CellName(0, "", ActivityTitle)
	switch {
	case containsErr && (id == firstTitle ||
		id == CellName(0, "", AssistanceListingNumber) ||
		id == CellName(0, GroupBudgetSummary, TotalAmount)):
		return true
	case emptyErr && id == firstTitle:
		return true
	}
	return false
}

func fieldName(field string) string {
	return formpath.JSONPathToHTMLName(field)
}

func parsePosition(section Section, id string) (position, bool) {
	switch section {
	case SectionA:
		return parseSectionA(id)
	case SectionB:
		return parseSectionB(id)
	case SectionC:
		return parseSectionC(id)
	case SectionD:
		return parseSectionD(id)
	case SectionE:
		return parseSectionE(id)
	case SectionF:
		return parseSectionF(id)
	default:
		return position{}, false
	}
}

func parseSectionA(id string) (position, bool) {
	activity, ok := matchIndex(activityIndexRe, id)
	if !ok {
		return position{}, false
	}
	column, ok := summaryColumnByKey[matchField(summaryFieldRe, id)]
	if !ok {
		return position{}, false
	}
	return position{row: activity + 1, column: column}, true
}

func parseSectionB(id string) (position, bool) {
	if match := categoryFieldRe.FindStringSubmatch(id); match != nil {
		activity, err := strconv.Atoi(match[1])
		if err != nil {
			return position{}, false
		}
		rowIndex, ok := categoryIndexByKey[match[2]]
		if !ok {
			return position{}, false
		}
		return position{row: 6 + rowIndex, rowIndex: rowIndex, hasIndex: true, column: activity + 1}, true
	}

	if key := matchField(categoryTotalRe, id); key != "" {
		rowIndex, ok := categoryIndexByKey[key]
		if !ok {
			return position{}, false
		}
		return position{row: 6 + rowIndex, rowIndex: rowIndex, hasIndex: true, column: 5}, true
	}
	return position{}, false
}

func parseSectionC(id string) (position, bool) {
	if activity, ok := matchIndex(activityIndexRe, id); ok {
		if activityTitleRe.MatchString(id) {
			return position{row: activity + 8, column: 1}, true
		}
		column, ok := resourceColumnByKey[matchField(resourceFieldRe, id)]
		if !ok {
			return position{}, false
		}
		return position{row: activity + 8, column: column}, true
	}

	if key := matchField(resourceTotalRe, id); key != "" {
		column, ok := resourceTotalColumnByKey[key]
		if !ok {
			return position{}, false
		}
		return position{row: 12, column: column}, true
	}
	return position{}, false
}

func parseSectionD(id string) (position, bool) {
	row, ok := cashNeedRowByKey[matchField(cashNeedRowRe, id)]
	if !ok {
		return position{}, false
	}
	column, ok := quarterColumnByKey[matchField(trailingKeyRe, id)]
	if !ok {
		return position{}, false
	}
	return position{row: row, column: column}, true
}

func parseSectionE(id string) (position, bool) {
	if activity, ok := matchIndex(activityIndexRe, id); ok {
		if activityTitleRe.MatchString(id) {
			return position{row: activity + 16, column: 1}, true
		}
		column, ok := yearColumnByKey[matchField(fundEstimateFieldRe, id)]
		if !ok {
			return position{}, false
		}
		return position{row: activity + 16, column: column}, true
	}

	if key := matchField(fundEstimateTotalRe, id); key != "" {
		column, ok := yearColumnByKey[key]
		if !ok {
			return position{}, false
		}
		return position{row: 20, column: column}, true
	}
	return position{}, false
}

func parseSectionF(id string) (position, bool) {
	row, ok := explanationRowByKey[id]
	if !ok {
		return position{}, false
	}
	return position{row: row, column: 1}, true
}

func matchIndex(re *regexp.Regexp, id string) (int, bool) {
	match := re.FindStringSubmatch(id)
	if match == nil {
		return 0, false
	}
	idx, err := strconv.Atoi(match[1])
	if err != nil {
		return 0, false
	}
	return idx, true
}

func matchField(re *regexp.Regexp, id string) string {
	match := re.FindStringSubmatch(id)
	if match == nil {
		return ""
	}
	return match[1]
}

// ToColumnLetter converts a 1-based column number to spreadsheet letters:
// 1 is A, 26 is Z, 27 is AA. Non-positive numbers yield "".
func ToColumnLetter(column int) string {
	var out []byte
	for n := column; n > 0; {
		n--
		out = append([]byte{byte('A' + n%26)}, out...)
		n /= 26
	}
	return string(out)
}

func rowLetter(index int) string {
	return string(rune('A' + index))
}
