package budget

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-applyform/pkg/model"
)

// Section identifies one of the six SF-424A tables.
type Section string

const (
	SectionA Section = "A"
	SectionB Section = "B"
	SectionC Section = "C"
	SectionD Section = "D"
	SectionE Section = "E"
	SectionF Section = "F"
)

// ActivityRows is the fixed number of activity line items on the form.
const ActivityRows = 4

// Group keys inside an activity line item and at the root of the response.
const (
	ActivityLineItems         = "activity_line_items"
	ActivityTitle             = "activity_title"
	AssistanceListingNumber   = "assistance_listing_number"
	GroupBudgetSummary        = "budget_summary"
	GroupBudgetCategories     = "budget_categories"
	GroupNonFederalResources  = "non_federal_resources"
	GroupFederalFundEstimates = "federal_fund_estimates"
	GroupForecastedCashNeeds  = "forecasted_cash_needs"

	TotalBudgetSummary        = "total_budget_summary"
	TotalBudgetCategories     = "total_budget_categories"
	TotalNonFederalResources  = "total_non_federal_resources"
	TotalFederalFundEstimates = "total_federal_fund_estimates"

	DirectChargesExplanation   = "direct_charges_explanation"
	IndirectChargesExplanation = "indirect_charges_explanation"
	Remarks                    = "remarks"

	TotalAmount = "total_amount"
)

// Column describes one money column of a table.
type Column struct {
	Key    string
	Label  string
	Letter string
}

// Row describes one labelled row of a table.
type Row struct {
	Key    string
	Label  string
	Number int
}

// SummaryColumns are the Section A amount columns in order (C..G).
var SummaryColumns = []Column{
	{Key: "federal_estimated_unobligated_amount", Label: "Estimated unobligated funds: Federal", Letter: "C"},
	{Key: "non_federal_estimated_unobligated_amount", Label: "Estimated unobligated funds: Non-Federal", Letter: "D"},
	{Key: "federal_new_or_revised_amount", Label: "New or revised budget: Federal", Letter: "E"},
	{Key: "non_federal_new_or_revised_amount", Label: "New or revised budget: Non-Federal", Letter: "F"},
	{Key: TotalAmount, Label: "Total", Letter: "G"},
}

// CategoryRows are the Section B object class categories (rows 6a..6k).
var CategoryRows = []Row{
	{Key: "personnel_amount", Label: "a. Personnel"},
	{Key: "fringe_benefits_amount", Label: "b. Fringe Benefits"},
	{Key: "travel_amount", Label: "c. Travel"},
	{Key: "equipment_amount", Label: "d. Equipment"},
	{Key: "supplies_amount", Label: "e. Supplies"},
	{Key: "contractual_amount", Label: "f. Contractual"},
	{Key: "construction_amount", Label: "g. Construction"},
	{Key: "other_amount", Label: "h. Other"},
	{Key: "total_direct_charge_amount", Label: "i. Total Direct Charges (sum of 6a-6h)"},
	{Key: "total_indirect_charge_amount", Label: "j. Indirect Charges"},
	{Key: TotalAmount, Label: "k. TOTALS (sum of 6i and 6j)"},
}

// ProgramIncomeKey is the Section B row 7 amount.
const ProgramIncomeKey = "program_income_amount"

// ResourceColumns are the Section C columns after the title (B..E).
var ResourceColumns = []Column{
	{Key: "applicant_amount", Label: "Applicant", Letter: "B"},
	{Key: "state_amount", Label: "State", Letter: "C"},
	{Key: "other_amount", Label: "Other sources", Letter: "D"},
	{Key: TotalAmount, Label: "Totals", Letter: "E"},
}

// CashNeedRows are the Section D rows 13..15.
var CashNeedRows = []Row{
	{Key: "federal_forecasted_cash_needs", Label: "Federal", Number: 13},
	{Key: "non_federal_forecasted_cash_needs", Label: "Non-federal", Number: 14},
	{Key: "total_forecasted_cash_needs", Label: "TOTAL", Number: 15},
}

// QuarterColumns are the Section D columns (A..E).
var QuarterColumns = []Column{
	{Key: "first_quarter_amount", Label: "1st Quarter", Letter: "A"},
	{Key: "second_quarter_amount", Label: "2nd Quarter", Letter: "B"},
	{Key: "third_quarter_amount", Label: "3rd Quarter", Letter: "C"},
	{Key: "fourth_quarter_amount", Label: "4th Quarter", Letter: "D"},
	{Key: TotalAmount, Label: "Total for 1st year", Letter: "E"},
}

// YearColumns are the Section E columns after the title (B..E).
var YearColumns = []Column{
	{Key: "first_year_amount", Label: "First year", Letter: "B"},
	{Key: "second_year_amount", Label: "Second year", Letter: "C"},
	{Key: "third_year_amount", Label: "Third year", Letter: "D"},
	{Key: "fourth_year_amount", Label: "Fourth year", Letter: "E"},
}

// ExplanationRows are the Section F text rows 21..23.
var ExplanationRows = []Row{
	{Key: DirectChargesExplanation, Label: "Direct Charges", Number: 21},
	{Key: IndirectChargesExplanation, Label: "Indirect Charges", Number: 22},
	{Key: Remarks, Label: "Remarks", Number: 23},
}

// SectionForWidget maps a budget widget type to its table.
func SectionForWidget(t model.WidgetType) (Section, bool) {
	switch t {
	case model.WidgetBudgetSectionA:
		return SectionA, true
	case model.WidgetBudgetSectionB:
		return SectionB, true
	case model.WidgetBudgetSectionC:
		return SectionC, true
	case model.WidgetBudgetSectionD:
		return SectionD, true
	case model.WidgetBudgetSectionE:
		return SectionE, true
	case model.WidgetBudgetSectionF:
		return SectionF, true
	default:
		return "", false
	}
}

// CellName builds the HTML input name of an activity cell, for example
// `activity_line_items[2]--budget_categories--travel_amount`. An empty group
// addresses a key directly on the activity (title, listing number).
func CellName(activity int, group, key string) string {
	parts := []string{fmt.Sprintf("%s[%d]", ActivityLineItems, activity)}
	if group != "" {
		parts = append(parts, group)
	}
	parts = append(parts, key)
	return strings.Join(parts, "--")
}

// TotalName builds the HTML input name of a root-level total cell.
func TotalName(group, key string) string {
	return group + "--" + key
}
