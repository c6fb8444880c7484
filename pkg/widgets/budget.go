package widgets

import (
	"fmt"
	"strconv"

	"github.com/goliatone/go-applyform/pkg/budget"
	"github.com/goliatone/go-applyform/pkg/model"
)

// Cell kinds understood by the budget table template.
const (
	CellCurrency = "currency"
	CellText     = "text"
	CellDisplay  = "display"
)

// Currency input constraints shared by every money cell.
const (
	CurrencyPattern   = `-?[0-9]*[.,]?[0-9]{0,2}`
	CurrencyMaxLength = 14
)

// BudgetTable is the template view of one SF-424A section.
type BudgetTable struct {
	ID       string       `json:"id"`
	Section  string       `json:"section"`
	Caption  string       `json:"caption"`
	Label    string       `json:"label,omitempty"`
	Headers  []BudgetHead `json:"headers"`
	Rows     []BudgetRow  `json:"rows"`
	ReadOnly bool         `json:"readonly,omitempty"`
	Errors   []string     `json:"errors,omitempty"`
	Config   BudgetConfig `json:"config"`
}

// BudgetConfig carries the currency input attributes.
type BudgetConfig struct {
	Pattern   string `json:"pattern"`
	MaxLength int    `json:"max_length"`
}

// BudgetHead is one column header.
type BudgetHead struct {
	Label  string `json:"label"`
	Letter string `json:"letter,omitempty"`
}

// BudgetRow is one table row; Total rows are rendered emphasised.
type BudgetRow struct {
	Number string       `json:"number,omitempty"`
	Label  string       `json:"label"`
	Total  bool         `json:"total,omitempty"`
	Cells  []BudgetCell `json:"cells"`
}

// BudgetCell is a single input or display cell.
type BudgetCell struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Value     string   `json:"value"`
	Kind      string   `json:"kind"`
	ReadOnly  bool     `json:"readonly,omitempty"`
	Helper    string   `json:"helper,omitempty"`
	MaxLength int      `json:"max_length,omitempty"`
	Errors    []string `json:"errors,omitempty"`
	ErrorID   string   `json:"error_id,omitempty"`
}

type tableBuilder struct {
	section  budget.Section
	values   budget.Values
	warnings []model.FormValidationWarning
	readOnly bool
}

func (b tableBuilder) cell(name, kind string, readOnly bool) BudgetCell {
	cell := BudgetCell{
		ID:       name,
		Name:     name,
		Value:    b.values.String(name),
		Kind:     kind,
		ReadOnly: readOnly || b.readOnly,
	}
	if kind == CellCurrency {
		cell.MaxLength = CurrencyMaxLength
	}
	if errs := budget.ErrorLabels(b.section, name, b.warnings); len(errs) > 0 {
		cell.Errors = errs
		cell.ErrorID = name + "-error"
	}
	return cell
}

func (b tableBuilder) display(name string) BudgetCell {
	return BudgetCell{ID: name, Name: name, Value: b.values.String(name), Kind: CellDisplay, ReadOnly: true}
}

// BuildBudgetTable assembles the view of the section rendered by w.
func BuildBudgetTable(section budget.Section, w model.Widget) BudgetTable {
	b := tableBuilder{
		section:  section,
		values:   budget.Normalize(w.Value, w.FormData),
		warnings: w.Warnings,
		readOnly: w.ReadOnly,
	}
	table := BudgetTable{
		ID:       w.ID,
		Section:  string(section),
		Label:    w.Label,
		ReadOnly: w.ReadOnly,
		Errors:   w.RawErrors,
		Config:   BudgetConfig{Pattern: CurrencyPattern, MaxLength: CurrencyMaxLength},
	}
	if table.ID == "" {
		table.ID = w.Name
	}

	switch section {
	case budget.SectionA:
		table.Caption = "Section A - Budget Summary"
		sectionA(b, &table)
	case budget.SectionB:
		table.Caption = "Section B - Budget Categories"
		sectionB(b, &table)
	case budget.SectionC:
		table.Caption = "Section C - Non-Federal Resources"
		sectionC(b, &table)
	case budget.SectionD:
		table.Caption = "Section D - Forecasted Cash Needs"
		sectionD(b, &table)
	case budget.SectionE:
		table.Caption = "Section E - Budget Estimates of Federal Funds Needed for Balance of the Project"
		sectionE(b, &table)
	case budget.SectionF:
		table.Caption = "Section F - Other Budget Information"
		sectionF(b, &table)
	}
	return table
}

func sectionA(b tableBuilder, table *BudgetTable) {
	table.Headers = []BudgetHead{
		{Label: "Grant program function or activity", Letter: "A"},
		{Label: "Assistance Listing Number", Letter: "B"},
	}
	for _, col := range budget.SummaryColumns {
		table.Headers = append(table.Headers, BudgetHead{Label: col.Label, Letter: col.Letter})
	}

	for idx := 0; idx < budget.ActivityRows; idx++ {
		row := BudgetRow{Number: strconv.Itoa(idx + 1), Label: fmt.Sprintf("Activity %d", idx+1)}
		title := b.cell(budget.CellName(idx, "", budget.ActivityTitle), CellText, false)
		title.MaxLength = 120
		listing := b.cell(budget.CellName(idx, "", budget.AssistanceListingNumber), CellText, false)
		listing.MaxLength = 15
		row.Cells = append(row.Cells, title, listing)
		for _, col := range budget.SummaryColumns {
			isTotal := col.Key == budget.TotalAmount
			cell := b.cell(budget.CellName(idx, budget.GroupBudgetSummary, col.Key), CellCurrency, isTotal)
			if isTotal {
				cell.Helper = fmt.Sprintf("Sum of row %d", idx+1)
			}
			row.Cells = append(row.Cells, cell)
		}
		table.Rows = append(table.Rows, row)
	}

	totals := BudgetRow{Number: "5", Label: "Total (sum of 1-4)", Total: true}
	totals.Cells = append(totals.Cells, BudgetCell{Kind: CellDisplay, ReadOnly: true}, BudgetCell{Kind: CellDisplay, ReadOnly: true})
	for _, col := range budget.SummaryColumns {
		cell := b.cell(budget.TotalName(budget.TotalBudgetSummary, col.Key), CellCurrency, true)
		cell.Helper = "Sum of column " + col.Letter
		totals.Cells = append(totals.Cells, cell)
	}
	table.Rows = append(table.Rows, totals)
}

func sectionB(b tableBuilder, table *BudgetTable) {
	activities := b.values.Activities()
	table.Headers = []BudgetHead{{Label: "Object class categories"}}
	for idx := 0; idx < budget.ActivityRows; idx++ {
		title, _ := activities[idx][budget.ActivityTitle].(string)
		if title == "" {
			title = "—"
		}
		table.Headers = append(table.Headers, BudgetHead{Label: title, Letter: strconv.Itoa(idx + 1)})
	}
	table.Headers = append(table.Headers, BudgetHead{Label: "Total", Letter: "5"})

	computed := map[string]bool{"total_direct_charge_amount": true, budget.TotalAmount: true}
	for _, category := range budget.CategoryRows {
		row := BudgetRow{Number: "6", Label: category.Label, Total: computed[category.Key]}
		for idx := 0; idx < budget.ActivityRows; idx++ {
			row.Cells = append(row.Cells, b.cell(budget.CellName(idx, budget.GroupBudgetCategories, category.Key), CellCurrency, computed[category.Key]))
		}
		row.Cells = append(row.Cells, b.cell(budget.TotalName(budget.TotalBudgetCategories, category.Key), CellCurrency, true))
		table.Rows = append(table.Rows, row)
	}

	income := BudgetRow{Number: "7", Label: "Program Income"}
	for idx := 0; idx < budget.ActivityRows; idx++ {
		income.Cells = append(income.Cells, b.cell(budget.CellName(idx, budget.GroupBudgetCategories, budget.ProgramIncomeKey), CellCurrency, false))
	}
	income.Cells = append(income.Cells, b.cell(budget.TotalName(budget.TotalBudgetCategories, budget.ProgramIncomeKey), CellCurrency, true))
	table.Rows = append(table.Rows, income)
}

func sectionC(b tableBuilder, table *BudgetTable) {
	table.Headers = []BudgetHead{{Label: "Grant program", Letter: "A"}}
	for _, col := range budget.ResourceColumns {
		table.Headers = append(table.Headers, BudgetHead{Label: col.Label, Letter: col.Letter})
	}

	for idx := 0; idx < budget.ActivityRows; idx++ {
		row := BudgetRow{Number: strconv.Itoa(idx + 8)}
		row.Cells = append(row.Cells, b.display(budget.CellName(idx, "", budget.ActivityTitle)))
		for _, col := range budget.ResourceColumns {
			isTotal := col.Key == budget.TotalAmount
			cell := b.cell(budget.CellName(idx, budget.GroupNonFederalResources, col.Key), CellCurrency, isTotal)
			if isTotal {
				cell.Helper = fmt.Sprintf("Sum of row %d", idx+8)
			}
			row.Cells = append(row.Cells, cell)
		}
		table.Rows = append(table.Rows, row)
	}

	totals := BudgetRow{Number: "12", Label: "TOTAL (sum of lines 8-11)", Total: true}
	totals.Cells = append(totals.Cells, BudgetCell{Kind: CellDisplay, ReadOnly: true})
	for _, col := range budget.ResourceColumns {
		cell := b.cell(budget.TotalName(budget.TotalNonFederalResources, col.Key), CellCurrency, true)
		if col.Key == budget.TotalAmount {
			cell.Helper = "Sum of row 12"
		} else {
			cell.Helper = "Sum of column " + col.Letter
		}
		totals.Cells = append(totals.Cells, cell)
	}
	table.Rows = append(table.Rows, totals)
}

func sectionD(b tableBuilder, table *BudgetTable) {
	table.Headers = []BudgetHead{{Label: ""}}
	for _, col := range budget.QuarterColumns {
		table.Headers = append(table.Headers, BudgetHead{Label: col.Label, Letter: col.Letter})
	}

	for _, cashRow := range budget.CashNeedRows {
		isTotalRow := cashRow.Key == "total_forecasted_cash_needs"
		row := BudgetRow{Number: strconv.Itoa(cashRow.Number), Label: cashRow.Label, Total: isTotalRow}
		for _, col := range budget.QuarterColumns {
			name := budget.TotalName(budget.GroupForecastedCashNeeds, cashRow.Key) + "--" + col.Key
			row.Cells = append(row.Cells, b.cell(name, CellCurrency, isTotalRow || col.Key == budget.TotalAmount))
		}
		table.Rows = append(table.Rows, row)
	}
}

func sectionE(b tableBuilder, table *BudgetTable) {
	table.Headers = []BudgetHead{{Label: "Grant program", Letter: "A"}}
	for _, col := range budget.YearColumns {
		table.Headers = append(table.Headers, BudgetHead{Label: col.Label, Letter: col.Letter})
	}

	for idx := 0; idx < budget.ActivityRows; idx++ {
		row := BudgetRow{Number: strconv.Itoa(idx + 16)}
		row.Cells = append(row.Cells, b.display(budget.CellName(idx, "", budget.ActivityTitle)))
		for _, col := range budget.YearColumns {
			row.Cells = append(row.Cells, b.cell(budget.CellName(idx, budget.GroupFederalFundEstimates, col.Key), CellCurrency, false))
		}
		table.Rows = append(table.Rows, row)
	}

	totals := BudgetRow{Number: "20", Label: "TOTAL (sum of lines 16-19)", Total: true}
	totals.Cells = append(totals.Cells, BudgetCell{Kind: CellDisplay, ReadOnly: true})
	for _, col := range budget.YearColumns {
		cell := b.cell(budget.TotalName(budget.TotalFederalFundEstimates, col.Key), CellCurrency, true)
		cell.Helper = "Sum of column " + col.Letter
		totals.Cells = append(totals.Cells, cell)
	}
	table.Rows = append(table.Rows, totals)
}

func sectionF(b tableBuilder, table *BudgetTable) {
	table.Headers = []BudgetHead{{Label: ""}, {Label: "Explanation", Letter: "A"}}
	limits := map[string]int{
		budget.DirectChargesExplanation:   50,
		budget.IndirectChargesExplanation: 50,
		budget.Remarks:                    250,
	}
	for _, explanation := range budget.ExplanationRows {
		cell := b.cell(explanation.Key, CellText, false)
		cell.MaxLength = limits[explanation.Key]
		table.Rows = append(table.Rows, BudgetRow{
			Number: strconv.Itoa(explanation.Number),
			Label:  explanation.Label,
			Cells:  []BudgetCell{cell},
		})
	}
}
