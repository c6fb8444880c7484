package budget

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cast"
)

// ErrInvalidAmount is returned by ParseAmount for non-monetary input.
var ErrInvalidAmount = errors.New("budget: invalid monetary amount")

// Amount is a monetary value in cents.
type Amount int64

// ParseAmount reads "1234", "1234.5", "1,234.56" or a JSON number into cents.
// More than two fractional digits is invalid.
func ParseAmount(raw any) (Amount, error) {
	text, err := cast.ToStringE(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidAmount, raw)
	}
	text = strings.ReplaceAll(strings.TrimSpace(text), ",", "")
	if text == "" {
		return 0, fmt.Errorf("%w: empty", ErrInvalidAmount)
	}

	negative := strings.HasPrefix(text, "-")
	text = strings.TrimPrefix(text, "-")

	whole, frac, _ := strings.Cut(text, ".")
	if len(frac) > 2 || (whole == "" && frac == "") {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, raw)
	}
	for len(frac) < 2 {
		frac += "0"
	}
	if whole == "" {
		whole = "0"
	}

	units, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, raw)
	}
	cents, err := strconv.ParseInt(frac, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, raw)
	}

	total := Amount(units*100 + cents)
	if negative {
		total = -total
	}
	return total, nil
}

// String formats the amount with two decimals, e.g. "1234.50".
func (a Amount) String() string {
	sign := ""
	value := int64(a)
	if value < 0 {
		sign = "-"
		value = -value
	}
	return fmt.Sprintf("%s%d.%02d", sign, value/100, value%100)
}

// Sum adds every parseable value. Nil and malformed values are skipped, so an
// input with nothing usable sums to zero.
func Sum(values ...any) Amount {
	var total Amount
	for _, value := range values {
		if value == nil {
			continue
		}
		amount, err := ParseAmount(value)
		if err != nil {
			continue
		}
		total += amount
	}
	return total
}

// ComputeTotals fills the derived SF-424A amounts in data and returns it:
// per-activity row totals first, then column totals across activities, then
// the forecasted cash needs. Existing totals are overwritten. Data without an
// activity list only gets its cash needs computed.
func ComputeTotals(data map[string]any) map[string]any {
	if data == nil {
		return nil
	}

	items, _ := data[ActivityLineItems].([]any)
	for _, raw := range items {
		item, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		computeActivityTotals(item)
	}

	if len(items) > 0 {
		data[TotalBudgetSummary] = columnTotals(items, GroupBudgetSummary, columnKeys(SummaryColumns))
		data[TotalBudgetCategories] = columnTotals(items, GroupBudgetCategories, append(rowKeys(CategoryRows), ProgramIncomeKey))
		data[TotalNonFederalResources] = columnTotals(items, GroupNonFederalResources, columnKeys(ResourceColumns))
		data[TotalFederalFundEstimates] = columnTotals(items, GroupFederalFundEstimates, columnKeys(YearColumns))
	}

	if cash, ok := data[GroupForecastedCashNeeds].(map[string]any); ok {
		computeCashNeeds(cash)
	}
	return data
}

func computeActivityTotals(item map[string]any) {
	if summary, ok := item[GroupBudgetSummary].(map[string]any); ok {
		summary[TotalAmount] = sumKeys(summary, columnKeys(SummaryColumns[:4])).String()
	}

	if categories, ok := item[GroupBudgetCategories].(map[string]any); ok {
		direct := sumKeys(categories, rowKeys(CategoryRows[:8]))
		categories["total_direct_charge_amount"] = direct.String()
		categories[TotalAmount] = (direct + Sum(categories["total_indirect_charge_amount"])).String()
	}

	if resources, ok := item[GroupNonFederalResources].(map[string]any); ok {
		resources[TotalAmount] = sumKeys(resources, columnKeys(ResourceColumns[:3])).String()
	}
}

func computeCashNeeds(cash map[string]any) {
	quarters := columnKeys(QuarterColumns[:4])
	federal, _ := cash[CashNeedRows[0].Key].(map[string]any)
	nonFederal, _ := cash[CashNeedRows[1].Key].(map[string]any)
	for _, row := range []map[string]any{federal, nonFederal} {
		if row != nil {
			row[TotalAmount] = sumKeys(row, quarters).String()
		}
	}

	total := map[string]any{}
	for _, key := range columnKeys(QuarterColumns) {
		total[key] = Sum(federal[key], nonFederal[key]).String()
	}
	cash[CashNeedRows[2].Key] = total
}

func columnTotals(items []any, group string, keys []string) map[string]any {
	out := make(map[string]any, len(keys))
	for _, key := range keys {
		values := make([]any, 0, len(items))
		for _, raw := range items {
			item, _ := raw.(map[string]any)
			section, _ := item[group].(map[string]any)
			values = append(values, section[key])
		}
		out[key] = Sum(values...).String()
	}
	return out
}

func sumKeys(obj map[string]any, keys []string) Amount {
	values := make([]any, len(keys))
	for idx, key := range keys {
		values[idx] = obj[key]
	}
	return Sum(values...)
}

func columnKeys(columns []Column) []string {
	out := make([]string, len(columns))
	for idx, column := range columns {
		out[idx] = column.Key
	}
	return out
}

func rowKeys(rows []Row) []string {
	out := make([]string, len(rows))
	for idx, row := range rows {
		out[idx] = row.Key
	}
	return out
}
