package budget

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-applyform/pkg/model"
)

func warn(field, message string) model.FormValidationWarning {
	return model.FormValidationWarning{Field: field, Message: message, Type: "pattern"}
}

func TestErrorLabels_Positions(t *testing.T) {
	cases := []struct {
		name    string
		section Section
		id      string
		want    []string
	}{
		{"section A activity", SectionA, "activity_line_items[1]--budget_summary--federal_new_or_revised_amount", []string{"Row 2 Column E"}},
		{"section A title", SectionA, "activity_line_items[0]--activity_title", []string{"Row 1 Column A"}},
		{"section B category", SectionB, "activity_line_items[2]--budget_categories--travel_amount", []string{"Row 8 Column 3"}},
		{"section B totals column", SectionB, "total_budget_categories--total_amount", []string{"Row 16 Column 5"}},
		{"section C activity", SectionC, "activity_line_items[3]--non_federal_resources--state_amount", []string{"Row 11 Column C"}},
		{"section C totals", SectionC, "total_non_federal_resources--total_amount", []string{"Row 12 Column E"}},
		{"section D", SectionD, "forecasted_cash_needs--non_federal_forecasted_cash_needs--third_quarter_amount", []string{"Row 14 Column C"}},
		{"section E activity", SectionE, "activity_line_items[0]--federal_fund_estimates--fourth_year_amount", []string{"Row 16 Column E"}},
		{"section E totals", SectionE, "total_federal_fund_estimates--first_year_amount", []string{"Row 20 Column B"}},
		{"section F", SectionF, "remarks", []string{"Row 23 Column A"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			warnings := []model.FormValidationWarning{warn(tc.id, "bad value")}
			got := ErrorLabels(tc.section, tc.id, warnings)
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("labels mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestErrorLabels_JSONPathFields(t *testing.T) {
	warnings := []model.FormValidationWarning{
		warn("$.activity_line_items[2].budget_categories.travel_amount", "does not match pattern"),
	}
	got := ErrorLabels(SectionB, "activity_line_items[2]--budget_categories--travel_amount", warnings)
	if diff := cmp.Diff([]string{"Row 8 Column 3"}, got); diff != "" {
		t.Fatalf("labels mismatch (-want +got):\n%s", diff)
	}
}

func TestErrorLabels_Styles(t *testing.T) {
	id := "activity_line_items[0]--budget_categories--equipment_amount"
	warnings := []model.FormValidationWarning{warn(id, "x")}

	got := ErrorLabels(SectionB, id, warnings, WithRowStyle(LabelLetter), WithColumnStyle(LabelLetter))
	if diff := cmp.Diff([]string{"Row D Column A"}, got); diff != "" {
		t.Fatalf("labels mismatch (-want +got):\n%s", diff)
	}

	got = ErrorLabels(SectionB, id, warnings, WithColumnStyle(LabelNumber))
	if diff := cmp.Diff([]string{"Row 9 Column 1"}, got); diff != "" {
		t.Fatalf("labels mismatch (-want +got):\n%s", diff)
	}
}

func TestErrorLabels_NoMatch(t *testing.T) {
	got := ErrorLabels(SectionA, "activity_line_items[0]--activity_title", []model.FormValidationWarning{warn("remarks", "x")})
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil labels, got %#v", got)
	}
}

func TestErrorLabels_FallsBackToRawMessages(t *testing.T) {
	id := "activity_line_items[0]--non_federal_resources--total_amount"
	warnings := []model.FormValidationWarning{warn(id, "first"), warn(id, "second")}
	got := ErrorLabels(SectionC, id, warnings)
	if diff := cmp.Diff([]string{"first", "second"}, got); diff != "" {
		t.Fatalf("labels mismatch (-want +got):\n%s", diff)
	}
}

func TestErrorLabels_ActivityListRequired(t *testing.T) {
	contains := []model.FormValidationWarning{
		{Field: "$.activity_line_items", Message: "[] does not contain items matching the given schema", Type: "contains"},
	}
	for _, id := range []string{
		"activity_line_items[0]--activity_title",
		"activity_line_items[0]--assistance_listing_number",
		"activity_line_items[0]--budget_summary--total_amount",
	} {
		if diff := cmp.Diff([]string{RequiredMessage}, ErrorLabels(SectionA, id, contains)); diff != "" {
			t.Fatalf("%s mismatch (-want +got):\n%s", id, diff)
		}
	}
	if got := ErrorLabels(SectionA, "activity_line_items[1]--activity_title", contains); len(got) != 0 {
		t.Fatalf("expected no labels on second row, got %v", got)
	}

	empty := []model.FormValidationWarning{
		{Field: "activity_line_items", Message: "[] should be non-empty", Type: "minItems"},
	}
	if diff := cmp.Diff([]string{RequiredMessage}, ErrorLabels(SectionA, "activity_line_items[0]--activity_title", empty)); diff != "" {
		t.Fatalf("minItems title mismatch (-want +got):\n%s", diff)
	}
	if got := ErrorLabels(SectionA, "activity_line_items[0]--assistance_listing_number", empty); len(got) != 0 {
		t.Fatalf("minItems should only flag the title, got %v", got)
	}
	if got := ErrorLabels(SectionB, "activity_line_items[0]--activity_title", contains); len(got) != 0 {
		t.Fatalf("special case is section A only, got %v", got)
	}
}

func TestToColumnLetter(t *testing.T) {
	cases := map[int]string{0: "", 1: "A", 7: "G", 26: "Z", 27: "AA", 52: "AZ", 703: "AAA"}
	for in, want := range cases {
		if got := ToColumnLetter(in); got != want {
			t.Fatalf("ToColumnLetter(%d) = %q, want %q", in, got, want)
		}
	}
}

func TestNormalize_RootAndSpreadShapes(t *testing.T) {
	root := map[string]any{
		"activity_line_items": []any{
			map[string]any{"activity_title": "Outreach", "budget_summary": map[string]any{"total_amount": "10.00"}},
		},
		"total_budget_summary": map[string]any{"total_amount": "10.00"},
	}
	fromRoot := Normalize(nil, root)
	if got := fromRoot.String("activity_line_items[0]--activity_title"); got != "Outreach" {
		t.Fatalf("unexpected root title %q", got)
	}
	if got := fromRoot.String("total_budget_summary--total_amount"); got != "10.00" {
		t.Fatalf("unexpected root total %q", got)
	}
	if len(fromRoot.Activities()) != ActivityRows {
		t.Fatalf("expected %d activity rows", ActivityRows)
	}

	spread := map[string]any{
		"0":            map[string]any{"activity_title": "Spread", "budget_summary": map[string]any{"total_amount": 5}},
		"total_amount": "5.00",
	}
	fromSpread := Normalize(spread, nil)
	if got := fromSpread.String("activity_line_items[0]--budget_summary--total_amount"); got != "5" {
		t.Fatalf("unexpected spread amount %q", got)
	}
	if got := fromSpread.String("total_budget_summary--total_amount"); got != "5.00" {
		t.Fatalf("unexpected spread total %q", got)
	}
	if got := fromSpread.String("activity_line_items[3]--activity_title"); got != "" {
		t.Fatalf("expected empty missing row, got %q", got)
	}
}

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in   any
		want string
	}{
		{"12", "12.00"},
		{"12.5", "12.50"},
		{"1,234.56", "1234.56"},
		{".75", "0.75"},
		{"-3.10", "-3.10"},
		{42, "42.00"},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if err != nil {
			t.Fatalf("ParseAmount(%v): %v", tc.in, err)
		}
		if got.String() != tc.want {
			t.Fatalf("ParseAmount(%v) = %s, want %s", tc.in, got, tc.want)
		}
	}

	for _, bad := range []any{"", "abc", "1.234", "-"} {
		if _, err := ParseAmount(bad); !errors.Is(err, ErrInvalidAmount) {
			t.Fatalf("ParseAmount(%q) expected ErrInvalidAmount, got %v", bad, err)
		}
	}
}

func TestComputeTotals(t *testing.T) {
	data := map[string]any{
		"activity_line_items": []any{
			map[string]any{
				"budget_summary": map[string]any{
					"federal_estimated_unobligated_amount": "1.00",
					"federal_new_or_revised_amount":        "2.50",
					"non_federal_new_or_revised_amount":    "hello",
				},
				"budget_categories": map[string]any{
					"personnel_amount":             "100.00",
					"travel_amount":                "50.25",
					"total_indirect_charge_amount": "10.00",
					"program_income_amount":        "3.00",
				},
				"non_federal_resources": map[string]any{"applicant_amount": "4.00", "state_amount": "1.00"},
			},
			map[string]any{
				"budget_summary":    map[string]any{"federal_estimated_unobligated_amount": "2.00"},
				"budget_categories": map[string]any{"personnel_amount": "1.00"},
			},
		},
		"forecasted_cash_needs": map[string]any{
			"federal_forecasted_cash_needs":     map[string]any{"first_quarter_amount": "5.00", "second_quarter_amount": "5.00"},
			"non_federal_forecasted_cash_needs": map[string]any{"first_quarter_amount": "1.00"},
		},
	}

	ComputeTotals(data)

	first := data["activity_line_items"].([]any)[0].(map[string]any)
	if got := first["budget_summary"].(map[string]any)["total_amount"]; got != "3.50" {
		t.Fatalf("row total = %v, want 3.50", got)
	}
	categories := first["budget_categories"].(map[string]any)
	if categories["total_direct_charge_amount"] != "150.25" || categories["total_amount"] != "160.25" {
		t.Fatalf("unexpected category totals %v / %v", categories["total_direct_charge_amount"], categories["total_amount"])
	}
	if got := first["non_federal_resources"].(map[string]any)["total_amount"]; got != "5.00" {
		t.Fatalf("resource total = %v, want 5.00", got)
	}

	summary := data["total_budget_summary"].(map[string]any)
	if summary["federal_estimated_unobligated_amount"] != "3.00" || summary["total_amount"] != "5.50" {
		t.Fatalf("unexpected summary totals %v", summary)
	}
	catTotals := data["total_budget_categories"].(map[string]any)
	if catTotals["personnel_amount"] != "101.00" || catTotals["program_income_amount"] != "3.00" || catTotals["total_amount"] != "161.25" {
		t.Fatalf("unexpected category column totals %v", catTotals)
	}
	if got := data["total_federal_fund_estimates"].(map[string]any)["first_year_amount"]; got != "0.00" {
		t.Fatalf("empty column total = %v, want 0.00", got)
	}

	cash := data["forecasted_cash_needs"].(map[string]any)
	if got := cash["federal_forecasted_cash_needs"].(map[string]any)["total_amount"]; got != "10.00" {
		t.Fatalf("federal cash total = %v", got)
	}
	want := map[string]any{
		"first_quarter_amount":  "6.00",
		"second_quarter_amount": "5.00",
		"third_quarter_amount":  "0.00",
		"fourth_quarter_amount": "0.00",
		"total_amount":          "11.00",
	}
	if diff := cmp.Diff(want, cash["total_forecasted_cash_needs"]); diff != "" {
		t.Fatalf("cash totals mismatch (-want +got):\n%s", diff)
	}
}

func TestSectionForWidget(t *testing.T) {
	section, ok := SectionForWidget(model.WidgetBudgetSectionD)
	if !ok || section != SectionD {
		t.Fatalf("expected section D, got %q %v", section, ok)
	}
	if _, ok := SectionForWidget(model.WidgetText); ok {
		t.Fatalf("text widget is not a budget section")
	}
}
