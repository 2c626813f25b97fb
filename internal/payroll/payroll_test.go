package payroll

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/datsun80zx/fechamento/internal/parser"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

var payDay = time.Date(2026, 10, 23, 0, 0, 0, 0, time.UTC)

func TestCanonicalInstaller(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{"Tech 3", "PM3"},
		{"PM3", "PM3"},
		{"team 12 / crew 4", "PM12"},
		{"Crew", "PM0"},
		{"", "PM0"},
		{"pm 07", "PM07"},
	}
	for _, tc := range cases {
		t.Run(tc.raw, func(t *testing.T) {
			got := CanonicalInstaller(tc.raw)
			if got != tc.want {
				t.Fatalf("got=%s want=%s", got, tc.want)
			}
			if again := CanonicalInstaller(got); again != got {
				t.Fatalf("not idempotent: %s -> %s", got, again)
			}
		})
	}
}

func TestGroupByInstallerIsNumericPartition(t *testing.T) {
	jobs := []parser.JobRow{
		{Row: 3, Installer: "Tech 10"},
		{Row: 4, Installer: "Tech 2"},
		{Row: 5, Installer: "Crew"},
		{Row: 6, Installer: "PM2"},
		{Row: 7, Installer: "Tech 9"},
	}

	groups := GroupByInstaller(jobs)

	var order []string
	seen := make(map[int]int)
	for _, g := range groups {
		order = append(order, g.Installer)
		for _, j := range g.Jobs {
			seen[j.Row]++
			if j.Installer != g.Installer {
				t.Fatalf("row %d carries installer %s inside group %s", j.Row, j.Installer, g.Installer)
			}
		}
	}
	if got := strings.Join(order, ","); got != "PM0,PM2,PM9,PM10" {
		t.Fatalf("order=%s", got)
	}
	if len(seen) != len(jobs) {
		t.Fatalf("union of groups has %d rows, want %d", len(seen), len(jobs))
	}
	for row, n := range seen {
		if n != 1 {
			t.Fatalf("row %d appears in %d groups", row, n)
		}
	}
	if rows := groups[1].Jobs; rows[0].Row != 4 || rows[1].Row != 6 {
		t.Fatalf("upload order not preserved inside group: %+v", rows)
	}
}

func TestPriceAfterDiscount(t *testing.T) {
	cases := []struct {
		name                  string
		labor, expenses, rate string
		want                  string
	}{
		{"team rate", "1000", "100", "0.20", "820"},
		{"no discount", "600", "100", "0", "600"},
		{"labor equals expenses", "250", "250", "0.30", "250"},
		{"labor below expenses is not floored", "100", "300", "0.20", "140"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := PriceAfterDiscount(dec(tc.labor), dec(tc.expenses), dec(tc.rate))
			if !got.Equal(dec(tc.want)) {
				t.Fatalf("got=%s want=%s", got, tc.want)
			}
		})
	}
}

func TestPriceEqualsExpensesWhenLaborEqualsExpenses(t *testing.T) {
	for _, rate := range []string{"0", "0.2", "0.3", "0.99"} {
		for _, amount := range []string{"0", "1.01", "980.55"} {
			got := PriceAfterDiscount(dec(amount), dec(amount), dec(rate))
			if !got.Equal(dec(amount)) {
				t.Fatalf("rate=%s amount=%s got=%s", rate, amount, got)
			}
		}
	}
}

func TestCalculateScenarioTeamDiscount(t *testing.T) {
	groups := GroupByInstaller([]parser.JobRow{
		{Row: 3, Installer: "Tech 3", CustomerName: "Alice", Labor: dec("1000"), Expenses: dec("100"), PayDate: &payDay},
	})

	s := Calculate(groups[0], payDay, nil, DefaultDiscounts())

	if s.Installer != "PM3" || !s.Discount.Equal(dec("0.2")) {
		t.Fatalf("installer=%s discount=%s", s.Installer, s.Discount)
	}
	if !s.Lines[0].PriceAfterDiscount.Equal(dec("820")) {
		t.Fatalf("price=%s", s.Lines[0].PriceAfterDiscount)
	}
	if !s.FinalTotal.Equal(dec("820")) {
		t.Fatalf("final=%s", s.FinalTotal)
	}
}

func TestCalculateScenarioFallbackBucket(t *testing.T) {
	groups := GroupByInstaller([]parser.JobRow{
		{Row: 3, Installer: "Crew", Labor: dec("400"), Expenses: dec("50")},
	})

	s := Calculate(groups[0], payDay, nil, DefaultDiscounts())

	if s.Installer != "PM0" || !s.Discount.IsZero() {
		t.Fatalf("installer=%s discount=%s", s.Installer, s.Discount)
	}
	if !s.Lines[0].PriceAfterDiscount.Equal(dec("400")) {
		t.Fatalf("price=%s", s.Lines[0].PriceAfterDiscount)
	}
}

func TestCalculateScenarioExtrasAndBackCharge(t *testing.T) {
	// PM5 at 20%: 625 -> 500 and 375 -> 300
	group := Group{Installer: "PM5", Jobs: []parser.JobRow{
		{Row: 3, Labor: dec("625")},
		{Row: 4, Labor: dec("375")},
	}}
	session := NewSession()
	adj := session.For("PM5")
	adj.AddExtra("Tile", dec("50"), payDay)
	adj.SetBackCharge(dec("20"), "")

	s := Calculate(group, payDay, session.Lookup("PM5"), DefaultDiscounts())

	if !s.TotalBeforeExtras.Equal(dec("800")) {
		t.Fatalf("before extras=%s", s.TotalBeforeExtras)
	}
	if !s.ExtraTotal.Equal(dec("50")) || !s.BackCharge.Equal(dec("20")) {
		t.Fatalf("extras=%s back=%s", s.ExtraTotal, s.BackCharge)
	}
	if !s.FinalTotal.Equal(dec("830")) {
		t.Fatalf("final=%s", s.FinalTotal)
	}
}

func TestCalculateKeepsNegativeFinalTotal(t *testing.T) {
	group := Group{Installer: "PM9", Jobs: []parser.JobRow{{Row: 3, Labor: dec("100")}}}
	session := NewSession()
	session.For("PM9").SetBackCharge(dec("250"), "damage")

	s := Calculate(group, payDay, session.Lookup("PM9"), DefaultDiscounts())

	if !s.FinalTotal.Equal(dec("-150")) {
		t.Fatalf("final=%s", s.FinalTotal)
	}
	if s.BackChargeReason != "damage" {
		t.Fatalf("reason=%q", s.BackChargeReason)
	}
}

func TestCalculateClampsNegativeInputs(t *testing.T) {
	group := Group{Installer: "PM3", Jobs: []parser.JobRow{
		{Row: 3, Labor: dec("-10"), Expenses: dec("-5")},
		{Row: 4, Labor: dec("200"), Expenses: dec("20")},
	}}
	session := NewSession()
	session.For("PM3").SetLabor(4, dec("-1"))
	session.For("PM3").SetExpenses(4, dec("-7"))

	s := Calculate(group, payDay, session.Lookup("PM3"), DefaultDiscounts())

	for _, line := range s.Lines {
		if line.Labor.IsNegative() || line.Expenses.IsNegative() {
			t.Fatalf("row %d kept negative inputs: labor=%s expenses=%s", line.Row, line.Labor, line.Expenses)
		}
	}
	if !s.FinalTotal.IsZero() {
		t.Fatalf("final=%s", s.FinalTotal)
	}
}

func TestCalculateIsIdempotentAndOrderIndependent(t *testing.T) {
	jobs := []parser.JobRow{
		{Row: 3, Labor: dec("1200.10"), Expenses: dec("99.99")},
		{Row: 4, Labor: dec("310.33"), Expenses: dec("0")},
		{Row: 5, Labor: dec("87.5"), Expenses: dec("12.25")},
	}
	reversed := []parser.JobRow{jobs[2], jobs[1], jobs[0]}
	session := NewSession()
	session.For("PM6").AddExtra("", dec("15"), payDay)

	a := Calculate(Group{Installer: "PM6", Jobs: jobs}, payDay, session.Lookup("PM6"), DefaultDiscounts())
	b := Calculate(Group{Installer: "PM6", Jobs: jobs}, payDay, session.Lookup("PM6"), DefaultDiscounts())
	c := Calculate(Group{Installer: "PM6", Jobs: reversed}, payDay, session.Lookup("PM6"), DefaultDiscounts())

	if !a.FinalTotal.Equal(b.FinalTotal) {
		t.Fatalf("recomputation changed total: %s vs %s", a.FinalTotal, b.FinalTotal)
	}
	if !a.TotalBeforeExtras.Equal(c.TotalBeforeExtras) {
		t.Fatalf("permutation changed total: %s vs %s", a.TotalBeforeExtras, c.TotalBeforeExtras)
	}
}

func TestCalculateAppliesRowOverrides(t *testing.T) {
	group := Group{Installer: "PM4", Jobs: []parser.JobRow{{Row: 7, Labor: dec("100"), Expenses: dec("10")}}}
	session := NewSession()
	session.For("Tech 4").SetLabor(7, dec("500"))

	s := Calculate(group, payDay, session.Lookup("PM4"), DefaultDiscounts())

	// (500-10)*0.8+10
	if !s.Lines[0].PriceAfterDiscount.Equal(dec("402")) {
		t.Fatalf("price=%s", s.Lines[0].PriceAfterDiscount)
	}
}

func TestNewDiscountTable(t *testing.T) {
	table, err := NewDiscountTable(map[string]float64{"pm3": 0.25, "Tech 9": 0})
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if !table.Rate("PM3").Equal(dec("0.25")) || !table.Rate("PM9").IsZero() || !table.Rate("PM1").IsZero() {
		t.Fatalf("table=%v", table)
	}
	if got := strings.Join(DefaultDiscounts().Installers(), ","); got != "PM2,PM3,PM4,PM5,PM6,PM7,PM8" {
		t.Fatalf("installers=%s", got)
	}

	for _, bad := range []float64{-0.1, 1, 1.5} {
		if _, err := NewDiscountTable(map[string]float64{"PM2": bad}); err == nil {
			t.Fatalf("expected error for rate %v", bad)
		}
	}
}

func TestNewDiscountTableRejectsDuplicateTeams(t *testing.T) {
	// run repeatedly so map iteration order cannot hide the conflict
	for i := 0; i < 20; i++ {
		_, err := NewDiscountTable(map[string]float64{"PM3": 0.2, "Tech 3": 0.3})
		if err == nil {
			t.Fatalf("expected error for two keys mapping to PM3")
		}
		if err.Error() != `discounts: installers "PM3" and "Tech 3" both map to PM3` {
			t.Fatalf("err=%v", err)
		}
	}
}

func TestInstallerOrderingWithLongDigitRuns(t *testing.T) {
	jobs := []parser.JobRow{
		{Row: 3, Installer: "Tech 123456789012345678901"},
		{Row: 4, Installer: "Crew"},
		{Row: 5, Installer: "Tech 99999999999999999999"},
		{Row: 6, Installer: "PM07"},
		{Row: 7, Installer: "PM8"},
	}

	var order []string
	for _, g := range GroupByInstaller(jobs) {
		order = append(order, g.Installer)
	}
	want := "PM0,PM07,PM8,PM99999999999999999999,PM123456789012345678901"
	if got := strings.Join(order, ","); got != want {
		t.Fatalf("order=%s want %s", got, want)
	}
}

func TestDecodeAdjustments(t *testing.T) {
	doc := `
installers:
  Tech 3:
    jobs:
      - row: 5
        labor: 1000
        expenses: -20
      - row: 6
        expenses: 15.5
    extras:
      - name: Tile
        value: 50
        date: 2026-10-16
      - value: 12.25
    back_charge: 20
    back_charge_reason: damaged vanity
`
	session, err := DecodeAdjustments(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if session.ID.String() == "" {
		t.Fatalf("expected session id")
	}

	adj := session.Lookup("PM3")
	if adj == nil {
		t.Fatalf("expected canonicalized key PM3, got %v", session.Adjustments)
	}
	if !adj.Labor[5].Equal(dec("1000")) || !adj.Expenses[5].IsZero() {
		t.Fatalf("row 5 labor=%s expenses=%s", adj.Labor[5], adj.Expenses[5])
	}
	if _, ok := adj.Labor[6]; ok {
		t.Fatalf("row 6 labor should not be overridden")
	}
	if !adj.Expenses[6].Equal(dec("15.5")) {
		t.Fatalf("row 6 expenses=%s", adj.Expenses[6])
	}
	if len(adj.Extras) != 2 || adj.Extras[1].Name != "" || !adj.Extras[1].Date.IsZero() {
		t.Fatalf("extras=%+v", adj.Extras)
	}
	if adj.Extras[0].Date.Format("2006-01-02") != "2026-10-16" {
		t.Fatalf("extra date=%v", adj.Extras[0].Date)
	}
	if !adj.BackCharge.Equal(dec("20")) || adj.BackChargeReason != "damaged vanity" {
		t.Fatalf("back charge=%s reason=%q", adj.BackCharge, adj.BackChargeReason)
	}
}

func TestDecodeAdjustmentsRejectsBadInput(t *testing.T) {
	cases := map[string]string{
		"missing row": "installers:\n  PM2:\n    jobs:\n      - labor: 10\n",
		"bad date":    "installers:\n  PM2:\n    extras:\n      - value: 1\n        date: 16/10/2026\n",
		"bad yaml":    "installers: [",
		"duplicate":   "installers:\n  PM3:\n    back_charge: 10\n  Tech 3:\n    back_charge: 20\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := DecodeAdjustments(strings.NewReader(doc)); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestDecodeEmptyAdjustments(t *testing.T) {
	session, err := DecodeAdjustments(strings.NewReader(""))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(session.Adjustments) != 0 {
		t.Fatalf("adjustments=%v", session.Adjustments)
	}
}
