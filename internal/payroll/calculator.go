package payroll

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/datsun80zx/fechamento/internal/parser"
)

// Line is one job after adjustments and the team discount
type Line struct {
	Row          int
	Installer    string
	CustomerName string
	JobNumber    string
	PayDate      time.Time
	JobDate      string // YYYY-MM-DD, or the raw cell when unparseable

	Labor              decimal.Decimal
	Expenses           decimal.Decimal
	Discount           decimal.Decimal
	PriceAfterDiscount decimal.Decimal
}

// InstallerSummary aggregates one installer's pay for the period
type InstallerSummary struct {
	Installer string
	PayDate   time.Time
	Discount  decimal.Decimal
	Lines     []Line

	TotalLabor        decimal.Decimal
	TotalExpenses     decimal.Decimal
	TotalBeforeExtras decimal.Decimal

	Extras           []ExtraService
	ExtraTotal       decimal.Decimal
	BackCharge       decimal.Decimal
	BackChargeReason string

	FinalTotal decimal.Decimal
}

// Clamp floors negative amounts to zero
func Clamp(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// PriceAfterDiscount applies the team rate to the labor-minus-expenses margin
// and adds the expenses back. The result is not floored.
func PriceAfterDiscount(labor, expenses, rate decimal.Decimal) decimal.Decimal {
	margin := labor.Sub(expenses)
	return margin.Mul(decimal.NewFromInt(1).Sub(rate)).Add(expenses)
}

// Calculate computes the summary for a group. adj may be nil. The function is
// pure: the same group, adjustments and rates always give the same totals.
func Calculate(group Group, payDate time.Time, adj *Adjustment, discounts DiscountTable) InstallerSummary {
	rate := discounts.Rate(group.Installer)

	s := InstallerSummary{
		Installer:         group.Installer,
		PayDate:           payDate,
		Discount:          rate,
		Lines:             make([]Line, 0, len(group.Jobs)),
		TotalLabor:        decimal.Zero,
		TotalExpenses:     decimal.Zero,
		TotalBeforeExtras: decimal.Zero,
		ExtraTotal:        decimal.Zero,
		BackCharge:        decimal.Zero,
	}

	for _, job := range group.Jobs {
		line := calculateLine(job, group.Installer, adj, rate)
		s.Lines = append(s.Lines, line)
		s.TotalLabor = s.TotalLabor.Add(line.Labor)
		s.TotalExpenses = s.TotalExpenses.Add(line.Expenses)
		s.TotalBeforeExtras = s.TotalBeforeExtras.Add(line.PriceAfterDiscount)
	}

	if adj != nil {
		s.Extras = append([]ExtraService(nil), adj.Extras...)
		for _, extra := range adj.Extras {
			s.ExtraTotal = s.ExtraTotal.Add(extra.Value)
		}
		s.BackCharge = adj.BackCharge
		s.BackChargeReason = adj.BackChargeReason
	}

	s.FinalTotal = s.TotalBeforeExtras.Add(s.ExtraTotal).Sub(s.BackCharge)

	return s
}

func calculateLine(job parser.JobRow, installer string, adj *Adjustment, rate decimal.Decimal) Line {
	labor, expenses := job.Labor, job.Expenses
	if adj != nil {
		if v, ok := adj.Labor[job.Row]; ok {
			labor = v
		}
		if v, ok := adj.Expenses[job.Row]; ok {
			expenses = v
		}
	}
	labor, expenses = Clamp(labor), Clamp(expenses)

	line := Line{
		Row:                job.Row,
		Installer:          installer,
		CustomerName:       job.CustomerName,
		JobNumber:          job.JobNumber,
		JobDate:            job.JobDateLabel(),
		Labor:              labor,
		Expenses:           expenses,
		Discount:           rate,
		PriceAfterDiscount: PriceAfterDiscount(labor, expenses, rate),
	}
	if job.PayDate != nil {
		line.PayDate = *job.PayDate
	}
	return line
}
