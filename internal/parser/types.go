package parser

import (
	"time"

	"github.com/shopspring/decimal"
)

// Canonical column names after header normalization
const (
	ColInstaller    = "installer"
	ColPayDate      = "pay date"
	ColLabor        = "labor"
	ColCustomerName = "customer name"
	ColJobNumber    = "job number"
	ColJobDate      = "when the job was done"
	ColExpenses     = "despesas"
)

// RequiredColumns lists the columns every upload must carry, in reporting order.
var RequiredColumns = []string{
	ColInstaller,
	ColPayDate,
	ColLabor,
	ColCustomerName,
	ColJobNumber,
	ColJobDate,
}

// JobRow represents one normalized job line from the uploaded spreadsheet
type JobRow struct {
	// Spreadsheet row number (1-based, banner row included)
	Row int

	// Raw installer label as typed in the sheet ("Tech 3", "PM5", ...)
	Installer    string
	CustomerName string
	JobNumber    string

	Labor    decimal.Decimal
	Expenses decimal.Decimal

	PayDate    *time.Time
	JobDate    *time.Time
	JobDateRaw string
}

// JobDateLabel is the display form of the job date: YYYY-MM-DD when parsed,
// the raw cell text otherwise.
func (j JobRow) JobDateLabel() string {
	if j.JobDate != nil {
		return j.JobDate.Format(DateLayout)
	}
	return j.JobDateRaw
}

// DateLayout is the serialized calendar date format used everywhere downstream.
const DateLayout = "2006-01-02"

// Result contains the normalized rows and any warnings raised while coercing
type Result struct {
	Headers  []string
	Jobs     []JobRow
	Dropped  int // rows without a customer name
	Warnings []string
}
