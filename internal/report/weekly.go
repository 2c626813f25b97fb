package report

import (
	"time"

	"github.com/datsun80zx/fechamento/internal/payroll"
)

// WeeklyReport is the overview of every installer paid in one period
type WeeklyReport struct {
	Title       string
	GeneratedAt time.Time
	Period      string
	Policy      string
	SessionID   string

	TotalJobs        int
	TotalLabor       float64
	TotalExpenses    float64
	TotalExtras      float64
	TotalBackCharges float64
	TotalPayroll     float64

	Installers []WeeklyRow
}

// WeeklyRow is one installer line of the overview
type WeeklyRow struct {
	Installer    string
	Name         string
	Jobs         int
	Discount     float64
	Labor        float64
	Expenses     float64
	BeforeExtras float64
	Extras       float64
	BackCharge   float64
	FinalTotal   float64
	Report       string // file name of the installer's PDF
}

// BuildWeekly aggregates installer summaries into the overview, keeping their
// order. The heading comes from the same template as the PDFs.
func BuildWeekly(tmpl Template, period, policy, sessionID string, summaries []payroll.InstallerSummary, now time.Time) *WeeklyReport {
	r := &WeeklyReport{
		Title:       tmpl.Title,
		GeneratedAt: now,
		Period:      period,
		Policy:      policy,
		SessionID:   sessionID,
		Installers:  make([]WeeklyRow, 0, len(summaries)),
	}

	for _, s := range summaries {
		row := WeeklyRow{
			Installer:    s.Installer,
			Name:         TeamName(s.Installer),
			Jobs:         len(s.Lines),
			Discount:     s.Discount.InexactFloat64(),
			Labor:        s.TotalLabor.InexactFloat64(),
			Expenses:     s.TotalExpenses.InexactFloat64(),
			BeforeExtras: s.TotalBeforeExtras.InexactFloat64(),
			Extras:       s.ExtraTotal.InexactFloat64(),
			BackCharge:   s.BackCharge.InexactFloat64(),
			FinalTotal:   s.FinalTotal.InexactFloat64(),
			Report:       FileName(s.Installer, period),
		}
		r.Installers = append(r.Installers, row)

		r.TotalJobs += row.Jobs
		r.TotalLabor += row.Labor
		r.TotalExpenses += row.Expenses
		r.TotalExtras += row.Extras
		r.TotalBackCharges += row.BackCharge
		r.TotalPayroll += row.FinalTotal
	}

	return r
}
