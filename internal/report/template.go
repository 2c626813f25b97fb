package report

import "fmt"

// Template fixes the layout and branding of an installer pay report
type Template struct {
	Title        string
	PeriodFormat string // receives the pay date label
	FooterFormat string // receives the team name

	Orientation string
	PageSize    string
	PageBreak   float64 // bottom margin that triggers a new page, mm

	ColumnWidths []float64
	RowHeight    float64

	HeaderFill [3]int
	TableFill  [3]int

	// Placeholders for the summary row until customer master data exists
	Address string
	City    string
	State   string
	Phone   string

	// Compress is off only for tests that inspect the content stream.
	Compress bool
}

// DefaultTemplate is the branding used for weekly installer reports
func DefaultTemplate() Template {
	return Template{
		Title:        "PM Home Remodeling System",
		PeriodFormat: "Week - %s",
		FooterFormat: "Installer: %s",
		Orientation:  "L",
		PageSize:     "A4",
		PageBreak:    15,
		ColumnWidths: []float64{25, 50, 30, 30, 40, 40, 30},
		RowHeight:    8,
		HeaderFill:   [3]int{200, 220, 255},
		TableFill:    [3]int{180, 180, 180},
		Address:      "Sample Address",
		City:         "Sample City",
		State:        "ST",
		Phone:        "(000) 000-0000",
		Compress:     true,
	}
}

func (t Template) periodLabel(period string) string {
	return fmt.Sprintf(t.PeriodFormat, period)
}

func (t Template) footerLabel(team string) string {
	return fmt.Sprintf(t.FooterFormat, team)
}

// TeamName is how an installer is named on reports
func TeamName(installer string) string {
	return "Installer " + installer
}
