package report

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"

	"github.com/datsun80zx/fechamento/internal/parser"
	"github.com/datsun80zx/fechamento/internal/payroll"
)

// ContentType of an assembled installer report
const ContentType = "application/pdf"

var (
	summaryHeaders = []string{
		"ID", "Name", "Address", "City", "State",
		"Phone Number", "TOTAL after %",
	}
	detailHeaders = []string{
		"Installer", "Customer Name", "Job Number", "Labor",
		"When the job was done", "Prices after %", "Despesas",
	}
)

// Document is a rendered report ready for download
type Document struct {
	FileName    string
	ContentType string
	Content     []byte
}

// FileName is the download name of an installer's report for a period
func FileName(installer, period string) string {
	return fmt.Sprintf("%s_Report_%s.pdf", installer, period)
}

// Assemble renders the pay report of one installer. It does no file I/O.
func Assemble(tmpl Template, s payroll.InstallerSummary) (*Document, error) {
	period := s.PayDate.Format(parser.DateLayout)
	team := TeamName(s.Installer)

	pdf := fpdf.New(tmpl.Orientation, "mm", tmpl.PageSize, "")
	pdf.SetCompression(tmpl.Compress)
	pdf.SetAutoPageBreak(true, tmpl.PageBreak)
	pdf.SetTitle(fmt.Sprintf("%s %s", team, period), true)
	pdf.SetCreator(tmpl.Title, true)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetHeaderFunc(func() {
		pdf.SetFillColor(tmpl.HeaderFill[0], tmpl.HeaderFill[1], tmpl.HeaderFill[2])
		pdf.SetTextColor(0, 0, 0)
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, tr(tmpl.Title), "", 1, "C", true, 0, "")
		pdf.SetFont("Arial", "B", 12)
		pdf.CellFormat(0, 10, tr(tmpl.periodLabel(period)), "", 1, "C", false, 0, "")
		pdf.Ln(10)
	})
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Arial", "I", 8)
		pdf.SetTextColor(0, 0, 0)
		pdf.CellFormat(0, 10, tr(tmpl.footerLabel(team)), "", 0, "C", false, 0, "")
	})

	pdf.AddPage()
	drawTable(pdf, tmpl, tr, "Summary", summaryHeaders, summaryRows(tmpl, s))
	drawTable(pdf, tmpl, tr, "Details", detailHeaders, detailRows(s))

	if lines := addendumLines(s); len(lines) > 0 {
		pdf.Ln(10)
		pdf.SetFont("Arial", "B", 12)
		pdf.CellFormat(0, 10, "Extras e Back Charges", "", 1, "L", false, 0, "")
		pdf.SetFont("Arial", "", 10)
		for _, line := range lines {
			pdf.CellFormat(0, 10, tr(line), "", 1, "L", false, 0, "")
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("rendering report for %s: %w", s.Installer, err)
	}

	return &Document{
		FileName:    FileName(s.Installer, period),
		ContentType: ContentType,
		Content:     buf.Bytes(),
	}, nil
}

// drawTable renders a titled grid with the template's fixed column widths
func drawTable(pdf *fpdf.Fpdf, tmpl Template, tr func(string) string, title string, headers []string, rows [][]string) {
	pdf.SetFont("Arial", "B", 10)
	pdf.SetTextColor(0, 0, 0)
	pdf.CellFormat(0, 10, title, "", 1, "L", false, 0, "")
	pdf.Ln(5)

	pdf.SetFillColor(tmpl.TableFill[0], tmpl.TableFill[1], tmpl.TableFill[2])
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Arial", "B", 8)
	for i, header := range headers {
		if i >= len(tmpl.ColumnWidths) {
			break
		}
		pdf.CellFormat(tmpl.ColumnWidths[i], tmpl.RowHeight, header, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 8)
	pdf.SetTextColor(0, 0, 0)
	for _, row := range rows {
		for i, cell := range row {
			if i >= len(tmpl.ColumnWidths) {
				break
			}
			pdf.CellFormat(tmpl.ColumnWidths[i], tmpl.RowHeight, tr(cell), "1", 0, "C", false, 0, "")
		}
		pdf.Ln(-1)
	}
}

func summaryRows(tmpl Template, s payroll.InstallerSummary) [][]string {
	return [][]string{{
		s.Installer,
		TeamName(s.Installer),
		tmpl.Address,
		tmpl.City,
		tmpl.State,
		tmpl.Phone,
		formatAmount(s.FinalTotal),
	}}
}

func detailRows(s payroll.InstallerSummary) [][]string {
	rows := make([][]string, 0, len(s.Lines))
	for _, line := range s.Lines {
		rows = append(rows, []string{
			line.Installer,
			line.CustomerName,
			line.JobNumber,
			formatAmount(line.Labor),
			line.JobDate,
			formatAmount(line.PriceAfterDiscount),
			formatAmount(line.Expenses),
		})
	}
	return rows
}

// addendumLines lists extras and the back charge; empty when neither applies
func addendumLines(s payroll.InstallerSummary) []string {
	var lines []string
	for _, extra := range s.Extras {
		line := fmt.Sprintf("Extra: %s - %s", extra.Name, formatAmount(extra.Value))
		if !extra.Date.IsZero() {
			line += " on " + extra.Date.Format(parser.DateLayout)
		}
		lines = append(lines, line)
	}
	if s.BackCharge.IsPositive() {
		lines = append(lines, "Back Charge aplicado: -"+formatAmount(s.BackCharge))
	}
	return lines
}

// formatAmount renders money with a leading $ and exactly two decimals
func formatAmount(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}
