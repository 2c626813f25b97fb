package report

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"math"
	"strings"
)

//go:embed templates/*.html
var templateFS embed.FS

// Renderer handles HTML report template rendering
type Renderer struct {
	templates *template.Template
}

// NewRenderer creates a new template renderer
func NewRenderer() (*Renderer, error) {
	funcMap := template.FuncMap{
		"formatMoney":   formatMoney,
		"formatPercent": formatPercent,
		"truncate":      truncate,
		"isNegative":    func(f float64) bool { return f < 0 },
		"add":           func(a, b int) int { return a + b },
	}

	tmpl, err := template.New("").Funcs(funcMap).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parsing templates: %w", err)
	}

	return &Renderer{templates: tmpl}, nil
}

// RenderWeekly renders the all-installer weekly overview to HTML
func (r *Renderer) RenderWeekly(w io.Writer, report *WeeklyReport) error {
	return r.templates.ExecuteTemplate(w, "weekly.html", report)
}

// formatMoney formats a float as currency with thousands separators
func formatMoney(amount float64) string {
	negative := amount < 0
	if negative {
		amount = -amount
	}

	cents := int64(math.Round(amount * 100))
	intPart := cents / 100
	decPart := cents % 100

	var result string
	if intPart == 0 {
		result = "0"
	} else {
		var parts []string
		for intPart > 0 {
			parts = append([]string{fmt.Sprintf("%03d", intPart%1000)}, parts...)
			intPart /= 1000
		}
		result = strings.TrimLeft(strings.Join(parts, ","), "0,")
	}

	formatted := fmt.Sprintf("$%s.%02d", result, decPart)

	if negative {
		return "(" + formatted + ")"
	}
	return formatted
}

// formatPercent formats a rate in [0,1) as a percentage
func formatPercent(rate float64) string {
	return fmt.Sprintf("%.0f%%", rate*100)
}

// truncate shortens a string to maxLen runes with ellipsis
func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-3]) + "..."
}
