package parser

import (
	"fmt"
	"strings"
)

// columnRenames maps normalized upload headers onto canonical column names
var columnRenames = map[string]string{
	"unnamed: 8":        ColCustomerName,
	"job #":             ColJobNumber,
	"date":              ColJobDate,
	"job date":          ColJobDate,
	"job_date":          ColJobDate,
	"pay_date":          ColPayDate,
	"data de pagamento": ColPayDate,
	"data pagamento":    ColPayDate,
	"expenses":          ColExpenses,
}

// Normalize maps raw sheet rows onto JobRows. Rows above HeaderRow are skipped.
func (p *SpreadsheetParser) Normalize(rows [][]string) (*Result, error) {
	if len(rows) <= p.HeaderRow {
		return nil, fmt.Errorf("spreadsheet has no header row (expected at row %d)", p.HeaderRow+1)
	}

	headers := normalizeHeaders(rows[p.HeaderRow])
	colMap := buildColumnMap(headers)

	if missing := missingColumns(colMap); len(missing) > 0 {
		return nil, &MissingColumnsError{Columns: missing}
	}

	result := &Result{
		Headers: headers,
		Jobs:    make([]JobRow, 0, len(rows)-p.HeaderRow-1),
	}

	for i, record := range rows[p.HeaderRow+1:] {
		rowNum := p.HeaderRow + i + 2

		customer := getField(record, colMap, ColCustomerName)
		if customer == "" {
			result.Dropped++
			continue
		}

		job := JobRow{
			Row:          rowNum,
			Installer:    getField(record, colMap, ColInstaller),
			CustomerName: customer,
			JobNumber:    getField(record, colMap, ColJobNumber),
			JobDateRaw:   getField(record, colMap, ColJobDate),
		}

		var err error
		if job.Labor, err = parseAmount(getField(record, colMap, ColLabor), rowNum, ColLabor); err != nil {
			result.Warnings = append(result.Warnings, err.Error())
		}
		if job.Expenses, err = parseAmount(getField(record, colMap, ColExpenses), rowNum, ColExpenses); err != nil {
			result.Warnings = append(result.Warnings, err.Error())
		}

		job.PayDate = ParseDate(getField(record, colMap, ColPayDate))
		job.JobDate = ParseDate(job.JobDateRaw)

		result.Jobs = append(result.Jobs, job)
	}

	return result, nil
}

// normalizeHeaders lower-cases, trims and renames header cells. Blank cells
// are named "unnamed: <index>".
func normalizeHeaders(raw []string) []string {
	headers := make([]string, len(raw))
	for i, h := range raw {
		name := strings.ToLower(strings.TrimSpace(h))
		if name == "" {
			name = fmt.Sprintf("unnamed: %d", i)
		}
		if canonical, ok := columnRenames[name]; ok {
			name = canonical
		}
		headers[i] = name
	}
	return headers
}

// buildColumnMap creates a map of column name → index; the first occurrence wins
func buildColumnMap(headers []string) map[string]int {
	m := make(map[string]int, len(headers))
	for i, header := range headers {
		if _, ok := m[header]; !ok {
			m[header] = i
		}
	}
	return m
}

func missingColumns(colMap map[string]int) []string {
	var missing []string
	for _, col := range RequiredColumns {
		if _, ok := colMap[col]; !ok {
			missing = append(missing, col)
		}
	}
	return missing
}

// getField safely retrieves a trimmed cell by column name
func getField(record []string, colMap map[string]int, columnName string) string {
	idx, ok := colMap[columnName]
	if !ok || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}
