package parser

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// parseAmount parses a currency/decimal cell. Blank cells are zero.
func parseAmount(s string, rowNum int, columnName string) (decimal.Decimal, error) {
	s = cleanCurrency(s)
	if s == "" {
		return decimal.Zero, nil
	}

	val, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, &ValidationError{
			Row:    rowNum,
			Column: columnName,
			Value:  s,
			Err:    err,
		}
	}

	return val, nil
}

// cleanCurrency removes $ and commas from currency strings
// Also handles accounting notation: (123.45) → -123.45
func cleanCurrency(s string) string {
	s = strings.TrimSpace(s)

	isNegative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		isNegative = true
		s = strings.TrimPrefix(s, "(")
		s = strings.TrimSuffix(s, ")")
		s = strings.TrimSpace(s)
	}

	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)

	if isNegative && s != "" && s != "0" && s != "0.00" {
		s = "-" + s
	}

	return s
}

var dateFormats = []string{
	"2006-01-02",
	"1/2/2006",
	"01/02/2006",
	"1/2/06",
	"01/02/06",
	"1-2-2006",
	"01-02-2006",
	"2006/01/02",
	"2006-01-02 15:04:05",
	"1/2/2006 15:04",
	"1/2/2006 3:04 PM",
	"2006-01-02T15:04:05",
	time.RFC3339,
}

// ParseDate handles Excel serial dates and the text formats seen in exports.
// The result is truncated to a UTC calendar date; nil means unparseable.
func ParseDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	// Excel numeric date serial, only within a plausible range so plain
	// years or job numbers are not taken for dates.
	if serial, err := strconv.ParseFloat(s, 64); err == nil {
		if serial >= 20000 && serial <= 80000 {
			if t, err := excelize.ExcelDateToTime(serial, false); err == nil {
				d := calendarDate(t)
				return &d
			}
		}
		return nil
	}

	for _, format := range dateFormats {
		if t, err := time.Parse(format, s); err == nil {
			d := calendarDate(t)
			return &d
		}
	}

	return nil
}

func calendarDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
