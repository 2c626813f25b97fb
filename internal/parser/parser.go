package parser

import (
	"fmt"
	"strings"
)

// ValidationError represents a cell that could not be coerced, with context
type ValidationError struct {
	Row    int
	Column string
	Value  string
	Err    error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("row %d, column %s: failed to parse '%s': %v",
		e.Row, e.Column, e.Value, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// MissingColumnsError is returned when required columns are absent after renaming.
type MissingColumnsError struct {
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return "missing required columns: " + strings.Join(e.Columns, ", ")
}

// UnsupportedFormatError is returned for uploads with an unknown extension.
type UnsupportedFormatError struct {
	Filename string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported file type %q (expected .xls, .xlsx, .xlsm or .csv)", e.Filename)
}
