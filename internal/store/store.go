// Package store persists finalized weekly closings to PostgreSQL. Writes are
// append-only.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/datsun80zx/fechamento/internal/parser"
	"github.com/datsun80zx/fechamento/internal/payroll"
)

// Store wraps the database handle
type Store struct {
	db *sql.DB
}

// New wraps an existing connection pool
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Open connects to the database at url and checks the connection
func Open(ctx context.Context, url string) (*Store, error) {
	db, err := sql.Open("postgres", url)
	if err != nil {
		return nil, fmt.Errorf("error connecting to database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("error connecting to database: %w", err)
	}
	return New(db), nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// SaveResult reports what one save action wrote
type SaveResult struct {
	SummaryID      int64
	LedgerRows     int
	ExtraRows      int
	BackChargeRows int
}

// SaveSummary appends one installer's closing in a single transaction: a ledger
// row per job, itemized extras and back charge, and the period rollup.
func (s *Store) SaveSummary(ctx context.Context, sum payroll.InstallerSummary) (*SaveResult, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback() // Rollback if not committed

	result := &SaveResult{}

	if result.LedgerRows, err = insertLedger(ctx, tx, sum); err != nil {
		return nil, fmt.Errorf("failed to insert ledger rows for %s: %w", sum.Installer, err)
	}
	if result.ExtraRows, err = insertExtras(ctx, tx, sum); err != nil {
		return nil, fmt.Errorf("failed to insert extras for %s: %w", sum.Installer, err)
	}
	if sum.BackCharge.IsPositive() {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO back_charges (installer, back_charge_value, reason) VALUES ($1, $2, $3)`,
			sum.Installer, sum.BackCharge, nullString(sum.BackChargeReason))
		if err != nil {
			return nil, fmt.Errorf("failed to insert back charge for %s: %w", sum.Installer, err)
		}
		result.BackChargeRows = 1
	}

	err = tx.QueryRowContext(ctx, `
		INSERT INTO summary (installer, total_labor, total_expenses, total_extras,
			total_back_charges, total_price, report_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`,
		sum.Installer,
		sum.TotalLabor,
		sum.TotalExpenses,
		sum.ExtraTotal,
		sum.BackCharge,
		sum.FinalTotal,
		sum.PayDate.Format(parser.DateLayout),
	).Scan(&result.SummaryID)
	if err != nil {
		return nil, fmt.Errorf("failed to insert summary for %s: %w", sum.Installer, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return result, nil
}

func insertLedger(ctx context.Context, tx *sql.Tx, sum payroll.InstallerSummary) (int, error) {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO fechamento_semanal (
			installer, customer_name, job_number, labor, expenses, pay_date,
			job_date, prices_after_percent, discount, extras_details, back_charge
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	for _, row := range ledgerRows(sum) {
		_, err := stmt.ExecContext(ctx,
			row.Installer,
			row.CustomerName,
			row.JobNumber,
			row.Labor,
			row.Expenses,
			row.PayDate,
			row.JobDate,
			row.PricesAfterPercent,
			row.Discount,
			row.ExtrasDetails,
			row.BackCharge,
		)
		if err != nil {
			return 0, err
		}
	}
	return len(sum.Lines), nil
}

func insertExtras(ctx context.Context, tx *sql.Tx, sum payroll.InstallerSummary) (int, error) {
	if len(sum.Extras) == 0 {
		return 0, nil
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO extras (installer, extra_name, extra_value, extra_date) VALUES ($1, $2, $3, $4)`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	for _, extra := range sum.Extras {
		if _, err := stmt.ExecContext(ctx, sum.Installer, extra.Name, extra.Value, nullString(formatDate(extra))); err != nil {
			return 0, err
		}
	}
	return len(sum.Extras), nil
}

// LedgerRow is one persisted job record of fechamento_semanal
type LedgerRow struct {
	ID                 int64
	Installer          string
	CustomerName       string
	JobNumber          string
	Labor              decimal.Decimal
	Expenses           decimal.Decimal
	PayDate            string
	JobDate            sql.NullString // NULL when the sheet cell was not a date
	PricesAfterPercent decimal.Decimal
	Discount           decimal.Decimal
	ExtrasDetails      sql.NullString
	BackCharge         decimal.Decimal
}

// ledgerRows maps a summary onto the rows written to the ledger
func ledgerRows(sum payroll.InstallerSummary) []LedgerRow {
	details := ExtrasDetails(sum.Extras)
	rows := make([]LedgerRow, 0, len(sum.Lines))
	for _, line := range sum.Lines {
		payDate := sum.PayDate
		if !line.PayDate.IsZero() {
			payDate = line.PayDate
		}
		rows = append(rows, LedgerRow{
			Installer:          sum.Installer,
			CustomerName:       line.CustomerName,
			JobNumber:          line.JobNumber,
			Labor:              line.Labor,
			Expenses:           line.Expenses,
			PayDate:            payDate.Format(parser.DateLayout),
			JobDate:            ledgerDate(line.JobDate),
			PricesAfterPercent: line.PriceAfterDiscount,
			Discount:           line.Discount,
			ExtrasDetails:      nullString(details),
			BackCharge:         sum.BackCharge,
		})
	}
	return rows
}

// ledgerDate keeps only YYYY-MM-DD values; anything else is stored as NULL
func ledgerDate(s string) sql.NullString {
	if _, err := time.Parse(parser.DateLayout, s); err != nil {
		return sql.NullString{Valid: false}
	}
	return sql.NullString{String: s, Valid: true}
}

// ExtrasDetails flattens extras into the free-text ledger column
func ExtrasDetails(extras []payroll.ExtraService) string {
	parts := make([]string, 0, len(extras))
	for _, extra := range extras {
		part := fmt.Sprintf("%s: $%s", extra.Name, extra.Value.StringFixed(2))
		if date := formatDate(extra); date != "" {
			part += " on " + date
		}
		parts = append(parts, part)
	}
	return strings.Join(parts, "; ")
}

// Ledger reads back the ledger rows of an installer for a pay date (YYYY-MM-DD)
func (s *Store) Ledger(ctx context.Context, installer, payDate string) ([]LedgerRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, installer, customer_name, job_number, labor, expenses, pay_date,
			job_date, prices_after_percent, discount, extras_details, back_charge
		FROM fechamento_semanal
		WHERE installer = $1 AND pay_date = $2
		ORDER BY id
	`, installer, payDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []LedgerRow
	for rows.Next() {
		var r LedgerRow
		err := rows.Scan(
			&r.ID,
			&r.Installer,
			&r.CustomerName,
			&r.JobNumber,
			&r.Labor,
			&r.Expenses,
			&r.PayDate,
			&r.JobDate,
			&r.PricesAfterPercent,
			&r.Discount,
			&r.ExtrasDetails,
			&r.BackCharge,
		)
		if err != nil {
			return nil, err
		}
		results = append(results, r)
	}

	return results, rows.Err()
}

// SummaryRow is one persisted period rollup
type SummaryRow struct {
	ID               int64
	Installer        string
	TotalLabor       decimal.Decimal
	TotalExpenses    decimal.Decimal
	TotalExtras      decimal.Decimal
	TotalBackCharges decimal.Decimal
	TotalPrice       decimal.Decimal
	ReportDate       string
}

// ListSummaries returns the latest rollups, newest first
func (s *Store) ListSummaries(ctx context.Context, limit int) ([]SummaryRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, installer, total_labor, total_expenses, total_extras,
			total_back_charges, total_price, report_date
		FROM summary
		ORDER BY report_date DESC, id DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []SummaryRow
	for rows.Next() {
		var r SummaryRow
		err := rows.Scan(
			&r.ID,
			&r.Installer,
			&r.TotalLabor,
			&r.TotalExpenses,
			&r.TotalExtras,
			&r.TotalBackCharges,
			&r.TotalPrice,
			&r.ReportDate,
		)
		if err != nil {
			return nil, err
		}
		results = append(results, r)
	}

	return results, rows.Err()
}

// Table is the tabular result of an ad-hoc query
type Table struct {
	Columns []string
	Rows    [][]any
}

// Query runs a parameterized read and returns every row
func (s *Store) Query(ctx context.Context, query string, args ...any) (*Table, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	table := &Table{Columns: cols}
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		for i, v := range values {
			// NUMERIC and TEXT arrive as raw bytes from the driver
			if b, ok := v.([]byte); ok {
				values[i] = string(b)
			}
		}
		table.Rows = append(table.Rows, values)
	}

	return table, rows.Err()
}

func formatDate(extra payroll.ExtraService) string {
	if extra.Date.IsZero() {
		return ""
	}
	return extra.Date.Format(parser.DateLayout)
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{Valid: false}
	}
	return sql.NullString{String: s, Valid: true}
}
