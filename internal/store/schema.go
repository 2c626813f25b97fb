package store

import (
	"context"
	"fmt"
)

// Money and rates use unconstrained NUMERIC so computed amounts such as
// 100.01 * 0.7 = 70.007 read back exactly as written.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS fechamento_semanal (
		id                   BIGSERIAL PRIMARY KEY,
		installer            TEXT NOT NULL,
		customer_name        TEXT NOT NULL,
		job_number           TEXT NOT NULL,
		labor                NUMERIC NOT NULL,
		expenses             NUMERIC NOT NULL,
		pay_date             TEXT NOT NULL,
		job_date             TEXT,
		prices_after_percent NUMERIC NOT NULL,
		discount             NUMERIC NOT NULL,
		extras_details       TEXT,
		back_charge          NUMERIC NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS extras (
		id          BIGSERIAL PRIMARY KEY,
		installer   TEXT NOT NULL,
		extra_name  TEXT NOT NULL,
		extra_value NUMERIC NOT NULL,
		extra_date  TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS back_charges (
		id                BIGSERIAL PRIMARY KEY,
		installer         TEXT NOT NULL,
		back_charge_value NUMERIC NOT NULL,
		reason            TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS summary (
		id                 BIGSERIAL PRIMARY KEY,
		installer          TEXT NOT NULL,
		total_labor        NUMERIC NOT NULL,
		total_expenses     NUMERIC NOT NULL,
		total_extras       NUMERIC NOT NULL,
		total_back_charges NUMERIC NOT NULL,
		total_price        NUMERIC NOT NULL,
		report_date        TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_fechamento_semanal_installer_pay_date
		ON fechamento_semanal (installer, pay_date)`,

	// Tables created with scaled NUMERIC(p,s) columns are widened in place.
	`ALTER TABLE fechamento_semanal
		ALTER COLUMN labor TYPE NUMERIC,
		ALTER COLUMN expenses TYPE NUMERIC,
		ALTER COLUMN prices_after_percent TYPE NUMERIC,
		ALTER COLUMN discount TYPE NUMERIC,
		ALTER COLUMN back_charge TYPE NUMERIC,
		ALTER COLUMN job_date DROP NOT NULL`,
	`ALTER TABLE extras ALTER COLUMN extra_value TYPE NUMERIC`,
	`ALTER TABLE back_charges ALTER COLUMN back_charge_value TYPE NUMERIC`,
	`ALTER TABLE summary
		ALTER COLUMN total_labor TYPE NUMERIC,
		ALTER COLUMN total_expenses TYPE NUMERIC,
		ALTER COLUMN total_extras TYPE NUMERIC,
		ALTER COLUMN total_back_charges TYPE NUMERIC,
		ALTER COLUMN total_price TYPE NUMERIC`,
}

// Migrate creates the ledger tables when they do not exist yet
func (s *Store) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}
