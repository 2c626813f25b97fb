package payroll

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ExtraService is a one-off charge entered by the operator for an installer
type ExtraService struct {
	Name  string
	Value decimal.Decimal
	Date  time.Time
}

// Adjustment holds the operator's edits for one installer. Labor and expense
// overrides are keyed by spreadsheet row number.
type Adjustment struct {
	Labor            map[int]decimal.Decimal
	Expenses         map[int]decimal.Decimal
	Extras           []ExtraService
	BackCharge       decimal.Decimal
	BackChargeReason string
}

func newAdjustment() *Adjustment {
	return &Adjustment{
		Labor:    make(map[int]decimal.Decimal),
		Expenses: make(map[int]decimal.Decimal),
	}
}

// SetLabor overrides the labor of the job at row; negatives are floored to zero
func (a *Adjustment) SetLabor(row int, v decimal.Decimal) {
	a.Labor[row] = Clamp(v)
}

// SetExpenses overrides the expenses of the job at row; negatives are floored to zero
func (a *Adjustment) SetExpenses(row int, v decimal.Decimal) {
	a.Expenses[row] = Clamp(v)
}

// AddExtra appends an extra service. Names are not validated.
func (a *Adjustment) AddExtra(name string, value decimal.Decimal, date time.Time) {
	a.Extras = append(a.Extras, ExtraService{Name: name, Value: Clamp(value), Date: date})
}

// SetBackCharge replaces the installer's back charge for the session
func (a *Adjustment) SetBackCharge(v decimal.Decimal, reason string) {
	a.BackCharge = Clamp(v)
	a.BackChargeReason = reason
}

// Session is the in-progress state of one report-generation run
type Session struct {
	ID          uuid.UUID
	Adjustments map[string]*Adjustment
}

func NewSession() *Session {
	return &Session{
		ID:          uuid.New(),
		Adjustments: make(map[string]*Adjustment),
	}
}

// For returns the adjustment record for installer, creating it on first use
func (s *Session) For(installer string) *Adjustment {
	id := CanonicalInstaller(installer)
	adj, ok := s.Adjustments[id]
	if !ok {
		adj = newAdjustment()
		s.Adjustments[id] = adj
	}
	return adj
}

// Lookup returns the adjustment for installer without creating one
func (s *Session) Lookup(installer string) *Adjustment {
	if s == nil {
		return nil
	}
	return s.Adjustments[installer]
}
