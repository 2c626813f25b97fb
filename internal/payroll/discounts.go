package payroll

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// DiscountTable maps a canonical installer code to its team discount rate
type DiscountTable map[string]decimal.Decimal

// DefaultDiscounts returns the standing team rates. Teams not listed pay no discount.
func DefaultDiscounts() DiscountTable {
	return DiscountTable{
		"PM2": decimal.RequireFromString("0.30"),
		"PM3": decimal.RequireFromString("0.20"),
		"PM4": decimal.RequireFromString("0.20"),
		"PM5": decimal.RequireFromString("0.20"),
		"PM6": decimal.RequireFromString("0.30"),
		"PM7": decimal.RequireFromString("0.20"),
		"PM8": decimal.RequireFromString("0.20"),
	}
}

// NewDiscountTable builds a table from configured rates, canonicalizing keys.
// Every rate must be in [0, 1).
func NewDiscountTable(rates map[string]float64) (DiscountTable, error) {
	t := make(DiscountTable, len(rates))
	seen := make(map[string]string, len(rates))
	for installer, rate := range rates {
		if err := checkDistinct(seen, installer); err != nil {
			return nil, fmt.Errorf("discounts: %w", err)
		}
		if rate < 0 || rate >= 1 {
			return nil, fmt.Errorf("discount for %s must be in [0, 1), got %v", installer, rate)
		}
		t[CanonicalInstaller(installer)] = decimal.NewFromFloat(rate)
	}
	return t, nil
}

// Rate returns the discount for installer, zero when the team is not listed
func (t DiscountTable) Rate(installer string) decimal.Decimal {
	if rate, ok := t[installer]; ok {
		return rate
	}
	return decimal.Zero
}

// Installers returns the configured team codes in numeric order
func (t DiscountTable) Installers() []string {
	ids := make([]string, 0, len(t))
	for id := range t {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(a, b int) bool {
		return installerLess(ids[a], ids[b])
	})
	return ids
}
