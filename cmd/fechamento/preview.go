package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/datsun80zx/fechamento/internal/closing"
	"github.com/datsun80zx/fechamento/internal/config"
	"github.com/datsun80zx/fechamento/internal/parser"
	"github.com/datsun80zx/fechamento/internal/payroll"
	"github.com/datsun80zx/fechamento/internal/period"
)

func runPreview(ctx context.Context, cfg *config.Config, upload, policyArg string) {
	policy, err := resolvePolicy(cfg, policyArg)
	if err != nil {
		fmt.Printf("❌ %v\n", err)
		return
	}
	discounts, err := cfg.DiscountTable()
	if err != nil {
		fmt.Printf("❌ %v\n", err)
		return
	}

	closer := closing.New(
		closing.WithPolicy(policy),
		closing.WithDiscounts(discounts),
		closing.WithLogger(slog.Default()),
	)

	batch, ok := prepare(ctx, closer, upload)
	if !ok {
		return
	}

	fmt.Printf("Pay period %s (%s)\n", batch.Period.Label(), policy)
	fmt.Printf("  Upload: %s  sha256 %s\n", batch.FileName, batch.SourceHash[:12])
	fmt.Println()

	for _, group := range batch.Groups {
		sum := payroll.Calculate(group, batch.Period.Target, nil, discounts)

		fmt.Printf("%s  %d job(s)  discount %s%%\n",
			group.Installer, len(group.Jobs), sum.Discount.Mul(decimal.NewFromInt(100)).StringFixed(0))
		fmt.Println("──────────────────────────────────────────────────────────────────────────────")
		fmt.Printf("%-5s  %-25s  %-12s  %12s  %12s  %-10s\n",
			"Row", "Customer", "Job #", "Labor", "Despesas", "Job Date")
		for _, line := range sum.Lines {
			fmt.Printf("%-5d  %-25s  %-12s  %12s  %12s  %-10s\n",
				line.Row,
				truncate(line.CustomerName, 25),
				truncate(line.JobNumber, 12),
				formatCurrency(line.Labor),
				formatCurrency(line.Expenses),
				line.JobDate,
			)
		}
		fmt.Printf("Total before adjustments: %s\n", formatCurrency(sum.FinalTotal))
		fmt.Println()
	}

	printWarnings(batch.Warnings)

	fmt.Println("💡 Next steps:")
	fmt.Println("   Edit an adjustments file (see config/adjustments.example.yaml), then:")
	fmt.Printf("   fechamento run %s --adjustments adjustments.yaml --save\n", upload)
}

func resolvePolicy(cfg *config.Config, arg string) (period.Policy, error) {
	if arg == "" {
		return cfg.PeriodPolicy(), nil
	}
	return period.ParsePolicy(arg)
}

// prepare runs the upload stage and prints why it halted, if it did
func prepare(ctx context.Context, closer *closing.Closer, upload string) (*closing.Batch, bool) {
	batch, err := closer.Prepare(ctx, upload)
	if err == nil {
		return batch, true
	}

	var empty *period.EmptyPeriodError
	var missing *parser.MissingColumnsError
	var unsupported *parser.UnsupportedFormatError
	switch {
	case errors.As(err, &empty):
		fmt.Printf("⚠️  No payments found for %s (%s). No reports were generated.\n",
			empty.Target.Format(parser.DateLayout), empty.Policy)
		if empty.Policy == period.NextFriday {
			fmt.Println("   Try --policy most-recent to close the latest pay date in the upload.")
		}
	case errors.As(err, &missing):
		fmt.Printf("❌ Upload is missing required columns: %s\n", strings.Join(missing.Columns, ", "))
	case errors.As(err, &unsupported):
		fmt.Printf("❌ %v\n", unsupported)
	case errors.Is(err, period.ErrNoPayDates):
		fmt.Println("❌ No valid pay dates found in the upload. Check the Pay Date column.")
	default:
		fmt.Printf("❌ Failed to read upload: %v\n", err)
	}
	return nil, false
}

func printWarnings(warnings []string) {
	if len(warnings) == 0 {
		return
	}
	fmt.Println("⚠️  Warnings:")
	for _, warning := range warnings {
		fmt.Printf("   - %s\n", warning)
	}
	fmt.Println()
}

func formatCurrency(amount decimal.Decimal) string {
	if amount.IsNegative() {
		return fmt.Sprintf("($%s)", amount.Neg().StringFixed(2))
	}
	return fmt.Sprintf("$%s", amount.StringFixed(2))
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}
