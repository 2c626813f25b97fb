package main

import (
	"context"
	"fmt"

	"github.com/datsun80zx/fechamento/internal/store"
)

func listHistory(ctx context.Context, s *store.Store, limit int) {
	summaries, err := s.ListSummaries(ctx, limit)
	if err != nil {
		fmt.Printf("Error listing closings: %v\n", err)
		return
	}

	if len(summaries) == 0 {
		fmt.Println("No closings found")
		fmt.Println()
		fmt.Println("💡 Save your first closing with:")
		fmt.Println("   fechamento run weekly.xlsx --save")
		return
	}

	fmt.Println("Closing History")
	fmt.Println("══════════════════════════════════════════════════════════════════════════════")
	fmt.Printf("%-6s  %-10s  %-6s  %12s  %12s  %12s  %12s\n",
		"ID", "Pay Date", "Inst.", "Labor", "Extras", "Back Charge", "TOTAL")
	fmt.Println("──────────────────────────────────────────────────────────────────────────────")

	for _, row := range summaries {
		fmt.Printf("%-6d  %-10s  %-6s  %12s  %12s  %12s  %12s\n",
			row.ID,
			row.ReportDate,
			row.Installer,
			formatCurrency(row.TotalLabor),
			formatCurrency(row.TotalExtras),
			formatCurrency(row.TotalBackCharges),
			formatCurrency(row.TotalPrice),
		)
	}
	fmt.Println("══════════════════════════════════════════════════════════════════════════════")
	fmt.Printf("Total: %d closing(s)\n", len(summaries))
}
