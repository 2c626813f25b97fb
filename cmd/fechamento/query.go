package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/datsun80zx/fechamento/internal/store"
)

func runQuery(ctx context.Context, s *store.Store, query string, args []string) {
	params := make([]any, len(args))
	for i, a := range args {
		params[i] = a
	}

	table, err := s.Query(ctx, query, params...)
	if err != nil {
		fmt.Printf("❌ Query failed: %v\n", err)
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join(table.Columns, "\t"))
	for _, row := range table.Rows {
		fmt.Fprintln(w, strings.Join(formatCells(row), "\t"))
	}
	w.Flush()

	fmt.Printf("(%d row(s))\n", len(table.Rows))
}

func formatCells(row []any) []string {
	cells := make([]string, len(row))
	for i, v := range row {
		if v == nil {
			cells[i] = "NULL"
			continue
		}
		cells[i] = fmt.Sprint(v)
	}
	return cells
}
