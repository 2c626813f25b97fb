package main

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/datsun80zx/fechamento/internal/config"
	"github.com/datsun80zx/fechamento/internal/period"
)

func TestFormatCurrency(t *testing.T) {
	cases := map[string]string{
		"830":    "$830.00",
		"-40":    "($40.00)",
		"0":      "$0.00",
		"12.345": "$12.35",
	}
	for in, want := range cases {
		if got := formatCurrency(decimal.RequireFromString(in)); got != want {
			t.Fatalf("formatCurrency(%s)=%s want %s", in, got, want)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("Alice", 25); got != "Alice" {
		t.Fatalf("got=%s", got)
	}
	if got := truncate(strings.Repeat("x", 30), 12); got != "xxxxxxxxx..." {
		t.Fatalf("got=%s", got)
	}
	// multi-byte names are cut on rune boundaries
	if got := truncate("Conceição Araújo", 12); got != "Conceição..." {
		t.Fatalf("got=%s", got)
	}
}

func TestFormatCells(t *testing.T) {
	got := formatCells([]any{"PM3", int64(2), nil})
	if strings.Join(got, "|") != "PM3|2|NULL" {
		t.Fatalf("cells=%v", got)
	}
}

func TestResolvePolicy(t *testing.T) {
	cfg := &config.Config{Policy: string(period.MostRecent)}

	p, err := resolvePolicy(cfg, "")
	if err != nil || p != period.MostRecent {
		t.Fatalf("p=%s err=%v", p, err)
	}
	p, err = resolvePolicy(cfg, "next-friday")
	if err != nil || p != period.NextFriday {
		t.Fatalf("p=%s err=%v", p, err)
	}
	if _, err := resolvePolicy(cfg, "payday"); err == nil {
		t.Fatalf("expected error for unknown policy")
	}
}
