package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/datsun80zx/fechamento/internal/closing"
	"github.com/datsun80zx/fechamento/internal/config"
	"github.com/datsun80zx/fechamento/internal/payroll"
	"github.com/datsun80zx/fechamento/internal/report"
)

func runClosing(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts runOptions) {
	policy, err := resolvePolicy(cfg, opts.policy)
	if err != nil {
		fmt.Printf("❌ %v\n", err)
		return
	}
	discounts, err := cfg.DiscountTable()
	if err != nil {
		fmt.Printf("❌ %v\n", err)
		return
	}
	output := opts.output
	if output == "" {
		output = cfg.OutputDir
	}

	session := payroll.NewSession()
	if opts.adjustments != "" {
		session, err = payroll.LoadAdjustments(opts.adjustments)
		if err != nil {
			fmt.Printf("❌ %v\n", err)
			return
		}
	}

	closerOpts := []closing.Option{
		closing.WithPolicy(policy),
		closing.WithDiscounts(discounts),
		closing.WithTemplate(cfg.Template()),
		closing.WithLogger(logger),
	}
	if opts.save {
		s, ok := openStore(ctx, cfg)
		if !ok {
			return
		}
		defer s.Close()
		closerOpts = append(closerOpts, closing.WithSaver(s))
	}
	closer := closing.New(closerOpts...)

	fmt.Println("Starting weekly closing...")
	fmt.Printf("  Upload:      %s\n", opts.upload)
	fmt.Printf("  Policy:      %s\n", policy)
	if opts.adjustments != "" {
		fmt.Printf("  Adjustments: %s\n", opts.adjustments)
	}
	fmt.Println()

	batch, ok := prepare(ctx, closer, opts.upload)
	if !ok {
		return
	}

	for installer := range session.Adjustments {
		if !hasGroup(batch, installer) {
			fmt.Printf("⚠️  Adjustments for %s ignored: no jobs in this pay period\n", installer)
		}
	}

	rep, err := closer.Close(ctx, batch, session)
	if err != nil {
		fmt.Printf("❌ Closing interrupted: %v\n", err)
		return
	}

	if err := os.MkdirAll(output, 0o755); err != nil {
		fmt.Printf("❌ Error creating output directory: %v\n", err)
		return
	}

	fmt.Printf("Pay period %s  (session %s)\n", rep.Period, rep.SessionID)
	fmt.Println("══════════════════════════════════════════════════════════════════════════════")
	fmt.Printf("%-6s  %5s  %12s  %12s  %12s  %14s  %-6s\n",
		"ID", "Jobs", "After %", "Extras", "Back Charge", "TOTAL", "Saved")
	fmt.Println("──────────────────────────────────────────────────────────────────────────────")

	written := 0
	for i := range rep.Results {
		res := &rep.Results[i]
		if res.Err == nil {
			path := filepath.Join(output, res.Document.FileName)
			if err := os.WriteFile(path, res.Document.Content, 0o644); err != nil {
				res.Err = fmt.Errorf("failed to write %s: %w", path, err)
			} else {
				written++
			}
		}

		if res.Err != nil {
			fmt.Printf("%-6s  ❌ %v\n", res.Installer, res.Err)
			continue
		}

		saved := "-"
		if res.Saved != nil {
			saved = fmt.Sprintf("#%d", res.Saved.SummaryID)
		}
		sum := res.Summary
		fmt.Printf("%-6s  %5d  %12s  %12s  %12s  %14s  %-6s\n",
			sum.Installer,
			len(sum.Lines),
			formatCurrency(sum.TotalBeforeExtras),
			formatCurrency(sum.ExtraTotal),
			formatCurrency(sum.BackCharge),
			formatCurrency(sum.FinalTotal),
			saved,
		)
	}
	fmt.Println("══════════════════════════════════════════════════════════════════════════════")

	if failed := rep.Failed(); failed > 0 {
		fmt.Printf("⚠️  %d installer(s) failed; the others completed\n", failed)
	}
	absOutput, _ := filepath.Abs(output)
	fmt.Printf("✅ %d report(s) written to %s in %v\n", written, absOutput, rep.Duration.Round(time.Millisecond))

	if opts.weekly != "" {
		writeWeekly(opts.weekly, cfg.Template(), string(policy), rep)
	}

	fmt.Println()
	printWarnings(batch.Warnings)

	if !opts.save {
		fmt.Println("💡 Nothing was saved. Re-run with --save to append this closing to the ledger.")
	}
}

func hasGroup(batch *closing.Batch, installer string) bool {
	for _, g := range batch.Groups {
		if g.Installer == installer {
			return true
		}
	}
	return false
}

func writeWeekly(path string, tmpl report.Template, policy string, rep *closing.Report) {
	if !strings.HasSuffix(strings.ToLower(path), ".html") {
		path += ".html"
	}

	renderer, err := report.NewRenderer()
	if err != nil {
		fmt.Printf("❌ Error initializing renderer: %v\n", err)
		return
	}

	file, err := os.Create(path)
	if err != nil {
		fmt.Printf("❌ Error creating weekly report: %v\n", err)
		return
	}
	defer file.Close()

	weekly := report.BuildWeekly(tmpl, rep.Period, policy, rep.SessionID.String(), rep.Summaries(), time.Now())
	if err := renderer.RenderWeekly(file, weekly); err != nil {
		fmt.Printf("❌ Error rendering weekly report: %v\n", err)
		return
	}

	absPath, _ := filepath.Abs(path)
	fmt.Printf("✅ Weekly overview: %s\n", absPath)
}
