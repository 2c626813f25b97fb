// Package closing runs the weekly closing: upload, period filter, grouping,
// per-installer calculation, PDF assembly and persistence.
package closing

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/datsun80zx/fechamento/internal/parser"
	"github.com/datsun80zx/fechamento/internal/payroll"
	"github.com/datsun80zx/fechamento/internal/period"
	"github.com/datsun80zx/fechamento/internal/report"
	"github.com/datsun80zx/fechamento/internal/store"
)

// Saver persists one installer's closing
type Saver interface {
	SaveSummary(ctx context.Context, sum payroll.InstallerSummary) (*store.SaveResult, error)
}

// Closer handles the closing of an uploaded spreadsheet
type Closer struct {
	saver     Saver // nil disables persistence
	parser    *parser.SpreadsheetParser
	discounts payroll.DiscountTable
	policy    period.Policy
	template  report.Template
	logger    *slog.Logger
	now       func() time.Time
}

// Option customizes a Closer
type Option func(*Closer)

// WithSaver enables persistence
func WithSaver(s Saver) Option {
	return func(c *Closer) { c.saver = s }
}

func WithDiscounts(d payroll.DiscountTable) Option {
	return func(c *Closer) { c.discounts = d }
}

func WithPolicy(p period.Policy) Option {
	return func(c *Closer) { c.policy = p }
}

func WithTemplate(t report.Template) Option {
	return func(c *Closer) { c.template = t }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Closer) { c.logger = l }
}

// WithClock sets the processing date source
func WithClock(now func() time.Time) Option {
	return func(c *Closer) { c.now = now }
}

// New creates a closer with the default discounts, the next-Friday policy and
// the default report template.
func New(opts ...Option) *Closer {
	c := &Closer{
		parser:    parser.NewSpreadsheetParser(),
		discounts: payroll.DefaultDiscounts(),
		policy:    period.NextFriday,
		template:  report.DefaultTemplate(),
		logger:    slog.Default(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Batch is an upload filtered to one pay period and grouped by installer
type Batch struct {
	FileName   string
	SourceHash string
	Period     *period.Selection
	Groups     []payroll.Group
	Warnings   []string
}

// Prepare reads and normalizes the upload at path, selects the pay period and
// groups the selected rows. Missing columns, an upload without pay dates and
// an empty period all halt here.
func (c *Closer) Prepare(ctx context.Context, path string) (*Batch, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	hash, err := FileHash(path)
	if err != nil {
		return nil, fmt.Errorf("failed to hash upload: %w", err)
	}

	res, err := c.parser.ParseFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}

	batch := &Batch{
		FileName:   filepath.Base(path),
		SourceHash: hash,
		Warnings:   checkUpload(res),
	}

	sel, err := period.Select(res.Jobs, c.policy, c.now())
	if err != nil {
		return nil, err
	}
	batch.Period = sel
	batch.Groups = payroll.GroupByInstaller(sel.Jobs)

	c.logger.Info("upload prepared",
		"file", batch.FileName,
		"sha256", hash,
		"rows", len(res.Jobs),
		"period", sel.Label(),
		"policy", string(c.policy),
		"selected", len(sel.Jobs),
		"installers", len(batch.Groups),
		"warnings", len(batch.Warnings),
	)

	return batch, nil
}

// Result is the outcome for one installer
type Result struct {
	Installer string
	Summary   payroll.InstallerSummary
	Document  *report.Document
	Saved     *store.SaveResult
	Err       error
}

// Report contains the results of one closing run
type Report struct {
	SessionID uuid.UUID
	Period    string
	Results   []Result
	Duration  time.Duration
}

// Failed counts installers whose closing did not complete
func (r *Report) Failed() int {
	n := 0
	for _, res := range r.Results {
		if res.Err != nil {
			n++
		}
	}
	return n
}

// Summaries returns the computed summaries of installers that completed
func (r *Report) Summaries() []payroll.InstallerSummary {
	out := make([]payroll.InstallerSummary, 0, len(r.Results))
	for _, res := range r.Results {
		if res.Err == nil {
			out = append(out, res.Summary)
		}
	}
	return out
}

// Close computes, renders and (when a saver is set) persists every installer
// of the batch. Installers are independent: a failure is recorded on that
// installer's result and the remaining installers still run. session may be nil.
func (c *Closer) Close(ctx context.Context, batch *Batch, session *payroll.Session) (*Report, error) {
	startTime := time.Now()

	if session == nil {
		session = payroll.NewSession()
	}

	rep := &Report{
		SessionID: session.ID,
		Period:    batch.Period.Label(),
		Results:   make([]Result, 0, len(batch.Groups)),
	}

	for _, group := range batch.Groups {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		res := c.closeInstaller(ctx, group, batch.Period.Target, session.Lookup(group.Installer))
		if res.Err != nil {
			c.logger.Error("installer closing failed",
				"session", session.ID, "installer", group.Installer, "err", res.Err)
		}
		rep.Results = append(rep.Results, res)
	}

	rep.Duration = time.Since(startTime)
	c.logger.Info("closing finished",
		"session", session.ID,
		"period", rep.Period,
		"installers", len(rep.Results),
		"failed", rep.Failed(),
		"duration", rep.Duration,
	)

	return rep, nil
}

func (c *Closer) closeInstaller(ctx context.Context, group payroll.Group, payDate time.Time, adj *payroll.Adjustment) Result {
	sum := payroll.Calculate(group, payDate, adj, c.discounts)
	res := Result{Installer: group.Installer, Summary: sum}

	doc, err := report.Assemble(c.template, sum)
	if err != nil {
		res.Err = fmt.Errorf("failed to assemble report for %s: %w", group.Installer, err)
		return res
	}
	res.Document = doc

	if c.saver != nil {
		saved, err := c.saver.SaveSummary(ctx, sum)
		if err != nil {
			res.Err = fmt.Errorf("failed to save %s: %w", group.Installer, err)
			return res
		}
		res.Saved = saved
	}

	c.logger.Debug("installer closed",
		"installer", group.Installer,
		"jobs", len(sum.Lines),
		"total", sum.FinalTotal.StringFixed(2),
		"report", doc.FileName,
	)

	return res
}
