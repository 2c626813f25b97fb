// Package period selects the job rows that belong to a pay period.
package period

import (
	"errors"
	"fmt"
	"time"

	"github.com/datsun80zx/fechamento/internal/parser"
)

// Policy names a target pay date selection strategy
type Policy string

const (
	// NextFriday targets the next Friday on or after the processing date.
	NextFriday Policy = "next-friday"
	// MostRecent targets the latest pay date present in the upload.
	MostRecent Policy = "most-recent"
)

// Policies lists every supported strategy
var Policies = []Policy{NextFriday, MostRecent}

// ParsePolicy validates a policy name from config or flags
func ParsePolicy(s string) (Policy, error) {
	for _, p := range Policies {
		if string(p) == s {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown period policy %q (expected %s or %s)", s, NextFriday, MostRecent)
}

// ErrNoPayDates means not a single row carried a parseable pay date.
var ErrNoPayDates = errors.New("no valid pay dates found in upload")

// EmptyPeriodError is a warning: nothing matched the target pay date.
type EmptyPeriodError struct {
	Policy Policy
	Target time.Time
}

func (e *EmptyPeriodError) Error() string {
	return fmt.Sprintf("no payments found for %s (%s)", e.Target.Format(parser.DateLayout), e.Policy)
}

// Selection is the filtered set of rows for one pay period
type Selection struct {
	Policy Policy
	Target time.Time
	Jobs   []parser.JobRow
}

// Label is the pay period as YYYY-MM-DD
func (s *Selection) Label() string {
	return s.Target.Format(parser.DateLayout)
}

// Select applies policy to jobs. now is the processing date, only used by NextFriday.
func Select(jobs []parser.JobRow, policy Policy, now time.Time) (*Selection, error) {
	latest, ok := maxPayDate(jobs)
	if !ok {
		return nil, ErrNoPayDates
	}

	var target time.Time
	switch policy {
	case NextFriday:
		target = NextFridayFrom(now)
	case MostRecent:
		target = latest
	default:
		return nil, fmt.Errorf("unknown period policy %q", policy)
	}

	sel := &Selection{Policy: policy, Target: target}
	for _, job := range jobs {
		if job.PayDate != nil && sameDay(*job.PayDate, target) {
			sel.Jobs = append(sel.Jobs, job)
		}
	}

	if len(sel.Jobs) == 0 {
		return nil, &EmptyPeriodError{Policy: policy, Target: target}
	}
	return sel, nil
}

// NextFridayFrom returns the calendar date of the next Friday on or after now.
func NextFridayFrom(now time.Time) time.Time {
	days := (int(time.Friday) - int(now.Weekday()) + 7) % 7
	d := now.AddDate(0, 0, days)
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
}

func maxPayDate(jobs []parser.JobRow) (time.Time, bool) {
	var latest time.Time
	found := false
	for _, job := range jobs {
		if job.PayDate == nil {
			continue
		}
		if !found || job.PayDate.After(latest) {
			latest = *job.PayDate
			found = true
		}
	}
	return latest, found
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
