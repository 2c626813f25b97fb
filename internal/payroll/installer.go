package payroll

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/datsun80zx/fechamento/internal/parser"
)

const installerPrefix = "PM"

var firstDigits = regexp.MustCompile(`\d+`)

// CanonicalInstaller maps a raw installer label onto its team code: the first
// run of digits prefixed with "PM". Labels without digits land in PM0.
func CanonicalInstaller(raw string) string {
	digits := firstDigits.FindString(raw)
	if digits == "" {
		digits = "0"
	}
	return installerPrefix + digits
}

// installerLess orders canonical codes by the numeric value of their digits
// without converting them, so runs of any length compare correctly. Codes
// with equal value (PM7, PM07) fall back to plain string order.
func installerLess(a, b string) bool {
	da := strings.TrimLeft(firstDigits.FindString(a), "0")
	db := strings.TrimLeft(firstDigits.FindString(b), "0")
	if len(da) != len(db) {
		return len(da) < len(db)
	}
	if da != db {
		return da < db
	}
	return a < b
}

// checkDistinct fails when two raw labels canonicalize to the same team code
func checkDistinct(seen map[string]string, raw string) error {
	id := CanonicalInstaller(raw)
	if prev, ok := seen[id]; ok {
		a, b := prev, raw
		if b < a {
			a, b = b, a
		}
		return fmt.Errorf("installers %q and %q both map to %s", a, b, id)
	}
	seen[id] = raw
	return nil
}

// Group holds one installer's jobs for the period, in upload order
type Group struct {
	Installer string
	Jobs      []parser.JobRow
}

// GroupByInstaller partitions jobs by canonical installer. Groups are ordered
// by numeric suffix, so PM10 sorts after PM9.
func GroupByInstaller(jobs []parser.JobRow) []Group {
	index := make(map[string]int)
	var groups []Group

	for _, job := range jobs {
		id := CanonicalInstaller(job.Installer)
		job.Installer = id

		i, ok := index[id]
		if !ok {
			i = len(groups)
			index[id] = i
			groups = append(groups, Group{Installer: id})
		}
		groups[i].Jobs = append(groups[i].Jobs, job)
	}

	sort.SliceStable(groups, func(a, b int) bool {
		return installerLess(groups[a].Installer, groups[b].Installer)
	})

	return groups
}
