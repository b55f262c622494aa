// Package verify turns clean-table profiles into findings. Findings are
// informational: nothing here fails a run.
package verify

import (
	"fmt"
	"time"

	"github.com/sells-group/marketing-cli/internal/clean"
	"github.com/sells-group/marketing-cli/internal/warehouse"
)

// Severity grades a finding.
type Severity string

// Finding severities.
const (
	Info Severity = "info"
	Warn Severity = "warn"
)

// Finding is one observation about a clean table.
type Finding struct {
	Check    string   `json:"check"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

// Report collects the profile and findings for one dataset.
type Report struct {
	Dataset  string             `json:"dataset"`
	Profile  *warehouse.Profile `json:"profile"`
	Stats    *clean.Stats       `json:"stats,omitempty"`
	Findings []Finding          `json:"findings,omitempty"`
}

// Warnings counts findings at Warn severity.
func (r Report) Warnings() int {
	n := 0
	for _, f := range r.Findings {
		if f.Severity == Warn {
			n++
		}
	}
	return n
}

// Options tunes the checks.
type Options struct {
	// AsOf is the run date; clean dates after it are flagged.
	AsOf time.Time
	// NullRatioWarn flags optional columns whose NULL share exceeds it.
	// Zero disables the check.
	NullRatioWarn float64
}

// Check inspects a profile. stats is nil when the table was profiled without
// being rebuilt, in which case the staging comparison is skipped.
func Check(dataset string, p *warehouse.Profile, stats *clean.Stats, opts Options) Report {
	r := Report{Dataset: dataset, Profile: p, Stats: stats}
	add := func(check string, sev Severity, format string, args ...any) {
		r.Findings = append(r.Findings, Finding{Check: check, Severity: sev, Message: fmt.Sprintf(format, args...)})
	}

	if p.Rows == 0 {
		add("empty", Warn, "%s has no rows", p.Table)
	}

	if stats != nil {
		if delta := int64(stats.RowsIn) - p.Rows; delta != 0 {
			add("row_delta", Info, "%d staging rows, %d clean rows (%d dropped for missing key, %d duplicates)",
				stats.RowsIn, p.Rows, stats.Dropped, stats.Duplicates)
			if delta != int64(stats.Dropped+stats.Duplicates) {
				add("row_delta", Warn, "%d rows unaccounted for between staging and %s",
					delta-int64(stats.Dropped+stats.Duplicates), p.Table)
			}
		}
		if stats.Repaired > 0 {
			add("repaired", Info, "%d rows had values clamped or nulled", stats.Repaired)
		}
		if stats.UnparsedDates > 0 {
			add("unparsed_dates", Warn, "%d dates matched no known format and were nulled", stats.UnparsedDates)
		}
	}

	if dup := p.Rows - p.DistinctKeys; dup > 0 {
		add("duplicate_keys", Warn, "%d rows share a key with another row", dup)
	}

	if p.MaxDate != nil && !opts.AsOf.IsZero() && p.MaxDate.After(opts.AsOf) {
		add("future_dates", Warn, "latest date %s is after as-of %s",
			p.MaxDate.Format(time.DateOnly), opts.AsOf.Format(time.DateOnly))
	}

	if opts.NullRatioWarn > 0 && p.Rows > 0 {
		for _, n := range p.Nulls {
			ratio := float64(n.Count) / float64(p.Rows)
			if ratio > opts.NullRatioWarn {
				add("null_ratio", Warn, "%s is %.1f%% null (%d of %d)", n.Column, ratio*100, n.Count, p.Rows)
			}
		}
	}

	return r
}
