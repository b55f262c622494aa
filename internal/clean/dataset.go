// Package clean turns staged text rows into typed clean-table rows. There is
// one cleaner per dataset; each is a pure function of its staging rows and
// the run options, and cleaners never look at each other's data.
package clean

import (
	"time"

	"github.com/sells-group/marketing-cli/internal/warehouse"
)

// Options carries per-run inputs that are not in the staging data.
type Options struct {
	// AsOf anchors date arithmetic such as customer tenure.
	AsOf time.Time
}

// Stats counts what a cleaner did to its input.
type Stats struct {
	RowsIn     int `json:"rows_in"`
	RowsOut    int `json:"rows_out"`
	Dropped    int `json:"dropped"`    // missing a required key
	Duplicates int `json:"duplicates"` // discarded by deduplication
	Repaired   int `json:"repaired"`   // rows whose values were clamped or nulled
	// UnparsedDates counts non-blank date text matching no known layout.
	UnparsedDates int `json:"unparsed_dates"`
}

// Map returns the stats as run-log metadata.
func (s Stats) Map() map[string]any {
	return map[string]any{
		"rows_in":        s.RowsIn,
		"rows_out":       s.RowsOut,
		"dropped":        s.Dropped,
		"duplicates":     s.Duplicates,
		"repaired":       s.Repaired,
		"unparsed_dates": s.UnparsedDates,
	}
}

// Result is the output of one cleaner: rows in Table() column order, sorted
// by key.
type Result struct {
	Rows  [][]any
	Stats Stats
}

// Dataset is implemented by each of the five cleaners.
type Dataset interface {
	// Name is the short identifier used on the command line, e.g. "paid_ads".
	Name() string

	// Staging describes the source table.
	Staging() warehouse.StagingSpec

	// Table describes the clean table the rows are written to.
	Table() warehouse.TableSpec

	// Profile names the key, date and optional columns the verifier checks.
	Profile() warehouse.ProfileSpec

	// Clean converts staging rows, in Staging().Columns order, into clean rows.
	Clean(rows [][]string, opts Options) (*Result, error)
}
