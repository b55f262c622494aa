// Package warehouse owns the database side of the pipeline: staging tables,
// clean tables rebuilt by shadow-and-swap, table profiles, and the run log.
// SQLite (modernc.org/sqlite) is the default backend; Postgres (pgx) is the
// production one.
package warehouse

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
)

// ColumnType is the logical type of a clean-table column. Each backend maps
// it to a native column type.
type ColumnType int

// Logical column types.
const (
	TypeText ColumnType = iota
	TypeInteger
	TypeDecimal
	TypeFloat
	TypeDate
	TypeBool
)

// Column describes one clean-table column.
type Column struct {
	Name    string
	Type    ColumnType
	NotNull bool
}

// TableSpec describes a clean table. Rows handed to Rebuild must list values
// in Columns order. Each name in Indexes gets a single-column index.
type TableSpec struct {
	Name    string
	Columns []Column
	Indexes []string
}

// ColumnNames returns the column names in declaration order.
func (t TableSpec) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// StagingSpec describes an all-text staging table.
type StagingSpec struct {
	Table   string
	Columns []string
}

// ProfileSpec tells Profile which columns matter for a table.
type ProfileSpec struct {
	Table       string
	Key         string
	DateColumn  string
	NullColumns []string
}

// NullCount is the number of NULLs found in one column.
type NullCount struct {
	Column string `json:"column"`
	Count  int64  `json:"count"`
}

// Profile is the post-build summary of a clean table.
type Profile struct {
	Table        string      `json:"table"`
	Rows         int64       `json:"rows"`
	DistinctKeys int64       `json:"distinct_keys"`
	Nulls        []NullCount `json:"nulls,omitempty"`
	MinDate      *time.Time  `json:"min_date,omitempty"`
	MaxDate      *time.Time  `json:"max_date,omitempty"`
}

// RunStatus is the state of a pipeline_runs row.
type RunStatus string

// Run states.
const (
	RunRunning  RunStatus = "running"
	RunComplete RunStatus = "complete"
	RunFailed   RunStatus = "failed"
)

// RunEntry is one row of the run log.
type RunEntry struct {
	ID          string         `json:"id"`
	Dataset     string         `json:"dataset"`
	Status      RunStatus      `json:"status"`
	AsOf        time.Time      `json:"as_of"`
	StartedAt   time.Time      `json:"started_at"`
	CompletedAt *time.Time     `json:"completed_at,omitempty"`
	RowsIn      int64          `json:"rows_in"`
	RowsOut     int64          `json:"rows_out"`
	Error       string         `json:"error,omitempty"`
	Stats       map[string]any `json:"stats,omitempty"`
}

// RunResult is recorded when a run completes.
type RunResult struct {
	RowsIn  int64          `json:"rows_in"`
	RowsOut int64          `json:"rows_out"`
	Stats   map[string]any `json:"stats,omitempty"`
}

// Warehouse is the storage surface used by the pipeline and the CLI.
type Warehouse interface {
	// Migrate creates the staging tables and the run log if missing.
	Migrate(ctx context.Context, staging []StagingSpec) error
	// LoadStaging replaces the contents of a staging table. Empty cells are
	// stored as NULL.
	LoadStaging(ctx context.Context, spec StagingSpec, rows [][]string) (int64, error)
	// ReadStaging returns every staging row with NULL read back as "".
	ReadStaging(ctx context.Context, spec StagingSpec) ([][]string, error)
	// Rebuild replaces a clean table atomically: rows go into a shadow table
	// that is swapped in within one transaction.
	Rebuild(ctx context.Context, spec TableSpec, rows [][]any) (int64, error)
	Profile(ctx context.Context, spec ProfileSpec) (*Profile, error)

	StartRun(ctx context.Context, dataset string, asOf time.Time) (string, error)
	CompleteRun(ctx context.Context, id string, result RunResult) error
	FailRun(ctx context.Context, id string, msg string) error
	ListRuns(ctx context.Context, limit int) ([]RunEntry, error)

	Close() error
}

// Open connects to the warehouse named by driver ("sqlite" or "postgres").
func Open(ctx context.Context, driver, dsn string) (Warehouse, error) {
	switch driver {
	case "sqlite":
		return NewSQLite(dsn)
	case "postgres":
		return NewPostgres(ctx, dsn)
	default:
		return nil, eris.Errorf("warehouse: unknown driver %q", driver)
	}
}

const defaultRunLimit = 50

func runLimit(limit int) int {
	if limit <= 0 {
		return defaultRunLimit
	}
	return limit
}
