package warehouse

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"github.com/sells-group/marketing-cli/internal/db"
)

// SQLite implements Warehouse using modernc.org/sqlite.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLite, error) {
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	// One writer; also keeps ":memory:" databases on a single connection.
	conn.SetMaxOpenConns(1)
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := conn.Exec(pragma); err != nil {
			conn.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLite{db: conn}, nil
}

const sqliteRunLog = `
CREATE TABLE IF NOT EXISTS pipeline_runs (
	id           TEXT PRIMARY KEY,
	dataset      TEXT NOT NULL,
	status       TEXT NOT NULL DEFAULT 'running',
	as_of        TEXT NOT NULL,
	started_at   DATETIME NOT NULL,
	completed_at DATETIME,
	rows_in      INTEGER NOT NULL DEFAULT 0,
	rows_out     INTEGER NOT NULL DEFAULT 0,
	error        TEXT,
	stats        TEXT
);

CREATE INDEX IF NOT EXISTS idx_pipeline_runs_dataset ON pipeline_runs(dataset);
CREATE INDEX IF NOT EXISTS idx_pipeline_runs_started_at ON pipeline_runs(started_at);
`

// Migrate creates the staging tables and the run log.
func (s *SQLite) Migrate(ctx context.Context, staging []StagingSpec) error {
	if _, err := s.db.ExecContext(ctx, sqliteRunLog); err != nil {
		return eris.Wrap(err, "sqlite: migrate run log")
	}
	for _, spec := range staging {
		if _, err := s.db.ExecContext(ctx, createStaging(spec)); err != nil {
			return eris.Wrapf(err, "sqlite: create staging %s", spec.Table)
		}
	}
	return nil
}

// Close closes the database.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// LoadStaging replaces the rows of a staging table.
func (s *SQLite) LoadStaging(ctx context.Context, spec StagingSpec, rows [][]string) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin staging load")
	}
	n, err := s.loadStaging(ctx, tx, spec, rows)
	if err != nil {
		_ = tx.Rollback()
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, eris.Wrapf(err, "sqlite: commit staging %s", spec.Table)
	}
	return n, nil
}

func (s *SQLite) loadStaging(ctx context.Context, tx *sql.Tx, spec StagingSpec, rows [][]string) (int64, error) {
	if _, err := tx.ExecContext(ctx, "DELETE FROM "+db.SanitizeTable(spec.Table)); err != nil {
		return 0, eris.Wrapf(err, "sqlite: clear staging %s", spec.Table)
	}
	stmt, err := tx.PrepareContext(ctx, sqliteDialect.insert(spec.Table, spec.Columns))
	if err != nil {
		return 0, eris.Wrapf(err, "sqlite: prepare staging insert %s", spec.Table)
	}
	defer stmt.Close()

	for i, row := range rows {
		if _, err := stmt.ExecContext(ctx, stagingRow(row, len(spec.Columns))...); err != nil {
			return 0, eris.Wrapf(err, "sqlite: insert staging %s row %d", spec.Table, i+1)
		}
	}
	return int64(len(rows)), nil
}

// ReadStaging returns all staging rows.
func (s *SQLite) ReadStaging(ctx context.Context, spec StagingSpec) ([][]string, error) {
	rows, err := s.db.QueryContext(ctx, selectStaging(spec))
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: read staging %s", spec.Table)
	}
	defer rows.Close()

	var out [][]string
	for rows.Next() {
		rec := make([]string, len(spec.Columns))
		dest := make([]any, len(rec))
		for i := range rec {
			dest[i] = &rec[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, eris.Wrapf(err, "sqlite: scan staging %s", spec.Table)
		}
		out = append(out, rec)
	}
	return out, eris.Wrapf(rows.Err(), "sqlite: iterate staging %s", spec.Table)
}

// Rebuild swaps in a freshly built clean table.
func (s *SQLite) Rebuild(ctx context.Context, spec TableSpec, rows [][]any) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin rebuild")
	}
	n, err := s.rebuild(ctx, tx, spec, rows)
	if err != nil {
		_ = tx.Rollback()
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, eris.Wrapf(err, "sqlite: commit rebuild %s", spec.Name)
	}
	return n, nil
}

func (s *SQLite) rebuild(ctx context.Context, tx *sql.Tx, spec TableSpec, rows [][]any) (int64, error) {
	shadow := shadowName(spec.Name)
	for _, q := range []string{dropTable(shadow), sqliteDialect.createTable(shadow, spec.Columns)} {
		if _, err := tx.ExecContext(ctx, q); err != nil {
			return 0, eris.Wrapf(err, "sqlite: prepare shadow %s", shadow)
		}
	}

	stmt, err := tx.PrepareContext(ctx, sqliteDialect.insert(shadow, spec.ColumnNames()))
	if err != nil {
		return 0, eris.Wrapf(err, "sqlite: prepare insert %s", shadow)
	}
	defer stmt.Close()

	for i, row := range rows {
		args := make([]any, len(row))
		for j, v := range row {
			args[j] = sqliteValue(v)
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return 0, eris.Wrapf(err, "sqlite: insert %s row %d", shadow, i+1)
		}
	}

	swap := append([]string{dropTable(spec.Name), renameTable(shadow, spec.Name)}, createIndexes(spec)...)
	for _, q := range swap {
		if _, err := tx.ExecContext(ctx, q); err != nil {
			return 0, eris.Wrapf(err, "sqlite: swap %s", spec.Name)
		}
	}
	return int64(len(rows)), nil
}

// sqliteValue maps clean-row values onto SQLite storage: decimals as TEXT at
// their own scale ("1.50" stays "1.50"), dates as YYYY-MM-DD.
func sqliteValue(v any) any {
	switch x := v.(type) {
	case decimal.Decimal:
		return x.StringFixed(max(0, -x.Exponent()))
	case time.Time:
		return x.Format(time.DateOnly)
	default:
		return v
	}
}

// Profile summarizes a clean table.
func (s *SQLite) Profile(ctx context.Context, spec ProfileSpec) (*Profile, error) {
	p := &Profile{Table: spec.Table}
	counts := make([]int64, len(spec.NullColumns))
	var minDate, maxDate sql.NullString

	dest := []any{&p.Rows, &p.DistinctKeys}
	for i := range counts {
		dest = append(dest, &counts[i])
	}
	if spec.DateColumn != "" {
		dest = append(dest, &minDate, &maxDate)
	}

	if err := s.db.QueryRowContext(ctx, sqliteDialect.profileSQL(spec)).Scan(dest...); err != nil {
		return nil, eris.Wrapf(err, "sqlite: profile %s", spec.Table)
	}
	for i, c := range spec.NullColumns {
		p.Nulls = append(p.Nulls, NullCount{Column: c, Count: counts[i]})
	}

	var err error
	if p.MinDate, err = parseDateText(minDate.String, minDate.Valid); err != nil {
		return nil, eris.Wrapf(err, "sqlite: profile %s min date", spec.Table)
	}
	if p.MaxDate, err = parseDateText(maxDate.String, maxDate.Valid); err != nil {
		return nil, eris.Wrapf(err, "sqlite: profile %s max date", spec.Table)
	}
	return p, nil
}

func parseDateText(s string, ok bool) (*time.Time, error) {
	if !ok || s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// StartRun records the beginning of a dataset run and returns its ID.
func (s *SQLite) StartRun(ctx context.Context, dataset string, asOf time.Time) (string, error) {
	id := uuid.New().String()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO pipeline_runs (id, dataset, status, as_of, started_at) VALUES (?, ?, ?, ?, ?)`,
		id, dataset, string(RunRunning), asOf.Format(time.DateOnly), time.Now().UTC(),
	)
	if err != nil {
		return "", eris.Wrapf(err, "sqlite: start run for %s", dataset)
	}
	return id, nil
}

// CompleteRun marks a run as complete.
func (s *SQLite) CompleteRun(ctx context.Context, id string, result RunResult) error {
	stats, err := marshalStats(result.Stats)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE pipeline_runs SET status = ?, completed_at = ?, rows_in = ?, rows_out = ?, stats = ? WHERE id = ?`,
		string(RunComplete), time.Now().UTC(), result.RowsIn, result.RowsOut, nullText(stats), id,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: complete run %s", id)
	}
	return checkRowsAffected(res, id)
}

// FailRun marks a run as failed with an error message.
func (s *SQLite) FailRun(ctx context.Context, id string, msg string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE pipeline_runs SET status = ?, completed_at = ?, error = ? WHERE id = ?`,
		string(RunFailed), time.Now().UTC(), msg, id,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: fail run %s", id)
	}
	return checkRowsAffected(res, id)
}

// ListRuns returns the most recent runs first.
func (s *SQLite) ListRuns(ctx context.Context, limit int) ([]RunEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, dataset, status, as_of, started_at, completed_at, rows_in, rows_out, error, stats
		 FROM pipeline_runs ORDER BY started_at DESC LIMIT ?`,
		runLimit(limit),
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list runs")
	}
	defer rows.Close()

	var entries []RunEntry
	for rows.Next() {
		var (
			e           RunEntry
			status      string
			asOf        string
			completedAt sql.NullTime
			errStr      sql.NullString
			stats       sql.NullString
		)
		if err := rows.Scan(&e.ID, &e.Dataset, &status, &asOf, &e.StartedAt, &completedAt, &e.RowsIn, &e.RowsOut, &errStr, &stats); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan run")
		}
		e.Status = RunStatus(status)
		if e.AsOf, err = time.Parse(time.DateOnly, asOf); err != nil {
			return nil, eris.Wrapf(err, "sqlite: parse as_of of run %s", e.ID)
		}
		if completedAt.Valid {
			t := completedAt.Time
			e.CompletedAt = &t
		}
		e.Error = errStr.String
		if stats.Valid {
			if err := json.Unmarshal([]byte(stats.String), &e.Stats); err != nil {
				return nil, eris.Wrapf(err, "sqlite: decode stats of run %s", e.ID)
			}
		}
		entries = append(entries, e)
	}
	return entries, eris.Wrap(rows.Err(), "sqlite: iterate runs")
}

func marshalStats(stats map[string]any) ([]byte, error) {
	if stats == nil {
		return nil, nil
	}
	b, err := json.Marshal(stats)
	if err != nil {
		return nil, eris.Wrap(err, "warehouse: marshal run stats")
	}
	return b, nil
}

func nullText(b []byte) any {
	if b == nil {
		return nil
	}
	return string(b)
}

func checkRowsAffected(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "sqlite: rows affected")
	}
	if n == 0 {
		return eris.Errorf("sqlite: run %s not found", id)
	}
	return nil
}
