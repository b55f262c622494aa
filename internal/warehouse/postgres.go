package warehouse

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"
	"github.com/shopspring/decimal"

	"github.com/sells-group/marketing-cli/internal/db"
)

// Postgres implements Warehouse using a pgx pool. Bulk writes go through COPY.
type Postgres struct {
	pool    db.Pool
	closeFn func()
}

// NewPostgres connects to Postgres and verifies the connection.
func NewPostgres(ctx context.Context, connString string) (*Postgres, error) {
	cfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	cfg.MaxConns = 4
	cfg.MaxConnLifetime = 30 * time.Minute
	cfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &Postgres{pool: pool, closeFn: pool.Close}, nil
}

// NewPostgresWithPool wraps an existing pool; used by tests with pgxmock.
func NewPostgresWithPool(pool db.Pool) *Postgres {
	return &Postgres{pool: pool}
}

const postgresRunLog = `
CREATE TABLE IF NOT EXISTS pipeline_runs (
	id           TEXT PRIMARY KEY,
	dataset      TEXT NOT NULL,
	status       TEXT NOT NULL DEFAULT 'running',
	as_of        DATE NOT NULL,
	started_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
	completed_at TIMESTAMPTZ,
	rows_in      BIGINT NOT NULL DEFAULT 0,
	rows_out     BIGINT NOT NULL DEFAULT 0,
	error        TEXT,
	stats        JSONB
);

CREATE INDEX IF NOT EXISTS idx_pipeline_runs_dataset ON pipeline_runs(dataset);
CREATE INDEX IF NOT EXISTS idx_pipeline_runs_started_at ON pipeline_runs(started_at DESC);
`

// Migrate creates the staging tables and the run log.
func (p *Postgres) Migrate(ctx context.Context, staging []StagingSpec) error {
	if _, err := p.pool.Exec(ctx, postgresRunLog); err != nil {
		return eris.Wrap(err, "postgres: migrate run log")
	}
	for _, spec := range staging {
		if _, err := p.pool.Exec(ctx, createStaging(spec)); err != nil {
			return eris.Wrapf(err, "postgres: create staging %s", spec.Table)
		}
	}
	return nil
}

// Close releases the pool.
func (p *Postgres) Close() error {
	if p.closeFn != nil {
		p.closeFn()
	}
	return nil
}

// LoadStaging replaces the rows of a staging table using COPY.
func (p *Postgres) LoadStaging(ctx context.Context, spec StagingSpec, rows [][]string) (int64, error) {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: begin staging load")
	}
	n, err := p.loadStaging(ctx, tx, spec, rows)
	if err != nil {
		_ = tx.Rollback(ctx)
		return 0, err
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, eris.Wrapf(err, "postgres: commit staging %s", spec.Table)
	}
	return n, nil
}

func (p *Postgres) loadStaging(ctx context.Context, tx pgx.Tx, spec StagingSpec, rows [][]string) (int64, error) {
	if _, err := tx.Exec(ctx, "DELETE FROM "+db.SanitizeTable(spec.Table)); err != nil {
		return 0, eris.Wrapf(err, "postgres: clear staging %s", spec.Table)
	}
	vals := make([][]any, len(rows))
	for i, row := range rows {
		vals[i] = stagingRow(row, len(spec.Columns))
	}
	return db.CopyFrom(ctx, tx, spec.Table, spec.Columns, vals)
}

// ReadStaging returns all staging rows.
func (p *Postgres) ReadStaging(ctx context.Context, spec StagingSpec) ([][]string, error) {
	rows, err := p.pool.Query(ctx, selectStaging(spec))
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: read staging %s", spec.Table)
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
			return nil, eris.Wrapf(err, "postgres: scan staging %s", spec.Table)
		}
		out = append(out, rec)
	}
	return out, eris.Wrapf(rows.Err(), "postgres: iterate staging %s", spec.Table)
}

// Rebuild copies rows into a shadow table and swaps it in, all in one
// transaction.
func (p *Postgres) Rebuild(ctx context.Context, spec TableSpec, rows [][]any) (int64, error) {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: begin rebuild")
	}
	n, err := p.rebuild(ctx, tx, spec, rows)
	if err != nil {
		_ = tx.Rollback(ctx)
		return 0, err
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, eris.Wrapf(err, "postgres: commit rebuild %s", spec.Name)
	}
	return n, nil
}

func (p *Postgres) rebuild(ctx context.Context, tx pgx.Tx, spec TableSpec, rows [][]any) (int64, error) {
	shadow := shadowName(spec.Name)
	for _, q := range []string{dropTable(shadow), postgresDialect.createTable(shadow, spec.Columns)} {
		if _, err := tx.Exec(ctx, q); err != nil {
			return 0, eris.Wrapf(err, "postgres: prepare shadow %s", shadow)
		}
	}

	vals := make([][]any, len(rows))
	for i, row := range rows {
		vals[i] = make([]any, len(row))
		for j, v := range row {
			vals[i][j] = postgresValue(v)
		}
	}
	n, err := db.CopyFrom(ctx, tx, shadow, spec.ColumnNames(), vals)
	if err != nil {
		return 0, err
	}

	swap := append([]string{dropTable(spec.Name), renameTable(shadow, spec.Name)}, createIndexes(spec)...)
	for _, q := range swap {
		if _, err := tx.Exec(ctx, q); err != nil {
			return 0, eris.Wrapf(err, "postgres: swap %s", spec.Name)
		}
	}
	return n, nil
}

// postgresValue converts decimals to pgtype.Numeric so COPY can encode them
// without a float round trip.
func postgresValue(v any) any {
	if d, ok := v.(decimal.Decimal); ok {
		return pgtype.Numeric{Int: d.Coefficient(), Exp: d.Exponent(), Valid: true}
	}
	return v
}

// Profile summarizes a clean table.
func (p *Postgres) Profile(ctx context.Context, spec ProfileSpec) (*Profile, error) {
	prof := &Profile{Table: spec.Table}
	counts := make([]int64, len(spec.NullColumns))
	var minDate, maxDate *string

	dest := []any{&prof.Rows, &prof.DistinctKeys}
	for i := range counts {
		dest = append(dest, &counts[i])
	}
	if spec.DateColumn != "" {
		dest = append(dest, &minDate, &maxDate)
	}

	if err := p.pool.QueryRow(ctx, postgresDialect.profileSQL(spec)).Scan(dest...); err != nil {
		return nil, eris.Wrapf(err, "postgres: profile %s", spec.Table)
	}
	for i, c := range spec.NullColumns {
		prof.Nulls = append(prof.Nulls, NullCount{Column: c, Count: counts[i]})
	}

	var err error
	if prof.MinDate, err = parseDatePtr(minDate); err != nil {
		return nil, eris.Wrapf(err, "postgres: profile %s min date", spec.Table)
	}
	if prof.MaxDate, err = parseDatePtr(maxDate); err != nil {
		return nil, eris.Wrapf(err, "postgres: profile %s max date", spec.Table)
	}
	return prof, nil
}

func parseDatePtr(s *string) (*time.Time, error) {
	if s == nil {
		return nil, nil
	}
	return parseDateText(*s, true)
}

// StartRun records the beginning of a dataset run and returns its ID.
func (p *Postgres) StartRun(ctx context.Context, dataset string, asOf time.Time) (string, error) {
	id := uuid.New().String()
	_, err := p.pool.Exec(ctx,
		`INSERT INTO pipeline_runs (id, dataset, status, as_of, started_at)
		 VALUES ($1, $2, 'running', $3, now())`,
		id, dataset, asOf,
	)
	if err != nil {
		return "", eris.Wrapf(err, "postgres: start run for %s", dataset)
	}
	return id, nil
}

// CompleteRun marks a run as complete.
func (p *Postgres) CompleteRun(ctx context.Context, id string, result RunResult) error {
	stats, err := marshalStats(result.Stats)
	if err != nil {
		return err
	}
	tag, err := p.pool.Exec(ctx,
		`UPDATE pipeline_runs
		 SET status = 'complete', completed_at = now(), rows_in = $1, rows_out = $2, stats = $3
		 WHERE id = $4`,
		result.RowsIn, result.RowsOut, stats, id,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: complete run %s", id)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("postgres: run %s not found", id)
	}
	return nil
}

// FailRun marks a run as failed with an error message.
func (p *Postgres) FailRun(ctx context.Context, id string, msg string) error {
	tag, err := p.pool.Exec(ctx,
		`UPDATE pipeline_runs
		 SET status = 'failed', completed_at = now(), error = $1
		 WHERE id = $2`,
		msg, id,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: fail run %s", id)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("postgres: run %s not found", id)
	}
	return nil
}

// ListRuns returns the most recent runs first.
func (p *Postgres) ListRuns(ctx context.Context, limit int) ([]RunEntry, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT id, dataset, status, to_char(as_of, 'YYYY-MM-DD'), started_at, completed_at, rows_in, rows_out, error, stats
		 FROM pipeline_runs ORDER BY started_at DESC LIMIT $1`,
		runLimit(limit),
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list runs")
	}
	defer rows.Close()

	var entries []RunEntry
	for rows.Next() {
		var (
			e           RunEntry
			status      string
			asOf        string
			completedAt *time.Time
			errStr      *string
			stats       []byte
		)
		if err := rows.Scan(&e.ID, &e.Dataset, &status, &asOf, &e.StartedAt, &completedAt, &e.RowsIn, &e.RowsOut, &errStr, &stats); err != nil {
			return nil, eris.Wrap(err, "postgres: scan run")
		}
		e.Status = RunStatus(status)
		if e.AsOf, err = time.Parse(time.DateOnly, asOf); err != nil {
			return nil, eris.Wrapf(err, "postgres: parse as_of of run %s", e.ID)
		}
		e.CompletedAt = completedAt
		if errStr != nil {
			e.Error = *errStr
		}
		if stats != nil {
			if err := json.Unmarshal(stats, &e.Stats); err != nil {
				return nil, eris.Wrapf(err, "postgres: decode stats of run %s", e.ID)
			}
		}
		entries = append(entries, e)
	}
	return entries, eris.Wrap(rows.Err(), "postgres: iterate runs")
}
