// Package pipeline runs the dataset cleaners against a warehouse: read
// staging, clean, rebuild the clean table, profile and verify it, and record
// the outcome in the run log.
package pipeline

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/marketing-cli/internal/clean"
	"github.com/sells-group/marketing-cli/internal/verify"
	"github.com/sells-group/marketing-cli/internal/warehouse"
)

// Engine orchestrates cleaning runs.
type Engine struct {
	wh  warehouse.Warehouse
	reg *clean.Registry
	now func() time.Time
}

// RunOpts configures which datasets to clean and how.
type RunOpts struct {
	Datasets      []string  // restrict to specific dataset names; empty means all
	AsOf          time.Time // anchors tenure and future-date checks; zero means today (UTC)
	NullRatioWarn float64   // verifier null-ratio threshold
}

// Outcome is the result of one dataset within a run.
type Outcome struct {
	Dataset string
	RunID   string
	Report  *verify.Report
	Err     error
}

// Summary collects the outcomes of a run in execution order.
type Summary struct {
	Outcomes []Outcome
	Failed   int
}

// Reports returns the verifier reports of the datasets that succeeded.
func (s *Summary) Reports() []verify.Report {
	var out []verify.Report
	for _, o := range s.Outcomes {
		if o.Report != nil {
			out = append(out, *o.Report)
		}
	}
	return out
}

// NewEngine creates a new cleaning engine.
func NewEngine(wh warehouse.Warehouse, reg *clean.Registry) *Engine {
	return &Engine{
		wh:  wh,
		reg: reg,
		now: time.Now,
	}
}

func (e *Engine) asOf(opts RunOpts) time.Time {
	if !opts.AsOf.IsZero() {
		return opts.AsOf
	}
	return e.now().UTC().Truncate(24 * time.Hour)
}

// Run cleans the selected datasets one after another. A dataset that fails
// is recorded in the run log and skipped; its previous clean table is left in
// place and the remaining datasets still run. Run returns an error when any
// dataset failed, along with the full summary.
func (e *Engine) Run(ctx context.Context, opts RunOpts) (*Summary, error) {
	log := zap.L().With(zap.String("component", "pipeline.engine"))
	asOf := e.asOf(opts)

	datasets, err := e.reg.Select(opts.Datasets)
	if err != nil {
		return nil, err
	}

	log.Info("selected datasets",
		zap.Int("count", len(datasets)),
		zap.String("as_of", asOf.Format(time.DateOnly)),
	)

	summary := &Summary{}
	for _, ds := range datasets {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		dsLog := log.With(zap.String("dataset", ds.Name()))
		dsLog.Info("starting clean")

		runID, err := e.wh.StartRun(ctx, ds.Name(), asOf)
		if err != nil {
			return summary, eris.Wrapf(err, "pipeline: start run log for %s", ds.Name())
		}

		start := time.Now()
		report, res, err := e.runDataset(ctx, ds, asOf, opts)
		elapsed := time.Since(start)

		outcome := Outcome{Dataset: ds.Name(), RunID: runID, Err: err}
		if err != nil {
			dsLog.Error("clean failed", zap.Error(err), zap.Duration("elapsed", elapsed))
			if logErr := e.wh.FailRun(ctx, runID, err.Error()); logErr != nil {
				dsLog.Error("failed to record run failure", zap.Error(logErr))
			}
			summary.Failed++
			summary.Outcomes = append(summary.Outcomes, outcome)
			continue
		}
		outcome.Report = report

		stats := res.Stats.Map()
		stats["warnings"] = report.Warnings()
		if err := e.wh.CompleteRun(ctx, runID, warehouse.RunResult{
			RowsIn:  int64(res.Stats.RowsIn),
			RowsOut: report.Profile.Rows,
			Stats:   stats,
		}); err != nil {
			dsLog.Error("failed to record run completion", zap.Error(err))
		}

		logFindings(dsLog, report)
		dsLog.Info("clean complete",
			zap.Int("rows_in", res.Stats.RowsIn),
			zap.Int64("rows_out", report.Profile.Rows),
			zap.Int("dropped", res.Stats.Dropped),
			zap.Int("duplicates", res.Stats.Duplicates),
			zap.Int("repaired", res.Stats.Repaired),
			zap.Duration("elapsed", elapsed),
		)
		summary.Outcomes = append(summary.Outcomes, outcome)
	}

	log.Info("pipeline run complete",
		zap.Int("cleaned", len(summary.Outcomes)-summary.Failed),
		zap.Int("failed", summary.Failed),
	)
	if summary.Failed > 0 {
		return summary, eris.Errorf("pipeline: %d of %d datasets failed", summary.Failed, len(datasets))
	}
	return summary, nil
}

func (e *Engine) runDataset(ctx context.Context, ds clean.Dataset, asOf time.Time, opts RunOpts) (*verify.Report, *clean.Result, error) {
	rows, err := e.wh.ReadStaging(ctx, ds.Staging())
	if err != nil {
		return nil, nil, eris.Wrapf(err, "pipeline: read staging for %s", ds.Name())
	}

	res, err := ds.Clean(rows, clean.Options{AsOf: asOf})
	if err != nil {
		return nil, nil, err
	}

	if _, err := e.wh.Rebuild(ctx, ds.Table(), res.Rows); err != nil {
		return nil, nil, eris.Wrapf(err, "pipeline: rebuild %s", ds.Table().Name)
	}

	profile, err := e.wh.Profile(ctx, ds.Profile())
	if err != nil {
		return nil, nil, eris.Wrapf(err, "pipeline: profile %s", ds.Table().Name)
	}

	report := verify.Check(ds.Name(), profile, &res.Stats, verify.Options{AsOf: asOf, NullRatioWarn: opts.NullRatioWarn})
	return &report, res, nil
}

// Verify profiles the selected clean tables without rebuilding them.
func (e *Engine) Verify(ctx context.Context, opts RunOpts) ([]verify.Report, error) {
	log := zap.L().With(zap.String("component", "pipeline.verify"))
	asOf := e.asOf(opts)

	datasets, err := e.reg.Select(opts.Datasets)
	if err != nil {
		return nil, err
	}

	reports := make([]verify.Report, 0, len(datasets))
	for _, ds := range datasets {
		profile, err := e.wh.Profile(ctx, ds.Profile())
		if err != nil {
			return nil, eris.Wrapf(err, "pipeline: profile %s", ds.Table().Name)
		}
		report := verify.Check(ds.Name(), profile, nil, verify.Options{AsOf: asOf, NullRatioWarn: opts.NullRatioWarn})
		logFindings(log.With(zap.String("dataset", ds.Name())), &report)
		reports = append(reports, report)
	}
	return reports, nil
}

func logFindings(log *zap.Logger, r *verify.Report) {
	for _, f := range r.Findings {
		fields := []zap.Field{zap.String("check", f.Check), zap.String("message", f.Message)}
		if f.Severity == verify.Warn {
			log.Warn("verifier finding", fields...)
		} else {
			log.Info("verifier finding", fields...)
		}
	}
}
