// Package stage loads CSV and XLSX exports into the staging tables.
package stage

import (
	"context"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/marketing-cli/internal/clean"
	"github.com/sells-group/marketing-cli/internal/fetcher"
	"github.com/sells-group/marketing-cli/internal/normalize"
	"github.com/sells-group/marketing-cli/internal/warehouse"
)

// Loader replaces staging tables with the contents of export files.
type Loader struct {
	wh   warehouse.Warehouse
	reg  *clean.Registry
	opts fetcher.Options
}

// NewLoader creates a staging loader.
func NewLoader(wh warehouse.Warehouse, reg *clean.Registry, opts fetcher.Options) *Loader {
	return &Loader{wh: wh, reg: reg, opts: opts}
}

// headerKey folds a header for matching, so "Campaign ID", "campaign_id"
// and "CAMPAIGN-ID" are the same column.
func headerKey(s string) string {
	return normalize.Squash(s)
}

// MapColumns returns, for each staging column, the index of the matching
// header field, or -1 when the export lacks it. The first matching header
// wins.
func MapColumns(header, columns []string) []int {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		k := headerKey(h)
		if _, ok := idx[k]; !ok {
			idx[k] = i
		}
	}
	out := make([]int, len(columns))
	for i, c := range columns {
		j, ok := idx[headerKey(c)]
		if !ok {
			j = -1
		}
		out[i] = j
	}
	return out
}

// Project reorders an export into staging column order. Columns absent from
// the export load as NULL; extra export columns are ignored. The export must
// carry the first staging column, which is the dataset key.
func Project(tbl *fetcher.Table, spec warehouse.StagingSpec) ([][]string, error) {
	cols := MapColumns(tbl.Header, spec.Columns)
	if cols[0] < 0 {
		return nil, eris.Errorf("stage: export for %s has no %s column (header: %v)",
			spec.Table, spec.Columns[0], tbl.Header)
	}

	rows := make([][]string, len(tbl.Rows))
	for i, src := range tbl.Rows {
		row := make([]string, len(cols))
		for j, k := range cols {
			if k >= 0 && k < len(src) {
				row[j] = src[k]
			}
		}
		rows[i] = row
	}
	return rows, nil
}

// LoadFile replaces the staging table of dataset with the rows of path.
func (l *Loader) LoadFile(ctx context.Context, dataset, path string) (int64, error) {
	ds, err := l.reg.Get(dataset)
	if err != nil {
		return 0, err
	}

	tbl, err := fetcher.ReadFile(ctx, path, l.opts)
	if err != nil {
		return 0, err
	}

	rows, err := Project(tbl, ds.Staging())
	if err != nil {
		return 0, err
	}

	n, err := l.wh.LoadStaging(ctx, ds.Staging(), rows)
	if err != nil {
		return 0, eris.Wrapf(err, "stage: load %s", path)
	}

	zap.L().Info("staging loaded",
		zap.String("component", "stage.loader"),
		zap.String("dataset", dataset),
		zap.String("file", path),
		zap.Int64("rows", n),
	)
	return n, nil
}

// FindFile looks in dir for an export of dataset named <dataset> or
// staging_<dataset> with any supported extension. It returns "" when none
// exists.
func FindFile(dir, dataset string) string {
	for _, base := range []string{dataset, "staging_" + dataset} {
		for _, ext := range fetcher.Extensions {
			path := filepath.Join(dir, base+ext)
			if info, err := os.Stat(path); err == nil && !info.IsDir() {
				return path
			}
		}
	}
	return ""
}

// LoadDir loads every dataset whose export is present in dir and returns
// the rows loaded per dataset. Datasets without an export keep their current
// staging contents.
func (l *Loader) LoadDir(ctx context.Context, dir string) (map[string]int64, error) {
	log := zap.L().With(zap.String("component", "stage.loader"), zap.String("dir", dir))

	loaded := make(map[string]int64)
	for _, name := range l.reg.AllNames() {
		path := FindFile(dir, name)
		if path == "" {
			log.Warn("no export found", zap.String("dataset", name))
			continue
		}
		n, err := l.LoadFile(ctx, name, path)
		if err != nil {
			return loaded, err
		}
		loaded[name] = n
	}

	if len(loaded) == 0 {
		return nil, eris.Errorf("stage: no exports found in %s", dir)
	}
	return loaded, nil
}
