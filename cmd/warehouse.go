package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/marketing-cli/internal/clean"
	"github.com/sells-group/marketing-cli/internal/pipeline"
	"github.com/sells-group/marketing-cli/internal/warehouse"
)

// openWarehouse connects to the configured warehouse and makes sure the
// staging tables and run log exist.
func openWarehouse(ctx context.Context, reg *clean.Registry) (warehouse.Warehouse, error) {
	wh, err := warehouse.Open(ctx, cfg.Store.Driver, cfg.Store.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := wh.Migrate(ctx, reg.StagingSpecs()); err != nil {
		wh.Close() //nolint:errcheck
		return nil, err
	}
	return wh, nil
}

// addRunFlags registers the dataset and as-of flags shared by clean and verify.
func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().StringSlice("datasets", nil, "comma-separated dataset names (default: pipeline.datasets, else all)")
	cmd.Flags().String("as-of", "", "reference date YYYY-MM-DD for tenure and future-date checks (default: pipeline.as_of, else today UTC)")
	cmd.Flags().Bool("no-color", false, "disable colored output")
}

// parseRunOpts merges the shared flags over the pipeline config.
func parseRunOpts(cmd *cobra.Command) (pipeline.RunOpts, error) {
	pc := cfg.Pipeline

	if asOf, _ := cmd.Flags().GetString("as-of"); asOf != "" {
		pc.AsOf = asOf
	}
	if names, _ := cmd.Flags().GetStringSlice("datasets"); len(names) > 0 {
		pc.Datasets = names
	}

	asOf, err := pc.AsOfDate(time.Now())
	if err != nil {
		return pipeline.RunOpts{}, eris.Wrap(err, "invalid --as-of")
	}

	return pipeline.RunOpts{
		Datasets:      pc.Datasets,
		AsOf:          asOf,
		NullRatioWarn: pc.NullRatioWarn,
	}, nil
}
