package main

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/marketing-cli/internal/clean"
	"github.com/sells-group/marketing-cli/internal/pipeline"
	"github.com/sells-group/marketing-cli/internal/verify"
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Rebuild clean tables from staging",
	Long: `Rebuild clean tables from the staging tables.

Each dataset is cleaned, written to a shadow table and swapped in within one
transaction, then profiled. A dataset that fails keeps its previous clean table
and the other datasets still run; the command exits non-zero if any failed.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		log := zap.L().With(zap.String("command", "clean"))

		opts, err := parseRunOpts(cmd)
		if err != nil {
			return err
		}

		reg := clean.NewRegistry()
		wh, err := openWarehouse(ctx, reg)
		if err != nil {
			return err
		}
		defer wh.Close() //nolint:errcheck

		log.Info("starting clean",
			zap.Strings("datasets", opts.Datasets),
			zap.String("as_of", opts.AsOf.Format(time.DateOnly)),
		)

		summary, runErr := pipeline.NewEngine(wh, reg).Run(ctx, opts)
		if summary == nil {
			return runErr
		}

		out := cmd.OutOrStdout()
		noColor, _ := cmd.Flags().GetBool("no-color")
		verify.Renderer{UseColor: !noColor && !color.NoColor}.Render(out, summary.Reports())

		for _, o := range summary.Outcomes {
			if o.Err != nil {
				fmt.Fprintf(out, "FAILED %s: %v\n", o.Dataset, o.Err)
			}
		}
		return runErr
	},
}

func init() {
	addRunFlags(cleanCmd)
	rootCmd.AddCommand(cleanCmd)
}
