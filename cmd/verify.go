package main

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/sells-group/marketing-cli/internal/clean"
	"github.com/sells-group/marketing-cli/internal/pipeline"
	"github.com/sells-group/marketing-cli/internal/verify"
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Profile clean tables without rebuilding them",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

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

		reports, err := pipeline.NewEngine(wh, reg).Verify(ctx, opts)
		if err != nil {
			return err
		}

		noColor, _ := cmd.Flags().GetBool("no-color")
		verify.Renderer{UseColor: !noColor && !color.NoColor}.Render(cmd.OutOrStdout(), reports)
		return nil
	},
}

func init() {
	addRunFlags(verifyCmd)
	rootCmd.AddCommand(verifyCmd)
}
