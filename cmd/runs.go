package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/marketing-cli/internal/clean"
	"github.com/sells-group/marketing-cli/internal/warehouse"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recent cleaning runs",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		wh, err := openWarehouse(ctx, clean.NewRegistry())
		if err != nil {
			return err
		}
		defer wh.Close() //nolint:errcheck

		limit, _ := cmd.Flags().GetInt("limit")
		runs, err := wh.ListRuns(ctx, limit)
		if err != nil {
			return eris.Wrap(err, "runs")
		}

		out := cmd.OutOrStdout()
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(runs)
		}

		if len(runs) == 0 {
			fmt.Fprintln(cmd.ErrOrStderr(), "No runs found.")
			return nil
		}
		formatRunsList(out, runs)
		return nil
	},
}

func init() {
	runsCmd.Flags().Int("limit", 20, "maximum number of runs to show")
	runsCmd.Flags().Bool("json", false, "print runs as JSON")
	rootCmd.AddCommand(runsCmd)
}

// formatRunsList writes a table of runs to out.
func formatRunsList(out io.Writer, runs []warehouse.RunEntry) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tDATASET\tSTATUS\tAS_OF\tSTARTED\tDURATION\tROWS\tERROR")
	_, _ = fmt.Fprintln(w, "--\t-------\t------\t-----\t-------\t--------\t----\t-----")

	for _, r := range runs {
		dur := ""
		if r.CompletedAt != nil {
			dur = r.CompletedAt.Sub(r.StartedAt).Round(time.Millisecond).String()
		}

		rows := ""
		if r.Status == warehouse.RunComplete {
			rows = fmt.Sprintf("%d/%d", r.RowsOut, r.RowsIn)
		}

		errMsg := r.Error
		if len(errMsg) > 60 {
			errMsg = errMsg[:57] + "..."
		}

		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			truncateID(r.ID),
			r.Dataset,
			r.Status,
			r.AsOf.Format(time.DateOnly),
			r.StartedAt.Format("2006-01-02 15:04"),
			dur,
			rows,
			errMsg,
		)
	}
	_ = w.Flush()
}

func truncateID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
