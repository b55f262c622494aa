package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sells-group/marketing-cli/internal/clean"
)

var datasetsCmd = &cobra.Command{
	Use:   "datasets",
	Short: "List datasets and their staging and clean tables",
	RunE: func(cmd *cobra.Command, _ []string) error {
		formatDatasets(cmd.OutOrStdout(), clean.NewRegistry().All())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(datasetsCmd)
}

func formatDatasets(out io.Writer, datasets []clean.Dataset) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "DATASET\tSTAGING\tCLEAN\tKEY\tINDEXES")
	_, _ = fmt.Fprintln(w, "-------\t-------\t-----\t---\t-------")
	for _, d := range datasets {
		t := d.Table()
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			d.Name(),
			d.Staging().Table,
			t.Name,
			d.Profile().Key,
			strings.Join(t.Indexes, ","),
		)
	}
	_ = w.Flush()
}
