package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/marketing-cli/internal/clean"
	"github.com/sells-group/marketing-cli/internal/fetcher"
	"github.com/sells-group/marketing-cli/internal/stage"
)

var stageCmd = &cobra.Command{
	Use:   "stage",
	Short: "Manage staging tables",
}

var stageMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create staging tables and the run log",
	RunE: func(cmd *cobra.Command, _ []string) error {
		wh, err := openWarehouse(cmd.Context(), clean.NewRegistry())
		if err != nil {
			return err
		}
		defer wh.Close() //nolint:errcheck

		fmt.Fprintln(cmd.OutOrStdout(), "Staging tables ready")
		return nil
	},
}

var stageLoadCmd = &cobra.Command{
	Use:   "load",
	Short: "Load CSV or XLSX exports into staging tables",
	Long: `Load CSV or XLSX exports into staging tables, replacing their contents.

With --dir, each dataset is loaded from <dataset>.csv|.tsv|.txt|.xlsx or
staging_<dataset>.* in that directory. With --file, one file is loaded into
the dataset named by --dataset. Header names are matched to staging columns
ignoring case, spaces and punctuation.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		file, _ := cmd.Flags().GetString("file")
		name, _ := cmd.Flags().GetString("dataset")
		dir, _ := cmd.Flags().GetString("dir")
		if file != "" && name == "" {
			return eris.New("stage load: --file requires --dataset")
		}
		if dir == "" {
			dir = cfg.Stage.Dir
		}

		delim, _ := cmd.Flags().GetString("delimiter")
		if delim == "" {
			delim = cfg.Stage.Delimiter
		}
		runes := []rune(delim)
		if len(runes) != 1 {
			return eris.Errorf("stage load: delimiter must be a single character, got %q", delim)
		}

		reg := clean.NewRegistry()
		wh, err := openWarehouse(ctx, reg)
		if err != nil {
			return err
		}
		defer wh.Close() //nolint:errcheck

		loader := stage.NewLoader(wh, reg, fetcher.Options{Delimiter: runes[0]})
		out := cmd.OutOrStdout()

		if file != "" {
			n, err := loader.LoadFile(ctx, name, file)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%s: %d rows\n", name, n)
			return nil
		}

		loaded, err := loader.LoadDir(ctx, dir)
		if err != nil {
			return err
		}
		for _, n := range reg.AllNames() {
			if rows, ok := loaded[n]; ok {
				fmt.Fprintf(out, "%s: %d rows\n", n, rows)
			}
		}
		return nil
	},
}

func init() {
	stageLoadCmd.Flags().String("dir", "", "directory of exports (default: stage.dir)")
	stageLoadCmd.Flags().String("file", "", "single export file to load")
	stageLoadCmd.Flags().String("dataset", "", "dataset for --file")
	stageLoadCmd.Flags().String("delimiter", "", "CSV delimiter (default: stage.delimiter)")

	stageCmd.AddCommand(stageMigrateCmd)
	stageCmd.AddCommand(stageLoadCmd)
	rootCmd.AddCommand(stageCmd)
}
