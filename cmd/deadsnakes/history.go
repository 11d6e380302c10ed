package main

import (
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"deadsnakes/internal/history"
	"deadsnakes/internal/slogutil"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history [path]",
	Short: "List recent scan runs",
	Long: `List scan runs recorded in the local history database.

Runs are recorded when scanning with --history (or history.enabled in
deadsnakes.toml). The database lives at <root>/.deadsnakes/history.db.

Examples:
  deadsnakes history
  deadsnakes history /src/app -n 5`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Number of runs to show")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	root := "."
	if len(args) == 1 {
		root = args[0]
	}

	store, err := history.OpenStore(root, slogutil.NewStderrLogger(slog.LevelWarn))
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	runs, err := store.ListRuns(historyLimit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("No recorded runs. Scan with --history to record one.")
		return nil
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN\tSCANNED AT\tFINDINGS\tFILES\tDURATION")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\n",
			r.ID, r.ScannedAt.Format(time.RFC3339), r.TotalFindings, r.FilesScanned, r.Duration)
	}
	return tw.Flush()
}
