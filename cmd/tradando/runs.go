package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/newthinker/tradando/internal/app"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	runsLimit int
	runsJSON  bool
)

var runsCmd = &cobra.Command{
	Use:   "runs [run-id]",
	Short: "List journaled runs, or the trades of one run",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runRuns,
}

func init() {
	runsCmd.Flags().IntVar(&runsLimit, "limit", 20, "Maximum number of runs to list (0 for all)")
	runsCmd.Flags().BoolVar(&runsJSON, "json", false, "Print as JSON")
	rootCmd.AddCommand(runsCmd)
}

func runRuns(cmd *cobra.Command, args []string) error {
	return withApp(func(a *app.App, log *zap.Logger) error {
		out := cmd.OutOrStdout()

		if len(args) == 1 {
			trades, err := a.RunTrades(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if runsJSON {
				return writeJSON(out, trades)
			}
			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "DATE\tSIDE\tREASON\tPRICE\tAMOUNT")
			for _, t := range trades {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%.2f\t%.2f\n", t.Time.Format(dateLayout), t.Side, t.Reason, t.Price, t.Amount)
			}
			return tw.Flush()
		}

		runs, err := a.Runs(cmd.Context(), runsLimit)
		if err != nil {
			return err
		}
		if runsJSON {
			return writeJSON(out, runs)
		}

		tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "RUN\tRECORDED\tSTRATEGY\tSYMBOL\tRETURN%\tTRADES")
		for _, r := range runs {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%+.2f\t%d\n",
				r.RunID, r.RecordedAt.Local().Format("2006-01-02 15:04"), r.Strategy, r.Symbol, r.ReturnPct, r.NTrades)
		}
		return tw.Flush()
	})
}
