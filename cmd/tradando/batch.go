package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/newthinker/tradando/internal/app"
	"github.com/newthinker/tradando/internal/backtest"
	"github.com/newthinker/tradando/internal/notifier"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	batchSymbols    []string
	batchStrategies []string
	batchFrom       string
	batchTo         string
	batchInterval   string
	batchJSON       bool
	batchArchive    bool
	batchJournal    bool
	batchNotify     bool
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Backtest several symbols and strategies in parallel",
	RunE:  runBatch,
}

func init() {
	batchCmd.Flags().StringSliceVar(&batchSymbols, "symbols", nil, "Comma-separated symbols (required)")
	batchCmd.Flags().StringSliceVar(&batchStrategies, "strategies", []string{"sma_cross", "rsi", "macd"}, "Comma-separated strategies")
	batchCmd.Flags().StringVar(&batchFrom, "from", "", "Start date YYYY-MM-DD")
	batchCmd.Flags().StringVar(&batchTo, "to", "", "End date YYYY-MM-DD")
	batchCmd.Flags().StringVar(&batchInterval, "interval", "", "Bar interval (default from config)")
	batchCmd.Flags().BoolVar(&batchJSON, "json", false, "Print the summary as JSON")
	batchCmd.Flags().BoolVar(&batchArchive, "archive", false, "Save successful reports to the archive")
	batchCmd.Flags().BoolVar(&batchJournal, "journal", false, "Record successful runs in the journal")

	batchCmd.Flags().BoolVar(&batchNotify, "notify", false, "Publish the summary to enabled notifiers")

	batchCmd.MarkFlagRequired("symbols")

	rootCmd.AddCommand(batchCmd)
}

func runBatch(cmd *cobra.Command, args []string) error {
	fromDate, err := parseDate("from", batchFrom)
	if err != nil {
		return err
	}
	toDate, err := parseDate("to", batchTo)
	if err != nil {
		return err
	}

	return withApp(func(a *app.App, log *zap.Logger) error {
		results, err := a.Batch(cmd.Context(), batchSymbols, batchStrategies, backtest.Request{
			Start:    fromDate,
			End:      toDate,
			Interval: batchInterval,
		}, app.RunOptions{Archive: batchArchive, Journal: batchJournal})
		if results == nil {
			return err
		}
		if err != nil {
			log.Warn("persisting batch results", zap.Error(err))
		}

		rows := backtest.Summarize(results)
		if batchNotify {
			a.Notify(cmd.Context(), notifier.Summary{
				Title: fmt.Sprintf("Backtest %s", strings.Join(batchSymbols, ",")),
				Rows:  rows,
			})
		}

		out := cmd.OutOrStdout()
		if batchJSON {
			return writeJSON(out, rows)
		}

		tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "SYMBOL\tSTRATEGY\tRETURN%\tTRADES\tERROR")
		for _, r := range rows {
			if r.Error != "" {
				fmt.Fprintf(tw, "%s\t%s\t-\t-\t%s\n", r.Symbol, r.Strategy, r.Error)
				continue
			}
			fmt.Fprintf(tw, "%s\t%s\t%+.2f\t%d\t\n", r.Symbol, r.Strategy, r.ReturnPct, r.NTrades)
		}
		return tw.Flush()
	})
}
