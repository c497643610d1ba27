package main

import (
	"github.com/newthinker/tradando/internal/app"
	"github.com/newthinker/tradando/internal/backtest"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	backtestSymbol   string
	backtestFrom     string
	backtestTo       string
	backtestInterval string
	backtestInitial  float64
	backtestJSON     bool
	backtestArchive  bool
	backtestJournal  bool
)

var backtestCmd = &cobra.Command{
	Use:   "backtest [strategy]",
	Short: "Run backtest on a strategy",
	Long:  "Run a strategy against historical data and show performance statistics",
	Args:  cobra.ExactArgs(1),
	RunE:  runBacktest,
}

func init() {
	backtestCmd.Flags().StringVar(&backtestSymbol, "symbol", "", "Symbol to backtest (required)")
	backtestCmd.Flags().StringVar(&backtestFrom, "from", "", "Start date YYYY-MM-DD (default: history_days before --to)")
	backtestCmd.Flags().StringVar(&backtestTo, "to", "", "End date YYYY-MM-DD (default: today)")
	backtestCmd.Flags().StringVar(&backtestInterval, "interval", "", "Bar interval, e.g. 1d or 1w (default from config)")
	backtestCmd.Flags().Float64Var(&backtestInitial, "initial", 0, "Initial cash (default from config)")
	backtestCmd.Flags().BoolVar(&backtestJSON, "json", false, "Print the report as JSON")
	backtestCmd.Flags().BoolVar(&backtestArchive, "archive", false, "Save the report to the archive")
	backtestCmd.Flags().BoolVar(&backtestJournal, "journal", false, "Record the run in the journal")

	backtestCmd.MarkFlagRequired("symbol")

	rootCmd.AddCommand(backtestCmd)
}

func runBacktest(cmd *cobra.Command, args []string) error {
	fromDate, err := parseDate("from", backtestFrom)
	if err != nil {
		return err
	}
	toDate, err := parseDate("to", backtestTo)
	if err != nil {
		return err
	}

	return withApp(func(a *app.App, log *zap.Logger) error {
		res, err := a.Backtest(cmd.Context(), args[0], backtest.Request{
			Symbol:       backtestSymbol,
			Start:        fromDate,
			End:          toDate,
			Interval:     backtestInterval,
			InitialValue: backtestInitial,
		}, app.RunOptions{Archive: backtestArchive, Journal: backtestJournal})
		if err != nil {
			return err
		}

		if res.ArchivePath != "" {
			log.Info("report archived", zap.String("path", res.ArchivePath))
		}
		if backtestJournal {
			log.Info("run journaled", zap.String("run_id", res.RunID))
		}

		out := cmd.OutOrStdout()
		if backtestJSON {
			return writeJSON(out, res)
		}
		printReport(out, res.Report)
		return nil
	})
}
