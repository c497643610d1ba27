package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/newthinker/tradando/internal/backtest"
)

const dateLayout = "2006-01-02"

// parseDate parses an optional YYYY-MM-DD flag; empty yields the zero time
func parseDate(name, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s date format (expected YYYY-MM-DD): %w", name, err)
	}
	return t, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printReport(w io.Writer, r *backtest.Report) {
	fmt.Fprintln(w, "=== TRADANDO Backtest ===")
	fmt.Fprintf(w, "Strategy:     %s\n", r.Strategy)
	if r.Description != "" {
		fmt.Fprintf(w, "Description:  %s\n", r.Description)
	}
	fmt.Fprintf(w, "Symbol:       %s\n", r.Symbol)
	fmt.Fprintf(w, "Bars:         %d simulated (lookback %d)\n", r.BarsSimulated, r.Lookback)
	if r.InsufficientHistory {
		fmt.Fprintln(w, "Warning:      history shorter than lookback, no trades simulated")
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Initial:      %.2f\n", r.InitialValue)
	fmt.Fprintf(w, "Final:        %.2f (%+.2f%%)\n", r.FinalValue, r.ReturnPct)
	fmt.Fprintf(w, "Buy & hold:   %+.2f%%\n", r.PriceChangePct)
	fmt.Fprintf(w, "Position:     %.8f shares, %.2f cash @ %.2f\n", r.Holdings, r.Cash, r.CurrentPrice)
	fmt.Fprintln(w)

	p := r.Performance
	fmt.Fprintf(w, "Trades:       %d (%d buys, %d sells; by reason %d signal, %d stop-loss, %d take-profit)\n",
		r.NTrades, r.NBuys, r.NSells, r.NSignalTrades, r.NStopLosses, r.NTakeProfits)
	fmt.Fprintf(w, "Round trips:  %d (win rate %.2f%%)\n", p.RoundTrips, p.WinRate)
	fmt.Fprintf(w, "Avg return:   %+.2f%%\n", p.AvgReturnPct)
	fmt.Fprintf(w, "Max drawdown: %.2f%%\n", p.MaxDrawdownPct)
	fmt.Fprintf(w, "Sharpe:       %.4f\n", p.SharpeRatio)

	if len(r.Trades) == 0 {
		return
	}
	fmt.Fprintln(w)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tSIDE\tREASON\tPRICE\tSHARES\tAMOUNT\tPNL%")
	for _, t := range r.Trades {
		pnl := "-"
		if t.PnLPct != nil {
			pnl = fmt.Sprintf("%+.2f", *t.PnLPct)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%.2f\t%.8f\t%.2f\t%s\n",
			t.Time.Format(dateLayout), t.Side, t.Reason, t.Price, t.Shares, t.Amount, pnl)
	}
	tw.Flush()
}
