package backtest

import (
	"math"

	"github.com/newthinker/tradando/internal/core"
)

// RoundTrips pairs each BUY with the SELL that closes it. A position still
// open at the end of the log is not a round trip.
func RoundTrips(trades []core.Trade) []RoundTrip {
	var trips []RoundTrip
	var open *core.Trade

	for i := range trades {
		t := trades[i]
		switch t.Side {
		case core.SideBuy:
			if open == nil {
				open = &trades[i]
			}
		case core.SideSell:
			if open == nil {
				continue
			}
			trip := RoundTrip{
				EntryPrice: open.Price,
				ExitPrice:  t.Price,
				EntryTime:  open.Time,
				ExitTime:   t.Time,
			}
			if open.Amount > 0 {
				trip.Return = (t.Amount - open.Amount) / open.Amount
			}
			trips = append(trips, trip)
			open = nil
		}
	}

	return trips
}

// CalculatePerformance computes statistics from the trade log and the
// mark-to-market equity of every simulated bar
func CalculatePerformance(trades []core.Trade, equity []float64) Performance {
	trips := RoundTrips(trades)
	perf := Performance{
		RoundTrips:     len(trips),
		MaxDrawdownPct: core.RoundMoney(calculateMaxDrawdown(equity) * 100),
	}
	if len(trips) == 0 {
		return perf
	}

	returns := make([]float64, len(trips))
	var totalReturn float64
	for i, trip := range trips {
		returns[i] = trip.Return
		totalReturn += trip.Return
		if trip.IsWin() {
			perf.WinningTrades++
		} else {
			perf.LosingTrades++
		}
	}

	perf.WinRate = core.RoundMoney(float64(perf.WinningTrades) / float64(len(trips)) * 100)
	perf.TotalReturnPct = core.RoundMoney(totalReturn * 100)
	perf.AvgReturnPct = core.RoundMoney(totalReturn / float64(len(trips)) * 100)
	perf.SharpeRatio = core.Round(calculateSharpeRatio(returns), 4)

	return perf
}

// calculateMaxDrawdown finds the largest peak-to-trough decline of an
// equity curve, as a fraction of the peak
func calculateMaxDrawdown(equity []float64) float64 {
	var maxDD, peak float64

	for _, v := range equity {
		if v > peak {
			peak = v
		}
		if peak > 0 {
			dd := (peak - v) / peak
			if dd > maxDD {
				maxDD = dd
			}
		}
	}

	return maxDD
}

// calculateSharpeRatio computes risk-adjusted return
// Assumes risk-free rate of 0 for simplicity
func calculateSharpeRatio(returns []float64) float64 {
	if len(returns) < 2 {
		return 0
	}

	// Calculate mean return
	var sum float64
	for _, r := range returns {
		sum += r
	}
	mean := sum / float64(len(returns))

	// Calculate standard deviation
	var variance float64
	for _, r := range returns {
		variance += (r - mean) * (r - mean)
	}
	stdDev := math.Sqrt(variance / float64(len(returns)-1))

	if stdDev == 0 {
		return 0
	}

	// Annualize (assuming ~252 trading days)
	annualizedReturn := mean * 252
	annualizedStdDev := stdDev * math.Sqrt(252)

	return annualizedReturn / annualizedStdDev
}
