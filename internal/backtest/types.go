package backtest

import (
	"time"

	"github.com/newthinker/tradando/internal/portfolio"
)

// DefaultInitialValue is the starting cash of a run when none is configured
const DefaultInitialValue = 10000.0

// Request describes a backtest over a symbol's fetched history
type Request struct {
	Symbol       string
	Start        time.Time
	End          time.Time
	Interval     string
	InitialValue float64
}

// Report is the end-of-run summary. It carries no wall-clock data, so
// identical inputs encode to identical JSON.
type Report struct {
	Strategy            string         `json:"strategy"`
	Description         string         `json:"description,omitempty"`
	Symbol              string         `json:"symbol,omitempty"`
	Params              map[string]any `json:"params"`
	Lookback            int            `json:"lookback"`
	BarsSimulated       int            `json:"bars_simulated"`
	InsufficientHistory bool           `json:"insufficient_history"`

	InitialValue   float64 `json:"initial_value"`
	FinalValue     float64 `json:"final_value"`
	ReturnPct      float64 `json:"return_pct"`
	PriceChangePct float64 `json:"price_change_pct"`
	CurrentPrice   float64 `json:"current_price"`
	Holdings       float64 `json:"holdings"`
	Cash           float64 `json:"cash"`

	portfolio.Statistics

	Performance Performance `json:"performance"`
}

// RoundTrip is a closed BUY→SELL pair
type RoundTrip struct {
	EntryPrice float64
	ExitPrice  float64
	EntryTime  time.Time
	ExitTime   time.Time
	Return     float64 // fractional return, 0.05 = 5%
}

// IsWin returns true if the round trip was profitable
func (r RoundTrip) IsWin() bool {
	return r.Return > 0
}

// Performance holds statistics over closed round trips and the bar-by-bar
// equity curve. Percentages are rounded to 2 decimals.
type Performance struct {
	RoundTrips     int     `json:"round_trips"`
	WinningTrades  int     `json:"winning_trades"`
	LosingTrades   int     `json:"losing_trades"`
	WinRate        float64 `json:"win_rate"`
	TotalReturnPct float64 `json:"total_return_pct"`
	AvgReturnPct   float64 `json:"avg_return_pct"`
	MaxDrawdownPct float64 `json:"max_drawdown_pct"`
	SharpeRatio    float64 `json:"sharpe_ratio"` // annualized, risk-free rate 0
}
