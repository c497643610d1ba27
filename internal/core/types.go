package core

import "time"

// OHLCV represents a candlestick/bar
type OHLCV struct {
	Symbol   string    `json:"symbol,omitempty"`
	Interval string    `json:"interval,omitempty"` // "5m", "1h", "1d"
	Open     float64   `json:"open"`
	High     float64   `json:"high"`
	Low      float64   `json:"low"`
	Close    float64   `json:"close"`
	Volume   int64     `json:"volume"`
	Time     time.Time `json:"time"`
}

// Closes extracts the closing prices of the given bars
func Closes(bars []OHLCV) []float64 {
	prices := make([]float64, len(bars))
	for i, bar := range bars {
		prices[i] = bar.Close
	}
	return prices
}

// Signal is a per-bar trading directive
type Signal int8

const (
	SignalSell Signal = -1
	SignalHold Signal = 0
	SignalBuy  Signal = 1
)

func (s Signal) String() string {
	switch s {
	case SignalBuy:
		return "buy"
	case SignalSell:
		return "sell"
	default:
		return "hold"
	}
}

// Side is the direction of an executed fill
type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// Reason explains why a fill was executed
type Reason string

const (
	ReasonSignal     Reason = "signal"
	ReasonStopLoss   Reason = "stop_loss"
	ReasonTakeProfit Reason = "take_profit"
)

// Trade is an executed fill. Prices and amounts are rounded when the trade is
// recorded and never mutated afterwards.
type Trade struct {
	Side   Side      `json:"type"`
	Reason Reason    `json:"reason"`
	Price  float64   `json:"price"`
	Time   time.Time `json:"timestamp"`
	Amount float64   `json:"amount"` // cash value of the fill
	Shares float64   `json:"shares"`

	// Set on sells only
	PnLPct     *float64 `json:"pnl_pct,omitempty"`
	PnLAmount  *float64 `json:"pnl_amount,omitempty"`
	EntryPrice *float64 `json:"entry_price,omitempty"`
}

// IsSell returns true if the trade closed a position
func (t Trade) IsSell() bool {
	return t.Side == SideSell
}
