package strategy

import (
	"github.com/newthinker/tradando/internal/core"
	"github.com/newthinker/tradando/internal/indicator"
)

// Column is a named indicator series attached to a Frame
type Column struct {
	Name   string
	Values indicator.Series
}

// Frame is the input series augmented with indicator columns and a signal
// column, all aligned index-for-index with Bars.
type Frame struct {
	Bars    []core.OHLCV
	Columns []Column
	Signals []core.Signal
}

// Column returns the named indicator series
func (f Frame) Column(name string) (indicator.Series, bool) {
	for _, c := range f.Columns {
		if c.Name == name {
			return c.Values, true
		}
	}
	return nil, false
}

// SignalAt returns the signal at bar i, HOLD when out of range
func (f Frame) SignalAt(i int) core.Signal {
	if i < 0 || i >= len(f.Signals) {
		return core.SignalHold
	}
	return f.Signals[i]
}

// Strategy defines the interface for trading strategies
type Strategy interface {
	Name() string
	Description() string
	// Lookback is the index of the first bar whose indicators are all defined.
	Lookback() int
	Params() map[string]any
	// GenerateSignals must be a pure function of bars and the configured params.
	GenerateSignals(bars []core.OHLCV) Frame
	CheckExit(current float64, entry *float64) ExitDecision
}

// NewFrame allocates a frame with every signal set to HOLD
func NewFrame(bars []core.OHLCV) Frame {
	return Frame{
		Bars:    bars,
		Signals: make([]core.Signal, len(bars)),
	}
}
