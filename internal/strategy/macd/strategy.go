package macd

import (
	"fmt"

	"github.com/newthinker/tradando/internal/core"
	"github.com/newthinker/tradando/internal/indicator"
	"github.com/newthinker/tradando/internal/strategy"
)

// Name is the registry key of this strategy
const Name = "macd"

const (
	DefaultFastPeriod   = 12
	DefaultSlowPeriod   = 26
	DefaultSignalPeriod = 9
)

// Indicator column names
const (
	ColumnMACD      = "macd"
	ColumnSignal    = "macd_signal"
	ColumnHistogram = "macd_hist"
)

// MACD trades crossings of the MACD line through its signal line.
type MACD struct {
	strategy.ExitRule
	fastPeriod   int
	slowPeriod   int
	signalPeriod int
}

func New(fast, slow, signal int, exit strategy.ExitRule) *MACD {
	return &MACD{
		ExitRule:     exit,
		fastPeriod:   fast,
		slowPeriod:   slow,
		signalPeriod: signal,
	}
}

// Factory builds the strategy from fast_period, slow_period, signal_period
// and exit levels
func Factory(p strategy.Params) (strategy.Strategy, error) {
	fast, err := p.PositiveInt("fast_period", DefaultFastPeriod)
	if err != nil {
		return nil, err
	}
	slow, err := p.PositiveInt("slow_period", DefaultSlowPeriod)
	if err != nil {
		return nil, err
	}
	signal, err := p.PositiveInt("signal_period", DefaultSignalPeriod)
	if err != nil {
		return nil, err
	}
	exit, err := p.ExitRule()
	if err != nil {
		return nil, err
	}
	return New(fast, slow, signal, exit), nil
}

func (m *MACD) Name() string {
	return Name
}

func (m *MACD) Description() string {
	return fmt.Sprintf("MACD (%d/%d/%d) Crossover Strategy", m.fastPeriod, m.slowPeriod, m.signalPeriod)
}

// Lookback waits for the longest EMA span even though EMAs are defined from
// the first bar; early readings are dominated by the seed.
func (m *MACD) Lookback() int {
	return max(m.fastPeriod, m.slowPeriod, m.signalPeriod)
}

func (m *MACD) Params() map[string]any {
	p := m.ExitRule.Params()
	p["fast_period"] = m.fastPeriod
	p["slow_period"] = m.slowPeriod
	p["signal_period"] = m.signalPeriod
	return p
}

func (m *MACD) GenerateSignals(bars []core.OHLCV) strategy.Frame {
	prices := core.Closes(bars)
	line := indicator.Sub(indicator.EMA(prices, m.fastPeriod), indicator.EMA(prices, m.slowPeriod))

	lineValues := make([]float64, len(line))
	for i, v := range line {
		lineValues[i] = v.Float
	}
	signal := indicator.EMA(lineValues, m.signalPeriod)

	frame := strategy.NewFrame(bars)
	frame.Columns = []strategy.Column{
		{Name: ColumnMACD, Values: line},
		{Name: ColumnSignal, Values: signal},
		{Name: ColumnHistogram, Values: indicator.Sub(line, signal)},
	}

	for i := 1; i < len(bars); i++ {
		prevLine, prevSignal := line.At(i-1), signal.At(i-1)
		curLine, curSignal := line.At(i), signal.At(i)
		if !prevLine.Valid || !prevSignal.Valid || !curLine.Valid || !curSignal.Valid {
			continue
		}

		switch {
		case prevLine.Float <= prevSignal.Float && curLine.Float > curSignal.Float:
			frame.Signals[i] = core.SignalBuy
		case prevLine.Float >= prevSignal.Float && curLine.Float < curSignal.Float:
			frame.Signals[i] = core.SignalSell
		}
	}

	return frame
}
