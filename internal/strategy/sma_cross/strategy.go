package sma_cross

import (
	"fmt"

	"github.com/newthinker/tradando/internal/core"
	"github.com/newthinker/tradando/internal/indicator"
	"github.com/newthinker/tradando/internal/strategy"
)

// Name is the registry key of this strategy
const Name = "sma_cross"

const (
	DefaultFastPeriod = 20
	DefaultSlowPeriod = 50
)

// SMACross implements a simple moving average crossover strategy: long while
// the fast average is above the slow one.
type SMACross struct {
	strategy.ExitRule
	fastPeriod int
	slowPeriod int
}

// New creates a new SMA crossover strategy
func New(fastPeriod, slowPeriod int, exit strategy.ExitRule) *SMACross {
	return &SMACross{
		ExitRule:   exit,
		fastPeriod: fastPeriod,
		slowPeriod: slowPeriod,
	}
}

// Factory builds the strategy from fast_period, slow_period and exit levels
func Factory(p strategy.Params) (strategy.Strategy, error) {
	fast, err := p.PositiveInt("fast_period", DefaultFastPeriod)
	if err != nil {
		return nil, err
	}
	slow, err := p.PositiveInt("slow_period", DefaultSlowPeriod)
	if err != nil {
		return nil, err
	}
	exit, err := p.ExitRule()
	if err != nil {
		return nil, err
	}
	return New(fast, slow, exit), nil
}

func (m *SMACross) Name() string {
	return Name
}

func (m *SMACross) Description() string {
	return fmt.Sprintf("Simple Moving Average Crossover (%d/%d)", m.fastPeriod, m.slowPeriod)
}

func (m *SMACross) Lookback() int {
	return max(m.fastPeriod, m.slowPeriod)
}

func (m *SMACross) Params() map[string]any {
	p := m.ExitRule.Params()
	p["fast_period"] = m.fastPeriod
	p["slow_period"] = m.slowPeriod
	return p
}

// FastColumn and SlowColumn name the indicator columns, e.g. sma_20
func (m *SMACross) FastColumn() string { return fmt.Sprintf("sma_%d", m.fastPeriod) }
func (m *SMACross) SlowColumn() string { return fmt.Sprintf("sma_%d", m.slowPeriod) }

func (m *SMACross) GenerateSignals(bars []core.OHLCV) strategy.Frame {
	prices := core.Closes(bars)
	fastMA := indicator.SMA(prices, m.fastPeriod)
	slowMA := indicator.SMA(prices, m.slowPeriod)

	frame := strategy.NewFrame(bars)
	frame.Columns = []strategy.Column{
		{Name: m.FastColumn(), Values: fastMA},
		{Name: m.SlowColumn(), Values: slowMA},
	}

	for i := range bars {
		fast, slow := fastMA[i], slowMA[i]
		if !fast.Valid || !slow.Valid {
			continue
		}
		switch {
		case fast.Float > slow.Float:
			frame.Signals[i] = core.SignalBuy
		case fast.Float < slow.Float:
			frame.Signals[i] = core.SignalSell
		}
	}

	return frame
}
