package rsi

import (
	"fmt"

	"github.com/newthinker/tradando/internal/core"
	"github.com/newthinker/tradando/internal/indicator"
	"github.com/newthinker/tradando/internal/strategy"
)

// Name is the registry key of this strategy
const Name = "rsi"

const (
	DefaultPeriod     = 14
	DefaultOverbought = 70.0
	DefaultOversold   = 30.0
)

// Column is the name of the RSI indicator column
const Column = "rsi"

// RSI buys oversold and sells overbought readings of the Relative Strength Index.
type RSI struct {
	strategy.ExitRule
	period     int
	overbought float64
	oversold   float64
}

func New(period int, overbought, oversold float64, exit strategy.ExitRule) *RSI {
	return &RSI{
		ExitRule:   exit,
		period:     period,
		overbought: overbought,
		oversold:   oversold,
	}
}

// Factory builds the strategy from period, overbought, oversold and exit levels
func Factory(p strategy.Params) (strategy.Strategy, error) {
	period, err := p.PositiveInt("period", DefaultPeriod)
	if err != nil {
		return nil, err
	}
	overbought, err := p.Float("overbought", DefaultOverbought)
	if err != nil {
		return nil, err
	}
	oversold, err := p.Float("oversold", DefaultOversold)
	if err != nil {
		return nil, err
	}
	if oversold < 0 || overbought > 100 || oversold >= overbought {
		return nil, core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("thresholds must satisfy 0 <= oversold < overbought <= 100, got %v/%v", oversold, overbought))
	}
	exit, err := p.ExitRule()
	if err != nil {
		return nil, err
	}
	return New(period, overbought, oversold, exit), nil
}

func (r *RSI) Name() string {
	return Name
}

func (r *RSI) Description() string {
	return fmt.Sprintf("RSI (%d) with Overbought (%g) and Oversold (%g) levels", r.period, r.overbought, r.oversold)
}

func (r *RSI) Lookback() int {
	return r.period
}

func (r *RSI) Params() map[string]any {
	p := r.ExitRule.Params()
	p["period"] = r.period
	p["overbought"] = r.overbought
	p["oversold"] = r.oversold
	return p
}

func (r *RSI) GenerateSignals(bars []core.OHLCV) strategy.Frame {
	values := indicator.RSI(core.Closes(bars), r.period)

	frame := strategy.NewFrame(bars)
	frame.Columns = []strategy.Column{{Name: Column, Values: values}}

	for i, v := range values {
		if !v.Valid {
			continue
		}
		switch {
		case v.Float < r.oversold:
			frame.Signals[i] = core.SignalBuy
		case v.Float > r.overbought:
			frame.Signals[i] = core.SignalSell
		}
	}

	return frame
}
