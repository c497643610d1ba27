package strategy

import (
	"fmt"

	"github.com/newthinker/tradando/internal/core"
	"github.com/spf13/cast"
)

// Params holds raw strategy parameters as decoded from configuration
type Params map[string]any

// Int returns the named parameter as an int, or def when absent
func (p Params) Int(key string, def int) (int, error) {
	raw, ok := p[key]
	if !ok || raw == nil {
		return def, nil
	}
	v, err := cast.ToIntE(raw)
	if err != nil {
		return 0, core.WrapError(core.ErrConfigInvalid, fmt.Errorf("%s: %w", key, err))
	}
	return v, nil
}

// Float returns the named parameter as a float64, or def when absent
func (p Params) Float(key string, def float64) (float64, error) {
	raw, ok := p[key]
	if !ok || raw == nil {
		return def, nil
	}
	v, err := cast.ToFloat64E(raw)
	if err != nil {
		return 0, core.WrapError(core.ErrConfigInvalid, fmt.Errorf("%s: %w", key, err))
	}
	return v, nil
}

// PositiveInt is Int that additionally rejects values below 1
func (p Params) PositiveInt(key string, def int) (int, error) {
	v, err := p.Int(key, def)
	if err != nil {
		return 0, err
	}
	if v < 1 {
		return 0, core.WrapError(core.ErrConfigInvalid, fmt.Errorf("%s must be positive, got %d", key, v))
	}
	return v, nil
}

// ExitRule decodes stop_loss_pct and take_profit_pct, defaulting to 5%/5%
func (p Params) ExitRule() (ExitRule, error) {
	rule := DefaultExitRule()

	var err error
	if rule.StopLossPct, err = p.Float("stop_loss_pct", rule.StopLossPct); err != nil {
		return ExitRule{}, err
	}
	if rule.TakeProfitPct, err = p.Float("take_profit_pct", rule.TakeProfitPct); err != nil {
		return ExitRule{}, err
	}

	if rule.StopLossPct < 0 || rule.TakeProfitPct < 0 {
		return ExitRule{}, core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("exit levels cannot be negative, got stop_loss_pct=%v take_profit_pct=%v",
				rule.StopLossPct, rule.TakeProfitPct))
	}
	return rule, nil
}
