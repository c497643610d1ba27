package strategy

import "github.com/newthinker/tradando/internal/core"

// Default risk levels, in percent
const (
	DefaultStopLossPct   = 5.0
	DefaultTakeProfitPct = 5.0
)

// ExitRule closes an open position on a stop-loss or take-profit breach.
// Stop-loss is evaluated first; overlapping levels are not guarded.
type ExitRule struct {
	StopLossPct   float64
	TakeProfitPct float64
}

// DefaultExitRule returns the 5%/5% exit rule
func DefaultExitRule() ExitRule {
	return ExitRule{
		StopLossPct:   DefaultStopLossPct,
		TakeProfitPct: DefaultTakeProfitPct,
	}
}

// ExitDecision is the outcome of an exit check
type ExitDecision struct {
	Exit      bool
	Reason    core.Reason
	ChangePct float64
}

// CheckExit decides whether the position entered at entry must be closed at
// current. A nil or non-positive entry means no position.
func (r ExitRule) CheckExit(current float64, entry *float64) ExitDecision {
	if entry == nil || *entry <= 0 {
		return ExitDecision{}
	}

	changePct := (current - *entry) / *entry * 100

	if changePct <= -r.StopLossPct {
		return ExitDecision{Exit: true, Reason: core.ReasonStopLoss, ChangePct: changePct}
	}
	if changePct >= r.TakeProfitPct {
		return ExitDecision{Exit: true, Reason: core.ReasonTakeProfit, ChangePct: changePct}
	}

	return ExitDecision{ChangePct: changePct}
}

// Params returns the exit levels keyed as in configuration
func (r ExitRule) Params() map[string]any {
	return map[string]any{
		"stop_loss_pct":   r.StopLossPct,
		"take_profit_pct": r.TakeProfitPct,
	}
}
