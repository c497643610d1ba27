package strategy

import (
	"testing"

	"github.com/newthinker/tradando/internal/core"
)

func ptr(f float64) *float64 { return &f }

func TestExitRule_CheckExit(t *testing.T) {
	rule := DefaultExitRule()

	tests := []struct {
		name       string
		current    float64
		entry      *float64
		wantExit   bool
		wantReason core.Reason
	}{
		{"no entry", 50, nil, false, ""},
		{"zero entry", 50, ptr(0), false, ""},
		{"within band", 102, ptr(100), false, ""},
		{"stop loss exactly", 95, ptr(100), true, core.ReasonStopLoss},
		{"stop loss beyond", 90, ptr(100), true, core.ReasonStopLoss},
		{"take profit exactly", 105, ptr(100), true, core.ReasonTakeProfit},
		{"take profit beyond", 120, ptr(100), true, core.ReasonTakeProfit},
		{"just above stop", 95.01, ptr(100), false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := rule.CheckExit(tt.current, tt.entry)
			if got.Exit != tt.wantExit {
				t.Errorf("Exit = %v, want %v", got.Exit, tt.wantExit)
			}
			if got.Reason != tt.wantReason {
				t.Errorf("Reason = %q, want %q", got.Reason, tt.wantReason)
			}
		})
	}
}

func TestExitRule_StopLossWinsOnOverlap(t *testing.T) {
	// Pathological config: both thresholds trigger on any move
	rule := ExitRule{StopLossPct: -10, TakeProfitPct: -10}

	got := rule.CheckExit(99, ptr(100))
	if !got.Exit || got.Reason != core.ReasonStopLoss {
		t.Errorf("expected stop_loss to take precedence, got %+v", got)
	}
}

func TestExitRule_ChangePct(t *testing.T) {
	got := DefaultExitRule().CheckExit(103, ptr(100))
	if got.ChangePct < 2.999 || got.ChangePct > 3.001 {
		t.Errorf("ChangePct = %f, want 3", got.ChangePct)
	}
}
