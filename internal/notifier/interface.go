package notifier

import (
	"context"

	"github.com/newthinker/tradando/internal/backtest"
)

// Config holds notifier configuration
type Config struct {
	Params map[string]any `mapstructure:"params"`
}

// Summary is the outcome of a batch of backtests
type Summary struct {
	Title string
	Rows  []backtest.SummaryRow
}

// Failed counts the rows that carry an error
func (s Summary) Failed() int {
	n := 0
	for _, r := range s.Rows {
		if r.Error != "" {
			n++
		}
	}
	return n
}

// Notifier publishes backtest summaries to an external channel
type Notifier interface {
	// Name returns the unique identifier for this notifier
	Name() string

	// Init applies configuration params and checks required fields
	Init(cfg Config) error

	// Notify publishes one summary
	Notify(ctx context.Context, summary Summary) error
}
