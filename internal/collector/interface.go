package collector

import (
	"context"
	"time"

	"github.com/newthinker/tradando/internal/core"
)

// Config holds collector configuration
type Config struct {
	Enabled bool
	Extra   map[string]any
}

// Collector defines the interface for historical price sources
type Collector interface {
	Name() string

	// Supports reports whether the collector understands the symbol format
	Supports(symbol string) bool

	// FetchHistory returns bars in ascending time order
	FetchHistory(ctx context.Context, symbol string, start, end time.Time, interval string) ([]core.OHLCV, error)
}
