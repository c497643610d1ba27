package crypto

import (
	"context"
	"time"

	"github.com/newthinker/tradando/internal/core"
)

// Provider defines the interface for cryptocurrency data sources
type Provider interface {
	// Name returns the provider identifier (e.g., "binance", "okx")
	Name() string

	// FetchHistory fetches historical OHLCV data
	// symbol: normalized format (e.g., "BTCUSDT")
	// interval: "1m", "5m", "15m", "1h", "4h", "1d"
	FetchHistory(ctx context.Context, symbol string, start, end time.Time, interval string) ([]core.OHLCV, error)
}
