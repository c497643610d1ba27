package crypto

import (
	"context"
	"fmt"
	"time"

	"github.com/newthinker/tradando/internal/collector"
	"github.com/newthinker/tradando/internal/core"
)

// DefaultQuote is the stablecoin bare and fiat-quoted symbols trade against
const DefaultQuote = "USDT"

// CryptoCollector implements collector.Collector for cryptocurrency markets
// over an ordered list of exchange providers.
type CryptoCollector struct {
	providers    []Provider
	defaultQuote string
}

// NewWithProviders creates a CryptoCollector with the given providers
func NewWithProviders(providers []Provider, defaultQuote string) *CryptoCollector {
	if defaultQuote == "" {
		defaultQuote = DefaultQuote
	}
	return &CryptoCollector{
		providers:    providers,
		defaultQuote: defaultQuote,
	}
}

// Init applies default_quote from cfg.Extra
func (c *CryptoCollector) Init(cfg collector.Config) error {
	if raw, ok := cfg.Extra["default_quote"]; ok {
		quote, isString := raw.(string)
		if !isString || quote == "" {
			return core.WrapError(core.ErrConfigInvalid, fmt.Errorf("default_quote must be a non-empty string"))
		}
		c.defaultQuote = quote
	}
	return nil
}

func (c *CryptoCollector) Name() string {
	return "crypto"
}

// Supports accepts trading pairs such as BTC-USD, BTC/USDT or ETHBTC
func (c *CryptoCollector) Supports(symbol string) bool {
	return IsPair(symbol)
}

// FetchHistory fetches historical OHLCV data with automatic fallback
func (c *CryptoCollector) FetchHistory(ctx context.Context, symbol string, start, end time.Time, interval string) ([]core.OHLCV, error) {
	// Validate and normalize symbol
	if err := ValidateCryptoSymbol(symbol); err != nil {
		return nil, err
	}
	normalized := NormalizeSymbol(symbol, c.defaultQuote)

	// Try each provider in order
	var lastErr error
	for _, p := range c.providers {
		data, err := p.FetchHistory(ctx, normalized, start, end, interval)
		if err == nil && len(data) > 0 {
			// Bars keep the caller's symbol so reports name what was asked for
			for i := range data {
				data[i].Symbol = symbol
			}
			return data, nil
		}
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
		}
	}

	if lastErr != nil {
		return nil, fmt.Errorf("all providers failed for %s: %w", normalized, lastErr)
	}
	return nil, nil
}
