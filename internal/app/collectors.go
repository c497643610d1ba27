package app

import (
	"fmt"

	"github.com/newthinker/tradando/internal/collector"
	"github.com/newthinker/tradando/internal/collector/crypto"
	"github.com/newthinker/tradando/internal/collector/crypto/binance"
	"github.com/newthinker/tradando/internal/collector/crypto/okx"
	"github.com/newthinker/tradando/internal/collector/eastmoney"
	"github.com/newthinker/tradando/internal/collector/yahoo"
	"github.com/newthinker/tradando/internal/config"
	"github.com/newthinker/tradando/internal/core"
	"go.uber.org/zap"
)

// collectorOrder fixes fallback priority independent of map iteration
var collectorOrder = []string{"eastmoney", "crypto", "yahoo"}

// buildCollectors registers every enabled collector in priority order
func buildCollectors(cfg map[string]config.CollectorConfig, logger *zap.Logger) (*collector.Registry, error) {
	registry := collector.NewRegistry()

	for name := range cfg {
		if !knownCollector(name) {
			return nil, core.WrapError(core.ErrConfigInvalid, fmt.Errorf("unknown collector: %s", name))
		}
	}

	for _, name := range collectorOrder {
		cc, ok := cfg[name]
		if !ok || !cc.Enabled {
			continue
		}

		var c collector.Collector
		switch name {
		case "yahoo":
			if cc.BaseURL != "" {
				c = yahoo.NewWithBaseURL(cc.BaseURL)
			} else {
				c = yahoo.New()
			}
		case "eastmoney":
			if cc.BaseURL != "" {
				c = eastmoney.NewWithBaseURL(cc.BaseURL)
			} else {
				c = eastmoney.New()
			}
		case "crypto":
			cryptoCollector, err := buildCrypto(cc)
			if err != nil {
				return nil, err
			}
			c = cryptoCollector
		}

		registry.Register(c)
		logger.Debug("collector enabled", zap.String("collector", name))
	}

	return registry, nil
}

func knownCollector(name string) bool {
	for _, n := range collectorOrder {
		if n == name {
			return true
		}
	}
	return false
}

func buildCrypto(cc config.CollectorConfig) (*crypto.CryptoCollector, error) {
	names := cc.Providers
	if len(names) == 0 {
		names = []string{"binance", "okx"}
	}

	providers := make([]crypto.Provider, 0, len(names))
	for _, name := range names {
		switch name {
		case "binance":
			providers = append(providers, binance.New())
		case "okx":
			providers = append(providers, okx.New())
		default:
			return nil, core.WrapError(core.ErrConfigInvalid, fmt.Errorf("unknown crypto provider: %s", name))
		}
	}

	c := crypto.NewWithProviders(providers, "")
	extra := map[string]any{}
	if cc.DefaultQuote != "" {
		extra["default_quote"] = cc.DefaultQuote
	}
	if err := c.Init(collector.Config{Enabled: cc.Enabled, Extra: extra}); err != nil {
		return nil, err
	}
	return c, nil
}
