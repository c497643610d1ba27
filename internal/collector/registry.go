package collector

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/newthinker/tradando/internal/core"
	"go.uber.org/zap"
)

// Registry manages collector plugins in registration order
type Registry struct {
	mu         sync.RWMutex
	collectors []Collector
}

// NewRegistry creates a new collector registry
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds a collector to the registry, replacing one with the same name
func (r *Registry) Register(c Collector) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, existing := range r.collectors {
		if existing.Name() == c.Name() {
			r.collectors[i] = c
			return
		}
	}
	r.collectors = append(r.collectors, c)
}

// Get retrieves a collector by name
func (r *Registry) Get(name string) (Collector, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.collectors {
		if c.Name() == name {
			return c, true
		}
	}
	return nil, false
}

// GetAll returns all registered collectors in registration order
func (r *Registry) GetAll() []Collector {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Collector, len(r.collectors))
	copy(result, r.collectors)
	return result
}

// Chain tries each registered collector that supports a symbol, in order,
// until one returns data.
type Chain struct {
	registry *Registry
	logger   *zap.Logger
}

// NewChain creates a fallback chain over the registry
func NewChain(registry *Registry, logger *zap.Logger) *Chain {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Chain{registry: registry, logger: logger}
}

// FetchHistory returns the first non-empty history. When every collector
// fails or returns nothing the error is ErrDataUnavailable.
func (c *Chain) FetchHistory(ctx context.Context, symbol string, start, end time.Time, interval string) ([]core.OHLCV, error) {
	var errs []error
	tried := 0

	for _, col := range c.registry.GetAll() {
		if !col.Supports(symbol) {
			continue
		}
		tried++

		data, err := col.FetchHistory(ctx, symbol, start, end, interval)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			c.logger.Warn("collector failed",
				zap.String("collector", col.Name()),
				zap.String("symbol", symbol),
				zap.Error(err),
			)
			errs = append(errs, fmt.Errorf("%s: %w", col.Name(), err))
			continue
		}
		if len(data) == 0 {
			c.logger.Debug("collector returned no data",
				zap.String("collector", col.Name()),
				zap.String("symbol", symbol),
			)
			continue
		}

		c.logger.Debug("history fetched",
			zap.String("collector", col.Name()),
			zap.String("symbol", symbol),
			zap.Int("bars", len(data)),
		)
		return data, nil
	}

	if tried == 0 {
		return nil, core.WrapError(core.ErrDataUnavailable, fmt.Errorf("no collector supports %q", symbol))
	}
	if len(errs) > 0 {
		return nil, core.WrapError(core.ErrDataUnavailable, core.WrapError(core.ErrCollectorFailed, errors.Join(errs...)))
	}
	return nil, core.WrapError(core.ErrDataUnavailable, fmt.Errorf("no data for %q", symbol))
}
