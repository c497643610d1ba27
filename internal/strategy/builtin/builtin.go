// Package builtin wires the bundled signal generators into a registry.
package builtin

import (
	"github.com/newthinker/tradando/internal/strategy"
	"github.com/newthinker/tradando/internal/strategy/macd"
	"github.com/newthinker/tradando/internal/strategy/rsi"
	"github.com/newthinker/tradando/internal/strategy/sma_cross"
	"go.uber.org/zap"
)

// Register adds sma_cross, rsi and macd to r
func Register(r *strategy.Registry) {
	r.Register(sma_cross.Name, sma_cross.Factory)
	r.Register(rsi.Name, rsi.Factory)
	r.Register(macd.Name, macd.Factory)
}

// NewRegistry returns a registry holding every bundled strategy
func NewRegistry(logger *zap.Logger) *strategy.Registry {
	r := strategy.NewRegistry(logger)
	Register(r)
	return r
}
