// Package describe produces human-readable strategy descriptions, asking an
// LLM when one is configured and falling back to the strategy's own text.
package describe

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/newthinker/tradando/internal/core"
	"github.com/newthinker/tradando/internal/llm"
	"github.com/newthinker/tradando/internal/metrics"
	"github.com/newthinker/tradando/internal/strategy"
	"go.uber.org/zap"
)

const (
	DefaultTimeout   = 20 * time.Second
	DefaultMaxTokens = 256
)

const systemPrompt = `You are a quantitative trading assistant. Describe trading strategies for a backtest report.
Answer with one or two plain sentences. No markdown, no lists, no disclaimers.`

// Describer turns a configured strategy into a short description
type Describer struct {
	llm       llm.Provider
	timeout   time.Duration
	maxTokens int
	logger    *zap.Logger
	metrics   *metrics.Registry
}

// Option configures a Describer
type Option func(*Describer)

func WithTimeout(d time.Duration) Option {
	return func(s *Describer) {
		if d > 0 {
			s.timeout = d
		}
	}
}

func WithMaxTokens(n int) Option {
	return func(s *Describer) {
		if n > 0 {
			s.maxTokens = n
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(s *Describer) {
		if l != nil {
			s.logger = l
		}
	}
}

func WithMetrics(m *metrics.Registry) Option {
	return func(s *Describer) { s.metrics = m }
}

// New creates a Describer. provider may be nil.
func New(provider llm.Provider, opts ...Option) *Describer {
	d := &Describer{
		llm:       provider,
		timeout:   DefaultTimeout,
		maxTokens: DefaultMaxTokens,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Describe never fails: any LLM problem yields strat.Description().
func (d *Describer) Describe(ctx context.Context, strat strategy.Strategy) string {
	if d == nil || d.llm == nil {
		return strat.Description()
	}

	text, err := d.Generate(ctx, strat)
	if err != nil {
		d.logger.Warn("using static strategy description",
			zap.String("strategy", strat.Name()),
			zap.String("provider", d.llm.Name()),
			zap.Error(err),
		)
		d.metrics.RecordDescriptionFallback()
		return strat.Description()
	}
	return text
}

// Generate asks the LLM for a description. Failures are ErrDescriptionFailed.
func (d *Describer) Generate(ctx context.Context, strat strategy.Strategy) (string, error) {
	if d.llm == nil {
		return "", core.WrapError(core.ErrDescriptionFailed, errors.New("no llm provider configured"))
	}

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	answer, err := llm.Ask(ctx, d.llm, systemPrompt, buildPrompt(strat), d.maxTokens)
	if err != nil {
		return "", core.WrapError(core.ErrDescriptionFailed, err)
	}

	answer = clean(answer)
	if answer == "" {
		return "", core.WrapError(core.ErrDescriptionFailed, errors.New("empty answer"))
	}
	return answer, nil
}

func buildPrompt(strat strategy.Strategy) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("## Strategy: %s\n", strat.Name()))
	sb.WriteString(fmt.Sprintf("Summary: %s\n\n", strat.Description()))

	params := strat.Params()
	if len(params) > 0 {
		keys := make([]string, 0, len(params))
		for k := range params {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		sb.WriteString("## Parameters:\n")
		for _, k := range keys {
			sb.WriteString(fmt.Sprintf("- %s: %v\n", k, params[k]))
		}
		sb.WriteString("\n")
	}

	sb.WriteString("## Task:\n")
	sb.WriteString("Explain when this strategy enters and exits a long position, using the parameter values above.\n")
	return sb.String()
}

// clean trims whitespace and surrounding quotes from a model answer
func clean(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, "\"'`")
	return strings.TrimSpace(s)
}
