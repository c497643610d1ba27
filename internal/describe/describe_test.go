package describe

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/newthinker/tradando/internal/core"
	"github.com/newthinker/tradando/internal/llm"
	"github.com/newthinker/tradando/internal/metrics"
	"github.com/newthinker/tradando/internal/strategy"
	"github.com/newthinker/tradando/internal/strategy/sma_cross"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type fakeProvider struct {
	answer string
	err    error
	block  bool
	last   llm.ChatRequest
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Chat(ctx context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
	f.last = req
	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if f.err != nil {
		return nil, f.err
	}
	return &llm.ChatResponse{Content: f.answer}, nil
}

func fallbacks(t *testing.T, reg *metrics.Registry) float64 {
	t.Helper()
	mfs, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range mfs {
		if mf.GetName() == "tradando_description_fallbacks_total" {
			return mf.GetMetric()[0].GetCounter().GetValue()
		}
	}
	return 0
}

func newStrategy() strategy.Strategy {
	return sma_cross.New(5, 10, strategy.DefaultExitRule())
}

func TestDescribe_UsesLLMAnswer(t *testing.T) {
	p := &fakeProvider{answer: "  \"Buys when the 5-bar average crosses above the 10-bar average.\"\n"}
	d := New(p, WithMaxTokens(100))

	got := d.Describe(context.Background(), newStrategy())
	assert.Equal(t, "Buys when the 5-bar average crosses above the 10-bar average.", got)

	require.Len(t, p.last.Messages, 1)
	assert.Equal(t, llm.RoleUser, p.last.Messages[0].Role)
	assert.Equal(t, 100, p.last.MaxTokens)
	prompt := p.last.Messages[0].Content
	assert.Contains(t, prompt, "## Strategy: sma_cross")
	assert.Contains(t, prompt, "- fast_period: 5")
	assert.Contains(t, prompt, "- slow_period: 10")
	assert.Less(t, strings.Index(prompt, "fast_period"), strings.Index(prompt, "slow_period"))
}

func TestDescribe_NilProvider(t *testing.T) {
	d := New(nil)
	assert.Equal(t, "Simple Moving Average Crossover (5/10)", d.Describe(context.Background(), newStrategy()))

	var nilDescriber *Describer
	assert.Equal(t, "Simple Moving Average Crossover (5/10)", nilDescriber.Describe(context.Background(), newStrategy()))
}

func TestDescribe_Fallbacks(t *testing.T) {
	tests := []struct {
		name     string
		provider *fakeProvider
	}{
		{name: "provider error", provider: &fakeProvider{err: core.WrapError(core.ErrLLMFailed, errors.New("boom"))}},
		{name: "empty answer", provider: &fakeProvider{answer: " \n "}},
		{name: "timeout", provider: &fakeProvider{block: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obs, logs := observer.New(zap.WarnLevel)
			reg := metrics.NewRegistry()
			d := New(tt.provider,
				WithTimeout(20*time.Millisecond),
				WithLogger(zap.New(obs)),
				WithMetrics(reg),
			)

			got := d.Describe(context.Background(), newStrategy())
			assert.Equal(t, "Simple Moving Average Crossover (5/10)", got)
			assert.Equal(t, 1, logs.Len())
			assert.Equal(t, float64(1), fallbacks(t, reg))
		})
	}
}

func TestGenerate_ErrorCodes(t *testing.T) {
	d := New(&fakeProvider{err: core.WrapError(core.ErrLLMFailed, errors.New("boom"))})
	_, err := d.Generate(context.Background(), newStrategy())
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrDescriptionFailed))
	assert.True(t, errors.Is(err, core.ErrLLMFailed))

	_, err = New(nil).Generate(context.Background(), newStrategy())
	assert.True(t, errors.Is(err, core.ErrDescriptionFailed))
}

func TestGenerate_Timeout(t *testing.T) {
	d := New(&fakeProvider{block: true}, WithTimeout(10*time.Millisecond))
	_, err := d.Generate(context.Background(), newStrategy())
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}
