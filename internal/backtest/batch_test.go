package backtest

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/newthinker/tradando/internal/core"
	"github.com/newthinker/tradando/internal/metrics"
	"github.com/newthinker/tradando/internal/strategy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// symbolProvider serves per-symbol bars and tracks peak concurrency
type symbolProvider struct {
	mu      sync.Mutex
	bars    map[string][]core.OHLCV
	delay   time.Duration
	running atomic.Int32
	peak    atomic.Int32
}

func (p *symbolProvider) FetchHistory(ctx context.Context, symbol string, start, end time.Time, interval string) ([]core.OHLCV, error) {
	n := p.running.Add(1)
	defer p.running.Add(-1)
	for {
		old := p.peak.Load()
		if n <= old || p.peak.CompareAndSwap(old, n) {
			break
		}
	}

	if p.delay > 0 {
		select {
		case <-time.After(p.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	return p.bars[symbol], nil
}

func TestBatch_Run(t *testing.T) {
	provider := &symbolProvider{bars: map[string][]core.OHLCV{
		"AAPL": makeBars(100, 110),
		"MSFT": makeBars(200, 190),
	}}
	buyFirst := &mockStrategy{
		ExitRule: strategy.ExitRule{StopLossPct: 50, TakeProfitPct: 50},
		name:     "buy_first",
		signals:  []core.Signal{core.SignalBuy},
	}

	jobs := []Job{
		{Symbol: "AAPL", Strategy: buyFirst},
		{Symbol: "MISSING", Strategy: buyFirst},
		{Symbol: "MSFT", Strategy: buyFirst},
	}

	results := NewBatch(New(provider), WithBatchMetrics(metrics.NewRegistry())).
		Run(context.Background(), jobs, Request{InitialValue: 10000})

	require.Len(t, results, 3)
	for i, r := range results {
		assert.Equal(t, jobs[i].Symbol, r.Job.Symbol, "results must keep job order")
	}

	require.NoError(t, results[0].Err)
	assert.Equal(t, 10.0, results[0].Report.ReturnPct)

	assert.ErrorIs(t, results[1].Err, core.ErrDataUnavailable)
	assert.Nil(t, results[1].Report)

	require.NoError(t, results[2].Err)
	assert.Equal(t, -5.0, results[2].Report.ReturnPct)

	rows := Summarize(results)
	assert.Equal(t, SummaryRow{Symbol: "AAPL", Strategy: "buy_first", ReturnPct: 10, NTrades: 1}, rows[0])
	assert.NotEmpty(t, rows[1].Error)
	assert.Equal(t, "MSFT", rows[2].Symbol)
}

func TestBatch_RespectsConcurrency(t *testing.T) {
	bars := map[string][]core.OHLCV{}
	var jobs []Job
	strat := &mockStrategy{name: "hold"}
	for _, sym := range []string{"A", "B", "C", "D", "E", "F"} {
		bars[sym] = makeBars(10, 11)
		jobs = append(jobs, Job{Symbol: sym, Strategy: strat})
	}
	provider := &symbolProvider{bars: bars, delay: 20 * time.Millisecond}

	results := NewBatch(New(provider), WithConcurrency(2)).Run(context.Background(), jobs, Request{InitialValue: 1000})

	for _, r := range results {
		assert.NoError(t, r.Err)
	}
	assert.LessOrEqual(t, provider.peak.Load(), int32(2))
}

func TestBatch_JobTimeout(t *testing.T) {
	provider := &symbolProvider{
		bars:  map[string][]core.OHLCV{"SLOW": makeBars(1, 2)},
		delay: time.Second,
	}
	jobs := []Job{{Symbol: "SLOW", Strategy: &mockStrategy{name: "hold"}}}

	results := NewBatch(New(provider), WithJobTimeout(10*time.Millisecond)).
		Run(context.Background(), jobs, Request{InitialValue: 1000})

	assert.ErrorIs(t, results[0].Err, context.DeadlineExceeded)
}
