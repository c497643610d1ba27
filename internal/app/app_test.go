package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/newthinker/tradando/internal/backtest"
	"github.com/newthinker/tradando/internal/config"
	"github.com/newthinker/tradando/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var baseTime = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

type mockCollector struct {
	calls atomic.Int32
}

func (m *mockCollector) Name() string { return "mock" }
func (m *mockCollector) Supports(symbol string) bool { return true }

// FetchHistory serves a 60-bar linear rise from 100 to 160 for any symbol
// except BAD
func (m *mockCollector) FetchHistory(ctx context.Context, symbol string, start, end time.Time, interval string) ([]core.OHLCV, error) {
	m.calls.Add(1)
	if symbol == "BAD" {
		return nil, errors.New("upstream unavailable")
	}
	bars := make([]core.OHLCV, 60)
	for i := range bars {
		bars[i] = core.OHLCV{
			Symbol: symbol,
			Close:  100 + float64(i)*60/59,
			Time:   baseTime.AddDate(0, 0, i),
		}
	}
	return bars, nil
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()

	cfg := config.Defaults()
	cfg.Collectors = map[string]config.CollectorConfig{}
	cfg.Storage.Archive.Path = filepath.Join(dir, "archive")
	cfg.Storage.Journal.Path = filepath.Join(dir, "journal.db")
	cfg.Metrics.Textfile = filepath.Join(dir, "tradando.prom")
	return cfg
}

func newTestApp(t *testing.T, cfg *config.Config) (*App, *mockCollector) {
	t.Helper()
	a, err := New(cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	a.now = func() time.Time { return baseTime.AddDate(0, 3, 0) }
	mc := &mockCollector{}
	a.RegisterCollector(mc)
	return a, mc
}

func TestNew_DefaultCollectors(t *testing.T) {
	a, err := New(config.Defaults(), nil)
	require.NoError(t, err)

	var names []string
	for _, c := range a.collectors.GetAll() {
		names = append(names, c.Name())
	}
	assert.Equal(t, []string{"eastmoney", "crypto", "yahoo"}, names)
}

func TestNew_InvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   *core.Error
	}{
		{"validation", func(c *config.Config) { c.Backtest.InitialCash = -1 }, core.ErrConfigInvalid},
		{"unknown collector", func(c *config.Config) {
			c.Collectors["bloomberg"] = config.CollectorConfig{Enabled: true}
		}, core.ErrConfigInvalid},
		{"unknown crypto provider", func(c *config.Config) {
			c.Collectors["crypto"] = config.CollectorConfig{Enabled: true, Providers: []string{"kraken"}}
		}, core.ErrConfigInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Defaults()
			tt.mutate(cfg)
			_, err := New(cfg, nil)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestApp_Request(t *testing.T) {
	a, _ := newTestApp(t, testConfig(t))

	req := a.Request(backtest.Request{Symbol: "AAPL"})
	assert.Equal(t, baseTime.AddDate(0, 3, 0), req.End)
	assert.Equal(t, req.End.AddDate(0, 0, -365), req.Start)
	assert.Equal(t, "1d", req.Interval)
	assert.Equal(t, 10000.0, req.InitialValue)

	custom := a.Request(backtest.Request{Interval: "1w", InitialValue: 500})
	assert.Equal(t, "1w", custom.Interval)
	assert.Equal(t, 500.0, custom.InitialValue)
}

func TestApp_Strategies(t *testing.T) {
	cfg := testConfig(t)
	cfg.Strategies["sma_cross"] = config.StrategyConfig{Params: map[string]any{"fast_period": 10}}
	a, _ := newTestApp(t, cfg)

	infos, err := a.Strategies()
	require.NoError(t, err)
	require.Len(t, infos, 3)

	assert.Equal(t, "macd", infos[0].Name)
	assert.Equal(t, "MACD (12/26/9) Crossover Strategy", infos[0].Description)
	assert.Equal(t, "rsi", infos[1].Name)
	assert.Equal(t, "sma_cross", infos[2].Name)
	assert.Equal(t, "Simple Moving Average Crossover (10/50)", infos[2].Description)
	assert.Equal(t, 50, infos[2].Lookback)
}

func TestApp_Backtest(t *testing.T) {
	a, _ := newTestApp(t, testConfig(t))
	ctx := context.Background()

	res, err := a.Backtest(ctx, "sma_cross", backtest.Request{Symbol: "AAPL"}, RunOptions{Archive: true, Journal: true})
	require.NoError(t, err)
	require.NotEmpty(t, res.RunID)

	report := res.Report
	assert.Equal(t, "AAPL", report.Symbol)
	assert.Equal(t, "Simple Moving Average Crossover (20/50)", report.Description)
	assert.Equal(t, 10539.33, report.FinalValue)
	assert.Equal(t, 3, report.NTrades)

	loaded, err := a.Report(ctx, res.ArchivePath)
	require.NoError(t, err)
	assert.Equal(t, report.FinalValue, loaded.FinalValue)

	runs, err := a.Runs(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, res.RunID, runs[0].RunID)

	trades, err := a.RunTrades(ctx, res.RunID)
	require.NoError(t, err)
	assert.Len(t, trades, 3)
}

func TestApp_Backtest_UnknownStrategySkipsFetch(t *testing.T) {
	a, mc := newTestApp(t, testConfig(t))

	_, err := a.Backtest(context.Background(), "bollinger", backtest.Request{Symbol: "AAPL"}, RunOptions{})
	assert.True(t, errors.Is(err, core.ErrUnknownStrategy))
	assert.Zero(t, mc.calls.Load())
}

func TestApp_Backtest_DataUnavailable(t *testing.T) {
	a, _ := newTestApp(t, testConfig(t))

	_, err := a.Backtest(context.Background(), "rsi", backtest.Request{Symbol: "BAD"}, RunOptions{})
	assert.True(t, errors.Is(err, core.ErrDataUnavailable))
}

func TestApp_Backtest_InvalidRange(t *testing.T) {
	a, _ := newTestApp(t, testConfig(t))

	_, err := a.Backtest(context.Background(), "rsi", backtest.Request{
		Symbol: "AAPL",
		Start:  baseTime,
		End:    baseTime.AddDate(0, 0, -1),
	}, RunOptions{})
	assert.True(t, errors.Is(err, core.ErrConfigInvalid))
}

func TestApp_Batch(t *testing.T) {
	a, _ := newTestApp(t, testConfig(t))
	ctx := context.Background()

	results, err := a.Batch(ctx, []string{"AAPL", "BAD"}, []string{"sma_cross", "macd"},
		backtest.Request{}, RunOptions{Journal: true})
	require.NoError(t, err)
	require.Len(t, results, 4)

	assert.Equal(t, "AAPL", results[0].Job.Symbol)
	assert.Equal(t, "sma_cross", results[0].Job.Strategy.Name())
	assert.NoError(t, results[0].Err)
	assert.Equal(t, "Simple Moving Average Crossover (20/50)", results[0].Report.Description)
	assert.NoError(t, results[1].Err)
	assert.True(t, errors.Is(results[2].Err, core.ErrDataUnavailable))
	assert.True(t, errors.Is(results[3].Err, core.ErrDataUnavailable))

	runs, err := a.Runs(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, runs, 2)
}

func TestApp_Batch_UnknownStrategy(t *testing.T) {
	a, mc := newTestApp(t, testConfig(t))

	_, err := a.Batch(context.Background(), []string{"AAPL"}, []string{"rsi", "nope"}, backtest.Request{}, RunOptions{})
	assert.True(t, errors.Is(err, core.ErrUnknownStrategy))
	assert.Zero(t, mc.calls.Load())
}

func TestApp_CloseWritesMetrics(t *testing.T) {
	cfg := testConfig(t)
	a, err := New(cfg, nil)
	require.NoError(t, err)
	a.RegisterCollector(&mockCollector{})

	_, err = a.Backtest(context.Background(), "sma_cross", backtest.Request{
		Symbol: "AAPL",
		Start:  baseTime,
		End:    baseTime.AddDate(0, 3, 0),
	}, RunOptions{})
	require.NoError(t, err)
	require.NoError(t, a.Close())

	data, err := os.ReadFile(cfg.Metrics.Textfile)
	require.NoError(t, err)
	assert.Contains(t, string(data), `tradando_backtests_total{status="success",strategy="sma_cross"} 1`)
}
