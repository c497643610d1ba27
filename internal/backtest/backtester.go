package backtest

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/newthinker/tradando/internal/core"
	"github.com/newthinker/tradando/internal/metrics"
	"github.com/newthinker/tradando/internal/portfolio"
	"github.com/newthinker/tradando/internal/strategy"
	"go.uber.org/zap"
)

// PriceProvider defines the interface for fetching historical OHLCV data
type PriceProvider interface {
	FetchHistory(ctx context.Context, symbol string, start, end time.Time, interval string) ([]core.OHLCV, error)
}

// Backtester runs strategy backtests against historical data
type Backtester struct {
	provider PriceProvider
	logger   *zap.Logger
	metrics  *metrics.Registry
}

// Option configures a Backtester
type Option func(*Backtester)

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(b *Backtester) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithMetrics records run and fill metrics into reg
func WithMetrics(reg *metrics.Registry) Option {
	return func(b *Backtester) {
		b.metrics = reg
	}
}

// New creates a new Backtester. provider may be nil when only Run is used.
func New(provider PriceProvider, opts ...Option) *Backtester {
	b := &Backtester{
		provider: provider,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// RunSymbol fetches the requested history and backtests strat over it
func (b *Backtester) RunSymbol(ctx context.Context, strat strategy.Strategy, req Request) (*Report, error) {
	start := time.Now()

	report, err := b.runSymbol(ctx, strat, req)
	b.observe(strat.Name(), start, err)
	return report, err
}

func (b *Backtester) runSymbol(ctx context.Context, strat strategy.Strategy, req Request) (*Report, error) {
	if b.provider == nil {
		return nil, core.WrapError(core.ErrConfigMissing, fmt.Errorf("no price provider configured"))
	}

	interval := req.Interval
	if interval == "" {
		interval = "1d"
	}

	bars, err := b.provider.FetchHistory(ctx, req.Symbol, req.Start, req.End, interval)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, core.WrapError(core.ErrDataUnavailable, fmt.Errorf("%s: %w", req.Symbol, err))
	}
	if len(bars) == 0 {
		return nil, core.WrapError(core.ErrDataUnavailable, fmt.Errorf("%s: no bars between %s and %s",
			req.Symbol, req.Start.Format(time.DateOnly), req.End.Format(time.DateOnly)))
	}

	report, err := b.simulate(ctx, strat, bars, req.InitialValue)
	if err != nil {
		return nil, err
	}
	if report.Symbol == "" {
		report.Symbol = req.Symbol
	}
	return report, nil
}

// Run walks strat forward over bars starting with initialValue cash. Empty
// bars fail with ErrDataUnavailable; a series shorter than the strategy's
// lookback yields a report without trades.
func (b *Backtester) Run(ctx context.Context, strat strategy.Strategy, bars []core.OHLCV, initialValue float64) (*Report, error) {
	start := time.Now()

	report, err := b.simulate(ctx, strat, bars, initialValue)
	b.observe(strat.Name(), start, err)
	return report, err
}

func (b *Backtester) simulate(ctx context.Context, strat strategy.Strategy, bars []core.OHLCV, initialValue float64) (*Report, error) {
	if len(bars) == 0 {
		return nil, core.WrapError(core.ErrDataUnavailable, fmt.Errorf("empty price series"))
	}
	if err := validateSeries(bars); err != nil {
		return nil, err
	}
	if initialValue <= 0 || math.IsNaN(initialValue) || math.IsInf(initialValue, 0) {
		return nil, core.WrapError(core.ErrConfigInvalid, fmt.Errorf("initial value must be positive, got %v", initialValue))
	}

	symbol := bars[0].Symbol
	lookback := max(strat.Lookback(), 0)

	b.logger.Debug("backtest started",
		zap.String("strategy", strat.Name()),
		zap.String("symbol", symbol),
		zap.Int("bars", len(bars)),
		zap.Int("lookback", lookback),
	)

	frame := strat.GenerateSignals(bars)
	ledger := portfolio.New(initialValue)
	equity := make([]float64, 0, max(len(bars)-lookback, 0))

	for i := lookback; i < len(bars); i++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		bar := bars[i]

		// Exit rules take precedence over the bar's signal
		if ledger.IsLong() {
			if decision := strat.CheckExit(bar.Close, ledger.EntryPrice()); decision.Exit {
				if trade, ok := ledger.ExecuteSell(bar.Close, bar.Time, decision.Reason); ok {
					b.recordTrade(strat.Name(), symbol, trade)
				}
				equity = append(equity, ledger.CurrentValue(bar.Close))
				continue
			}
		}

		switch frame.SignalAt(i) {
		case core.SignalBuy:
			if trade, ok := ledger.ExecuteBuy(bar.Close, bar.Time); ok {
				b.recordTrade(strat.Name(), symbol, trade)
			}
		case core.SignalSell:
			if trade, ok := ledger.ExecuteSell(bar.Close, bar.Time, core.ReasonSignal); ok {
				b.recordTrade(strat.Name(), symbol, trade)
			}
		}

		equity = append(equity, ledger.CurrentValue(bar.Close))
	}

	insufficient := len(bars) <= lookback
	if insufficient {
		b.logger.Warn("price series shorter than strategy lookback",
			zap.String("strategy", strat.Name()),
			zap.String("symbol", symbol),
			zap.Int("bars", len(bars)),
			zap.Int("lookback", lookback),
			zap.Error(core.ErrInsufficientHistory),
		)
	}

	report := b.compileReport(strat, ledger, bars, lookback, equity)
	report.Symbol = symbol
	report.InsufficientHistory = insufficient

	b.logger.Info("backtest finished",
		zap.String("strategy", strat.Name()),
		zap.String("symbol", symbol),
		zap.Int("trades", report.NTrades),
		zap.Float64("return_pct", report.ReturnPct),
	)

	return report, nil
}

func (b *Backtester) compileReport(strat strategy.Strategy, ledger *portfolio.Portfolio, bars []core.OHLCV, lookback int, equity []float64) *Report {
	last := bars[len(bars)-1]

	// Benchmark over the simulated range, or the whole series when nothing
	// was simulated
	first := bars[0]
	if lookback < len(bars) {
		first = bars[lookback]
	}

	initial := ledger.InitialCash()
	final := core.RoundMoney(ledger.CurrentValue(last.Close))
	stats := ledger.Statistics()

	return &Report{
		Strategy:       strat.Name(),
		Params:         strat.Params(),
		Lookback:       lookback,
		BarsSimulated:  len(equity),
		InitialValue:   initial,
		FinalValue:     final,
		ReturnPct:      core.RoundMoney((final - initial) / initial * 100),
		PriceChangePct: core.RoundMoney((last.Close - first.Close) / first.Close * 100),
		CurrentPrice:   core.RoundMoney(last.Close),
		Holdings:       core.RoundShares(ledger.Holdings()),
		Cash:           core.RoundMoney(ledger.Cash()),
		Statistics:     stats,
		Performance:    CalculatePerformance(stats.Trades, equity),
	}
}

// validateSeries requires strictly increasing timestamps and positive, finite
// closes
func validateSeries(bars []core.OHLCV) error {
	for i, bar := range bars {
		if math.IsNaN(bar.Close) || math.IsInf(bar.Close, 0) || bar.Close <= 0 {
			return core.WrapError(core.ErrInvalidSeries, fmt.Errorf("bar %d: close %v", i, bar.Close))
		}
		if i > 0 && !bar.Time.After(bars[i-1].Time) {
			return core.WrapError(core.ErrInvalidSeries, fmt.Errorf("bar %d: timestamp %s not after %s",
				i, bar.Time.Format(time.RFC3339), bars[i-1].Time.Format(time.RFC3339)))
		}
	}
	return nil
}

func (b *Backtester) recordTrade(strategyName, symbol string, trade core.Trade) {
	b.metrics.RecordTrade(string(trade.Side), string(trade.Reason))
	b.logger.Debug("trade executed",
		zap.String("strategy", strategyName),
		zap.String("symbol", symbol),
		zap.String("side", string(trade.Side)),
		zap.String("reason", string(trade.Reason)),
		zap.Float64("price", trade.Price),
		zap.Time("at", trade.Time),
	)
}

func (b *Backtester) observe(strategyName string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	b.metrics.RecordBacktest(strategyName, status, time.Since(start).Seconds())
}
