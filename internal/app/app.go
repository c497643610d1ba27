// Package app wires configuration into a ready-to-run backtesting service:
// collectors, strategies, the describer, persistence, notifiers and metrics.
package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/newthinker/tradando/internal/backtest"
	"github.com/newthinker/tradando/internal/collector"
	"github.com/newthinker/tradando/internal/config"
	"github.com/newthinker/tradando/internal/core"
	"github.com/newthinker/tradando/internal/describe"
	"github.com/newthinker/tradando/internal/llm/factory"
	"github.com/newthinker/tradando/internal/metrics"
	"github.com/newthinker/tradando/internal/notifier"
	"github.com/newthinker/tradando/internal/storage/archive"
	"github.com/newthinker/tradando/internal/storage/journal"
	"github.com/newthinker/tradando/internal/strategy"
	"github.com/newthinker/tradando/internal/strategy/builtin"
	"go.uber.org/zap"
)

// App is the main application orchestrator
type App struct {
	cfg        *config.Config
	logger     *zap.Logger
	metrics    *metrics.Registry
	strategies *strategy.Registry
	collectors *collector.Registry
	backtester *backtest.Backtester
	describer  *describe.Describer
	notifiers  *notifier.Registry

	now      func() time.Time
	newRunID func() string

	mu      sync.Mutex
	reports *archive.ReportStore
	journal *journal.SQLite
}

// RunOptions selects where a finished run is persisted
type RunOptions struct {
	Archive bool
	Journal bool
}

// RunResult is a finished single backtest
type RunResult struct {
	RunID       string           `json:"run_id"`
	ArchivePath string           `json:"archive_path,omitempty"`
	Report      *backtest.Report `json:"report"`
}

// StrategyInfo describes a registered strategy as configured
type StrategyInfo struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Lookback    int            `json:"lookback"`
	Params      map[string]any `json:"params"`
}

// New validates cfg and builds every component it enables
func New(cfg *config.Config, logger *zap.Logger) (*App, error) {
	if cfg == nil {
		cfg = config.Defaults()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	reg := metrics.NewRegistry()

	collectors, err := buildCollectors(cfg.Collectors, logger)
	if err != nil {
		return nil, err
	}

	notifiers, err := buildNotifiers(cfg.Notifiers, logger)
	if err != nil {
		return nil, err
	}

	provider, err := factory.New(cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("creating llm provider: %w", err)
	}

	a := &App{
		cfg:        cfg,
		logger:     logger,
		metrics:    reg,
		strategies: builtin.NewRegistry(logger),
		collectors: collectors,
		notifiers:  notifiers,
		describer: describe.New(provider,
			describe.WithTimeout(cfg.LLM.Timeout),
			describe.WithMaxTokens(cfg.LLM.MaxTokens),
			describe.WithLogger(logger),
			describe.WithMetrics(reg),
		),
		now:      time.Now,
		newRunID: uuid.NewString,
	}
	a.backtester = backtest.New(collector.NewChain(collectors, logger),
		backtest.WithLogger(logger),
		backtest.WithMetrics(reg),
	)
	return a, nil
}

// RegisterCollector adds or replaces a price collector
func (a *App) RegisterCollector(c collector.Collector) {
	a.collectors.Register(c)
}

// Metrics returns the metrics registry
func (a *App) Metrics() *metrics.Registry {
	return a.metrics
}

// Strategy builds the named strategy with its configured params
func (a *App) Strategy(name string) (strategy.Strategy, error) {
	return a.strategies.New(name, a.cfg.StrategyParams(name))
}

// Strategies lists every registered strategy as configured
func (a *App) Strategies() ([]StrategyInfo, error) {
	names := a.strategies.Names()
	infos := make([]StrategyInfo, 0, len(names))
	for _, name := range names {
		s, err := a.Strategy(name)
		if err != nil {
			return nil, fmt.Errorf("strategy %s: %w", name, err)
		}
		infos = append(infos, StrategyInfo{
			Name:        s.Name(),
			Description: s.Description(),
			Lookback:    s.Lookback(),
			Params:      s.Params(),
		})
	}
	return infos, nil
}

// Request fills the unset fields of req from configuration. A zero End is
// now; a zero Start is history_days before End.
func (a *App) Request(req backtest.Request) backtest.Request {
	if req.End.IsZero() {
		req.End = a.now()
	}
	if req.Start.IsZero() {
		req.Start = req.End.AddDate(0, 0, -a.cfg.Backtest.HistoryDays)
	}
	if req.Interval == "" {
		req.Interval = a.cfg.Backtest.Interval
	}
	if req.InitialValue == 0 {
		req.InitialValue = a.cfg.Backtest.InitialCash
	}
	return req
}

// Backtest runs one strategy over one symbol. Unknown strategies fail
// before any data is fetched.
func (a *App) Backtest(ctx context.Context, strategyName string, req backtest.Request, opts RunOptions) (*RunResult, error) {
	strat, err := a.Strategy(strategyName)
	if err != nil {
		return nil, err
	}
	req = a.Request(req)
	if !req.End.After(req.Start) {
		return nil, core.WrapError(core.ErrConfigInvalid, errors.New("end must be after start"))
	}

	a.logger.Info("running backtest",
		zap.String("strategy", strategyName),
		zap.String("symbol", req.Symbol),
		zap.Time("start", req.Start),
		zap.Time("end", req.End),
	)

	report, err := a.backtester.RunSymbol(ctx, strat, req)
	if err != nil {
		return nil, err
	}
	report.Description = a.describer.Describe(ctx, strat)

	result := &RunResult{RunID: a.newRunID(), Report: report}
	if err := a.persist(ctx, result, opts); err != nil {
		return result, err
	}
	return result, nil
}

// Batch backtests every symbol × strategy pair. Strategy names are resolved
// before any job starts; per-job failures are reported in the results.
func (a *App) Batch(ctx context.Context, symbols, strategyNames []string, tmpl backtest.Request, opts RunOptions) ([]backtest.JobResult, error) {
	strats := make([]strategy.Strategy, 0, len(strategyNames))
	descriptions := make(map[string]string, len(strategyNames))
	for _, name := range strategyNames {
		s, err := a.Strategy(name)
		if err != nil {
			return nil, err
		}
		strats = append(strats, s)
		descriptions[name] = a.describer.Describe(ctx, s)
	}

	jobs := make([]backtest.Job, 0, len(symbols)*len(strats))
	for _, symbol := range symbols {
		for _, s := range strats {
			jobs = append(jobs, backtest.Job{Symbol: symbol, Strategy: s})
		}
	}

	batch := backtest.NewBatch(a.backtester,
		backtest.WithConcurrency(a.cfg.Batch.Concurrency),
		backtest.WithJobTimeout(a.cfg.Batch.Timeout),
		backtest.WithBatchMetrics(a.metrics),
		backtest.WithBatchLogger(a.logger),
	)
	results := batch.Run(ctx, jobs, a.Request(tmpl))

	var errs []error
	for _, r := range results {
		if r.Err != nil || r.Report == nil {
			continue
		}
		r.Report.Description = descriptions[r.Job.Strategy.Name()]
		if err := a.persist(ctx, &RunResult{RunID: a.newRunID(), Report: r.Report}, opts); err != nil {
			errs = append(errs, err)
		}
	}
	return results, errors.Join(errs...)
}

func (a *App) persist(ctx context.Context, result *RunResult, opts RunOptions) error {
	if opts.Archive {
		store, err := a.reportStore()
		if err != nil {
			return err
		}
		if result.ArchivePath, err = store.Save(ctx, result.Report); err != nil {
			return err
		}
		a.logger.Debug("report archived", zap.String("path", result.ArchivePath))
	}
	if opts.Journal {
		j, err := a.openJournal(ctx)
		if err != nil {
			return err
		}
		if err := j.RecordRun(ctx, result.RunID, result.Report); err != nil {
			return err
		}
		a.logger.Debug("run journaled", zap.String("run_id", result.RunID))
	}
	return nil
}

// Runs lists journaled runs, newest first
func (a *App) Runs(ctx context.Context, limit int) ([]journal.Run, error) {
	j, err := a.openJournal(ctx)
	if err != nil {
		return nil, err
	}
	return j.ListRuns(ctx, limit)
}

// RunTrades returns the fills of a journaled run
func (a *App) RunTrades(ctx context.Context, runID string) ([]core.Trade, error) {
	j, err := a.openJournal(ctx)
	if err != nil {
		return nil, err
	}
	return j.Trades(ctx, runID)
}

// Report loads an archived report
func (a *App) Report(ctx context.Context, path string) (*backtest.Report, error) {
	store, err := a.reportStore()
	if err != nil {
		return nil, err
	}
	return store.Load(ctx, path)
}

func (a *App) reportStore() (*archive.ReportStore, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.reports == nil {
		storage, err := archive.Open(a.cfg.Storage.Archive)
		if err != nil {
			return nil, err
		}
		a.reports = archive.NewReportStore(storage)
	}
	return a.reports, nil
}

func (a *App) openJournal(ctx context.Context) (*journal.SQLite, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.journal == nil {
		path := a.cfg.Storage.Journal.Path
		if path == "" {
			path = "data/journal.db"
		}
		j, err := journal.Open(ctx, path)
		if err != nil {
			return nil, err
		}
		a.journal = j
	}
	return a.journal, nil
}

// Close exports metrics to the configured textfile and releases the journal
func (a *App) Close() error {
	var errs []error
	if err := a.metrics.WriteTextfile(a.cfg.Metrics.Textfile); err != nil {
		errs = append(errs, fmt.Errorf("writing metrics: %w", err))
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.journal != nil {
		if err := a.journal.Close(); err != nil {
			errs = append(errs, err)
		}
		a.journal = nil
	}
	return errors.Join(errs...)
}
