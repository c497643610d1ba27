package backtest

import (
	"context"
	"time"

	"github.com/newthinker/tradando/internal/metrics"
	"github.com/newthinker/tradando/internal/strategy"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency bounds parallel batch jobs when none is configured
const DefaultConcurrency = 4

// Job is one symbol × strategy backtest of a batch
type Job struct {
	Symbol   string
	Strategy strategy.Strategy
}

// JobResult holds either the report or the failure of a job
type JobResult struct {
	Job    Job
	Report *Report
	Err    error
}

// SummaryRow is the condensed outcome of a job
type SummaryRow struct {
	Symbol    string  `json:"symbol"`
	Strategy  string  `json:"strategy"`
	ReturnPct float64 `json:"return_pct"`
	NTrades   int     `json:"n_trades"`
	Error     string  `json:"error,omitempty"`
}

// Batch runs independent backtests in parallel. Each job owns its ledger;
// strategies are shared read-only.
type Batch struct {
	backtester  *Backtester
	concurrency int
	jobTimeout  time.Duration
	metrics     *metrics.Registry
	logger      *zap.Logger
}

// BatchOption configures a Batch
type BatchOption func(*Batch)

// WithConcurrency limits the number of jobs running at once
func WithConcurrency(n int) BatchOption {
	return func(b *Batch) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// WithJobTimeout bounds each job, data fetch included
func WithJobTimeout(d time.Duration) BatchOption {
	return func(b *Batch) {
		b.jobTimeout = d
	}
}

// WithBatchMetrics tracks active jobs in reg
func WithBatchMetrics(reg *metrics.Registry) BatchOption {
	return func(b *Batch) {
		b.metrics = reg
	}
}

// WithBatchLogger sets the logger
func WithBatchLogger(logger *zap.Logger) BatchOption {
	return func(b *Batch) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// NewBatch creates a batch runner over bt
func NewBatch(bt *Backtester, opts ...BatchOption) *Batch {
	b := &Batch{
		backtester:  bt,
		concurrency: DefaultConcurrency,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Run executes every job over the window described by tmpl (its Symbol is
// ignored). Results keep the order of jobs. A failed job never cancels its
// siblings; only ctx does.
func (b *Batch) Run(ctx context.Context, jobs []Job, tmpl Request) []JobResult {
	results := make([]JobResult, len(jobs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.concurrency)

	for i, job := range jobs {
		g.Go(func() error {
			results[i] = b.runJob(gctx, job, tmpl)
			return nil
		})
	}

	_ = g.Wait()

	return results
}

func (b *Batch) runJob(ctx context.Context, job Job, tmpl Request) JobResult {
	b.metrics.BatchJobStarted()
	defer b.metrics.BatchJobFinished()

	if b.jobTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.jobTimeout)
		defer cancel()
	}

	req := tmpl
	req.Symbol = job.Symbol

	report, err := b.backtester.RunSymbol(ctx, job.Strategy, req)
	if err != nil {
		b.logger.Warn("batch job failed",
			zap.String("symbol", job.Symbol),
			zap.String("strategy", job.Strategy.Name()),
			zap.Error(err),
		)
	}
	return JobResult{Job: job, Report: report, Err: err}
}

// Summarize condenses results into one row per job
func Summarize(results []JobResult) []SummaryRow {
	rows := make([]SummaryRow, len(results))
	for i, r := range results {
		row := SummaryRow{
			Symbol:   r.Job.Symbol,
			Strategy: r.Job.Strategy.Name(),
		}
		if r.Err != nil {
			row.Error = r.Err.Error()
		} else if r.Report != nil {
			row.ReturnPct = r.Report.ReturnPct
			row.NTrades = r.Report.NTrades
		}
		rows[i] = row
	}
	return rows
}
