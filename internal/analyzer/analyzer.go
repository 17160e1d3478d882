package analyzer

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"MarketMovers/internal/gateway"
	"MarketMovers/internal/metrics"
	"MarketMovers/internal/model"
)

// MaxWorkers caps concurrent gateway calls regardless of configuration.
const MaxWorkers = 5

// Outcome is the typed result of processing one symbol: exactly one of Record or Skip is set.
type Outcome struct {
	Index  int
	Symbol model.Symbol
	Record *model.PerformanceRecord
	Skip   *model.Skip
}

// Result is the aggregated output of a batch.
type Result struct {
	Table      model.ResultTable
	RangeLabel string // empty when Table is empty
	Skipped    []model.Skip
	// Interrupted is the context error when the batch stopped early; Table still holds partial results.
	Interrupted error
}

// Analyzer drives symbols through a Gateway and the metrics engine.
type Analyzer struct {
	Gateway gateway.Gateway
	Logger  *zap.Logger
	// Pace is the minimum interval between gateway calls across all workers.
	Pace    time.Duration
	Workers int
}

// New creates an Analyzer. workers is clamped to [1, MaxWorkers].
func New(gw gateway.Gateway, logger *zap.Logger, pace time.Duration, workers int) *Analyzer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Analyzer{Gateway: gw, Logger: logger, Pace: pace, Workers: workers}
}

func (a *Analyzer) workers() int {
	switch {
	case a.Workers < 1:
		return 1
	case a.Workers > MaxWorkers:
		return MaxWorkers
	default:
		return a.Workers
	}
}

// Analyze processes symbols for a lookback of days. Per-symbol failures are
// recorded as skips and never abort the batch.
func (a *Analyzer) Analyze(ctx context.Context, symbols []model.Symbol, days int) *Result {
	outcomes := make([]Outcome, len(symbols))

	bucket, ok := gateway.ResolveBucket(days)
	if !ok {
		for i, sym := range symbols {
			a.Logger.Warn("no lookback bucket covers window, skipping",
				zap.String("ticker", sym.Ticker), zap.Int("days", days))
			outcomes[i] = skipOutcome(i, sym, model.SkipNoBucket, "window outside supported buckets")
		}
		return aggregate(outcomes, "", nil)
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if a.Pace > 0 {
		limiter = rate.NewLimiter(rate.Every(a.Pace), 1)
	}

	total := len(symbols)
	g := new(errgroup.Group)
	g.SetLimit(a.workers())

	for i, sym := range symbols {
		if ctx.Err() != nil {
			outcomes[i] = skipOutcome(i, sym, model.SkipCancelled, ctx.Err().Error())
			continue
		}
		i, sym := i, sym // per-iteration copy; module targets go 1.21 (pre-1.22 loopvar semantics)
		g.Go(func() error {
			if err := limiter.Wait(ctx); err != nil {
				outcomes[i] = skipOutcome(i, sym, model.SkipCancelled, err.Error())
				return nil
			}
			a.Logger.Info("fetching data",
				zap.String("ticker", sym.Ticker), zap.Int("n", i+1), zap.Int("total", total))
			outcomes[i] = a.analyzeOne(ctx, i, sym, bucket)
			return nil
		})
	}
	_ = g.Wait() // workers never return errors; outcomes carry them

	return aggregate(outcomes, bucket.Label, ctx.Err())
}

func (a *Analyzer) analyzeOne(ctx context.Context, i int, sym model.Symbol, bucket model.Bucket) Outcome {
	log := a.Logger.With(zap.String("ticker", sym.Ticker), zap.String("bucket", bucket.Period))

	series, err := a.Gateway.Fetch(ctx, sym.Ticker, bucket)
	if err != nil {
		if ctx.Err() != nil {
			return skipOutcome(i, sym, model.SkipCancelled, err.Error())
		}
		if !errors.Is(err, gateway.ErrUnavailable) {
			log.Error("gateway returned unexpected error", zap.Error(err))
		} else {
			log.Warn("no data available", zap.Error(err))
		}
		return skipOutcome(i, sym, model.SkipUnavailable, err.Error())
	}

	perf, err := metrics.Compute(series)
	if err != nil {
		log.Warn("cannot compute performance", zap.Error(err))
		return skipOutcome(i, sym, model.SkipInsufficientData, err.Error())
	}

	return Outcome{
		Index:  i,
		Symbol: sym,
		Record: &model.PerformanceRecord{
			Name:       sym.Name,
			Ticker:     sym.Ticker,
			StartPrice: perf.StartPrice,
			EndPrice:   perf.EndPrice,
			GrowthPct:  perf.GrowthPct,
			Volatility: perf.Volatility,
			RangeLabel: series.RangeLabel(),
		},
	}
}

func skipOutcome(i int, sym model.Symbol, reason model.SkipReason, detail string) Outcome {
	return Outcome{Index: i, Symbol: sym, Skip: &model.Skip{Symbol: sym, Reason: reason, Detail: detail}}
}

// aggregate linearizes outcomes in input order.
func aggregate(outcomes []Outcome, label string, interrupted error) *Result {
	res := &Result{Interrupted: interrupted}
	for _, o := range outcomes {
		switch {
		case o.Record != nil:
			res.Table = append(res.Table, *o.Record)
		case o.Skip != nil:
			res.Skipped = append(res.Skipped, *o.Skip)
		}
	}
	if len(res.Table) > 0 {
		res.RangeLabel = label
	}
	return res
}
