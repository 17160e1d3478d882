package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"MarketMovers/internal/analyzer"
	"MarketMovers/internal/gateway"
	"MarketMovers/internal/model"
	"MarketMovers/internal/notifier"
	"MarketMovers/internal/ranker"
	"MarketMovers/internal/recorder"
	"MarketMovers/internal/report"
	"MarketMovers/internal/universe"
)

// ErrAlreadyRunning is returned when Run is called while another run is in progress.
var ErrAlreadyRunning = errors.New("a run is already in progress")

const stampLayout = "20060102_150405"

// Config is the per-run input of the pipeline.
type Config struct {
	Days      int
	TopN      int
	Sources   []string
	OutputDir string
	// Timeout bounds the analysis stage; zero means no limit.
	Timeout time.Duration
}

// RunSummary describes one completed (or failed) run.
type RunSummary struct {
	RunID       string
	StartedAt   time.Time
	FinishedAt  time.Time
	Status      string
	OutputDir   string
	Report      *model.Report
	Skipped     []model.Skip
	Artifacts   []*report.Artifacts
	Interrupted error
}

// Runner wires the stages of a report run together.
type Runner struct {
	Config    Config
	Gateway   gateway.Gateway
	Analyzer  *analyzer.Analyzer
	Recorder  recorder.Recorder
	Notifiers []notifier.Notifier
	Logger    *zap.Logger
	Now       func() time.Time

	runMu sync.Mutex
	mu    sync.Mutex
	last  *RunSummary
}

// NewRunner creates a Runner. A nil recorder or logger is replaced by a no-op.
func NewRunner(cfg Config, gw gateway.Gateway, an *analyzer.Analyzer, rec recorder.Recorder, notifiers []notifier.Notifier, logger *zap.Logger) *Runner {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		Config:    cfg,
		Gateway:   gw,
		Analyzer:  an,
		Recorder:  rec,
		Notifiers: notifiers,
		Logger:    logger,
		Now:       time.Now,
	}
}

// LastSummary returns the most recent successful summary kept in memory, or nil.
func (r *Runner) LastSummary() *RunSummary {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last
}

// Run executes one report run. Fatal errors (malformed universe, empty table)
// stop the run before any artifact is written. Delivery errors are returned
// after artifacts and history have been written, together with the summary.
func (r *Runner) Run(ctx context.Context) (*RunSummary, error) {
	if !r.runMu.TryLock() {
		return nil, ErrAlreadyRunning
	}
	defer r.runMu.Unlock()

	now := r.Now()
	sum := &RunSummary{RunID: uuid.NewString(), StartedAt: now}
	log := r.Logger.With(zap.String("run_id", sum.RunID))
	log.Info("report run started", zap.Int("days", r.Config.Days), zap.Int("top_n", r.Config.TopN))

	symbols, err := universe.LoadFiles(r.Config.Sources)
	if err != nil {
		return r.fail(log, sum, fmt.Errorf("load universe: %w", err))
	}
	log.Info("universe loaded", zap.Int("symbols", len(symbols)))

	actx := ctx
	if r.Config.Timeout > 0 {
		var cancel context.CancelFunc
		actx, cancel = context.WithTimeout(ctx, r.Config.Timeout)
		defer cancel()
	}
	res := r.Analyzer.Analyze(actx, symbols, r.Config.Days)
	sum.Skipped = res.Skipped
	sum.Interrupted = res.Interrupted
	if res.Interrupted != nil {
		log.Warn("analysis interrupted, continuing with partial results",
			zap.Error(res.Interrupted), zap.Int("analyzed", len(res.Table)))
	}
	if err := r.Recorder.RecordSkips(sum.RunID, res.Skipped); err != nil {
		log.Error("record skips", zap.Error(err))
	}

	top, bottom, err := ranker.Rank(res.Table, r.Config.TopN)
	if err != nil {
		return r.fail(log, sum, fmt.Errorf("rank: %w", err))
	}
	bucket, _ := gateway.ResolveBucket(r.Config.Days)

	stamp := now.Format(stampLayout)
	sum.OutputDir = filepath.Join(r.Config.OutputDir, "results_"+stamp)
	sink, err := report.NewSink(sum.OutputDir, stamp, r.Gateway, log)
	if err != nil {
		return r.fail(log, sum, err)
	}

	rep := &model.Report{
		RunID:       sum.RunID,
		GeneratedAt: now,
		TopN:        r.Config.TopN,
		RangeLabel:  res.RangeLabel,
		Top:         top,
		Bottom:      bottom,
		Analyzed:    len(res.Table),
		Skipped:     len(res.Skipped),
	}
	sum.Report = rep

	for _, side := range []struct {
		side model.Side
		rows model.RankedSlice
	}{{model.SideTop, top}, {model.SideBottom, bottom}} {
		art, err := sink.WriteSide(ctx, side.side, r.Config.TopN, bucket, side.rows)
		if err != nil {
			return r.fail(log, sum, fmt.Errorf("write %s outputs: %w", side.side, err))
		}
		sum.Artifacts = append(sum.Artifacts, art)
		rep.Attachments = append(rep.Attachments, art.Charts...)

		if err := r.Recorder.RecordRanked(sum.RunID, side.side, side.rows); err != nil {
			log.Error("record ranked rows", zap.String("side", string(side.side)), zap.Error(err))
		}
	}

	sum.Status = recorder.StatusOK
	if res.Interrupted != nil {
		sum.Status = recorder.StatusInterrupted
	}

	deliveryErr := r.deliver(ctx, log, rep)
	if deliveryErr != nil {
		sum.Status = recorder.StatusUndelivered
	}

	sum.FinishedAt = r.Now()
	r.record(log, sum, deliveryErr)

	r.mu.Lock()
	r.last = sum
	r.mu.Unlock()

	log.Info("report run finished",
		zap.String("status", sum.Status),
		zap.String("output_dir", sum.OutputDir),
		zap.Int("analyzed", rep.Analyzed),
		zap.Int("skipped", rep.Skipped),
		zap.Duration("elapsed", sum.FinishedAt.Sub(sum.StartedAt)),
	)
	return sum, deliveryErr
}

// deliver sends the report through every notifier; each failure is logged and joined.
func (r *Runner) deliver(ctx context.Context, log *zap.Logger, rep *model.Report) error {
	var errs []error
	for _, n := range r.Notifiers {
		if err := n.Send(ctx, rep); err != nil {
			log.Error("report delivery failed", zap.String("channel", n.Name()), zap.Error(err))
			errs = append(errs, err)
			continue
		}
		log.Info("report delivered", zap.String("channel", n.Name()))
	}
	return errors.Join(errs...)
}

func (r *Runner) fail(log *zap.Logger, sum *RunSummary, err error) (*RunSummary, error) {
	sum.Status = recorder.StatusFailed
	sum.FinishedAt = r.Now()
	log.Error("report run failed", zap.Error(err))
	r.record(log, sum, err)
	return sum, err
}

func (r *Runner) record(log *zap.Logger, sum *RunSummary, runErr error) {
	rec := &recorder.RunRecord{
		ID:         sum.RunID,
		StartedAt:  sum.StartedAt,
		FinishedAt: sum.FinishedAt,
		Days:       r.Config.Days,
		TopN:       r.Config.TopN,
		Skipped:    len(sum.Skipped),
		Status:     sum.Status,
		OutputDir:  sum.OutputDir,
	}
	if sum.Report != nil {
		rec.RangeLabel = sum.Report.RangeLabel
		rec.Analyzed = sum.Report.Analyzed
	}
	if runErr != nil {
		rec.Error = runErr.Error()
	}
	if err := r.Recorder.RecordRun(rec); err != nil {
		log.Error("record run", zap.Error(err))
	}
}
