package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"MarketMovers/internal/notifier"
	"MarketMovers/internal/pipeline"
	"MarketMovers/internal/recorder"
)

// Runner is the part of the pipeline the scheduler drives.
type Runner interface {
	Run(ctx context.Context) (*pipeline.RunSummary, error)
	LastSummary() *pipeline.RunSummary
}

// Scheduler triggers report runs on a cron schedule and on demand.
type Scheduler struct {
	Cron     *cron.Cron
	Runner   Runner
	Recorder recorder.Recorder
	Logger   *zap.Logger
	Ctx      context.Context
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, runner Runner, rec recorder.Recorder, logger *zap.Logger) *Scheduler {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds()),
		Runner:   runner,
		Recorder: rec,
		Logger:   logger,
		Ctx:      ctx,
	}
}

// Register adds the report task under a six-field cron spec.
func (s *Scheduler) Register(reportCron string) error {
	if _, err := s.Cron.AddFunc(reportCron, s.reportTask); err != nil {
		return fmt.Errorf("register report task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.Logger.Info("scheduler started", zap.Int("entries", len(s.Cron.Entries())))
}

// Stop stops the cron scheduler and waits for a running task to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.Logger.Info("scheduler stopped")
}

// RunNow executes the report task immediately (RUN_ON_START or /report).
func (s *Scheduler) RunNow() (*pipeline.RunSummary, error) {
	return s.Runner.Run(s.Ctx)
}

func (s *Scheduler) reportTask() {
	s.Logger.Info("running scheduled report")
	if _, err := s.RunNow(); err != nil {
		s.Logger.Error("scheduled report failed", zap.Error(err))
	}
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	switch strings.ToLower(strings.TrimSpace(command)) {
	case "/report":
		sum, err := s.Runner.Run(ctx)
		switch {
		case errors.Is(err, pipeline.ErrAlreadyRunning):
			return "⏳ A report is already being generated."
		case err != nil && (sum == nil || sum.Report == nil):
			return fmt.Sprintf("❌ Report failed: %v", err)
		}
		// Successful runs deliver their own summary.
		return ""
	case "/last":
		return s.lastReply()
	default:
		return "Available commands:\n• /report - run the report now\n• /last - show the last report"
	}
}

func (s *Scheduler) lastReply() string {
	if sum := s.Runner.LastSummary(); sum != nil && sum.Report != nil {
		return notifier.FormatSummary(sum.Report)
	}
	run, err := s.Recorder.LastRun()
	if errors.Is(err, recorder.ErrNoRuns) {
		return "No report has been generated yet."
	}
	if err != nil {
		s.Logger.Error("load last run", zap.Error(err))
		return fmt.Sprintf("❌ Cannot load run history: %v", err)
	}
	msg := fmt.Sprintf("Last run %s at %s: %s, range %s, analyzed %d, skipped %d",
		run.ID, run.StartedAt.Format("2006-01-02 15:04:05"), run.Status,
		run.RangeLabel, run.Analyzed, run.Skipped)
	if run.Error != "" {
		msg += "\nError: " + run.Error
	}
	return msg
}
