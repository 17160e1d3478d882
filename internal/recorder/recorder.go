package recorder

import (
	"errors"
	"time"

	"MarketMovers/internal/model"
)

// ErrNoRuns is returned by LastRun when nothing has been recorded yet.
var ErrNoRuns = errors.New("no runs recorded")

// Run statuses.
const (
	StatusOK          = "OK"
	StatusFailed      = "FAILED"
	StatusInterrupted = "INTERRUPTED"
	StatusUndelivered = "UNDELIVERED"
)

// RunRecord is one pipeline execution.
type RunRecord struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time
	Days       int
	TopN       int
	RangeLabel string
	Analyzed   int
	Skipped    int
	Status     string
	Error      string
	OutputDir  string
}

// Recorder persists run history for later inspection.
type Recorder interface {
	RecordRun(run *RunRecord) error
	RecordRanked(runID string, side model.Side, rows model.RankedSlice) error
	RecordSkips(runID string, skips []model.Skip) error
	LastRun() (*RunRecord, error)
	Close() error
}
