package recorder

import "MarketMovers/internal/model"

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordRun(_ *RunRecord) error { return nil }
func (n *NoopRecorder) RecordRanked(_ string, _ model.Side, _ model.RankedSlice) error { return nil }
func (n *NoopRecorder) RecordSkips(_ string, _ []model.Skip) error { return nil }
func (n *NoopRecorder) LastRun() (*RunRecord, error) { return nil, ErrNoRuns }
func (n *NoopRecorder) Close() error { return nil }
