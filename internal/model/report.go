package model

import "time"

// Report is what the reporting sink delivers for one run.
type Report struct {
	RunID       string
	GeneratedAt time.Time
	TopN        int
	RangeLabel  string
	Top         RankedSlice
	Bottom      RankedSlice
	Analyzed    int
	Skipped     int
	// Attachments are chart files attached to outgoing messages.
	Attachments []string
}
