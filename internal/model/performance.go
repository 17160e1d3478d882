package model

// Symbol is a ticker with its display name.
type Symbol struct {
	Ticker string
	Name   string
}

// PerformanceRecord is one analyzed symbol.
type PerformanceRecord struct {
	Name       string
	Ticker     string
	StartPrice float64
	EndPrice   float64
	GrowthPct  float64
	Volatility float64
	RangeLabel string
}

// ResultTable is the analyzer output in input symbol order.
type ResultTable []PerformanceRecord

// RankedSlice is a top-N or bottom-N view over a ResultTable.
type RankedSlice []PerformanceRecord

// Side identifies which end of the ranking a slice came from.
type Side string

const (
	SideTop    Side = "top"
	SideBottom Side = "worst"
)

// SkipReason explains why a symbol produced no record.
type SkipReason string

const (
	SkipNoBucket         SkipReason = "NO_BUCKET"
	SkipUnavailable      SkipReason = "UNAVAILABLE"
	SkipInsufficientData SkipReason = "INSUFFICIENT_DATA"
	SkipCancelled        SkipReason = "CANCELLED"
)

// Skip records a symbol that was dropped from the batch.
type Skip struct {
	Symbol Symbol
	Reason SkipReason
	Detail string
}
