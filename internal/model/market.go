package model

import "time"

// OHLCV represents a single candlestick bar.
type OHLCV struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// Bucket is one of the discrete lookback windows a raw day count resolves to.
type Bucket struct {
	Days   int    // upper bound of the window in calendar days
	Period string // provider period code, e.g. "3mo"
	Label  string // human-readable range, e.g. "3 months"
}

// PriceSeries holds one symbol's chronological bars over a resolved bucket.
type PriceSeries struct {
	Symbol    string
	Bucket    Bucket
	Bars      []OHLCV
	FetchedAt time.Time
}

// RangeLabel returns the label of the bucket the series was fetched for.
func (s *PriceSeries) RangeLabel() string { return s.Bucket.Label }

// Closes extracts closing prices in chronological order.
func (s *PriceSeries) Closes() []float64 {
	closes := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		closes[i] = b.Close
	}
	return closes
}

// Len returns the number of observations.
func (s *PriceSeries) Len() int { return len(s.Bars) }
