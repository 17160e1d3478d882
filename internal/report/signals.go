package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"MarketMovers/internal/model"
)

// SignalSeries is one ticker's closes for the signal export.
type SignalSeries struct {
	Symbol model.Symbol
	Series *model.PriceSeries
}

// WriteSignals writes Ticker,Name,Date,Close_Price rows for every series, each with its own dates.
func WriteSignals(path string, signals []SignalSeries) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create signals file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"Ticker", "Name", "Date", "Close_Price"}); err != nil {
		return fmt.Errorf("write signals header: %w", err)
	}
	for _, s := range signals {
		for _, b := range s.Series.Bars {
			rec := []string{
				s.Symbol.Ticker,
				s.Symbol.Name,
				b.Time.Format("2006-01-02 15:04:05-07:00"),
				strconv.FormatFloat(b.Close, 'f', -1, 64),
			}
			if err := w.Write(rec); err != nil {
				return fmt.Errorf("write signal row %s: %w", s.Symbol.Ticker, err)
			}
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush signals: %w", err)
	}
	return f.Close()
}
