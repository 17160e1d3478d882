package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/shopspring/decimal"

	"MarketMovers/internal/model"
)

// CSVHeader is the column layout of ranked-table exports.
var CSVHeader = []string{"Name", "Ticker", "Start Price", "End Price", "Price Growth (%)", "Volatility", "Data Range"}

// WriteRankedCSV writes a ranked slice to path.
func WriteRankedCSV(path string, rows model.RankedSlice) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(CSVHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range rows {
		rec := []string{
			r.Name,
			r.Ticker,
			decimal.NewFromFloat(r.StartPrice).String(),
			decimal.NewFromFloat(r.EndPrice).String(),
			decimal.NewFromFloat(r.GrowthPct).String(),
			decimal.NewFromFloat(r.Volatility).String(),
			r.RangeLabel,
		}
		if err := w.Write(rec); err != nil {
			return fmt.Errorf("write csv row %s: %w", r.Ticker, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return f.Close()
}

// RankedCSVPath returns e.g. dir/top_10_3 months_stocks_20240301_093000.csv.
func RankedCSVPath(dir string, side model.Side, n int, label, stamp string) string {
	return filepath.Join(dir, fmt.Sprintf("%s_%d_%s_stocks_%s.csv", side, n, label, stamp))
}
