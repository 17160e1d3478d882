package report

import (
	"fmt"
	"os"
	"time"

	"github.com/wcharczuk/go-chart/v2"

	"MarketMovers/internal/model"
)

// RenderPriceChart draws the closing-price line of a series as a PNG at path.
func RenderPriceChart(path string, sym model.Symbol, series *model.PriceSeries) error {
	if series.Len() < 2 {
		return fmt.Errorf("chart %s: need at least 2 points, got %d", sym.Ticker, series.Len())
	}
	xs := make([]time.Time, series.Len())
	for i, b := range series.Bars {
		xs[i] = b.Time
	}

	graph := chart.Chart{
		Title:  fmt.Sprintf("%s - %s | duration: %s", sym.Ticker, sym.Name, series.RangeLabel()),
		Width:  900,
		Height: 400,
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeDateValueFormatter,
		},
		YAxis: chart.YAxis{
			Name: "Price",
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    sym.Ticker,
				XValues: xs,
				YValues: series.Closes(),
			},
		},
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create chart file: %w", err)
	}
	defer f.Close()
	if err := graph.Render(chart.PNG, f); err != nil {
		return fmt.Errorf("render chart %s: %w", sym.Ticker, err)
	}
	return f.Close()
}
