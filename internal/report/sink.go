package report

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"MarketMovers/internal/gateway"
	"MarketMovers/internal/model"
)

// Artifacts lists the files written for one ranked side.
type Artifacts struct {
	CSV     string
	Charts  []string
	Signals string
}

// Sink writes report artifacts into a run directory.
type Sink struct {
	Dir     string
	Stamp   string // timestamp suffix shared by every file of the run
	Gateway gateway.Gateway
	Logger  *zap.Logger
}

// NewSink creates dir (and parents) and returns a Sink writing into it.
func NewSink(dir, stamp string, gw gateway.Gateway, logger *zap.Logger) (*Sink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	return &Sink{Dir: dir, Stamp: stamp, Gateway: gw, Logger: logger}, nil
}

// WriteSide exports one ranked slice: its CSV table, a chart per ticker and the signal file.
// Tickers whose series can no longer be fetched are left out of charts and signals.
func (s *Sink) WriteSide(ctx context.Context, side model.Side, n int, bucket model.Bucket, rows model.RankedSlice) (*Artifacts, error) {
	label := strings.TrimSpace(bucket.Label)
	out := &Artifacts{CSV: RankedCSVPath(s.Dir, side, n, label, s.Stamp)}
	if err := WriteRankedCSV(out.CSV, rows); err != nil {
		return nil, err
	}
	s.Logger.Info("ranked table saved", zap.String("side", string(side)), zap.String("path", out.CSV))

	title := fmt.Sprintf("%s_%d_performers", side, n)
	var signals []SignalSeries
	for i, r := range rows {
		sym := model.Symbol{Ticker: r.Ticker, Name: r.Name}
		log := s.Logger.With(zap.String("ticker", r.Ticker))
		log.Info("plotting data")

		series, err := s.Gateway.Fetch(ctx, r.Ticker, bucket)
		if err != nil {
			log.Warn("series unavailable for chart", zap.Error(err))
			continue
		}
		path := filepath.Join(s.Dir, fmt.Sprintf("%s_%02d_%s_%s.png", title, i+1, safeName(r.Ticker), s.Stamp))
		if err := RenderPriceChart(path, sym, series); err != nil {
			log.Warn("chart not rendered", zap.Error(err))
		} else {
			out.Charts = append(out.Charts, path)
		}
		signals = append(signals, SignalSeries{Symbol: sym, Series: series})
	}

	out.Signals = filepath.Join(s.Dir, fmt.Sprintf("%s_%s_%s.txt", title, label, s.Stamp))
	if err := WriteSignals(out.Signals, signals); err != nil {
		return nil, err
	}
	s.Logger.Info("signals saved", zap.String("path", out.Signals), zap.Int("charts", len(out.Charts)))
	return out, nil
}

// safeName keeps tickers like BRK/B usable as file names.
func safeName(ticker string) string {
	return strings.NewReplacer("/", "-", "\\", "-", ":", "-", "^", "").Replace(ticker)
}
