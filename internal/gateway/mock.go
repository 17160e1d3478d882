package gateway

import (
	"context"
	"errors"
	"sync"
	"time"

	"MarketMovers/internal/model"
)

// MockGateway returns controllable fixed data for development and testing.
type MockGateway struct {
	// Closes maps a symbol to its closing prices; symbols absent from the map are unavailable.
	Closes map[string][]float64

	mu    sync.Mutex
	calls []string
}

func (m *MockGateway) Name() string { return "mock" }

func (m *MockGateway) Fetch(ctx context.Context, symbol string, bucket model.Bucket) (*model.PriceSeries, error) {
	m.mu.Lock()
	m.calls = append(m.calls, symbol)
	m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, unavailable(symbol, err)
	}
	closes, ok := m.Closes[symbol]
	if !ok {
		return nil, unavailable(symbol, errors.New("unknown symbol"))
	}
	return newSeries(symbol, bucket, generateMockBars(closes))
}

// Calls returns the symbols requested so far, in call order.
func (m *MockGateway) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

func generateMockBars(closes []float64) []model.OHLCV {
	count := len(closes)
	bars := make([]model.OHLCV, count)
	base := time.Now().Truncate(24 * time.Hour)
	for i, p := range closes {
		bars[i] = model.OHLCV{
			Time:   base.AddDate(0, 0, -(count - i)),
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 1000000,
		}
	}
	return bars
}
