package metrics

import (
	"errors"
	"math"
	"testing"
	"time"

	"MarketMovers/internal/model"
)

const eps = 1e-9

func seriesOf(closes ...float64) *model.PriceSeries {
	bars := make([]model.OHLCV, len(closes))
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, c := range closes {
		bars[i] = model.OHLCV{Time: base.AddDate(0, 0, i), Close: c}
	}
	return &model.PriceSeries{Symbol: "TEST", Bars: bars}
}

func TestCompute_CompoundingSeries(t *testing.T) {
	perf, err := Compute(seriesOf(100, 110, 121))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(perf.GrowthPct-21.0) > eps {
		t.Errorf("expected growth 21.0, got %v", perf.GrowthPct)
	}
	if perf.StartPrice != 100 || perf.EndPrice != 121 {
		t.Errorf("expected start/end 100/121, got %v/%v", perf.StartPrice, perf.EndPrice)
	}
	if math.Abs(perf.Volatility) > eps {
		t.Errorf("expected zero volatility for constant returns, got %v", perf.Volatility)
	}
}

func TestDailyReturns(t *testing.T) {
	got := DailyReturns([]float64{100, 110, 121})
	if len(got) != 2 {
		t.Fatalf("expected 2 returns, got %d", len(got))
	}
	for i, r := range got {
		if math.Abs(r-0.10) > eps {
			t.Errorf("return %d: expected 0.10, got %v", i, r)
		}
	}
	if DailyReturns([]float64{5}) != nil {
		t.Error("expected nil returns for single price")
	}
}

func TestCompute_VolatilityScalesBySeriesLength(t *testing.T) {
	// returns: +0.1, -0.1 → population stddev 0.1; scaled by sqrt(3)
	perf, err := Compute(seriesOf(100, 110, 99))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := 0.1 * math.Sqrt(3)
	if math.Abs(perf.Volatility-want) > eps {
		t.Errorf("expected volatility %v, got %v", want, perf.Volatility)
	}
}

func TestCompute_GrowthSign(t *testing.T) {
	tests := []struct {
		name   string
		closes []float64
		sign   int
	}{
		{"up", []float64{10, 12, 15}, 1},
		{"down", []float64{50, 40, 45, 30}, -1},
		{"flat", []float64{20, 25, 20}, 0},
		{"two points", []float64{3, 4}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			perf, err := Compute(seriesOf(tt.closes...))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			var got int
			switch {
			case perf.GrowthPct > 0:
				got = 1
			case perf.GrowthPct < 0:
				got = -1
			}
			if got != tt.sign {
				t.Errorf("expected sign %d, got growth %v", tt.sign, perf.GrowthPct)
			}
		})
	}
}

func TestCompute_InsufficientData(t *testing.T) {
	tests := []struct {
		name   string
		series *model.PriceSeries
	}{
		{"nil", nil},
		{"empty", seriesOf()},
		{"single point", seriesOf(42)},
		{"zero start", seriesOf(0, 10)},
		{"zero in the middle", seriesOf(10, 0, 5)},
		{"zero at the end", seriesOf(10, 5, 0)},
		{"negative close", seriesOf(10, -1, 5)},
		{"NaN close", seriesOf(10, math.NaN(), 5)},
		{"infinite close", seriesOf(10, 12, math.Inf(1))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			perf, err := Compute(tt.series)
			if !errors.Is(err, ErrInsufficientData) {
				t.Fatalf("expected ErrInsufficientData, got %v (perf %+v)", err, perf)
			}
		})
	}
}

func TestGrowthPct_RejectsNonFiniteEnd(t *testing.T) {
	if _, err := GrowthPct(10, math.NaN()); !errors.Is(err, ErrInsufficientData) {
		t.Errorf("expected ErrInsufficientData, got %v", err)
	}
}

func TestCompute_DoesNotMutateSeries(t *testing.T) {
	s := seriesOf(100, 90, 95)
	before := s.Closes()
	if _, err := Compute(s); err != nil {
		t.Fatal(err)
	}
	for i, c := range s.Closes() {
		if c != before[i] {
			t.Fatalf("series mutated at %d", i)
		}
	}
}
