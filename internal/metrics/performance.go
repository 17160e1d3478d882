package metrics

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"MarketMovers/internal/model"
)

// ErrInsufficientData is returned when growth or returns are undefined for a series.
var ErrInsufficientData = errors.New("insufficient price data")

// Performance is the metric set derived from one price series.
type Performance struct {
	StartPrice float64
	EndPrice   float64
	GrowthPct  float64
	Volatility float64
}

// Compute derives growth and volatility from the series' closing prices.
//
// Volatility is the population standard deviation of daily returns scaled by
// sqrt(len(series)), i.e. the observation count rather than the return count.
func Compute(series *model.PriceSeries) (Performance, error) {
	if series == nil {
		return Performance{}, fmt.Errorf("%w: nil series", ErrInsufficientData)
	}
	closes := series.Closes()
	if len(closes) < 2 {
		return Performance{}, fmt.Errorf("%w: %d observations", ErrInsufficientData, len(closes))
	}
	for i, c := range closes {
		if !validPrice(c) {
			return Performance{}, fmt.Errorf("%w: close %v at bar %d", ErrInsufficientData, c, i)
		}
	}

	start, end := closes[0], closes[len(closes)-1]
	growth, err := GrowthPct(start, end)
	if err != nil {
		return Performance{}, err
	}

	returns := DailyReturns(closes)
	vol := stat.PopStdDev(returns, nil) * math.Sqrt(float64(len(closes)))

	return Performance{
		StartPrice: start,
		EndPrice:   end,
		GrowthPct:  growth,
		Volatility: vol,
	}, nil
}

// GrowthPct returns the percentage change from start to end.
func GrowthPct(start, end float64) (float64, error) {
	if !validPrice(start) {
		return 0, fmt.Errorf("%w: start price %v", ErrInsufficientData, start)
	}
	if math.IsNaN(end) || math.IsInf(end, 0) {
		return 0, fmt.Errorf("%w: end price %v", ErrInsufficientData, end)
	}
	return (end - start) / start * 100, nil
}

// DailyReturns returns the simple fractional change between consecutive prices.
// The result has len(prices)-1 elements.
func DailyReturns(prices []float64) []float64 {
	if len(prices) < 2 {
		return nil
	}
	returns := make([]float64, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		returns[i-1] = (prices[i] - prices[i-1]) / prices[i-1]
	}
	return returns
}

// validPrice reports whether p can serve as a divisor in growth and returns.
func validPrice(p float64) bool {
	return p > 0 && !math.IsInf(p, 0)
}
