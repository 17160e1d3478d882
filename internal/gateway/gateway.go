package gateway

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"time"

	"MarketMovers/internal/model"
)

// ErrUnavailable is the single failure signal of a Gateway: unknown symbol,
// transport error, bad payload or an empty series.
var ErrUnavailable = errors.New("price series unavailable")

// Gateway fetches a daily price series for a symbol over a bucket.
type Gateway interface {
	Fetch(ctx context.Context, symbol string, bucket model.Bucket) (*model.PriceSeries, error)
	Name() string
}

// Buckets are the supported lookback windows, smallest first.
var Buckets = []model.Bucket{
	{Days: 5, Period: "5d", Label: "5 days"},
	{Days: 30, Period: "1mo", Label: "1 month"},
	{Days: 90, Period: "3mo", Label: "3 months"},
	{Days: 180, Period: "6mo", Label: "6 months"},
}

// ResolveBucket maps a day count to the smallest bucket that covers it.
// Day counts that are not positive or exceed the largest bucket resolve to nothing.
func ResolveBucket(days int) (model.Bucket, bool) {
	if days <= 0 {
		return model.Bucket{}, false
	}
	for _, b := range Buckets {
		if days <= b.Days {
			return b, true
		}
	}
	return model.Bucket{}, false
}

func unavailable(symbol string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrUnavailable, symbol, err)
}

// newSeries wraps bars, failing with ErrUnavailable when there are none.
func newSeries(symbol string, bucket model.Bucket, bars []model.OHLCV) (*model.PriceSeries, error) {
	if len(bars) == 0 {
		return nil, unavailable(symbol, errors.New("no data returned"))
	}
	return &model.PriceSeries{
		Symbol:    symbol,
		Bucket:    bucket,
		Bars:      bars,
		FetchedAt: time.Now(),
	}, nil
}

// dropInvalidBars removes bars whose close is missing, non-positive or not finite.
func dropInvalidBars(bars []model.OHLCV) []model.OHLCV {
	out := bars[:0]
	for _, b := range bars {
		if b.Close > 0 && !math.IsInf(b.Close, 0) {
			out = append(out, b)
		}
	}
	return out
}

func newHTTPClient(proxyURL string) *http.Client {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &http.Client{
		Timeout:   30 * time.Second,
		Transport: transport,
	}
}
