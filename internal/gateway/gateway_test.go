package gateway

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"

	"MarketMovers/internal/model"
)

func TestResolveBucket(t *testing.T) {
	tests := []struct {
		days  int
		label string
		ok    bool
	}{
		{0, "", false},
		{-3, "", false},
		{1, "5 days", true},
		{5, "5 days", true},
		{6, "1 month", true},
		{15, "1 month", true},
		{30, "1 month", true},
		{31, "3 months", true},
		{90, "3 months", true},
		{91, "6 months", true},
		{180, "6 months", true},
		{181, "", false},
		{365, "", false},
	}
	for _, tt := range tests {
		b, ok := ResolveBucket(tt.days)
		if ok != tt.ok || b.Label != tt.label {
			t.Errorf("days %d: expected (%q, %v), got (%q, %v)", tt.days, tt.label, tt.ok, b.Label, ok)
		}
	}
}

const yahooPayload = `{"chart":{"result":[{"timestamp":[1700172800,1700000000,1700086400],
"indicators":{"quote":[{"open":[11,9,10],"high":[12,10,11],"low":[10,8,9],"close":[11.5,9.5,null],"volume":[300,100,200]}]}}],"error":null}}`

func TestYahooGateway_Fetch(t *testing.T) {
	var gotPath, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		fmt.Fprint(w, yahooPayload)
	}))
	defer srv.Close()

	g := NewYahooGateway("")
	g.BaseURL = srv.URL
	bucket, _ := ResolveBucket(90)

	series, err := g.Fetch(context.Background(), "SPX", bucket)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotPath != "/v8/finance/chart/^GSPC" {
		t.Errorf("expected mapped symbol in path, got %q", gotPath)
	}
	if !strings.Contains(gotQuery, "range=3mo") || !strings.Contains(gotQuery, "interval=1d") {
		t.Errorf("unexpected query %q", gotQuery)
	}
	if series.Len() != 2 {
		t.Fatalf("expected null bar to be skipped, got %d bars", series.Len())
	}
	if series.Bars[0].Close != 9.5 || series.Bars[1].Close != 11.5 {
		t.Errorf("expected chronological closes [9.5 11.5], got %v", series.Closes())
	}
	if series.RangeLabel() != "3 months" {
		t.Errorf("expected range label 3 months, got %q", series.RangeLabel())
	}
}

func TestYahooGateway_Unavailable(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"not found", http.StatusNotFound, `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found"}}}`},
		{"api error", http.StatusOK, `{"chart":{"result":null,"error":{"code":"Not Found","description":"delisted"}}}`},
		{"empty", http.StatusOK, `{"chart":{"result":[],"error":null}}`},
		{"garbage", http.StatusOK, `not json`},
		{"all null", http.StatusOK, `{"chart":{"result":[{"timestamp":[1],"indicators":{"quote":[{"close":[null]}]}}]}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			}))
			defer srv.Close()

			g := NewYahooGateway("")
			g.BaseURL = srv.URL
			_, err := g.Fetch(context.Background(), "ZZZZ", Buckets[0])
			if !errors.Is(err, ErrUnavailable) {
				t.Fatalf("expected ErrUnavailable, got %v", err)
			}
		})
	}
}

func TestVsTraderGateway_Fetch(t *testing.T) {
	day := int64(86400)
	now := time.Now().Unix()
	var gotLimit string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		gotLimit = r.URL.Query().Get("limit")
		// Unordered, with one zero close and more bars than asked for.
		fmt.Fprintf(w, `[{"timestamp":%d,"close":16},{"timestamp":%d,"close":15},{"timestamp":%d,"close":0},
			{"timestamp":%d,"close":13},{"timestamp":%d,"close":12},{"timestamp":%d,"close":11},{"timestamp":%d,"close":10}]`,
			now-1*day, now-2*day, now-3*day, now-4*day, now-5*day, now-6*day, now-9*day)
	}))
	defer srv.Close()

	tests := []struct {
		name   string
		bucket model.Bucket
		limit  string
		want   []float64
	}{
		{"five sessions", Buckets[0], "5", []float64{11, 12, 13, 15, 16}},
		{"one month", Buckets[1], "21", []float64{10, 11, 12, 13, 15, 16}},
		{"six months", Buckets[3], "126", []float64{10, 11, 12, 13, 15, 16}},
	}

	g := NewVsTraderGateway(srv.URL, "key", "")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			series, err := g.Fetch(context.Background(), "AAPL", tt.bucket)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if gotLimit != tt.limit {
				t.Errorf("expected limit=%s, got %q", tt.limit, gotLimit)
			}
			closes := series.Closes()
			if fmt.Sprint(closes) != fmt.Sprint(tt.want) {
				t.Errorf("expected %v, got %v", tt.want, closes)
			}
		})
	}

	bad := NewVsTraderGateway(srv.URL, "", "")
	if _, err := bad.Fetch(context.Background(), "AAPL", Buckets[1]); !errors.Is(err, ErrUnavailable) {
		t.Errorf("expected ErrUnavailable on 401, got %v", err)
	}
}

func TestDropInvalidBars(t *testing.T) {
	bars := []model.OHLCV{{Close: 10}, {Close: 0}, {Close: -1}, {Close: math.NaN()}, {Close: math.Inf(1)}, {Close: 5}}
	got := dropInvalidBars(bars)
	if len(got) != 2 || got[0].Close != 10 || got[1].Close != 5 {
		t.Errorf("expected [10 5], got %v", got)
	}
}

type fakeBars struct {
	req  marketdata.GetBarsRequest
	bars []marketdata.Bar
	err  error
}

func (f *fakeBars) GetBars(_ string, req marketdata.GetBarsRequest) ([]marketdata.Bar, error) {
	f.req = req
	return f.bars, f.err
}

func TestAlpacaGateway_Fetch(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	fb := &fakeBars{bars: []marketdata.Bar{
		{Timestamp: now.AddDate(0, 0, -2), Close: 50},
		{Timestamp: now.AddDate(0, 0, -1), Close: 55},
		{Timestamp: now, Close: 0},
	}}
	g := &AlpacaGateway{Client: fb, Now: func() time.Time { return now }}

	series, err := g.Fetch(context.Background(), "AAPL", Buckets[0])
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if series.Len() != 2 {
		t.Fatalf("expected 2 bars (zero close dropped), got %d", series.Len())
	}
	if !fb.req.Start.Equal(now.AddDate(0, 0, -5)) {
		t.Errorf("expected start 5 days back, got %v", fb.req.Start)
	}

	fb.bars, fb.err = nil, errors.New("boom")
	if _, err := g.Fetch(context.Background(), "AAPL", Buckets[0]); !errors.Is(err, ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}
	fb.err = nil
	if _, err := g.Fetch(context.Background(), "AAPL", Buckets[0]); !errors.Is(err, ErrUnavailable) {
		t.Errorf("expected ErrUnavailable for empty bars, got %v", err)
	}
}

func TestCachedGateway(t *testing.T) {
	mock := &MockGateway{Closes: map[string][]float64{"AAPL": {1, 2, 3}}}
	g := NewCachedGateway(mock, time.Minute)

	for i := 0; i < 3; i++ {
		if _, err := g.Fetch(context.Background(), "AAPL", Buckets[2]); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if n := len(mock.Calls()); n != 1 {
		t.Errorf("expected 1 upstream call, got %d", n)
	}
	if _, err := g.Fetch(context.Background(), "AAPL", Buckets[3]); err != nil {
		t.Fatal(err)
	}
	if n := len(mock.Calls()); n != 2 {
		t.Errorf("expected a new bucket to miss the cache, got %d calls", n)
	}
	for i := 0; i < 2; i++ {
		if _, err := g.Fetch(context.Background(), "MSFT", Buckets[2]); !errors.Is(err, ErrUnavailable) {
			t.Fatalf("expected ErrUnavailable, got %v", err)
		}
	}
	if n := len(mock.Calls()); n != 4 {
		t.Errorf("expected failures not to be cached, got %d calls", n)
	}
}

func TestMockGateway_EmptySeriesUnavailable(t *testing.T) {
	mock := &MockGateway{Closes: map[string][]float64{"EMPTY": {}}}
	_, err := mock.Fetch(context.Background(), "EMPTY", model.Bucket{Days: 5})
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}
