package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"time"

	"MarketMovers/internal/model"
)

// VsTraderGateway implements Gateway using the vstrader REST API.
type VsTraderGateway struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

// NewVsTraderGateway creates a new gateway with optional proxy support.
func NewVsTraderGateway(baseURL, apiKey, proxyURL string) *VsTraderGateway {
	return &VsTraderGateway{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Client:  newHTTPClient(proxyURL),
	}
}

func (g *VsTraderGateway) Name() string { return "vstrader" }

// vsBar is the expected JSON shape from the vstrader API.
type vsBar struct {
	Timestamp int64   `json:"timestamp"`
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	Volume    float64 `json:"volume"`
}

// Fetch requests the most recent trading bars of the bucket, matching the bar
// counts Yahoo returns for the same range.
func (g *VsTraderGateway) Fetch(ctx context.Context, symbol string, bucket model.Bucket) (*model.PriceSeries, error) {
	limit := tradingBars(bucket)
	endpoint := fmt.Sprintf("%s/api/v1/bars/daily?symbol=%s&limit=%d",
		g.BaseURL, url.QueryEscape(symbol), limit)
	bars, err := g.fetchBars(ctx, endpoint)
	if err != nil {
		return nil, unavailable(symbol, err)
	}
	bars = dropInvalidBars(bars)
	if len(bars) > limit {
		bars = bars[len(bars)-limit:]
	}
	return newSeries(symbol, bucket, bars)
}

// tradingBars converts a bucket's calendar days to daily bars: 5d is five
// sessions, longer buckets assume 21 sessions per 30 days.
func tradingBars(bucket model.Bucket) int {
	if bucket.Days <= 5 {
		return bucket.Days
	}
	return bucket.Days * 21 / 30
}

func (g *VsTraderGateway) fetchBars(ctx context.Context, endpoint string) ([]model.OHLCV, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	if g.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+g.APIKey)
	}
	resp, err := g.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch bars: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("fetch bars: status %d, body: %s", resp.StatusCode, string(body))
	}
	var vsBars []vsBar
	if err := json.NewDecoder(resp.Body).Decode(&vsBars); err != nil {
		return nil, fmt.Errorf("decode bars: %w", err)
	}
	bars := make([]model.OHLCV, len(vsBars))
	for i, vb := range vsBars {
		bars[i] = model.OHLCV{
			Time:   time.Unix(vb.Timestamp, 0),
			Open:   vb.Open,
			High:   vb.High,
			Low:    vb.Low,
			Close:  vb.Close,
			Volume: vb.Volume,
		}
	}
	// Ensure chronological order
	sort.Slice(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	return bars, nil
}
