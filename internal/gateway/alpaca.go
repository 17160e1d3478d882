package gateway

import (
	"context"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"

	"MarketMovers/internal/model"
)

// barsClient is the part of the Alpaca market data client the gateway uses.
type barsClient interface {
	GetBars(symbol string, req marketdata.GetBarsRequest) ([]marketdata.Bar, error)
}

// AlpacaGateway implements Gateway using Alpaca's market data API.
type AlpacaGateway struct {
	Client barsClient
	Now    func() time.Time
}

// NewAlpacaGateway creates a gateway authenticated with an Alpaca key pair.
func NewAlpacaGateway(apiKey, apiSecret string) *AlpacaGateway {
	return &AlpacaGateway{
		Client: marketdata.NewClient(marketdata.ClientOpts{
			APIKey:    apiKey,
			APISecret: apiSecret,
		}),
		Now: time.Now,
	}
}

func (g *AlpacaGateway) Name() string { return "alpaca" }

// Fetch requests split-adjusted daily bars from now minus the bucket's days.
// The Alpaca client has no context support, so ctx is only checked before the call.
func (g *AlpacaGateway) Fetch(ctx context.Context, symbol string, bucket model.Bucket) (*model.PriceSeries, error) {
	if err := ctx.Err(); err != nil {
		return nil, unavailable(symbol, err)
	}
	end := g.Now()
	bars, err := g.Client.GetBars(symbol, marketdata.GetBarsRequest{
		TimeFrame:  marketdata.OneDay,
		Adjustment: marketdata.Split,
		Start:      end.AddDate(0, 0, -bucket.Days),
		End:        end,
	})
	if err != nil {
		return nil, unavailable(symbol, err)
	}
	out := make([]model.OHLCV, 0, len(bars))
	for _, b := range bars {
		out = append(out, model.OHLCV{
			Time:   b.Timestamp,
			Open:   b.Open,
			High:   b.High,
			Low:    b.Low,
			Close:  b.Close,
			Volume: float64(b.Volume),
		})
	}
	return newSeries(symbol, bucket, dropInvalidBars(out))
}
