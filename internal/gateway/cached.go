package gateway

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"

	"MarketMovers/internal/model"
)

// CachedGateway keeps successful series in memory so the chart and signal
// stages can re-read ranked symbols without another upstream request.
type CachedGateway struct {
	Next  Gateway
	cache *cache.Cache
}

// NewCachedGateway wraps next with a TTL cache.
func NewCachedGateway(next Gateway, ttl time.Duration) *CachedGateway {
	return &CachedGateway{
		Next:  next,
		cache: cache.New(ttl, 2*ttl),
	}
}

func (c *CachedGateway) Name() string { return c.Next.Name() + "+cache" }

func (c *CachedGateway) Fetch(ctx context.Context, symbol string, bucket model.Bucket) (*model.PriceSeries, error) {
	key := symbol + "|" + bucket.Period
	if v, ok := c.cache.Get(key); ok {
		return v.(*model.PriceSeries), nil
	}
	series, err := c.Next.Fetch(ctx, symbol, bucket)
	if err != nil {
		return nil, err
	}
	c.cache.Set(key, series, cache.DefaultExpiration)
	return series, nil
}
