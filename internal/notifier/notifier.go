package notifier

import (
	"context"

	"MarketMovers/internal/model"
)

// Notifier delivers a finished report over one channel.
type Notifier interface {
	Send(ctx context.Context, report *model.Report) error
	Name() string
}
