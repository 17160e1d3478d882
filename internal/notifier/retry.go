package notifier

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

// RetryPolicy bounds delivery attempts with exponential backoff.
type RetryPolicy struct {
	MaxAttempts     int
	InitialInterval time.Duration
	MaxInterval     time.Duration
	Multiplier      float64
}

// DefaultRetryPolicy makes 3 attempts waiting 4s then 8s (capped at 10s).
var DefaultRetryPolicy = RetryPolicy{
	MaxAttempts:     3,
	InitialInterval: 4 * time.Second,
	MaxInterval:     10 * time.Second,
	Multiplier:      2,
}

// DeliveryError is returned once every attempt of a delivery has failed.
type DeliveryError struct {
	Channel  string
	Attempts int
	Err      error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("%s delivery failed after %d attempts: %v", e.Channel, e.Attempts, e.Err)
}

func (e *DeliveryError) Unwrap() error { return e.Err }

func (p RetryPolicy) backOff(ctx context.Context) backoff.BackOff {
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = p.InitialInterval
	eb.MaxInterval = p.MaxInterval
	eb.Multiplier = p.Multiplier
	eb.RandomizationFactor = 0
	eb.MaxElapsedTime = 0
	eb.Reset()

	retries := p.MaxAttempts - 1
	if retries < 0 {
		retries = 0
	}
	return backoff.WithContext(backoff.WithMaxRetries(eb, uint64(retries)), ctx)
}

// Do runs op until it succeeds or the policy is exhausted, returning a *DeliveryError on failure.
func (p RetryPolicy) Do(ctx context.Context, channel string, logger *zap.Logger, op func(context.Context) error) error {
	attempts := 0
	err := backoff.RetryNotify(func() error {
		attempts++
		return op(ctx)
	}, p.backOff(ctx), func(err error, wait time.Duration) {
		logger.Warn("delivery attempt failed, retrying",
			zap.String("channel", channel),
			zap.Int("attempt", attempts),
			zap.Int("max_attempts", p.MaxAttempts),
			zap.Duration("backoff", wait),
			zap.Error(err))
	})
	if err != nil {
		return &DeliveryError{Channel: channel, Attempts: attempts, Err: err}
	}
	return nil
}
