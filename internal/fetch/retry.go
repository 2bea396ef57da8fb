package fetch

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

const (
	retryMax       = 2
	retryBaseDelay = time.Second
)

// WithRetry runs fn up to retryMax+1 times, backing off exponentially from
// retryBaseDelay between attempts. Non-retryable errors propagate
// immediately; retry state is local to this call.
func WithRetry(ctx context.Context, log *zap.SugaredLogger, sourceID string, fn func() error) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = retryBaseDelay
	bo.RandomizationFactor = 0
	bo.Multiplier = 2
	bo.MaxInterval = retryBaseDelay << retryMax
	bo.MaxElapsedTime = 0

	attempt := 0
	op := func() error {
		err := fn()
		if err == nil {
			return nil
		}
		if !IsRetryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}
	notify := func(err error, delay time.Duration) {
		attempt++
		if log != nil {
			log.Debugw("retrying source", "source", sourceID, "attempt", attempt, "max", retryMax, "delay", delay, "error", err)
		}
	}

	return backoff.RetryNotify(op, backoff.WithContext(backoff.WithMaxRetries(bo, retryMax), ctx), notify)
}
