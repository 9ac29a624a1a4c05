package docstore

import (
	"context"
	"errors"
	"time"
)

// retryPolicy retries an operation a bounded number of times with doubling
// backoff. Used around the idempotent blob copy during document rename and
// nowhere else; metadata errors are never retried here.
type retryPolicy struct {
	attempts int
	delay    time.Duration
}

var blobRetry = retryPolicy{attempts: 3, delay: 200 * time.Millisecond}

func (p retryPolicy) do(ctx context.Context, op func() error) error {
	var err error
	delay := p.delay

	for attempt := 0; attempt < p.attempts; attempt++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		err = op()
		if err == nil {
			return nil
		}

		// Missing objects and cancellations never heal on retry.
		if errors.Is(err, ErrNotFound) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}

		if attempt < p.attempts-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
		}
	}

	return err
}
