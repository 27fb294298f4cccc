package drama

import (
	"context"
	"time"

	"github.com/avast/retry-go/v4"
)

// withRetry runs fn up to retries+1 times, sleeping backoffBase*attempt
// between attempts. Linear backoff is a deliberate choice over exponential:
// the upstream recovers quickly or not at all, and linear keeps tail latency
// bounded when it does not. Only transient failures (network errors, 5xx) are
// retried; precondition failures and 4xx surface immediately. The last error
// is returned when attempts are exhausted.
func withRetry[T any](ctx context.Context, fn func() (T, error), retries uint, backoffBase time.Duration) (T, error) {
	return retry.DoWithData(
		fn,
		retry.Context(ctx),
		retry.Attempts(retries+1),
		retry.RetryIf(retryable),
		retry.DelayType(func(n uint, _ error, _ *retry.Config) time.Duration {
			return backoffBase * time.Duration(n+1)
		}),
		retry.LastErrorOnly(true),
	)
}
