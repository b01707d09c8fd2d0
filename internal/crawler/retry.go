package crawler

import (
	"context"
	"time"

	"github.com/nao1215/webscour/internal/fetch"
)

// RetryPolicy bounds how often a transient fetch failure is retried.
// Only failures that fetch.IsRetryable accepts (connection errors and
// timeouts) are retried; a bad status gives up immediately.
type RetryPolicy struct {
	// MaxAttempts is the total number of tries, including the first.
	// Values below 1 are treated as 1.
	MaxAttempts int

	// Delay is the pause between attempts.
	Delay time.Duration
}

// Do runs op until it succeeds, fails terminally, exhausts the attempts or
// ctx is done. It returns the number of attempts made and the last error.
func (p RetryPolicy) Do(ctx context.Context, op func(context.Context) error) (int, error) {
	attempts := max(p.MaxAttempts, 1)

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		err = op(ctx)
		if err == nil {
			return attempt, nil
		}

		if !fetch.IsRetryable(err) || attempt == attempts {
			return attempt, err
		}

		if p.Delay > 0 {
			timer := time.NewTimer(p.Delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return attempt, err
			case <-timer.C:
			}
		} else if ctx.Err() != nil {
			return attempt, err
		}
	}
	return attempts, err
}
