package httputil

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/matzehuels/fetchtree/pkg/errors"
)

// RetryableError marks a failure as transient. [Backoff] only retries
// errors carrying this marker.
type RetryableError struct{ Err error }

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// Retryable marks err as transient. A nil error stays nil.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

// IsRetryable reports whether err is marked as transient.
func IsRetryable(err error) bool {
	var re *RetryableError
	return stderrors.As(err, &re)
}

// unmark strips the RetryableError marker so callers see the coded error.
func unmark(err error) error {
	var re *RetryableError
	if stderrors.As(err, &re) {
		return re.Err
	}
	return err
}

// Backoff retries transient failures with a doubling delay.
type Backoff struct {
	Attempts int           // total tries; values below 1 mean 1
	Delay    time.Duration // wait before the second try
	MaxDelay time.Duration // cap for a single wait; 0 means uncapped
}

// DefaultBackoff is three tries starting at one second, never waiting more
// than 30 seconds at a time.
var DefaultBackoff = Backoff{Attempts: DefaultAttempts, Delay: DefaultDelay, MaxDelay: 30 * time.Second}

// Do calls fn until it succeeds, fails permanently or the attempts run out,
// and returns the last error. A rate-limited failure that names a
// Retry-After waits at least that long. Cancelling ctx stops the wait and
// returns ctx.Err().
func (b Backoff) Do(ctx context.Context, fn func() error) error {
	delay := b.Delay
	var err error
	for try := 1; ; try++ {
		if err = fn(); err == nil || !IsRetryable(err) || try >= b.Attempts {
			return err
		}

		wait := delay
		var rl *errors.RateLimitedError
		if stderrors.As(err, &rl) && rl.RetryAfter > wait {
			wait = rl.RetryAfter
		}
		if b.MaxDelay > 0 && wait > b.MaxDelay {
			wait = b.MaxDelay
		}

		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
		delay *= 2
	}
}

// Retry is Backoff{Attempts: attempts, Delay: delay}.Do(ctx, fn).
func Retry(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	return Backoff{Attempts: attempts, Delay: delay}.Do(ctx, fn)
}

// RetryWithBackoff runs fn under [DefaultBackoff].
func RetryWithBackoff(ctx context.Context, fn func() error) error {
	return DefaultBackoff.Do(ctx, fn)
}
