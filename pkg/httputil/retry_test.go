package httputil

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/matzehuels/fetchtree/pkg/errors"
)

var errTransient = stderrors.New("transient")

func TestRetryableMarker(t *testing.T) {
	if Retryable(nil) != nil {
		t.Error("Retryable(nil) != nil")
	}
	err := Retryable(errTransient)
	if !IsRetryable(err) || IsRetryable(errTransient) {
		t.Error("IsRetryable should only report marked errors")
	}
	if !stderrors.Is(err, errTransient) || err.Error() != "transient" {
		t.Errorf("marker should be transparent: %v", err)
	}
	if unmark(err) != errTransient || unmark(errTransient) != errTransient {
		t.Error("unmark should strip exactly one marker")
	}
}

func TestBackoffDo(t *testing.T) {
	tests := []struct {
		name      string
		attempts  int
		failures  int   // calls that fail before success
		err       error // failure returned
		wantCalls int
		wantErr   bool
	}{
		{"first try", 3, 0, nil, 1, false},
		{"permanent failure", 3, 5, errTransient, 1, true},
		{"recovers", 3, 2, Retryable(errTransient), 3, false},
		{"exhausted", 3, 5, Retryable(errTransient), 3, true},
		{"zero attempts runs once", 0, 5, Retryable(errTransient), 1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := Backoff{Attempts: tt.attempts, Delay: time.Millisecond}.Do(context.Background(), func() error {
				calls++
				if calls <= tt.failures {
					return tt.err
				}
				return nil
			})
			if calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", calls, tt.wantCalls)
			}
			if (err != nil) != tt.wantErr {
				t.Errorf("err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestBackoffCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Backoff{Attempts: 3, Delay: time.Hour}.Do(ctx, func() error { return Retryable(errTransient) })
	if err != context.Canceled {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestBackoffHonoursRetryAfter(t *testing.T) {
	rl := Retryable(errors.Wrap(errors.ErrCodeRateLimited, &errors.RateLimitedError{RetryAfter: 30 * time.Millisecond}, "GET x"))

	calls := 0
	start := time.Now()
	_ = Backoff{Attempts: 2, Delay: time.Millisecond}.Do(context.Background(), func() error {
		calls++
		return rl
	})
	if calls != 2 {
		t.Fatalf("calls = %d, want 2", calls)
	}
	if took := time.Since(start); took < 30*time.Millisecond {
		t.Errorf("waited %v, want at least the Retry-After of 30ms", took)
	}
}

func TestBackoffMaxDelay(t *testing.T) {
	rl := Retryable(&errors.RateLimitedError{RetryAfter: time.Hour})

	start := time.Now()
	_ = Backoff{Attempts: 2, Delay: time.Millisecond, MaxDelay: 5 * time.Millisecond}.Do(context.Background(), func() error {
		return rl
	})
	if took := time.Since(start); took > time.Second {
		t.Errorf("MaxDelay ignored: waited %v", took)
	}
}

func TestRetryWrapper(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), 2, time.Millisecond, func() error {
		calls++
		return Retryable(errTransient)
	})
	if calls != 2 || !IsRetryable(err) {
		t.Errorf("calls=%d err=%v", calls, err)
	}
}
