package client

import (
	"context"
	"errors"
	"time"

	"scholarly/pkg/clock"

	"github.com/rs/zerolog"
)

// IsCredential reports whether err means the bearer credential is
// missing, expired or insufficient. Retrying cannot fix it; the caller
// should re-authenticate.
func IsCredential(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status == 401 || apiErr.Status == 403
	}
	return false
}

// IsRetryable reports whether err is transient: a transport-level
// failure or a server-side 5xx. Validation and not-found responses are
// terminal.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status >= 500
	}
	return true
}

// RetryWriter wraps state-changing API calls with bounded exponential
// backoff: up to attempts tries, sleeping 2^(n-1) seconds after failed
// attempt n. The sleeps block only the calling goroutine.
type RetryWriter struct {
	attempts int
	clock    clock.Clock
	log      zerolog.Logger
}

type RetryOption func(*RetryWriter)

func WithClock(c clock.Clock) RetryOption {
	return func(w *RetryWriter) { w.clock = c }
}

func WithAttempts(n int) RetryOption {
	return func(w *RetryWriter) {
		if n > 0 {
			w.attempts = n
		}
	}
}

func WithRetryLogger(log zerolog.Logger) RetryOption {
	return func(w *RetryWriter) { w.log = log }
}

func NewRetryWriter(opts ...RetryOption) *RetryWriter {
	w := &RetryWriter{
		attempts: 3,
		clock:    clock.Real(),
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Do runs op until it succeeds, a terminal error occurs, or the attempt
// budget is spent. Credential errors abort immediately. The last error
// is surfaced unchanged so the caller sees the underlying message.
func (w *RetryWriter) Do(ctx context.Context, op func(context.Context) error) error {
	var lastErr error
	for attempt := 1; attempt <= w.attempts; attempt++ {
		lastErr = op(ctx)
		if lastErr == nil {
			return nil
		}
		if IsCredential(lastErr) || !IsRetryable(lastErr) {
			return lastErr
		}
		if attempt < w.attempts {
			delay := time.Duration(1<<(attempt-1)) * time.Second
			w.log.Warn().Err(lastErr).Int("attempt", attempt).Dur("backoff", delay).Msg("write failed, retrying")
			w.clock.Sleep(delay)
			if err := ctx.Err(); err != nil {
				return err
			}
		}
	}
	return lastErr
}
