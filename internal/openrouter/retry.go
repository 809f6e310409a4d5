package openrouter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// HTTPError is a non-200 response from the API. Whether it is retryable
// depends only on the status code, so retry eligibility stays a plain,
// exhaustively testable predicate instead of exception control flow.
type HTTPError struct {
	Status int
	Detail string
}

func (e *HTTPError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("HTTP %d: %s", e.Status, e.Detail)
	}
	return fmt.Sprintf("HTTP %d", e.Status)
}

// transportError wraps a failure from the HTTP client itself: timeouts and
// connection failures. These are always transient.
type transportError struct{ err error }

func (e *transportError) Error() string { return e.err.Error() }
func (e *transportError) Unwrap() error { return e.err }

// isTransient classifies one attempt's failure. Timeouts, connection
// failures, 5xx and 429 qualify for retry; everything else propagates
// immediately.
func isTransient(err error) bool {
	var he *HTTPError
	if errors.As(err, &he) {
		return he.Status >= http.StatusInternalServerError || he.Status == http.StatusTooManyRequests
	}
	var te *transportError
	return errors.As(err, &te)
}

// doWithBackoff invokes op up to maxAttempts times, sleeping
// initialDelay*2^attempt between tries. Non-transient failures return
// immediately without consuming remaining attempts; exhaustion returns the
// last observed failure. Each retry logs a progress line to the
// diagnostic stream.
func doWithBackoff(ctx context.Context, logger *slog.Logger, label string,
	maxAttempts int, initialDelay time.Duration, op func() (*http.Response, error),
) (*http.Response, error) {
	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		resp, err := op()
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if !isTransient(err) {
			return nil, err
		}
		if attempt == maxAttempts-1 {
			break
		}
		wait := initialDelay << uint(attempt)
		logger.Warn("transient failure, retrying",
			"op", label,
			"attempt", attempt+2,
			"max_attempts", maxAttempts,
			"wait", wait,
			"error", err)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}
	return nil, lastErr
}
