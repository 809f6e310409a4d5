package openrouter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"500", &HTTPError{Status: 500}, true},
		{"502", &HTTPError{Status: 502}, true},
		{"503", &HTTPError{Status: 503}, true},
		{"429 rate limit", &HTTPError{Status: 429}, true},
		{"400 bad request", &HTTPError{Status: 400}, false},
		{"401 unauthorized", &HTTPError{Status: 401}, false},
		{"404 not found", &HTTPError{Status: 404}, false},
		{"transport failure", &transportError{err: errors.New("connection refused")}, true},
		{"wrapped transport failure", fmt.Errorf("op: %w", &transportError{err: errors.New("timeout")}), true},
		{"plain error", errors.New("boom"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isTransient(tt.err))
		})
	}
}

func TestDoWithBackoffRecoversAfterTransientFailures(t *testing.T) {
	calls := 0
	op := func() (*http.Response, error) {
		calls++
		if calls < 3 {
			return nil, &HTTPError{Status: 500}
		}
		return &http.Response{StatusCode: http.StatusOK}, nil
	}

	resp, err := doWithBackoff(context.Background(), discardLogger(), "test", 3, time.Millisecond, op)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 3, calls)
}

func TestDoWithBackoffPermanentFailureReturnsImmediately(t *testing.T) {
	calls := 0
	op := func() (*http.Response, error) {
		calls++
		return nil, &HTTPError{Status: 400, Detail: "bad request"}
	}

	_, err := doWithBackoff(context.Background(), discardLogger(), "test", 3, time.Millisecond, op)
	require.Error(t, err)
	assert.Equal(t, 1, calls)

	var he *HTTPError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, 400, he.Status)
}

func TestDoWithBackoffExhaustionReturnsLastError(t *testing.T) {
	calls := 0
	op := func() (*http.Response, error) {
		calls++
		return nil, &HTTPError{Status: 503, Detail: fmt.Sprintf("attempt %d", calls)}
	}

	_, err := doWithBackoff(context.Background(), discardLogger(), "test", 3, time.Millisecond, op)
	require.Error(t, err)
	assert.Equal(t, 3, calls)
	assert.Contains(t, err.Error(), "attempt 3")
}

func TestDoWithBackoffDelaysDouble(t *testing.T) {
	var timestamps []time.Time
	op := func() (*http.Response, error) {
		timestamps = append(timestamps, time.Now())
		return nil, &HTTPError{Status: 500}
	}

	base := 20 * time.Millisecond
	_, err := doWithBackoff(context.Background(), discardLogger(), "test", 3, base, op)
	require.Error(t, err)
	require.Len(t, timestamps, 3)

	first := timestamps[1].Sub(timestamps[0])
	second := timestamps[2].Sub(timestamps[1])
	assert.GreaterOrEqual(t, first, base)
	assert.GreaterOrEqual(t, second, 2*base)
}

func TestDoWithBackoffHonorsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	op := func() (*http.Response, error) {
		calls++
		cancel()
		return nil, &HTTPError{Status: 500}
	}

	_, err := doWithBackoff(ctx, discardLogger(), "test", 3, time.Hour, op)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestHTTPErrorMessage(t *testing.T) {
	assert.Equal(t, "HTTP 429: rate limited", (&HTTPError{Status: 429, Detail: "rate limited"}).Error())
	assert.Equal(t, "HTTP 500", (&HTTPError{Status: 500}).Error())
}
