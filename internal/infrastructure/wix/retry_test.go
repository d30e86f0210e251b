package wix

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeResponse(status int) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader("{}")),
	}
}

func fastPolicy(attempts int) RetryPolicy {
	return RetryPolicy{
		MaxAttempts: attempts,
		BaseDelay:   time.Millisecond,
		Jitter:      0,
		MaxDelay:    5 * time.Millisecond,
	}
}

func TestDoWithRetry(t *testing.T) {
	t.Run("succeeds after transient throttling", func(t *testing.T) {
		calls := 0
		resp, err := doWithRetry(context.Background(), fastPolicy(3), func() (*http.Response, error) {
			calls++
			if calls < 3 {
				return fakeResponse(http.StatusTooManyRequests), nil
			}
			return fakeResponse(http.StatusOK), nil
		})
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, 3, calls)
	})

	t.Run("returns last response when attempts are exhausted", func(t *testing.T) {
		calls := 0
		resp, err := doWithRetry(context.Background(), fastPolicy(3), func() (*http.Response, error) {
			calls++
			return fakeResponse(http.StatusServiceUnavailable), nil
		})
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
		assert.Equal(t, 3, calls, "must stop at the attempt bound")
	})

	t.Run("does not retry client errors", func(t *testing.T) {
		calls := 0
		resp, err := doWithRetry(context.Background(), fastPolicy(3), func() (*http.Response, error) {
			calls++
			return fakeResponse(http.StatusConflict), nil
		})
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusConflict, resp.StatusCode)
		assert.Equal(t, 1, calls)
	})

	t.Run("propagates final transport error", func(t *testing.T) {
		wantErr := errors.New("connection reset")
		calls := 0
		resp, err := doWithRetry(context.Background(), fastPolicy(2), func() (*http.Response, error) {
			calls++
			return nil, wantErr
		})
		assert.Nil(t, resp)
		assert.ErrorIs(t, err, wantErr)
		assert.Equal(t, 2, calls)
	})

	t.Run("stops when context is canceled between attempts", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		calls := 0
		policy := RetryPolicy{MaxAttempts: 5, BaseDelay: 50 * time.Millisecond, MaxDelay: time.Second}
		_, err := doWithRetry(ctx, policy, func() (*http.Response, error) {
			calls++
			cancel()
			return fakeResponse(http.StatusTooManyRequests), nil
		})
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, calls)
	})
}

func TestRetryPolicyDelayFor(t *testing.T) {
	policy := RetryPolicy{
		BaseDelay: 500 * time.Millisecond,
		Jitter:    400 * time.Millisecond,
		MaxDelay:  5 * time.Second,
	}

	t.Run("backoff doubles and stays within jitter bounds", func(t *testing.T) {
		for attempt := 1; attempt <= 8; attempt++ {
			d := policy.delayFor(attempt)
			assert.GreaterOrEqual(t, d, time.Duration(0))
			assert.LessOrEqual(t, d, policy.MaxDelay+policy.Jitter)
		}
	})

	t.Run("without jitter growth is exact until the cap", func(t *testing.T) {
		p := RetryPolicy{BaseDelay: 100 * time.Millisecond, MaxDelay: time.Second}
		assert.Equal(t, 100*time.Millisecond, p.delayFor(1))
		assert.Equal(t, 200*time.Millisecond, p.delayFor(2))
		assert.Equal(t, 400*time.Millisecond, p.delayFor(3))
		assert.Equal(t, 800*time.Millisecond, p.delayFor(4))
		assert.Equal(t, time.Second, p.delayFor(5))
		assert.Equal(t, time.Second, p.delayFor(10))
	})
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, isRetryable(fakeResponse(http.StatusTooManyRequests)))
	assert.True(t, isRetryable(fakeResponse(http.StatusInternalServerError)))
	assert.True(t, isRetryable(fakeResponse(http.StatusBadGateway)))
	assert.False(t, isRetryable(fakeResponse(http.StatusOK)))
	assert.False(t, isRetryable(fakeResponse(http.StatusNotFound)))
	assert.False(t, isRetryable(fakeResponse(http.StatusConflict)))
}
