package wix

import (
	"context"
	"io"
	"math/rand"
	"net/http"
	"time"
)

// RetryPolicy controls transient-failure masking for remote API calls.
// Responses with status 429 or 5xx are retried; any other response is
// returned immediately.
type RetryPolicy struct {
	// MaxAttempts is the total number of tries, including the first
	MaxAttempts int
	// BaseDelay is the starting wait between attempts
	BaseDelay time.Duration
	// Jitter is the maximum random offset added to or subtracted from the delay
	Jitter time.Duration
	// MaxDelay caps backoff growth
	MaxDelay time.Duration
}

// DefaultRetryPolicy matches the platform's recommended client behavior:
// 3 attempts, 500ms base delay with ±400ms jitter, backoff capped at 5s.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		BaseDelay:   500 * time.Millisecond,
		Jitter:      400 * time.Millisecond,
		MaxDelay:    5 * time.Second,
	}
}

func (p RetryPolicy) normalized() RetryPolicy {
	if p.MaxAttempts < 1 {
		p.MaxAttempts = 1
	}
	if p.BaseDelay <= 0 {
		p.BaseDelay = 500 * time.Millisecond
	}
	if p.MaxDelay <= 0 {
		p.MaxDelay = 5 * time.Second
	}
	return p
}

// delayFor computes the wait before the given retry attempt (1-based count of
// completed attempts). Backoff doubles per attempt up to MaxDelay, then a
// random jitter in [-Jitter, +Jitter] is applied.
func (p RetryPolicy) delayFor(attempt int) time.Duration {
	delay := p.BaseDelay
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay >= p.MaxDelay {
			delay = p.MaxDelay
			break
		}
	}
	if p.Jitter > 0 {
		delay += time.Duration(rand.Int63n(int64(2*p.Jitter))) - p.Jitter
	}
	if delay < 0 {
		delay = 0
	}
	return delay
}

// isRetryable reports whether the response status warrants another attempt
func isRetryable(resp *http.Response) bool {
	return resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500
}

// doWithRetry runs op until it yields a non-retryable response or attempts
// are exhausted. On exhaustion the last response is returned, not an error,
// so callers can inspect status and body. A transport error from the final
// attempt propagates.
func doWithRetry(ctx context.Context, policy RetryPolicy, op func() (*http.Response, error)) (*http.Response, error) {
	policy = policy.normalized()

	var resp *http.Response
	var err error
	for attempt := 1; attempt <= policy.MaxAttempts; attempt++ {
		resp, err = op()
		if err == nil && !isRetryable(resp) {
			return resp, nil
		}

		last := attempt == policy.MaxAttempts
		if last {
			break
		}

		// Discard the retryable response before trying again
		if err == nil {
			_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseSize))
			_ = resp.Body.Close()
		}

		timer := time.NewTimer(policy.delayFor(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	return resp, err
}
