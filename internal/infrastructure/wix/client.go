package wix

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/nahidhasantamim/CT-wix-store-migrator-sub003/internal/infrastructure/config"
)

// maxResponseSize is the maximum allowed response size from the platform API (10MB)
const maxResponseSize = 10 * 1024 * 1024

// APIError carries a non-2xx platform response so callers can inspect the
// status and body after retries are exhausted.
type APIError struct {
	StatusCode int
	Method     string
	Path       string
	Body       string
}

// Error implements the error interface
func (e *APIError) Error() string {
	return fmt.Sprintf("wix: %s %s returned HTTP %d: %s", e.Method, e.Path, e.StatusCode, e.Body)
}

// IsConflict reports whether err is a destination uniqueness conflict (409)
func IsConflict(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusConflict
}

// IsNotFound reports whether err is a 404 from the platform
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// Client issues authenticated JSON calls against the Wix REST API for one
// account, masking transient 429/5xx failures via the retry policy.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	policy     RetryPolicy
	logger     *zap.Logger
}

// NewClient creates a client bound to one account's access token
func NewClient(cfg *config.WixConfig, token string, log *zap.Logger) *Client {
	return NewClientWithHTTPClient(cfg, token, &http.Client{
		Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
	}, log)
}

// NewClientWithHTTPClient creates a client on a caller-supplied HTTP client,
// used when transport behavior must be controlled from outside.
func NewClientWithHTTPClient(cfg *config.WixConfig, token string, httpClient *http.Client, log *zap.Logger) *Client {
	return &Client{
		baseURL:    cfg.APIBaseURL,
		token:      token,
		httpClient: httpClient,
		policy: RetryPolicy{
			MaxAttempts: cfg.RetryMaxAttempts,
			BaseDelay:   cfg.RetryBaseDelay,
			Jitter:      cfg.RetryJitter,
			MaxDelay:    cfg.RetryMaxDelay,
		},
		logger: log.Named("wix"),
	}
}

// Call performs a JSON request against the platform. A non-2xx terminal
// response is returned as *APIError; 2xx responses are decoded into out when
// out is non-nil.
func (c *Client) Call(ctx context.Context, method, path string, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("wix: failed to encode request body: %w", err)
		}
	}

	resp, err := doWithRetry(ctx, c.policy, func() (*http.Response, error) {
		var reader io.Reader
		if payload != nil {
			reader = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
		if err != nil {
			return nil, fmt.Errorf("wix: failed to create request: %w", err)
		}
		req.Header.Set("Authorization", c.token)
		req.Header.Set("Content-Type", "application/json")
		return c.httpClient.Do(req)
	})
	if err != nil {
		return fmt.Errorf("wix: %s %s failed: %w", method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("wix: failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		c.logger.Debug("platform API call failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
		)
		return &APIError{
			StatusCode: resp.StatusCode,
			Method:     method,
			Path:       path,
			Body:       string(respBody),
		}
	}

	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("wix: failed to parse response from %s: %w", path, err)
		}
	}
	return nil
}

// Post is shorthand for a POST call
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.Call(ctx, http.MethodPost, path, body, out)
}

// Get is shorthand for a GET call
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.Call(ctx, http.MethodGet, path, nil, out)
}
