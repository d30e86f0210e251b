package wix

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nahidhasantamim/CT-wix-store-migrator-sub003/internal/infrastructure/config"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	cfg := &config.WixConfig{
		APIBaseURL:       "https://www.wixapis.com",
		TimeoutSeconds:   5,
		RetryMaxAttempts: 3,
		RetryBaseDelay:   time.Millisecond,
		RetryMaxDelay:    5 * time.Millisecond,
	}
	c := NewClient(cfg, "test-token", zap.NewNop())
	httpmock.ActivateNonDefault(c.httpClient)
	t.Cleanup(httpmock.DeactivateAndReset)
	return c
}

func TestClientCall(t *testing.T) {
	t.Run("sends token and decodes response", func(t *testing.T) {
		c := newTestClient(t)
		httpmock.RegisterResponder(http.MethodPost, "https://www.wixapis.com/stores/v1/products/query",
			func(req *http.Request) (*http.Response, error) {
				assert.Equal(t, "test-token", req.Header.Get("Authorization"))
				assert.Equal(t, "application/json", req.Header.Get("Content-Type"))
				return httpmock.NewJsonResponse(http.StatusOK, map[string]any{
					"products":     []map[string]any{{"id": "p1"}, {"id": "p2"}},
					"totalResults": 2,
				})
			})

		var resp productQueryResponse
		err := c.Post(context.Background(), "/stores/v1/products/query", map[string]any{}, &resp)
		require.NoError(t, err)
		assert.Len(t, resp.Products, 2)
		assert.Equal(t, 2, resp.TotalResults)
	})

	t.Run("retries throttled responses before succeeding", func(t *testing.T) {
		c := newTestClient(t)
		calls := 0
		httpmock.RegisterResponder(http.MethodGet, "https://www.wixapis.com/stores/v1/catalog/version",
			func(req *http.Request) (*http.Response, error) {
				calls++
				if calls < 3 {
					return httpmock.NewStringResponse(http.StatusTooManyRequests, "slow down"), nil
				}
				return httpmock.NewJsonResponse(http.StatusOK, map[string]any{"catalogVersion": "V3_CATALOG"})
			})

		version, err := ProbeCatalogVersion(context.Background(), c)
		require.NoError(t, err)
		assert.Equal(t, CatalogV3, version)
		assert.Equal(t, 3, calls)
	})

	t.Run("surfaces terminal errors as APIError", func(t *testing.T) {
		c := newTestClient(t)
		httpmock.RegisterResponder(http.MethodPost, "https://www.wixapis.com/stores/v1/products",
			httpmock.NewStringResponder(http.StatusConflict, `{"message":"slug already exists"}`))

		err := c.Post(context.Background(), "/stores/v1/products", map[string]any{}, nil)
		require.Error(t, err)
		assert.True(t, IsConflict(err))

		apiErr, ok := err.(*APIError)
		require.True(t, ok)
		assert.Equal(t, http.StatusConflict, apiErr.StatusCode)
		assert.Contains(t, apiErr.Body, "slug already exists")
	})

	t.Run("exhausted retries return the final status", func(t *testing.T) {
		c := newTestClient(t)
		calls := 0
		httpmock.RegisterResponder(http.MethodGet, "https://www.wixapis.com/stores/v1/catalog/version",
			func(req *http.Request) (*http.Response, error) {
				calls++
				return httpmock.NewStringResponse(http.StatusInternalServerError, "boom"), nil
			})

		var out catalogVersionResponse
		err := c.Get(context.Background(), "/stores/v1/catalog/version", &out)
		require.Error(t, err)
		assert.Equal(t, 3, calls)

		apiErr, ok := err.(*APIError)
		require.True(t, ok)
		assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
	})
}

func TestProbeCatalogVersion(t *testing.T) {
	t.Run("missing endpoint means legacy catalog", func(t *testing.T) {
		c := newTestClient(t)
		httpmock.RegisterResponder(http.MethodGet, "https://www.wixapis.com/stores/v1/catalog/version",
			httpmock.NewStringResponder(http.StatusNotFound, "not found"))

		version, err := ProbeCatalogVersion(context.Background(), c)
		require.NoError(t, err)
		assert.Equal(t, CatalogV1, version)
	})

	t.Run("unrecognized value defaults to legacy catalog", func(t *testing.T) {
		c := newTestClient(t)
		httpmock.RegisterResponder(http.MethodGet, "https://www.wixapis.com/stores/v1/catalog/version",
			httpmock.NewJsonResponderOrPanic(http.StatusOK, map[string]any{"catalogVersion": "SOMETHING_ELSE"}))

		version, err := ProbeCatalogVersion(context.Background(), c)
		require.NoError(t, err)
		assert.Equal(t, CatalogV1, version)
	})
}
