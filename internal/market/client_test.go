package market

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/shelfline/shelfline/internal/config"
)

// fakeAuth is a scriptable Authenticator.
type fakeAuth struct {
	token      string
	tokenErr   error
	refreshErr error
	refreshes  atomic.Int32
}

func (a *fakeAuth) AccessToken(ctx context.Context) (string, error) {
	if a.tokenErr != nil {
		return "", a.tokenErr
	}
	return a.token, nil
}

func (a *fakeAuth) Refresh(ctx context.Context) error {
	a.refreshes.Add(1)
	if a.refreshErr != nil {
		return a.refreshErr
	}
	a.token = "refreshed-token"
	return nil
}

func testMarketConfig(baseURL string) config.MarketConfig {
	return config.MarketConfig{
		BaseURL:        baseURL,
		CallsPerSecond: 100,
		Burst:          100,
		AcquireTimeout: time.Second,
		RequestTimeout: 5 * time.Second,
		TrackerWindow:  time.Hour,
	}
}

func TestClientGetItem(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		require.Equal(t, "/inventory_item/CARD-001", r.URL.Path)
		require.Equal(t, "Bearer good-token", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"sku":"CARD-001","condition":"USED_EXCELLENT"}`))
	}))
	defer server.Close()

	client := NewClient(testMarketConfig(server.URL), &fakeAuth{token: "good-token"}, nil)

	item, err := client.GetItem(context.Background(), "CARD-001")
	require.NoError(t, err)
	require.Equal(t, "CARD-001", item.SKU)
	require.Equal(t, int32(1), attempts.Load())

	stats := client.Stats()
	require.Equal(t, 1, stats.TotalRequests)
	require.Equal(t, 1, stats.SuccessCount)
}

func TestClientRetriesOnceAfter401(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) == 1 {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		require.Equal(t, "Bearer refreshed-token", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"sku":"CARD-001"}`))
	}))
	defer server.Close()

	auth := &fakeAuth{token: "stale-token"}
	client := NewClient(testMarketConfig(server.URL), auth, nil)

	item, err := client.GetItem(context.Background(), "CARD-001")
	require.NoError(t, err)
	require.Equal(t, "CARD-001", item.SKU)
	require.Equal(t, int32(2), attempts.Load())
	require.Equal(t, int32(1), auth.refreshes.Load())

	// Both attempts are recorded.
	stats := client.Stats()
	require.Equal(t, 2, stats.TotalRequests)
	require.Equal(t, 1, stats.SuccessCount)
	require.Equal(t, 1, stats.ErrorCount)
}

func TestClientSecond401IsAuthError(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	auth := &fakeAuth{token: "bad-token"}
	client := NewClient(testMarketConfig(server.URL), auth, nil)

	_, err := client.GetItem(context.Background(), "CARD-001")
	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
	require.Equal(t, int32(2), attempts.Load())
	require.Equal(t, int32(1), auth.refreshes.Load())
}

func TestClientRefreshFailureIsAuthError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	auth := &fakeAuth{token: "bad-token", refreshErr: &AuthError{Message: "refresh token expired"}}
	client := NewClient(testMarketConfig(server.URL), auth, nil)

	_, err := client.GetItem(context.Background(), "CARD-001")
	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
}

func TestClientMissingTokenIsAuthErrorWithoutNetwork(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
	}))
	defer server.Close()

	auth := &fakeAuth{tokenErr: &AuthError{Message: "not authenticated, login required"}}
	client := NewClient(testMarketConfig(server.URL), auth, nil)

	_, err := client.GetItem(context.Background(), "CARD-001")
	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
	require.Equal(t, int32(0), attempts.Load())
	require.Equal(t, 0, client.Stats().TotalRequests)
}

func TestClientLimiterTimeoutIsRateLimitErrorUnrecorded(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
	}))
	defer server.Close()

	cfg := testMarketConfig(server.URL)
	cfg.CallsPerSecond = 0.001
	cfg.Burst = 1
	cfg.AcquireTimeout = 50 * time.Millisecond
	client := NewClient(cfg, &fakeAuth{token: "good-token"}, nil)

	// Drain the single burst token without touching the network.
	require.True(t, client.limiter.TryAcquire(1))

	_, err := client.GetItem(context.Background(), "CARD-001")
	var rateErr *RateLimitError
	require.ErrorAs(t, err, &rateErr)
	require.Equal(t, int32(0), attempts.Load())
	require.Equal(t, 0, client.Stats().TotalRequests)
}

func TestClientRemote429(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewClient(testMarketConfig(server.URL), &fakeAuth{token: "good-token"}, nil)

	_, err := client.GetItem(context.Background(), "CARD-001")
	var rateErr *RateLimitError
	require.ErrorAs(t, err, &rateErr)

	stats := client.Stats()
	require.Equal(t, 1, stats.TotalRequests)
	require.Equal(t, 1, stats.ErrorCount)
}

func TestClientParsesErrorEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"errors":[{"errorId":25001,"message":"Invalid SKU format"}]}`))
	}))
	defer server.Close()

	client := NewClient(testMarketConfig(server.URL), &fakeAuth{token: "good-token"}, nil)

	_, err := client.GetItem(context.Background(), "bad sku")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	require.Equal(t, "Invalid SKU format", apiErr.Message)
}

func TestClientAPIErrorFallsBackToRawBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream unavailable"))
	}))
	defer server.Close()

	client := NewClient(testMarketConfig(server.URL), &fakeAuth{token: "good-token"}, nil)

	_, err := client.GetItem(context.Background(), "CARD-001")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, "upstream unavailable", apiErr.Message)
}

func TestClientTransportErrorRecordedAsStatusZero(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // connection refused from here on

	client := NewClient(testMarketConfig(server.URL), &fakeAuth{token: "good-token"}, nil)

	_, err := client.GetItem(context.Background(), "CARD-001")
	var transportErr *TransportError
	require.ErrorAs(t, err, &transportErr)

	stats := client.Stats()
	require.Equal(t, 1, stats.TotalRequests)
	require.Equal(t, 1, stats.ErrorCount)
}

func TestClientDeleteHandles204(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodDelete, r.Method)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := NewClient(testMarketConfig(server.URL), &fakeAuth{token: "good-token"}, nil)

	require.NoError(t, client.DeleteItem(context.Background(), "CARD-001"))

	stats := client.Stats()
	require.Equal(t, 1, stats.SuccessCount)
}

func TestClientBulkCreateOrReplace(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/bulk_create_or_replace_inventory_item", r.URL.Path)
		require.Equal(t, http.MethodPost, r.Method)
		_, _ = w.Write([]byte(`{"responses":[{"sku":"A","statusCode":200},{"sku":"B","statusCode":200}]}`))
	}))
	defer server.Close()

	client := NewClient(testMarketConfig(server.URL), &fakeAuth{token: "good-token"}, nil)

	resp, err := client.BulkCreateOrReplace(context.Background(), []InventoryItem{{SKU: "A"}, {SKU: "B"}})
	require.NoError(t, err)
	require.Len(t, resp.Responses, 2)
}

func TestClientListItemsPagination(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "50", r.URL.Query().Get("limit"))
		require.Equal(t, "100", r.URL.Query().Get("offset"))
		_, _ = w.Write([]byte(`{"inventoryItems":[{"sku":"CARD-001"}],"total":101}`))
	}))
	defer server.Close()

	client := NewClient(testMarketConfig(server.URL), &fakeAuth{token: "good-token"}, nil)

	page, err := client.ListItems(context.Background(), 50, 100)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	require.Equal(t, 101, page.Total)
}
