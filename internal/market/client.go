// Package market implements the rate-limited, monitored client for the
// marketplace Sell Inventory API. Every outbound call passes through a local
// token bucket, attaches a bearer token from the Authenticator, retries
// exactly once on an expired credential, and feeds a sliding-window usage
// tracker.
package market

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/fulmenhq/gofulmen/logging"
	"go.uber.org/zap"

	"github.com/shelfline/shelfline/internal/config"
	"github.com/shelfline/shelfline/internal/metrics"
)

// Authenticator supplies bearer tokens for marketplace calls. The client
// never caches the token itself: it is fetched fresh on every call, and the
// authenticator owns expiry and refresh policy. Refresh is invoked only in
// response to a 401.
type Authenticator interface {
	AccessToken(ctx context.Context) (string, error)
	Refresh(ctx context.Context) error
}

// Client is the single choke point for outbound marketplace calls.
// Safe for concurrent use: the limiter and tracker each guard their own
// state, and neither calls into the other.
type Client struct {
	baseURL        string
	auth           Authenticator
	httpClient     *http.Client
	limiter        *TokenBucket
	tracker        *UsageTracker
	acquireTimeout time.Duration
	logger         *logging.Logger
}

// NewClient builds a client from configuration and an authenticator.
func NewClient(cfg config.MarketConfig, auth Authenticator, logger *logging.Logger) *Client {
	requestTimeout := cfg.RequestTimeout
	if requestTimeout <= 0 {
		requestTimeout = 30 * time.Second
	}
	acquireTimeout := cfg.AcquireTimeout
	if acquireTimeout <= 0 {
		acquireTimeout = 10 * time.Second
	}

	return &Client{
		baseURL:        strings.TrimRight(cfg.BaseURL, "/"),
		auth:           auth,
		httpClient:     &http.Client{Timeout: requestTimeout},
		limiter:        NewTokenBucket(cfg.CallsPerSecond, cfg.Burst),
		tracker:        NewUsageTracker(cfg.TrackerWindow),
		acquireTimeout: acquireTimeout,
		logger:         logger,
	}
}

// SetHTTPClient overrides the transport. Used by tests.
func (c *Client) SetHTTPClient(hc *http.Client) {
	if hc != nil {
		c.httpClient = hc
	}
}

// GetItem fetches one inventory item by SKU.
func (c *Client) GetItem(ctx context.Context, sku string) (*InventoryItem, error) {
	var item InventoryItem
	if err := c.do(ctx, http.MethodGet, "inventory_item/"+url.PathEscape(sku), nil, nil, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// ListItems fetches one page of inventory items.
func (c *Client) ListItems(ctx context.Context, limit, offset int) (*InventoryItemPage, error) {
	if limit <= 0 {
		limit = 25
	}
	query := url.Values{}
	query.Set("limit", strconv.Itoa(limit))
	query.Set("offset", strconv.Itoa(offset))

	var page InventoryItemPage
	if err := c.do(ctx, http.MethodGet, "inventory_item", query, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// CreateOrReplaceItem upserts an inventory item under the given SKU.
func (c *Client) CreateOrReplaceItem(ctx context.Context, sku string, item *InventoryItem) error {
	return c.do(ctx, http.MethodPut, "inventory_item/"+url.PathEscape(sku), nil, item, nil)
}

// DeleteItem removes an inventory item by SKU.
func (c *Client) DeleteItem(ctx context.Context, sku string) error {
	return c.do(ctx, http.MethodDelete, "inventory_item/"+url.PathEscape(sku), nil, nil, nil)
}

// BulkCreateOrReplace upserts a batch of inventory items in one call.
func (c *Client) BulkCreateOrReplace(ctx context.Context, items []InventoryItem) (*BulkInventoryResponse, error) {
	var resp BulkInventoryResponse
	req := BulkInventoryRequest{Requests: items}
	if err := c.do(ctx, http.MethodPost, "bulk_create_or_replace_inventory_item", nil, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CreateOffer creates a listing offer for an inventory item.
func (c *Client) CreateOffer(ctx context.Context, offer *Offer) (*CreateOfferResponse, error) {
	var resp CreateOfferResponse
	if err := c.do(ctx, http.MethodPost, "offer", nil, offer, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// PublishOffer turns a pending offer into a live listing.
func (c *Client) PublishOffer(ctx context.Context, offerID string) (*PublishResponse, error) {
	var resp PublishResponse
	if err := c.do(ctx, http.MethodPost, "offer/"+url.PathEscape(offerID)+"/publish", nil, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListOffers fetches offers, optionally filtered by SKU.
func (c *Client) ListOffers(ctx context.Context, sku string) ([]Offer, error) {
	var query url.Values
	if strings.TrimSpace(sku) != "" {
		query = url.Values{}
		query.Set("sku", sku)
	}

	var page OfferPage
	if err := c.do(ctx, http.MethodGet, "offer", query, nil, &page); err != nil {
		return nil, err
	}
	return page.Offers, nil
}

// Stats returns a snapshot of recent outbound call activity. No side
// effects beyond lazy window pruning.
func (c *Client) Stats() UsageStats {
	return c.tracker.Stats()
}

// do runs the per-call state machine: acquire an admission token, attach the
// bearer credential, send, classify. A 401 triggers one refresh and one
// retry; nothing else is retried. Limiter timeouts are not recorded in the
// tracker since the call never reached the network.
func (c *Client) do(ctx context.Context, method, endpoint string, query url.Values, body, out any) error {
	if !c.limiter.Acquire(1, c.acquireTimeout) {
		metrics.RecordMarketRateLimited(endpoint)
		c.warn("admission timed out", zap.String("endpoint", endpoint), zap.Duration("timeout", c.acquireTimeout))
		return &RateLimitError{Message: fmt.Sprintf("no capacity within %s", c.acquireTimeout)}
	}

	token, err := c.auth.AccessToken(ctx)
	if err != nil || strings.TrimSpace(token) == "" {
		return errNotAuthenticated(err)
	}

	var payload []byte
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		payload = encoded
	}

	start := time.Now()
	status, respBody, err := c.send(ctx, method, endpoint, query, token, payload)
	if err != nil {
		c.tracker.Record(endpoint, 0)
		c.warn("request failed", zap.String("endpoint", endpoint), zap.Error(err))
		return &TransportError{Endpoint: endpoint, Err: err}
	}
	c.tracker.Record(endpoint, status)
	metrics.RecordMarketRequest(endpoint, status, time.Since(start))

	if status == http.StatusUnauthorized {
		c.warn("access token rejected, refreshing", zap.String("endpoint", endpoint))
		if err := c.auth.Refresh(ctx); err != nil {
			return &AuthError{Message: "token refresh failed: " + err.Error()}
		}

		token, err = c.auth.AccessToken(ctx)
		if err != nil || strings.TrimSpace(token) == "" {
			return errNotAuthenticated(err)
		}

		status, respBody, err = c.send(ctx, method, endpoint, query, token, payload)
		if err != nil {
			c.tracker.Record(endpoint, 0)
			return &TransportError{Endpoint: endpoint, Err: err}
		}
		c.tracker.Record(endpoint, status)
		metrics.RecordMarketRequest(endpoint, status, time.Since(start))

		if status == http.StatusUnauthorized {
			return &AuthError{Message: "authentication failed after token refresh"}
		}
	}

	switch {
	case status == http.StatusNoContent:
		return nil
	case status >= 200 && status < 300:
		if out == nil || len(respBody) == 0 {
			return nil
		}
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		return nil
	case status == http.StatusTooManyRequests:
		return &RateLimitError{Message: "marketplace returned 429"}
	default:
		return &APIError{StatusCode: status, Message: serverMessage(respBody)}
	}
}

// send performs a single HTTP round trip with the supplied bearer token.
func (c *Client) send(ctx context.Context, method, endpoint string, query url.Values, token string, payload []byte) (int, []byte, error) {
	reqURL := c.baseURL + "/" + endpoint
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close() // nolint:errcheck // best-effort cleanup

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("read response: %w", err)
	}

	return resp.StatusCode, respBody, nil
}

// errNotAuthenticated builds the terminal auth error for a missing
// credential. Returned as a sentinel error type so do can surface it
// unwrapped.
func errNotAuthenticated(cause error) error {
	if cause != nil {
		return &AuthError{Message: "no valid access token: " + cause.Error()}
	}
	return &AuthError{Message: "not authenticated, login required"}
}

// serverMessage extracts the first error message from the marketplace error
// envelope, falling back to the raw body.
func serverMessage(body []byte) string {
	var envelope apiErrorEnvelope
	if err := json.Unmarshal(body, &envelope); err == nil && len(envelope.Errors) > 0 {
		if msg := strings.TrimSpace(envelope.Errors[0].Message); msg != "" {
			return msg
		}
	}
	return strings.TrimSpace(string(body))
}

func (c *Client) warn(msg string, fields ...zap.Field) {
	if c.logger != nil {
		c.logger.Warn(msg, fields...)
	}
}
