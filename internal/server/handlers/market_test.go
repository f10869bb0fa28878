package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/shelfline/shelfline/internal/inventory"
	"github.com/shelfline/shelfline/internal/market"
)

type fakeMarketAPI struct {
	stats     market.UsageStats
	offers    []market.Offer
	offersErr error
}

func (f *fakeMarketAPI) Stats() market.UsageStats {
	return f.stats
}

func (f *fakeMarketAPI) ListOffers(ctx context.Context, sku string) ([]market.Offer, error) {
	if f.offersErr != nil {
		return nil, f.offersErr
	}
	return f.offers, nil
}

type fakeSyncAPI struct {
	result  *inventory.SyncResult
	results []inventory.SyncResult
	err     error
}

func (f *fakeSyncAPI) PushItem(ctx context.Context, itemID int64) (*inventory.SyncResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func (f *fakeSyncAPI) PushReady(ctx context.Context) ([]inventory.SyncResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.results, nil
}

func newMarketRouter(h *MarketHandler) *chi.Mux {
	r := chi.NewRouter()
	r.Route("/api/v1/market", func(r chi.Router) {
		r.Get("/stats", h.Stats)
		r.Get("/offers", h.Offers)
		r.Post("/sync", h.SyncReady)
		r.Post("/sync/{id}", h.SyncItem)
	})
	return r
}

func TestMarketStatsSnapshot(t *testing.T) {
	h := NewMarketHandler(&fakeMarketAPI{stats: market.UsageStats{TotalRequests: 7, SuccessCount: 6, ErrorCount: 1}}, nil)
	router := newMarketRouter(h)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/market/stats", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var stats market.UsageStats
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&stats))
	require.Equal(t, 7, stats.TotalRequests)
	require.Equal(t, 6, stats.SuccessCount)
}

func TestMarketOffersAuthErrorMapsTo401(t *testing.T) {
	h := NewMarketHandler(&fakeMarketAPI{offersErr: &market.AuthError{Message: "token expired"}}, nil)
	router := newMarketRouter(h)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/market/offers", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)

	var resp struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Equal(t, "UNAUTHORIZED", resp.Error.Code)
}

func TestMarketSyncRateLimitMapsTo429(t *testing.T) {
	h := NewMarketHandler(nil, &fakeSyncAPI{err: &market.RateLimitError{Message: "request quota exhausted"}})
	router := newMarketRouter(h)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/market/sync/3", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestMarketSyncAPIErrorMapsTo502(t *testing.T) {
	h := NewMarketHandler(nil, &fakeSyncAPI{err: &market.APIError{StatusCode: 500, Message: "upstream exploded"}})
	router := newMarketRouter(h)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/market/sync", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestMarketSyncMissingItemMapsTo404(t *testing.T) {
	h := NewMarketHandler(nil, &fakeSyncAPI{err: inventory.ErrNotFound})
	router := newMarketRouter(h)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/market/sync/42", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMarketSyncItemSuccess(t *testing.T) {
	h := NewMarketHandler(nil, &fakeSyncAPI{result: &inventory.SyncResult{
		ItemID:    3,
		SKU:       "CARD-3",
		OfferID:   "offer-1",
		ListingID: "listing-1",
	}})
	router := newMarketRouter(h)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/market/sync/3", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var result inventory.SyncResult
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&result))
	require.Equal(t, "listing-1", result.ListingID)
}

func TestMarketUnconfiguredReturns502(t *testing.T) {
	h := NewMarketHandler(nil, nil)
	router := newMarketRouter(h)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/market/offers", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadGateway, rec.Code)
}
