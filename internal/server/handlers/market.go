package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	apperrors "github.com/shelfline/shelfline/internal/errors"
	"github.com/shelfline/shelfline/internal/inventory"
	"github.com/shelfline/shelfline/internal/market"
)

// MarketAPI is the slice of the marketplace client the handler needs.
type MarketAPI interface {
	Stats() market.UsageStats
	ListOffers(ctx context.Context, sku string) ([]market.Offer, error)
}

// SyncAPI pushes local inventory to the marketplace.
type SyncAPI interface {
	PushItem(ctx context.Context, itemID int64) (*inventory.SyncResult, error)
	PushReady(ctx context.Context) ([]inventory.SyncResult, error)
}

var (
	_ MarketAPI = (*market.Client)(nil)
	_ SyncAPI   = (*inventory.Syncer)(nil)
)

// MarketHandler serves marketplace usage stats, offer listings, and sync.
type MarketHandler struct {
	Client MarketAPI
	Syncer SyncAPI
}

// NewMarketHandler wires the marketplace client and syncer into the HTTP
// facade. Either dependency may be nil when the marketplace is not
// configured; affected routes then return 503.
func NewMarketHandler(client MarketAPI, syncer SyncAPI) *MarketHandler {
	return &MarketHandler{Client: client, Syncer: syncer}
}

// Stats handles GET /api/v1/market/stats with a snapshot of API usage over
// the tracking window.
func (h *MarketHandler) Stats(w http.ResponseWriter, r *http.Request) {
	if h.Client == nil {
		respondWithError(w, r, apperrors.NewExternalServiceError("marketplace client is not configured"))
		return
	}
	respondJSON(w, http.StatusOK, h.Client.Stats())
}

// OfferListResponse wraps marketplace offers for one or all SKUs.
type OfferListResponse struct {
	Offers []market.Offer `json:"offers"`
	Count  int            `json:"count"`
}

// Offers handles GET /api/v1/market/offers with an optional sku filter.
func (h *MarketHandler) Offers(w http.ResponseWriter, r *http.Request) {
	if h.Client == nil {
		respondWithError(w, r, apperrors.NewExternalServiceError("marketplace client is not configured"))
		return
	}

	sku := strings.TrimSpace(r.URL.Query().Get("sku"))
	offers, err := h.Client.ListOffers(r.Context(), sku)
	if err != nil {
		respondWithError(w, r, apperrors.FromMarketError(r.Context(), err))
		return
	}

	respondJSON(w, http.StatusOK, OfferListResponse{Offers: offers, Count: len(offers)})
}

// SyncItem handles POST /api/v1/market/sync/{id}: upload, offer, publish,
// and write the listing linkage back to the item.
func (h *MarketHandler) SyncItem(w http.ResponseWriter, r *http.Request) {
	if h.Syncer == nil {
		respondWithError(w, r, apperrors.NewExternalServiceError("marketplace client is not configured"))
		return
	}

	id, err := pathID(r)
	if err != nil {
		respondWithError(w, r, apperrors.NewInvalidInputError(err.Error()))
		return
	}

	result, err := h.Syncer.PushItem(r.Context(), id)
	if err != nil {
		h.respondSyncError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// SyncResultsResponse is the batch sync payload.
type SyncResultsResponse struct {
	Results []inventory.SyncResult `json:"results"`
	Count   int                    `json:"count"`
}

// SyncReady handles POST /api/v1/market/sync: push every item in ready
// status. Per-item failures are reported in the results, not as an error.
func (h *MarketHandler) SyncReady(w http.ResponseWriter, r *http.Request) {
	if h.Syncer == nil {
		respondWithError(w, r, apperrors.NewExternalServiceError("marketplace client is not configured"))
		return
	}

	results, err := h.Syncer.PushReady(r.Context())
	if err != nil {
		h.respondSyncError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, SyncResultsResponse{Results: results, Count: len(results)})
}

// respondSyncError distinguishes local inventory failures from marketplace
// failures so callers get the right status code.
func (h *MarketHandler) respondSyncError(w http.ResponseWriter, r *http.Request, err error) {
	var validationErr *inventory.ValidationError
	if errors.Is(err, inventory.ErrNotFound) || errors.As(err, &validationErr) {
		respondServiceError(w, r, err)
		return
	}
	respondWithError(w, r, apperrors.FromMarketError(r.Context(), err))
}
