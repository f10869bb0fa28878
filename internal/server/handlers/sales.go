package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/shelfline/shelfline/internal/core"
	"github.com/shelfline/shelfline/internal/core/store"
	apperrors "github.com/shelfline/shelfline/internal/errors"
	"github.com/shelfline/shelfline/internal/inventory"
)

// SaleRequest is the POST /api/v1/sales payload. Recording a sale marks the
// referenced item sold and depletes its quantity.
type SaleRequest struct {
	ItemID          int64   `json:"item_id"`
	SalePrice       float64 `json:"sale_price"`
	Quantity        int     `json:"quantity,omitempty"`
	ShippingCost    float64 `json:"shipping_cost,omitempty"`
	MarketplaceFees float64 `json:"marketplace_fees,omitempty"`
	PaymentFees     float64 `json:"payment_fees,omitempty"`
	OtherFees       float64 `json:"other_fees,omitempty"`
	Platform        string  `json:"platform,omitempty"`
	PlatformOrderID string  `json:"platform_order_id,omitempty"`
	BuyerUsername   string  `json:"buyer_username,omitempty"`
	Notes           string  `json:"notes,omitempty"`
	SaleDate        string  `json:"sale_date,omitempty"`
}

// SaleListResponse is the paged sales payload.
type SaleListResponse struct {
	Sales  []core.Sale `json:"sales"`
	Count  int         `json:"count"`
	Limit  int         `json:"limit"`
	Offset int         `json:"offset"`
}

// ListSales handles GET /api/v1/sales with item_id, platform, limit, and
// offset query parameters.
func (h *InventoryHandler) ListSales(w http.ResponseWriter, r *http.Request) {
	filter := store.SaleFilter{
		ItemID:   int64(queryInt(r, "item_id", 0)),
		Platform: strings.TrimSpace(r.URL.Query().Get("platform")),
		Limit:    queryInt(r, "limit", defaultPageSize),
		Offset:   queryInt(r, "offset", 0),
	}

	sales, err := h.Service.ListSales(r.Context(), filter)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, SaleListResponse{
		Sales:  sales,
		Count:  len(sales),
		Limit:  filter.Limit,
		Offset: filter.Offset,
	})
}

// CreateSale handles POST /api/v1/sales.
func (h *InventoryHandler) CreateSale(w http.ResponseWriter, r *http.Request) {
	var req SaleRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, r, apperrors.NewInvalidInputError(err.Error()))
		return
	}

	if req.ItemID <= 0 {
		respondWithError(w, r, apperrors.NewValidationError("item_id is required"))
		return
	}

	input := inventory.SaleInput{
		SalePrice:       req.SalePrice,
		Quantity:        req.Quantity,
		ShippingCost:    req.ShippingCost,
		MarketplaceFees: req.MarketplaceFees,
		PaymentFees:     req.PaymentFees,
		OtherFees:       req.OtherFees,
		Platform:        req.Platform,
		PlatformOrderID: req.PlatformOrderID,
		BuyerUsername:   req.BuyerUsername,
		Notes:           req.Notes,
	}

	if req.SaleDate != "" {
		saleDate, err := time.Parse(time.RFC3339, req.SaleDate)
		if err != nil {
			respondWithError(w, r, apperrors.NewValidationError("sale_date must be RFC 3339"))
			return
		}
		input.SaleDate = saleDate
	}

	sale, err := h.Service.MarkSold(r.Context(), req.ItemID, input)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, sale)
}

// DeleteSale handles DELETE /api/v1/sales/{id}.
func (h *InventoryHandler) DeleteSale(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondWithError(w, r, apperrors.NewInvalidInputError(err.Error()))
		return
	}

	if err := h.Service.DeleteSale(r.Context(), id); err != nil {
		respondServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
