package handlers

import (
	"net/http"
	"strings"

	"github.com/shelfline/shelfline/internal/assistant"
	"github.com/shelfline/shelfline/internal/core"
	"github.com/shelfline/shelfline/internal/core/store"
	apperrors "github.com/shelfline/shelfline/internal/errors"
	"github.com/shelfline/shelfline/internal/inventory"
)

const defaultPageSize = 50

// InventoryHandler serves the items, sales, and expenses resources.
type InventoryHandler struct {
	Service   *inventory.Service
	Suggester *assistant.Suggester
}

// NewInventoryHandler wires the inventory service into the HTTP facade.
// The suggester may be nil when the assistant is disabled.
func NewInventoryHandler(service *inventory.Service, suggester *assistant.Suggester) *InventoryHandler {
	return &InventoryHandler{Service: service, Suggester: suggester}
}

// ItemListResponse is the paged items payload.
type ItemListResponse struct {
	Items  []core.Item `json:"items"`
	Count  int         `json:"count"`
	Limit  int         `json:"limit"`
	Offset int         `json:"offset"`
}

// ListItems handles GET /api/v1/items with status, category, q, limit, and
// offset query parameters.
func (h *InventoryHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := store.ItemFilter{
		Status:   core.Status(strings.TrimSpace(q.Get("status"))),
		Category: strings.TrimSpace(q.Get("category")),
		Search:   strings.TrimSpace(q.Get("q")),
		Limit:    queryInt(r, "limit", defaultPageSize),
		Offset:   queryInt(r, "offset", 0),
	}

	items, err := h.Service.ListItems(r.Context(), filter)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, ItemListResponse{
		Items:  items,
		Count:  len(items),
		Limit:  filter.Limit,
		Offset: filter.Offset,
	})
}

// CreateItem handles POST /api/v1/items.
func (h *InventoryHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	var item core.Item
	if err := decodeJSON(r, &item); err != nil {
		respondWithError(w, r, apperrors.NewInvalidInputError(err.Error()))
		return
	}

	created, err := h.Service.CreateItem(r.Context(), &item)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, created)
}

// GetItem handles GET /api/v1/items/{id}.
func (h *InventoryHandler) GetItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondWithError(w, r, apperrors.NewInvalidInputError(err.Error()))
		return
	}

	item, err := h.Service.GetItem(r.Context(), id)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, item)
}

// UpdateItem handles PUT /api/v1/items/{id}. The body is a full item; the
// path ID wins over any ID in the payload.
func (h *InventoryHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondWithError(w, r, apperrors.NewInvalidInputError(err.Error()))
		return
	}

	var item core.Item
	if err := decodeJSON(r, &item); err != nil {
		respondWithError(w, r, apperrors.NewInvalidInputError(err.Error()))
		return
	}
	item.ID = id

	updated, err := h.Service.UpdateItem(r.Context(), &item)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, updated)
}

// DeleteItem handles DELETE /api/v1/items/{id}.
func (h *InventoryHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondWithError(w, r, apperrors.NewInvalidInputError(err.Error()))
		return
	}

	if err := h.Service.DeleteItem(r.Context(), id); err != nil {
		respondServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// SuggestionsResponse bundles assistant output for one item.
type SuggestionsResponse struct {
	ItemID int64                      `json:"item_id"`
	Price  *assistant.PriceSuggestion `json:"price,omitempty"`
	Title  *assistant.TitleSuggestion `json:"title,omitempty"`
}

// Suggestions handles GET /api/v1/items/{id}/suggestions. The optional
// kind query parameter limits the response to price or title.
func (h *InventoryHandler) Suggestions(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondWithError(w, r, apperrors.NewInvalidInputError(err.Error()))
		return
	}

	if h.Suggester == nil {
		respondWithError(w, r, apperrors.NewExternalServiceError("assistant is not configured"))
		return
	}

	item, err := h.Service.GetItem(r.Context(), id)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	kind := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("kind")))
	response := SuggestionsResponse{ItemID: id}

	if kind == "" || kind == "price" {
		price, err := h.Suggester.SuggestPrice(r.Context(), item)
		if err != nil {
			respondWithError(w, r, apperrors.WrapInternal(r.Context(), err, "price suggestion failed"))
			return
		}
		response.Price = price
	}

	if kind == "" || kind == "title" {
		title, err := h.Suggester.SuggestTitle(r.Context(), item)
		if err != nil {
			respondWithError(w, r, apperrors.WrapInternal(r.Context(), err, "title suggestion failed"))
			return
		}
		response.Title = title
	}

	if response.Price == nil && response.Title == nil {
		respondWithError(w, r, apperrors.NewInvalidInputError("kind must be price or title"))
		return
	}

	respondJSON(w, http.StatusOK, response)
}

// Summary handles GET /api/v1/summary.
func (h *InventoryHandler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.Service.Summary(r.Context())
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, summary)
}
