package handlers

import (
	"net/http"
	"strings"

	"github.com/shelfline/shelfline/internal/core"
	"github.com/shelfline/shelfline/internal/core/store"
	apperrors "github.com/shelfline/shelfline/internal/errors"
)

// ExpenseListResponse is the paged expenses payload.
type ExpenseListResponse struct {
	Expenses []core.Expense `json:"expenses"`
	Count    int            `json:"count"`
	Limit    int            `json:"limit"`
	Offset   int            `json:"offset"`
}

// ListExpenses handles GET /api/v1/expenses with category, limit, and
// offset query parameters.
func (h *InventoryHandler) ListExpenses(w http.ResponseWriter, r *http.Request) {
	filter := store.ExpenseFilter{
		Category: strings.TrimSpace(r.URL.Query().Get("category")),
		Limit:    queryInt(r, "limit", defaultPageSize),
		Offset:   queryInt(r, "offset", 0),
	}

	expenses, err := h.Service.ListExpenses(r.Context(), filter)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, ExpenseListResponse{
		Expenses: expenses,
		Count:    len(expenses),
		Limit:    filter.Limit,
		Offset:   filter.Offset,
	})
}

// CreateExpense handles POST /api/v1/expenses.
func (h *InventoryHandler) CreateExpense(w http.ResponseWriter, r *http.Request) {
	var expense core.Expense
	if err := decodeJSON(r, &expense); err != nil {
		respondWithError(w, r, apperrors.NewInvalidInputError(err.Error()))
		return
	}

	created, err := h.Service.CreateExpense(r.Context(), &expense)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, created)
}

// DeleteExpense handles DELETE /api/v1/expenses/{id}.
func (h *InventoryHandler) DeleteExpense(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondWithError(w, r, apperrors.NewInvalidInputError(err.Error()))
		return
	}

	if err := h.Service.DeleteExpense(r.Context(), id); err != nil {
		respondServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
