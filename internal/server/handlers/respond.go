package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	apperrors "github.com/shelfline/shelfline/internal/errors"
	"github.com/shelfline/shelfline/internal/inventory"
)

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func decodeJSON(r *http.Request, dst any) error {
	defer r.Body.Close() // nolint:errcheck // best-effort cleanup
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

// pathID extracts the {id} route parameter as a positive integer.
func pathID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return id, nil
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return fallback
	}
	return v
}

// respondServiceError adapts inventory service errors onto the API error
// envelope: missing rows become 404 and rejected input becomes 400.
func respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var validationErr *inventory.ValidationError
	switch {
	case errors.Is(err, inventory.ErrNotFound):
		respondWithError(w, r, apperrors.NewNotFoundError("The requested resource was not found"))
	case errors.As(err, &validationErr):
		respondWithError(w, r, apperrors.NewValidationError(validationErr.Error()))
	default:
		respondWithError(w, r, apperrors.WrapDatabaseError(r.Context(), err, "inventory operation failed"))
	}
}
