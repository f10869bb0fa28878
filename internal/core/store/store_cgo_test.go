//go:build cgo

package store

import (
	"context"
	"testing"
	"time"

	"github.com/shelfline/shelfline/internal/config"
	"github.com/shelfline/shelfline/internal/core"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()

	ctx := context.Background()
	store, err := Open(ctx, config.StoreConfig{Driver: "libsql", Path: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, store.Migrate(ctx))
	t.Cleanup(func() {
		require.NoError(t, store.Close())
	})
	return store
}

func TestOpenMemoryStore(t *testing.T) {
	store := openTestStore(t)
	require.Equal(t, "libsql", store.Driver())
}

func TestItemRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	item := &core.Item{
		SKU:          "CARD-001",
		Title:        "1998 Holo Charizard PSA 8",
		Category:     "trading_cards",
		Cost:         120,
		Price:        350,
		ShippingCost: 5,
		Status:       core.StatusDraft,
		Condition:    core.ConditionGood,
		Quantity:     1,
		Photos:       []string{"front.jpg", "back.jpg"},
	}

	id, err := store.CreateItem(ctx, item)
	require.NoError(t, err)
	require.NotZero(t, id)

	fetched, err := store.GetItem(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, fetched)
	require.Equal(t, "CARD-001", fetched.SKU)
	require.Equal(t, core.StatusDraft, fetched.Status)
	require.Equal(t, []string{"front.jpg", "back.jpg"}, fetched.Photos)
	require.InDelta(t, 225.0, fetched.Profit(), 1e-9)

	bySKU, err := store.GetItemBySKU(ctx, "CARD-001")
	require.NoError(t, err)
	require.NotNil(t, bySKU)
	require.Equal(t, id, bySKU.ID)

	fetched.Status = core.StatusListed
	fetched.ListingID = "110551234567"
	now := time.Now().UTC()
	fetched.ListedAt = &now
	require.NoError(t, store.UpdateItem(ctx, fetched))

	updated, err := store.GetItem(ctx, id)
	require.NoError(t, err)
	require.Equal(t, core.StatusListed, updated.Status)
	require.Equal(t, "110551234567", updated.ListingID)
	require.NotNil(t, updated.ListedAt)
}

func TestItemMissingReturnsNil(t *testing.T) {
	store := openTestStore(t)

	item, err := store.GetItem(context.Background(), 9999)
	require.NoError(t, err)
	require.Nil(t, item)
}

func TestItemSKUUnique(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	_, err := store.CreateItem(ctx, &core.Item{SKU: "DUP-1", Title: "First", Status: core.StatusDraft, Quantity: 1})
	require.NoError(t, err)

	_, err = store.CreateItem(ctx, &core.Item{SKU: "DUP-1", Title: "Second", Status: core.StatusDraft, Quantity: 1})
	require.Error(t, err)
}

func TestListItemsFilters(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	seed := []core.Item{
		{SKU: "A-1", Title: "Vintage denim jacket", Category: "clothing", Status: core.StatusListed, Quantity: 1},
		{SKU: "A-2", Title: "Graded rookie card", Category: "trading_cards", Status: core.StatusDraft, Quantity: 1},
		{SKU: "A-3", Title: "Denim jeans", Category: "clothing", Status: core.StatusDraft, Quantity: 1},
	}
	for i := range seed {
		_, err := store.CreateItem(ctx, &seed[i])
		require.NoError(t, err)
	}

	clothing, err := store.ListItems(ctx, ItemFilter{Category: "clothing"})
	require.NoError(t, err)
	require.Len(t, clothing, 2)

	drafts, err := store.ListItems(ctx, ItemFilter{Status: core.StatusDraft})
	require.NoError(t, err)
	require.Len(t, drafts, 2)

	denim, err := store.ListItems(ctx, ItemFilter{Search: "denim"})
	require.NoError(t, err)
	require.Len(t, denim, 2)

	counts, err := store.CountItemsByStatus(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, counts[core.StatusDraft])
	require.Equal(t, 1, counts[core.StatusListed])
}

func TestSaleRoundTripAndProfit(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	sale := &core.Sale{
		ItemTitle:       "Vintage denim jacket",
		ItemSKU:         "A-1",
		SalePrice:       80,
		Quantity:        1,
		Currency:        "USD",
		ItemCost:        20,
		ShippingCost:    8,
		MarketplaceFees: 10.4,
		Platform:        "ebay",
		SaleDate:        time.Now().UTC(),
	}

	id, err := store.CreateSale(ctx, sale)
	require.NoError(t, err)

	fetched, err := store.GetSale(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, fetched)
	require.InDelta(t, 41.6, fetched.Profit(), 1e-9)

	profit, err := store.RealizedProfit(ctx)
	require.NoError(t, err)
	require.InDelta(t, 41.6, profit, 1e-9)
}

func TestExpenseRoundTripAndTotals(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	_, err := store.CreateExpense(ctx, &core.Expense{
		Title:    "Poly mailers",
		Category: "shipping_supplies",
		Amount:   24.99,
		Currency: "USD",
		Date:     time.Now().UTC(),
	})
	require.NoError(t, err)

	_, err = store.CreateExpense(ctx, &core.Expense{
		Title:     "Storage unit",
		Category:  "storage",
		Amount:    85,
		Currency:  "USD",
		Recurring: true,
		Date:      time.Now().UTC(),
	})
	require.NoError(t, err)

	total, err := store.TotalExpenses(ctx, time.Time{}, time.Time{})
	require.NoError(t, err)
	require.InDelta(t, 109.99, total, 1e-9)

	storage, err := store.ListExpenses(ctx, ExpenseFilter{Category: "storage"})
	require.NoError(t, err)
	require.Len(t, storage, 1)
	require.True(t, storage[0].Recurring)
}

func TestOAuthTokenUpsert(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	missing, err := store.GetOAuthToken(ctx, "ebay")
	require.NoError(t, err)
	require.Nil(t, missing)

	token := &core.OAuthToken{
		Provider:     "ebay",
		AccessToken:  "access-1",
		RefreshToken: "refresh-1",
		ExpiresAt:    time.Now().Add(2 * time.Hour).UTC(),
	}
	require.NoError(t, store.PutOAuthToken(ctx, token))

	token.AccessToken = "access-2"
	require.NoError(t, store.PutOAuthToken(ctx, token))

	fetched, err := store.GetOAuthToken(ctx, "ebay")
	require.NoError(t, err)
	require.NotNil(t, fetched)
	require.Equal(t, "access-2", fetched.AccessToken)
	require.Equal(t, "refresh-1", fetched.RefreshToken)
	require.False(t, fetched.Expired(time.Now()))

	require.NoError(t, store.DeleteOAuthToken(ctx, "ebay"))
	gone, err := store.GetOAuthToken(ctx, "ebay")
	require.NoError(t, err)
	require.Nil(t, gone)
}
