//go:build cgo

package inventory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/shelfline/shelfline/internal/config"
	"github.com/shelfline/shelfline/internal/core"
	"github.com/shelfline/shelfline/internal/core/store"
)

func newTestService(t *testing.T) *Service {
	t.Helper()

	ctx := context.Background()
	st, err := store.Open(ctx, config.StoreConfig{Driver: "libsql", Path: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, st.Migrate(ctx))
	t.Cleanup(func() {
		require.NoError(t, st.Close())
	})
	return NewService(st, nil)
}

func TestCreateItemDefaults(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	item, err := svc.CreateItem(ctx, &core.Item{SKU: "JKT-1", Title: "Vintage jacket", Cost: 12})
	require.NoError(t, err)
	require.Equal(t, core.StatusDraft, item.Status)
	require.Equal(t, 1, item.Quantity)
	require.NotZero(t, item.ID)
}

func TestCreateItemValidation(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	var vErr *ValidationError

	_, err := svc.CreateItem(ctx, &core.Item{Title: "no sku"})
	require.ErrorAs(t, err, &vErr)
	require.Equal(t, "sku", vErr.Field)

	_, err = svc.CreateItem(ctx, &core.Item{SKU: "X-1"})
	require.ErrorAs(t, err, &vErr)
	require.Equal(t, "title", vErr.Field)

	_, err = svc.CreateItem(ctx, &core.Item{SKU: "X-1", Title: "bad cost", Cost: -5})
	require.ErrorAs(t, err, &vErr)

	_, err = svc.CreateItem(ctx, &core.Item{SKU: "X-1", Title: "bad status", Status: "limbo"})
	require.ErrorAs(t, err, &vErr)
	require.Equal(t, "status", vErr.Field)
}

func TestCreateItemDuplicateSKU(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	_, err := svc.CreateItem(ctx, &core.Item{SKU: "DUP-1", Title: "First"})
	require.NoError(t, err)

	var vErr *ValidationError
	_, err = svc.CreateItem(ctx, &core.Item{SKU: "DUP-1", Title: "Second"})
	require.ErrorAs(t, err, &vErr)
	require.Equal(t, "sku", vErr.Field)
}

func TestGetItemNotFound(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.GetItem(context.Background(), 404)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateStatusStampsTimestamps(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	item, err := svc.CreateItem(ctx, &core.Item{SKU: "TS-1", Title: "Lamp", Price: 40})
	require.NoError(t, err)
	require.Nil(t, item.ListedAt)

	listed, err := svc.UpdateStatus(ctx, item.ID, core.StatusListed)
	require.NoError(t, err)
	require.NotNil(t, listed.ListedAt)
	require.Nil(t, listed.SoldAt)

	sold, err := svc.UpdateStatus(ctx, item.ID, core.StatusSold)
	require.NoError(t, err)
	require.NotNil(t, sold.SoldAt)
}

func TestMarkSoldCreatesSaleAndDepletesStock(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	item, err := svc.CreateItem(ctx, &core.Item{SKU: "CARD-9", Title: "Graded card", Cost: 50, Price: 200})
	require.NoError(t, err)

	sale, err := svc.MarkSold(ctx, item.ID, SaleInput{SalePrice: 180, ShippingCost: 5})
	require.NoError(t, err)
	require.Equal(t, "Graded card", sale.ItemTitle)
	require.Equal(t, "CARD-9", sale.ItemSKU)
	require.InDelta(t, 50.0, sale.ItemCost, 1e-9)
	// Marketplace fees default to the estimated rate when unspecified.
	require.InDelta(t, 180*core.MarketplaceFeeRate, sale.MarketplaceFees, 1e-9)

	updated, err := svc.GetItem(ctx, item.ID)
	require.NoError(t, err)
	require.Equal(t, core.StatusSold, updated.Status)
	require.Equal(t, 0, updated.Quantity)
	require.NotNil(t, updated.SoldAt)
}

func TestMarkSoldPartialQuantity(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	item, err := svc.CreateItem(ctx, &core.Item{SKU: "TEE-1", Title: "Band tee", Cost: 4, Price: 25, Quantity: 3})
	require.NoError(t, err)

	_, err = svc.MarkSold(ctx, item.ID, SaleInput{SalePrice: 25, Quantity: 2})
	require.NoError(t, err)

	updated, err := svc.GetItem(ctx, item.ID)
	require.NoError(t, err)
	require.Equal(t, 1, updated.Quantity)
	require.NotEqual(t, core.StatusSold, updated.Status)
}

func TestMarkSoldRejectsOversell(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	item, err := svc.CreateItem(ctx, &core.Item{SKU: "TEE-2", Title: "Band tee", Price: 25, Quantity: 1})
	require.NoError(t, err)

	var vErr *ValidationError
	_, err = svc.MarkSold(ctx, item.ID, SaleInput{SalePrice: 25, Quantity: 2})
	require.ErrorAs(t, err, &vErr)
	require.Equal(t, "quantity", vErr.Field)
}

func TestSummary(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	a, err := svc.CreateItem(ctx, &core.Item{SKU: "S-1", Title: "Item A", Cost: 10, Price: 30})
	require.NoError(t, err)
	_, err = svc.CreateItem(ctx, &core.Item{SKU: "S-2", Title: "Item B", Cost: 20, Price: 60})
	require.NoError(t, err)

	_, err = svc.MarkSold(ctx, a.ID, SaleInput{SalePrice: 30, MarketplaceFees: 3})
	require.NoError(t, err)

	_, err = svc.CreateExpense(ctx, &core.Expense{Title: "Tape", Category: "shipping_supplies", Amount: 7.5})
	require.NoError(t, err)

	summary, err := svc.Summary(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, summary.TotalItems)
	require.Equal(t, 1, summary.ByStatus[core.StatusSold])
	require.InDelta(t, 20.0, summary.TotalCost, 1e-9)
	require.InDelta(t, 60.0, summary.TotalValue, 1e-9)
	require.InDelta(t, 30.0-10.0-3.0, summary.RealizedProfit, 1e-9)
	require.InDelta(t, 7.5, summary.TotalExpenses, 1e-9)
}
