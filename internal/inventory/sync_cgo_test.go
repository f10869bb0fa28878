//go:build cgo

package inventory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/shelfline/shelfline/internal/core"
	"github.com/shelfline/shelfline/internal/market"
)

// fakeMarket records calls and returns scripted responses.
type fakeMarket struct {
	upserts    []string
	bulkItems  []market.InventoryItem
	offers     []market.Offer
	published  []string
	failBulk   map[string]int
	publishErr error
}

func (f *fakeMarket) CreateOrReplaceItem(ctx context.Context, sku string, item *market.InventoryItem) error {
	f.upserts = append(f.upserts, sku)
	return nil
}

func (f *fakeMarket) BulkCreateOrReplace(ctx context.Context, items []market.InventoryItem) (*market.BulkInventoryResponse, error) {
	f.bulkItems = append(f.bulkItems, items...)
	resp := &market.BulkInventoryResponse{}
	for _, item := range items {
		status := 200
		if code, ok := f.failBulk[item.SKU]; ok {
			status = code
		}
		resp.Responses = append(resp.Responses, market.BulkInventoryResult{SKU: item.SKU, StatusCode: status})
	}
	return resp, nil
}

func (f *fakeMarket) CreateOffer(ctx context.Context, offer *market.Offer) (*market.CreateOfferResponse, error) {
	f.offers = append(f.offers, *offer)
	return &market.CreateOfferResponse{OfferID: "offer-" + offer.SKU}, nil
}

func (f *fakeMarket) PublishOffer(ctx context.Context, offerID string) (*market.PublishResponse, error) {
	if f.publishErr != nil {
		return nil, f.publishErr
	}
	f.published = append(f.published, offerID)
	return &market.PublishResponse{ListingID: "listing-" + offerID}, nil
}

func (f *fakeMarket) ListOffers(ctx context.Context, sku string) ([]market.Offer, error) {
	return f.offers, nil
}

func TestPushItemPublishesAndLinks(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	item, err := svc.CreateItem(ctx, &core.Item{
		SKU:       "JKT-7",
		Title:     "Vintage denim jacket",
		Price:     65,
		Condition: core.ConditionGood,
		Status:    core.StatusReady,
	})
	require.NoError(t, err)

	fake := &fakeMarket{}
	syncer := NewSyncer(svc, fake, nil)

	result, err := syncer.PushItem(ctx, item.ID)
	require.NoError(t, err)
	require.Equal(t, "offer-JKT-7", result.OfferID)
	require.Equal(t, "listing-offer-JKT-7", result.ListingID)
	require.Equal(t, []string{"JKT-7"}, fake.upserts)

	require.Len(t, fake.offers, 1)
	require.Equal(t, "FIXED_PRICE", fake.offers[0].Format)
	require.Equal(t, "65.00", fake.offers[0].PricingSummary.Price.Value)
	require.Equal(t, "USED_GOOD", marketCondition(core.ConditionGood))

	updated, err := svc.GetItem(ctx, item.ID)
	require.NoError(t, err)
	require.Equal(t, core.StatusListed, updated.Status)
	require.Equal(t, "listing-offer-JKT-7", updated.ListingID)
	require.Contains(t, updated.ListingURL, "listing-offer-JKT-7")
	require.NotNil(t, updated.ListedAt)
}

func TestPushItemRequiresPrice(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	item, err := svc.CreateItem(ctx, &core.Item{SKU: "FREE-1", Title: "Unpriced", Status: core.StatusReady})
	require.NoError(t, err)

	syncer := NewSyncer(svc, &fakeMarket{}, nil)

	var vErr *ValidationError
	_, err = syncer.PushItem(ctx, item.ID)
	require.ErrorAs(t, err, &vErr)
	require.Equal(t, "price", vErr.Field)
}

func TestPushItemRejectsSoldItem(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	item, err := svc.CreateItem(ctx, &core.Item{SKU: "GONE-1", Title: "Sold thing", Price: 10})
	require.NoError(t, err)
	_, err = svc.UpdateStatus(ctx, item.ID, core.StatusSold)
	require.NoError(t, err)

	syncer := NewSyncer(svc, &fakeMarket{}, nil)
	_, err = syncer.PushItem(ctx, item.ID)
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
}

func TestPushReadySkipsUnpricedAndListsRest(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	priced, err := svc.CreateItem(ctx, &core.Item{SKU: "R-1", Title: "Priced", Price: 20, Status: core.StatusReady})
	require.NoError(t, err)
	unpriced, err := svc.CreateItem(ctx, &core.Item{SKU: "R-2", Title: "Unpriced", Status: core.StatusReady})
	require.NoError(t, err)
	_, err = svc.CreateItem(ctx, &core.Item{SKU: "R-3", Title: "Still draft", Price: 5})
	require.NoError(t, err)

	fake := &fakeMarket{}
	syncer := NewSyncer(svc, fake, nil)

	results, err := syncer.PushReady(ctx)
	require.NoError(t, err)
	require.Len(t, results, 2)

	byID := make(map[int64]SyncResult)
	for _, r := range results {
		byID[r.ItemID] = r
	}
	require.NotEmpty(t, byID[unpriced.ID].Error)
	require.Empty(t, byID[priced.ID].Error)
	require.Equal(t, "listing-offer-R-1", byID[priced.ID].ListingID)

	// Draft items are untouched.
	require.Len(t, fake.bulkItems, 1)
}
