package inventory

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/fulmenhq/gofulmen/logging"
	"go.uber.org/zap"

	"github.com/shelfline/shelfline/internal/core"
	"github.com/shelfline/shelfline/internal/core/store"
	"github.com/shelfline/shelfline/internal/market"
	"github.com/shelfline/shelfline/internal/metrics"
)

// defaultMarketplaceID is the marketplace site offers are created against.
const defaultMarketplaceID = "EBAY_US"

// MarketClient is the subset of the marketplace client sync depends on.
type MarketClient interface {
	CreateOrReplaceItem(ctx context.Context, sku string, item *market.InventoryItem) error
	BulkCreateOrReplace(ctx context.Context, items []market.InventoryItem) (*market.BulkInventoryResponse, error)
	CreateOffer(ctx context.Context, offer *market.Offer) (*market.CreateOfferResponse, error)
	PublishOffer(ctx context.Context, offerID string) (*market.PublishResponse, error)
	ListOffers(ctx context.Context, sku string) ([]market.Offer, error)
}

// Syncer pushes ready inventory to the marketplace as live listings.
type Syncer struct {
	service *Service
	client  MarketClient
	logger  *logging.Logger
}

// NewSyncer builds a listing syncer.
func NewSyncer(service *Service, client MarketClient, logger *logging.Logger) *Syncer {
	return &Syncer{service: service, client: client, logger: logger}
}

// SyncResult is the outcome of pushing one item.
type SyncResult struct {
	ItemID    int64  `json:"item_id"`
	SKU       string `json:"sku"`
	OfferID   string `json:"offer_id,omitempty"`
	ListingID string `json:"listing_id,omitempty"`
	Error     string `json:"error,omitempty"`
}

// PushItem uploads one item to the marketplace and publishes it as a live
// listing. The item must be priced; on success its listing linkage is
// written back and its status moves to listed.
func (sy *Syncer) PushItem(ctx context.Context, itemID int64) (*SyncResult, error) {
	item, err := sy.service.GetItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item.Price <= 0 {
		return nil, &ValidationError{Field: "price", Message: "item must be priced before listing"}
	}
	if item.Status == core.StatusSold || item.Status == core.StatusArchived {
		return nil, &ValidationError{Field: "status", Message: "item is not listable"}
	}

	result := &SyncResult{ItemID: item.ID, SKU: item.SKU}

	if err := sy.client.CreateOrReplaceItem(ctx, item.SKU, toMarketItem(item)); err != nil {
		return nil, fmt.Errorf("upload item %s: %w", item.SKU, err)
	}

	offer, err := sy.client.CreateOffer(ctx, toMarketOffer(item))
	if err != nil {
		return nil, fmt.Errorf("create offer for %s: %w", item.SKU, err)
	}
	result.OfferID = offer.OfferID

	published, err := sy.client.PublishOffer(ctx, offer.OfferID)
	if err != nil {
		return nil, fmt.Errorf("publish offer for %s: %w", item.SKU, err)
	}
	result.ListingID = published.ListingID

	now := time.Now().UTC()
	item.Status = core.StatusListed
	item.ListingID = published.ListingID
	item.ListingURL = "https://www.ebay.com/itm/" + published.ListingID
	item.ListingStatus = "active"
	if item.ListedAt == nil {
		item.ListedAt = &now
	}
	if _, err := sy.service.UpdateItem(ctx, item); err != nil {
		return nil, fmt.Errorf("record listing for %s: %w", item.SKU, err)
	}

	metrics.RecordOperation("listing_push", true)
	sy.info("item listed",
		zap.String("sku", item.SKU),
		zap.String("offer_id", offer.OfferID),
		zap.String("listing_id", published.ListingID))
	return result, nil
}

// PushReady uploads every ready item in one bulk call, then creates and
// publishes an offer per uploaded item. Per-item failures do not abort the
// batch; they are reported in the results.
func (sy *Syncer) PushReady(ctx context.Context) ([]SyncResult, error) {
	items, err := sy.service.ListItems(ctx, store.ItemFilter{Status: core.StatusReady})
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}

	var uploads []market.InventoryItem
	listable := make([]*core.Item, 0, len(items))
	var results []SyncResult
	for i := range items {
		item := &items[i]
		if item.Price <= 0 {
			results = append(results, SyncResult{
				ItemID: item.ID,
				SKU:    item.SKU,
				Error:  "item must be priced before listing",
			})
			continue
		}
		uploads = append(uploads, *toMarketItem(item))
		listable = append(listable, item)
	}
	if len(uploads) == 0 {
		return results, nil
	}

	bulk, err := sy.client.BulkCreateOrReplace(ctx, uploads)
	if err != nil {
		return results, fmt.Errorf("bulk upload: %w", err)
	}

	failed := make(map[string]string)
	for _, r := range bulk.Responses {
		if r.StatusCode >= 300 {
			failed[r.SKU] = "upload rejected with status " + strconv.Itoa(r.StatusCode)
		}
	}

	for _, item := range listable {
		if msg, ok := failed[item.SKU]; ok {
			results = append(results, SyncResult{ItemID: item.ID, SKU: item.SKU, Error: msg})
			continue
		}

		result := SyncResult{ItemID: item.ID, SKU: item.SKU}

		offer, err := sy.client.CreateOffer(ctx, toMarketOffer(item))
		if err != nil {
			result.Error = err.Error()
			results = append(results, result)
			continue
		}
		result.OfferID = offer.OfferID

		published, err := sy.client.PublishOffer(ctx, offer.OfferID)
		if err != nil {
			result.Error = err.Error()
			results = append(results, result)
			continue
		}
		result.ListingID = published.ListingID

		now := time.Now().UTC()
		item.Status = core.StatusListed
		item.ListingID = published.ListingID
		item.ListingURL = "https://www.ebay.com/itm/" + published.ListingID
		item.ListingStatus = "active"
		if item.ListedAt == nil {
			item.ListedAt = &now
		}
		if _, err := sy.service.UpdateItem(ctx, item); err != nil {
			result.Error = err.Error()
		}
		results = append(results, result)
	}

	metrics.RecordOperation("listing_bulk_push", true)
	return results, nil
}

// toMarketItem converts a local item to the marketplace inventory shape.
func toMarketItem(item *core.Item) *market.InventoryItem {
	description := item.Description
	if description == "" {
		description = item.Title
	}

	title := item.Title
	if item.SuggestedTitle != "" {
		title = item.SuggestedTitle
	}

	return &market.InventoryItem{
		SKU:       item.SKU,
		Condition: marketCondition(item.Condition),
		Product: market.ProductDetails{
			Title:       title,
			Description: description,
			ImageURLs:   item.Photos,
		},
		Availability: &market.ItemAvailability{Quantity: item.Quantity},
	}
}

// toMarketOffer builds the fixed-price offer for an item.
func toMarketOffer(item *core.Item) *market.Offer {
	return &market.Offer{
		SKU:                item.SKU,
		MarketplaceID:      defaultMarketplaceID,
		Format:             "FIXED_PRICE",
		CategoryID:         item.Category,
		ListingDescription: item.Description,
		AvailableQuantity:  item.Quantity,
		PricingSummary: &market.PricingSummary{
			Price: market.Money{
				Value:    strconv.FormatFloat(item.Price, 'f', 2, 64),
				Currency: "USD",
			},
		},
	}
}

// marketCondition maps local condition grades onto marketplace condition
// enums.
func marketCondition(c core.Condition) string {
	switch c {
	case core.ConditionNew:
		return "NEW"
	case core.ConditionLikeNew:
		return "LIKE_NEW"
	case core.ConditionGood:
		return "USED_GOOD"
	case core.ConditionFair:
		return "USED_ACCEPTABLE"
	case core.ConditionPoor:
		return "FOR_PARTS_OR_NOT_WORKING"
	default:
		return "USED_GOOD"
	}
}

func (sy *Syncer) info(msg string, fields ...zap.Field) {
	if sy.logger != nil {
		sy.logger.Info(msg, fields...)
	}
}

var _ MarketClient = (*market.Client)(nil)
