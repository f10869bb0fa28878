package market

// Wire types for the marketplace Sell Inventory API. The client does not
// interpret business fields beyond what sync needs; shapes follow the
// marketplace schema with explicit structs rather than loose maps.

// Money is an amount plus ISO currency code.
type Money struct {
	Value    string `json:"value"`
	Currency string `json:"currency"`
}

// ProductDetails describes the listable product for an inventory item.
type ProductDetails struct {
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	ImageURLs   []string `json:"imageUrls,omitempty"`
}

// ItemAvailability carries sellable quantity.
type ItemAvailability struct {
	Quantity int `json:"quantity"`
}

// InventoryItem is the marketplace representation of a stock unit, keyed by
// SKU.
type InventoryItem struct {
	SKU          string            `json:"sku,omitempty"`
	Condition    string            `json:"condition,omitempty"`
	Product      ProductDetails    `json:"product"`
	Availability *ItemAvailability `json:"availability,omitempty"`
}

// InventoryItemPage is one page of inventory items.
type InventoryItemPage struct {
	Total  int             `json:"total"`
	Limit  int             `json:"limit"`
	Offset int             `json:"offset"`
	Items  []InventoryItem `json:"inventoryItems"`
}

// PricingSummary carries the asking price for an offer.
type PricingSummary struct {
	Price Money `json:"price"`
}

// Offer links an inventory item to a live or pending listing.
type Offer struct {
	OfferID            string          `json:"offerId,omitempty"`
	SKU                string          `json:"sku"`
	MarketplaceID      string          `json:"marketplaceId,omitempty"`
	Format             string          `json:"format,omitempty"`
	CategoryID         string          `json:"categoryId,omitempty"`
	ListingDescription string          `json:"listingDescription,omitempty"`
	ListingID          string          `json:"listingId,omitempty"`
	PricingSummary     *PricingSummary `json:"pricingSummary,omitempty"`
	AvailableQuantity  int             `json:"availableQuantity,omitempty"`
}

// OfferPage is the response for an offer listing.
type OfferPage struct {
	Total  int     `json:"total"`
	Offers []Offer `json:"offers"`
}

// CreateOfferResponse is returned when an offer is created.
type CreateOfferResponse struct {
	OfferID string `json:"offerId"`
}

// PublishResponse is returned when an offer is published as a listing.
type PublishResponse struct {
	ListingID string `json:"listingId"`
}

// BulkInventoryRequest wraps a batch of item upserts.
type BulkInventoryRequest struct {
	Requests []InventoryItem `json:"requests"`
}

// BulkInventoryResult is the per-item outcome of a bulk upsert.
type BulkInventoryResult struct {
	SKU        string `json:"sku"`
	StatusCode int    `json:"statusCode"`
}

// BulkInventoryResponse is the aggregate bulk upsert response.
type BulkInventoryResponse struct {
	Responses []BulkInventoryResult `json:"responses"`
}

// apiErrorDetail is one entry in the marketplace error envelope.
type apiErrorDetail struct {
	ErrorID  int    `json:"errorId,omitempty"`
	Message  string `json:"message"`
	Category string `json:"category,omitempty"`
}

// apiErrorEnvelope is the top-level error body for non-2xx responses.
type apiErrorEnvelope struct {
	Errors []apiErrorDetail `json:"errors"`
}
