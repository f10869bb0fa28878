package core

import "time"

// Status tracks an item through its resale lifecycle.
type Status string

const (
	StatusDraft    Status = "draft"
	StatusReady    Status = "ready"
	StatusListed   Status = "listed"
	StatusSold     Status = "sold"
	StatusArchived Status = "archived"
)

// ValidStatus reports whether s is a known lifecycle status.
func ValidStatus(s Status) bool {
	switch s {
	case StatusDraft, StatusReady, StatusListed, StatusSold, StatusArchived:
		return true
	}
	return false
}

// Condition describes the physical state of an item.
type Condition string

const (
	ConditionNew     Condition = "new"
	ConditionLikeNew Condition = "like_new"
	ConditionGood    Condition = "good"
	ConditionFair    Condition = "fair"
	ConditionPoor    Condition = "poor"
)

// MarketplaceFeeRate is the estimated final-value fee fraction applied when
// projecting net profit. Marketplaces vary; 13% matches the default category.
const MarketplaceFeeRate = 0.13

// Item is a single unit of resale inventory.
type Item struct {
	ID           int64     `json:"id"`
	SKU          string    `json:"sku"`
	Title        string    `json:"title"`
	Category     string    `json:"category,omitempty"`
	Description  string    `json:"description,omitempty"`
	Notes        string    `json:"notes,omitempty"`
	Cost         float64   `json:"cost"`
	Price        float64   `json:"price"`
	ShippingCost float64   `json:"shipping_cost"`
	Status       Status    `json:"status"`
	Condition    Condition `json:"condition,omitempty"`
	Quantity     int       `json:"quantity"`
	Location     string    `json:"location,omitempty"`
	Photos       []string  `json:"photos,omitempty"`

	// Marketplace linkage, populated after a successful sync.
	ListingID     string `json:"listing_id,omitempty"`
	ListingURL    string `json:"listing_url,omitempty"`
	ListingStatus string `json:"listing_status,omitempty"`

	// Assistant suggestions, cached alongside the item.
	SuggestedTitle string  `json:"suggested_title,omitempty"`
	SuggestedPrice float64 `json:"suggested_price,omitempty"`
	SEOScore       float64 `json:"seo_score,omitempty"`

	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	ListedAt  *time.Time `json:"listed_at,omitempty"`
	SoldAt    *time.Time `json:"sold_at,omitempty"`
}

// Profit returns price minus cost and shipping. Zero when unpriced.
func (i *Item) Profit() float64 {
	if i == nil || i.Price == 0 {
		return 0
	}
	return i.Price - i.Cost - i.ShippingCost
}

// ProfitMargin returns the profit as a percentage of price.
func (i *Item) ProfitMargin() float64 {
	if i == nil || i.Price == 0 {
		return 0
	}
	return i.Profit() / i.Price * 100
}

// MarketplaceFees estimates final-value fees for the current price.
func (i *Item) MarketplaceFees() float64 {
	if i == nil || i.Price == 0 {
		return 0
	}
	return i.Price * MarketplaceFeeRate
}

// NetProfit returns profit after estimated marketplace fees.
func (i *Item) NetProfit() float64 {
	if i == nil {
		return 0
	}
	return i.Profit() - i.MarketplaceFees()
}

// Sale records a completed transaction. Item title and SKU are cached so the
// row stays meaningful if the item is later deleted.
type Sale struct {
	ID        int64  `json:"id"`
	ItemID    int64  `json:"item_id,omitempty"`
	ItemTitle string `json:"item_title"`
	ItemSKU   string `json:"item_sku,omitempty"`

	SalePrice float64 `json:"sale_price"`
	Quantity  int     `json:"quantity"`
	Currency  string  `json:"currency"`

	ItemCost        float64 `json:"item_cost"`
	ShippingCost    float64 `json:"shipping_cost"`
	MarketplaceFees float64 `json:"marketplace_fees"`
	PaymentFees     float64 `json:"payment_fees"`
	OtherFees       float64 `json:"other_fees"`

	Platform        string `json:"platform"`
	PlatformOrderID string `json:"platform_order_id,omitempty"`
	BuyerUsername   string `json:"buyer_username,omitempty"`
	TrackingNumber  string `json:"tracking_number,omitempty"`
	Notes           string `json:"notes,omitempty"`

	SaleDate  time.Time `json:"sale_date"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TotalRevenue returns sale price times quantity.
func (s *Sale) TotalRevenue() float64 {
	if s == nil {
		return 0
	}
	return s.SalePrice * float64(s.Quantity)
}

// TotalCosts sums item cost and all fees.
func (s *Sale) TotalCosts() float64 {
	if s == nil {
		return 0
	}
	return s.ItemCost*float64(s.Quantity) + s.ShippingCost + s.MarketplaceFees + s.PaymentFees + s.OtherFees
}

// Profit returns revenue minus all costs.
func (s *Sale) Profit() float64 {
	return s.TotalRevenue() - s.TotalCosts()
}

// ProfitMargin returns profit as a percentage of revenue.
func (s *Sale) ProfitMargin() float64 {
	revenue := s.TotalRevenue()
	if revenue == 0 {
		return 0
	}
	return s.Profit() / revenue * 100
}

// ROI returns profit as a percentage of item cost.
func (s *Sale) ROI() float64 {
	if s == nil || s.ItemCost == 0 || s.Quantity == 0 {
		return 0
	}
	return s.Profit() / (s.ItemCost * float64(s.Quantity)) * 100
}

// Expense is a business expense tracked for profit reporting.
type Expense struct {
	ID              int64     `json:"id"`
	Title           string    `json:"title"`
	Description     string    `json:"description,omitempty"`
	Category        string    `json:"category"`
	Amount          float64   `json:"amount"`
	Currency        string    `json:"currency"`
	PaymentMethod   string    `json:"payment_method,omitempty"`
	Vendor          string    `json:"vendor,omitempty"`
	Date            time.Time `json:"date"`
	Recurring       bool      `json:"recurring"`
	RecurringPeriod string    `json:"recurring_period,omitempty"`
	Deductible      bool      `json:"deductible"`
	Notes           string    `json:"notes,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// OAuthToken is a stored marketplace credential set.
type OAuthToken struct {
	Provider     string    `json:"provider"`
	AccessToken  string    `json:"-"`
	RefreshToken string    `json:"-"`
	ExpiresAt    time.Time `json:"expires_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Expired reports whether the access token has passed its expiry, with a
// small skew allowance so callers refresh before the marketplace rejects it.
func (t *OAuthToken) Expired(now time.Time) bool {
	if t == nil {
		return true
	}
	return !now.Add(30 * time.Second).Before(t.ExpiresAt)
}

// InventorySummary aggregates inventory counts and value for dashboards.
type InventorySummary struct {
	TotalItems     int            `json:"total_items"`
	ByStatus       map[Status]int `json:"by_status"`
	TotalCost      float64        `json:"total_cost"`
	TotalValue     float64        `json:"total_value"`
	RealizedProfit float64        `json:"realized_profit"`
	TotalExpenses  float64        `json:"total_expenses"`
}
