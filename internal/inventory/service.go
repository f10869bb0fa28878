// Package inventory implements item, sale, and expense management on top of
// the store, plus marketplace listing sync.
package inventory

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/fulmenhq/gofulmen/logging"
	"go.uber.org/zap"

	"github.com/shelfline/shelfline/internal/core"
	"github.com/shelfline/shelfline/internal/core/store"
	"github.com/shelfline/shelfline/internal/metrics"
)

// ErrNotFound is returned when a referenced record does not exist.
var ErrNotFound = stderrors.New("record not found")

// ValidationError reports a rejected input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// Service coordinates inventory operations against the store.
type Service struct {
	store  *store.Store
	logger *logging.Logger
	clock  func() time.Time
}

// NewService builds an inventory service.
func NewService(st *store.Store, logger *logging.Logger) *Service {
	return &Service{
		store:  st,
		logger: logger,
		clock:  time.Now,
	}
}

// Store exposes the backing store, used by callers that need direct access
// such as OAuth token persistence.
func (s *Service) Store() *store.Store {
	return s.store
}

// CreateItem validates and stores a new item. Status defaults to draft and
// quantity to one.
func (s *Service) CreateItem(ctx context.Context, item *core.Item) (*core.Item, error) {
	if item == nil {
		return nil, &ValidationError{Field: "item", Message: "required"}
	}

	item.SKU = strings.TrimSpace(item.SKU)
	item.Title = strings.TrimSpace(item.Title)
	if item.SKU == "" {
		return nil, &ValidationError{Field: "sku", Message: "required"}
	}
	if item.Title == "" {
		return nil, &ValidationError{Field: "title", Message: "required"}
	}
	if item.Cost < 0 || item.Price < 0 || item.ShippingCost < 0 {
		return nil, &ValidationError{Field: "cost", Message: "amounts must not be negative"}
	}

	if item.Status == "" {
		item.Status = core.StatusDraft
	}
	if !core.ValidStatus(item.Status) {
		return nil, &ValidationError{Field: "status", Message: "unknown status " + string(item.Status)}
	}
	if item.Quantity <= 0 {
		item.Quantity = 1
	}

	existing, err := s.store.GetItemBySKU(ctx, item.SKU)
	if err != nil {
		return nil, fmt.Errorf("check sku: %w", err)
	}
	if existing != nil {
		return nil, &ValidationError{Field: "sku", Message: "already in use"}
	}

	if _, err := s.store.CreateItem(ctx, item); err != nil {
		return nil, err
	}

	metrics.RecordOperation("item_create", true)
	s.info("item created", zap.Int64("id", item.ID), zap.String("sku", item.SKU))
	return item, nil
}

// GetItem returns an item by ID.
func (s *Service) GetItem(ctx context.Context, id int64) (*core.Item, error) {
	item, err := s.store.GetItem(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, ErrNotFound
	}
	return item, nil
}

// GetItemBySKU returns an item by SKU.
func (s *Service) GetItemBySKU(ctx context.Context, sku string) (*core.Item, error) {
	item, err := s.store.GetItemBySKU(ctx, sku)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, ErrNotFound
	}
	return item, nil
}

// ListItems returns items matching the filter.
func (s *Service) ListItems(ctx context.Context, filter store.ItemFilter) ([]core.Item, error) {
	if filter.Status != "" && !core.ValidStatus(filter.Status) {
		return nil, &ValidationError{Field: "status", Message: "unknown status " + string(filter.Status)}
	}
	return s.store.ListItems(ctx, filter)
}

// UpdateItem validates and persists changes to an existing item.
func (s *Service) UpdateItem(ctx context.Context, item *core.Item) (*core.Item, error) {
	if item == nil || item.ID == 0 {
		return nil, &ValidationError{Field: "id", Message: "required"}
	}
	if !core.ValidStatus(item.Status) {
		return nil, &ValidationError{Field: "status", Message: "unknown status " + string(item.Status)}
	}

	if err := s.store.UpdateItem(ctx, item); err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	metrics.RecordOperation("item_update", true)
	return item, nil
}

// UpdateStatus transitions an item to a new lifecycle status, stamping
// listed_at and sold_at on the matching transitions.
func (s *Service) UpdateStatus(ctx context.Context, id int64, status core.Status) (*core.Item, error) {
	if !core.ValidStatus(status) {
		return nil, &ValidationError{Field: "status", Message: "unknown status " + string(status)}
	}

	item, err := s.GetItem(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.clock().UTC()
	item.Status = status
	switch status {
	case core.StatusListed:
		if item.ListedAt == nil {
			item.ListedAt = &now
		}
	case core.StatusSold:
		if item.SoldAt == nil {
			item.SoldAt = &now
		}
	}

	if err := s.store.UpdateItem(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// DeleteItem removes an item.
func (s *Service) DeleteItem(ctx context.Context, id int64) error {
	if err := s.store.DeleteItem(ctx, id); err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	metrics.RecordOperation("item_delete", true)
	return nil
}

// SaleInput captures the transaction details when an item sells.
type SaleInput struct {
	SalePrice       float64
	Quantity        int
	ShippingCost    float64
	MarketplaceFees float64
	PaymentFees     float64
	OtherFees       float64
	Platform        string
	PlatformOrderID string
	BuyerUsername   string
	Notes           string
	SaleDate        time.Time
}

// MarkSold records a sale for an item, moves the item to sold, and returns
// the sale row. Item cost, title, and SKU are captured on the sale so it
// survives item deletion.
func (s *Service) MarkSold(ctx context.Context, itemID int64, input SaleInput) (*core.Sale, error) {
	if input.SalePrice < 0 {
		return nil, &ValidationError{Field: "sale_price", Message: "must not be negative"}
	}

	item, err := s.GetItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item.Status == core.StatusSold {
		return nil, &ValidationError{Field: "status", Message: "item is already sold"}
	}

	quantity := input.Quantity
	if quantity <= 0 {
		quantity = 1
	}
	if quantity > item.Quantity {
		return nil, &ValidationError{Field: "quantity", Message: "exceeds stock on hand"}
	}

	platform := strings.TrimSpace(input.Platform)
	if platform == "" {
		platform = "ebay"
	}

	saleDate := input.SaleDate
	if saleDate.IsZero() {
		saleDate = s.clock().UTC()
	}

	fees := input.MarketplaceFees
	if fees == 0 {
		fees = input.SalePrice * float64(quantity) * core.MarketplaceFeeRate
	}

	sale := &core.Sale{
		ItemID:          item.ID,
		ItemTitle:       item.Title,
		ItemSKU:         item.SKU,
		SalePrice:       input.SalePrice,
		Quantity:        quantity,
		Currency:        "USD",
		ItemCost:        item.Cost,
		ShippingCost:    input.ShippingCost,
		MarketplaceFees: fees,
		PaymentFees:     input.PaymentFees,
		OtherFees:       input.OtherFees,
		Platform:        platform,
		PlatformOrderID: input.PlatformOrderID,
		BuyerUsername:   input.BuyerUsername,
		Notes:           input.Notes,
		SaleDate:        saleDate,
	}

	if _, err := s.store.CreateSale(ctx, sale); err != nil {
		return nil, err
	}

	item.Quantity -= quantity
	if item.Quantity <= 0 {
		item.Status = core.StatusSold
		soldAt := saleDate
		item.SoldAt = &soldAt
	}
	if err := s.store.UpdateItem(ctx, item); err != nil {
		return nil, err
	}

	metrics.RecordOperation("item_sold", true)
	s.info("sale recorded",
		zap.Int64("item_id", item.ID),
		zap.String("sku", item.SKU),
		zap.Float64("sale_price", input.SalePrice),
		zap.Float64("profit", sale.Profit()))
	return sale, nil
}

// ListSales returns sales matching the filter.
func (s *Service) ListSales(ctx context.Context, filter store.SaleFilter) ([]core.Sale, error) {
	return s.store.ListSales(ctx, filter)
}

// DeleteSale removes a sale record.
func (s *Service) DeleteSale(ctx context.Context, id int64) error {
	if err := s.store.DeleteSale(ctx, id); err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// CreateExpense validates and stores an expense.
func (s *Service) CreateExpense(ctx context.Context, expense *core.Expense) (*core.Expense, error) {
	if expense == nil {
		return nil, &ValidationError{Field: "expense", Message: "required"}
	}
	expense.Title = strings.TrimSpace(expense.Title)
	if expense.Title == "" {
		return nil, &ValidationError{Field: "title", Message: "required"}
	}
	if expense.Amount <= 0 {
		return nil, &ValidationError{Field: "amount", Message: "must be positive"}
	}
	if expense.Category == "" {
		expense.Category = "other"
	}
	if expense.Currency == "" {
		expense.Currency = "USD"
	}

	if _, err := s.store.CreateExpense(ctx, expense); err != nil {
		return nil, err
	}
	metrics.RecordOperation("expense_create", true)
	return expense, nil
}

// ListExpenses returns expenses matching the filter.
func (s *Service) ListExpenses(ctx context.Context, filter store.ExpenseFilter) ([]core.Expense, error) {
	return s.store.ListExpenses(ctx, filter)
}

// DeleteExpense removes an expense record.
func (s *Service) DeleteExpense(ctx context.Context, id int64) error {
	if err := s.store.DeleteExpense(ctx, id); err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// Summary aggregates inventory counts, cost basis, asking value, realized
// profit, and total expenses.
func (s *Service) Summary(ctx context.Context) (*core.InventorySummary, error) {
	counts, err := s.store.CountItemsByStatus(ctx)
	if err != nil {
		return nil, err
	}

	cost, value, err := s.store.InventoryTotals(ctx)
	if err != nil {
		return nil, err
	}

	profit, err := s.store.RealizedProfit(ctx)
	if err != nil {
		return nil, err
	}

	expenses, err := s.store.TotalExpenses(ctx, time.Time{}, time.Time{})
	if err != nil {
		return nil, err
	}

	total := 0
	for _, n := range counts {
		total += n
	}

	return &core.InventorySummary{
		TotalItems:     total,
		ByStatus:       counts,
		TotalCost:      cost,
		TotalValue:     value,
		RealizedProfit: profit,
		TotalExpenses:  expenses,
	}, nil
}

func (s *Service) info(msg string, fields ...zap.Field) {
	if s.logger != nil {
		s.logger.Info(msg, fields...)
	}
}
