package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shelfline/shelfline/internal/core"
)

// SaleFilter narrows ListSales results.
type SaleFilter struct {
	ItemID   int64
	Platform string
	Since    time.Time
	Until    time.Time
	Limit    int
	Offset   int
}

// CreateSale inserts a sale record and returns its assigned ID.
func (s *Store) CreateSale(ctx context.Context, sale *core.Sale) (int64, error) {
	if s == nil || s.DB == nil {
		return 0, errors.New("store is not initialized")
	}
	if sale == nil {
		return 0, errors.New("sale is required")
	}

	if ctx == nil {
		ctx = context.Background()
	}

	now := time.Now().UTC()
	if sale.CreatedAt.IsZero() {
		sale.CreatedAt = now
	}
	sale.UpdatedAt = now
	if sale.SaleDate.IsZero() {
		sale.SaleDate = now
	}

	result, err := s.DB.ExecContext(ctx, `
		INSERT INTO sales (
			item_id, item_title, item_sku,
			sale_price, quantity, currency,
			item_cost, shipping_cost, marketplace_fees, payment_fees, other_fees,
			platform, platform_order_id, buyer_username, tracking_number, notes,
			sale_date, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		nullInt(sale.ItemID), sale.ItemTitle, nullString(sale.ItemSKU),
		sale.SalePrice, sale.Quantity, sale.Currency,
		sale.ItemCost, sale.ShippingCost, sale.MarketplaceFees, sale.PaymentFees, sale.OtherFees,
		sale.Platform, nullString(sale.PlatformOrderID), nullString(sale.BuyerUsername), nullString(sale.TrackingNumber), nullString(sale.Notes),
		sale.SaleDate.Unix(), sale.CreatedAt.Unix(), sale.UpdatedAt.Unix(),
	)
	if err != nil {
		return 0, fmt.Errorf("store sale: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("store sale id: %w", err)
	}
	sale.ID = id
	return id, nil
}

// GetSale returns one sale by ID, or nil when absent.
func (s *Store) GetSale(ctx context.Context, id int64) (*core.Sale, error) {
	if s == nil || s.DB == nil {
		return nil, errors.New("store is not initialized")
	}

	if ctx == nil {
		ctx = context.Background()
	}

	row := s.DB.QueryRowContext(ctx, saleSelect+" WHERE id = ?", id)
	sale, err := scanSale(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("fetch sale: %w", err)
	}
	return sale, nil
}

// ListSales returns sales matching the filter, most recent first.
func (s *Store) ListSales(ctx context.Context, filter SaleFilter) ([]core.Sale, error) {
	if s == nil || s.DB == nil {
		return nil, errors.New("store is not initialized")
	}

	if ctx == nil {
		ctx = context.Background()
	}

	query := saleSelect
	var clauses []string
	var args []any

	if filter.ItemID != 0 {
		clauses = append(clauses, "item_id = ?")
		args = append(args, filter.ItemID)
	}
	if filter.Platform != "" {
		clauses = append(clauses, "platform = ?")
		args = append(args, filter.Platform)
	}
	if !filter.Since.IsZero() {
		clauses = append(clauses, "sale_date >= ?")
		args = append(args, filter.Since.Unix())
	}
	if !filter.Until.IsZero() {
		clauses = append(clauses, "sale_date <= ?")
		args = append(args, filter.Until.Unix())
	}

	if len(clauses) > 0 {
		query += " WHERE "
		for i, clause := range clauses {
			if i > 0 {
				query += " AND "
			}
			query += clause
		}
	}
	query += " ORDER BY sale_date DESC, id DESC"

	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
		if filter.Offset > 0 {
			query += " OFFSET ?"
			args = append(args, filter.Offset)
		}
	}

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	defer rows.Close() // nolint:errcheck // best-effort cleanup on SQL rows

	var sales []core.Sale
	for rows.Next() {
		sale, err := scanSale(rows)
		if err != nil {
			return nil, fmt.Errorf("list sales: %w", err)
		}
		sales = append(sales, *sale)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}

	return sales, nil
}

// DeleteSale removes a sale record.
func (s *Store) DeleteSale(ctx context.Context, id int64) error {
	if s == nil || s.DB == nil {
		return errors.New("store is not initialized")
	}

	if ctx == nil {
		ctx = context.Background()
	}

	result, err := s.DB.ExecContext(ctx, `DELETE FROM sales WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete sale: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete sale: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// RealizedProfit sums profit across all recorded sales.
func (s *Store) RealizedProfit(ctx context.Context) (float64, error) {
	if s == nil || s.DB == nil {
		return 0, errors.New("store is not initialized")
	}

	if ctx == nil {
		ctx = context.Background()
	}

	var profit float64
	row := s.DB.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(
			sale_price * quantity
			- item_cost * quantity
			- shipping_cost - marketplace_fees - payment_fees - other_fees
		), 0)
		FROM sales
	`)
	if err := row.Scan(&profit); err != nil {
		return 0, fmt.Errorf("realized profit: %w", err)
	}
	return profit, nil
}

const saleSelect = `
	SELECT id, item_id, item_title, item_sku,
		sale_price, quantity, currency,
		item_cost, shipping_cost, marketplace_fees, payment_fees, other_fees,
		platform, platform_order_id, buyer_username, tracking_number, notes,
		sale_date, created_at, updated_at
	FROM sales`

func scanSale(row rowScanner) (*core.Sale, error) {
	var (
		sale            core.Sale
		itemID          sql.NullInt64
		itemSKU         sql.NullString
		platformOrderID sql.NullString
		buyerUsername   sql.NullString
		trackingNumber  sql.NullString
		notes           sql.NullString
		saleDate        int64
		createdAt       int64
		updatedAt       int64
	)

	if err := row.Scan(
		&sale.ID, &itemID, &sale.ItemTitle, &itemSKU,
		&sale.SalePrice, &sale.Quantity, &sale.Currency,
		&sale.ItemCost, &sale.ShippingCost, &sale.MarketplaceFees, &sale.PaymentFees, &sale.OtherFees,
		&sale.Platform, &platformOrderID, &buyerUsername, &trackingNumber, &notes,
		&saleDate, &createdAt, &updatedAt,
	); err != nil {
		return nil, err
	}

	sale.ItemID = itemID.Int64
	sale.ItemSKU = itemSKU.String
	sale.PlatformOrderID = platformOrderID.String
	sale.BuyerUsername = buyerUsername.String
	sale.TrackingNumber = trackingNumber.String
	sale.Notes = notes.String
	sale.SaleDate = time.Unix(saleDate, 0).UTC()
	sale.CreatedAt = time.Unix(createdAt, 0).UTC()
	sale.UpdatedAt = time.Unix(updatedAt, 0).UTC()

	return &sale, nil
}

func nullInt(v int64) sql.NullInt64 {
	if v == 0 {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: v, Valid: true}
}
