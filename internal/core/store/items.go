package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shelfline/shelfline/internal/core"
)

// ItemFilter narrows ListItems results. Zero values mean no restriction.
type ItemFilter struct {
	Status   core.Status
	Category string
	Search   string
	Limit    int
	Offset   int
}

// CreateItem inserts a new inventory item and returns its assigned ID.
func (s *Store) CreateItem(ctx context.Context, item *core.Item) (int64, error) {
	if s == nil || s.DB == nil {
		return 0, errors.New("store is not initialized")
	}
	if item == nil {
		return 0, errors.New("item is required")
	}

	if ctx == nil {
		ctx = context.Background()
	}

	photos, err := encodePhotos(item.Photos)
	if err != nil {
		return 0, err
	}

	now := time.Now().UTC()
	if item.CreatedAt.IsZero() {
		item.CreatedAt = now
	}
	item.UpdatedAt = now

	result, err := s.DB.ExecContext(ctx, `
		INSERT INTO items (
			sku, title, category, description, notes,
			cost, price, shipping_cost, status, condition, quantity, location, photos,
			listing_id, listing_url, listing_status,
			suggested_title, suggested_price, seo_score,
			created_at, updated_at, listed_at, sold_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		item.SKU, item.Title, nullString(item.Category), nullString(item.Description), nullString(item.Notes),
		item.Cost, item.Price, item.ShippingCost, string(item.Status), nullString(string(item.Condition)), item.Quantity, nullString(item.Location), photos,
		nullString(item.ListingID), nullString(item.ListingURL), nullString(item.ListingStatus),
		nullString(item.SuggestedTitle), nullFloat(item.SuggestedPrice), nullFloat(item.SEOScore),
		item.CreatedAt.Unix(), item.UpdatedAt.Unix(), nullTime(item.ListedAt), nullTime(item.SoldAt),
	)
	if err != nil {
		return 0, fmt.Errorf("store item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("store item id: %w", err)
	}
	item.ID = id
	return id, nil
}

// UpdateItem rewrites an existing item row.
func (s *Store) UpdateItem(ctx context.Context, item *core.Item) error {
	if s == nil || s.DB == nil {
		return errors.New("store is not initialized")
	}
	if item == nil || item.ID == 0 {
		return errors.New("item id is required")
	}

	if ctx == nil {
		ctx = context.Background()
	}

	photos, err := encodePhotos(item.Photos)
	if err != nil {
		return err
	}

	item.UpdatedAt = time.Now().UTC()

	result, err := s.DB.ExecContext(ctx, `
		UPDATE items SET
			sku = ?, title = ?, category = ?, description = ?, notes = ?,
			cost = ?, price = ?, shipping_cost = ?, status = ?, condition = ?, quantity = ?, location = ?, photos = ?,
			listing_id = ?, listing_url = ?, listing_status = ?,
			suggested_title = ?, suggested_price = ?, seo_score = ?,
			updated_at = ?, listed_at = ?, sold_at = ?
		WHERE id = ?
	`,
		item.SKU, item.Title, nullString(item.Category), nullString(item.Description), nullString(item.Notes),
		item.Cost, item.Price, item.ShippingCost, string(item.Status), nullString(string(item.Condition)), item.Quantity, nullString(item.Location), photos,
		nullString(item.ListingID), nullString(item.ListingURL), nullString(item.ListingStatus),
		nullString(item.SuggestedTitle), nullFloat(item.SuggestedPrice), nullFloat(item.SEOScore),
		item.UpdatedAt.Unix(), nullTime(item.ListedAt), nullTime(item.SoldAt),
		item.ID,
	)
	if err != nil {
		return fmt.Errorf("update item: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update item: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// GetItem returns one item by ID, or nil when absent.
func (s *Store) GetItem(ctx context.Context, id int64) (*core.Item, error) {
	return s.getItemWhere(ctx, "id = ?", id)
}

// GetItemBySKU returns one item by SKU, or nil when absent.
func (s *Store) GetItemBySKU(ctx context.Context, sku string) (*core.Item, error) {
	sku = strings.TrimSpace(sku)
	if sku == "" {
		return nil, errors.New("sku is required")
	}
	return s.getItemWhere(ctx, "sku = ?", sku)
}

func (s *Store) getItemWhere(ctx context.Context, clause string, arg any) (*core.Item, error) {
	if s == nil || s.DB == nil {
		return nil, errors.New("store is not initialized")
	}

	if ctx == nil {
		ctx = context.Background()
	}

	row := s.DB.QueryRowContext(ctx, itemSelect+" WHERE "+clause, arg)
	item, err := scanItem(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("fetch item: %w", err)
	}
	return item, nil
}

// ListItems returns items matching the filter, newest first.
func (s *Store) ListItems(ctx context.Context, filter ItemFilter) ([]core.Item, error) {
	if s == nil || s.DB == nil {
		return nil, errors.New("store is not initialized")
	}

	if ctx == nil {
		ctx = context.Background()
	}

	query := itemSelect
	var clauses []string
	var args []any

	if filter.Status != "" {
		clauses = append(clauses, "status = ?")
		args = append(args, string(filter.Status))
	}
	if filter.Category != "" {
		clauses = append(clauses, "category = ?")
		args = append(args, filter.Category)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		clauses = append(clauses, "(title LIKE ? OR sku LIKE ?)")
		pattern := "%" + search + "%"
		args = append(args, pattern, pattern)
	}

	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY created_at DESC, id DESC"

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
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close() // nolint:errcheck // best-effort cleanup on SQL rows

	var items []core.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("list items: %w", err)
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}

	return items, nil
}

// DeleteItem removes an item row. Sales referencing it keep their cached
// title and SKU.
func (s *Store) DeleteItem(ctx context.Context, id int64) error {
	if s == nil || s.DB == nil {
		return errors.New("store is not initialized")
	}

	if ctx == nil {
		ctx = context.Background()
	}

	result, err := s.DB.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// CountItemsByStatus returns row counts keyed by lifecycle status.
func (s *Store) CountItemsByStatus(ctx context.Context) (map[core.Status]int, error) {
	if s == nil || s.DB == nil {
		return nil, errors.New("store is not initialized")
	}

	if ctx == nil {
		ctx = context.Background()
	}

	rows, err := s.DB.QueryContext(ctx, `SELECT status, COUNT(*) FROM items GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("count items: %w", err)
	}
	defer rows.Close() // nolint:errcheck // best-effort cleanup on SQL rows

	counts := make(map[core.Status]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("count items: %w", err)
		}
		counts[core.Status(status)] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("count items: %w", err)
	}

	return counts, nil
}

// InventoryTotals returns summed cost and asking value across unsold stock.
func (s *Store) InventoryTotals(ctx context.Context) (cost, value float64, err error) {
	if s == nil || s.DB == nil {
		return 0, 0, errors.New("store is not initialized")
	}

	if ctx == nil {
		ctx = context.Background()
	}

	row := s.DB.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(cost * quantity), 0), COALESCE(SUM(price * quantity), 0)
		FROM items
		WHERE status NOT IN ('sold', 'archived')
	`)
	if err := row.Scan(&cost, &value); err != nil {
		return 0, 0, fmt.Errorf("inventory totals: %w", err)
	}
	return cost, value, nil
}

const itemSelect = `
	SELECT id, sku, title, category, description, notes,
		cost, price, shipping_cost, status, condition, quantity, location, photos,
		listing_id, listing_url, listing_status,
		suggested_title, suggested_price, seo_score,
		created_at, updated_at, listed_at, sold_at
	FROM items`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (*core.Item, error) {
	var (
		item           core.Item
		category       sql.NullString
		description    sql.NullString
		notes          sql.NullString
		condition      sql.NullString
		location       sql.NullString
		photos         sql.NullString
		listingID      sql.NullString
		listingURL     sql.NullString
		listingStatus  sql.NullString
		suggestedTitle sql.NullString
		suggestedPrice sql.NullFloat64
		seoScore       sql.NullFloat64
		createdAt      int64
		updatedAt      int64
		listedAt       sql.NullInt64
		soldAt         sql.NullInt64
		status         string
	)

	if err := row.Scan(
		&item.ID, &item.SKU, &item.Title, &category, &description, &notes,
		&item.Cost, &item.Price, &item.ShippingCost, &status, &condition, &item.Quantity, &location, &photos,
		&listingID, &listingURL, &listingStatus,
		&suggestedTitle, &suggestedPrice, &seoScore,
		&createdAt, &updatedAt, &listedAt, &soldAt,
	); err != nil {
		return nil, err
	}

	item.Status = core.Status(status)
	item.Category = category.String
	item.Description = description.String
	item.Notes = notes.String
	item.Condition = core.Condition(condition.String)
	item.Location = location.String
	item.ListingID = listingID.String
	item.ListingURL = listingURL.String
	item.ListingStatus = listingStatus.String
	item.SuggestedTitle = suggestedTitle.String
	item.SuggestedPrice = suggestedPrice.Float64
	item.SEOScore = seoScore.Float64
	item.CreatedAt = time.Unix(createdAt, 0).UTC()
	item.UpdatedAt = time.Unix(updatedAt, 0).UTC()
	if listedAt.Valid {
		t := time.Unix(listedAt.Int64, 0).UTC()
		item.ListedAt = &t
	}
	if soldAt.Valid {
		t := time.Unix(soldAt.Int64, 0).UTC()
		item.SoldAt = &t
	}

	if photos.Valid && photos.String != "" {
		if err := json.Unmarshal([]byte(photos.String), &item.Photos); err != nil {
			return nil, fmt.Errorf("decode item photos: %w", err)
		}
	}

	return &item, nil
}

func encodePhotos(photos []string) (sql.NullString, error) {
	if len(photos) == 0 {
		return sql.NullString{}, nil
	}
	payload, err := json.Marshal(photos)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("encode item photos: %w", err)
	}
	return sql.NullString{String: string(payload), Valid: true}, nil
}

func nullString(v string) sql.NullString {
	v = strings.TrimSpace(v)
	if v == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: v, Valid: true}
}

func nullFloat(v float64) sql.NullFloat64 {
	if v == 0 {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: v, Valid: true}
}

func nullTime(t *time.Time) sql.NullInt64 {
	if t == nil || t.IsZero() {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.Unix(), Valid: true}
}
