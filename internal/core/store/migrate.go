package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS items (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		sku TEXT NOT NULL UNIQUE,
		title TEXT NOT NULL,
		category TEXT,
		description TEXT,
		notes TEXT,
		cost REAL NOT NULL DEFAULT 0,
		price REAL NOT NULL DEFAULT 0,
		shipping_cost REAL NOT NULL DEFAULT 0,
		status TEXT NOT NULL DEFAULT 'draft',
		condition TEXT,
		quantity INTEGER NOT NULL DEFAULT 1,
		location TEXT,
		photos TEXT,
		listing_id TEXT,
		listing_url TEXT,
		listing_status TEXT,
		suggested_title TEXT,
		suggested_price REAL,
		seo_score REAL,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL,
		listed_at INTEGER,
		sold_at INTEGER
	);`,
	`CREATE INDEX IF NOT EXISTS idx_items_status ON items(status);`,
	`CREATE INDEX IF NOT EXISTS idx_items_category ON items(category);`,
	`CREATE TABLE IF NOT EXISTS sales (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		item_id INTEGER,
		item_title TEXT NOT NULL,
		item_sku TEXT,
		sale_price REAL NOT NULL,
		quantity INTEGER NOT NULL DEFAULT 1,
		currency TEXT NOT NULL DEFAULT 'USD',
		item_cost REAL NOT NULL DEFAULT 0,
		shipping_cost REAL NOT NULL DEFAULT 0,
		marketplace_fees REAL NOT NULL DEFAULT 0,
		payment_fees REAL NOT NULL DEFAULT 0,
		other_fees REAL NOT NULL DEFAULT 0,
		platform TEXT NOT NULL DEFAULT 'ebay',
		platform_order_id TEXT,
		buyer_username TEXT,
		tracking_number TEXT,
		notes TEXT,
		sale_date INTEGER NOT NULL,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);`,
	`CREATE INDEX IF NOT EXISTS idx_sales_item ON sales(item_id);`,
	`CREATE INDEX IF NOT EXISTS idx_sales_date ON sales(sale_date);`,
	`CREATE TABLE IF NOT EXISTS expenses (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT NOT NULL,
		description TEXT,
		category TEXT NOT NULL,
		amount REAL NOT NULL,
		currency TEXT NOT NULL DEFAULT 'USD',
		payment_method TEXT,
		vendor TEXT,
		expense_date INTEGER NOT NULL,
		recurring INTEGER NOT NULL DEFAULT 0,
		recurring_period TEXT,
		deductible INTEGER NOT NULL DEFAULT 0,
		notes TEXT,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);`,
	`CREATE INDEX IF NOT EXISTS idx_expenses_date ON expenses(expense_date);`,
	`CREATE INDEX IF NOT EXISTS idx_expenses_category ON expenses(category);`,
	`CREATE TABLE IF NOT EXISTS oauth_tokens (
		provider TEXT PRIMARY KEY,
		access_token TEXT NOT NULL,
		refresh_token TEXT,
		expires_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);`,
}

// Migrate ensures the required database tables exist.
func (s *Store) Migrate(ctx context.Context) error {
	if s == nil || s.DB == nil {
		return errors.New("store is not initialized")
	}

	if ctx == nil {
		ctx = context.Background()
	}

	for _, stmt := range schemaStatements {
		if _, err := s.DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("store migration failed: %w", err)
		}
	}

	if err := s.ensureColumn(ctx, "items", "seo_score", "REAL"); err != nil {
		return err
	}

	return nil
}

func (s *Store) ensureColumn(ctx context.Context, table, column, columnDef string) error {
	rows, err := s.DB.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return fmt.Errorf("inspect %s schema: %w", table, err)
	}
	defer rows.Close() // nolint:errcheck // best-effort cleanup on SQL rows

	for rows.Next() {
		var (
			cid     int
			name    string
			colType string
			notNull int
			dflt    sql.NullString
			pk      int
		)
		if err := rows.Scan(&cid, &name, &colType, &notNull, &dflt, &pk); err != nil {
			return fmt.Errorf("inspect %s columns: %w", table, err)
		}
		if name == column {
			return nil
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("inspect %s columns: %w", table, err)
	}

	if _, err := s.DB.ExecContext(ctx, fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", table, column, columnDef)); err != nil {
		return fmt.Errorf("add %s.%s column: %w", table, column, err)
	}

	return nil
}
