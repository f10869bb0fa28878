package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shelfline/shelfline/internal/core"
)

// ExpenseFilter narrows ListExpenses results.
type ExpenseFilter struct {
	Category string
	Since    time.Time
	Until    time.Time
	Limit    int
	Offset   int
}

// CreateExpense inserts an expense record and returns its assigned ID.
func (s *Store) CreateExpense(ctx context.Context, expense *core.Expense) (int64, error) {
	if s == nil || s.DB == nil {
		return 0, errors.New("store is not initialized")
	}
	if expense == nil {
		return 0, errors.New("expense is required")
	}

	if ctx == nil {
		ctx = context.Background()
	}

	now := time.Now().UTC()
	if expense.CreatedAt.IsZero() {
		expense.CreatedAt = now
	}
	expense.UpdatedAt = now
	if expense.Date.IsZero() {
		expense.Date = now
	}

	result, err := s.DB.ExecContext(ctx, `
		INSERT INTO expenses (
			title, description, category, amount, currency,
			payment_method, vendor, expense_date,
			recurring, recurring_period, deductible, notes,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		expense.Title, nullString(expense.Description), expense.Category, expense.Amount, expense.Currency,
		nullString(expense.PaymentMethod), nullString(expense.Vendor), expense.Date.Unix(),
		boolValue(expense.Recurring), nullString(expense.RecurringPeriod), boolValue(expense.Deductible), nullString(expense.Notes),
		expense.CreatedAt.Unix(), expense.UpdatedAt.Unix(),
	)
	if err != nil {
		return 0, fmt.Errorf("store expense: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("store expense id: %w", err)
	}
	expense.ID = id
	return id, nil
}

// GetExpense returns one expense by ID, or nil when absent.
func (s *Store) GetExpense(ctx context.Context, id int64) (*core.Expense, error) {
	if s == nil || s.DB == nil {
		return nil, errors.New("store is not initialized")
	}

	if ctx == nil {
		ctx = context.Background()
	}

	row := s.DB.QueryRowContext(ctx, expenseSelect+" WHERE id = ?", id)
	expense, err := scanExpense(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("fetch expense: %w", err)
	}
	return expense, nil
}

// ListExpenses returns expenses matching the filter, most recent first.
func (s *Store) ListExpenses(ctx context.Context, filter ExpenseFilter) ([]core.Expense, error) {
	if s == nil || s.DB == nil {
		return nil, errors.New("store is not initialized")
	}

	if ctx == nil {
		ctx = context.Background()
	}

	query := expenseSelect
	var clauses []string
	var args []any

	if filter.Category != "" {
		clauses = append(clauses, "category = ?")
		args = append(args, filter.Category)
	}
	if !filter.Since.IsZero() {
		clauses = append(clauses, "expense_date >= ?")
		args = append(args, filter.Since.Unix())
	}
	if !filter.Until.IsZero() {
		clauses = append(clauses, "expense_date <= ?")
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
	query += " ORDER BY expense_date DESC, id DESC"

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
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close() // nolint:errcheck // best-effort cleanup on SQL rows

	var expenses []core.Expense
	for rows.Next() {
		expense, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("list expenses: %w", err)
		}
		expenses = append(expenses, *expense)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}

	return expenses, nil
}

// DeleteExpense removes an expense record.
func (s *Store) DeleteExpense(ctx context.Context, id int64) error {
	if s == nil || s.DB == nil {
		return errors.New("store is not initialized")
	}

	if ctx == nil {
		ctx = context.Background()
	}

	result, err := s.DB.ExecContext(ctx, `DELETE FROM expenses WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// TotalExpenses sums expense amounts, optionally bounded by a date range.
func (s *Store) TotalExpenses(ctx context.Context, since, until time.Time) (float64, error) {
	if s == nil || s.DB == nil {
		return 0, errors.New("store is not initialized")
	}

	if ctx == nil {
		ctx = context.Background()
	}

	query := `SELECT COALESCE(SUM(amount), 0) FROM expenses`
	var clauses []string
	var args []any
	if !since.IsZero() {
		clauses = append(clauses, "expense_date >= ?")
		args = append(args, since.Unix())
	}
	if !until.IsZero() {
		clauses = append(clauses, "expense_date <= ?")
		args = append(args, until.Unix())
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

	var total float64
	if err := s.DB.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("total expenses: %w", err)
	}
	return total, nil
}

const expenseSelect = `
	SELECT id, title, description, category, amount, currency,
		payment_method, vendor, expense_date,
		recurring, recurring_period, deductible, notes,
		created_at, updated_at
	FROM expenses`

func scanExpense(row rowScanner) (*core.Expense, error) {
	var (
		expense         core.Expense
		description     sql.NullString
		paymentMethod   sql.NullString
		vendor          sql.NullString
		recurringPeriod sql.NullString
		notes           sql.NullString
		recurring       int
		deductible      int
		expenseDate     int64
		createdAt       int64
		updatedAt       int64
	)

	if err := row.Scan(
		&expense.ID, &expense.Title, &description, &expense.Category, &expense.Amount, &expense.Currency,
		&paymentMethod, &vendor, &expenseDate,
		&recurring, &recurringPeriod, &deductible, &notes,
		&createdAt, &updatedAt,
	); err != nil {
		return nil, err
	}

	expense.Description = description.String
	expense.PaymentMethod = paymentMethod.String
	expense.Vendor = vendor.String
	expense.RecurringPeriod = recurringPeriod.String
	expense.Notes = notes.String
	expense.Recurring = recurring == 1
	expense.Deductible = deductible == 1
	expense.Date = time.Unix(expenseDate, 0).UTC()
	expense.CreatedAt = time.Unix(createdAt, 0).UTC()
	expense.UpdatedAt = time.Unix(updatedAt, 0).UTC()

	return &expense, nil
}

func boolValue(v bool) int {
	if v {
		return 1
	}
	return 0
}
