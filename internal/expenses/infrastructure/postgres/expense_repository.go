package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"aeroledger/internal/expenses/domain"
)

// ExpenseRepository stores expenses in Postgres.
type ExpenseRepository struct {
	db *sql.DB
}

// NewExpenseRepository constructs a repository.
func NewExpenseRepository(db *sql.DB) (*ExpenseRepository, error) {
	if db == nil {
		return nil, errors.New("expense repository: nil db")
	}
	return &ExpenseRepository{db: db}, nil
}

const expenseSelect = `SELECT e.id, e.expense_type, e.subtype, e.amount, e.currency,
	e.period_start, e.period_end, e.flight_id, e.invoice_id, e.place, e.comments,
	e.created_at, e.updated_at, f.flight_date, COALESCE(t.name, '')
	FROM expenses e
	LEFT JOIN flights f ON f.id = e.flight_id
	LEFT JOIN invoices i ON i.id = e.invoice_id
	LEFT JOIN invoice_types t ON t.id = i.invoice_type_id`

func (r *ExpenseRepository) List(ctx context.Context) ([]domain.Expense, error) {
	return r.query(ctx, expenseSelect+` ORDER BY e.created_at DESC, e.id`)
}

// ListForReport fetches the full joined snapshot the report aggregates.
func (r *ExpenseRepository) ListForReport(ctx context.Context) ([]domain.Expense, error) {
	return r.query(ctx, expenseSelect+` ORDER BY e.id`)
}

func (r *ExpenseRepository) query(ctx context.Context, query string, args ...any) ([]domain.Expense, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []domain.Expense
	for rows.Next() {
		var expense domain.Expense
		if err := scanExpense(rows, &expense); err != nil {
			return nil, err
		}
		expenses = append(expenses, expense)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	return expenses, nil
}

func (r *ExpenseRepository) Get(ctx context.Context, id string) (*domain.Expense, error) {
	var expense domain.Expense
	row := r.db.QueryRowContext(ctx, expenseSelect+` WHERE e.id = $1`, id)
	if err := scanExpense(row, &expense); err != nil {
		return nil, err
	}
	return &expense, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanExpense(row rowScanner, expense *domain.Expense) error {
	err := row.Scan(
		&expense.ID, &expense.Type, &expense.Subtype, &expense.Amount, &expense.Currency,
		&expense.PeriodStart, &expense.PeriodEnd, &expense.FlightID, &expense.InvoiceID,
		&expense.Place, &expense.Comments, &expense.CreatedAt, &expense.UpdatedAt,
		&expense.FlightDate, &expense.InvoiceTypeName,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("scan expense: %w", err)
	}
	return nil
}

func (r *ExpenseRepository) Create(ctx context.Context, expense *domain.Expense) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO expenses
		(id, expense_type, subtype, amount, currency, period_start, period_end,
		 flight_id, invoice_id, place, comments, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		expense.ID, expense.Type, expense.Subtype, expense.Amount, expense.Currency,
		expense.PeriodStart, expense.PeriodEnd, expense.FlightID, expense.InvoiceID,
		expense.Place, expense.Comments, expense.CreatedAt, expense.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert expense: %w", err)
	}
	return nil
}

func (r *ExpenseRepository) Update(ctx context.Context, expense *domain.Expense) error {
	result, err := r.db.ExecContext(ctx, `UPDATE expenses
		SET expense_type = $2, subtype = $3, amount = $4, currency = $5,
			period_start = $6, period_end = $7, flight_id = $8, invoice_id = $9,
			place = $10, comments = $11, updated_at = $12
		WHERE id = $1`,
		expense.ID, expense.Type, expense.Subtype, expense.Amount, expense.Currency,
		expense.PeriodStart, expense.PeriodEnd, expense.FlightID, expense.InvoiceID,
		expense.Place, expense.Comments, expense.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update expense: %w", err)
	}
	return requireRow(result)
}

func (r *ExpenseRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM expenses WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	return requireRow(result)
}

func requireRow(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
