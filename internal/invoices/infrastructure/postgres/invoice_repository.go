package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"aeroledger/internal/invoices/domain"
)

// InvoiceRepository stores invoices in Postgres.
type InvoiceRepository struct {
	db *sql.DB
}

// NewInvoiceRepository constructs a repository.
func NewInvoiceRepository(db *sql.DB) (*InvoiceRepository, error) {
	if db == nil {
		return nil, errors.New("invoice repository: nil db")
	}
	return &InvoiceRepository{db: db}, nil
}

const invoiceSelect = `SELECT i.id, i.number, i.invoice_type_id, COALESCE(t.name, ''),
	i.issued_on, i.amount, i.currency, i.notes, i.created_at, i.updated_at
	FROM invoices i LEFT JOIN invoice_types t ON t.id = i.invoice_type_id`

func (r *InvoiceRepository) List(ctx context.Context) ([]domain.Invoice, error) {
	rows, err := r.db.QueryContext(ctx, invoiceSelect+` ORDER BY i.created_at DESC, i.id`)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	defer rows.Close()

	var invoices []domain.Invoice
	for rows.Next() {
		var invoice domain.Invoice
		if err := scanInvoice(rows, &invoice); err != nil {
			return nil, err
		}
		invoices = append(invoices, invoice)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	return invoices, nil
}

func (r *InvoiceRepository) Get(ctx context.Context, id string) (*domain.Invoice, error) {
	var invoice domain.Invoice
	row := r.db.QueryRowContext(ctx, invoiceSelect+` WHERE i.id = $1`, id)
	if err := scanInvoice(row, &invoice); err != nil {
		return nil, err
	}
	return &invoice, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanInvoice(row rowScanner, invoice *domain.Invoice) error {
	err := row.Scan(
		&invoice.ID, &invoice.Number, &invoice.InvoiceTypeID, &invoice.TypeName,
		&invoice.IssuedOn, &invoice.Amount, &invoice.Currency, &invoice.Notes,
		&invoice.CreatedAt, &invoice.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("scan invoice: %w", err)
	}
	return nil
}

func (r *InvoiceRepository) Create(ctx context.Context, invoice *domain.Invoice) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO invoices
		(id, number, invoice_type_id, issued_on, amount, currency, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		invoice.ID, invoice.Number, invoice.InvoiceTypeID, invoice.IssuedOn,
		invoice.Amount, invoice.Currency, invoice.Notes, invoice.CreatedAt, invoice.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert invoice: %w", err)
	}
	return nil
}

func (r *InvoiceRepository) Update(ctx context.Context, invoice *domain.Invoice) error {
	result, err := r.db.ExecContext(ctx, `UPDATE invoices
		SET number = $2, invoice_type_id = $3, issued_on = $4, amount = $5,
			currency = $6, notes = $7, updated_at = $8
		WHERE id = $1`,
		invoice.ID, invoice.Number, invoice.InvoiceTypeID, invoice.IssuedOn,
		invoice.Amount, invoice.Currency, invoice.Notes, invoice.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update invoice: %w", err)
	}
	return requireRow(result)
}

func (r *InvoiceRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM invoices WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete invoice: %w", err)
	}
	return requireRow(result)
}

func (r *InvoiceRepository) ListTypes(ctx context.Context) ([]domain.InvoiceType, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM invoice_types ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list invoice types: %w", err)
	}
	defer rows.Close()

	var types []domain.InvoiceType
	for rows.Next() {
		var invoiceType domain.InvoiceType
		if err := rows.Scan(&invoiceType.ID, &invoiceType.Name); err != nil {
			return nil, fmt.Errorf("scan invoice type: %w", err)
		}
		types = append(types, invoiceType)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list invoice types: %w", err)
	}
	return types, nil
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
