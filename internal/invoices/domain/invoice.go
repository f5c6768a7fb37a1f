package domain

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound reports a missing invoice.
var ErrNotFound = errors.New("invoices: invoice not found")

// InvoiceType is a seeded lookup value. The report keys income rows off the
// type name, so names are data, not presentation.
type InvoiceType struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Invoice is a billing document expenses can reference.
type Invoice struct {
	ID            string     `json:"id"`
	Number        string     `json:"number"`
	InvoiceTypeID *string    `json:"invoice_type_id,omitempty"`
	TypeName      string     `json:"type_name,omitempty"`
	IssuedOn      *time.Time `json:"issued_on,omitempty"`
	Amount        float64    `json:"amount"`
	Currency      string     `json:"currency"`
	Notes         string     `json:"notes"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// Repository persists invoices and exposes the type lookup.
type Repository interface {
	List(ctx context.Context) ([]Invoice, error)
	Get(ctx context.Context, id string) (*Invoice, error)
	Create(ctx context.Context, invoice *Invoice) error
	Update(ctx context.Context, invoice *Invoice) error
	Delete(ctx context.Context, id string) error
	ListTypes(ctx context.Context) ([]InvoiceType, error)
}
