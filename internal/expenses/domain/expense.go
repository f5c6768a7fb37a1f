package domain

import "time"

// Expense represents one operating expense record. PeriodStart/PeriodEnd
// bound an amortization window at month granularity; PeriodEnd is exclusive
// and points at the first day of the month after the last covered month.
type Expense struct {
	ID          string     `json:"id"`
	Type        string     `json:"type"`
	Subtype     string     `json:"subtype,omitempty"`
	Amount      float64    `json:"amount"`
	Currency    string     `json:"currency"`
	PeriodStart *time.Time `json:"period_start,omitempty"`
	PeriodEnd   *time.Time `json:"period_end,omitempty"`
	FlightID    *string    `json:"flight_id,omitempty"`
	InvoiceID   *string    `json:"invoice_id,omitempty"`
	Place       string     `json:"place,omitempty"`
	Comments    string     `json:"comments,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	// Joined for reporting: the linked flight's date and the linked
	// invoice's type display name, when present.
	FlightDate      *time.Time `json:"flight_date,omitempty"`
	InvoiceTypeName string     `json:"invoice_type_name,omitempty"`
}
