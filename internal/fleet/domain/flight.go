package domain

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound reports a missing flight.
var ErrNotFound = errors.New("fleet: flight not found")

// Flight is one aircraft rotation that expenses attach to.
type Flight struct {
	ID          string    `json:"id"`
	FlightDate  time.Time `json:"flight_date"`
	Origin      string    `json:"origin"`
	Destination string    `json:"destination"`
	TailNumber  string    `json:"tail_number"`
	Notes       string    `json:"notes"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Repository persists flights.
type Repository interface {
	List(ctx context.Context) ([]Flight, error)
	Get(ctx context.Context, id string) (*Flight, error)
	Create(ctx context.Context, flight *Flight) error
	Update(ctx context.Context, flight *Flight) error
	Delete(ctx context.Context, id string) error
}
