package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"aeroledger/internal/fleet/domain"
)

// FlightRepository stores flights in Postgres.
type FlightRepository struct {
	db *sql.DB
}

// NewFlightRepository constructs a repository.
func NewFlightRepository(db *sql.DB) (*FlightRepository, error) {
	if db == nil {
		return nil, errors.New("flight repository: nil db")
	}
	return &FlightRepository{db: db}, nil
}

const flightColumns = `id, flight_date, origin, destination, tail_number, notes, created_at, updated_at`

func (r *FlightRepository) List(ctx context.Context) ([]domain.Flight, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+flightColumns+` FROM flights ORDER BY flight_date DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("list flights: %w", err)
	}
	defer rows.Close()

	var flights []domain.Flight
	for rows.Next() {
		var flight domain.Flight
		if err := scanFlight(rows, &flight); err != nil {
			return nil, err
		}
		flights = append(flights, flight)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list flights: %w", err)
	}
	return flights, nil
}

func (r *FlightRepository) Get(ctx context.Context, id string) (*domain.Flight, error) {
	var flight domain.Flight
	row := r.db.QueryRowContext(ctx, `SELECT `+flightColumns+` FROM flights WHERE id = $1`, id)
	if err := scanFlight(row, &flight); err != nil {
		return nil, err
	}
	return &flight, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFlight(row rowScanner, flight *domain.Flight) error {
	err := row.Scan(
		&flight.ID, &flight.FlightDate, &flight.Origin, &flight.Destination,
		&flight.TailNumber, &flight.Notes, &flight.CreatedAt, &flight.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("scan flight: %w", err)
	}
	return nil
}

func (r *FlightRepository) Create(ctx context.Context, flight *domain.Flight) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO flights (`+flightColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		flight.ID, flight.FlightDate, flight.Origin, flight.Destination,
		flight.TailNumber, flight.Notes, flight.CreatedAt, flight.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert flight: %w", err)
	}
	return nil
}

func (r *FlightRepository) Update(ctx context.Context, flight *domain.Flight) error {
	result, err := r.db.ExecContext(ctx, `UPDATE flights
		SET flight_date = $2, origin = $3, destination = $4, tail_number = $5, notes = $6, updated_at = $7
		WHERE id = $1`,
		flight.ID, flight.FlightDate, flight.Origin, flight.Destination,
		flight.TailNumber, flight.Notes, flight.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update flight: %w", err)
	}
	return requireRow(result, domain.ErrNotFound)
}

func (r *FlightRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM flights WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete flight: %w", err)
	}
	return requireRow(result, domain.ErrNotFound)
}

func requireRow(result sql.Result, missing error) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return missing
	}
	return nil
}
