package integration_test

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"testing"
	"time"

	expenses "aeroledger/internal/expenses/domain"
	expensespg "aeroledger/internal/expenses/infrastructure/postgres"
	fleet "aeroledger/internal/fleet/domain"
	fleetpg "aeroledger/internal/fleet/infrastructure/postgres"
	invoices "aeroledger/internal/invoices/domain"
	invoicespg "aeroledger/internal/invoices/infrastructure/postgres"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func TestExpenseRepository_Postgres(t *testing.T) {
	dsn := os.Getenv("PG_DSN")
	if dsn == "" {
		t.Skip("PG_DSN not set")
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()

	if !tableExists(db, "expenses") {
		t.Skip("expenses missing; run migrations")
	}

	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)

	_, _ = db.ExecContext(ctx, "DELETE FROM expenses WHERE id LIKE 'it-%'")
	_, _ = db.ExecContext(ctx, "DELETE FROM invoices WHERE id LIKE 'it-%'")
	_, _ = db.ExecContext(ctx, "DELETE FROM flights WHERE id LIKE 'it-%'")

	flightRepo, err := fleetpg.NewFlightRepository(db)
	if err != nil {
		t.Fatalf("flight repo: %v", err)
	}
	invoiceRepo, err := invoicespg.NewInvoiceRepository(db)
	if err != nil {
		t.Fatalf("invoice repo: %v", err)
	}
	repo, err := expensespg.NewExpenseRepository(db)
	if err != nil {
		t.Fatalf("expense repo: %v", err)
	}

	flightDate := time.Date(2025, time.March, 12, 0, 0, 0, 0, time.UTC)
	flight := &fleet.Flight{
		ID:         "it-flight-1",
		FlightDate: flightDate,
		Origin:     "OMDB",
		TailNumber: "A6-ITG",
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := flightRepo.Create(ctx, flight); err != nil {
		t.Fatalf("create flight: %v", err)
	}

	creditNoteType := "invtype-credit-note"
	invoice := &invoices.Invoice{
		ID:            "it-invoice-1",
		Number:        "IT-0001",
		InvoiceTypeID: &creditNoteType,
		Amount:        500,
		Currency:      "USD",
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := invoiceRepo.Create(ctx, invoice); err != nil {
		t.Fatalf("create invoice: %v", err)
	}

	flightID := flight.ID
	invoiceID := invoice.ID
	expense := &expenses.Expense{
		ID:        "it-expense-1",
		Type:      "Fuel",
		Amount:    1200,
		Currency:  "USD",
		FlightID:  &flightID,
		InvoiceID: &invoiceID,
		Place:     "OMDB",
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := repo.Create(ctx, expense); err != nil {
		t.Fatalf("create expense: %v", err)
	}

	got, err := repo.Get(ctx, expense.ID)
	if err != nil {
		t.Fatalf("get expense: %v", err)
	}
	if got.Type != "Fuel" || got.Amount != 1200 {
		t.Fatalf("got = %+v", got)
	}
	if got.FlightDate == nil || !got.FlightDate.Equal(flightDate) {
		t.Fatalf("flight_date not joined: %v", got.FlightDate)
	}
	if got.InvoiceTypeName != "Credit note" {
		t.Fatalf("invoice type name = %q, want Credit note", got.InvoiceTypeName)
	}

	got.Amount = 1500
	got.UpdatedAt = time.Now().UTC()
	if err := repo.Update(ctx, got); err != nil {
		t.Fatalf("update expense: %v", err)
	}
	updated, err := repo.Get(ctx, expense.ID)
	if err != nil {
		t.Fatalf("get updated: %v", err)
	}
	if updated.Amount != 1500 {
		t.Fatalf("amount = %v, want 1500", updated.Amount)
	}

	snapshot, err := repo.ListForReport(ctx)
	if err != nil {
		t.Fatalf("list for report: %v", err)
	}
	found := false
	for _, row := range snapshot {
		if row.ID == expense.ID {
			found = true
			if row.InvoiceTypeName != "Credit note" {
				t.Fatalf("snapshot type name = %q", row.InvoiceTypeName)
			}
		}
	}
	if !found {
		t.Fatalf("expense missing from report snapshot")
	}

	if err := repo.Delete(ctx, expense.ID); err != nil {
		t.Fatalf("delete expense: %v", err)
	}
	if _, err := repo.Get(ctx, expense.ID); !errors.Is(err, expenses.ErrNotFound) {
		t.Fatalf("get after delete: %v", err)
	}
}

func tableExists(db *sql.DB, name string) bool {
	var exists bool
	err := db.QueryRow("SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name = $1)", name).Scan(&exists)
	return err == nil && exists
}
