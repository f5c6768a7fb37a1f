package domain

import (
	"math"
	"testing"
	"time"

	expenses "aeroledger/internal/expenses/domain"
)

func day(year int, month time.Month, d int) *time.Time {
	t := time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestSplitByMonths_FlightDateWins(t *testing.T) {
	e := expenses.Expense{
		Amount:      500,
		FlightDate:  day(2025, time.March, 17),
		PeriodStart: day(2025, time.January, 1),
		PeriodEnd:   day(2025, time.June, 1),
	}
	split := SplitByMonths(e, time.Now())
	if len(split) != 1 {
		t.Fatalf("expected 1 month, got %d", len(split))
	}
	if split[0].Month != "2025-03" || split[0].Amount != 500 {
		t.Fatalf("unexpected split: %+v", split[0])
	}
}

func TestSplitByMonths_SingleMonthEncoding(t *testing.T) {
	e := expenses.Expense{
		Amount:      1200,
		PeriodStart: day(2025, time.January, 1),
		PeriodEnd:   day(2025, time.February, 1),
	}
	split := SplitByMonths(e, time.Now())
	if len(split) != 1 {
		t.Fatalf("expected 1 month, got %d", len(split))
	}
	if split[0].Month != "2025-01" || split[0].Amount != 1200 {
		t.Fatalf("unexpected split: %+v", split[0])
	}
}

func TestSplitByMonths_DecemberJanuaryRollover(t *testing.T) {
	e := expenses.Expense{
		Amount:      900,
		PeriodStart: day(2025, time.December, 1),
		PeriodEnd:   day(2026, time.January, 1),
	}
	split := SplitByMonths(e, time.Now())
	if len(split) != 1 {
		t.Fatalf("expected 1 month, got %d", len(split))
	}
	if split[0].Month != "2025-12" || split[0].Amount != 900 {
		t.Fatalf("unexpected split: %+v", split[0])
	}
}

func TestSplitByMonths_MultiMonthSpan(t *testing.T) {
	e := expenses.Expense{
		Amount:      3000,
		PeriodStart: day(2025, time.January, 1),
		PeriodEnd:   day(2025, time.March, 1),
	}
	split := SplitByMonths(e, time.Now())
	// (2025-2025)*12 + (3-1) + 1 = 3 months.
	if len(split) != 3 {
		t.Fatalf("expected 3 months, got %d", len(split))
	}
	wantMonths := []string{"2025-01", "2025-02", "2025-03"}
	var sum float64
	for i, part := range split {
		if part.Month != wantMonths[i] {
			t.Fatalf("month %d: got %s, want %s", i, part.Month, wantMonths[i])
		}
		if !closeTo(part.Amount, 1000) {
			t.Fatalf("month %d: got %v, want 1000", i, part.Amount)
		}
		sum += part.Amount
	}
	if !closeTo(sum, 3000) {
		t.Fatalf("split does not conserve amount: %v", sum)
	}
}

func TestSplitByMonths_ConservationAcrossYears(t *testing.T) {
	e := expenses.Expense{
		Amount:      1000,
		PeriodStart: day(2025, time.November, 1),
		PeriodEnd:   day(2026, time.February, 1),
	}
	split := SplitByMonths(e, time.Now())
	// (2026-2025)*12 + (2-11) + 1 = 4 months spanning the year boundary.
	if len(split) != 4 {
		t.Fatalf("expected 4 months, got %d", len(split))
	}
	if split[0].Month != "2025-11" || split[3].Month != "2026-02" {
		t.Fatalf("unexpected month range: %s .. %s", split[0].Month, split[3].Month)
	}
	var sum float64
	for _, part := range split {
		sum += part.Amount
	}
	if math.Abs(sum-1000) > 1e-9 {
		t.Fatalf("split does not conserve amount: %v", sum)
	}
}

func TestSplitByMonths_CreatedAtFallback(t *testing.T) {
	e := expenses.Expense{
		Amount:    250,
		CreatedAt: time.Date(2025, time.July, 9, 12, 0, 0, 0, time.UTC),
	}
	split := SplitByMonths(e, time.Now())
	if len(split) != 1 || split[0].Month != "2025-07" || split[0].Amount != 250 {
		t.Fatalf("unexpected split: %+v", split)
	}
}

func TestSplitByMonths_NowFallbackWithoutCreatedAt(t *testing.T) {
	now := time.Date(2025, time.May, 2, 0, 0, 0, 0, time.UTC)
	split := SplitByMonths(expenses.Expense{Amount: 10}, now)
	if len(split) != 1 || split[0].Month != "2025-05" {
		t.Fatalf("unexpected split: %+v", split)
	}
}

func TestSplitByMonths_HalfOpenPeriodFallsBack(t *testing.T) {
	// Only one bound present: treated like no period at all.
	e := expenses.Expense{
		Amount:      80,
		PeriodStart: day(2025, time.January, 1),
		CreatedAt:   time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC),
	}
	split := SplitByMonths(e, time.Now())
	if len(split) != 1 || split[0].Month != "2025-04" {
		t.Fatalf("unexpected split: %+v", split)
	}
}
