package domain

import (
	"time"

	expenses "aeroledger/internal/expenses/domain"
)

// monthKeyLayout formats month bucket keys.
const monthKeyLayout = "2006-01"

// MonthAmount is one month's share of an expense amount.
type MonthAmount struct {
	Month  string
	Amount float64
}

// SplitByMonths attributes an expense amount to one or more months.
// Attribution order: the linked flight's month, then the amortization
// period divided evenly, then the month of CreatedAt (or now when absent).
// The emitted amounts always sum to the original amount.
func SplitByMonths(e expenses.Expense, now time.Time) []MonthAmount {
	if e.FlightDate != nil {
		return []MonthAmount{{Month: e.FlightDate.Format(monthKeyLayout), Amount: e.Amount}}
	}

	if e.PeriodStart != nil && e.PeriodEnd != nil {
		start := *e.PeriodStart
		end := *e.PeriodEnd

		totalMonths := 1
		if !isFirstDayOfNextMonth(start, end) {
			totalMonths = (end.Year()-start.Year())*12 + int(end.Month()) - int(start.Month()) + 1
			if totalMonths < 1 {
				totalMonths = 1
			}
		}

		monthly := e.Amount / float64(totalMonths)
		first := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, time.UTC)
		split := make([]MonthAmount, 0, totalMonths)
		for i := 0; i < totalMonths; i++ {
			month := first.AddDate(0, i, 0)
			split = append(split, MonthAmount{Month: month.Format(monthKeyLayout), Amount: monthly})
		}
		return split
	}

	created := e.CreatedAt
	if created.IsZero() {
		created = now
	}
	return []MonthAmount{{Month: created.Format(monthKeyLayout), Amount: e.Amount}}
}

// isFirstDayOfNextMonth detects the single-month exclusive encoding: end is
// exactly the first day of the month after start's month. The explicit
// check keeps the December to January rollover at one month.
func isFirstDayOfNextMonth(start, end time.Time) bool {
	if end.Day() != 1 {
		return false
	}
	return end.Year()*12+int(end.Month()) == start.Year()*12+int(start.Month())+1
}
