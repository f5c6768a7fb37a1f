package domain

import (
	"time"

	expenses "aeroledger/internal/expenses/domain"
)

// DefaultATSCutoff excludes expenses amortized before this date from the
// ATS report variant.
var DefaultATSCutoff = time.Date(2025, time.October, 1, 0, 0, 0, 0, time.UTC)

// FilterForATS drops expenses whose amortization period starts before the
// cutoff, and transitively drops every Disbursement fee expense related to
// a dropped one. Expenses without a period start are never excluded by the
// cutoff rule.
func FilterForATS(list []expenses.Expense, cutoff time.Time) []expenses.Expense {
	if cutoff.IsZero() {
		cutoff = DefaultATSCutoff
	}

	excluded := make(map[string]struct{})
	var excludedByCutoff []expenses.Expense
	for _, e := range list {
		if e.PeriodStart != nil && e.PeriodStart.Before(cutoff) {
			excluded[e.ID] = struct{}{}
			excludedByCutoff = append(excludedByCutoff, e)
		}
	}

	// Disbursement fees ride along with the expense they were charged for;
	// relatedness is matching invoice, flight, period and place, where
	// absent must match absent. The excluded set keeps the marking
	// idempotent when one fee relates to several dropped expenses.
	for _, dropped := range excludedByCutoff {
		for _, candidate := range list {
			if _, gone := excluded[candidate.ID]; gone {
				continue
			}
			if base, ok := ClassifyBase(candidate.Type); !ok || base != CategoryDisbursementFee {
				continue
			}
			if related(dropped, candidate) {
				excluded[candidate.ID] = struct{}{}
			}
		}
	}

	kept := make([]expenses.Expense, 0, len(list))
	for _, e := range list {
		if _, gone := excluded[e.ID]; !gone {
			kept = append(kept, e)
		}
	}
	return kept
}

func related(a, b expenses.Expense) bool {
	return equalStringPtr(a.InvoiceID, b.InvoiceID) &&
		equalStringPtr(a.FlightID, b.FlightID) &&
		equalTimePtr(a.PeriodStart, b.PeriodStart) &&
		equalTimePtr(a.PeriodEnd, b.PeriodEnd) &&
		a.Place == b.Place
}

func equalStringPtr(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func equalTimePtr(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}
