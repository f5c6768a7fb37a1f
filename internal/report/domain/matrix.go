package domain

import (
	"sort"
	"strings"
	"time"

	expenses "aeroledger/internal/expenses/domain"
)

// Year filter values accepted by the report.
const (
	YearFilterCurrent = "current"
	YearFilterAll     = "all"
)

// Income row labels. Credit notes reduce the total; charter profit is
// reported but never netted into it.
const (
	RowCreditNote    = "Credit note"
	RowTotal         = "Total"
	RowCharterProfit = "Charter profit"
)

// Options controls one report build.
type Options struct {
	YearFilter        string
	ShowSubcategories bool
	ApplyATSFilter    bool
	ATSCutoff         time.Time
}

// Cell accumulates one row/month bucket in both currency views. Whatever
// the expense's native currency, both views are populated, one directly
// and one via conversion.
type Cell struct {
	AmountUSD float64
	AmountAED float64
}

// Row is one category line of the matrix.
type Row struct {
	Label string
	Base  Category
	Cells map[string]Cell
}

// Matrix is the aggregated report: sorted category rows by sorted months,
// plus the Credit note, Total and Charter profit rows.
type Matrix struct {
	Months        []string
	Rows          []Row
	CreditNote    map[string]Cell
	Total         map[string]Cell
	CharterProfit map[string]Cell
}

// BuildMatrix aggregates a snapshot of expense records into the report
// matrix. Unclassified expenses are skipped, never an error; an empty
// filtered month set yields ErrNoDataForPeriod.
func BuildMatrix(list []expenses.Expense, opts Options, now time.Time) (*Matrix, error) {
	if opts.ApplyATSFilter {
		list = FilterForATS(list, opts.ATSCutoff)
	}

	type rowAccum struct {
		base  Category
		cells map[string]Cell
	}
	rows := make(map[string]*rowAccum)
	creditNote := make(map[string]Cell)
	charterProfit := make(map[string]Cell)
	monthsSeen := make(map[string]struct{})

	addTo := func(cells map[string]Cell, month string, amount float64, currency string) {
		cell := cells[month]
		cell.AmountUSD += Convert(amount, currency, CurrencyUSD)
		cell.AmountAED += Convert(amount, currency, CurrencyAED)
		cells[month] = cell
		monthsSeen[month] = struct{}{}
	}

	for _, e := range list {
		if income := incomeRowFor(e.InvoiceTypeName); income != "" {
			target := creditNote
			if income == RowCharterProfit {
				target = charterProfit
			}
			for _, part := range SplitByMonths(e, now) {
				addTo(target, part.Month, part.Amount, e.Currency)
			}
			continue
		}

		label, ok := ClassifyDisplay(e, opts.ShowSubcategories)
		if !ok {
			continue
		}
		row := rows[label]
		if row == nil {
			base, _ := ClassifyBase(e.Type)
			row = &rowAccum{base: base, cells: make(map[string]Cell)}
			rows[label] = row
		}
		for _, part := range SplitByMonths(e, now) {
			addTo(row.cells, part.Month, part.Amount, e.Currency)
		}
	}

	months := filterMonths(monthsSeen, opts.YearFilter, now)
	if len(months) == 0 {
		return nil, ErrNoDataForPeriod
	}

	sorted := make([]Row, 0, len(rows))
	for label, accum := range rows {
		sorted = append(sorted, Row{Label: label, Base: accum.base, Cells: accum.cells})
	}
	sort.Slice(sorted, func(i, j int) bool {
		pi, pj := priorityIndex(sorted[i].Base), priorityIndex(sorted[j].Base)
		if pi != pj {
			return pi < pj
		}
		return sorted[i].Label < sorted[j].Label
	})

	total := make(map[string]Cell, len(months))
	for _, month := range months {
		var cell Cell
		for _, row := range sorted {
			cell.AmountUSD += row.Cells[month].AmountUSD
			cell.AmountAED += row.Cells[month].AmountAED
		}
		cell.AmountUSD -= creditNote[month].AmountUSD
		cell.AmountAED -= creditNote[month].AmountAED
		total[month] = cell
	}

	return &Matrix{
		Months:        months,
		Rows:          sorted,
		CreditNote:    creditNote,
		Total:         total,
		CharterProfit: charterProfit,
	}, nil
}

// incomeRowFor detects the income marker from a linked invoice's type
// name. Both keywords of a pair must appear, case-insensitively.
func incomeRowFor(invoiceTypeName string) string {
	if invoiceTypeName == "" {
		return ""
	}
	name := strings.ToLower(invoiceTypeName)
	if strings.Contains(name, "credit") && strings.Contains(name, "note") {
		return RowCreditNote
	}
	if strings.Contains(name, "charter") && strings.Contains(name, "profit") {
		return RowCharterProfit
	}
	return ""
}

func filterMonths(seen map[string]struct{}, yearFilter string, now time.Time) []string {
	currentYear := now.Format("2006")
	months := make([]string, 0, len(seen))
	for month := range seen {
		if yearFilter != YearFilterAll && !strings.HasPrefix(month, currentYear) {
			continue
		}
		months = append(months, month)
	}
	sort.Strings(months)
	return months
}

// MonthLabel renders a month key for display, e.g. "2025-03" to "Mar 2025".
func MonthLabel(monthKey string) string {
	parsed, err := time.Parse(monthKeyLayout, monthKey)
	if err != nil {
		return monthKey
	}
	return parsed.Format("Jan 2006")
}
