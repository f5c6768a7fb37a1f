package interfaces

import (
	"fmt"
	"time"

	domain "aeroledger/internal/report/domain"
)

// CellStyle tags a grid cell for the renderers; each backend maps tags to
// its own styling API.
type CellStyle int

const (
	StyleLabel CellStyle = iota
	StyleHeader
	StyleNumberUSD
	StyleNumberAED
	StyleSummaryLabel
	StyleSummaryNumberUSD
	StyleSummaryNumberAED
)

// GridCell is one laid-out cell. Span > 1 merges the cell across that many
// columns.
type GridCell struct {
	Value any
	Style CellStyle
	Span  int
}

// Grid is the renderer-neutral layout of a report matrix: two header rows,
// one row per category, then the Credit note, Total and Charter profit
// summary rows.
type Grid struct {
	Rows [][]GridCell
}

// Columns returns the total column count: one label column plus two
// currency columns per month.
func (g *Grid) Columns() int {
	if len(g.Rows) < 2 {
		return 0
	}
	// The sub-header row has no merged cells.
	return len(g.Rows[1])
}

// BuildGrid lays out an aggregated matrix as a 2D grid.
func BuildGrid(matrix *domain.Matrix) *Grid {
	grid := &Grid{}

	header := []GridCell{{Value: "Category", Style: StyleHeader}}
	subHeader := []GridCell{{Value: "", Style: StyleHeader}}
	for _, month := range matrix.Months {
		header = append(header, GridCell{Value: domain.MonthLabel(month), Style: StyleHeader, Span: 2})
		subHeader = append(subHeader,
			GridCell{Value: domain.CurrencyUSD, Style: StyleHeader},
			GridCell{Value: domain.CurrencyAED, Style: StyleHeader},
		)
	}
	grid.Rows = append(grid.Rows, header, subHeader)

	for _, row := range matrix.Rows {
		grid.Rows = append(grid.Rows, dataRow(row.Label, row.Cells, matrix.Months, false))
	}

	grid.Rows = append(grid.Rows,
		dataRow(domain.RowCreditNote, matrix.CreditNote, matrix.Months, true),
		dataRow(domain.RowTotal, matrix.Total, matrix.Months, true),
		dataRow(domain.RowCharterProfit, matrix.CharterProfit, matrix.Months, true),
	)
	return grid
}

func dataRow(label string, cells map[string]domain.Cell, months []string, summary bool) []GridCell {
	labelStyle, usdStyle, aedStyle := StyleLabel, StyleNumberUSD, StyleNumberAED
	if summary {
		labelStyle, usdStyle, aedStyle = StyleSummaryLabel, StyleSummaryNumberUSD, StyleSummaryNumberAED
	}
	row := []GridCell{{Value: label, Style: labelStyle}}
	for _, month := range months {
		cell := cells[month]
		row = append(row,
			GridCell{Value: cell.AmountUSD, Style: usdStyle},
			GridCell{Value: cell.AmountAED, Style: aedStyle},
		)
	}
	return row
}

// ReportFilename names an export after the year filter and current date.
func ReportFilename(yearFilter, format string, now time.Time) string {
	return fmt.Sprintf("expenses-report-%s-%s.%s", yearFilter, now.Format("2006-01-02"), format)
}
