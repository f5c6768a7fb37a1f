package interfaces

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	domain "aeroledger/internal/report/domain"
)

const (
	reportSheet = "Expenses"

	labelColWidth = 32.0
	dataColWidth  = 14.0

	summaryFill = "D9D9D9"

	usdNumFmt = "$#,##0.00"
	aedNumFmt = "#,##0.00"
)

// BuildReportXLSX renders the aggregated matrix as an XLSX workbook.
func BuildReportXLSX(matrix *domain.Matrix) ([]byte, error) {
	grid := BuildGrid(matrix)

	f := excelize.NewFile()
	f.SetSheetName("Sheet1", reportSheet)

	styles, err := newXLSXStyles(f)
	if err != nil {
		return nil, err
	}

	for rowIdx, row := range grid.Rows {
		col := 1
		for _, cell := range row {
			name, err := excelize.CoordinatesToCellName(col, rowIdx+1)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(reportSheet, name, cell.Value); err != nil {
				return nil, err
			}
			if styleID, ok := styles[cell.Style]; ok {
				endCol := col
				if cell.Span > 1 {
					endCol = col + cell.Span - 1
				}
				endName, err := excelize.CoordinatesToCellName(endCol, rowIdx+1)
				if err != nil {
					return nil, err
				}
				if err := f.SetCellStyle(reportSheet, name, endName, styleID); err != nil {
					return nil, err
				}
				if cell.Span > 1 {
					if err := f.MergeCell(reportSheet, name, endName); err != nil {
						return nil, err
					}
				}
			}
			if cell.Span > 1 {
				col += cell.Span
			} else {
				col++
			}
		}
	}

	if err := f.SetColWidth(reportSheet, "A", "A", labelColWidth); err != nil {
		return nil, err
	}
	if columns := grid.Columns(); columns > 1 {
		lastCol, err := excelize.ColumnNumberToName(columns)
		if err != nil {
			return nil, err
		}
		if err := f.SetColWidth(reportSheet, "B", lastCol, dataColWidth); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write xlsx: %w", err)
	}
	return buf.Bytes(), nil
}

func newXLSXStyles(f *excelize.File) (map[CellStyle]int, error) {
	usdFmt := usdNumFmt
	aedFmt := aedNumFmt

	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{summaryFill}, Pattern: 1},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		return nil, err
	}

	numberUSD, err := f.NewStyle(&excelize.Style{
		CustomNumFmt: &usdFmt,
		Alignment:    &excelize.Alignment{Horizontal: "right"},
	})
	if err != nil {
		return nil, err
	}
	numberAED, err := f.NewStyle(&excelize.Style{
		CustomNumFmt: &aedFmt,
		Alignment:    &excelize.Alignment{Horizontal: "right"},
	})
	if err != nil {
		return nil, err
	}

	summaryLabel, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{summaryFill}, Pattern: 1},
	})
	if err != nil {
		return nil, err
	}
	summaryUSD, err := f.NewStyle(&excelize.Style{
		Font:         &excelize.Font{Bold: true},
		Fill:         excelize.Fill{Type: "pattern", Color: []string{summaryFill}, Pattern: 1},
		CustomNumFmt: &usdFmt,
		Alignment:    &excelize.Alignment{Horizontal: "right"},
	})
	if err != nil {
		return nil, err
	}
	summaryAED, err := f.NewStyle(&excelize.Style{
		Font:         &excelize.Font{Bold: true},
		Fill:         excelize.Fill{Type: "pattern", Color: []string{summaryFill}, Pattern: 1},
		CustomNumFmt: &aedFmt,
		Alignment:    &excelize.Alignment{Horizontal: "right"},
	})
	if err != nil {
		return nil, err
	}

	return map[CellStyle]int{
		StyleHeader:           header,
		StyleNumberUSD:        numberUSD,
		StyleNumberAED:        numberAED,
		StyleSummaryLabel:     summaryLabel,
		StyleSummaryNumberUSD: summaryUSD,
		StyleSummaryNumberAED: summaryAED,
	}, nil
}
