package interfaces

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"

	domain "aeroledger/internal/report/domain"
)

// BuildReportPDF renders the aggregated matrix as a landscape PDF table.
func BuildReportPDF(matrix *domain.Matrix) ([]byte, error) {
	grid := BuildGrid(matrix)

	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetFont("Arial", "", 8)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 11)
	pdf.Cell(0, 8, "Operating Expenses by Month")
	pdf.Ln(10)

	const (
		labelWidth = 55.0
		dataWidth  = 22.0
		rowHeight  = 6.0
	)

	for _, row := range grid.Rows {
		for i, cell := range row {
			width := dataWidth
			align := "R"
			switch cell.Style {
			case StyleLabel, StyleSummaryLabel:
				width = labelWidth
				align = "L"
			case StyleHeader:
				align = "C"
			}
			if i == 0 {
				width = labelWidth
			} else if cell.Span > 1 {
				width = dataWidth * float64(cell.Span)
			}

			bold := cell.Style == StyleHeader || cell.Style == StyleSummaryLabel ||
				cell.Style == StyleSummaryNumberUSD || cell.Style == StyleSummaryNumberAED
			if bold {
				pdf.SetFont("Arial", "B", 8)
				pdf.SetFillColor(217, 217, 217)
			} else {
				pdf.SetFont("Arial", "", 8)
				pdf.SetFillColor(255, 255, 255)
			}

			pdf.CellFormat(width, rowHeight, formatPDFValue(cell), "1", 0, align, bold, 0, "")
		}
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func formatPDFValue(cell GridCell) string {
	switch value := cell.Value.(type) {
	case float64:
		switch cell.Style {
		case StyleNumberUSD, StyleSummaryNumberUSD:
			return fmt.Sprintf("$%.2f", value)
		default:
			return fmt.Sprintf("%.2f", value)
		}
	case string:
		return value
	default:
		return fmt.Sprintf("%v", value)
	}
}
