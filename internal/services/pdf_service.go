package services

import (
	"bytes"
	"fmt"

	"task-reminder-report/internal/models"

	"github.com/jung-kurt/gofpdf/v2"
)

// PDFService renders a report document to PDF for attachment to success
// notifications
type PDFService struct{}

// NewPDFService creates a new PDF service
func NewPDFService() *PDFService {
	return &PDFService{}
}

// column width weights for the two table layouts, summing to the printable
// A4 width (180mm with 15mm margins)
var (
	todayWidths = []float64{40, 60, 25, 35, 20}
	weekWidths  = []float64{45, 70, 28, 37}
)

// GenerateReportPDF renders the report document's tables to a PDF
func (s *PDFService) GenerateReportPDF(doc models.ReportDocument) ([]byte, error) {
	// Create PDF document (A4, portrait)
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 20, 15)
	pdf.SetAutoPageBreak(true, 20)

	// Set total page count alias for footer
	pdf.AliasNbPages("{nb}")

	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Arial", "", 9)
		pdf.SetTextColor(108, 117, 125) // Gray
		pdf.SetX(15)
		pdf.CellFormat(0, 10, fmt.Sprintf("Page %d of {nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	pdf.AddPage()
	pdf.SetFont("Arial", "B", 20)
	pdf.SetTextColor(0, 102, 204) // Blue
	pdf.CellFormat(0, 14, doc.Title, "", 1, "L", false, 0, "")
	pdf.Ln(4)

	if len(doc.Tables) == 0 {
		pdf.SetFont("Arial", "", 12)
		pdf.SetTextColor(51, 51, 51)
		pdf.CellFormat(0, 10, "No outstanding items.", "", 1, "L", false, 0, "")
	}

	for _, table := range doc.Tables {
		widths := weekWidths
		if len(table.Columns) == len(todayWidths) {
			widths = todayWidths
		}
		if len(widths) != len(table.Columns) {
			return nil, fmt.Errorf("unexpected column count %d for table %s", len(table.Columns), table.SourceName)
		}

		pdf.SetFont("Arial", "B", 13)
		pdf.SetTextColor(0, 102, 204)
		pdf.CellFormat(0, 10, table.SourceName, "", 1, "L", false, 0, "")

		// Header row
		pdf.SetFont("Arial", "B", 10)
		pdf.SetFillColor(0, 102, 204)
		pdf.SetTextColor(255, 255, 255)
		for i, column := range table.Columns {
			pdf.CellFormat(widths[i], 8, column, "1", 0, "L", true, 0, "")
		}
		pdf.Ln(-1)

		// Data rows
		pdf.SetFont("Arial", "", 10)
		pdf.SetTextColor(51, 51, 51)
		fill := false
		for _, row := range table.Rows {
			pdf.SetFillColor(248, 249, 250)
			for i, cell := range row {
				pdf.CellFormat(widths[i], 8, truncateCell(cell, 48), "1", 0, "L", fill, 0, "")
			}
			pdf.Ln(-1)
			fill = !fill
		}
		pdf.Ln(6)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}

	return buf.Bytes(), nil
}

// truncateCell keeps cell text inside its fixed-width column, cutting on
// rune boundaries
func truncateCell(text string, max int) string {
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max-3]) + "..."
}
