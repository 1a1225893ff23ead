package services

import (
	"bytes"
	"fmt"
	"html"

	"task-reminder-report/internal/models"
	"task-reminder-report/internal/utils"
)

// DocumentService builds and persists report documents. A render fully
// replaces the destination document's prior content, so dispatching the same
// finished result twice produces identical output instead of duplicated
// tables.
type DocumentService struct {
	documents DocumentStore
}

// NewDocumentService creates a new document service
func NewDocumentService(documents DocumentStore) *DocumentService {
	return &DocumentService{documents: documents}
}

// ReportColumns returns the table column set for a horizon. The WEEK horizon
// omits the completion column because completion is not yet assessable for
// future items.
func ReportColumns(horizon models.Horizon) []string {
	columns := []string{"Item", "Summary", "Date", "Staff"}
	if horizon == models.HorizonToday {
		columns = append(columns, "Completion")
	}
	return columns
}

// BuildDocument assembles a report document from a SourceReport sequence:
// a title, a heading paragraph hyperlinking the originating tracker, and one
// table per SourceReport
func (s *DocumentService) BuildDocument(
	docID, title, trackerURL string,
	horizon models.Horizon,
	reports []models.SourceReport,
) models.ReportDocument {
	columns := ReportColumns(horizon)

	tables := make([]models.ReportTable, 0, len(reports))
	for _, report := range reports {
		rows := make([][]string, 0, len(report.Items))
		for _, item := range report.Items {
			row := []string{item.Label, item.Note, utils.FormatDate(item.DueDate), item.Assignee}
			if horizon == models.HorizonToday {
				// included items are open by definition; the column is left
				// blank for marking off
				row = append(row, "")
			}
			rows = append(rows, row)
		}
		tables = append(tables, models.ReportTable{
			SourceName: report.SourceName,
			SourceURL:  report.SourceURL,
			Columns:    columns,
			Rows:       rows,
		})
	}

	doc := models.ReportDocument{
		ID:          docID,
		Title:       title,
		HeadingText: title,
		HeadingURL:  trackerURL,
		Tables:      tables,
	}
	doc.HTML = renderDocumentHTML(doc)
	return doc
}

// Render persists the document, replacing any prior content under its id
func (s *DocumentService) Render(doc models.ReportDocument) error {
	if err := s.documents.ReplaceDocument(doc); err != nil {
		return fmt.Errorf("failed to render document %s: %w", doc.ID, err)
	}
	return nil
}

// renderDocumentHTML renders the full report document as a standalone HTML page
func renderDocumentHTML(doc models.ReportDocument) string {
	var out bytes.Buffer

	out.WriteString(`<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>` + html.EscapeString(doc.Title) + `</title>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; max-width: 800px; margin: 0 auto; padding: 20px; }
        h1 { color: #0066cc; }
        h2 { margin-bottom: 5px; }
        table { border-collapse: collapse; width: 100%; margin-bottom: 25px; }
        th { background-color: #0066cc; color: white; text-align: left; padding: 8px; }
        td { border: 1px solid #ddd; padding: 8px; }
        tr:nth-child(even) { background-color: #f8f9fa; }
    </style>
</head>
<body>
`)

	if doc.HeadingURL != "" {
		out.WriteString(`    <h1><a href="` + html.EscapeString(doc.HeadingURL) + `">` + html.EscapeString(doc.HeadingText) + `</a></h1>
`)
	} else {
		out.WriteString(`    <h1>` + html.EscapeString(doc.HeadingText) + `</h1>
`)
	}

	if len(doc.Tables) == 0 {
		out.WriteString(`    <p>No outstanding items.</p>
`)
	}

	for _, table := range doc.Tables {
		if table.SourceURL != "" {
			out.WriteString(`    <h2><a href="` + html.EscapeString(table.SourceURL) + `">` + html.EscapeString(table.SourceName) + `</a></h2>
`)
		} else {
			out.WriteString(`    <h2>` + html.EscapeString(table.SourceName) + `</h2>
`)
		}

		out.WriteString(`    <table>
        <tr>`)
		for _, column := range table.Columns {
			out.WriteString(`<th>` + html.EscapeString(column) + `</th>`)
		}
		out.WriteString(`</tr>
`)
		for _, row := range table.Rows {
			out.WriteString(`        <tr>`)
			for _, cell := range row {
				out.WriteString(`<td>` + html.EscapeString(cell) + `</td>`)
			}
			out.WriteString(`</tr>
`)
		}
		out.WriteString(`    </table>
`)
	}

	out.WriteString(`</body>
</html>`)

	return out.String()
}
