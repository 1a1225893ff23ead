package services

import (
	"testing"
	"time"

	"task-reminder-report/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportColumns(t *testing.T) {
	assert.Equal(t, []string{"Item", "Summary", "Date", "Staff", "Completion"}, ReportColumns(models.HorizonToday))
	assert.Equal(t, []string{"Item", "Summary", "Date", "Staff"}, ReportColumns(models.HorizonWeek))
}

func TestBuildDocumentTodayLeavesCompletionBlank(t *testing.T) {
	svc := NewDocumentService(newFakeDocuments())
	due := time.Date(2025, 6, 4, 0, 0, 0, 0, time.UTC)
	reports := []models.SourceReport{
		{
			SourceName: "Maintenance",
			SourceURL:  "https://tracker/maintenance",
			Items: []models.WorkItem{
				{Label: "fix pump", Note: "valve 3", DueDate: due, Assignee: "A"},
			},
		},
	}

	doc := svc.BuildDocument("doc-1", "Tasks Due Today", "https://tracker", models.HorizonToday, reports)

	assert.Equal(t, "doc-1", doc.ID)
	assert.Equal(t, "Tasks Due Today", doc.HeadingText)
	assert.Equal(t, "https://tracker", doc.HeadingURL)
	require.Len(t, doc.Tables, 1)

	table := doc.Tables[0]
	assert.Equal(t, ReportColumns(models.HorizonToday), table.Columns)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, []string{"fix pump", "valve 3", "2025-06-04", "A", ""}, table.Rows[0])
}

func TestBuildDocumentWeekOmitsCompletionCell(t *testing.T) {
	svc := NewDocumentService(newFakeDocuments())
	due := time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC)
	reports := []models.SourceReport{
		{SourceName: "Projects", Items: []models.WorkItem{{Label: "draft budget", DueDate: due, Assignee: "B"}}},
	}

	doc := svc.BuildDocument("doc-2", "Tasks Due This Week", "", models.HorizonWeek, reports)

	require.Len(t, doc.Tables, 1)
	require.Len(t, doc.Tables[0].Rows, 1)
	assert.Equal(t, []string{"draft budget", "", "2025-06-09", "B"}, doc.Tables[0].Rows[0])
}

func TestBuildDocumentHTMLStructure(t *testing.T) {
	svc := NewDocumentService(newFakeDocuments())
	due := time.Date(2025, 6, 4, 0, 0, 0, 0, time.UTC)
	reports := []models.SourceReport{
		{
			SourceName: "R&D <Lab>",
			SourceURL:  "https://tracker/rnd",
			Items:      []models.WorkItem{{Label: "a < b", DueDate: due}},
		},
	}

	doc := svc.BuildDocument("doc-3", "Tasks Due Today", "https://tracker", models.HorizonToday, reports)

	assert.Contains(t, doc.HTML, `<a href="https://tracker">Tasks Due Today</a>`)
	assert.Contains(t, doc.HTML, `<a href="https://tracker/rnd">R&amp;D &lt;Lab&gt;</a>`)
	assert.Contains(t, doc.HTML, "<td>a &lt; b</td>")
	assert.NotContains(t, doc.HTML, "No outstanding items")
}

func TestBuildDocumentEmptyReportSet(t *testing.T) {
	svc := NewDocumentService(newFakeDocuments())

	doc := svc.BuildDocument("doc-4", "Tasks Due Today", "", models.HorizonToday, nil)

	assert.Empty(t, doc.Tables)
	assert.Contains(t, doc.HTML, "No outstanding items")
}

func TestRenderReplacesDocument(t *testing.T) {
	store := newFakeDocuments()
	svc := NewDocumentService(store)

	first := svc.BuildDocument("doc-5", "Tasks Due Today", "", models.HorizonToday, []models.SourceReport{
		{SourceName: "Old", Items: []models.WorkItem{{Label: "old item", DueDate: time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC)}}},
	})
	require.NoError(t, svc.Render(first))

	second := svc.BuildDocument("doc-5", "Tasks Due Today", "", models.HorizonToday, nil)
	require.NoError(t, svc.Render(second))

	stored, err := store.GetDocument("doc-5")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.NotContains(t, stored.HTML, "old item")
	assert.Contains(t, stored.HTML, "No outstanding items")
}
