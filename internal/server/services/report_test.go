package services

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/timesheet/internal/server/models"
	"github.com/dmitrijs2005/timesheet/internal/timesheet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedReports(t *testing.T) *ReportService {
	t.Helper()
	repos := newCSVManager(t)
	ctx := context.Background()
	for _, e := range []*models.Entry{
		{ID: "1", Name: "Alice", Date: "2024-01-01", FromTime: "09:00", ToTime: "11:00"},
		{ID: "2", Name: "Bob", Date: "01/03/2024", Duration: "1:30"},
		{ID: "3", Name: "Alice", Date: "2024-01-09", Duration: "4h"},
	} {
		require.NoError(t, repos.Entries().Create(ctx, e))
	}
	return NewReportService(repos, 0)
}

func TestReportService_Matrices(t *testing.T) {
	ctx := context.Background()
	svc := seedReports(t)
	assert.Equal(t, timesheet.DefaultReferenceYear, svc.ReferenceYear())

	daily, err := svc.Daily(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-01-01", "2024-01-03", "2024-01-09"}, daily.Keys)
	assert.Equal(t, []float64{2, 0, 4}, daily.Hours["Alice"])
	assert.Equal(t, []float64{0, 1.5, 0}, daily.Hours["Bob"])

	weekly, err := svc.Weekly(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-01-01", "2024-01-08"}, weekly.Keys)
	assert.Equal(t, []float64{2, 4}, weekly.Hours["Alice"])

	weekday, err := svc.Weekday(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Mon", "Tue", "Wed"}, weekday.Keys)
	assert.Equal(t, []float64{0, 0, 1.5}, weekday.Hours["Bob"])

	weeks, err := svc.Weeks(ctx)
	require.NoError(t, err)
	assert.Equal(t, weekly.Keys, weeks)
}

func TestReportService_Week(t *testing.T) {
	svc := seedReports(t)

	v, err := svc.Week(context.Background(), time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "2024-01-01", v.Start, "start snaps to Monday")
	assert.Equal(t, []float64{2, 0, 0, 0, 0, 0, 0}, v.Hours["Alice"])
	assert.Equal(t, []float64{2, 0, 1.5, 0, 0, 0, 0}, v.Totals)

	assert.True(t, svc.ShowYear([]string{"2024-01-01"}))
}

func TestWriteMatrixCSV(t *testing.T) {
	m := timesheet.Matrix{
		Keys:  []string{"2024-01-01", "2024-01-08"},
		Names: []string{"Alice", "Bob"},
		Hours: map[string][]float64{
			"Alice": {2, 0.25},
			"Bob":   {0, 1.5},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteMatrixCSV(&buf, "Week", m))
	assert.Equal(t, "Week,Alice,Bob\n2024-01-01,2,0\n2024-01-08,0.25,1.5\n", buf.String())
}

func TestNewEntryViews(t *testing.T) {
	created := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	list := []*models.Entry{
		{ID: "a", Name: "Alice", Date: "2025-03-01", Duration: "1:45", CreatedAt: created},
		{ID: "b", Name: "Bob", Date: "03/02/2025", FromTime: "10:00", ToTime: "10:20"},
	}

	views := NewEntryViews(list, 2025, created.Add(time.Hour))
	require.Len(t, views, 2)
	assert.Equal(t, "1:45", views[0].HM)
	assert.Equal(t, 1.75, views[0].Hours)
	assert.Equal(t, "03/01", views[0].DisplayDate)
	assert.True(t, views[0].Editable)
	assert.Equal(t, "2025-03-02", views[1].CanonicalDate)
	assert.Equal(t, "0:20", views[1].HM)
	assert.False(t, views[1].Editable, "entries without a creation time are read-only")

	views = NewEntryViews(append(list, &models.Entry{Date: "2024-12-31"}), 2025, created)
	assert.Equal(t, "03/01/2025", views[0].DisplayDate)
}
