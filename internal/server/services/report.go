package services

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/dmitrijs2005/timesheet/internal/server/models"
	"github.com/dmitrijs2005/timesheet/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/timesheet/internal/timesheet"
)

// ReportService builds hour reports from a fresh snapshot of the store on
// every call.
type ReportService struct {
	repos         repomanager.RepositoryManager
	referenceYear int
}

func NewReportService(repos repomanager.RepositoryManager, referenceYear int) *ReportService {
	if referenceYear == 0 {
		referenceYear = timesheet.DefaultReferenceYear
	}
	return &ReportService{repos: repos, referenceYear: referenceYear}
}

// ReferenceYear is the year displayed without a year component.
func (s *ReportService) ReferenceYear() int {
	return s.referenceYear
}

func (s *ReportService) snapshot(ctx context.Context) ([]timesheet.Entry, error) {
	list, err := s.repos.Entries().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	return models.Timesheets(list), nil
}

// Daily returns hours per date and name.
func (s *ReportService) Daily(ctx context.Context) (timesheet.Matrix, error) {
	entries, err := s.snapshot(ctx)
	if err != nil {
		return timesheet.Matrix{}, err
	}
	return timesheet.DailyMatrix(entries), nil
}

// Weekly returns hours per Monday week start and name.
func (s *ReportService) Weekly(ctx context.Context) (timesheet.Matrix, error) {
	entries, err := s.snapshot(ctx)
	if err != nil {
		return timesheet.Matrix{}, err
	}
	return timesheet.WeeklyMatrix(entries), nil
}

// Weekday returns hours per weekday label and name.
func (s *ReportService) Weekday(ctx context.Context) (timesheet.Matrix, error) {
	entries, err := s.snapshot(ctx)
	if err != nil {
		return timesheet.Matrix{}, err
	}
	return timesheet.WeekdayMatrix(entries), nil
}

// Weeks lists the week starts that have entries, ascending.
func (s *ReportService) Weeks(ctx context.Context) ([]string, error) {
	entries, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return timesheet.WeekList(entries), nil
}

// Week returns the seven days from the Monday on or before start.
func (s *ReportService) Week(ctx context.Context, start time.Time) (timesheet.WeekView, error) {
	entries, err := s.snapshot(ctx)
	if err != nil {
		return timesheet.WeekView{}, err
	}
	return timesheet.BuildWeekView(entries, timesheet.WeekStart(start)), nil
}

// ShowYear reports whether dates need a year component when displayed.
func (s *ReportService) ShowYear(dates []string) bool {
	return timesheet.ShowYear(dates, s.referenceYear)
}

// WriteMatrixCSV writes m as CSV: a header of keyHeader and the names, then
// one row per key.
func WriteMatrixCSV(w io.Writer, keyHeader string, m timesheet.Matrix) error {
	cw := csv.NewWriter(w)

	header := append([]string{keyHeader}, m.Names...)
	if err := cw.Write(header); err != nil {
		return err
	}
	for i, k := range m.Keys {
		rec := make([]string, 0, len(m.Names)+1)
		rec = append(rec, k)
		for _, n := range m.Names {
			rec = append(rec, FormatHours(m.Hours[n][i]))
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// FormatHours renders hours in their shortest exact decimal form.
func FormatHours(h float64) string {
	return strconv.FormatFloat(h, 'f', -1, 64)
}
