package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/dmitrijs2005/timesheet/internal/common"
	"github.com/dmitrijs2005/timesheet/internal/server/services"
	"github.com/dmitrijs2005/timesheet/internal/timesheet"
)

type matrixResponse struct {
	timesheet.Matrix
	ShowYear bool `json:"show_year"`
}

// weeklyResponse keeps the weekly document's historical "weeks" key next
// to the generic "keys".
type weeklyResponse struct {
	matrixResponse
	Weeks []string `json:"weeks"`
}

func (s *Server) handleDailyData(w http.ResponseWriter, r *http.Request) {
	m, err := s.reports.Daily(r.Context())
	if err != nil {
		s.fail(r.Context(), w, err)
		return
	}
	s.writeJSON(r.Context(), w, http.StatusOK, matrixResponse{Matrix: m, ShowYear: s.reports.ShowYear(m.Keys)})
}

func (s *Server) handleWeeklyData(w http.ResponseWriter, r *http.Request) {
	m, err := s.reports.Weekly(r.Context())
	if err != nil {
		s.fail(r.Context(), w, err)
		return
	}
	s.writeJSON(r.Context(), w, http.StatusOK, weeklyResponse{
		matrixResponse: matrixResponse{Matrix: m, ShowYear: s.reports.ShowYear(m.Keys)},
		Weeks:          m.Keys,
	})
}

func (s *Server) handleWeekdayData(w http.ResponseWriter, r *http.Request) {
	m, err := s.reports.Weekday(r.Context())
	if err != nil {
		s.fail(r.Context(), w, err)
		return
	}
	s.writeJSON(r.Context(), w, http.StatusOK, matrixResponse{Matrix: m})
}

func (s *Server) handleWeeks(w http.ResponseWriter, r *http.Request) {
	weeks, err := s.reports.Weeks(r.Context())
	if err != nil {
		s.fail(r.Context(), w, err)
		return
	}
	if weeks == nil {
		weeks = []string{}
	}
	s.writeJSON(r.Context(), w, http.StatusOK, map[string][]string{"weeks": weeks})
}

func (s *Server) handleWeekData(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if q := r.URL.Query().Get("start"); q != "" {
		t, ok := timesheet.ParseDate(q)
		if !ok {
			writeError(w, http.StatusBadRequest, common.ErrorValidation.Error()+": start is not a date")
			return
		}
		start = t
	}

	v, err := s.reports.Week(r.Context(), start)
	if err != nil {
		s.fail(r.Context(), w, err)
		return
	}
	s.writeJSON(r.Context(), w, http.StatusOK, v)
}

func (s *Server) download(w http.ResponseWriter, r *http.Request, filename, keyHeader string, build func(context.Context) (timesheet.Matrix, error)) {
	m, err := build(r.Context())
	if err != nil {
		s.fail(r.Context(), w, err)
		return
	}
	setAttachment(w, filename)
	if err := services.WriteMatrixCSV(w, keyHeader, m); err != nil {
		s.logger.Error(r.Context(), "csv write failed", "error", err)
	}
}

func (s *Server) handleDailyDownload(w http.ResponseWriter, r *http.Request) {
	s.download(w, r, "daily_summary.csv", "Date", s.reports.Daily)
}

func (s *Server) handleWeeklyDownload(w http.ResponseWriter, r *http.Request) {
	s.download(w, r, "weekly_summary.csv", "Week", s.reports.Weekly)
}

func (s *Server) handleWeekdayDownload(w http.ResponseWriter, r *http.Request) {
	s.download(w, r, "weekday_summary.csv", "Day", s.reports.Weekday)
}
