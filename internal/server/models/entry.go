// Package models defines the persisted time-entry record shared by every
// storage backend.
package models

import (
	"time"

	"github.com/dmitrijs2005/timesheet/internal/timesheet"
)

// Entry is one logged work session as stored. Date, FromTime, ToTime and
// Duration keep the authored text; normalization happens on read.
type Entry struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Date        string    `json:"date"`
	FromTime    string    `json:"from_time"`
	ToTime      string    `json:"to_time"`
	Duration    string    `json:"duration"`
	Task        string    `json:"task"`
	Description string    `json:"description"`
	File        string    `json:"file"`
	CreatedAt   time.Time `json:"created_at"`
}

// Timesheet returns the view the aggregator works on.
func (e *Entry) Timesheet() timesheet.Entry {
	return timesheet.Entry{
		Name:     e.Name,
		Date:     e.Date,
		FromTime: e.FromTime,
		ToTime:   e.ToTime,
		Duration: e.Duration,
	}
}

// Hours is the entry's length after normalization.
func (e *Entry) Hours() float64 {
	return e.Timesheet().Hours()
}

// Editable reports whether the entry may still be changed at t.
func (e *Entry) Editable(t time.Time) bool {
	return timesheet.Editable(e.CreatedAt, t)
}

// Timesheets converts a stored snapshot for aggregation.
func Timesheets(entries []*Entry) []timesheet.Entry {
	out := make([]timesheet.Entry, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Timesheet())
	}
	return out
}
