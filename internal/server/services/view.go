package services

import (
	"time"

	"github.com/dmitrijs2005/timesheet/internal/server/models"
	"github.com/dmitrijs2005/timesheet/internal/timesheet"
)

// EntryView is an entry decorated for listing.
type EntryView struct {
	*models.Entry
	Hours         float64 `json:"hours"`
	HM            string  `json:"hm"`
	CanonicalDate string  `json:"canonical_date"`
	DisplayDate   string  `json:"display_date"`
	Editable      bool    `json:"editable"`
}

// NewEntryViews decorates list for display at t. Display dates carry the
// year only when some entry falls outside referenceYear.
func NewEntryViews(list []*models.Entry, referenceYear int, t time.Time) []EntryView {
	dates := make([]string, len(list))
	for i, e := range list {
		dates[i] = e.Date
	}
	showYear := timesheet.ShowYear(dates, referenceYear)

	views := make([]EntryView, 0, len(list))
	for _, e := range list {
		h := e.Hours()
		views = append(views, EntryView{
			Entry:         e,
			Hours:         h,
			HM:            timesheet.HoursToHM(h),
			CanonicalDate: timesheet.CanonicalDate(e.Date),
			DisplayDate:   timesheet.FormatDate(e.Date, showYear),
			Editable:      e.Editable(t),
		})
	}
	return views
}
