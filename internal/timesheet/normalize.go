// Package timesheet contains the reporting core of the time tracker: tolerant
// date and duration normalization and the aggregation of entries into daily,
// weekly and weekday hour totals.
//
// Nothing in this package returns an error. Malformed input resolves to a
// named fallback value (today's date, zero hours) so that a single bad row
// degrades a report instead of failing the request.
package timesheet

import (
	"math"
	"strconv"
	"strings"
	"time"
)

const (
	// CanonicalLayout is the normalized date form used as an aggregation key.
	CanonicalLayout = "2006-01-02"

	// ClockLayout is the wall-clock format from/to times are written in.
	ClockLayout = "15:04"

	// clockParseLayout also accepts single-digit minutes, as in "9:5".
	clockParseLayout = "15:4"

	// FallbackHours is returned for any duration that cannot be parsed.
	FallbackHours = 0.0

	// DefaultReferenceYear is the year whose dates are displayed without
	// a year component.
	DefaultReferenceYear = 2025
)

// dateLayouts lists the authored date formats in precedence order. The first
// layout that parses wins, so "01-02-2024" is always January 2.
var dateLayouts = []string{
	"2006-1-2",
	"1-2-2006",
	"2-1-2006",
	"1/2/2006",
	"2/1/2006",
}

// isoLayouts are tried after dateLayouts fail.
var isoLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"20060102",
}

// now is replaced in tests.
var now = time.Now

// FallbackDate is the date an unparseable date string resolves to: today.
func FallbackDate() time.Time {
	return midnight(now())
}

func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses text using the fixed format precedence list and then
// generic ISO-8601 forms. The result is a UTC midnight date. When nothing
// matches, ParseDate returns FallbackDate() and false.
func ParseDate(text string) (time.Time, bool) {
	s := strings.TrimSpace(text)
	if s != "" {
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return midnight(t), true
			}
		}
		for _, layout := range isoLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return midnight(t), true
			}
		}
	}
	return FallbackDate(), false
}

// CanonicalDate returns text as YYYY-MM-DD.
func CanonicalDate(text string) string {
	t, _ := ParseDate(text)
	return t.Format(CanonicalLayout)
}

// FormatDate returns the display form MM/DD, or MM/DD/YYYY when showYear is set.
func FormatDate(text string, showYear bool) string {
	t, _ := ParseDate(text)
	if showYear {
		return t.Format("01/02/2006")
	}
	return t.Format("01/02")
}

// FormatDateLong returns "<day> <Month>", e.g. "2 January".
func FormatDateLong(text string) string {
	t, _ := ParseDate(text)
	return t.Format("2 January")
}

// ShowYear reports whether any of the dates falls outside referenceYear.
func ShowYear(dates []string, referenceYear int) bool {
	for _, d := range dates {
		t, _ := ParseDate(d)
		if t.Year() != referenceYear {
			return true
		}
	}
	return false
}

// WeekStart returns the Monday on or before t.
func WeekStart(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7
	return midnight(t).AddDate(0, 0, -offset)
}

// Hours returns the same-day difference between two HH:MM clock values in
// hours. The difference is taken in whole seconds. If to precedes from the
// result is negative. An unparseable clock value yields FallbackHours.
func Hours(from, to string) float64 {
	f, ok := ParseClock(from)
	if !ok {
		return FallbackHours
	}
	t, ok := ParseClock(to)
	if !ok {
		return FallbackHours
	}
	seconds := int64(t.Sub(f) / time.Second)
	return float64(seconds) / 3600
}

// ParseClock parses an H:MM or HH:MM wall-clock value.
func ParseClock(text string) (time.Time, bool) {
	t, err := time.Parse(clockParseLayout, strings.TrimSpace(text))
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// durationSuffixes are stripped in this order so "hours" does not leave "ours".
var durationSuffixes = []string{"hours", "hrs", "h"}

// ParseDuration parses "H:MM", decimal hours ("1.5") or a suffixed form
// ("2h", "1.5 hrs"). Anything malformed yields FallbackHours.
func ParseDuration(text string) float64 {
	v, _ := ParseDurationOK(text)
	return v
}

// ParseDurationOK is ParseDuration that also reports whether text parsed.
// The value is always finite.
func ParseDurationOK(text string) (float64, bool) {
	s := strings.ToLower(text)
	for _, suffix := range durationSuffixes {
		s = strings.ReplaceAll(s, suffix, "")
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return FallbackHours, false
	}

	if strings.Contains(s, ":") {
		parts := strings.SplitN(s, ":", 2)
		h, err := strconv.Atoi(strings.TrimSpace(parts[0]))
		if err != nil {
			return FallbackHours, false
		}
		m, err := strconv.Atoi(strings.TrimSpace(parts[1]))
		if err != nil {
			return FallbackHours, false
		}
		return float64(h) + float64(m)/60, true
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return FallbackHours, false
	}
	return v, true
}

// maxHM bounds HoursToHM so the minute count fits in an int64.
const maxHM = 1e12

// HoursToHM formats hours as "H:MM". The total minute count is rounded
// before splitting, so 1.999 becomes "2:00". NaN formats as "0:00" and
// magnitudes beyond maxHM are clamped.
func HoursToHM(hours float64) string {
	if math.IsNaN(hours) {
		return "0:00"
	}
	hours = math.Max(-maxHM, math.Min(maxHM, hours))
	total := int64(math.Round(hours * 60))
	sign := ""
	if total < 0 {
		sign = "-"
		total = -total
	}
	h, m := total/60, total%60
	return sign + strconv.FormatInt(h, 10) + ":" + pad2(m)
}

func pad2(n int64) string {
	if n < 10 {
		return "0" + strconv.FormatInt(n, 10)
	}
	return strconv.FormatInt(n, 10)
}

// EditWindow is how long after creation an entry may still be changed.
const EditWindow = 24 * time.Hour

// Editable reports whether an entry created at createdAt may be edited at t.
// A zero createdAt is never editable.
func Editable(createdAt, t time.Time) bool {
	if createdAt.IsZero() {
		return false
	}
	return t.Sub(createdAt) < EditWindow
}
