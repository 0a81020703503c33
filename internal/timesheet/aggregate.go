package timesheet

import (
	"time"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Entry is the immutable view of a logged work session the aggregator works
// on. Date, FromTime, ToTime and Duration carry the raw authored text.
type Entry struct {
	Name     string
	Date     string
	FromTime string
	ToTime   string
	Duration string
}

// Hours returns the entry's length. A from/to pair takes precedence over
// the duration string.
func (e Entry) Hours() float64 {
	if e.FromTime != "" && e.ToTime != "" {
		return Hours(e.FromTime, e.ToTime)
	}
	return ParseDuration(e.Duration)
}

// Summary maps a period key (date, week start or weekday label) to per-name
// hour totals.
type Summary map[string]map[string]float64

func (s Summary) add(key, name string, hours float64) {
	row, ok := s[key]
	if !ok {
		row = make(map[string]float64)
		s[key] = row
	}
	row[name] += hours
}

// Weekdays holds the weekday labels in report order.
var Weekdays = []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

func weekdayLabel(t time.Time) string {
	return Weekdays[(int(t.Weekday())+6)%7]
}

// DailySummary sums hours per canonical date and name.
func DailySummary(entries []Entry) Summary {
	s := Summary{}
	for _, e := range entries {
		s.add(CanonicalDate(e.Date), e.Name, e.Hours())
	}
	return s
}

// WeeklySummary sums hours per Monday week start and name.
func WeeklySummary(entries []Entry) Summary {
	s := Summary{}
	for _, e := range entries {
		d, _ := ParseDate(e.Date)
		s.add(WeekStart(d).Format(CanonicalLayout), e.Name, e.Hours())
	}
	return s
}

// WeekdaySummary sums hours per weekday label (Mon..Sun) and name.
func WeekdaySummary(entries []Entry) Summary {
	s := Summary{}
	for _, e := range entries {
		d, _ := ParseDate(e.Date)
		s.add(weekdayLabel(d), e.Name, e.Hours())
	}
	return s
}

// WeekList returns the week starts that have at least one entry, ascending.
func WeekList(entries []Entry) []string {
	return SortedKeys(WeeklySummary(entries))
}

// InWeek returns the entries dated within [start, start+6].
func InWeek(entries []Entry, start time.Time) []Entry {
	from := midnight(start)
	to := from.AddDate(0, 0, 6)
	var out []Entry
	for _, e := range entries {
		d, _ := ParseDate(e.Date)
		if d.Before(from) || d.After(to) {
			continue
		}
		out = append(out, e)
	}
	return out
}

// WeekData returns weekday totals for the seven days starting at start.
func WeekData(entries []Entry, start time.Time) Summary {
	return WeekdaySummary(InWeek(entries, start))
}

// Names returns the distinct worker names, sorted.
func Names(entries []Entry) []string {
	seen := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		seen[e.Name] = struct{}{}
	}
	names := maps.Keys(seen)
	slices.Sort(names)
	return names
}

// SortedKeys returns the summary keys in ascending order. Date and week keys
// are canonical YYYY-MM-DD strings, so lexical order is calendar order.
func SortedKeys(s Summary) []string {
	keys := maps.Keys(s)
	slices.Sort(keys)
	return keys
}

// WeekdayKeys returns the weekday labels present in s in Mon..Sun order.
func WeekdayKeys(s Summary) []string {
	keys := make([]string, 0, len(s))
	for _, d := range Weekdays {
		if _, ok := s[d]; ok {
			keys = append(keys, d)
		}
	}
	return keys
}

// Matrix is a dense keys × names grid of hours. Hours[name][i] holds the
// total for Keys[i]; missing combinations are zero.
type Matrix struct {
	Keys  []string             `json:"keys"`
	Names []string             `json:"names"`
	Hours map[string][]float64 `json:"hours"`
}

// Densify lays s out over keys and names, filling gaps with zero. Nil keys
// or names are laid out as empty so the matrix encodes as [] rather than null.
func Densify(s Summary, keys, names []string) Matrix {
	if keys == nil {
		keys = []string{}
	}
	if names == nil {
		names = []string{}
	}
	m := Matrix{
		Keys:  keys,
		Names: names,
		Hours: make(map[string][]float64, len(names)),
	}
	for _, n := range names {
		row := make([]float64, len(keys))
		for i, k := range keys {
			row[i] = s[k][n]
		}
		m.Hours[n] = row
	}
	return m
}

// Rows returns the matrix one row per key: the key followed by each name's hours.
func (m Matrix) Rows() [][]any {
	rows := make([][]any, 0, len(m.Keys))
	for i, k := range m.Keys {
		row := make([]any, 0, len(m.Names)+1)
		row = append(row, k)
		for _, n := range m.Names {
			row = append(row, m.Hours[n][i])
		}
		rows = append(rows, row)
	}
	return rows
}

// Totals returns each key's total over all names.
func (m Matrix) Totals() []float64 {
	totals := make([]float64, len(m.Keys))
	for _, n := range m.Names {
		for i, h := range m.Hours[n] {
			totals[i] += h
		}
	}
	return totals
}

// DailyMatrix is the dense daily report over every name in entries.
func DailyMatrix(entries []Entry) Matrix {
	s := DailySummary(entries)
	return Densify(s, SortedKeys(s), Names(entries))
}

// WeeklyMatrix is the dense weekly report over every name in entries.
func WeeklyMatrix(entries []Entry) Matrix {
	s := WeeklySummary(entries)
	return Densify(s, SortedKeys(s), Names(entries))
}

// WeekdayMatrix is the dense weekday report over every name in entries.
func WeekdayMatrix(entries []Entry) Matrix {
	s := WeekdaySummary(entries)
	return Densify(s, WeekdayKeys(s), Names(entries))
}

// Day is one column of a WeekView.
type Day struct {
	Date      string `json:"date"`
	Label     string `json:"label"`
	LongLabel string `json:"long_label"`
}

// WeekView is the seven-day report starting at Start. All days are present
// and every name seen in the full entry set has a row.
type WeekView struct {
	Start  string               `json:"start"`
	Days   []Day                `json:"days"`
	Names  []string             `json:"names"`
	Hours  map[string][]float64 `json:"hours"`
	Totals []float64            `json:"totals"`
}

// BuildWeekView assembles the week beginning at start.
func BuildWeekView(entries []Entry, start time.Time) WeekView {
	from := midnight(start)
	s := WeekData(entries, from)

	days := make([]Day, 0, len(Weekdays))
	for i := range Weekdays {
		d := from.AddDate(0, 0, i)
		date := d.Format(CanonicalLayout)
		days = append(days, Day{
			Date:      date,
			Label:     weekdayLabel(d),
			LongLabel: FormatDateLong(date),
		})
	}

	labels := make([]string, len(days))
	for i, d := range days {
		labels[i] = d.Label
	}
	m := Densify(s, labels, Names(entries))

	return WeekView{
		Start:  from.Format(CanonicalLayout),
		Days:   days,
		Names:  m.Names,
		Hours:  m.Hours,
		Totals: m.Totals(),
	}
}
