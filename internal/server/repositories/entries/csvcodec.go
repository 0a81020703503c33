package entries

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/timesheet/internal/server/models"
)

// Header is the column layout written to CSV files. The first seven columns
// match the original time_log.csv format.
var Header = []string{"Name", "Email", "Date", "From Time", "To Time", "Task", "Description", "Duration", "File", "Created At", "ID"}

type column int

const (
	colName column = iota
	colEmail
	colDate
	colFrom
	colTo
	colTask
	colDescription
	colDuration
	colFile
	colCreatedAt
	colID
)

// headerAliases maps normalized header names to columns so files exported
// by spreadsheets or other tools can be imported.
var headerAliases = map[string]column{
	"name":        colName,
	"worker":      colName,
	"employee":    colName,
	"email":       colEmail,
	"date":        colDate,
	"day":         colDate,
	"fromtime":    colFrom,
	"from":        colFrom,
	"start":       colFrom,
	"starttime":   colFrom,
	"totime":      colTo,
	"to":          colTo,
	"end":         colTo,
	"endtime":     colTo,
	"task":        colTask,
	"project":     colTask,
	"description": colDescription,
	"desc":        colDescription,
	"notes":       colDescription,
	"duration":    colDuration,
	"hours":       colDuration,
	"time":        colDuration,
	"file":        colFile,
	"attachment":  colFile,
	"createdat":   colCreatedAt,
	"created":     colCreatedAt,
	"id":          colID,
}

// ErrNoNameColumn is returned for CSV input without a recognizable name column.
var ErrNoNameColumn = errors.New("csv: no name column")

func normalizeHeader(h string) string {
	h = strings.TrimPrefix(h, "\ufeff")
	h = strings.ToLower(strings.TrimSpace(h))
	return strings.NewReplacer(" ", "", "_", "", "-", "").Replace(h)
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
}

// ParseTimestamp accepts RFC 3339 and ISO forms without a zone (read as UTC).
// Unparseable input yields the zero time.
func ParseTimestamp(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(n, 0).UTC()
	}
	return time.Time{}
}

// FormatTimestamp is the inverse of ParseTimestamp; zero time is "".
func FormatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

// DecodeCSV reads entries from r. Columns are matched by header name,
// case-insensitively, and may appear in any order. Rows are returned as
// written; missing columns stay empty.
func DecodeCSV(r io.Reader) ([]*models.Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("csv header: %w", err)
	}

	index := make(map[column]int, len(header))
	for i, h := range header {
		if c, ok := headerAliases[normalizeHeader(h)]; ok {
			if _, dup := index[c]; !dup {
				index[c] = i
			}
		}
	}
	if _, ok := index[colName]; !ok {
		return nil, ErrNoNameColumn
	}

	var result []*models.Entry
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("csv row: %w", err)
		}
		if blank(rec) {
			continue
		}

		get := func(c column) string {
			i, ok := index[c]
			if !ok || i >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[i])
		}

		result = append(result, &models.Entry{
			ID:          get(colID),
			Name:        get(colName),
			Email:       get(colEmail),
			Date:        get(colDate),
			FromTime:    get(colFrom),
			ToTime:      get(colTo),
			Duration:    get(colDuration),
			Task:        get(colTask),
			Description: get(colDescription),
			File:        get(colFile),
			CreatedAt:   ParseTimestamp(get(colCreatedAt)),
		})
	}
	return result, nil
}

func blank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// EncodeCSV writes entries to w under Header.
func EncodeCSV(w io.Writer, entries []*models.Entry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, e := range entries {
		if err := cw.Write(record(e)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func record(e *models.Entry) []string {
	return []string{
		e.Name, e.Email, e.Date, e.FromTime, e.ToTime, e.Task, e.Description,
		e.Duration, e.File, FormatTimestamp(e.CreatedAt), e.ID,
	}
}
