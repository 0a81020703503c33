package services

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/timesheet/internal/common"
	"github.com/dmitrijs2005/timesheet/internal/logging"
	"github.com/dmitrijs2005/timesheet/internal/server/repositories/entries"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validInput() EntryInput {
	return EntryInput{
		Name:     " Alice ",
		Date:     "01/02/2024",
		FromTime: "09:00",
		ToTime:   "11:30",
		Duration: "ignored",
		Task:     "Dev",
	}
}

func TestEntryInput_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(in *EntryInput)
		wantErr bool
	}{
		{"valid range", func(in *EntryInput) {}, false},
		{"valid duration", func(in *EntryInput) { in.FromTime, in.ToTime, in.Duration = "", "", "1.5h" }, false},
		{"inverted range accepted", func(in *EntryInput) { in.FromTime, in.ToTime = "12:00", "10:00" }, false},
		{"missing name", func(in *EntryInput) { in.Name = "  " }, true},
		{"bad date", func(in *EntryInput) { in.Date = "someday" }, true},
		{"half range", func(in *EntryInput) { in.ToTime = "" }, true},
		{"bad clock", func(in *EntryInput) { in.FromTime = "9am" }, true},
		{"nothing to measure", func(in *EntryInput) { in.FromTime, in.ToTime, in.Duration = "", "", "" }, true},
		{"single-digit minutes", func(in *EntryInput) { in.FromTime, in.ToTime = "9:5", "10:30" }, false},
		{"full day", func(in *EntryInput) { in.FromTime, in.ToTime, in.Duration = "", "", "24:00" }, false},
		{"zero duration", func(in *EntryInput) { in.FromTime, in.ToTime, in.Duration = "", "", "0" }, false},
		{"huge duration", func(in *EntryInput) { in.FromTime, in.ToTime, in.Duration = "", "", "1e308" }, true},
		{"over a day", func(in *EntryInput) { in.FromTime, in.ToTime, in.Duration = "", "", "25" }, true},
		{"negative duration", func(in *EntryInput) { in.FromTime, in.ToTime, in.Duration = "", "", "-1" }, true},
		{"unparseable duration", func(in *EntryInput) { in.FromTime, in.ToTime, in.Duration = "", "", "junk" }, true},
		{"NaN duration", func(in *EntryInput) { in.FromTime, in.ToTime, in.Duration = "", "", "NaN" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(&in)
			err := in.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, common.ErrorValidation)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestEntryService_Add(t *testing.T) {
	ctx := context.Background()
	created := time.Date(2024, 1, 2, 12, 0, 0, 0, time.UTC)
	fixNow(t, created)

	repos := newCSVManager(t)
	files := newFakeStore()
	svc := NewEntryService(repos, files, logging.Discard(), 1<<20)

	e, err := svc.Add(ctx, validInput(), upload("Report.PDF", "data"))
	require.NoError(t, err)

	assert.NotEmpty(t, e.ID)
	assert.Equal(t, "Alice", e.Name)
	assert.Equal(t, "2024-01-02", e.Date)
	assert.Empty(t, e.Duration, "range wins over duration")
	assert.Equal(t, 2.5, e.Hours())
	assert.Equal(t, created, e.CreatedAt)
	assert.True(t, strings.HasPrefix(e.File, "entries/2024/1/2/"))
	assert.True(t, strings.HasSuffix(e.File, ".pdf"))
	assert.Equal(t, 1, files.len())

	stored, err := svc.Get(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, e, stored)
}

func TestEntryService_Add_Rejects(t *testing.T) {
	ctx := context.Background()
	files := newFakeStore()
	svc := NewEntryService(newCSVManager(t), files, logging.Discard(), 3)

	_, err := svc.Add(ctx, EntryInput{Date: "2024-01-01", Duration: "1"}, nil)
	assert.ErrorIs(t, err, common.ErrorValidation)

	_, err = svc.Add(ctx, validInput(), upload("a.txt", "too long"))
	assert.ErrorIs(t, err, common.ErrorFileTooLarge)
	assert.Zero(t, files.len())
}

func TestEntryService_Add_RemovesFileWhenCreateFails(t *testing.T) {
	files := newFakeStore()
	svc := NewEntryService(failingManager{newCSVManager(t)}, files, logging.Discard(), 1<<20)

	_, err := svc.Add(context.Background(), validInput(), upload("a.txt", "x"))
	require.Error(t, err)
	assert.Zero(t, files.len())
}

func TestEntryService_UpdateAndDelete_EditWindow(t *testing.T) {
	ctx := context.Background()
	created := time.Date(2024, 1, 2, 12, 0, 0, 0, time.UTC)
	fixNow(t, created)

	files := newFakeStore()
	svc := NewEntryService(newCSVManager(t), files, logging.Discard(), 1<<20)

	e, err := svc.Add(ctx, validInput(), upload("a.txt", "first"))
	require.NoError(t, err)
	oldFile := e.File

	fixNow(t, created.Add(23*time.Hour))
	in := validInput()
	in.FromTime, in.ToTime, in.Duration = "", "", "3h"
	updated, err := svc.Update(ctx, e.ID, in, upload("b.txt", "second"))
	require.NoError(t, err)
	assert.Equal(t, 3.0, updated.Hours())
	assert.Equal(t, created, updated.CreatedAt, "creation time is kept")
	assert.NotEqual(t, oldFile, updated.File)
	assert.Equal(t, 1, files.len(), "replaced attachment is removed")

	fixNow(t, created.Add(24*time.Hour))
	_, err = svc.Update(ctx, e.ID, in, nil)
	assert.ErrorIs(t, err, common.ErrorEditWindowClosed)
	assert.ErrorIs(t, svc.Delete(ctx, e.ID), common.ErrorEditWindowClosed)

	fixNow(t, created.Add(time.Hour))
	require.NoError(t, svc.Delete(ctx, e.ID))
	assert.Zero(t, files.len())

	_, err = svc.Get(ctx, e.ID)
	assert.ErrorIs(t, err, common.ErrorNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, e.ID), common.ErrorNotFound)
}

func TestEntryService_List_NewestFirst(t *testing.T) {
	ctx := context.Background()
	svc := NewEntryService(newCSVManager(t), newFakeStore(), logging.Discard(), 1<<20)

	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	for i, date := range []string{"2024-01-05", "2024-02-01", "2024-01-05"} {
		fixNow(t, base.Add(time.Duration(i)*time.Minute))
		in := validInput()
		in.Date = date
		in.Task = date
		_, err := svc.Add(ctx, in, nil)
		require.NoError(t, err)
	}

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "2024-02-01", list[0].Date)
	assert.Equal(t, base.Add(2*time.Minute), list[1].CreatedAt)
	assert.Equal(t, base, list[2].CreatedAt)
}

func TestEntryService_AttachmentURL(t *testing.T) {
	ctx := context.Background()
	svc := NewEntryService(newCSVManager(t), newFakeStore(), logging.Discard(), 1<<20)

	with, err := svc.Add(ctx, validInput(), upload("a.txt", "x"))
	require.NoError(t, err)
	without, err := svc.Add(ctx, validInput(), nil)
	require.NoError(t, err)

	url, err := svc.AttachmentURL(ctx, with.ID)
	require.NoError(t, err)
	assert.Equal(t, "/files/"+with.File, url)

	_, err = svc.AttachmentURL(ctx, without.ID)
	assert.ErrorIs(t, err, common.ErrorNotFound)
	_, err = svc.AttachmentURL(ctx, "missing")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestEntryService_ImportExport(t *testing.T) {
	ctx := context.Background()
	stamp := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	fixNow(t, stamp)

	svc := NewEntryService(newCSVManager(t), newFakeStore(), logging.Discard(), 1<<20)

	in := "Worker,Date,Start,End,Hours\n" +
		"Alice,01/02/2024,09:00,10:00,\n" +
		",2024-01-03,,,2\n" +
		"Bob,2024-01-03,,,1.5h\n"
	res, err := svc.Import(ctx, strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, ImportResult{Imported: 2, Skipped: 1}, res, "rows without a name are skipped")

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	for _, e := range list {
		assert.NotEmpty(t, e.ID)
		assert.Equal(t, stamp, e.CreatedAt)
	}

	var buf bytes.Buffer
	require.NoError(t, svc.Export(ctx, &buf))
	decoded, err := entries.DecodeCSV(&buf)
	require.NoError(t, err)
	assert.ElementsMatch(t, list, decoded)

	_, err = svc.Import(ctx, strings.NewReader("Date,Hours\n2024-01-01,1\n"))
	assert.ErrorIs(t, err, common.ErrorValidation)
}

func TestEntryService_Import_ReimportedExportIsSkipped(t *testing.T) {
	ctx := context.Background()
	fixNow(t, time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC))
	svc := NewEntryService(newCSVManager(t), newFakeStore(), logging.Discard(), 1<<20)

	_, err := svc.Import(ctx, strings.NewReader("Name,Date,Duration\nAlice,2024-01-02,1\nBob,2024-01-03,2\n"))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, svc.Export(ctx, &buf))

	res, err := svc.Import(ctx, bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, ImportResult{Imported: 0, Skipped: 2}, res)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestEntryService_Import_DuplicateIDInFile(t *testing.T) {
	ctx := context.Background()
	svc := NewEntryService(newCSVManager(t), newFakeStore(), logging.Discard(), 1<<20)

	in := "ID,Name,Date,Duration\n" +
		"x1,Alice,2024-01-02,1\n" +
		"x1,Alice,2024-01-02,1\n" +
		"x2,Bob,2024-01-03,2\n"
	res, err := svc.Import(ctx, strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, ImportResult{Imported: 2, Skipped: 1}, res)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestEntryService_Import_RejectsOutOfRangeDuration(t *testing.T) {
	ctx := context.Background()
	svc := NewEntryService(newCSVManager(t), newFakeStore(), logging.Discard(), 1<<20)

	_, err := svc.Import(ctx, strings.NewReader("Name,Date,Duration\nAlice,2024-01-02,1\nBob,2024-01-03,1e308\n"))
	require.ErrorIs(t, err, common.ErrorValidation)
	assert.Contains(t, err.Error(), "row 2")

	list, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list, "nothing is stored from a rejected file")

	res, err := svc.Import(ctx, strings.NewReader("Name,Date,Duration\nAlice,2024-01-02,bogus\n"))
	require.NoError(t, err)
	assert.Equal(t, 1, res.Imported, "unparseable durations keep the zero-hour fallback")
}

func TestEntryService_Update_RepeatedInsideWindow(t *testing.T) {
	ctx := context.Background()
	created := time.Date(2024, 1, 2, 12, 0, 0, 0, time.UTC)
	fixNow(t, created)
	svc := NewEntryService(newCSVManager(t), newFakeStore(), logging.Discard(), 1<<20)

	e, err := svc.Add(ctx, validInput(), nil)
	require.NoError(t, err)

	in := validInput()
	for i, d := range []string{"1h", "2h", "3h"} {
		fixNow(t, created.Add(time.Duration(i+1)*time.Hour))
		in.FromTime, in.ToTime, in.Duration = "", "", d
		_, err := svc.Update(ctx, e.ID, in, nil)
		require.NoError(t, err)
	}

	got, err := svc.Get(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, 3.0, got.Hours())
	assert.Equal(t, created, got.CreatedAt)
}

func TestIsClientError(t *testing.T) {
	assert.True(t, IsClientError(common.ErrorValidation))
	assert.True(t, IsClientError(common.ErrorEditWindowClosed))
	assert.True(t, IsClientError(common.ErrorAlreadyExists))
	assert.False(t, IsClientError(common.ErrorInternal))
}
