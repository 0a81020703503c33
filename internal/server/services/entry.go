// Package services contains the server-side business logic: the entry
// lifecycle (create, edit inside the 24h window, delete, CSV import/export)
// and the report builders on top of the aggregation core.
package services

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dmitrijs2005/timesheet/internal/common"
	"github.com/dmitrijs2005/timesheet/internal/logging"
	"github.com/dmitrijs2005/timesheet/internal/server/attachments"
	"github.com/dmitrijs2005/timesheet/internal/server/models"
	"github.com/dmitrijs2005/timesheet/internal/server/repositories/entries"
	"github.com/dmitrijs2005/timesheet/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/timesheet/internal/timesheet"
	"github.com/google/uuid"
	"golang.org/x/exp/slices"
)

var now = time.Now

// MaxEntryHours bounds the duration a single entry may record.
const MaxEntryHours = 24.0

// EntryInput is the user-editable part of an entry, as submitted by a form.
type EntryInput struct {
	Name        string
	Email       string
	Date        string
	FromTime    string
	ToTime      string
	Duration    string
	Task        string
	Description string
}

// Validate checks the fields a new or edited entry must carry. Inverted
// time ranges are accepted and report as negative hours.
func (in *EntryInput) Validate() error {
	var problems []string
	if strings.TrimSpace(in.Name) == "" {
		problems = append(problems, "name is required")
	}
	if _, ok := timesheet.ParseDate(in.Date); !ok {
		problems = append(problems, "date is invalid")
	}

	hasRange := in.FromTime != "" || in.ToTime != ""
	switch {
	case hasRange:
		if !validClock(in.FromTime) || !validClock(in.ToTime) {
			problems = append(problems, "from and to must be HH:MM")
		}
	case strings.TrimSpace(in.Duration) == "":
		problems = append(problems, "a time range or duration is required")
	default:
		if _, ok := timesheet.ParseDurationOK(in.Duration); !ok {
			problems = append(problems, "duration is invalid")
		} else if !durationInRange(in.Duration) {
			problems = append(problems, "duration must be between 0 and 24 hours")
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", common.ErrorValidation, strings.Join(problems, "; "))
	}
	return nil
}

func validClock(s string) bool {
	_, ok := timesheet.ParseClock(s)
	return ok
}

// durationInRange reports whether a parseable duration lies in [0, MaxEntryHours].
// Unparseable text is treated as in range.
func durationInRange(s string) bool {
	h, ok := timesheet.ParseDurationOK(s)
	return !ok || (h >= 0 && h <= MaxEntryHours)
}

func (in *EntryInput) apply(e *models.Entry) {
	e.Name = strings.TrimSpace(in.Name)
	e.Email = strings.TrimSpace(in.Email)
	e.Date = timesheet.CanonicalDate(in.Date)
	e.FromTime = strings.TrimSpace(in.FromTime)
	e.ToTime = strings.TrimSpace(in.ToTime)
	e.Duration = strings.TrimSpace(in.Duration)
	e.Task = strings.TrimSpace(in.Task)
	e.Description = strings.TrimSpace(in.Description)
	if e.FromTime != "" {
		e.Duration = ""
	}
}

// EntryService manages the entry lifecycle over a storage backend and an
// attachment store.
type EntryService struct {
	repos         repomanager.RepositoryManager
	files         attachments.Store
	logger        logging.Logger
	maxUploadSize int64
}

func NewEntryService(repos repomanager.RepositoryManager, files attachments.Store, logger logging.Logger, maxUploadSize int64) *EntryService {
	return &EntryService{
		repos:         repos,
		files:         files,
		logger:        logger.With("module", "entries"),
		maxUploadSize: maxUploadSize,
	}
}

// List returns every entry, newest date first; same-day entries keep
// creation order, newest first.
func (s *EntryService) List(ctx context.Context) ([]*models.Entry, error) {
	list, err := s.repos.Entries().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	slices.SortStableFunc(list, func(a, b *models.Entry) int {
		if c := cmp.Compare(timesheet.CanonicalDate(b.Date), timesheet.CanonicalDate(a.Date)); c != 0 {
			return c
		}
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return list, nil
}

// Get returns one entry.
func (s *EntryService) Get(ctx context.Context, id string) (*models.Entry, error) {
	return s.repos.Entries().GetByID(ctx, id)
}

func (s *EntryService) store(ctx context.Context, upload *models.Upload, at time.Time) (string, error) {
	if upload == nil || upload.Body == nil || upload.Size == 0 {
		return "", nil
	}
	if upload.Size > s.maxUploadSize {
		return "", common.ErrorFileTooLarge
	}
	key := attachments.NewKey(upload.Filename, at)
	if err := s.files.Put(ctx, key, upload.ContentType, io.LimitReader(upload.Body, s.maxUploadSize), upload.Size); err != nil {
		return "", fmt.Errorf("store attachment: %w", err)
	}
	return key, nil
}

func (s *EntryService) discard(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := s.files.Delete(ctx, key); err != nil {
		s.logger.Warn(ctx, "attachment cleanup failed", "key", key, "error", err)
	}
}

// Add validates in, stores the optional upload and creates the entry.
func (s *EntryService) Add(ctx context.Context, in EntryInput, upload *models.Upload) (*models.Entry, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	created := now()
	e := &models.Entry{ID: uuid.NewString(), CreatedAt: created.UTC()}
	in.apply(e)

	key, err := s.store(ctx, upload, created)
	if err != nil {
		return nil, err
	}
	e.File = key

	if err := s.repos.Entries().Create(ctx, e); err != nil {
		s.discard(ctx, key)
		return nil, fmt.Errorf("create entry: %w", err)
	}

	s.logger.Info(ctx, "entry created", "id", e.ID, "name", e.Name, "date", e.Date, "hours", e.Hours())
	return e, nil
}

// Update changes an entry created less than timesheet.EditWindow ago.
// A non-empty upload replaces the existing attachment.
func (s *EntryService) Update(ctx context.Context, id string, in EntryInput, upload *models.Upload) (*models.Entry, error) {
	e, err := s.editable(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}

	updated := *e
	in.apply(&updated)

	key, err := s.store(ctx, upload, now())
	if err != nil {
		return nil, err
	}
	if key != "" {
		updated.File = key
	}

	if err := s.repos.Entries().Update(ctx, &updated); err != nil {
		s.discard(ctx, key)
		return nil, fmt.Errorf("update entry: %w", err)
	}
	if key != "" {
		s.discard(ctx, e.File)
	}

	s.logger.Info(ctx, "entry updated", "id", id)
	return &updated, nil
}

// Delete removes an entry still inside its edit window, and its attachment.
func (s *EntryService) Delete(ctx context.Context, id string) error {
	e, err := s.editable(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repos.Entries().Delete(ctx, id); err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}
	s.discard(ctx, e.File)

	s.logger.Info(ctx, "entry deleted", "id", id)
	return nil
}

func (s *EntryService) editable(ctx context.Context, id string) (*models.Entry, error) {
	e, err := s.repos.Entries().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !e.Editable(now()) {
		return nil, common.ErrorEditWindowClosed
	}
	return e, nil
}

// AttachmentURL returns a download link for the entry's attachment.
func (s *EntryService) AttachmentURL(ctx context.Context, id string) (string, error) {
	e, err := s.repos.Entries().GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	if e.File == "" {
		return "", common.ErrorNotFound
	}
	return s.files.URL(ctx, e.File)
}

// ImportResult counts the outcome of an Import.
type ImportResult struct {
	Imported int `json:"imported"`
	// Skipped rows had no name or carried an ID that is already stored.
	Skipped int `json:"skipped"`
}

// Import reads a CSV export (any supported header layout) and stores every
// row in one transaction where the backend supports it. Rows without an ID
// get one; rows without a creation time are stamped now. Imported rows keep
// their authored date text. Rows whose ID already exists are skipped, so
// re-importing an export is a no-op.
func (s *EntryService) Import(ctx context.Context, r io.Reader) (ImportResult, error) {
	var res ImportResult
	rows, err := entries.DecodeCSV(r)
	if err != nil {
		return res, fmt.Errorf("%w: %v", common.ErrorValidation, err)
	}

	stamp := now().UTC()
	var batch []*models.Entry
	for i, e := range rows {
		if e.Name == "" {
			res.Skipped++
			continue
		}
		if !durationInRange(e.Duration) {
			return res, fmt.Errorf("%w: row %d: duration %q must be between 0 and 24 hours", common.ErrorValidation, i+1, e.Duration)
		}
		if e.ID == "" {
			e.ID = uuid.NewString()
		}
		if e.CreatedAt.IsZero() {
			e.CreatedAt = stamp
		}
		batch = append(batch, e)
	}

	// Known IDs are looked up rather than left to fail on insert: a failed
	// statement aborts the whole transaction on Postgres.
	err = s.repos.WithTx(ctx, func(ctx context.Context, repo entries.Repository) error {
		seen := make(map[string]struct{}, len(batch))
		for _, e := range batch {
			if _, dup := seen[e.ID]; dup {
				res.Skipped++
				continue
			}
			seen[e.ID] = struct{}{}

			_, err := repo.GetByID(ctx, e.ID)
			switch {
			case err == nil:
				res.Skipped++
				continue
			case !errors.Is(err, common.ErrorNotFound):
				return err
			}
			if err := repo.Create(ctx, e); err != nil {
				return err
			}
			res.Imported++
		}
		return nil
	})
	if err != nil {
		return ImportResult{}, fmt.Errorf("import entries: %w", err)
	}

	s.logger.Info(ctx, "entries imported", "count", res.Imported, "skipped", res.Skipped)
	return res, nil
}

// Export writes every entry, in storage order, as CSV.
func (s *EntryService) Export(ctx context.Context, w io.Writer) error {
	list, err := s.repos.Entries().List(ctx)
	if err != nil {
		return fmt.Errorf("list entries: %w", err)
	}
	return entries.EncodeCSV(w, list)
}

// IsClientError reports whether err is caused by the request rather than the server.
func IsClientError(err error) bool {
	return errors.Is(err, common.ErrorValidation) ||
		errors.Is(err, common.ErrorNotFound) ||
		errors.Is(err, common.ErrorAlreadyExists) ||
		errors.Is(err, common.ErrorEditWindowClosed) ||
		errors.Is(err, common.ErrorFileTooLarge)
}
