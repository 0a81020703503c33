package entries

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"sync"

	"github.com/dmitrijs2005/timesheet/internal/common"
	"github.com/dmitrijs2005/timesheet/internal/filex"
	"github.com/dmitrijs2005/timesheet/internal/server/models"
)

// CSVRepository stores entries in a single CSV file. Every read loads the
// whole file and every write rewrites it atomically (temp file + rename).
// A mutex serializes access within the process.
type CSVRepository struct {
	path string
	mu   sync.Mutex
}

// NewCSVRepository opens path, creating it with just the header row if it
// does not exist.
func NewCSVRepository(path string) (*CSVRepository, error) {
	r := &CSVRepository{path: path}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := r.save(nil); err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, fmt.Errorf("storage error: %w", err)
	}
	return r, nil
}

// Path returns the backing file name.
func (r *CSVRepository) Path() string {
	return r.path
}

func (r *CSVRepository) load() ([]*models.Entry, error) {
	data, err := os.ReadFile(r.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage error reading %s: %w", r.path, err)
	}

	entries, err := DecodeCSV(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("storage error parsing %s: %w", r.path, err)
	}
	// Legacy rows carry no ID; derive one from the row position.
	for i, e := range entries {
		if e.ID == "" {
			e.ID = "row-" + strconv.Itoa(i+1)
		}
	}
	return entries, nil
}

func (r *CSVRepository) save(entries []*models.Entry) error {
	var buf bytes.Buffer
	if err := EncodeCSV(&buf, entries); err != nil {
		return fmt.Errorf("storage error encoding csv: %w", err)
	}
	if err := filex.WriteAtomic(r.path, buf.Bytes()); err != nil {
		return fmt.Errorf("storage error: %w", err)
	}
	return nil
}

// List returns all entries in file order.
func (r *CSVRepository) List(ctx context.Context) ([]*models.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.load()
}

// GetByID returns the entry with the given ID.
func (r *CSVRepository) GetByID(ctx context.Context, id string) (*models.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries, err := r.load()
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		if e.ID == id {
			return e, nil
		}
	}
	return nil, common.ErrorNotFound
}

// Create appends entry. The caller assigns the ID.
func (r *CSVRepository) Create(ctx context.Context, entry *models.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries, err := r.load()
	if err != nil {
		return err
	}
	for _, e := range entries {
		if e.ID == entry.ID {
			return fmt.Errorf("%w: entry %s", common.ErrorAlreadyExists, entry.ID)
		}
	}
	return r.save(append(entries, entry))
}

// Update replaces the row with entry.ID.
func (r *CSVRepository) Update(ctx context.Context, entry *models.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries, err := r.load()
	if err != nil {
		return err
	}
	for i, e := range entries {
		if e.ID == entry.ID {
			entries[i] = entry
			return r.save(entries)
		}
	}
	return common.ErrorNotFound
}

// Delete removes the row with the given ID.
func (r *CSVRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries, err := r.load()
	if err != nil {
		return err
	}
	for i, e := range entries {
		if e.ID == id {
			return r.save(append(entries[:i], entries[i+1:]...))
		}
	}
	return common.ErrorNotFound
}
