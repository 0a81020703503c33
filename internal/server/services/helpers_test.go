package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/timesheet/internal/server/models"
	"github.com/dmitrijs2005/timesheet/internal/server/repositories/entries"
	"github.com/dmitrijs2005/timesheet/internal/server/repositories/repomanager"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	putErr  error
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: map[string][]byte{}}
}

func (f *fakeStore) Put(ctx context.Context, key, contentType string, body io.Reader, size int64) error {
	if f.putErr != nil {
		return f.putErr
	}
	b, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[key] = b
	return nil
}

func (f *fakeStore) URL(ctx context.Context, key string) (string, error) {
	return "/files/" + key, nil
}

func (f *fakeStore) Delete(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, key)
	return nil
}

func (f *fakeStore) len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.objects)
}

// failingRepo rejects writes.
type failingRepo struct {
	entries.Repository
}

func (failingRepo) Create(ctx context.Context, e *models.Entry) error {
	return errors.New("disk full")
}

type failingManager struct {
	repomanager.RepositoryManager
}

func (m failingManager) Entries() entries.Repository {
	return failingRepo{m.RepositoryManager.Entries()}
}

func newCSVManager(t *testing.T) *repomanager.CSVRepositoryManager {
	t.Helper()
	m, err := repomanager.NewCSVRepositoryManager(filepath.Join(t.TempDir(), "time_log.csv"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Close() })
	return m
}

func fixNow(t *testing.T, at time.Time) {
	t.Helper()
	orig := now
	now = func() time.Time { return at }
	t.Cleanup(func() { now = orig })
}

func upload(name, body string) *models.Upload {
	return &models.Upload{
		Filename:    name,
		ContentType: "text/plain",
		Size:        int64(len(body)),
		Body:        bytes.NewBufferString(body),
	}
}

