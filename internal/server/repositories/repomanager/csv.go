package repomanager

import (
	"context"

	"github.com/dmitrijs2005/timesheet/internal/server/repositories/entries"
)

// CSVRepositoryManager wraps the flat-file backend.
type CSVRepositoryManager struct {
	repo *entries.CSVRepository
}

// NewCSVRepositoryManager opens (or creates) the CSV file at path.
func NewCSVRepositoryManager(path string) (*CSVRepositoryManager, error) {
	repo, err := entries.NewCSVRepository(path)
	if err != nil {
		return nil, err
	}
	return &CSVRepositoryManager{repo: repo}, nil
}

func (m *CSVRepositoryManager) Entries() entries.Repository {
	return m.repo
}

// WithTx calls fn with the file repository; writes are not grouped.
func (m *CSVRepositoryManager) WithTx(ctx context.Context, fn func(ctx context.Context, repo entries.Repository) error) error {
	return fn(ctx, m.repo)
}

func (m *CSVRepositoryManager) Close() error {
	return nil
}
