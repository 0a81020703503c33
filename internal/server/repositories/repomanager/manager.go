// Package repomanager picks and opens the storage backend at process start
// and vends the entry repository bound to it.
package repomanager

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/timesheet/internal/server/config"
	"github.com/dmitrijs2005/timesheet/internal/server/repositories/entries"
)

// RepositoryManager owns a backend connection.
//
// WithTx runs fn against a repository whose writes commit together. The
// CSV backend has no transactions; there fn runs against the plain repository.
type RepositoryManager interface {
	Entries() entries.Repository
	WithTx(ctx context.Context, fn func(ctx context.Context, repo entries.Repository) error) error
	Close() error
}

// New opens the backend selected by cfg.StorageBackend and, for SQL
// backends, applies pending migrations.
func New(ctx context.Context, cfg *config.Config) (RepositoryManager, error) {
	switch cfg.StorageBackend {
	case config.StorageCSV:
		return NewCSVRepositoryManager(cfg.CSVPath)
	case config.StoragePostgres:
		return NewPostgresRepositoryManager(ctx, cfg.DatabaseDSN)
	case config.StorageSQLite:
		return NewSQLiteRepositoryManager(ctx, cfg.DatabaseDSN)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}
