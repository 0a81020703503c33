package repomanager

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/dmitrijs2005/timesheet/internal/server/config"
	"github.com/dmitrijs2005/timesheet/internal/server/models"
	"github.com/dmitrijs2005/timesheet/internal/server/repositories/entries"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_SelectsBackend(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	cfg := &config.Config{StorageBackend: config.StorageCSV, CSVPath: filepath.Join(dir, "log.csv")}
	m, err := New(ctx, cfg)
	require.NoError(t, err)
	assert.IsType(t, &CSVRepositoryManager{}, m)
	require.NoError(t, m.Close())

	cfg = &config.Config{StorageBackend: config.StorageSQLite, DatabaseDSN: filepath.Join(dir, "ts.db")}
	m, err = New(ctx, cfg)
	require.NoError(t, err)
	assert.IsType(t, &SQLiteRepositoryManager{}, m)
	require.NoError(t, m.Close())

	_, err = New(ctx, &config.Config{StorageBackend: "mongo"})
	require.Error(t, err)
}

func TestCSVRepositoryManager_WithTx(t *testing.T) {
	ctx := context.Background()
	m, err := NewCSVRepositoryManager(filepath.Join(t.TempDir(), "log.csv"))
	require.NoError(t, err)

	err = m.WithTx(ctx, func(ctx context.Context, repo entries.Repository) error {
		return repo.Create(ctx, &models.Entry{ID: "a", Name: "Alice", Date: "2024-01-01"})
	})
	require.NoError(t, err)

	all, err := m.Entries().List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
