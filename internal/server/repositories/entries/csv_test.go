package entries

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/timesheet/internal/common"
	"github.com/dmitrijs2005/timesheet/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCSVRepository_CreatesHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "time_log.csv")
	_, err := NewCSVRepository(path)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, strings.Join(Header, ",")+"\n", string(data))
}

func TestCSVRepository_CRUD(t *testing.T) {
	ctx := context.Background()
	repo, err := NewCSVRepository(filepath.Join(t.TempDir(), "log.csv"))
	require.NoError(t, err)

	created := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	a := &models.Entry{ID: "a", Name: "Alice", Date: "2024-01-01", FromTime: "09:00", ToTime: "10:00", Description: "x, \"quoted\"", CreatedAt: created}
	b := &models.Entry{ID: "b", Name: "Bob", Date: "2024-01-02", Duration: "2h"}
	require.NoError(t, repo.Create(ctx, a))
	require.NoError(t, repo.Create(ctx, b))

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []*models.Entry{a, b}, all)

	a.Task = "edited"
	require.NoError(t, repo.Update(ctx, a))
	got, err := repo.GetByID(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "edited", got.Task)

	require.NoError(t, repo.Delete(ctx, "a"))
	_, err = repo.GetByID(ctx, "a")
	require.ErrorIs(t, err, common.ErrorNotFound)
	require.ErrorIs(t, repo.Delete(ctx, "a"), common.ErrorNotFound)
	require.ErrorIs(t, repo.Update(ctx, a), common.ErrorNotFound)

	all, err = repo.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []*models.Entry{b}, all)
}

func TestCSVRepository_CreateDuplicateID(t *testing.T) {
	ctx := context.Background()
	repo, err := NewCSVRepository(filepath.Join(t.TempDir(), "log.csv"))
	require.NoError(t, err)

	e := &models.Entry{ID: "a", Name: "Alice", Date: "2024-01-01", Duration: "1"}
	require.NoError(t, repo.Create(ctx, e))
	require.ErrorIs(t, repo.Create(ctx, &models.Entry{ID: "a", Name: "Eve"}), common.ErrorAlreadyExists)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []*models.Entry{e}, all)
}

func TestCSVRepository_ReadsLegacyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "time_log.csv")
	legacy := "Name,Email,Date,From Time,To Time,Task,Description\n" +
		"Alice,a@example.com,2024-01-01,09:00,11:00,dev,first\n" +
		"Bob,,2024-01-01,10:00,12:00,ops,\n"
	require.NoError(t, os.WriteFile(path, []byte(legacy), 0o600))

	repo, err := NewCSVRepository(path)
	require.NoError(t, err)

	all, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "row-1", all[0].ID)
	assert.Equal(t, "row-2", all[1].ID)
	assert.Equal(t, "a@example.com", all[0].Email)
	assert.Equal(t, 2.0, all[1].Hours())
	assert.True(t, all[0].CreatedAt.IsZero())

	// Editing keeps the derived IDs and upgrades the header.
	all[1].Task = "oncall"
	require.NoError(t, repo.Update(context.Background(), all[1]))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), strings.Join(Header, ",")))
	assert.Contains(t, string(data), "row-2")
}

func TestCSVRepository_ConcurrentCreates(t *testing.T) {
	ctx := context.Background()
	repo, err := NewCSVRepository(filepath.Join(t.TempDir(), "log.csv"))
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = repo.Create(ctx, &models.Entry{ID: string(rune('a' + i)), Name: "n", Date: "2024-01-01", Duration: "1"})
		}(i)
	}
	wg.Wait()

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 20)
}
