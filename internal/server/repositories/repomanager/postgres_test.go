package repomanager

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/timesheet/internal/server/models"
	"github.com/dmitrijs2005/timesheet/internal/server/repositories/entries"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func stubGoose(t *testing.T, fn func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error) {
	t.Helper()
	orig := gooseUpContext
	gooseUpContext = fn
	t.Cleanup(func() { gooseUpContext = orig })
}

func stubOpen(t *testing.T, db *sql.DB) {
	t.Helper()
	orig := sqlOpen
	sqlOpen = func(driver, dsn string) (*sql.DB, error) { return db, nil }
	t.Cleanup(func() { sqlOpen = orig })
}

func TestNewPostgresRepositoryManager_RunsMigrations(t *testing.T) {
	db, _ := newDB(t)
	stubOpen(t, db)

	var gotDir string
	stubGoose(t, func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		gotDir = dir
		return nil
	})

	m, err := NewPostgresRepositoryManager(context.Background(), "postgres://x")
	require.NoError(t, err)
	assert.Equal(t, "postgres", gotDir)

	var _ RepositoryManager = m
	var _ entries.Repository = m.Entries()
}

func TestNewPostgresRepositoryManager_MigrationError(t *testing.T) {
	db, mock := newDB(t)
	mock.ExpectClose()
	stubOpen(t, db)
	stubGoose(t, func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		return errors.New("boom")
	})

	_, err := NewPostgresRepositoryManager(context.Background(), "postgres://x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestPostgresRepositoryManager_WithTx(t *testing.T) {
	ctx := context.Background()

	t.Run("commits", func(t *testing.T) {
		db, mock := newDB(t)
		m := &PostgresRepositoryManager{db: db}

		mock.ExpectBegin()
		mock.ExpectExec(`INSERT INTO entries`).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`INSERT INTO entries`).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := m.WithTx(ctx, func(ctx context.Context, repo entries.Repository) error {
			if err := repo.Create(ctx, &models.Entry{ID: "a"}); err != nil {
				return err
			}
			return repo.Create(ctx, &models.Entry{ID: "b"})
		})
		require.NoError(t, err)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back", func(t *testing.T) {
		db, mock := newDB(t)
		m := &PostgresRepositoryManager{db: db}

		mock.ExpectBegin()
		mock.ExpectExec(`INSERT INTO entries`).WillReturnError(errors.New("dup"))
		mock.ExpectRollback()

		err := m.WithTx(ctx, func(ctx context.Context, repo entries.Repository) error {
			return repo.Create(ctx, &models.Entry{ID: "a"})
		})
		require.Error(t, err)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgresRepositoryManager_Close(t *testing.T) {
	db, mock := newDB(t)
	mock.ExpectClose()
	m := &PostgresRepositoryManager{db: db}
	require.NoError(t, m.Close())
	require.NoError(t, mock.ExpectationsWereMet())
}
