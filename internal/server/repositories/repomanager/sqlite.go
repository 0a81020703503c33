package repomanager

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/timesheet/internal/dbx"
	"github.com/dmitrijs2005/timesheet/internal/filex"
	"github.com/dmitrijs2005/timesheet/internal/server/migrations"
	"github.com/dmitrijs2005/timesheet/internal/server/repositories/entries"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

// SQLiteRepositoryManager vends SQLite-backed repositories. SQLite allows
// one writer, so the pool is limited to a single connection.
type SQLiteRepositoryManager struct {
	db *sql.DB
}

// NewSQLiteRepositoryManager opens the database file at dsn (":memory:" is
// accepted), creating parent directories, and migrates it.
func NewSQLiteRepositoryManager(ctx context.Context, dsn string) (*SQLiteRepositoryManager, error) {
	if path := sqliteFile(dsn); path != "" {
		if err := filex.EnsureParent(path, 0o700); err != nil {
			return nil, fmt.Errorf("db dir error: %w", err)
		}
	}

	db, err := sqlOpen("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout = 5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db pragma error: %w", err)
	}

	m := &SQLiteRepositoryManager{db: db}
	if err := m.RunMigrations(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db migrations error: %w", err)
	}
	return m, nil
}

// sqliteFile returns the file path part of dsn, or "" for in-memory databases.
func sqliteFile(dsn string) string {
	path := strings.TrimPrefix(dsn, "file:")
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	if path == "" || path == ":memory:" || strings.Contains(dsn, "mode=memory") {
		return ""
	}
	return path
}

// RunMigrations applies the embedded SQLite migrations.
func (m *SQLiteRepositoryManager) RunMigrations(ctx context.Context) error {
	goose.SetBaseFS(migrations.SQLite)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return err
	}
	return gooseUpContext(ctx, m.db, "sqlite")
}

func (m *SQLiteRepositoryManager) Entries() entries.Repository {
	return entries.NewSQLiteRepository(m.db)
}

// WithTx runs fn inside one database transaction.
func (m *SQLiteRepositoryManager) WithTx(ctx context.Context, fn func(ctx context.Context, repo entries.Repository) error) error {
	return dbx.WithTx(ctx, m.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return fn(ctx, entries.NewSQLiteRepository(tx))
	})
}

func (m *SQLiteRepositoryManager) Close() error {
	return m.db.Close()
}
