package entries

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/timesheet/internal/common"
	"github.com/dmitrijs2005/timesheet/internal/dbx"
	"github.com/dmitrijs2005/timesheet/internal/server/models"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// SQLiteRepository implements entry storage on SQLite. created_at is kept
// as RFC 3339 text so the value round-trips regardless of driver settings.
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository constructs a repository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteEntry(s rowScanner) (*models.Entry, error) {
	var (
		item      models.Entry
		createdAt string
	)
	if err := s.Scan(
		&item.ID, &item.Name, &item.Email, &item.Date, &item.FromTime, &item.ToTime,
		&item.Duration, &item.Task, &item.Description, &item.File, &createdAt,
	); err != nil {
		return nil, err
	}
	item.CreatedAt = ParseTimestamp(createdAt)
	return &item, nil
}

// List returns all entries ordered by creation time.
func (r *SQLiteRepository) List(ctx context.Context) ([]*models.Entry, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+entryColumns+` FROM entries ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to select entries: %w", err)
	}
	defer rows.Close()

	var result []*models.Entry
	for rows.Next() {
		item, err := scanSQLiteEntry(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// GetByID returns one entry or common.ErrorNotFound.
func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*models.Entry, error) {
	item, err := scanSQLiteEntry(r.db.QueryRowContext(ctx, `SELECT `+entryColumns+` FROM entries WHERE id=?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return item, nil
}

// Create inserts entry.
func (r *SQLiteRepository) Create(ctx context.Context, entry *models.Entry) error {
	query := `INSERT INTO entries (` + entryColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		entry.ID, entry.Name, entry.Email, entry.Date, entry.FromTime, entry.ToTime,
		entry.Duration, entry.Task, entry.Description, entry.File, FormatTimestamp(entry.CreatedAt))
	if isConstraintViolation(err) {
		return fmt.Errorf("%w: entry %s", common.ErrorAlreadyExists, entry.ID)
	}
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Update overwrites the mutable fields of entry.ID.
func (r *SQLiteRepository) Update(ctx context.Context, entry *models.Entry) error {
	query := `UPDATE entries SET name=?, email=?, date=?, from_time=?, to_time=?,
		duration=?, task=?, description=?, file=? WHERE id=?`

	res, err := r.db.ExecContext(ctx, query,
		entry.Name, entry.Email, entry.Date, entry.FromTime, entry.ToTime,
		entry.Duration, entry.Task, entry.Description, entry.File, entry.ID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return dbx.ExpectOneRow(res)
}

// Delete removes entry id.
func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM entries WHERE id=?`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return dbx.ExpectOneRow(res)
}

func isConstraintViolation(err error) bool {
	var sqlErr *sqlite.Error
	if !errors.As(err, &sqlErr) {
		return false
	}
	code := sqlErr.Code()
	return code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY || code == sqlite3.SQLITE_CONSTRAINT_UNIQUE
}
