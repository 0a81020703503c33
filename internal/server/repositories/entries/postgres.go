package entries

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/timesheet/internal/common"
	"github.com/dmitrijs2005/timesheet/internal/dbx"
	"github.com/dmitrijs2005/timesheet/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
)

const entryColumns = `id, name, email, date, from_time, to_time, duration, task, description, file, created_at`

// SQLSTATE unique_violation.
const uniqueViolation = "23505"

// PostgresRepository implements entry storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// List returns all entries ordered by creation time.
func (r *PostgresRepository) List(ctx context.Context) ([]*models.Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM entries ORDER BY created_at, id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select entries: %w", err)
	}
	defer rows.Close()

	var result []*models.Entry
	for rows.Next() {
		var item models.Entry
		if err := rows.Scan(
			&item.ID, &item.Name, &item.Email, &item.Date, &item.FromTime, &item.ToTime,
			&item.Duration, &item.Task, &item.Description, &item.File, &item.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// GetByID returns one entry or common.ErrorNotFound.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM entries WHERE id=$1`

	var item models.Entry
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&item.ID, &item.Name, &item.Email, &item.Date, &item.FromTime, &item.ToTime,
		&item.Duration, &item.Task, &item.Description, &item.File, &item.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &item, nil
}

// Create inserts entry.
func (r *PostgresRepository) Create(ctx context.Context, entry *models.Entry) error {
	query := `INSERT INTO entries (` + entryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := r.db.ExecContext(ctx, query,
		entry.ID, entry.Name, entry.Email, entry.Date, entry.FromTime, entry.ToTime,
		entry.Duration, entry.Task, entry.Description, entry.File, entry.CreatedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%w: entry %s", common.ErrorAlreadyExists, entry.ID)
	}
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Update overwrites the mutable fields of entry.ID. created_at never changes.
func (r *PostgresRepository) Update(ctx context.Context, entry *models.Entry) error {
	query := `UPDATE entries SET name=$2, email=$3, date=$4, from_time=$5, to_time=$6,
		duration=$7, task=$8, description=$9, file=$10 WHERE id=$1`

	res, err := r.db.ExecContext(ctx, query,
		entry.ID, entry.Name, entry.Email, entry.Date, entry.FromTime, entry.ToTime,
		entry.Duration, entry.Task, entry.Description, entry.File)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return dbx.ExpectOneRow(res)
}

// Delete removes entry id.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM entries WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return dbx.ExpectOneRow(res)
}
