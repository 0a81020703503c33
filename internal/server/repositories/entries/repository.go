// Package entries provides the storage providers for time entries: a flat
// CSV file, PostgreSQL and SQLite. All satisfy Repository.
package entries

import (
	"context"

	"github.com/dmitrijs2005/timesheet/internal/server/models"
)

// Repository is the storage-provider contract the services depend on.
// GetByID, Update and Delete return common.ErrorNotFound for unknown IDs.
type Repository interface {
	List(ctx context.Context) ([]*models.Entry, error)
	GetByID(ctx context.Context, id string) (*models.Entry, error)
	Create(ctx context.Context, entry *models.Entry) error
	Update(ctx context.Context, entry *models.Entry) error
	Delete(ctx context.Context, id string) error
}
