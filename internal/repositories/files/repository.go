package files

import (
	"context"

	"cdn/internal/models"
)

// Repository reads file records.
type Repository interface {
	// ListByAccount returns the account's files, most recent first.
	ListByAccount(ctx context.Context, accountID int64) ([]models.File, error)
	GetByID(ctx context.Context, id string) (*models.File, error)
}
