package accounts

import (
	"context"

	"cdn/internal/models"
)

// Repository reads accounts.
type Repository interface {
	GetByToken(ctx context.Context, token string) (*models.Account, error)
}
