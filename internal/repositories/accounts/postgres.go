package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"cdn/internal/models"
	"cdn/internal/repositories"
)

type PostgresRepository struct {
	db repositories.DBTX
}

func NewPostgresRepository(db repositories.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetByToken returns the account owning token or models.ErrNotFound.
func (r *PostgresRepository) GetByToken(ctx context.Context, token string) (*models.Account, error) {
	query :=
		`SELECT id, token, expiry, username, avatar_url, created_at FROM accounts
		 WHERE token = $1
		 `

	a := &models.Account{}
	err := r.db.QueryRowContext(ctx, query, token).
		Scan(&a.ID, &a.Token, &a.Expiry, &a.Username, &a.AvatarURL, &a.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return a, nil
}
