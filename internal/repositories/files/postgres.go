package files

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

func (r *PostgresRepository) ListByAccount(ctx context.Context, accountID int64) ([]models.File, error) {
	query :=
		`SELECT id, account_id, created_at, name, content_type, size_bytes, object_key FROM files
		 WHERE account_id = $1
		 ORDER BY created_at DESC
		 `

	rows, err := r.db.QueryContext(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var out []models.File
	for rows.Next() {
		var f models.File
		if err := rows.Scan(&f.ID, &f.AccountID, &f.CreatedAt, &f.Name, &f.ContentType, &f.SizeBytes, &f.ObjectKey); err != nil {
			return nil, fmt.Errorf("scan error: %w", err)
		}
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return out, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.File, error) {
	query :=
		`SELECT id, account_id, created_at, name, content_type, size_bytes, object_key FROM files
		 WHERE id = $1
		 `

	f := &models.File{}
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&f.ID, &f.AccountID, &f.CreatedAt, &f.Name, &f.ContentType, &f.SizeBytes, &f.ObjectKey)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return f, nil
}
