package app

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"cdn/internal/models"
	"cdn/internal/session"
	"cdn/internal/storage"
)

// GetFiles lists the files of the session's account, most recent first. It
// returns nil when there is no account or the account has no files.
func (a *App) GetFiles(ctx context.Context, sess session.Values) ([]models.File, error) {
	acc, err := a.GetAccount(ctx, sess)
	if err != nil || acc == nil {
		return nil, err
	}
	return a.FilesForAccount(ctx, acc.ID)
}

// FilesForAccount lists an account's files, most recent first, or nil when
// there are none.
func (a *App) FilesForAccount(ctx context.Context, accountID int64) ([]models.File, error) {
	ctx, span := tracer.Start(ctx, "app.FilesForAccount")
	defer span.End()
	span.SetAttributes(attribute.Int64("account.id", accountID))

	list, err := a.files.ListByAccount(ctx, accountID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "list files")
		return nil, fmt.Errorf("list files: %w", err)
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list, nil
}

// GetFile returns the file with id, or nil.
func (a *App) GetFile(ctx context.Context, id string) (*models.File, error) {
	f, err := a.files.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get file: %w", err)
	}
	return f, nil
}

// OpenFile opens the stored contents of f.
func (a *App) OpenFile(ctx context.Context, f *models.File) (*storage.Object, error) {
	if a.storage == nil {
		return nil, ErrStorageDisabled
	}
	ctx, span := tracer.Start(ctx, "app.OpenFile")
	defer span.End()
	span.SetAttributes(attribute.String("file.id", f.ID))

	obj, err := a.storage.Open(ctx, f.ObjectKey)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "open file")
		return nil, err
	}
	return obj, nil
}
