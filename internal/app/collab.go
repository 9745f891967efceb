package app

import (
	"context"

	"cdn/internal/models"
)

// Related returns the collections related to acc. A nil account gets the
// anonymous view.
func (a *App) Related(ctx context.Context, acc *models.Account) (map[string]any, error) {
	if a.collab == nil {
		return map[string]any{}, nil
	}
	var id int64
	if acc != nil {
		id = acc.ID
	}
	return a.collab.Related(ctx, id)
}

// Stats returns the collaborator's aggregate stats.
func (a *App) Stats(ctx context.Context) (map[string]any, error) {
	if a.collab == nil {
		return map[string]any{}, nil
	}
	return a.collab.Stats(ctx)
}
