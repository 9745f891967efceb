package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"cdn/internal/models"
	"cdn/internal/session"
)

func sessionToken(sess session.Values) (string, error) {
	var token string
	if _, err := sess.Get(session.KeyToken, &token); err != nil {
		return "", err
	}
	return token, nil
}

// FetchAccountBySession looks up the account for the session's token and
// caches a snapshot of it in the session. It returns nil when the session
// has no token or the token matches no account.
func (a *App) FetchAccountBySession(ctx context.Context, sess session.Values) (*models.Account, error) {
	token, err := sessionToken(sess)
	if err != nil {
		return nil, err
	}
	if token == "" {
		return nil, nil
	}

	acc, err := a.FetchAccountByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if acc == nil {
		// The token no longer resolves; drop whatever was cached for it.
		sess.Delete(session.KeyAccounts)
		return nil, nil
	}

	snap, err := acc.Snapshot()
	if err != nil {
		return nil, fmt.Errorf("snapshot account: %w", err)
	}
	if err := sess.Set(session.KeyAccounts, snap); err != nil {
		return nil, err
	}
	return acc, nil
}

// FetchAccountByToken returns the account owning token, or nil.
func (a *App) FetchAccountByToken(ctx context.Context, token string) (*models.Account, error) {
	ctx, span := tracer.Start(ctx, "app.FetchAccountByToken")
	defer span.End()

	acc, err := a.accounts.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, nil
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch account")
		return nil, fmt.Errorf("fetch account: %w", err)
	}
	span.SetAttributes(attribute.Int64("account.id", acc.ID))
	return acc, nil
}

// GetAccount resolves the session's account from the cached snapshot,
// refreshing it from the database when it is missing or expired. Sessions
// without a token resolve to nil without touching the database.
func (a *App) GetAccount(ctx context.Context, sess session.Values) (*models.Account, error) {
	ctx, span := tracer.Start(ctx, "app.GetAccount")
	defer span.End()

	token, err := sessionToken(sess)
	if err != nil {
		return nil, err
	}
	if token == "" {
		return nil, nil
	}

	r := Resolver[*models.Account]{
		Cached: func(ctx context.Context) (*models.Account, bool, error) {
			acc := cachedAccount(ctx, sess, token)
			return acc, acc != nil, nil
		},
		Durable: func(ctx context.Context) (*models.Account, bool, error) {
			acc, err := a.FetchAccountBySession(ctx, sess)
			return acc, acc != nil, err
		},
		Expired:  (*models.Account).IsExpired,
		Observer: a.metrics,
	}

	acc, _, err := r.Resolve(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "get account")
		return nil, err
	}
	return acc, nil
}

// cachedAccount decodes the session's account snapshot. Unreadable
// snapshots and snapshots taken for another token count as absent.
func cachedAccount(ctx context.Context, sess session.Values, token string) *models.Account {
	var raw json.RawMessage
	ok, err := sess.Get(session.KeyAccounts, &raw)
	if !ok {
		return nil
	}
	if err == nil {
		var acc *models.Account
		acc, err = models.AccountFromSnapshot(raw)
		if err == nil {
			if acc.Token != token {
				return nil
			}
			return acc
		}
	}
	zerolog.Ctx(ctx).Warn().Err(err).Msg("discarding unreadable account snapshot")
	return nil
}
