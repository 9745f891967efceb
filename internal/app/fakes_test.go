package app

import (
	"context"
	"io"
	"strings"

	"cdn/internal/models"
	"cdn/internal/storage"
)

type fakeAccounts struct {
	byToken map[string]*models.Account
	err     error
	calls   int
}

func (f *fakeAccounts) GetByToken(_ context.Context, token string) (*models.Account, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	acc, ok := f.byToken[token]
	if !ok {
		return nil, models.ErrNotFound
	}
	cp := *acc
	return &cp, nil
}

type fakeFiles struct {
	byAccount map[int64][]models.File
	err       error
	calls     int
}

func (f *fakeFiles) ListByAccount(_ context.Context, accountID int64) ([]models.File, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.byAccount[accountID], nil
}

func (f *fakeFiles) GetByID(_ context.Context, id string) (*models.File, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	for _, list := range f.byAccount {
		for i := range list {
			if list[i].ID == id {
				cp := list[i]
				return &cp, nil
			}
		}
	}
	return nil, models.ErrNotFound
}

type fakeCollab struct {
	lastAccountID int64
	err           error
}

func (f *fakeCollab) Stats(context.Context) (map[string]any, error) {
	if f.err != nil {
		return nil, f.err
	}
	return map[string]any{"files": float64(3)}, nil
}

func (f *fakeCollab) Related(_ context.Context, accountID int64) (map[string]any, error) {
	f.lastAccountID = accountID
	if f.err != nil {
		return nil, f.err
	}
	return map[string]any{"account_id": accountID}, nil
}

type fakeStore struct {
	objects map[string]string
	err     error
}

func (f *fakeStore) Open(_ context.Context, key string) (*storage.Object, error) {
	if f.err != nil {
		return nil, f.err
	}
	body, ok := f.objects[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &storage.Object{
		ReadCloser:  io.NopCloser(strings.NewReader(body)),
		Size:        int64(len(body)),
		ContentType: "text/plain",
	}, nil
}

func (f *fakeStore) Ping(context.Context) error {
	return f.err
}
