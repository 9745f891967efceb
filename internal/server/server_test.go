package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"cdn/internal/app"
	"cdn/internal/metrics"
	"cdn/internal/models"
	"cdn/internal/session"
	"cdn/internal/storage"
)

type memAccounts struct {
	byToken map[string]*models.Account
	err     error
	calls   int
}

func (m *memAccounts) GetByToken(_ context.Context, token string) (*models.Account, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	acc, ok := m.byToken[token]
	if !ok {
		return nil, models.ErrNotFound
	}
	cp := *acc
	return &cp, nil
}

type memFiles struct {
	byAccount map[int64][]models.File
	err       error
}

func (m *memFiles) ListByAccount(_ context.Context, accountID int64) ([]models.File, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.byAccount[accountID], nil
}

func (m *memFiles) GetByID(_ context.Context, id string) (*models.File, error) {
	if m.err != nil {
		return nil, m.err
	}
	for _, list := range m.byAccount {
		for i := range list {
			if list[i].ID == id {
				cp := list[i]
				return &cp, nil
			}
		}
	}
	return nil, models.ErrNotFound
}

type memCollab struct {
	err error
}

func (m *memCollab) Stats(context.Context) (map[string]any, error) {
	if m.err != nil {
		return nil, m.err
	}
	return map[string]any{"uploads": 42}, nil
}

func (m *memCollab) Related(_ context.Context, accountID int64) (map[string]any, error) {
	if m.err != nil {
		return nil, m.err
	}
	if accountID == 0 {
		return map[string]any{}, nil
	}
	return map[string]any{"guild": "gophers"}, nil
}

type memStore struct {
	objects map[string]string
}

func (m *memStore) Open(_ context.Context, key string) (*storage.Object, error) {
	body, ok := m.objects[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &storage.Object{
		ReadCloser:   io.NopCloser(strings.NewReader(body)),
		Size:         int64(len(body)),
		ContentType:  "application/octet-stream",
		ETag:         "etag-" + key,
		LastModified: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	}, nil
}

func (m *memStore) Ping(context.Context) error { return nil }

type testEnv struct {
	handler  http.Handler
	mr       *miniredis.Miniredis
	store    *session.RedisStore
	accounts *memAccounts
	files    *memFiles
	metrics  *metrics.Metrics
}

func alice() *models.Account {
	return &models.Account{
		ID:        1,
		Token:     "abc",
		Expiry:    time.Now().Add(time.Hour),
		Username:  "alice",
		CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func newTestEnv(t *testing.T, configure func(*app.Options)) *testEnv {
	t.Helper()
	return newTestEnvWithConfig(t, Config{}, configure)
}

func newTestEnvWithConfig(t *testing.T, cfg Config, configure func(*app.Options)) *testEnv {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	env := &testEnv{
		mr:       mr,
		store:    session.NewRedisStore(rdb, time.Hour),
		accounts: &memAccounts{byToken: map[string]*models.Account{"abc": alice()}},
		files:    &memFiles{byAccount: map[int64][]models.File{}},
		metrics:  metrics.New(),
	}

	opts := app.Options{
		Redis:    rdb,
		Accounts: env.accounts,
		Files:    env.files,
		Metrics:  env.metrics,
	}
	if configure != nil {
		configure(&opts)
	}

	sessions := session.NewManager(env.store, session.CookieOptions{Name: "cdn_session", MaxAge: time.Hour})
	cfg.Addr = ":0"
	cfg.Version = "test"
	cfg.Links = map[string]string{"Docs": "https://docs.example"}
	cfg.CORSOrigins = []string{"*"}
	srv := New(cfg, app.New(opts), sessions, zerolog.Nop())
	env.handler = srv.Handler()
	return env
}

// signIn stores a session holding token and returns its cookie.
func (e *testEnv) signIn(t *testing.T, token string) *http.Cookie {
	t.Helper()
	ctx := context.Background()
	s, err := e.store.Load(ctx, "")
	require.NoError(t, err)
	require.NoError(t, s.Set(session.KeyToken, token))
	require.NoError(t, e.store.Save(ctx, s))
	return &http.Cookie{Name: "cdn_session", Value: s.ID}
}

func (e *testEnv) stored(t *testing.T, id string) map[string]json.RawMessage {
	t.Helper()
	raw, err := e.mr.Get("session:" + id)
	require.NoError(t, err)
	out := map[string]json.RawMessage{}
	require.NoError(t, json.Unmarshal([]byte(raw), &out))
	return out
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	e.handler.ServeHTTP(rr, req)
	return rr
}
