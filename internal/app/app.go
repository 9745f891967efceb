// Package app holds the process-wide connections and the account and file
// lookups every request handler is built on.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"

	"cdn/internal/collab"
	"cdn/internal/config"
	"cdn/internal/db"
	"cdn/internal/metrics"
	"cdn/internal/repositories/accounts"
	"cdn/internal/repositories/files"
	"cdn/internal/storage"
)

var tracer = otel.Tracer("cdn/internal/app")

// ErrStorageDisabled is returned by file content operations when no object
// store is configured.
var ErrStorageDisabled = errors.New("object storage not configured")

// Collaborator serves the opaque stats and related-collection documents
// shown on the index page.
type Collaborator interface {
	Stats(ctx context.Context) (map[string]any, error)
	Related(ctx context.Context, accountID int64) (map[string]any, error)
}

// ObjectStore serves file contents.
type ObjectStore interface {
	Open(ctx context.Context, key string) (*storage.Object, error)
	Ping(ctx context.Context) error
}

// App is created once at startup and shared by all requests.
type App struct {
	DB    *sql.DB
	Redis *redis.Client

	accounts accounts.Repository
	files    files.Repository
	collab   Collaborator
	storage  ObjectStore
	metrics  *metrics.Metrics
}

// Options wires an App from already constructed parts. Nil Collab and
// Storage disable those features; a nil Metrics uses metrics.Default().
type Options struct {
	DB       *sql.DB
	Redis    *redis.Client
	Accounts accounts.Repository
	Files    files.Repository
	Collab   Collaborator
	Storage  ObjectStore
	Metrics  *metrics.Metrics
}

// New builds an App from opts.
func New(opts Options) *App {
	m := opts.Metrics
	if m == nil {
		m = metrics.Default()
	}
	return &App{
		DB:       opts.DB,
		Redis:    opts.Redis,
		accounts: opts.Accounts,
		files:    opts.Files,
		collab:   opts.Collab,
		storage:  opts.Storage,
		metrics:  m,
	}
}

// Open connects to PostgreSQL and then Redis. Either failure is returned and
// nothing is left open. Object storage is connected only when configured.
func Open(ctx context.Context, cfg config.Config) (*App, error) {
	pool, err := db.OpenDB(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	log.Info().Msg("connected to postgres")

	rdb, err := db.OpenRedis(ctx, cfg.RedisURL)
	if err != nil {
		_ = pool.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	log.Info().Msg("connected to redis")

	opts := Options{
		DB:       pool,
		Redis:    rdb,
		Accounts: accounts.NewPostgresRepository(pool),
		Files:    files.NewPostgresRepository(pool),
	}

	if cfg.IPCURL != "" {
		opts.Collab = collab.New(cfg.IPCURL, cfg.IPCTimeout)
	}

	if cfg.S3.Enabled() {
		st, err := storage.New(ctx, storage.Config{
			Endpoint:  cfg.S3.Endpoint,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
			Bucket:    cfg.S3.Bucket,
		})
		if err != nil {
			_ = rdb.Close()
			_ = pool.Close()
			return nil, fmt.Errorf("connect storage: %w", err)
		}
		log.Info().Str("bucket", st.Bucket()).Msg("connected to object storage")
		opts.Storage = st
	}

	return New(opts), nil
}

// Close releases the connections.
func (a *App) Close() error {
	var errs []error
	if a.Redis != nil {
		errs = append(errs, a.Redis.Close())
	}
	if a.DB != nil {
		errs = append(errs, a.DB.Close())
	}
	return errors.Join(errs...)
}

// Metrics returns the counters the App reports to.
func (a *App) Metrics() *metrics.Metrics {
	return a.metrics
}

// StorageEnabled reports whether file contents can be served.
func (a *App) StorageEnabled() bool {
	return a.storage != nil
}

// PingDatabase checks the PostgreSQL pool.
func (a *App) PingDatabase(ctx context.Context) error {
	if a.DB == nil {
		return errors.New("database not configured")
	}
	return a.DB.PingContext(ctx)
}

// PingRedis checks the Redis client.
func (a *App) PingRedis(ctx context.Context) error {
	if a.Redis == nil {
		return errors.New("redis not configured")
	}
	return a.Redis.Ping(ctx).Err()
}

// PingStorage checks the bucket. It returns ErrStorageDisabled when no store
// is configured.
func (a *App) PingStorage(ctx context.Context) error {
	if a.storage == nil {
		return ErrStorageDisabled
	}
	return a.storage.Ping(ctx)
}
