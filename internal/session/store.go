package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Store persists sessions.
type Store interface {
	// Load returns the session stored under id. Unknown or empty ids yield
	// a fresh session with a newly generated id.
	Load(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, s *Session) error
}

// RedisStore keeps each session as one JSON document under
// "<prefix><id>", expiring after ttl.
type RedisStore struct {
	client redis.Cmdable
	prefix string
	ttl    time.Duration
}

// NewRedisStore creates a store on top of client.
func NewRedisStore(client redis.Cmdable, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, prefix: "session:", ttl: ttl}
}

func (r *RedisStore) key(id string) string {
	return r.prefix + id
}

// Load implements Store.
func (r *RedisStore) Load(ctx context.Context, id string) (*Session, error) {
	if id == "" {
		return newSession(uuid.NewString()), nil
	}

	data, err := r.client.Get(ctx, r.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			// Never adopt an id the store did not issue.
			return newSession(uuid.NewString()), nil
		}
		return nil, fmt.Errorf("redis get: %w", err)
	}

	s := &Session{ID: id, values: make(map[string]json.RawMessage)}
	if err := json.Unmarshal(data, &s.values); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	if s.values == nil {
		s.values = make(map[string]json.RawMessage)
	}
	return s, nil
}

// Save implements Store. The TTL is refreshed on every save.
func (r *RedisStore) Save(ctx context.Context, s *Session) error {
	data, err := json.Marshal(s.values)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := r.client.Set(ctx, r.key(s.ID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	s.isNew = false
	s.changed = false
	return nil
}
