// Package session implements per-browser session state: a small map of
// string keys to JSON values, persisted in Redis and addressed by an opaque
// id carried in a cookie.
package session

import (
	"encoding/json"
	"fmt"
)

// Well-known session keys.
const (
	KeyToken    = "token"
	KeyAccounts = "accounts"
)

// Values is the accessor the application reads and writes session state
// through.
type Values interface {
	// Get decodes the value stored under key into dst and reports whether
	// the key was present.
	Get(key string, dst any) (bool, error)
	Set(key string, v any) error
	Delete(key string)
}

// Session is the state of one browser session. It is scoped to a single
// request and must not be shared between goroutines.
type Session struct {
	ID string

	values  map[string]json.RawMessage
	isNew   bool
	changed bool
}

func newSession(id string) *Session {
	return &Session{ID: id, values: make(map[string]json.RawMessage), isNew: true}
}

// New returns an unsaved session holding the given values. It is meant for
// callers that build sessions outside a Store, such as tests.
func New(values map[string]any) (*Session, error) {
	s := newSession("")
	for k, v := range values {
		if err := s.Set(k, v); err != nil {
			return nil, err
		}
	}
	s.changed = false
	return s, nil
}

// Get implements Values.
func (s *Session) Get(key string, dst any) (bool, error) {
	raw, ok := s.values[key]
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return true, fmt.Errorf("decode session key %q: %w", key, err)
	}
	return true, nil
}

// Has reports whether key is present.
func (s *Session) Has(key string) bool {
	_, ok := s.values[key]
	return ok
}

// String returns the string stored under key, or "" when it is missing or
// not a string.
func (s *Session) String(key string) string {
	var v string
	if ok, err := s.Get(key, &v); !ok || err != nil {
		return ""
	}
	return v
}

// Set implements Values. Values are stored as JSON; a json.RawMessage is
// stored as is.
func (s *Session) Set(key string, v any) error {
	raw, ok := v.(json.RawMessage)
	if !ok {
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("encode session key %q: %w", key, err)
		}
		raw = b
	}
	s.values[key] = raw
	s.changed = true
	return nil
}

// Delete implements Values.
func (s *Session) Delete(key string) {
	if _, ok := s.values[key]; !ok {
		return
	}
	delete(s.values, key)
	s.changed = true
}

// Len returns the number of keys held.
func (s *Session) Len() int {
	return len(s.values)
}

// IsNew reports whether the session has never been persisted.
func (s *Session) IsNew() bool {
	return s.isNew
}

// Changed reports whether the session was modified since it was loaded.
func (s *Session) Changed() bool {
	return s.changed
}
