package models

import (
	"encoding/json"
	"errors"
	"time"
)

// ErrNotFound is returned by repositories when no row matches.
var ErrNotFound = errors.New("not found")

// Account is a registered user, identified by its token.
type Account struct {
	ID        int64     `json:"id"`
	Token     string    `json:"token"`
	Expiry    time.Time `json:"expiry"`
	Username  string    `json:"username"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// IsExpired reports whether the account's expiry has passed.
func (a *Account) IsExpired() bool {
	return !time.Now().Before(a.Expiry)
}

// Snapshot serialises the account for caching in a session.
func (a *Account) Snapshot() (json.RawMessage, error) {
	return json.Marshal(a)
}

// AccountFromSnapshot rebuilds an account cached with Snapshot.
func AccountFromSnapshot(raw json.RawMessage) (*Account, error) {
	var a Account
	if err := json.Unmarshal(raw, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// AccountView is the account as exposed to templates and API clients.
// The token never leaves the server.
type AccountView struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// View strips credentials from the account.
func (a *Account) View() AccountView {
	return AccountView{
		ID:        a.ID,
		Username:  a.Username,
		AvatarURL: a.AvatarURL,
		CreatedAt: a.CreatedAt,
	}
}
