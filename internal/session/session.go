// Package session persists the authenticated user and token across process
// restarts. Every backend stores exactly two keys, "user" (JSON profile) and
// "token"; both are written together and removed together.
package session

import (
	"context"
	"encoding/json"
	"errors"

	"fintrack/internal/core"
)

const (
	KeyUser  = "user"
	KeyToken = "token"
)

var ErrIncompleteSession = errors.New("session requires both user and token")

// Store is the persistence contract used by the state store.
type Store interface {
	// Load returns the persisted session. Missing keys yield an empty session.
	Load(ctx context.Context) (core.Session, error)
	// Save writes user and token together.
	Save(ctx context.Context, user core.Profile, token string) error
	// Clear removes both keys.
	Clear(ctx context.Context) error
}

func encodeUser(u core.Profile) (string, error) {
	b, err := json.Marshal(u)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// decode rebuilds a session from raw key values. A user value that does not
// decode is reported as corrupt so the caller can clear it.
func decode(user string, hasUser bool, token string, hasToken bool) (sess core.Session, corrupt bool) {
	if !hasUser || !hasToken || token == "" {
		return core.Session{}, hasUser || hasToken
	}
	var p core.Profile
	if err := json.Unmarshal([]byte(user), &p); err != nil {
		return core.Session{}, true
	}
	return core.Session{User: &p, Token: token}, false
}

func validate(token string) error {
	if token == "" {
		return ErrIncompleteSession
	}
	return nil
}
