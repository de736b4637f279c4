package session

import (
	"context"
	"sync"

	"fintrack/internal/core"
)

// MemoryStore keeps the session for the life of the process only.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]string)}
}

func (m *MemoryStore) Load(ctx context.Context) (core.Session, error) {
	m.mu.RLock()
	user, hasUser := m.data[KeyUser]
	token, hasToken := m.data[KeyToken]
	m.mu.RUnlock()

	sess, corrupt := decode(user, hasUser, token, hasToken)
	if corrupt {
		return core.Session{}, m.Clear(ctx)
	}
	return sess, nil
}

func (m *MemoryStore) Save(_ context.Context, user core.Profile, token string) error {
	if err := validate(token); err != nil {
		return err
	}
	encoded, err := encodeUser(user)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[KeyUser] = encoded
	m.data[KeyToken] = token
	return nil
}

func (m *MemoryStore) Clear(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, KeyUser)
	delete(m.data, KeyToken)
	return nil
}

// Raw exposes a stored key. Tests use it to check both keys move together.
func (m *MemoryStore) Raw(key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok
}
