package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"fintrack/internal/core"
)

// FileStore keeps the session as a small JSON object on disk:
//
//	{"user": "<json profile>", "token": "<bearer>"}
//
// Writes go through a temp file and rename so a crash never leaves one key
// without the other.
type FileStore struct {
	mu   sync.Mutex
	path string
}

func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		return nil, errors.New("session file path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create session directory: %w", err)
	}
	return &FileStore{path: path}, nil
}

func (f *FileStore) Path() string { return f.path }

func (f *FileStore) Load(ctx context.Context) (core.Session, error) {
	f.mu.Lock()
	data, err := os.ReadFile(f.path)
	f.mu.Unlock()
	if errors.Is(err, fs.ErrNotExist) {
		return core.Session{}, nil
	}
	if err != nil {
		return core.Session{}, fmt.Errorf("read session file: %w", err)
	}

	var kv map[string]string
	if err := json.Unmarshal(data, &kv); err != nil {
		return core.Session{}, f.Clear(ctx)
	}
	user, hasUser := kv[KeyUser]
	token, hasToken := kv[KeyToken]
	sess, corrupt := decode(user, hasUser, token, hasToken)
	if corrupt {
		return core.Session{}, f.Clear(ctx)
	}
	return sess, nil
}

func (f *FileStore) Save(_ context.Context, user core.Profile, token string) error {
	if err := validate(token); err != nil {
		return err
	}
	encoded, err := encodeUser(user)
	if err != nil {
		return err
	}
	data, err := json.Marshal(map[string]string{KeyUser: encoded, KeyToken: token})
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".session-*")
	if err != nil {
		return fmt.Errorf("create temp session file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write session file: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod session file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close session file: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("replace session file: %w", err)
	}
	return nil
}

func (f *FileStore) Clear(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := os.Remove(f.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove session file: %w", err)
	}
	return nil
}
