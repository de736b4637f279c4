package backend

import (
	"context"
	"fmt"

	"fintrack/internal/log"
	"fintrack/internal/session"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
}

// NewFactory creates a new session backend factory
func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.Nop()
	}
	return &DefaultFactory{
		logger: logger.WithComponent(log.ComponentSession),
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case MemoryBackend:
		return f.createMemoryBackend()
	case FileBackend:
		return f.createFileBackend(config)
	case SQLiteBackend:
		return f.createSQLiteBackend(config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createMemoryBackend() (*BackendResult, error) {
	f.logger.Info("Using memory session backend", log.FieldBackend, MemoryBackend.String())
	return &BackendResult{Store: session.NewMemoryStore()}, nil
}

func (f *DefaultFactory) createFileBackend(config Config) (*BackendResult, error) {
	store, err := session.NewFileStore(config.SessionFile)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize session file: %w", err)
	}
	f.logger.Info("Using file session backend",
		log.FieldBackend, FileBackend.String(),
		"path", store.Path())
	return &BackendResult{Store: store}, nil
}

func (f *DefaultFactory) createSQLiteBackend(config Config) (*BackendResult, error) {
	store, err := session.NewSQLiteStore(config.SQLiteDBPath, f.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite session store: %w", err)
	}
	f.logger.Info("Using SQLite session backend",
		log.FieldBackend, SQLiteBackend.String(),
		"path", config.SQLiteDBPath)
	return &BackendResult{
		Store: store,
		Cleanup: func() error {
			f.logger.Info("Closing SQLite session store")
			return store.Close()
		},
	}, nil
}
