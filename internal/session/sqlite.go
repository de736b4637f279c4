package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"fintrack/internal/core"
	"fintrack/internal/log"

	_ "modernc.org/sqlite"
)

// SQLiteStore keeps the session in a two-row key/value table.
type SQLiteStore struct {
	db     *sql.DB
	logger *log.Logger
}

func NewSQLiteStore(dbPath string, logger *log.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = log.Nop()
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteStore{db: db, logger: logger.WithComponent(log.ComponentSession)}, nil
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *SQLiteStore) Load(ctx context.Context) (core.Session, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT key, value FROM session_kv WHERE key IN (?, ?)`, KeyUser, KeyToken)
	if err != nil {
		return core.Session{}, fmt.Errorf("query session: %w", err)
	}
	defer rows.Close()

	kv := make(map[string]string, 2)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return core.Session{}, fmt.Errorf("scan session: %w", err)
		}
		kv[k] = v
	}
	if err := rows.Err(); err != nil {
		return core.Session{}, fmt.Errorf("iterate session: %w", err)
	}

	user, hasUser := kv[KeyUser]
	token, hasToken := kv[KeyToken]
	sess, corrupt := decode(user, hasUser, token, hasToken)
	if corrupt {
		s.logger.WarnContext(ctx, "Discarding incomplete persisted session")
		return core.Session{}, s.Clear(ctx)
	}
	return sess, nil
}

func (s *SQLiteStore) Save(ctx context.Context, user core.Profile, token string) error {
	if err := validate(token); err != nil {
		return err
	}
	encoded, err := encodeUser(user)
	if err != nil {
		return err
	}

	return s.inTx(ctx, func(tx *sql.Tx) error {
		const upsert = `INSERT INTO session_kv (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`
		if _, err := tx.ExecContext(ctx, upsert, KeyUser, encoded); err != nil {
			return fmt.Errorf("save user: %w", err)
		}
		if _, err := tx.ExecContext(ctx, upsert, KeyToken, token); err != nil {
			return fmt.Errorf("save token: %w", err)
		}
		return nil
	})
}

func (s *SQLiteStore) Clear(ctx context.Context) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM session_kv WHERE key IN (?, ?)`, KeyUser, KeyToken); err != nil {
			return fmt.Errorf("clear session: %w", err)
		}
		return nil
	})
}

func (s *SQLiteStore) inTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			s.logger.ErrorContext(ctx, "Rollback failed", log.FieldError, rbErr)
		}
		return err
	}
	return tx.Commit()
}
