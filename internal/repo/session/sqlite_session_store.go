package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/axelsub/axelsub/internal/domain"
	"github.com/axelsub/axelsub/internal/infra/logging"
	"github.com/axelsub/axelsub/internal/repo/db"
)

// SQLiteStore implements Store on the shared SQLite handle. Sessions survive
// restarts, at the cost of a write per login and per sweep.
type SQLiteStore struct {
	// Now is the clock used for expiry decisions; tests may override it.
	Now func() time.Time

	db  *db.Handle
	log logging.Logger
}

var _ Store = (*SQLiteStore)(nil)

// SQLiteStoreFactory creates a factory function that returns a new
// SQLiteStore on the given database handle.
func SQLiteStoreFactory(handle *db.Handle) StoreFactory {
	return func() (Store, error) {
		return NewSQLiteStore(handle)
	}
}

// NewSQLiteStore creates a new SQLiteStore and ensures the sessions table exists.
func NewSQLiteStore(handle *db.Handle) (*SQLiteStore, error) {
	if _, err := handle.SQL.Exec(`
		CREATE TABLE IF NOT EXISTS sessions (
			token        TEXT    PRIMARY KEY,
			user_id      INTEGER NOT NULL REFERENCES users(id),
			created_at   INTEGER NOT NULL,
			expires_at   INTEGER NOT NULL,
			last_used_at INTEGER NOT NULL DEFAULT 0
		)
	`); err != nil {
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &SQLiteStore{
		Now: time.Now,
		db:  handle,
		log: logging.GetLogger("repo.session.sqlite_session_store"),
	}, nil
}

// Insert implements Store.Insert.
func (s *SQLiteStore) Insert(ctx context.Context, session domain.Session) error {
	s.db.WriteLock.Lock()
	defer s.db.WriteLock.Unlock()

	if _, err := s.db.SQL.ExecContext(ctx,
		`INSERT INTO sessions (token, user_id, created_at, expires_at, last_used_at) VALUES (?, ?, ?, ?, ?)`,
		session.Token,
		session.UserID,
		session.CreatedAt,
		session.ExpiresAt,
		session.LastUsedAt,
	); err != nil {
		return fmt.Errorf("insert session: %w", err)
	}

	return nil
}

// Lookup implements Store.Lookup.
func (s *SQLiteStore) Lookup(ctx context.Context, token string) (*domain.Session, error) {
	var session domain.Session

	err := s.db.SQL.QueryRowContext(ctx,
		`SELECT token, user_id, created_at, expires_at, last_used_at FROM sessions WHERE token = ?`,
		token,
	).Scan(
		&session.Token,
		&session.UserID,
		&session.CreatedAt,
		&session.ExpiresAt,
		&session.LastUsedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrSessionNotFound
		}

		return nil, fmt.Errorf("query session: %w", err)
	}

	now := s.Now()
	if session.ExpiredAt(now) {
		return nil, domain.ErrSessionExpired
	}

	session.LastUsedAt = now.Unix()

	s.db.WriteLock.Lock()
	defer s.db.WriteLock.Unlock()

	if _, err := s.db.SQL.ExecContext(ctx,
		`UPDATE sessions SET last_used_at = ? WHERE token = ?`,
		session.LastUsedAt,
		token,
	); err != nil {
		return nil, fmt.Errorf("touch session: %w", err)
	}

	return &session, nil
}

// Invalidate implements Store.Invalidate.
func (s *SQLiteStore) Invalidate(ctx context.Context, token string) error {
	s.db.WriteLock.Lock()
	defer s.db.WriteLock.Unlock()

	if _, err := s.db.SQL.ExecContext(ctx, `DELETE FROM sessions WHERE token = ?`, token); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}

	return nil
}

// Sweep implements Store.Sweep.
func (s *SQLiteStore) Sweep(ctx context.Context) (int, error) {
	s.db.WriteLock.Lock()
	defer s.db.WriteLock.Unlock()

	res, err := s.db.SQL.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at <= ?`, s.Now().Unix())
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}

	swept, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}

	return int(swept), nil
}

// Close implements Store.Close. The shared database handle is closed by its
// owner, not here.
func (s *SQLiteStore) Close() error {
	return nil
}
