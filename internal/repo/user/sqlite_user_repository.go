package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/axelsub/axelsub/internal/domain"
	"github.com/axelsub/axelsub/internal/infra/logging"
	"github.com/axelsub/axelsub/internal/repo/db"
)

// SQLiteUserRepository implements Repository using SQLite as the storage backend.
type SQLiteUserRepository struct {
	db  *db.Handle
	log logging.Logger
}

var _ Repository = (*SQLiteUserRepository)(nil)

// SQLiteUserRepositoryFactory creates a factory function that returns a new
// SQLiteUserRepository on the given database handle.
func SQLiteUserRepositoryFactory(handle *db.Handle) RepositoryFactory {
	return func() (Repository, error) {
		return NewSQLiteUserRepository(handle)
	}
}

// NewSQLiteUserRepository creates a new SQLiteUserRepository and ensures the
// users table exists.
func NewSQLiteUserRepository(handle *db.Handle) (*SQLiteUserRepository, error) {
	if _, err := handle.SQL.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			username   TEXT    UNIQUE NOT NULL,
			email      TEXT    UNIQUE NOT NULL,
			password   TEXT    NOT NULL,
			bio        TEXT    NOT NULL DEFAULT '',
			avatar_url TEXT    NOT NULL DEFAULT '',
			is_admin   INTEGER NOT NULL DEFAULT 0,
			created_at INTEGER NOT NULL
		)
	`); err != nil {
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &SQLiteUserRepository{
		db:  handle,
		log: logging.GetLogger("repo.user.sqlite_user_repository"),
	}, nil
}

// Create implements Repository.Create using SQLite. UNIQUE violations map to
// ErrEmailTaken/ErrUsernameTaken based on the offending column.
func (r *SQLiteUserRepository) Create(ctx context.Context, identity domain.Identity) (*domain.Identity, error) {
	r.db.WriteLock.Lock()
	defer r.db.WriteLock.Unlock()

	identity.CreatedAt = time.Now().Unix()

	res, err := r.db.SQL.ExecContext(ctx,
		`INSERT INTO users (username, email, password, bio, avatar_url, is_admin, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		identity.Username,
		identity.Email,
		identity.Secret,
		identity.Bio,
		identity.AvatarURL,
		identity.IsAdmin,
		identity.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", mapUniqueViolation(err))
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	identity.ID = id

	return &identity, nil
}

// mapUniqueViolation attaches the matching domain conflict error to a SQLite
// UNIQUE constraint failure.
func mapUniqueViolation(err error) error {
	var liteErr *sqlite.Error
	if !errors.As(err, &liteErr) || liteErr.Code() != sqlite3.SQLITE_CONSTRAINT_UNIQUE {
		return err
	}

	switch {
	case strings.Contains(liteErr.Error(), "users.email"):
		return errors.Join(domain.ErrEmailTaken, err)
	case strings.Contains(liteErr.Error(), "users.username"):
		return errors.Join(domain.ErrUsernameTaken, err)
	default:
		return err
	}
}

// GetByID implements Repository.GetByID using SQLite.
func (r *SQLiteUserRepository) GetByID(ctx context.Context, id int64) (*domain.Identity, error) {
	return r.getWhere(ctx, "id = ?", id)
}

// GetByEmail implements Repository.GetByEmail using SQLite.
func (r *SQLiteUserRepository) GetByEmail(ctx context.Context, email string) (*domain.Identity, error) {
	return r.getWhere(ctx, "email = ?", email)
}

// GetByUsername implements Repository.GetByUsername using SQLite.
func (r *SQLiteUserRepository) GetByUsername(ctx context.Context, username string) (*domain.Identity, error) {
	return r.getWhere(ctx, "username = ?", username)
}

func (r *SQLiteUserRepository) getWhere(ctx context.Context, where string, arg any) (*domain.Identity, error) {
	var identity domain.Identity

	err := r.db.SQL.QueryRowContext(ctx,
		`SELECT id, username, email, password, bio, avatar_url, is_admin, created_at
		 FROM users WHERE `+where,
		arg,
	).Scan(
		&identity.ID,
		&identity.Username,
		&identity.Email,
		&identity.Secret,
		&identity.Bio,
		&identity.AvatarURL,
		&identity.IsAdmin,
		&identity.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = errors.Join(domain.ErrIdentityNotFound, err)
		}

		return nil, fmt.Errorf("query user: %w", err)
	}

	return &identity, nil
}

// Close implements Repository.Close. The shared database handle is closed by
// its owner, not here.
func (r *SQLiteUserRepository) Close() error {
	return nil
}
