// Package db opens the shared SQLite handle used by the entity repositories.
package db

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite" // database/sql driver

	"github.com/axelsub/axelsub/internal/infra/logging"
)

// Config holds configuration for the SQLite database.
type Config struct {
	// DatabasePath is the filesystem path to the SQLite database file
	DatabasePath string `env:"DATABASE_PATH" default:"var/storage/axelsub.db"`
}

// Handle wraps the shared SQLite connection. go-sqlite does not support
// concurrent writes, so all repositories serialize writes through WriteLock.
type Handle struct {
	SQL       *sql.DB
	WriteLock *sync.Mutex
}

// Open opens (creating if needed) the SQLite database at the configured path.
// Returns an error if the database cannot be opened or pinged.
func Open(cfg Config) (*Handle, error) {
	log := logging.GetLogger("repo.db").With(
		logging.Group("db", "path", cfg.DatabasePath),
	)

	sqlDB, err := sql.Open("sqlite", cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("ping db: %w", err)
	}

	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	if _, err := sqlDB.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	if _, err := sqlDB.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	log.Debug("database opened")

	return &Handle{
		SQL:       sqlDB,
		WriteLock: new(sync.Mutex),
	}, nil
}

// Close closes the underlying database connection.
func (h *Handle) Close() error {
	if err := h.SQL.Close(); err != nil {
		return fmt.Errorf("close db: %w", err)
	}

	return nil
}
