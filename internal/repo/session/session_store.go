// Package session persists the binding between opaque session tokens and
// identities. The store is the sole basis for authorization decisions; there
// is deliberately no way to derive an identity from a token without it.
package session

import (
	"context"

	"github.com/axelsub/axelsub/internal/domain"
)

// Store defines the interface for session persistence. Implementations must
// be safe for concurrent use by in-flight requests.
type Store interface {
	// Insert persists a new session.
	Insert(ctx context.Context, session domain.Session) error

	// Lookup retrieves a live session by token and records its use.
	// Returns ErrSessionNotFound for unknown or invalidated tokens and
	// ErrSessionExpired once the lifetime has elapsed. Expired sessions stay
	// in the store until Sweep collects them.
	Lookup(ctx context.Context, token string) (*domain.Session, error)

	// Invalidate removes a session so the token can never authenticate again.
	// Invalidating an unknown token is not an error.
	Invalidate(ctx context.Context, token string) error

	// Sweep removes expired sessions and returns how many were collected.
	Sweep(ctx context.Context) (int, error)

	// Close releases any resources held by the store.
	Close() error
}

// StoreFactory is a function that creates a new Store instance.
type StoreFactory func() (Store, error)
