package user

import (
	"context"

	"github.com/axelsub/axelsub/internal/domain"
)

// Repository defines the interface for identity persistence.
type Repository interface {
	// Create adds a new identity and returns it with ID and CreatedAt set.
	// Returns ErrEmailTaken or ErrUsernameTaken on a uniqueness violation.
	Create(ctx context.Context, identity domain.Identity) (*domain.Identity, error)

	// GetByID retrieves an identity by its ID.
	// Returns ErrIdentityNotFound if no such identity exists.
	GetByID(ctx context.Context, id int64) (*domain.Identity, error)

	// GetByEmail retrieves an identity by its email address.
	// Returns ErrIdentityNotFound if no such identity exists.
	GetByEmail(ctx context.Context, email string) (*domain.Identity, error)

	// GetByUsername retrieves an identity by its username.
	// Returns ErrIdentityNotFound if no such identity exists.
	GetByUsername(ctx context.Context, username string) (*domain.Identity, error)

	// Close releases any resources held by the repository.
	Close() error
}

// RepositoryFactory is a function that creates a new Repository instance.
type RepositoryFactory func() (Repository, error)
