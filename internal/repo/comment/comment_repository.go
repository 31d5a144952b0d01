package comment

import (
	"context"

	"github.com/axelsub/axelsub/internal/domain"
)

// Repository defines the interface for comment persistence.
type Repository interface {
	// ListByAnime returns the comments on an anime, newest first, with the
	// author's public identity joined in.
	ListByAnime(ctx context.Context, animeID int64) ([]domain.CommentWithUser, error)

	// Create adds a new comment and returns it with ID and CreatedAt set.
	Create(ctx context.Context, comment domain.Comment) (*domain.Comment, error)

	// Close releases any resources held by the repository.
	Close() error
}

// RepositoryFactory is a function that creates a new Repository instance.
type RepositoryFactory func() (Repository, error)
