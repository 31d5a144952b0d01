package anime

import (
	"context"

	"github.com/axelsub/axelsub/internal/domain"
)

// Filter narrows List results. Zero values mean "no filter".
type Filter struct {
	// Search matches a case-insensitive substring of the title.
	Search string
	// Genre matches an exact genre name.
	Genre string
}

// Repository defines the interface for anime persistence.
type Repository interface {
	// List returns animes matching the filter, newest first, with the
	// uploader's public identity joined in.
	List(ctx context.Context, filter Filter) ([]domain.AnimeWithUploader, error)

	// Get retrieves one anime with its uploader.
	// Returns ErrAnimeNotFound if no such anime exists.
	Get(ctx context.Context, id int64) (*domain.AnimeWithUploader, error)

	// Create adds a new anime and returns it with ID and CreatedAt set.
	Create(ctx context.Context, anime domain.Anime) (*domain.Anime, error)

	// Close releases any resources held by the repository.
	Close() error
}

// RepositoryFactory is a function that creates a new Repository instance.
type RepositoryFactory func() (Repository, error)
