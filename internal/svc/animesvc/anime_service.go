package animesvc

import (
	"context"
	"fmt"
	"strings"

	"github.com/axelsub/axelsub/internal/domain"
	"github.com/axelsub/axelsub/internal/infra/logging"
	"github.com/axelsub/axelsub/internal/repo/anime"
	"github.com/axelsub/axelsub/internal/repo/comment"
)

// CreateAnimeParams are the inputs for sharing a new anime. The uploader is
// never part of the params; it always comes from the authenticated session.
type CreateAnimeParams struct {
	MALID       int64
	Title       string
	Description string
	CoverImage  string
	Genres      []string
	VideoURL    string
	Quality     string
}

// AnimeService owns the anime catalogue and its comments.
type AnimeService struct {
	Animes   anime.Repository
	Comments comment.Repository
	Log      logging.Logger
}

// NewAnimeService creates a new AnimeService with the given repository factories.
func NewAnimeService(
	animeFactory anime.RepositoryFactory,
	commentFactory comment.RepositoryFactory,
) (*AnimeService, error) {
	animes, err := animeFactory()
	if err != nil {
		return nil, fmt.Errorf("new anime repo: %w", err)
	}

	comments, err := commentFactory()
	if err != nil {
		return nil, fmt.Errorf("new comment repo: %w", err)
	}

	return &AnimeService{
		Animes:   animes,
		Comments: comments,
		Log:      logging.GetLogger("svc.animesvc.anime_service"),
	}, nil
}

// ListAnimes returns the catalogue matching the filter, newest first.
func (s *AnimeService) ListAnimes(ctx context.Context, filter anime.Filter) ([]domain.AnimeWithUploader, error) {
	animes, err := s.Animes.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list animes: %w", err)
	}

	return animes, nil
}

// GetAnime returns one anime with its uploader.
func (s *AnimeService) GetAnime(ctx context.Context, id int64) (*domain.AnimeWithUploader, error) {
	found, err := s.Animes.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get anime: %w", err)
	}

	return found, nil
}

// CreateAnime validates the params and persists a new anime owned by the
// given uploader.
func (s *AnimeService) CreateAnime(ctx context.Context, params CreateAnimeParams, uploaderID int64) (*domain.Anime, error) {
	if vErr := validateCreateAnime(&params); vErr != nil {
		return nil, vErr
	}

	created, err := s.Animes.Create(ctx, domain.Anime{
		MALID:       params.MALID,
		Title:       params.Title,
		Description: params.Description,
		CoverImage:  params.CoverImage,
		Genres:      params.Genres,
		VideoURL:    params.VideoURL,
		Quality:     params.Quality,
		UploaderID:  uploaderID,
	})
	if err != nil {
		return nil, fmt.Errorf("create anime: %w", err)
	}

	s.Log.DebugContext(ctx, "anime shared", logging.Group("anime",
		"id", created.ID,
		"title", created.Title,
		"uploader", uploaderID,
	))

	return created, nil
}

func validateCreateAnime(params *CreateAnimeParams) *domain.ValidationError {
	switch {
	case strings.TrimSpace(params.Title) == "":
		return domain.NewValidationError("title", "Title is required")
	case strings.TrimSpace(params.VideoURL) == "":
		return domain.NewValidationError("videoUrl", "Video URL is required")
	case params.MALID <= 0:
		return domain.NewValidationError("malId", "MyAnimeList ID is required")
	default:
		return nil
	}
}

// ListComments returns the comments on an anime, newest first.
func (s *AnimeService) ListComments(ctx context.Context, animeID int64) ([]domain.CommentWithUser, error) {
	comments, err := s.Comments.ListByAnime(ctx, animeID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}

	return comments, nil
}

// CreateComment validates and persists a comment by the given author on an
// existing anime. Returns ErrAnimeNotFound if the anime does not exist.
func (s *AnimeService) CreateComment(ctx context.Context, animeID, userID int64, content string) (*domain.Comment, error) {
	if strings.TrimSpace(content) == "" {
		return nil, domain.NewValidationError("content", "Content is required")
	}

	if _, err := s.Animes.Get(ctx, animeID); err != nil {
		return nil, fmt.Errorf("get anime: %w", err)
	}

	created, err := s.Comments.Create(ctx, domain.Comment{
		Content: content,
		UserID:  userID,
		AnimeID: animeID,
	})
	if err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}

	return created, nil
}

// Close releases resources held by the service.
func (s *AnimeService) Close() error {
	if err := s.Animes.Close(); err != nil {
		return fmt.Errorf("close anime repo: %w", err)
	}

	if err := s.Comments.Close(); err != nil {
		return fmt.Errorf("close comment repo: %w", err)
	}

	return nil
}
