package postersvc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/axelsub/axelsub/internal/domain"
	context_ "github.com/axelsub/axelsub/internal/infra/context"
	"github.com/axelsub/axelsub/internal/infra/logging"
	"github.com/axelsub/axelsub/internal/repo/anime"
	"github.com/axelsub/axelsub/internal/repo/blob"
)

const (
	TraceIDHeader = "X-Request-ID"

	// maxPosterBytes caps how much of an upstream cover image is read.
	maxPosterBytes = 16 << 20
)

// PosterService serves resized cover images for the catalogue. Upstream
// covers are fetched once, scaled down and cached; subsequent requests are
// served from the cache.
type PosterService struct {
	Animes anime.Repository
	Cache  blob.Repository
	Log    logging.Logger

	httpClient *http.Client
	cfg        PosterConfig
}

// NewPosterService creates a new PosterService with the given repository
// factories and configuration. If httpClient is nil, http.DefaultClient will
// be used.
func NewPosterService(
	animeFactory anime.RepositoryFactory,
	blobFactory blob.RepositoryFactory,
	httpClient *http.Client,
	cfg PosterConfig,
) (*PosterService, error) {
	animes, err := animeFactory()
	if err != nil {
		return nil, fmt.Errorf("new anime repo: %w", err)
	}

	cache, err := blobFactory("posters")
	if err != nil {
		return nil, fmt.Errorf("new cache repo: %w", err)
	}

	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &PosterService{
		Animes:     animes,
		Cache:      cache,
		Log:        logging.GetLogger("svc.postersvc.poster_service"),
		httpClient: httpClient,
		cfg:        cfg,
	}, nil
}

// GetPoster returns the resized cover image for an anime.
// Returns ErrAnimeNotFound for unknown animes and ErrPosterNotFound for
// animes without a cover image.
func (s *PosterService) GetPoster(ctx context.Context, animeID int64) (_ *domain.Poster, err error) {
	log := s.Log.With(logging.Group("poster", "anime", animeID, "width", s.cfg.Width))

	defer func(ctx context.Context) {
		if err != nil {
			log.WarnContext(ctx, "get poster failed", "error", err)
		} else {
			log.DebugContext(ctx, "poster served")
		}
	}(ctx)

	found, err := s.Animes.Get(ctx, animeID)
	if err != nil {
		return nil, fmt.Errorf("get anime: %w", err)
	}

	if found.CoverImage == "" {
		return nil, domain.ErrPosterNotFound
	}

	cacheKey := fmt.Sprintf("%s_%d", found.CoverImage, s.cfg.Width)

	if cached, err := s.Cache.Fetch(ctx, cacheKey); err == nil {
		mimeType, err := detectImageType(cached)
		if err != nil {
			return nil, fmt.Errorf("detect cached type: %w", err)
		}

		return &domain.Poster{Data: cached, MIMEType: mimeType}, nil
	} else if !errors.Is(err, domain.ErrBlobNotFound) {
		return nil, fmt.Errorf("fetch cache: %w", err)
	}

	original, err := s.fetchCover(ctx, found.CoverImage)
	if err != nil {
		return nil, fmt.Errorf("fetch cover: %w", err)
	}

	mimeType, err := detectImageType(original)
	if err != nil {
		return nil, fmt.Errorf("detect cover type: %w", err)
	}

	resized, mimeType, err := resizeImage(original, mimeType, s.cfg.Width, s.cfg.Interpolator)
	if err != nil {
		return nil, fmt.Errorf("resize cover: %w", err)
	}

	if err := s.Cache.Store(ctx, cacheKey, resized); err != nil {
		return nil, fmt.Errorf("store cache: %w", err)
	}

	return &domain.Poster{Data: resized, MIMEType: mimeType}, nil
}

func (s *PosterService) fetchCover(ctx context.Context, coverURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, coverURL, nil)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}

	if traceID, ok := context_.TraceIDFromContext(ctx); ok {
		req.Header.Set(TraceIDHeader, traceID)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: upstream status %s", domain.ErrPosterNotFound, resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxPosterBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	return data, nil
}

// Close releases resources held by the service.
func (s *PosterService) Close() error {
	if err := s.Animes.Close(); err != nil {
		return fmt.Errorf("close anime repo: %w", err)
	}

	return nil
}
