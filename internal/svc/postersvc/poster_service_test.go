package postersvc

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/axelsub/axelsub/internal/domain"
	"github.com/axelsub/axelsub/internal/repo/anime"
	"github.com/axelsub/axelsub/internal/repo/blob"
)

// stubAnimeRepository serves a fixed catalogue.
type stubAnimeRepository struct {
	animes map[int64]domain.Anime
}

var _ anime.Repository = (*stubAnimeRepository)(nil)

func (r *stubAnimeRepository) List(_ context.Context, _ anime.Filter) ([]domain.AnimeWithUploader, error) {
	return nil, nil
}

func (r *stubAnimeRepository) Get(_ context.Context, id int64) (*domain.AnimeWithUploader, error) {
	a, ok := r.animes[id]
	if !ok {
		return nil, domain.ErrAnimeNotFound
	}

	return &domain.AnimeWithUploader{Anime: a}, nil
}

func (r *stubAnimeRepository) Create(_ context.Context, a domain.Anime) (*domain.Anime, error) {
	return &a, nil
}

func (r *stubAnimeRepository) Close() error { return nil }

// encodePNG renders a width x height test image.
func encodePNG(t *testing.T, width, height int) []byte {
	t.Helper()

	bitmap := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := range width {
		for y := range height {
			bitmap.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 0, A: 255})
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, bitmap); err != nil {
		t.Fatalf("encode png: %v", err)
	}

	return buf.Bytes()
}

func newTestPosterService(t *testing.T, coverURL string) *PosterService {
	t.Helper()

	animes := &stubAnimeRepository{animes: map[int64]domain.Anime{
		1: {ID: 1, Title: "Cowboy Bebop", CoverImage: coverURL},
		2: {ID: 2, Title: "No Cover"},
	}}

	blobCfg := blob.FileSystemBlobRepositoryConfig{Basedir: t.TempDir()}

	svc, err := NewPosterService(
		func() (anime.Repository, error) { return animes, nil },
		blob.FileSystemBlobRepositoryFactory(blobCfg),
		nil,
		PosterConfig{Width: 4, Interpolator: "catmullrom"},
	)
	if err != nil {
		t.Fatalf("NewPosterService() error = %v", err)
	}

	return svc
}

func TestGetPoster_ResizesAndCaches(t *testing.T) {
	t.Parallel()

	var upstreamHits int

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		upstreamHits++
		//nolint:errcheck
		w.Write(encodePNG(t, 10, 20))
	}))
	t.Cleanup(upstream.Close)

	svc := newTestPosterService(t, upstream.URL+"/cover.png")
	ctx := context.Background()

	poster, err := svc.GetPoster(ctx, 1)
	if err != nil {
		t.Fatalf("GetPoster() error = %v", err)
	}

	if poster.MIMEType != MIMETypePNG {
		t.Errorf("MIMEType = %q, want %q", poster.MIMEType, MIMETypePNG)
	}

	decoded, err := png.Decode(bytes.NewReader(poster.Data))
	if err != nil {
		t.Fatalf("decode poster: %v", err)
	}

	// Aspect ratio preserved: 10x20 scaled to width 4 is 4x8.
	if got := decoded.Bounds(); got.Dx() != 4 || got.Dy() != 8 {
		t.Errorf("poster bounds = %dx%d, want 4x8", got.Dx(), got.Dy())
	}

	// A second request is a cache hit.
	again, err := svc.GetPoster(ctx, 1)
	if err != nil {
		t.Fatalf("GetPoster() again error = %v", err)
	}

	if !bytes.Equal(again.Data, poster.Data) {
		t.Error("cached poster differs from original")
	}

	if upstreamHits != 1 {
		t.Errorf("upstream hits = %d, want 1", upstreamHits)
	}
}

func TestGetPoster_Failures(t *testing.T) {
	t.Parallel()

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(upstream.Close)

	svc := newTestPosterService(t, upstream.URL+"/gone.png")
	ctx := context.Background()

	if _, err := svc.GetPoster(ctx, 99); !errors.Is(err, domain.ErrAnimeNotFound) {
		t.Errorf("GetPoster(unknown anime) error = %v, want ErrAnimeNotFound", err)
	}

	if _, err := svc.GetPoster(ctx, 2); !errors.Is(err, domain.ErrPosterNotFound) {
		t.Errorf("GetPoster(no cover) error = %v, want ErrPosterNotFound", err)
	}

	// Upstream 404s surface as a missing poster too.
	if _, err := svc.GetPoster(ctx, 1); !errors.Is(err, domain.ErrPosterNotFound) {
		t.Errorf("GetPoster(upstream 404) error = %v, want ErrPosterNotFound", err)
	}
}

func TestResizeImage_UnknownInterpolator(t *testing.T) {
	t.Parallel()

	if _, _, err := resizeImage(encodePNG(t, 4, 4), MIMETypePNG, 2, "lanczos"); !errors.Is(err, ErrUnknownInterpolator) {
		t.Errorf("resizeImage() error = %v, want ErrUnknownInterpolator", err)
	}
}

func TestDetectImageType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data []byte
		want string
		err  error
	}{
		{"png", encodePNG(t, 2, 2), MIMETypePNG, nil},
		{"jpeg header", []byte("\xFF\xD8\xFF\xE0rest"), MIMETypeJPEG, nil},
		{"tiff little endian", []byte("\x49\x49\x2A\x00rest"), MIMETypeTIFF, nil},
		{"garbage", []byte("not an image"), "", domain.ErrImageTypeNotSupported},
		{"empty", nil, "", domain.ErrImageTypeNotSupported},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := detectImageType(tt.data)
			if !errors.Is(err, tt.err) {
				t.Fatalf("detectImageType() error = %v, want %v", err, tt.err)
			}

			if got != tt.want {
				t.Errorf("detectImageType() = %q, want %q", got, tt.want)
			}
		})
	}
}
