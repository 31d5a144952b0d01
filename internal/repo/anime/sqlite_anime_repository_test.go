package anime_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/axelsub/axelsub/internal/domain"
	"github.com/axelsub/axelsub/internal/repo/anime"
	"github.com/axelsub/axelsub/internal/repo/db"
	"github.com/axelsub/axelsub/internal/repo/user"
)

func newTestRepo(t *testing.T) (anime.Repository, *domain.Identity) {
	t.Helper()

	ctx := context.Background()

	handle, err := db.Open(db.Config{DatabasePath: filepath.Join(t.TempDir(), "test.db")})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}

	t.Cleanup(func() { _ = handle.Close() })

	users, err := user.SQLiteUserRepositoryFactory(handle)()
	if err != nil {
		t.Fatalf("new user repo: %v", err)
	}

	uploader, err := users.Create(ctx, domain.Identity{
		Username: "alice",
		Email:    "alice@example.com",
		Secret:   "x.x",
	})
	if err != nil {
		t.Fatalf("create uploader: %v", err)
	}

	repo, err := anime.SQLiteAnimeRepositoryFactory(handle)()
	if err != nil {
		t.Fatalf("new anime repo: %v", err)
	}

	return repo, uploader
}

func seedCatalogue(t *testing.T, repo anime.Repository, uploaderID int64) {
	t.Helper()

	for _, a := range []domain.Anime{
		{MALID: 1, Title: "Cowboy Bebop", Genres: []string{"Action", "Sci-Fi"}, VideoURL: "v1", UploaderID: uploaderID},
		{MALID: 20, Title: "Naruto", Genres: []string{"Action", "Adventure"}, VideoURL: "v2", UploaderID: uploaderID},
		{MALID: 30, Title: "Neon Genesis Evangelion", Genres: []string{"Drama"}, VideoURL: "v3", UploaderID: uploaderID},
	} {
		if _, err := repo.Create(context.Background(), a); err != nil {
			t.Fatalf("Create(%s) error = %v", a.Title, err)
		}
	}
}

func titles(animes []domain.AnimeWithUploader) []string {
	result := make([]string, 0, len(animes))
	for _, a := range animes {
		result = append(result, a.Title)
	}

	return result
}

func TestSQLiteAnimeRepository_ListNewestFirst(t *testing.T) {
	t.Parallel()

	repo, uploader := newTestRepo(t)
	seedCatalogue(t, repo, uploader.ID)

	animes, err := repo.List(context.Background(), anime.Filter{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}

	got := titles(animes)
	want := []string{"Neon Genesis Evangelion", "Naruto", "Cowboy Bebop"}

	if len(got) != len(want) {
		t.Fatalf("List() = %v, want %v", got, want)
	}

	for i := range want {
		if got[i] != want[i] {
			t.Errorf("List()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestSQLiteAnimeRepository_Filters(t *testing.T) {
	t.Parallel()

	repo, uploader := newTestRepo(t)
	seedCatalogue(t, repo, uploader.ID)
	ctx := context.Background()

	// Search matches a case-insensitive title substring.
	bySearch, err := repo.List(ctx, anime.Filter{Search: "naru"})
	if err != nil {
		t.Fatalf("List(search) error = %v", err)
	}

	if got := titles(bySearch); len(got) != 1 || got[0] != "Naruto" {
		t.Errorf("List(search=naru) = %v, want [Naruto]", got)
	}

	// Genre matches exactly.
	byGenre, err := repo.List(ctx, anime.Filter{Genre: "Action"})
	if err != nil {
		t.Fatalf("List(genre) error = %v", err)
	}

	if got := titles(byGenre); len(got) != 2 {
		t.Errorf("List(genre=Action) = %v, want 2 animes", got)
	}

	// Both filters combine.
	both, err := repo.List(ctx, anime.Filter{Search: "bebop", Genre: "Action"})
	if err != nil {
		t.Fatalf("List(both) error = %v", err)
	}

	if got := titles(both); len(got) != 1 || got[0] != "Cowboy Bebop" {
		t.Errorf("List(search+genre) = %v, want [Cowboy Bebop]", got)
	}

	none, err := repo.List(ctx, anime.Filter{Genre: "Romance"})
	if err != nil {
		t.Fatalf("List(none) error = %v", err)
	}

	if len(none) != 0 {
		t.Errorf("List(genre=Romance) = %v, want empty", titles(none))
	}
}

func TestSQLiteAnimeRepository_GetJoinsUploader(t *testing.T) {
	t.Parallel()

	repo, uploader := newTestRepo(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, domain.Anime{
		MALID:      1,
		Title:      "Cowboy Bebop",
		Genres:     []string{"Action"},
		VideoURL:   "v1",
		UploaderID: uploader.ID,
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	got, err := repo.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}

	if got.Quality != "720p" {
		t.Errorf("Get() quality = %q, want default 720p", got.Quality)
	}

	if len(got.Genres) != 1 || got.Genres[0] != "Action" {
		t.Errorf("Get() genres = %v, want [Action]", got.Genres)
	}

	if got.Uploader == nil || got.Uploader.Username != "alice" {
		t.Fatalf("Get() uploader = %+v, want alice joined in", got.Uploader)
	}

	if _, err := repo.Get(ctx, 99); !errors.Is(err, domain.ErrAnimeNotFound) {
		t.Errorf("Get(unknown) error = %v, want ErrAnimeNotFound", err)
	}
}

func TestSQLiteAnimeRepository_NullUploader(t *testing.T) {
	t.Parallel()

	repo, _ := newTestRepo(t)
	ctx := context.Background()

	// Animes may exist without an uploader row, e.g. after an account is
	// purged.
	created, err := repo.Create(ctx, domain.Anime{MALID: 1, Title: "Orphan", VideoURL: "v1"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	got, err := repo.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}

	if got.Uploader != nil {
		t.Errorf("Get() uploader = %+v, want nil", got.Uploader)
	}

	if got.Genres == nil || len(got.Genres) != 0 {
		t.Errorf("Get() genres = %#v, want empty non-nil slice", got.Genres)
	}
}
