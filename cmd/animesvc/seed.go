package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/axelsub/axelsub/internal/domain"
	"github.com/axelsub/axelsub/internal/infra/logging"
	"github.com/axelsub/axelsub/internal/repo/anime"
	"github.com/axelsub/axelsub/internal/svc/animesvc"
	"github.com/axelsub/axelsub/internal/svc/authsvc"
)

const (
	seedAdminUsername = "axel_admin"
	seedAdminEmail    = "admin@axelsub.com"
	seedAdminPassword = "admin123"
)

//nolint:gochecknoglobals
var seedAnimes = []animesvc.CreateAnimeParams{
	{
		MALID:       1,
		Title:       "Cowboy Bebop",
		Description: "Crime is timeless. Spike Spiegel and the ragtag crew of the Bebop hunt bounties across the solar system.",
		CoverImage:  "https://cdn.myanimelist.net/images/anime/4/19644.jpg",
		Genres:      []string{"Action", "Sci-Fi"},
		VideoURL:    "https://commondatastorage.googleapis.com/gtv-videos-bucket/sample/BigBuckBunny.mp4",
		Quality:     "1080p",
	},
	{
		MALID:       20,
		Title:       "Naruto",
		Description: "Naruto Uzumaki, a hyperactive ninja, searches for approval and dreams of becoming the Hokage.",
		CoverImage:  "https://cdn.myanimelist.net/images/anime/13/17405.jpg",
		Genres:      []string{"Action", "Adventure"},
		VideoURL:    "https://commondatastorage.googleapis.com/gtv-videos-bucket/sample/ElephantsDream.mp4",
		Quality:     "720p",
	},
}

// seed creates the admin identity and the starter catalogue. It is
// idempotent: nothing is written when the admin already exists.
func seed(ctx context.Context, authSvc *authsvc.AuthService, animeSvc *animesvc.AnimeService) error {
	log := logging.GetLogger("cmd.animesvc.seed")

	if _, err := authSvc.Users.GetByUsername(ctx, seedAdminUsername); err == nil {
		log.DebugContext(ctx, "seed skipped, admin exists")

		return nil
	} else if !errors.Is(err, domain.ErrIdentityNotFound) {
		return fmt.Errorf("get admin: %w", err)
	}

	secret, err := authsvc.DeriveSecret(seedAdminPassword)
	if err != nil {
		return fmt.Errorf("derive admin secret: %w", err)
	}

	admin, err := authSvc.Users.Create(ctx, domain.Identity{
		Username:  seedAdminUsername,
		Email:     seedAdminEmail,
		Secret:    secret,
		Bio:       "Administrator of AXEL SUB",
		AvatarURL: "https://api.dicebear.com/7.x/avataaars/svg?seed=axel",
		IsAdmin:   true,
	})
	if err != nil {
		return fmt.Errorf("create admin: %w", err)
	}

	existing, err := animeSvc.ListAnimes(ctx, anime.Filter{})
	if err != nil {
		return fmt.Errorf("list animes: %w", err)
	}

	if len(existing) > 0 {
		log.DebugContext(ctx, "seed skipped, catalogue not empty")

		return nil
	}

	for _, params := range seedAnimes {
		if _, err := animeSvc.CreateAnime(ctx, params, admin.ID); err != nil {
			return fmt.Errorf("create %q: %w", params.Title, err)
		}
	}

	log.InfoContext(ctx, "seeded starter data",
		logging.Group("seed", "admin", admin.Username, "animes", len(seedAnimes)),
	)

	return nil
}
