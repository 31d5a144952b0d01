package main

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/axelsub/axelsub/internal/infra/config"
	"github.com/axelsub/axelsub/internal/infra/logging"
	http_ "github.com/axelsub/axelsub/internal/infra/transport/http"
	"github.com/axelsub/axelsub/internal/repo/anime"
	"github.com/axelsub/axelsub/internal/repo/blob"
	"github.com/axelsub/axelsub/internal/repo/comment"
	"github.com/axelsub/axelsub/internal/repo/db"
	"github.com/axelsub/axelsub/internal/repo/session"
	"github.com/axelsub/axelsub/internal/repo/user"
	"github.com/axelsub/axelsub/internal/svc/animesvc"
	"github.com/axelsub/axelsub/internal/svc/authsvc"
	"github.com/axelsub/axelsub/internal/svc/postersvc"
)

const (
	appName = "axelsub"
	svcName = "animesvc"
)

type Config struct {
	Log    logging.LoggerConfig                `envPrefix:"LOG_"`
	HTTP   http_.HTTPTransportConfig           `envPrefix:"HTTP_"`
	Auth   authsvc.AuthConfig                  `envPrefix:"AUTH_"`
	Jikan  animesvc.JikanClientConfig          `envPrefix:"JIKAN_"`
	Poster postersvc.PosterConfig              `envPrefix:"POSTER_"`
	Blob   blob.FileSystemBlobRepositoryConfig `envPrefix:"BLOB_"`
	DB     db.Config                           `envPrefix:"DB_"`

	// SessionBackend selects the session store ("memory" or "sqlite")
	SessionBackend string `env:"SESSION_BACKEND" default:"memory"`

	// Seed populates the admin user and starter catalogue on boot
	Seed bool `env:"SEED" default:"true"`
}

func main() {
	var (
		cfg Config
		ctx = context.Background()

		configPrefix = strings.ToUpper(strings.Join([]string{appName, svcName}, "_"))
		loggerName   = strings.ToLower(strings.Join([]string{appName, svcName}, "."))
	)

	if err := config.Parse(&cfg, configPrefix); err != nil {
		panic(err)
	}

	logging.Configure(cfg.Log, loggerName)

	if err := run(ctx, cfg); err != nil {
		panic(err)
	}
}

func run(ctx context.Context, cfg Config) (err error) {
	log := logging.GetLogger("cmd.animesvc")

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "error", "err", err)

			return
		}

		log.InfoContext(ctx, "shutdown")
	}()

	handle, err := db.Open(cfg.DB)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer handle.Close()

	var storeFactory session.StoreFactory
	if cfg.SessionBackend == "sqlite" {
		storeFactory = session.SQLiteStoreFactory(handle)
	} else {
		storeFactory = session.MemoryStoreFactory()
	}

	authSvc, err := authsvc.NewAuthService(
		user.SQLiteUserRepositoryFactory(handle),
		storeFactory,
		cfg.Auth,
	)
	if err != nil {
		return fmt.Errorf("new auth service: %w", err)
	}
	defer authSvc.Close()

	animeSvc, err := animesvc.NewAnimeService(
		anime.SQLiteAnimeRepositoryFactory(handle),
		comment.SQLiteCommentRepositoryFactory(handle),
	)
	if err != nil {
		return fmt.Errorf("new anime service: %w", err)
	}
	defer animeSvc.Close()

	posterSvc, err := postersvc.NewPosterService(
		anime.SQLiteAnimeRepositoryFactory(handle),
		blob.FileSystemBlobRepositoryFactory(cfg.Blob),
		nil,
		cfg.Poster,
	)
	if err != nil {
		return fmt.Errorf("new poster service: %w", err)
	}
	defer posterSvc.Close()

	if cfg.Seed {
		if err := seed(ctx, authSvc, animeSvc); err != nil {
			return fmt.Errorf("seed: %w", err)
		}
	}

	go session.RunSweeper(ctx,
		authSvc.Sessions,
		time.Duration(cfg.Auth.SweepInterval)*time.Second,
		logging.GetLogger("cmd.animesvc.sweeper"),
	)

	authTransport := authsvc.NewHTTPTransport(authSvc)
	jikanClient := animesvc.NewJikanClient(cfg.Jikan, nil)
	animeTransport := animesvc.NewHTTPTransport(animeSvc, jikanClient, authTransport)
	posterTransport := postersvc.NewHTTPTransport(posterSvc)

	mux := http.NewServeMux()
	authTransport.Mount(mux)
	animeTransport.Mount(mux)
	posterTransport.Mount(mux)

	if err := http_.ListenAndServe(ctx, mux, cfg.HTTP); err != nil {
		return fmt.Errorf("listen and serve: %w", err)
	}

	return nil
}
