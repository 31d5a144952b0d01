package animesvc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/axelsub/axelsub/internal/domain"
	"github.com/axelsub/axelsub/internal/infra/logging"
	http_ "github.com/axelsub/axelsub/internal/infra/transport/http"
	"github.com/axelsub/axelsub/internal/repo/anime"
)

// IdentityGate resolves the request's session to an identity or answers 401
// itself. Mutating handlers call it before touching persisted state.
type IdentityGate interface {
	RequireIdentity(w http.ResponseWriter, r *http.Request) (*domain.Identity, bool)
}

// HTTPTransport handles HTTP requests for the anime catalogue, its comments
// and the metadata search proxy.
type HTTPTransport struct {
	animeSvc *AnimeService
	metadata MetadataClient
	gate     IdentityGate
	log      logging.Logger
}

// NewHTTPTransport creates a new HTTPTransport backed by the given service,
// metadata client and authorization gate.
func NewHTTPTransport(animeSvc *AnimeService, metadata MetadataClient, gate IdentityGate) *HTTPTransport {
	return &HTTPTransport{
		animeSvc: animeSvc,
		metadata: metadata,
		gate:     gate,
		log:      logging.GetLogger("svc.animesvc.http_transport"),
	}
}

// Mount registers the catalogue routes:
// - GET /api/animes: list, filterable by ?search= and ?genre=
// - GET /api/animes/{id}: detail with uploader
// - POST /api/animes: share a new anime (session required)
// - GET /api/animes/{id}/comments: comments with authors
// - POST /api/animes/{id}/comments: comment (session required)
// - GET /api/jikan/search: metadata search proxy.
func (ht *HTTPTransport) Mount(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/animes", ht.HandleList)
	mux.HandleFunc("GET /api/animes/{id}", ht.HandleGet)
	mux.HandleFunc("POST /api/animes", ht.HandleCreate)
	mux.HandleFunc("GET /api/animes/{id}/comments", ht.HandleListComments)
	mux.HandleFunc("POST /api/animes/{id}/comments", ht.HandleCreateComment)
	mux.HandleFunc("GET /api/jikan/search", ht.HandleMetadataSearch)
}

// HandleList serves the anime catalogue.
func (ht *HTTPTransport) HandleList(w http.ResponseWriter, r *http.Request) {
	filter := anime.Filter{
		Search: r.URL.Query().Get("search"),
		Genre:  r.URL.Query().Get("genre"),
	}

	animes, err := ht.animeSvc.ListAnimes(r.Context(), filter)
	if err != nil {
		ht.log.ErrorContext(r.Context(), "list animes failed", "error", err)
		http_.WriteInternalError(w)

		return
	}

	http_.WriteJSON(w, http.StatusOK, animes)
}

// HandleGet serves one anime.
func (ht *HTTPTransport) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		http_.WriteError(w, http.StatusNotFound, "Anime not found")

		return
	}

	found, err := ht.animeSvc.GetAnime(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrAnimeNotFound) {
			http_.WriteError(w, http.StatusNotFound, "Anime not found")
		} else {
			ht.log.ErrorContext(r.Context(), "get anime failed", "error", err)
			http_.WriteInternalError(w)
		}

		return
	}

	http_.WriteJSON(w, http.StatusOK, found)
}

type createAnimeRequest struct {
	MALID       int64    `json:"malId"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	CoverImage  string   `json:"coverImage"`
	Genres      []string `json:"genres"`
	VideoURL    string   `json:"videoUrl"`
	Quality     string   `json:"quality"`
}

// HandleCreate shares a new anime. The uploader is the session identity.
func (ht *HTTPTransport) HandleCreate(w http.ResponseWriter, r *http.Request) {
	_ = ht.handleCreate(w, r)
}

func (ht *HTTPTransport) handleCreate(w http.ResponseWriter, r *http.Request) (err error) {
	log := ht.log.With(logging.Group("http", "method", r.Method, "url", r.URL.String()))

	defer func(ctx context.Context) {
		if err != nil {
			log.WarnContext(ctx, "create anime failed", "error", err)
		}
	}(r.Context())

	identity, ok := ht.gate.RequireIdentity(w, r)
	if !ok {
		return domain.ErrUnauthenticated
	}

	var req createAnimeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http_.WriteError(w, http.StatusBadRequest, "Invalid request body")

		return fmt.Errorf("decode body: %w", err)
	}

	created, err := ht.animeSvc.CreateAnime(r.Context(), CreateAnimeParams{
		MALID:       req.MALID,
		Title:       req.Title,
		Description: req.Description,
		CoverImage:  req.CoverImage,
		Genres:      req.Genres,
		VideoURL:    req.VideoURL,
		Quality:     req.Quality,
	}, identity.ID)
	if err != nil {
		var vErr *domain.ValidationError
		if errors.As(err, &vErr) {
			http_.WriteFieldError(w, http.StatusBadRequest, vErr.Message, vErr.Field)
		} else {
			http_.WriteInternalError(w)
		}

		return fmt.Errorf("create anime: %w", err)
	}

	http_.WriteJSON(w, http.StatusCreated, created)

	return nil
}

// HandleListComments serves the comments on an anime.
func (ht *HTTPTransport) HandleListComments(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		http_.WriteError(w, http.StatusNotFound, "Anime not found")

		return
	}

	comments, err := ht.animeSvc.ListComments(r.Context(), id)
	if err != nil {
		ht.log.ErrorContext(r.Context(), "list comments failed", "error", err)
		http_.WriteInternalError(w)

		return
	}

	http_.WriteJSON(w, http.StatusOK, comments)
}

type createCommentRequest struct {
	Content string `json:"content"`
}

// HandleCreateComment adds a comment. The author is the session identity.
func (ht *HTTPTransport) HandleCreateComment(w http.ResponseWriter, r *http.Request) {
	_ = ht.handleCreateComment(w, r)
}

func (ht *HTTPTransport) handleCreateComment(w http.ResponseWriter, r *http.Request) (err error) {
	log := ht.log.With(logging.Group("http", "method", r.Method, "url", r.URL.String()))

	defer func(ctx context.Context) {
		if err != nil {
			log.WarnContext(ctx, "create comment failed", "error", err)
		}
	}(r.Context())

	identity, ok := ht.gate.RequireIdentity(w, r)
	if !ok {
		return domain.ErrUnauthenticated
	}

	animeID, err := pathID(r)
	if err != nil {
		http_.WriteError(w, http.StatusNotFound, "Anime not found")

		return fmt.Errorf("parse anime id: %w", err)
	}

	var req createCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http_.WriteError(w, http.StatusBadRequest, "Invalid request body")

		return fmt.Errorf("decode body: %w", err)
	}

	created, err := ht.animeSvc.CreateComment(r.Context(), animeID, identity.ID, req.Content)
	if err != nil {
		var vErr *domain.ValidationError

		switch {
		case errors.As(err, &vErr):
			http_.WriteFieldError(w, http.StatusBadRequest, vErr.Message, vErr.Field)
		case errors.Is(err, domain.ErrAnimeNotFound):
			http_.WriteError(w, http.StatusNotFound, "Anime not found")
		default:
			http_.WriteInternalError(w)
		}

		return fmt.Errorf("create comment: %w", err)
	}

	http_.WriteJSON(w, http.StatusCreated, created)

	return nil
}

// HandleMetadataSearch proxies the metadata search API for auto-fill
// suggestions.
func (ht *HTTPTransport) HandleMetadataSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		http_.WriteFieldError(w, http.StatusBadRequest, "Query is required", "q")

		return
	}

	body, err := ht.metadata.Search(r.Context(), query)
	if err != nil {
		ht.log.ErrorContext(r.Context(), "metadata search failed", "error", err)
		http_.WriteError(w, http.StatusInternalServerError, "Failed to fetch from Jikan API")

		return
	}

	w.Header().Set("Content-Type", "application/json")
	//nolint:errcheck
	w.Write(body)
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse id: %w", err)
	}

	return id, nil
}
