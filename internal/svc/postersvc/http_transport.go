package postersvc

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/axelsub/axelsub/internal/domain"
	"github.com/axelsub/axelsub/internal/infra/logging"
	http_ "github.com/axelsub/axelsub/internal/infra/transport/http"
)

// HTTPTransport serves cover images over HTTP.
type HTTPTransport struct {
	posterSvc *PosterService
	log       logging.Logger
}

// NewHTTPTransport creates a new HTTPTransport backed by the given PosterService.
func NewHTTPTransport(posterSvc *PosterService) *HTTPTransport {
	return &HTTPTransport{
		posterSvc: posterSvc,
		log:       logging.GetLogger("svc.postersvc.http_transport"),
	}
}

// Mount registers GET /api/animes/{id}/poster.
func (ht *HTTPTransport) Mount(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/animes/{id}/poster", ht.HandlePoster)
}

// HandlePoster serves the resized cover image of one anime.
func (ht *HTTPTransport) HandlePoster(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http_.WriteError(w, http.StatusNotFound, "Anime not found")

		return
	}

	poster, err := ht.posterSvc.GetPoster(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrAnimeNotFound):
			http_.WriteError(w, http.StatusNotFound, "Anime not found")
		case errors.Is(err, domain.ErrPosterNotFound):
			http_.WriteError(w, http.StatusNotFound, "Poster not found")
		default:
			ht.log.ErrorContext(r.Context(), "get poster failed", "error", err)
			http_.WriteInternalError(w)
		}

		return
	}

	w.Header().Set("Content-Type", poster.MIMEType)
	w.Header().Set("Cache-Control", "public, max-age=86400")
	//nolint:errcheck
	w.Write(poster.Data)
}
