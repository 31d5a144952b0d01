package animesvc

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	context_ "github.com/axelsub/axelsub/internal/infra/context"
	"github.com/axelsub/axelsub/internal/infra/logging"
)

const TraceIDHeader = "X-Request-ID"

// MetadataClient defines the interface for the external anime metadata
// search used for auto-fill suggestions. Results pass through verbatim.
type MetadataClient interface {
	// Search queries the metadata API and returns the raw JSON response.
	Search(ctx context.Context, query string) ([]byte, error)
}

// JikanClientConfig holds configuration for the Jikan metadata client.
type JikanClientConfig struct {
	// SearchURL is the Jikan anime search endpoint
	SearchURL string `env:"SEARCH_URL" default:"https://api.jikan.moe/v4/anime"`
}

// JikanClient implements MetadataClient against the Jikan REST API.
type JikanClient struct {
	httpClient *http.Client
	log        logging.Logger
	cfg        JikanClientConfig
}

var _ MetadataClient = (*JikanClient)(nil)

// NewJikanClient creates a new JikanClient with the given configuration.
// If httpClient is nil, http.DefaultClient will be used.
func NewJikanClient(cfg JikanClientConfig, httpClient *http.Client) *JikanClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &JikanClient{
		httpClient: httpClient,
		log:        logging.GetLogger("svc.animesvc.jikan_client"),
		cfg:        cfg,
	}
}

// Search implements MetadataClient.Search. Only safe-for-work results are
// requested.
func (c *JikanClient) Search(ctx context.Context, query string) ([]byte, error) {
	searchURL := c.cfg.SearchURL + "?q=" + url.QueryEscape(query) + "&sfw"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}

	if traceID, ok := context_.TraceIDFromContext(ctx); ok {
		req.Header.Set(TraceIDHeader, traceID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status: %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	return body, nil
}
