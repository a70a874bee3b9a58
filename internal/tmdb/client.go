package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// ErrNoRegionalOffers is returned when the watch-providers response carries no
// entry for the requested region.
var ErrNoRegionalOffers = errors.New("tmdb: no offers for region")

// DiscoverQuery holds the filters for a discover request.
type DiscoverQuery struct {
	Language       string
	Region         string
	ReleaseDateLTE string
	Page           int
}

// DiscoverResult is one candidate movie from a discover page.
type DiscoverResult struct {
	ID           int64  `json:"id"`
	Title        string `json:"title"`
	Overview     string `json:"overview"`
	ReleaseDate  string `json:"release_date"`
	PosterPath   string `json:"poster_path"`
	BackdropPath string `json:"backdrop_path"`
}

// Provider is a single streaming service entry in a watch-providers response.
type Provider struct {
	ProviderID   int64  `json:"provider_id"`
	ProviderName string `json:"provider_name"`
}

// ProviderOffers groups the offer categories for one region.
type ProviderOffers struct {
	Flatrate []Provider `json:"flatrate"`
	Buy      []Provider `json:"buy"`
	Rent     []Provider `json:"rent"`
}

// Available reports whether at least one offer category has an entry.
func (o ProviderOffers) Available() bool {
	return len(o.Flatrate) > 0 || len(o.Buy) > 0 || len(o.Rent) > 0
}

// ExternalIDs holds the cross-reference identifiers for a movie.
type ExternalIDs struct {
	IMDBID string `json:"imdb_id"`
}

// Client defines the contract for querying the TMDB API.
type Client interface {
	Discover(ctx context.Context, query DiscoverQuery) ([]DiscoverResult, error)
	WatchProviders(ctx context.Context, movieID int64, region string) (ProviderOffers, error)
	ExternalIDs(ctx context.Context, movieID int64) (ExternalIDs, error)
}

// HTTPClient implements Client over HTTP.
type HTTPClient struct {
	baseURL *url.URL
	apiKey  string
	client  *http.Client
	logger  *log.Logger
}

// NewHTTPClient constructs a new HTTP-backed TMDB client. Request deadlines
// are taken from the caller's context; timeout only bounds connection setup.
func NewHTTPClient(baseURL, apiKey string, timeout time.Duration, logger *log.Logger) (*HTTPClient, error) {
	if logger == nil {
		logger = log.Default()
	}
	parsed, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse tmdb url: %w", err)
	}
	return &HTTPClient{
		baseURL: parsed,
		apiKey:  apiKey,
		client: &http.Client{
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				DialContext: (&net.Dialer{
					Timeout:   timeout,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout:   timeout,
				ResponseHeaderTimeout: timeout,
				ExpectContinueTimeout: 1 * time.Second,
			},
		},
		logger: logger,
	}, nil
}

// Discover fetches one page of movies matching the query.
func (c *HTTPClient) Discover(ctx context.Context, query DiscoverQuery) ([]DiscoverResult, error) {
	params := url.Values{}
	params.Set("with_original_language", query.Language)
	params.Set("region", query.Region)
	params.Set("release_date.lte", query.ReleaseDateLTE)
	params.Set("sort_by", "release_date.desc")
	params.Set("page", strconv.Itoa(query.Page))

	var payload discoverResponse
	if err := c.get(ctx, "/discover/movie", params, &payload); err != nil {
		return nil, err
	}
	return payload.Results, nil
}

// WatchProviders fetches the OTT offers for a movie in one region.
func (c *HTTPClient) WatchProviders(ctx context.Context, movieID int64, region string) (ProviderOffers, error) {
	var payload providersResponse
	path := fmt.Sprintf("/movie/%d/watch/providers", movieID)
	if err := c.get(ctx, path, nil, &payload); err != nil {
		return ProviderOffers{}, err
	}
	offers, ok := payload.Results[region]
	if !ok {
		return ProviderOffers{}, ErrNoRegionalOffers
	}
	return offers, nil
}

// ExternalIDs fetches the cross-reference identifiers for a movie.
func (c *HTTPClient) ExternalIDs(ctx context.Context, movieID int64) (ExternalIDs, error) {
	var payload ExternalIDs
	path := fmt.Sprintf("/movie/%d/external_ids", movieID)
	if err := c.get(ctx, path, nil, &payload); err != nil {
		return ExternalIDs{}, err
	}
	return payload, nil
}

func (c *HTTPClient) get(ctx context.Context, path string, params url.Values, dst interface{}) error {
	if params == nil {
		params = url.Values{}
	}
	params.Set("api_key", c.apiKey)

	endpoint := *c.baseURL
	endpoint.Path += path
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Printf("tmdb: unexpected status %d for %s", resp.StatusCode, path)
		return fmt.Errorf("tmdb: upstream returned %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("decode tmdb response: %w", err)
	}
	return nil
}

type discoverResponse struct {
	Page    int              `json:"page"`
	Results []DiscoverResult `json:"results"`
}

type providersResponse struct {
	Results map[string]ProviderOffers `json:"results"`
}
