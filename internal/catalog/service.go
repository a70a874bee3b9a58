package catalog

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/Amen1412/strem-mal-addon/internal/domain"
	"github.com/Amen1412/strem-mal-addon/internal/store"
	"github.com/Amen1412/strem-mal-addon/internal/tmdb"
)

const (
	// Discover filters are fixed: Malayalam-language releases available in India.
	discoverLanguage = "ml"
	watchRegion      = "IN"

	imdbIDPrefix = "tt"
)

// Options tunes a Service. Zero values fall back to the defaults below.
type Options struct {
	MaxPages        int
	DiscoverTimeout time.Duration
	LookupTimeout   time.Duration
	RefreshInterval time.Duration
	Logger          *log.Logger
}

// Service owns the movie cache and rebuilds it from TMDB on demand.
type Service struct {
	tmdb            tmdb.Client
	cache           *store.Cache
	logger          *log.Logger
	maxPages        int
	discoverTimeout time.Duration
	lookupTimeout   time.Duration
	refreshInterval time.Duration
}

// New constructs a Service around a TMDB client.
func New(client tmdb.Client, opts Options) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	maxPages := opts.MaxPages
	if maxPages <= 0 {
		maxPages = 300
	}
	discoverTimeout := opts.DiscoverTimeout
	if discoverTimeout <= 0 {
		discoverTimeout = 15 * time.Second
	}
	lookupTimeout := opts.LookupTimeout
	if lookupTimeout <= 0 {
		lookupTimeout = 10 * time.Second
	}
	return &Service{
		tmdb:            client,
		cache:           store.NewCache(),
		logger:          logger,
		maxPages:        maxPages,
		discoverTimeout: discoverTimeout,
		lookupTimeout:   lookupTimeout,
		refreshInterval: opts.RefreshInterval,
	}
}

// Movies returns the current cache snapshot in discovery order.
func (s *Service) Movies() []domain.Movie {
	return s.cache.Snapshot()
}

// Len reports the number of cached movies.
func (s *Service) Len() int {
	return s.cache.Len()
}

// Refresh rebuilds the cache from scratch. It never fails outward: page
// errors stop pagination but keep what was already accumulated, and per-movie
// lookup errors only exclude that movie. The finished list replaces the cache
// in one step, so readers see either the old or the new snapshot.
func (s *Service) Refresh(ctx context.Context) {
	s.logger.Println("catalog: refreshing Malayalam OTT movies")
	started := time.Now()

	today := time.Now().Format("2006-01-02")
	var accepted []domain.Movie

pages:
	for page := 1; page <= s.maxPages; page++ {
		results, err := s.discoverPage(ctx, page, today)
		if err != nil {
			s.logger.Printf("catalog: page %d failed, stopping pagination: %v", page, err)
			break
		}
		if len(results) == 0 {
			break
		}

		for _, candidate := range results {
			if ctx.Err() != nil {
				break pages
			}
			if candidate.ID == 0 || candidate.Title == "" {
				continue
			}
			movie, ok := s.enrich(ctx, candidate)
			if !ok {
				continue
			}
			accepted = append(accepted, movie)
		}
	}

	unique := dedupByIMDBID(accepted)
	s.cache.Replace(unique)
	s.logger.Printf("catalog: cached %d movies in %s", len(unique), time.Since(started).Round(time.Millisecond))
}

// RefreshAsync launches Refresh on a detached goroutine and returns
// immediately. Overlapping runs are not serialized; the cache belongs to
// whichever run replaces it last.
func (s *Service) RefreshAsync() {
	go s.Refresh(context.Background())
}

// Run performs the initial refresh and then, when a positive interval is
// configured, keeps refreshing on a ticker until the context is cancelled.
func (s *Service) Run(ctx context.Context) {
	s.Refresh(ctx)
	if s.refreshInterval <= 0 {
		return
	}

	ticker := time.NewTicker(s.refreshInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Refresh(ctx)
		}
	}
}

func (s *Service) discoverPage(ctx context.Context, page int, today string) ([]tmdb.DiscoverResult, error) {
	pageCtx, cancel := context.WithTimeout(ctx, s.discoverTimeout)
	defer cancel()

	return s.tmdb.Discover(pageCtx, tmdb.DiscoverQuery{
		Language:       discoverLanguage,
		Region:         watchRegion,
		ReleaseDateLTE: today,
		Page:           page,
	})
}

// enrich runs the availability and identifier lookups for one candidate.
// Every failure mode means "skip this movie", never an aborted page.
func (s *Service) enrich(ctx context.Context, candidate tmdb.DiscoverResult) (domain.Movie, bool) {
	provCtx, cancel := context.WithTimeout(ctx, s.lookupTimeout)
	offers, err := s.tmdb.WatchProviders(provCtx, candidate.ID, watchRegion)
	cancel()
	if err != nil {
		return domain.Movie{}, false
	}
	if !offers.Available() {
		return domain.Movie{}, false
	}

	extCtx, cancel := context.WithTimeout(ctx, s.lookupTimeout)
	ids, err := s.tmdb.ExternalIDs(extCtx, candidate.ID)
	cancel()
	if err != nil {
		s.logger.Printf("catalog: no IMDb id for %q: %v", candidate.Title, err)
		return domain.Movie{}, false
	}
	if !strings.HasPrefix(ids.IMDBID, imdbIDPrefix) {
		return domain.Movie{}, false
	}

	return domain.Movie{
		TMDBID:       candidate.ID,
		IMDBID:       ids.IMDBID,
		Title:        candidate.Title,
		Overview:     candidate.Overview,
		ReleaseDate:  candidate.ReleaseDate,
		PosterPath:   candidate.PosterPath,
		BackdropPath: candidate.BackdropPath,
	}, true
}

// dedupByIMDBID keeps the first occurrence of each IMDb id, preserving order.
func dedupByIMDBID(movies []domain.Movie) []domain.Movie {
	seen := make(map[string]struct{}, len(movies))
	unique := make([]domain.Movie, 0, len(movies))
	for _, movie := range movies {
		if movie.IMDBID == "" {
			continue
		}
		if _, ok := seen[movie.IMDBID]; ok {
			continue
		}
		seen[movie.IMDBID] = struct{}{}
		unique = append(unique, movie)
	}
	return unique
}
