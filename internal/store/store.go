package store

import (
	"sync/atomic"

	"github.com/Amen1412/strem-mal-addon/internal/domain"
)

// Cache holds the current movie list so higher layers never touch the raw
// shared reference. The refresh pipeline is the only writer; handlers read
// whole snapshots. An in-flight refresh is never observable partially:
// writers build a complete slice, then swap it in with a single store.
type Cache struct {
	movies atomic.Value // []domain.Movie
}

// NewCache initializes an empty cache.
func NewCache() *Cache {
	c := &Cache{}
	c.movies.Store([]domain.Movie{})
	return c
}

// Snapshot returns the currently installed movie list. Callers must not
// mutate the returned slice.
func (c *Cache) Snapshot() []domain.Movie {
	return c.movies.Load().([]domain.Movie)
}

// Replace installs a new movie list wholesale. When two refresh runs overlap,
// the later Replace wins regardless of which run started first.
func (c *Cache) Replace(movies []domain.Movie) {
	if movies == nil {
		movies = []domain.Movie{}
	}
	c.movies.Store(movies)
}

// Len reports the size of the current snapshot.
func (c *Cache) Len() int {
	return len(c.Snapshot())
}
