package domain

// Movie represents a movie that passed the OTT availability and IMDb
// identifier checks. Values are immutable once built by the refresh pipeline.
type Movie struct {
	TMDBID       int64
	IMDBID       string
	Title        string
	Overview     string
	ReleaseDate  string
	PosterPath   string
	BackdropPath string
}

// Valid reports whether the movie satisfies the cache invariant: a non-empty
// title and a non-empty external identifier.
func (m Movie) Valid() bool {
	return m.IMDBID != "" && m.Title != ""
}
