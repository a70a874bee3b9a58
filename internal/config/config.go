package config

import (
	"fmt"
	"os"
	"strconv"
)

// DefaultAPIKeyPlaceholder is used as the TMDB credential when the
// environment provides none. Requests made with it fail upstream, which the
// refresh pipeline treats like any other failed page.
const DefaultAPIKeyPlaceholder = "YOUR TMDB API KEY"

// Config captures all runtime configuration derived from environment variables.
type Config struct {
	Port                string
	TMDBAPIKey          string
	TMDBBaseURL         string
	DiscoverTimeoutSecs int
	LookupTimeoutSecs   int
	MaxDiscoverPages    int
	ReadTimeoutSecs     int
	WriteTimeoutSecs    int
	IdleTimeoutSecs     int
	RefreshIntervalHrs  int
}

// Load reads configuration from environment variables, applying defaults and validation.
func Load() (Config, error) {
	cfg := Config{
		Port:                getEnv("PORT", "7000"),
		TMDBAPIKey:          getEnv("TMDB_API_KEY", DefaultAPIKeyPlaceholder),
		TMDBBaseURL:         getEnv("TMDB_BASE_URL", "https://api.themoviedb.org/3"),
		DiscoverTimeoutSecs: getEnvInt("TMDB_DISCOVER_TIMEOUT_SECS", 15),
		LookupTimeoutSecs:   getEnvInt("TMDB_LOOKUP_TIMEOUT_SECS", 10),
		MaxDiscoverPages:    getEnvInt("MAX_DISCOVER_PAGES", 300),
		ReadTimeoutSecs:     getEnvInt("SERVER_READ_TIMEOUT", 15),
		WriteTimeoutSecs:    getEnvInt("SERVER_WRITE_TIMEOUT", 15),
		IdleTimeoutSecs:     getEnvInt("SERVER_IDLE_TIMEOUT", 60),
		RefreshIntervalHrs:  getEnvInt("REFRESH_INTERVAL_HOURS", 0),
	}

	if cfg.TMDBBaseURL == "" {
		return Config{}, fmt.Errorf("TMDB_BASE_URL cannot be empty")
	}
	if cfg.DiscoverTimeoutSecs <= 0 {
		return Config{}, fmt.Errorf("TMDB_DISCOVER_TIMEOUT_SECS must be positive")
	}
	if cfg.LookupTimeoutSecs <= 0 {
		return Config{}, fmt.Errorf("TMDB_LOOKUP_TIMEOUT_SECS must be positive")
	}
	if cfg.MaxDiscoverPages <= 0 {
		return Config{}, fmt.Errorf("MAX_DISCOVER_PAGES must be positive")
	}
	if cfg.RefreshIntervalHrs < 0 {
		return Config{}, fmt.Errorf("REFRESH_INTERVAL_HOURS must be non-negative")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return fallback
}
