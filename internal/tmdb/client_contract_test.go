package tmdb

import (
	"context"
	"io"
	"log"
	"os"
	"testing"
	"time"
)

// TestHTTPClientSmoke runs against the live TMDB API when a real credential
// is present, to catch upstream contract drift.
func TestHTTPClientSmoke(t *testing.T) {
	apiKey := os.Getenv("TMDB_API_KEY")
	if apiKey == "" {
		t.Skip("TMDB_API_KEY not provided")
	}
	client, err := NewHTTPClient("https://api.themoviedb.org/3", apiKey, 5*time.Second, log.New(io.Discard, "", 0))
	if err != nil {
		t.Fatalf("create http client: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	results, err := client.Discover(ctx, DiscoverQuery{
		Language:       "ml",
		Region:         "IN",
		ReleaseDateLTE: time.Now().Format("2006-01-02"),
		Page:           1,
	})
	if err != nil {
		t.Fatalf("discover page 1: %v", err)
	}
	if len(results) == 0 {
		t.Fatal("expected at least one discover result")
	}
	if results[0].ID == 0 {
		t.Fatalf("result missing id: %+v", results[0])
	}
}
