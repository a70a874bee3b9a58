package httpserver

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/Amen1412/strem-mal-addon/internal/config"
	"github.com/Amen1412/strem-mal-addon/internal/domain"
)

// fakeCatalog stubs the catalog service for handler tests.
type fakeCatalog struct {
	movies    []domain.Movie
	refreshed int
}

func (f *fakeCatalog) Movies() []domain.Movie { return f.movies }
func (f *fakeCatalog) Len() int               { return len(f.movies) }
func (f *fakeCatalog) RefreshAsync()          { f.refreshed++ }

func buildTestServer(tb testing.TB, movies []domain.Movie) (*Server, *fakeCatalog) {
	tb.Helper()
	cfg := config.Config{
		Port:             "0",
		ReadTimeoutSecs:  15,
		WriteTimeoutSecs: 15,
		IdleTimeoutSecs:  60,
	}
	catalog := &fakeCatalog{movies: movies}
	srv := New(cfg, catalog, log.New(io.Discard, "", 0))
	// Replace chi router to avoid default middleware noise.
	srv.router = chi.NewRouter()
	srv.registerRoutes()
	return srv, catalog
}

func doRequest(t *testing.T, srv *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, req)
	return rec
}

func TestHandleManifest(t *testing.T) {
	srv, _ := buildTestServer(t, nil)

	rec := doRequest(t, srv, "/manifest.json")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var manifest struct {
		ID         string   `json:"id"`
		Version    string   `json:"version"`
		Name       string   `json:"name"`
		Resources  []string `json:"resources"`
		Types      []string `json:"types"`
		IDPrefixes []string `json:"idPrefixes"`
		Catalogs   []struct {
			Type string `json:"type"`
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"catalogs"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &manifest); err != nil {
		t.Fatalf("decode manifest: %v", err)
	}

	if manifest.ID != "org.malayalam.catalog" {
		t.Fatalf("manifest id = %s", manifest.ID)
	}
	if manifest.Version != "1.0.0" || manifest.Name != "Malayalam" {
		t.Fatalf("unexpected manifest header: %+v", manifest)
	}
	if len(manifest.Resources) != 1 || manifest.Resources[0] != "catalog" {
		t.Fatalf("resources = %v", manifest.Resources)
	}
	if len(manifest.Types) != 1 || manifest.Types[0] != "movie" {
		t.Fatalf("types = %v", manifest.Types)
	}
	if len(manifest.IDPrefixes) != 1 || manifest.IDPrefixes[0] != "tt" {
		t.Fatalf("idPrefixes = %v", manifest.IDPrefixes)
	}
	if len(manifest.Catalogs) != 1 || manifest.Catalogs[0].ID != "malayalam" || manifest.Catalogs[0].Type != "movie" {
		t.Fatalf("catalogs = %+v", manifest.Catalogs)
	}
}

func TestHandleCatalog(t *testing.T) {
	srv, _ := buildTestServer(t, []domain.Movie{
		{
			IMDBID:       "tt1000000",
			Title:        "Title A",
			Overview:     "A movie",
			ReleaseDate:  "2024-06-01",
			PosterPath:   "/poster.jpg",
			BackdropPath: "/backdrop.jpg",
		},
		{
			IMDBID:      "tt2000000",
			Title:       "No Images",
			ReleaseDate: "2024-05-01",
		},
		// Fails projection: no title.
		{IMDBID: "tt3000000"},
	})

	rec := doRequest(t, srv, "/catalog/movie/malayalam.json")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var payload struct {
		Metas []struct {
			ID          string  `json:"id"`
			Type        string  `json:"type"`
			Name        string  `json:"name"`
			Poster      *string `json:"poster"`
			Description string  `json:"description"`
			ReleaseInfo string  `json:"releaseInfo"`
			Background  *string `json:"background"`
		} `json:"metas"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode catalog: %v", err)
	}

	if len(payload.Metas) != 2 {
		t.Fatalf("got %d metas, want 2", len(payload.Metas))
	}

	first := payload.Metas[0]
	if first.ID != "tt1000000" || first.Type != "movie" || first.Name != "Title A" {
		t.Fatalf("unexpected meta: %+v", first)
	}
	if first.Poster == nil || *first.Poster != "https://image.tmdb.org/t/p/w500/poster.jpg" {
		t.Fatalf("poster = %v", first.Poster)
	}
	if first.Background == nil || *first.Background != "https://image.tmdb.org/t/p/w780/backdrop.jpg" {
		t.Fatalf("background = %v", first.Background)
	}
	if first.ReleaseInfo != "2024-06-01" || first.Description != "A movie" {
		t.Fatalf("unexpected meta fields: %+v", first)
	}

	second := payload.Metas[1]
	if second.Poster != nil || second.Background != nil {
		t.Fatalf("missing image paths must serialize as null: %+v", second)
	}
}

func TestHandleCatalogEmptyCache(t *testing.T) {
	srv, _ := buildTestServer(t, nil)

	rec := doRequest(t, srv, "/catalog/movie/malayalam.json")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != `{"metas":[]}` {
		t.Fatalf("body = %s, want {\"metas\":[]}", got)
	}
}

func TestHandleRefresh(t *testing.T) {
	srv, catalog := buildTestServer(t, nil)

	rec := doRequest(t, srv, "/refresh")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var payload map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode refresh ack: %v", err)
	}
	if payload["status"] != "refresh started in background" {
		t.Fatalf("status = %q", payload["status"])
	}
	if catalog.refreshed != 1 {
		t.Fatalf("refresh triggered %d times, want 1", catalog.refreshed)
	}
}

func TestHandleHealthz(t *testing.T) {
	srv, _ := buildTestServer(t, []domain.Movie{{IMDBID: "tt1", Title: "One"}})

	rec := doRequest(t, srv, "/healthz")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var payload struct {
		Status string `json:"status"`
		Movies int    `json:"movies"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode healthz: %v", err)
	}
	if payload.Status != "ok" || payload.Movies != 1 {
		t.Fatalf("unexpected healthz payload: %+v", payload)
	}
}
