package httpserver

import (
	"encoding/json"
	"net/http"

	"github.com/Amen1412/strem-mal-addon/internal/domain"
)

const (
	imageBaseURL   = "https://image.tmdb.org/t/p"
	posterWidth    = "w500"
	backdropWidth  = "w780"
	manifestID     = "org.malayalam.catalog"
	addonVersion   = "1.0.0"
	catalogID      = "malayalam"
	catalogDisplay = "Malayalam"
)

type manifestResponse struct {
	ID          string              `json:"id"`
	Version     string              `json:"version"`
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Resources   []string            `json:"resources"`
	Types       []string            `json:"types"`
	Catalogs    []catalogDescriptor `json:"catalogs"`
	IDPrefixes  []string            `json:"idPrefixes"`
}

type catalogDescriptor struct {
	Type string `json:"type"`
	ID   string `json:"id"`
	Name string `json:"name"`
}

type catalogResponse struct {
	Metas []metaResponse `json:"metas"`
}

type metaResponse struct {
	ID          string  `json:"id"`
	Type        string  `json:"type"`
	Name        string  `json:"name"`
	Poster      *string `json:"poster"`
	Description string  `json:"description"`
	ReleaseInfo string  `json:"releaseInfo"`
	Background  *string `json:"background"`
}

func (s *Server) handleManifest(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, manifestResponse{
		ID:          manifestID,
		Version:     addonVersion,
		Name:        catalogDisplay,
		Description: "Latest Malayalam Movies on OTT",
		Resources:   []string{"catalog"},
		Types:       []string{"movie"},
		Catalogs: []catalogDescriptor{
			{Type: "movie", ID: catalogID, Name: catalogDisplay},
		},
		IDPrefixes: []string{"tt"},
	})
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	movies := s.catalog.Movies()
	metas := make([]metaResponse, 0, len(movies))
	for _, movie := range movies {
		meta, ok := toMeta(movie)
		if !ok {
			continue
		}
		metas = append(metas, meta)
	}
	s.logger.Printf("catalog: returning %d movies", len(metas))
	s.respondJSON(w, http.StatusOK, catalogResponse{Metas: metas})
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	s.catalog.RefreshAsync()
	s.respondJSON(w, http.StatusOK, map[string]string{
		"status": "refresh started in background",
	})
}

// toMeta projects a cached movie into the Stremio meta shape. Movies missing
// an identifier or title are skipped rather than rendered half-empty.
func toMeta(movie domain.Movie) (metaResponse, bool) {
	if !movie.Valid() {
		return metaResponse{}, false
	}
	return metaResponse{
		ID:          movie.IMDBID,
		Type:        "movie",
		Name:        movie.Title,
		Poster:      imageURL(posterWidth, movie.PosterPath),
		Description: movie.Overview,
		ReleaseInfo: movie.ReleaseDate,
		Background:  imageURL(backdropWidth, movie.BackdropPath),
	}, true
}

// imageURL builds a TMDB image URL, or nil when the source path is absent.
func imageURL(width, path string) *string {
	if path == "" {
		return nil
	}
	url := imageBaseURL + "/" + width + path
	return &url
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			s.logger.Printf("failed to encode response: %v", err)
		}
	}
}
