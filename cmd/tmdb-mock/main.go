// Command tmdb-mock serves a canned subset of the TMDB API from a JSON
// fixture file, for running the addon end to end without a real credential.
package main

import (
	"encoding/json"
	"flag"
	"log"
	"net/http"
	"os"
	"strconv"
)

type fixture struct {
	// Pages are served in order for /discover/movie; pages past the end
	// return empty result lists.
	Pages       [][]json.RawMessage        `json:"pages"`
	Providers   map[string]json.RawMessage `json:"providers"`
	ExternalIDs map[string]json.RawMessage `json:"external_ids"`
}

func main() {
	var (
		port = flag.String("port", "9090", "port to listen on")
		data = flag.String("data", "mock-tmdb.json", "path to fixture file")
	)
	flag.Parse()

	file, err := os.ReadFile(*data)
	if err != nil {
		log.Fatalf("read fixture: %v", err)
	}

	var payload fixture
	if err := json.Unmarshal(file, &payload); err != nil {
		log.Fatalf("parse fixture: %v", err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /discover/movie", func(w http.ResponseWriter, r *http.Request) {
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		results := []json.RawMessage{}
		if page >= 1 && page <= len(payload.Pages) {
			results = payload.Pages[page-1]
		}
		writeJSON(w, map[string]interface{}{"page": page, "results": results})
	})
	mux.HandleFunc("GET /movie/{id}/watch/providers", func(w http.ResponseWriter, r *http.Request) {
		body, ok := payload.Providers[r.PathValue("id")]
		if !ok {
			writeJSON(w, map[string]interface{}{"results": map[string]interface{}{}})
			return
		}
		writeRaw(w, body)
	})
	mux.HandleFunc("GET /movie/{id}/external_ids", func(w http.ResponseWriter, r *http.Request) {
		body, ok := payload.ExternalIDs[r.PathValue("id")]
		if !ok {
			writeJSON(w, map[string]interface{}{"imdb_id": nil})
			return
		}
		writeRaw(w, body)
	})

	addr := ":" + *port
	log.Printf("mock tmdb listening on %s (%d discover pages)", addr, len(payload.Pages))
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func writeJSON(w http.ResponseWriter, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func writeRaw(w http.ResponseWriter, body json.RawMessage) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(body)
}
