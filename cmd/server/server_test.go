package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/zip"

	"deckbox/internal/config"
	"deckbox/internal/handlers"
)

// newFakeScryfall answers every collection request with a single Island and
// serves its artwork.
func newFakeScryfall(t *testing.T) *httptest.Server {
	t.Helper()
	var srv *httptest.Server
	mux := http.NewServeMux()
	mux.HandleFunc("/cards/collection", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"object":    "list",
			"not_found": []any{},
			"data": []map[string]any{{
				"id":               "island-id",
				"name":             "Island",
				"set":              "m21",
				"collector_number": "250",
				"layout":           "normal",
				"image_uris":       map[string]string{"png": srv.URL + "/img/island.png"},
			}},
		})
	})
	mux.HandleFunc("/img/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("png bytes"))
	})
	srv = httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func testConfig(t *testing.T, apiBase string) *config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Deck.OutputRoot = filepath.Join(t.TempDir(), "decks")
	cfg.Deck.APIBase = apiBase
	cfg.Deck.BatchPause = 0
	cfg.Deck.ImageRate = 0
	return cfg
}

func TestSetupServer(t *testing.T) {
	cfg := testConfig(t, "http://127.0.0.1:0")
	handler, err := SetupServer(cfg, &handlers.RouterOptions{DisableRequestLogger: true})
	if err != nil {
		t.Fatalf("SetupServer failed: %v", err)
	}

	if _, err := os.Stat(cfg.Deck.OutputRoot); err != nil {
		t.Errorf("expected output root to be created: %v", err)
	}

	testCases := []struct {
		method       string
		path         string
		expectedCode int
	}{
		{"GET", "/health/live", http.StatusOK},
		{"GET", "/health/ready", http.StatusOK},
		{"GET", "/decks", http.StatusOK},
		{"GET", "/decks/unknown/archive", http.StatusNotFound},
		{"POST", "/search_decklist", http.StatusBadRequest}, // No decklist
		{"GET", "/search_decklist", http.StatusMethodNotAllowed},
		{"GET", "/nope", http.StatusNotFound},
	}

	for _, tc := range testCases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, nil)
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			if w.Code != tc.expectedCode {
				t.Errorf("expected status %d, got %d", tc.expectedCode, w.Code)
			}
		})
	}
}

func TestSetupServerBadOutputRoot(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(file, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	cfg := testConfig(t, "http://127.0.0.1:0")
	cfg.Deck.OutputRoot = filepath.Join(file, "decks")

	if _, err := SetupServer(cfg, nil); err == nil {
		t.Error("expected error for an output root under a file")
	}
}

func TestBuildAndDownload(t *testing.T) {
	fake := newFakeScryfall(t)
	cfg := testConfig(t, fake.URL)
	handler, err := SetupServer(cfg, &handlers.RouterOptions{DisableRequestLogger: true})
	if err != nil {
		t.Fatalf("SetupServer failed: %v", err)
	}

	form := url.Values{"decklist": {"3 Island"}, "deckName": {"islands"}}
	req := httptest.NewRequest("POST", "/search_decklist", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var body struct {
		Status   string `json:"status"`
		DeckSize int    `json:"deck size"`
		Archive  string `json:"archive"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid response: %v", err)
	}
	if body.Status != "success" || body.DeckSize != 3 {
		t.Errorf("unexpected response %+v", body)
	}

	req = httptest.NewRequest("GET", body.Archive, nil)
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected archive download, got %d", w.Code)
	}

	zr, err := zip.NewReader(bytes.NewReader(w.Body.Bytes()), int64(w.Body.Len()))
	if err != nil {
		t.Fatalf("downloaded archive is not a zip: %v", err)
	}
	names := make(map[string]bool)
	for _, f := range zr.File {
		names[f.Name] = true
	}
	for _, want := range []string{
		"islands/islands-manifest.txt",
		"islands/islands-responses.json",
		"islands/cards/Island-1.png",
		"islands/cards/Island-3.png",
	} {
		if !names[want] {
			t.Errorf("archive missing %s (have %v)", want, names)
		}
	}
}
