package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func runCLI(t *testing.T, args []string, configPath string, stdin io.Reader) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	if stdin != nil {
		cmd.SetIn(stdin)
	}
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

// newFakeScryfall resolves "Island" by name and reports everything else as
// not found.
func newFakeScryfall(t *testing.T) *httptest.Server {
	t.Helper()
	var srv *httptest.Server
	mux := http.NewServeMux()
	mux.HandleFunc("/cards/collection", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Identifiers []map[string]string `json:"identifiers"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		data := []map[string]any{}
		notFound := []map[string]string{}
		for _, id := range body.Identifiers {
			if strings.EqualFold(id["name"], "Island") {
				data = append(data, map[string]any{
					"name":             "Island",
					"set":              "m21",
					"collector_number": "250",
					"layout":           "normal",
					"image_uris":       map[string]string{"png": srv.URL + "/img/island.png"},
				})
				continue
			}
			notFound = append(notFound, id)
		}
		json.NewEncoder(w).Encode(map[string]any{"object": "list", "not_found": notFound, "data": data})
	})
	mux.HandleFunc("/img/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("png bytes"))
	})
	srv = httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

// writeTestConfig points the deck settings at apiBase and a fresh output root.
func writeTestConfig(t *testing.T, apiBase string) (configPath, outputRoot string) {
	t.Helper()
	dir := t.TempDir()
	outputRoot = filepath.Join(dir, "decks")
	configPath = filepath.Join(dir, "deckbox.yaml")
	content := fmt.Sprintf("deck:\n  outputRoot: %s\n  apiBase: %s\n  batchPause: 0s\n  imageRate: 0\n", outputRoot, apiBase)
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return configPath, outputRoot
}
