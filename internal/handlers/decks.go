package handlers

import (
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/go-chi/chi/v5"

	"deckbox/internal/builder"
	"deckbox/internal/store"
)

// searchResponse reports a successful build. Key names are part of the public
// contract and keep their spaces.
type searchResponse struct {
	Status   string `json:"status"`
	ID       string `json:"id"`
	DeckSize int    `json:"deck size"`
	DeckName string `json:"deck name"`
	Errors   int    `json:"errors"`
	Images   int    `json:"images"`
	Archive  string `json:"archive"`
	Size     string `json:"archive size,omitempty"`
}

type deckSummary struct {
	*store.BuildRecord
	Archive string `json:"archive"`
	Size    string `json:"size"`
	Age     string `json:"age"`
}

// SearchDecklist builds a deck from the posted decklist and deck name.
func (h *Handler) SearchDecklist(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "parse", "Invalid form data")
		return
	}

	decklist := r.FormValue("decklist")
	if strings.TrimSpace(decklist) == "" {
		writeError(w, http.StatusBadRequest, "parse", "Decklist is required")
		return
	}

	result, err := h.builder.Build(r.Context(), builder.Request{
		Decklist: decklist,
		Name:     r.FormValue("deckName"),
	})
	if err != nil {
		category := builder.Category(err)
		log.Printf("deck build failed (%s): %v", category, err)
		writeError(w, statusFor(category), category, err.Error())
		return
	}

	rec := &store.BuildRecord{
		ID:          result.ID,
		Name:        result.Name,
		DeckSize:    result.DeckSize,
		Errors:      result.Errors,
		Images:      result.Images,
		ArchivePath: result.ArchivePath,
	}
	if info, err := os.Stat(result.ArchivePath); err == nil {
		rec.ArchiveSize = info.Size()
	}
	if err := h.store.SaveBuild(rec); err != nil {
		log.Printf("failed to record build %s: %v", result.ID, err)
	}

	resp := searchResponse{
		Status:   "success",
		ID:       result.ID,
		DeckSize: result.DeckSize,
		DeckName: result.Name,
		Errors:   result.Errors,
		Images:   result.Images,
		Archive:  archiveURL(result.Name),
	}
	if rec.ArchiveSize > 0 {
		resp.Size = humanize.Bytes(uint64(rec.ArchiveSize))
	}
	writeJSON(w, http.StatusOK, resp)
}

// ListDecks lists the decks built by this process, newest first.
func (h *Handler) ListDecks(w http.ResponseWriter, r *http.Request) {
	builds := h.store.ListBuilds()
	out := make([]deckSummary, 0, len(builds))
	for _, b := range builds {
		out = append(out, deckSummary{
			BuildRecord: b,
			Archive:     archiveURL(b.Name),
			Size:        humanize.Bytes(uint64(b.ArchiveSize)),
			Age:         humanize.Time(b.CreatedAt),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"decks": out})
}

// DownloadArchive serves the zip archive of a deck built by this process.
func (h *Handler) DownloadArchive(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	rec, err := h.store.GetBuild(name)
	if err != nil {
		writeError(w, http.StatusNotFound, "", err.Error())
		return
	}

	f, err := os.Open(rec.ArchivePath)
	if err != nil {
		log.Printf("archive for deck %s unavailable: %v", name, err)
		writeError(w, http.StatusNotFound, "", fmt.Sprintf("archive for deck %s not found", name))
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "filesystem", err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filepath.Base(rec.ArchivePath)))
	http.ServeContent(w, r, filepath.Base(rec.ArchivePath), info.ModTime(), f)
}

func archiveURL(name string) string {
	return "/decks/" + url.PathEscape(name) + "/archive"
}
