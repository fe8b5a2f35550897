package main

import (
	"fmt"
	"net/http"
	"os"

	"deckbox/internal/builder"
	"deckbox/internal/config"
	"deckbox/internal/handlers"
	"deckbox/internal/store"
)

// SetupServer creates the deck builder, build registry and router for cfg
func SetupServer(cfg *config.Config, opts *handlers.RouterOptions) (http.Handler, error) {
	if err := os.MkdirAll(cfg.Deck.OutputRoot, 0o755); err != nil {
		return nil, fmt.Errorf("create output root: %w", err)
	}

	b := builder.FromConfig(cfg)
	h := handlers.New(store.NewMemoryStore(), b)

	return handlers.SetupRouter(h, cfg, opts), nil
}
