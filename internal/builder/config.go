package builder

import (
	"net/http"

	"deckbox/internal/artwork"
	"deckbox/internal/config"
	"deckbox/internal/decklist"
	"deckbox/internal/scryfall"
)

// FromConfig wires a builder with a Scryfall client and artwork fetcher
// configured from cfg.
func FromConfig(cfg *config.Config) *Builder {
	d := cfg.Deck
	client := &http.Client{Timeout: d.HTTPTimeout}

	return New(Options{
		OutputRoot:    d.OutputRoot,
		ImageFormat:   d.ImageFormat,
		MaxNameLength: d.MaxNameLength,
		Grammar: decklist.Grammar{
			MinSetCodeLength: d.MinSetCodeLength,
			MaxSetCodeLength: d.MaxSetCodeLength,
		},
		Resolver: scryfall.NewClient(scryfall.Options{
			BaseURL:    d.APIBase,
			BatchSize:  d.BatchSize,
			BatchPause: d.BatchPause,
			UserAgent:  d.UserAgent,
			HTTPClient: client,
		}),
		Fetcher: artwork.NewFetcher(artwork.Options{
			HTTPClient:        client,
			RequestsPerSecond: d.ImageRate,
			UserAgent:         d.UserAgent,
		}),
	})
}
