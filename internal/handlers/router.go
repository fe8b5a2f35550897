package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"deckbox/internal/config"
	localMiddleware "deckbox/internal/middleware"
)

// RouterOptions allows customization of router setup for tests
type RouterOptions struct {
	DisableRateLimiting  bool
	DisableRequestLogger bool
	CustomMiddleware     []func(http.Handler) http.Handler
}

// SetupRouter creates the application router with all routes and middleware
func SetupRouter(h *Handler, cfg *config.Config, opts *RouterOptions) *chi.Mux {
	if opts == nil {
		opts = &RouterOptions{}
	}

	r := chi.NewRouter()

	// Chi's built-in middleware (conditionally applied)
	if !opts.DisableRequestLogger {
		r.Use(middleware.Logger)
	}
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.Server.RequestTimeout))

	r.Use(localMiddleware.RequestSizeLimiter(cfg.Server.MaxRequestSize))
	r.Use(localMiddleware.SecurityHeaders())

	for _, mw := range opts.CustomMiddleware {
		r.Use(mw)
	}

	// Only builds are rate limited; listing and downloads stay cheap.
	r.Group(func(r chi.Router) {
		if !opts.DisableRateLimiting {
			rateLimiter := localMiddleware.NewRateLimiter(cfg.Server.RateLimit, cfg.Server.RateLimitBurst)
			r.Use(rateLimiter.Middleware())
		}
		r.Post("/search_decklist", h.SearchDecklist)
	})

	r.Get("/decks", h.ListDecks)
	r.Get("/decks/{name}/archive", h.DownloadArchive)

	// Health check endpoints (no auth required)
	r.Get("/health/live", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		if h.builder == nil {
			http.Error(w, "builder not configured", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	return r
}
