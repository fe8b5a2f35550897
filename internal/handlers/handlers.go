package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"deckbox/internal/builder"
	"deckbox/internal/store"
)

// DeckBuilder runs one deck build.
type DeckBuilder interface {
	Build(ctx context.Context, req builder.Request) (*builder.Result, error)
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	store   *store.MemoryStore
	builder DeckBuilder
}

// New creates a new handler
func New(store *store.MemoryStore, b DeckBuilder) *Handler {
	return &Handler{
		store:   store,
		builder: b,
	}
}

// Store returns the handler's store (for testing)
func (h *Handler) Store() *store.MemoryStore {
	return h.store
}

// errorResponse is the body of every failed request.
type errorResponse struct {
	Status   string `json:"status"`
	Category string `json:"category,omitempty"`
	Message  string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, category, message string) {
	writeJSON(w, status, errorResponse{Status: "error", Category: category, Message: message})
}

// statusFor maps a build failure class to the HTTP status reported to callers:
// bad input is the caller's fault, resolver trouble is an upstream failure and
// everything else is ours.
func statusFor(category string) int {
	switch category {
	case "parse":
		return http.StatusBadRequest
	case "api", "decode":
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
