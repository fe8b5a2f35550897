package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"deckbox/internal/config"
)

func main() {
	// DECKBOX_CONFIG points at an explicit file; otherwise the usual
	// locations are searched.
	cfg, err := config.LoadConfig(os.Getenv("DECKBOX_CONFIG"))
	if err != nil {
		log.Fatal("Failed to load configuration: ", err)
	}
	log.Printf("Loaded configuration: output root = %s, card database = %s", cfg.Deck.OutputRoot, cfg.Deck.APIBase)

	handler, err := SetupServer(cfg, nil)
	if err != nil {
		log.Fatal("Failed to set up server: ", err)
	}

	addr := cfg.Server.Host + ":" + cfg.Server.Port

	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Starting server on %s", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server failed to start: ", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	// In-flight builds get until the shutdown timeout to finish
	if err := server.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown: ", err)
	}

	log.Println("Server gracefully stopped")
}
