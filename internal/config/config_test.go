package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadConfig(t *testing.T) {
	// Test loading default config when file doesn't exist
	t.Run("LoadDefaultWhenMissing", func(t *testing.T) {
		config, err := LoadConfig("nonexistent.yaml")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if config == nil {
			t.Fatal("expected default config, got nil")
		}
		if config.Deck.BatchSize != 75 {
			t.Errorf("expected BatchSize 75, got %d", config.Deck.BatchSize)
		}
		if config.Deck.BatchPause != 500*time.Millisecond {
			t.Errorf("expected BatchPause 500ms, got %v", config.Deck.BatchPause)
		}
		if config.Deck.OutputRoot != "decks" {
			t.Errorf("expected OutputRoot decks, got %q", config.Deck.OutputRoot)
		}
	})

	// Test loading from YAML file
	t.Run("LoadFromYAML", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "test-config.yaml")
		yamlContent := `
server:
  port: "8080"
  rateLimit: 2.5
deck:
  outputRoot: /srv/decks
  batchSize: 50
  batchPause: 1s
  imageFormat: large
  maxSetCodeLength: 6
`
		if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.Server.Port != "8080" {
			t.Errorf("expected Port 8080, got %q", config.Server.Port)
		}
		if config.Server.RateLimit != 2.5 {
			t.Errorf("expected RateLimit 2.5, got %v", config.Server.RateLimit)
		}
		if config.Deck.OutputRoot != "/srv/decks" {
			t.Errorf("expected OutputRoot /srv/decks, got %q", config.Deck.OutputRoot)
		}
		if config.Deck.BatchSize != 50 {
			t.Errorf("expected BatchSize 50, got %d", config.Deck.BatchSize)
		}
		if config.Deck.BatchPause != time.Second {
			t.Errorf("expected BatchPause 1s, got %v", config.Deck.BatchPause)
		}
		if config.Deck.ImageFormat != "large" {
			t.Errorf("expected ImageFormat large, got %q", config.Deck.ImageFormat)
		}
		if config.Deck.MaxSetCodeLength != 6 {
			t.Errorf("expected MaxSetCodeLength 6, got %d", config.Deck.MaxSetCodeLength)
		}
		// Untouched keys keep their defaults
		if config.Deck.MinSetCodeLength != 3 {
			t.Errorf("expected MinSetCodeLength 3, got %d", config.Deck.MinSetCodeLength)
		}
	})

	t.Run("EnvironmentOverridesFile", func(t *testing.T) {
		t.Setenv("DECK_OUTPUT_ROOT", "/tmp/env-decks")
		t.Setenv("PORT", "9999")

		config, err := LoadConfig("nonexistent.yaml")
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}
		if config.Deck.OutputRoot != "/tmp/env-decks" {
			t.Errorf("expected OutputRoot from env, got %q", config.Deck.OutputRoot)
		}
		if config.Server.Port != "9999" {
			t.Errorf("expected Port from env, got %q", config.Server.Port)
		}
	})

	t.Run("InvalidFileValues", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "bad.yaml")
		if err := os.WriteFile(configPath, []byte("deck:\n  batchSize: 200\n"), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}
		if _, err := LoadConfig(configPath); err == nil {
			t.Error("expected validation error for batchSize 200")
		}
	})
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(c *Config)
		wantError bool
		errorMsg  string
	}{
		{
			name:      "ValidConfig",
			mutate:    func(c *Config) {},
			wantError: false,
		},
		{
			name:      "BatchSizeTooLarge",
			mutate:    func(c *Config) { c.Deck.BatchSize = 76 },
			wantError: true,
			errorMsg:  "batchSize must be between 1 and 75",
		},
		{
			name:      "MissingOutputRoot",
			mutate:    func(c *Config) { c.Deck.OutputRoot = "" },
			wantError: true,
			errorMsg:  "outputRoot must be set",
		},
		{
			name:      "UnknownImageFormat",
			mutate:    func(c *Config) { c.Deck.ImageFormat = "tiff" },
			wantError: true,
			errorMsg:  "not a known image variant",
		},
		{
			name: "SetCodeBoundsInverted",
			mutate: func(c *Config) {
				c.Deck.MinSetCodeLength = 5
				c.Deck.MaxSetCodeLength = 3
			},
			wantError: true,
			errorMsg:  "cannot be greater than",
		},
		{
			name:      "NegativePause",
			mutate:    func(c *Config) { c.Deck.BatchPause = -time.Second },
			wantError: true,
			errorMsg:  "cannot be negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.mutate(config)
			err := config.Validate()
			if tt.wantError {
				if err == nil {
					t.Errorf("expected error containing '%s', got nil", tt.errorMsg)
				} else if !strings.Contains(err.Error(), tt.errorMsg) {
					t.Errorf("expected error containing '%s', got '%s'", tt.errorMsg, err.Error())
				}
			} else if err != nil {
				t.Errorf("expected no error, got %v", err)
			}
		})
	}
}

func TestWriteSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deckbox.yaml")
	if err := WriteSample(path); err != nil {
		t.Fatalf("failed to write sample: %v", err)
	}

	config, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("sample config does not load: %v", err)
	}
	if config.Deck.APIBase != DefaultConfig().Deck.APIBase {
		t.Errorf("expected APIBase %q, got %q", DefaultConfig().Deck.APIBase, config.Deck.APIBase)
	}
	if config.Deck.BatchPause != DefaultConfig().Deck.BatchPause {
		t.Errorf("expected BatchPause %v, got %v", DefaultConfig().Deck.BatchPause, config.Deck.BatchPause)
	}
}
