package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the complete deckbox configuration.
type Config struct {
	Server ServerSettings `yaml:"server" mapstructure:"server"`
	Deck   DeckSettings   `yaml:"deck" mapstructure:"deck"`
}

// ServerSettings contains HTTP server settings
type ServerSettings struct {
	Port            string        `yaml:"port" mapstructure:"port"`
	Host            string        `yaml:"host" mapstructure:"host"`
	ReadTimeout     time.Duration `yaml:"readTimeout" mapstructure:"readTimeout"`
	WriteTimeout    time.Duration `yaml:"writeTimeout" mapstructure:"writeTimeout"`
	IdleTimeout     time.Duration `yaml:"idleTimeout" mapstructure:"idleTimeout"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout" mapstructure:"shutdownTimeout"`
	// Builds run inside the request, so this must cover a full deck build.
	RequestTimeout time.Duration `yaml:"requestTimeout" mapstructure:"requestTimeout"`

	// Rate limiting (using golang.org/x/time/rate)
	RateLimit      float64 `yaml:"rateLimit" mapstructure:"rateLimit"`
	RateLimitBurst int     `yaml:"rateLimitBurst" mapstructure:"rateLimitBurst"`

	MaxRequestSize int64 `yaml:"maxRequestSize" mapstructure:"maxRequestSize"`
}

// DeckSettings controls how decks are resolved and packaged.
type DeckSettings struct {
	OutputRoot       string        `yaml:"outputRoot" mapstructure:"outputRoot"`
	APIBase          string        `yaml:"apiBase" mapstructure:"apiBase"`
	BatchSize        int           `yaml:"batchSize" mapstructure:"batchSize"`
	BatchPause       time.Duration `yaml:"batchPause" mapstructure:"batchPause"`
	HTTPTimeout      time.Duration `yaml:"httpTimeout" mapstructure:"httpTimeout"`
	ImageFormat      string        `yaml:"imageFormat" mapstructure:"imageFormat"`
	ImageRate        float64       `yaml:"imageRate" mapstructure:"imageRate"`
	UserAgent        string        `yaml:"userAgent" mapstructure:"userAgent"`
	MinSetCodeLength int           `yaml:"minSetCodeLength" mapstructure:"minSetCodeLength"`
	MaxSetCodeLength int           `yaml:"maxSetCodeLength" mapstructure:"maxSetCodeLength"`
	MaxNameLength    int           `yaml:"maxNameLength" mapstructure:"maxNameLength"`
}

var imageFormats = map[string]bool{
	"png":         true,
	"large":       true,
	"normal":      true,
	"small":       true,
	"art_crop":    true,
	"border_crop": true,
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerSettings{
			Port:            "10000",
			Host:            "0.0.0.0",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    5 * time.Minute,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			RequestTimeout:  5 * time.Minute,
			RateLimit:       1,
			RateLimitBurst:  5,
			MaxRequestSize:  1048576, // 1MB
		},
		Deck: DeckSettings{
			OutputRoot:       "decks",
			APIBase:          "https://api.scryfall.com",
			BatchSize:        75,
			BatchPause:       500 * time.Millisecond,
			HTTPTimeout:      10 * time.Second,
			ImageFormat:      "png",
			ImageRate:        10,
			UserAgent:        "deckbox/1.0",
			MinSetCodeLength: 3,
			MaxSetCodeLength: 5,
			MaxNameLength:    64,
		},
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Deck.OutputRoot == "" {
		return fmt.Errorf("deck.outputRoot must be set")
	}
	if c.Deck.APIBase == "" {
		return fmt.Errorf("deck.apiBase must be set")
	}
	if c.Deck.BatchSize < 1 || c.Deck.BatchSize > 75 {
		return fmt.Errorf("deck.batchSize must be between 1 and 75")
	}
	if c.Deck.BatchPause < 0 {
		return fmt.Errorf("deck.batchPause cannot be negative")
	}
	if !imageFormats[c.Deck.ImageFormat] {
		return fmt.Errorf("deck.imageFormat %q is not a known image variant", c.Deck.ImageFormat)
	}
	if c.Deck.MinSetCodeLength < 1 {
		return fmt.Errorf("deck.minSetCodeLength must be at least 1")
	}
	if c.Deck.MinSetCodeLength > c.Deck.MaxSetCodeLength {
		return fmt.Errorf("deck.minSetCodeLength cannot be greater than deck.maxSetCodeLength")
	}
	if c.Deck.MaxNameLength < 1 {
		return fmt.Errorf("deck.maxNameLength must be at least 1")
	}
	if c.Server.RateLimit <= 0 {
		return fmt.Errorf("server.rateLimit must be positive")
	}
	if c.Server.MaxRequestSize <= 0 {
		return fmt.Errorf("server.maxRequestSize must be positive")
	}
	return nil
}

// WriteSample writes the default configuration as YAML to path.
func WriteSample(path string) error {
	data, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		return fmt.Errorf("encode sample config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
