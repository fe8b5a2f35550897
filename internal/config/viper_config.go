package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/spf13/viper"
)

// LoadConfig loads configuration using Viper
// Priority order: Environment variables > Config file > Defaults
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	v.SetConfigName("deckbox")
	v.SetConfigType("yaml")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/deckbox")
	}

	// DECKBOX_DECK_OUTPUTROOT style names work for every key
	v.SetEnvPrefix("deckbox")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Short names for the settings deployments change most
	v.BindEnv("server.port", "PORT")
	v.BindEnv("server.host", "HOST")
	v.BindEnv("server.ratelimit", "RATE_LIMIT")
	v.BindEnv("server.ratelimitburst", "RATE_LIMIT_BURST")
	v.BindEnv("server.maxrequestsize", "MAX_REQUEST_SIZE")
	v.BindEnv("deck.outputroot", "DECK_OUTPUT_ROOT")
	v.BindEnv("deck.apibase", "SCRYFALL_API_BASE")
	v.BindEnv("deck.useragent", "DECK_USER_AGENT")

	setDefaults(v, DefaultConfig())

	// The config file is optional
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.readtimeout", d.Server.ReadTimeout.String())
	v.SetDefault("server.writetimeout", d.Server.WriteTimeout.String())
	v.SetDefault("server.idletimeout", d.Server.IdleTimeout.String())
	v.SetDefault("server.shutdowntimeout", d.Server.ShutdownTimeout.String())
	v.SetDefault("server.requesttimeout", d.Server.RequestTimeout.String())
	v.SetDefault("server.ratelimit", d.Server.RateLimit)
	v.SetDefault("server.ratelimitburst", d.Server.RateLimitBurst)
	v.SetDefault("server.maxrequestsize", d.Server.MaxRequestSize)

	v.SetDefault("deck.outputroot", d.Deck.OutputRoot)
	v.SetDefault("deck.apibase", d.Deck.APIBase)
	v.SetDefault("deck.batchsize", d.Deck.BatchSize)
	v.SetDefault("deck.batchpause", d.Deck.BatchPause.String())
	v.SetDefault("deck.httptimeout", d.Deck.HTTPTimeout.String())
	v.SetDefault("deck.imageformat", d.Deck.ImageFormat)
	v.SetDefault("deck.imagerate", d.Deck.ImageRate)
	v.SetDefault("deck.useragent", d.Deck.UserAgent)
	v.SetDefault("deck.minsetcodelength", d.Deck.MinSetCodeLength)
	v.SetDefault("deck.maxsetcodelength", d.Deck.MaxSetCodeLength)
	v.SetDefault("deck.maxnamelength", d.Deck.MaxNameLength)
}
