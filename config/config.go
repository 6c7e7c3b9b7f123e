// Package config loads environment variables and provides a typed Config used across the bot.
// It applies sensible defaults so the binary can run locally with minimal setup.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	// hack.chat connection
	ServerURL string
	Channel   string
	Nick      string

	// Moderation
	AdminPrefix string

	// Engine tuning
	HistoryLimit      int
	MuteSweepInterval time.Duration
	ReconnectDelay    time.Duration

	// Storage
	DataDir string

	// Database (optional chat archive)
	DBDsn string

	// HTTP
	HTTPAddr string
}

// Load reads environment variables and applies defaults. Missing optional variables
// disable features (e.g., the Postgres chat archive when DB_DSN is unset).
func Load() (*Config, error) {
	cfg := &Config{}

	cfg.ServerURL = os.Getenv("HC_SERVER_URL")
	if cfg.ServerURL == "" {
		cfg.ServerURL = "wss://hack.chat/chat-ws"
	}
	cfg.Channel = os.Getenv("HC_CHANNEL")
	if cfg.Channel == "" {
		cfg.Channel = "lounge"
	}
	cfg.Nick = os.Getenv("HC_NICK")
	if cfg.Nick == "" {
		cfg.Nick = "sunldigv3_bot"
	}

	cfg.AdminPrefix = os.Getenv("HC_ADMIN_PREFIX")
	if cfg.AdminPrefix == "" {
		cfg.AdminPrefix = "sun"
	}

	cfg.HistoryLimit = 1000
	if v := os.Getenv("HC_HISTORY_LIMIT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid HC_HISTORY_LIMIT (positive integer): %q", v)
		}
		cfg.HistoryLimit = n
	}

	cfg.MuteSweepInterval = 10 * time.Second
	if v := os.Getenv("HC_MUTE_SWEEP_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("invalid HC_MUTE_SWEEP_INTERVAL: %q", v)
		}
		cfg.MuteSweepInterval = d
	}

	cfg.ReconnectDelay = 5 * time.Second
	if v := os.Getenv("HC_RECONNECT_DELAY"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("invalid HC_RECONNECT_DELAY: %q", v)
		}
		cfg.ReconnectDelay = d
	}

	cfg.DataDir = os.Getenv("DATA_DIR")
	if cfg.DataDir == "" {
		cfg.DataDir = "data"
	}

	cfg.DBDsn = os.Getenv("DB_DSN")

	cfg.HTTPAddr = os.Getenv("HTTP_ADDR")
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":8080"
	}

	return cfg, nil
}

// Validate checks the fields required before dialing the chat server.
func (c *Config) Validate() error {
	if c.ServerURL == "" || c.Channel == "" || c.Nick == "" {
		return fmt.Errorf("missing hack.chat env: require HC_SERVER_URL, HC_CHANNEL, HC_NICK")
	}
	return nil
}
