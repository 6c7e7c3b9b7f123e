package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"HC_SERVER_URL", "HC_CHANNEL", "HC_NICK", "HC_ADMIN_PREFIX", "HC_HISTORY_LIMIT", "HC_MUTE_SWEEP_INTERVAL", "HC_RECONNECT_DELAY", "DATA_DIR", "DB_DSN", "HTTP_ADDR"} {
		t.Setenv(k, "")
	}
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.ServerURL != "wss://hack.chat/chat-ws" {
		t.Errorf("ServerURL = %q", cfg.ServerURL)
	}
	if cfg.Channel != "lounge" || cfg.Nick == "" {
		t.Errorf("Channel/Nick defaults wrong: %q %q", cfg.Channel, cfg.Nick)
	}
	if cfg.AdminPrefix != "sun" {
		t.Errorf("AdminPrefix = %q, want sun", cfg.AdminPrefix)
	}
	if cfg.HistoryLimit != 1000 {
		t.Errorf("HistoryLimit = %d, want 1000", cfg.HistoryLimit)
	}
	if cfg.MuteSweepInterval != 10*time.Second {
		t.Errorf("MuteSweepInterval = %v, want 10s", cfg.MuteSweepInterval)
	}
	if cfg.ReconnectDelay != 5*time.Second {
		t.Errorf("ReconnectDelay = %v, want 5s", cfg.ReconnectDelay)
	}
	if cfg.DBDsn != "" {
		t.Errorf("DBDsn = %q, want empty (archive disabled by default)", cfg.DBDsn)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() on defaults: %v", err)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("HC_CHANNEL", "programming")
	t.Setenv("HC_NICK", "mybot")
	t.Setenv("HC_HISTORY_LIMIT", "50")
	t.Setenv("HC_MUTE_SWEEP_INTERVAL", "2s")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Channel != "programming" || cfg.Nick != "mybot" {
		t.Errorf("overrides not applied: %q %q", cfg.Channel, cfg.Nick)
	}
	if cfg.HistoryLimit != 50 {
		t.Errorf("HistoryLimit = %d, want 50", cfg.HistoryLimit)
	}
	if cfg.MuteSweepInterval != 2*time.Second {
		t.Errorf("MuteSweepInterval = %v, want 2s", cfg.MuteSweepInterval)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	cases := map[string]string{
		"HC_HISTORY_LIMIT":       "zero",
		"HC_MUTE_SWEEP_INTERVAL": "-5s",
		"HC_RECONNECT_DELAY":     "soon",
	}
	for key, val := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, val)
			if _, err := Load(); err == nil {
				t.Errorf("Load() accepted %s=%q", key, val)
			}
		})
	}
}
