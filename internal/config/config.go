// Package config loads runtime settings for the notesync CLI: defaults
// first, then a JSON file, then command-line flags, with later sources
// taking precedence.
package config

import "time"

// Config holds runtime settings.
//
// Fields:
//   - ServerBaseURL: root of the backend HTTP API.
//   - DatabasePath: sqlite file holding the local cache.
//   - SyncInterval: cadence of the background sync loop and the liveness probe.
//   - RequestTimeout: per-request timeout at the remote boundary.
type Config struct {
	ServerBaseURL  string
	DatabasePath   string
	SyncInterval   time.Duration
	RequestTimeout time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerBaseURL = "http://127.0.0.1:8080"
	c.DatabasePath = "notes.db"
	c.SyncInterval = 30 * time.Second
	c.RequestTimeout = 10 * time.Second
}

// LoadConfig builds the effective configuration: defaults, then JSON (if a
// config file was named), then flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
