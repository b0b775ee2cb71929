package config

import (
	"encoding/json"
	"os"

	"github.com/akraslov/notesync/internal/flagx"
	"github.com/akraslov/notesync/internal/timex"
)

// JsonConfig is the DTO for the optional JSON config file. Durations accept
// either "30s"-style strings or integer nanoseconds.
type JsonConfig struct {
	ServerBaseURL  *string         `json:"server_base_url"`
	DatabasePath   *string         `json:"database_path"`
	SyncInterval   *timex.Duration `json:"sync_interval"`
	RequestTimeout *timex.Duration `json:"request_timeout"`
}

// parseJson overlays cfg with values from the file named by -c/-config.
// Missing file path means no JSON is loaded; a present but unreadable or
// malformed file panics, matching the fail-fast startup policy.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.ServerBaseURL != nil {
		cfg.ServerBaseURL = *jc.ServerBaseURL
	}
	if jc.DatabasePath != nil {
		cfg.DatabasePath = *jc.DatabasePath
	}
	if jc.SyncInterval != nil {
		cfg.SyncInterval = jc.SyncInterval.Duration
	}
	if jc.RequestTimeout != nil {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
}
