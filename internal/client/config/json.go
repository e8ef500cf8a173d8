package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/savethatagain/internal/flagx"
	"github.com/dmitrijs2005/savethatagain/internal/timex"
)

// JSONConfig is a DTO used exclusively for JSON unmarshalling. Durations
// accept strings like "30s" or integer nanoseconds.
type JSONConfig struct {
	ServerURL      string         `json:"server_url"`
	HomeDir        string         `json:"home_dir"`
	RequestTimeout timex.Duration `json:"request_timeout"`
}

// parseJSON overlays cfg with the non-empty values of the file named by
// -c/-config, if any.
func parseJSON(cfg *Config, args []string) error {
	path := flagx.ConfigPath(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	var jc JSONConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}

	if jc.ServerURL != "" {
		cfg.ServerURL = jc.ServerURL
	}
	if jc.HomeDir != "" {
		cfg.HomeDir = jc.HomeDir
	}
	if jc.RequestTimeout.Duration > 0 {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	return nil
}
