package config

import (
	"os"
	"path/filepath"
	"time"
)

// Config holds runtime settings for the CLI.
//
// Fields:
//   - ServerURL: base URL of the JSON API, without a trailing slash.
//   - HomeDir: directory of the local SQLite database (session and clip cache).
//   - RequestTimeout: upper bound for a single API call.
type Config struct {
	ServerURL      string        `env:"SAVETHATAGAIN_SERVER"`
	HomeDir        string        `env:"SAVETHATAGAIN_HOME"`
	RequestTimeout time.Duration `env:"SAVETHATAGAIN_TIMEOUT"`
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8080"
	c.HomeDir = defaultHomeDir()
	c.RequestTimeout = 30 * time.Second
}

func defaultHomeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".savethatagain"
	}
	return filepath.Join(home, ".savethatagain")
}

// DatabasePath is the location of the local SQLite database.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.HomeDir, "client.db")
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON, the environment and command-line flags. Later sources take
// precedence over earlier ones.
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJSON(cfg, args); err != nil {
		return nil, err
	}
	if err := parseEnv(cfg); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	return cfg, nil
}
