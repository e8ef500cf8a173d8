package config

import (
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/savethatagain/internal/flagx"
)

// ValueFlags are the flags, config flags included, that take a value. The
// CLI uses the list to find the command among the arguments.
var ValueFlags = []string{"-a", "-home", "-timeout", "-c", "-config"}

// parseFlags populates selected Config fields from command-line flags. Only
// -a, -home and -timeout are looked at.
func parseFlags(cfg *Config, args []string) error {
	fs := flag.NewFlagSet("cli", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerURL, "a", cfg.ServerURL, "server API base URL")
	fs.StringVar(&cfg.HomeDir, "home", cfg.HomeDir, "local data directory")
	timeout := fs.Int("timeout", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")

	if err := fs.Parse(flagx.FilterArgs(args, []string{"-a", "-home", "-timeout"})); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}
	if *timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %d", *timeout)
	}

	cfg.RequestTimeout = time.Duration(*timeout) * time.Second
	cfg.ServerURL = strings.TrimRight(cfg.ServerURL, "/")
	return nil
}
