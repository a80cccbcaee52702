package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/dmitrijs2005/jarsclient/internal/common"
)

// Mode selects the store backend.
type Mode string

const (
	// ModeHTTP talks to a store over the network.
	ModeHTTP Mode = "http"
	// ModeLocal serves requests from a seeded in-process store.
	ModeLocal Mode = "local"
)

// Config holds runtime settings for the jars CLI.
//
// Fields:
//   - ServerURL: base URL of the store, used in http mode.
//   - Mode: http or local.
//   - Timeout: per-request limit; zero disables it.
//   - SessionDB: SQLite file that keeps the session between runs; empty
//     disables persistence.
//   - SeedFile: JSON seed for the local store.
//   - Debug: log every request and response.
type Config struct {
	ServerURL string
	Mode      Mode
	Timeout   time.Duration
	SessionDB string
	SeedFile  string
	Debug     bool
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8080"
	c.Mode = ModeHTTP
	c.Timeout = 10 * time.Second
	c.SessionDB = "jars.db"
	c.SeedFile = ""
	c.Debug = false
}

// Validate reports the first setting the CLI cannot start with.
func (c *Config) Validate() error {
	switch c.Mode {
	case ModeHTTP:
		u, err := url.Parse(c.ServerURL)
		if err != nil {
			return fmt.Errorf("%w: server url: %v", common.ErrValidation, err)
		}
		if u.Scheme != "http" && u.Scheme != "https" || u.Host == "" {
			return fmt.Errorf("%w: server url %q must be an absolute http(s) URL", common.ErrValidation, c.ServerURL)
		}
	case ModeLocal:
		if c.SeedFile == "" {
			return fmt.Errorf("%w: local mode needs a seed file", common.ErrValidation)
		}
	default:
		return fmt.Errorf("%w: unknown mode %q", common.ErrValidation, c.Mode)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("%w: negative timeout", common.ErrValidation)
	}
	return nil
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// a config file (if given) and command-line flags (if present). Later sources
// take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseFile(cfg)
	parseFlags(cfg)
	return cfg
}
