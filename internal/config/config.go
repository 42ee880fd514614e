// Package config loads the server configuration from the environment and an
// optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config is the process configuration.
type Config struct {
	// HFToken authenticates image generation. Empty disables the provider
	// call.
	HFToken string `env:"HF_TOKEN"`

	LogLevel string `env:"LOG_LEVEL"`
	LogFile  string `env:"LOG_FILE"`
	Debug    bool   `env:"DEBUG"`

	Providers []string `env:"MCP_PROVIDERS" envDefault:"greeting" envSeparator:","`

	HFRouterURL string        `env:"HF_ROUTER_URL" envDefault:"https://router.huggingface.co"`
	HFTimeout   time.Duration `env:"HF_TIMEOUT" envDefault:"2m"`
	HFMaxBytes  int64         `env:"HF_MAX_IMAGE_BYTES" envDefault:"16777216"`
	HFRateLimit float64       `env:"HF_RATE_LIMIT" envDefault:"1"`
	HFRateBurst int           `env:"HF_RATE_BURST" envDefault:"1"`
}

// Load reads the given dotenv files (".env" when none are named), ignoring
// missing ones, and parses the environment. Variables already set in the
// environment win over file values.
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}
	return parse(env.Options{})
}

// FromMap parses cfg from vars only, without touching the process
// environment.
func FromMap(vars map[string]string) (*Config, error) {
	if vars == nil {
		vars = map[string]string{}
	}
	return parse(env.Options{Environment: vars})
}

func parse(opts env.Options) (*Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	cfg.normalize()
	return &cfg, nil
}

func (c *Config) normalize() {
	c.HFToken = strings.TrimSpace(c.HFToken)
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	c.LogFile = strings.TrimSpace(c.LogFile)
	providers := c.Providers[:0]
	for _, p := range c.Providers {
		if p = strings.TrimSpace(p); p != "" {
			providers = append(providers, p)
		}
	}
	c.Providers = providers
}

// Level returns the effective log level name. DEBUG implies debug when
// LOG_LEVEL is unset.
func (c *Config) Level() string {
	if c.LogLevel == "" && c.Debug {
		return "debug"
	}
	if c.LogLevel == "" {
		return "info"
	}
	return c.LogLevel
}

// Template is the .env file written by `greeting init`.
const Template = `# Hugging Face API token used by generate-image
HF_TOKEN=

# trace, debug, info, warn, error
LOG_LEVEL=info
# LOG_FILE=~/.local/state/greeting/greeting.log
# DEBUG=false

# Comma-separated provider names
MCP_PROVIDERS=greeting

# HF_ROUTER_URL=https://router.huggingface.co
# HF_TIMEOUT=2m
# HF_MAX_IMAGE_BYTES=16777216
# HF_RATE_LIMIT=1
# HF_RATE_BURST=1
`

// WriteTemplate writes Template to path. An existing file is kept unless
// force is set.
func WriteTemplate(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}
	return os.WriteFile(path, []byte(Template), 0o600)
}
