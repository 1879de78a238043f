// Package config loads crmadmin settings from YAML, the environment and flags.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the on-disk configuration.
type Config struct {
	Gateway  Gateway  `yaml:"gateway"  json:"gateway"`
	Output   Output   `yaml:"output"   json:"output"`
	Archive  Archive  `yaml:"archive"  json:"archive"`
	Log      Log      `yaml:"log"      json:"log"`
	Defaults Defaults `yaml:"defaults" json:"defaults"`
}

// Gateway locates the omnigateway API.
type Gateway struct {
	URL     string   `yaml:"url"               json:"url"`
	APIKey  string   `yaml:"api_key"           json:"api_key,omitempty"`
	Timeout Duration `yaml:"timeout,omitempty" json:"timeout,omitempty"`
}

// Output controls rendering.
type Output struct {
	Format string `yaml:"format" json:"format"`
	Color  string `yaml:"color"  json:"color"` // auto|always|never
}

// Archive locates the local log archive.
type Archive struct {
	Path string `yaml:"path" json:"path"`
}

// Log configures diagnostic logging.
type Log struct {
	Level string `yaml:"level" json:"level"`
}

// Defaults holds list defaults.
type Defaults struct {
	PageSize int `yaml:"page_size" json:"page_size"`
}

// Duration is a time.Duration that reads as "30s" in YAML.
type Duration time.Duration

// UnmarshalYAML parses a Go duration string.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	if s == "" {
		*d = 0
		return nil
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(v)
	return nil
}

// MarshalYAML writes the duration as a string.
func (d Duration) MarshalYAML() (any, error) {
	if d == 0 {
		return "", nil
	}
	return time.Duration(d).String(), nil
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Output:   Output{Format: "table", Color: "auto"},
		Log:      Log{Level: "warn"},
		Defaults: Defaults{PageSize: 20},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/crmadmin/config.yaml or the
// ~/.config equivalent.
func DefaultPath() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "crmadmin", "config.yaml")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "crmadmin", "config.yaml")
}

// Load reads path over the defaults and applies environment overrides.
// A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return cfg, fmt.Errorf("read config: %w", err)
		}
	}
	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("CRMADMIN_GATEWAY_URL"); v != "" {
		c.Gateway.URL = v
	}
	if v := os.Getenv("CRMADMIN_API_KEY"); v != "" {
		c.Gateway.APIKey = v
	}
	if v := os.Getenv("CRMADMIN_ARCHIVE"); v != "" {
		c.Archive.Path = v
	}
	if os.Getenv("NO_COLOR") != "" {
		c.Output.Color = "never"
	}
}

// Validate checks settings needed to talk to the gateway.
func (c Config) Validate() []error {
	var errs []error
	if strings.TrimSpace(c.Gateway.URL) == "" {
		errs = append(errs, errors.New("gateway.url is required (set it in the config file, CRMADMIN_GATEWAY_URL or --gateway)"))
	} else if !strings.HasPrefix(c.Gateway.URL, "http://") && !strings.HasPrefix(c.Gateway.URL, "https://") {
		errs = append(errs, fmt.Errorf("gateway.url must start with http:// or https://, got %q", c.Gateway.URL))
	}
	switch strings.ToLower(c.Output.Color) {
	case "", "auto", "always", "never":
	default:
		errs = append(errs, fmt.Errorf("output.color must be auto, always or never; got %q", c.Output.Color))
	}
	if c.Defaults.PageSize < 0 {
		errs = append(errs, fmt.Errorf("defaults.page_size must not be negative, got %d", c.Defaults.PageSize))
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	return errs
}

// ParseLevel converts a level name to a slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

// Redacted returns a copy with the API key masked for display.
func (c Config) Redacted() Config {
	if k := c.Gateway.APIKey; k != "" {
		if len(k) > 4 {
			c.Gateway.APIKey = strings.Repeat("*", len(k)-4) + k[len(k)-4:]
		} else {
			c.Gateway.APIKey = "****"
		}
	}
	return c
}
