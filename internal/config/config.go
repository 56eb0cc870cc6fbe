// Package config holds the run configuration: which sources to ask, the
// match thresholds, and limits. A Config is a plain value; callers load it
// once and pass it down.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/matsen/refcheck/internal/reference"
	"github.com/matsen/refcheck/internal/verify"
)

const (
	// Dir is the directory name under XDG_CONFIG_HOME.
	Dir = "refcheck"
	// File is the config file name.
	File = "config.yml"
)

// Environment variables that override file settings.
const (
	EnvMailto   = "CROSSREF_MAILTO"
	EnvS2APIKey = "S2_API_KEY"
	EnvCache    = "REFCHECK_CACHE"
)

// ErrInvalid is returned by Validate.
var ErrInvalid = errors.New("invalid configuration")

// Sources toggles the verification sources. They are asked in the order
// crossref, semantic_scholar, google_scholar.
type Sources struct {
	CrossRef        bool `yaml:"crossref" json:"crossref"`
	SemanticScholar bool `yaml:"semantic_scholar" json:"semantic_scholar"`
	// GoogleScholar scrapes result pages; it is slow and easily blocked.
	GoogleScholar bool `yaml:"google_scholar" json:"google_scholar"`
}

// Config is the full run configuration.
type Config struct {
	Sources     Sources           `yaml:"sources" json:"sources"`
	Thresholds  verify.Thresholds `yaml:"thresholds" json:"thresholds"`
	Concurrency int               `yaml:"concurrency" json:"concurrency"`
	Timeout     time.Duration     `yaml:"timeout" json:"timeout"`

	CrossRefMailto string `yaml:"crossref_mailto,omitempty" json:"crossref_mailto,omitempty"`
	S2APIKey       string `yaml:"s2_api_key,omitempty" json:"s2_api_key,omitempty"`

	// CachePath is a SQLite file for source responses; empty disables caching.
	CachePath   string        `yaml:"cache_path,omitempty" json:"cache_path,omitempty"`
	CacheMaxAge time.Duration `yaml:"cache_max_age,omitempty" json:"cache_max_age,omitempty"`

	// Style forces a citation style for every document.
	Style string `yaml:"style,omitempty" json:"style,omitempty"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Sources:     Sources{CrossRef: true, SemanticScholar: true},
		Thresholds:  verify.DefaultThresholds(),
		Concurrency: verify.DefaultConcurrency,
		Timeout:     verify.DefaultTimeout,
	}
}

// Path returns the path to the config file.
// Respects XDG_CONFIG_HOME, defaults to ~/.config/refcheck/config.yml.
func Path() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, Dir, File)
}

// Load reads the file at path over the defaults. A missing file is not an
// error. The result is validated.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
	}
	cfg.CachePath = ExpandPath(cfg.CachePath)

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// WithEnv returns a copy of c with environment overrides applied.
func (c Config) WithEnv(getenv func(string) string) Config {
	if v := getenv(EnvMailto); v != "" {
		c.CrossRefMailto = v
	}
	if v := getenv(EnvS2APIKey); v != "" {
		c.S2APIKey = v
	}
	if v := getenv(EnvCache); v != "" {
		c.CachePath = ExpandPath(v)
	}
	return c
}

// Validate checks thresholds, limits, and the forced style.
func (c Config) Validate() error {
	t := c.Thresholds
	switch {
	case t.Verified <= 0 || t.Verified > 1:
		return fmt.Errorf("%w: thresholds.verified must be in (0, 1], got %g", ErrInvalid, t.Verified)
	case t.NoMatch < 0 || t.NoMatch > t.Verified:
		return fmt.Errorf("%w: thresholds.no_match must be in [0, verified], got %g", ErrInvalid, t.NoMatch)
	case t.Discard < 0 || t.Discard > t.NoMatch:
		return fmt.Errorf("%w: thresholds.discard must be in [0, no_match], got %g", ErrInvalid, t.Discard)
	case c.Concurrency < 1:
		return fmt.Errorf("%w: concurrency must be at least 1, got %d", ErrInvalid, c.Concurrency)
	case c.Timeout <= 0:
		return fmt.Errorf("%w: timeout must be positive, got %s", ErrInvalid, c.Timeout)
	case c.CacheMaxAge < 0:
		return fmt.Errorf("%w: cache_max_age must not be negative", ErrInvalid)
	}
	if c.Style != "" {
		if _, err := reference.ParseStyle(c.Style); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalid, err)
		}
	}
	return nil
}

// Redacted returns a copy of c safe to print.
func (c Config) Redacted() Config {
	if c.S2APIKey != "" {
		c.S2APIKey = "<redacted>"
	}
	return c
}

// VerifyOptions returns the verifier options this configuration implies.
func (c Config) VerifyOptions() verify.Options {
	return verify.Options{
		Thresholds:  c.Thresholds,
		Concurrency: c.Concurrency,
		Timeout:     c.Timeout,
	}
}

// ExpandPath expands ~ to the user's home directory.
// Returns the original path unchanged if it doesn't start with ~.
func ExpandPath(path string) string {
	if len(path) == 0 || path[0] != '~' {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}

	return filepath.Join(home, path[1:])
}
