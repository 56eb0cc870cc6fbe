package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matsen/refcheck/internal/cache"
	"github.com/matsen/refcheck/internal/config"
	"github.com/matsen/refcheck/internal/crossref"
	"github.com/matsen/refcheck/internal/logging"
	"github.com/matsen/refcheck/internal/s2"
	"github.com/matsen/refcheck/internal/scholar"
	"github.com/matsen/refcheck/internal/source"
)

// loadConfig loads the config file and environment overrides, exiting on failure.
func loadConfig() config.Config {
	path := configPath
	if path == "" {
		path = config.Path()
	}
	cfg, err := config.Load(path)
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}
	return cfg.WithEnv(os.Getenv)
}

func newLogger() *log.Logger {
	return logging.Stderr(verbose)
}

// sourceFlags let a single run override the configured source set.
type sourceFlags struct {
	only  string
	web   bool
	cache string
}

func (f *sourceFlags) apply(cfg config.Config) (config.Config, error) {
	if f.only != "" {
		cfg.Sources = config.Sources{}
		for _, name := range strings.Split(f.only, ",") {
			switch strings.TrimSpace(name) {
			case crossref.Name:
				cfg.Sources.CrossRef = true
			case s2.Name:
				cfg.Sources.SemanticScholar = true
			case scholar.Name:
				cfg.Sources.GoogleScholar = true
			default:
				return cfg, fmt.Errorf("%w: unknown source %q (valid: %s, %s, %s)",
					config.ErrInvalid, name, crossref.Name, s2.Name, scholar.Name)
			}
		}
	}
	if f.web {
		cfg.Sources.GoogleScholar = true
	}
	if f.cache != "" {
		cfg.CachePath = config.ExpandPath(f.cache)
	}
	return cfg, nil
}

// buildSources assembles the fallback chain in its fixed order, wrapping
// each source in the response cache when one is configured. The returned
// func releases the cache.
func buildSources(cfg config.Config, logger *log.Logger) ([]source.Source, func(), error) {
	var chain []source.Source
	if cfg.Sources.CrossRef {
		chain = append(chain, crossref.New(crossref.WithMailto(cfg.CrossRefMailto)))
	}
	if cfg.Sources.SemanticScholar {
		chain = append(chain, s2.New(s2.WithAPIKey(cfg.S2APIKey)))
	}
	if cfg.Sources.GoogleScholar {
		chain = append(chain, scholar.New())
	}

	if cfg.CachePath == "" {
		return chain, func() {}, nil
	}
	db, err := cache.OpenDB(cfg.CachePath)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: opening cache: %w", config.ErrInvalid, err)
	}
	for i, src := range chain {
		chain[i] = cache.Wrap(src, db, cfg.CacheMaxAge, logger)
	}
	logger.Debug("response cache enabled", "path", cfg.CachePath)
	return chain, func() { db.Close() }, nil
}
