package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/matsen/refcheck/internal/verify"
)

func TestPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/custom/config")
	if got, want := Path(), "/custom/config/refcheck/config.yml"; got != want {
		t.Errorf("Path() = %q, want %q", got, want)
	}

	t.Setenv("XDG_CONFIG_HOME", "")
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("Cannot get home directory")
	}
	if got, want := Path(), filepath.Join(home, ".config", "refcheck", "config.yml"); got != want {
		t.Errorf("Path() = %q, want %q", got, want)
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if !cfg.Sources.CrossRef || !cfg.Sources.SemanticScholar {
		t.Error("index sources should be on by default")
	}
	if cfg.Sources.GoogleScholar {
		t.Error("web fallback should be off by default")
	}
	if cfg.Thresholds != verify.DefaultThresholds() {
		t.Errorf("Thresholds = %+v", cfg.Thresholds)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default().Validate() = %v", err)
	}
}

func TestLoad_NotFound(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg != Default() {
		t.Errorf("Load(missing) = %+v, want defaults", cfg)
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	content := `sources:
  crossref: true
  semantic_scholar: false
  google_scholar: true
thresholds:
  verified: 0.9
concurrency: 2
timeout: 10s
crossref_mailto: lab@example.org
cache_path: ~/refcheck.db
style: ieee
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Sources.SemanticScholar || !cfg.Sources.GoogleScholar {
		t.Errorf("Sources = %+v", cfg.Sources)
	}
	// Unset fields keep their defaults.
	if cfg.Thresholds.Verified != 0.9 || cfg.Thresholds.NoMatch != 0.5 {
		t.Errorf("Thresholds = %+v", cfg.Thresholds)
	}
	if cfg.Concurrency != 2 || cfg.Timeout != 10*time.Second {
		t.Errorf("Concurrency = %d, Timeout = %s", cfg.Concurrency, cfg.Timeout)
	}
	if cfg.CrossRefMailto != "lab@example.org" || cfg.Style != "ieee" {
		t.Errorf("cfg = %+v", cfg)
	}
	if strings.HasPrefix(cfg.CachePath, "~") {
		t.Errorf("CachePath not expanded: %q", cfg.CachePath)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"inverted thresholds", "thresholds:\n  verified: 0.4\n  no_match: 0.6\n"},
		{"discard above no match", "thresholds:\n  discard: 0.7\n"},
		{"zero concurrency", "concurrency: 0\n"},
		{"unknown style", "style: mla\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yml")
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(path); !errors.Is(err, ErrInvalid) {
				t.Errorf("Load() error = %v, want ErrInvalid", err)
			}
		})
	}

	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte("sources: [unclosed\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Load(malformed) succeeded")
	}
}

func TestWithEnv(t *testing.T) {
	env := map[string]string{
		EnvMailto:   "me@example.org",
		EnvS2APIKey: "secret",
		EnvCache:    "/tmp/cache.db",
	}
	base := Default()
	cfg := base.WithEnv(func(k string) string { return env[k] })

	if cfg.CrossRefMailto != "me@example.org" || cfg.S2APIKey != "secret" || cfg.CachePath != "/tmp/cache.db" {
		t.Errorf("WithEnv() = %+v", cfg)
	}
	if base.S2APIKey != "" {
		t.Error("WithEnv modified its receiver")
	}
	if got := cfg.Redacted().S2APIKey; got != "<redacted>" {
		t.Errorf("Redacted().S2APIKey = %q", got)
	}

	unset := base.WithEnv(func(string) string { return "" })
	if unset != base {
		t.Error("empty environment changed the config")
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("Cannot get home directory")
	}

	tests := []struct {
		input string
		want  string
	}{
		{"~/papers", filepath.Join(home, "papers")},
		{"/absolute/path", "/absolute/path"},
		{"relative/path", "relative/path"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := ExpandPath(tt.input); got != tt.want {
			t.Errorf("ExpandPath(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
