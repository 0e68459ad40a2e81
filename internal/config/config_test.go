package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.LLM.Provider != "gemini" {
		t.Errorf("expected Provider=gemini, got %s", cfg.LLM.Provider)
	}

	if cfg.Scoring.Mode != "medium" {
		t.Errorf("expected Mode=medium, got %s", cfg.Scoring.Mode)
	}

	if cfg.Scoring.MinResults != 3 || cfg.Scoring.MaxResults != 5 {
		t.Errorf("expected results 3..5, got %d..%d", cfg.Scoring.MinResults, cfg.Scoring.MaxResults)
	}

	if cfg.Server.Port != 8650 {
		t.Errorf("expected Port=8650, got %d", cfg.Server.Port)
	}

	if cfg.Cache.Backend != "sqlite" {
		t.Errorf("expected Backend=sqlite, got %s", cfg.Cache.Backend)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid default config",
			modify:  func(c *Config) {},
			wantErr: false,
		},
		{
			name: "catalog provider without model",
			modify: func(c *Config) {
				c.LLM.Provider = "catalog"
				c.LLM.Model = ""
			},
			wantErr: false,
		},
		{
			name: "ollama provider without url",
			modify: func(c *Config) {
				c.LLM.Provider = "ollama"
				c.LLM.OllamaURL = ""
			},
			wantErr: true,
		},
		{
			name: "invalid llm provider",
			modify: func(c *Config) {
				c.LLM.Provider = "invalid"
			},
			wantErr: true,
		},
		{
			name: "invalid max_keywords",
			modify: func(c *Config) {
				c.LLM.MaxKeywords = 0
			},
			wantErr: true,
		},
		{
			name: "invalid serp endpoint",
			modify: func(c *Config) {
				c.SERP.Endpoint = "serpapi.com"
			},
			wantErr: true,
		},
		{
			name: "redis without address",
			modify: func(c *Config) {
				c.Cache.Backend = "redis"
				c.Cache.RedisAddr = ""
			},
			wantErr: true,
		},
		{
			name: "unknown cache backend",
			modify: func(c *Config) {
				c.Cache.Backend = "memcached"
			},
			wantErr: true,
		},
		{
			name: "invalid scoring mode",
			modify: func(c *Config) {
				c.Scoring.Mode = "extreme"
			},
			wantErr: true,
		},
		{
			name: "max below min",
			modify: func(c *Config) {
				c.Scoring.MinResults = 6
			},
			wantErr: true,
		},
		{
			name: "invalid server port",
			modify: func(c *Config) {
				c.Server.Port = 0
			},
			wantErr: true,
		},
		{
			name: "invalid log format",
			modify: func(c *Config) {
				c.Logging.Format = "xml"
			},
			wantErr: true,
		},
		{
			name: "invalid mcp transport",
			modify: func(c *Config) {
				c.MCP.Transport = "http"
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)

			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateJoinsErrors(t *testing.T) {
	cfg := Default()
	cfg.Server.Port = 0
	cfg.Cache.Backend = "memcached"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "server.port") || !strings.Contains(err.Error(), "cache.backend") {
		t.Errorf("expected both problems reported, got %v", err)
	}
}

func TestExpandPath(t *testing.T) {
	home, _ := os.UserHomeDir()

	tests := []struct {
		input    string
		expected string
	}{
		{"~/test", filepath.Join(home, "test")},
		{"/absolute/path", "/absolute/path"},
		{"relative/path", "relative/path"},
	}

	for _, tt := range tests {
		result, err := expandPath(tt.input)
		if err != nil {
			t.Errorf("expandPath(%q) error: %v", tt.input, err)
		}
		if result != tt.expected {
			t.Errorf("expandPath(%q) = %q, want %q", tt.input, result, tt.expected)
		}
	}
}

func TestTemplateMatchesDefault(t *testing.T) {
	cfg, err := Parse([]byte(Template))
	if err != nil {
		t.Fatalf("Parse(Template) error: %v", err)
	}

	want := Default()
	if err := want.expandPaths(); err != nil {
		t.Fatal(err)
	}

	if cfg.Database.Path != want.Database.Path {
		t.Errorf("database.path = %q, want %q", cfg.Database.Path, want.Database.Path)
	}
	if cfg.LLM != want.LLM {
		t.Errorf("llm = %+v, want %+v", cfg.LLM, want.LLM)
	}
	if cfg.SERP != want.SERP {
		t.Errorf("serp = %+v, want %+v", cfg.SERP, want.SERP)
	}
	if cfg.Cache != want.Cache {
		t.Errorf("cache = %+v, want %+v", cfg.Cache, want.Cache)
	}
	if cfg.Scoring != want.Scoring {
		t.Errorf("scoring = %+v, want %+v", cfg.Scoring, want.Scoring)
	}
	if len(cfg.Filters.ExcludeTerms) != len(want.Filters.ExcludeTerms) {
		t.Errorf("exclude_terms = %v, want %v", cfg.Filters.ExcludeTerms, want.Filters.ExcludeTerms)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := `
[llm]
provider = "catalog"

[scoring]
mode = "hard"
max_results = 8
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.LLM.Provider != "catalog" {
		t.Errorf("expected Provider=catalog, got %s", cfg.LLM.Provider)
	}
	if cfg.Scoring.Mode != "hard" || cfg.Scoring.MaxResults != 8 {
		t.Errorf("unexpected scoring config %+v", cfg.Scoring)
	}
	// Untouched sections keep their defaults.
	if cfg.Server.Port != 8650 {
		t.Errorf("expected Port=8650, got %d", cfg.Server.Port)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err == nil || !strings.Contains(err.Error(), "config init") {
		t.Errorf("expected hint to run config init, got %v", err)
	}

	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("LoadOrDefault() error: %v", err)
	}
	if strings.HasPrefix(cfg.Database.Path, "~") {
		t.Errorf("expected expanded database path, got %s", cfg.Database.Path)
	}
}

func TestDurations(t *testing.T) {
	cfg := Default()

	if got := cfg.SERP.CacheTTL(); got != 72*time.Hour {
		t.Errorf("CacheTTL() = %v, want 72h", got)
	}
	if got := cfg.LLM.Timeout(); got != time.Minute {
		t.Errorf("Timeout() = %v, want 1m", got)
	}
}

func TestServerAddr(t *testing.T) {
	cfg := Default()
	expected := "127.0.0.1:8650"

	if got := cfg.ServerAddr(); got != expected {
		t.Errorf("ServerAddr() = %q, want %q", got, expected)
	}
}
