package config

import (
	"os"
	"time"

	"github.com/vijay-prabhu/seobrief/internal/logging"
)

// Environment variables that carry secrets. Keys never live in the file.
const (
	EnvGeminiKey = "GEMINI_API_KEY"
	EnvSerpKey   = "SERP_API_KEY"
)

// Config represents the application configuration
type Config struct {
	Database DatabaseConfig `toml:"database"`
	LLM      LLMConfig      `toml:"llm"`
	SERP     SERPConfig     `toml:"serp"`
	Cache    CacheConfig    `toml:"cache"`
	Scoring  ScoringConfig  `toml:"scoring"`
	Filters  FilterConfig   `toml:"filters"`
	Server   ServerConfig   `toml:"server"`
	Logging  logging.Config `toml:"logging"`
	MCP      MCPConfig      `toml:"mcp"`
}

// DatabaseConfig contains database settings
type DatabaseConfig struct {
	Path string `toml:"path"`
}

// LLMConfig contains keyword and brief generation settings
type LLMConfig struct {
	// Provider is "gemini", "ollama" or "catalog". catalog needs no network access.
	Provider       string  `toml:"provider"`
	Model          string  `toml:"model"`
	Temperature    float32 `toml:"temperature"`
	MaxKeywords    int     `toml:"max_keywords"`
	TimeoutSeconds int     `toml:"timeout_seconds"`
	Concurrency    int     `toml:"concurrency"`
	OllamaURL      string  `toml:"ollama_url"`
	// API key is read from GEMINI_API_KEY environment variable
}

// APIKey returns the Gemini key from the environment.
func (l LLMConfig) APIKey() string {
	return os.Getenv(EnvGeminiKey)
}

// Timeout returns the per-request timeout.
func (l LLMConfig) Timeout() time.Duration {
	return time.Duration(l.TimeoutSeconds) * time.Second
}

// SERPConfig contains search results API settings
type SERPConfig struct {
	Endpoint       string `toml:"endpoint"`
	Results        int    `toml:"results"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	MaxRetries     int    `toml:"max_retries"`
	CacheTTLHours  int    `toml:"cache_ttl_hours"`
	// API key is read from SERP_API_KEY environment variable
}

// APIKey returns the SERP API key from the environment.
func (s SERPConfig) APIKey() string {
	return os.Getenv(EnvSerpKey)
}

// Timeout returns the per-request timeout.
func (s SERPConfig) Timeout() time.Duration {
	return time.Duration(s.TimeoutSeconds) * time.Second
}

// CacheTTL returns how long SERP snapshots stay fresh.
func (s SERPConfig) CacheTTL() time.Duration {
	return time.Duration(s.CacheTTLHours) * time.Hour
}

// CacheConfig selects the SERP cache backend
type CacheConfig struct {
	Backend   string `toml:"backend"`
	RedisAddr string `toml:"redis_addr"`
	RedisDB   int    `toml:"redis_db"`
	Compress  bool   `toml:"compress"`
}

// ScoringConfig contains quick-win selection defaults
type ScoringConfig struct {
	Mode       string `toml:"mode"`
	MinResults int    `toml:"min_results"`
	MaxResults int    `toml:"max_results"`
}

// FilterConfig contains keyword exclusion rules
type FilterConfig struct {
	ExcludeTerms []string `toml:"exclude_terms"`
	// MinRelevance drops candidates sharing too few words with the seed
	// topic (0.0-1.0). 0 disables the check.
	MinRelevance float64 `toml:"min_relevance"`
}

// ServerConfig contains HTTP API settings
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// MCPConfig contains MCP server settings
type MCPConfig struct {
	Enabled   bool   `toml:"enabled"`
	Transport string `toml:"transport"`
}

// Default returns a Config with sensible defaults
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path: "~/.local/share/seobrief/seobrief.db",
		},
		LLM: LLMConfig{
			Provider:       "gemini",
			Model:          "gemini-1.5-flash",
			Temperature:    0.4,
			MaxKeywords:    40,
			TimeoutSeconds: 60,
			Concurrency:    3,
			OllamaURL:      "http://localhost:11434",
		},
		SERP: SERPConfig{
			Endpoint:       "https://serpapi.com/search.json",
			Results:        10,
			TimeoutSeconds: 20,
			MaxRetries:     2,
			CacheTTLHours:  72,
		},
		Cache: CacheConfig{
			Backend:   "sqlite",
			RedisAddr: "localhost:6379",
			Compress:  true,
		},
		Scoring: ScoringConfig{
			Mode:       "medium",
			MinResults: 3,
			MaxResults: 5,
		},
		Filters: FilterConfig{
			ExcludeTerms: []string{
				"free download",
				"torrent",
				"crack",
			},
		},
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: 8650,
		},
		Logging: logging.Config{
			Level:  "info",
			Format: "console",
			Output: "stderr",
		},
		MCP: MCPConfig{
			Enabled:   true,
			Transport: "stdio",
		},
	}
}
