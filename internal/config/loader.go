package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Load reads and parses the configuration file
func Load(path string) (*Config, error) {
	// Expand path
	expandedPath, err := expandPath(path)
	if err != nil {
		return nil, fmt.Errorf("failed to expand config path: %w", err)
	}

	// Read file
	data, err := os.ReadFile(expandedPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found: %s (run 'seobrief config init' to create)", expandedPath)
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	return Parse(data)
}

// LoadOrDefault loads the config file, falling back to defaults when the
// file does not exist. Any other problem is still an error.
func LoadOrDefault(path string) (*Config, error) {
	expandedPath, err := expandPath(path)
	if err != nil {
		return nil, fmt.Errorf("failed to expand config path: %w", err)
	}
	if _, err := os.Stat(expandedPath); os.IsNotExist(err) {
		cfg := Default()
		if err := cfg.expandPaths(); err != nil {
			return nil, fmt.Errorf("failed to expand paths: %w", err)
		}
		return cfg, nil
	}
	return Load(expandedPath)
}

// Parse decodes TOML over the defaults, expands paths and validates.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	// Expand paths in config
	if err := cfg.expandPaths(); err != nil {
		return nil, fmt.Errorf("failed to expand paths: %w", err)
	}

	// Validate
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// DefaultPath returns ~/.config/seobrief/config.toml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "seobrief", "config.toml"), nil
}

// expandPath expands ~ to home directory
func expandPath(path string) (string, error) {
	if !strings.HasPrefix(path, "~") {
		return path, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(home, path[1:]), nil
}

// expandPaths expands ~ in all path fields
func (c *Config) expandPaths() error {
	var err error

	c.Database.Path, err = expandPath(c.Database.Path)
	if err != nil {
		return err
	}

	if c.Logging.Output != "stderr" && c.Logging.Output != "stdout" {
		c.Logging.Output, err = expandPath(c.Logging.Output)
		if err != nil {
			return err
		}
	}

	return nil
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	// Database validation
	if c.Database.Path == "" {
		errs = append(errs, errors.New("database.path is required"))
	}

	// LLM validation
	validProviders := map[string]bool{"gemini": true, "ollama": true, "catalog": true}
	if !validProviders[c.LLM.Provider] {
		errs = append(errs, fmt.Errorf("llm.provider must be 'gemini', 'ollama' or 'catalog', got '%s'", c.LLM.Provider))
	}
	if c.LLM.Provider != "catalog" && c.LLM.Model == "" {
		errs = append(errs, fmt.Errorf("llm.model is required for the %s provider", c.LLM.Provider))
	}
	if c.LLM.Provider == "ollama" && c.LLM.OllamaURL == "" {
		errs = append(errs, errors.New("llm.ollama_url is required for the ollama provider"))
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		errs = append(errs, errors.New("llm.temperature must be between 0 and 2"))
	}
	if c.LLM.MaxKeywords < 1 || c.LLM.MaxKeywords > 200 {
		errs = append(errs, errors.New("llm.max_keywords must be between 1 and 200"))
	}
	if c.LLM.TimeoutSeconds < 1 {
		errs = append(errs, errors.New("llm.timeout_seconds must be at least 1"))
	}
	if c.LLM.Concurrency < 1 {
		errs = append(errs, errors.New("llm.concurrency must be at least 1"))
	}

	// SERP validation
	if !strings.HasPrefix(c.SERP.Endpoint, "http://") && !strings.HasPrefix(c.SERP.Endpoint, "https://") {
		errs = append(errs, fmt.Errorf("serp.endpoint must be an http(s) URL, got '%s'", c.SERP.Endpoint))
	}
	if c.SERP.Results < 1 || c.SERP.Results > 100 {
		errs = append(errs, errors.New("serp.results must be between 1 and 100"))
	}
	if c.SERP.TimeoutSeconds < 1 {
		errs = append(errs, errors.New("serp.timeout_seconds must be at least 1"))
	}
	if c.SERP.MaxRetries < 0 {
		errs = append(errs, errors.New("serp.max_retries must not be negative"))
	}
	if c.SERP.CacheTTLHours < 0 {
		errs = append(errs, errors.New("serp.cache_ttl_hours must not be negative"))
	}

	// Cache validation
	switch c.Cache.Backend {
	case "sqlite", "none":
	case "redis":
		if c.Cache.RedisAddr == "" {
			errs = append(errs, errors.New("cache.redis_addr is required for the redis backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("cache.backend must be 'sqlite', 'redis' or 'none', got '%s'", c.Cache.Backend))
	}

	// Scoring validation
	validModes := map[string]bool{"easy": true, "medium": true, "hard": true}
	if !validModes[strings.ToLower(c.Scoring.Mode)] {
		errs = append(errs, fmt.Errorf("scoring.mode must be 'easy', 'medium' or 'hard', got '%s'", c.Scoring.Mode))
	}
	if c.Scoring.MinResults < 1 {
		errs = append(errs, errors.New("scoring.min_results must be at least 1"))
	}
	if c.Scoring.MaxResults < c.Scoring.MinResults {
		errs = append(errs, errors.New("scoring.max_results must be at least scoring.min_results"))
	}

	// Filter validation
	if c.Filters.MinRelevance < 0 || c.Filters.MinRelevance > 1 {
		errs = append(errs, errors.New("filters.min_relevance must be between 0 and 1"))
	}

	// Server validation
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, errors.New("server.port must be between 1 and 65535"))
	}

	// Logging validation
	if c.Logging.Format != "json" && c.Logging.Format != "console" {
		errs = append(errs, fmt.Errorf("logging.format must be 'json' or 'console', got '%s'", c.Logging.Format))
	}

	// MCP validation
	if c.MCP.Transport != "stdio" {
		errs = append(errs, fmt.Errorf("mcp.transport must be 'stdio', got '%s'", c.MCP.Transport))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// ServerAddr returns host:port for the HTTP API
func (c *Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// EnsureDirectories creates necessary directories for the database
func (c *Config) EnsureDirectories() error {
	dirs := []string{
		filepath.Dir(c.Database.Path),
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}
