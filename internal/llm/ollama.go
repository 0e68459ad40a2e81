package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// OllamaOptions configures a local Ollama model
type OllamaOptions struct {
	BaseURL     string
	Model       string
	Temperature float32
	Timeout     time.Duration
	JSON        bool // Ask the model for a JSON document
}

// Ollama is a TextModel backed by a local Ollama server
type Ollama struct {
	baseURL    string
	opts       OllamaOptions
	httpClient *http.Client
}

type ollamaGenerateRequest struct {
	Model   string         `json:"model"`
	Prompt  string         `json:"prompt"`
	Stream  bool           `json:"stream"`
	Format  string         `json:"format,omitempty"`
	Options map[string]any `json:"options,omitempty"`
}

type ollamaGenerateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
	Error    string `json:"error,omitempty"`
}

// ollamaTags is the response of GET /api/tags
type ollamaTags struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

// NewOllama creates a client for the Ollama server at opts.BaseURL
func NewOllama(opts OllamaOptions) *Ollama {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second // Long timeout for local inference
	}
	return &Ollama{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		opts:       opts,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Name returns the model name
func (o *Ollama) Name() string {
	return o.opts.Model
}

// Models lists the models installed on the server
func (o *Ollama) Models(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.baseURL+"/api/tags", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ollama: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("ollama health check failed: %s", string(body))
	}

	var tags ollamaTags
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	names := make([]string, 0, len(tags.Models))
	for _, m := range tags.Models {
		names = append(names, m.Name)
	}
	return names, nil
}

// EnsureRunning checks the server is reachable and returns a helpful error if not
func (o *Ollama) EnsureRunning(ctx context.Context) error {
	if _, err := o.Models(ctx); err == nil {
		return nil
	}

	return fmt.Errorf(
		"ollama not running at %s\n\n"+
			"Start it with:\n"+
			"  ollama serve\n"+
			"  ollama pull %s",
		o.baseURL, o.opts.Model,
	)
}

// Generate sends a single prompt and returns the cleaned text reply
func (o *Ollama) Generate(ctx context.Context, prompt string) (string, error) {
	req := ollamaGenerateRequest{
		Model:   o.opts.Model,
		Prompt:  prompt,
		Options: map[string]any{"temperature": o.opts.Temperature},
	}
	if o.opts.JSON {
		req.Format = "json"
	}

	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := o.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("ollama request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("ollama generation failed (status %d): %s", resp.StatusCode, string(respBody))
	}

	var result ollamaGenerateResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if result.Error != "" {
		return "", fmt.Errorf("ollama: %s", result.Error)
	}

	out := CleanOutput(result.Response)
	if out == "" {
		return "", ErrEmptyResponse
	}
	return out, nil
}
