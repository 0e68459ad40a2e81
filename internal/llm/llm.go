// Package llm wraps the text-generation models used to propose keywords and
// draft content briefs.
package llm

import (
	"context"
	"errors"
	"strings"

	"github.com/vijay-prabhu/seobrief/internal/config"
	"github.com/vijay-prabhu/seobrief/internal/metrics"
)

// Providers
const (
	ProviderGemini  = "gemini"
	ProviderOllama  = "ollama"
	ProviderCatalog = "catalog"
)

var (
	// ErrNoAPIKey is returned when a hosted provider is configured without a key
	ErrNoAPIKey = errors.New("no API key configured")

	// ErrEmptyResponse is returned when the model produced no text
	ErrEmptyResponse = errors.New("model returned no text")
)

// TextModel generates text for a prompt
type TextModel interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Name() string
}

// Func adapts a function to the TextModel interface
type Func func(ctx context.Context, prompt string) (string, error)

// Generate calls f
func (f Func) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// Name returns "func"
func (f Func) Name() string { return "func" }

// New returns the model configured by cfg. The catalog provider has no model
// and returns (nil, nil).
func New(ctx context.Context, cfg config.LLMConfig) (TextModel, error) {
	switch cfg.Provider {
	case ProviderCatalog:
		return nil, nil
	case ProviderGemini, "":
		key := cfg.APIKey()
		if key == "" {
			return nil, ErrNoAPIKey
		}
		return NewGemini(ctx, key, GeminiOptions{
			Model:       cfg.Model,
			Temperature: cfg.Temperature,
			Timeout:     cfg.Timeout(),
			JSON:        true,
		})
	case ProviderOllama:
		model := NewOllama(OllamaOptions{
			BaseURL:     cfg.OllamaURL,
			Model:       cfg.Model,
			Temperature: cfg.Temperature,
			Timeout:     cfg.Timeout(),
			JSON:        true,
		})
		if err := model.EnsureRunning(ctx); err != nil {
			return nil, err
		}
		return model, nil
	default:
		return nil, errors.New("unknown llm provider: " + cfg.Provider)
	}
}

// CleanOutput strips surrounding whitespace and markdown code fences that
// models add around JSON.
func CleanOutput(text string) string {
	cleaned := strings.TrimSpace(text)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```JSON")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	return strings.TrimSpace(cleaned)
}

// instrumented records every call of the wrapped model
type instrumented struct {
	model   TextModel
	metrics *metrics.Metrics
	purpose string
}

// WithMetrics wraps a model so each call is counted under purpose
func WithMetrics(model TextModel, m *metrics.Metrics, purpose string) TextModel {
	if model == nil || m == nil {
		return model
	}
	return &instrumented{model: model, metrics: m, purpose: purpose}
}

func (i *instrumented) Generate(ctx context.Context, prompt string) (string, error) {
	out, err := i.model.Generate(ctx, prompt)
	if err != nil {
		i.metrics.ObserveLLM(i.purpose, metrics.OutcomeError)
		return "", err
	}
	i.metrics.ObserveLLM(i.purpose, metrics.OutcomeOK)
	return out, nil
}

func (i *instrumented) Name() string { return i.model.Name() }
