package keywords

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"text/template"

	"github.com/rs/zerolog"

	"github.com/vijay-prabhu/seobrief/internal/llm"
	"github.com/vijay-prabhu/seobrief/internal/opportunity"
)

//go:embed prompt.tmpl
var promptText string

var promptTemplate = template.Must(template.New("keywords").Parse(promptText))

// LLMGenerator asks a text model for keyword ideas with estimated metrics
type LLMGenerator struct {
	model  llm.TextModel
	logger zerolog.Logger
}

// NewLLM creates an LLMGenerator
func NewLLM(model llm.TextModel, logger zerolog.Logger) *LLMGenerator {
	return &LLMGenerator{model: model, logger: logger}
}

// Name returns the model name
func (g *LLMGenerator) Name() string {
	return SourceLLM + ":" + g.model.Name()
}

// Prompt renders the generation prompt for a request
func Prompt(req Request) (string, error) {
	mode := req.Mode
	if mode == "" {
		mode = opportunity.ModeMedium
	}

	var buf bytes.Buffer
	err := promptTemplate.Execute(&buf, struct {
		Seed string
		Max  int
		Mode string
	}{req.Seed, req.limit(), string(mode)})
	if err != nil {
		return "", fmt.Errorf("failed to render prompt: %w", err)
	}
	return buf.String(), nil
}

// Generate implements Generator
func (g *LLMGenerator) Generate(ctx context.Context, req Request) ([]opportunity.Candidate, error) {
	prompt, err := Prompt(req)
	if err != nil {
		return nil, err
	}

	out, err := g.model.Generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("keyword generation failed: %w", err)
	}

	records, err := ParseRecords(out)
	if err != nil {
		return nil, err
	}

	candidates, errs := opportunity.FromRecords(records, SourceLLM)
	for _, e := range errs {
		g.logger.Debug().Err(e).Str("seed", req.Seed).Msg("skipped invalid keyword record")
	}
	if len(candidates) == 0 {
		return nil, ErrNoCandidates
	}

	if len(candidates) > req.limit() {
		candidates = candidates[:req.limit()]
	}
	return candidates, nil
}

// ParseRecords decodes model output into untyped records. It accepts a JSON
// array of objects or plain strings, or an object wrapping such an array
// under "keywords".
func ParseRecords(text string) ([]map[string]any, error) {
	text = llm.CleanOutput(text)

	var doc any
	if err := json.Unmarshal([]byte(text), &doc); err != nil {
		return nil, fmt.Errorf("failed to decode model output: %w", err)
	}

	if obj, ok := doc.(map[string]any); ok {
		doc = obj["keywords"]
	}

	items, ok := doc.([]any)
	if !ok {
		return nil, fmt.Errorf("model output is not a keyword list")
	}

	records := make([]map[string]any, 0, len(items))
	for _, item := range items {
		switch v := item.(type) {
		case map[string]any:
			records = append(records, v)
		case string:
			records = append(records, map[string]any{"keyword": v})
		}
	}
	return records, nil
}
