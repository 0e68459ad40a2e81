package brief

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/rs/zerolog"

	"github.com/vijay-prabhu/seobrief/internal/llm"
)

//go:embed prompt.tmpl
var promptText string

var promptTemplate = template.Must(template.New("brief").
	Funcs(template.FuncMap{"join": strings.Join}).
	Parse(promptText))

// Writer builds briefs and, when a model is configured, asks it to refine
// the deterministic draft
type Writer struct {
	model  llm.TextModel
	logger zerolog.Logger
	now    func() time.Time
}

// NewWriter creates a Writer. model may be nil.
func NewWriter(model llm.TextModel, logger zerolog.Logger) *Writer {
	return &Writer{
		model:  model,
		logger: logger.With().Str("component", "brief").Logger(),
		now:    time.Now,
	}
}

// llmBrief is the part of a brief the model may rewrite
type llmBrief struct {
	TitleIdeas      []string  `json:"title_ideas"`
	TargetWordCount int       `json:"target_word_count"`
	Outline         []Section `json:"outline"`
	FAQ             []string  `json:"faq"`
}

// Write returns a brief for the input. Model failures are logged and the
// deterministic draft is returned instead, so Write only fails when the
// context is done.
func (w *Writer) Write(ctx context.Context, in Input) (Brief, error) {
	draft := Build(in)
	draft.GeneratedAt = w.now().UTC()

	if w.model == nil {
		return draft, nil
	}

	refined, err := w.refine(ctx, draft)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Brief{}, ctxErr
		}
		w.logger.Warn().Err(err).Str("keyword", draft.PrimaryKeyword).Msg("using template brief")
		return draft, nil
	}
	return refined, nil
}

func (w *Writer) refine(ctx context.Context, draft Brief) (Brief, error) {
	prompt, err := Prompt(draft)
	if err != nil {
		return Brief{}, err
	}

	out, err := w.model.Generate(ctx, prompt)
	if err != nil {
		return Brief{}, err
	}

	var resp llmBrief
	if err := json.Unmarshal([]byte(llm.CleanOutput(out)), &resp); err != nil {
		return Brief{}, fmt.Errorf("failed to decode brief: %w", err)
	}

	merged := draft
	changed := false
	if titles := nonEmpty(resp.TitleIdeas); len(titles) > 0 {
		merged.TitleIdeas = titles
		changed = true
	}
	if resp.TargetWordCount >= 300 && resp.TargetWordCount <= 10000 {
		merged.TargetWordCount = resp.TargetWordCount
		changed = true
	}
	if sections := validSections(resp.Outline); len(sections) > 0 {
		merged.Outline = sections
		changed = true
	}
	if faq := nonEmpty(resp.FAQ); len(faq) > 0 {
		merged.FAQ = faq
		changed = true
	}
	if !changed {
		return Brief{}, fmt.Errorf("model returned an empty brief")
	}

	merged.Source = SourceLLM
	return merged, nil
}

// Prompt renders the refinement prompt for a draft brief
func Prompt(draft Brief) (string, error) {
	draftJSON, err := json.MarshalIndent(struct {
		TitleIdeas      []string  `json:"title_ideas"`
		TargetWordCount int       `json:"target_word_count"`
		Outline         []Section `json:"outline"`
		FAQ             []string  `json:"faq"`
	}{draft.TitleIdeas, draft.TargetWordCount, draft.Outline, draft.FAQ}, "", "  ")
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	err = promptTemplate.Execute(&buf, struct {
		Brief
		DraftJSON string
	}{draft, string(draftJSON)})
	if err != nil {
		return "", fmt.Errorf("failed to render prompt: %w", err)
	}
	return buf.String(), nil
}

func nonEmpty(items []string) []string {
	var out []string
	for _, s := range items {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func validSections(sections []Section) []Section {
	var out []Section
	for _, s := range sections {
		s.Heading = strings.TrimSpace(s.Heading)
		if s.Heading == "" {
			continue
		}
		s.Points = nonEmpty(s.Points)
		out = append(out, s)
	}
	return out
}
