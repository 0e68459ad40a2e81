package keywords

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vijay-prabhu/seobrief/internal/llm"
	"github.com/vijay-prabhu/seobrief/internal/opportunity"
)

type stubGenerator struct {
	name string
	fn   func(ctx context.Context, req Request) ([]opportunity.Candidate, error)
}

func (s *stubGenerator) Name() string { return s.name }

func (s *stubGenerator) Generate(ctx context.Context, req Request) ([]opportunity.Candidate, error) {
	return s.fn(ctx, req)
}

func TestCatalogDeterministic(t *testing.T) {
	gen := NewCatalog()
	ctx := context.Background()

	first, err := gen.Generate(ctx, Request{Seed: "Yoga  Mats"})
	require.NoError(t, err)
	second, err := gen.Generate(ctx, Request{Seed: "yoga mats"})
	require.NoError(t, err)

	assert.Equal(t, first, second)
	require.Len(t, first, len(catalogPatterns))
	assert.Equal(t, "yoga mats", first[0].Text)
	assert.Equal(t, "best yoga mats", first[1].Text)

	for _, c := range first {
		assert.Equal(t, SourceCatalog, c.Source)
		assert.GreaterOrEqual(t, c.Competition, 0.05)
		assert.LessOrEqual(t, c.Competition, 0.95)
		assert.GreaterOrEqual(t, c.CPC, 0.2)
		assert.Greater(t, c.Volume, 0)
	}
}

func TestCatalogRespectsMax(t *testing.T) {
	got, err := NewCatalog().Generate(context.Background(), Request{Seed: "podcast mic", Max: 4})
	require.NoError(t, err)
	assert.Len(t, got, 4)
}

func TestCatalogBlankSeed(t *testing.T) {
	_, err := NewCatalog().Generate(context.Background(), Request{Seed: "  "})
	assert.ErrorIs(t, err, ErrNoCandidates)
}

func TestCatalogProducesQuickWins(t *testing.T) {
	pool, err := NewCatalog().Generate(context.Background(), Request{Seed: "podcast microphone"})
	require.NoError(t, err)

	results := opportunity.ScoreAndSelect(pool, opportunity.ModeMedium, 3, 5, "podcast microphone")
	assert.NotEmpty(t, results)
}

func TestPromptMentionsSeedAndMode(t *testing.T) {
	easy, err := Prompt(Request{Seed: "standing desk", Max: 12, Mode: opportunity.ModeEasy})
	require.NoError(t, err)
	assert.Contains(t, easy, `"standing desk"`)
	assert.Contains(t, easy, "up to 12")
	assert.Contains(t, easy, "low competition")

	hard, err := Prompt(Request{Seed: "standing desk", Mode: opportunity.ModeHard})
	require.NoError(t, err)
	assert.Contains(t, hard, "head terms")
	assert.Contains(t, hard, fmt.Sprintf("up to %d", DefaultMax))

	medium, err := Prompt(Request{Seed: "standing desk"})
	require.NoError(t, err)
	assert.Contains(t, medium, "Balance search volume")
}

func TestParseRecords(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int
		wantErr bool
	}{
		{"array", `[{"keyword":"a"},{"keyword":"b"}]`, 2, false},
		{"fenced", "```json\n[{\"keyword\":\"a\"}]\n```", 1, false},
		{"wrapped", `{"keywords":[{"keyword":"a"},"b"]}`, 2, false},
		{"strings", `["a","b","c"]`, 3, false},
		{"not json", `here are some keywords`, 0, true},
		{"wrong shape", `{"items":[]}`, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRecords(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, got, tt.want)
		})
	}
}

func TestLLMGenerator(t *testing.T) {
	var prompt string
	model := llm.Func(func(ctx context.Context, p string) (string, error) {
		prompt = p
		return "```json\n" + `[
			{"keyword": "best standing desk for small spaces", "volume": "720", "competition": 0.3, "cpc": 1.4},
			{"keyword": "", "volume": 100},
			{"keyword": "standing desk", "volume": 40000, "competition": 0.9, "cpc": 2.5},
			{"keyword": "standing desk converter", "volume": 5400}
		]` + "\n```", nil
	})

	gen := NewLLM(model, zerolog.Nop())
	got, err := gen.Generate(context.Background(), Request{Seed: "standing desk", Max: 2})
	require.NoError(t, err)

	assert.Contains(t, prompt, "standing desk")
	require.Len(t, got, 2)
	assert.Equal(t, "best standing desk for small spaces", got[0].Text)
	assert.Equal(t, 720, got[0].Volume)
	assert.Equal(t, SourceLLM, got[0].Source)
	assert.Equal(t, "standing desk", got[1].Text)
	assert.Equal(t, "llm:func", gen.Name())
}

func TestLLMGeneratorErrors(t *testing.T) {
	failing := NewLLM(llm.Func(func(ctx context.Context, p string) (string, error) {
		return "", errors.New("quota exceeded")
	}), zerolog.Nop())
	_, err := failing.Generate(context.Background(), Request{Seed: "desk"})
	assert.ErrorContains(t, err, "quota exceeded")

	empty := NewLLM(llm.Func(func(ctx context.Context, p string) (string, error) {
		return `[{"keyword": " "}]`, nil
	}), zerolog.Nop())
	_, err = empty.Generate(context.Background(), Request{Seed: "desk"})
	assert.ErrorIs(t, err, ErrNoCandidates)
}

func TestFallback(t *testing.T) {
	secondary := NewCatalog()
	primaryCalls := 0

	failing := &stubGenerator{name: "broken", fn: func(ctx context.Context, req Request) ([]opportunity.Candidate, error) {
		primaryCalls++
		return nil, errors.New("unavailable")
	}}
	gen := NewFallback(failing, secondary, zerolog.Nop())

	got, err := gen.Generate(context.Background(), Request{Seed: "desk lamp", Max: 3})
	require.NoError(t, err)
	assert.Equal(t, 1, primaryCalls)
	require.Len(t, got, 3)
	assert.Equal(t, SourceCatalog, got[0].Source)
	assert.Equal(t, "broken+catalog", gen.Name())

	working := &stubGenerator{name: "ok", fn: func(ctx context.Context, req Request) ([]opportunity.Candidate, error) {
		return []opportunity.Candidate{opportunity.MustCandidate("desk lamp", 10, 0.1, 0.1)}, nil
	}}
	got, err = NewFallback(working, secondary, zerolog.Nop()).Generate(context.Background(), Request{Seed: "desk lamp"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Empty(t, got[0].Source)
}

func TestFallbackStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	failing := &stubGenerator{name: "broken", fn: func(ctx context.Context, req Request) ([]opportunity.Candidate, error) {
		return nil, ctx.Err()
	}}
	_, err := NewFallback(failing, NewCatalog(), zerolog.Nop()).Generate(ctx, Request{Seed: "desk"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGenerateBatch(t *testing.T) {
	var inFlight, peak int64
	gen := &stubGenerator{name: "slow", fn: func(ctx context.Context, req Request) ([]opportunity.Candidate, error) {
		n := atomic.AddInt64(&inFlight, 1)
		defer atomic.AddInt64(&inFlight, -1)
		for {
			p := atomic.LoadInt64(&peak)
			if n <= p || atomic.CompareAndSwapInt64(&peak, p, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)

		if strings.HasPrefix(req.Seed, "bad") {
			return nil, errors.New("bad seed")
		}
		return []opportunity.Candidate{opportunity.MustCandidate(req.Seed+" ideas", 10, 0.5, 0.5)}, nil
	}}

	requests := []Request{{Seed: "a"}, {Seed: "bad b"}, {Seed: "c"}, {Seed: "d"}, {Seed: "e"}}

	var mu sync.Mutex
	var reports []int
	results := GenerateBatch(context.Background(), gen, requests, 2, func(current, total int) {
		mu.Lock()
		defer mu.Unlock()
		assert.Equal(t, len(requests), total)
		reports = append(reports, current)
	})

	require.Len(t, results, len(requests))
	for i, r := range results {
		assert.Equal(t, i, r.Index)
		assert.Equal(t, requests[i], r.Request)
	}
	assert.Error(t, results[1].Error)
	assert.NoError(t, results[0].Error)
	assert.Equal(t, "e ideas", results[4].Candidates[0].Text)

	assert.LessOrEqual(t, atomic.LoadInt64(&peak), int64(2))
	require.Len(t, reports, len(requests)+1)
	assert.Equal(t, 0, reports[0])
	assert.Contains(t, reports, len(requests))
}
