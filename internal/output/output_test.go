package output

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vijay-prabhu/seobrief/internal/database"
	"github.com/vijay-prabhu/seobrief/internal/opportunity"
	"github.com/vijay-prabhu/seobrief/internal/serp"
)

func TestRankedTable(t *testing.T) {
	results := opportunity.NewScorer(opportunity.ModeMedium).RankAll([]opportunity.Candidate{
		opportunity.MustCandidate("best usb podcast mic under $100", 900, 0.25, 1.2),
		opportunity.MustCandidate("podcast mic", 22000, 0.9, 2.1),
	})

	var buf bytes.Buffer
	require.NoError(t, TableTo(&buf, results))

	out := buf.String()
	assert.Contains(t, out, "best usb podcast mic under $100")
	assert.Contains(t, out, "$1.20")
	assert.Contains(t, out, "yes")
}

func TestEmptyTables(t *testing.T) {
	tests := []struct {
		name string
		data interface{}
		want string
	}{
		{"keywords", []opportunity.RankedResult{}, "No keywords found."},
		{"runs", []database.Run{}, "No research runs found."},
		{"exclusions", []database.Exclusion{}, "No exclusions found."},
		{"serp", &serp.Snapshot{Query: "yoga mats"}, `No results for "yoga mats".`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, TableTo(&buf, tt.data))
			assert.Contains(t, buf.String(), tt.want)
		})
	}
}

func TestRunsTable(t *testing.T) {
	runs := []database.Run{{
		ID:            "0123456789abcdef",
		Topic:         "podcast microphones",
		Mode:          "medium",
		Status:        database.RunDegraded,
		MinResults:    5,
		ResultCount:   3,
		QuickWinCount: 2,
		CreatedAt:     time.Now(),
	}}

	var buf bytes.Buffer
	require.NoError(t, TableTo(&buf, runs))

	out := buf.String()
	assert.Contains(t, out, "01234567")
	assert.NotContains(t, out, "0123456789abcdef")
	assert.Contains(t, out, "3/5")
	assert.Contains(t, out, "today")
}

func TestSelectionUnderTarget(t *testing.T) {
	sel := opportunity.NewSelector().Select(opportunity.Request{
		Candidates: []opportunity.Candidate{opportunity.MustCandidate("x", 0, 1, 0)},
		Mode:       opportunity.ModeMedium,
		MinResults: 3,
		MaxResults: 5,
	})

	var buf bytes.Buffer
	require.NoError(t, TableTo(&buf, sel))
	assert.Contains(t, buf.String(), "Only 1 of the requested 3 quick wins were found.")
	assert.Contains(t, buf.String(), "Stages: strict +0")
}

func TestStatsTable(t *testing.T) {
	stats := &database.Stats{
		TotalRuns:  4,
		AvgScore:   51.25,
		RunsByMode: map[string]int{"easy": 1, "hard": 3},
		TopKeywords: []database.RunKeyword{
			{Keyword: "budget yoga mats", Score: 71.2},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, TableTo(&buf, stats))

	out := buf.String()
	assert.Contains(t, out, "Total runs:             4")
	assert.Contains(t, out, "easy 1, hard 3")
	assert.Contains(t, out, "1. budget yoga mats (71.2)")
}

func TestOutputFormats(t *testing.T) {
	runs := []database.Run{{ID: "abc", Topic: "yoga mats"}}

	var buf bytes.Buffer
	require.NoError(t, OutputTo(&buf, FormatJSON, runs))

	var decoded []database.Run
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "yoga mats", decoded[0].Topic)

	assert.Error(t, OutputTo(&buf, "xml", runs))
	assert.Error(t, TableTo(&buf, 42))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
}
