package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vijay-prabhu/seobrief/internal/config"
	"github.com/vijay-prabhu/seobrief/internal/database"
	"github.com/vijay-prabhu/seobrief/internal/keywords"
	"github.com/vijay-prabhu/seobrief/internal/metrics"
	"github.com/vijay-prabhu/seobrief/internal/research"
)

func setupTestDB(t *testing.T) *database.DB {
	t.Helper()

	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func newTestServer(t *testing.T, db *database.DB) *Server {
	t.Helper()

	m := metrics.New()
	opts := []Option{WithMetrics(m), WithLogger(zerolog.Nop()), WithVersion("test")}
	if db != nil {
		opts = append(opts, WithPipeline(research.New(research.Deps{
			DB:        db,
			Generator: keywords.NewCatalog(),
			Metrics:   m,
			Config:    config.Default(),
			Logger:    zerolog.Nop(),
		})))
	}
	return New(db, config.Default(), opts...)
}

// call sends one request through Serve and decodes the single response.
func call(t *testing.T, s *Server, method string, params interface{}) jsonRPCResponse {
	t.Helper()

	req := map[string]interface{}{"jsonrpc": "2.0", "id": 1, "method": method}
	if params != nil {
		req["params"] = params
	}
	line, err := json.Marshal(req)
	require.NoError(t, err)

	var out strings.Builder
	require.NoError(t, s.Serve(context.Background(), strings.NewReader(string(line)+"\n"), &out))

	var resp jsonRPCResponse
	require.NoError(t, json.Unmarshal([]byte(out.String()), &resp))
	return resp
}

// toolText calls a tool and returns the text payload and error flag.
func toolText(t *testing.T, s *Server, name string, args interface{}) (string, bool) {
	t.Helper()

	resp := call(t, s, "tools/call", map[string]interface{}{"name": name, "arguments": args})
	require.Nil(t, resp.Error)

	raw, err := json.Marshal(resp.Result)
	require.NoError(t, err)
	var result callToolResult
	require.NoError(t, json.Unmarshal(raw, &result))
	require.Len(t, result.Content, 1)
	return result.Content[0].Text, result.IsError
}

var podcastCandidates = []map[string]interface{}{
	{"keyword": "best usb podcast mic under $100", "volume": 900, "competition": 0.25, "cpc": 1.2},
	{"keyword": "podcast mic for beginners", "volume": 480, "competition": 0.3, "cpc": 0.9},
	{"keyword": "cheap podcast microphone reviews", "volume": 320, "competition": 0.35, "cpc": 1.1},
	{"keyword": "podcast mic", "volume": 22000, "competition": 0.9, "cpc": 2.1},
}

func TestInitialize(t *testing.T) {
	resp := call(t, newTestServer(t, nil), "initialize", map[string]interface{}{})
	require.Nil(t, resp.Error)

	raw, _ := json.Marshal(resp.Result)
	var result initializeResult
	require.NoError(t, json.Unmarshal(raw, &result))
	assert.Equal(t, "seobrief", result.ServerInfo.Name)
	assert.Equal(t, "test", result.ServerInfo.Version)
}

func TestToolsListDependsOnCollaborators(t *testing.T) {
	names := func(s *Server) []string {
		resp := call(t, s, "tools/list", nil)
		raw, _ := json.Marshal(resp.Result)
		var result toolsListResult
		require.NoError(t, json.Unmarshal(raw, &result))
		out := make([]string, 0, len(result.Tools))
		for _, tool := range result.Tools {
			out = append(out, tool.Name)
		}
		return out
	}

	assert.Equal(t, []string{"score_keywords", "find_quick_wins"}, names(newTestServer(t, nil)))
	assert.Equal(t,
		[]string{"score_keywords", "find_quick_wins", "list_runs", "get_run", "get_stats", "research_topic"},
		names(newTestServer(t, setupTestDB(t))))
}

func TestScoreKeywordsTool(t *testing.T) {
	text, isErr := toolText(t, newTestServer(t, nil), "score_keywords", map[string]interface{}{
		"candidates": podcastCandidates,
		"mode":       "hard",
	})
	require.False(t, isErr, text)

	var result scoreResult
	require.NoError(t, json.Unmarshal([]byte(text), &result))
	assert.Equal(t, "hard", string(result.Mode))
	require.Len(t, result.Results, 4)
	assert.Equal(t, "best usb podcast mic under $100", result.Results[0].Text)
}

func TestFindQuickWinsTool(t *testing.T) {
	text, isErr := toolText(t, newTestServer(t, nil), "find_quick_wins", map[string]interface{}{
		"candidates":  podcastCandidates,
		"min_results": 2,
		"max_results": 3,
	})
	require.False(t, isErr, text)

	var result quickWinsResult
	require.NoError(t, json.Unmarshal([]byte(text), &result))
	assert.Equal(t, "strict", string(result.Stage))
	assert.Len(t, result.QuickWins, 3)
	assert.Contains(t, result.Summary, "3 keyword(s) selected at the strict stage")
}

func TestToolErrors(t *testing.T) {
	s := newTestServer(t, setupTestDB(t))

	text, isErr := toolText(t, s, "score_keywords", map[string]interface{}{"candidates": []interface{}{}})
	assert.True(t, isErr)
	assert.Equal(t, "candidates are required", text)

	text, isErr = toolText(t, s, "get_run", map[string]interface{}{"id": "missing"})
	assert.True(t, isErr)
	assert.Contains(t, text, "run not found")

	resp := call(t, s, "tools/call", map[string]interface{}{"name": "nope"})
	require.NotNil(t, resp.Error)
	assert.Equal(t, -32602, resp.Error.Code)
}

func TestResearchThenReadBack(t *testing.T) {
	db := setupTestDB(t)
	s := newTestServer(t, db)

	text, isErr := toolText(t, s, "research_topic", map[string]interface{}{"topic": "yoga mats", "mode": "easy"})
	require.False(t, isErr, text)

	var result researchTopicResult
	require.NoError(t, json.Unmarshal([]byte(text), &result))
	require.NotEmpty(t, result.RunID)
	assert.NotEmpty(t, result.QuickWins)
	assert.Contains(t, result.Brief, "# Content brief")

	text, isErr = toolText(t, s, "get_run", map[string]interface{}{"id": result.RunID[:8]})
	require.False(t, isErr, text)
	var detail research.Detail
	require.NoError(t, json.Unmarshal([]byte(text), &detail))
	assert.Equal(t, "yoga mats", detail.Run.Topic)

	text, isErr = toolText(t, s, "list_runs", map[string]interface{}{"status": "all"})
	require.False(t, isErr, text)
	var runs []database.Run
	require.NoError(t, json.Unmarshal([]byte(text), &runs))
	assert.Len(t, runs, 1)

	resp := call(t, s, "resources/read", map[string]interface{}{"uri": ResourceRecent})
	require.Nil(t, resp.Error)
	raw, _ := json.Marshal(resp.Result)
	var read readResourceResult
	require.NoError(t, json.Unmarshal(raw, &read))
	require.Len(t, read.Contents, 1)
	assert.Contains(t, read.Contents[0].Text, "yoga mats")
	assert.Contains(t, read.Contents[0].Text, "top: ")

	resp = call(t, s, "resources/read", map[string]interface{}{"uri": ResourceStats})
	require.Nil(t, resp.Error)
	raw, _ = json.Marshal(resp.Result)
	require.NoError(t, json.Unmarshal(raw, &read))
	assert.Contains(t, read.Contents[0].Text, "Total runs:        1")
}

func TestExclusionsResource(t *testing.T) {
	db := setupTestDB(t)
	require.NoError(t, db.CreateExclusion(context.Background(), &database.Exclusion{
		Term:   "torrent",
		Source: database.ExclusionSourceUser,
	}))

	resp := call(t, newTestServer(t, db), "resources/read", map[string]interface{}{"uri": ResourceExclusions})
	require.Nil(t, resp.Error)

	raw, _ := json.Marshal(resp.Result)
	var read readResourceResult
	require.NoError(t, json.Unmarshal(raw, &read))
	assert.Contains(t, read.Contents[0].Text, "user (1):\n  - torrent")
}

func TestResourcesNeedDatabase(t *testing.T) {
	s := newTestServer(t, nil)

	resp := call(t, s, "resources/read", map[string]interface{}{"uri": ResourceStats})
	require.NotNil(t, resp.Error)
	assert.Equal(t, "no database configured", resp.Error.Message)
}

func TestServeHandlesSequenceAndNotifications(t *testing.T) {
	s := newTestServer(t, nil)

	input := strings.Join([]string{
		`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{}}`,
		`{"jsonrpc":"2.0","method":"notifications/initialized"}`,
		``,
		`not json`,
		`{"jsonrpc":"2.0","id":2,"method":"bogus"}`,
		`{"jsonrpc":"2.0","id":3,"method":"ping"}`,
	}, "\n") + "\n"

	var out strings.Builder
	require.NoError(t, s.Serve(context.Background(), strings.NewReader(input), &out))

	var codes []int
	scanner := bufio.NewScanner(strings.NewReader(out.String()))
	for scanner.Scan() {
		var resp jsonRPCResponse
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &resp))
		if resp.Error != nil {
			codes = append(codes, resp.Error.Code)
		} else {
			codes = append(codes, 0)
		}
	}
	assert.Equal(t, []int{0, -32700, -32601, 0}, codes)
}
