package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
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

type envelope struct {
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data"`
	Error  string          `json:"error"`
}

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
	var pipeline *research.Pipeline
	if db != nil {
		pipeline = research.New(research.Deps{
			DB:        db,
			Generator: keywords.NewCatalog(),
			Metrics:   m,
			Config:    config.Default(),
			Logger:    zerolog.Nop(),
		})
	}
	return New(Deps{
		Config:   config.Default(),
		DB:       db,
		Pipeline: pipeline,
		Metrics:  m,
		Logger:   zerolog.Nop(),
	})
}

func do(t *testing.T, s *Server, method, path, body string) (int, envelope) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.App.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

const podcastBody = `{
	"mode": "medium",
	"min_results": 2,
	"max_results": 3,
	"candidates": [
		{"keyword": "best usb podcast mic under $100", "volume": 900, "competition": 0.25, "cpc": 1.2},
		{"keyword": "podcast mic for beginners", "volume": "480", "competition": 0.3, "cpc": 0.9},
		{"keyword": "podcast mic", "volume": 22000, "competition": 0.9, "cpc": 2.1},
		{"keyword": ""}
	]
}`

func TestHealth(t *testing.T) {
	s := newTestServer(t, setupTestDB(t))

	code, env := do(t, s, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", env.Status)
}

func TestScore(t *testing.T) {
	s := newTestServer(t, nil)

	code, env := do(t, s, http.MethodPost, "/api/v1/score", podcastBody)
	require.Equal(t, http.StatusOK, code)

	var data struct {
		Mode    string `json:"mode"`
		Results []struct {
			Text       string  `json:"keyword"`
			FinalScore float64 `json:"final_score"`
			IsQuickWin bool    `json:"is_quick_win"`
		} `json:"results"`
		Skipped []string `json:"skipped"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))

	assert.Equal(t, "medium", data.Mode)
	require.Len(t, data.Results, 3)
	assert.Equal(t, "best usb podcast mic under $100", data.Results[0].Text)
	assert.True(t, data.Results[0].IsQuickWin)
	assert.Len(t, data.Skipped, 1)
}

func TestScoreRejectsBadInput(t *testing.T) {
	s := newTestServer(t, nil)

	tests := []struct {
		name string
		body string
		want string
	}{
		{"not json", "{", "invalid JSON body"},
		{"no candidates", `{"mode":"easy"}`, "candidates are required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, env := do(t, s, http.MethodPost, "/api/v1/score", tt.body)
			assert.Equal(t, http.StatusBadRequest, code)
			assert.Equal(t, "error", env.Status)
			assert.Equal(t, tt.want, env.Error)
		})
	}
}

func TestQuickWins(t *testing.T) {
	s := newTestServer(t, nil)

	code, env := do(t, s, http.MethodPost, "/api/v1/quick-wins", podcastBody)
	require.Equal(t, http.StatusOK, code)

	var data struct {
		Stage     string `json:"final_stage"`
		Degraded  bool   `json:"degraded"`
		Selection struct {
			Results []struct {
				Text string `json:"keyword"`
			} `json:"results"`
		} `json:"selection"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))

	assert.Equal(t, "strict", data.Stage)
	assert.False(t, data.Degraded)
	require.Len(t, data.Selection.Results, 2)
	for _, r := range data.Selection.Results {
		assert.NotEqual(t, "podcast mic", r.Text)
	}
}

func TestRunsRequireDatabase(t *testing.T) {
	s := newTestServer(t, nil)

	code, env := do(t, s, http.MethodGet, "/api/v1/runs", "")
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "database not configured", env.Error)

	code, _ = do(t, s, http.MethodPost, "/api/v1/research", `{"topic":"yoga mats"}`)
	assert.Equal(t, http.StatusServiceUnavailable, code)
}

func TestResearchThenFetchRun(t *testing.T) {
	db := setupTestDB(t)
	s := newTestServer(t, db)

	code, env := do(t, s, http.MethodPost, "/api/v1/research", `{"topic":"yoga mats","mode":"easy","skip_serp":true}`)
	require.Equal(t, http.StatusOK, code, env.Error)

	runs, err := db.ListRuns(context.Background(), database.ListOptions{})
	require.NoError(t, err)
	require.Len(t, runs, 1)

	code, env = do(t, s, http.MethodGet, "/api/v1/runs?mode=easy", "")
	require.Equal(t, http.StatusOK, code)
	var listed []database.Run
	require.NoError(t, json.Unmarshal(env.Data, &listed))
	require.Len(t, listed, 1)
	assert.Equal(t, "yoga mats", listed[0].Topic)

	code, env = do(t, s, http.MethodGet, "/api/v1/runs/"+runs[0].ID[:8], "")
	require.Equal(t, http.StatusOK, code)
	var detail research.Detail
	require.NoError(t, json.Unmarshal(env.Data, &detail))
	assert.Equal(t, runs[0].ID, detail.Run.ID)
	assert.NotEmpty(t, detail.Keywords)
	require.NotNil(t, detail.Brief)
	assert.Contains(t, detail.Brief.Markdown, "# Content brief")

	code, env = do(t, s, http.MethodGet, "/api/v1/stats", "")
	require.Equal(t, http.StatusOK, code)
	var stats database.Stats
	require.NoError(t, json.Unmarshal(env.Data, &stats))
	assert.Equal(t, 1, stats.TotalRuns)
}

func TestResearchValidation(t *testing.T) {
	s := newTestServer(t, setupTestDB(t))

	code, env := do(t, s, http.MethodPost, "/api/v1/research", `{"topic":"  "}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "topic is required", env.Error)
}

func TestGetRunNotFound(t *testing.T) {
	s := newTestServer(t, setupTestDB(t))

	code, env := do(t, s, http.MethodGet, "/api/v1/runs/does-not-exist", "")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "run not found", env.Error)
}

func TestListRunsLimit(t *testing.T) {
	s := newTestServer(t, setupTestDB(t))

	code, _ := do(t, s, http.MethodGet, "/api/v1/runs?limit=500", "")
	assert.Equal(t, http.StatusBadRequest, code)

	code, env := do(t, s, http.MethodGet, "/api/v1/runs", "")
	assert.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, "[]", string(env.Data))
}

func TestUnknownRouteUsesEnvelope(t *testing.T) {
	s := newTestServer(t, nil)

	code, env := do(t, s, http.MethodGet, "/api/v1/nope", "")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "error", env.Status)
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t, nil)

	_, _ = do(t, s, http.MethodPost, "/api/v1/score", podcastBody)

	resp, err := s.App.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var buf bytes.Buffer
	_, err = buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, buf.String(), "seobrief_")
}
