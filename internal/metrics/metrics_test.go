package metrics

import (
	"context"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vijay-prabhu/seobrief/internal/database"
	"github.com/vijay-prabhu/seobrief/internal/opportunity"
)

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveScoring(opportunity.ModeEasy, 3)
		m.ObserveSelection(opportunity.ModeEasy, 3, opportunity.Selection{})
		m.ObserveLLM("keywords", OutcomeOK)
		m.ObserveSERP(OutcomeCacheHit)
		assert.NoError(t, m.RegisterStore(nil, zerolog.Nop()))
	})
}

func TestObserveSelection(t *testing.T) {
	m := New()

	sel := opportunity.NewSelector().Select(opportunity.Request{
		Candidates: []opportunity.Candidate{opportunity.MustCandidate("generic", 10, 0.9, 0)},
		Mode:       opportunity.ModeHard,
		MinResults: 3,
		MaxResults: 5,
	})
	m.ObserveSelection(opportunity.ModeHard, 1, sel)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.scoringRequests.WithLabelValues("hard")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.keywordsScored.WithLabelValues("hard")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.selectionStage.WithLabelValues("fallback")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.quickWins))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.underTarget))
}

func TestHandlerExposesCounters(t *testing.T) {
	m := New()
	m.ObserveSERP(OutcomeCacheHit)
	m.ObserveLLM("brief", OutcomeFallback)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body := rec.Body.String()
	assert.Contains(t, body, `seobrief_serp_fetches_total{outcome="cache_hit"} 1`)
	assert.Contains(t, body, `seobrief_llm_calls_total{outcome="fallback",purpose="brief"} 1`)
}

func TestStoreCollector(t *testing.T) {
	db, err := database.Open(filepath.Join(t.TempDir(), "metrics.db"))
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	require.NoError(t, db.CreateRun(ctx, &database.Run{Topic: "a", Mode: "easy", Status: database.RunComplete, MinResults: 3, MaxResults: 5}))
	require.NoError(t, db.CreateRun(ctx, &database.Run{Topic: "b", Mode: "easy", Status: database.RunDegraded, MinResults: 3, MaxResults: 5}))

	m := New()
	require.NoError(t, m.RegisterStore(db, zerolog.Nop()))

	expected := `
# HELP seobrief_runs_stored Research runs stored in the database by status.
# TYPE seobrief_runs_stored gauge
seobrief_runs_stored{status="complete"} 1
seobrief_runs_stored{status="degraded"} 1
`
	err = testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected), "seobrief_runs_stored")
	assert.NoError(t, err)
}
