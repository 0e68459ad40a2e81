// Package metrics exposes Prometheus instrumentation for scoring, selection
// and the external calls made during research.
package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/vijay-prabhu/seobrief/internal/database"
	"github.com/vijay-prabhu/seobrief/internal/opportunity"
)

const namespace = "seobrief"

// Outcome labels
const (
	OutcomeOK       = "ok"
	OutcomeError    = "error"
	OutcomeFallback = "fallback"
	OutcomeCacheHit = "cache_hit"
)

// Metrics holds the collectors. A nil *Metrics is valid and records nothing,
// so components can be built without instrumentation.
type Metrics struct {
	registry *prometheus.Registry

	scoringRequests *prometheus.CounterVec
	keywordsScored  *prometheus.CounterVec
	selectionStage  *prometheus.CounterVec
	quickWins       prometheus.Counter
	underTarget     prometheus.Counter
	llmCalls        *prometheus.CounterVec
	serpFetches     *prometheus.CounterVec
	researchSeconds prometheus.Histogram
}

// New creates and registers all collectors on a private registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		scoringRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scoring_requests_total",
			Help:      "Scoring and selection requests by difficulty mode.",
		}, []string{"mode"}),
		keywordsScored: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "keywords_scored_total",
			Help:      "Keyword candidates scored by difficulty mode.",
		}, []string{"mode"}),
		selectionStage: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "selection_final_stage_total",
			Help:      "Quick-win selections by the last stage that ran.",
		}, []string{"stage"}),
		quickWins: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quick_wins_returned_total",
			Help:      "Keywords returned by quick-win selection.",
		}),
		underTarget: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "selections_under_target_total",
			Help:      "Selections that returned fewer results than the requested minimum.",
		}),
		llmCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "llm_calls_total",
			Help:      "LLM generation calls by purpose and outcome.",
		}, []string{"purpose", "outcome"}),
		serpFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "serp_fetches_total",
			Help:      "SERP lookups by outcome.",
		}, []string{"outcome"}),
		researchSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "research_duration_seconds",
			Help:      "Wall time of full research runs.",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60, 120},
		}),
	}

	m.registry.MustRegister(
		m.scoringRequests, m.keywordsScored, m.selectionStage, m.quickWins, m.underTarget,
		m.llmCalls, m.serpFetches, m.researchSeconds,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry returns the registry the collectors live on.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveScoring records a plain scoring request.
func (m *Metrics) ObserveScoring(mode opportunity.Mode, candidates int) {
	if m == nil {
		return
	}
	m.scoringRequests.WithLabelValues(string(mode)).Inc()
	m.keywordsScored.WithLabelValues(string(mode)).Add(float64(candidates))
}

// ObserveSelection records a quick-win selection and its stage trace.
func (m *Metrics) ObserveSelection(mode opportunity.Mode, candidates int, sel opportunity.Selection) {
	if m == nil {
		return
	}
	m.ObserveScoring(mode, candidates)
	if stage := sel.FinalStage(); stage != "" {
		m.selectionStage.WithLabelValues(string(stage)).Inc()
	}
	m.quickWins.Add(float64(len(sel.Results)))
	if sel.UnderTarget() {
		m.underTarget.Inc()
	}
}

// ObserveLLM records one LLM call.
func (m *Metrics) ObserveLLM(purpose, outcome string) {
	if m == nil {
		return
	}
	m.llmCalls.WithLabelValues(purpose, outcome).Inc()
}

// ObserveSERP records one SERP lookup.
func (m *Metrics) ObserveSERP(outcome string) {
	if m == nil {
		return
	}
	m.serpFetches.WithLabelValues(outcome).Inc()
}

// ObserveResearch records the duration of a research run.
func (m *Metrics) ObserveResearch(d time.Duration) {
	if m == nil {
		return
	}
	m.researchSeconds.Observe(d.Seconds())
}

// RegisterStore adds a collector that reads run totals from the database on
// each scrape.
func (m *Metrics) RegisterStore(db *database.DB, logger zerolog.Logger) error {
	if m == nil {
		return nil
	}
	return m.registry.Register(&StoreCollector{db: db, logger: logger})
}

var (
	runsDesc = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "", "runs_stored"),
		"Research runs stored in the database by status.",
		[]string{"status"},
		nil,
	)
	storedQuickWinsDesc = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "", "quick_wins_stored"),
		"Stored keywords that passed the quick-win gate.",
		nil,
		nil,
	)
)

// StoreCollector is a custom collector that reads aggregate counts from the
// database on each scrape.
type StoreCollector struct {
	db     *database.DB
	logger zerolog.Logger
}

// Describe sends the metric descriptors to the channel.
func (c *StoreCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- runsDesc
	ch <- storedQuickWinsDesc
}

// Collect queries the database and emits gauges.
func (c *StoreCollector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	stats, err := c.db.GetStats(ctx, nil)
	if err != nil {
		c.logger.Error().Err(err).Msg("failed to collect run metrics")
		return
	}

	ch <- prometheus.MustNewConstMetric(runsDesc, prometheus.GaugeValue,
		float64(stats.CompleteRuns), string(database.RunComplete))
	ch <- prometheus.MustNewConstMetric(runsDesc, prometheus.GaugeValue,
		float64(stats.DegradedRuns), string(database.RunDegraded))
	ch <- prometheus.MustNewConstMetric(storedQuickWinsDesc, prometheus.GaugeValue,
		float64(stats.QuickWins))
}
