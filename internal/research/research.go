// Package research runs the full keyword research pipeline for a topic:
// generate candidates, filter, select quick wins, look up the result page,
// write a brief and store the run.
package research

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/vijay-prabhu/seobrief/internal/brief"
	"github.com/vijay-prabhu/seobrief/internal/config"
	"github.com/vijay-prabhu/seobrief/internal/database"
	"github.com/vijay-prabhu/seobrief/internal/filter"
	"github.com/vijay-prabhu/seobrief/internal/keywords"
	"github.com/vijay-prabhu/seobrief/internal/metrics"
	"github.com/vijay-prabhu/seobrief/internal/opportunity"
	"github.com/vijay-prabhu/seobrief/internal/serp"
)

// ErrEmptyPool is returned when no candidates survive filtering
var ErrEmptyPool = errors.New("no keyword candidates left after filtering")

// Deps are the collaborators a Pipeline uses. Only Generator is required;
// a nil DB skips persistence and a nil Searcher skips SERP lookups.
type Deps struct {
	DB        *database.DB
	Generator keywords.Generator
	Searcher  serp.Searcher
	Writer    *brief.Writer
	Metrics   *metrics.Metrics
	Config    *config.Config
	Logger    zerolog.Logger
}

// Pipeline orchestrates a research run
type Pipeline struct {
	db        *database.DB
	generator keywords.Generator
	searcher  serp.Searcher
	writer    *brief.Writer
	learner   *filter.Learner
	selector  *opportunity.Selector
	metrics   *metrics.Metrics
	config    *config.Config
	log       zerolog.Logger
}

// New creates a Pipeline
func New(deps Deps) *Pipeline {
	cfg := deps.Config
	if cfg == nil {
		cfg = config.Default()
	}
	writer := deps.Writer
	if writer == nil {
		writer = brief.NewWriter(nil, deps.Logger)
	}

	p := &Pipeline{
		db:        deps.DB,
		generator: deps.Generator,
		searcher:  deps.Searcher,
		writer:    writer,
		selector:  opportunity.NewSelector(),
		metrics:   deps.Metrics,
		config:    cfg,
		log:       deps.Logger.With().Str("component", "research").Logger(),
	}
	if deps.DB != nil {
		p.learner = filter.NewLearner(deps.DB)
	}
	return p
}

// Options configures a single run
type Options struct {
	Topic       string
	Mode        opportunity.Mode // Empty uses the configured mode
	MinResults  int              // 0 uses the configured value
	MaxResults  int              // 0 uses the configured value
	MaxKeywords int              // 0 uses llm.max_keywords

	// Candidates, when set, replaces generation (for example a loaded file)
	Candidates []opportunity.Candidate

	SkipSERP  bool
	SkipBrief bool
	DryRun    bool             // Do not persist anything
	Progress  ProgressCallback // Optional progress callback
}

// Result contains the outcome of a research run
type Result struct {
	Run         *database.Run         `json:"run"`
	Provider    string                `json:"provider"`
	Candidates  int                   `json:"candidates"`
	FilterStats filter.Stats          `json:"filter_stats"`
	Dropped     []filter.Drop         `json:"dropped,omitempty"`
	Selection   opportunity.Selection `json:"selection"`
	Snapshot    *serp.Snapshot        `json:"serp,omitempty"`
	Brief       *brief.Brief          `json:"brief,omitempty"`
	Suggested   []string              `json:"suggested_exclusions,omitempty"`
	Errors      []error               `json:"-"`
	Warnings    []string              `json:"warnings,omitempty"`
	Duration    time.Duration         `json:"duration"`
}

// Status returns complete, or degraded when fewer quick wins than the
// minimum were found
func (r *Result) Status() database.RunStatus {
	if r.Selection.UnderTarget() {
		return database.RunDegraded
	}
	return database.RunComplete
}

// warn records a non-fatal failure. Warnings mirror Errors for JSON callers.
func (r *Result) warn(err error) {
	r.Errors = append(r.Errors, err)
	r.Warnings = append(r.Warnings, err.Error())
}

func (p *Pipeline) resolve(opts Options) Options {
	if opts.Mode == "" {
		opts.Mode = opportunity.ParseMode(p.config.Scoring.Mode)
	}
	if opts.MinResults <= 0 {
		opts.MinResults = p.config.Scoring.MinResults
	}
	if opts.MaxResults <= 0 {
		opts.MaxResults = p.config.Scoring.MaxResults
	}
	if opts.MaxKeywords <= 0 {
		opts.MaxKeywords = p.config.LLM.MaxKeywords
	}
	opts.Topic = strings.Join(strings.Fields(opts.Topic), " ")
	return opts
}

// Run executes the pipeline for one topic
func (p *Pipeline) Run(ctx context.Context, opts Options) (*Result, error) {
	opts = p.resolve(opts)
	if opts.Topic == "" && len(opts.Candidates) == 0 {
		return nil, errors.New("topic must not be empty")
	}

	start := time.Now()
	result := &Result{}
	log := p.log.With().Str("topic", opts.Topic).Str("mode", string(opts.Mode)).Logger()

	// Helper to report progress
	report := func(phase ProgressPhase, current, total int, desc string, startedAt time.Time) {
		if opts.Progress != nil {
			opts.Progress(Progress{
				Topic:       opts.Topic,
				Phase:       phase,
				Current:     current,
				Total:       total,
				Description: desc,
				StartedAt:   startedAt,
			})
		}
	}

	// Generate candidates
	pool := opts.Candidates
	if len(pool) == 0 {
		if p.generator == nil {
			return nil, errors.New("no keyword generator configured")
		}
		phaseStart := time.Now()
		report(PhaseGenerating, 0, 1, "Generating keyword ideas", phaseStart)
		generated, err := p.generator.Generate(ctx, keywords.Request{
			Seed: opts.Topic,
			Max:  opts.MaxKeywords,
			Mode: opts.Mode,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to generate keywords: %w", err)
		}
		pool = generated
		result.Provider = p.generator.Name()
		report(PhaseGenerating, 1, 1, "Keyword ideas ready", phaseStart)
	} else {
		result.Provider = keywords.SourceFile
	}
	result.Candidates = len(pool)

	// Apply filtering
	phaseStart := time.Now()
	report(PhaseFiltering, 0, len(pool), "Applying exclusions", phaseStart)
	f := filter.New(p.config.Filters)
	if p.learner != nil {
		if err := p.learner.LoadInto(ctx, f); err != nil {
			// Non-fatal: continue with configured terms only
			result.warn(fmt.Errorf("failed to load exclusions: %w", err))
		}
	}
	filtered := f.ApplyBatch(pool, opts.Topic)
	kept := filter.Kept(filtered)
	result.FilterStats = filter.GetStats(filtered)
	result.Dropped = filter.Dropped(filtered)
	report(PhaseFiltering, len(pool), len(pool), "Filtering complete", phaseStart)

	if p.learner != nil && !opts.DryRun {
		suggested, err := p.learner.LearnFromPool(ctx, pool)
		if err != nil {
			result.warn(fmt.Errorf("failed to record suggestions: %w", err))
		}
		result.Suggested = suggested
	}

	if len(kept) == 0 {
		return nil, ErrEmptyPool
	}

	// Score and select
	phaseStart = time.Now()
	report(PhaseScoring, 0, len(kept), "Scoring keywords", phaseStart)
	sel := p.selector.Select(opportunity.Request{
		Candidates: kept,
		Mode:       opts.Mode,
		MinResults: opts.MinResults,
		MaxResults: opts.MaxResults,
		Topic:      opts.Topic,
	})
	p.metrics.ObserveSelection(opts.Mode, len(kept), sel)
	result.Selection = sel
	report(PhaseScoring, len(kept), len(kept), "Scoring complete", phaseStart)

	log.Info().
		Int("candidates", len(pool)).
		Int("kept", len(kept)).
		Int("results", len(sel.Results)).
		Str("final_stage", string(sel.FinalStage())).
		Bool("under_target", sel.UnderTarget()).
		Msg("quick wins selected")

	primary := sel.Results[0]

	// Look up the result page for the primary keyword
	if p.searcher != nil && !opts.SkipSERP {
		phaseStart = time.Now()
		report(PhaseFetchingSERP, 0, 1, "Fetching search results", phaseStart)
		snap, err := p.searcher.Search(ctx, primary.Text)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			result.warn(fmt.Errorf("serp lookup failed: %w", err))
			log.Warn().Err(err).Str("keyword", primary.Text).Msg("continuing without SERP data")
		} else {
			result.Snapshot = snap
		}
		report(PhaseFetchingSERP, 1, 1, "Search results ready", phaseStart)
	}

	// Write the brief
	if !opts.SkipBrief {
		phaseStart = time.Now()
		report(PhaseWritingBrief, 0, 1, "Writing content brief", phaseStart)
		b, err := p.writer.Write(ctx, brief.Input{
			Topic:     opts.Topic,
			Primary:   primary,
			Secondary: sel.Results[1:],
			Snapshot:  result.Snapshot,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to write brief: %w", err)
		}
		result.Brief = &b
		report(PhaseWritingBrief, 1, 1, "Brief ready", phaseStart)
	}

	run := &database.Run{
		Topic:          opts.Topic,
		Mode:           string(opts.Mode),
		Status:         result.Status(),
		Provider:       result.Provider,
		FinalStage:     string(sel.FinalStage()),
		MinResults:     sel.MinResults,
		MaxResults:     sel.MaxResults,
		CandidateCount: len(pool),
		ResultCount:    len(sel.Results),
		QuickWinCount:  countQuickWins(sel.Results),
	}
	result.Run = run

	if p.db != nil && !opts.DryRun {
		phaseStart = time.Now()
		report(PhaseSaving, 0, 1, "Saving run", phaseStart)
		if err := p.save(ctx, run, sel.Results, result.Brief); err != nil {
			return nil, err
		}
		report(PhaseSaving, 1, 1, "Run saved", phaseStart)
	}

	result.Duration = time.Since(start)
	p.metrics.ObserveResearch(result.Duration)
	return result, nil
}

func (p *Pipeline) save(ctx context.Context, run *database.Run, results []opportunity.RankedResult, b *brief.Brief) error {
	var stored *database.Brief
	if b != nil {
		stored = &database.Brief{
			Keyword:  b.PrimaryKeyword,
			Source:   b.Source,
			Markdown: brief.Markdown(*b),
		}
	}
	return p.db.SaveRunResult(ctx, run, ToRunKeywords(run.ID, results), stored)
}

// Rebrief rewrites the brief for a stored run, optionally for a different
// keyword from the run (1-based rank; 0 uses the top result)
func (p *Pipeline) Rebrief(ctx context.Context, runID string, rank int) (*brief.Brief, error) {
	if p.db == nil {
		return nil, errors.New("no database configured")
	}

	run, err := p.db.GetRun(ctx, runID)
	if err != nil {
		return nil, err
	}
	rows, err := p.db.ListRunKeywords(ctx, run.ID)
	if err != nil {
		return nil, err
	}
	results := FromRunKeywords(rows)
	if len(results) == 0 {
		return nil, fmt.Errorf("run %s has no keywords", run.ID)
	}

	idx := 0
	if rank > 0 {
		if rank > len(results) {
			return nil, fmt.Errorf("run %s has %d keywords, rank %d out of range", run.ID, len(results), rank)
		}
		idx = rank - 1
	}
	primary := results[idx]
	secondary := append(append([]opportunity.RankedResult{}, results[:idx]...), results[idx+1:]...)

	var snap *serp.Snapshot
	if p.searcher != nil {
		snap, err = p.searcher.Search(ctx, primary.Text)
		if err != nil {
			p.log.Warn().Err(err).Str("keyword", primary.Text).Msg("continuing without SERP data")
			snap = nil
		}
	}

	b, err := p.writer.Write(ctx, brief.Input{
		Topic:     run.Topic,
		Primary:   primary,
		Secondary: secondary,
		Snapshot:  snap,
	})
	if err != nil {
		return nil, err
	}

	if err := p.db.SaveBrief(ctx, &database.Brief{
		RunID:    run.ID,
		Keyword:  b.PrimaryKeyword,
		Source:   b.Source,
		Markdown: brief.Markdown(b),
	}); err != nil {
		return nil, fmt.Errorf("failed to save brief: %w", err)
	}
	return &b, nil
}

// BatchResult holds the outcome for one topic in a batch
type BatchResult struct {
	Index  int
	Topic  string
	Result *Result
	Error  error
}

// RunBatch researches several topics with at most concurrency runs in
// flight. A failed topic does not stop the others.
func (p *Pipeline) RunBatch(ctx context.Context, topics []string, opts Options, concurrency int) []BatchResult {
	results := make([]BatchResult, len(topics))
	if concurrency <= 0 {
		concurrency = p.config.LLM.Concurrency
	}
	if concurrency <= 0 {
		concurrency = 1
	}

	var done int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, topic := range topics {
		g.Go(func() error {
			topicOpts := opts
			topicOpts.Topic = topic
			topicOpts.Candidates = nil
			topicOpts.Progress = nil

			res, err := p.Run(gctx, topicOpts)
			results[i] = BatchResult{Index: i, Topic: topic, Result: res, Error: err}

			if opts.Progress != nil {
				opts.Progress(Progress{
					Topic:       topic,
					Phase:       PhaseSaving,
					Current:     int(atomic.AddInt64(&done, 1)),
					Total:       len(topics),
					Description: "Topic researched",
				})
			}
			return nil
		})
	}

	_ = g.Wait()
	return results
}

func countQuickWins(results []opportunity.RankedResult) int {
	n := 0
	for _, r := range results {
		if r.IsQuickWin {
			n++
		}
	}
	return n
}
