package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/vijay-prabhu/seobrief/internal/brief"
	"github.com/vijay-prabhu/seobrief/internal/database"
	"github.com/vijay-prabhu/seobrief/internal/opportunity"
	"github.com/vijay-prabhu/seobrief/internal/research"
)

func (s *Server) registerHandlers() {
	s.tools = append([]Tool{}, ScoringTools...)
	s.handlers["score_keywords"] = s.handleScoreKeywords
	s.handlers["find_quick_wins"] = s.handleFindQuickWins

	if s.db != nil {
		s.tools = append(s.tools, StoreTools...)
		s.handlers["list_runs"] = s.handleListRuns
		s.handlers["get_run"] = s.handleGetRun
		s.handlers["get_stats"] = s.handleGetStats
	}
	if s.pipeline != nil {
		s.tools = append(s.tools, ResearchTool)
		s.handlers["research_topic"] = s.handleResearchTopic
	}
}

type scoreParams struct {
	Candidates []map[string]any `json:"candidates"`
	Mode       string           `json:"mode"`
	MinResults int              `json:"min_results"`
	MaxResults int              `json:"max_results"`
	Topic      string           `json:"topic"`
}

type scoreResult struct {
	Mode    opportunity.Mode           `json:"mode"`
	Results []opportunity.RankedResult `json:"results"`
	Skipped []string                   `json:"skipped,omitempty"`
}

type quickWinsResult struct {
	Mode      opportunity.Mode           `json:"mode"`
	Stage     opportunity.Stage          `json:"final_stage"`
	QuickWins []opportunity.RankedResult `json:"quick_wins"`
	Summary   string                     `json:"summary"`
	Skipped   []string                   `json:"skipped,omitempty"`
}

func parseScoreParams(params json.RawMessage) (scoreParams, []opportunity.Candidate, []string, error) {
	var p scoreParams
	if err := json.Unmarshal(params, &p); err != nil {
		return p, nil, nil, fmt.Errorf("invalid parameters: %w", err)
	}
	if len(p.Candidates) == 0 {
		return p, nil, nil, fmt.Errorf("candidates are required")
	}

	candidates, errs := opportunity.FromRecords(p.Candidates, "mcp")
	skipped := make([]string, 0, len(errs))
	for _, err := range errs {
		skipped = append(skipped, err.Error())
	}
	return p, candidates, skipped, nil
}

func (s *Server) handleScoreKeywords(ctx context.Context, params json.RawMessage) (interface{}, error) {
	p, candidates, skipped, err := parseScoreParams(params)
	if err != nil {
		return nil, err
	}

	mode := opportunity.ParseMode(p.Mode)
	results := opportunity.NewScorer(mode).RankAll(candidates)
	s.metrics.ObserveScoring(mode, len(candidates))

	return scoreResult{Mode: mode, Results: results, Skipped: skipped}, nil
}

func (s *Server) handleFindQuickWins(ctx context.Context, params json.RawMessage) (interface{}, error) {
	p, candidates, skipped, err := parseScoreParams(params)
	if err != nil {
		return nil, err
	}

	mode := opportunity.ParseMode(p.Mode)
	sel := opportunity.NewSelector().Select(opportunity.Request{
		Candidates: candidates,
		Mode:       mode,
		MinResults: p.MinResults,
		MaxResults: p.MaxResults,
		Topic:      p.Topic,
	})
	s.metrics.ObserveSelection(mode, len(candidates), sel)

	summary := fmt.Sprintf("%d keyword(s) selected at the %s stage", len(sel.Results), sel.FinalStage())
	if sel.UnderTarget() {
		summary += fmt.Sprintf(", fewer than the %d requested", sel.MinResults)
	}

	return quickWinsResult{
		Mode:      mode,
		Stage:     sel.FinalStage(),
		QuickWins: sel.Results,
		Summary:   summary,
		Skipped:   skipped,
	}, nil
}

type listRunsParams struct {
	Topic     string `json:"topic"`
	Mode      string `json:"mode"`
	Status    string `json:"status"`
	SinceDays int    `json:"since_days"`
	Limit     int    `json:"limit"`
}

func (s *Server) handleListRuns(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var p listRunsParams
	if params != nil {
		if err := json.Unmarshal(params, &p); err != nil {
			return nil, fmt.Errorf("invalid parameters: %w", err)
		}
	}

	opts := database.ListOptions{}

	if p.Topic != "" {
		opts.Topic = &p.Topic
	}

	if p.Mode != "" {
		opts.Mode = &p.Mode
	}

	if p.Status != "" && p.Status != "all" {
		status := database.RunStatus(p.Status)
		opts.Status = &status
	}

	if p.SinceDays > 0 {
		since := time.Now().AddDate(0, 0, -p.SinceDays)
		opts.Since = &since
	}

	if p.Limit > 0 {
		opts.Limit = p.Limit
	} else {
		opts.Limit = 20
	}

	runs, err := s.db.ListRuns(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	if runs == nil {
		runs = []database.Run{}
	}

	return runs, nil
}

type getRunParams struct {
	ID string `json:"id"`
}

func (s *Server) handleGetRun(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var p getRunParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, fmt.Errorf("invalid parameters: %w", err)
	}

	if strings.TrimSpace(p.ID) == "" {
		return nil, fmt.Errorf("id is required")
	}

	detail, err := research.LoadDetail(ctx, s.db, p.ID)
	if err != nil {
		if errors.Is(err, database.ErrRunNotFound) {
			return nil, fmt.Errorf("run not found: %s", p.ID)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	return detail, nil
}

type getStatsParams struct {
	SinceDays int `json:"since_days"`
}

func (s *Server) handleGetStats(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var p getStatsParams
	if params != nil {
		json.Unmarshal(params, &p)
	}

	var since *time.Time
	if p.SinceDays > 0 {
		t := time.Now().AddDate(0, 0, -p.SinceDays)
		since = &t
	}

	stats, err := s.db.GetStats(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}

	return stats, nil
}

type researchTopicParams struct {
	Topic    string `json:"topic"`
	Mode     string `json:"mode"`
	SkipSERP bool   `json:"skip_serp"`
}

type researchTopicResult struct {
	RunID     string                     `json:"run_id"`
	Status    database.RunStatus         `json:"status"`
	Stage     opportunity.Stage          `json:"final_stage"`
	QuickWins []opportunity.RankedResult `json:"quick_wins"`
	Brief     string                     `json:"brief,omitempty"`
	Warnings  []string                   `json:"warnings,omitempty"`
}

func (s *Server) handleResearchTopic(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var p researchTopicParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, fmt.Errorf("invalid parameters: %w", err)
	}

	if strings.TrimSpace(p.Topic) == "" {
		return nil, fmt.Errorf("topic is required")
	}

	opts := research.Options{Topic: p.Topic, SkipSERP: p.SkipSERP}
	if p.Mode != "" {
		opts.Mode = opportunity.ParseMode(p.Mode)
	}

	result, err := s.pipeline.Run(ctx, opts)
	if err != nil {
		return nil, err
	}

	out := researchTopicResult{
		RunID:     result.Run.ID,
		Status:    result.Run.Status,
		Stage:     result.Selection.FinalStage(),
		QuickWins: result.Selection.Results,
		Warnings:  result.Warnings,
	}
	if result.Brief != nil {
		out.Brief = brief.Markdown(*result.Brief)
	}
	return out, nil
}

// Resource handlers

func (s *Server) handleReadResource(ctx context.Context, uri string) (string, error) {
	if s.db == nil {
		return "", fmt.Errorf("no database configured")
	}
	switch uri {
	case ResourceRecent:
		return s.getResourceRecent(ctx)
	case ResourceStats:
		return s.getResourceStats(ctx)
	case ResourceExclusions:
		return s.getResourceExclusions(ctx)
	default:
		return "", fmt.Errorf("unknown resource: %s", uri)
	}
}

func (s *Server) getResourceStats(ctx context.Context) (string, error) {
	stats, err := s.db.GetStats(ctx, nil)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, `Research Summary
================
Total runs:        %d
  - Complete:      %d
  - Degraded:      %d
Keywords selected: %d
Quick wins:        %d
Briefs written:    %d
Average score:     %.1f
`, stats.TotalRuns, stats.CompleteRuns, stats.DegradedRuns, stats.TotalKeywords,
		stats.QuickWins, stats.Briefs, stats.AvgScore)

	if len(stats.TopKeywords) > 0 {
		b.WriteString("\nBest keywords:\n")
		for _, k := range stats.TopKeywords {
			fmt.Fprintf(&b, "  - %s (%.1f, %s)\n", k.Keyword, k.Score, k.Level)
		}
	}

	return b.String(), nil
}

func (s *Server) getResourceRecent(ctx context.Context) (string, error) {
	runs, err := s.db.ListRuns(ctx, database.ListOptions{
		Limit: 10,
	})
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("Recent Research (Last 10 Runs)\n==============================\n\n")

	if len(runs) == 0 {
		b.WriteString("No research yet. Run 'seobrief research <topic>' to start.\n")
		return b.String(), nil
	}

	// Collect the runs first; the connection is single-use while rows are open.
	for _, r := range runs {
		top := ""
		keywords, err := s.db.ListRunKeywords(ctx, r.ID)
		if err != nil {
			return "", err
		}
		if len(keywords) > 0 {
			top = fmt.Sprintf(" | top: %s (%.1f)", keywords[0].Keyword, keywords[0].Score)
		}
		days := int(time.Since(r.CreatedAt).Hours() / 24)
		fmt.Fprintf(&b, "- %s | %s | %s | %s | %d result(s) | %d day(s) ago%s\n",
			shortID(r.ID), r.Topic, r.Mode, r.Status, r.ResultCount, days, top)
	}

	return b.String(), nil
}

func (s *Server) getResourceExclusions(ctx context.Context) (string, error) {
	exclusions, err := s.db.ListExclusions(ctx, nil)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("Exclusion Terms\n===============\n\n")

	if len(exclusions) == 0 {
		b.WriteString("No stored exclusions. Configured terms still apply.\n")
		return b.String(), nil
	}

	// Group by source
	bySource := make(map[string][]string)
	for _, e := range exclusions {
		bySource[e.Source] = append(bySource[e.Source], e.Term)
	}

	sourceOrder := []string{
		database.ExclusionSourceUser,
		database.ExclusionSourceConfirmed,
		database.ExclusionSourceSuggested,
	}

	for _, source := range sourceOrder {
		terms := bySource[source]
		if len(terms) > 0 {
			fmt.Fprintf(&b, "%s (%d):\n", source, len(terms))
			for _, term := range terms {
				fmt.Fprintf(&b, "  - %s\n", term)
			}
			b.WriteString("\n")
		}
	}

	return b.String(), nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
