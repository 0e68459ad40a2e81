package database

import (
	"database/sql"
	"time"
)

// RunStatus is the outcome of a research run
type RunStatus string

const (
	// RunComplete means the selection met its minimum result count.
	RunComplete RunStatus = "complete"
	// RunDegraded means fewer quick wins than requested were found.
	RunDegraded RunStatus = "degraded"
)

// Exclusion sources
const (
	ExclusionSourceUser      = "user"
	ExclusionSourceSuggested = "suggested"
	ExclusionSourceConfirmed = "confirmed"
)

// Run is one research invocation for a topic
type Run struct {
	ID             string    `json:"id"`
	Topic          string    `json:"topic"`
	Mode           string    `json:"mode"`
	Status         RunStatus `json:"status"`
	Provider       string    `json:"provider"`
	FinalStage     string    `json:"final_stage"`
	MinResults     int       `json:"min_results"`
	MaxResults     int       `json:"max_results"`
	CandidateCount int       `json:"candidate_count"`
	ResultCount    int       `json:"result_count"`
	QuickWinCount  int       `json:"quick_win_count"`
	CreatedAt      time.Time `json:"created_at"`
}

// RunKeyword is one ranked keyword stored with a run
type RunKeyword struct {
	RunID       string             `json:"run_id"`
	Rank        int                `json:"rank"`
	Keyword     string             `json:"keyword"`
	Volume      int                `json:"volume"`
	Competition float64            `json:"competition"`
	CPC         float64            `json:"cpc"`
	Source      *string            `json:"source,omitempty"`
	FinalScore  float64            `json:"final_score"`
	Score       float64            `json:"score"`
	Level       string             `json:"opportunity_level"`
	Intent      string             `json:"intent"`
	IsQuickWin  bool               `json:"is_quick_win"`
	Components  map[string]float64 `json:"component_scores"`
}

// Brief is the content brief written for a run's primary keyword
type Brief struct {
	RunID     string    `json:"run_id"`
	Keyword   string    `json:"keyword"`
	Source    string    `json:"source"`
	Markdown  string    `json:"markdown"`
	CreatedAt time.Time `json:"created_at"`
}

// Exclusion is a term that removes matching keyword candidates
type Exclusion struct {
	ID        string    `json:"id"`
	Term      string    `json:"term"`
	Source    string    `json:"source"`
	CreatedAt time.Time `json:"created_at"`
}

// Stats represents aggregate statistics
type Stats struct {
	TotalRuns     int            `json:"total_runs"`
	CompleteRuns  int            `json:"complete_runs"`
	DegradedRuns  int            `json:"degraded_runs"`
	TotalKeywords int            `json:"total_keywords"`
	QuickWins     int            `json:"quick_wins"`
	AvgScore      float64        `json:"avg_score"`
	Briefs        int            `json:"briefs"`
	RunsByMode    map[string]int `json:"runs_by_mode"`
	TopKeywords   []RunKeyword   `json:"top_keywords"`
}

// ListOptions contains options for listing runs
type ListOptions struct {
	Topic  *string
	Mode   *string
	Status *RunStatus
	Since  *time.Time
	Limit  int
	Offset int
}

// NullString is a helper to convert *string to sql.NullString
func NullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// StringPtr converts sql.NullString to *string
func StringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return &ns.String
}

// NullTime is a helper to convert *time.Time to sql.NullTime
func NullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
