// Package filter removes keyword candidates before scoring: blocked terms
// from config and the exclusions table, and optionally candidates that drift
// too far from the seed topic.
package filter

import (
	"strings"

	"github.com/vijay-prabhu/seobrief/internal/config"
	"github.com/vijay-prabhu/seobrief/internal/opportunity"
)

// Layer identifies which filtering layer made the decision
type Layer string

const (
	LayerKept      Layer = "kept"
	LayerExcluded  Layer = "excluded"
	LayerOffTopic  Layer = "off_topic"
	LayerDuplicate Layer = "duplicate"
)

// Result represents the outcome of filtering a candidate
type Result struct {
	Include   bool    // Whether to keep this candidate
	Layer     Layer   // Which layer made the decision
	Relevance float64 // Share of seed words found in the candidate (0.0-1.0)
	Reason    string  // Human-readable reason
}

// FilteredCandidate combines a candidate with its filter result
type FilteredCandidate struct {
	Candidate opportunity.Candidate
	Result    Result
}

// Filter applies exclusion and relevance rules to candidates
type Filter struct {
	config config.FilterConfig
	scorer *Scorer

	// Learned exclusions (added at runtime from the database)
	learnedTerms []string
}

// New creates a new Filter with the given configuration
func New(cfg config.FilterConfig) *Filter {
	return &Filter{
		config: cfg,
		scorer: NewScorer(ScorerConfig{
			MinRelevance: cfg.MinRelevance,
		}),
	}
}

// AddLearnedTerms adds exclusion terms stored in the database
func (f *Filter) AddLearnedTerms(terms []string) {
	f.learnedTerms = append(f.learnedTerms, terms...)
}

// GetAllExcludeTerms returns config + learned exclusion terms
func (f *Filter) GetAllExcludeTerms() []string {
	terms := make([]string, 0, len(f.config.ExcludeTerms)+len(f.learnedTerms))
	terms = append(terms, f.config.ExcludeTerms...)
	return append(terms, f.learnedTerms...)
}

// Apply runs one candidate through the filtering pipeline
func (f *Filter) Apply(c opportunity.Candidate, seed string) Result {
	// Layer 1: blocked terms
	if result := f.checkExcludeTerms(c); result != nil {
		return *result
	}

	// Layer 2: topical relevance
	return f.scoreRelevance(c, seed)
}

// ApplyBatch filters candidates for a seed topic. Exact-duplicate keyword
// texts after the first are reported with LayerDuplicate.
func (f *Filter) ApplyBatch(candidates []opportunity.Candidate, seed string) []FilteredCandidate {
	results := make([]FilteredCandidate, 0, len(candidates))
	seen := make(map[string]bool, len(candidates))

	for _, c := range candidates {
		result := f.Apply(c, seed)
		if result.Include && seen[c.Text] {
			result = Result{Include: false, Layer: LayerDuplicate, Relevance: result.Relevance, Reason: "duplicate keyword"}
		}
		if result.Include {
			seen[c.Text] = true
		}
		results = append(results, FilteredCandidate{Candidate: c, Result: result})
	}

	return results
}

// Kept returns only candidates that should be scored
func Kept(filtered []FilteredCandidate) []opportunity.Candidate {
	kept := make([]opportunity.Candidate, 0, len(filtered))
	for _, f := range filtered {
		if f.Result.Include {
			kept = append(kept, f.Candidate)
		}
	}
	return kept
}

// Drop describes a candidate that was filtered out
type Drop struct {
	Keyword string `json:"keyword"`
	Layer   Layer  `json:"layer"`
	Reason  string `json:"reason"`
}

// Dropped lists the candidates that will not be scored, in input order
func Dropped(filtered []FilteredCandidate) []Drop {
	var drops []Drop
	for _, f := range filtered {
		if !f.Result.Include {
			drops = append(drops, Drop{Keyword: f.Candidate.Text, Layer: f.Result.Layer, Reason: f.Result.Reason})
		}
	}
	return drops
}

// Stats returns filtering statistics
type Stats struct {
	Total      int `json:"total"`
	Kept       int `json:"kept"`
	Excluded   int `json:"excluded"`
	OffTopic   int `json:"off_topic"`
	Duplicates int `json:"duplicates"`
}

// GetStats returns statistics about filtered candidates
func GetStats(filtered []FilteredCandidate) Stats {
	stats := Stats{Total: len(filtered)}

	for _, f := range filtered {
		switch f.Result.Layer {
		case LayerKept:
			stats.Kept++
		case LayerExcluded:
			stats.Excluded++
		case LayerOffTopic:
			stats.OffTopic++
		case LayerDuplicate:
			stats.Duplicates++
		}
	}

	return stats
}

// seedWords returns the lowercased words of the seed, skipping stop words.
func seedWords(seed string) []string {
	var words []string
	for _, w := range strings.Fields(strings.ToLower(seed)) {
		if !stopWords[w] {
			words = append(words, w)
		}
	}
	return words
}

var stopWords = map[string]bool{
	"a": true, "an": true, "the": true, "and": true, "or": true,
	"for": true, "of": true, "in": true, "on": true, "to": true, "with": true,
}
