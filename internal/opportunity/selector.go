package opportunity

import (
	"sort"
	"strings"
)

// Default result bounds for quick-win selection.
const (
	DefaultMinResults = 3
	DefaultMaxResults = 5
)

// Stage identifies which step of the selection produced results.
type Stage string

const (
	StageStrict    Stage = "strict"
	StageWider     Stage = "wider"
	StageWidest    Stage = "widest"
	StageExpansion Stage = "expansion"
	StageFallback  Stage = "fallback"
)

// passCriteria is one relaxation level. Each level is strictly wider than the
// one before it on competition, volume and score.
type passCriteria struct {
	stage          Stage
	maxCompetition float64
	minVolume      int
	minScore       float64
	minWords       int
	needsModifier  bool
}

var passes = [...]passCriteria{
	{stage: StageStrict, maxCompetition: 0.40, minVolume: 200, minScore: 30},
	{stage: StageWider, maxCompetition: 0.50, minVolume: 120, minScore: 20, minWords: 4},
	{stage: StageWidest, maxCompetition: 0.55, minVolume: 80, minScore: 15, minWords: 4, needsModifier: true},
}

// rankabilityModifiers signal a keyword is specific enough to rank for.
var rankabilityModifiers = []string{
	"under", "budget", "cheap", "affordable", "near me", "for",
	"best", "reviews", "vs", "guide", "tips",
}

func (p passCriteria) matches(r RankedResult) bool {
	if r.Competition > p.maxCompetition || r.Volume < p.minVolume || r.FinalScore < p.minScore {
		return false
	}
	if p.minWords > 0 && r.WordCount() < p.minWords {
		return false
	}
	if p.needsModifier && !HasModifier(r.Text) {
		return false
	}
	return true
}

// HasModifier reports whether the keyword contains a rankability modifier.
func HasModifier(text string) bool {
	return containsAny(strings.ToLower(text), rankabilityModifiers)
}

// Request describes one selection.
type Request struct {
	Candidates []Candidate
	Mode       Mode
	MinResults int
	MaxResults int
	// Topic seeds synthetic candidates when the pool is too thin. Empty
	// disables expansion.
	Topic string
}

// StageReport records what a single stage contributed.
type StageReport struct {
	Stage   Stage `json:"stage"`
	Matched int   `json:"matched"`
	Added   int   `json:"added"`
	Total   int   `json:"total"`
}

// Selection is the outcome of a quick-win selection.
type Selection struct {
	Results    []RankedResult `json:"results"`
	Stages     []StageReport  `json:"stages"`
	MinResults int            `json:"min_results"`
	MaxResults int            `json:"max_results"`
}

// FinalStage returns the last stage that ran.
func (s Selection) FinalStage() Stage {
	if len(s.Stages) == 0 {
		return ""
	}
	return s.Stages[len(s.Stages)-1].Stage
}

// UnderTarget reports whether fewer results than requested were found. This
// is an expected outcome for thin pools, not an error.
func (s Selection) UnderTarget() bool {
	return len(s.Results) < s.MinResults
}

// Selector picks quick-win keywords using progressively relaxed passes.
// It holds no mutable state and is safe for concurrent use.
type Selector struct{}

// NewSelector creates a Selector.
func NewSelector() *Selector {
	return &Selector{}
}

// ScoreAndSelect returns the ranked quick wins for a candidate pool.
func ScoreAndSelect(candidates []Candidate, mode Mode, minCount, maxCount int, topic string) []RankedResult {
	return NewSelector().Select(Request{
		Candidates: candidates,
		Mode:       mode,
		MinResults: minCount,
		MaxResults: maxCount,
		Topic:      topic,
	}).Results
}

// Select runs the relaxation passes, the expansion fallback and, when all of
// them come up empty, the best-of-pool fallback.
func (sel *Selector) Select(req Request) Selection {
	minCount, maxCount := normalizeBounds(req.MinResults, req.MaxResults)
	selection := Selection{MinResults: minCount, MaxResults: maxCount}

	if len(req.Candidates) == 0 {
		selection.Results = []RankedResult{}
		return selection
	}

	scorer := NewScorer(req.Mode)
	pool := scorer.RankAll(req.Candidates)
	merged := newMergeSet()

	for _, p := range passes {
		if p.stage != StageStrict && merged.len() >= minCount {
			break
		}
		selection.Stages = append(selection.Stages, runPass(p, pool, merged))
	}

	if merged.len() < minCount && strings.TrimSpace(req.Topic) != "" {
		synthetic := scorer.RankAll(ExpandTopic(req.Topic))
		report := runPass(passes[len(passes)-1], synthetic, merged)
		report.Stage = StageExpansion
		selection.Stages = append(selection.Stages, report)
	}

	results := merged.items
	if len(results) == 0 {
		results = topOf(pool, minCount)
		selection.Stages = append(selection.Stages, StageReport{
			Stage:   StageFallback,
			Matched: len(results),
			Added:   len(results),
			Total:   len(results),
		})
	}

	sortByScore(results)
	if len(results) > maxCount {
		results = results[:maxCount]
	}
	selection.Results = results
	return selection
}

func runPass(p passCriteria, pool []RankedResult, merged *mergeSet) StageReport {
	report := StageReport{Stage: p.stage}
	for _, r := range pool {
		if !p.matches(r) {
			continue
		}
		report.Matched++
		if merged.add(r) {
			report.Added++
		}
	}
	report.Total = merged.len()
	return report
}

// mergeSet keeps results in first-seen order, keyed by exact keyword text.
type mergeSet struct {
	seen  map[string]struct{}
	items []RankedResult
}

func newMergeSet() *mergeSet {
	return &mergeSet{seen: make(map[string]struct{})}
}

func (m *mergeSet) add(r RankedResult) bool {
	if _, ok := m.seen[r.Text]; ok {
		return false
	}
	m.seen[r.Text] = struct{}{}
	m.items = append(m.items, r)
	return true
}

func (m *mergeSet) len() int {
	return len(m.items)
}

// topOf returns the n best results of the pool without modifying it.
func topOf(pool []RankedResult, n int) []RankedResult {
	sorted := make([]RankedResult, len(pool))
	copy(sorted, pool)
	sortByScore(sorted)

	if n < 1 {
		n = 1
	}
	if n > len(sorted) {
		n = len(sorted)
	}
	return sorted[:n]
}

// sortByScore orders by full-precision score, highest first. Ties keep their
// existing order so the output is deterministic.
func sortByScore(results []RankedResult) {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].FinalScore > results[j].FinalScore
	})
}

func normalizeBounds(minCount, maxCount int) (int, int) {
	if maxCount <= 0 {
		maxCount = DefaultMaxResults
	}
	if minCount <= 0 {
		minCount = DefaultMinResults
	}
	if minCount > maxCount {
		minCount = maxCount
	}
	return minCount, maxCount
}
