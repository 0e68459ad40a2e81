package filter

// ScorerConfig configures the relevance check
type ScorerConfig struct {
	MinRelevance float64 // Minimum share of seed words; 0 disables the check
}

// Scorer calculates topical relevance from seed word matches
type Scorer struct {
	config ScorerConfig
}

// NewScorer creates a new Scorer with the given configuration
func NewScorer(config ScorerConfig) *Scorer {
	return &Scorer{config: config}
}

// Calculate computes the share of seed words present. A seed with no
// content words counts as fully relevant.
func (s *Scorer) Calculate(matches, totalSeedWords int) float64 {
	if totalSeedWords == 0 {
		return 1
	}
	return float64(matches) / float64(totalSeedWords)
}

// Passes reports whether a relevance score clears the configured minimum
func (s *Scorer) Passes(relevance float64) bool {
	return s.config.MinRelevance <= 0 || relevance >= s.config.MinRelevance
}

// Explain returns a human-readable explanation of the score
func (s *Scorer) Explain(relevance float64) string {
	switch {
	case relevance >= 0.99:
		return "on topic - keeps every seed word"
	case relevance > 0 && s.Passes(relevance):
		return "related - keeps some seed words"
	default:
		return "off topic - drops the seed words"
	}
}
