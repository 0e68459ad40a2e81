package filter

import (
	"context"
	"sort"
	"strings"

	"github.com/vijay-prabhu/seobrief/internal/database"
	"github.com/vijay-prabhu/seobrief/internal/opportunity"
)

// lowValuePatterns are keyword fragments that rarely lead to content worth
// writing: piracy, job hunting and dictionary lookups.
var lowValuePatterns = []string{
	"free download",
	"torrent",
	"crack",
	"pdf",
	"jobs",
	"salary",
	"meaning",
	"definition",
	"wiki",
	"reddit",
	"coupon code",
	"login",
}

// Learner suggests exclusions from the candidate pools it sees
type Learner struct {
	db *database.DB
}

// NewLearner creates a new Learner
func NewLearner(db *database.DB) *Learner {
	return &Learner{db: db}
}

// LoadInto adds every active exclusion from the database to the filter
func (l *Learner) LoadInto(ctx context.Context, f *Filter) error {
	terms, err := l.db.ActiveExclusionTerms(ctx)
	if err != nil {
		return err
	}
	f.AddLearnedTerms(terms)
	return nil
}

// LearnFromPool records low-value patterns found in a candidate pool as
// suggested exclusions. Suggestions stay inactive until approved. It
// returns the newly suggested terms.
func (l *Learner) LearnFromPool(ctx context.Context, pool []opportunity.Candidate) ([]string, error) {
	found := extractLowValuePatterns(pool)

	var suggested []string
	for _, term := range found {
		// Check if already exists
		exists, err := l.db.ExclusionExists(ctx, term)
		if err != nil {
			return suggested, err
		}
		if exists {
			continue
		}

		e := &database.Exclusion{
			Term:   term,
			Source: database.ExclusionSourceSuggested,
		}
		if err := l.db.CreateExclusion(ctx, e); err != nil {
			return suggested, err
		}
		suggested = append(suggested, term)
	}

	return suggested, nil
}

// LearnFromFeedback records a keyword the user rejected as an active
// exclusion. An existing suggestion for the same term is upgraded.
func (l *Learner) LearnFromFeedback(ctx context.Context, keyword string) error {
	return l.db.CreateExclusion(ctx, &database.Exclusion{
		Term:   strings.ToLower(strings.TrimSpace(keyword)),
		Source: database.ExclusionSourceUser,
	})
}

// extractLowValuePatterns returns the distinct patterns present in the pool,
// sorted for stable output.
func extractLowValuePatterns(pool []opportunity.Candidate) []string {
	seen := make(map[string]bool)

	for _, c := range pool {
		text := strings.ToLower(c.Text)
		for _, pattern := range lowValuePatterns {
			if containsWord(text, pattern) {
				seen[pattern] = true
			}
		}
	}

	patterns := make([]string, 0, len(seen))
	for p := range seen {
		patterns = append(patterns, p)
	}
	sort.Strings(patterns)
	return patterns
}
