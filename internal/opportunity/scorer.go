package opportunity

import (
	"math"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Component names used in ScoreBreakdown.Components.
const (
	ComponentVolume      = "volume"
	ComponentCompetition = "competition"
	ComponentCPC         = "cpc"
	ComponentLongtail    = "longtail"
	ComponentCommercial  = "commercial"
)

// Level is a coarse band over the final score.
type Level string

const (
	LevelExcellent Level = "Excellent"
	LevelGood      Level = "Good"
	LevelModerate  Level = "Moderate"
	LevelDifficult Level = "Difficult"
)

// Quick-win floors shared by every mode.
const (
	QuickWinMinVolume = 50
	QuickWinMinWords  = 3
)

const (
	volumeCeiling = 10000.0

	cpcOptimalLow  = 0.5
	cpcOptimalHigh = 3.0
	cpcDecay       = 5.0
)

var (
	transactionalTerms = []string{"buy", "price", "cost", "deal", "discount", "under "}
	commercialTerms    = []string{"best", "top", "review", "vs", "comparison", "alternative"}
	navigationalTerms  = []string{"login", "official", "website", "download"}
)

// Intent is the search intent tier inferred from the keyword text.
type Intent string

const (
	IntentTransactional Intent = "transactional"
	IntentCommercial    Intent = "commercial"
	IntentNavigational  Intent = "navigational"
	IntentInformational Intent = "informational"
)

// ScoreBreakdown is the scored view of a single candidate.
type ScoreBreakdown struct {
	FinalScore float64            `json:"final_score"`
	Score      float64            `json:"score"`
	Components map[string]float64 `json:"component_scores"`
	Level      Level              `json:"opportunity_level"`
	Intent     Intent             `json:"intent"`
	IsQuickWin bool               `json:"is_quick_win"`
}

// RankedResult pairs a candidate with its score.
type RankedResult struct {
	Candidate
	ScoreBreakdown
}

// Scorer computes opportunity scores for one mode. The zero value is not
// usable; build one with NewScorer.
type Scorer struct {
	profile Profile
}

// NewScorer creates a Scorer for the given mode.
func NewScorer(m Mode) *Scorer {
	return &Scorer{profile: ProfileFor(m)}
}

// Profile returns the parameters the scorer was built with.
func (s *Scorer) Profile() Profile {
	return s.profile
}

// Score computes the full breakdown for a candidate.
func (s *Scorer) Score(c Candidate) ScoreBreakdown {
	w := s.profile.Weights
	intent := ClassifyIntent(c.Text)

	components := map[string]float64{
		ComponentVolume:      VolumeScore(c.Volume),
		ComponentCompetition: CompetitionScore(c.Competition, s.profile.Gamma),
		ComponentCPC:         CPCScore(c.CPC),
		ComponentLongtail:    LongtailScore(c.WordCount()),
		ComponentCommercial:  commercialScore(c.Text, intent),
	}

	final := components[ComponentVolume]*w.Volume +
		components[ComponentCompetition]*w.Competition +
		components[ComponentCPC]*w.CPC +
		components[ComponentLongtail]*w.Longtail +
		components[ComponentCommercial]*w.Commercial
	final = clamp(final, 0, 100)

	return ScoreBreakdown{
		FinalScore: final,
		Score:      Round1(final),
		Components: components,
		Level:      LevelFor(final),
		Intent:     intent,
		IsQuickWin: s.isQuickWin(c, final),
	}
}

// Rank scores a candidate and pairs it with its breakdown.
func (s *Scorer) Rank(c Candidate) RankedResult {
	return RankedResult{Candidate: c, ScoreBreakdown: s.Score(c)}
}

// RankAll scores every candidate, preserving input order.
func (s *Scorer) RankAll(candidates []Candidate) []RankedResult {
	results := make([]RankedResult, 0, len(candidates))
	for _, c := range candidates {
		results = append(results, s.Rank(c))
	}
	return results
}

// isQuickWin requires all four conditions.
func (s *Scorer) isQuickWin(c Candidate, final float64) bool {
	return c.Competition <= s.profile.CompetitionCap &&
		final >= s.profile.QuickWinThreshold &&
		c.Volume >= QuickWinMinVolume &&
		c.WordCount() >= QuickWinMinWords
}

// VolumeScore scales search volume logarithmically against a 10k ceiling.
func VolumeScore(volume int) float64 {
	v := math.Max(1, float64(volume))
	return math.Min(100, 100*math.Log10(v)/math.Log10(volumeCeiling))
}

// CompetitionScore inverts competition with curvature gamma.
func CompetitionScore(competition, gamma float64) float64 {
	competition = clamp(competition, 0, 1)
	return 100 * (1 - math.Pow(competition, gamma))
}

// CPCScore rewards cost-per-click inside the optimal commercial range.
func CPCScore(cpc float64) float64 {
	switch {
	case cpc <= 0:
		return 0
	case cpc < cpcOptimalLow:
		return 100 * cpc / cpcOptimalLow
	case cpc <= cpcOptimalHigh:
		return 100
	default:
		return 100 * math.Exp(-(cpc-cpcOptimalHigh)/cpcDecay)
	}
}

// LongtailScore is a step function over word count.
func LongtailScore(words int) float64 {
	switch {
	case words <= 1:
		return 0
	case words == 2:
		return 30
	case words == 3:
		return 60
	case words == 4:
		return 80
	default:
		return 100
	}
}

// CommercialScore scores the commercial intent of the keyword text. Blank
// text scores 0 rather than the informational baseline.
func CommercialScore(text string) float64 {
	return commercialScore(text, ClassifyIntent(text))
}

func commercialScore(text string, i Intent) float64 {
	if strings.TrimSpace(text) == "" {
		return 0
	}
	return intentScore(i)
}

// ClassifyIntent returns the first matching intent tier, checking
// transactional, then commercial, then navigational terms.
func ClassifyIntent(text string) Intent {
	lower := cases.Lower(language.Und).String(text)

	switch {
	case containsAny(lower, transactionalTerms):
		return IntentTransactional
	case containsAny(lower, commercialTerms):
		return IntentCommercial
	case containsAny(lower, navigationalTerms):
		return IntentNavigational
	default:
		return IntentInformational
	}
}

func intentScore(i Intent) float64 {
	switch i {
	case IntentTransactional:
		return 100
	case IntentCommercial:
		return 80
	case IntentNavigational:
		return 40
	default:
		return 20
	}
}

// LevelFor bands a final score. The bands are absolute and do not depend on
// the mode.
func LevelFor(score float64) Level {
	switch {
	case score >= 60:
		return LevelExcellent
	case score >= 40:
		return LevelGood
	case score >= 20:
		return LevelModerate
	default:
		return LevelDifficult
	}
}

// Round1 rounds to one decimal place for display.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func containsAny(text string, terms []string) bool {
	for _, t := range terms {
		if strings.Contains(text, t) {
			return true
		}
	}
	return false
}
