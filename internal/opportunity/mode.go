package opportunity

import "strings"

// Mode is a difficulty profile that controls how aggressively competition is
// penalised relative to volume.
type Mode string

const (
	ModeEasy   Mode = "easy"
	ModeMedium Mode = "medium"
	ModeHard   Mode = "hard"
)

// Modes lists the supported modes in ascending difficulty.
var Modes = []Mode{ModeEasy, ModeMedium, ModeHard}

// ParseMode maps a user-supplied value to a Mode. Unknown values fall back to
// medium.
func ParseMode(s string) Mode {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeEasy:
		return ModeEasy
	case ModeHard:
		return ModeHard
	default:
		return ModeMedium
	}
}

// Weights is the weight vector applied to the five component scores.
type Weights struct {
	Volume      float64 `json:"volume"`
	Competition float64 `json:"competition"`
	CPC         float64 `json:"cpc"`
	Longtail    float64 `json:"longtail"`
	Commercial  float64 `json:"commercial"`
}

// Sum returns the total weight.
func (w Weights) Sum() float64 {
	return w.Volume + w.Competition + w.CPC + w.Longtail + w.Commercial
}

// Profile bundles the tuning parameters for one mode.
type Profile struct {
	Mode              Mode    `json:"mode"`
	Weights           Weights `json:"weights"`
	CompetitionCap    float64 `json:"competition_cap"`
	QuickWinThreshold float64 `json:"quick_win_threshold"`
	// Gamma is the curvature exponent of the competition component.
	Gamma float64 `json:"gamma"`
}

var profiles = [...]Profile{
	{
		Mode:              ModeEasy,
		Weights:           Weights{Volume: 0.25, Competition: 0.45, CPC: 0.10, Longtail: 0.15, Commercial: 0.05},
		CompetitionCap:    0.50,
		QuickWinThreshold: 45.0,
		Gamma:             1.8,
	},
	{
		Mode:              ModeMedium,
		Weights:           Weights{Volume: 0.35, Competition: 0.30, CPC: 0.20, Longtail: 0.10, Commercial: 0.05},
		CompetitionCap:    0.70,
		QuickWinThreshold: 55.0,
		Gamma:             1.4,
	},
	{
		Mode:              ModeHard,
		Weights:           Weights{Volume: 0.45, Competition: 0.20, CPC: 0.25, Longtail: 0.05, Commercial: 0.05},
		CompetitionCap:    1.00,
		QuickWinThreshold: 65.0,
		Gamma:             1.2,
	},
}

// ProfileFor returns the tuning profile for a mode, ignoring case and
// surrounding space. Unknown modes get the medium profile. The returned value
// is a copy.
func ProfileFor(m Mode) Profile {
	switch ParseMode(string(m)) {
	case ModeEasy:
		return profiles[0]
	case ModeHard:
		return profiles[2]
	default:
		return profiles[1]
	}
}
