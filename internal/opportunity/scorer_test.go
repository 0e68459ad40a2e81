package opportunity

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileWeightsSumToOne(t *testing.T) {
	for _, m := range Modes {
		t.Run(string(m), func(t *testing.T) {
			p := ProfileFor(m)
			assert.Equal(t, m, p.Mode)
			assert.InDelta(t, 1.0, p.Weights.Sum(), 1e-9)
		})
	}
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		input string
		want  Mode
	}{
		{"easy", ModeEasy},
		{"EASY", ModeEasy},
		{" hard ", ModeHard},
		{"medium", ModeMedium},
		{"", ModeMedium},
		{"extreme", ModeMedium},
	}

	for _, tt := range tests {
		if got := ParseMode(tt.input); got != tt.want {
			t.Errorf("ParseMode(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestProfileForUnknownModeIsMedium(t *testing.T) {
	assert.Equal(t, ProfileFor(ModeMedium), ProfileFor(Mode("bogus")))
}

func TestProfileForIgnoresCase(t *testing.T) {
	assert.Equal(t, ProfileFor(ModeEasy), ProfileFor(Mode("Easy")))
	assert.Equal(t, ProfileFor(ModeHard), ProfileFor(Mode(" HARD ")))

	pool := []Candidate{
		MustCandidate("yoga mats for small apartments", 300, 0.5, 0.8),
		MustCandidate("cheap thick yoga mats online", 150, 0.45, 1.1),
	}
	assert.Equal(t,
		ScoreAndSelect(pool, ModeEasy, 1, 10, ""),
		ScoreAndSelect(pool, Mode("Easy"), 1, 10, ""))
}

func TestVolumeScore(t *testing.T) {
	tests := []struct {
		volume int
		want   float64
	}{
		{0, 0},
		{1, 0},
		{10, 25},
		{100, 50},
		{1000, 75},
		{10000, 100},
		{250000, 100},
	}

	for _, tt := range tests {
		assert.InDelta(t, tt.want, VolumeScore(tt.volume), 1e-9, "volume %d", tt.volume)
	}
}

func TestCPCScore(t *testing.T) {
	tests := []struct {
		name string
		cpc  float64
		want float64
	}{
		{"zero", 0, 0},
		{"below range", 0.25, 50},
		{"lower bound", 0.5, 100},
		{"plateau", 1.7, 100},
		{"upper bound", 3.0, 100},
		{"above range", 8.0, 100 * math.Exp(-1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, CPCScore(tt.cpc), 1e-9)
		})
	}
}

func TestLongtailScoreMonotonic(t *testing.T) {
	expected := []float64{0, 0, 30, 60, 80, 100, 100}
	prev := -1.0
	for words, want := range expected {
		got := LongtailScore(words)
		assert.Equal(t, want, got, "words=%d", words)
		assert.GreaterOrEqual(t, got, prev)
		prev = got
	}
}

func TestCompetitionScoreMonotonic(t *testing.T) {
	for _, m := range Modes {
		gamma := ProfileFor(m).Gamma
		prev := CompetitionScore(0, gamma)
		assert.Equal(t, 100.0, prev)

		for i := 1; i <= 10; i++ {
			score := CompetitionScore(float64(i)/10, gamma)
			assert.Less(t, score, prev, "mode=%s competition=%.1f", m, float64(i)/10)
			prev = score
		}
		assert.InDelta(t, 0, prev, 1e-9)
	}
}

func TestClassifyIntent(t *testing.T) {
	tests := []struct {
		text  string
		want  Intent
		score float64
	}{
		{"buy yoga mat", IntentTransactional, 100},
		{"Yoga Mat PRICE", IntentTransactional, 100},
		{"mic under $100", IntentTransactional, 100},
		{"best yoga mat", IntentCommercial, 80},
		{"zoom vs teams", IntentCommercial, 80},
		{"best mic deal", IntentTransactional, 100},
		{"zoom login", IntentNavigational, 40},
		{"how to stretch", IntentInformational, 20},
		{"", IntentInformational, 0},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyIntent(tt.text))
			assert.Equal(t, tt.score, CommercialScore(tt.text))
		})
	}
}

func TestLevelFor(t *testing.T) {
	assert.Equal(t, LevelExcellent, LevelFor(60))
	assert.Equal(t, LevelGood, LevelFor(59.99))
	assert.Equal(t, LevelGood, LevelFor(40))
	assert.Equal(t, LevelModerate, LevelFor(20))
	assert.Equal(t, LevelDifficult, LevelFor(19.9))
}

func TestScoreBounded(t *testing.T) {
	texts := []string{"mic", "podcast mic", "best usb podcast mic under $100", "how to record a podcast at home cheaply"}
	volumes := []int{0, 1, 50, 900, 10000, 5000000}
	comps := []float64{0, 0.25, 0.5, 1}
	cpcs := []float64{0, 0.3, 1.2, 3, 50}

	for _, m := range Modes {
		s := NewScorer(m)
		for _, text := range texts {
			for _, v := range volumes {
				for _, comp := range comps {
					for _, cpc := range cpcs {
						b := s.Score(MustCandidate(text, v, comp, cpc))
						name := fmt.Sprintf("%s/%s/%d/%.2f/%.2f", m, text, v, comp, cpc)
						assert.GreaterOrEqual(t, b.FinalScore, 0.0, name)
						assert.LessOrEqual(t, b.FinalScore, 100.0, name)
						require.Len(t, b.Components, 5, name)
						for k, c := range b.Components {
							assert.GreaterOrEqual(t, c, 0.0, name+"/"+k)
							assert.LessOrEqual(t, c, 100.0, name+"/"+k)
						}
					}
				}
			}
		}
	}
}

func TestScoreQuickWinScenario(t *testing.T) {
	c := MustCandidate("best usb podcast mic under $100", 900, 0.25, 1.2)

	b := NewScorer(ModeMedium).Score(c)

	assert.True(t, b.IsQuickWin)
	assert.GreaterOrEqual(t, b.FinalScore, 55.0)
	assert.Equal(t, 100.0, b.Components[ComponentLongtail])
	assert.Equal(t, 100.0, b.Components[ComponentCommercial])
	assert.Equal(t, 100.0, b.Components[ComponentCPC])
	assert.Equal(t, LevelExcellent, b.Level)
	assert.Equal(t, Round1(b.FinalScore), b.Score)
}

func TestScoreHeadTermNotQuickWinInEasyMode(t *testing.T) {
	b := NewScorer(ModeEasy).Score(MustCandidate("mic", 5000, 0.9, 0.1))
	assert.False(t, b.IsQuickWin)
}

func TestQuickWinGateIsConjunctive(t *testing.T) {
	s := NewScorer(ModeMedium)

	tests := []struct {
		name      string
		candidate Candidate
	}{
		{
			name:      "competition above cap",
			candidate: MustCandidate("best usb podcast mic under $100", 900, 0.8, 1.2),
		},
		{
			name:      "score below threshold",
			candidate: MustCandidate("how to clean mic foam", 60, 0.7, 0.05),
		},
		{
			name:      "volume below floor",
			candidate: MustCandidate("best usb podcast mic under $100", 40, 0.05, 1.2),
		},
		{
			name:      "too few words",
			candidate: MustCandidate("podcast microphones", 9000, 0.05, 1.2),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := tt.candidate
			b := s.Score(c)

			violations := 0
			if c.Competition > s.Profile().CompetitionCap {
				violations++
			}
			if b.FinalScore < s.Profile().QuickWinThreshold {
				violations++
			}
			if c.Volume < QuickWinMinVolume {
				violations++
			}
			if c.WordCount() < QuickWinMinWords {
				violations++
			}
			require.Equal(t, 1, violations, "fixture must violate exactly one condition (score %.2f)", b.FinalScore)
			assert.False(t, b.IsQuickWin)
		})
	}
}

func TestModeChangesScore(t *testing.T) {
	c := MustCandidate("yoga mat", 100, 0.1, 0.2)

	easy := NewScorer(ModeEasy).Score(c)
	hard := NewScorer(ModeHard).Score(c)

	assert.NotEqual(t, easy.FinalScore, hard.FinalScore)
	assert.Greater(t, easy.FinalScore, hard.FinalScore)
}

func TestScoreEmptyTextCandidate(t *testing.T) {
	b := NewScorer(ModeMedium).Score(Candidate{Competition: 1})

	assert.Equal(t, 0.0, b.Components[ComponentLongtail])
	assert.Equal(t, 0.0, b.Components[ComponentCommercial])
	assert.False(t, b.IsQuickWin)
}
