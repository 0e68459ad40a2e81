package research

import (
	"github.com/vijay-prabhu/seobrief/internal/database"
	"github.com/vijay-prabhu/seobrief/internal/opportunity"
)

// ToRunKeywords converts ranked results to rows for storage. Ranks start at 1.
func ToRunKeywords(runID string, results []opportunity.RankedResult) []database.RunKeyword {
	rows := make([]database.RunKeyword, 0, len(results))
	for i, r := range results {
		var source *string
		if r.Source != "" {
			s := r.Source
			source = &s
		}
		rows = append(rows, database.RunKeyword{
			RunID:       runID,
			Rank:        i + 1,
			Keyword:     r.Text,
			Volume:      r.Volume,
			Competition: r.Competition,
			CPC:         r.CPC,
			Source:      source,
			FinalScore:  r.FinalScore,
			Score:       r.Score,
			Level:       string(r.Level),
			Intent:      string(r.Intent),
			IsQuickWin:  r.IsQuickWin,
			Components:  r.Components,
		})
	}
	return rows
}

// FromRunKeywords rebuilds ranked results from stored rows
func FromRunKeywords(rows []database.RunKeyword) []opportunity.RankedResult {
	results := make([]opportunity.RankedResult, 0, len(rows))
	for _, k := range rows {
		source := ""
		if k.Source != nil {
			source = *k.Source
		}
		results = append(results, opportunity.RankedResult{
			Candidate: opportunity.Candidate{
				Text:        k.Keyword,
				Volume:      k.Volume,
				Competition: k.Competition,
				CPC:         k.CPC,
				Source:      source,
			},
			ScoreBreakdown: opportunity.ScoreBreakdown{
				FinalScore: k.FinalScore,
				Score:      k.Score,
				Components: k.Components,
				Level:      opportunity.Level(k.Level),
				Intent:     opportunity.Intent(k.Intent),
				IsQuickWin: k.IsQuickWin,
			},
		})
	}
	return results
}
