package filter

import (
	"fmt"
	"strings"

	"github.com/vijay-prabhu/seobrief/internal/opportunity"
)

// checkExcludeTerms checks if the keyword contains any blocked term
func (f *Filter) checkExcludeTerms(c opportunity.Candidate) *Result {
	textLower := strings.ToLower(c.Text)

	// Check config + learned exclusions
	for _, term := range f.GetAllExcludeTerms() {
		term = strings.ToLower(strings.TrimSpace(term))
		if term == "" {
			continue
		}

		if containsWord(textLower, term) {
			return &Result{
				Include: false,
				Layer:   LayerExcluded,
				Reason:  fmt.Sprintf("Keyword matches exclusion: %q", term),
			}
		}
	}

	return nil
}

// scoreRelevance measures how much of the seed topic the keyword keeps
func (f *Filter) scoreRelevance(c opportunity.Candidate, seed string) Result {
	textLower := strings.ToLower(c.Text)
	words := seedWords(seed)

	matches := 0
	for _, w := range words {
		if containsWord(textLower, w) || containsStem(textLower, w) {
			matches++
		}
	}

	relevance := f.scorer.Calculate(matches, len(words))
	if !f.scorer.Passes(relevance) {
		return Result{
			Include:   false,
			Layer:     LayerOffTopic,
			Relevance: relevance,
			Reason:    fmt.Sprintf("%s (relevance %.0f%%, %d/%d seed words)", f.scorer.Explain(relevance), relevance*100, matches, len(words)),
		}
	}

	return Result{
		Include:   true,
		Layer:     LayerKept,
		Relevance: relevance,
		Reason:    fmt.Sprintf("%s (relevance %.0f%%, %d/%d seed words)", f.scorer.Explain(relevance), relevance*100, matches, len(words)),
	}
}

// containsStem accepts simple plural and gerund variants: "mats" matches
// "mat", "podcasting" matches "podcast".
func containsStem(text, word string) bool {
	stem := strings.TrimSuffix(word, "s")
	if len(stem) < 3 {
		return false
	}
	for _, variant := range []string{stem, stem + "s", stem + "es", stem + "ing"} {
		if containsWord(text, variant) {
			return true
		}
	}
	return false
}

// containsWord checks if text contains the word (with word boundary awareness)
func containsWord(text, word string) bool {
	// Simple contains for multi-word phrases
	if strings.Contains(word, " ") {
		return strings.Contains(text, word)
	}

	// For single words, check for word boundaries
	// This prevents "mat" from matching "format"
	idx := strings.Index(text, word)
	if idx == -1 {
		return false
	}

	// Check character before (if exists)
	if idx > 0 {
		before := text[idx-1]
		if isWordChar(before) {
			// Try to find another occurrence
			return containsWord(text[idx+len(word):], word)
		}
	}

	// Check character after (if exists)
	endIdx := idx + len(word)
	if endIdx < len(text) {
		after := text[endIdx]
		if isWordChar(after) {
			return containsWord(text[idx+len(word):], word)
		}
	}

	return true
}

// isWordChar returns true for alphanumeric characters
func isWordChar(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}
