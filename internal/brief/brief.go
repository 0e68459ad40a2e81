// Package brief turns a selected keyword and its result page into a content
// brief: titles, outline, questions to answer and the pages to beat.
package brief

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/vijay-prabhu/seobrief/internal/opportunity"
	"github.com/vijay-prabhu/seobrief/internal/serp"
)

// Brief sources
const (
	SourceTemplate = "template"
	SourceLLM      = "llm"
)

const (
	maxFAQ         = 6
	maxCompetitors = 5
	maxSecondary   = 8
)

// Section is one outline heading with its talking points
type Section struct {
	Heading string   `json:"heading"`
	Points  []string `json:"points,omitempty"`
}

// Competitor is a page currently ranking for the primary keyword
type Competitor struct {
	Position int    `json:"position"`
	Title    string `json:"title"`
	Domain   string `json:"domain"`
	URL      string `json:"url"`
}

// Brief is a content plan for one primary keyword
type Brief struct {
	Topic             string             `json:"topic"`
	PrimaryKeyword    string             `json:"primary_keyword"`
	Intent            opportunity.Intent `json:"intent"`
	Score             float64            `json:"score"`
	Level             opportunity.Level  `json:"opportunity_level"`
	TitleIdeas        []string           `json:"title_ideas"`
	TargetWordCount   int                `json:"target_word_count"`
	Outline           []Section          `json:"outline"`
	FAQ               []string           `json:"faq"`
	SecondaryKeywords []string           `json:"secondary_keywords,omitempty"`
	Competitors       []Competitor       `json:"competitors,omitempty"`
	Source            string             `json:"source"`
	GeneratedAt       time.Time          `json:"generated_at"`
}

// Input is everything a brief is built from
type Input struct {
	Topic     string
	Primary   opportunity.RankedResult
	Secondary []opportunity.RankedResult
	Snapshot  *serp.Snapshot // optional
}

// wordCounts is the target length per intent
var wordCounts = map[opportunity.Intent]int{
	opportunity.IntentTransactional: 1200,
	opportunity.IntentCommercial:    2000,
	opportunity.IntentNavigational:  800,
	opportunity.IntentInformational: 1500,
}

// Build creates a deterministic brief from the selection and an optional
// result page.
func Build(in Input) Brief {
	kw := in.Primary.Text
	title := cases.Title(language.English).String(kw)
	intent := in.Primary.Intent
	if intent == "" {
		intent = opportunity.ClassifyIntent(kw)
	}

	b := Brief{
		Topic:           in.Topic,
		PrimaryKeyword:  kw,
		Intent:          intent,
		Score:           in.Primary.Score,
		Level:           in.Primary.Level,
		TitleIdeas:      titleIdeas(title, intent),
		TargetWordCount: wordCounts[intent],
		Outline:         outline(kw, title, intent),
		Source:          SourceTemplate,
	}

	for _, s := range in.Secondary {
		if s.Text == kw || len(b.SecondaryKeywords) >= maxSecondary {
			continue
		}
		b.SecondaryKeywords = append(b.SecondaryKeywords, s.Text)
	}

	if in.Snapshot != nil {
		for _, r := range in.Snapshot.Results {
			if len(b.Competitors) >= maxCompetitors {
				break
			}
			b.Competitors = append(b.Competitors, Competitor{
				Position: r.Position,
				Title:    r.Title,
				Domain:   r.Domain,
				URL:      r.URL,
			})
		}
		b.FAQ = append(b.FAQ, in.Snapshot.Questions...)
		// Ranking pages set the bar for depth
		if n := len(in.Snapshot.Results); n >= 8 {
			b.TargetWordCount += 300
		}
	}

	for _, q := range defaultQuestions(kw, intent) {
		if len(b.FAQ) >= maxFAQ {
			break
		}
		if !containsFold(b.FAQ, q) {
			b.FAQ = append(b.FAQ, q)
		}
	}
	if len(b.FAQ) > maxFAQ {
		b.FAQ = b.FAQ[:maxFAQ]
	}

	return b
}

func titleIdeas(title string, intent opportunity.Intent) []string {
	year := time.Now().Year()
	switch intent {
	case opportunity.IntentTransactional:
		return []string{
			fmt.Sprintf("%s: Where to Buy and What to Pay in %d", title, year),
			fmt.Sprintf("%s - Our Top Picks Compared", title),
			fmt.Sprintf("The Smart Shopper's Guide to %s", title),
		}
	case opportunity.IntentCommercial:
		return []string{
			fmt.Sprintf("%s (%d): Tested and Ranked", title, year),
			fmt.Sprintf("%s - Honest Reviews and Comparisons", title),
			fmt.Sprintf("We Compared the Options for %s. Here's What Won", title),
		}
	case opportunity.IntentNavigational:
		return []string{
			fmt.Sprintf("%s: Quick Access Guide", title),
			fmt.Sprintf("%s Explained Step by Step", title),
		}
	default:
		return []string{
			fmt.Sprintf("%s: The Complete Guide", title),
			fmt.Sprintf("Everything You Need to Know About %s", title),
			fmt.Sprintf("%s for Beginners", title),
		}
	}
}

func outline(kw, title string, intent opportunity.Intent) []Section {
	intro := Section{
		Heading: "Introduction",
		Points:  []string{fmt.Sprintf("Answer the search for %q in the first paragraph", kw)},
	}

	var body []Section
	switch intent {
	case opportunity.IntentTransactional:
		body = []Section{
			{Heading: "Our Top Picks", Points: []string{"Summary table with price, key spec and best-for"}},
			{Heading: "What to Expect to Pay", Points: []string{"Price bands and what each buys you"}},
			{Heading: "Where to Buy", Points: []string{"Retailers, shipping and return policies"}},
			{Heading: "How We Chose", Points: []string{"Criteria and testing notes"}},
		}
	case opportunity.IntentCommercial:
		body = []Section{
			{Heading: "Quick Comparison", Points: []string{"Side-by-side table of the shortlisted options"}},
			{Heading: "In-Depth Reviews", Points: []string{"One subsection per option with pros and cons"}},
			{Heading: "How to Choose", Points: []string{"Buying criteria ranked by importance"}},
			{Heading: "Alternatives Worth Considering"},
		}
	case opportunity.IntentNavigational:
		body = []Section{
			{Heading: "Where to Find It"},
			{Heading: "Step-by-Step Instructions"},
			{Heading: "Troubleshooting"},
		}
	default:
		body = []Section{
			{Heading: fmt.Sprintf("What Is %s?", title)},
			{Heading: "How It Works", Points: []string{"Explain the basics with one concrete example"}},
			{Heading: "Step-by-Step Guide"},
			{Heading: "Common Mistakes to Avoid"},
		}
	}

	sections := append([]Section{intro}, body...)
	return append(sections,
		Section{Heading: "Frequently Asked Questions"},
		Section{Heading: "Conclusion", Points: []string{"Recap and a clear next step for the reader"}},
	)
}

func defaultQuestions(kw string, intent opportunity.Intent) []string {
	switch intent {
	case opportunity.IntentTransactional, opportunity.IntentCommercial:
		return []string{
			fmt.Sprintf("What is the best %s?", kw),
			fmt.Sprintf("How much should I spend on %s?", kw),
			fmt.Sprintf("What should I look for in %s?", kw),
			fmt.Sprintf("Is %s worth it?", kw),
		}
	default:
		return []string{
			fmt.Sprintf("What is %s?", kw),
			fmt.Sprintf("How do I get started with %s?", kw),
			fmt.Sprintf("What are common mistakes with %s?", kw),
		}
	}
}

func containsFold(list []string, s string) bool {
	for _, item := range list {
		if strings.EqualFold(item, s) {
			return true
		}
	}
	return false
}
