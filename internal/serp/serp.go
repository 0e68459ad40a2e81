// Package serp fetches search engine result pages for a query and caches
// them so repeated research on the same topic stays cheap.
package serp

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Result is one organic search result
type Result struct {
	Position int    `json:"position"`
	Title    string `json:"title"`
	URL      string `json:"url"`
	Domain   string `json:"domain"`
	Snippet  string `json:"snippet,omitempty"`
}

// Snapshot is the result page for one query at one point in time
type Snapshot struct {
	Query           string    `json:"query"`
	Results         []Result  `json:"results"`
	Questions       []string  `json:"questions,omitempty"`
	RelatedSearches []string  `json:"related_searches,omitempty"`
	FetchedAt       time.Time `json:"fetched_at"`
	Cached          bool      `json:"cached,omitempty"`
}

// Domains returns the distinct result domains in ranking order
func (s *Snapshot) Domains() []string {
	seen := make(map[string]bool)
	var domains []string
	for _, r := range s.Results {
		if r.Domain == "" || seen[r.Domain] {
			continue
		}
		seen[r.Domain] = true
		domains = append(domains, r.Domain)
	}
	return domains
}

// Searcher fetches result pages
type Searcher interface {
	Search(ctx context.Context, query string) (*Snapshot, error)
}

// StatusError is returned for non-200 responses from the SERP provider
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("serp provider returned status %d: %s", e.Code, e.Body)
}

// Temporary reports whether the request may succeed if retried
func (e *StatusError) Temporary() bool {
	return e.Code == 429 || e.Code >= 500
}

// NormalizeQuery lowercases a query and collapses whitespace
func NormalizeQuery(query string) string {
	return strings.ToLower(strings.Join(strings.Fields(query), " "))
}

// DomainOf returns the host of a result URL without a leading "www."
func DomainOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return ""
	}
	host := strings.ToLower(u.Hostname())
	return strings.TrimPrefix(host, "www.")
}
