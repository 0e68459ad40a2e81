// Package keywords produces keyword candidates for a seed topic, from an LLM,
// a deterministic catalog or a data file.
package keywords

import (
	"context"
	"errors"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/vijay-prabhu/seobrief/internal/opportunity"
)

// Candidate sources
const (
	SourceLLM     = "llm"
	SourceCatalog = "catalog"
	SourceFile    = "file"
)

// DefaultMax is used when a request does not limit the candidate count
const DefaultMax = 40

// ErrNoCandidates is returned when a generator produced nothing usable
var ErrNoCandidates = errors.New("no keyword candidates generated")

// Request describes one generation call
type Request struct {
	Seed string           `json:"seed"`
	Max  int              `json:"max,omitempty"`
	Mode opportunity.Mode `json:"mode,omitempty"`
}

func (r Request) limit() int {
	if r.Max <= 0 {
		return DefaultMax
	}
	return r.Max
}

// Generator produces keyword candidates for a seed topic
type Generator interface {
	Generate(ctx context.Context, req Request) ([]opportunity.Candidate, error)
	Name() string
}

// ProgressCallback is called with progress updates during batch generation
type ProgressCallback func(current, total int)

// BatchResult holds the result for a single seed in a batch
type BatchResult struct {
	Index      int
	Request    Request
	Candidates []opportunity.Candidate
	Error      error
}

// GenerateBatch runs several requests in parallel with at most concurrency
// calls in flight. Results are returned in request order; a failed request
// does not stop the others.
func GenerateBatch(ctx context.Context, gen Generator, requests []Request, concurrency int, progress ProgressCallback) []BatchResult {
	results := make([]BatchResult, len(requests))
	if concurrency <= 0 {
		concurrency = 1
	}

	total := len(requests)
	if progress != nil {
		progress(0, total)
	}

	var done int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, req := range requests {
		g.Go(func() error {
			result := BatchResult{Index: i, Request: req}
			if err := gctx.Err(); err != nil {
				result.Error = err
			} else {
				result.Candidates, result.Error = gen.Generate(gctx, req)
			}
			results[i] = result

			if progress != nil {
				progress(int(atomic.AddInt64(&done, 1)), total)
			}
			return nil
		})
	}

	_ = g.Wait()
	return results
}
