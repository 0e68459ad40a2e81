package keywords

import (
	"context"
	"hash/fnv"
	"math"
	"strings"

	"github.com/vijay-prabhu/seobrief/internal/opportunity"
)

// catalogPatterns are the phrasings the catalog combines with a seed. "%s"
// marks where the seed goes.
var catalogPatterns = []string{
	"%s",
	"best %s",
	"%s reviews",
	"cheap %s",
	"buy %s online",
	"%s price",
	"%s for beginners",
	"how to choose %s",
	"best %s for beginners",
	"%s vs alternatives",
	"top rated %s under $100",
	"%s buying guide",
	"affordable %s for home use",
	"%s near me",
	"%s deals",
	"what is the best %s for small spaces",
	"%s tips",
	"%s comparison",
	"professional %s",
	"%s accessories",
}

// CatalogGenerator builds candidates from fixed phrasings of the seed.
// Metrics are derived from a hash of each phrase, so output is stable across
// runs and machines.
type CatalogGenerator struct{}

// NewCatalog creates a CatalogGenerator
func NewCatalog() *CatalogGenerator {
	return &CatalogGenerator{}
}

// Name returns "catalog"
func (c *CatalogGenerator) Name() string { return SourceCatalog }

// Generate implements Generator
func (c *CatalogGenerator) Generate(ctx context.Context, req Request) ([]opportunity.Candidate, error) {
	seed := strings.ToLower(strings.Join(strings.Fields(req.Seed), " "))
	if seed == "" {
		return nil, ErrNoCandidates
	}

	limit := req.limit()
	out := make([]opportunity.Candidate, 0, min(limit, len(catalogPatterns)))
	for _, pattern := range catalogPatterns {
		if len(out) >= limit {
			break
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		text := strings.Replace(pattern, "%s", seed, 1)
		volume, competition, cpc := catalogMetrics(text)
		cand, err := opportunity.NewCandidate(text, &volume, &competition, &cpc, SourceCatalog)
		if err != nil {
			continue
		}
		out = append(out, cand)
	}
	return out, nil
}

// catalogMetrics maps a phrase to plausible metrics. Longer phrases get less
// volume and competition, as real long-tail terms do.
func catalogMetrics(text string) (volume int, competition, cpc float64) {
	h := fnv.New64a()
	_, _ = h.Write([]byte(text))
	sum := h.Sum64()

	words := float64(len(strings.Fields(text)))
	a := float64(sum%1000) / 1000
	b := float64((sum/1000)%1000) / 1000
	d := float64((sum/1000000)%1000) / 1000

	// 10^(4.2 - 0.35*words) scaled by a in [0.5, 1.5)
	volume = int(math.Pow(10, 4.2-0.35*words) * (0.5 + a))
	competition = math.Round(math.Max(0.05, math.Min(0.95, 1.05-0.12*words+0.3*(b-0.5)))*100) / 100
	cpc = math.Round((0.2+4*d)*100) / 100
	return volume, competition, cpc
}
