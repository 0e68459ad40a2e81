package keywords

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/vijay-prabhu/seobrief/internal/opportunity"
)

// Fallback tries the primary generator, falling back to the secondary on
// failure or an empty result
type Fallback struct {
	Primary   Generator
	Secondary Generator
	logger    zerolog.Logger
}

// NewFallback creates a Fallback generator
func NewFallback(primary, secondary Generator, logger zerolog.Logger) *Fallback {
	return &Fallback{Primary: primary, Secondary: secondary, logger: logger}
}

// Name describes both generators
func (f *Fallback) Name() string {
	return fmt.Sprintf("%s+%s", f.Primary.Name(), f.Secondary.Name())
}

// Generate implements Generator
func (f *Fallback) Generate(ctx context.Context, req Request) ([]opportunity.Candidate, error) {
	candidates, err := f.Primary.Generate(ctx, req)
	if err == nil && len(candidates) > 0 {
		return candidates, nil
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	f.logger.Warn().Err(err).
		Str("seed", req.Seed).
		Str("primary", f.Primary.Name()).
		Str("fallback", f.Secondary.Name()).
		Msg("keyword generation fell back")

	return f.Secondary.Generate(ctx, req)
}
