package opportunity

import (
	"fmt"
	"math"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"golang.org/x/text/unicode/norm"
)

// Candidate is a keyword with its raw market metrics. Values are coerced
// into range when the candidate is constructed, so scoring code never has to
// re-check them.
type Candidate struct {
	Text        string  `json:"keyword"`
	Volume      int     `json:"volume"`
	Competition float64 `json:"competition"`
	CPC         float64 `json:"cpc"`
	Source      string  `json:"source,omitempty"`
}

// WordCount returns the number of whitespace-separated words in the keyword.
func (c Candidate) WordCount() int {
	return len(strings.Fields(c.Text))
}

// ValidationError is returned when a candidate cannot be built from its input.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid candidate: %s %s", e.Field, e.Reason)
}

// NewCandidate builds a Candidate. Nil metrics take their defaults: volume 0,
// competition 1.0 (maximally contested) and cpc 0.
func NewCandidate(text string, volume *int, competition, cpc *float64, source string) (Candidate, error) {
	text = norm.NFC.String(strings.TrimSpace(text))
	if text == "" {
		return Candidate{}, &ValidationError{Field: "keyword", Reason: "must not be empty"}
	}

	c := Candidate{
		Text:        text,
		Competition: 1.0,
		Source:      source,
	}

	if volume != nil && *volume > 0 {
		c.Volume = *volume
	}
	if competition != nil && isFinite(*competition) {
		c.Competition = clamp(*competition, 0, 1)
	}
	if cpc != nil && isFinite(*cpc) && *cpc > 0 {
		c.CPC = *cpc
	}

	return c, nil
}

// MustCandidate is NewCandidate for literal inputs known to be valid. It
// panics on an empty keyword.
func MustCandidate(text string, volume int, competition, cpc float64) Candidate {
	c, err := NewCandidate(text, &volume, &competition, &cpc, "")
	if err != nil {
		panic(err)
	}
	return c
}

// Raw is the loosely typed shape candidates arrive in from LLM output and
// data files. Either "keyword" or "text" may carry the phrase.
type Raw struct {
	Keyword     string   `json:"keyword" yaml:"keyword"`
	Text        string   `json:"text" yaml:"text"`
	Volume      *int     `json:"volume" yaml:"volume"`
	Competition *float64 `json:"competition" yaml:"competition"`
	CPC         *float64 `json:"cpc" yaml:"cpc"`
	Source      string   `json:"source" yaml:"source"`
}

// Candidate converts the raw record, applying defaults and clamping.
func (r Raw) Candidate(defaultSource string) (Candidate, error) {
	text := r.Keyword
	if text == "" {
		text = r.Text
	}
	source := r.Source
	if source == "" {
		source = defaultSource
	}
	return NewCandidate(text, r.Volume, r.Competition, r.CPC, source)
}

// DecodeRaw decodes an untyped record (for example one element of a JSON
// array produced by an LLM). Numeric strings such as "1200" are accepted.
func DecodeRaw(record map[string]any) (Raw, error) {
	var raw Raw
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		TagName:          "json",
		Result:           &raw,
	})
	if err != nil {
		return Raw{}, fmt.Errorf("failed to create decoder: %w", err)
	}
	if err := decoder.Decode(record); err != nil {
		return Raw{}, fmt.Errorf("failed to decode candidate: %w", err)
	}
	return raw, nil
}

// FromRecords converts untyped records into candidates. Records that fail
// validation are skipped and reported in the returned error slice.
func FromRecords(records []map[string]any, source string) ([]Candidate, []error) {
	candidates := make([]Candidate, 0, len(records))
	var errs []error

	for i, rec := range records {
		raw, err := DecodeRaw(rec)
		if err != nil {
			errs = append(errs, fmt.Errorf("record %d: %w", i, err))
			continue
		}
		c, err := raw.Candidate(source)
		if err != nil {
			errs = append(errs, fmt.Errorf("record %d: %w", i, err))
			continue
		}
		candidates = append(candidates, c)
	}

	return candidates, errs
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
