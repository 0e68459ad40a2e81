package serp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"

	"github.com/vijay-prabhu/seobrief/internal/config"
)

const userAgent = "seobrief/1.0"

// ErrNoAPIKey is returned when no SERP API key is configured
var ErrNoAPIKey = errors.New("no SERP API key configured (set " + config.EnvSerpKey + ")")

// DecodeError is returned when the provider response cannot be parsed
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string { return "failed to decode serp response: " + e.Err.Error() }
func (e *DecodeError) Unwrap() error { return e.Err }

// Client queries a SerpAPI-compatible endpoint over fasthttp
type Client struct {
	http     *fasthttp.Client
	endpoint string
	apiKey   string
	results  int
	timeout  time.Duration
	retry    *retry
	log      zerolog.Logger
	now      func() time.Time
}

// Option customizes a Client
type Option func(*Client)

// WithHTTPClient replaces the fasthttp client (used by tests)
func WithHTTPClient(hc *fasthttp.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithRetryDelay sets the initial backoff delay
func WithRetryDelay(d time.Duration) Option {
	return func(c *Client) { c.retry.retryDelay = d }
}

// NewClient creates a SERP client from config
func NewClient(cfg config.SERPConfig, logger zerolog.Logger, opts ...Option) *Client {
	c := &Client{
		http: &fasthttp.Client{
			Name:                userAgent,
			MaxConnsPerHost:     16,
			ReadTimeout:         cfg.Timeout(),
			WriteTimeout:        cfg.Timeout(),
			MaxIdleConnDuration: 30 * time.Second,
		},
		endpoint: cfg.Endpoint,
		apiKey:   cfg.APIKey(),
		results:  cfg.Results,
		timeout:  cfg.Timeout(),
		retry:    newRetry(cfg.MaxRetries, 500*time.Millisecond),
		log:      logger.With().Str("component", "serp").Logger(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Search fetches the result page for a query
func (c *Client) Search(ctx context.Context, query string) (*Snapshot, error) {
	query = NormalizeQuery(query)
	if query == "" {
		return nil, errors.New("query must not be empty")
	}
	if c.apiKey == "" {
		return nil, ErrNoAPIKey
	}

	start := c.now()
	var snap *Snapshot
	attempts := 0
	err := c.retry.Execute(ctx, func() error {
		attempts++
		var err error
		snap, err = c.doSearch(ctx, query)
		if err != nil {
			c.log.Debug().Err(err).Int("attempt", attempts).Str("query", query).Msg("serp request failed")
		}
		return err
	})
	if err != nil {
		c.log.Warn().Err(err).Str("query", query).Int("attempts", attempts).Msg("serp fetch failed")
		return nil, err
	}

	c.log.Debug().
		Str("query", query).
		Int("results", len(snap.Results)).
		Dur("duration", time.Since(start)).
		Msg("serp fetched")
	return snap, nil
}

func (c *Client) requestURI(query string) string {
	params := url.Values{}
	params.Set("engine", "google")
	params.Set("q", query)
	params.Set("num", strconv.Itoa(c.results))
	params.Set("api_key", c.apiKey)
	return c.endpoint + "?" + params.Encode()
}

func (c *Client) doSearch(ctx context.Context, query string) (*Snapshot, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.requestURI(query))
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Accept", "application/json")

	timeout := c.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout || timeout <= 0 {
			timeout = remaining
		}
	}
	if timeout <= 0 {
		return nil, context.DeadlineExceeded
	}

	if err := c.http.DoTimeout(req, resp, timeout); err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	if resp.StatusCode() != fasthttp.StatusOK {
		body := resp.Body()
		if len(body) > 200 {
			body = body[:200]
		}
		return nil, &StatusError{Code: resp.StatusCode(), Body: string(body)}
	}

	return parseResponse(query, resp.Body(), c.now())
}

// serpAPIResponse is the subset of the SerpAPI payload that is used
type serpAPIResponse struct {
	Error          string `json:"error"`
	OrganicResults []struct {
		Position int    `json:"position"`
		Title    string `json:"title"`
		Link     string `json:"link"`
		Snippet  string `json:"snippet"`
	} `json:"organic_results"`
	RelatedQuestions []struct {
		Question string `json:"question"`
	} `json:"related_questions"`
	RelatedSearches []struct {
		Query string `json:"query"`
	} `json:"related_searches"`
}

func parseResponse(query string, body []byte, fetchedAt time.Time) (*Snapshot, error) {
	var payload serpAPIResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, &DecodeError{Err: err}
	}
	if payload.Error != "" {
		return nil, &DecodeError{Err: errors.New(payload.Error)}
	}

	snap := &Snapshot{
		Query:     query,
		Results:   make([]Result, 0, len(payload.OrganicResults)),
		FetchedAt: fetchedAt.UTC(),
	}
	for i, r := range payload.OrganicResults {
		pos := r.Position
		if pos == 0 {
			pos = i + 1
		}
		snap.Results = append(snap.Results, Result{
			Position: pos,
			Title:    r.Title,
			URL:      r.Link,
			Domain:   DomainOf(r.Link),
			Snippet:  r.Snippet,
		})
	}
	for _, q := range payload.RelatedQuestions {
		if q.Question != "" {
			snap.Questions = append(snap.Questions, q.Question)
		}
	}
	for _, s := range payload.RelatedSearches {
		if s.Query != "" {
			snap.RelatedSearches = append(snap.RelatedSearches, s.Query)
		}
	}
	return snap, nil
}
