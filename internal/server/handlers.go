package server

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/vijay-prabhu/seobrief/internal/database"
	"github.com/vijay-prabhu/seobrief/internal/opportunity"
	"github.com/vijay-prabhu/seobrief/internal/research"
)

const maxCandidates = 5000

// scoreRequest is the body of the score and quick-win endpoints. Candidate
// records use the same loose shape as keyword files.
type scoreRequest struct {
	Candidates []map[string]any `json:"candidates"`
	Mode       string           `json:"mode"`
	MinResults int              `json:"min_results"`
	MaxResults int              `json:"max_results"`
	Topic      string           `json:"topic"`
}

type scoreResponse struct {
	Mode    opportunity.Mode           `json:"mode"`
	Results []opportunity.RankedResult `json:"results"`
	Skipped []string                   `json:"skipped,omitempty"`
}

type quickWinResponse struct {
	Mode      opportunity.Mode      `json:"mode"`
	Stage     opportunity.Stage     `json:"final_stage"`
	Degraded  bool                  `json:"degraded"`
	Selection opportunity.Selection `json:"selection"`
	Skipped   []string              `json:"skipped,omitempty"`
}

type researchRequest struct {
	Topic      string `json:"topic"`
	Mode       string `json:"mode"`
	MinResults int    `json:"min_results"`
	MaxResults int    `json:"max_results"`
	SkipSERP   bool   `json:"skip_serp"`
	SkipBrief  bool   `json:"skip_brief"`
	DryRun     bool   `json:"dry_run"`
}

func (s *Server) health(c *fiber.Ctx) error {
	if s.db != nil {
		if err := s.db.Health(c.UserContext()); err != nil {
			return jsonError(c, fiber.StatusServiceUnavailable, "database unavailable")
		}
	}
	return jsonSuccess(c, fiber.Map{"healthy": true})
}

// parseScoreRequest decodes and validates a scoring body. Invalid records
// are skipped and reported rather than failing the request.
func (s *Server) parseScoreRequest(c *fiber.Ctx) (scoreRequest, []opportunity.Candidate, []string, error) {
	var req scoreRequest
	if err := c.BodyParser(&req); err != nil {
		return req, nil, nil, fiber.NewError(fiber.StatusBadRequest, "invalid JSON body")
	}
	if len(req.Candidates) == 0 {
		return req, nil, nil, fiber.NewError(fiber.StatusBadRequest, "candidates are required")
	}
	if len(req.Candidates) > maxCandidates {
		return req, nil, nil, fiber.NewError(fiber.StatusRequestEntityTooLarge, "too many candidates")
	}

	candidates, errs := opportunity.FromRecords(req.Candidates, "api")
	skipped := make([]string, 0, len(errs))
	for _, err := range errs {
		skipped = append(skipped, err.Error())
	}
	return req, candidates, skipped, nil
}

func (s *Server) score(c *fiber.Ctx) error {
	req, candidates, skipped, err := s.parseScoreRequest(c)
	if err != nil {
		return err
	}

	mode := opportunity.ParseMode(req.Mode)
	results := opportunity.NewScorer(mode).RankAll(candidates)
	s.metrics.ObserveScoring(mode, len(candidates))

	return jsonSuccess(c, scoreResponse{Mode: mode, Results: results, Skipped: skipped})
}

func (s *Server) quickWins(c *fiber.Ctx) error {
	req, candidates, skipped, err := s.parseScoreRequest(c)
	if err != nil {
		return err
	}

	mode := opportunity.ParseMode(req.Mode)
	sel := opportunity.NewSelector().Select(opportunity.Request{
		Candidates: candidates,
		Mode:       mode,
		MinResults: req.MinResults,
		MaxResults: req.MaxResults,
		Topic:      req.Topic,
	})
	s.metrics.ObserveSelection(mode, len(candidates), sel)

	return jsonSuccess(c, quickWinResponse{
		Mode:      mode,
		Stage:     sel.FinalStage(),
		Degraded:  sel.UnderTarget(),
		Selection: sel,
		Skipped:   skipped,
	})
}

func (s *Server) research(c *fiber.Ctx) error {
	if s.pipeline == nil {
		return jsonError(c, fiber.StatusServiceUnavailable, "research pipeline not configured")
	}

	var req researchRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid JSON body")
	}
	if strings.TrimSpace(req.Topic) == "" {
		return jsonError(c, fiber.StatusBadRequest, "topic is required")
	}

	opts := research.Options{
		Topic:      req.Topic,
		MinResults: req.MinResults,
		MaxResults: req.MaxResults,
		SkipSERP:   req.SkipSERP,
		SkipBrief:  req.SkipBrief,
		DryRun:     req.DryRun,
	}
	if req.Mode != "" {
		opts.Mode = opportunity.ParseMode(req.Mode)
	}

	result, err := s.pipeline.Run(c.UserContext(), opts)
	if err != nil {
		if errors.Is(err, research.ErrEmptyPool) {
			return jsonError(c, fiber.StatusUnprocessableEntity, err.Error())
		}
		s.log.Error().Err(err).Str("topic", req.Topic).Msg("research run failed")
		return jsonError(c, fiber.StatusBadGateway, "research run failed")
	}
	return jsonSuccess(c, result)
}

func (s *Server) listRuns(c *fiber.Ctx) error {
	if s.db == nil {
		return jsonError(c, fiber.StatusServiceUnavailable, "database not configured")
	}

	opts := database.ListOptions{
		Limit:  c.QueryInt("limit", 20),
		Offset: c.QueryInt("offset", 0),
	}
	if opts.Limit <= 0 || opts.Limit > 200 {
		return jsonError(c, fiber.StatusBadRequest, "limit must be between 1 and 200")
	}
	if topic := c.Query("topic"); topic != "" {
		opts.Topic = &topic
	}
	if mode := c.Query("mode"); mode != "" {
		opts.Mode = &mode
	}
	if status := c.Query("status"); status != "" {
		st := database.RunStatus(status)
		opts.Status = &st
	}
	if days := c.QueryInt("days", 0); days > 0 {
		since := time.Now().AddDate(0, 0, -days)
		opts.Since = &since
	}

	runs, err := s.db.ListRuns(c.UserContext(), opts)
	if err != nil {
		s.log.Error().Err(err).Msg("list runs failed")
		return jsonError(c, fiber.StatusInternalServerError, "failed to list runs")
	}
	if runs == nil {
		runs = []database.Run{}
	}
	return jsonSuccess(c, runs)
}

func (s *Server) getRun(c *fiber.Ctx) error {
	if s.db == nil {
		return jsonError(c, fiber.StatusServiceUnavailable, "database not configured")
	}

	detail, err := research.LoadDetail(c.UserContext(), s.db, c.Params("id"))
	if err != nil {
		if errors.Is(err, database.ErrRunNotFound) {
			return jsonError(c, fiber.StatusNotFound, "run not found")
		}
		if errors.Is(err, database.ErrAmbiguousID) {
			return jsonError(c, fiber.StatusBadRequest, err.Error())
		}
		s.log.Error().Err(err).Msg("load run failed")
		return jsonError(c, fiber.StatusInternalServerError, "failed to load run")
	}
	return jsonSuccess(c, detail)
}

func (s *Server) stats(c *fiber.Ctx) error {
	if s.db == nil {
		return jsonError(c, fiber.StatusServiceUnavailable, "database not configured")
	}

	var since *time.Time
	if days := c.QueryInt("days", 0); days > 0 {
		t := time.Now().AddDate(0, 0, -days)
		since = &t
	}

	stats, err := s.db.GetStats(c.UserContext(), since)
	if err != nil {
		s.log.Error().Err(err).Msg("stats failed")
		return jsonError(c, fiber.StatusInternalServerError, "failed to load stats")
	}
	return jsonSuccess(c, stats)
}
