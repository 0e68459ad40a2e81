// Package server exposes keyword scoring and stored research runs over HTTP.
package server

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog"

	"github.com/vijay-prabhu/seobrief/internal/config"
	"github.com/vijay-prabhu/seobrief/internal/database"
	"github.com/vijay-prabhu/seobrief/internal/metrics"
	"github.com/vijay-prabhu/seobrief/internal/research"
)

// Deps are the collaborators the API serves from. DB and Pipeline may be
// nil, in which case the routes that need them answer 503.
type Deps struct {
	Config   *config.Config
	DB       *database.DB
	Pipeline *research.Pipeline
	Metrics  *metrics.Metrics
	Logger   zerolog.Logger
}

// Server wraps the Fiber app and configuration.
type Server struct {
	App *fiber.App
	Cfg *config.Config

	db       *database.DB
	pipeline *research.Pipeline
	metrics  *metrics.Metrics
	log      zerolog.Logger
}

// New creates a new server with middleware and routes configured.
func New(deps Deps) *Server {
	cfg := deps.Config
	if cfg == nil {
		cfg = config.Default()
	}

	s := &Server{
		Cfg:      cfg,
		db:       deps.DB,
		pipeline: deps.Pipeline,
		metrics:  deps.Metrics,
		log:      deps.Logger.With().Str("component", "server").Logger(),
	}

	s.App = fiber.New(fiber.Config{
		AppName:               "seobrief",
		DisableStartupMessage: true,
		BodyLimit:             2 * 1024 * 1024,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			message := "internal server error"

			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
				message = e.Message
			}
			return jsonError(c, code, message)
		},
	})

	s.App.Use(recover.New())
	s.App.Use(s.requestLogger)
	s.routes()

	return s
}

func (s *Server) routes() {
	s.App.Get("/healthz", s.health)
	if s.metrics != nil {
		s.App.Get("/metrics", adaptor.HTTPHandler(s.metrics.Handler()))
	}

	v1 := s.App.Group("/api/v1")
	v1.Post("/score", s.score)
	v1.Post("/quick-wins", s.quickWins)
	v1.Post("/research", s.research)
	v1.Get("/runs", s.listRuns)
	v1.Get("/runs/:id", s.getRun)
	v1.Get("/stats", s.stats)
}

// requestLogger logs one line per request at debug level, errors at warn.
func (s *Server) requestLogger(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()

	status := c.Response().StatusCode()
	event := s.log.Debug()
	if err != nil || status >= fiber.StatusInternalServerError {
		event = s.log.Warn().Err(err)
	}
	event.
		Str("method", c.Method()).
		Str("path", c.Path()).
		Int("status", status).
		Dur("duration", time.Since(start)).
		Msg("request")
	return err
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.Cfg.ServerAddr()
}

// Start listens on the configured address until Shutdown is called.
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.Addr()).Msg("starting HTTP API")
	return s.App.Listen(s.Addr())
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.App.ShutdownWithContext(ctx)
}
