package api

import (
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/contractminer/contractminer/pkg/logger"
	"github.com/contractminer/contractminer/pkg/rag"
)

// Server is the API server fronting the query pipeline.
type Server struct {
	config   Config
	service  *rag.Service
	logger   *slog.Logger
	app      *fiber.App
	validate *validator.Validate
}

// NewServer creates a new API server. The service is injected to allow
// sharing with the CLI when both run in one process.
func NewServer(config Config, service *rag.Service, log *slog.Logger) *Server {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	s := &Server{
		config:   config,
		service:  service,
		logger:   logger.OrNop(log),
		app:      app,
		validate: validator.New(),
	}

	app.Get("/ping", s.handlePing)

	v1 := app.Group("/v1")
	if config.RateLimit > 0 {
		v1.Use(limiter.New(limiter.Config{
			Max:        config.RateLimit,
			Expiration: time.Minute,
		}))
	}
	if config.Key != "" {
		v1.Use(s.requireAPIKey)
	}

	v1.Post("/ingest", s.handleIngest)
	v1.Post("/query", s.handleQuery)
	v1.Get("/audit", s.handleAuditTrail)
	v1.Get("/index/stats", s.handleIndexStats)

	return s
}

// Run starts the API server on the configured address.
func (s *Server) Run() error {
	s.logger.Info("starting API server", "listen", s.config.ListenAddr)
	return s.app.Listen(s.config.ListenAddr)
}

// Shutdown gracefully shuts down the API server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// requireAPIKey rejects requests without the configured X-API-Key header.
func (s *Server) requireAPIKey(c *fiber.Ctx) error {
	if c.Get("X-API-Key") != s.config.Key {
		return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{Error: "invalid api key"})
	}
	return c.Next()
}
