package api

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/google/uuid"
	"github.com/graphql-go/graphql"
	"github.com/rs/zerolog/log"

	"github.com/fluxbase-eu/gqlvalidate/internal/config"
	"github.com/fluxbase-eu/gqlvalidate/internal/middleware"
	"github.com/fluxbase-eu/gqlvalidate/internal/observability"
)

const (
	requestIDKey    = "request_id"
	requestIDHeader = "X-Request-ID"
)

// Server serves a validated GraphQL schema over HTTP
type Server struct {
	app     *fiber.App
	config  *config.Config
	metrics *observability.Metrics
}

// NewServer builds the fiber app and registers every route. metrics may be
// nil when metrics are disabled.
func NewServer(cfg *config.Config, schema graphql.Schema, metrics *observability.Metrics) *Server {
	app := fiber.New(fiber.Config{
		AppName:      "gqlvalidate",
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		BodyLimit:    cfg.Server.BodyLimit,
	})

	s := &Server{app: app, config: cfg, metrics: metrics}

	app.Use(requestID)
	if metrics != nil {
		app.Use(s.recordRequest)
	}

	app.Get("/health", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	if cfg.GraphQL.Enabled {
		handler := NewGraphQLHandler(schema, &cfg.GraphQL)
		graphqlRoutes := app.Group(cfg.GraphQL.Path)
		if cfg.RateLimit.Enabled {
			var recorder middleware.HitRecorder
			if metrics != nil {
				recorder = metrics
			}
			graphqlRoutes.Use(middleware.GraphQLLimiter(cfg.RateLimit.Max, cfg.RateLimit.Window, recorder))
		}
		graphqlRoutes.Post("", handler.HandleGraphQL)
		graphqlRoutes.Get("", handler.HandleIntrospection)
	}

	if metrics != nil && cfg.Metrics.Enabled {
		app.Get(cfg.Metrics.Path, adaptor.HTTPHandler(metrics.Handler()))
	}

	return s
}

// App returns the underlying fiber app
func (s *Server) App() *fiber.App {
	return s.app
}

// Start listens on the configured address until Shutdown is called
func (s *Server) Start() error {
	log.Info().Str("address", s.config.Server.Address).Msg("Starting GraphQL server")
	return s.app.Listen(s.config.Server.Address, fiber.ListenConfig{DisableStartupMessage: true})
}

// Shutdown stops accepting connections and waits for in-flight requests
func (s *Server) Shutdown(ctx context.Context) error {
	log.Info().Msg("Shutting down GraphQL server")
	return s.app.ShutdownWithContext(ctx)
}

// requestID propagates or assigns the X-Request-ID header
func requestID(c fiber.Ctx) error {
	id := c.Get(requestIDHeader)
	if id == "" {
		id = uuid.NewString()
	}
	c.Locals(requestIDKey, id)
	c.Set(requestIDHeader, id)
	return c.Next()
}

func (s *Server) recordRequest(c fiber.Ctx) error {
	start := time.Now()
	err := c.Next()

	status := c.Response().StatusCode()
	if err != nil {
		status = fiber.StatusInternalServerError
		var fe *fiber.Error
		if errors.As(err, &fe) {
			status = fe.Code
		}
	}

	s.metrics.RecordHTTPRequest(c.Method(), c.Path(), status, time.Since(start))
	return err
}
