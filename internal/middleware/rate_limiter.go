// Package middleware holds fiber middleware shared by the HTTP server.
package middleware

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/limiter"
	"github.com/gofiber/storage/memory/v2"
	"github.com/rs/zerolog/log"
)

// HitRecorder counts rejected requests. *observability.Metrics implements it.
type HitRecorder interface {
	RecordRateLimitHit(limiter string)
}

// RateLimiterConfig holds configuration for rate limiting
type RateLimiterConfig struct {
	Name       string                 // Name of the rate limiter (for metrics)
	Max        int                    // Maximum number of requests
	Expiration time.Duration          // Time window for the rate limit
	KeyFunc    func(fiber.Ctx) string // Function to generate the key for rate limiting
	Message    string                 // Custom error message
	Recorder   HitRecorder            // Optional
}

// NewRateLimiter creates a rate limiter middleware backed by in-memory
// storage. Counters are per instance.
func NewRateLimiter(config RateLimiterConfig) fiber.Handler {
	storage := memory.New(memory.Config{
		GCInterval: 10 * time.Minute,
	})

	if config.KeyFunc == nil {
		config.KeyFunc = func(c fiber.Ctx) string {
			return c.IP()
		}
	}

	if config.Message == "" {
		config.Message = fmt.Sprintf("Rate limit exceeded. Maximum %d requests per %s allowed.",
			config.Max, config.Expiration.String())
	}

	limiterName := config.Name
	if limiterName == "" {
		limiterName = "default"
	}

	return limiter.New(limiter.Config{
		Max:          config.Max,
		Expiration:   config.Expiration,
		KeyGenerator: config.KeyFunc,
		LimitReached: func(c fiber.Ctx) error {
			if config.Recorder != nil {
				config.Recorder.RecordRateLimitHit(limiterName)
			}
			log.Debug().
				Str("limiter", limiterName).
				Str("ip", c.IP()).
				Msg("Rate limit exceeded")

			retryAfter := int(config.Expiration.Seconds())
			c.Set("Retry-After", fmt.Sprintf("%d", retryAfter))
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"code":        "RATE_LIMIT_EXCEEDED",
				"error":       "Rate limit exceeded",
				"message":     config.Message,
				"retry_after": retryAfter,
			})
		},
		Storage: storage,
	})
}

// GraphQLLimiter limits GraphQL requests per client IP
func GraphQLLimiter(max int, window time.Duration, recorder HitRecorder) fiber.Handler {
	return NewRateLimiter(RateLimiterConfig{
		Name:       "graphql",
		Max:        max,
		Expiration: window,
		KeyFunc: func(c fiber.Ctx) string {
			return "graphql_ip:" + c.IP()
		},
		Message:  fmt.Sprintf("GraphQL rate limit exceeded. Maximum %d requests per %s allowed.", max, window),
		Recorder: recorder,
	})
}
