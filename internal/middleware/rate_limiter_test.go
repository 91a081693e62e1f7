package middleware

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingRecorder struct {
	hits map[string]int
}

func (r *countingRecorder) RecordRateLimitHit(limiter string) {
	if r.hits == nil {
		r.hits = map[string]int{}
	}
	r.hits[limiter]++
}

func newLimitedApp(handler fiber.Handler) *fiber.App {
	app := fiber.New()
	app.Use(handler)
	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("ok")
	})
	return app
}

func TestNewRateLimiter(t *testing.T) {
	t.Run("allows requests under the limit", func(t *testing.T) {
		app := newLimitedApp(NewRateLimiter(RateLimiterConfig{Max: 2, Expiration: time.Minute}))

		for i := 0; i < 2; i++ {
			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
			require.NoError(t, err)
			resp.Body.Close()
			assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		}
	})

	t.Run("rejects requests over the limit", func(t *testing.T) {
		rec := &countingRecorder{}
		app := newLimitedApp(NewRateLimiter(RateLimiterConfig{
			Name:       "test",
			Max:        1,
			Expiration: time.Minute,
			Recorder:   rec,
		}))

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
		require.NoError(t, err)
		resp.Body.Close()

		resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
		assert.Equal(t, "60", resp.Header.Get("Retry-After"))

		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		var payload map[string]interface{}
		require.NoError(t, json.Unmarshal(body, &payload))
		assert.Equal(t, "RATE_LIMIT_EXCEEDED", payload["code"])
		assert.Equal(t, "Rate limit exceeded. Maximum 1 requests per 1m0s allowed.", payload["message"])

		assert.Equal(t, 1, rec.hits["test"])
	})

	t.Run("separate keys have separate counters", func(t *testing.T) {
		app := newLimitedApp(NewRateLimiter(RateLimiterConfig{
			Max:        1,
			Expiration: time.Minute,
			KeyFunc: func(c fiber.Ctx) string {
				return c.Get("X-Client")
			},
		}))

		for _, client := range []string{"a", "b"} {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("X-Client", client)
			resp, err := app.Test(req)
			require.NoError(t, err)
			resp.Body.Close()
			assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		}
	})
}

func TestGraphQLLimiter(t *testing.T) {
	rec := &countingRecorder{}
	app := newLimitedApp(GraphQLLimiter(1, time.Second, rec))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	resp.Body.Close()

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "1", resp.Header.Get("Retry-After"))
	assert.Equal(t, 1, rec.hits["graphql"])
}
