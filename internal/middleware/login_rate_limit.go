package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

const (
	loginRatePrefix   = "login:attempts:"
	loginRateWindow   = time.Minute
	loginRateMaxTries = 5
)

// LoginRateLimit caps login attempts per username inside a sliding window,
// falling back to the caller IP when the body has no username. The counter is
// incremented before authentication runs so failed guesses count too.
func LoginRateLimit(cache *redis.Client, logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var probe struct {
			Username string `json:"username"`
		}
		subject := c.IP()
		if err := c.BodyParser(&probe); err == nil && probe.Username != "" {
			subject = probe.Username
		}
		key := loginRatePrefix + subject

		ctx, cancel := context.WithTimeout(context.Background(), cacheOpTimeout)
		defer cancel()

		attempts, err := cache.Incr(ctx, key).Result()
		if err != nil {
			logger.Error("login rate limiter unavailable", slog.Any("error", err))
			return c.Next() // availability over strictness
		}
		if attempts == 1 {
			cache.Expire(ctx, key, loginRateWindow)
		}
		if attempts > loginRateMaxTries {
			return fiber.NewError(fiber.StatusTooManyRequests,
				fmt.Sprintf("too many login attempts, retry in %s", loginRateWindow))
		}
		return c.Next()
	}
}
