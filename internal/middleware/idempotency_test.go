package middleware

import (
	"io"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"github.com/ledger-bank/ledger_bank/internal/logging"
)

func newIdempotencyApp(t *testing.T) (*fiber.App, *int64) {
	t.Helper()

	mr := miniredis.RunT(t)
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = cache.Close() })

	var calls int64
	app := fiber.New()
	app.Use(Idempotency(cache, time.Minute, logging.Discard()))
	app.Post("/deposit", func(c *fiber.Ctx) error {
		n := atomic.AddInt64(&calls, 1)
		return c.JSON(fiber.Map{"call": n})
	})
	return app, &calls
}

func TestIdempotencyReplaysFirstResponse(t *testing.T) {
	app, calls := newIdempotencyApp(t)

	first := httptest.NewRequest(fiber.MethodPost, "/deposit", nil)
	first.Header.Set(idempotencyKeyHeader, "dep-1")
	resp1, err := app.Test(first)
	if err != nil {
		t.Fatalf("first request: %v", err)
	}
	body1, _ := io.ReadAll(resp1.Body)

	retry := httptest.NewRequest(fiber.MethodPost, "/deposit", nil)
	retry.Header.Set(idempotencyKeyHeader, "dep-1")
	resp2, err := app.Test(retry)
	if err != nil {
		t.Fatalf("retry request: %v", err)
	}
	body2, _ := io.ReadAll(resp2.Body)

	if got := atomic.LoadInt64(calls); got != 1 {
		t.Fatalf("handler ran %d times, want 1", got)
	}
	if string(body1) != string(body2) {
		t.Fatalf("retry body %q differs from original %q", body2, body1)
	}
	if resp2.StatusCode != resp1.StatusCode {
		t.Fatalf("retry status %d differs from original %d", resp2.StatusCode, resp1.StatusCode)
	}
}

func TestIdempotencyRequiresKeyOnWrites(t *testing.T) {
	app, _ := newIdempotencyApp(t)

	req := httptest.NewRequest(fiber.MethodPost, "/deposit", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("status = %d, want %d", resp.StatusCode, fiber.StatusBadRequest)
	}
}

func TestIdempotencySkipsReads(t *testing.T) {
	mr := miniredis.RunT(t)
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = cache.Close() })

	app := fiber.New()
	app.Use(Idempotency(cache, time.Minute, logging.Discard()))
	app.Get("/balance", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/balance", nil))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, fiber.StatusOK)
	}
}

func TestIdempotencyDistinctKeysRunIndependently(t *testing.T) {
	app, calls := newIdempotencyApp(t)

	for _, key := range []string{"dep-a", "dep-b"} {
		req := httptest.NewRequest(fiber.MethodPost, "/deposit", nil)
		req.Header.Set(idempotencyKeyHeader, key)
		if _, err := app.Test(req); err != nil {
			t.Fatalf("request %s: %v", key, err)
		}
	}
	if got := atomic.LoadInt64(calls); got != 2 {
		t.Fatalf("handler ran %d times, want 2", got)
	}
}
