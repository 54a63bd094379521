package routes

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/ledger-bank/ledger_bank/internal/account"
	"github.com/ledger-bank/ledger_bank/internal/admin"
	"github.com/ledger-bank/ledger_bank/internal/auth"
	"github.com/ledger-bank/ledger_bank/internal/config"
	"github.com/ledger-bank/ledger_bank/internal/identity"
	"github.com/ledger-bank/ledger_bank/internal/ledger"
	"github.com/ledger-bank/ledger_bank/internal/middleware"
	"github.com/ledger-bank/ledger_bank/internal/notification"
	"github.com/ledger-bank/ledger_bank/internal/wallet"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg    config.Config
	DB     *pgxpool.Pool
	Cache  *redis.Client
	Logger *slog.Logger
}

// Setup configures middlewares and all application routes. Repositories are
// backed by Postgres when a pool is supplied and by JSON files under
// Cfg.DataDir otherwise.
func Setup(app *fiber.App, d Deps) error {
	if !d.Cfg.IsDev() && d.Cache == nil {
		return fmt.Errorf("redis is required when APP_ENV=%s", d.Cfg.AppEnv)
	}

	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} -  ${latency} ${method} ${path}\n",
		TimeFormat: "15:04:05",
		TimeZone:   "Local",
	}))
	app.Use(middleware.Audit(d.Logger))

	userRepo, walletRepo, txRepo, err := buildRepositories(d)
	if err != nil {
		return err
	}

	identitySvc := identity.NewService(userRepo, d.Cfg.AdminMasterKey)
	walletSvc := wallet.NewService(walletRepo)
	notifier := notification.NewLoggerNotifier(d.Logger)
	engine := ledger.NewEngine(walletRepo, txRepo, notifier)
	authSvc := auth.NewService(d.Cfg, identitySvc, walletSvc, d.Cache)
	accountSvc := account.NewService(userRepo, walletRepo, txRepo)

	authHandler := auth.NewHandler(authSvc)
	ledgerHandler := ledger.NewHandler(engine)
	accountHandler := account.NewHandler(accountSvc)
	adminHandler := admin.NewHandler(accountSvc, engine)

	RegisterHealthRoutes(app, d)

	api := app.Group("/api/v1")
	api.Get("/ping", func(c *fiber.Ctx) error {
		reqID, _ := c.Locals("X-Request-ID").(string)
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"status":     "ok",
			"request_id": reqID,
			"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		})
	})

	var rateLimiter fiber.Handler
	if d.Cache != nil {
		rateLimiter = middleware.LoginRateLimit(d.Cache, d.Logger)
	}
	RegisterAuthRoutes(api, authHandler, rateLimiter)

	protected := api.Group("", middleware.Auth(authSvc, userRepo))
	RegisterMeRoute(protected, userRepo, accountSvc)

	walletGroup := protected.Group("/wallet")
	if d.Cache != nil {
		walletGroup.Use(middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger))
	}
	RegisterWalletRoutes(walletGroup, ledgerHandler, accountHandler)

	adminGroup := protected.Group("/admin", middleware.RequireAdmin())
	RegisterAdminRoutes(adminGroup, adminHandler)

	return nil
}

func buildRepositories(d Deps) (identity.Repository, wallet.Repository, ledger.Repository, error) {
	if d.DB != nil {
		return identity.NewPostgresRepository(d.DB),
			wallet.NewPostgresRepository(d.DB),
			ledger.NewPostgresRepository(d.DB),
			nil
	}

	userRepo, err := identity.NewFileRepository(d.Cfg.DataDir)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("open user store: %w", err)
	}
	walletRepo, err := wallet.NewFileRepository(d.Cfg.DataDir)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("open wallet store: %w", err)
	}
	txRepo, err := ledger.NewFileRepository(d.Cfg.DataDir)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("open transaction store: %w", err)
	}
	return userRepo, walletRepo, txRepo, nil
}
