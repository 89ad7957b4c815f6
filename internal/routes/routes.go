package routes

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/cardledger/cardledger/internal/card"
	"github.com/cardledger/cardledger/internal/config"
	"github.com/cardledger/cardledger/internal/event"
	"github.com/cardledger/cardledger/internal/middleware"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg    config.Config
	DB     *pgxpool.Pool
	Cache  *redis.Client
	Logger *slog.Logger
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	// Enforce DB/Redis presence outside of dev, even though main also checks.
	if !d.Cfg.IsDev() {
		if d.DB == nil {
			return fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
		if d.Cache == nil {
			return fmt.Errorf("redis is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
	}

	// Middlewares
	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(middleware.Audit(d.Logger))
	if d.Cache != nil {
		app.Use(middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger))
	}

	// Health
	RegisterHealthRoutes(app, d)

	// Card store: Postgres when available, in-memory for dev.
	var store card.Store
	if d.DB != nil {
		store = card.NewPostgresStore(d.DB)
	} else {
		store = card.NewMemoryStore()
	}

	// Event emitter: Redis stream for the external history indexer,
	// logger fallback without Redis.
	var emitter event.Emitter
	if d.Cache != nil {
		emitter = event.NewStreamEmitter(d.Cache, d.Cfg.EventStream)
	} else {
		emitter = event.NewLoggerEmitter(d.Logger)
	}

	cardSvc := card.NewService(store, emitter, d.Logger)
	cardHandler := card.NewHandler(cardSvc)

	// API routes
	api := app.Group("/api/v1")
	api.Get("/ping", func(c *fiber.Ctx) error {
		reqID, _ := c.Locals("X-Request-ID").(string)
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"status":     "ok",
			"request_id": reqID,
			"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		})
	})

	RegisterCardRoutes(api, cardHandler)

	return nil
}
