package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type RouterConfig struct {
	FrontendURL     string
	RateLimitMax    int
	RateLimitWindow time.Duration
	Log             zerolog.Logger
}

// NewRouter builds the fiber app with the middleware stack and every API route.
func NewRouter(cfg RouterConfig, portfolio *PortfolioHandler, health *HealthHandler) *fiber.App {
	app := fiber.New(fiber.Config{
		StrictRouting: false,
		CaseSensitive: true,
		ServerHeader:  "Portfolio-Analytics-API",
		AppName:       "Portfolio Analytics API",
		ReadTimeout:   10 * time.Second,
		WriteTimeout:  30 * time.Second,
		BodyLimit:     1 * 1024 * 1024,
		ErrorHandler:  CustomErrorHandler,
	})

	// AccessLog wraps recover so requests that panic are logged too.
	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	app.Use(AccessLog(cfg.Log))
	app.Use(recover.New(recover.Config{EnableStackTrace: true}))
	app.Use(helmet.New())
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.FrontendURL,
		AllowMethods:     "GET,OPTIONS",
		AllowHeaders:     "Origin,Content-Type,Accept",
		AllowCredentials: true,
		MaxAge:           3600,
	}))
	if cfg.RateLimitMax > 0 {
		app.Use(limiter.New(limiter.Config{
			Max:        cfg.RateLimitMax,
			Expiration: cfg.RateLimitWindow,
			LimitReached: func(c *fiber.Ctx) error {
				return fail(c, fiber.StatusTooManyRequests, msgRateLimited)
			},
		}))
	}

	app.Get("/", health.Root)
	app.Get("/health", health.Health)
	app.Get("/health/ready", health.Ready)

	api := app.Group("/api/portfolio")
	api.Get("/holdings", portfolio.Holdings)
	api.Get("/allocation", portfolio.Allocation)
	api.Get("/summary", portfolio.Summary)
	api.Get("/performance", portfolio.Performance)
	api.Get("/export", portfolio.Export)

	app.Use(NotFound)

	return app
}
