package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

// Pinger reports whether the portfolio data source is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	startTime time.Time
	source    Pinger
	version   string
}

func NewHealthHandler(source Pinger, version string) *HealthHandler {
	return &HealthHandler{
		startTime: time.Now(),
		source:    source,
		version:   version,
	}
}

// Root handles GET /
func (h *HealthHandler) Root(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"success": true,
		"service": "Portfolio Analytics API",
		"version": h.version,
		"status":  "running",
	})
}

// Health handles GET /health
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"success":   true,
		"message":   "Portfolio Analytics API is running",
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
		"uptime":    time.Since(h.startTime).Round(time.Second).String(),
	})
}

// Ready handles GET /health/ready
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	if err := h.source.Ping(ctx); err != nil {
		zerolog.Ctx(c.UserContext()).Warn().Err(err).Msg("readiness check failed")
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"success": false,
			"status":  "unavailable",
			"checks":  fiber.Map{"api": "ok", "datasource": "unreachable"},
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"status":  "ready",
		"checks":  fiber.Map{"api": "ok", "datasource": "ok"},
	})
}
