package handlers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"portfolio-analytics-api/internal/analytics"
	"portfolio-analytics-api/internal/models"
	"portfolio-analytics-api/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

// Exporter renders the derived views into a downloadable document
type Exporter interface {
	Generate(ctx context.Context, holdings []models.EnrichedHolding, alloc models.Allocation, summary models.PortfolioSummary) ([]byte, error)
}

type PortfolioHandler struct {
	service     *services.PortfolioService
	exporter    Exporter
	contentType string
	timeout     time.Duration
}

func NewPortfolioHandler(service *services.PortfolioService, exporter Exporter, contentType string, timeout time.Duration) *PortfolioHandler {
	return &PortfolioHandler{
		service:     service,
		exporter:    exporter,
		contentType: contentType,
		timeout:     timeout,
	}
}

// Holdings handles GET /api/portfolio/holdings
func (h *PortfolioHandler) Holdings(c *fiber.Ctx) error {
	sort, err := services.ParseHoldingSort(c.Query("sort"), c.Query("order"))
	if err != nil {
		return fail(c, fiber.StatusBadRequest, err.Error())
	}

	ctx, cancel := h.context(c)
	defer cancel()

	holdings, err := h.service.Holdings(ctx, sort)
	if err != nil {
		return h.serverError(c, err, "fetching holdings")
	}

	count := len(holdings)
	return c.JSON(models.Response{Success: true, Data: holdings, Count: &count})
}

// Allocation handles GET /api/portfolio/allocation
func (h *PortfolioHandler) Allocation(c *fiber.Ctx) error {
	ctx, cancel := h.context(c)
	defer cancel()

	alloc, err := h.service.Allocation(ctx)
	if err != nil {
		return h.serverError(c, err, "calculating allocation")
	}
	return c.JSON(models.Response{Success: true, Data: alloc})
}

// Summary handles GET /api/portfolio/summary
func (h *PortfolioHandler) Summary(c *fiber.Ctx) error {
	ctx, cancel := h.context(c)
	defer cancel()

	summary, err := h.service.Summary(ctx)
	if err != nil {
		return h.serverError(c, err, "calculating portfolio summary")
	}
	return c.JSON(models.Response{Success: true, Data: summary})
}

// Performance handles GET /api/portfolio/performance
func (h *PortfolioHandler) Performance(c *fiber.Ctx) error {
	ctx, cancel := h.context(c)
	defer cancel()

	perf, err := h.service.Performance(ctx)
	if err != nil {
		return h.serverError(c, err, "fetching performance data")
	}
	return c.JSON(models.Response{Success: true, Data: perf})
}

// Export handles GET /api/portfolio/export
func (h *PortfolioHandler) Export(c *fiber.Ctx) error {
	ctx, cancel := h.context(c)
	defer cancel()

	report, err := h.service.Report(ctx)
	if err != nil {
		return h.serverError(c, err, "generating export")
	}

	data, err := h.exporter.Generate(ctx, report.Holdings, report.Allocation, report.Summary)
	if err != nil {
		return h.serverError(c, err, "generating export")
	}

	c.Set(fiber.HeaderContentType, h.contentType)
	c.Attachment(fmt.Sprintf("portfolio-%s.xlsx", time.Now().UTC().Format("2006-01-02")))
	return c.Send(data)
}

func (h *PortfolioHandler) context(c *fiber.Ctx) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.UserContext(), h.timeout)
}

func (h *PortfolioHandler) serverError(c *fiber.Ctx, err error, action string) error {
	log := zerolog.Ctx(c.UserContext())

	if errors.Is(err, analytics.ErrInvalidHolding) {
		log.Error().Err(err).Msg("invalid portfolio data")
		return fail(c, fiber.StatusInternalServerError, msgInvalidData)
	}

	log.Error().Err(err).Str("action", action).Msg("portfolio request failed")
	return fail(c, fiber.StatusInternalServerError, "Internal server error while "+action)
}
