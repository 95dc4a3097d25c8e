package handlers

import (
	"errors"

	"portfolio-analytics-api/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

const (
	msgNotFound    = "API endpoint not found"
	msgInternal    = "Internal server error"
	msgInvalidData = "Internal server error while processing portfolio data"
	msgRateLimited = "Too many requests, please try again later."
)

// CustomErrorHandler renders errors that escape a handler in the API envelope.
// Internal details never reach the client.
func CustomErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := msgInternal

	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		if code < fiber.StatusInternalServerError {
			message = fe.Message
		}
		if code == fiber.StatusNotFound {
			message = msgNotFound
		}
	}

	if code >= fiber.StatusInternalServerError {
		zerolog.Ctx(c.UserContext()).Error().Err(err).Str("path", c.Path()).Msg("unhandled error")
	}

	return c.Status(code).JSON(models.ErrorResponse{
		Success: false,
		Message: message,
	})
}

// NotFound is mounted after every route
func NotFound(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(models.ErrorResponse{
		Success: false,
		Message: msgNotFound,
	})
}

func fail(c *fiber.Ctx, code int, message string) error {
	return c.Status(code).JSON(models.ErrorResponse{
		Success: false,
		Message: message,
	})
}
