package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/rs/zerolog"
)

// AccessLog attaches a request-scoped logger to the user context and logs
// one line per request once the error handler has set the final status.
func AccessLog(log zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		reqLog := log.With().Str("request_id", RequestID(c)).Logger()
		c.SetUserContext(reqLog.WithContext(c.UserContext()))

		if chainErr := c.Next(); chainErr != nil {
			if err := c.App().ErrorHandler(c, chainErr); err != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		status := c.Response().StatusCode()
		event := reqLog.Info()
		switch {
		case status >= fiber.StatusInternalServerError:
			event = reqLog.Error()
		case status >= fiber.StatusBadRequest:
			event = reqLog.Warn()
		}

		event.
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("ip", c.IP()).
			Msg("request")

		return nil
	}
}

// RequestID returns the id assigned by the requestid middleware
func RequestID(c *fiber.Ctx) string {
	id, _ := c.Locals(requestid.ConfigDefault.ContextKey).(string)
	return id
}
