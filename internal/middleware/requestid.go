package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// HeaderRequestID carries the request correlation id.
const HeaderRequestID = "X-Request-ID"

const (
	localsRequestID = "request_id"
	localsLogger    = "logger"
)

// RequestID makes sure every request has an id, echoes it in the response
// and stores a logger tagged with it in the request locals.
func RequestID(log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		requestID := c.Get(HeaderRequestID)
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set(HeaderRequestID, requestID)
		c.Locals(localsRequestID, requestID)
		c.Locals(localsLogger, log.With(zap.String("request_id", requestID)))
		return c.Next()
	}
}

// Logger returns the request scoped logger, or the global one outside a request.
func Logger(c *fiber.Ctx) *zap.Logger {
	if log, ok := c.Locals(localsLogger).(*zap.Logger); ok {
		return log
	}
	return zap.L()
}

// GetRequestID returns the id assigned by RequestID.
func GetRequestID(c *fiber.Ctx) string {
	id, _ := c.Locals(localsRequestID).(string)
	return id
}
