package handlers

import (
	"errors"
	"net/http"
	"time"

	"inventory/internal/middleware"
	"inventory/internal/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Response is the envelope used for every JSON reply.
type Response struct {
	Timestamp        time.Time         `json:"timestamp"`
	Status           int               `json:"status"`
	Error            string            `json:"error,omitempty"`
	Message          string            `json:"message"`
	Path             string            `json:"path"`
	Data             interface{}       `json:"data,omitempty"`
	ValidationErrors map[string]string `json:"validation_errors,omitempty"`
	RequestID        string            `json:"request_id,omitempty"`
}

// ValidationError carries per-field request validation failures.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return "Validation failed"
}

func respond(c *fiber.Ctx, status int, message string, data interface{}) error {
	return c.Status(status).JSON(Response{
		Timestamp: time.Now(),
		Status:    status,
		Message:   message,
		Path:      c.Path(),
		Data:      data,
	})
}

func respondError(c *fiber.Ctx, status int, message string, fields map[string]string) error {
	return c.Status(status).JSON(Response{
		Timestamp:        time.Now(),
		Status:           status,
		Error:            http.StatusText(status),
		Message:          message,
		Path:             c.Path(),
		ValidationErrors: fields,
		RequestID:        middleware.GetRequestID(c),
	})
}

// ErrorHandler maps errors returned by handlers to HTTP responses. Errors it
// does not recognise become a generic 500 so internal details never leak.
func ErrorHandler(c *fiber.Ctx, err error) error {
	log := middleware.Logger(c)

	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		log.Warn("Validation failed", zap.Any("fields", validationErr.Fields))
		return respondError(c, fiber.StatusBadRequest, validationErr.Error(), validationErr.Fields)
	}

	if productErr := services.AsProductError(err); productErr != nil {
		status := statusForKind(productErr.Kind)
		log.Warn("Product request rejected",
			zap.Stringer("kind", productErr.Kind),
			zap.String("message", productErr.Message))
		return respondError(c, status, productErr.Message, nil)
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		log.Warn("Request failed", zap.Int("status", fiberErr.Code), zap.String("message", fiberErr.Message))
		message := fiberErr.Message
		if fiberErr.Code == fiber.StatusNotFound {
			message = "No handler found for the requested path"
		}
		return respondError(c, fiberErr.Code, message, nil)
	}

	log.Error("Unhandled error", zap.Error(err))
	return respondError(c, fiber.StatusInternalServerError, "An unexpected error occurred", nil)
}

func statusForKind(kind services.ErrorKind) int {
	switch kind {
	case services.KindProductNotFound:
		return fiber.StatusNotFound
	case services.KindSkuAlreadyExists:
		return fiber.StatusConflict
	case services.KindInvalidSkuFormat, services.KindIllegalArgument:
		return fiber.StatusBadRequest
	}
	return fiber.StatusInternalServerError
}
