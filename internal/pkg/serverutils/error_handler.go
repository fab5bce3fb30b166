package serverutils

import (
	"errors"

	"text-annotation-be/internal/domain"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware maps domain errors onto HTTP status codes so
// controllers can just return them.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		status := fiber.StatusInternalServerError
		switch {
		case errors.Is(err, domain.ErrAggregateNotFound):
			status = fiber.StatusNotFound
		case errors.Is(err, domain.ErrConcurrencyConflict):
			status = fiber.StatusConflict
		case errors.Is(err, domain.ErrProjectDeleted), errors.Is(err, domain.ErrDocumentNotInProject):
			status = fiber.StatusBadRequest
		case domain.IsValidation(err):
			status = fiber.StatusBadRequest
		default:
			var fiberErr *fiber.Error
			if errors.As(err, &fiberErr) {
				status = fiberErr.Code
			}
		}

		return ctx.Status(status).JSON(fiber.Map{
			"success": false,
			"message": err.Error(),
		})
	}
}
