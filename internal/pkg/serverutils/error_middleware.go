package serverutils

import (
	"github.com/JoshuaPangaribuan/DocIx-sub000/internal/pkg/apperrors"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware maps the error taxonomy onto HTTP statuses.
// Indexing failures never surface here; they live in the ledger.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		status := fiber.StatusInternalServerError
		switch apperrors.KindOf(err) {
		case apperrors.KindValidation:
			status = fiber.StatusBadRequest
		case apperrors.KindNotFound:
			status = fiber.StatusNotFound
		case apperrors.KindStorage:
			status = fiber.StatusBadGateway
		}

		if fiberErr, ok := err.(*fiber.Error); ok {
			status = fiberErr.Code
		}

		return ctx.Status(status).JSON(fiber.Map{
			"message": err.Error(),
		})
	}
}
