package serverutils

import (
	"errors"
	"log"

	"ai-docchat-be/pkg/convcache"
	"ai-docchat-be/pkg/rag"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware maps service errors onto HTTP statuses and keeps
// internals out of response bodies.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return ctx.Status(fiberErr.Code).JSON(ErrorResponse(fiberErr.Message))
		}

		switch {
		case errors.Is(err, rag.ErrEmbedding), errors.Is(err, rag.ErrGeneration):
			log.Printf("[ERROR] model backend failure: %v", err)
			return ctx.Status(fiber.StatusBadGateway).JSON(ErrorResponse("model backend unavailable"))
		case errors.Is(err, rag.ErrRetrieval):
			log.Printf("[ERROR] retrieval failure: %v", err)
			return ctx.Status(fiber.StatusBadGateway).JSON(ErrorResponse("retrieval unavailable"))
		case errors.Is(err, convcache.ErrUnavailable):
			log.Printf("[ERROR] session cache failure: %v", err)
			return ctx.Status(fiber.StatusServiceUnavailable).JSON(ErrorResponse("session cache unavailable"))
		}

		log.Printf("[ERROR] unhandled: %v", err)
		return ctx.Status(fiber.StatusInternalServerError).JSON(ErrorResponse("internal server error"))
	}
}
