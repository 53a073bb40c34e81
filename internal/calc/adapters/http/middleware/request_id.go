// Package middleware содержит промежуточное ПО для HTTP обработчиков.
package middleware

import (
	"github.com/gofiber/fiber/v3"

	"gocalc/pkg/logger"
)

// HeaderRequestID - заголовок идентификатора запроса.
const HeaderRequestID = fiber.HeaderXRequestID

// NewRequestIDMiddleware переносит X-Request-ID (или новый UUID) в контекст запроса и ответ.
func NewRequestIDMiddleware() fiber.Handler {
	return func(ctx fiber.Ctx) error {
		requestCtx := logger.NewRequestIDContext(ctx.Context(), ctx.Get(HeaderRequestID))
		requestID, _ := logger.GetRequestID(requestCtx)

		ctx.SetContext(requestCtx)
		ctx.Set(HeaderRequestID, requestID)

		return ctx.Next()
	}
}
