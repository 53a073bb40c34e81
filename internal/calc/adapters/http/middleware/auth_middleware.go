package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"gocalc/internal/calc/ports/services"
	"gocalc/pkg/logger"
)

// Константы для логирования.
const (
	LogAuthMiddleware = "auth middleware"

	ErrorNoAuthHeader       = "no authorization header provided"
	ErrorInvalidTokenFormat = "invalid token format"
	ErrorInvalidToken       = "invalid or expired token"

	localsUserID = "userID"
	bearerPrefix = "Bearer "
)

// NewAuthMiddleware требует действительный токен доступа.
func NewAuthMiddleware(tokens services.TokenService) fiber.Handler {
	return authenticate(tokens, true)
}

// NewOptionalAuthMiddleware пропускает запросы без заголовка как анонимные,
// но отклоняет недействительный токен.
func NewOptionalAuthMiddleware(tokens services.TokenService) fiber.Handler {
	return authenticate(tokens, false)
}

func authenticate(tokens services.TokenService, required bool) fiber.Handler {
	return func(ctx fiber.Ctx) error {
		requestCtx := ctx.Context()
		log := logger.Log(requestCtx).With(zap.String("middleware", "auth"))
		log.Debug(requestCtx, LogAuthMiddleware)

		authHeader := ctx.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			if !required {
				return ctx.Next()
			}
			log.Debug(requestCtx, ErrorNoAuthHeader)
			return unauthorized(ctx, ErrorNoAuthHeader)
		}

		token, ok := strings.CutPrefix(authHeader, bearerPrefix)
		if !ok || token == "" {
			log.Debug(requestCtx, ErrorInvalidTokenFormat)
			return unauthorized(ctx, ErrorInvalidTokenFormat)
		}

		userID, err := tokens.ValidateAccessToken(requestCtx, token)
		if err != nil {
			log.Debug(requestCtx, ErrorInvalidToken, zap.Error(err))
			return unauthorized(ctx, ErrorInvalidToken)
		}

		ctx.Locals(localsUserID, userID)
		return ctx.Next()
	}
}

func unauthorized(ctx fiber.Ctx, message string) error {
	return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": message})
}

// UserID возвращает ID аутентифицированного пользователя или nil для анонимного запроса.
func UserID(ctx fiber.Ctx) *string {
	userID, ok := ctx.Locals(localsUserID).(string)
	if !ok || userID == "" {
		return nil
	}
	return &userID
}
