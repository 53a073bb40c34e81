// Package users содержит HTTP обработчики учетных записей.
package users

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"gocalc/internal/calc/adapters/http/dto"
	"gocalc/internal/calc/adapters/http/middleware"
	"gocalc/internal/calc/domain/entities"
	"gocalc/internal/calc/domain/services"
	"gocalc/internal/calc/ports/api"
	"gocalc/pkg/logger"
)

// Константы для логирования.
const (
	LogHandlerRegister      = "users handler: register"
	LogHandlerLogin         = "users handler: login"
	LogHandlerRefreshTokens = "users handler: refresh tokens" // #nosec G101 - not a credential
	LogHandlerLogout        = "users handler: logout"
	LogHandlerGetProfile    = "users handler: get profile"
	LogHandlerDeleteProfile = "users handler: delete profile"

	ErrorInvalidRequest = "invalid request"
	ErrorInternal       = "internal server error"

	msgLoginSuccessful = "Login successful"
)

// Handler содержит HTTP обработчики учетных записей.
type Handler struct {
	auth  api.AuthUseCase
	users api.UserUseCase
}

// NewHandler создает новый экземпляр обработчика.
func NewHandler(auth api.AuthUseCase, users api.UserUseCase) *Handler {
	return &Handler{auth: auth, users: users}
}

func sendErrorResponse(ctx fiber.Ctx, statusCode int, message string) error {
	if err := ctx.Status(statusCode).JSON(dto.ErrorResponse{Error: message}); err != nil {
		return fmt.Errorf("error sending response: %w", err)
	}
	return nil
}

// errorStatuses сопоставляет доменные ошибки с кодами ответа. Телом ответа служит текст ошибки из таблицы.
var errorStatuses = []struct {
	err    error
	status int
}{
	{entities.ErrInvalidEmail, fiber.StatusBadRequest},
	{entities.ErrEmptyUsername, fiber.StatusBadRequest},
	{entities.ErrInvalidUsername, fiber.StatusBadRequest},
	{entities.ErrPasswordTooShort, fiber.StatusBadRequest},
	{entities.ErrPasswordTooWeak, fiber.StatusBadRequest},
	{entities.ErrEmailAlreadyExists, fiber.StatusConflict},
	{entities.ErrUsernameAlreadyExists, fiber.StatusConflict},
	{services.ErrInvalidCredentials, fiber.StatusUnauthorized},
	{services.ErrInvalidRefreshToken, fiber.StatusUnauthorized},
	{services.ErrRevokedRefreshToken, fiber.StatusUnauthorized},
	{entities.ErrUserNotFound, fiber.StatusNotFound},
}

// handleError переводит ошибки сценариев в коды ответа.
func handleError(ctx fiber.Ctx, err error) error {
	if errors.Is(err, dto.ErrValidation) {
		return sendErrorResponse(ctx, fiber.StatusBadRequest, err.Error())
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return sendErrorResponse(ctx, fiberErr.Code, ErrorInvalidRequest)
	}

	for _, e := range errorStatuses {
		if errors.Is(err, e.err) {
			return sendErrorResponse(ctx, e.status, e.err.Error())
		}
	}

	requestCtx := ctx.Context()
	logger.Log(requestCtx).Error(requestCtx, ErrorInternal, zap.Error(err))
	return sendErrorResponse(ctx, fiber.StatusInternalServerError, ErrorInternal)
}

// Register обрабатывает регистрацию нового пользователя.
func (h *Handler) Register(ctx fiber.Ctx) error {
	requestCtx := ctx.Context()
	logger.Log(requestCtx).Debug(requestCtx, LogHandlerRegister)

	var req dto.RegisterRequest
	if err := dto.BindJSON(ctx, &req); err != nil {
		return handleError(ctx, err)
	}

	user, err := h.auth.Register(requestCtx, req.Email, req.Username, req.Password)
	if err != nil {
		return handleError(ctx, err)
	}

	return ctx.Status(fiber.StatusCreated).JSON(dto.NewUserResponse(user))
}

// Login обрабатывает вход по имени пользователя и паролю.
func (h *Handler) Login(ctx fiber.Ctx) error {
	requestCtx := ctx.Context()
	logger.Log(requestCtx).Debug(requestCtx, LogHandlerLogin)

	var req dto.LoginRequest
	if err := dto.BindJSON(ctx, &req); err != nil {
		return handleError(ctx, err)
	}

	pair, err := h.auth.Login(requestCtx, req.Username, req.Password)
	if err != nil {
		return handleError(ctx, err)
	}

	return ctx.JSON(dto.NewTokenResponse(pair, msgLoginSuccessful))
}

// RefreshTokens обменивает refresh-токен на новую пару.
func (h *Handler) RefreshTokens(ctx fiber.Ctx) error {
	requestCtx := ctx.Context()
	logger.Log(requestCtx).Debug(requestCtx, LogHandlerRefreshTokens)

	var req dto.RefreshTokenRequest
	if err := dto.BindJSON(ctx, &req); err != nil {
		return handleError(ctx, err)
	}

	pair, err := h.auth.RefreshTokens(requestCtx, req.RefreshToken)
	if err != nil {
		return handleError(ctx, err)
	}

	return ctx.JSON(dto.NewTokenResponse(pair, ""))
}

// Logout отзывает refresh-токен.
func (h *Handler) Logout(ctx fiber.Ctx) error {
	requestCtx := ctx.Context()
	logger.Log(requestCtx).Debug(requestCtx, LogHandlerLogout)

	var req dto.RefreshTokenRequest
	if err := dto.BindJSON(ctx, &req); err != nil {
		return handleError(ctx, err)
	}

	if err := h.auth.Logout(requestCtx, req.RefreshToken); err != nil {
		return handleError(ctx, err)
	}

	return ctx.SendStatus(fiber.StatusNoContent)
}

// GetProfile возвращает профиль текущего пользователя.
func (h *Handler) GetProfile(ctx fiber.Ctx) error {
	requestCtx := ctx.Context()
	logger.Log(requestCtx).Debug(requestCtx, LogHandlerGetProfile)

	userID := middleware.UserID(ctx)
	if userID == nil {
		return sendErrorResponse(ctx, fiber.StatusUnauthorized, middleware.ErrorNoAuthHeader)
	}

	user, err := h.users.GetUserProfile(requestCtx, *userID)
	if err != nil {
		return handleError(ctx, err)
	}

	return ctx.JSON(dto.NewUserResponse(user))
}

// DeleteProfile удаляет текущего пользователя вместе с его вычислениями.
func (h *Handler) DeleteProfile(ctx fiber.Ctx) error {
	requestCtx := ctx.Context()
	logger.Log(requestCtx).Debug(requestCtx, LogHandlerDeleteProfile)

	userID := middleware.UserID(ctx)
	if userID == nil {
		return sendErrorResponse(ctx, fiber.StatusUnauthorized, middleware.ErrorNoAuthHeader)
	}

	if err := h.users.DeleteUser(requestCtx, *userID); err != nil {
		return handleError(ctx, err)
	}

	return ctx.SendStatus(fiber.StatusNoContent)
}
