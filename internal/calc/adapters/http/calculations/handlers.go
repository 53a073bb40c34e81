// Package calculations содержит HTTP обработчики вычислений.
package calculations

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"gocalc/internal/calc/adapters/http/dto"
	"gocalc/internal/calc/adapters/http/middleware"
	"gocalc/internal/calc/domain/entities"
	"gocalc/internal/calc/domain/operations"
	"gocalc/internal/calc/ports/api"
	"gocalc/pkg/logger"
)

// Константы для логирования.
const (
	LogHandlerCreate     = "calculations handler: create"
	LogHandlerGet        = "calculations handler: get"
	LogHandlerList       = "calculations handler: list"
	LogHandlerUpdate     = "calculations handler: update"
	LogHandlerDelete     = "calculations handler: delete"
	LogHandlerOperations = "calculations handler: operations"

	ErrorInvalidRequest = "invalid request"
	ErrorInternal       = "internal server error"

	paramID     = "id"
	queryOffset = "offset"
	querySkip   = "skip"
	queryLimit  = "limit"
)

// Handler содержит HTTP обработчики вычислений.
type Handler struct {
	calculations api.CalculationUseCase
}

// NewHandler создает новый экземпляр обработчика.
func NewHandler(calculations api.CalculationUseCase) *Handler {
	return &Handler{calculations: calculations}
}

func sendErrorResponse(ctx fiber.Ctx, statusCode int, message string) error {
	if err := ctx.Status(statusCode).JSON(dto.ErrorResponse{Error: message}); err != nil {
		return fmt.Errorf("error sending response: %w", err)
	}
	return nil
}

// handleError переводит ошибки сценариев в коды ответа.
// Ошибки вычисления - ошибки ввода клиента.
func handleError(ctx fiber.Ctx, err error) error {
	var unsupported *operations.UnsupportedOperationError
	var fiberErr *fiber.Error

	switch {
	case errors.Is(err, dto.ErrValidation):
		return sendErrorResponse(ctx, fiber.StatusBadRequest, err.Error())
	case errors.As(err, &fiberErr):
		return sendErrorResponse(ctx, fiberErr.Code, ErrorInvalidRequest)
	case errors.As(err, &unsupported):
		return sendErrorResponse(ctx, fiber.StatusBadRequest, unsupported.Error())
	case errors.Is(err, operations.ErrDivisionByZero):
		return sendErrorResponse(ctx, fiber.StatusBadRequest, operations.ErrDivisionByZero.Error())
	case errors.Is(err, entities.ErrInvalidPagination):
		return sendErrorResponse(ctx, fiber.StatusBadRequest, entities.ErrInvalidPagination.Error())
	case errors.Is(err, entities.ErrCalculationNotFound):
		return sendErrorResponse(ctx, fiber.StatusNotFound, entities.ErrCalculationNotFound.Error())
	case errors.Is(err, entities.ErrOwnerNotFound):
		return sendErrorResponse(ctx, fiber.StatusNotFound, entities.ErrUserNotFound.Error())
	default:
		requestCtx := ctx.Context()
		logger.Log(requestCtx).Error(requestCtx, ErrorInternal, zap.Error(err))
		return sendErrorResponse(ctx, fiber.StatusInternalServerError, ErrorInternal)
	}
}

// Operations возвращает поддерживаемые операции.
func (h *Handler) Operations(ctx fiber.Ctx) error {
	requestCtx := ctx.Context()
	logger.Log(requestCtx).Debug(requestCtx, LogHandlerOperations)

	return ctx.JSON(dto.NewOperationsResponse(h.calculations.SupportedOperations()))
}

// Create вычисляет и сохраняет новое вычисление.
func (h *Handler) Create(ctx fiber.Ctx) error {
	requestCtx := ctx.Context()
	logger.Log(requestCtx).Debug(requestCtx, LogHandlerCreate)

	var req dto.CalculationRequest
	if err := dto.BindJSON(ctx, &req); err != nil {
		return handleError(ctx, err)
	}

	calc, err := h.calculations.Create(requestCtx, middleware.UserID(ctx), *req.A, *req.B, operations.Kind(req.Type))
	if err != nil {
		return handleError(ctx, err)
	}

	return ctx.Status(fiber.StatusCreated).JSON(dto.NewCalculationResponse(calc))
}

// Get возвращает вычисление по ID.
func (h *Handler) Get(ctx fiber.Ctx) error {
	requestCtx := ctx.Context()
	logger.Log(requestCtx).Debug(requestCtx, LogHandlerGet)

	calc, err := h.calculations.Get(requestCtx, middleware.UserID(ctx), ctx.Params(paramID))
	if err != nil {
		return handleError(ctx, err)
	}

	return ctx.JSON(dto.NewCalculationResponse(calc))
}

// List возвращает страницу вычислений. offset принимает также имя skip.
func (h *Handler) List(ctx fiber.Ctx) error {
	requestCtx := ctx.Context()
	logger.Log(requestCtx).Debug(requestCtx, LogHandlerList)

	offset, err := queryInt(ctx, queryOffset, querySkip)
	if err != nil {
		return handleError(ctx, err)
	}
	limit, err := queryInt(ctx, queryLimit)
	if err != nil {
		return handleError(ctx, err)
	}

	page, err := h.calculations.List(requestCtx, middleware.UserID(ctx), offset, limit)
	if err != nil {
		return handleError(ctx, err)
	}

	return ctx.JSON(dto.NewCalculationListResponse(page))
}

// queryInt читает первый непустой параметр из names. Отсутствие дает 0.
func queryInt(ctx fiber.Ctx, names ...string) (int, error) {
	for _, name := range names {
		raw := ctx.Query(name)
		if raw == "" {
			continue
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			return 0, fmt.Errorf("%w: %s must be an integer", dto.ErrValidation, name)
		}
		return v, nil
	}
	return 0, nil
}

// Update применяет частичное обновление и пересчитывает результат.
func (h *Handler) Update(ctx fiber.Ctx) error {
	requestCtx := ctx.Context()
	logger.Log(requestCtx).Debug(requestCtx, LogHandlerUpdate)

	var req dto.CalculationUpdateRequest
	if err := dto.BindJSON(ctx, &req); err != nil {
		return handleError(ctx, err)
	}

	calc, err := h.calculations.Update(requestCtx, middleware.UserID(ctx), ctx.Params(paramID), req.ToUpdate())
	if err != nil {
		return handleError(ctx, err)
	}

	return ctx.JSON(dto.NewCalculationResponse(calc))
}

// Delete удаляет вычисление.
func (h *Handler) Delete(ctx fiber.Ctx) error {
	requestCtx := ctx.Context()
	logger.Log(requestCtx).Debug(requestCtx, LogHandlerDelete)

	if err := h.calculations.Delete(requestCtx, middleware.UserID(ctx), ctx.Params(paramID)); err != nil {
		return handleError(ctx, err)
	}

	return ctx.SendStatus(fiber.StatusNoContent)
}
