package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"gocalc/internal/calc/domain/entities"
	"gocalc/internal/calc/domain/operations"
	"gocalc/internal/calc/ports/api"
	"gocalc/internal/calc/ports/cache"
	"gocalc/internal/calc/ports/events"
	"gocalc/internal/calc/ports/repositories"
	"gocalc/pkg/logger"
)

// Ограничения пагинации списка вычислений.
const (
	DefaultListLimit = 100
	MaxListLimit     = 100
)

const (
	methodCreateCalculation = "CreateCalculation"
	methodGetCalculation    = "GetCalculation"
	methodListCalculations  = "ListCalculations"
	methodUpdateCalculation = "UpdateCalculation"
	methodDeleteCalculation = "DeleteCalculation"

	msgCalculationRejected = "calculation rejected by evaluator"
	msgOwnerMissing        = "calculation owner does not exist"
	msgCalculationCreated  = "calculation created"
	msgCalculationCacheHit = "calculation served from cache"
	msgCalculationHidden   = "calculation is not visible to caller"
	msgCalculationUpdated  = "calculation updated"
	msgCalculationDeleted  = "calculation deleted"
	msgCalculationsListed  = "calculations listed"
	msgPublishFailed       = "failed to publish calculation event"
	msgErrCheckingOwner    = "failed to check calculation owner"
	msgErrPersistingCalc   = "failed to persist calculation"
	msgErrLoadingCalc      = "failed to load calculation"
	msgErrListingCalcs     = "failed to list calculations"
	msgErrDeletingCalc     = "failed to delete calculation"

	errCtxEvaluating         = "evaluating calculation"
	errCtxCheckingOwner      = "checking owner"
	errCtxCreatingCalc       = "creating calculation"
	errCtxLoadingCalc        = "loading calculation"
	errCtxListingCalcs       = "listing calculations"
	errCtxUpdatingCalc       = "updating calculation"
	errCtxDeletingCalc       = "deleting calculation"
	errCtxValidatingPaginate = "validating pagination"
)

// CalculationUseCaseImpl реализует интерфейс CalculationUseCase.
type CalculationUseCaseImpl struct {
	evaluator *operations.Evaluator
	calcRepo  repositories.CalculationRepository
	userRepo  repositories.UserRepository
	cache     *calculationCache
	publisher events.Publisher
}

// CalculationDeps - зависимости сценария вычислений. Cache и Publisher необязательны.
type CalculationDeps struct {
	Evaluator *operations.Evaluator
	CalcRepo  repositories.CalculationRepository
	UserRepo  repositories.UserRepository
	Cache     cache.Cache
	CacheTTL  time.Duration
	Publisher events.Publisher
}

// NewCalculationUseCase создает новый экземпляр сервиса вычислений.
func NewCalculationUseCase(deps CalculationDeps) api.CalculationUseCase {
	ev := deps.Evaluator
	if ev == nil {
		ev = operations.NewEvaluator(nil)
	}
	pub := deps.Publisher
	if pub == nil {
		pub = discardPublisher{}
	}
	return &CalculationUseCaseImpl{
		evaluator: ev,
		calcRepo:  deps.CalcRepo,
		userRepo:  deps.UserRepo,
		cache:     &calculationCache{cache: deps.Cache, ttl: deps.CacheTTL},
		publisher: pub,
	}
}

// SupportedOperations возвращает виды операций в порядке реестра.
func (c *CalculationUseCaseImpl) SupportedOperations() []operations.Kind {
	return c.evaluator.Registry().SupportedKinds()
}

// Create вычисляет результат и только при успехе сохраняет вычисление.
func (c *CalculationUseCaseImpl) Create(
	ctx context.Context,
	callerID *string,
	a, b float64,
	kind operations.Kind,
) (*entities.Calculation, error) {
	log := logger.Log(ctx).With(zap.String("method", methodCreateCalculation), zap.String("type", string(kind)))

	calc, err := entities.NewCalculation(c.evaluator, callerID, a, b, kind)
	if err != nil {
		log.Debug(ctx, msgCalculationRejected, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxEvaluating, err)
	}

	if callerID != nil {
		if _, err := c.userRepo.FindByID(ctx, *callerID); err != nil {
			if errors.Is(err, entities.ErrUserNotFound) {
				log.Debug(ctx, msgOwnerMissing, zap.String("ownerID", *callerID))
				return nil, fmt.Errorf("%s: %w", errCtxCheckingOwner, entities.ErrOwnerNotFound)
			}
			log.Error(ctx, msgErrCheckingOwner, zap.Error(err))
			return nil, fmt.Errorf("%s: %w", errCtxCheckingOwner, err)
		}
	}

	created, err := c.calcRepo.Create(ctx, calc)
	if err != nil {
		log.Error(ctx, msgErrPersistingCalc, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxCreatingCalc, err)
	}

	c.cache.put(ctx, created)
	c.publish(ctx, events.TypeCalculationCreated, created)

	log.Info(ctx, msgCalculationCreated, zap.String("calculationID", created.ID))
	return created, nil
}

// Get возвращает вычисление, если оно видно вызывающему.
func (c *CalculationUseCaseImpl) Get(ctx context.Context, callerID *string, id string) (*entities.Calculation, error) {
	calc, err := c.load(ctx, methodGetCalculation, callerID, id)
	if err != nil {
		return nil, err
	}
	return calc, nil
}

// List возвращает страницу вычислений вызывающего.
func (c *CalculationUseCaseImpl) List(ctx context.Context, callerID *string, offset, limit int) (*api.CalculationPage, error) {
	log := logger.Log(ctx).With(zap.String("method", methodListCalculations))

	if offset < 0 {
		return nil, fmt.Errorf("%s: %w", errCtxValidatingPaginate, entities.ErrInvalidPagination)
	}
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}

	items, total, err := c.calcRepo.List(ctx, callerID, offset, limit)
	if err != nil {
		log.Error(ctx, msgErrListingCalcs, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxListingCalcs, err)
	}

	log.Debug(ctx, msgCalculationsListed, zap.Int("count", len(items)), zap.Int("total", total))
	return &api.CalculationPage{Items: items, Total: total, Offset: offset, Limit: limit}, nil
}

// Update объединяет частичный ввод с сохраненными операндами и пересчитывает результат.
func (c *CalculationUseCaseImpl) Update(
	ctx context.Context,
	callerID *string,
	id string,
	upd api.CalculationUpdate,
) (*entities.Calculation, error) {
	log := logger.Log(ctx).With(zap.String("method", methodUpdateCalculation), zap.String("calculationID", id))

	calc, err := c.load(ctx, methodUpdateCalculation, callerID, id)
	if err != nil {
		return nil, err
	}

	a, b, kind := calc.A, calc.B, calc.Kind
	if upd.A != nil {
		a = *upd.A
	}
	if upd.B != nil {
		b = *upd.B
	}
	if upd.Kind != nil {
		kind = *upd.Kind
	}

	if err := calc.Recalculate(c.evaluator, a, b, kind); err != nil {
		log.Debug(ctx, msgCalculationRejected, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxEvaluating, err)
	}

	updated, err := c.calcRepo.Update(ctx, calc)
	if err != nil {
		log.Error(ctx, msgErrPersistingCalc, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxUpdatingCalc, err)
	}

	c.cache.put(ctx, updated)
	c.publish(ctx, events.TypeCalculationUpdated, updated)

	log.Info(ctx, msgCalculationUpdated)
	return updated, nil
}

// Delete удаляет вычисление, видимое вызывающему.
func (c *CalculationUseCaseImpl) Delete(ctx context.Context, callerID *string, id string) error {
	log := logger.Log(ctx).With(zap.String("method", methodDeleteCalculation), zap.String("calculationID", id))

	calc, err := c.load(ctx, methodDeleteCalculation, callerID, id)
	if err != nil {
		return err
	}

	if err := c.calcRepo.Delete(ctx, id); err != nil {
		log.Debug(ctx, msgErrDeletingCalc, zap.Error(err))
		return fmt.Errorf("%s: %w", errCtxDeletingCalc, err)
	}

	c.cache.evict(ctx, id)
	c.publish(ctx, events.TypeCalculationDeleted, calc)

	log.Info(ctx, msgCalculationDeleted)
	return nil
}

// load читает вычисление из кэша или хранилища и проверяет видимость.
// Чужие вычисления неотличимы от отсутствующих.
func (c *CalculationUseCaseImpl) load(ctx context.Context, method string, callerID *string, id string) (*entities.Calculation, error) {
	log := logger.Log(ctx).With(zap.String("method", method), zap.String("calculationID", id))

	if id == "" {
		return nil, fmt.Errorf("%s: %w", errCtxLoadingCalc, entities.ErrEmptyCalculationID)
	}

	if cached := c.cache.get(ctx, id); cached != nil {
		if !cached.OwnedBy(callerID) {
			log.Debug(ctx, msgCalculationHidden)
			return nil, fmt.Errorf("%s: %w", errCtxLoadingCalc, entities.ErrCalculationNotFound)
		}
		log.Debug(ctx, msgCalculationCacheHit)
		return cached, nil
	}

	calc, err := c.calcRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, entities.ErrCalculationNotFound) {
			return nil, fmt.Errorf("%s: %w", errCtxLoadingCalc, err)
		}
		log.Error(ctx, msgErrLoadingCalc, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxLoadingCalc, err)
	}

	if !calc.OwnedBy(callerID) {
		log.Debug(ctx, msgCalculationHidden)
		return nil, fmt.Errorf("%s: %w", errCtxLoadingCalc, entities.ErrCalculationNotFound)
	}

	c.cache.put(ctx, calc)
	return calc, nil
}

// publish отправляет событие. Ошибка только логируется.
func (c *CalculationUseCaseImpl) publish(ctx context.Context, eventType string, calc *entities.Calculation) {
	event := events.CalculationEvent{
		ID:            uuid.NewString(),
		Type:          eventType,
		CalculationID: calc.ID,
		OwnerID:       calc.OwnerID,
		A:             calc.A,
		B:             calc.B,
		Operation:     string(calc.Kind),
		Result:        calc.Result,
		OccurredAt:    time.Now().UTC(),
	}

	if err := c.publisher.Publish(ctx, event); err != nil {
		logger.Log(ctx).Warn(ctx, msgPublishFailed,
			zap.String("type", eventType),
			zap.String("calculationID", calc.ID),
			zap.Error(err))
	}
}

type discardPublisher struct{}

func (discardPublisher) Publish(context.Context, events.CalculationEvent) error { return nil }

func (discardPublisher) Close() error { return nil }
