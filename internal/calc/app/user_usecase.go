package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"gocalc/internal/calc/domain/entities"
	"gocalc/internal/calc/ports/api"
	"gocalc/internal/calc/ports/cache"
	"gocalc/internal/calc/ports/repositories"
	"gocalc/pkg/logger"
)

const (
	methodGetUserProfile = "GetUserProfile"
	methodDeleteUser     = "DeleteUser"

	msgRequestingProfile   = "requesting user profile"
	msgEmptyUserIDProvided = "empty user ID provided"
	msgProfileRetrieved    = "user profile successfully retrieved"
	msgUserDeleted         = "user and owned calculations deleted"

	msgErrFindingUserByID   = "failed to find user by ID"
	msgErrListingOwnedCalcs = "failed to list owned calculations"
	msgErrDeletingUser      = "failed to delete user"

	errCtxValidatingUserID = "validating user ID"
	errCtxFetchingProfile  = "fetching user profile"
	errCtxListingOwned     = "listing owned calculations"
	errCtxDeletingUser     = "deleting user"
)

// UserUseCaseImpl реализует интерфейс UserUseCase.
type UserUseCaseImpl struct {
	userRepo repositories.UserRepository
	calcRepo repositories.CalculationRepository
	cache    *calculationCache
}

// NewUserUseCase создает новый экземпляр сервиса пользователя.
// calcCache может быть nil.
func NewUserUseCase(
	userRepo repositories.UserRepository,
	calcRepo repositories.CalculationRepository,
	calcCache cache.Cache,
	cacheTTL time.Duration,
) api.UserUseCase {
	return &UserUseCaseImpl{
		userRepo: userRepo,
		calcRepo: calcRepo,
		cache:    &calculationCache{cache: calcCache, ttl: cacheTTL},
	}
}

// GetUserProfile получает профиль пользователя по ID.
func (u *UserUseCaseImpl) GetUserProfile(ctx context.Context, userID string) (*entities.User, error) {
	log := logger.Log(ctx).With(zap.String("method", methodGetUserProfile), zap.String("userID", userID))
	log.Debug(ctx, msgRequestingProfile)

	if userID == "" {
		log.Debug(ctx, msgEmptyUserIDProvided)
		return nil, fmt.Errorf("%s: %w", errCtxValidatingUserID, entities.ErrEmptyUserID)
	}

	user, err := u.userRepo.FindByID(ctx, userID)
	if err != nil {
		log.Debug(ctx, msgErrFindingUserByID, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxFetchingProfile, err)
	}

	log.Debug(ctx, msgProfileRetrieved)
	return user, nil
}

// DeleteUser удаляет пользователя. Хранилище каскадно удаляет его вычисления,
// здесь они дополнительно вытесняются из кэша.
func (u *UserUseCaseImpl) DeleteUser(ctx context.Context, userID string) error {
	log := logger.Log(ctx).With(zap.String("method", methodDeleteUser), zap.String("userID", userID))

	if userID == "" {
		log.Debug(ctx, msgEmptyUserIDProvided)
		return fmt.Errorf("%s: %w", errCtxValidatingUserID, entities.ErrEmptyUserID)
	}

	ids, err := u.calcRepo.ListIDsByOwner(ctx, userID)
	if err != nil {
		log.Error(ctx, msgErrListingOwnedCalcs, zap.Error(err))
		return fmt.Errorf("%s: %w", errCtxListingOwned, err)
	}

	if err := u.userRepo.Delete(ctx, userID); err != nil {
		log.Debug(ctx, msgErrDeletingUser, zap.Error(err))
		return fmt.Errorf("%s: %w", errCtxDeletingUser, err)
	}

	u.cache.evict(ctx, ids...)

	log.Info(ctx, msgUserDeleted, zap.Int("calculations", len(ids)))
	return nil
}
