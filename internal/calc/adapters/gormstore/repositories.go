package gormstore

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"gocalc/internal/calc/domain/entities"
	"gocalc/internal/calc/domain/services"
	"gocalc/pkg/logger"
)

// UserRepository реализует repositories.UserRepository поверх GORM.
type UserRepository struct {
	db *gorm.DB
}

// Create создает пользователя. Нарушение уникальности уточняется повторным поиском по email.
func (r *UserRepository) Create(ctx context.Context, user *entities.User) (*entities.User, error) {
	log := logger.Log(ctx).With(zap.String("repository", "gorm.user"), zap.String("method", "Create"))

	model := userFromEntity(user)
	err := r.db.WithContext(ctx).Create(model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			var count int64
			r.db.WithContext(ctx).Model(&User{}).Where("email = ?", user.Email).Count(&count)
			if count > 0 {
				return nil, entities.ErrEmailAlreadyExists
			}
			return nil, entities.ErrUsernameAlreadyExists
		}
		log.Error(ctx, "error creating user", zap.Error(err))
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	return model.toEntity(), nil
}

// FindByID находит пользователя по ID.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*entities.User, error) {
	return r.first(ctx, "id = ?", id)
}

// FindByEmail находит пользователя по email.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*entities.User, error) {
	return r.first(ctx, "email = ?", email)
}

// FindByUsername находит пользователя по имени.
func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*entities.User, error) {
	return r.first(ctx, "username = ?", username)
}

func (r *UserRepository) first(ctx context.Context, cond string, arg string) (*entities.User, error) {
	var model User
	if err := r.db.WithContext(ctx).Where(cond, arg).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, entities.ErrUserNotFound
		}
		logger.Log(ctx).Error(ctx, "error finding user", zap.String("condition", cond), zap.Error(err))
		return nil, fmt.Errorf("error querying user: %w", err)
	}
	return model.toEntity(), nil
}

// Delete удаляет пользователя. Вычисления и токены удаляются внешними ключами.
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&User{ID: id})
	if result.Error != nil {
		logger.Log(ctx).Error(ctx, "error deleting user", zap.Error(result.Error))
		return fmt.Errorf("error deleting user: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return entities.ErrUserNotFound
	}
	return nil
}

// TokenRepository реализует repositories.TokenRepository поверх GORM.
type TokenRepository struct {
	db *gorm.DB
}

// StoreRefreshToken сохраняет refresh-токен.
func (r *TokenRepository) StoreRefreshToken(ctx context.Context, token *services.RefreshToken) error {
	model := &RefreshToken{
		UserID:    token.UserID,
		Token:     token.Token,
		ExpiresAt: token.ExpiresAt,
		IsRevoked: token.IsRevoked,
	}
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(model).Error; err != nil {
		logger.Log(ctx).Error(ctx, "error storing refresh token", zap.Error(err))
		return fmt.Errorf("error storing refresh token: %w", err)
	}
	return nil
}

// FindByToken находит токен по значению.
func (r *TokenRepository) FindByToken(ctx context.Context, token string) (*services.RefreshToken, error) {
	var model RefreshToken
	if err := r.db.WithContext(ctx).Where("token = ?", token).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, services.ErrInvalidRefreshToken
		}
		return nil, fmt.Errorf("error querying refresh token: %w", err)
	}
	return model.toEntity(), nil
}

// RevokeToken отзывает токен.
func (r *TokenRepository) RevokeToken(ctx context.Context, token string) error {
	result := r.db.WithContext(ctx).Model(&RefreshToken{}).Where("token = ?", token).Update("is_revoked", true)
	if result.Error != nil {
		return fmt.Errorf("error revoking refresh token: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return services.ErrInvalidRefreshToken
	}
	return nil
}

// RevokeAllUserTokens отзывает все активные токены пользователя.
func (r *TokenRepository) RevokeAllUserTokens(ctx context.Context, userID string) error {
	err := r.db.WithContext(ctx).Model(&RefreshToken{}).
		Where("user_id = ? AND is_revoked = ?", userID, false).
		Update("is_revoked", true).Error
	if err != nil {
		return fmt.Errorf("error revoking all user tokens: %w", err)
	}
	return nil
}

// CleanupExpiredTokens удаляет просроченные и отозванные токены.
func (r *TokenRepository) CleanupExpiredTokens(ctx context.Context) error {
	result := r.db.WithContext(ctx).
		Where("expires_at < ? OR is_revoked = ?", r.db.NowFunc(), true).
		Delete(&RefreshToken{})
	if result.Error != nil {
		return fmt.Errorf("error cleaning up expired tokens: %w", result.Error)
	}
	logger.Log(ctx).Info(ctx, "expired tokens cleaned up", zap.Int64("removed_count", result.RowsAffected))
	return nil
}

// CalculationRepository реализует repositories.CalculationRepository поверх GORM.
type CalculationRepository struct {
	db *gorm.DB
}

// Create сохраняет вычисление.
func (r *CalculationRepository) Create(ctx context.Context, calc *entities.Calculation) (*entities.Calculation, error) {
	model := calculationFromEntity(calc)
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(model).Error; err != nil {
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return nil, entities.ErrOwnerNotFound
		}
		logger.Log(ctx).Error(ctx, "error creating calculation", zap.Error(err))
		return nil, fmt.Errorf("error creating calculation: %w", err)
	}
	return model.toEntity(), nil
}

// FindByID находит вычисление по ID.
func (r *CalculationRepository) FindByID(ctx context.Context, id string) (*entities.Calculation, error) {
	var model Calculation
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, entities.ErrCalculationNotFound
		}
		return nil, fmt.Errorf("error querying calculation by id: %w", err)
	}
	return model.toEntity(), nil
}

func ownedBy(db *gorm.DB, ownerID *string) *gorm.DB {
	if ownerID == nil {
		return db.Where("user_id IS NULL")
	}
	return db.Where("user_id = ?", *ownerID)
}

// List возвращает страницу вычислений владельца и их общее количество.
func (r *CalculationRepository) List(
	ctx context.Context,
	ownerID *string,
	offset, limit int,
) ([]*entities.Calculation, int, error) {
	var total int64
	if err := ownedBy(r.db.WithContext(ctx).Model(&Calculation{}), ownerID).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("error counting calculations: %w", err)
	}

	var models []Calculation
	err := ownedBy(r.db.WithContext(ctx), ownerID).
		Order("created_at, id").
		Offset(offset).
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, 0, fmt.Errorf("error listing calculations: %w", err)
	}

	items := make([]*entities.Calculation, 0, len(models))
	for i := range models {
		items = append(items, models[i].toEntity())
	}
	return items, int(total), nil
}

// Update сохраняет новые операнды, вид и результат.
func (r *CalculationRepository) Update(ctx context.Context, calc *entities.Calculation) (*entities.Calculation, error) {
	result := r.db.WithContext(ctx).Model(&Calculation{ID: calc.ID}).Updates(map[string]any{
		"a":      calc.A,
		"b":      calc.B,
		"type":   string(calc.Kind),
		"result": calc.Result,
	})
	if result.Error != nil {
		return nil, fmt.Errorf("error updating calculation: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, entities.ErrCalculationNotFound
	}
	return r.FindByID(ctx, calc.ID)
}

// Delete удаляет вычисление.
func (r *CalculationRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&Calculation{ID: id})
	if result.Error != nil {
		return fmt.Errorf("error deleting calculation: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return entities.ErrCalculationNotFound
	}
	return nil
}

// ListIDsByOwner возвращает ID вычислений пользователя.
func (r *CalculationRepository) ListIDsByOwner(ctx context.Context, ownerID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&Calculation{}).Where("user_id = ?", ownerID).Pluck("id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("error listing calculation ids: %w", err)
	}
	return ids, nil
}
