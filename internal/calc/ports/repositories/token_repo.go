package repositories

import (
	"context"

	"gocalc/internal/calc/domain/services"
)

// TokenRepository определяет операции хранения refresh-токенов.
type TokenRepository interface {
	StoreRefreshToken(ctx context.Context, token *services.RefreshToken) error

	FindByToken(ctx context.Context, token string) (*services.RefreshToken, error)

	RevokeToken(ctx context.Context, token string) error

	RevokeAllUserTokens(ctx context.Context, userID string) error

	CleanupExpiredTokens(ctx context.Context) error
}
