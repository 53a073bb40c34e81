package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"gocalc/internal/calc/domain/services"
	"gocalc/internal/calc/ports/repositories"
	"gocalc/pkg/logger"
)

const tokenColumns = "id, user_id, token, expires_at, created_at, is_revoked"

const (
	queryStoreToken = `INSERT INTO refresh_tokens (user_id, token, expires_at, is_revoked) VALUES ($1, $2, $3, $4)`
	queryFindToken  = `SELECT ` + tokenColumns + ` FROM refresh_tokens WHERE token = $1`
	queryRevokeOne  = `UPDATE refresh_tokens SET is_revoked = true WHERE token = $1`
	queryRevokeAll  = `UPDATE refresh_tokens SET is_revoked = true WHERE user_id = $1 AND is_revoked = false`
	queryCleanup    = `DELETE FROM refresh_tokens WHERE expires_at < NOW() OR is_revoked = true`
)

// TokenRepository хранит refresh токены в Postgres.
type TokenRepository struct {
	pool PgxPoolInterface
}

// NewTokenRepository создает новый экземпляр репозитория токенов.
func NewTokenRepository(pool PgxPoolInterface) repositories.TokenRepository {
	return &TokenRepository{pool: pool}
}

func (r *TokenRepository) log(ctx context.Context, method string) *logger.Logger {
	return logger.Log(ctx).With(zap.String("repository", "token"), zap.String("method", method))
}

// StoreRefreshToken сохраняет новый refresh токен.
func (r *TokenRepository) StoreRefreshToken(ctx context.Context, token *services.RefreshToken) error {
	_, err := r.pool.Exec(ctx, queryStoreToken, token.UserID, token.Token, token.ExpiresAt, token.IsRevoked)
	if err != nil {
		r.log(ctx, "StoreRefreshToken").Error(ctx, "error storing refresh token", zap.Error(err))
		return fmt.Errorf("error storing refresh token: %w", err)
	}
	return nil
}

// FindByToken находит токен по значению. Неизвестный токен дает ErrInvalidRefreshToken.
func (r *TokenRepository) FindByToken(ctx context.Context, token string) (*services.RefreshToken, error) {
	var rt services.RefreshToken
	err := r.pool.QueryRow(ctx, queryFindToken, token).
		Scan(&rt.ID, &rt.UserID, &rt.Token, &rt.ExpiresAt, &rt.CreatedAt, &rt.IsRevoked)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		r.log(ctx, "FindByToken").Debug(ctx, "token not found")
		return nil, services.ErrInvalidRefreshToken
	case err != nil:
		r.log(ctx, "FindByToken").Error(ctx, "error finding refresh token", zap.Error(err))
		return nil, fmt.Errorf("error querying refresh token: %w", err)
	}
	return &rt, nil
}

// RevokeToken отзывает refresh токен.
func (r *TokenRepository) RevokeToken(ctx context.Context, token string) error {
	affected, err := r.exec(ctx, "RevokeToken", queryRevokeOne, token)
	if err != nil {
		return fmt.Errorf("error revoking refresh token: %w", err)
	}
	if affected == 0 {
		return services.ErrInvalidRefreshToken
	}
	return nil
}

// RevokeAllUserTokens отзывает все активные токены пользователя.
func (r *TokenRepository) RevokeAllUserTokens(ctx context.Context, userID string) error {
	if _, err := r.exec(ctx, "RevokeAllUserTokens", queryRevokeAll, userID); err != nil {
		return fmt.Errorf("error revoking all user tokens: %w", err)
	}
	return nil
}

// CleanupExpiredTokens удаляет просроченные и отозванные токены.
func (r *TokenRepository) CleanupExpiredTokens(ctx context.Context) error {
	if _, err := r.exec(ctx, "CleanupExpiredTokens", queryCleanup); err != nil {
		return fmt.Errorf("error cleaning up expired tokens: %w", err)
	}
	return nil
}

func (r *TokenRepository) exec(ctx context.Context, method, query string, args ...any) (int64, error) {
	log := r.log(ctx, method)
	result, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		log.Error(ctx, "token statement failed", zap.Error(err))
		return 0, err
	}
	log.Debug(ctx, "token statement applied", zap.Int64("rows", result.RowsAffected()))
	return result.RowsAffected(), nil
}
