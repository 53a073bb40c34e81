// Package api определяет входные порты сервиса.
package api

import (
	"context"

	"gocalc/internal/calc/domain/entities"
	"gocalc/internal/calc/domain/services"
)

// AuthUseCase определяет операции учетных записей.
type AuthUseCase interface {
	Register(ctx context.Context, email, username, password string) (*entities.User, error)

	Login(ctx context.Context, username, password string) (*services.TokenPair, error)

	RefreshTokens(ctx context.Context, refreshToken string) (*services.TokenPair, error)

	Logout(ctx context.Context, refreshToken string) error
}
