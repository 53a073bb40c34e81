package api

import (
	"context"

	"gocalc/internal/calc/domain/entities"
)

// UserUseCase определяет операции над профилем пользователя.
type UserUseCase interface {
	GetUserProfile(ctx context.Context, userID string) (*entities.User, error)

	DeleteUser(ctx context.Context, userID string) error
}
