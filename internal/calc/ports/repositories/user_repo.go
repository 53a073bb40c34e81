// Package repositories определяет порты хранилища.
package repositories

import (
	"context"

	"gocalc/internal/calc/domain/entities"
)

// UserRepository определяет операции хранения пользователей.
// Create возвращает entities.ErrEmailAlreadyExists или entities.ErrUsernameAlreadyExists
// при нарушении уникальности.
type UserRepository interface {
	Create(ctx context.Context, user *entities.User) (*entities.User, error)

	FindByID(ctx context.Context, id string) (*entities.User, error)

	FindByEmail(ctx context.Context, email string) (*entities.User, error)

	FindByUsername(ctx context.Context, username string) (*entities.User, error)

	// Delete удаляет пользователя вместе с его вычислениями и токенами.
	Delete(ctx context.Context, id string) error
}
