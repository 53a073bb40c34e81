package repositories

import (
	"context"

	"gocalc/internal/calc/domain/entities"
)

// CalculationRepository определяет операции хранения вычислений.
// Отсутствующая запись дает entities.ErrCalculationNotFound.
type CalculationRepository interface {
	// Create сохраняет вычисление и заполняет ID и временные метки.
	Create(ctx context.Context, calc *entities.Calculation) (*entities.Calculation, error)

	FindByID(ctx context.Context, id string) (*entities.Calculation, error)

	// List возвращает вычисления владельца (nil - анонимные) и их общее количество.
	List(ctx context.Context, ownerID *string, offset, limit int) ([]*entities.Calculation, int, error)

	// Update сохраняет операнды, вид и результат.
	Update(ctx context.Context, calc *entities.Calculation) (*entities.Calculation, error)

	Delete(ctx context.Context, id string) error

	ListIDsByOwner(ctx context.Context, ownerID string) ([]string, error)
}

// RepositoryFactory создает репозитории для одного хранилища.
type RepositoryFactory interface {
	UserRepository() UserRepository
	TokenRepository() TokenRepository
	CalculationRepository() CalculationRepository
	Ping(ctx context.Context) error
}
