package postgres

import (
	"context"

	"gocalc/internal/calc/ports/repositories"
)

// RepositoryFactory создает все необходимые репозитории для работы с PostgreSQL.
type RepositoryFactory struct {
	pool     PgxPoolInterface
	userRepo repositories.UserRepository
	token    repositories.TokenRepository
	calcRepo repositories.CalculationRepository
}

// NewRepositoryFactory создает новую фабрику репозиториев.
func NewRepositoryFactory(pool PgxPoolInterface) *RepositoryFactory {
	return &RepositoryFactory{
		pool:     pool,
		userRepo: NewUserRepository(pool),
		token:    NewTokenRepository(pool),
		calcRepo: NewCalculationRepository(pool),
	}
}

// UserRepository возвращает репозиторий пользователей.
func (f *RepositoryFactory) UserRepository() repositories.UserRepository {
	return f.userRepo
}

// TokenRepository возвращает репозиторий токенов.
func (f *RepositoryFactory) TokenRepository() repositories.TokenRepository {
	return f.token
}

// CalculationRepository возвращает репозиторий вычислений.
func (f *RepositoryFactory) CalculationRepository() repositories.CalculationRepository {
	return f.calcRepo
}

// Ping проверяет соединение с базой данных.
func (f *RepositoryFactory) Ping(ctx context.Context) error {
	return f.pool.Ping(ctx)
}

var _ repositories.RepositoryFactory = (*RepositoryFactory)(nil)
