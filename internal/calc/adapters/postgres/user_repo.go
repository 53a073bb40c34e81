package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"gocalc/internal/calc/domain/entities"
	"gocalc/internal/calc/ports/repositories"
	"gocalc/pkg/logger"
)

const userColumns = "id, email, username, password_hash, created_at, updated_at"

// UserRepository реализует интерфейс repositories.UserRepository для работы с Postgres.
type UserRepository struct {
	pool PgxPoolInterface
}

// NewUserRepository создает новый экземпляр репозитория пользователей.
func NewUserRepository(pool PgxPoolInterface) repositories.UserRepository {
	return &UserRepository{pool: pool}
}

func scanUser(row pgx.Row) (*entities.User, error) {
	var user entities.User
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.Username,
		&user.PasswordHash,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Create создает нового пользователя.
func (r *UserRepository) Create(ctx context.Context, user *entities.User) (*entities.User, error) {
	log := logger.Log(ctx).With(zap.String("repository", "user"), zap.String("method", "Create"))

	query := `
        INSERT INTO users (email, username, password_hash)
        VALUES ($1, $2, $3)
        RETURNING ` + userColumns

	created, err := scanUser(r.pool.QueryRow(ctx, query, user.Email, user.Username, user.PasswordHash))
	if err != nil {
		if pgErr, ok := pgError(err); ok && pgErr.Code == pgCodeUniqueViolation {
			switch pgErr.ConstraintName {
			case constraintUsersEmail:
				log.Debug(ctx, "email already registered")
				return nil, entities.ErrEmailAlreadyExists
			case constraintUsersUsername:
				log.Debug(ctx, "username already taken")
				return nil, entities.ErrUsernameAlreadyExists
			}
		}
		log.Error(ctx, "error creating user", zap.Error(err))
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	return created, nil
}

// FindByID находит пользователя по ID.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*entities.User, error) {
	return r.findOne(ctx, "FindByID", "id", id)
}

// FindByEmail находит пользователя по email.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*entities.User, error) {
	return r.findOne(ctx, "FindByEmail", "email", email)
}

// FindByUsername находит пользователя по имени.
func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*entities.User, error) {
	return r.findOne(ctx, "FindByUsername", "username", username)
}

// column всегда одна из констант вызывающих методов.
func (r *UserRepository) findOne(ctx context.Context, method, column, value string) (*entities.User, error) {
	log := logger.Log(ctx).With(zap.String("repository", "user"), zap.String("method", method))

	query := `SELECT ` + userColumns + ` FROM users WHERE ` + column + ` = $1`

	user, err := scanUser(r.pool.QueryRow(ctx, query, value))
	if err != nil {
		if notFound(err) {
			log.Debug(ctx, "user not found", zap.String(column, value))
			return nil, entities.ErrUserNotFound
		}
		log.Error(ctx, "error finding user", zap.String("by", column), zap.Error(err))
		return nil, fmt.Errorf("error querying user by %s: %w", column, err)
	}

	return user, nil
}

// Delete удаляет пользователя по ID. Вычисления и токены удаляются каскадно.
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	log := logger.Log(ctx).With(zap.String("repository", "user"), zap.String("method", "Delete"))

	result, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		log.Error(ctx, "error deleting user", zap.Error(err))
		return fmt.Errorf("error deleting user: %w", err)
	}

	if result.RowsAffected() == 0 {
		log.Debug(ctx, "user not found for deletion", zap.String("id", id))
		return entities.ErrUserNotFound
	}

	return nil
}
