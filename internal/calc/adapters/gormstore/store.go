package gormstore

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"gocalc/internal/calc/ports/repositories"
	"gocalc/pkg/logger"
)

const (
	sqliteMemory = ":memory:"

	errCtxOpen    = "failed to open gorm database"
	errCtxMigrate = "failed to migrate gorm models"
	errCtxPing    = "failed to ping gorm database"
)

// Store - фабрика репозиториев поверх одного *gorm.DB.
type Store struct {
	db *gorm.DB
}

// OpenPostgres открывает PostgreSQL через GORM.
func OpenPostgres(ctx context.Context, dsn string) (*Store, error) {
	return open(ctx, postgres.Open(dsn), false)
}

// OpenSQLite открывает файл SQLite (или ":memory:") с включенными внешними ключами.
func OpenSQLite(ctx context.Context, path string) (*Store, error) {
	dsn := "file:" + path + "?_foreign_keys=on"
	if path == sqliteMemory {
		dsn = "file::memory:?_foreign_keys=on"
	}
	return open(ctx, sqlite.Open(dsn), true)
}

func open(ctx context.Context, dialector gorm.Dialector, singleConn bool) (*Store, error) {
	log := logger.Log(ctx).With(zap.String("dialect", dialector.Name()))

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         gormlogger.Discard,
		TranslateError: true,
	})
	if err != nil {
		log.Error(ctx, errCtxOpen, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxOpen, err)
	}

	// Каждое соединение SQLite к :memory: видит свою базу.
	if singleConn {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", errCtxOpen, err)
		}
		sqlDB.SetMaxOpenConns(1)
	}

	log.Info(ctx, "gorm database opened")
	return &Store{db: db}, nil
}

// AutoMigrate создает или дополняет таблицы по моделям.
func (s *Store) AutoMigrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("%s: %w", errCtxMigrate, err)
	}
	logger.Log(ctx).Info(ctx, "gorm models migrated")
	return nil
}

// UserRepository возвращает репозиторий пользователей.
func (s *Store) UserRepository() repositories.UserRepository {
	return &UserRepository{db: s.db}
}

// TokenRepository возвращает репозиторий токенов.
func (s *Store) TokenRepository() repositories.TokenRepository {
	return &TokenRepository{db: s.db}
}

// CalculationRepository возвращает репозиторий вычислений.
func (s *Store) CalculationRepository() repositories.CalculationRepository {
	return &CalculationRepository{db: s.db}
}

// Ping проверяет соединение.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("%s: %w", errCtxPing, err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("%s: %w", errCtxPing, err)
	}
	return nil
}

// Close закрывает пул соединений.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

var _ repositories.RepositoryFactory = (*Store)(nil)
