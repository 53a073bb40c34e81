package config

import (
	"fmt"
)

// Поддерживаемые драйверы хранилища.
const (
	DriverPostgres = "postgres"
	DriverGorm     = "gorm"
	DriverSQLite   = "sqlite"
)

// PostgresConfig содержит настройки подключения к базе данных.
type PostgresConfig struct {
	Host           string `yaml:"host" env:"CALC_POSTGRES_HOST" env-default:"localhost"`
	Port           int    `yaml:"port" env:"CALC_POSTGRES_PORT" env-default:"5432"`
	User           string `yaml:"user" env:"CALC_POSTGRES_USER" env-default:"postgres"`
	Password       string `yaml:"password" env:"CALC_POSTGRES_PASSWORD" env-default:"postgres"`
	Database       string `yaml:"database" env:"CALC_POSTGRES_DB" env-default:"calc"`
	MinConn        int    `yaml:"min_conn" env:"CALC_POSTGRES_MIN_CONN" env-default:"1"`
	MaxConn        int    `yaml:"max_conn" env:"CALC_POSTGRES_MAX_CONN" env-default:"10"`
	MigrationsPath string `yaml:"migrations_path" env:"CALC_POSTGRES_MIGRATIONS_PATH" env-default:"file://migrations/calc"`
}

// GetDSN возвращает строку подключения к PostgreSQL.
func (p *PostgresConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		p.Host, p.Port, p.User, p.Password, p.Database)
}

// GetConnectionURL возвращает URL-строку подключения для миграций.
func (p *PostgresConfig) GetConnectionURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		p.User, p.Password, p.Host, p.Port, p.Database)
}

// StorageConfig выбирает реализацию репозиториев: pgx поверх миграций (postgres),
// gorm поверх того же PostgreSQL (gorm) или gorm поверх файла SQLite (sqlite).
type StorageConfig struct {
	Driver     string `yaml:"driver" env:"CALC_STORAGE_DRIVER" env-default:"postgres"`
	SQLitePath string `yaml:"sqlite_path" env:"CALC_STORAGE_SQLITE_PATH" env-default:"calc.db"`
}

// Validate проверяет имя драйвера.
func (s *StorageConfig) Validate() error {
	switch s.Driver {
	case DriverPostgres, DriverGorm, DriverSQLite:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownStorageDriver, s.Driver)
	}
}
