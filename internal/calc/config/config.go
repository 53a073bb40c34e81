// Package config содержит конфигурацию сервиса вычислений.
package config

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	pkgconfig "gocalc/pkg/config"
	"gocalc/pkg/logger"
)

// ServiceName используется в логах загрузки конфигурации.
const ServiceName = "calc"

// Константы ошибок и сообщений для конфигурации.
const (
	LogConfigSummary    = "calc service configuration"
	ErrFailedLoadConfig = "failed to load calc configuration"
	ErrInvalidConfig    = "invalid calc configuration"
)

// Config представляет полную конфигурацию сервиса.
type Config struct {
	Postgres PostgresConfig `yaml:"postgres"`
	Storage  StorageConfig  `yaml:"storage"`
	HTTP     HTTPConfig     `yaml:"http"`
	GRPC     GRPCConfig     `yaml:"grpc"`
	JWT      JWTConfig      `yaml:"jwt"`
	Redis    RedisConfig    `yaml:"redis"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Logging  LoggingConfig  `yaml:"logging"`
	Shutdown ShutdownConfig `yaml:"shutdown"`
}

// Load загружает конфигурацию из envFile (если он есть) и переменных окружения.
func Load(ctx context.Context, envFile string) (*Config, error) {
	cfg, err := pkgconfig.Load[Config](ctx, ServiceName, envFile)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrFailedLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrInvalidConfig, err)
	}

	logger.Log(ctx).Info(ctx, LogConfigSummary,
		zap.String("storage_driver", cfg.Storage.Driver),
		zap.String("http_addr", cfg.HTTP.GetAddress()),
		zap.String("grpc_addr", cfg.GRPC.GetAddress()),
		zap.Bool("redis_enabled", cfg.Redis.Enabled),
		zap.Bool("kafka_enabled", cfg.Kafka.Enabled),
		zap.String("log_level", cfg.Logging.Level),
		zap.String("log_mode", cfg.Logging.Mode),
		zap.Int("shutdown_timeout_seconds", cfg.Shutdown.Timeout))

	return cfg, nil
}

// Validate проверяет согласованность значений.
func (c *Config) Validate() error {
	if err := c.Storage.Validate(); err != nil {
		return err
	}
	if c.JWT.SecretKey == "" {
		return ErrEmptyJWTSecret
	}
	return nil
}
