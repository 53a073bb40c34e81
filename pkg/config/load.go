// Package config предоставляет функциональность для загрузки конфигурации из переменных окружения.
package config

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"gocalc/pkg/logger"
)

const (
	msgLoadingConfiguration    = "loading configuration"
	msgConfigurationLoaded     = "configuration loaded successfully"
	msgFailedLoadConfiguration = "failed to load configuration"
	msgEnvFileMissing          = "env file not found, using environment only"

	errFailedLoadConfiguration = "failed to load configuration"

	attrService = "service"
	attrPath    = "path"
)

// Load читает конфигурацию типа T. Если envFile существует, его значения дополняют
// окружение: уже заданные переменные окружения имеют приоритет над файлом.
func Load[T any](ctx context.Context, serviceName, envFile string) (*T, error) {
	log := logger.Log(ctx).With(zap.String(attrService, serviceName))
	log.Info(ctx, msgLoadingConfiguration, zap.String(attrPath, envFile))

	if envFile != "" {
		switch err := godotenv.Load(envFile); {
		case err == nil:
		case errors.Is(err, os.ErrNotExist):
			log.Debug(ctx, msgEnvFileMissing, zap.String(attrPath, envFile))
		default:
			log.Error(ctx, msgFailedLoadConfiguration, zap.Error(err))
			return nil, fmt.Errorf("%s: %w", errFailedLoadConfiguration, err)
		}
	}

	var cfg T
	err := cleanenv.ReadEnv(&cfg)
	if err != nil {
		log.Error(ctx, msgFailedLoadConfiguration, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errFailedLoadConfiguration, err)
	}

	log.Info(ctx, msgConfigurationLoaded)
	return &cfg, nil
}
