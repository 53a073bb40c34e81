// Package main создает схему сервиса вычислений через gorm AutoMigrate.
// Используется для локального развертывания без golang-migrate.
package main

import (
	"context"
	"os"

	"go.uber.org/zap"

	"gocalc/internal/calc/adapters/gormstore"
	"gocalc/internal/calc/config"
	"gocalc/pkg/logger"
)

const (
	envConfigFile = "CALC_CONFIG_FILE"

	msgConnectFailed = "failed to connect database"
	msgMigrateFailed = "failed to auto-migrate schema"
	msgMigrated      = "schema migrated"
)

func main() {
	if err := logger.InitGlobalLogger(logger.Development); err != nil {
		panic(err)
	}
	ctx := logger.NewRequestIDContext(context.Background(), "")
	log := logger.Log(ctx)

	cfg, err := config.Load(ctx, os.Getenv(envConfigFile))
	if err != nil {
		log.Fatal(ctx, msgConnectFailed, zap.Error(err))
	}

	var store *gormstore.Store
	if cfg.Storage.Driver == config.DriverSQLite {
		store, err = gormstore.OpenSQLite(ctx, cfg.Storage.SQLitePath)
	} else {
		store, err = gormstore.OpenPostgres(ctx, cfg.Postgres.GetDSN())
	}
	if err != nil {
		log.Fatal(ctx, msgConnectFailed, zap.Error(err))
	}
	defer func() { _ = store.Close() }()

	if err := store.AutoMigrate(ctx); err != nil {
		log.Error(ctx, msgMigrateFailed, zap.Error(err))
		return
	}
	log.Info(ctx, msgMigrated, zap.String("driver", cfg.Storage.Driver))
}
