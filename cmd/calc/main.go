// Package main реализует точку входа сервиса вычислений.
package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	calccache "gocalc/internal/calc/adapters/cache"
	"gocalc/internal/calc/adapters/events"
	"gocalc/internal/calc/adapters/gormstore"
	"gocalc/internal/calc/adapters/grpc"
	calchttp "gocalc/internal/calc/adapters/http"
	"gocalc/internal/calc/adapters/postgres"
	"gocalc/internal/calc/adapters/services"
	"gocalc/internal/calc/app"
	"gocalc/internal/calc/config"
	"gocalc/internal/calc/domain/operations"
	"gocalc/internal/calc/ports/cache"
	portevents "gocalc/internal/calc/ports/events"
	"gocalc/internal/calc/ports/repositories"
	"gocalc/internal/resilience"
	pgdb "gocalc/pkg/db/postgres"
	redisdb "gocalc/pkg/db/redis"
	"gocalc/pkg/logger"
	"gocalc/pkg/shutdown"
)

// Константы для переменных окружения.
const (
	EnvLoggerMode  = "CALC_LOGGER_MODE"
	EnvLoggerLevel = "CALC_LOGGER_LEVEL"
	EnvConfigFile  = "CALC_CONFIG_FILE"

	defaultConfigFile    = ".env"
	tokenCleanupInterval = time.Hour
)

// Константы для сообщений об ошибках.
const (
	ErrInitLogger           = "failed to initialize logger"
	ErrSyncLogger           = "failed to sync logger"
	ErrLoadConfig           = "failed to load configuration"
	ErrInitLoggerWithConfig = "failed to initialize logger with configuration settings"
	ErrInitStorage          = "failed to initialize storage"
	ErrInitRedis            = "failed to connect to redis, cache disabled"
	ErrStartGRPC            = "failed to start gRPC server"
	ErrListenHTTP           = "failed to listen HTTP address"
	ErrServeHTTP            = "HTTP server stopped with error"
	ErrCleanupTokens        = "failed to clean up expired refresh tokens"
	ErrUnknownDriver        = "unknown storage driver"
)

// Константы для игнорируемых ошибок.
const (
	ErrSyncStderr = "sync /dev/stderr: invalid argument"
	ErrSyncStdout = "sync /dev/stdout: invalid argument"
)

// Константы для сообщений сервиса.
const (
	LogServiceStarted      = "calc service started"
	LogServiceShutdownDone = "calc service shutdown complete"
	LogInitStorage         = "initializing storage"
	LogInitCache           = "initializing redis cache"
	LogInitEvents          = "initializing kafka publisher"
	LogInitServices        = "initializing services"
	LogInitUseCases        = "initializing use cases"
	LogStartingHTTP        = "starting HTTP server"
	LogStartingGRPC        = "starting gRPC server"
	LogClosingStorage      = "closing storage"
	LogClosingCache        = "closing cache"
	LogClosingEvents       = "closing kafka publisher"
	LogStoppingHTTP        = "stopping HTTP server"
	LogStoppingGRPC        = "stopping gRPC server"
	LogTokensCleaned       = "expired refresh tokens cleaned up"
)

// storage объединяет фабрику репозиториев и функцию закрытия соединений.
type storage struct {
	repositories.RepositoryFactory
	close func(ctx context.Context) error
}

func main() {
	env := logger.Development
	if strings.ToLower(os.Getenv(EnvLoggerMode)) == "production" {
		env = logger.Production
	}

	log, err := logger.NewLogger(env, os.Getenv(EnvLoggerLevel))
	if err != nil {
		panic(ErrInitLogger + ": " + err.Error())
	}

	logger.SetGlobalLogger(log)

	ctx := logger.NewRequestIDContext(context.Background(), "")

	var exitCode int

	func() {
		defer func() {
			if err := log.Sync(); err != nil {
				errMsg := err.Error()
				if strings.Contains(errMsg, ErrSyncStderr) || strings.Contains(errMsg, ErrSyncStdout) {
					return
				}
				if _, writeErr := fmt.Fprintf(os.Stderr, "%s: %v\n", ErrSyncLogger, err); writeErr != nil {
					panic(writeErr)
				}
			}
		}()

		configFile := os.Getenv(EnvConfigFile)
		if configFile == "" {
			configFile = defaultConfigFile
		}

		cfg, err := config.Load(ctx, configFile)
		if err != nil {
			log.Error(ctx, ErrLoadConfig, zap.Error(err))
			exitCode = 1
			return
		}

		finalLogger, err := logger.NewLogger(cfg.Logging.GetEnvironment(), cfg.Logging.Level)
		if err != nil {
			log.Error(ctx, ErrInitLoggerWithConfig, zap.Error(err))
			exitCode = 1
			return
		}
		logger.SetGlobalLogger(finalLogger)
		log = finalLogger

		log.Info(ctx, LogInitStorage, zap.String("driver", cfg.Storage.Driver))
		store, err := openStorage(ctx, cfg)
		if err != nil {
			log.Error(ctx, ErrInitStorage, zap.Error(err))
			exitCode = 1
			return
		}

		checks := map[string]calchttp.HealthCheck{"database": store.Ping}
		hooks := []shutdown.Hook{func(ctx context.Context) error {
			log.Info(ctx, LogClosingStorage)
			return store.close(ctx)
		}}

		var calcCache cache.Cache
		if cfg.Redis.Enabled {
			log.Info(ctx, LogInitCache)
			client, err := redisdb.NewClient(ctx, cfg.Redis.ClientConfig())
			if err != nil {
				log.Warn(ctx, ErrInitRedis, zap.Error(err))
			} else {
				calcCache = calccache.NewResilientCache(
					calccache.NewRedisCache(client, cfg.Redis.DefaultTTL),
					resilience.NewPolicy("redis"),
				)
				checks["cache"] = calcCache.Ping
				hooks = append(hooks, func(ctx context.Context) error {
					log.Info(ctx, LogClosingCache)
					return calcCache.Close()
				})
			}
		}

		var publisher portevents.Publisher
		if cfg.Kafka.Enabled {
			log.Info(ctx, LogInitEvents, zap.Strings("brokers", cfg.Kafka.GetBrokers()), zap.String("topic", cfg.Kafka.Topic))
			retry := resilience.DefaultRetryConfig()
			if cfg.Kafka.MaxRetries > 0 {
				retry.MaxAttempts = cfg.Kafka.MaxRetries
			}
			kafkaPublisher := events.NewKafkaPublisher(
				events.NewKafkaWriter(cfg.Kafka.GetBrokers(), cfg.Kafka.Topic, cfg.Kafka.WriteTimeout),
				resilience.NewPolicyWithConfig("kafka", resilience.DefaultCircuitBreakerConfig(), retry),
				cfg.Kafka.WriteTimeout,
			)
			publisher = kafkaPublisher
			hooks = append(hooks, func(ctx context.Context) error {
				log.Info(ctx, LogClosingEvents)
				return kafkaPublisher.Close()
			})
		}

		log.Info(ctx, LogInitServices)
		serviceFactory := services.NewServiceFactory(
			cfg.JWT.SecretKey,
			cfg.JWT.GetAccessTokenTTL(),
			cfg.JWT.GetRefreshTokenTTL(),
			cfg.JWT.BCryptCost,
		)

		log.Info(ctx, LogInitUseCases)
		authUseCase := app.NewAuthUseCase(store.UserRepository(), store.TokenRepository(),
			serviceFactory.PasswordService(), serviceFactory.TokenService())
		userUseCase := app.NewUserUseCase(store.UserRepository(), store.CalculationRepository(),
			calcCache, cfg.Redis.DefaultTTL)
		calcUseCase := app.NewCalculationUseCase(app.CalculationDeps{
			Evaluator: operations.NewEvaluator(operations.DefaultRegistry()),
			CalcRepo:  store.CalculationRepository(),
			UserRepo:  store.UserRepository(),
			Cache:     calcCache,
			CacheTTL:  cfg.Redis.DefaultTTL,
			Publisher: publisher,
		})

		registry := prometheus.NewRegistry()
		registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

		httpApp := calchttp.NewApp(calchttp.Deps{
			Auth:         authUseCase,
			Users:        userUseCase,
			Calculations: calcUseCase,
			Tokens:       serviceFactory.TokenService(),
			Checks:       checks,
			Registry:     registry,
			Config: fiber.Config{
				AppName:      "gocalc",
				ReadTimeout:  cfg.HTTP.ReadTimeout,
				WriteTimeout: cfg.HTTP.WriteTimeout,
			},
		})

		log.Info(ctx, LogStartingHTTP, zap.String("address", cfg.HTTP.GetAddress()))
		httpDone, err := serveHTTP(httpApp, cfg.HTTP.GetAddress())
		if err != nil {
			log.Error(ctx, ErrListenHTTP, zap.Error(err))
			shutdown.Run(ctx, cfg.Shutdown.GetTimeout(), hooks...)
			exitCode = 1
			return
		}

		log.Info(ctx, LogStartingGRPC)
		grpcServer := grpc.New(&cfg.GRPC)
		if err := grpcServer.Start(ctx); err != nil {
			log.Error(ctx, ErrStartGRPC, zap.Error(err))
			_ = httpApp.ShutdownWithContext(ctx)
			shutdown.Run(ctx, cfg.Shutdown.GetTimeout(), hooks...)
			exitCode = 1
			return
		}

		runCtx, stopRun := context.WithCancel(ctx)
		defer stopRun()

		var serveFailed atomic.Bool
		go func() {
			if err := <-httpDone; err != nil {
				log.Error(ctx, ErrServeHTTP, zap.Error(err))
				serveFailed.Store(true)
				stopRun()
			}
		}()

		cleanupCtx, stopCleanup := context.WithCancel(ctx)
		go cleanupTokens(cleanupCtx, store.TokenRepository(), tokenCleanupInterval)

		log.Info(ctx, LogServiceStarted,
			zap.String("environment", string(cfg.Logging.GetEnvironment())),
			zap.String("log_level", cfg.Logging.Level),
			zap.String("startup_time", time.Now().Format(time.RFC3339)))

		stopServers := []shutdown.Hook{
			func(ctx context.Context) error {
				log.Info(ctx, LogStoppingHTTP)
				return httpApp.ShutdownWithContext(ctx)
			},
			func(ctx context.Context) error {
				log.Info(ctx, LogStoppingGRPC)
				stopCleanup()
				return grpcServer.Stop(ctx)
			},
		}

		shutdown.Wait(runCtx, cfg.Shutdown.GetTimeout(), stopServers...)
		shutdown.Run(ctx, cfg.Shutdown.GetTimeout(), hooks...)

		if serveFailed.Load() {
			exitCode = 1
		}

		log.Info(ctx, LogServiceShutdownDone)
	}()

	if exitCode != 0 {
		os.Exit(exitCode)
	}
}

// openStorage открывает хранилище выбранного драйвера и готовит схему.
func openStorage(ctx context.Context, cfg *config.Config) (*storage, error) {
	switch cfg.Storage.Driver {
	case config.DriverPostgres:
		if err := pgdb.MigrateDSN(ctx, cfg.Postgres.GetConnectionURL(), cfg.Postgres.MigrationsPath); err != nil {
			return nil, err
		}
		database, err := pgdb.New(ctx, cfg.Postgres.GetDSN(), cfg.Postgres.MinConn, cfg.Postgres.MaxConn)
		if err != nil {
			return nil, err
		}
		return &storage{
			RepositoryFactory: postgres.NewRepositoryFactory(database.Pool()),
			close: func(ctx context.Context) error {
				database.Close(ctx)
				return nil
			},
		}, nil

	case config.DriverGorm, config.DriverSQLite:
		var (
			store *gormstore.Store
			err   error
		)
		if cfg.Storage.Driver == config.DriverGorm {
			store, err = gormstore.OpenPostgres(ctx, cfg.Postgres.GetDSN())
		} else {
			store, err = gormstore.OpenSQLite(ctx, cfg.Storage.SQLitePath)
		}
		if err != nil {
			return nil, err
		}
		if err := store.AutoMigrate(ctx); err != nil {
			_ = store.Close()
			return nil, err
		}
		return &storage{
			RepositoryFactory: store,
			close:             func(context.Context) error { return store.Close() },
		}, nil
	}

	return nil, errors.New(ErrUnknownDriver + ": " + cfg.Storage.Driver)
}

// serveHTTP занимает addr и обслуживает app в отдельной горутине.
// Ошибка занятия адреса возвращается сразу, результат работы сервера приходит в канал.
func serveHTTP(app *fiber.App, addr string) (<-chan error, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", ErrListenHTTP, addr, err)
	}

	done := make(chan error, 1)
	go func() {
		done <- app.Listener(ln, fiber.ListenConfig{DisableStartupMessage: true})
	}()

	return done, nil
}

// cleanupTokens периодически удаляет истекшие refresh токены до отмены ctx.
func cleanupTokens(ctx context.Context, tokens repositories.TokenRepository, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := tokens.CleanupExpiredTokens(ctx); err != nil {
				logger.Log(ctx).Warn(ctx, ErrCleanupTokens, zap.Error(err))
				continue
			}
			logger.Log(ctx).Debug(ctx, LogTokensCleaned)
		}
	}
}
