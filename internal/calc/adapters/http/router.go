// Package http содержит компоненты для HTTP сервера.
package http

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"gocalc/internal/calc/adapters/http/calculations"
	"gocalc/internal/calc/adapters/http/dto"
	"gocalc/internal/calc/adapters/http/middleware"
	"gocalc/internal/calc/adapters/http/users"
	"gocalc/internal/calc/ports/api"
	"gocalc/internal/calc/ports/services"
	"gocalc/pkg/logger"
)

const healthTimeout = 2 * time.Second

// HealthCheck проверяет одну зависимость.
type HealthCheck func(ctx context.Context) error

// Deps - зависимости HTTP сервера.
type Deps struct {
	Auth         api.AuthUseCase
	Users        api.UserUseCase
	Calculations api.CalculationUseCase
	Tokens       services.TokenService
	// Checks опрашиваются в /health; имя попадает в ответ.
	Checks   map[string]HealthCheck
	Registry *prometheus.Registry
	Config   fiber.Config
}

// NewApp создает fiber-приложение с маршрутами API.
func NewApp(deps Deps) *fiber.App {
	cfg := deps.Config
	cfg.StructValidator = dto.StructValidator{}
	cfg.JSONEncoder = json.Marshal
	cfg.JSONDecoder = json.Unmarshal

	app := fiber.New(cfg)
	SetupRouter(app, deps)
	return app
}

// SetupRouter настраивает маршрутизацию для HTTP сервера.
func SetupRouter(app *fiber.App, deps Deps) {
	usersHandler := users.NewHandler(deps.Auth, deps.Users)
	calcHandler := calculations.NewHandler(deps.Calculations)

	registry := deps.Registry
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	metrics := middleware.NewMetrics(registry)

	// Middleware для всех запросов.
	app.Use(middleware.NewRequestIDMiddleware())
	app.Use(middleware.NewLoggerMiddleware())
	app.Use(middleware.NewRecoveryMiddleware())
	app.Use(metrics.Handler())

	app.Get("/health", healthHandler(deps.Checks))
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	// API версии 1.
	apiV1 := app.Group("/api/v1")

	userRoutes := apiV1.Group("/users")
	userRoutes.Post("/register", usersHandler.Register)
	userRoutes.Post("/login", usersHandler.Login)
	userRoutes.Post("/refresh", usersHandler.RefreshTokens)
	userRoutes.Post("/logout", usersHandler.Logout)
	userRoutes.Get("/me", usersHandler.GetProfile, middleware.NewAuthMiddleware(deps.Tokens))
	userRoutes.Delete("/me", usersHandler.DeleteProfile, middleware.NewAuthMiddleware(deps.Tokens))

	// Вычисления доступны анонимно; токен, если передан, должен быть действительным.
	calcRoutes := apiV1.Group("/calculations")
	calcRoutes.Get("/operations", calcHandler.Operations)
	calcRoutes.Use(middleware.NewOptionalAuthMiddleware(deps.Tokens))
	calcRoutes.Post("/", calcHandler.Create)
	calcRoutes.Get("/", calcHandler.List)
	calcRoutes.Get("/:id", calcHandler.Get)
	calcRoutes.Put("/:id", calcHandler.Update)
	calcRoutes.Patch("/:id", calcHandler.Update)
	calcRoutes.Delete("/:id", calcHandler.Delete)

	// Обработчик для несуществующих маршрутов.
	app.Use(func(c fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: "Route not found"})
	})
}

func healthHandler(checks map[string]HealthCheck) fiber.Handler {
	return func(c fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.Context(), healthTimeout)
		defer cancel()

		status := fiber.StatusOK
		results := make(map[string]string, len(checks))
		for name, check := range checks {
			if err := check(ctx); err != nil {
				logger.Log(ctx).Warn(ctx, "health check failed", zap.String("dependency", name), zap.Error(err))
				results[name] = err.Error()
				status = fiber.StatusServiceUnavailable
				continue
			}
			results[name] = "ok"
		}

		overall := "ok"
		if status != fiber.StatusOK {
			overall = "degraded"
		}
		return c.Status(status).JSON(fiber.Map{"status": overall, "checks": results})
	}
}
