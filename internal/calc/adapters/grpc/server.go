// Package grpc предоставляет служебный gRPC сервер сервиса вычислений:
// стандартный health сервис и reflection.
package grpc

import (
	"context"
	"fmt"
	"net"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"gocalc/internal/calc/config"
	"gocalc/pkg/logger"
)

// ServiceName - имя сервиса в health протоколе.
const ServiceName = "gocalc.Calculations"

// Константы для логирования.
const (
	LogServerStarting = "Starting gRPC server"
	LogServerStarted  = "gRPC server started"
	LogServerStopping = "Stopping gRPC server"
	LogServerStopped  = "gRPC server stopped"
	LogForcedStop     = "gRPC graceful stop timed out, forcing"
	ErrServerStart    = "failed to start gRPC server"
	ErrServerServe    = "gRPC server stopped serving"
)

// Server представляет gRPC сервер.
type Server struct {
	cfg    *config.GRPCConfig
	server *grpc.Server
	health *health.Server
}

// New создает новый экземпляр gRPC сервера с health и reflection.
func New(cfg *config.GRPCConfig) *Server {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(
		RequestIDInterceptor(),
		LoggingInterceptor(),
	))

	hs := health.NewServer()
	healthpb.RegisterHealthServer(srv, hs)
	reflection.Register(srv)

	hs.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)

	return &Server{cfg: cfg, server: srv, health: hs}
}

// Start открывает TCP порт из конфигурации и запускает обслуживание.
func (s *Server) Start(ctx context.Context) error {
	log := logger.Log(ctx)
	address := s.cfg.GetAddress()

	log.Info(ctx, LogServerStarting, zap.String("address", address))

	listener, err := net.Listen("tcp", address)
	if err != nil {
		log.Error(ctx, ErrServerStart, zap.Error(err))
		return fmt.Errorf("%s: %w", ErrServerStart, err)
	}

	s.Serve(ctx, listener)
	log.Info(ctx, LogServerStarted, zap.String("address", listener.Addr().String()))
	return nil
}

// Serve обслуживает listener в отдельной горутине и переводит статус в SERVING.
func (s *Server) Serve(ctx context.Context, listener net.Listener) {
	go func() {
		if err := s.server.Serve(listener); err != nil {
			logger.Log(ctx).Error(ctx, ErrServerServe, zap.Error(err))
		}
	}()

	s.health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	s.health.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
}

// Stop переводит статус в NOT_SERVING и останавливает сервер.
// Если ctx истекает раньше, активные вызовы прерываются.
func (s *Server) Stop(ctx context.Context) error {
	log := logger.Log(ctx)
	log.Info(ctx, LogServerStopping)

	s.health.Shutdown()

	done := make(chan struct{})
	go func() {
		s.server.GracefulStop()
		close(done)
	}()

	select {
	case <-done:
		log.Info(ctx, LogServerStopped)
		return nil
	case <-ctx.Done():
		log.Warn(ctx, LogForcedStop)
		s.server.Stop()
		return ctx.Err()
	}
}

// RegisterService регистрирует дополнительный gRPC сервис.
func (s *Server) RegisterService(registerFn func(server *grpc.Server)) {
	registerFn(s.server)
}
