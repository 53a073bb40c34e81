package grpc

import (
	"context"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"gocalc/pkg/logger"
)

// MetadataRequestID - ключ метаданных с идентификатором запроса.
const MetadataRequestID = "x-request-id"

const (
	msgRPCHandled = "grpc request"
	msgRPCFailed  = "grpc request failed"
)

// RequestIDInterceptor берет идентификатор запроса из метаданных или создает новый,
// кладет его в контекст и возвращает клиенту в заголовке.
func RequestIDInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, _ *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		var requestID string
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if values := md.Get(MetadataRequestID); len(values) > 0 {
				requestID = values[0]
			}
		}

		ctx = logger.NewRequestIDContext(ctx, requestID)
		requestID, _ = logger.GetRequestID(ctx)
		_ = grpc.SetHeader(ctx, metadata.Pairs(MetadataRequestID, requestID))

		return handler(ctx, req)
	}
}

// LoggingInterceptor пишет метод, длительность и код ответа.
func LoggingInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)

		fields := []zap.Field{
			zap.String("method", info.FullMethod),
			zap.Duration("latency", time.Since(start)),
			zap.String("code", status.Code(err).String()),
		}
		if err != nil {
			logger.Log(ctx).Warn(ctx, msgRPCFailed, append(fields, zap.Error(err))...)
			return resp, err
		}
		logger.Log(ctx).Debug(ctx, msgRPCHandled, fields...)
		return resp, nil
	}
}
