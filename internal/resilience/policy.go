package resilience

import (
	"context"

	"go.uber.org/zap"

	"gocalc/pkg/logger"
)

// Policy объединяет circuit breaker и повторные попытки для одной зависимости.
type Policy struct {
	name           string
	circuitBreaker *CircuitBreaker
	retry          *Retry
}

// NewPolicy создает политику с настройками по умолчанию.
func NewPolicy(name string) *Policy {
	return NewPolicyWithConfig(name, DefaultCircuitBreakerConfig(), DefaultRetryConfig())
}

// NewPolicyWithConfig создает политику с явными настройками.
func NewPolicyWithConfig(name string, cb CircuitBreakerConfig, retry RetryConfig) *Policy {
	return &Policy{
		name:           name,
		circuitBreaker: NewCircuitBreaker(name, cb),
		retry:          NewRetry(name, retry),
	}
}

// State возвращает состояние circuit breaker политики.
func (p *Policy) State() CircuitState {
	return p.circuitBreaker.GetState()
}

// Execute выполняет операцию под защитой политики.
// Серия повторов считается для circuit breaker одной попыткой.
func (p *Policy) Execute(ctx context.Context, operationName string, operation func(context.Context) error) error {
	logger.Log(ctx).Debug(ctx, "executing operation with resilience",
		zap.String("dependency", p.name),
		zap.String("operation", operationName))

	return p.circuitBreaker.Execute(ctx, func() error {
		return p.retry.Execute(ctx, func() error {
			return operation(ctx)
		})
	})
}

// Do выполняет операцию с результатом под защитой политики.
func Do[T any](ctx context.Context, p *Policy, operationName string, operation func(context.Context) (T, error)) (T, error) {
	var result T
	err := p.Execute(ctx, operationName, func(ctx context.Context) error {
		var err error
		result, err = operation(ctx)
		return err
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return result, nil
}
