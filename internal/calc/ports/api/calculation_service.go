package api

import (
	"context"

	"gocalc/internal/calc/domain/entities"
	"gocalc/internal/calc/domain/operations"
)

// CalculationUpdate - частичное обновление; nil поле сохраняет прежнее значение.
type CalculationUpdate struct {
	A    *float64
	B    *float64
	Kind *operations.Kind
}

// CalculationPage - страница списка вычислений.
type CalculationPage struct {
	Items  []*entities.Calculation
	Total  int
	Offset int
	Limit  int
}

// CalculationUseCase определяет операции над вычислениями.
// callerID == nil означает анонимного вызывающего.
type CalculationUseCase interface {
	Create(ctx context.Context, callerID *string, a, b float64, kind operations.Kind) (*entities.Calculation, error)

	Get(ctx context.Context, callerID *string, id string) (*entities.Calculation, error)

	List(ctx context.Context, callerID *string, offset, limit int) (*CalculationPage, error)

	Update(ctx context.Context, callerID *string, id string, upd CalculationUpdate) (*entities.Calculation, error)

	Delete(ctx context.Context, callerID *string, id string) error

	SupportedOperations() []operations.Kind
}
