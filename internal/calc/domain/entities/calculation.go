package entities

import (
	"errors"
	"fmt"
	"time"

	"gocalc/internal/calc/domain/operations"
)

// Ошибки домена вычислений.
var (
	ErrCalculationNotFound = errors.New("calculation not found")
	ErrOwnerNotFound       = errors.New("owner not found")
	ErrEmptyCalculationID  = errors.New("calculation ID cannot be empty")
	ErrInvalidPagination   = errors.New("offset must not be negative")
)

// Calculation - результат одной вычисленной операции.
// OwnerID == nil означает анонимное вычисление. Result вычисляется при создании
// или явном обновлении и никогда не пересчитывается при чтении.
type Calculation struct {
	ID        string
	OwnerID   *string
	A         float64
	B         float64
	Kind      operations.Kind
	Result    float64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewCalculation вычисляет результат и возвращает сущность только при успехе.
func NewCalculation(ev *operations.Evaluator, ownerID *string, a, b float64, kind operations.Kind) (*Calculation, error) {
	result, err := ev.Evaluate(a, b, kind)
	if err != nil {
		return nil, fmt.Errorf("evaluate %s: %w", kind, err)
	}
	return &Calculation{
		OwnerID: ownerID,
		A:       a,
		B:       b,
		Kind:    kind,
		Result:  result,
	}, nil
}

// Recalculate применяет новые операнды и вид операции. При ошибке сущность не меняется.
func (c *Calculation) Recalculate(ev *operations.Evaluator, a, b float64, kind operations.Kind) error {
	result, err := ev.Evaluate(a, b, kind)
	if err != nil {
		return fmt.Errorf("evaluate %s: %w", kind, err)
	}
	c.A, c.B, c.Kind, c.Result = a, b, kind, result
	return nil
}

// OwnedBy сообщает, видно ли вычисление вызывающему.
// Анонимные вычисления видны только анонимным вызывающим.
func (c *Calculation) OwnedBy(callerID *string) bool {
	if c.OwnerID == nil || callerID == nil {
		return c.OwnerID == nil && callerID == nil
	}
	return *c.OwnerID == *callerID
}
