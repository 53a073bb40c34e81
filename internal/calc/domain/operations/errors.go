package operations

import (
	"errors"
	"fmt"
)

// Ошибки вычисления.
var (
	ErrUnsupportedOperation = errors.New("unsupported operation")
	ErrDivisionByZero       = errors.New("division by zero")
)

// UnsupportedOperationError сообщает, какой вид операции не найден в реестре.
type UnsupportedOperationError struct {
	Kind Kind
}

func (e *UnsupportedOperationError) Error() string {
	return fmt.Sprintf("%s: %q", ErrUnsupportedOperation, string(e.Kind))
}

// Is позволяет сравнивать через errors.Is(err, ErrUnsupportedOperation).
func (e *UnsupportedOperationError) Is(target error) bool {
	return target == ErrUnsupportedOperation
}
