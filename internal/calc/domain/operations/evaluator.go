package operations

// Evaluator вычисляет результат операции по реестру. Не хранит состояния.
type Evaluator struct {
	registry *Registry
}

// NewEvaluator создает вычислитель. nil означает реестр по умолчанию.
func NewEvaluator(registry *Registry) *Evaluator {
	if registry == nil {
		registry = DefaultRegistry()
	}
	return &Evaluator{registry: registry}
}

// Registry возвращает реестр, с которым работает вычислитель.
func (e *Evaluator) Registry() *Registry {
	return e.registry
}

// Evaluate разрешает операцию, проверяет делитель и применяет функцию.
// Переполнение не считается ошибкой: ±Inf возвращается как есть.
func (e *Evaluator) Evaluate(a, b float64, kind Kind) (float64, error) {
	entry, err := e.registry.lookup(kind)
	if err != nil {
		return 0, err
	}

	// -0 == 0 в IEEE-754, поэтому отрицательный ноль тоже отклоняется.
	if entry.NonZeroDivisor && b == 0 {
		return 0, ErrDivisionByZero
	}

	return entry.Fn(a, b), nil
}
