// Package operations содержит реестр арифметических операций и вычислитель.
package operations

// Kind - символьное имя операции.
type Kind string

// Поддерживаемые виды операций.
const (
	Add      Kind = "Add"
	Subtract Kind = "Subtract"
	Multiply Kind = "Multiply"
	Divide   Kind = "Divide"
)

// BinaryFunc - чистая функция двух аргументов.
type BinaryFunc func(a, b float64) float64

// Entry описывает одну операцию реестра.
// NonZeroDivisor требует от вычислителя отклонять b == 0 до вызова Fn.
type Entry struct {
	Kind           Kind
	Fn             BinaryFunc
	NonZeroDivisor bool
}

// Registry - неизменяемое отображение вида операции в функцию.
// После создания не модифицируется и безопасен для параллельного использования.
type Registry struct {
	order   []Kind
	entries map[Kind]Entry
}

// DefaultEntries возвращает четыре базовые операции в фиксированном порядке.
func DefaultEntries() []Entry {
	return []Entry{
		{Kind: Add, Fn: func(a, b float64) float64 { return a + b }},
		{Kind: Subtract, Fn: func(a, b float64) float64 { return a - b }},
		{Kind: Multiply, Fn: func(a, b float64) float64 { return a * b }},
		{Kind: Divide, Fn: func(a, b float64) float64 { return a / b }, NonZeroDivisor: true},
	}
}

// NewRegistry строит реестр из записей. Порядок записей сохраняется,
// повторное объявление вида заменяет функцию, не меняя позиции.
func NewRegistry(entries ...Entry) *Registry {
	r := &Registry{
		order:   make([]Kind, 0, len(entries)),
		entries: make(map[Kind]Entry, len(entries)),
	}
	for _, e := range entries {
		if _, exists := r.entries[e.Kind]; !exists {
			r.order = append(r.order, e.Kind)
		}
		r.entries[e.Kind] = e
	}
	return r
}

var defaultRegistry = NewRegistry(DefaultEntries()...)

// DefaultRegistry возвращает общий реестр базовых операций.
func DefaultRegistry() *Registry {
	return defaultRegistry
}

// Resolve возвращает функцию для вида операции.
func (r *Registry) Resolve(kind Kind) (BinaryFunc, error) {
	e, err := r.lookup(kind)
	if err != nil {
		return nil, err
	}
	return e.Fn, nil
}

// SupportedKinds возвращает копию списка видов в порядке объявления.
func (r *Registry) SupportedKinds() []Kind {
	out := make([]Kind, len(r.order))
	copy(out, r.order)
	return out
}

// Supports сообщает, объявлен ли вид в реестре.
func (r *Registry) Supports(kind Kind) bool {
	_, ok := r.entries[kind]
	return ok
}

func (r *Registry) lookup(kind Kind) (Entry, error) {
	e, ok := r.entries[kind]
	if !ok {
		return Entry{}, &UnsupportedOperationError{Kind: kind}
	}
	return e, nil
}
