package dto

import (
	"time"

	"github.com/go-playground/validator/v10"

	"gocalc/internal/calc/domain/entities"
	"gocalc/internal/calc/domain/operations"
	"gocalc/internal/calc/ports/api"
)

// CalculationRequest представляет запрос на создание вычисления.
// Допустимость вида операции и деление на ноль проверяет вычислитель.
type CalculationRequest struct {
	A    *float64 `json:"a" validate:"required,finite"`
	B    *float64 `json:"b" validate:"required,finite"`
	Type string   `json:"type" validate:"required"`
}

// CalculationUpdateRequest представляет частичное обновление; нужно хотя бы одно поле.
type CalculationUpdateRequest struct {
	A    *float64 `json:"a" validate:"omitnil,finite"`
	B    *float64 `json:"b" validate:"omitnil,finite"`
	Type *string  `json:"type" validate:"omitnil,min=1"`
}

func updateHasField(sl validator.StructLevel) {
	r, ok := sl.Current().Interface().(CalculationUpdateRequest)
	if ok && r.A == nil && r.B == nil && r.Type == nil {
		sl.ReportError(r.Type, "type", "Type", tagAnyField, "")
	}
}

// ToUpdate переводит запрос в порт.
func (r *CalculationUpdateRequest) ToUpdate() api.CalculationUpdate {
	upd := api.CalculationUpdate{A: r.A, B: r.B}
	if r.Type != nil {
		kind := operations.Kind(*r.Type)
		upd.Kind = &kind
	}
	return upd
}

// CalculationResponse представляет сохраненное вычисление.
type CalculationResponse struct {
	ID        string    `json:"id"`
	UserID    *string   `json:"user_id"`
	A         Number    `json:"a"`
	B         Number    `json:"b"`
	Type      string    `json:"type"`
	Result    Number    `json:"result"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewCalculationResponse создает ответ из сущности.
func NewCalculationResponse(c *entities.Calculation) CalculationResponse {
	return CalculationResponse{
		ID:        c.ID,
		UserID:    c.OwnerID,
		A:         Number(c.A),
		B:         Number(c.B),
		Type:      string(c.Kind),
		Result:    Number(c.Result),
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

// CalculationListResponse представляет страницу вычислений.
type CalculationListResponse struct {
	Items  []CalculationResponse `json:"items"`
	Total  int                   `json:"total"`
	Offset int                   `json:"offset"`
	Limit  int                   `json:"limit"`
}

// NewCalculationListResponse создает ответ из страницы.
func NewCalculationListResponse(page *api.CalculationPage) CalculationListResponse {
	items := make([]CalculationResponse, 0, len(page.Items))
	for _, c := range page.Items {
		items = append(items, NewCalculationResponse(c))
	}
	return CalculationListResponse{
		Items:  items,
		Total:  page.Total,
		Offset: page.Offset,
		Limit:  page.Limit,
	}
}

// OperationsResponse перечисляет поддерживаемые операции в порядке реестра.
type OperationsResponse struct {
	Operations []string `json:"operations"`
}

// NewOperationsResponse создает ответ из списка видов.
func NewOperationsResponse(kinds []operations.Kind) OperationsResponse {
	names := make([]string, 0, len(kinds))
	for _, k := range kinds {
		names = append(names, string(k))
	}
	return OperationsResponse{Operations: names}
}
