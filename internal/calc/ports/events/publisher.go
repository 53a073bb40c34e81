// Package events определяет порт публикации событий о вычислениях.
package events

import (
	"context"
	"time"
)

// Типы событий.
const (
	TypeCalculationCreated = "calculation.created"
	TypeCalculationUpdated = "calculation.updated"
	TypeCalculationDeleted = "calculation.deleted"
)

// CalculationEvent описывает изменение вычисления.
type CalculationEvent struct {
	ID            string    `json:"id"`
	Type          string    `json:"type"`
	CalculationID string    `json:"calculation_id"`
	OwnerID       *string   `json:"owner_id"`
	A             float64   `json:"a"`
	B             float64   `json:"b"`
	Operation     string    `json:"operation"`
	Result        float64   `json:"result"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// Publisher публикует события. Ошибки публикации не влияют на запрос.
type Publisher interface {
	Publish(ctx context.Context, event CalculationEvent) error

	Close() error
}
