// Package events публикует события о вычислениях в Kafka.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"gocalc/internal/calc/ports/events"
	"gocalc/internal/resilience"
	"gocalc/pkg/logger"
)

const (
	LogEventPublished = "calculation event published"

	ErrEncodeEvent  = "failed to encode calculation event"
	ErrWriteMessage = "failed to write kafka message"
	ErrCloseWriter  = "failed to close kafka writer"
)

// MessageWriter - часть kafka.Writer, нужная издателю.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher реализует events.Publisher поверх kafka-go.
type KafkaPublisher struct {
	writer       MessageWriter
	policy       *resilience.Policy
	writeTimeout time.Duration
}

// NewKafkaWriter создает writer для топика. Подключение к брокерам откладывается до первой записи.
func NewKafkaWriter(brokers []string, topic string, writeTimeout time.Duration) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		WriteTimeout: writeTimeout,
	}
}

// NewKafkaPublisher создает издателя. Повторы и предохранитель задает policy.
func NewKafkaPublisher(writer MessageWriter, policy *resilience.Policy, writeTimeout time.Duration) *KafkaPublisher {
	return &KafkaPublisher{writer: writer, policy: policy, writeTimeout: writeTimeout}
}

// Publish кодирует событие в JSON и пишет его с ключом ID вычисления,
// так что события одного вычисления попадают в одну партицию.
func (p *KafkaPublisher) Publish(ctx context.Context, event events.CalculationEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrEncodeEvent, err)
	}

	msg := kafka.Message{
		Key:   []byte(event.CalculationID),
		Value: payload,
		Time:  event.OccurredAt,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(event.Type)},
		},
	}
	if requestID, ok := logger.GetRequestID(ctx); ok && requestID != "" {
		msg.Headers = append(msg.Headers, kafka.Header{Key: logger.RequestID, Value: []byte(requestID)})
	}

	err = p.policy.Execute(ctx, "publish", func(ctx context.Context) error {
		writeCtx := ctx
		if p.writeTimeout > 0 {
			var cancel context.CancelFunc
			writeCtx, cancel = context.WithTimeout(ctx, p.writeTimeout)
			defer cancel()
		}
		return p.writer.WriteMessages(writeCtx, msg)
	})
	if err != nil {
		return fmt.Errorf("%s: %w", ErrWriteMessage, err)
	}

	logger.Log(ctx).Debug(ctx, LogEventPublished,
		zap.String("type", event.Type),
		zap.String("calculation_id", event.CalculationID))
	return nil
}

// Close закрывает writer, дожидаясь отправки буферизованных сообщений.
func (p *KafkaPublisher) Close() error {
	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("%s: %w", ErrCloseWriter, err)
	}
	return nil
}

var _ events.Publisher = (*KafkaPublisher)(nil)
