package events_test

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	adapter "gocalc/internal/calc/adapters/events"
	"gocalc/internal/calc/ports/events"
	"gocalc/internal/resilience"
	"gocalc/pkg/logger"
)

var errBroker = errors.New("broker unavailable")

type fakeWriter struct {
	mu       sync.Mutex
	failures int
	calls    int
	messages []kafka.Message
	closed   bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.calls++
	if w.calls <= w.failures {
		return errBroker
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func testPolicy(attempts int) *resilience.Policy {
	retry := resilience.DefaultRetryConfig()
	retry.MaxAttempts = attempts
	retry.InitialBackoff = time.Millisecond
	retry.MaxBackoff = time.Millisecond
	return resilience.NewPolicyWithConfig("kafka", resilience.DefaultCircuitBreakerConfig(), retry)
}

func sampleEvent() events.CalculationEvent {
	owner := "u1"
	return events.CalculationEvent{
		ID:            "e1",
		Type:          events.TypeCalculationCreated,
		CalculationID: "c1",
		OwnerID:       &owner,
		A:             6,
		B:             3,
		Operation:     "Divide",
		Result:        2,
		OccurredAt:    time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func TestPublishWritesKeyedJSON(t *testing.T) {
	w := &fakeWriter{}
	p := adapter.NewKafkaPublisher(w, testPolicy(1), time.Second)
	ctx := logger.NewRequestIDContext(context.Background(), "req-1")

	require.NoError(t, p.Publish(ctx, sampleEvent()))
	require.Len(t, w.messages, 1)

	msg := w.messages[0]
	assert.Equal(t, "c1", string(msg.Key))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, "calculation.created", decoded["type"])
	assert.Equal(t, "Divide", decoded["operation"])
	assert.Equal(t, "u1", decoded["owner_id"])
	assert.InDelta(t, 2.0, decoded["result"], 0)

	headers := map[string]string{}
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, "calculation.created", headers["type"])
	assert.Equal(t, "req-1", headers[logger.RequestID])
}

func TestPublishRetriesTransientFailures(t *testing.T) {
	w := &fakeWriter{failures: 2}
	p := adapter.NewKafkaPublisher(w, testPolicy(3), 0)

	require.NoError(t, p.Publish(context.Background(), sampleEvent()))
	assert.Equal(t, 3, w.calls)
	assert.Len(t, w.messages, 1)
}

func TestPublishGivesUp(t *testing.T) {
	w := &fakeWriter{failures: 10}
	p := adapter.NewKafkaPublisher(w, testPolicy(2), 0)

	err := p.Publish(context.Background(), sampleEvent())
	require.ErrorIs(t, err, errBroker)
	assert.Contains(t, err.Error(), adapter.ErrWriteMessage)
}

func TestPublishRejectsUnencodableEvent(t *testing.T) {
	w := &fakeWriter{}
	p := adapter.NewKafkaPublisher(w, testPolicy(1), 0)

	event := sampleEvent()
	event.Result = math.Inf(1)

	err := p.Publish(context.Background(), event)
	require.Error(t, err)
	assert.Contains(t, err.Error(), adapter.ErrEncodeEvent)
	assert.Zero(t, w.calls)
}

func TestCloseAndWriterConstruction(t *testing.T) {
	w := &fakeWriter{}
	require.NoError(t, adapter.NewKafkaPublisher(w, testPolicy(1), 0).Close())
	assert.True(t, w.closed)

	kw := adapter.NewKafkaWriter([]string{"localhost:9092"}, "calculations", time.Second)
	assert.Equal(t, "calculations", kw.Topic)
	assert.Equal(t, time.Second, kw.WriteTimeout)
}
