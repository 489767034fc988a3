package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"restaurant/internal/model"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

type fakeWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error { return nil }

func TestKafkaPublisher_Publish(t *testing.T) {
	w := &fakeWriter{}
	fixed := time.Date(2026, 10, 14, 19, 0, 0, 0, time.UTC)
	p := &KafkaPublisher{writer: w, now: func() time.Time { return fixed }}

	order := &model.Order{Base: model.Base{ID: uuid.New()}, OrderNo: "R123", Status: model.OrderStatusPending}
	if err := p.Publish(context.Background(), EventOrderCreated, order); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	if len(w.msgs) != 1 {
		t.Fatalf("messages = %d, want 1", len(w.msgs))
	}
	msg := w.msgs[0]
	if string(msg.Key) != order.ID.String() {
		t.Errorf("key = %s, want order id", msg.Key)
	}
	if len(msg.Headers) != 1 || string(msg.Headers[0].Value) != string(EventOrderCreated) {
		t.Errorf("headers = %+v", msg.Headers)
	}

	var got OrderEvent
	if err := json.Unmarshal(msg.Value, &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Type != EventOrderCreated || got.OrderNo != "R123" || !got.Timestamp.Equal(fixed) {
		t.Errorf("event = %+v", got)
	}
}

func TestKafkaPublisher_WrapsWriteError(t *testing.T) {
	sentinel := errors.New("broker down")
	p := &KafkaPublisher{writer: &fakeWriter{err: sentinel}, now: time.Now}

	err := p.Publish(context.Background(), EventOrderStatusChanged, &model.Order{})
	if !errors.Is(err, sentinel) {
		t.Errorf("err = %v, want wrapped broker error", err)
	}
}

func TestNewWaiterCallNotification(t *testing.T) {
	call := &model.WaiterCall{Base: model.Base{ID: uuid.New()}, TableNumber: 7, Reason: "bill", Status: model.WaiterCallPending}
	n := NewWaiterCallNotification(call)
	if n.Type != "waiter_call" || n.TableNumber != 7 || n.Reason != "bill" || n.CallID != call.ID.String() {
		t.Errorf("notification = %+v", n)
	}
}
