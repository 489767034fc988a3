package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"restaurant/internal/model"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"
)

// messageWriter is the part of kafka.Writer the publisher needs.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaPublisher struct {
	writer messageWriter
	now    func() time.Time
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		WriteTimeout:           10 * time.Second,
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}
	return &KafkaPublisher{writer: writer, now: time.Now}
}

// Publish keys messages by order id so every event for one order lands on the same partition.
func (p *KafkaPublisher) Publish(ctx context.Context, eventType EventType, order *model.Order) error {
	event := OrderEvent{
		Type:      eventType,
		OrderID:   order.ID.String(),
		OrderNo:   order.OrderNo,
		Order:     order,
		Timestamp: p.now().UTC(),
	}
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode %s event: %w", eventType, err)
	}

	msg := kafka.Message{
		Key:   []byte(event.OrderID),
		Value: data,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(eventType)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish %s event: %w", eventType, err)
	}

	log.Debug().Str("event", string(eventType)).Str("order_no", order.OrderNo).Msg("Order event published")
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
