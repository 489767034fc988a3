package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"restaurant/internal/model"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"
)

// WaiterCallNotification is the message body on the notifications exchange.
type WaiterCallNotification struct {
	Type        string    `json:"type"`
	CallID      string    `json:"call_id"`
	TableNumber int       `json:"table_number"`
	Reason      string    `json:"reason"`
	Note        string    `json:"note,omitempty"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

type RabbitNotifier struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
}

// NewRabbitNotifier dials the broker and declares the durable fanout exchange.
func NewRabbitNotifier(url, exchange string) (*RabbitNotifier, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to rabbitmq: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open rabbitmq channel: %w", err)
	}

	err = channel.ExchangeDeclare(
		exchange, // name
		"fanout", // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		_ = channel.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("failed to declare exchange %s: %w", exchange, err)
	}

	log.Info().Str("exchange", exchange).Msg("Connected to RabbitMQ")
	return &RabbitNotifier{conn: conn, channel: channel, exchange: exchange}, nil
}

func (n *RabbitNotifier) NotifyWaiterCall(ctx context.Context, call *model.WaiterCall) error {
	body, err := json.Marshal(NewWaiterCallNotification(call))
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return n.channel.PublishWithContext(ctx,
		n.exchange, // exchange
		"",         // routing key, ignored by fanout
		false,      // mandatory
		false,      // immediate
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			ContentType:  "application/json",
			Timestamp:    time.Now(),
			Body:         body,
		})
}

func (n *RabbitNotifier) Close() error {
	if n.channel != nil {
		_ = n.channel.Close()
	}
	if n.conn != nil {
		return n.conn.Close()
	}
	return nil
}

func NewWaiterCallNotification(call *model.WaiterCall) WaiterCallNotification {
	return WaiterCallNotification{
		Type:        "waiter_call",
		CallID:      call.ID.String(),
		TableNumber: call.TableNumber,
		Reason:      call.Reason,
		Note:        call.Note,
		Status:      call.Status,
		CreatedAt:   call.CreatedAt,
	}
}
