package service

import (
	"context"
	"fmt"

	"restaurant/internal/events"
	"restaurant/internal/metrics"
	"restaurant/internal/model"

	"github.com/bwmarrin/snowflake"
	"github.com/rs/zerolog/log"
)

// Broadcaster pushes a typed message to connected staff dashboards.
type Broadcaster interface {
	Publish(msgType string, data interface{})
}

// OrderNumbers issues human-facing order numbers.
type OrderNumbers interface {
	Next() string
}

type snowflakeNumbers struct {
	node *snowflake.Node
}

// NewSnowflakeNumbers returns time-ordered numbers unique per node id (0-1023).
func NewSnowflakeNumbers(nodeID int64) (OrderNumbers, error) {
	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return nil, fmt.Errorf("failed to create snowflake node: %w", err)
	}
	return &snowflakeNumbers{node: node}, nil
}

func (s *snowflakeNumbers) Next() string {
	return s.node.Generate().Base36()
}

// announceOrder fans a committed order change out to the event bus and the dashboard.
// Both sinks are best effort; the order is already durable.
func announceOrder(ctx context.Context, pub events.OrderPublisher, hub Broadcaster, eventType events.EventType, msgType string, order *model.Order) {
	if err := pub.Publish(ctx, eventType, order); err != nil {
		metrics.EventPublishFailuresTotal.WithLabelValues("kafka").Inc()
		log.Error().Err(err).Str("order_no", order.OrderNo).Str("event", string(eventType)).Msg("Failed to publish order event")
	}
	hub.Publish(msgType, order)
}
