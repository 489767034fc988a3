package events

import (
	"context"
	"time"

	"restaurant/internal/model"
)

// EventType names an order lifecycle event.
type EventType string

const (
	EventOrderCreated       EventType = "order.created"
	EventOrderStatusChanged EventType = "order.status_changed"
	EventOrderPaymentUpdate EventType = "order.payment_updated"
)

// OrderEvent is the payload written to the orders topic.
type OrderEvent struct {
	Type      EventType    `json:"type"`
	OrderID   string       `json:"order_id"`
	OrderNo   string       `json:"order_no"`
	Order     *model.Order `json:"order"`
	Timestamp time.Time    `json:"timestamp"`
}

// OrderPublisher emits order events for downstream consumers (kitchen display, accounting).
type OrderPublisher interface {
	Publish(ctx context.Context, eventType EventType, order *model.Order) error
	Close() error
}

// StaffNotifier fans waiter calls out to floor and kitchen consumers.
type StaffNotifier interface {
	NotifyWaiterCall(ctx context.Context, call *model.WaiterCall) error
	Close() error
}

// NopPublisher drops every event. Used when no brokers are configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, EventType, *model.Order) error { return nil }
func (NopPublisher) Close() error                                            { return nil }

type NopNotifier struct{}

func (NopNotifier) NotifyWaiterCall(context.Context, *model.WaiterCall) error { return nil }
func (NopNotifier) Close() error                                             { return nil }
