package service

import (
	"context"
	"fmt"
	"time"

	"restaurant/internal/events"
	"restaurant/internal/model"
	"restaurant/internal/pricing"
	"restaurant/internal/repository"
	"restaurant/internal/websocket"
	"restaurant/pkg/pagination"

	"github.com/google/uuid"
)

type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=pending preparing served completed cancelled"`
}

type UpdatePaymentRequest struct {
	PaymentMethod string `json:"payment_method" binding:"omitempty,oneof=cash card qr"`
	PaymentStatus string `json:"payment_status" binding:"required,oneof=unpaid paid refunded"`
}

type OrderService interface {
	ListOrders(ctx context.Context, f repository.OrderFilter, p pagination.Params) ([]model.Order, int64, error)
	GetOrder(ctx context.Context, id uuid.UUID) (*model.Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, req UpdateOrderStatusRequest, actor *uuid.UUID) (*model.Order, error)
	UpdatePayment(ctx context.Context, id uuid.UUID, req UpdatePaymentRequest, actor *uuid.UUID) (*model.Order, error)
}

type orderService struct {
	txManager repository.TransactionManager
	orders    repository.OrderRepository
	tables    repository.TableRepository
	audit     AuditService
	publisher events.OrderPublisher
	hub       Broadcaster
	now       func() time.Time
}

func NewOrderService(
	txManager repository.TransactionManager,
	orders repository.OrderRepository,
	tables repository.TableRepository,
	audit AuditService,
	publisher events.OrderPublisher,
	hub Broadcaster,
) OrderService {
	return &orderService{
		txManager: txManager,
		orders:    orders,
		tables:    tables,
		audit:     audit,
		publisher: publisher,
		hub:       hub,
		now:       time.Now,
	}
}

// orderTransitions lists the forward moves; cancelling is allowed from any open state.
var orderTransitions = map[string]string{
	model.OrderStatusPending:   model.OrderStatusPreparing,
	model.OrderStatusPreparing: model.OrderStatusServed,
	model.OrderStatusServed:    model.OrderStatusCompleted,
}

func isTerminal(status string) bool {
	return status == model.OrderStatusCompleted || status == model.OrderStatusCancelled
}

func canTransition(from, to string) bool {
	if isTerminal(from) {
		return false
	}
	if to == model.OrderStatusCancelled {
		return true
	}
	return orderTransitions[from] == to
}

func (s *orderService) ListOrders(ctx context.Context, f repository.OrderFilter, p pagination.Params) ([]model.Order, int64, error) {
	orders, total, err := s.orders.List(ctx, f, p)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch orders: %w", err)
	}
	return orders, total, nil
}

func (s *orderService) GetOrder(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	order, err := s.orders.FindByIDWithItems(ctx, id)
	if err != nil {
		return nil, lookupError(err, "order")
	}
	return order, nil
}

func (s *orderService) UpdateStatus(ctx context.Context, id uuid.UUID, req UpdateOrderStatusRequest, actor *uuid.UUID) (*model.Order, error) {
	var from string
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		order, err := s.orders.FindByIDForUpdate(txCtx, id)
		if err != nil {
			return lookupError(err, "order")
		}
		from = order.Status
		if !canTransition(from, req.Status) {
			return fmt.Errorf("%w: cannot move order from %s to %s", ErrConflict, from, req.Status)
		}
		if err := s.orders.UpdateFields(txCtx, id, map[string]interface{}{"status": req.Status}); err != nil {
			return fmt.Errorf("failed to update order status: %w", err)
		}

		// free the table once nothing else is open on it
		if isTerminal(req.Status) && order.TableNumber != nil && order.DiningType == string(pricing.DiningDineIn) {
			open, err := s.orders.CountOpenByTable(txCtx, *order.TableNumber)
			if err != nil {
				return fmt.Errorf("failed to count open orders: %w", err)
			}
			if open == 0 {
				if err := s.tables.SetStatusByNumber(txCtx, *order.TableNumber, model.TableAvailable); err != nil {
					return fmt.Errorf("failed to release table: %w", err)
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	order, err := s.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	action := model.ActionUpdateOrderStatus
	if req.Status == model.OrderStatusCancelled {
		action = model.ActionCancelOrder
	}
	recordAfterCommit(ctx, s.audit, actor, action, order.ID.String(), order.OrderNo, map[string]string{"from": from, "to": req.Status})
	announceOrder(ctx, s.publisher, s.hub, events.EventOrderStatusChanged, websocket.MessageOrderUpdated, order)
	return order, nil
}

func (s *orderService) UpdatePayment(ctx context.Context, id uuid.UUID, req UpdatePaymentRequest, actor *uuid.UUID) (*model.Order, error) {
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		order, err := s.orders.FindByIDForUpdate(txCtx, id)
		if err != nil {
			return lookupError(err, "order")
		}
		if order.Status == model.OrderStatusCancelled && req.PaymentStatus == model.PaymentPaid {
			return fmt.Errorf("%w: cancelled orders cannot be paid", ErrConflict)
		}
		if req.PaymentStatus == model.PaymentRefunded && order.PaymentStatus != model.PaymentPaid {
			return fmt.Errorf("%w: only paid orders can be refunded", ErrConflict)
		}

		fields := map[string]interface{}{"payment_status": req.PaymentStatus}
		if req.PaymentMethod != "" {
			fields["payment_method"] = req.PaymentMethod
		}
		switch req.PaymentStatus {
		case model.PaymentPaid:
			if order.PaidAt == nil {
				fields["paid_at"] = s.now()
			}
		case model.PaymentUnpaid:
			fields["paid_at"] = nil
		}
		if err := s.orders.UpdateFields(txCtx, id, fields); err != nil {
			return fmt.Errorf("failed to update payment: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	order, err := s.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	recordAfterCommit(ctx, s.audit, actor, model.ActionUpdatePayment, order.ID.String(), order.OrderNo, req)
	announceOrder(ctx, s.publisher, s.hub, events.EventOrderPaymentUpdate, websocket.MessageOrderUpdated, order)
	return order, nil
}
