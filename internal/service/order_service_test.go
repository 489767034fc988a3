package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"restaurant/internal/model"

	"github.com/google/uuid"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to string
		want     bool
	}{
		{model.OrderStatusPending, model.OrderStatusPreparing, true},
		{model.OrderStatusPreparing, model.OrderStatusServed, true},
		{model.OrderStatusServed, model.OrderStatusCompleted, true},
		{model.OrderStatusPending, model.OrderStatusServed, false},
		{model.OrderStatusServed, model.OrderStatusPreparing, false},
		{model.OrderStatusPending, model.OrderStatusCancelled, true},
		{model.OrderStatusServed, model.OrderStatusCancelled, true},
		{model.OrderStatusCompleted, model.OrderStatusCancelled, false},
		{model.OrderStatusCancelled, model.OrderStatusPending, false},
	}
	for _, tt := range tests {
		if got := canTransition(tt.from, tt.to); got != tt.want {
			t.Errorf("%s -> %s = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func newOrderFixture(orders ...model.Order) (*orderService, *fakeOrders, *fakeTables, *fakeAudit, *fakeHub) {
	repo := newFakeOrders(orders...)
	tables := newFakeTables(1, 2)
	audit := &fakeAudit{}
	hub := &fakeHub{}
	svc := NewOrderService(passTx{}, repo, tables, audit, &fakePublisher{}, hub).(*orderService)
	svc.now = func() time.Time { return checkoutNow }
	return svc, repo, tables, audit, hub
}

func dineIn(table int, status string) model.Order {
	o := model.Order{OrderNo: "ORD-" + status, TableNumber: intPtr(table), DiningType: "dine_in", Status: status, PaymentStatus: model.PaymentUnpaid}
	ensureID(&o.Base)
	return o
}

func TestUpdateStatus_ReleasesTableWhenLastOrderCloses(t *testing.T) {
	first := dineIn(1, model.OrderStatusServed)
	second := dineIn(1, model.OrderStatusPending)
	svc, _, tables, audit, hub := newOrderFixture(first, second)
	tables.byNumber[1].Status = model.TableOccupied
	ctx := context.Background()

	if _, err := svc.UpdateStatus(ctx, first.ID, UpdateOrderStatusRequest{Status: model.OrderStatusCompleted}, nil); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if tables.byNumber[1].Status != model.TableOccupied {
		t.Error("table must stay occupied while another order is open")
	}

	order, err := svc.UpdateStatus(ctx, second.ID, UpdateOrderStatusRequest{Status: model.OrderStatusCancelled}, nil)
	if err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if order.Status != model.OrderStatusCancelled {
		t.Errorf("status = %s", order.Status)
	}
	if tables.byNumber[1].Status != model.TableAvailable {
		t.Errorf("table status = %s, want available", tables.byNumber[1].Status)
	}
	if len(audit.actions) != 2 || audit.actions[1] != model.ActionCancelOrder {
		t.Errorf("audit = %v", audit.actions)
	}
	if len(hub.messages) != 2 {
		t.Errorf("hub messages = %v", hub.messages)
	}
}

func TestUpdateStatus_RejectsInvalidMoves(t *testing.T) {
	done := dineIn(2, model.OrderStatusCompleted)
	svc, repo, _, _, _ := newOrderFixture(done)

	_, err := svc.UpdateStatus(context.Background(), done.ID, UpdateOrderStatusRequest{Status: model.OrderStatusPreparing}, nil)
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("err = %v, want ErrConflict", err)
	}
	if repo.orders[done.ID].Status != model.OrderStatusCompleted {
		t.Error("status must not change")
	}

	_, err = svc.UpdateStatus(context.Background(), uuid.New(), UpdateOrderStatusRequest{Status: model.OrderStatusPreparing}, nil)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestUpdatePayment(t *testing.T) {
	open := dineIn(1, model.OrderStatusServed)
	cancelled := dineIn(2, model.OrderStatusCancelled)
	svc, _, _, _, _ := newOrderFixture(open, cancelled)
	ctx := context.Background()

	if _, err := svc.UpdatePayment(ctx, open.ID, UpdatePaymentRequest{PaymentStatus: model.PaymentRefunded}, nil); !errors.Is(err, ErrConflict) {
		t.Errorf("refund unpaid: err = %v, want ErrConflict", err)
	}

	paid, err := svc.UpdatePayment(ctx, open.ID, UpdatePaymentRequest{PaymentStatus: model.PaymentPaid, PaymentMethod: model.PaymentCard}, nil)
	if err != nil {
		t.Fatalf("UpdatePayment: %v", err)
	}
	if paid.PaymentStatus != model.PaymentPaid || paid.PaymentMethod != model.PaymentCard || paid.PaidAt == nil || !paid.PaidAt.Equal(checkoutNow) {
		t.Errorf("paid order = %s %s %v", paid.PaymentStatus, paid.PaymentMethod, paid.PaidAt)
	}

	unpaid, err := svc.UpdatePayment(ctx, open.ID, UpdatePaymentRequest{PaymentStatus: model.PaymentUnpaid}, nil)
	if err != nil {
		t.Fatalf("UpdatePayment: %v", err)
	}
	if unpaid.PaidAt != nil {
		t.Error("paid_at should be cleared")
	}

	if _, err := svc.UpdatePayment(ctx, cancelled.ID, UpdatePaymentRequest{PaymentStatus: model.PaymentPaid}, nil); !errors.Is(err, ErrConflict) {
		t.Errorf("pay cancelled: err = %v, want ErrConflict", err)
	}
}
