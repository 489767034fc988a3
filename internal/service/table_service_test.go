package service

import (
	"context"
	"errors"
	"testing"

	"restaurant/internal/model"
)

func TestCreateTable(t *testing.T) {
	tables := newFakeTables(1)
	svc := NewTableService(tables, newFakeOrders())
	ctx := context.Background()

	tbl, err := svc.CreateTable(ctx, TableRequest{Number: 5})
	if err != nil {
		t.Fatalf("CreateTable: %v", err)
	}
	if tbl.Capacity != 2 || tbl.Status != model.TableAvailable {
		t.Errorf("table = %+v", tbl)
	}
	if _, err := svc.CreateTable(ctx, TableRequest{Number: 1}); !errors.Is(err, ErrConflict) {
		t.Errorf("duplicate number: err = %v", err)
	}
}

func TestDeleteTable_RefusedWithOpenOrders(t *testing.T) {
	tables := newFakeTables(3)
	orders := newFakeOrders(dineIn(3, model.OrderStatusPreparing))
	svc := NewTableService(tables, orders)
	id := tables.byNumber[3].ID

	if err := svc.DeleteTable(context.Background(), id); !errors.Is(err, ErrConflict) {
		t.Fatalf("err = %v, want ErrConflict", err)
	}
	for _, o := range orders.orders {
		o.Status = model.OrderStatusCompleted
	}
	if err := svc.DeleteTable(context.Background(), id); err != nil {
		t.Fatalf("DeleteTable: %v", err)
	}
	if _, ok := tables.byNumber[3]; ok {
		t.Error("table not deleted")
	}
}
