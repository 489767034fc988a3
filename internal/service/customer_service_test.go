package service

import (
	"context"
	"errors"
	"testing"
)

func TestCreateCustomer(t *testing.T) {
	repo := newFakeCustomers()
	svc := NewCustomerService(repo)
	ctx := context.Background()

	c, err := svc.CreateCustomer(ctx, CreateCustomerRequest{Phone: " 090 123 4567 ", Name: "Hoa", MinOrderAmount: decPtr("200")})
	if err != nil {
		t.Fatalf("CreateCustomer: %v", err)
	}
	if c.Phone != "0901234567" || c.CustomerType != "regular" {
		t.Errorf("customer = %+v", c)
	}

	if _, err := svc.CreateCustomer(ctx, CreateCustomerRequest{Phone: "0901234567"}); !errors.Is(err, ErrConflict) {
		t.Errorf("duplicate phone: err = %v", err)
	}
	if _, err := svc.CreateCustomer(ctx, CreateCustomerRequest{Phone: "0909", MinOrderAmount: decPtr("-5")}); !errors.Is(err, ErrValidation) {
		t.Errorf("negative minimum: err = %v", err)
	}
	if _, err := svc.CreateCustomer(ctx, CreateCustomerRequest{Phone: "   "}); !errors.Is(err, ErrValidation) {
		t.Errorf("blank phone: err = %v", err)
	}
}

func TestUpdateCustomer_Patch(t *testing.T) {
	repo := newFakeCustomers()
	svc := NewCustomerService(repo)
	ctx := context.Background()

	c, err := svc.CreateCustomer(ctx, CreateCustomerRequest{Phone: "0901", Name: "Hoa", MinOrderAmount: decPtr("200")})
	if err != nil {
		t.Fatalf("CreateCustomer: %v", err)
	}

	vip := "vip"
	updated, err := svc.UpdateCustomer(ctx, c.ID, UpdateCustomerRequest{CustomerType: &vip})
	if err != nil {
		t.Fatalf("UpdateCustomer: %v", err)
	}
	if updated.CustomerType != "vip" || updated.Name != "Hoa" || updated.MinOrderAmount == nil {
		t.Errorf("unsent fields must survive: %+v", updated)
	}

	updated, err = svc.UpdateCustomer(ctx, c.ID, UpdateCustomerRequest{ClearMinimum: true})
	if err != nil {
		t.Fatalf("UpdateCustomer: %v", err)
	}
	if updated.MinOrderAmount != nil {
		t.Error("minimum should be cleared")
	}

	gold := "gold"
	if _, err := svc.UpdateCustomer(ctx, c.ID, UpdateCustomerRequest{CustomerType: &gold}); !errors.Is(err, ErrValidation) {
		t.Errorf("bad type: err = %v", err)
	}
}
