package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"restaurant/internal/model"
	"restaurant/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type fakeTax struct {
	service.TaxService
	lastReq service.TaxCalculationRequest
	calls   int
	actor   *uuid.UUID
}

func (f *fakeTax) Calculate(_ context.Context, req service.TaxCalculationRequest) (*service.TaxCalculationResponse, error) {
	f.lastReq = req
	f.calls++
	return &service.TaxCalculationResponse{OrderAmount: *req.OrderAmount, TotalTaxRate: decimal.RequireFromString("10")}, nil
}

func (f *fakeTax) CreateTaxRule(_ context.Context, req service.TaxRuleRequest, actor *uuid.UUID) (*model.TaxRule, error) {
	f.actor = actor
	return &model.TaxRule{Name: req.Name}, nil
}

func (f *fakeTax) DeleteTaxRule(_ context.Context, _ uuid.UUID, _ *uuid.UUID) error {
	return errors.New("db down")
}

func TestTaxCalculate_Public(t *testing.T) {
	fake := &fakeTax{}
	r := newTestRouter(t, NewTaxHandler(fake))

	w, env := do(t, r, http.MethodPost, "/api/tax/calculate", map[string]interface{}{"order_amount": "80", "dining_type": "dine_in", "table_number": 4}, "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d (%s)", w.Code, w.Body.String())
	}
	if fake.lastReq.OrderAmount == nil || !fake.lastReq.OrderAmount.Equal(decimal.RequireFromString("80")) {
		t.Errorf("order amount = %v", fake.lastReq.OrderAmount)
	}
	var got service.TaxCalculationResponse
	if err := json.Unmarshal(env.Data, &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !got.TotalTaxRate.Equal(decimal.RequireFromString("10")) {
		t.Errorf("total rate = %s, want 10", got.TotalTaxRate)
	}
}

func TestTaxCalculate_RequiresOrderAmount(t *testing.T) {
	bodies := map[string]map[string]interface{}{
		"absent": {"dining_type": "dine_in"},
		"null":   {"order_amount": nil, "dining_type": "dine_in"},
	}
	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			fake := &fakeTax{}
			r := newTestRouter(t, NewTaxHandler(fake))

			w, _ := do(t, r, http.MethodPost, "/api/tax/calculate", body, "")
			if w.Code != http.StatusBadRequest {
				t.Fatalf("status = %d (%s), want 400", w.Code, w.Body.String())
			}
			if fake.calls != 0 {
				t.Errorf("service called %d times for an invalid request", fake.calls)
			}
		})
	}
}

func TestCreateTaxRule_PassesActor(t *testing.T) {
	fake := &fakeTax{}
	r := newTestRouter(t, NewTaxHandler(fake))
	manager := uuid.New()

	body := map[string]interface{}{"name": "VAT", "rate": "10", "dining_type": "all", "customer_type": "all", "is_active": true}
	w, _ := do(t, r, http.MethodPost, "/api/tax-rules", body, bearer(t, manager, "manager"))
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d (%s)", w.Code, w.Body.String())
	}
	if fake.actor == nil || *fake.actor != manager {
		t.Errorf("actor = %v", fake.actor)
	}
}

func TestDeleteTaxRule_HidesInternalErrors(t *testing.T) {
	r := newTestRouter(t, NewTaxHandler(&fakeTax{}))

	w, env := do(t, r, http.MethodDelete, "/api/tax-rules/"+uuid.NewString(), nil, bearer(t, uuid.New(), "manager"))
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", w.Code)
	}
	if env.Error != "Internal server error" {
		t.Errorf("error = %q", env.Error)
	}
}
