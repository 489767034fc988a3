package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"restaurant/internal/middleware"
	"restaurant/internal/model"
	"restaurant/internal/pricing"
	"restaurant/internal/service"

	"github.com/shopspring/decimal"
)

type fakeCheckout struct {
	quote  *service.Quote
	placed *service.PlaceOrderResult
	err    error
}

func (f *fakeCheckout) Quote(_ context.Context, _ service.CheckoutRequest) (*service.Quote, error) {
	return f.quote, f.err
}

func (f *fakeCheckout) PlaceOrder(_ context.Context, _ service.CheckoutRequest) (*service.PlaceOrderResult, error) {
	return f.placed, f.err
}

func cart() map[string]interface{} {
	return map[string]interface{}{
		"items":       []map[string]interface{}{{"product_id": "7b0f7d8e-2b7c-4a34-9a8e-1f1f3c0e5a11", "quantity": 2}},
		"dining_type": "takeaway",
	}
}

func TestCheckout_BelowMinimumReturnsQuote(t *testing.T) {
	quote := &service.Quote{Totals: pricing.Totals{
		FinalTotal:      decimal.RequireFromString("40"),
		RequiredMinimum: decimal.RequireFromString("50"),
		Shortfall:       decimal.RequireFromString("10"),
	}}
	h := NewCheckoutHandler(&fakeCheckout{placed: &service.PlaceOrderResult{Quote: quote}, err: service.ErrBelowMinimum}, middleware.NewIPRateLimiter(100, 100))
	r := newTestRouter(t, h)

	w, env := do(t, r, http.MethodPost, "/api/checkout", cart(), "")
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422 (%s)", w.Code, w.Body.String())
	}
	var got service.Quote
	if err := json.Unmarshal(env.Data, &got); err != nil {
		t.Fatalf("decode quote: %v", err)
	}
	if !got.Totals.Shortfall.Equal(decimal.RequireFromString("10")) || got.Totals.Eligible {
		t.Errorf("quote totals = %+v", got.Totals)
	}
}

func TestCheckout_PlaceOrderCreated(t *testing.T) {
	order := &model.Order{OrderNo: "ORD-1", Status: "pending"}
	h := NewCheckoutHandler(&fakeCheckout{placed: &service.PlaceOrderResult{Order: order, Quote: &service.Quote{}}}, middleware.NewIPRateLimiter(100, 100))
	r := newTestRouter(t, h)

	w, _ := do(t, r, http.MethodPost, "/api/checkout", cart(), "")
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201 (%s)", w.Code, w.Body.String())
	}
}

func TestCheckout_RejectsInvalidCart(t *testing.T) {
	h := NewCheckoutHandler(&fakeCheckout{}, middleware.NewIPRateLimiter(100, 100))
	r := newTestRouter(t, h)

	tests := map[string]interface{}{
		"no items":        map[string]interface{}{"items": []interface{}{}, "dining_type": "takeaway"},
		"bad dining type": map[string]interface{}{"items": cart()["items"], "dining_type": "drive_thru"},
		"zero quantity": map[string]interface{}{
			"items":       []map[string]interface{}{{"product_id": "7b0f7d8e-2b7c-4a34-9a8e-1f1f3c0e5a11", "quantity": 0}},
			"dining_type": "takeaway",
		},
		"malformed json": "{",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			w, _ := do(t, r, http.MethodPost, "/api/checkout/quote", body, "")
			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", w.Code)
			}
		})
	}
}

func TestCheckout_ServiceErrorsMapToStatus(t *testing.T) {
	h := NewCheckoutHandler(&fakeCheckout{err: service.ErrNotFound}, middleware.NewIPRateLimiter(100, 100))
	r := newTestRouter(t, h)

	w, env := do(t, r, http.MethodPost, "/api/checkout/quote", cart(), "")
	if w.Code != http.StatusNotFound || env.Status != "error" {
		t.Errorf("status = %d, envelope = %+v", w.Code, env)
	}
}

func TestCheckout_RateLimited(t *testing.T) {
	h := NewCheckoutHandler(&fakeCheckout{quote: &service.Quote{}}, middleware.NewIPRateLimiter(0.001, 1))
	r := newTestRouter(t, h)

	if w, _ := do(t, r, http.MethodPost, "/api/checkout/quote", cart(), ""); w.Code != http.StatusOK {
		t.Fatalf("first request status = %d", w.Code)
	}
	if w, _ := do(t, r, http.MethodPost, "/api/checkout/quote", cart(), ""); w.Code != http.StatusTooManyRequests {
		t.Errorf("second request status = %d, want 429", w.Code)
	}
}
