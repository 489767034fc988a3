package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"restaurant/internal/pricing"
	"restaurant/internal/service"

	"github.com/shopspring/decimal"
)

type fakeDiscounts struct {
	service.DiscountService
}

func (fakeDiscounts) Validate(_ context.Context, req service.ValidateDiscountRequest) (pricing.DiscountResult, error) {
	if pricing.NormalizeCode(req.Code) != "SAVE10" {
		return pricing.DiscountResult{Reason: pricing.ReasonNotFound}, nil
	}
	return pricing.DiscountResult{OK: true, Amount: req.Subtotal.Mul(decimal.RequireFromString("0.1"))}, nil
}

func TestValidateDiscount(t *testing.T) {
	r := newTestRouter(t, NewDiscountHandler(fakeDiscounts{}))

	tests := []struct {
		code       string
		wantOK     bool
		wantAmount string
		wantReason pricing.DiscountReason
	}{
		{"save10", true, "10", ""},
		{"NOPE", false, "0", pricing.ReasonNotFound},
	}
	for _, tt := range tests {
		w, env := do(t, r, http.MethodPost, "/api/discounts/validate", map[string]string{"code": tt.code, "subtotal": "100"}, "")
		if w.Code != http.StatusOK {
			t.Fatalf("%s: status = %d (%s)", tt.code, w.Code, w.Body.String())
		}
		var got pricing.DiscountResult
		if err := json.Unmarshal(env.Data, &got); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if got.OK != tt.wantOK || !got.Amount.Equal(decimal.RequireFromString(tt.wantAmount)) || got.Reason != tt.wantReason {
			t.Errorf("%s: got %+v", tt.code, got)
		}
	}
}
