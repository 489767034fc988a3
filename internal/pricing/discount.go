package pricing

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

// DiscountScope is what a code applies to. ValidateAndApply prices against whatever
// base the caller passes; narrowing to scoped lines is the caller's job.
type DiscountScope string

const (
	ScopeOrder    DiscountScope = "order"
	ScopeProduct  DiscountScope = "product"
	ScopeCategory DiscountScope = "category"
)

// DiscountCode is the pricing view of a stored code.
type DiscountCode struct {
	Code              string
	Type              DiscountType
	Value             decimal.Decimal
	AppliesTo         DiscountScope
	Active            bool
	ExpiresAt         *time.Time
	UsageLimit        *int
	UsedCount         int
	MinOrderAmount    *decimal.Decimal
	MaxDiscountAmount *decimal.Decimal
}

// DiscountReason explains why a code was rejected.
type DiscountReason string

const (
	ReasonNotFound      DiscountReason = "not_found"
	ReasonInactive      DiscountReason = "inactive"
	ReasonExpired       DiscountReason = "expired"
	ReasonUsageExceeded DiscountReason = "usage_exceeded"
	ReasonBelowMinimum  DiscountReason = "below_minimum"
	// ReasonNotApplicable: a product or category code with no matching line in the cart.
	ReasonNotApplicable DiscountReason = "not_applicable"

	// ReasonUnsupportedType: the stored code has a type other than percentage or fixed.
	ReasonUnsupportedType DiscountReason = "unsupported_type"
)

// DiscountResult is either OK with an Amount, or a Reason.
type DiscountResult struct {
	OK     bool            `json:"ok"`
	Amount decimal.Decimal `json:"amount"`
	Reason DiscountReason  `json:"reason,omitempty"`
}

func rejected(reason DiscountReason) DiscountResult {
	return DiscountResult{OK: false, Amount: decimal.Zero, Reason: reason}
}

// NormalizeCode trims and upper-cases a human-entered code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// ValidateAndApply checks d against subtotal at instant now and computes the discount amount.
// Checks short-circuit in a fixed order: existence/active, expiry, usage, minimum.
func ValidateAndApply(code string, subtotal decimal.Decimal, d *DiscountCode, now time.Time) DiscountResult {
	if d == nil || NormalizeCode(d.Code) != NormalizeCode(code) {
		return rejected(ReasonNotFound)
	}
	if !d.Active {
		return rejected(ReasonInactive)
	}
	if d.ExpiresAt != nil && !d.ExpiresAt.After(now) {
		return rejected(ReasonExpired)
	}
	if d.UsageLimit != nil && d.UsedCount >= *d.UsageLimit {
		return rejected(ReasonUsageExceeded)
	}
	if d.MinOrderAmount != nil && subtotal.LessThan(*d.MinOrderAmount) {
		return rejected(ReasonBelowMinimum)
	}

	var amount decimal.Decimal
	switch d.Type {
	case DiscountPercentage:
		amount = percentOf(subtotal, d.Value)
	case DiscountFixed:
		amount = d.Value
	default:
		return rejected(ReasonUnsupportedType)
	}
	if amount.GreaterThan(subtotal) {
		amount = subtotal
	}
	if d.MaxDiscountAmount != nil && amount.GreaterThan(*d.MaxDiscountAmount) {
		amount = *d.MaxDiscountAmount
	}
	if amount.IsNegative() {
		amount = decimal.Zero
	}
	return DiscountResult{OK: true, Amount: amount}
}
