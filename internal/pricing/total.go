package pricing

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var ErrInvalidLine = errors.New("invalid cart line")

// CartLine is a priced cart entry; UnitPrice already includes customization deltas.
type CartLine struct {
	UnitPrice decimal.Decimal
	Quantity  int
}

// ServiceChargeConfig configures the optional surcharge. A non-zero FixedAmount
// takes precedence over Rate, which is a percentage of the discounted total.
type ServiceChargeConfig struct {
	FixedAmount decimal.Decimal
	Rate        decimal.Decimal
}

// TaxBase selects whether the service charge is taxed.
type TaxBase string

const (
	TaxBaseExcludeServiceCharge TaxBase = "exclude_service_charge"
	TaxBaseIncludeServiceCharge TaxBase = "include_service_charge"
)

// MinOrderConstraint holds the store-wide and per-customer minimums; nil means unset.
type MinOrderConstraint struct {
	Global   *decimal.Decimal
	Customer *decimal.Decimal
}

// Required returns the effective minimum: the larger configured value, never below zero.
func (m MinOrderConstraint) Required() decimal.Decimal {
	required := decimal.Zero
	if m.Global != nil && m.Global.GreaterThan(required) {
		required = *m.Global
	}
	if m.Customer != nil && m.Customer.GreaterThan(required) {
		required = *m.Customer
	}
	return required
}

type TotalInput struct {
	Lines          []CartLine
	DiscountAmount decimal.Decimal
	ServiceCharge  ServiceChargeConfig
	TaxBase        TaxBase
	TaxRules       []TaxRule // already matched
	MinOrder       MinOrderConstraint
}

type Totals struct {
	Subtotal        decimal.Decimal `json:"subtotal"`
	DiscountAmount  decimal.Decimal `json:"discount_amount"`
	DiscountedTotal decimal.Decimal `json:"discounted_total"`
	ServiceCharge   decimal.Decimal `json:"service_charge"`
	TaxableAmount   decimal.Decimal `json:"taxable_amount"`
	TaxRate         decimal.Decimal `json:"tax_rate"`
	TaxAmount       decimal.Decimal `json:"tax_amount"`
	Taxes           []AppliedTax    `json:"taxes"`
	FinalTotal      decimal.Decimal `json:"final_total"`
	RequiredMinimum decimal.Decimal `json:"required_minimum"`
	Shortfall       decimal.Decimal `json:"shortfall"`
	Eligible        bool            `json:"eligible"`
}

// Subtotal sums unit price times quantity. Negative quantities or prices are rejected.
func Subtotal(lines []CartLine) (decimal.Decimal, error) {
	subtotal := decimal.Zero
	for i, l := range lines {
		if l.Quantity <= 0 {
			return decimal.Zero, fmt.Errorf("%w: line %d quantity must be positive", ErrInvalidLine, i)
		}
		if l.UnitPrice.IsNegative() {
			return decimal.Zero, fmt.Errorf("%w: line %d unit price is negative", ErrInvalidLine, i)
		}
		subtotal = subtotal.Add(l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return subtotal, nil
}

// ComputeTotal assembles subtotal, discount, service charge and tax into the payable total
// and evaluates the minimum-order gate. Falling below the minimum is reported through
// Eligible and Shortfall, not as an error.
func ComputeTotal(in TotalInput) (Totals, error) {
	subtotal, err := Subtotal(in.Lines)
	if err != nil {
		return Totals{}, err
	}

	discount := in.DiscountAmount
	if discount.IsNegative() {
		discount = decimal.Zero
	}
	if discount.GreaterThan(subtotal) {
		discount = subtotal
	}
	discounted := subtotal.Sub(discount)

	serviceCharge := decimal.Zero
	switch {
	case in.ServiceCharge.FixedAmount.IsPositive():
		serviceCharge = in.ServiceCharge.FixedAmount
	case in.ServiceCharge.Rate.IsPositive():
		serviceCharge = percentOf(discounted, in.ServiceCharge.Rate)
	}

	taxable := discounted
	if in.TaxBase == TaxBaseIncludeServiceCharge {
		taxable = taxable.Add(serviceCharge)
	}
	tax := Aggregate(in.TaxRules, taxable)

	final := discounted.Add(serviceCharge).Add(tax.TotalAmount)
	required := in.MinOrder.Required()
	shortfall := decimal.Zero
	if final.LessThan(required) {
		shortfall = required.Sub(final)
	}

	return Totals{
		Subtotal:        subtotal,
		DiscountAmount:  discount,
		DiscountedTotal: discounted,
		ServiceCharge:   serviceCharge,
		TaxableAmount:   taxable,
		TaxRate:         tax.TotalRate,
		TaxAmount:       tax.TotalAmount,
		Taxes:           tax.PerRule,
		FinalTotal:      final,
		RequiredMinimum: required,
		Shortfall:       shortfall,
		Eligible:        final.GreaterThanOrEqual(required),
	}, nil
}
