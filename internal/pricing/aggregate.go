package pricing

import "github.com/shopspring/decimal"

// AppliedTax is one matched rule's contribution.
type AppliedTax struct {
	ID     string          `json:"id"`
	Name   string          `json:"name"`
	Rate   decimal.Decimal `json:"rate"`
	Amount decimal.Decimal `json:"amount"`
}

// TaxBreakdown sums the matched rules over a taxable amount.
type TaxBreakdown struct {
	TotalRate   decimal.Decimal `json:"total_rate"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	PerRule     []AppliedTax    `json:"per_rule"`
}

// Aggregate computes each rule's tax on taxable and sums rates and amounts.
// Output order follows input order.
func Aggregate(rules []TaxRule, taxable decimal.Decimal) TaxBreakdown {
	b := TaxBreakdown{
		TotalRate:   decimal.Zero,
		TotalAmount: decimal.Zero,
		PerRule:     make([]AppliedTax, 0, len(rules)),
	}
	for _, r := range rules {
		amount := percentOf(taxable, r.Rate)
		b.TotalRate = b.TotalRate.Add(r.Rate)
		b.TotalAmount = b.TotalAmount.Add(amount)
		b.PerRule = append(b.PerRule, AppliedTax{
			ID:     r.ID,
			Name:   r.Name,
			Rate:   r.Rate,
			Amount: amount,
		})
	}
	return b
}

// FlatRule builds the synthetic rule used when conditional rules are unavailable.
func FlatRule(rate decimal.Decimal) TaxRule {
	return TaxRule{
		ID:         "default",
		Name:       "Tax",
		Rate:       rate,
		IsActive:   true,
		DiningType: DiningAll,
	}
}
