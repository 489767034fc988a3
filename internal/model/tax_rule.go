package model

import (
	"restaurant/internal/pricing"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// TaxRule is a conditional tax applied at checkout. All matching active rules stack.
type TaxRule struct {
	Base
	Name           string                   `gorm:"type:varchar(100);not null" json:"name"`
	Description    string                   `gorm:"type:text" json:"description"`
	Rate           decimal.Decimal          `gorm:"type:decimal(7,4);not null" json:"rate"` // percentage, e.g. 10 = 10%
	Priority       int                      `gorm:"not null;default:0;index" json:"priority"`
	IsActive       bool                     `gorm:"not null;default:true;index" json:"is_active"`
	MinOrderAmount *decimal.Decimal         `gorm:"type:decimal(12,2)" json:"min_order_amount"`
	MaxOrderAmount *decimal.Decimal         `gorm:"type:decimal(12,2)" json:"max_order_amount"`
	DiningType     string                   `gorm:"type:varchar(20);not null;default:'all'" json:"dining_type"`   // dine_in, takeaway, reservation, all
	CustomerType   string                   `gorm:"type:varchar(20);not null;default:'all'" json:"customer_type"` // regular, vip, staff, all
	SpecificTables datatypes.JSONSlice[int] `json:"specific_tables"`
	ExcludeTables  datatypes.JSONSlice[int] `json:"exclude_tables"`
	TimeStart      string                   `gorm:"type:varchar(5)" json:"time_start"` // HH:MM
	TimeEnd        string                   `gorm:"type:varchar(5)" json:"time_end"`   // HH:MM
	DaysOfWeek     datatypes.JSONSlice[int] `json:"days_of_week"`                      // 0 = Sunday
}

// PricingRule converts the stored rule into the matcher's input.
func (r TaxRule) PricingRule() pricing.TaxRule {
	return pricing.TaxRule{
		ID:             r.ID.String(),
		Name:           r.Name,
		Rate:           r.Rate,
		Priority:       r.Priority,
		IsActive:       r.IsActive,
		MinOrderAmount: r.MinOrderAmount,
		MaxOrderAmount: r.MaxOrderAmount,
		DiningType:     pricing.DiningType(r.DiningType),
		CustomerType:   pricing.CustomerType(r.CustomerType),
		SpecificTables: []int(r.SpecificTables),
		ExcludeTables:  []int(r.ExcludeTables),
		TimeStart:      r.TimeStart,
		TimeEnd:        r.TimeEnd,
		DaysOfWeek:     []int(r.DaysOfWeek),
	}
}
