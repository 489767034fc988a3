package model

import (
	"time"

	"restaurant/internal/pricing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DiscountCode is a customer-entered promotion code. Code is stored upper-case.
type DiscountCode struct {
	Base
	Code              string           `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"`
	Description       string           `gorm:"type:text" json:"description"`
	Type              string           `gorm:"type:varchar(20);not null" json:"type"`                     // percentage, fixed
	Value             decimal.Decimal  `gorm:"type:decimal(12,2);not null" json:"value"`                  // percentage points or currency
	AppliesTo         string           `gorm:"type:varchar(20);not null;default:'order'" json:"applies_to"` // order, product, category
	TargetID          *uuid.UUID       `gorm:"type:char(36)" json:"target_id"`                            // product or category for scoped codes
	Active            bool             `gorm:"not null;default:true;index" json:"active"`
	ExpiresAt         *time.Time       `json:"expires_at"`
	UsageLimit        *int             `json:"usage_limit"`
	UsedCount         int              `gorm:"not null;default:0" json:"used_count"`
	MinOrderAmount    *decimal.Decimal `gorm:"type:decimal(12,2)" json:"min_order_amount"`
	MaxDiscountAmount *decimal.Decimal `gorm:"type:decimal(12,2)" json:"max_discount_amount"`
}

func (d DiscountCode) PricingCode() *pricing.DiscountCode {
	return &pricing.DiscountCode{
		Code:              d.Code,
		Type:              pricing.DiscountType(d.Type),
		Value:             d.Value,
		AppliesTo:         pricing.DiscountScope(d.AppliesTo),
		Active:            d.Active,
		ExpiresAt:         d.ExpiresAt,
		UsageLimit:        d.UsageLimit,
		UsedCount:         d.UsedCount,
		MinOrderAmount:    d.MinOrderAmount,
		MaxDiscountAmount: d.MaxDiscountAmount,
	}
}
