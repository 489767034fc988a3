package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Customer is identified by phone. MinOrderAmount overrides the store minimum when larger.
type Customer struct {
	Base
	Phone          string           `gorm:"type:varchar(20);uniqueIndex;not null" json:"phone"`
	Name           string           `gorm:"type:varchar(255)" json:"name"`
	CustomerType   string           `gorm:"type:varchar(20);not null;default:'regular'" json:"customer_type"`
	MinOrderAmount *decimal.Decimal `gorm:"type:decimal(12,2)" json:"min_order_amount"`
	Notes          string           `gorm:"type:text" json:"notes"`
	OrderCount     int              `gorm:"not null;default:0" json:"order_count"`
	LastOrderAt    *time.Time       `json:"last_order_at"`
}
