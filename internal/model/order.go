package model

import (
	"time"

	"restaurant/internal/pricing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// OrderStatus constants
const (
	OrderStatusPending   = "pending"
	OrderStatusPreparing = "preparing"
	OrderStatusServed    = "served"
	OrderStatusCompleted = "completed"
	OrderStatusCancelled = "cancelled"
)

// PaymentStatus constants
const (
	PaymentUnpaid   = "unpaid"
	PaymentPaid     = "paid"
	PaymentRefunded = "refunded"
)

// PaymentMethod constants
const (
	PaymentCash = "cash"
	PaymentCard = "card"
	PaymentQR   = "qr"
)

// Order is written once at checkout. Only status and payment fields change afterwards.
type Order struct {
	Base
	OrderNo        string                                 `gorm:"type:varchar(32);uniqueIndex;not null" json:"order_no"`
	TableNumber    *int                                   `gorm:"index" json:"table_number"`
	DiningType     string                                 `gorm:"type:varchar(20);not null" json:"dining_type"`
	CustomerID     *uuid.UUID                             `gorm:"type:char(36);index" json:"customer_id"`
	CustomerName   string                                 `gorm:"type:varchar(255)" json:"customer_name"`
	CustomerPhone  string                                 `gorm:"type:varchar(20);index" json:"customer_phone"`
	Status         string                                 `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	PaymentMethod  string                                 `gorm:"type:varchar(20);not null" json:"payment_method"`
	PaymentStatus  string                                 `gorm:"type:varchar(20);not null;default:'unpaid';index" json:"payment_status"`
	PaidAt         *time.Time                             `json:"paid_at"`
	Subtotal       decimal.Decimal                        `gorm:"type:decimal(12,2);not null" json:"subtotal"`
	DiscountCode   string                                 `gorm:"type:varchar(50)" json:"discount_code"`
	DiscountAmount decimal.Decimal                        `gorm:"type:decimal(12,2);not null;default:0" json:"discount_amount"`
	ServiceCharge  decimal.Decimal                        `gorm:"type:decimal(12,2);not null;default:0" json:"service_charge"`
	TaxRate        decimal.Decimal                        `gorm:"type:decimal(7,4);not null;default:0" json:"tax_rate"`
	TaxAmount      decimal.Decimal                        `gorm:"type:decimal(12,2);not null;default:0" json:"tax_amount"`
	TotalAmount    decimal.Decimal                        `gorm:"type:decimal(12,2);not null" json:"total_amount"`
	Taxes          datatypes.JSONSlice[pricing.AppliedTax] `json:"taxes"` // applied rules at order time
	Note           string                                 `gorm:"type:text" json:"note"`
	Items          []OrderItem                            `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
}

// OrderItem snapshots a cart line. Customizations are copies, never live references.
type OrderItem struct {
	Base
	OrderID        uuid.UUID                                 `gorm:"type:char(36);not null;index" json:"order_id"`
	ProductID      *uuid.UUID                                `gorm:"type:char(36);index" json:"product_id"`
	ProductName    string                                    `gorm:"type:varchar(255);not null" json:"product_name"`
	Quantity       int                                       `gorm:"not null" json:"quantity"`
	UnitPrice      decimal.Decimal                           `gorm:"type:decimal(12,2);not null" json:"unit_price"`
	LineTotal      decimal.Decimal                           `gorm:"type:decimal(12,2);not null" json:"line_total"`
	Customizations datatypes.JSONSlice[pricing.Customization] `json:"customizations"`
	Notes          string                                    `gorm:"type:text" json:"notes"`
}
