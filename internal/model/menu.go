package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Category struct {
	Base
	Name        string    `gorm:"type:varchar(100);uniqueIndex;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	SortOrder   int       `gorm:"not null;default:0" json:"sort_order"`
	IsActive    bool      `gorm:"not null;default:true" json:"is_active"`
	Products    []Product `gorm:"foreignKey:CategoryID" json:"products,omitempty"`
}

// Product is a menu item. ImageURL points at the external file store.
type Product struct {
	Base
	CategoryID     uuid.UUID              `gorm:"type:char(36);not null;index" json:"category_id"`
	Name           string                 `gorm:"type:varchar(255);not null" json:"name"`
	Description    string                 `gorm:"type:text" json:"description"`
	Price          decimal.Decimal        `gorm:"type:decimal(12,2);not null" json:"price"`
	ImageURL       string                 `gorm:"type:varchar(512)" json:"image_url"`
	IsAvailable    bool                   `gorm:"not null;default:true" json:"is_available"`
	SortOrder      int                    `gorm:"not null;default:0" json:"sort_order"`
	Customizations []ProductCustomization `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"customizations"`
	DeletedAt      gorm.DeletedAt         `gorm:"index" json:"-"`
}

// CustomizationKind values for ProductCustomization.Kind
const (
	CustomizationSize   = "size"
	CustomizationOption = "option"
	CustomizationAddon  = "addon"
)

// ProductCustomization is a selectable size, option or add-on with a price delta.
type ProductCustomization struct {
	Base
	ProductID   uuid.UUID       `gorm:"type:char(36);not null;index" json:"product_id"`
	Kind        string          `gorm:"type:varchar(20);not null" json:"kind"`
	Name        string          `gorm:"type:varchar(100);not null" json:"name"`
	PriceDelta  decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"price_delta"`
	IsAvailable bool            `gorm:"not null;default:true" json:"is_available"`
}
