package model

import "time"

// Setting keys
const (
	SettingTaxRate                 = "tax_rate"         // flat fallback percentage
	SettingMinOrderAmount          = "min_order_amount" // store-wide minimum
	SettingServiceChargeFixed      = "service_charge_fixed"
	SettingServiceChargeRate       = "service_charge_rate" // percentage of discounted total
	SettingTaxIncludeServiceCharge = "tax_include_service_charge"
)

type Setting struct {
	Key       string    `gorm:"type:varchar(64);primaryKey" json:"key"`
	Value     string    `gorm:"type:varchar(255);not null" json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}
