package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// SalesStatistics aggregates completed, paid orders over a time range
type SalesStatistics struct {
	OrderCount     int64            `json:"order_count"`
	GrossSales     decimal.Decimal  `json:"gross_sales"` // sum of subtotals
	DiscountTotal  decimal.Decimal  `json:"discount_total"`
	ServiceCharges decimal.Decimal  `json:"service_charges"`
	TaxCollected   decimal.Decimal  `json:"tax_collected"`
	NetRevenue     decimal.Decimal  `json:"net_revenue"` // sum of final totals
	AverageOrder   decimal.Decimal  `json:"average_order"`
	Series         []SalesPoint     `json:"series"`
	TopItems       []ProductRanking `json:"top_items"`
	StartDate      time.Time        `json:"start_date"`
	EndDate        time.Time        `json:"end_date"`
	GroupBy        string           `json:"group_by"`
}

type SalesPoint struct {
	Period     string          `json:"period"`
	OrderCount int64           `json:"order_count"`
	Revenue    decimal.Decimal `json:"revenue"`
	Tax        decimal.Decimal `json:"tax"`
}

// ProductRanking ranks menu items by quantity sold
type ProductRanking struct {
	ProductName   string          `json:"product_name"`
	TotalQuantity int64           `json:"total_quantity"`
	TotalValue    decimal.Decimal `json:"total_value"`
}
