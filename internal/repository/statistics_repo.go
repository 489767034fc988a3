package repository

import (
	"context"
	"fmt"
	"time"

	"restaurant/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SalesTotals sums money columns over paid, non-cancelled orders
type SalesTotals struct {
	OrderCount     int64
	GrossSales     decimal.Decimal
	DiscountTotal  decimal.Decimal
	ServiceCharges decimal.Decimal
	TaxCollected   decimal.Decimal
	NetRevenue     decimal.Decimal
}

type StatisticsRepository interface {
	Totals(ctx context.Context, start, end time.Time) (*SalesTotals, error)
	// Series buckets revenue by day, week or month.
	Series(ctx context.Context, groupBy string, start, end time.Time) ([]model.SalesPoint, error)
	TopItems(ctx context.Context, start, end time.Time, limit int) ([]model.ProductRanking, error)
}

type statisticsRepository struct {
	db *gorm.DB
}

func NewStatisticsRepository(db *gorm.DB) StatisticsRepository {
	return &statisticsRepository{db: db}
}

func (r *statisticsRepository) salesScope(ctx context.Context, start, end time.Time) *gorm.DB {
	return GetDB(ctx, r.db).Table("orders").
		Where("orders.payment_status = ? AND orders.status <> ?", model.PaymentPaid, model.OrderStatusCancelled).
		Where("orders.created_at >= ? AND orders.created_at <= ?", start, end)
}

func (r *statisticsRepository) Totals(ctx context.Context, start, end time.Time) (*SalesTotals, error) {
	var row SalesTotals
	err := r.salesScope(ctx, start, end).
		Select(`COUNT(*) AS order_count,
			COALESCE(SUM(subtotal), 0) AS gross_sales,
			COALESCE(SUM(discount_amount), 0) AS discount_total,
			COALESCE(SUM(service_charge), 0) AS service_charges,
			COALESCE(SUM(tax_amount), 0) AS tax_collected,
			COALESCE(SUM(total_amount), 0) AS net_revenue`).
		Scan(&row).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query sales totals: %w", err)
	}
	return &row, nil
}

func (r *statisticsRepository) Series(ctx context.Context, groupBy string, start, end time.Time) ([]model.SalesPoint, error) {
	period, err := periodExpr(r.db.Dialector.Name(), groupBy)
	if err != nil {
		return nil, err
	}

	var rows []model.SalesPoint
	if err := r.salesScope(ctx, start, end).
		Select(period + ` AS period,
			COUNT(*) AS order_count,
			COALESCE(SUM(total_amount), 0) AS revenue,
			COALESCE(SUM(tax_amount), 0) AS tax`).
		Group("period").
		Order("period").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to query sales series: %w", err)
	}
	return rows, nil
}

func (r *statisticsRepository) TopItems(ctx context.Context, start, end time.Time, limit int) ([]model.ProductRanking, error) {
	var rankings []model.ProductRanking
	if err := r.salesScope(ctx, start, end).
		Select("order_items.product_name AS product_name, SUM(order_items.quantity) AS total_quantity, COALESCE(SUM(order_items.line_total), 0) AS total_value").
		Joins("JOIN order_items ON order_items.order_id = orders.id").
		Group("order_items.product_name").
		Order("total_quantity DESC").
		Limit(limit).
		Scan(&rankings).Error; err != nil {
		return nil, fmt.Errorf("failed to query top items: %w", err)
	}
	return rankings, nil
}

// periodExpr returns the bucket label expression for the given dialect.
func periodExpr(dialect, groupBy string) (string, error) {
	switch dialect {
	case "mysql":
		switch groupBy {
		case "day":
			return "DATE_FORMAT(orders.created_at, '%Y-%m-%d')", nil
		case "week":
			return "DATE_FORMAT(DATE_SUB(orders.created_at, INTERVAL WEEKDAY(orders.created_at) DAY), '%Y-%m-%d')", nil
		case "month":
			return "DATE_FORMAT(orders.created_at, '%Y-%m-01')", nil
		}
	default:
		switch groupBy {
		case "day", "week", "month":
			return fmt.Sprintf("TO_CHAR(DATE_TRUNC('%s', orders.created_at), 'YYYY-MM-DD')", groupBy), nil
		}
	}
	return "", fmt.Errorf("unsupported group_by %q", groupBy)
}
