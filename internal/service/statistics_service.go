package service

import (
	"context"
	"fmt"
	"time"

	"restaurant/internal/model"
	"restaurant/internal/repository"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

const topItemsLimit = 5

type StatisticsFilter struct {
	StartDate time.Time
	EndDate   time.Time
	GroupBy   string // day, week, month
}

type StatisticsService interface {
	GetStatistics(ctx context.Context, f StatisticsFilter) (*model.SalesStatistics, error)
}

type statisticsService struct {
	repo repository.StatisticsRepository
}

func NewStatisticsService(repo repository.StatisticsRepository) StatisticsService {
	return &statisticsService{repo: repo}
}

// GetStatistics runs the totals, series and ranking queries concurrently.
func (s *statisticsService) GetStatistics(ctx context.Context, f StatisticsFilter) (*model.SalesStatistics, error) {
	if f.EndDate.Before(f.StartDate) {
		return nil, validationError("end_date must not be before start_date")
	}
	switch f.GroupBy {
	case "day", "week", "month":
	case "":
		f.GroupBy = "day"
	default:
		return nil, validationError("group_by must be day, week or month")
	}

	var (
		totals *repository.SalesTotals
		series []model.SalesPoint
		top    []model.ProductRanking
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		totals, err = s.repo.Totals(gctx, f.StartDate, f.EndDate)
		return err
	})
	g.Go(func() error {
		var err error
		series, err = s.repo.Series(gctx, f.GroupBy, f.StartDate, f.EndDate)
		return err
	})
	g.Go(func() error {
		var err error
		top, err = s.repo.TopItems(gctx, f.StartDate, f.EndDate, topItemsLimit)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to compute statistics: %w", err)
	}

	stats := &model.SalesStatistics{
		OrderCount:     totals.OrderCount,
		GrossSales:     totals.GrossSales,
		DiscountTotal:  totals.DiscountTotal,
		ServiceCharges: totals.ServiceCharges,
		TaxCollected:   totals.TaxCollected,
		NetRevenue:     totals.NetRevenue,
		AverageOrder:   decimal.Zero,
		Series:         series,
		TopItems:       top,
		StartDate:      f.StartDate,
		EndDate:        f.EndDate,
		GroupBy:        f.GroupBy,
	}
	if totals.OrderCount > 0 {
		stats.AverageOrder = totals.NetRevenue.Div(decimal.NewFromInt(totals.OrderCount)).Round(2)
	}
	return stats, nil
}
