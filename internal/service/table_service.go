package service

import (
	"context"
	"fmt"

	"restaurant/internal/model"
	"restaurant/internal/repository"

	"github.com/google/uuid"
)

type TableRequest struct {
	Number   int    `json:"number" binding:"required,gte=1"`
	Capacity int    `json:"capacity" binding:"omitempty,gte=1"`
	Status   string `json:"status" binding:"omitempty,oneof=available occupied reserved"`
	Location string `json:"location" binding:"max=100"`
}

type TableService interface {
	ListTables(ctx context.Context, status string) ([]model.Table, error)
	GetTable(ctx context.Context, id uuid.UUID) (*model.Table, error)
	CreateTable(ctx context.Context, req TableRequest) (*model.Table, error)
	UpdateTable(ctx context.Context, id uuid.UUID, req TableRequest) (*model.Table, error)
	DeleteTable(ctx context.Context, id uuid.UUID) error
}

type tableService struct {
	tableRepo repository.TableRepository
	orderRepo repository.OrderRepository
}

func NewTableService(tableRepo repository.TableRepository, orderRepo repository.OrderRepository) TableService {
	return &tableService{tableRepo: tableRepo, orderRepo: orderRepo}
}

func (s *tableService) ListTables(ctx context.Context, status string) ([]model.Table, error) {
	tables, err := s.tableRepo.List(ctx, status)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch tables: %w", err)
	}
	return tables, nil
}

func (s *tableService) GetTable(ctx context.Context, id uuid.UUID) (*model.Table, error) {
	t, err := s.tableRepo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "table")
	}
	return t, nil
}

func (s *tableService) CreateTable(ctx context.Context, req TableRequest) (*model.Table, error) {
	t := &model.Table{
		Number:   req.Number,
		Capacity: req.Capacity,
		Status:   orDefault(req.Status, model.TableAvailable),
		Location: req.Location,
	}
	if t.Capacity == 0 {
		t.Capacity = 2
	}
	if err := s.tableRepo.Create(ctx, t); err != nil {
		if isDuplicate(err) {
			return nil, fmt.Errorf("%w: table %d already exists", ErrConflict, t.Number)
		}
		return nil, fmt.Errorf("failed to create table: %w", err)
	}
	return t, nil
}

func (s *tableService) UpdateTable(ctx context.Context, id uuid.UUID, req TableRequest) (*model.Table, error) {
	t, err := s.tableRepo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "table")
	}
	t.Number = req.Number
	if req.Capacity > 0 {
		t.Capacity = req.Capacity
	}
	if req.Status != "" {
		t.Status = req.Status
	}
	t.Location = req.Location

	if err := s.tableRepo.Update(ctx, t); err != nil {
		if isDuplicate(err) {
			return nil, fmt.Errorf("%w: table %d already exists", ErrConflict, t.Number)
		}
		return nil, fmt.Errorf("failed to update table: %w", err)
	}
	return t, nil
}

func (s *tableService) DeleteTable(ctx context.Context, id uuid.UUID) error {
	t, err := s.tableRepo.FindByID(ctx, id)
	if err != nil {
		return lookupError(err, "table")
	}
	open, err := s.orderRepo.CountOpenByTable(ctx, t.Number)
	if err != nil {
		return fmt.Errorf("failed to count open orders: %w", err)
	}
	if open > 0 {
		return fmt.Errorf("%w: table %d has %d open orders", ErrConflict, t.Number, open)
	}
	if err := s.tableRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete table: %w", err)
	}
	return nil
}
