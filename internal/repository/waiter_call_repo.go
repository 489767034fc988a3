package repository

import (
	"context"

	"restaurant/internal/model"
	"restaurant/pkg/pagination"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type WaiterCallRepository interface {
	Create(ctx context.Context, call *model.WaiterCall) error
	Update(ctx context.Context, call *model.WaiterCall) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.WaiterCall, error)
	// FindOpen returns the unresolved call for a table and reason, or gorm.ErrRecordNotFound.
	FindOpen(ctx context.Context, tableNumber int, reason string) (*model.WaiterCall, error)
	List(ctx context.Context, status string, p pagination.Params) ([]model.WaiterCall, int64, error)
}

type waiterCallRepository struct {
	db *gorm.DB
}

func NewWaiterCallRepository(db *gorm.DB) WaiterCallRepository {
	return &waiterCallRepository{db: db}
}

func (r *waiterCallRepository) Create(ctx context.Context, call *model.WaiterCall) error {
	return GetDB(ctx, r.db).Create(call).Error
}

func (r *waiterCallRepository) Update(ctx context.Context, call *model.WaiterCall) error {
	return GetDB(ctx, r.db).Save(call).Error
}

func (r *waiterCallRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.WaiterCall, error) {
	var call model.WaiterCall
	if err := GetDB(ctx, r.db).First(&call, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &call, nil
}

func (r *waiterCallRepository) FindOpen(ctx context.Context, tableNumber int, reason string) (*model.WaiterCall, error) {
	var call model.WaiterCall
	if err := GetDB(ctx, r.db).
		Where("table_number = ? AND reason = ? AND status <> ?", tableNumber, reason, model.WaiterCallResolved).
		Order("created_at desc").
		First(&call).Error; err != nil {
		return nil, err
	}
	return &call, nil
}

func (r *waiterCallRepository) List(ctx context.Context, status string, p pagination.Params) ([]model.WaiterCall, int64, error) {
	var calls []model.WaiterCall
	var total int64

	query := GetDB(ctx, r.db).Model(&model.WaiterCall{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	query = query.Session(&gorm.Session{})

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := query.Order("created_at asc").Scopes(p.Scope).Find(&calls).Error; err != nil {
		return nil, 0, err
	}
	return calls, total, nil
}
