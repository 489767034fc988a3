package repository

import (
	"context"

	"restaurant/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TableRepository interface {
	Create(ctx context.Context, table *model.Table) error
	Update(ctx context.Context, table *model.Table) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Table, error)
	FindByNumber(ctx context.Context, number int) (*model.Table, error)
	List(ctx context.Context, status string) ([]model.Table, error)
	SetStatusByNumber(ctx context.Context, number int, status string) error
}

type tableRepository struct {
	db *gorm.DB
}

func NewTableRepository(db *gorm.DB) TableRepository {
	return &tableRepository{db: db}
}

func (r *tableRepository) Create(ctx context.Context, table *model.Table) error {
	return GetDB(ctx, r.db).Create(table).Error
}

func (r *tableRepository) Update(ctx context.Context, table *model.Table) error {
	return GetDB(ctx, r.db).Save(table).Error
}

func (r *tableRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.Table{}).Error
}

func (r *tableRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Table, error) {
	var table model.Table
	if err := GetDB(ctx, r.db).First(&table, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &table, nil
}

func (r *tableRepository) FindByNumber(ctx context.Context, number int) (*model.Table, error) {
	var table model.Table
	if err := GetDB(ctx, r.db).Where("number = ?", number).First(&table).Error; err != nil {
		return nil, err
	}
	return &table, nil
}

func (r *tableRepository) List(ctx context.Context, status string) ([]model.Table, error) {
	var tables []model.Table
	query := GetDB(ctx, r.db)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Order("number asc").Find(&tables).Error; err != nil {
		return nil, err
	}
	return tables, nil
}

func (r *tableRepository) SetStatusByNumber(ctx context.Context, number int, status string) error {
	return GetDB(ctx, r.db).Model(&model.Table{}).Where("number = ?", number).Update("status", status).Error
}
