package repository

import (
	"context"
	"strings"

	"restaurant/internal/model"
	"restaurant/pkg/pagination"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DiscountRepository interface {
	Create(ctx context.Context, d *model.DiscountCode) error
	Update(ctx context.Context, d *model.DiscountCode) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.DiscountCode, error)
	FindByCode(ctx context.Context, code string) (*model.DiscountCode, error)
	// FindByCodeForUpdate locks the row until the surrounding transaction ends.
	FindByCodeForUpdate(ctx context.Context, code string) (*model.DiscountCode, error)
	List(ctx context.Context, search string, p pagination.Params) ([]model.DiscountCode, int64, error)
	IncrementUsage(ctx context.Context, id uuid.UUID) error
}

type discountRepository struct {
	db *gorm.DB
}

func NewDiscountRepository(db *gorm.DB) DiscountRepository {
	return &discountRepository{db: db}
}

func (r *discountRepository) Create(ctx context.Context, d *model.DiscountCode) error {
	return GetDB(ctx, r.db).Create(d).Error
}

func (r *discountRepository) Update(ctx context.Context, d *model.DiscountCode) error {
	return GetDB(ctx, r.db).Save(d).Error
}

func (r *discountRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.DiscountCode{}).Error
}

func (r *discountRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.DiscountCode, error) {
	var d model.DiscountCode
	if err := GetDB(ctx, r.db).First(&d, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *discountRepository) FindByCode(ctx context.Context, code string) (*model.DiscountCode, error) {
	var d model.DiscountCode
	if err := GetDB(ctx, r.db).Where("code = ?", code).First(&d).Error; err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *discountRepository) FindByCodeForUpdate(ctx context.Context, code string) (*model.DiscountCode, error) {
	var d model.DiscountCode
	if err := GetDB(ctx, r.db).Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("code = ?", code).First(&d).Error; err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *discountRepository) List(ctx context.Context, search string, p pagination.Params) ([]model.DiscountCode, int64, error) {
	var codes []model.DiscountCode
	var total int64

	query := GetDB(ctx, r.db).Model(&model.DiscountCode{})
	if search != "" {
		query = query.Where("code LIKE ?", "%"+strings.ToUpper(search)+"%")
	}
	query = query.Session(&gorm.Session{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := query.Order("created_at desc").Scopes(p.Scope).Find(&codes).Error; err != nil {
		return nil, 0, err
	}
	return codes, total, nil
}

func (r *discountRepository) IncrementUsage(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Model(&model.DiscountCode{}).
		Where("id = ?", id).
		UpdateColumn("used_count", gorm.Expr("used_count + ?", 1)).Error
}
