package repository

import (
	"context"

	"restaurant/internal/model"
	"restaurant/pkg/pagination"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TaxRuleRepository interface {
	Create(ctx context.Context, rule *model.TaxRule) error
	Update(ctx context.Context, rule *model.TaxRule) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.TaxRule, error)
	List(ctx context.Context, activeOnly bool, p pagination.Params) ([]model.TaxRule, int64, error)
	// ListActive returns every active rule, highest priority first.
	ListActive(ctx context.Context) ([]model.TaxRule, error)
}

type taxRuleRepository struct {
	db *gorm.DB
}

func NewTaxRuleRepository(db *gorm.DB) TaxRuleRepository {
	return &taxRuleRepository{db: db}
}

func (r *taxRuleRepository) Create(ctx context.Context, rule *model.TaxRule) error {
	return GetDB(ctx, r.db).Create(rule).Error
}

func (r *taxRuleRepository) Update(ctx context.Context, rule *model.TaxRule) error {
	return GetDB(ctx, r.db).Save(rule).Error
}

func (r *taxRuleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.TaxRule{}).Error
}

func (r *taxRuleRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.TaxRule, error) {
	var rule model.TaxRule
	if err := GetDB(ctx, r.db).First(&rule, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &rule, nil
}

func (r *taxRuleRepository) List(ctx context.Context, activeOnly bool, p pagination.Params) ([]model.TaxRule, int64, error) {
	var rules []model.TaxRule
	var total int64

	query := GetDB(ctx, r.db).Model(&model.TaxRule{})
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	query = query.Session(&gorm.Session{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.Order("priority desc, created_at asc").Scopes(p.Scope).Find(&rules).Error; err != nil {
		return nil, 0, err
	}
	return rules, total, nil
}

func (r *taxRuleRepository) ListActive(ctx context.Context) ([]model.TaxRule, error) {
	var rules []model.TaxRule
	if err := GetDB(ctx, r.db).
		Where("is_active = ?", true).
		Order("priority desc, created_at asc").
		Find(&rules).Error; err != nil {
		return nil, err
	}
	return rules, nil
}

// cachedTaxRuleRepository keeps the active rule snapshot in the cache and drops it on every write.
type cachedTaxRuleRepository struct {
	TaxRuleRepository
	cache Cache
}

func NewCachedTaxRuleRepository(inner TaxRuleRepository, cache Cache) TaxRuleRepository {
	return &cachedTaxRuleRepository{TaxRuleRepository: inner, cache: cache}
}

func (r *cachedTaxRuleRepository) ListActive(ctx context.Context) ([]model.TaxRule, error) {
	return readThrough(ctx, r.cache, cacheKeyActiveTaxRules, r.TaxRuleRepository.ListActive)
}

func (r *cachedTaxRuleRepository) Create(ctx context.Context, rule *model.TaxRule) error {
	if err := r.TaxRuleRepository.Create(ctx, rule); err != nil {
		return err
	}
	invalidate(ctx, r.cache, cacheKeyActiveTaxRules)
	return nil
}

func (r *cachedTaxRuleRepository) Update(ctx context.Context, rule *model.TaxRule) error {
	if err := r.TaxRuleRepository.Update(ctx, rule); err != nil {
		return err
	}
	invalidate(ctx, r.cache, cacheKeyActiveTaxRules)
	return nil
}

func (r *cachedTaxRuleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.TaxRuleRepository.Delete(ctx, id); err != nil {
		return err
	}
	invalidate(ctx, r.cache, cacheKeyActiveTaxRules)
	return nil
}
