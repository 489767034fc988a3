package repository

import (
	"context"

	"restaurant/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SettingRepository interface {
	// All returns every stored setting keyed by name.
	All(ctx context.Context) (map[string]string, error)
	Upsert(ctx context.Context, key, value string) error
}

type settingRepository struct {
	db *gorm.DB
}

func NewSettingRepository(db *gorm.DB) SettingRepository {
	return &settingRepository{db: db}
}

func (r *settingRepository) All(ctx context.Context) (map[string]string, error) {
	var rows []model.Setting
	if err := GetDB(ctx, r.db).Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[string]string, len(rows))
	for _, s := range rows {
		out[s.Key] = s.Value
	}
	return out, nil
}

func (r *settingRepository) Upsert(ctx context.Context, key, value string) error {
	s := model.Setting{Key: key, Value: value}
	return GetDB(ctx, r.db).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&s).Error
}

type cachedSettingRepository struct {
	SettingRepository
	cache Cache
}

func NewCachedSettingRepository(inner SettingRepository, cache Cache) SettingRepository {
	return &cachedSettingRepository{SettingRepository: inner, cache: cache}
}

func (r *cachedSettingRepository) All(ctx context.Context) (map[string]string, error) {
	return readThrough(ctx, r.cache, cacheKeySettings, r.SettingRepository.All)
}

func (r *cachedSettingRepository) Upsert(ctx context.Context, key, value string) error {
	if err := r.SettingRepository.Upsert(ctx, key, value); err != nil {
		return err
	}
	invalidate(ctx, r.cache, cacheKeySettings)
	return nil
}
