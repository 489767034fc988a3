package repository

import (
	"context"
	"strings"
	"time"

	"restaurant/internal/model"
	"restaurant/pkg/pagination"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CustomerRepository interface {
	Create(ctx context.Context, customer *model.Customer) error
	Update(ctx context.Context, customer *model.Customer) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Customer, error)
	FindByPhone(ctx context.Context, phone string) (*model.Customer, error)
	List(ctx context.Context, customerType, search string, p pagination.Params) ([]model.Customer, int64, error)
	// RecordOrder creates the customer on first order and bumps the order counter.
	RecordOrder(ctx context.Context, phone, name string, at time.Time) (*model.Customer, error)
}

type customerRepository struct {
	db *gorm.DB
}

func NewCustomerRepository(db *gorm.DB) CustomerRepository {
	return &customerRepository{db: db}
}

func (r *customerRepository) Create(ctx context.Context, customer *model.Customer) error {
	return GetDB(ctx, r.db).Create(customer).Error
}

func (r *customerRepository) Update(ctx context.Context, customer *model.Customer) error {
	return GetDB(ctx, r.db).Save(customer).Error
}

func (r *customerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.Customer{}).Error
}

func (r *customerRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Customer, error) {
	var customer model.Customer
	if err := GetDB(ctx, r.db).First(&customer, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *customerRepository) FindByPhone(ctx context.Context, phone string) (*model.Customer, error) {
	var customer model.Customer
	if err := GetDB(ctx, r.db).Where("phone = ?", phone).First(&customer).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *customerRepository) List(ctx context.Context, customerType, search string, p pagination.Params) ([]model.Customer, int64, error) {
	var customers []model.Customer
	var total int64

	query := GetDB(ctx, r.db).Model(&model.Customer{})
	if customerType != "" {
		query = query.Where("customer_type = ?", customerType)
	}
	if search != "" {
		like := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR phone LIKE ?", like, like)
	}
	query = query.Session(&gorm.Session{})

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := query.Order("created_at desc").Scopes(p.Scope).Find(&customers).Error; err != nil {
		return nil, 0, err
	}
	return customers, total, nil
}

func (r *customerRepository) RecordOrder(ctx context.Context, phone, name string, at time.Time) (*model.Customer, error) {
	db := GetDB(ctx, r.db)

	fresh := model.Customer{Phone: phone, Name: name, CustomerType: "regular"}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&fresh).Error; err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"order_count":   gorm.Expr("order_count + ?", 1),
		"last_order_at": at,
	}
	if err := db.Model(&model.Customer{}).Where("phone = ?", phone).Updates(updates).Error; err != nil {
		return nil, err
	}
	if name != "" {
		if err := db.Model(&model.Customer{}).Where("phone = ? AND (name IS NULL OR name = '')", phone).
			Update("name", name).Error; err != nil {
			return nil, err
		}
	}
	return r.FindByPhone(ctx, phone)
}
