package service

import (
	"context"
	"fmt"
	"strings"

	"restaurant/internal/model"
	"restaurant/internal/pricing"
	"restaurant/internal/repository"
	"restaurant/pkg/pagination"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// --- Customer DTOs ---

type CreateCustomerRequest struct {
	Phone          string           `json:"phone" binding:"required,max=20"`
	Name           string           `json:"name" binding:"max=255"`
	CustomerType   string           `json:"customer_type" binding:"omitempty,oneof=regular vip staff"`
	MinOrderAmount *decimal.Decimal `json:"min_order_amount"`
	Notes          string           `json:"notes"`
}

// UpdateCustomerRequest patches only the fields that are sent.
type UpdateCustomerRequest struct {
	Phone          *string          `json:"phone" binding:"omitempty,max=20"`
	Name           *string          `json:"name" binding:"omitempty,max=255"`
	CustomerType   *string          `json:"customer_type" binding:"omitempty,oneof=regular vip staff"`
	MinOrderAmount *decimal.Decimal `json:"min_order_amount"`
	ClearMinimum   bool             `json:"clear_min_order_amount"`
	Notes          *string          `json:"notes"`
}

type CustomerService interface {
	ListCustomers(ctx context.Context, customerType, search string, p pagination.Params) ([]model.Customer, int64, error)
	GetCustomer(ctx context.Context, id uuid.UUID) (*model.Customer, error)
	CreateCustomer(ctx context.Context, req CreateCustomerRequest) (*model.Customer, error)
	UpdateCustomer(ctx context.Context, id uuid.UUID, req UpdateCustomerRequest) (*model.Customer, error)
	DeleteCustomer(ctx context.Context, id uuid.UUID) error
}

type customerService struct {
	customerRepo repository.CustomerRepository
}

func NewCustomerService(customerRepo repository.CustomerRepository) CustomerService {
	return &customerService{customerRepo: customerRepo}
}

func normalizePhone(phone string) string {
	return strings.Join(strings.Fields(phone), "")
}

func (s *customerService) ListCustomers(ctx context.Context, customerType, search string, p pagination.Params) ([]model.Customer, int64, error) {
	customers, total, err := s.customerRepo.List(ctx, customerType, strings.TrimSpace(search), p)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch customers: %w", err)
	}
	return customers, total, nil
}

func (s *customerService) GetCustomer(ctx context.Context, id uuid.UUID) (*model.Customer, error) {
	c, err := s.customerRepo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "customer")
	}
	return c, nil
}

func (s *customerService) CreateCustomer(ctx context.Context, req CreateCustomerRequest) (*model.Customer, error) {
	phone := normalizePhone(req.Phone)
	if phone == "" {
		return nil, validationError("phone is required")
	}
	if err := checkMinimum(req.MinOrderAmount); err != nil {
		return nil, err
	}

	c := &model.Customer{
		Phone:          phone,
		Name:           strings.TrimSpace(req.Name),
		CustomerType:   orDefault(req.CustomerType, string(pricing.CustomerRegular)),
		MinOrderAmount: req.MinOrderAmount,
		Notes:          req.Notes,
	}
	if err := s.customerRepo.Create(ctx, c); err != nil {
		if isDuplicate(err) {
			return nil, fmt.Errorf("%w: customer with phone %s already exists", ErrConflict, phone)
		}
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}
	return c, nil
}

func (s *customerService) UpdateCustomer(ctx context.Context, id uuid.UUID, req UpdateCustomerRequest) (*model.Customer, error) {
	c, err := s.customerRepo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "customer")
	}

	if req.Phone != nil {
		phone := normalizePhone(*req.Phone)
		if phone == "" {
			return nil, validationError("phone cannot be empty")
		}
		c.Phone = phone
	}
	if req.Name != nil {
		c.Name = strings.TrimSpace(*req.Name)
	}
	if req.CustomerType != nil {
		if !pricing.CustomerType(*req.CustomerType).Valid() {
			return nil, validationError("invalid customer_type %q", *req.CustomerType)
		}
		c.CustomerType = *req.CustomerType
	}
	if req.MinOrderAmount != nil {
		if err := checkMinimum(req.MinOrderAmount); err != nil {
			return nil, err
		}
		c.MinOrderAmount = req.MinOrderAmount
	}
	if req.ClearMinimum {
		c.MinOrderAmount = nil
	}
	if req.Notes != nil {
		c.Notes = *req.Notes
	}

	if err := s.customerRepo.Update(ctx, c); err != nil {
		if isDuplicate(err) {
			return nil, fmt.Errorf("%w: customer with phone %s already exists", ErrConflict, c.Phone)
		}
		return nil, fmt.Errorf("failed to update customer: %w", err)
	}
	return c, nil
}

func (s *customerService) DeleteCustomer(ctx context.Context, id uuid.UUID) error {
	if _, err := s.customerRepo.FindByID(ctx, id); err != nil {
		return lookupError(err, "customer")
	}
	if err := s.customerRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete customer: %w", err)
	}
	return nil
}

func checkMinimum(m *decimal.Decimal) error {
	if m != nil && m.IsNegative() {
		return validationError("min_order_amount must not be negative")
	}
	return nil
}
