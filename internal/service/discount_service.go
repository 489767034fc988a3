package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"restaurant/internal/metrics"
	"restaurant/internal/model"
	"restaurant/internal/pricing"
	"restaurant/internal/repository"
	"restaurant/pkg/pagination"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type DiscountRequest struct {
	Code              string           `json:"code" binding:"required,max=50"`
	Description       string           `json:"description"`
	Type              string           `json:"type" binding:"required,oneof=percentage fixed"`
	Value             decimal.Decimal  `json:"value"`
	AppliesTo         string           `json:"applies_to" binding:"omitempty,oneof=order product category"`
	TargetID          *uuid.UUID       `json:"target_id"`
	Active            *bool            `json:"active"`
	ExpiresAt         *time.Time       `json:"expires_at"`
	UsageLimit        *int             `json:"usage_limit" binding:"omitempty,gte=0"`
	MinOrderAmount    *decimal.Decimal `json:"min_order_amount"`
	MaxDiscountAmount *decimal.Decimal `json:"max_discount_amount"`
}

type ValidateDiscountRequest struct {
	Code     string          `json:"code" binding:"required"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

type DiscountService interface {
	ListDiscounts(ctx context.Context, search string, p pagination.Params) ([]model.DiscountCode, int64, error)
	GetDiscount(ctx context.Context, id uuid.UUID) (*model.DiscountCode, error)
	CreateDiscount(ctx context.Context, req DiscountRequest, actor *uuid.UUID) (*model.DiscountCode, error)
	UpdateDiscount(ctx context.Context, id uuid.UUID, req DiscountRequest, actor *uuid.UUID) (*model.DiscountCode, error)
	DeleteDiscount(ctx context.Context, id uuid.UUID, actor *uuid.UUID) error
	// Validate checks a code against an order subtotal. Rejections are results, not errors.
	Validate(ctx context.Context, req ValidateDiscountRequest) (pricing.DiscountResult, error)
}

type discountService struct {
	repo  repository.DiscountRepository
	audit AuditService
	now   func() time.Time
}

func NewDiscountService(repo repository.DiscountRepository, audit AuditService) DiscountService {
	return &discountService{repo: repo, audit: audit, now: time.Now}
}

func (s *discountService) ListDiscounts(ctx context.Context, search string, p pagination.Params) ([]model.DiscountCode, int64, error) {
	codes, total, err := s.repo.List(ctx, strings.TrimSpace(search), p)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch discount codes: %w", err)
	}
	return codes, total, nil
}

func (s *discountService) GetDiscount(ctx context.Context, id uuid.UUID) (*model.DiscountCode, error) {
	d, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "discount code")
	}
	return d, nil
}

func (s *discountService) CreateDiscount(ctx context.Context, req DiscountRequest, actor *uuid.UUID) (*model.DiscountCode, error) {
	if err := validateDiscount(req); err != nil {
		return nil, err
	}
	d := &model.DiscountCode{Active: true}
	applyDiscountRequest(d, req)

	if err := s.repo.Create(ctx, d); err != nil {
		if isDuplicate(err) {
			return nil, fmt.Errorf("%w: discount code %s already exists", ErrConflict, d.Code)
		}
		return nil, fmt.Errorf("failed to create discount code: %w", err)
	}
	recordAfterCommit(ctx, s.audit, actor, model.ActionCreateDiscount, d.ID.String(), d.Code, req)
	return d, nil
}

func (s *discountService) UpdateDiscount(ctx context.Context, id uuid.UUID, req DiscountRequest, actor *uuid.UUID) (*model.DiscountCode, error) {
	if err := validateDiscount(req); err != nil {
		return nil, err
	}
	d, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "discount code")
	}
	applyDiscountRequest(d, req)

	if err := s.repo.Update(ctx, d); err != nil {
		if isDuplicate(err) {
			return nil, fmt.Errorf("%w: discount code %s already exists", ErrConflict, d.Code)
		}
		return nil, fmt.Errorf("failed to update discount code: %w", err)
	}
	recordAfterCommit(ctx, s.audit, actor, model.ActionUpdateDiscount, d.ID.String(), d.Code, req)
	return d, nil
}

func (s *discountService) DeleteDiscount(ctx context.Context, id uuid.UUID, actor *uuid.UUID) error {
	d, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return lookupError(err, "discount code")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete discount code: %w", err)
	}
	recordAfterCommit(ctx, s.audit, actor, model.ActionDeleteDiscount, d.ID.String(), d.Code, nil)
	return nil
}

func (s *discountService) Validate(ctx context.Context, req ValidateDiscountRequest) (pricing.DiscountResult, error) {
	if req.Subtotal.IsNegative() {
		return pricing.DiscountResult{}, validationError("subtotal must not be negative")
	}
	code := pricing.NormalizeCode(req.Code)
	stored, err := s.repo.FindByCode(ctx, code)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return pricing.DiscountResult{}, fmt.Errorf("failed to look up discount code: %w", err)
	}

	var candidate *pricing.DiscountCode
	if stored != nil {
		candidate = stored.PricingCode()
	}
	res := pricing.ValidateAndApply(code, req.Subtotal, candidate, s.now())
	observeDiscount(res)
	return res, nil
}

func observeDiscount(res pricing.DiscountResult) {
	label := "ok"
	if !res.OK {
		label = string(res.Reason)
	}
	metrics.DiscountValidationsTotal.WithLabelValues(label).Inc()
}

func validateDiscount(req DiscountRequest) error {
	if pricing.NormalizeCode(req.Code) == "" {
		return validationError("code must not be blank")
	}
	switch pricing.DiscountType(req.Type) {
	case pricing.DiscountPercentage:
		if !req.Value.IsPositive() || req.Value.GreaterThan(decimal.NewFromInt(100)) {
			return validationError("percentage value must be greater than 0 and at most 100")
		}
	case pricing.DiscountFixed:
		if !req.Value.IsPositive() {
			return validationError("fixed value must be positive")
		}
	default:
		return validationError("invalid discount type %q", req.Type)
	}
	scope := pricing.DiscountScope(orDefault(req.AppliesTo, string(pricing.ScopeOrder)))
	if scope != pricing.ScopeOrder && req.TargetID == nil {
		return validationError("target_id is required for %s discounts", scope)
	}
	if req.MinOrderAmount != nil && req.MinOrderAmount.IsNegative() {
		return validationError("min_order_amount must not be negative")
	}
	if req.MaxDiscountAmount != nil && !req.MaxDiscountAmount.IsPositive() {
		return validationError("max_discount_amount must be positive")
	}
	return nil
}

func applyDiscountRequest(d *model.DiscountCode, req DiscountRequest) {
	d.Code = pricing.NormalizeCode(req.Code)
	d.Description = req.Description
	d.Type = req.Type
	d.Value = req.Value
	d.AppliesTo = orDefault(req.AppliesTo, string(pricing.ScopeOrder))
	d.TargetID = req.TargetID
	if d.AppliesTo == string(pricing.ScopeOrder) {
		d.TargetID = nil
	}
	if req.Active != nil {
		d.Active = *req.Active
	}
	d.ExpiresAt = req.ExpiresAt
	d.UsageLimit = req.UsageLimit
	d.MinOrderAmount = req.MinOrderAmount
	d.MaxDiscountAmount = req.MaxDiscountAmount
}
