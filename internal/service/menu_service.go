package service

import (
	"context"
	"fmt"
	"strings"

	"restaurant/internal/model"
	"restaurant/internal/repository"
	"restaurant/pkg/pagination"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DTOs
type CategoryRequest struct {
	Name        string `json:"name" binding:"required,max=100"`
	Description string `json:"description"`
	SortOrder   int    `json:"sort_order"`
	IsActive    *bool  `json:"is_active"`
}

type CustomizationRequest struct {
	Kind        string          `json:"kind" binding:"required,oneof=size option addon"`
	Name        string          `json:"name" binding:"required,max=100"`
	PriceDelta  decimal.Decimal `json:"price_delta"`
	IsAvailable *bool           `json:"is_available"`
}

type ProductRequest struct {
	CategoryID     uuid.UUID              `json:"category_id" binding:"required"`
	Name           string                 `json:"name" binding:"required,max=255"`
	Description    string                 `json:"description"`
	Price          decimal.Decimal        `json:"price"`
	ImageURL       string                 `json:"image_url" binding:"omitempty,url,max=512"`
	IsAvailable    *bool                  `json:"is_available"`
	SortOrder      int                    `json:"sort_order"`
	Customizations []CustomizationRequest `json:"customizations" binding:"omitempty,dive"`
}

type MenuService interface {
	// GetMenu is the customer-facing menu: active categories, available products and options.
	GetMenu(ctx context.Context) ([]model.Category, error)

	ListCategories(ctx context.Context) ([]model.Category, error)
	CreateCategory(ctx context.Context, req CategoryRequest) (*model.Category, error)
	UpdateCategory(ctx context.Context, id uuid.UUID, req CategoryRequest) (*model.Category, error)
	DeleteCategory(ctx context.Context, id uuid.UUID) error

	ListProducts(ctx context.Context, categoryID *uuid.UUID, search string, p pagination.Params) ([]model.Product, int64, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*model.Product, error)
	CreateProduct(ctx context.Context, req ProductRequest, actor *uuid.UUID) (*model.Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, req ProductRequest, actor *uuid.UUID) (*model.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID, actor *uuid.UUID) error
}

type menuService struct {
	categoryRepo repository.CategoryRepository
	productRepo  repository.ProductRepository
	audit        AuditService
	txManager    repository.TransactionManager
}

func NewMenuService(
	categoryRepo repository.CategoryRepository,
	productRepo repository.ProductRepository,
	audit AuditService,
	txManager repository.TransactionManager,
) MenuService {
	return &menuService{
		categoryRepo: categoryRepo,
		productRepo:  productRepo,
		audit:        audit,
		txManager:    txManager,
	}
}

func (s *menuService) GetMenu(ctx context.Context) ([]model.Category, error) {
	menu, err := s.categoryRepo.ListMenu(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load menu: %w", err)
	}
	return menu, nil
}

func (s *menuService) ListCategories(ctx context.Context) ([]model.Category, error) {
	categories, err := s.categoryRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch categories: %w", err)
	}
	return categories, nil
}

func (s *menuService) CreateCategory(ctx context.Context, req CategoryRequest) (*model.Category, error) {
	category := &model.Category{IsActive: true}
	applyCategoryRequest(category, req)
	if err := s.categoryRepo.Create(ctx, category); err != nil {
		if isDuplicate(err) {
			return nil, fmt.Errorf("%w: category %s already exists", ErrConflict, category.Name)
		}
		return nil, fmt.Errorf("failed to create category: %w", err)
	}
	return category, nil
}

func (s *menuService) UpdateCategory(ctx context.Context, id uuid.UUID, req CategoryRequest) (*model.Category, error) {
	category, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "category")
	}
	applyCategoryRequest(category, req)
	if err := s.categoryRepo.Update(ctx, category); err != nil {
		if isDuplicate(err) {
			return nil, fmt.Errorf("%w: category %s already exists", ErrConflict, category.Name)
		}
		return nil, fmt.Errorf("failed to update category: %w", err)
	}
	return category, nil
}

func (s *menuService) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	if _, err := s.categoryRepo.FindByID(ctx, id); err != nil {
		return lookupError(err, "category")
	}
	count, err := s.categoryRepo.CountProducts(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to count products: %w", err)
	}
	if count > 0 {
		return fmt.Errorf("%w: category still has %d products", ErrConflict, count)
	}
	if err := s.categoryRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	return nil
}

func (s *menuService) ListProducts(ctx context.Context, categoryID *uuid.UUID, search string, p pagination.Params) ([]model.Product, int64, error) {
	products, total, err := s.productRepo.List(ctx, categoryID, strings.TrimSpace(search), p)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch products: %w", err)
	}
	return products, total, nil
}

func (s *menuService) GetProduct(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "product")
	}
	return product, nil
}

func (s *menuService) CreateProduct(ctx context.Context, req ProductRequest, actor *uuid.UUID) (*model.Product, error) {
	if err := validateProduct(req); err != nil {
		return nil, err
	}
	if _, err := s.categoryRepo.FindByID(ctx, req.CategoryID); err != nil {
		return nil, lookupError(err, "category")
	}

	product := &model.Product{IsAvailable: true}
	applyProductRequest(product, req)
	product.Customizations = customizationsFrom(req.Customizations)

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.productRepo.Create(txCtx, product); err != nil {
			return fmt.Errorf("failed to create product: %w", err)
		}
		return s.audit.Record(txCtx, actor, model.ActionCreateProduct, product.ID.String(), product.Name, req)
	})
	if err != nil {
		return nil, err
	}
	return product, nil
}

func (s *menuService) UpdateProduct(ctx context.Context, id uuid.UUID, req ProductRequest, actor *uuid.UUID) (*model.Product, error) {
	if err := validateProduct(req); err != nil {
		return nil, err
	}
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "product")
	}
	if product.CategoryID != req.CategoryID {
		if _, err := s.categoryRepo.FindByID(ctx, req.CategoryID); err != nil {
			return nil, lookupError(err, "category")
		}
	}
	applyProductRequest(product, req)

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.productRepo.Update(txCtx, product); err != nil {
			return fmt.Errorf("failed to update product: %w", err)
		}
		// nil leaves the options untouched, an empty list clears them
		if req.Customizations != nil {
			items := customizationsFrom(req.Customizations)
			if err := s.productRepo.ReplaceCustomizations(txCtx, product.ID, items); err != nil {
				return fmt.Errorf("failed to replace customizations: %w", err)
			}
			product.Customizations = items
		}
		return s.audit.Record(txCtx, actor, model.ActionUpdateProduct, product.ID.String(), product.Name, req)
	})
	if err != nil {
		return nil, err
	}
	return product, nil
}

func (s *menuService) DeleteProduct(ctx context.Context, id uuid.UUID, actor *uuid.UUID) error {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return lookupError(err, "product")
	}

	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		// soft delete; order lines keep their own snapshot
		if err := s.productRepo.Delete(txCtx, id); err != nil {
			return fmt.Errorf("failed to delete product: %w", err)
		}
		return s.audit.Record(txCtx, actor, model.ActionDeleteProduct, product.ID.String(), product.Name, nil)
	})
}

func validateProduct(req ProductRequest) error {
	if req.Price.IsNegative() {
		return validationError("price must not be negative")
	}
	for i, c := range req.Customizations {
		if strings.TrimSpace(c.Name) == "" {
			return validationError("customization %d: name is required", i)
		}
	}
	return nil
}

func applyCategoryRequest(c *model.Category, req CategoryRequest) {
	c.Name = strings.TrimSpace(req.Name)
	c.Description = req.Description
	c.SortOrder = req.SortOrder
	if req.IsActive != nil {
		c.IsActive = *req.IsActive
	}
}

func applyProductRequest(p *model.Product, req ProductRequest) {
	p.CategoryID = req.CategoryID
	p.Name = strings.TrimSpace(req.Name)
	p.Description = req.Description
	p.Price = req.Price
	p.ImageURL = req.ImageURL
	p.SortOrder = req.SortOrder
	if req.IsAvailable != nil {
		p.IsAvailable = *req.IsAvailable
	}
}

func customizationsFrom(reqs []CustomizationRequest) []model.ProductCustomization {
	out := make([]model.ProductCustomization, 0, len(reqs))
	for _, r := range reqs {
		available := true
		if r.IsAvailable != nil {
			available = *r.IsAvailable
		}
		out = append(out, model.ProductCustomization{
			Kind:        r.Kind,
			Name:        strings.TrimSpace(r.Name),
			PriceDelta:  r.PriceDelta,
			IsAvailable: available,
		})
	}
	return out
}
