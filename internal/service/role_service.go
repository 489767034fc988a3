package service

import (
	"context"
	"fmt"
	"strings"

	"restaurant/internal/model"
	"restaurant/internal/repository"

	"github.com/google/uuid"
)

// --- DTOs ---

type CreateRoleRequest struct {
	Name          string      `json:"name" binding:"required,max=50"`
	Description   string      `json:"description"`
	PermissionIDs []uuid.UUID `json:"permission_ids"`
}

type UpdateRoleRequest struct {
	Name        string `json:"name" binding:"required,max=50"`
	Description string `json:"description"`
}

type UpdateRolePermissionsRequest struct {
	PermissionIDs []uuid.UUID `json:"permission_ids" binding:"required"`
}

type RoleResponse struct {
	ID          string               `json:"id"`
	Name        string               `json:"name"`
	Description string               `json:"description"`
	IsSystem    bool                 `json:"is_system"`
	Permissions []PermissionResponse `json:"permissions"`
	CreatedAt   string               `json:"created_at"`
}

type PermissionResponse struct {
	ID    string `json:"id"`
	Code  string `json:"code"`
	Name  string `json:"name"`
	Group string `json:"group"`
}

// --- Interface ---

type RoleService interface {
	ListRoles(ctx context.Context) ([]RoleResponse, error)
	GetRole(ctx context.Context, id uuid.UUID) (*RoleResponse, error)
	CreateRole(ctx context.Context, req CreateRoleRequest) (*RoleResponse, error)
	UpdateRole(ctx context.Context, id uuid.UUID, req UpdateRoleRequest) (*RoleResponse, error)
	DeleteRole(ctx context.Context, id uuid.UUID) error
	ListPermissions(ctx context.Context) ([]PermissionResponse, error)
	UpdateRolePermissions(ctx context.Context, id uuid.UUID, req UpdateRolePermissionsRequest) (*RoleResponse, error)
}

type roleService struct {
	roleRepo  repository.RoleRepository
	userRepo  repository.UserRepository
	txManager repository.TransactionManager
	// permissionsChanged drops any cached grants for the role.
	permissionsChanged func(role string)
}

func NewRoleService(
	roleRepo repository.RoleRepository,
	userRepo repository.UserRepository,
	txManager repository.TransactionManager,
	permissionsChanged func(role string),
) RoleService {
	if permissionsChanged == nil {
		permissionsChanged = func(string) {}
	}
	return &roleService{
		roleRepo:           roleRepo,
		userRepo:           userRepo,
		txManager:          txManager,
		permissionsChanged: permissionsChanged,
	}
}

// --- Implementation ---

func (s *roleService) ListRoles(ctx context.Context) ([]RoleResponse, error) {
	roles, err := s.roleRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch roles: %w", err)
	}

	res := make([]RoleResponse, 0, len(roles))
	for _, r := range roles {
		res = append(res, toRoleResponse(r))
	}
	return res, nil
}

func (s *roleService) GetRole(ctx context.Context, id uuid.UUID) (*RoleResponse, error) {
	role, err := s.roleRepo.FindByIDWithPermissions(ctx, id)
	if err != nil {
		return nil, lookupError(err, "role")
	}
	resp := toRoleResponse(*role)
	return &resp, nil
}

func (s *roleService) CreateRole(ctx context.Context, req CreateRoleRequest) (*RoleResponse, error) {
	role := model.Role{
		Name:        strings.ToLower(strings.TrimSpace(req.Name)),
		Description: req.Description,
		IsSystem:    false,
	}

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.roleRepo.Create(txCtx, &role); err != nil {
			if isDuplicate(err) {
				return fmt.Errorf("%w: role %s already exists", ErrConflict, role.Name)
			}
			return fmt.Errorf("failed to create role: %w", err)
		}
		if len(req.PermissionIDs) > 0 {
			if err := s.roleRepo.UpdatePermissions(txCtx, role.ID, req.PermissionIDs); err != nil {
				return fmt.Errorf("failed to assign permissions: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetRole(ctx, role.ID)
}

func (s *roleService) UpdateRole(ctx context.Context, id uuid.UUID, req UpdateRoleRequest) (*RoleResponse, error) {
	role, err := s.roleRepo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "role")
	}

	name := strings.ToLower(strings.TrimSpace(req.Name))
	if role.IsSystem && name != role.Name {
		return nil, fmt.Errorf("%w: system role %s cannot be renamed", ErrForbidden, role.Name)
	}
	if name != role.Name {
		inUse, err := s.userRepo.CountByRole(ctx, role.Name)
		if err != nil {
			return nil, fmt.Errorf("failed to count users: %w", err)
		}
		if inUse > 0 {
			return nil, fmt.Errorf("%w: role %s is assigned to %d users", ErrConflict, role.Name, inUse)
		}
	}
	old := role.Name
	role.Name = name
	role.Description = req.Description

	if err := s.roleRepo.Update(ctx, role); err != nil {
		if isDuplicate(err) {
			return nil, fmt.Errorf("%w: role %s already exists", ErrConflict, name)
		}
		return nil, fmt.Errorf("failed to update role: %w", err)
	}
	s.permissionsChanged(old)

	return s.GetRole(ctx, id)
}

func (s *roleService) DeleteRole(ctx context.Context, id uuid.UUID) error {
	role, err := s.roleRepo.FindByID(ctx, id)
	if err != nil {
		return lookupError(err, "role")
	}
	if role.IsSystem {
		return fmt.Errorf("%w: cannot delete system role %s", ErrForbidden, role.Name)
	}
	inUse, err := s.userRepo.CountByRole(ctx, role.Name)
	if err != nil {
		return fmt.Errorf("failed to count users: %w", err)
	}
	if inUse > 0 {
		return fmt.Errorf("%w: role %s is assigned to %d users", ErrConflict, role.Name, inUse)
	}

	if err := s.roleRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete role: %w", err)
	}
	s.permissionsChanged(role.Name)
	return nil
}

func (s *roleService) ListPermissions(ctx context.Context) ([]PermissionResponse, error) {
	perms, err := s.roleRepo.ListPermissions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch permissions: %w", err)
	}

	res := make([]PermissionResponse, 0, len(perms))
	for _, p := range perms {
		res = append(res, toPermissionResponse(p))
	}
	return res, nil
}

func (s *roleService) UpdateRolePermissions(ctx context.Context, id uuid.UUID, req UpdateRolePermissionsRequest) (*RoleResponse, error) {
	role, err := s.roleRepo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "role")
	}
	if err := s.roleRepo.UpdatePermissions(ctx, id, req.PermissionIDs); err != nil {
		return nil, fmt.Errorf("failed to update permissions: %w", err)
	}
	s.permissionsChanged(role.Name)

	return s.GetRole(ctx, id)
}

// --- Helpers ---

func toRoleResponse(r model.Role) RoleResponse {
	perms := make([]PermissionResponse, 0, len(r.Permissions))
	for _, p := range r.Permissions {
		perms = append(perms, toPermissionResponse(p))
	}

	return RoleResponse{
		ID:          r.ID.String(),
		Name:        r.Name,
		Description: r.Description,
		IsSystem:    r.IsSystem,
		Permissions: perms,
		CreatedAt:   r.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

func toPermissionResponse(p model.Permission) PermissionResponse {
	return PermissionResponse{
		ID:    p.ID.String(),
		Code:  p.Code,
		Name:  p.Name,
		Group: p.Group,
	}
}
