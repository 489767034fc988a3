package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"restaurant/internal/model"
	"restaurant/pkg/pagination"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type fakeUsers struct {
	users  map[uuid.UUID]*model.User
	tokens map[string]*model.RefreshToken
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{users: map[uuid.UUID]*model.User{}, tokens: map[string]*model.RefreshToken{}}
}

func (f *fakeUsers) Create(_ context.Context, u *model.User) error {
	ensureID(&u.Base)
	cp := *u
	f.users[u.ID] = &cp
	return nil
}
func (f *fakeUsers) GetByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *u
	return &cp, nil
}
func (f *fakeUsers) find(match func(*model.User) bool) (*model.User, error) {
	for _, u := range f.users {
		if match(u) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}
func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*model.User, error) {
	return f.find(func(u *model.User) bool { return u.Email == email })
}
func (f *fakeUsers) GetByUsername(_ context.Context, username string) (*model.User, error) {
	return f.find(func(u *model.User) bool { return u.Username == username })
}
func (f *fakeUsers) List(context.Context, pagination.Params) ([]model.User, int64, error) {
	var out []model.User
	for _, u := range f.users {
		out = append(out, *u)
	}
	return out, int64(len(out)), nil
}
func (f *fakeUsers) Update(_ context.Context, u *model.User) error {
	cp := *u
	f.users[u.ID] = &cp
	return nil
}
func (f *fakeUsers) Delete(_ context.Context, id uuid.UUID) error {
	delete(f.users, id)
	return nil
}
func (f *fakeUsers) CountByRole(_ context.Context, role string) (int64, error) {
	var n int64
	for _, u := range f.users {
		if u.Role == role {
			n++
		}
	}
	return n, nil
}
func (f *fakeUsers) SaveRefreshToken(_ context.Context, t *model.RefreshToken) error {
	cp := *t
	f.tokens[t.Token] = &cp
	return nil
}
func (f *fakeUsers) FindRefreshToken(_ context.Context, token string) (*model.RefreshToken, error) {
	t, ok := f.tokens[token]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *t
	return &cp, nil
}
func (f *fakeUsers) DeleteRefreshToken(_ context.Context, token string) error {
	delete(f.tokens, token)
	return nil
}
func (f *fakeUsers) DeleteExpiredRefreshTokens(_ context.Context, before time.Time) (int64, error) {
	var n int64
	for k, t := range f.tokens {
		if t.ExpiresAt.Before(before) {
			delete(f.tokens, k)
			n++
		}
	}
	return n, nil
}

type fakeRoles struct {
	roles map[uuid.UUID]*model.Role
	perms map[uuid.UUID][]uuid.UUID
}

func newFakeRoles(roles ...model.Role) *fakeRoles {
	f := &fakeRoles{roles: map[uuid.UUID]*model.Role{}, perms: map[uuid.UUID][]uuid.UUID{}}
	for i := range roles {
		r := roles[i]
		ensureID(&r.Base)
		f.roles[r.ID] = &r
	}
	return f
}

func (f *fakeRoles) byName(name string) *model.Role {
	for _, r := range f.roles {
		if r.Name == name {
			return r
		}
	}
	return nil
}
func (f *fakeRoles) Create(_ context.Context, r *model.Role) error {
	if f.byName(r.Name) != nil {
		return gorm.ErrDuplicatedKey
	}
	ensureID(&r.Base)
	cp := *r
	f.roles[r.ID] = &cp
	return nil
}
func (f *fakeRoles) Update(_ context.Context, r *model.Role) error {
	if other := f.byName(r.Name); other != nil && other.ID != r.ID {
		return gorm.ErrDuplicatedKey
	}
	cp := *r
	f.roles[r.ID] = &cp
	return nil
}
func (f *fakeRoles) Delete(_ context.Context, id uuid.UUID) error {
	delete(f.roles, id)
	return nil
}
func (f *fakeRoles) FindByID(_ context.Context, id uuid.UUID) (*model.Role, error) {
	r, ok := f.roles[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *r
	return &cp, nil
}
func (f *fakeRoles) FindByIDWithPermissions(ctx context.Context, id uuid.UUID) (*model.Role, error) {
	r, err := f.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	for _, pid := range f.perms[id] {
		p := model.Permission{Code: "perm", Name: "perm"}
		p.ID = pid
		r.Permissions = append(r.Permissions, p)
	}
	return r, nil
}
func (f *fakeRoles) FindByName(_ context.Context, name string) (*model.Role, error) {
	if r := f.byName(name); r != nil {
		cp := *r
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}
func (f *fakeRoles) ListAll(context.Context) ([]model.Role, error) {
	var out []model.Role
	for _, r := range f.roles {
		out = append(out, *r)
	}
	return out, nil
}
func (f *fakeRoles) ListPermissions(context.Context) ([]model.Permission, error) { return nil, nil }
func (f *fakeRoles) UpdatePermissions(_ context.Context, roleID uuid.UUID, ids []uuid.UUID) error {
	f.perms[roleID] = ids
	return nil
}
func (f *fakeRoles) GetPermissionsByRoleName(context.Context, string) ([]string, error) {
	return nil, nil
}

var testAuth = AuthConfig{Secret: []byte("test-secret"), AccessTTL: 15 * time.Minute, RefreshTTL: 24 * time.Hour}

func newUserFixture(t *testing.T) (*userService, *fakeUsers, *model.User) {
	t.Helper()
	users := newFakeUsers()
	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	cashier := &model.User{Username: "mai", Email: "mai@example.com", Password: string(hash), Role: "cashier", IsActive: true}
	_ = users.Create(context.Background(), cashier)

	svc := NewUserService(users, newFakeRoles(model.Role{Name: "cashier"}, model.Role{Name: "admin", IsSystem: true}), testAuth).(*userService)
	svc.now = func() time.Time { return checkoutNow }
	return svc, users, cashier
}

func TestLogin(t *testing.T) {
	svc, users, cashier := newUserFixture(t)
	ctx := context.Background()

	for _, identifier := range []string{"mai", "MAI@example.com"} {
		pair, err := svc.Login(ctx, LoginUserRequest{Identifier: identifier, Password: "secret123"})
		if err != nil {
			t.Fatalf("Login(%s): %v", identifier, err)
		}
		claims := jwt.MapClaims{}
		if _, _, err := jwt.NewParser().ParseUnverified(pair.AccessToken, claims); err != nil {
			t.Fatalf("parse: %v", err)
		}
		if claims["sub"] != cashier.ID.String() || claims["role"] != "cashier" {
			t.Errorf("claims = %v", claims)
		}
		if _, ok := users.tokens[pair.RefreshToken]; !ok {
			t.Error("refresh token not stored")
		}
	}

	if _, err := svc.Login(ctx, LoginUserRequest{Identifier: "mai", Password: "wrong"}); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("wrong password: err = %v", err)
	}
	if _, err := svc.Login(ctx, LoginUserRequest{Identifier: "ghost", Password: "secret123"}); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("unknown user: err = %v", err)
	}

	users.users[cashier.ID].IsActive = false
	if _, err := svc.Login(ctx, LoginUserRequest{Identifier: "mai", Password: "secret123"}); !errors.Is(err, ErrForbidden) {
		t.Errorf("disabled: err = %v", err)
	}
}

func TestRefresh_RotatesToken(t *testing.T) {
	svc, users, _ := newUserFixture(t)
	ctx := context.Background()

	pair, err := svc.Login(ctx, LoginUserRequest{Identifier: "mai", Password: "secret123"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	next, err := svc.Refresh(ctx, pair.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if next.RefreshToken == pair.RefreshToken {
		t.Error("refresh token must rotate")
	}
	if _, err := svc.Refresh(ctx, pair.RefreshToken); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("reuse: err = %v, want ErrUnauthorized", err)
	}

	users.tokens[next.RefreshToken].ExpiresAt = checkoutNow.Add(-time.Minute)
	if _, err := svc.Refresh(ctx, next.RefreshToken); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("expired: err = %v", err)
	}
	if len(users.tokens) != 0 {
		t.Errorf("tokens left = %d", len(users.tokens))
	}
}

func TestCreateUser(t *testing.T) {
	svc, _, _ := newUserFixture(t)
	ctx := context.Background()

	resp, err := svc.CreateUser(ctx, CreateUserRequest{Username: "an", Email: " An@Example.com", Password: "secret123", Role: "cashier"})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if resp.Email != "an@example.com" || !resp.IsActive {
		t.Errorf("resp = %+v", resp)
	}

	if _, err := svc.CreateUser(ctx, CreateUserRequest{Username: "mai", Email: "x@example.com", Password: "secret123", Role: "cashier"}); !errors.Is(err, ErrConflict) {
		t.Errorf("duplicate: err = %v", err)
	}
	if _, err := svc.CreateUser(ctx, CreateUserRequest{Username: "binh", Email: "b@example.com", Password: "secret123", Role: "chef"}); !errors.Is(err, ErrValidation) {
		t.Errorf("unknown role: err = %v", err)
	}
}

func TestPurgeExpiredSessions(t *testing.T) {
	svc, users, cashier := newUserFixture(t)
	users.tokens["old"] = &model.RefreshToken{UserID: cashier.ID, Token: "old", ExpiresAt: checkoutNow.Add(-time.Hour)}
	users.tokens["live"] = &model.RefreshToken{UserID: cashier.ID, Token: "live", ExpiresAt: checkoutNow.Add(time.Hour)}

	n, err := svc.PurgeExpiredSessions(context.Background())
	if err != nil || n != 1 {
		t.Fatalf("purged = %d, err = %v", n, err)
	}
	if _, ok := users.tokens["live"]; !ok {
		t.Error("live token removed")
	}
}

func TestRoleService(t *testing.T) {
	roles := newFakeRoles(model.Role{Name: "admin", IsSystem: true}, model.Role{Name: "cashier"})
	users := newFakeUsers()
	_ = users.Create(context.Background(), &model.User{Username: "mai", Role: "cashier"})
	var invalidated []string
	svc := NewRoleService(roles, users, passTx{}, func(role string) { invalidated = append(invalidated, role) })
	ctx := context.Background()

	created, err := svc.CreateRole(ctx, CreateRoleRequest{Name: " Host ", PermissionIDs: []uuid.UUID{uuid.New()}})
	if err != nil {
		t.Fatalf("CreateRole: %v", err)
	}
	if created.Name != "host" || len(created.Permissions) != 1 {
		t.Errorf("created = %+v", created)
	}
	if _, err := svc.CreateRole(ctx, CreateRoleRequest{Name: "HOST"}); !errors.Is(err, ErrConflict) {
		t.Errorf("duplicate: err = %v", err)
	}

	admin := roles.byName("admin")
	if err := svc.DeleteRole(ctx, admin.ID); !errors.Is(err, ErrForbidden) {
		t.Errorf("delete system: err = %v", err)
	}
	if _, err := svc.UpdateRole(ctx, admin.ID, UpdateRoleRequest{Name: "root"}); !errors.Is(err, ErrForbidden) {
		t.Errorf("rename system: err = %v", err)
	}

	cashier := roles.byName("cashier")
	if err := svc.DeleteRole(ctx, cashier.ID); !errors.Is(err, ErrConflict) {
		t.Errorf("delete in use: err = %v", err)
	}

	hostID := uuid.MustParse(created.ID)
	if err := svc.DeleteRole(ctx, hostID); err != nil {
		t.Fatalf("DeleteRole: %v", err)
	}
	if strings.Join(invalidated, ",") != "host" {
		t.Errorf("invalidated = %v", invalidated)
	}
}
