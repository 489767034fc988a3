package handler

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"restaurant/internal/service"

	"github.com/google/uuid"
)

type fakeUsers struct {
	service.UserService
	user    *service.UserResponse
	revoked []string
}

func (f *fakeUsers) pair(refresh string) *service.TokenPair {
	return &service.TokenPair{AccessToken: "access", RefreshToken: refresh, AccessTTL: time.Minute, RefreshTTL: time.Hour, User: f.user}
}

func (f *fakeUsers) Login(_ context.Context, req service.LoginUserRequest) (*service.TokenPair, error) {
	if req.Password != "secret1" {
		return nil, fmt.Errorf("%w: invalid credentials", service.ErrUnauthorized)
	}
	return f.pair("refresh-1"), nil
}

func (f *fakeUsers) Refresh(_ context.Context, token string) (*service.TokenPair, error) {
	if token != "refresh-1" {
		return nil, fmt.Errorf("%w: invalid refresh token", service.ErrUnauthorized)
	}
	return f.pair("refresh-2"), nil
}

func (f *fakeUsers) Logout(_ context.Context, token string) error {
	f.revoked = append(f.revoked, token)
	return nil
}

func (f *fakeUsers) GetUserByID(_ context.Context, id uuid.UUID) (*service.UserResponse, error) {
	if id != f.user.ID {
		return nil, service.ErrNotFound
	}
	return f.user, nil
}

func (f *fakeUsers) DeleteUser(_ context.Context, _ uuid.UUID) error {
	return nil
}

func cookieValue(w *httptest.ResponseRecorder, name string) (string, bool) {
	for _, c := range w.Result().Cookies() {
		if c.Name == name {
			return c.Value, true
		}
	}
	return "", false
}

func newUserRouter(t *testing.T) (*fakeUsers, http.Handler) {
	fake := &fakeUsers{user: &service.UserResponse{ID: uuid.New(), Username: "alice", Role: "manager"}}
	return fake, newTestRouter(t, NewUserHandler(fake))
}

func TestLogin_SetsCookies(t *testing.T) {
	_, r := newUserRouter(t)

	w, env := do(t, r, http.MethodPost, "/login", map[string]string{"identifier": "alice", "password": "secret1"}, "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d (%s)", w.Code, w.Body.String())
	}
	if v, ok := cookieValue(w, "access_token"); !ok || v != "access" {
		t.Errorf("access cookie = %q, %v", v, ok)
	}
	if v, ok := cookieValue(w, "refresh_token"); !ok || v != "refresh-1" {
		t.Errorf("refresh cookie = %q, %v", v, ok)
	}
	if strings.Contains(string(env.Data), "refresh-1") {
		t.Error("tokens must not be echoed in the body")
	}

	if w, _ := do(t, r, http.MethodPost, "/login", map[string]string{"identifier": "alice", "password": "nope"}, ""); w.Code != http.StatusUnauthorized {
		t.Errorf("bad password status = %d, want 401", w.Code)
	}
}

func TestRefresh_RotatesFromCookie(t *testing.T) {
	_, r := newUserRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/refresh", nil)
	req.AddCookie(&http.Cookie{Name: "refresh_token", Value: "refresh-1"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d (%s)", w.Code, w.Body.String())
	}
	if v, _ := cookieValue(w, "refresh_token"); v != "refresh-2" {
		t.Errorf("rotated refresh cookie = %q, want refresh-2", v)
	}

	if w, _ := do(t, r, http.MethodPost, "/refresh", map[string]string{"refresh_token": "stale"}, ""); w.Code != http.StatusUnauthorized {
		t.Errorf("stale token status = %d, want 401", w.Code)
	}
}

func TestLogout_RevokesBodyToken(t *testing.T) {
	fake, r := newUserRouter(t)

	w, _ := do(t, r, http.MethodPost, "/logout", map[string]string{"refresh_token": "refresh-1"}, "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if len(fake.revoked) != 1 || fake.revoked[0] != "refresh-1" {
		t.Errorf("revoked = %v", fake.revoked)
	}
	if v, ok := cookieValue(w, "access_token"); !ok || v != "" {
		t.Errorf("access cookie not cleared: %q", v)
	}
}

func TestGetMe_IncludesPermissions(t *testing.T) {
	fake, r := newUserRouter(t)

	w, env := do(t, r, http.MethodGet, "/me", nil, bearer(t, fake.user.ID, "manager"))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d (%s)", w.Code, w.Body.String())
	}
	if !strings.Contains(string(env.Data), `"orders.write"`) || !strings.Contains(string(env.Data), `"username":"alice"`) {
		t.Errorf("data = %s", env.Data)
	}
}

func TestDeleteUser(t *testing.T) {
	fake, r := newUserRouter(t)
	other := "/users/" + uuid.NewString()

	if w, _ := do(t, r, http.MethodDelete, other, nil, bearer(t, fake.user.ID, "manager")); w.Code != http.StatusForbidden {
		t.Errorf("manager without users.delete status = %d, want 403", w.Code)
	}
	if w, _ := do(t, r, http.MethodDelete, "/users/"+fake.user.ID.String(), nil, bearer(t, fake.user.ID, "admin")); w.Code != http.StatusBadRequest {
		t.Errorf("self delete status = %d, want 400", w.Code)
	}
	if w, _ := do(t, r, http.MethodDelete, other, nil, bearer(t, fake.user.ID, "admin")); w.Code != http.StatusOK {
		t.Errorf("admin delete status = %d, want 200", w.Code)
	}
}
