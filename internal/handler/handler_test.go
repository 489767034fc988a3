package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"restaurant/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var testSecret = []byte("handler-test-secret")

type rolePerms map[string][]string

func (p rolePerms) GetPermissionsByRoleName(_ context.Context, role string) ([]string, error) {
	return p[role], nil
}

type routes interface {
	RegisterRoutes(router *gin.RouterGroup)
}

func newTestRouter(t *testing.T, h routes) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	middleware.InitAuth(testSecret, false, rolePerms{
		"manager": {"orders.read", "orders.write", "tax_rules.read", "tax_rules.write", "discounts.read", "discounts.write", "waiter_calls.read", "waiter_calls.write"},
		"kitchen": {"orders.read"},
		"admin":   {"users.read", "users.write", "users.delete"},
	})
	r := gin.New()
	h.RegisterRoutes(r.Group(""))
	return r
}

func bearer(t *testing.T, userID uuid.UUID, role string) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  userID.String(),
		"role": role,
		"exp":  time.Now().Add(time.Hour).Unix(),
	})
	s, err := tok.SignedString(testSecret)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return "Bearer " + s
}

type envelope struct {
	Status     string          `json:"status"`
	StatusCode int             `json:"status_code"`
	Data       json.RawMessage `json:"data"`
	Error      string          `json:"error"`
	Meta       *struct {
		Total int64 `json:"total"`
	} `json:"meta"`
}

func do(t *testing.T, r http.Handler, method, path string, body interface{}, auth string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.RemoteAddr = "192.0.2.1:1234"
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
			t.Fatalf("decode %q: %v", w.Body.String(), err)
		}
	}
	return w, env
}
