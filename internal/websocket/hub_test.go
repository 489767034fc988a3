package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/websocket"
)

var testSecret = []byte("ws-test-secret")

func signRole(t *testing.T, role string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": "0f8fad5b-d9cb-469f-a165-70867728950e",
		"role":    role,
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString(testSecret)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return signed
}

// startHub serves /ws for managers on a test server and runs the hub until cleanup.
func startHub(t *testing.T, allowedOrigins []string) (*Hub, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	hub := NewHub(allowedOrigins)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = hub.Run(ctx)
		close(done)
	}()

	router := gin.New()
	router.GET("/ws", func(c *gin.Context) {
		ServeWs(hub, c, testSecret, []string{"manager"})
	})
	srv := httptest.NewServer(router)
	t.Cleanup(func() {
		srv.Close()
		cancel()
		<-done
	})
	return hub, "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
}

func TestHub_PublishReachesClients(t *testing.T) {
	hub := NewHub(nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = hub.Run(ctx)
		close(done)
	}()

	client := &Client{Hub: hub, Send: make(chan []byte, 4)}
	hub.register <- client

	hub.Publish(MessageNewOrder, map[string]string{"order_no": "R1"})

	select {
	case raw := <-client.Send:
		var msg struct {
			Type string            `json:"type"`
			Data map[string]string `json:"data"`
		}
		if err := json.Unmarshal(raw, &msg); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if msg.Type != MessageNewOrder || msg.Data["order_no"] != "R1" {
			t.Errorf("message = %+v", msg)
		}
	case <-time.After(time.Second):
		t.Fatal("client did not receive the broadcast")
	}

	cancel()
	<-done
	if _, open := <-client.Send; open {
		t.Error("client channel should be closed on shutdown")
	}
}

func TestHub_PublishDoesNotBlockWhenQueueFull(t *testing.T) {
	hub := NewHub(nil)
	finished := make(chan struct{})
	go func() {
		for i := 0; i < cap(hub.broadcast)+10; i++ {
			hub.Publish(MessageWaiterCall, i)
		}
		close(finished)
	}()
	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked without a running hub")
	}
}

func TestServeWs_RejectsForeignOriginWithCookie(t *testing.T) {
	_, wsURL := startHub(t, []string{"http://localhost:5173"})

	header := http.Header{}
	header.Set("Origin", "https://evil.example")
	header.Set("Cookie", "access_token="+signRole(t, "manager"))

	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, header)
	if err == nil {
		_ = conn.Close()
		t.Fatal("foreign origin was upgraded")
	}
	if resp == nil || resp.StatusCode != http.StatusForbidden {
		t.Fatalf("resp = %v, err = %v, want 403", resp, err)
	}
}

func TestServeWs_AllowedOriginReceivesBroadcast(t *testing.T) {
	hub, wsURL := startHub(t, []string{"http://localhost:5173"})

	header := http.Header{}
	header.Set("Origin", "http://localhost:5173")
	header.Set("Cookie", "access_token="+signRole(t, "manager"))

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, header)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// registration is asynchronous; publish until the client sees a message
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	received := make(chan Message, 1)
	go func() {
		var msg Message
		if err := conn.ReadJSON(&msg); err == nil {
			received <- msg
		}
	}()
	deadline := time.After(2 * time.Second)
	for {
		hub.Publish(MessageNewOrder, map[string]string{"order_no": "R7"})
		select {
		case msg := <-received:
			if msg.Type != MessageNewOrder {
				t.Errorf("type = %q", msg.Type)
			}
			return
		case <-deadline:
			t.Fatal("no broadcast received")
		case <-time.After(20 * time.Millisecond):
		}
	}
}

func TestServeWs_RejectsDisallowedRole(t *testing.T) {
	_, wsURL := startHub(t, nil)

	conn, resp, err := websocket.DefaultDialer.Dial(wsURL+"?token="+signRole(t, "customer"), nil)
	if err == nil {
		_ = conn.Close()
		t.Fatal("customer role was upgraded")
	}
	if resp == nil || resp.StatusCode != http.StatusForbidden {
		t.Fatalf("resp = %v, want 403", resp)
	}
}

func TestCheckOrigin(t *testing.T) {
	hub := NewHub([]string{"https://admin.example.com/"})
	tests := []struct {
		origin string
		want   bool
	}{
		{"", true},
		{"http://api.local:8080", true},
		{"https://admin.example.com", true},
		{"https://evil.example", false},
		{"http://api.local:9090", false},
	}
	for _, tt := range tests {
		r := httptest.NewRequest(http.MethodGet, "http://api.local:8080/ws", nil)
		if tt.origin != "" {
			r.Header.Set("Origin", tt.origin)
		}
		if got := hub.checkOrigin(r); got != tt.want {
			t.Errorf("origin %q: got %v, want %v", tt.origin, got, tt.want)
		}
	}
}

func TestHub_AttachAndDetachDoNotBlockAfterShutdown(t *testing.T) {
	hub := NewHub(nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = hub.Run(ctx)
		close(done)
	}()
	cancel()
	<-done

	finished := make(chan bool, 1)
	go func() {
		client := &Client{Hub: hub, Send: make(chan []byte, 1)}
		hub.detach(client)
		finished <- hub.attach(client)
	}()
	select {
	case attached := <-finished:
		if attached {
			t.Error("attach reported success on a stopped hub")
		}
	case <-time.After(time.Second):
		t.Fatal("attach/detach blocked after the hub stopped")
	}
}
