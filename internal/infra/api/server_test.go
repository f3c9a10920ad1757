//go:build !integration

package api

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"telegram-upi-lookup/internal/config"
	"telegram-upi-lookup/internal/infra/logging"
)

type pingAdmin struct{}

func (pingAdmin) Mount(r chi.Router) {
	r.Get("/api/v1/ping", func(w http.ResponseWriter, r *http.Request) {
		if _, ok := r.Context().Deadline(); !ok {
			http.Error(w, "no deadline", http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte("pong"))
	})
}

func testConfig() *config.Config {
	return &config.Config{
		Bot:  config.BotConfig{WebhookPath: "/"},
		HTTP: config.HTTPConfig{Port: 0, RequestTimeout: time.Second},
	}
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, path, strings.NewReader(body)))
	return rec
}

func TestRouter_PublicRoutes(t *testing.T) {
	var hooked string
	webhook := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		hooked = string(b)
		_, _ = w.Write([]byte("OK"))
	})
	h := NewServer(testConfig(), webhook, nil, logging.Nop()).Router()

	if rec := do(t, h, http.MethodGet, "/", ""); rec.Code != 200 || rec.Body.String() != AliveText {
		t.Errorf("GET / = %d %q", rec.Code, rec.Body.String())
	}
	if rec := do(t, h, http.MethodGet, "/health", ""); rec.Body.String() != "OK" {
		t.Errorf("GET /health = %q", rec.Body.String())
	}
	rec := do(t, h, http.MethodGet, "/", "")
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("expected X-Request-ID header")
	}
	if rec := do(t, h, http.MethodPost, "/", `{"update_id":1}`); rec.Code != 200 || hooked != `{"update_id":1}` {
		t.Errorf("POST / = %d, webhook saw %q", rec.Code, hooked)
	}
	if rec := do(t, h, http.MethodGet, "/metrics", ""); rec.Code != 200 || !strings.Contains(rec.Body.String(), "go_goroutines") {
		t.Errorf("GET /metrics = %d", rec.Code)
	}
	if rec := do(t, h, http.MethodGet, "/api/v1/ping", ""); rec.Code != http.StatusNotFound {
		t.Errorf("admin routes should be absent, got %d", rec.Code)
	}
}

func TestRouter_WebhookIsBoundedByRequestTimeout(t *testing.T) {
	cfg := testConfig()
	cfg.HTTP.RequestTimeout = 20 * time.Millisecond
	// stands in for an update queue that never frees up
	blocked := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
		http.Error(w, "busy", http.StatusServiceUnavailable)
	})
	h := NewServer(cfg, blocked, nil, logging.Nop()).Router()

	done := make(chan int, 1)
	go func() { done <- do(t, h, http.MethodPost, "/", `{"update_id":1}`).Code }()
	select {
	case code := <-done:
		if code != http.StatusServiceUnavailable {
			t.Errorf("expected 503, got %d", code)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("webhook request was not bounded by the request timeout")
	}
}

func TestRouter_PollingModeHasNoWebhook(t *testing.T) {
	h := NewServer(testConfig(), nil, nil, logging.Nop()).Router()
	if rec := do(t, h, http.MethodPost, "/", "{}"); rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405 without webhook, got %d", rec.Code)
	}
}

func TestRouter_AdminMountedWithTimeout(t *testing.T) {
	h := NewServer(testConfig(), nil, pingAdmin{}, logging.Nop()).Router()
	if rec := do(t, h, http.MethodGet, "/api/v1/ping", ""); rec.Code != 200 || rec.Body.String() != "pong" {
		t.Errorf("GET /api/v1/ping = %d %q", rec.Code, rec.Body.String())
	}
}

func TestRecover(t *testing.T) {
	h := Chain(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("boom") }), Recover(logging.Nop()))
	if rec := do(t, h, http.MethodGet, "/", ""); rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", rec.Code)
	}
}
