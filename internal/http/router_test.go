package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	intconfig "railticket/internal/config"
	h "railticket/internal/http/handlers"
	"railticket/internal/metrics"
	"railticket/internal/repositories"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

type okHealth struct{}

func (okHealth) Health(context.Context) []repositories.TargetHealth {
	return []repositories.TargetHealth{{Target: "bookings", Reachable: true}}
}

func testRouter(t *testing.T, env intconfig.Env) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	reg := prometheus.NewRegistry()
	m := metrics.New("railticket", reg)
	m.ObserveTicket()
	return NewRouter(env, Deps{
		Handlers: h.Handlers{Storage: okHealth{}, Validate: h.NewValidator()},
		Gatherer: reg,
	})
}

func TestRouterServesAliases(t *testing.T) {
	r := testRouter(t, intconfig.Env{})
	for _, path := range []string{"/api/health", "/api/bookings/health", "/api/create-booking/health"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		if w.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", path, w.Code)
		}
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/routes", nil))
	body := w.Body.String()
	for _, want := range []string{"/api/send-ticket-email", "/api/tickets/send-email", "/api/bookings/:id/ticket.pdf", "/api/create-booking"} {
		if !strings.Contains(body, want) {
			t.Fatalf("route %s not registered: %s", want, body)
		}
	}
}

func TestRouterMetrics(t *testing.T) {
	r := testRouter(t, intconfig.Env{})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "railticket_tickets_issued_total 1") {
		t.Fatalf("metrics body missing counter: %s", w.Body.String())
	}
}

func TestRouterNoRoute(t *testing.T) {
	r := testRouter(t, intconfig.Env{})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/nope", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestRouterCORSPreflight(t *testing.T) {
	r := testRouter(t, intconfig.Env{CORSAllowedOrigins: []string{"https://tiket.example.com"}})
	req := httptest.NewRequest(http.MethodOptions, "/api/bookings", nil)
	req.Header.Set("Origin", "https://tiket.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204 preflight, got %d", w.Code)
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "https://tiket.example.com" {
		t.Fatalf("unexpected allow origin %q", w.Header().Get("Access-Control-Allow-Origin"))
	}
}

func TestRouterRejectsInvalidSession(t *testing.T) {
	r := testRouter(t, intconfig.Env{SessionJWTSecret: "secret"})
	req := httptest.NewRequest(http.MethodGet, "/api/bookings/health", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}
