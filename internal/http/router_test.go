package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	intconfig "ridepool/internal/config"

	"github.com/gin-gonic/gin"
)

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return NewRouter(intconfig.Env{JWTSecret: "test-secret"}, nil)
}

func TestHealthRoute(t *testing.T) {
	r := newTestRouter()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("bad json: %v", err)
	}
	if body["status"] != "ok" {
		t.Fatalf("unexpected body: %v", body)
	}
}

func TestUnknownRoutePayload(t *testing.T) {
	r := newTestRouter()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/nope", nil))

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("bad json: %v", err)
	}
	if body["path"] != "/api/nope" || body["method"] != http.MethodGet {
		t.Fatalf("unexpected body: %v", body)
	}
}

func TestBookingRoutesRequireAuth(t *testing.T) {
	r := newTestRouter()
	paths := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/bookings"},
		{http.MethodGet, "/api/bookings/1"},
		{http.MethodPatch, "/api/bookings/1/cancel"},
		{http.MethodGet, "/api/users/bookings"},
		{http.MethodPost, "/api/trips"},
	}
	for _, p := range paths {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(p.method, p.path, nil))
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("%s %s status = %d, want 401", p.method, p.path, w.Code)
		}
	}
}
