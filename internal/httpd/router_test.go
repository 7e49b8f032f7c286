package httpd

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestHealthzReturnsOKWhenHealthy(t *testing.T) {
	r := NewRouter(nil, func() (bool, string) { return true, "" })

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, w.Code)
	}
}

func TestHealthzReturnsServiceUnavailableWhenUnhealthy(t *testing.T) {
	r := NewRouter(nil, func() (bool, string) { return false, "reactor not running" })

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected status %d, got %d", http.StatusServiceUnavailable, w.Code)
	}
	if w.Body.String() != "reactor not running" {
		t.Errorf("expected reason in body, got %q", w.Body.String())
	}
}

func TestHealthzDefaultsToHealthyWithNilFunc(t *testing.T) {
	r := NewRouter(nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, w.Code)
	}
}

func TestMetricsNotMountedWithoutRegistry(t *testing.T) {
	r := NewRouter(nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected /metrics to be unmounted, got status %d", w.Code)
	}
}

func TestMetricsMountedWithRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := NewRouter(reg, nil)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, w.Code)
	}
}

func TestRootRedirectsToHealthz(t *testing.T) {
	r := NewRouter(nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusTemporaryRedirect {
		t.Errorf("expected status %d, got %d", http.StatusTemporaryRedirect, w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/healthz" {
		t.Errorf("expected redirect to /healthz, got %q", loc)
	}
}
