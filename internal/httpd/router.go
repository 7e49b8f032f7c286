// Package httpd provides the reactor host's small HTTP surface: a
// liveness probe and, when enabled, the Prometheus scrape endpoint.
// Everything the reactor itself does (message pipes, wait sets, the run
// loop) stays off this surface entirely — corertd is not a web server,
// this is just its operability sidecar.
package httpd

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/coreipc/corert/internal/logger"
)

// HealthFunc reports whether the host is ready to serve, and a short
// human-readable reason when it is not.
type HealthFunc func() (ok bool, reason string)

// NewRouter builds the chi router for corertd's HTTP surface.
//
// Routes:
//   - GET /healthz - liveness/readiness probe
//   - GET /metrics - Prometheus scrape endpoint, only mounted when reg is non-nil
func NewRouter(reg *prometheus.Registry, health HealthFunc) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		ok, reason := true, ""
		if health != nil {
			ok, reason = health()
		}
		if !ok {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(reason))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	if reg != nil {
		r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	}

	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		http.Redirect(w, req, "/healthz", http.StatusTemporaryRedirect)
	})

	return r
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		logger.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
