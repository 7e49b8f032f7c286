// Package metrics defines the runtime's Prometheus metrics surface as
// interfaces, with the concrete collectors living in pkg/metrics/prometheus.
// This indirection avoids an import cycle: pkg/reactor, pkg/wire, and
// pkg/kernel depend only on the interfaces here, never on
// github.com/prometheus/client_golang directly.
package metrics

import (
	"sync"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	mu       sync.Mutex
	registry *prometheus.Registry
	enabled  atomic.Bool
)

// InitRegistry creates the process-wide metrics registry. Until this is
// called, every New*Metrics constructor in this package returns nil and
// all Observe*/Record* helpers are no-ops.
func InitRegistry() *prometheus.Registry {
	mu.Lock()
	defer mu.Unlock()

	registry = prometheus.NewRegistry()
	enabled.Store(true)
	return registry
}

// IsEnabled reports whether InitRegistry has been called.
func IsEnabled() bool {
	return enabled.Load()
}

// GetRegistry returns the process-wide registry, or nil if metrics are
// not enabled.
func GetRegistry() *prometheus.Registry {
	mu.Lock()
	defer mu.Unlock()
	return registry
}

// Reset tears down the registry. Intended for tests.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	registry = nil
	enabled.Store(false)
}
