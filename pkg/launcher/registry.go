package launcher

import (
	"context"
	"fmt"
	"sync"

	"github.com/coreipc/corert/pkg/khandle"
)

// Registry is an in-process Launcher: it dispatches ConnectRequests to
// ServiceProviders registered directly in this process. It does not spawn
// processes — that remains an external collaborator's responsibility
// (spec §1) — but it gives the dispatch/registration half of the
// contract a concrete, testable home.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]ServiceProvider
	closed    bool
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{providers: make(map[string]ServiceProvider)}
}

// Register implements Launcher.
func (r *Registry) Register(provider ServiceProvider) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return fmt.Errorf("launcher: registry is closed")
	}
	for _, name := range provider.Services() {
		r.providers[name] = provider
	}
	return nil
}

// Connect implements Launcher.
func (r *Registry) Connect(ctx context.Context, req ConnectRequest) (ConnectResult, error) {
	r.mu.RLock()
	provider, ok := r.providers[req.ServiceName]
	closed := r.closed
	r.mu.RUnlock()

	if closed {
		return ConnectResult{}, ErrServiceUnavailable
	}
	if !ok {
		return ConnectResult{}, ErrServiceNotFound
	}

	channel, err := provider.Connect(ctx, req)
	if err != nil {
		return ConnectResult{}, fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	if channel == khandle.Invalid {
		return ConnectResult{}, fmt.Errorf("%w: provider %q returned an invalid handle", ErrServiceUnavailable, provider.Name())
	}

	return ConnectResult{Channel: channel, ProviderName: provider.Name()}, nil
}

// Close implements Launcher. It marks the registry closed; providers
// registered here are not owned by the Registry (it never spawned them)
// so there is nothing further to tear down.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	r.providers = make(map[string]ServiceProvider)
	return nil
}
