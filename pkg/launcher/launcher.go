// Package launcher declares the contract between the runtime and an
// application launcher / service registry (spec §1): the component that
// spawns service-provider processes and routes service-connection
// requests to them. The launcher itself is an external collaborator —
// this package gives its interface plus Registry, an in-process
// implementation that dispatches requests but spawns no processes.
package launcher

import (
	"context"
	"errors"

	"github.com/coreipc/corert/pkg/khandle"
)

// Common errors a Launcher implementation returns from Connect.
var (
	// ErrServiceNotFound means no registered ServiceProvider answers the
	// requested service name.
	ErrServiceNotFound = errors.New("launcher: service not found")

	// ErrServiceUnavailable means a provider is registered but did not
	// accept the connection within its deadline (process failed to
	// start, crashed before handshake, or refused the request).
	ErrServiceUnavailable = errors.New("launcher: service unavailable")
)

// ConnectRequest asks a Launcher to route a new service connection.
type ConnectRequest struct {
	// ServiceName identifies the requested service, e.g. "fuchsia.io.Directory".
	ServiceName string

	// Args are opaque, provider-specific connection arguments (e.g. a
	// directory path, a client-supplied request token). Interpretation
	// is entirely up to the ServiceProvider named by ServiceName.
	Args map[string]string
}

// ConnectResult carries the caller's end of a freshly established
// message pipe to the requested service, per spec §4.3's message-pipe
// handle type.
type ConnectResult struct {
	// Channel is the client's end of the message pipe connected to the
	// service provider. The launcher retains no reference to it after
	// returning: ownership transfers to the caller.
	Channel khandle.Raw

	// ProviderName identifies which registered ServiceProvider actually
	// served the request, useful for logging and metrics when several
	// providers can answer the same ServiceName.
	ProviderName string
}

// ServiceProvider is implemented by a process (or in-process component)
// that can accept connection requests for one or more named services.
// A Launcher holds a registry of ServiceProviders and dispatches
// ConnectRequests to the one that claims the requested name.
type ServiceProvider interface {
	// Name identifies this provider for logging and for ConnectResult.ProviderName.
	Name() string

	// Services lists the service names this provider answers.
	Services() []string

	// Connect establishes a new message-pipe connection for the given
	// request and returns the end of the pipe the requester uses.
	// Ownership transfers to the caller of Connect; Registry hands the
	// handle back unchanged as ConnectResult.Channel.
	Connect(ctx context.Context, req ConnectRequest) (khandle.Raw, error)
}

// Launcher spawns and routes to registered ServiceProviders. A launcher
// implementation owns process lifecycle (spawn, supervise, restart) and
// the rendezvous mechanism used to hand a freshly created message pipe
// end to a spawned process; none of that is specified here.
type Launcher interface {
	// Register adds a ServiceProvider to the registry. Registering a
	// provider for a name another provider already serves replaces the
	// previous registration.
	Register(provider ServiceProvider) error

	// Connect routes req to the ServiceProvider registered for
	// req.ServiceName and returns the caller's end of the new
	// connection. Returns ErrServiceNotFound if no provider serves the
	// name, or ErrServiceUnavailable if the provider failed to complete
	// the handshake.
	Connect(ctx context.Context, req ConnectRequest) (ConnectResult, error)

	// Close shuts down every spawned provider process and releases
	// launcher-owned resources.
	Close() error
}
