package router

import "context"

// Route is one operation a provider contributes to the table.
type Route struct {
	Verb    Verb
	Path    string
	Handler HandlerFunc
}

// Info describes a provider for the discovery surfaces: the enumeration
// route, the liveness route, and the discovery file all render from it.
type Info struct {
	// Name uniquely identifies the provider in the registry.
	Name string

	// BasePath is the common path segment the provider's routes live
	// under, informational only.
	BasePath string

	// Description is a one-line human-readable summary.
	Description string
}

// Provider is a named capability set: a group of related operations that
// register together and shut down together. Implementations live outside
// the core; the router only ever sees their routes and metadata.
type Provider interface {
	// Info returns the provider's discovery metadata.
	Info() Info

	// Routes returns the operations the provider offers. Called once at
	// registration time.
	Routes() []Route

	// Shutdown releases any resources the provider holds. Called in
	// reverse registration order when the server stops.
	Shutdown(ctx context.Context) error
}
