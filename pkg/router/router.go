package router

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/getremoted/remoted/pkg/logging"
	"github.com/getremoted/remoted/pkg/metrics"
)

// Stable error codes carried in failure envelopes. Clients branch on
// these, so they are part of the API contract.
const (
	ErrCodeRouteNotFound     = "route_not_found"
	ErrCodeHandlerUnbound    = "handler_unbound"
	ErrCodeUnsupportedMethod = "unsupported_method"
	ErrCodeReadError         = "read_error"
	ErrCodeValidation        = "validation_error"
)

// Router owns the route table and the provider registry and bridges
// normalized requests to handler responses. It is constructed once per
// process and passed by reference to everything that needs it; there is
// no package-level instance.
type Router struct {
	table    *Table
	registry *Registry
	norm     *Normalizer
	log      *slog.Logger
	metrics  *metrics.Metrics
}

// Option configures a Router.
type Option func(*Router)

// WithLogger sets the operational logger.
func WithLogger(log *slog.Logger) Option {
	return func(r *Router) {
		if log != nil {
			r.log = log
		}
	}
}

// WithMetrics sets the metrics collectors.
func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Router) {
		r.metrics = m
	}
}

// WithPrefix overrides the API prefix the Normalizer strips.
func WithPrefix(prefix string) Option {
	return func(r *Router) {
		r.norm = NewNormalizer(prefix)
	}
}

// New creates a Router with an empty table and registry.
func New(opts ...Option) *Router {
	r := &Router{
		table:    NewTable(),
		registry: NewRegistry(),
		norm:     NewNormalizer(DefaultAPIPrefix),
		log:      logging.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Normalizer returns the request normalizer bound to this router.
func (r *Router) Normalizer() *Normalizer {
	return r.norm
}

// Registry returns the provider registry.
func (r *Router) Registry() *Registry {
	return r.registry
}

// Table returns the route table.
func (r *Router) Table() *Table {
	return r.table
}

// Register adds a provider: its routes enter the table and the provider
// joins the registry. Both views are populated here and only here, so
// the enumeration surfaces can never disagree with dispatch.
func (r *Router) Register(p Provider) error {
	if err := r.registry.Add(p); err != nil {
		return err
	}
	routes := p.Routes()
	for _, rt := range routes {
		r.Bind(rt.Verb, rt.Path, rt.Handler)
	}
	info := p.Info()
	r.log.Info("provider registered", "provider", info.Name, "routes", len(routes))
	return nil
}

// Bind binds a single route. Rebinding an existing key wins silently at
// the table level, but is logged and counted here so a hot-reloaded or
// colliding registration never goes unnoticed.
func (r *Router) Bind(verb Verb, path string, h HandlerFunc) {
	if replaced := r.table.Bind(verb, path, h); replaced {
		r.log.Warn("route rebound, previous handler discarded",
			"verb", verb, "path", path)
		r.metrics.RouteRebound()
	}
}

// Dispatch resolves req against the table and invokes the bound handler.
// Routing failures come back as envelopes; handler panics are not caught
// here, an operation that cannot encode its failure as a Response is a
// host-level defect.
func (r *Router) Dispatch(req Request) Response {
	h, ok := r.table.Lookup(req.Verb, req.Path)
	if !ok {
		return Failf(http.StatusNotFound, ErrCodeRouteNotFound,
			"no handler registered for %s %s", req.Verb, req.Path)
	}
	if h == nil {
		r.log.Error("route bound to nil handler", "verb", req.Verb, "path", req.Path)
		return Failf(http.StatusInternalServerError, ErrCodeHandlerUnbound,
			"handler for %s %s is not bound", req.Verb, req.Path)
	}
	return h(req)
}

// ShutdownProviders notifies all providers in reverse registration
// order, collecting errors rather than stopping at the first.
func (r *Router) ShutdownProviders(ctx context.Context) []error {
	return r.registry.ShutdownAll(ctx)
}
