package router

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Registry errors.
var (
	// ErrNilProvider is returned when registering a nil provider.
	ErrNilProvider = errors.New("provider cannot be nil")

	// ErrEmptyProviderName is returned when a provider reports an empty name.
	ErrEmptyProviderName = errors.New("provider name cannot be empty")

	// ErrProviderExists is returned when a provider name is already taken.
	ErrProviderExists = errors.New("provider already registered")
)

// Registry tracks the registered operation providers for discovery,
// introspection, and orderly shutdown. It holds non-owning references;
// route ownership stays with the Table, and both views are populated
// through the single Router.Register path so they cannot diverge.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider
	order     []string
}

// NewRegistry creates an empty provider registry.
func NewRegistry() *Registry {
	return &Registry{providers: make(map[string]Provider)}
}

// Add registers a provider under its reported name. Registration order
// is preserved for enumeration.
func (r *Registry) Add(p Provider) error {
	if p == nil {
		return ErrNilProvider
	}
	name := p.Info().Name
	if name == "" {
		return ErrEmptyProviderName
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.providers[name]; exists {
		return fmt.Errorf("%w: %s", ErrProviderExists, name)
	}
	r.providers[name] = p
	r.order = append(r.order, name)
	return nil
}

// Get returns the provider registered under name.
func (r *Registry) Get(name string) (Provider, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.providers[name]
	return p, ok
}

// Names returns the provider names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}

// List returns the providers in registration order.
func (r *Registry) List() []Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := make([]Provider, 0, len(r.order))
	for _, name := range r.order {
		list = append(list, r.providers[name])
	}
	return list
}

// Count returns the number of registered providers.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.providers)
}

// ShutdownAll notifies every provider in reverse registration order and
// collects the errors instead of stopping at the first one.
func (r *Registry) ShutdownAll(ctx context.Context) []error {
	r.mu.RLock()
	providers := make([]Provider, 0, len(r.order))
	for i := len(r.order) - 1; i >= 0; i-- {
		providers = append(providers, r.providers[r.order[i]])
	}
	r.mu.RUnlock()

	var errs []error
	for _, p := range providers {
		if err := p.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("provider %s shutdown: %w", p.Info().Name, err))
		}
	}
	return errs
}
