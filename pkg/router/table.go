package router

import "sync"

// RouteKey identifies one registered operation: an exact (verb, path)
// pair. A composite struct key rather than a concatenated string, so a
// path can never collide its way into another verb's entry.
type RouteKey struct {
	Verb Verb
	Path string
}

// String renders the key the way it appears in logs and error messages.
func (k RouteKey) String() string {
	return string(k.Verb) + " " + k.Path
}

// HandlerFunc turns a Request into a Response. Handler-internal failures
// are encoded as failure envelopes, never panics.
type HandlerFunc func(Request) Response

// Table maps route keys to bound handlers. Matching is exact: no
// patterns, no wildcards, no trailing-slash handling beyond what the
// Normalizer already did. Lookups are idempotent and side-effect free.
type Table struct {
	mu     sync.RWMutex
	routes map[RouteKey]HandlerFunc
}

// NewTable creates an empty route table.
func NewTable() *Table {
	return &Table{routes: make(map[RouteKey]HandlerFunc)}
}

// Bind inserts or replaces the entry for (verb, path). It never fails;
// the returned flag reports whether an existing binding was replaced so
// callers can make the replacement observable.
func (t *Table) Bind(verb Verb, path string, h HandlerFunc) (replaced bool) {
	key := RouteKey{Verb: verb, Path: path}
	t.mu.Lock()
	defer t.mu.Unlock()
	_, replaced = t.routes[key]
	t.routes[key] = h
	return replaced
}

// Lookup returns the handler bound to (verb, path). The second return
// distinguishes "no entry" from an entry bound to a nil handler, which
// the Dispatcher reports as a wiring defect.
func (t *Table) Lookup(verb Verb, path string) (HandlerFunc, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	h, ok := t.routes[RouteKey{Verb: verb, Path: path}]
	return h, ok
}

// Clear removes every binding.
func (t *Table) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.routes = make(map[RouteKey]HandlerFunc)
}

// Len returns the number of bound routes.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.routes)
}
