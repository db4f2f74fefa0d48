// Package router is the core of remoted: it maps (verb, path) pairs to
// registered operation handlers, normalizes inbound HTTP requests into a
// handler-agnostic Request form, dispatches them, and serializes the
// uniform response envelope back onto the wire.
//
// The moving parts, leaf-first:
//
//   - Verb, Request, Response: the value types handlers see.
//   - Normalizer: transport request -> Request (prefix stripping, verb
//     validation, query flattening, best-effort JSON body parse).
//   - Table: the exact-match route table keyed by RouteKey.
//   - Registry: the set of registered Providers, for discovery and
//     orderly shutdown.
//   - Router: owns Table and Registry, performs dispatch.
//   - Server: binds a Router to an HTTP listener with serialized
//     dispatch and the built-in system provider.
//
// Providers bundle related operations (see the Provider interface) and
// are registered once at assembly time, before the server starts
// serving. Handlers run synchronously, one at a time, and encode all
// failures as response envelopes.
package router
