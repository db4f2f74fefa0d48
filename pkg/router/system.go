package router

import "context"

// systemProvider serves the built-in read-only discovery routes. It is
// registered through the same Registry/Table path as every other
// provider, so it shows up in its own enumeration.
type systemProvider struct {
	server *Server
}

func (p *systemProvider) Info() Info {
	return Info{
		Name:        "system",
		BasePath:    "/",
		Description: "Liveness and provider discovery",
	}
}

func (p *systemProvider) Routes() []Route {
	return []Route{
		{Verb: VerbGet, Path: "/status", Handler: p.handleStatus},
		{Verb: VerbGet, Path: "/providers", Handler: p.handleProviders},
	}
}

func (p *systemProvider) Shutdown(context.Context) error {
	return nil
}

// handleStatus reports liveness: daemon identity, bound port, uptime,
// and the names of the registered providers.
func (p *systemProvider) handleStatus(Request) Response {
	s := p.server
	return OK(map[string]any{
		"status":    "ok",
		"name":      s.cfg.Name,
		"version":   s.version,
		"port":      s.Port(),
		"uptime":    s.Uptime(),
		"providers": s.router.registry.Names(),
	})
}

// handleProviders enumerates each provider's discovery metadata.
func (p *systemProvider) handleProviders(Request) Response {
	providers := p.server.router.registry.List()
	entries := make([]map[string]any, 0, len(providers))
	for _, prov := range providers {
		info := prov.Info()
		entries = append(entries, map[string]any{
			"name":        info.Name,
			"base_path":   info.BasePath,
			"description": info.Description,
			"routes":      len(prov.Routes()),
		})
	}
	return OK(map[string]any{
		"providers": entries,
		"count":     len(entries),
	})
}
