package scene

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/getremoted/remoted/pkg/logging"
	"github.com/getremoted/remoted/pkg/router"
)

// Error codes specific to scene operations.
const (
	ErrCodeActorNotFound    = "actor_not_found"
	ErrCodePropertyNotFound = "property_not_found"
	ErrCodeSceneFull        = "scene_full"
)

// Provider exposes the in-memory scene graph over actor routes.
type Provider struct {
	store *Store
	log   *slog.Logger
}

// Option configures a Provider.
type Option func(*Provider)

// WithLogger sets the operational logger.
func WithLogger(log *slog.Logger) Option {
	return func(p *Provider) {
		if log != nil {
			p.log = log
		}
	}
}

// WithMaxActors caps how many actors the scene holds at once. Zero
// means unlimited.
func WithMaxActors(n int) Option {
	return func(p *Provider) {
		p.store.SetLimit(n)
	}
}

// NewProvider creates a scene provider with an empty store.
func NewProvider(opts ...Option) *Provider {
	p := &Provider{
		store: NewStore(),
		log:   logging.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Store returns the underlying actor store.
func (p *Provider) Store() *Store {
	return p.store
}

func (p *Provider) Info() router.Info {
	return router.Info{
		Name:        "scene",
		BasePath:    "/actors",
		Description: "In-memory scene graph of named actors",
	}
}

func (p *Provider) Routes() []router.Route {
	return []router.Route{
		{Verb: router.VerbPost, Path: "/actors/spawn", Handler: p.handleSpawn},
		{Verb: router.VerbGet, Path: "/actors/list", Handler: p.handleList},
		{Verb: router.VerbGet, Path: "/actors/get", Handler: p.handleGet},
		{Verb: router.VerbPost, Path: "/actors/transform", Handler: p.handleTransform},
		{Verb: router.VerbPost, Path: "/actors/rename", Handler: p.handleRename},
		{Verb: router.VerbPost, Path: "/actors/delete", Handler: p.handleDelete},
		{Verb: router.VerbPost, Path: "/actors/property/set", Handler: p.handleSetProperty},
		{Verb: router.VerbGet, Path: "/actors/property/get", Handler: p.handleGetProperty},
		{Verb: router.VerbPost, Path: "/actors/query", Handler: p.handleQuery},
		{Verb: router.VerbPost, Path: "/actors/clear", Handler: p.handleClear},
	}
}

func (p *Provider) Shutdown(context.Context) error {
	p.store.Clear()
	return nil
}

func (p *Provider) handleSpawn(req router.Request) router.Response {
	name, _ := req.JSON["name"].(string)
	if name == "" {
		return router.Fail(http.StatusBadRequest, router.ErrCodeValidation, "name is required")
	}

	spawn := SpawnRequest{Name: name}
	spawn.Class, _ = req.JSON["class"].(string)
	if v, ok := decodeVector(req.JSON["location"]); ok {
		spawn.Location = v
	}
	if v, ok := decodeVector(req.JSON["rotation"]); ok {
		spawn.Rotation = v
	}
	if v, ok := decodeVector(req.JSON["scale"]); ok {
		spawn.Scale = &v
	}
	if props, ok := req.JSON["properties"].(map[string]any); ok {
		spawn.Properties = props
	}

	actor, err := p.store.Spawn(spawn)
	if err != nil {
		return p.storeError(err)
	}
	p.log.Debug("actor spawned", "id", actor.ID, "name", actor.Name, "class", actor.Class)
	return router.Created(map[string]any{"actor": actor})
}

func (p *Provider) handleList(router.Request) router.Response {
	actors := p.store.List()
	return router.OK(map[string]any{
		"actors": actors,
		"count":  len(actors),
	})
}

func (p *Provider) handleGet(req router.Request) router.Response {
	id := req.QueryValue("id")
	if id == "" {
		return router.Fail(http.StatusBadRequest, router.ErrCodeValidation, "id query parameter is required")
	}

	actor, err := p.store.Get(id)
	if err != nil {
		return p.storeError(err)
	}
	return router.OK(map[string]any{"actor": actor})
}

func (p *Provider) handleTransform(req router.Request) router.Response {
	id, _ := req.JSON["id"].(string)
	if id == "" {
		return router.Fail(http.StatusBadRequest, router.ErrCodeValidation, "id is required")
	}

	var t Transform
	if v, ok := decodeVector(req.JSON["location"]); ok {
		t.Location = &v
	}
	if v, ok := decodeVector(req.JSON["rotation"]); ok {
		t.Rotation = &v
	}
	if v, ok := decodeVector(req.JSON["scale"]); ok {
		t.Scale = &v
	}
	if t.Location == nil && t.Rotation == nil && t.Scale == nil {
		return router.Fail(http.StatusBadRequest, router.ErrCodeValidation,
			"at least one of location, rotation, scale is required")
	}

	actor, err := p.store.SetTransform(id, t)
	if err != nil {
		return p.storeError(err)
	}
	return router.OK(map[string]any{"actor": actor})
}

func (p *Provider) handleRename(req router.Request) router.Response {
	id, _ := req.JSON["id"].(string)
	name, _ := req.JSON["name"].(string)
	if id == "" {
		return router.Fail(http.StatusBadRequest, router.ErrCodeValidation, "id is required")
	}

	actor, err := p.store.Rename(id, name)
	if err != nil {
		return p.storeError(err)
	}
	return router.OK(map[string]any{"actor": actor})
}

func (p *Provider) handleDelete(req router.Request) router.Response {
	id, _ := req.JSON["id"].(string)
	if id == "" {
		return router.Fail(http.StatusBadRequest, router.ErrCodeValidation, "id is required")
	}

	if err := p.store.Delete(id); err != nil {
		return p.storeError(err)
	}
	p.log.Debug("actor deleted", "id", id)
	return router.OK(map[string]any{"deleted": id})
}

func (p *Provider) handleSetProperty(req router.Request) router.Response {
	id, _ := req.JSON["id"].(string)
	name, _ := req.JSON["name"].(string)
	if id == "" || name == "" {
		return router.Fail(http.StatusBadRequest, router.ErrCodeValidation, "id and name are required")
	}
	value, ok := req.JSON["value"]
	if !ok {
		return router.Fail(http.StatusBadRequest, router.ErrCodeValidation, "value is required")
	}

	actor, err := p.store.SetProperty(id, name, value)
	if err != nil {
		return p.storeError(err)
	}
	return router.OK(map[string]any{"actor": actor})
}

func (p *Provider) handleGetProperty(req router.Request) router.Response {
	id := req.QueryValue("id")
	name := req.QueryValue("name")
	if id == "" || name == "" {
		return router.Fail(http.StatusBadRequest, router.ErrCodeValidation,
			"id and name query parameters are required")
	}

	value, err := p.store.GetProperty(id, name)
	if err != nil {
		return p.storeError(err)
	}
	return router.OK(map[string]any{
		"id":    id,
		"name":  name,
		"value": value,
	})
}

func (p *Provider) handleQuery(req router.Request) router.Response {
	filter, _ := req.JSON["filter"].(string)
	if filter == "" {
		return router.Fail(http.StatusBadRequest, router.ErrCodeValidation, "filter is required")
	}
	limit := 0
	if n, ok := req.JSON["limit"].(float64); ok {
		limit = int(n)
	}

	actors, err := p.store.Query(filter, limit)
	if err != nil {
		return router.Fail(http.StatusBadRequest, router.ErrCodeValidation, err.Error())
	}
	return router.OK(map[string]any{
		"actors": actors,
		"count":  len(actors),
	})
}

func (p *Provider) handleClear(router.Request) router.Response {
	n := p.store.Clear()
	p.log.Debug("scene cleared", "actors", n)
	return router.OK(map[string]any{"cleared": n})
}

// storeError maps store sentinels onto failure envelopes.
func (p *Provider) storeError(err error) router.Response {
	switch {
	case errors.Is(err, ErrActorNotFound):
		return router.Fail(http.StatusNotFound, ErrCodeActorNotFound, err.Error())
	case errors.Is(err, ErrPropertyNotFound):
		return router.Fail(http.StatusNotFound, ErrCodePropertyNotFound, err.Error())
	case errors.Is(err, ErrSceneFull):
		return router.Fail(http.StatusConflict, ErrCodeSceneFull, err.Error())
	default:
		return router.Fail(http.StatusBadRequest, router.ErrCodeValidation, err.Error())
	}
}

// decodeVector decodes a JSON object value into a Vector3. Missing
// components default to zero; a non-object reports no vector at all.
func decodeVector(v any) (Vector3, bool) {
	m, ok := v.(map[string]any)
	if !ok {
		return Vector3{}, false
	}
	b, err := json.Marshal(m)
	if err != nil {
		return Vector3{}, false
	}
	var vec Vector3
	if err := json.Unmarshal(b, &vec); err != nil {
		return Vector3{}, false
	}
	return vec, true
}
