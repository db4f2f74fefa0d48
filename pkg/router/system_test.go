package router

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getremoted/remoted/pkg/config"
)

// staticProvider is a fixture with fixed discovery metadata.
type staticProvider struct {
	info   Info
	routes []Route
}

func (p *staticProvider) Info() Info { return p.info }

func (p *staticProvider) Routes() []Route { return p.routes }

func (p *staticProvider) Shutdown(context.Context) error { return nil }

func TestStatusRoute(t *testing.T) {
	cfg := config.Default()
	cfg.Name = "test-instance"
	s := NewServer(cfg, New(), WithVersion("1.2.3"))

	resp := s.router.Dispatch(Request{Verb: VerbGet, Path: "/status"})

	require.Equal(t, 200, resp.Status)
	assert.Equal(t, true, resp.JSON["success"])
	assert.Equal(t, "ok", resp.JSON["status"])
	assert.Equal(t, "test-instance", resp.JSON["name"])
	assert.Equal(t, "1.2.3", resp.JSON["version"])

	providers, ok := resp.JSON["providers"].([]string)
	require.True(t, ok)
	assert.Contains(t, providers, "system")
}

func TestStatusReportsBoundPort(t *testing.T) {
	cfg := config.Default()
	cfg.Port = 0
	s := NewServer(cfg, New())
	require.NoError(t, s.Start())
	defer func() { _ = s.Stop() }()

	resp := s.router.Dispatch(Request{Verb: VerbGet, Path: "/status"})
	assert.Equal(t, s.Port(), resp.JSON["port"])
}

func TestProvidersRoute(t *testing.T) {
	s := NewServer(config.Default(), New())
	require.NoError(t, s.router.Register(&staticProvider{
		info: Info{Name: "scene", BasePath: "/actors", Description: "Scene graph control"},
		routes: []Route{
			{Verb: VerbGet, Path: "/actors", Handler: func(Request) Response { return OK(nil) }},
			{Verb: VerbPost, Path: "/actors/spawn", Handler: func(Request) Response { return OK(nil) }},
		},
	}))

	resp := s.router.Dispatch(Request{Verb: VerbGet, Path: "/providers"})

	require.Equal(t, 200, resp.Status)
	assert.Equal(t, 2, resp.JSON["count"])

	entries, ok := resp.JSON["providers"].([]map[string]any)
	require.True(t, ok)
	require.Len(t, entries, 2)

	// Registration order: system first, then scene.
	assert.Equal(t, "system", entries[0]["name"])
	assert.Equal(t, "/", entries[0]["base_path"])

	assert.Equal(t, "scene", entries[1]["name"])
	assert.Equal(t, "/actors", entries[1]["base_path"])
	assert.Equal(t, "Scene graph control", entries[1]["description"])
	assert.Equal(t, 2, entries[1]["routes"])
}
