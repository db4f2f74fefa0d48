package testing

import (
	"fmt"
	"testing"

	"github.com/getremoted/remoted/pkg/batch"
	"github.com/getremoted/remoted/pkg/cli"
	"github.com/getremoted/remoted/pkg/config"
	"github.com/getremoted/remoted/pkg/logging"
	"github.com/getremoted/remoted/pkg/providers/assets"
	"github.com/getremoted/remoted/pkg/providers/scene"
	"github.com/getremoted/remoted/pkg/router"
)

// Daemon runs an in-process remoted server for tests.
type Daemon struct {
	t       testing.TB
	rt      *router.Router
	server  *router.Server
	baseURL string
	started bool
}

// New creates a daemon harness. The server is stopped automatically when
// the test completes.
func New(t testing.TB) *Daemon {
	t.Helper()
	d := &Daemon{
		t:  t,
		rt: router.New(router.WithLogger(logging.Nop())),
	}
	t.Cleanup(d.Stop)
	return d
}

// WithScene registers the scene provider. Must be called before Start.
func (d *Daemon) WithScene() *Daemon {
	d.t.Helper()
	if err := d.rt.Register(scene.NewProvider()); err != nil {
		d.t.Fatalf("failed to register scene provider: %v", err)
	}
	return d
}

// WithAssets registers the assets provider rooted at dir. Must be called
// before Start.
func (d *Daemon) WithAssets(dir string) *Daemon {
	d.t.Helper()
	if err := d.rt.Register(assets.NewProvider(dir)); err != nil {
		d.t.Fatalf("failed to register assets provider: %v", err)
	}
	return d
}

// Handle binds a single operation, letting tests stand in for host
// functionality without writing a provider.
func (d *Daemon) Handle(verb router.Verb, path string, h router.HandlerFunc) *Daemon {
	d.rt.Bind(verb, path, h)
	return d
}

// Start registers the batch provider, launches the HTTP listener on a
// probed port, and returns the base URL. Calling Start twice returns the
// same URL.
func (d *Daemon) Start() string {
	d.t.Helper()
	if d.started {
		return d.baseURL
	}

	if err := d.rt.Register(batch.NewProvider(d.rt)); err != nil {
		d.t.Fatalf("failed to register batch provider: %v", err)
	}

	cfg := config.Default()
	cfg.Port = 0

	d.server = router.NewServer(cfg, d.rt, router.WithServerLogger(logging.Nop()))
	if err := d.server.Start(); err != nil {
		d.t.Fatalf("failed to start server: %v", err)
	}

	d.baseURL = fmt.Sprintf("http://%s:%d", cfg.Host, d.server.Port())
	d.started = true
	return d.baseURL
}

// Stop shuts the listener down. Safe to call more than once; New arranges
// for it to run at test cleanup.
func (d *Daemon) Stop() {
	if d.server != nil && d.server.IsRunning() {
		_ = d.server.Stop()
	}
}

// URL returns the base URL of the running daemon, empty before Start.
func (d *Daemon) URL() string {
	return d.baseURL
}

// Client returns an API client bound to the running daemon.
func (d *Daemon) Client() cli.Client {
	d.t.Helper()
	if !d.started {
		d.t.Fatal("Client called before Start")
	}
	return cli.NewClient(d.baseURL)
}

// Router exposes the underlying router for direct dispatch in tests.
func (d *Daemon) Router() *router.Router {
	return d.rt
}
