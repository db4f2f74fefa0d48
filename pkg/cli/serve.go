package cli

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/getremoted/remoted/pkg/cli/internal/output"
	"github.com/getremoted/remoted/pkg/config"
	"github.com/getremoted/remoted/pkg/discovery"
	"github.com/getremoted/remoted/pkg/logging"
	"github.com/getremoted/remoted/pkg/metrics"
	"github.com/getremoted/remoted/pkg/providers/assets"
	"github.com/getremoted/remoted/pkg/providers/scene"
	"github.com/getremoted/remoted/pkg/router"

	"github.com/getremoted/remoted/pkg/batch"
)

// serveFlagVals is the package-level instance bound to cobra flags.
var serveFlagVals serveFlags

// serveFlags holds all parsed command-line flags for the serve command.
type serveFlags struct {
	configFile  string
	port        int
	host        string
	name        string
	contentRoot string

	logLevel  string
	logFormat string
	logFile   string

	noMetrics   bool
	noScene     bool
	noAssets    bool
	noDiscovery bool
}

// serveCmd represents the serve command, the foreground daemon.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the daemon (foreground)",
	Long: `Start the daemon and serve the operation API until interrupted.

Configuration is read from an optional config file, with flags taking
precedence over file values. With --port 0 the daemon probes for a free
port starting at the default, so several instances can coexist.

Each running daemon writes an instance file under ~/.remoted/instances
that 'remoted status' and the other client commands use to find it.`,
	Example: `  # Start with defaults on port 4270
  remoted serve

  # Start with a config file on a custom port
  remoted serve --config remoted.yaml --port 4300

  # Serve a project directory through the assets routes
  remoted serve --content-root ~/projects/demo

  # Pick any free port and log JSON to a file
  remoted serve --port 0 --log-format json --log-file remoted.log`,
}

func init() {
	// Assigned here rather than in the literal: runServe reads
	// serveCmd.Flags().Changed, which would otherwise be an
	// initialization cycle.
	serveCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return runServe(&serveFlagVals)
	}

	rootCmd.AddCommand(serveCmd)

	f := &serveFlagVals

	serveCmd.Flags().StringVarP(&f.configFile, "config", "c", "", "Path to configuration file")
	serveCmd.Flags().IntVarP(&f.port, "port", "p", config.DefaultPort, "HTTP listener port (0 = probe for a free port)")
	serveCmd.Flags().StringVar(&f.host, "host", config.DefaultHost, "Interface to bind the listener to")
	serveCmd.Flags().StringVar(&f.name, "name", config.DefaultName, "Instance name shown on discovery surfaces")
	serveCmd.Flags().StringVar(&f.contentRoot, "content-root", "", "Content directory served by the assets routes")

	serveCmd.Flags().StringVar(&f.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	serveCmd.Flags().StringVar(&f.logFormat, "log-format", "text", "Log format (text, json)")
	serveCmd.Flags().StringVar(&f.logFile, "log-file", "", "Additionally write JSON log lines to this file")

	serveCmd.Flags().BoolVar(&f.noMetrics, "no-metrics", false, "Disable the /metrics endpoint")
	serveCmd.Flags().BoolVar(&f.noScene, "no-scene", false, "Disable the scene provider")
	serveCmd.Flags().BoolVar(&f.noAssets, "no-assets", false, "Disable the assets provider")
	serveCmd.Flags().BoolVar(&f.noDiscovery, "no-discovery", false, "Do not write an instance file")
}

// runServe is the core serve logic called by the cobra command.
func runServe(f *serveFlags) error {
	cfg := config.Default()
	if f.configFile != "" {
		loaded, err := config.Load(f.configFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}
	applyServeFlags(cfg, f, serveCmd.Flags().Changed)
	if err := cfg.Validate(); err != nil {
		return err
	}

	logCfg := logging.Config{
		Level:  logging.ParseLevel(cfg.Logging.Level),
		Format: logging.ParseFormat(cfg.Logging.Format),
	}
	log := logging.New(logCfg)
	if cfg.Logging.File != "" {
		logFile, err := os.OpenFile(cfg.Logging.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		defer func() { _ = logFile.Close() }()
		log = logging.NewTee(logCfg, logFile)
	}

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
	}

	rt, err := buildRouter(cfg, log, m)
	if err != nil {
		return err
	}

	srv := router.NewServer(cfg, rt,
		router.WithServerLogger(logging.Component(log, "server")),
		router.WithVersion(Version),
	)
	if err := srv.Start(); err != nil {
		if isAddrInUseError(err) {
			return fmt.Errorf("port %d is already in use, try a different port with --port or check what's using it: lsof -i :%d", cfg.Port, cfg.Port)
		}
		return fmt.Errorf("failed to start server: %w", err)
	}

	instDir := cfg.Discovery.Dir
	if instDir == "" {
		instDir = discovery.DefaultDir()
	}
	if cfg.Discovery.Enabled {
		inst := &discovery.Instance{
			Name:      cfg.Name,
			Host:      cfg.Host,
			Port:      srv.Port(),
			PID:       os.Getpid(),
			StartedAt: time.Now(),
			Providers: rt.Registry().Names(),
		}
		if err := discovery.Write(instDir, inst); err != nil {
			output.Warn("failed to write instance file: %v", err)
		}
	}

	printServeStartupMessage(cfg, srv.Port(), rt.Registry().Names())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	fmt.Println("\nShutting down...")

	if cfg.Discovery.Enabled {
		if err := discovery.Remove(instDir, srv.Port()); err != nil {
			output.Warn("failed to remove instance file: %v", err)
		}
	}
	if err := srv.Stop(); err != nil {
		output.Warn("server shutdown error: %v", err)
	}

	fmt.Println("Server stopped")
	return nil
}

// applyServeFlags overlays explicitly-set flags onto the loaded
// configuration. changed reports whether a flag was set on the command
// line, so file values survive when a flag keeps its default.
func applyServeFlags(cfg *config.Config, f *serveFlags, changed func(string) bool) {
	if changed("port") {
		cfg.Port = f.port
	}
	if changed("host") {
		cfg.Host = f.host
	}
	if changed("name") {
		cfg.Name = f.name
	}
	if changed("content-root") {
		cfg.Providers.Assets.Root = f.contentRoot
		cfg.Providers.Assets.Enabled = true
	}
	if changed("log-level") {
		cfg.Logging.Level = f.logLevel
	}
	if changed("log-format") {
		cfg.Logging.Format = f.logFormat
	}
	if changed("log-file") {
		cfg.Logging.File = f.logFile
	}
	if f.noMetrics {
		cfg.Metrics.Enabled = false
	}
	if f.noScene {
		cfg.Providers.Scene.Enabled = false
	}
	if f.noAssets {
		cfg.Providers.Assets.Enabled = false
	}
	if f.noDiscovery {
		cfg.Discovery.Enabled = false
	}
}

// buildRouter assembles the route table from configuration: the enabled
// providers plus the batch provider, which dispatches back through the
// same table.
func buildRouter(cfg *config.Config, log *slog.Logger, m *metrics.Metrics) (*router.Router, error) {
	rt := router.New(
		router.WithLogger(logging.Component(log, "router")),
		router.WithMetrics(m),
		router.WithPrefix(cfg.APIPrefix),
	)

	if cfg.Providers.Scene.Enabled {
		opts := []scene.Option{scene.WithLogger(logging.Component(log, "scene"))}
		if cfg.Providers.Scene.MaxActors > 0 {
			opts = append(opts, scene.WithMaxActors(cfg.Providers.Scene.MaxActors))
		}
		if err := rt.Register(scene.NewProvider(opts...)); err != nil {
			return nil, fmt.Errorf("failed to register scene provider: %w", err)
		}
	}

	if cfg.Providers.Assets.Enabled {
		root := cfg.Providers.Assets.Root
		if root == "" {
			wd, err := os.Getwd()
			if err != nil {
				return nil, fmt.Errorf("failed to resolve content root: %w", err)
			}
			root = wd
		}
		p := assets.NewProvider(root, assets.WithLogger(logging.Component(log, "assets")))
		if err := rt.Register(p); err != nil {
			return nil, fmt.Errorf("failed to register assets provider: %w", err)
		}
	}

	p := batch.NewProvider(rt,
		batch.WithLogger(logging.Component(log, "batch")),
		batch.WithMetrics(m),
	)
	if err := rt.Register(p); err != nil {
		return nil, fmt.Errorf("failed to register batch provider: %w", err)
	}

	return rt, nil
}

// printServeStartupMessage prints the daemon startup information.
func printServeStartupMessage(cfg *config.Config, port int, providers []string) {
	fmt.Printf("%s started\n", cfg.Name)
	fmt.Println()
	fmt.Printf("  API:       http://%s:%d%s\n", cfg.Host, port, cfg.APIPrefix)
	if cfg.Metrics.Enabled {
		fmt.Printf("  Metrics:   http://%s:%d/metrics\n", cfg.Host, port)
	}
	fmt.Printf("  Providers: %s\n", strings.Join(providers, ", "))
	fmt.Println()
	fmt.Println("Press Ctrl+C to stop")
}

// isAddrInUseError detects a bind failure on an occupied port.
func isAddrInUseError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "address already in use")
}
