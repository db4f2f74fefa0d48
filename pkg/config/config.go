// Package config provides configuration types and loading for the
// remoted daemon.
package config

// Defaults for the daemon configuration.
const (
	// DefaultHost binds the listener to loopback; remoted drives a local
	// host application and is not meant to be reachable from elsewhere.
	DefaultHost = "127.0.0.1"

	// DefaultPort is the HTTP listener port.
	DefaultPort = 4270

	// DefaultAPIPrefix is stripped from inbound request paths.
	DefaultAPIPrefix = "/api/v1"

	// DefaultName is the display name published on discovery surfaces.
	DefaultName = "remoted"
)

// Config is the daemon configuration, loadable from a YAML or JSON file.
type Config struct {
	// Name is the display name shown on the liveness route and in the
	// discovery file.
	Name string `json:"name" yaml:"name"`

	// Host is the interface the HTTP listener binds to.
	Host string `json:"host" yaml:"host"`

	// Port is the HTTP listener port. Zero means probe for a free port
	// starting at DefaultPort.
	Port int `json:"port" yaml:"port"`

	// APIPrefix is the path prefix clients may address routes under.
	APIPrefix string `json:"apiPrefix" yaml:"apiPrefix"`

	// Logging configures the operational logger.
	Logging LoggingConfig `json:"logging" yaml:"logging"`

	// Metrics configures the prometheus endpoint.
	Metrics MetricsConfig `json:"metrics" yaml:"metrics"`

	// Discovery configures the out-of-band discovery file.
	Discovery DiscoveryConfig `json:"discovery" yaml:"discovery"`

	// Providers configures the built-in operation providers.
	Providers ProvidersConfig `json:"providers" yaml:"providers"`
}

// LoggingConfig configures the operational logger.
type LoggingConfig struct {
	// Level is the minimum level: debug, info, warn, error.
	Level string `json:"level" yaml:"level"`

	// Format is the console format: text or json.
	Format string `json:"format" yaml:"format"`

	// File, when set, additionally writes JSON log lines to this path.
	File string `json:"file,omitempty" yaml:"file,omitempty"`
}

// MetricsConfig configures the prometheus endpoint.
type MetricsConfig struct {
	// Enabled serves collectors at /metrics on the main listener.
	Enabled bool `json:"enabled" yaml:"enabled"`
}

// DiscoveryConfig configures the discovery file written at startup.
type DiscoveryConfig struct {
	// Enabled writes the discovery file on start and removes it on stop.
	Enabled bool `json:"enabled" yaml:"enabled"`

	// Dir overrides the directory the file is written to. Empty means
	// ~/.remoted/instances.
	Dir string `json:"dir,omitempty" yaml:"dir,omitempty"`
}

// ProvidersConfig configures the built-in operation providers.
type ProvidersConfig struct {
	// Scene enables the in-memory scene object provider.
	Scene SceneConfig `json:"scene" yaml:"scene"`

	// Assets enables the content root listing provider.
	Assets AssetsConfig `json:"assets" yaml:"assets"`
}

// SceneConfig configures the scene provider.
type SceneConfig struct {
	// Enabled registers the scene provider at startup.
	Enabled bool `json:"enabled" yaml:"enabled"`

	// MaxActors caps how many actors the scene holds at once. Zero
	// means unlimited.
	MaxActors int `json:"maxActors,omitempty" yaml:"maxActors,omitempty"`
}

// AssetsConfig configures the assets provider.
type AssetsConfig struct {
	// Enabled registers the assets provider at startup.
	Enabled bool `json:"enabled" yaml:"enabled"`

	// Root is the content directory the provider lists. Empty means the
	// current working directory.
	Root string `json:"root,omitempty" yaml:"root,omitempty"`
}

// Default returns the daemon configuration defaults. Loading merges file
// contents over this, so absent fields keep their default values.
func Default() *Config {
	return &Config{
		Name:      DefaultName,
		Host:      DefaultHost,
		Port:      DefaultPort,
		APIPrefix: DefaultAPIPrefix,
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics:   MetricsConfig{Enabled: true},
		Discovery: DiscoveryConfig{Enabled: true},
		Providers: ProvidersConfig{
			Scene:  SceneConfig{Enabled: true},
			Assets: AssetsConfig{Enabled: true},
		},
	}
}
