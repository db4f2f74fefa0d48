package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/getremoted/remoted/pkg/config"
)

var (
	initOutput string
	initFormat string
	initForce  bool
)

// starterYAML is the commented configuration template written by init.
const starterYAML = `# remoted daemon configuration
# Start the daemon with: remoted serve --config remoted.yaml

name: remoted
host: 127.0.0.1

# Listener port. 0 probes for a free port starting at 4270.
port: 4270

# Prefix clients may address routes under; /actors/list and
# /api/v1/actors/list reach the same operation.
apiPrefix: /api/v1

logging:
  level: info
  format: text
  # Additionally write JSON log lines to a file:
  # file: remoted.log

metrics:
  enabled: true

# Running instances announce themselves under ~/.remoted/instances so
# the client commands can find them.
discovery:
  enabled: true

providers:
  scene:
    enabled: true
    # Cap on actors held at once. Zero or absent means unlimited.
    # maxActors: 0
  assets:
    enabled: true
    # Content directory served by the assets routes. Empty means the
    # daemon's working directory.
    # root: /path/to/content
`

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a starter configuration file",
	Example: `  # Create remoted.yaml in the current directory
  remoted init

  # Create a JSON config with a custom name
  remoted init --output daemon.json

  # Overwrite an existing file
  remoted init --force`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInit(initOutput, initFormat, initForce)
	},
}

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().StringVarP(&initOutput, "output", "o", "remoted.yaml", "Output filename")
	initCmd.Flags().StringVar(&initFormat, "format", "", "Output format: yaml or json (default: inferred from filename)")
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite existing config file")
}

func runInit(path, format string, force bool) error {
	if format == "" {
		if ext := strings.ToLower(filepath.Ext(path)); ext == ".json" {
			format = "json"
		} else {
			format = "yaml"
		}
	}

	var content []byte
	switch format {
	case "yaml":
		content = []byte(starterYAML)
	case "json":
		encoded, err := json.MarshalIndent(config.Default(), "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode config: %w", err)
		}
		content = append(encoded, '\n')
	default:
		return fmt.Errorf("unknown format %q, expected yaml or json", format)
	}

	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists, use --force to overwrite", path)
		}
	}

	if err := os.WriteFile(path, content, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	fmt.Printf("Created %s\n", path)
	fmt.Println()
	fmt.Printf("Start the daemon: remoted serve --config %s\n", path)
	return nil
}
