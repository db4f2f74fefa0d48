// Package cli implements the remoted command-line interface.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Persistent flags available to all subcommands
	serverURL  string
	jsonOutput bool

	// Version is injected during build
	Version = "dev"
	// Commit is injected during build
	Commit = "none"
	// BuildDate is injected during build
	BuildDate = "unknown"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "remoted",
	Short: "remoted is an HTTP control daemon for a host application",
	Long: `remoted exposes a host application over a local HTTP API: spawning and
querying scene objects, listing content, and running batched operation
sequences whose later steps reference earlier results.

Start the daemon with 'remoted serve', then drive it with 'remoted call'
and 'remoted batch'. Running instances announce themselves under
~/.remoted/instances so 'remoted status' can find them.`,
	// No Run function here means 'remoted' with no args will print help text by default.
	SilenceUsage:  true,
	SilenceErrors: true, // We handle errors in Execute()
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server-url", "", "Daemon base URL (default: discover a running instance)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output command results in JSON format")
}
