package cli

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/getremoted/remoted/pkg/cli/internal/output"
	"github.com/getremoted/remoted/pkg/discovery"
)

// statusProbeTimeout bounds the liveness probe per instance.
const statusProbeTimeout = 2 * time.Second

var (
	statusDir  string
	statusPort int
)

// StatusEntry is the JSON output record for one instance.
type StatusEntry struct {
	Name      string   `json:"name"`
	URL       string   `json:"url"`
	PID       int      `json:"pid"`
	Port      int      `json:"port"`
	Running   bool     `json:"running"`
	Reachable bool     `json:"reachable"`
	Version   string   `json:"version,omitempty"`
	Uptime    string   `json:"uptime,omitempty"`
	Providers []string `json:"providers,omitempty"`
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the status of running daemon instances",
	Long: `List daemon instances from their discovery files and probe each one
over HTTP. Stale files left behind by dead processes are reported as
stopped.`,
	Example: `  # Show all instances
  remoted status

  # Show one instance as JSON
  remoted status --port 4270 --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := statusDir
		if dir == "" {
			dir = discovery.DefaultDir()
		}
		return runStatus(dir, statusPort, jsonOutput)
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().StringVar(&statusDir, "dir", "", "Instance directory (default: ~/.remoted/instances)")
	statusCmd.Flags().IntVar(&statusPort, "port", 0, "Only show the instance on this port")
}

// runStatus builds and prints the status report for instances under dir.
func runStatus(dir string, port int, jsonOut bool) error {
	insts, err := discovery.List(dir)
	if err != nil {
		return fmt.Errorf("failed to list instances: %w", err)
	}
	if port > 0 {
		filtered := insts[:0]
		for _, inst := range insts {
			if inst.Port == port {
				filtered = append(filtered, inst)
			}
		}
		insts = filtered
	}

	entries := make([]StatusEntry, 0, len(insts))
	for _, inst := range insts {
		entries = append(entries, probeInstance(inst))
	}

	if jsonOut {
		return output.JSON(entries)
	}
	printHumanStatus(entries)
	if port > 0 && len(entries) == 1 && entries[0].Reachable {
		printProviderDetail(entries[0].URL)
	}
	return nil
}

// printProviderDetail lists each provider's routes for one instance.
func printProviderDetail(baseURL string) {
	client := NewClient(baseURL, WithTimeout(statusProbeTimeout))
	providers, err := client.Providers()
	if err != nil {
		return
	}

	fmt.Println()
	fmt.Println("Providers:")
	w := output.Table()
	for _, p := range providers.Providers {
		fmt.Fprintf(w, "  %s\t%s\t%d routes\t%s\n", p.Name, p.BasePath, p.Routes, p.Description)
	}
	_ = w.Flush()
}

// probeInstance merges the discovery file record with a live probe of
// the instance. File data fills the gaps when the daemon is gone or not
// answering.
func probeInstance(inst *discovery.Instance) StatusEntry {
	entry := StatusEntry{
		Name:      inst.Name,
		URL:       inst.URL(),
		PID:       inst.PID,
		Port:      inst.Port,
		Running:   inst.IsRunning(),
		Providers: inst.Providers,
	}
	if !entry.Running {
		return entry
	}

	entry.Uptime = inst.FormatUptime()

	client := NewClient(inst.URL(), WithTimeout(statusProbeTimeout))
	status, err := client.Status()
	if err != nil {
		return entry
	}

	entry.Reachable = true
	entry.Version = status.Version
	entry.Uptime = discovery.FormatDuration(time.Duration(status.Uptime) * time.Second)
	entry.Providers = status.Providers
	return entry
}

// printHumanStatus prints the status report in human-readable format.
func printHumanStatus(entries []StatusEntry) {
	if len(entries) == 0 {
		fmt.Println("no remoted instance is running")
		fmt.Println()
		fmt.Println("To start: remoted serve")
		return
	}

	fmt.Println("Instances:")
	for _, e := range entries {
		switch {
		case e.Reachable:
			fmt.Printf("  %-10s %s  %s  (pid %d, uptime %s)\n",
				e.Name, colorGreen("running"), e.URL, e.PID, e.Uptime)
			if len(e.Providers) > 0 {
				fmt.Printf("  %-10s providers: %s\n", "", strings.Join(e.Providers, ", "))
			}
		case e.Running:
			fmt.Printf("  %-10s %s  %s  (pid %d, not answering)\n",
				e.Name, colorRed("unreachable"), e.URL, e.PID)
		default:
			fmt.Printf("  %-10s %s  stale instance file (pid %d is gone)\n",
				e.Name, colorRed("stopped"), e.PID)
		}
	}
}

// colorGreen returns text wrapped in ANSI green color codes.
func colorGreen(s string) string {
	if !isTerminal() {
		return s
	}
	return "\033[32m" + s + "\033[0m"
}

// colorRed returns text wrapped in ANSI red color codes.
func colorRed(s string) string {
	if !isTerminal() {
		return s
	}
	return "\033[31m" + s + "\033[0m"
}

// isTerminal checks if stdout is a terminal.
func isTerminal() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}
