// Package discovery publishes running daemon instances as small JSON
// files, one per bound port, so editor integrations and the CLI can
// find a daemon without probing ports. The file is written after the
// listener binds and removed on shutdown; a leftover file whose PID is
// gone marks a stale instance.
package discovery

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"syscall"
	"time"
)

// FormatVersion is bumped when the instance file layout changes in a
// way readers must detect.
const FormatVersion = 1

// Instance is the on-disk record for one running daemon.
type Instance struct {
	FormatVersion int       `json:"format_version"`
	Name          string    `json:"name"`
	Host          string    `json:"host,omitempty"`
	Port          int       `json:"port"`
	PID           int       `json:"pid"`
	StartedAt     time.Time `json:"started_at"`
	Providers     []string  `json:"providers"`
}

// DefaultDir returns the default instance directory
// (~/.remoted/instances).
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".remoted", "instances")
	}
	return filepath.Join(home, ".remoted", "instances")
}

// FilePath returns the instance file path for a port within dir.
func FilePath(dir string, port int) string {
	return filepath.Join(dir, fmt.Sprintf("remoted-%d.json", port))
}

// Write publishes an instance record into dir, creating the directory
// if needed. The write is atomic so a concurrent reader never sees a
// partial file.
func Write(dir string, inst *Instance) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create instance directory: %w", err)
	}

	inst.FormatVersion = FormatVersion
	data, err := json.MarshalIndent(inst, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal instance file: %w", err)
	}

	path := FilePath(dir, inst.Port)
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write instance file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename instance file: %w", err)
	}
	return nil
}

// Read reads and parses one instance file.
func Read(path string) (*Instance, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("instance file not found: %s", path)
		}
		return nil, fmt.Errorf("failed to read instance file: %w", err)
	}

	var inst Instance
	if err := json.Unmarshal(data, &inst); err != nil {
		return nil, fmt.Errorf("failed to parse instance file: %w", err)
	}
	return &inst, nil
}

// Remove deletes the instance file for a port. A missing file is not an
// error, so shutdown paths can call it unconditionally.
func Remove(dir string, port int) error {
	err := os.Remove(FilePath(dir, port))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove instance file: %w", err)
	}
	return nil
}

// List reads every instance file in dir, sorted by port. Unparseable
// files are skipped rather than failing the whole listing. A missing
// directory lists as empty.
func List(dir string) ([]*Instance, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "remoted-*.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to scan instance directory: %w", err)
	}

	instances := make([]*Instance, 0, len(matches))
	for _, path := range matches {
		inst, err := Read(path)
		if err != nil {
			continue
		}
		instances = append(instances, inst)
	}
	sort.Slice(instances, func(i, j int) bool {
		return instances[i].Port < instances[j].Port
	})
	return instances, nil
}

// IsRunning checks whether the recorded PID still exists.
func (i *Instance) IsRunning() bool {
	if i.PID <= 0 {
		return false
	}
	process, err := os.FindProcess(i.PID)
	if err != nil {
		return false
	}
	// On Unix FindProcess always succeeds; signal 0 probes existence.
	return process.Signal(syscall.Signal(0)) == nil
}

// URL returns the base URL for talking to this instance.
func (i *Instance) URL() string {
	host := i.Host
	if host == "" {
		host = "127.0.0.1"
	}
	return fmt.Sprintf("http://%s:%d", host, i.Port)
}

// Uptime returns the duration since the instance started.
func (i *Instance) Uptime() time.Duration {
	if i.StartedAt.IsZero() {
		return 0
	}
	return time.Since(i.StartedAt)
}

// FormatUptime returns a human-readable uptime string.
func (i *Instance) FormatUptime() string {
	return FormatDuration(i.Uptime())
}

// FormatDuration renders a duration the way the status surfaces show
// uptime: seconds, then minutes, hours, and days as it grows.
func FormatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm %ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	hours := int(d.Hours())
	mins := int(d.Minutes()) % 60
	if hours >= 24 {
		days := hours / 24
		hours = hours % 24
		return fmt.Sprintf("%dd %dh %dm", days, hours, mins)
	}
	return fmt.Sprintf("%dh %dm", hours, mins)
}
