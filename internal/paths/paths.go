// Package paths computes the on-disk layout for a user's ada home
// directory: where the declared-services config, per-service state,
// PID files, and logs live. The mapping from a service name to a path
// is pure and never shells the name out to the filesystem.
package paths

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
)

// nameRE matches the service-name grammar from the config format:
// it must start with an alphanumeric and may continue with
// alphanumerics, dots, underscores, or hyphens.
var nameRE = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// ValidName reports whether name is an acceptable service name.
func ValidName(name string) bool {
	return nameRE.MatchString(name)
}

// Layout resolves every path ada needs under a single root directory.
type Layout struct {
	Root string
}

// New resolves the root directory. If override is non-empty it is used
// verbatim (after tilde-expansion); this is how ADA_HOME / --ada-home
// let tests and advanced users relocate the home directory. Otherwise
// the root is "<user home>/.ada".
func New(override string) (Layout, error) {
	root := override
	if root == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return Layout{}, fmt.Errorf("resolve home directory: %w", err)
		}
		root = filepath.Join(home, ".ada")
	}
	expanded, err := expandHome(root)
	if err != nil {
		return Layout{}, err
	}
	return Layout{Root: expanded}, nil
}

// expandHome expands a leading "~" to the current user's home directory.
func expandHome(p string) (string, error) {
	if p == "~" || (len(p) >= 2 && p[:2] == "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("expand ~: %w", err)
		}
		if p == "~" {
			return home, nil
		}
		return filepath.Join(home, p[2:]), nil
	}
	return p, nil
}

// EnsureDirs creates the root, pids/, logs/, and state/ subdirectories.
func (l Layout) EnsureDirs() error {
	for _, d := range []string{l.Root, l.PidsDir(), l.LogsDir(), l.StateDir()} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", d, err)
		}
	}
	return nil
}

func (l Layout) PidsDir() string  { return filepath.Join(l.Root, "pids") }
func (l Layout) LogsDir() string  { return filepath.Join(l.Root, "logs") }
func (l Layout) StateDir() string { return filepath.Join(l.Root, "state") }

// ConfigFile is the declarative JSON array of services.
func (l Layout) ConfigFile() string { return filepath.Join(l.Root, "services.json") }

// SettingsFile is the optional tunables overlay.
func (l Layout) SettingsFile() string { return filepath.Join(l.Root, "settings.yaml") }

// LockFile is the single-supervisor-instance lock.
func (l Layout) LockFile() string { return filepath.Join(l.Root, "ada.lock") }

// SupervisorLogFile is the supervisor's own diagnostic log, distinct
// from any individual service's log.
func (l Layout) SupervisorLogFile() string { return filepath.Join(l.Root, "supervisor.log") }

// PidFile returns the PID-file path for a service name.
func (l Layout) PidFile(name string) string {
	return filepath.Join(l.PidsDir(), name+".pid")
}

// LogFile returns the log-file path for a service name.
func (l Layout) LogFile(name string) string {
	return filepath.Join(l.LogsDir(), name+".log")
}

// StateFile returns the state-file path for a service name.
func (l Layout) StateFile(name string) string {
	return filepath.Join(l.StateDir(), name+".json")
}

// ExpandDir tilde-expands a working directory from a service definition.
func ExpandDir(dir string) (string, error) {
	return expandHome(dir)
}
