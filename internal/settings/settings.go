// Package settings loads the optional settings.yaml overlay that lets
// a user override ada's compiled-in tunable constants (log size cap,
// crash-loop threshold/window, stop grace period, watch interval)
// without recompiling. Absent file, absent fields, or a malformed
// file all fall back to the documented defaults; a parse failure is
// reported as a warning, never a fatal error.
package settings

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ada-cli/ada/internal/paths"
)

// Defaults per the tunable-constants table: MAX_LOG_BYTES=2MiB,
// CRASH_LOOP_THRESHOLD=5, CRASH_LOOP_WINDOW=120s, STOP_GRACE=5s,
// WATCH_INTERVAL=10s.
const (
	DefaultMaxLogBytes         = 2 * 1024 * 1024
	DefaultCrashLoopThreshold  = 5
	DefaultCrashLoopWindow     = 120 * time.Second
	DefaultStopGrace           = 5 * time.Second
	DefaultWatchInterval       = 10 * time.Second
	DefaultPostSpawnGracePause = 500 * time.Millisecond
)

// Settings holds the resolved tunable constants, after applying any
// settings.yaml overlay on top of the compiled-in defaults.
type Settings struct {
	MaxLogBytes        int64
	CrashLoopThreshold int
	CrashLoopWindow    time.Duration
	StopGrace          time.Duration
	WatchInterval      time.Duration
}

// Defaults returns the compiled-in tunables with no overlay applied.
func Defaults() Settings {
	return Settings{
		MaxLogBytes:        DefaultMaxLogBytes,
		CrashLoopThreshold: DefaultCrashLoopThreshold,
		CrashLoopWindow:    DefaultCrashLoopWindow,
		StopGrace:          DefaultStopGrace,
		WatchInterval:      DefaultWatchInterval,
	}
}

// overlay is the on-disk YAML shape; all fields are optional.
type overlay struct {
	MaxLogBytes            *int64 `yaml:"max_log_bytes"`
	CrashLoopThreshold     *int   `yaml:"crash_loop_threshold"`
	CrashLoopWindowSeconds *int64 `yaml:"crash_loop_window_seconds"`
	StopGraceSeconds       *int64 `yaml:"stop_grace_seconds"`
	WatchIntervalSeconds   *int64 `yaml:"watch_interval_seconds"`
}

// Load reads settings.yaml from the layout's root, if present, and
// applies it on top of Defaults(). Any problem reading or parsing the
// file is returned as a single warning string; the returned Settings
// is always usable.
func Load(l paths.Layout) (Settings, []string) {
	s := Defaults()
	b, err := os.ReadFile(l.SettingsFile())
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return s, []string{fmt.Sprintf("settings: could not read %s: %v (using defaults)", l.SettingsFile(), err)}
	}

	var ov overlay
	if err := yaml.Unmarshal(b, &ov); err != nil {
		return s, []string{fmt.Sprintf("settings: could not parse %s: %v (using defaults)", l.SettingsFile(), err)}
	}

	// A zero or negative value for any field is treated as "unset": a
	// settings file should never be able to accidentally disable
	// crash-loop protection by zeroing the threshold or window.
	if ov.MaxLogBytes != nil && *ov.MaxLogBytes > 0 {
		s.MaxLogBytes = *ov.MaxLogBytes
	}
	if ov.CrashLoopThreshold != nil && *ov.CrashLoopThreshold > 0 {
		s.CrashLoopThreshold = *ov.CrashLoopThreshold
	}
	if ov.CrashLoopWindowSeconds != nil && *ov.CrashLoopWindowSeconds > 0 {
		s.CrashLoopWindow = time.Duration(*ov.CrashLoopWindowSeconds) * time.Second
	}
	if ov.StopGraceSeconds != nil && *ov.StopGraceSeconds > 0 {
		s.StopGrace = time.Duration(*ov.StopGraceSeconds) * time.Second
	}
	if ov.WatchIntervalSeconds != nil && *ov.WatchIntervalSeconds > 0 {
		s.WatchInterval = time.Duration(*ov.WatchIntervalSeconds) * time.Second
	}
	return s, nil
}
