package settings

import (
	"os"
	"testing"
	"time"

	"github.com/ada-cli/ada/internal/paths"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	l, _ := paths.New(t.TempDir())
	_ = l.EnsureDirs()
	s, warnings := Load(l)
	if warnings != nil {
		t.Fatalf("expected no warnings, got %v", warnings)
	}
	if s != Defaults() {
		t.Fatalf("expected defaults, got %+v", s)
	}
}

func TestLoadOverridesSubset(t *testing.T) {
	l, _ := paths.New(t.TempDir())
	_ = l.EnsureDirs()
	yaml := "crash_loop_threshold: 10\nwatch_interval_seconds: 30\n"
	if err := os.WriteFile(l.SettingsFile(), []byte(yaml), 0o644); err != nil {
		t.Fatalf("seed settings: %v", err)
	}
	s, warnings := Load(l)
	if warnings != nil {
		t.Fatalf("unexpected warnings: %v", warnings)
	}
	if s.CrashLoopThreshold != 10 {
		t.Errorf("CrashLoopThreshold = %d, want 10", s.CrashLoopThreshold)
	}
	if s.WatchInterval != 30*time.Second {
		t.Errorf("WatchInterval = %v, want 30s", s.WatchInterval)
	}
	// Unset fields retain defaults.
	if s.MaxLogBytes != DefaultMaxLogBytes {
		t.Errorf("MaxLogBytes = %d, want default", s.MaxLogBytes)
	}
}

func TestLoadMalformedFileWarnsAndDefaults(t *testing.T) {
	l, _ := paths.New(t.TempDir())
	_ = l.EnsureDirs()
	if err := os.WriteFile(l.SettingsFile(), []byte("not: [valid yaml"), 0o644); err != nil {
		t.Fatalf("seed settings: %v", err)
	}
	s, warnings := Load(l)
	if len(warnings) == 0 {
		t.Fatalf("expected a warning for malformed settings")
	}
	if s != Defaults() {
		t.Fatalf("expected defaults on parse failure, got %+v", s)
	}
}

func TestLoadZeroValuesAreTreatedAsUnset(t *testing.T) {
	l, _ := paths.New(t.TempDir())
	_ = l.EnsureDirs()
	if err := os.WriteFile(l.SettingsFile(), []byte("crash_loop_threshold: 0\ncrash_loop_window_seconds: -5\n"), 0o644); err != nil {
		t.Fatalf("seed settings: %v", err)
	}
	s, _ := Load(l)
	if s.CrashLoopThreshold != DefaultCrashLoopThreshold {
		t.Errorf("expected zero threshold to be ignored, got %d", s.CrashLoopThreshold)
	}
	if s.CrashLoopWindow != DefaultCrashLoopWindow {
		t.Errorf("expected negative window to be ignored, got %v", s.CrashLoopWindow)
	}
}
