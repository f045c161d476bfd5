package paths

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNewOverride(t *testing.T) {
	l, err := New("/tmp/ada-test-home")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if l.Root != "/tmp/ada-test-home" {
		t.Fatalf("Root = %q", l.Root)
	}
}

func TestNewDefaultUnderHome(t *testing.T) {
	l, err := New("")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	home, _ := os.UserHomeDir()
	want := filepath.Join(home, ".ada")
	if l.Root != want {
		t.Fatalf("Root = %q, want %q", l.Root, want)
	}
}

func TestEnsureDirs(t *testing.T) {
	dir := t.TempDir()
	l, _ := New(filepath.Join(dir, "home"))
	if err := l.EnsureDirs(); err != nil {
		t.Fatalf("EnsureDirs: %v", err)
	}
	for _, d := range []string{l.PidsDir(), l.LogsDir(), l.StateDir()} {
		if info, err := os.Stat(d); err != nil || !info.IsDir() {
			t.Fatalf("expected dir %s to exist", d)
		}
	}
}

func TestValidName(t *testing.T) {
	cases := map[string]bool{
		"web":        true,
		"web-1":      true,
		"web.1_2":    true,
		"":           false,
		"-web":       false,
		".web":       false,
		"web/../etc": false,
		"w eb":       false,
	}
	for name, want := range cases {
		if got := ValidName(name); got != want {
			t.Errorf("ValidName(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestPerServicePaths(t *testing.T) {
	l, _ := New("/home/user/.ada")
	if got, want := l.PidFile("web"), "/home/user/.ada/pids/web.pid"; got != want {
		t.Errorf("PidFile = %q, want %q", got, want)
	}
	if got, want := l.LogFile("web"), "/home/user/.ada/logs/web.log"; got != want {
		t.Errorf("LogFile = %q, want %q", got, want)
	}
	if got, want := l.StateFile("web"), "/home/user/.ada/state/web.json"; got != want {
		t.Errorf("StateFile = %q, want %q", got, want)
	}
}

func TestExpandDir(t *testing.T) {
	home, _ := os.UserHomeDir()
	got, err := ExpandDir("~/projects/web")
	if err != nil {
		t.Fatalf("ExpandDir: %v", err)
	}
	want := filepath.Join(home, "projects/web")
	if got != want {
		t.Errorf("ExpandDir = %q, want %q", got, want)
	}
	if got, _ := ExpandDir("/abs/path"); got != "/abs/path" {
		t.Errorf("ExpandDir abs = %q", got)
	}
}
