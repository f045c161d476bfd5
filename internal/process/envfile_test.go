package process

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseEnvFileBasic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "env")
	content := "# comment\nFOO=bar\nexport BAZ=\"hello world\"\n\nQUX=1\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("seed: %v", err)
	}
	vars, err := ParseEnvFile(path)
	if err != nil {
		t.Fatalf("ParseEnvFile: %v", err)
	}
	want := map[string]string{"FOO": "bar", "BAZ": "hello world", "QUX": "1"}
	for k, v := range want {
		if vars[k] != v {
			t.Errorf("vars[%q] = %q, want %q", k, vars[k], v)
		}
	}
}

func TestParseEnvFileMissing(t *testing.T) {
	_, err := ParseEnvFile(filepath.Join(t.TempDir(), "nope"))
	if err == nil || !os.IsNotExist(err) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

func TestParseEnvFileInvalidLine(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "env")
	if err := os.WriteFile(path, []byte("NOT_AN_ASSIGNMENT\n"), 0o644); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, err := ParseEnvFile(path); err == nil {
		t.Fatalf("expected error for line missing '='")
	}
}
