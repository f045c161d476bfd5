package logstore

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRotateIfNeededNoOpBelowCap(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "web.log")
	if err := os.WriteFile(path, []byte("hello"), 0o644); err != nil {
		t.Fatalf("seed: %v", err)
	}
	r := New(path, 1000)
	if err := r.RotateIfNeeded(); err != nil {
		t.Fatalf("RotateIfNeeded: %v", err)
	}
	b, _ := os.ReadFile(path)
	if string(b) != "hello" {
		t.Fatalf("content changed unexpectedly: %q", b)
	}
}

func TestRotateIfNeededMissingFileIsNoOp(t *testing.T) {
	r := New(filepath.Join(t.TempDir(), "nope.log"), 100)
	if err := r.RotateIfNeeded(); err != nil {
		t.Fatalf("RotateIfNeeded on missing file: %v", err)
	}
}

func TestRotateKeepsLast75Percent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "web.log")
	content := strings.Repeat("0123456789", 200) // 2000 bytes
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("seed: %v", err)
	}
	const cap = 1000
	r := New(path, cap)
	if err := r.RotateIfNeeded(); err != nil {
		t.Fatalf("RotateIfNeeded: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Size() > cap {
		t.Fatalf("log size %d exceeds cap %d after rotation", info.Size(), cap)
	}
	wantKeep := int64(cap * 3 / 4)
	if info.Size() != wantKeep {
		t.Fatalf("log size = %d, want %d", info.Size(), wantKeep)
	}
	b, _ := os.ReadFile(path)
	if !strings.HasSuffix(content, string(b)) {
		t.Fatalf("rotated content is not a suffix of the original")
	}
}

func TestRotateArchivesDiscardedHead(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "web.log")
	content := strings.Repeat("x", 2000)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("seed: %v", err)
	}
	r := New(path, 1000)
	if err := r.RotateIfNeeded(); err != nil {
		t.Fatalf("RotateIfNeeded: %v", err)
	}
	entries, _ := os.ReadDir(dir)
	found := false
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), "web.log.") && strings.HasSuffix(e.Name(), ".lz4") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected an lz4 archive of the discarded head, entries: %v", entries)
	}
}

func TestAppendAndIsMarkerLine(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "web.log")
	if err := AppendMarker(path, "starting", "web"); err != nil {
		t.Fatalf("AppendMarker: %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	line := strings.TrimSpace(string(b))
	if !IsMarkerLine(line) {
		t.Fatalf("expected marker line to be recognized: %q", line)
	}
	if !strings.Contains(line, "=== ada starting web ===") {
		t.Fatalf("unexpected marker content: %q", line)
	}
}

func TestIsMarkerLineRejectsOrdinaryOutput(t *testing.T) {
	if IsMarkerLine("listening on :8080") {
		t.Fatalf("ordinary output misclassified as marker")
	}
}
