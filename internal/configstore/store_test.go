package configstore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ada-cli/ada/internal/paths"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	l, _ := paths.New(t.TempDir())
	if err := l.EnsureDirs(); err != nil {
		t.Fatalf("EnsureDirs: %v", err)
	}
	return New(l)
}

func TestListMissingFileIsEmpty(t *testing.T) {
	s := newTestStore(t)
	services, err := s.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(services) != 0 {
		t.Fatalf("expected empty list, got %v", services)
	}
}

func TestUpsertThenLookup(t *testing.T) {
	s := newTestStore(t)
	svc := Service{Name: "web", Cmd: "sleep 30", Dir: "/tmp", Enabled: true}
	if err := s.Upsert(svc); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	got, ok, err := s.Lookup("web")
	if err != nil || !ok {
		t.Fatalf("Lookup: %v ok=%v", err, ok)
	}
	if got != svc {
		t.Fatalf("got %+v want %+v", got, svc)
	}
}

func TestUpsertPreservesOrderOnReplace(t *testing.T) {
	s := newTestStore(t)
	_ = s.Upsert(Service{Name: "a", Cmd: "x"})
	_ = s.Upsert(Service{Name: "b", Cmd: "y"})
	_ = s.Upsert(Service{Name: "a", Cmd: "x2"})

	services, _ := s.List()
	if len(services) != 2 || services[0].Name != "a" || services[1].Name != "b" {
		t.Fatalf("order not preserved: %+v", services)
	}
	if services[0].Cmd != "x2" {
		t.Fatalf("replace did not update: %+v", services[0])
	}
}

func TestRemoveRoundTrip(t *testing.T) {
	s := newTestStore(t)
	_ = s.Upsert(Service{Name: "web", Cmd: "sleep 30", Dir: "/tmp", Enabled: true})
	before, _ := s.List()

	if err := s.Remove("web"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if err := s.Upsert(before[0]); err != nil {
		t.Fatalf("re-add: %v", err)
	}
	after, _ := s.List()
	if len(after) != 1 || after[0] != before[0] {
		t.Fatalf("add/remove/add round trip mismatch: %+v vs %+v", after, before)
	}
}

func TestRemoveUnknownIsNotError(t *testing.T) {
	s := newTestStore(t)
	if err := s.Remove("nope"); err != nil {
		t.Fatalf("Remove unknown: %v", err)
	}
}

func TestSetEnabledRoundTrip(t *testing.T) {
	s := newTestStore(t)
	_ = s.Upsert(Service{Name: "web", Enabled: true})

	ok, err := s.SetEnabled("web", false)
	if err != nil || !ok {
		t.Fatalf("SetEnabled disable: err=%v ok=%v", err, ok)
	}
	ok, err = s.SetEnabled("web", true)
	if err != nil || !ok {
		t.Fatalf("SetEnabled enable: err=%v ok=%v", err, ok)
	}
	svc, _, _ := s.Lookup("web")
	if !svc.Enabled {
		t.Fatalf("expected enabled=true after round trip")
	}
}

func TestSetEnabledUnknownService(t *testing.T) {
	s := newTestStore(t)
	ok, err := s.SetEnabled("nope", true)
	if err != nil {
		t.Fatalf("SetEnabled: %v", err)
	}
	if ok {
		t.Fatalf("expected ok=false for unknown service")
	}
}

func TestMalformedConfigIsFatalForMutation(t *testing.T) {
	l, _ := paths.New(t.TempDir())
	_ = l.EnsureDirs()
	if err := os.WriteFile(l.ConfigFile(), []byte("{not valid json array"), 0o644); err != nil {
		t.Fatalf("seed malformed config: %v", err)
	}
	s := New(l)
	if _, err := s.List(); err == nil {
		t.Fatalf("expected error reading malformed config")
	}
	if err := s.Upsert(Service{Name: "x"}); err == nil {
		t.Fatalf("expected error mutating malformed config")
	}
}

func TestWriteIsAtomic(t *testing.T) {
	s := newTestStore(t)
	_ = s.Upsert(Service{Name: "web", Enabled: true})

	dir := filepath.Dir(s.path)
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	for _, e := range entries {
		if filepath.Ext(e.Name()) == ".tmp" {
			t.Fatalf("leftover temp file after write: %s", e.Name())
		}
	}
}

func TestFingerprintChangesWithContent(t *testing.T) {
	s := newTestStore(t)
	f1, err := s.Fingerprint()
	if err != nil {
		t.Fatalf("Fingerprint empty: %v", err)
	}
	_ = s.Upsert(Service{Name: "web", Enabled: true})
	f2, err := s.Fingerprint()
	if err != nil {
		t.Fatalf("Fingerprint after write: %v", err)
	}
	if f1 == f2 {
		t.Fatalf("expected fingerprint to change after write")
	}
}
