package crashloop

import (
	"testing"
	"time"

	"github.com/ada-cli/ada/internal/paths"
	"github.com/ada-cli/ada/internal/settings"
	"github.com/ada-cli/ada/internal/state"
)

func newDetector(t *testing.T) (*Detector, *state.Store) {
	t.Helper()
	l, _ := paths.New(t.TempDir())
	_ = l.EnsureDirs()
	store := state.New(l)
	s := settings.Defaults()
	s.CrashLoopThreshold = 5
	s.CrashLoopWindow = 120 * time.Second
	return New(store, s), store
}

func TestRecordRestartIncrementsCount(t *testing.T) {
	d, _ := newDetector(t)
	now := int64(1_700_000_000)
	rec, err := d.RecordRestart("web", now)
	if err != nil {
		t.Fatalf("RecordRestart: %v", err)
	}
	if rec.RestartCount != 1 || len(rec.RestartTimes) != 1 || rec.RestartTimes[0] != now {
		t.Fatalf("unexpected record: %+v", rec)
	}
}

func TestCrashLoopEngagesAfterThreshold(t *testing.T) {
	d, _ := newDetector(t)
	now := int64(1_700_000_000)
	var rec state.Record
	var err error
	for i := 0; i < 6; i++ {
		rec, err = d.RecordRestart("web", now+int64(i))
		if err != nil {
			t.Fatalf("RecordRestart #%d: %v", i, err)
		}
	}
	if !rec.CrashLoop {
		t.Fatalf("expected crash_loop=true after 6 restarts, got %+v", rec)
	}
	if rec.RestartCount != 6 {
		t.Fatalf("expected restart_count=6, got %d", rec.RestartCount)
	}
	if len(rec.RestartTimes) != 6 {
		t.Fatalf("expected 6 restart_times at rest, got %d", len(rec.RestartTimes))
	}
}

func TestOldRestartTimesArePruned(t *testing.T) {
	d, store := newDetector(t)
	base := int64(1_700_000_000)
	_, _ = d.RecordRestart("web", base)
	// Jump far beyond the crash-loop window; the old entry must be pruned.
	_, err := d.RecordRestart("web", base+300)
	if err != nil {
		t.Fatalf("RecordRestart: %v", err)
	}
	rec, _ := store.Read("web")
	for _, ts := range rec.RestartTimes {
		if ts <= base+300-int64((120*time.Second).Seconds()) {
			t.Fatalf("found stale restart_time %d after window prune: %+v", ts, rec.RestartTimes)
		}
	}
	if len(rec.RestartTimes) != 1 {
		t.Fatalf("expected only the fresh entry to remain, got %+v", rec.RestartTimes)
	}
}

func TestClearCrashLoopResetsState(t *testing.T) {
	d, _ := newDetector(t)
	now := int64(1_700_000_000)
	for i := 0; i < 6; i++ {
		_, _ = d.RecordRestart("web", now+int64(i))
	}
	looped, _ := d.IsCrashLooped("web")
	if !looped {
		t.Fatalf("expected crash loop engaged before clear")
	}
	rec, err := d.ClearCrashLoop("web")
	if err != nil {
		t.Fatalf("ClearCrashLoop: %v", err)
	}
	if rec.CrashLoop || rec.RestartCount != 0 || len(rec.RestartTimes) != 0 {
		t.Fatalf("expected clean state after clear, got %+v", rec)
	}
	looped, _ = d.IsCrashLooped("web")
	if looped {
		t.Fatalf("expected crash loop cleared")
	}
}

func TestIsCrashLoopedUnknownService(t *testing.T) {
	d, _ := newDetector(t)
	looped, err := d.IsCrashLooped("nope")
	if err != nil {
		t.Fatalf("IsCrashLooped: %v", err)
	}
	if looped {
		t.Fatalf("expected false for never-seen service")
	}
}
