// Package logstore appends a service's merged stdout+stderr to a
// per-service log file and rotates it by byte count: when the file
// exceeds a cap, only the last 75% of the cap is kept. Truncation is
// byte-, not line-aware, so the new first line may start mid-record;
// that is an accepted tradeoff for a supervisor that must never block
// a start on log bookkeeping.
package logstore

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/pierrec/lz4/v4"
)

// maxArchives bounds how many rotated-out backups are kept per
// service; older archives are pruned on each rotation.
const maxArchives = 3

// Rotator owns the rotate-before-write decision for a single log
// file path.
type Rotator struct {
	path       string
	maxBytes   int64
	nowSeconds func() int64
}

// New returns a Rotator bound to a log file path and a byte cap.
func New(path string, maxBytes int64) *Rotator {
	return &Rotator{path: path, maxBytes: maxBytes, nowSeconds: func() int64 { return time.Now().Unix() }}
}

// Path returns the underlying log file path.
func (r *Rotator) Path() string { return r.path }

// RotateIfNeeded checks the current file size and, if it exceeds
// maxBytes, rewrites the file to hold only its last 75% of maxBytes.
// The discarded head is opportunistically archived as an lz4-
// compressed sidecar; failure to archive is never fatal and never
// blocks the rotation itself.
func (r *Rotator) RotateIfNeeded() error {
	info, err := os.Stat(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("stat log %s: %w", r.path, err)
	}
	if info.Size() <= r.maxBytes {
		return nil
	}

	keep := r.maxBytes * 3 / 4
	if keep <= 0 {
		keep = r.maxBytes
	}

	f, err := os.Open(r.path)
	if err != nil {
		return fmt.Errorf("open log for rotation %s: %w", r.path, err)
	}
	defer f.Close()

	discardLen := info.Size() - keep
	discarded := make([]byte, discardLen)
	if _, err := io.ReadFull(f, discarded); err != nil {
		return fmt.Errorf("read discarded head of %s: %w", r.path, err)
	}

	tail, err := io.ReadAll(f)
	if err != nil {
		return fmt.Errorf("read tail of %s: %w", r.path, err)
	}

	dir := filepath.Dir(r.path)
	tmp, err := os.CreateTemp(dir, ".log-rotate-*.tmp")
	if err != nil {
		return fmt.Errorf("create rotation temp file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(tail); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write rotated tail: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close rotation temp file: %w", err)
	}
	if err := os.Rename(tmpPath, r.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("install rotated log: %w", err)
	}

	// Best-effort archive of the discarded head; a failure here never
	// undoes the rotation that already satisfied the size invariant.
	r.archive(discarded)
	r.pruneArchives()
	return nil
}

// archive writes the discarded bytes to a timestamped lz4-compressed
// sidecar next to the log file.
func (r *Rotator) archive(discarded []byte) {
	if len(discarded) == 0 {
		return
	}
	archivePath := fmt.Sprintf("%s.%d.lz4", r.path, r.nowSeconds())
	f, err := os.OpenFile(archivePath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return
	}
	defer f.Close()
	zw := lz4.NewWriter(f)
	if _, err := zw.Write(discarded); err != nil {
		return
	}
	_ = zw.Close()
}

// pruneArchives keeps only the maxArchives most recent lz4 sidecars
// for this log file.
func (r *Rotator) pruneArchives() {
	dir := filepath.Dir(r.path)
	base := filepath.Base(r.path)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	var archives []string
	prefix := base + "."
	for _, e := range entries {
		name := e.Name()
		if strings.HasPrefix(name, prefix) && strings.HasSuffix(name, ".lz4") {
			archives = append(archives, name)
		}
	}
	if len(archives) <= maxArchives {
		return
	}
	sort.Slice(archives, func(i, j int) bool {
		return archiveTimestamp(archives[i], prefix) < archiveTimestamp(archives[j], prefix)
	})
	for _, old := range archives[:len(archives)-maxArchives] {
		_ = os.Remove(filepath.Join(dir, old))
	}
}

func archiveTimestamp(name, prefix string) int64 {
	rest := strings.TrimPrefix(name, prefix)
	rest = strings.TrimSuffix(rest, ".lz4")
	ts, _ := strconv.ParseInt(rest, 10, 64)
	return ts
}

// AppendMarker writes an ASCII marker line of the form
// "[YYYY-MM-DD HH:MM:SS] === ada {starting|stopped} <name> ===".
func AppendMarker(path, action, name string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open log for marker %s: %w", path, err)
	}
	defer f.Close()
	line := fmt.Sprintf("[%s] === ada %s %s ===\n", time.Now().Format("2006-01-02 15:04:05"), action, name)
	_, err = f.WriteString(line)
	return err
}

// IsMarkerLine reports whether line is a controller-written marker,
// so status/tail views can filter them out of "meaningful" output.
func IsMarkerLine(line string) bool {
	return strings.Contains(line, "=== ada ") && strings.HasPrefix(strings.TrimSpace(line), "[")
}
