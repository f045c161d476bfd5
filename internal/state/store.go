// Package state persists the per-service RuntimeRecord: PID/started-at
// pairing, the supervisor restart history, and the sticky crash-loop
// flag. Reads auto-initialize a missing file with zero-value
// defaults; writes are always atomic read-modify-write so the
// Controller and Supervisor never clobber fields they did not intend
// to change.
package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ada-cli/ada/internal/paths"
)

// Record is the on-disk shape of one service's runtime state.
type Record struct {
	PID          *int    `json:"pid,omitempty"`
	StartedAt    *int64  `json:"started_at"`
	RestartCount int     `json:"restart_count"`
	RestartTimes []int64 `json:"restart_times"`
	CrashLoop    bool    `json:"crash_loop"`
}

// Store reads and writes per-service Record files under a layout's
// state directory.
type Store struct {
	layout paths.Layout
}

// New returns a Store bound to the given layout.
func New(l paths.Layout) *Store {
	return &Store{layout: l}
}

// Read loads the record for name, returning zero-value defaults if no
// state file exists yet.
func (s *Store) Read(name string) (Record, error) {
	path := s.layout.StateFile(name)
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Record{RestartTimes: []int64{}}, nil
		}
		return Record{}, fmt.Errorf("read state %s: %w", path, err)
	}
	var rec Record
	if err := json.Unmarshal(b, &rec); err != nil {
		return Record{}, fmt.Errorf("parse state %s: %w", path, err)
	}
	if rec.RestartTimes == nil {
		rec.RestartTimes = []int64{}
	}
	return rec, nil
}

// Write atomically replaces the state file for name.
func (s *Store) Write(name string, rec Record) error {
	if rec.RestartTimes == nil {
		rec.RestartTimes = []int64{}
	}
	b, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	path := s.layout.StateFile(name)
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".state-*.json.tmp")
	if err != nil {
		return fmt.Errorf("create temp state: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write temp state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close temp state: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("install state: %w", err)
	}
	return nil
}

// Update reads the current record, applies fn, and writes the result
// back. It is the only sanctioned way to mutate a subset of fields.
func (s *Store) Update(name string, fn func(*Record)) (Record, error) {
	rec, err := s.Read(name)
	if err != nil {
		return Record{}, err
	}
	fn(&rec)
	if err := s.Write(name, rec); err != nil {
		return Record{}, err
	}
	return rec, nil
}

// Remove deletes the state file for name, if present.
func (s *Store) Remove(name string) error {
	err := os.Remove(s.layout.StateFile(name))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove state %s: %w", name, err)
	}
	return nil
}
