// Package configstore reads and writes the declarative list of
// services from services.json: an ordered JSON array of objects.
// Every mutation is atomic (write to a sibling temp file, then
// rename over the original) so a crash mid-write never corrupts the
// config. Concurrent CLI invocations racing on a mutation are not
// coordinated beyond that; last writer wins, which is acceptable for
// a personal, single-user tool.
package configstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cespare/xxhash/v2"

	"github.com/ada-cli/ada/internal/paths"
)

// Service is one declared, configured job.
type Service struct {
	Name    string `json:"name"`
	Cmd     string `json:"cmd"`
	Dir     string `json:"dir"`
	EnvFile string `json:"env_file,omitempty"`
	Enabled bool   `json:"enabled"`
}

// Store reads and writes a single services.json file.
type Store struct {
	path string
}

// New returns a Store bound to the layout's config file.
func New(l paths.Layout) *Store {
	return &Store{path: l.ConfigFile()}
}

// List returns every configured service in file order. A missing
// file is treated as an empty list, not an error, so a first-run
// "status" command degrades gracefully.
func (s *Store) List() ([]Service, error) {
	b, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}
	if len(b) == 0 {
		return nil, nil
	}
	var services []Service
	if err := json.Unmarshal(b, &services); err != nil {
		return nil, fmt.Errorf("parse %s: %w", s.path, err)
	}
	return services, nil
}

// Lookup returns the service with the given name, if any.
func (s *Store) Lookup(name string) (Service, bool, error) {
	services, err := s.List()
	if err != nil {
		return Service{}, false, err
	}
	for _, svc := range services {
		if svc.Name == name {
			return svc, true, nil
		}
	}
	return Service{}, false, nil
}

// Upsert inserts svc, or replaces the existing entry with the same
// name in place, preserving overall order.
func (s *Store) Upsert(svc Service) error {
	services, err := s.List()
	if err != nil {
		return err
	}
	replaced := false
	for i, existing := range services {
		if existing.Name == svc.Name {
			services[i] = svc
			replaced = true
			break
		}
	}
	if !replaced {
		services = append(services, svc)
	}
	return s.write(services)
}

// Remove deletes the named service from the config. It is not an
// error to remove a name that is not present.
func (s *Store) Remove(name string) error {
	services, err := s.List()
	if err != nil {
		return err
	}
	out := services[:0]
	for _, svc := range services {
		if svc.Name != name {
			out = append(out, svc)
		}
	}
	return s.write(out)
}

// SetEnabled flips the enabled flag for name. Returns false if no
// such service exists.
func (s *Store) SetEnabled(name string, enabled bool) (bool, error) {
	services, err := s.List()
	if err != nil {
		return false, err
	}
	found := false
	for i, svc := range services {
		if svc.Name == name {
			services[i].Enabled = enabled
			found = true
			break
		}
	}
	if !found {
		return false, nil
	}
	return true, s.write(services)
}

// Fingerprint returns an xxhash-64 digest of the config file's raw
// bytes, used by the supervisor purely to log when the file actually
// changed between polls; it has no bearing on reload timing.
func (s *Store) Fingerprint() (uint64, error) {
	b, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}
	return xxhash.Sum64(b), nil
}

// write serializes services and atomically replaces the config file.
func (s *Store) write(services []Service) error {
	if services == nil {
		services = []Service{}
	}
	b, err := json.MarshalIndent(services, "", "  ")
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".services-*.json.tmp")
	if err != nil {
		return fmt.Errorf("create temp config: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write temp config: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close temp config: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("install config: %w", err)
	}
	return nil
}
