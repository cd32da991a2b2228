package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Store manages idle session persistence at a single well-known path.
// Persistence is what lets a monitor crash-and-restart resume the idle clock
// instead of resetting it to zero.
type Store struct {
	path string
}

// NewStore creates a store backed by the given file, creating the parent
// directory if needed.
func NewStore(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create state directory: %w", err)
	}
	return &Store{path: path}, nil
}

// Load reads the persisted idle session. A missing or unreadable file yields
// a fresh session rather than an error: corrupt state must degrade to "no
// idle streak recorded", never wedge the monitor.
func (s *Store) Load() *Session {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return &Session{}
	}

	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		return &Session{}
	}

	return &session
}

// Save persists the session to disk. The write goes through a temp file and
// rename so a monitor killed mid-write (including by the shutdown it just
// triggered) never leaves a torn state file behind.
func (s *Store) Save(session *Session) error {
	data, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal idle state: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".state-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp state file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write idle state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp state file: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace state file: %w", err)
	}

	return nil
}

// Clear removes the persisted session, ending the recorded idle streak.
func (s *Store) Clear() error {
	if err := os.Remove(s.path); err != nil {
		if os.IsNotExist(err) {
			return nil // Already cleared
		}
		return fmt.Errorf("failed to remove state file: %w", err)
	}
	return nil
}

// Path returns the state file location
func (s *Store) Path() string {
	return s.path
}
