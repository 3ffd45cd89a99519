// Package dedup persists which item identities have already been delivered,
// keyed by a deduplication window. The store is a single flat JSON file
// replaced atomically on flush; it is not a database and is never pruned
// (unbounded growth is an accepted tradeoff: one short line per delivered
// item).
package dedup

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// Window returns the default window key for t: the UTC calendar date. The
// store itself treats window keys as opaque tokens, so callers are free to
// window by anything comparable.
func Window(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// Store maps item identity to the window key of its last delivery. All
// methods except Load and Flush are in-memory; the orchestrator is
// single-threaded per run, so no internal locking is needed.
type Store struct {
	path    string
	entries map[string]string
}

// NewStore creates a store persisted at path. Call Load before first use.
func NewStore(path string) *Store {
	return &Store{
		path:    path,
		entries: make(map[string]string),
	}
}

// Load reads the persisted state. A missing file is a normal first run.
// Corrupt or unreadable state must not take the pipeline down: the store
// degrades to empty with a warning.
func (s *Store) Load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		slog.Warn("Dedup state unreadable, starting empty", "path", s.path, "error", err)
		return nil
	}

	entries := make(map[string]string)
	if err := json.Unmarshal(data, &entries); err != nil {
		slog.Warn("Dedup state corrupt, starting empty", "path", s.path, "error", err)
		return nil
	}

	s.entries = entries
	return nil
}

// IsDuplicate reports whether identity was already delivered in the given
// window. An identity recorded under an earlier window does not block
// delivery in a new one; old entries remain for historical lookup only.
func (s *Store) IsDuplicate(identity, windowKey string) bool {
	recorded, ok := s.entries[identity]
	return ok && recorded == windowKey
}

// Commit records a delivery of identity in the given window. At most one
// entry exists per identity; a redelivery in a later window overwrites the
// previous window key.
func (s *Store) Commit(identity, windowKey string) {
	s.entries[identity] = windowKey
}

// Len returns the number of recorded identities.
func (s *Store) Len() int {
	return len(s.entries)
}

// Flush persists the state atomically: write to a temp file in the same
// directory, then rename over the target. A crash mid-flush leaves the
// previous state intact, never a truncated file.
func (s *Store) Flush() error {
	data, err := json.MarshalIndent(s.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal dedup state: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp state file: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write temp state file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to close temp state file: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to replace state file: %w", err)
	}
	return nil
}
