// Package storage persists task entries as a single pretty-printed JSON array.
package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/gofrs/flock"

	"github.com/xolan/logpost/internal/entry"
)

// LockSuffix is appended to the store path to name its advisory lock file
const LockSuffix = ".lock"

// ParseWarning describes store content that could not be decoded.
// Index is the position of the offending array element, or -1 when the
// document as a whole is unreadable.
type ParseWarning struct {
	Index   int    // Array position (0-based), -1 for the whole file
	Content string // Raw content of the rejected element or file (truncated)
	Error   string // Description of the parsing error
}

func (w ParseWarning) String() string {
	if w.Index < 0 {
		return fmt.Sprintf("store is unreadable: %s", w.Error)
	}
	return fmt.Sprintf("entry %d skipped: %s", w.Index+1, w.Error)
}

// ReadResult contains the entries decoded from the store together with
// warnings about anything that had to be skipped.
type ReadResult struct {
	Entries  []entry.Entry
	Warnings []ParseWarning
}

// Corrupt reports whether any part of the store was unreadable.
func (r ReadResult) Corrupt() bool {
	return len(r.Warnings) > 0
}

// Store is the on-disk entry list. All read-modify-write cycles hold both
// an in-process mutex and an advisory lock on <path>.lock so separate
// processes sharing the file cannot interleave writes.
type Store struct {
	path string
	mu   sync.Mutex
	lock *flock.Flock
}

// New returns a Store backed by the file at path. The file is created on first write.
func New(path string) *Store {
	return &Store{
		path: path,
		lock: flock.New(path + LockSuffix),
	}
}

// Path returns the store file location.
func (s *Store) Path() string {
	return s.path
}

// Load reads every entry in insertion order.
// A missing or blank file is an empty store. Unreadable content yields the
// entries that could be decoded (possibly none) plus warnings; it is never
// an error.
func (s *Store) Load() (ReadResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureDir(); err != nil {
		return ReadResult{Entries: []entry.Entry{}}, err
	}
	if err := s.lock.RLock(); err != nil {
		return ReadResult{Entries: []entry.Entry{}}, fmt.Errorf("failed to lock store: %w", err)
	}
	defer func() { _ = s.lock.Unlock() }()

	return readFile(s.path)
}

// Append adds e to the end of the store and returns the entries now stored.
func (s *Store) Append(e entry.Entry) ([]entry.Entry, error) {
	var stored []entry.Entry
	err := s.Update(func(entries []entry.Entry) ([]entry.Entry, error) {
		stored = append(entries, e)
		return stored, nil
	})
	return stored, err
}

// RemoveEntries deletes one stored occurrence of each entry in snapshot and
// returns how many were removed. Entries added after the snapshot was taken
// are kept.
func (s *Store) RemoveEntries(snapshot []entry.Entry) (int, error) {
	removed := 0
	err := s.Update(func(entries []entry.Entry) ([]entry.Entry, error) {
		pending := make(map[entry.Entry]int, len(snapshot))
		for _, e := range snapshot {
			pending[e]++
		}

		kept := make([]entry.Entry, 0, len(entries))
		for _, e := range entries {
			if pending[e] > 0 {
				pending[e]--
				removed++
				continue
			}
			kept = append(kept, e)
		}
		return kept, nil
	})
	return removed, err
}

// Update runs fn on the current entries and saves what it returns, all while
// holding the store locks. If the file on disk was corrupt it is backed up
// before being replaced.
func (s *Store) Update(fn func([]entry.Entry) ([]entry.Entry, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureDir(); err != nil {
		return err
	}
	if err := s.lock.Lock(); err != nil {
		return fmt.Errorf("failed to lock store: %w", err)
	}
	defer func() { _ = s.lock.Unlock() }()

	result, err := readFile(s.path)
	if err != nil {
		return err
	}

	updated, err := fn(result.Entries)
	if err != nil {
		return err
	}

	if result.Corrupt() {
		if err := CreateBackup(s.path); err != nil {
			return fmt.Errorf("failed to back up corrupt store: %w", err)
		}
	}
	return writeFile(s.path, updated)
}

func (s *Store) ensureDir() error {
	return os.MkdirAll(filepath.Dir(s.path), 0755)
}

// readFile decodes the store. Elements that do not decode as an entry are
// skipped with a warning so one bad hand edit doesn't hide the rest.
func readFile(path string) (ReadResult, error) {
	result := ReadResult{
		Entries:  []entry.Entry{},
		Warnings: []ParseWarning{},
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return result, nil
		}
		return result, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return result, nil
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		result.Warnings = append(result.Warnings, ParseWarning{
			Index:   -1,
			Content: excerpt(data),
			Error:   err.Error(),
		})
		return result, nil
	}

	for i, item := range raw {
		var e entry.Entry
		if err := json.Unmarshal(item, &e); err != nil {
			result.Warnings = append(result.Warnings, ParseWarning{
				Index:   i,
				Content: excerpt(item),
				Error:   err.Error(),
			})
			continue
		}
		result.Entries = append(result.Entries, e)
	}
	return result, nil
}

// writeFile replaces the store atomically: encode to a temp file in the
// same directory, then rename over the original.
func writeFile(path string, entries []entry.Entry) error {
	if entries == nil {
		entries = []entry.Entry{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(entries); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	return nil
}

func excerpt(b []byte) string {
	const max = 120
	s := string(bytes.TrimSpace(b))
	if len([]rune(s)) > max {
		return string([]rune(s)[:max]) + "..."
	}
	return s
}
