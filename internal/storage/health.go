package storage

import (
	"os"

	"github.com/xolan/logpost/internal/entry"
)

// StorageHealth summarises the state of the store file.
type StorageHealth struct {
	Exists           bool
	Size             int64
	ValidEntries     int
	CorruptedEntries int
	Warnings         []ParseWarning
	// MalformedDates are entries that load but can never be selected for a day
	MalformedDates []entry.Entry
	// LockHeld is true when another process currently holds the write lock
	LockHeld bool
	Backups  []BackupInfo
}

// Healthy reports whether nothing in the store needs attention.
func (h StorageHealth) Healthy() bool {
	return h.CorruptedEntries == 0 && len(h.MalformedDates) == 0
}

// Validate inspects the store without modifying it.
// A missing file is reported as healthy and empty.
func (s *Store) Validate() (StorageHealth, error) {
	health := StorageHealth{
		Warnings:       []ParseWarning{},
		MalformedDates: []entry.Entry{},
	}

	info, err := os.Stat(s.path)
	switch {
	case err == nil:
		health.Exists = true
		health.Size = info.Size()
	case os.IsNotExist(err):
		return health, nil
	default:
		return health, err
	}

	s.mu.Lock()
	locked, err := s.lock.TryLock()
	if err != nil {
		s.mu.Unlock()
		return health, err
	}
	health.LockHeld = !locked
	result, err := readFile(s.path)
	if locked {
		_ = s.lock.Unlock()
	}
	s.mu.Unlock()
	if err != nil {
		return health, err
	}

	health.ValidEntries = len(result.Entries)
	health.CorruptedEntries = len(result.Warnings)
	health.Warnings = result.Warnings
	if bad := entry.Malformed(result.Entries); bad != nil {
		health.MalformedDates = bad
	}

	health.Backups, err = ListBackups(s.path)
	if err != nil {
		return health, err
	}
	return health, nil
}
