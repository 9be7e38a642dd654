package service

import (
	"fmt"
	"time"

	"github.com/xolan/logpost/internal/entry"
	"github.com/xolan/logpost/internal/storage"
)

// ErrEmptyDescription is returned when a description is blank
var ErrEmptyDescription = entry.ErrEmptyDescription

// EntryService records and lists task entries
type EntryService struct {
	store *storage.Store
	now   func() time.Time
}

// NewEntryService creates a new EntryService. now must return times in
// the configured zone; entry dates are taken from it.
func NewEntryService(store *storage.Store, now func() time.Time) *EntryService {
	if now == nil {
		now = time.Now
	}
	return &EntryService{store: store, now: now}
}

// StorePath returns the location of the entry store
func (s *EntryService) StorePath() string {
	return s.store.Path()
}

// Record stamps a new entry with the current time and appends it to the
// store. A blank description is rejected before the store is touched.
func (s *EntryService) Record(description, notes string) (*entry.Entry, error) {
	e, err := entry.New(description, notes, s.now())
	if err != nil {
		return nil, err
	}

	if _, err := s.store.Append(e); err != nil {
		return nil, fmt.Errorf("failed to save entry: %w", err)
	}
	return &e, nil
}

// List returns every stored entry in insertion order
func (s *EntryService) List() (*ListResult, error) {
	result, err := s.load()
	if err != nil {
		return nil, err
	}
	return &ListResult{
		Entries:  result.Entries,
		Warnings: result.Warnings,
		Period:   "all entries",
		Total:    len(result.Entries),
	}, nil
}

// Today returns the entries dated today, as the daily rollup would select them
func (s *EntryService) Today() (*ListResult, error) {
	result, err := s.load()
	if err != nil {
		return nil, err
	}
	now := s.now()
	return &ListResult{
		Entries:  entry.Today(result.Entries, now),
		Warnings: result.Warnings,
		Period:   "today (" + now.Format("Mon, Jan 2, 2006") + ")",
		Total:    len(result.Entries),
	}, nil
}

// Recent returns up to n entries, newest first
func (s *EntryService) Recent(n int) (*ListResult, error) {
	result, err := s.load()
	if err != nil {
		return nil, err
	}

	all := result.Entries
	if n < 0 || n > len(all) {
		n = len(all)
	}
	recent := make([]entry.Entry, 0, n)
	for i := len(all) - 1; i >= len(all)-n; i-- {
		recent = append(recent, all[i])
	}
	return &ListResult{
		Entries:  recent,
		Warnings: result.Warnings,
		Period:   fmt.Sprintf("last %d entries", n),
		Total:    len(all),
	}, nil
}

// Validate reports on the health of the store
func (s *EntryService) Validate() (storage.StorageHealth, error) {
	return s.store.Validate()
}

// ListBackups returns the available store backups, most recent first
func (s *EntryService) ListBackups() ([]storage.BackupInfo, error) {
	return storage.ListBackups(s.store.Path())
}

// RestoreBackup replaces the store with backup n
func (s *EntryService) RestoreBackup(n int) error {
	return s.store.RestoreBackup(n)
}

func (s *EntryService) load() (storage.ReadResult, error) {
	result, err := s.store.Load()
	if err != nil {
		return result, fmt.Errorf("failed to read entries: %w", err)
	}
	return result, nil
}
