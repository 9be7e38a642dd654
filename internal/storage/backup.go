package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
)

const (
	// BackupSuffix is the file extension for backup files
	BackupSuffix = ".bak"
	// MaxBackupCount is the maximum number of backup files to keep
	MaxBackupCount = 3
)

// ErrBackupNotFound is returned when restoring from a backup slot that is empty
var ErrBackupNotFound = errors.New("backup does not exist")

// GetBackupPath returns the path of backup number n for the store at storePath.
// Backups are named tasks.json.bak.N; lower numbers are more recent.
func GetBackupPath(storePath string, n int) string {
	return fmt.Sprintf("%s%s.%d", storePath, BackupSuffix, n)
}

// rotateBackups shifts existing backups one slot older (.bak.1 -> .bak.2,
// .bak.2 -> .bak.3) and drops the oldest. Missing files are skipped.
func rotateBackups(storePath string) error {
	if err := os.Remove(GetBackupPath(storePath, MaxBackupCount)); err != nil && !os.IsNotExist(err) {
		return err
	}

	for i := MaxBackupCount - 1; i >= 1; i-- {
		if err := os.Rename(GetBackupPath(storePath, i), GetBackupPath(storePath, i+1)); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return nil
}

// CreateBackup copies the store file to .bak.1 after rotating older backups.
// A missing store file is not an error and creates no backup.
func CreateBackup(storePath string) error {
	if _, err := os.Stat(storePath); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	if err := rotateBackups(storePath); err != nil {
		return err
	}
	return copyFile(storePath, GetBackupPath(storePath, 1))
}

// BackupInfo contains information about a backup file
type BackupInfo struct {
	Number int    // The backup number (1 is the most recent)
	Path   string // The full path to the backup file
	Size   int64
}

// ListBackups returns the existing backups of storePath, most recent first.
func ListBackups(storePath string) ([]BackupInfo, error) {
	var backups []BackupInfo
	for i := 1; i <= MaxBackupCount; i++ {
		path := GetBackupPath(storePath, i)
		info, err := os.Stat(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, err
		}
		backups = append(backups, BackupInfo{Number: i, Path: path, Size: info.Size()})
	}
	return backups, nil
}

// RestoreBackup replaces the store with backup n. The current store is
// itself backed up first, so a restore can be undone by restoring .bak.1.
func (s *Store) RestoreBackup(n int) error {
	if n < 1 || n > MaxBackupCount {
		return fmt.Errorf("invalid backup number %d, must be between 1 and %d", n, MaxBackupCount)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureDir(); err != nil {
		return err
	}
	if err := s.lock.Lock(); err != nil {
		return fmt.Errorf("failed to lock store: %w", err)
	}
	defer func() { _ = s.lock.Unlock() }()

	backupPath := GetBackupPath(s.path, n)
	data, err := os.ReadFile(backupPath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrBackupNotFound, backupPath)
		}
		return err
	}

	if err := CreateBackup(s.path); err != nil {
		return err
	}
	// The chosen backup moved one slot down during rotation; data was read before.
	return os.WriteFile(s.path, data, 0644)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
