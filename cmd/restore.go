package cmd

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/xolan/logpost/internal/storage"
)

// restoreCmd represents the restore command
var restoreCmd = &cobra.Command{
	Use:   "restore [backup_number]",
	Short: "Restore the store from a backup file",
	Long: `Restore the task store from a backup.

A backup is written whenever the store is about to be replaced while it
holds unreadable content, and before every restore, so a restore can itself
be undone by restoring backup 1.

By default, restores from the most recent backup (.bak.1).
Optionally specify a backup number to restore from (1-3).

Examples:
  logpost restore       Restore from most recent backup
  logpost restore 2     Restore from backup #2`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		restoreFromBackup(args)
	},
}

func init() {
	rootCmd.AddCommand(restoreCmd)
}

// restoreFromBackup handles the restore command logic
func restoreFromBackup(args []string) {
	backupNum := 1
	if len(args) > 0 {
		num, err := strconv.Atoi(args[0])
		if err != nil {
			fail(fmt.Sprintf("Invalid backup number '%s'", args[0]), nil, "")
			return
		}
		if num < 1 || num > storage.MaxBackupCount {
			fail(fmt.Sprintf("Backup number must be between 1 and %d (got %d)", storage.MaxBackupCount, num), nil, "")
			return
		}
		backupNum = num
	}

	services := loadServices()
	if services == nil {
		return
	}

	backups, err := services.Entry.ListBackups()
	if err != nil {
		fail("Failed to list backups", err, "")
		return
	}

	if len(backups) == 0 {
		_, _ = fmt.Fprintln(deps.Stdout, "No backups available")
		deps.Exit(1)
		return
	}

	_, _ = fmt.Fprintln(deps.Stdout, "Available backups:")
	for _, backup := range backups {
		if backup.Number == 1 {
			_, _ = fmt.Fprintf(deps.Stdout, "  %d: %s (%d bytes, most recent)\n", backup.Number, backup.Path, backup.Size)
		} else {
			_, _ = fmt.Fprintf(deps.Stdout, "  %d: %s (%d bytes)\n", backup.Number, backup.Path, backup.Size)
		}
	}
	_, _ = fmt.Fprintln(deps.Stdout)

	if err := services.Entry.RestoreBackup(backupNum); err != nil {
		if errors.Is(err, storage.ErrBackupNotFound) {
			fail(fmt.Sprintf("Backup %d does not exist", backupNum), nil, "")
			return
		}
		fail("Failed to restore backup", err, "")
		return
	}

	_, _ = fmt.Fprintf(deps.Stdout, "Successfully restored from backup %d\n", backupNum)
}
