package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/xolan/logpost/internal/config"
	"github.com/xolan/logpost/internal/logging"
	"github.com/xolan/logpost/internal/osutil"
	"github.com/xolan/logpost/internal/service"
	"github.com/xolan/logpost/internal/storage"
)

var (
	logLevel  string
	logFormat string
	notesFlag string
)

var rootCmd = &cobra.Command{
	Use:   "logpost",
	Short: "Log tasks during the day and post a daily summary",
	Long: `logpost records short task entries and, once a day, posts a summary of
the day's work and clears the posted entries.

Usage:
  logpost <description>                 Log a new task (e.g., logpost fixed login bug)
  logpost <description> --notes 'text'  Log a task with notes
  logpost                               List today's tasks
  logpost list --all                    List every stored task
  logpost post                          Compose and publish today's summary
  logpost post --dry-run                Show the summary without publishing
  logpost schedule                      Post the summary every day at a fixed time
  logpost tui                           Open the dashboard
  logpost validate                      Check store file health
  logpost restore [n]                   Restore the store from a backup
  logpost config init                   Write sample configuration files

A description that starts with a command name needs '--' in front of it:
  logpost -- validate input form        Log "validate input form"`,
	Args: cobra.ArbitraryArgs,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		loadEnvFiles()
	},
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 {
			listEntries(false)
			return
		}
		createEntry(args, notesFlag)
	},
}

// validateCmd represents the validate command
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check store file health",
	Long: `Validate the task store and report on its health, including unreadable
content, entries whose dates can never be selected and the write lock.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		validateStorage()
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)

	rootCmd.Flags().StringVar(&notesFlag, "notes", "", "Optional notes stored with the task")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn or error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "Log format: text or json")
}

// SetVersionInfo sets the version information for the CLI
func SetVersionInfo(version, commit, date string) {
	rootCmd.Version = version
	rootCmd.SetVersionTemplate(
		"logpost version {{.Version}}\n" +
			"commit: " + commit + "\n" +
			"built: " + date + "\n",
	)
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// loadEnvFiles reads .env from the working directory and then from the
// application directory. Variables already set in the environment win.
func loadEnvFiles() {
	loadEnvFile(".env")
	if dir, err := osutil.AppDir(config.AppName); err == nil {
		loadEnvFile(filepath.Join(dir, ".env"))
	}
}

func loadEnvFile(path string) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return
	}
	if err := godotenv.Load(path); err != nil {
		_, _ = fmt.Fprintf(deps.Stderr, "Warning: Failed to load %s: %v\n", path, err)
	}
}

// fail reports a command error and exits with status 1
func fail(message string, err error, hint string) {
	_, _ = fmt.Fprintf(deps.Stderr, "Error: %s\n", message)
	if err != nil {
		_, _ = fmt.Fprintf(deps.Stderr, "Details: %v\n", err)
	}
	if hint != "" {
		_, _ = fmt.Fprintf(deps.Stderr, "Hint: %s\n", hint)
	}
	deps.Exit(1)
}

// newLogger builds the logger for a command. Flags override the config
// file; level is used when neither the flag nor the caller asks for the
// configured level.
func newLogger(cfg config.Config, level string) *slog.Logger {
	if logLevel != "" {
		level = logLevel
	}
	format := cfg.Log.Format
	if logFormat != "" {
		format = logFormat
	}
	return logging.New(level, format, deps.Stderr)
}

// loadServices resolves the configuration and builds the services used by
// one-shot commands. Returns nil after reporting the error.
func loadServices(opts ...service.Option) *service.Services {
	cfg, paths, err := deps.Paths()
	if err != nil {
		fail("Failed to load configuration", err, "Run 'logpost config' to see where settings are read from")
		return nil
	}
	return buildServices(cfg, paths, newLogger(cfg, "error"), opts...)
}

func buildServices(cfg config.Config, paths config.Paths, logger *slog.Logger, opts ...service.Option) *service.Services {
	all := append([]service.Option{service.WithLogger(logger)}, opts...)
	all = append(all, deps.Options...)
	return service.NewServicesWithPaths(paths, cfg, all...)
}

// createEntry records a new task built from the joined arguments
func createEntry(args []string, notes string) {
	description := strings.Join(args, " ")
	if strings.TrimSpace(description) == "" {
		fail("Description cannot be empty", nil, "Usage: logpost <description> [--notes text]")
		return
	}

	services := loadServices()
	if services == nil {
		return
	}

	e, err := services.Entry.Record(description, notes)
	if err != nil {
		if errors.Is(err, service.ErrEmptyDescription) {
			fail("Description cannot be empty", nil, "Usage: logpost <description> [--notes text]")
			return
		}
		fail("Failed to save task to the store", err,
			fmt.Sprintf("Check that the directory exists and is writable: %s", services.Entry.StorePath()))
		return
	}

	_, _ = fmt.Fprintf(deps.Stdout, "Logged: %s\n", e.Description)
	if e.Notes != "" {
		_, _ = fmt.Fprintf(deps.Stdout, "Notes: %s\n", e.Notes)
	}
	_, _ = fmt.Fprintf(deps.Stdout, "Date: %s\n", e.Date)
	_, _ = fmt.Fprintf(deps.Stdout, "Time: %s\n", e.Timestamp)

	today, err := services.Entry.Today()
	if err != nil {
		_, _ = fmt.Fprintf(deps.Stderr, "Warning: Task saved but today's count is unavailable: %v\n", err)
		return
	}
	printWarnings(today.Warnings)
	_, _ = fmt.Fprintf(deps.Stdout, "\nTasks logged today: %d\n", len(today.Entries))
}

// listEntries prints today's entries, or every stored entry when all is set
func listEntries(all bool) {
	services := loadServices()
	if services == nil {
		return
	}

	var (
		result *service.ListResult
		err    error
	)
	if all {
		result, err = services.Entry.List()
	} else {
		result, err = services.Entry.Today()
	}
	if err != nil {
		fail("Failed to read tasks from the store", err,
			fmt.Sprintf("Check that the file exists and is readable: %s", services.Entry.StorePath()))
		return
	}

	printWarnings(result.Warnings)

	if len(result.Entries) == 0 {
		_, _ = fmt.Fprintf(deps.Stdout, "No tasks found for %s\n", result.Period)
		return
	}

	_, _ = fmt.Fprintf(deps.Stdout, "Tasks for %s:\n", result.Period)
	_, _ = fmt.Fprintln(deps.Stdout, strings.Repeat("-", 50))

	maxIndexWidth := len(fmt.Sprintf("%d", len(result.Entries)))
	for i, e := range result.Entries {
		when := e.ClockTime()
		if all {
			when = e.Date + " " + when
		}
		_, _ = fmt.Fprintf(deps.Stdout, "[%*d] %s  %s\n", maxIndexWidth, i+1, when, e.Description)
		if e.Notes != "" {
			_, _ = fmt.Fprintf(deps.Stdout, "%*s  %s\n", maxIndexWidth+2, "", e.Notes)
		}
	}
	_, _ = fmt.Fprintln(deps.Stdout, strings.Repeat("-", 50))
	_, _ = fmt.Fprintf(deps.Stdout, "Total: %d %s\n", len(result.Entries), pluralize("task", len(result.Entries)))
}

// printWarnings reports skipped store content on stderr
func printWarnings(warnings []storage.ParseWarning) {
	if len(warnings) == 0 {
		return
	}
	_, _ = fmt.Fprintf(deps.Stderr, "Warning: Found %d unreadable part(s) in the store file:\n", len(warnings))
	for _, w := range warnings {
		_, _ = fmt.Fprintln(deps.Stderr, formatParseWarning(w))
	}
	_, _ = fmt.Fprintln(deps.Stderr, "Hint: A backup is written before the store is next replaced; see 'logpost restore'")
	_, _ = fmt.Fprintln(deps.Stderr)
}

// formatParseWarning formats a ParseWarning with truncated content (max 50 chars)
func formatParseWarning(w storage.ParseWarning) string {
	content := w.Content
	if r := []rune(content); len(r) > 50 {
		content = string(r[:47]) + "..."
	}
	if w.Index < 0 {
		return fmt.Sprintf("  Whole file: %s (error: %s)", content, w.Error)
	}
	return fmt.Sprintf("  Entry %d: %s (error: %s)", w.Index+1, content, w.Error)
}

// validateStorage checks the store file health and reports status
func validateStorage() {
	services := loadServices()
	if services == nil {
		return
	}
	storePath := services.Entry.StorePath()

	health, err := services.Entry.Validate()
	if err != nil {
		fail("Failed to validate the store", err, "")
		return
	}

	_, _ = fmt.Fprintf(deps.Stdout, "Store file: %s\n", storePath)
	_, _ = fmt.Fprintln(deps.Stdout, strings.Repeat("=", 50))

	if !health.Exists {
		_, _ = fmt.Fprintln(deps.Stdout, "Store file does not exist yet (no tasks logged)")
		_, _ = fmt.Fprintln(deps.Stdout, strings.Repeat("=", 50))
		_, _ = fmt.Fprintln(deps.Stdout, "Status: ✓ Store file is healthy")
		return
	}

	_, _ = fmt.Fprintf(deps.Stdout, "Size:              %d bytes\n", health.Size)
	_, _ = fmt.Fprintf(deps.Stdout, "Valid entries:     %d\n", health.ValidEntries)
	_, _ = fmt.Fprintf(deps.Stdout, "Corrupted entries: %d\n", health.CorruptedEntries)
	_, _ = fmt.Fprintf(deps.Stdout, "Malformed dates:   %d\n", len(health.MalformedDates))
	_, _ = fmt.Fprintf(deps.Stdout, "Backups:           %d\n", len(health.Backups))
	if health.LockHeld {
		_, _ = fmt.Fprintln(deps.Stdout, "Lock:              held by another process")
	} else {
		_, _ = fmt.Fprintln(deps.Stdout, "Lock:              free")
	}

	if len(health.Warnings) > 0 {
		_, _ = fmt.Fprintln(deps.Stdout, strings.Repeat("=", 50))
		_, _ = fmt.Fprintln(deps.Stdout, "Unreadable content:")
		for _, w := range health.Warnings {
			_, _ = fmt.Fprintln(deps.Stdout, formatParseWarning(w))
		}
	}

	if len(health.MalformedDates) > 0 {
		_, _ = fmt.Fprintln(deps.Stdout, strings.Repeat("=", 50))
		_, _ = fmt.Fprintln(deps.Stdout, "Entries that will never be posted (date is not YYYY-MM-DD):")
		for _, e := range health.MalformedDates {
			_, _ = fmt.Fprintf(deps.Stdout, "  %q  %s\n", e.Date, e.Description)
		}
	}

	_, _ = fmt.Fprintln(deps.Stdout, strings.Repeat("=", 50))
	if health.Healthy() {
		_, _ = fmt.Fprintln(deps.Stdout, "Status: ✓ Store file is healthy")
		return
	}
	_, _ = fmt.Fprintf(deps.Stderr, "Status: ⚠ Store file has %d corrupted %s and %d malformed %s\n",
		health.CorruptedEntries, pluralize("entry", health.CorruptedEntries),
		len(health.MalformedDates), pluralize("date", len(health.MalformedDates)))
}

// pluralize returns the singular or plural form of a word
func pluralize(word string, count int) string {
	if count == 1 {
		return word
	}
	if strings.HasSuffix(word, "y") {
		return strings.TrimSuffix(word, "y") + "ies"
	}
	return word + "s"
}
