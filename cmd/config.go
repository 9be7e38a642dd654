package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/xolan/logpost/internal/config"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Display or manage configuration settings",
	Long: `Display the current effective configuration settings for logpost.

Shows where every file is read from, whether the settings file exists, and
all current settings. Values missing from config.toml use sensible defaults:
  - timezone: Local (system timezone)
  - schedule.at: 23:50
  - log.level: info

Posting credentials (posting.json) and text-generation settings
(generation.json) live next to config.toml unless config.toml points
elsewhere. The generation API key can also be supplied through the
LOGPOST_GEMMA_API_KEY environment variable or a .env file.

Examples:
  logpost config           Show all current settings
  logpost config init      Write sample files for everything missing
  logpost config check     Validate every configuration file

The directory is $LOGPOST_HOME when set, otherwise:
  ~/.config/logpost                  Linux
  ~/Library/Application Support/logpost  macOS
  %APPDATA%\logpost                  Windows`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		showConfig()
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write sample configuration files",
	Long: `Write sample config.toml, posting.json and generation.json files.

Files that already exist are never overwritten. Edit the written files to
add your credentials, then run 'logpost config check'.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		initConfig()
	},
}

var configCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate every configuration file",
	Long: `Load and validate the settings, posting credentials and text-generation
settings, reporting PASS or FAIL for each. Exits with status 1 when any check fails.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		checkConfig()
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configCheckCmd)
}

// showConfig displays the current effective configuration
func showConfig() {
	services := loadServices()
	if services == nil {
		return
	}
	cfg := services.Config.Get()
	paths := services.Config.Paths()

	_, _ = fmt.Fprintln(deps.Stdout, "Configuration for logpost")
	_, _ = fmt.Fprintln(deps.Stdout, strings.Repeat("=", 60))
	_, _ = fmt.Fprintln(deps.Stdout)

	_, _ = fmt.Fprintf(deps.Stdout, "Config file:     %s\n", paths.Config)
	if services.Config.Exists() {
		_, _ = fmt.Fprintln(deps.Stdout, "Status:          File exists (using custom configuration)")
	} else {
		_, _ = fmt.Fprintln(deps.Stdout, "Status:          No config file (using defaults)")
	}
	_, _ = fmt.Fprintf(deps.Stdout, "Task store:      %s\n", paths.Store)
	_, _ = fmt.Fprintf(deps.Stdout, "Posting:         %s\n", paths.Posting)
	_, _ = fmt.Fprintf(deps.Stdout, "Generation:      %s\n", paths.Generation)
	_, _ = fmt.Fprintln(deps.Stdout)

	_, _ = fmt.Fprintln(deps.Stdout, "Current Settings:")
	_, _ = fmt.Fprintln(deps.Stdout, strings.Repeat("-", 60))
	_, _ = fmt.Fprintf(deps.Stdout, "Timezone:        %s\n", cfg.Timezone)
	_, _ = fmt.Fprintf(deps.Stdout, "Daily post at:   %s\n", cfg.Schedule.At)
	_, _ = fmt.Fprintf(deps.Stdout, "Catch up:        %t\n", cfg.Schedule.CatchUp)
	_, _ = fmt.Fprintf(deps.Stdout, "Theme:           %s\n", cfg.Theme)
	_, _ = fmt.Fprintf(deps.Stdout, "Log:             %s (%s)\n", cfg.Log.Level, cfg.Log.Format)
	if cfg.HTTP.Timeout == 0 {
		_, _ = fmt.Fprintln(deps.Stdout, "HTTP timeout:    (none)")
	} else {
		_, _ = fmt.Fprintf(deps.Stdout, "HTTP timeout:    %s\n", cfg.HTTP.Timeout)
	}
	_, _ = fmt.Fprintln(deps.Stdout)

	if !services.Config.Exists() {
		_, _ = fmt.Fprintln(deps.Stdout, "Tip: Run 'logpost config init' to write sample files you can edit.")
		_, _ = fmt.Fprintln(deps.Stdout)
	}
}

// initConfig writes sample files for every missing configuration file
func initConfig() {
	services := loadServices()
	if services == nil {
		return
	}

	created, err := services.Config.Init()
	if err != nil {
		fail("Failed to write sample configuration", err,
			fmt.Sprintf("Check that the directory is writable: %s", services.Config.Paths().Dir))
		return
	}

	if len(created) == 0 {
		_, _ = fmt.Fprintln(deps.Stdout, "All configuration files already exist; nothing was written")
		return
	}
	_, _ = fmt.Fprintln(deps.Stdout, "Created:")
	for _, path := range created {
		_, _ = fmt.Fprintf(deps.Stdout, "  %s\n", path)
	}
	_, _ = fmt.Fprintln(deps.Stdout)
	_, _ = fmt.Fprintf(deps.Stdout, "Next: add your credentials to %s\n", config.PostingFile)
	_, _ = fmt.Fprintln(deps.Stdout, "      then run 'logpost config check'")
}

// checkConfig validates each configuration file and reports PASS or FAIL
func checkConfig() {
	services := loadServices()
	if services == nil {
		return
	}

	results := services.Config.Check()
	failed := 0
	for _, r := range results {
		status := "PASS"
		if !r.OK {
			status = "FAIL"
			failed++
		}
		_, _ = fmt.Fprintf(deps.Stdout, "%s  %-20s %s\n", status, r.Name, r.Detail)
		_, _ = fmt.Fprintf(deps.Stdout, "      %-20s %s\n", "", r.Path)
	}
	_, _ = fmt.Fprintln(deps.Stdout)

	if failed > 0 {
		fail(fmt.Sprintf("%d of %d checks failed", failed, len(results)), nil,
			"Run 'logpost config init' to write missing files, then fill in the placeholders")
		return
	}
	_, _ = fmt.Fprintln(deps.Stdout, "All checks passed. 'logpost post --dry-run' shows today's summary.")
}
