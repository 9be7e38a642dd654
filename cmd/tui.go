package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/xolan/logpost/internal/tui"
)

// tuiCmd represents the tui command
var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive dashboard",
	Long: `Launch the interactive terminal dashboard for logpost.

The dashboard logs tasks, previews and posts today's summary, and refreshes
on its own whenever another process changes the task store.

Views available:
  - Log: Record tasks and see the most recent ones
  - Preview: Today's summary as it would be posted
  - Config: Settings, configuration checks and theme

Keyboard shortcuts:
  - Tab/Shift+Tab: Navigate between views
  - 1-3: Jump to specific view
  - n: Log a new task
  - p: Post today's summary
  - ?: Show help
  - q: Quit`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		runTUI(ctx)
	},
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

// runTUI builds the services and runs the dashboard until it exits
func runTUI(ctx context.Context) {
	cfg, paths, err := deps.Paths()
	if err != nil {
		fail("Failed to load configuration", err, "Run 'logpost config' to see where settings are read from")
		return
	}

	// Log lines would corrupt the alternate screen; only errors get through.
	logger := newLogger(cfg, "error")
	services := buildServices(cfg, paths, logger)

	if err := tui.Run(ctx, services, logger); err != nil {
		fail("Failed to run the dashboard", err, "")
	}
}
