package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/xolan/logpost/internal/config"
	"github.com/xolan/logpost/internal/rollup"
)

var (
	postDryRun bool
	postStrict bool
)

// postCmd represents the post command
var postCmd = &cobra.Command{
	Use:   "post",
	Short: "Compose and publish today's summary",
	Long: `Select today's tasks, compose a summary post and publish it.

Once the post is confirmed the posted tasks are removed from the store. When
publishing fails nothing is removed, so the next run can try again.

Exit status:
  0  posted, nothing to post, or publishing failed (without --strict)
  1  configuration missing or invalid, or publishing failed with --strict

Examples:
  logpost post              Publish today's summary
  logpost post --dry-run    Show the summary without publishing or clearing`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		postSummary(cmd.Context(), postDryRun, postStrict)
	},
}

func init() {
	rootCmd.AddCommand(postCmd)
	postCmd.Flags().BoolVarP(&postDryRun, "dry-run", "n", false, "Compose the summary without publishing")
	postCmd.Flags().BoolVar(&postStrict, "strict", false, "Exit with status 1 when publishing fails")
}

// postSummary runs one rollup and prints its progress
func postSummary(ctx context.Context, dryRun, strict bool) {
	if ctx == nil {
		ctx = context.Background()
	}

	services := loadServices()
	if services == nil {
		return
	}

	var (
		report *rollup.Report
		err    error
	)
	if dryRun {
		report, err = services.Rollup.Preview(ctx)
	} else {
		report, err = services.Rollup.Run(ctx)
	}

	printReport(report)

	switch {
	case err == nil:
		return
	case report.State == rollup.StateAborted:
		hint := "Run 'logpost config init' to create sample files, then 'logpost config check'"
		if errors.Is(err, config.ErrConfigInvalid) {
			hint = "Run 'logpost config check' to see which setting is wrong"
		}
		fail("Configuration is not usable", err, hint)
	case strict:
		fail("Failed to publish the summary", err, "Tasks were kept and will be included in the next post")
	default:
		_, _ = fmt.Fprintln(deps.Stderr, "Warning: Failed to publish the summary; tasks were kept for the next run")
		_, _ = fmt.Fprintf(deps.Stderr, "Details: %v\n", err)
	}
}

// printReport writes the human-readable outcome of a run to stdout
func printReport(report *rollup.Report) {
	if report == nil || report.State == rollup.StateAborted {
		return
	}

	printWarnings(report.Warnings)
	if report.Malformed > 0 {
		_, _ = fmt.Fprintf(deps.Stderr, "Warning: %d %s with a malformed date will never be posted (see 'logpost validate')\n",
			report.Malformed, pluralize("task", report.Malformed))
	}

	if report.State == rollup.StateSkipped {
		_, _ = fmt.Fprintln(deps.Stdout, "No tasks logged today, nothing to post")
		return
	}
	if len(report.Entries) == 0 {
		return
	}

	_, _ = fmt.Fprintf(deps.Stdout, "Selected %d %s\n", len(report.Entries), pluralize("task", len(report.Entries)))
	if report.Composed.Err != nil {
		_, _ = fmt.Fprintf(deps.Stderr, "Warning: Text generation unavailable, using the fallback summary (%v)\n", report.Composed.Err)
	}
	if report.Text == "" {
		return
	}

	_, _ = fmt.Fprintf(deps.Stdout, "Summary (%s):\n", report.Composed.Source)
	_, _ = fmt.Fprintln(deps.Stdout, strings.Repeat("-", 50))
	_, _ = fmt.Fprintln(deps.Stdout, report.Text)
	_, _ = fmt.Fprintln(deps.Stdout, strings.Repeat("-", 50))
	length := fmt.Sprintf("Length: %d/%d", utf8.RuneCountInString(report.Text), rollup.MaxLength)
	if report.Truncated {
		length += " (truncated)"
	}
	_, _ = fmt.Fprintln(deps.Stdout, length)

	switch report.State {
	case rollup.StatePreviewed:
		_, _ = fmt.Fprintln(deps.Stdout, "Dry run: nothing was published")
	case rollup.StateCleared:
		_, _ = fmt.Fprintf(deps.Stdout, "Posted: %s\n", report.PostID)
		_, _ = fmt.Fprintf(deps.Stdout, "Cleared %d %s from the store\n", report.Cleared, pluralize("task", report.Cleared))
	}
}
