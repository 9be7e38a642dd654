package views

import (
	"context"
	"fmt"
	"strings"

	"github.com/xolan/logpost/internal/entry"
	"github.com/xolan/logpost/internal/rollup"
	"github.com/xolan/logpost/internal/tui/ui"
)

// Poster runs the daily rollup on behalf of the dashboard
type Poster interface {
	Run(ctx context.Context) (*rollup.Report, error)
	Preview(ctx context.Context) (*rollup.Report, error)
}

// EntryRenderOptions configures how entries are rendered
type EntryRenderOptions struct {
	ShowDate bool // Show date in addition to time
	Width    int  // Available width for rendering
	Cursor   int  // Currently selected entry index (-1 for none)
}

// RenderEntryList renders entries as aligned date, time and description
// columns, with notes on an indented second line.
func RenderEntryList(entries []entry.Entry, styles ui.Styles, opts EntryRenderOptions) string {
	if len(entries) == 0 {
		return ""
	}

	maxDesc := opts.Width - 20
	if opts.ShowDate {
		maxDesc -= 11
	}
	maxDesc = max(maxDesc, 20)

	var b strings.Builder
	for i, e := range entries {
		style := styles.EntryNormal
		if i == opts.Cursor {
			style = styles.EntrySelected
		}

		var cols []string
		if opts.ShowDate {
			date := e.Date
			if !entry.ValidDate(date) {
				date = "??????????"
			}
			cols = append(cols, styles.EntryDate.Render(fmt.Sprintf("%-10s", date)))
		}
		cols = append(cols,
			styles.EntryTime.Render(fmt.Sprintf("%-5s", e.ClockTime())),
			styles.EntryDesc.Render(ellipsize(e.Description, maxDesc)),
		)
		b.WriteString(style.Render(strings.Join(cols, " ")))
		b.WriteString("\n")

		if e.Notes != "" {
			indent := 6
			if opts.ShowDate {
				indent += 11
			}
			b.WriteString(strings.Repeat(" ", indent))
			b.WriteString(styles.EntryNotes.Render(ellipsize(e.Notes, maxDesc)))
			b.WriteString("\n")
		}
	}
	return b.String()
}

// ellipsize shortens s to at most n characters, marking the cut with "…"
func ellipsize(s string, n int) string {
	r := []rune(s)
	if len(r) <= n || n < 1 {
		return s
	}
	return string(r[:n-1]) + "…"
}

func pluralize(word string, count int) string {
	if count == 1 {
		return word
	}
	return word + "s"
}

// describeReport summarises a finished rollup in one line
func describeReport(report *rollup.Report, err error) string {
	if report == nil {
		if err != nil {
			return "Post failed: " + err.Error()
		}
		return ""
	}

	switch report.State {
	case rollup.StateCleared:
		return fmt.Sprintf("Posted %s, %d %s cleared", report.PostID, report.Cleared, pluralize("entry", report.Cleared))
	case rollup.StateSkipped:
		return "No entries for today, nothing to post"
	case rollup.StatePreviewed:
		return fmt.Sprintf("Preview ready (%d %s)", len(report.Entries), pluralize("entry", len(report.Entries)))
	}
	if err != nil {
		return fmt.Sprintf("Post %s: %v", report.State, err)
	}
	return "Post " + string(report.State)
}

// renderPickList renders at most size items starting at offset. The cursor
// row is marked and current is tagged; hidden rows are counted above and below.
func renderPickList(styles ui.Styles, items []string, cursor, offset, size int, current string) string {
	end := min(offset+size, len(items))

	var b strings.Builder
	if offset > 0 {
		b.WriteString(styles.Label.Render(fmt.Sprintf("  ↑ %d more", offset)) + "\n")
	}
	for i := offset; i < end; i++ {
		line, style := "  "+items[i], styles.Value
		if i == cursor {
			line, style = "▸ "+items[i], styles.EntrySelected
		}
		if items[i] == current {
			line += " (current)"
		}
		b.WriteString(style.Render(line) + "\n")
	}
	if hidden := len(items) - end; hidden > 0 {
		b.WriteString(styles.Label.Render(fmt.Sprintf("  ↓ %d more", hidden)) + "\n")
	}
	return b.String()
}
