package views

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/xolan/logpost/internal/rollup"
	"github.com/xolan/logpost/internal/tui/ui"
)

// PreviewModel shows the post today's rollup would publish, without
// publishing it.
type PreviewModel struct {
	poster Poster
	styles ui.Styles
	keys   ui.KeyMap

	width   int
	height  int
	report  *rollup.Report
	err     error
	loading bool
	stale   bool
	spinner spinner.Model
}

// NewPreviewModel creates a new preview view model
func NewPreviewModel(poster Poster, styles ui.Styles, keys ui.KeyMap) PreviewModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.Spinner

	return PreviewModel{
		poster:  poster,
		styles:  styles,
		keys:    keys,
		loading: true,
		spinner: sp,
	}
}

// previewLoadedMsg is sent when a dry run finishes
type previewLoadedMsg struct {
	report *rollup.Report
	err    error
}

// Init implements tea.Model
func (m PreviewModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.load())
}

// Update implements tea.Model
func (m PreviewModel) Update(msg tea.Msg) (PreviewModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Refresh) && !m.loading {
			m.loading = true
			return m, tea.Batch(m.spinner.Tick, m.load())
		}

	case previewLoadedMsg:
		m.loading = false
		m.stale = false
		m.report = msg.report
		m.err = msg.err
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case ui.StoreChangedMsg:
		if m.report != nil {
			m.stale = true
		}
		return m, nil

	case ui.ThemeChangedMsg:
		m.styles = msg.Styles
		m.spinner.Style = msg.Styles.Spinner
		return m, nil
	}

	return m, nil
}

// View implements tea.Model
func (m PreviewModel) View() string {
	var b strings.Builder

	b.WriteString(m.styles.ViewTitle.Render("Today's summary"))
	b.WriteString("\n")

	if m.loading {
		b.WriteString(m.spinner.View() + " Composing...")
		return b.String()
	}
	if m.err != nil {
		b.WriteString(m.styles.Error.Render(fmt.Sprintf("Error: %v", m.err)))
		return b.String()
	}
	if m.report == nil {
		b.WriteString(m.styles.Label.Render("Press 'r' to compose a preview"))
		return b.String()
	}
	if m.report.State == rollup.StateSkipped {
		b.WriteString(m.styles.Label.Render("No entries for today, nothing would be posted"))
		return b.String()
	}

	b.WriteString(m.styles.PostText.Render(m.report.Text))
	b.WriteString("\n\n")

	length := utf8.RuneCountInString(m.report.Text)
	b.WriteString(m.renderLine("Length:", m.styles.Counter.Render(fmt.Sprintf("%d/%d", length, rollup.MaxLength))))
	b.WriteString(m.renderLine("Source:", string(m.report.Composed.Source)))
	b.WriteString(m.renderLine("Entries:", fmt.Sprintf("%d", len(m.report.Entries))))
	if m.report.Truncated {
		b.WriteString(m.styles.Warning.Render("Composed text was truncated to fit"))
		b.WriteString("\n")
	}
	if m.report.Composed.Err != nil {
		b.WriteString(m.styles.Warning.Render("Generation unavailable: " + m.report.Composed.Err.Error()))
		b.WriteString("\n")
	}
	if m.stale {
		b.WriteString(m.styles.Warning.Render("Tasks changed since this preview, press 'r' to refresh"))
		b.WriteString("\n")
	}
	return b.String()
}

func (m PreviewModel) renderLine(label, value string) string {
	return m.styles.Label.Render(label) + " " + m.styles.Value.Render(value) + "\n"
}

// SetSize sets the view dimensions
func (m *PreviewModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// load creates a command that composes without publishing
func (m PreviewModel) load() tea.Cmd {
	return func() tea.Msg {
		if m.poster == nil {
			return previewLoadedMsg{err: errors.New("posting is not available")}
		}
		report, err := m.poster.Preview(context.Background())
		return previewLoadedMsg{report: report, err: err}
	}
}
