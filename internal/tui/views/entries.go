package views

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/xolan/logpost/internal/entry"
	"github.com/xolan/logpost/internal/rollup"
	"github.com/xolan/logpost/internal/service"
	"github.com/xolan/logpost/internal/storage"
	"github.com/xolan/logpost/internal/tui/ui"
)

// RecentLimit is how many entries the log view lists
const RecentLimit = 10

// entryMode represents the current mode of the entries view
type entryMode int

const (
	entryModeNormal entryMode = iota
	entryModeAdd
	entryModePosting
)

// EntriesModel logs new tasks, lists the most recent ones and posts the
// daily summary.
type EntriesModel struct {
	services *service.Services
	poster   Poster
	styles   ui.Styles
	keys     ui.KeyMap

	// UI state
	width    int
	height   int
	cursor   int
	entries  []entry.Entry
	today    int
	total    int
	warnings []storage.ParseWarning
	loading  bool
	err      error
	status   string
	failed   bool

	// Input mode state
	mode         entryMode
	descInput    textinput.Model
	notesInput   textinput.Model
	focusedInput int // 0 = description, 1 = notes

	spinner spinner.Model
}

// NewEntriesModel creates a new entries view model
func NewEntriesModel(services *service.Services, poster Poster, styles ui.Styles, keys ui.KeyMap) EntriesModel {
	descInput := textinput.New()
	descInput.Placeholder = "What did you get done?"
	descInput.CharLimit = 200
	descInput.Width = 50

	notesInput := textinput.New()
	notesInput.Placeholder = "Notes (optional)"
	notesInput.CharLimit = 200
	notesInput.Width = 50

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.Spinner

	return EntriesModel{
		services:   services,
		poster:     poster,
		styles:     styles,
		keys:       keys,
		loading:    true,
		descInput:  descInput,
		notesInput: notesInput,
		spinner:    sp,
	}
}

// entriesLoadedMsg is sent when entries are loaded
type entriesLoadedMsg struct {
	entries  []entry.Entry
	today    int
	total    int
	warnings []storage.ParseWarning
	err      error
}

// entryRecordedMsg is sent after a task was logged
type entryRecordedMsg struct {
	entry *entry.Entry
	err   error
}

// postFinishedMsg is sent when a rollup started from the dashboard ends
type postFinishedMsg struct {
	report *rollup.Report
	err    error
}

// Init implements tea.Model
func (m EntriesModel) Init() tea.Cmd {
	return m.loadEntries()
}

// Update implements tea.Model
func (m EntriesModel) Update(msg tea.Msg) (EntriesModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch m.mode {
		case entryModeAdd:
			return m.handleInputMode(msg)
		case entryModePosting:
			// ignore keys until the post finishes
			return m, nil
		}

		switch {
		case key.Matches(msg, m.keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
			return m, nil
		case key.Matches(msg, m.keys.Down):
			if m.cursor < len(m.entries)-1 {
				m.cursor++
			}
			return m, nil
		case key.Matches(msg, m.keys.Refresh):
			return m, m.loadEntries()
		case key.Matches(msg, m.keys.New):
			m.mode = entryModeAdd
			m.descInput.SetValue("")
			m.notesInput.SetValue("")
			m.focusedInput = 0
			m.notesInput.Blur()
			m.descInput.Focus()
			return m, textinput.Blink
		case key.Matches(msg, m.keys.Post):
			m.mode = entryModePosting
			m.status = ""
			return m, tea.Batch(m.spinner.Tick, m.post())
		}

	case entriesLoadedMsg:
		m.loading = false
		m.err = msg.err
		if msg.err == nil {
			m.entries = msg.entries
			m.today = msg.today
			m.total = msg.total
			m.warnings = msg.warnings
			if m.cursor >= len(m.entries) {
				m.cursor = max(0, len(m.entries)-1)
			}
		}
		return m, nil

	case entryRecordedMsg:
		m.mode = entryModeNormal
		if msg.err != nil {
			m.status, m.failed = "Not logged: "+msg.err.Error(), true
			return m, nil
		}
		m.status, m.failed = fmt.Sprintf("Logged %q at %s", msg.entry.Description, msg.entry.ClockTime()), false
		m.cursor = 0
		return m, m.loadEntries()

	case postFinishedMsg:
		m.mode = entryModeNormal
		m.status = describeReport(msg.report, msg.err)
		m.failed = msg.err != nil
		return m, m.loadEntries()

	case spinner.TickMsg:
		if m.mode != entryModePosting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case ui.StoreChangedMsg:
		return m, m.loadEntries()

	case ui.ThemeChangedMsg:
		m.styles = msg.Styles
		m.spinner.Style = msg.Styles.Spinner
		return m, nil
	}

	if m.mode == entryModeAdd {
		return m.updateFocusedInput(msg)
	}
	return m, nil
}

// handleInputMode handles key events while the log form is open
func (m EntriesModel) handleInputMode(msg tea.KeyMsg) (EntriesModel, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Select): // Enter
		if strings.TrimSpace(m.descInput.Value()) == "" {
			m.status, m.failed = "Not logged: "+entry.ErrEmptyDescription.Error(), true
			return m, nil
		}
		m.descInput.Blur()
		m.notesInput.Blur()
		return m, m.record(m.descInput.Value(), m.notesInput.Value())
	case key.Matches(msg, m.keys.Back): // Escape
		m.mode = entryModeNormal
		m.descInput.Blur()
		m.notesInput.Blur()
		return m, nil
	case msg.String() == "tab":
		if m.focusedInput == 0 {
			m.focusedInput = 1
			m.descInput.Blur()
			m.notesInput.Focus()
		} else {
			m.focusedInput = 0
			m.notesInput.Blur()
			m.descInput.Focus()
		}
		return m, textinput.Blink
	}

	return m.updateFocusedInput(msg)
}

func (m EntriesModel) updateFocusedInput(msg tea.Msg) (EntriesModel, tea.Cmd) {
	var cmd tea.Cmd
	if m.focusedInput == 0 {
		m.descInput, cmd = m.descInput.Update(msg)
	} else {
		m.notesInput, cmd = m.notesInput.Update(msg)
	}
	return m, cmd
}

// View implements tea.Model
func (m EntriesModel) View() string {
	var b strings.Builder

	if m.mode == entryModeAdd {
		b.WriteString(m.renderForm())
	} else {
		b.WriteString(m.styles.ViewTitle.Render("Recent tasks"))
		b.WriteString("\n")
		b.WriteString(m.renderList())
	}

	b.WriteString("\n")
	switch {
	case m.mode == entryModePosting:
		b.WriteString(m.spinner.View() + " Posting today's summary...")
	case m.status != "" && m.failed:
		b.WriteString(m.styles.Error.Render(m.status))
	case m.status != "":
		b.WriteString(m.styles.Success.Render(m.status))
	}
	return b.String()
}

func (m EntriesModel) renderList() string {
	var b strings.Builder

	if m.loading {
		b.WriteString("Loading...\n")
		return b.String()
	}
	if m.err != nil {
		b.WriteString(m.styles.Error.Render(fmt.Sprintf("Error: %v", m.err)))
		b.WriteString("\n")
		return b.String()
	}
	for _, w := range m.warnings {
		b.WriteString(m.styles.Warning.Render("Warning: " + w.String()))
		b.WriteString("\n")
	}

	if len(m.entries) == 0 {
		b.WriteString(m.styles.Label.Render("No tasks logged yet"))
		b.WriteString("\n\n")
		b.WriteString(m.styles.Label.Render("Press 'n' to log a task"))
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString(RenderEntryList(m.entries, m.styles, EntryRenderOptions{
		ShowDate: true,
		Width:    m.width,
		Cursor:   m.cursor,
	}))
	b.WriteString(strings.Repeat("─", min(50, max(m.width, 1))))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("Today: %d %s  Stored: %d\n",
		m.today, pluralize("task", m.today), m.total))
	return b.String()
}

// renderForm renders the log form
func (m EntriesModel) renderForm() string {
	var b strings.Builder
	b.WriteString(m.styles.ViewTitle.Render("Log a task"))
	b.WriteString("\n\n")

	descLabel := "Description:"
	if m.focusedInput == 0 {
		descLabel = "▸ Description:"
	}
	b.WriteString(m.styles.Label.Render(descLabel))
	b.WriteString("\n")
	b.WriteString(m.descInput.View())
	b.WriteString("\n\n")

	notesLabel := "Notes:"
	if m.focusedInput == 1 {
		notesLabel = "▸ Notes:"
	}
	b.WriteString(m.styles.Label.Render(notesLabel))
	b.WriteString("\n")
	b.WriteString(m.notesInput.View())
	b.WriteString("\n\n")

	b.WriteString(m.styles.Label.Render("Tab to switch fields, Enter to log, Esc to cancel"))
	b.WriteString("\n")
	return b.String()
}

// SetSize sets the view dimensions
func (m *EntriesModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// IsInputMode returns true when the view is capturing keyboard input
func (m EntriesModel) IsInputMode() bool {
	return m.mode == entryModeAdd
}

// IsBusy returns true while a post is in flight
func (m EntriesModel) IsBusy() bool {
	return m.mode == entryModePosting
}

// loadEntries creates a command to load the recent entries and today's count
func (m EntriesModel) loadEntries() tea.Cmd {
	return func() tea.Msg {
		recent, err := m.services.Entry.Recent(RecentLimit)
		if err != nil {
			return entriesLoadedMsg{err: err}
		}
		today, err := m.services.Entry.Today()
		if err != nil {
			return entriesLoadedMsg{err: err}
		}
		return entriesLoadedMsg{
			entries:  recent.Entries,
			today:    len(today.Entries),
			total:    recent.Total,
			warnings: recent.Warnings,
		}
	}
}

// record creates a command that appends a new entry
func (m EntriesModel) record(description, notes string) tea.Cmd {
	return func() tea.Msg {
		e, err := m.services.Entry.Record(description, notes)
		return entryRecordedMsg{entry: e, err: err}
	}
}

// post creates a command that runs the daily rollup
func (m EntriesModel) post() tea.Cmd {
	return func() tea.Msg {
		if m.poster == nil {
			return postFinishedMsg{err: errors.New("posting is not available")}
		}
		report, err := m.poster.Run(context.Background())
		return postFinishedMsg{report: report, err: err}
	}
}
