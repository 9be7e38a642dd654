// Package tui provides the logpost dashboard.
package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/xolan/logpost/internal/service"
	"github.com/xolan/logpost/internal/tui/ui"
	"github.com/xolan/logpost/internal/tui/views"
)

// Tab represents a view tab
type Tab int

const (
	TabLog Tab = iota
	TabPreview
	TabConfig
)

var tabNames = []string{"Log", "Preview", "Config"}

// Model is the root TUI model
type Model struct {
	services *service.Services

	// UI state
	activeTab Tab
	width     int
	height    int
	showHelp  bool

	// View models
	entriesView views.EntriesModel
	previewView views.PreviewModel
	configView  views.ConfigModel

	themeProvider *ui.ThemeProvider
	styles        ui.Styles
	keys          ui.KeyMap
}

// New creates the dashboard model. poster runs the rollup for the "post
// summary" action and the preview tab; it is usually services.Rollup.
func New(services *service.Services, poster views.Poster) Model {
	themeProvider := ui.NewThemeProvider(services.Config.Get().Theme)
	styles := themeProvider.Styles()
	keys := ui.DefaultKeyMap()

	return Model{
		services:      services,
		activeTab:     TabLog,
		themeProvider: themeProvider,
		styles:        styles,
		keys:          keys,
		entriesView:   views.NewEntriesModel(services, poster, styles, keys),
		previewView:   views.NewPreviewModel(poster, styles, keys),
		configView:    views.NewConfigModel(services, themeProvider, styles, keys),
	}
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return m.entriesView.Init()
}

// Update implements tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		// The log form captures every key; a running post blocks tab
		// switches so its result is not missed.
		inputMode := m.entriesView.IsInputMode()
		locked := inputMode || m.entriesView.IsBusy()

		switch {
		case key.Matches(msg, m.keys.Quit) && !inputMode:
			return m, tea.Quit

		case key.Matches(msg, m.keys.Help) && !inputMode:
			m.showHelp = !m.showHelp
			return m, nil

		case key.Matches(msg, m.keys.NextTab) && !locked:
			return m.switchTab(Tab((int(m.activeTab) + 1) % len(tabNames)))

		case key.Matches(msg, m.keys.PrevTab) && !locked:
			return m.switchTab(Tab((int(m.activeTab) - 1 + len(tabNames)) % len(tabNames)))

		case key.Matches(msg, m.keys.Tab1) && !locked:
			return m.switchTab(TabLog)

		case key.Matches(msg, m.keys.Tab2) && !locked:
			return m.switchTab(TabPreview)

		case key.Matches(msg, m.keys.Tab3) && !locked:
			return m.switchTab(TabConfig)
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		contentHeight := m.height - 4 // tabs and status bar
		m.entriesView.SetSize(m.width, contentHeight)
		m.previewView.SetSize(m.width, contentHeight)
		m.configView.SetSize(m.width, contentHeight)
		return m, nil

	case ui.ThemeChangeRequestMsg:
		m.themeProvider.SetTheme(msg.ThemeName)
		newTheme := m.themeProvider.CurrentName()
		m.styles = m.themeProvider.Styles()

		themeMsg := ui.ThemeChangedMsg{ThemeName: newTheme, Styles: m.styles}
		m.entriesView, _ = m.entriesView.Update(themeMsg)
		m.previewView, _ = m.previewView.Update(themeMsg)
		m.configView, _ = m.configView.Update(themeMsg)
		return m, m.saveThemeConfig(newTheme)

	case ui.StoreChangedMsg:
		// every view that shows store content hears about writes
		var cmd tea.Cmd
		m.entriesView, cmd = m.entriesView.Update(msg)
		cmds = append(cmds, cmd)
		m.previewView, cmd = m.previewView.Update(msg)
		cmds = append(cmds, cmd)
		return m, tea.Batch(cmds...)
	}

	// Results of commands started by a view go back to that view even
	// after the user switched tabs.
	var cmd tea.Cmd
	if _, isKey := msg.(tea.KeyMsg); isKey {
		switch m.activeTab {
		case TabLog:
			m.entriesView, cmd = m.entriesView.Update(msg)
		case TabPreview:
			m.previewView, cmd = m.previewView.Update(msg)
		case TabConfig:
			m.configView, cmd = m.configView.Update(msg)
		}
		return m, cmd
	}

	m.entriesView, cmd = m.entriesView.Update(msg)
	cmds = append(cmds, cmd)
	m.previewView, cmd = m.previewView.Update(msg)
	cmds = append(cmds, cmd)
	m.configView, cmd = m.configView.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m Model) switchTab(tab Tab) (tea.Model, tea.Cmd) {
	m.activeTab = tab
	return m, m.initCurrentView()
}

// View implements tea.Model
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	var b strings.Builder

	b.WriteString(m.renderTabs())
	b.WriteString("\n")

	switch m.activeTab {
	case TabLog:
		b.WriteString(m.entriesView.View())
	case TabPreview:
		b.WriteString(m.previewView.View())
	case TabConfig:
		b.WriteString(m.configView.View())
	}

	b.WriteString("\n")
	b.WriteString(m.renderStatusBar())

	if m.showHelp {
		return m.renderHelpOverlay()
	}

	return m.styles.App.Render(b.String())
}

// renderTabs renders the tab bar
func (m Model) renderTabs() string {
	var tabs []string
	for i, name := range tabNames {
		if Tab(i) == m.activeTab {
			tabs = append(tabs, m.styles.TabActive.Render(name))
		} else {
			tabs = append(tabs, m.styles.TabInactive.Render(name))
		}
	}
	return m.styles.TabBar.Render(lipgloss.JoinHorizontal(lipgloss.Top, tabs...))
}

// renderStatusBar renders the status bar at the bottom
func (m Model) renderStatusBar() string {
	var parts []string

	if m.entriesView.IsInputMode() {
		parts = append(parts, m.renderKeyHelp("Tab", "switch field"))
		parts = append(parts, m.renderKeyHelp("Enter", "log"))
		parts = append(parts, m.renderKeyHelp("Esc", "cancel"))
	} else {
		switch m.activeTab {
		case TabLog:
			parts = append(parts, m.renderKeyHelp("n", "log task"))
			parts = append(parts, m.renderKeyHelp("p", "post summary"))
			parts = append(parts, m.renderKeyHelp("r", "refresh"))
		case TabPreview:
			parts = append(parts, m.renderKeyHelp("r", "recompose"))
		case TabConfig:
			parts = append(parts, m.renderKeyHelp("t", "themes"))
			parts = append(parts, m.renderKeyHelp("r", "re-check"))
		}

		parts = append(parts, m.renderKeyHelp("1-3", "views"))
		parts = append(parts, m.renderKeyHelp("?", "help"))
		parts = append(parts, m.renderKeyHelp("q", "quit"))
	}

	content := strings.Join(parts, "  ")
	if padding := m.width - lipgloss.Width(content); padding > 0 {
		content += strings.Repeat(" ", padding)
	}
	return m.styles.StatusBar.Render(content)
}

// renderKeyHelp renders a single key help item
func (m Model) renderKeyHelp(key, desc string) string {
	return fmt.Sprintf("%s %s",
		m.styles.StatusKey.Render(key),
		m.styles.StatusHelp.Render(desc))
}

// initCurrentView initializes the current view when switching tabs
func (m Model) initCurrentView() tea.Cmd {
	switch m.activeTab {
	case TabLog:
		return m.entriesView.Init()
	case TabPreview:
		return m.previewView.Init()
	case TabConfig:
		return m.configView.Init()
	}
	return nil
}

// saveThemeConfig persists the selected theme
func (m Model) saveThemeConfig(themeName string) tea.Cmd {
	return func() tea.Msg {
		cfg := m.services.Config.Get()
		cfg.Theme = themeName
		_ = m.services.Config.Update(cfg)
		return nil
	}
}

// renderHelpOverlay renders the keyboard shortcuts for the active view
func (m Model) renderHelpOverlay() string {
	var help strings.Builder

	help.WriteString(m.styles.ViewTitle.Render("Keyboard Shortcuts"))
	help.WriteString("\n\n")

	help.WriteString(m.styles.Label.Render("Global:"))
	help.WriteString("\n")
	help.WriteString("  Tab/1-3    Switch views\n")
	help.WriteString("  ?          Toggle help\n")
	help.WriteString("  q          Quit\n")
	help.WriteString("\n")

	switch m.activeTab {
	case TabLog:
		help.WriteString(m.styles.Label.Render("Log:"))
		help.WriteString("\n")
		help.WriteString("  n          Log a task\n")
		help.WriteString("  p          Post today's summary\n")
		help.WriteString("  j/k        Navigate up/down\n")
		help.WriteString("  r          Refresh\n")
	case TabPreview:
		help.WriteString(m.styles.Label.Render("Preview:"))
		help.WriteString("\n")
		help.WriteString("  r          Compose again\n")
	case TabConfig:
		help.WriteString(m.styles.Label.Render("Config:"))
		help.WriteString("\n")
		help.WriteString("  t/Enter    Open theme selector\n")
		help.WriteString("  j/k        Navigate themes\n")
		help.WriteString("  r          Check configuration again\n")
		help.WriteString("  Esc        Cancel\n")
	}

	help.WriteString("\n")
	help.WriteString(m.styles.Label.Render("Press ? to close"))

	return m.styles.App.Render(m.styles.Dialog.Render(help.String()))
}

// Run starts the dashboard and refreshes it whenever the task store changes.
func Run(ctx context.Context, services *service.Services, logger *slog.Logger) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(New(services, services.Rollup), tea.WithAltScreen(), tea.WithContext(ctx))

	stop, err := WatchStore(ctx, services.Entry.StorePath(), func() { p.Send(ui.StoreChangedMsg{}) }, logger)
	if err != nil {
		// the dashboard still works, it just doesn't live-refresh
		logger.Warn("store watcher unavailable", "error", err)
	} else {
		defer stop()
	}

	_, err = p.Run()
	return err
}
