package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"github.com/ledmatrix/matrixstore/internal/registry"
)

// Item wraps a registry entry with install state and the user's
// pending selection.
type Item struct {
	Entry     registry.Entry
	Installed bool // currently installed
	Enabled   bool // enabled in host config
	Selected  bool // user toggled selection
}

// Action returns what will be performed on this item: "install",
// "uninstall", or "" (no change).
func (it Item) Action() string {
	if it.Installed && !it.Selected {
		return "uninstall"
	}
	if !it.Installed && it.Selected {
		return "install"
	}
	return ""
}

// Result holds the outcome of the TUI selection.
type Result struct {
	ToInstall   []Item
	ToUninstall []Item
	Cancelled   bool
}

// viewMode represents the current view mode
type viewMode int

const (
	modeList viewMode = iota
	modeConfirm
)

// Model is the bubbletea model for the plugin browser
type Model struct {
	items         []Item
	filteredItems []Item
	cursor        int
	width         int
	height        int
	searchInput   textinput.Model
	mode          viewMode
	quitting      bool
	confirmed     bool
}

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205")).
			Padding(0, 1)

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("229")).
			Background(lipgloss.Color("57")).
			Bold(true)

	normalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	installedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("34"))

	toInstallStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	toUninstallStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("196"))

	verifiedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39"))

	previewStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1)

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(lipgloss.Color("205")).
			Padding(1, 2).
			Align(lipgloss.Center)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
)

// NewModel creates a new browser model
func NewModel(items []Item) Model {
	ti := textinput.New()
	ti.Placeholder = "Type to filter..."
	ti.CharLimit = 50
	ti.Width = 30

	return Model{
		items:         items,
		filteredItems: items,
		searchInput:   ti,
		mode:          modeList,
	}
}

// Run runs the browser and returns the user's selection.
func Run(items []Item) (*Result, error) {
	p := tea.NewProgram(NewModel(items), tea.WithAltScreen())

	final, err := p.Run()
	if err != nil {
		return nil, err
	}

	m := final.(Model)
	if !m.confirmed {
		return &Result{Cancelled: true}, nil
	}

	toInstall, toUninstall := m.getChanges()
	return &Result{ToInstall: toInstall, ToUninstall: toUninstall}, nil
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	}

	return m, nil
}

func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.mode == modeConfirm {
		return m.handleConfirmKey(msg)
	}
	return m.handleListKey(msg)
}

func (m Model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		m.quitting = true
		return m, tea.Quit

	case "esc":
		// If search has text, clear it; otherwise quit
		if m.searchInput.Value() != "" {
			m.searchInput.SetValue("")
			m.applyFilter()
			return m, nil
		}
		m.quitting = true
		return m, tea.Quit

	case "up":
		if m.cursor > 0 {
			m.cursor--
		}

	case "down":
		if m.cursor < len(m.filteredItems)-1 {
			m.cursor++
		}

	case "tab":
		if len(m.filteredItems) > 0 {
			idx := m.findOriginalIndex(m.cursor)
			if idx >= 0 {
				m.items[idx].Selected = !m.items[idx].Selected
				m.applyFilter()
			}
		}

	case "enter":
		if m.hasChanges() {
			m.mode = modeConfirm
		}

	case "backspace":
		val := m.searchInput.Value()
		if len(val) > 0 {
			m.searchInput.SetValue(val[:len(val)-1])
			m.applyFilter()
		}

	default:
		// Any other printable character goes to search
		if len(msg.String()) == 1 && msg.String()[0] >= 32 && msg.String()[0] < 127 {
			m.searchInput.SetValue(m.searchInput.Value() + msg.String())
			m.applyFilter()
		}
	}

	return m, nil
}

func (m Model) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y", "enter":
		m.confirmed = true
		m.quitting = true
		return m, tea.Quit

	case "n", "N", "esc", "q":
		m.mode = modeList
		return m, nil
	}
	return m, nil
}

func (m *Model) applyFilter() {
	query := m.searchInput.Value()
	if query == "" {
		m.filteredItems = m.items
		if m.cursor >= len(m.filteredItems) {
			m.cursor = max(0, len(m.filteredItems)-1)
		}
		return
	}

	searchables := make([]string, len(m.items))
	for i, item := range m.items {
		parts := []string{item.Entry.ID, item.Entry.Name, item.Entry.Category}
		if item.Entry.Description != "" {
			parts = append(parts, item.Entry.Description)
		}
		parts = append(parts, item.Entry.Tags...)
		searchables[i] = strings.ToLower(strings.Join(parts, " "))
	}

	matches := fuzzy.Find(strings.ToLower(query), searchables)
	m.filteredItems = make([]Item, len(matches))
	for i, match := range matches {
		m.filteredItems[i] = m.items[match.Index]
	}

	if m.cursor >= len(m.filteredItems) {
		m.cursor = max(0, len(m.filteredItems)-1)
	}
}

func (m Model) findOriginalIndex(filteredIdx int) int {
	if filteredIdx < 0 || filteredIdx >= len(m.filteredItems) {
		return -1
	}
	target := m.filteredItems[filteredIdx]
	for i, item := range m.items {
		if item.Entry.ID == target.Entry.ID {
			return i
		}
	}
	return -1
}

func (m Model) hasChanges() bool {
	for _, item := range m.items {
		if item.Action() != "" {
			return true
		}
	}
	return false
}

func (m Model) getChanges() (toInstall, toUninstall []Item) {
	for _, item := range m.items {
		switch item.Action() {
		case "install":
			toInstall = append(toInstall, item)
		case "uninstall":
			toUninstall = append(toUninstall, item)
		}
	}
	return
}

func (m Model) View() string {
	if m.quitting && !m.confirmed {
		return ""
	}

	if m.mode == modeConfirm {
		return m.renderConfirmModal()
	}

	return m.renderListView()
}

func (m Model) renderListView() string {
	var b strings.Builder

	header := titleStyle.Render(fmt.Sprintf("matrixstore: %d plugins", len(m.items)))
	b.WriteString(header)
	b.WriteString("\n\n")

	listWidth := 40
	previewWidth := max(30, m.width-listWidth-6)
	listHeight := max(5, m.height-8)

	var listLines []string
	for i, item := range m.filteredItems {
		listLines = append(listLines, m.renderItem(i, item))
	}

	// Paginate if needed
	start := 0
	if m.cursor >= listHeight {
		start = m.cursor - listHeight + 1
	}
	end := min(start+listHeight, len(listLines))

	visibleList := strings.Join(listLines[start:end], "\n")
	preview := m.renderPreview()

	listBox := lipgloss.NewStyle().Width(listWidth).Render(visibleList)
	previewBox := previewStyle.Width(previewWidth).Height(listHeight).Render(preview)

	content := lipgloss.JoinHorizontal(lipgloss.Top, listBox, "  ", previewBox)
	b.WriteString(content)
	b.WriteString("\n\n")

	searchQuery := m.searchInput.Value()
	if searchQuery != "" {
		b.WriteString("> " + searchQuery + "_")
	} else {
		b.WriteString(helpStyle.Render("> type to filter..."))
	}
	b.WriteString("\n")

	help := helpStyle.Render("↑/↓: move | Tab: toggle | Enter: confirm | Esc: clear/quit")
	b.WriteString(help)

	return b.String()
}

func (m Model) renderItem(idx int, item Item) string {
	cursor := "  "
	if idx == m.cursor {
		cursor = "> "
	}

	var checkbox string
	var style lipgloss.Style

	switch {
	case item.Action() == "install":
		checkbox = "[+]"
		style = toInstallStyle
	case item.Action() == "uninstall":
		checkbox = "[-]"
		style = toUninstallStyle
	case item.Installed:
		checkbox = "[*]"
		style = installedStyle
	default:
		checkbox = "[ ]"
		style = normalStyle
	}

	text := fmt.Sprintf("%s%s %s (v%s)",
		cursor, checkbox, item.Entry.ID, item.Entry.LatestVersion)

	if idx == m.cursor {
		return selectedStyle.Render(text)
	}
	return style.Render(text)
}

func (m Model) renderPreview() string {
	if len(m.filteredItems) == 0 || m.cursor >= len(m.filteredItems) {
		return "No plugin selected"
	}

	item := m.filteredItems[m.cursor]
	e := item.Entry

	var b strings.Builder

	b.WriteString(fmt.Sprintf("Name: %s\n", e.Name))
	b.WriteString(fmt.Sprintf("ID: %s\n", e.ID))
	b.WriteString(fmt.Sprintf("Latest: %s\n", e.LatestVersion))

	if e.Category != "" {
		b.WriteString(fmt.Sprintf("Category: %s\n", e.Category))
	}
	if e.Verified {
		b.WriteString(verifiedStyle.Render("Verified") + "\n")
	}
	if item.Installed {
		status := "Installed (disabled)"
		if item.Enabled {
			status = "Installed (enabled)"
		}
		b.WriteString(installedStyle.Render("Status: "+status) + "\n")
	}

	if e.Description != "" {
		b.WriteString("\n" + e.Description + "\n")
	}
	if len(e.Tags) > 0 {
		b.WriteString("\nTags: " + strings.Join(e.Tags, ", ") + "\n")
	}
	if e.Repo != "" {
		b.WriteString("\n" + e.Repo + "\n")
	}

	return b.String()
}

func (m Model) renderConfirmModal() string {
	toInstall, toUninstall := m.getChanges()

	var b strings.Builder
	b.WriteString("Apply changes?\n\n")

	if len(toInstall) > 0 {
		b.WriteString(toInstallStyle.Render("Install:") + "\n")
		for _, item := range toInstall {
			b.WriteString(fmt.Sprintf("  + %s (v%s)\n", item.Entry.ID, item.Entry.LatestVersion))
		}
	}
	if len(toUninstall) > 0 {
		b.WriteString(toUninstallStyle.Render("Uninstall:") + "\n")
		for _, item := range toUninstall {
			b.WriteString(fmt.Sprintf("  - %s\n", item.Entry.ID))
		}
	}

	b.WriteString("\n[y] yes  [n] no")

	modal := modalStyle.Render(b.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal)
}
