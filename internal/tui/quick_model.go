package tui

import (
	"os/exec"
	"runtime"
	"slices"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spiffcs/focus/internal/constants"
	"github.com/spiffcs/focus/internal/focus"
	"github.com/spiffcs/focus/internal/model"
)

// Snoozer hides an item until it changes or until a deadline passes.
type Snoozer interface {
	Snooze(item model.Item, until time.Time) error
}

// QuickModel is the Bubble Tea model for the quick focus view: one tab per
// group, each listing its items most recent first.
type QuickModel struct {
	items    []model.Item
	grouped  *focus.Grouped
	active   int
	cursors  map[focus.Group]int
	snoozer  Snoozer
	embedded bool
	now      func() time.Time

	windowWidth  int
	windowHeight int
	statusMsg    string
	quitting     bool
}

// QuickOption is a functional option for configuring QuickModel.
type QuickOption func(*QuickModel)

// WithInitialGroup opens the view on group instead of the first non-empty
// group.
func WithInitialGroup(group focus.Group) QuickOption {
	return func(m *QuickModel) {
		if i := slices.Index(focus.AllGroups, group); i >= 0 {
			m.active = i
		}
	}
}

// WithSnoozer enables the snooze key.
func WithSnoozer(s Snoozer) QuickOption {
	return func(m *QuickModel) {
		m.snoozer = s
	}
}

// withEmbedded makes esc return to the hosting model instead of quitting.
func withEmbedded() QuickOption {
	return func(m *QuickModel) {
		m.embedded = true
	}
}

// NewQuickModel creates a quick focus view over items.
func NewQuickModel(items []model.Item, opts ...QuickOption) QuickModel {
	m := QuickModel{
		active:       -1,
		cursors:      make(map[focus.Group]int),
		now:          time.Now,
		windowWidth:  100,
		windowHeight: 24,
	}
	for _, opt := range opts {
		opt(&m)
	}
	m.setItems(items)
	if m.active < 0 {
		m.active = 0
		if groups := m.grouped.Groups(); len(groups) > 0 {
			m.active = slices.Index(focus.AllGroups, groups[0])
		}
	}
	return m
}

// setItems replaces the item set, keeping the active tab and clamping
// cursors.
func (m *QuickModel) setItems(items []model.Item) {
	m.items = items
	m.grouped = focus.GroupItems(items)
	for group, cursor := range m.cursors {
		if n := len(m.grouped.Get(group)); cursor >= n {
			m.cursors[group] = max(n-1, 0)
		}
	}
}

// ActiveGroup returns the group of the selected tab.
func (m QuickModel) ActiveGroup() focus.Group {
	return focus.AllGroups[m.active]
}

// activeItems returns the items of the selected tab.
func (m QuickModel) activeItems() []model.Item {
	return m.grouped.Get(m.ActiveGroup())
}

// Selected returns the item under the cursor.
func (m QuickModel) Selected() (model.Item, bool) {
	items := m.activeItems()
	if len(items) == 0 {
		return model.Item{}, false
	}
	return items[m.cursors[m.ActiveGroup()]], true
}

// Init implements tea.Model
func (m QuickModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (m QuickModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.windowWidth = msg.Width
		m.windowHeight = msg.Height

	case clearStatusMsg:
		m.statusMsg = ""
	}
	return m, nil
}

func (m QuickModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	group := m.ActiveGroup()
	items := m.activeItems()

	switch msg.String() {
	case "ctrl+c", "q":
		m.quitting = true
		return m, tea.Quit

	case "esc":
		if m.embedded {
			return m, closeQuick
		}
		m.quitting = true
		return m, tea.Quit

	case "tab", "l", "right":
		m.active = (m.active + 1) % len(focus.AllGroups)

	case "shift+tab", "h", "left":
		m.active = (m.active + len(focus.AllGroups) - 1) % len(focus.AllGroups)

	case "1", "2", "3", "4", "5", "6":
		m.active = int(msg.String()[0] - '1')

	case "j", "down":
		if m.cursors[group] < len(items)-1 {
			m.cursors[group]++
		}

	case "k", "up":
		if m.cursors[group] > 0 {
			m.cursors[group]--
		}

	case "g", "home":
		m.cursors[group] = 0

	case "G", "end":
		m.cursors[group] = max(len(items)-1, 0)

	case "enter":
		return m.open()

	case "s":
		return m.snooze()
	}
	return m, nil
}

func (m QuickModel) open() (tea.Model, tea.Cmd) {
	item, ok := m.Selected()
	if !ok {
		return m, nil
	}
	if item.URL == "" {
		return m.withStatus("No URL available")
	}
	return m, openURL(item.URL)
}

// snooze hides the selected item until it is next updated.
func (m QuickModel) snooze() (tea.Model, tea.Cmd) {
	item, ok := m.Selected()
	if !ok || m.snoozer == nil {
		return m, nil
	}
	if err := m.snoozer.Snooze(item, time.Time{}); err != nil {
		return m.withStatus("Error: " + err.Error())
	}

	key := item.Key()
	m.setItems(slices.DeleteFunc(slices.Clone(m.items), func(i model.Item) bool {
		return i.Key() == key
	}))
	return m.withStatus("Snoozed " + key)
}

func (m QuickModel) withStatus(msg string) (tea.Model, tea.Cmd) {
	m.statusMsg = msg
	return m, clearStatusAfter(constants.StatusMessageTTL)
}

// View implements tea.Model
func (m QuickModel) View() string {
	if m.quitting {
		return ""
	}
	return renderQuickView(m)
}

// quickClosedMsg tells a hosting model that the embedded view was closed.
type quickClosedMsg struct{}

func closeQuick() tea.Msg { return quickClosedMsg{} }

// clearStatusMsg is a message to clear the status
type clearStatusMsg struct{}

// clearStatusAfter returns a command that clears the status after a delay
func clearStatusAfter(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return clearStatusMsg{}
	})
}

// openURL opens a URL in the default browser
func openURL(url string) tea.Cmd {
	return func() tea.Msg {
		var cmd *exec.Cmd

		switch runtime.GOOS {
		case "darwin":
			cmd = exec.Command("open", url)
		case "linux":
			cmd = exec.Command("xdg-open", url)
		case "windows":
			cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
		default:
			return nil
		}

		_ = cmd.Start()
		return nil
	}
}
