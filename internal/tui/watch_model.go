package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spiffcs/focus/internal/constants"
	"github.com/spiffcs/focus/internal/focus"
	"github.com/spiffcs/focus/internal/format"
	"github.com/spiffcs/focus/internal/indicator"
	"github.com/spiffcs/focus/internal/log"
	"github.com/spiffcs/focus/internal/model"
)

// WatchModel renders a StatusBar and hosts the quick focus view opened by
// the bar's command or tooltip links.
type WatchModel struct {
	bar     *StatusBar
	events  <-chan Event
	refresh func()
	snoozer Snoozer
	now     func() time.Time

	state       StatusSnapshot
	items       []model.Item
	refreshedAt time.Time
	showTooltip bool
	quick       *QuickModel

	rateLimited    bool
	rateLimitReset time.Time
	windowWidth    int
	windowHeight   int
	statusMsg      string
	quitting       bool
}

// WatchOption is a functional option for configuring WatchModel.
type WatchOption func(*WatchModel)

// WithRefresh binds the refresh key. fn must not block.
func WithRefresh(fn func()) WatchOption {
	return func(m *WatchModel) {
		m.refresh = fn
	}
}

// WithWatchSnoozer enables snoozing from the quick focus view.
func WithWatchSnoozer(s Snoozer) WatchOption {
	return func(m *WatchModel) {
		m.snoozer = s
	}
}

// NewWatchModel creates a watch view over bar. events must carry the bar's
// StatusEvents and the service's ItemsEvents.
func NewWatchModel(bar *StatusBar, events <-chan Event, opts ...WatchOption) WatchModel {
	m := WatchModel{
		bar:          bar,
		events:       events,
		now:          time.Now,
		state:        bar.Snapshot(),
		windowWidth:  100,
		windowHeight: 24,
	}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

// Init implements tea.Model
func (m WatchModel) Init() tea.Cmd {
	return waitForEvent(m.events)
}

// Update implements tea.Model
func (m WatchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.windowWidth = msg.Width
		m.windowHeight = msg.Height
		if m.quick != nil {
			m.quick.windowWidth = msg.Width
			m.quick.windowHeight = msg.Height
		}
		return m, nil

	case StatusEvent:
		// a replacement bar takes over once it signals
		if msg.Bar != nil {
			m.bar = msg.Bar
		}
		m.state = m.bar.Snapshot()
		return m, waitForEvent(m.events)

	case ItemsEvent:
		m.items = msg.Items
		m.refreshedAt = msg.At
		if m.quick != nil {
			m.quick.setItems(msg.Items)
		}
		return m, waitForEvent(m.events)

	case RateLimitEvent:
		m.rateLimited = msg.Limited
		m.rateLimitReset = msg.ResetAt
		return m, waitForEvent(m.events)

	case DoneEvent, doneMsg:
		m.quitting = true
		return m, tea.Quit

	case quickClosedMsg:
		m.quick = nil
		return m, nil

	case clearStatusMsg:
		if m.quick != nil {
			m.quick.statusMsg = ""
		}
		m.statusMsg = ""
		return m, nil

	case tea.KeyMsg:
		if m.quick != nil {
			next, cmd := m.quick.Update(msg)
			q := next.(QuickModel)
			m.quick = &q
			if q.quitting {
				m.quitting = true
			}
			return m, cmd
		}
		return m.handleKey(msg)
	}
	return m, nil
}

func (m WatchModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key := msg.String(); key {
	case "ctrl+c", "q":
		m.quitting = true
		return m, tea.Quit

	case "t":
		m.showTooltip = !m.showTooltip

	case "r":
		if m.refresh == nil {
			return m, nil
		}
		m.refresh()
		m.statusMsg = "Refreshing..."
		return m, clearStatusAfter(constants.StatusMessageTTL)

	case "enter":
		return m.runCommand(m.state.Command, indicator.QuickFocusArgs{})

	case "1", "2", "3", "4":
		sections := m.state.Tooltip.Sections
		i := int(key[0] - '1')
		if i >= len(sections) {
			return m, nil
		}
		return m.followLink(sections[i].Link.URI())
	}
	return m, nil
}

// followLink runs the command encoded in a tooltip link.
func (m WatchModel) followLink(uri string) (tea.Model, tea.Cmd) {
	command, args, err := indicator.ParseCommandLink(uri)
	if err != nil {
		log.Debug("ignoring tooltip link", "uri", uri, "error", err)
		m.statusMsg = "Error: " + err.Error()
		return m, clearStatusAfter(constants.StatusMessageTTL)
	}
	return m.runCommand(command, args)
}

// runCommand executes one of the indicator commands. Quick focus without an
// initial group opens on the group the indicator is showing.
func (m WatchModel) runCommand(command string, args indicator.QuickFocusArgs) (tea.Model, tea.Cmd) {
	var opts []QuickOption
	switch command {
	case indicator.CommandQuickFocus:
		group := args.State.InitialGroup
		if group == "" {
			if top, ok := focus.Top(focus.GroupItems(m.items), focus.IndicatorGroups); ok {
				group = top.Group
			}
		}
		if group != "" {
			opts = append(opts, WithInitialGroup(group))
		}
	case indicator.CommandShowFocusPage:
	default:
		return m, nil
	}

	opts = append(opts, withEmbedded())
	if m.snoozer != nil {
		opts = append(opts, WithSnoozer(m.snoozer))
	}
	q := NewQuickModel(m.items, opts...)
	q.windowWidth = m.windowWidth
	q.windowHeight = m.windowHeight
	m.quick = &q
	return m, nil
}

// View implements tea.Model
func (m WatchModel) View() string {
	if m.quitting {
		return ""
	}
	if m.quick != nil {
		return m.quick.View()
	}

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(m.renderBar())
	b.WriteString("\n")

	if !m.refreshedAt.IsZero() {
		b.WriteString(dimStyle.Render(fmt.Sprintf("  %s, updated %s ago",
			indicator.Pluralize(len(m.items), "item"), format.Age(m.refreshedAt, m.now()))))
		b.WriteString("\n")
	}

	if m.rateLimited {
		if d := m.rateLimitReset.Sub(m.now()).Round(time.Second); d > 0 {
			b.WriteString(warnStyle.Render(fmt.Sprintf("  Rate limited - showing previous results (resets in %s)", d)))
			b.WriteString("\n")
		}
	}

	if m.showTooltip {
		b.WriteString(renderTooltip(m.state.Tooltip))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("enter: open   t: details   1-4: show group   r: refresh   q: quit"))
	if m.statusMsg != "" {
		b.WriteString("\n")
		b.WriteString(statusMsgStyle.Render(m.statusMsg))
	}
	return b.String()
}

func (m WatchModel) renderBar() string {
	if !m.state.Visible {
		return dimStyle.Render("  indicator hidden")
	}
	text := indicator.RenderGlyphs(m.state.Text)
	return barStyle.Inherit(colorStyle(m.state.Color)).Render(text)
}

// renderTooltip draws the tooltip sections with numbered links.
func renderTooltip(t indicator.Tooltip) string {
	if len(t.Sections) == 0 {
		return tooltipStyle.Render(t.Text)
	}

	var lines []string
	for i, s := range t.Sections {
		dot := colorStyle(s.Color).Render(indicator.RenderGlyphs(indicator.GlyphCircle))
		for _, msg := range s.Messages {
			lines = append(lines, dot+" "+msg)
		}
		lines = append(lines, dimStyle.Render(fmt.Sprintf("  [%d] %s", i+1, s.Link.Title)))
	}
	return tooltipStyle.Render(strings.Join(lines, "\n"))
}
