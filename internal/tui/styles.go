package tui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/spiffcs/focus/internal/focus"
	"github.com/spiffcs/focus/internal/indicator"
)

var (
	// Task icons
	iconPending  = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Render("○")
	iconComplete = lipgloss.NewStyle().Foreground(lipgloss.Color("46")).Render("✓")
	iconError    = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Render("✗")
	iconSkipped  = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Render("-")

	taskNameStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	taskDimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	messageStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("244"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	spinnerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86"))

	footerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			MarginTop(1)
)

// Quick focus and watch styles
var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#CBD5E1"))

	tabActiveStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#F8FAFC")).
			Background(lipgloss.Color("#334155")).
			Padding(0, 1)

	tabInactiveStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#64748B")).
				Padding(0, 1)

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F8FAFC")).
			Background(lipgloss.Color("#1E293B"))

	repoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#7DD3FC"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#64748B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#475569"))

	statusMsgStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FBBF24"))

	emptyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#94A3B8")).
			Italic(true).
			Padding(1, 2)

	barStyle = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1)

	tooltipStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#475569")).
			Padding(0, 1)
)

var groupColors = map[focus.Group]string{
	focus.GroupMergeable:        indicator.ColorMergeable,
	focus.GroupBlocked:          indicator.ColorBlocked,
	focus.GroupNeedsReview:      indicator.ColorNeedsReview,
	focus.GroupFollowUp:         indicator.ColorFollowUp,
	focus.GroupWaitingForReview: "#94A3B8",
	focus.GroupDraft:            "#64748B",
}

// groupStyle colors text with the group's indicator color.
func groupStyle(g focus.Group) lipgloss.Style {
	return colorStyle(groupColors[g])
}

// colorStyle returns a foreground style for a hex color; "" is unstyled.
func colorStyle(hex string) lipgloss.Style {
	s := lipgloss.NewStyle()
	if hex == "" {
		return s
	}
	return s.Foreground(lipgloss.Color(hex))
}

// applyStyle renders text unless the row is selected, where ANSI resets
// would break the row highlight.
func applyStyle(s lipgloss.Style, text string, selected bool) string {
	if selected {
		return text
	}
	return s.Render(text)
}

// StatusIcon returns the appropriate icon for a task status.
func StatusIcon(status TaskStatus, spinnerFrame string) string {
	switch status {
	case StatusRunning:
		return spinnerStyle.Render(spinnerFrame)
	case StatusComplete:
		return iconComplete
	case StatusError:
		return iconError
	case StatusSkipped:
		return iconSkipped
	default:
		return iconPending
	}
}
