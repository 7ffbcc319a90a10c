package tui

import (
	"fmt"
	"strings"

	"github.com/spiffcs/focus/internal/constants"
	"github.com/spiffcs/focus/internal/focus"
	"github.com/spiffcs/focus/internal/format"
	"github.com/spiffcs/focus/internal/model"
)

// Column widths
const (
	colRef      = 28
	colCategory = 20
	colAuthor   = 14
	colAge      = 4
	minTitle    = 20
)

// tabBarLines is the number of lines used for the tab bar (including top
// padding and the next-up line)
const tabBarLines = 4

func renderQuickView(m QuickModel) string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(renderTabBar(m.grouped, m.active))
	b.WriteString("\n\n")

	items := m.activeItems()
	if len(items) == 0 {
		b.WriteString(emptyStyle.Render(fmt.Sprintf("Nothing in %s.", format.GroupTitle(m.ActiveGroup()))))
		b.WriteString("\n\n")
		b.WriteString(renderQuickHelp(m.snoozer != nil, m.embedded))
		return b.String()
	}

	if rep, ok := focus.RepresentativeOf(m.grouped, m.ActiveGroup()); ok {
		b.WriteString(renderNext(rep))
	}
	b.WriteString("\n")

	titleWidth := max(m.windowWidth-colRef-colCategory-colAuthor-colAge-6, minTitle)
	b.WriteString(renderHeader(titleWidth))
	b.WriteString("\n")

	cursor := m.cursors[m.ActiveGroup()]
	available := m.windowHeight - constants.HeaderLines - constants.FooterLines - tabBarLines
	start, end := calculateScrollWindow(cursor, len(items), max(available, 1))
	now := m.now()
	for i := start; i < end; i++ {
		b.WriteString(renderRow(items[i], i == cursor, titleWidth, format.Age(items[i].UpdatedAt, now)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(renderQuickHelp(m.snoozer != nil, m.embedded))
	if m.statusMsg != "" {
		b.WriteString("\n")
		b.WriteString(statusMsgStyle.Render(m.statusMsg))
	}
	return b.String()
}

// renderTabBar renders one tab per group with its item count.
func renderTabBar(g *focus.Grouped, active int) string {
	tabs := make([]string, 0, len(focus.AllGroups))
	for i, group := range focus.AllGroups {
		label := fmt.Sprintf("%d %s (%d)", i+1, format.GroupTitle(group), len(g.Get(group)))
		if i == active {
			tabs = append(tabs, tabActiveStyle.Render(label))
			continue
		}
		tabs = append(tabs, tabInactiveStyle.Render(label))
	}
	return strings.Join(tabs, " ")
}

// renderNext names the item to look at first in the active group.
func renderNext(rep focus.Representative) string {
	return dimStyle.Render("Next: ") +
		groupStyle(rep.Group).Render(fmt.Sprintf("%s %s", format.Ref(rep.Item), rep.Label))
}

func renderHeader(titleWidth int) string {
	header := fmt.Sprintf("  %s %s %s %s %s",
		format.Fit("Pull Request", colRef),
		format.Fit("Title", titleWidth),
		format.Fit("Status", colCategory),
		format.Fit("Author", colAuthor),
		format.Fit("Age", colAge))
	return headerStyle.Render(header)
}

func renderRow(item model.Item, selected bool, titleWidth int, age string) string {
	marker := "  "
	if selected {
		marker = "> "
	}

	group, _ := focus.GroupFor(item.Category)
	row := marker +
		applyStyle(repoStyle, format.Fit(format.Ref(item), colRef), selected) + " " +
		format.Fit(item.Title, titleWidth) + " " +
		applyStyle(groupStyle(group), format.Fit(format.CategoryLabel(item.Category), colCategory), selected) + " " +
		applyStyle(dimStyle, format.Fit(item.Author, colAuthor), selected) + " " +
		applyStyle(dimStyle, format.Fit(age, colAge), selected)

	if selected {
		return selectedStyle.Render(row)
	}
	return row
}

func renderQuickHelp(snooze, embedded bool) string {
	parts := []string{"tab/1-6: groups", "j/k: nav", "enter: open"}
	if snooze {
		parts = append(parts, "s: snooze")
	}
	if embedded {
		parts = append(parts, "esc: back")
	}
	parts = append(parts, "q: quit")
	return helpStyle.Render(strings.Join(parts, "   "))
}

// calculateScrollWindow determines which items to show based on cursor position
func calculateScrollWindow(cursor, total, viewHeight int) (start, end int) {
	if total <= viewHeight {
		return 0, total
	}

	start = max(cursor-viewHeight/2, 0)
	end = start + viewHeight
	if end > total {
		end = total
		start = max(end-viewHeight, 0)
	}
	return start, end
}
