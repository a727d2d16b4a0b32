package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/taskgenius/internal/model"
	"github.com/sadopc/taskgenius/internal/tasks"
)

// todayModel is the landing view: what is overdue, due today and coming
// up, with quick completion.
type todayModel struct {
	deps   Deps
	width  int
	height int

	cursor int
}

func newTodayModel(d Deps) todayModel {
	return todayModel{deps: d}
}

func (d *todayModel) setSize(w, h int) {
	d.width = w
	d.height = h
}

// focus is the list the cursor moves over: overdue first, then today.
func (d todayModel) focus() []model.Task {
	now := d.deps.Now()
	all := d.deps.Tasks.Tasks()
	overdue := tasks.Sort(tasks.Overdue(all, now), model.SortDueDate)
	today := tasks.Sort(tasks.Active(tasks.DueToday(all, now)), model.SortPriority)

	out := append([]model.Task{}, overdue...)
	for _, t := range today {
		if !t.Overdue(now) {
			out = append(out, t)
		}
	}
	return out
}

func (d todayModel) update(msg tea.Msg) (todayModel, tea.Cmd) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return d, nil
	}
	list := d.focus()
	switch {
	case key.Matches(km, keys.Up):
		if d.cursor > 0 {
			d.cursor--
		}
	case key.Matches(km, keys.Down):
		if d.cursor < len(list)-1 {
			d.cursor++
		}
	case key.Matches(km, keys.Toggle), key.Matches(km, keys.Enter):
		if d.cursor < len(list) {
			t := list[d.cursor]
			if err := d.deps.Tasks.ToggleCompletion(t.ID); err != nil {
				return d, func() tea.Msg { return errStatus("Error", err) }
			}
			if d.cursor >= len(list)-1 && d.cursor > 0 {
				d.cursor--
			}
			return d, func() tea.Msg { return statusMsg{text: "Completed " + t.Title} }
		}
	}
	return d, nil
}

func (d todayModel) view() string {
	if d.width < 20 {
		return "Terminal too small"
	}
	contentWidth := d.width - 4
	now := d.deps.Now()
	all := d.deps.Tasks.Tasks()

	summary := d.renderSummaryPanel(contentWidth, all)
	focus := d.renderFocusPanel(contentWidth)
	upcoming := d.renderUpcomingPanel(contentWidth, tasks.Sort(tasks.Active(tasks.Upcoming(all, now)), model.SortDueDate))

	return lipgloss.JoinVertical(lipgloss.Left, summary, focus, upcoming)
}

func (d todayModel) renderSummaryPanel(w int, all []model.Task) string {
	now := d.deps.Now()
	name := d.deps.Profile.Profile().Username
	title := titleStyle.Render(fmt.Sprintf("Hello, %s", name)) + "  " + mutedStyle.Render(now.Format("Monday, Jan 02"))

	stat := func(n int, label string) string {
		return bigNumberStyle.Render(fmt.Sprintf("%d", n)) + mutedStyle.Render(" "+label)
	}
	completedToday := 0
	for _, t := range all {
		if t.CompletedAt != nil && model.SameDay(*t.CompletedAt, now) {
			completedToday++
		}
	}
	row := strings.Join([]string{
		stat(len(tasks.Active(all)), "active"),
		stat(len(tasks.Overdue(all, now)), "overdue"),
		stat(len(tasks.Active(tasks.DueToday(all, now))), "due today"),
		stat(completedToday, "done today"),
	}, "   ")

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, title, "", row))
}

func (d todayModel) renderFocusPanel(w int) string {
	now := d.deps.Now()
	title := titleStyle.Render("Focus")
	list := d.focus()
	if len(list) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			mutedStyle.Render("Nothing overdue or due today"),
		)
		return panelStyle.Width(w).Render(content)
	}

	var rows []string
	rows = append(rows, title)
	for i, t := range list {
		cursor := "  "
		style := normalItemStyle
		if i == d.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		due := formatDue(t.DueDate, now)
		if t.Overdue(now) {
			due = errorStyle.Render("overdue " + due)
		} else {
			due = mutedStyle.Render(due)
		}
		rows = append(rows, fmt.Sprintf("%s%s %s  %s  %s",
			cursor, categoryDot(t.Category), style.Render(truncate(t.Title, 40)),
			priorityStyle(t.Priority).Render(string(t.Priority)), due))
	}
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  space: complete"))

	return activePanelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (d todayModel) renderUpcomingPanel(w int, upcoming []model.Task) string {
	now := d.deps.Now()
	title := titleStyle.Render("Upcoming")
	if len(upcoming) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			mutedStyle.Render("No upcoming tasks"),
		)
		return panelStyle.Width(w).Render(content)
	}

	var rows []string
	rows = append(rows, title)
	for i, t := range upcoming {
		if i == 5 {
			rows = append(rows, mutedStyle.Render(fmt.Sprintf("  … and %d more", len(upcoming)-5)))
			break
		}
		rows = append(rows, fmt.Sprintf("  %s %-32s %s", categoryDot(t.Category), truncate(t.Title, 32), mutedStyle.Render(formatDue(t.DueDate, now))))
	}
	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
