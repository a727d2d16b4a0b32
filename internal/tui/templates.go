package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/taskgenius/internal/model"
)

type templatesModel struct {
	deps   Deps
	width  int
	height int
	cursor int

	formActive bool
	form       *huh.Form

	formName      *string
	formTitle     *string
	formDesc      *string
	formPriority  *model.Priority
	formCategory  *model.Category
	formTags      *string
	formRecurring *bool
	formInterval  *model.RecurrenceInterval
}

func newTemplatesModel(d Deps) templatesModel {
	name, title, desc, tags := "", "", "", ""
	prio, cat := model.PriorityMedium, model.CategoryPersonal
	recurring := false
	interval := model.RecurWeekly
	return templatesModel{
		deps:          d,
		formName:      &name,
		formTitle:     &title,
		formDesc:      &desc,
		formPriority:  &prio,
		formCategory:  &cat,
		formTags:      &tags,
		formRecurring: &recurring,
		formInterval:  &interval,
	}
}

func (m *templatesModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

func (m templatesModel) update(msg tea.Msg) (templatesModel, tea.Cmd) {
	if m.formActive && m.form != nil {
		return m.updateForm(msg)
	}

	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	list := m.deps.Tasks.Templates()
	switch {
	case key.Matches(km, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(km, keys.Down):
		if m.cursor < len(list)-1 {
			m.cursor++
		}
	case key.Matches(km, keys.Enter):
		if m.cursor < len(list) {
			t, err := m.deps.Tasks.Instantiate(list[m.cursor])
			if err != nil {
				return m, statusCmd(errStatus("Error", err))
			}
			return m, statusCmd(statusMsg{text: "Created " + t.Title})
		}
	case key.Matches(km, keys.New):
		return m.showForm()
	case key.Matches(km, keys.Delete):
		if m.cursor < len(list) {
			tp := list[m.cursor]
			if err := m.deps.Tasks.DeleteTemplate(tp.ID); err != nil {
				return m, statusCmd(errStatus("Error", err))
			}
			if m.cursor >= len(list)-1 && m.cursor > 0 {
				m.cursor--
			}
			return m, statusCmd(statusMsg{text: "Deleted template " + tp.Name})
		}
	}
	return m, nil
}

func (m templatesModel) showForm() (templatesModel, tea.Cmd) {
	prefs := m.deps.Profile.Profile().Preferences
	*m.formName, *m.formTitle, *m.formDesc, *m.formTags = "", "", "", ""
	*m.formPriority = prefs.DefaultTaskPriority
	*m.formCategory = prefs.DefaultTaskCategory
	*m.formRecurring = false
	*m.formInterval = model.RecurWeekly

	intervals := make([]huh.Option[model.RecurrenceInterval], len(model.RecurrenceIntervals))
	for i, iv := range model.RecurrenceIntervals {
		intervals[i] = huh.NewOption(string(iv), iv)
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Template name").Value(m.formName).Validate(required("name")),
			huh.NewInput().Title("Task title").Value(m.formTitle).Validate(required("task title")),
			huh.NewText().Title("Task description").Lines(2).Value(m.formDesc),
			huh.NewSelect[model.Priority]().Title("Priority").Options(priorityOptions()...).Value(m.formPriority),
			huh.NewSelect[model.Category]().Title("Category").Options(categoryOptions()...).Value(m.formCategory),
			huh.NewInput().Title("Tags (comma-separated)").Value(m.formTags),
		),
		huh.NewGroup(
			huh.NewConfirm().Title("Recurring?").Value(m.formRecurring),
		),
		huh.NewGroup(
			huh.NewSelect[model.RecurrenceInterval]().Title("Repeats").Options(intervals...).Value(m.formInterval),
		).WithHideFunc(func() bool { return !*m.formRecurring }),
	).WithShowHelp(true).WithShowErrors(true)

	m.formActive = true
	return m, m.form.Init()
}

func (m templatesModel) updateForm(msg tea.Msg) (templatesModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.String() == "esc" {
		m.formActive = false
		m.form = nil
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		m.formActive = false
		tp := model.TaskTemplate{
			Name:                strings.TrimSpace(*m.formName),
			TemplateTitle:       strings.TrimSpace(*m.formTitle),
			TemplateDescription: strings.TrimSpace(*m.formDesc),
			DefaultPriority:     *m.formPriority,
			DefaultCategory:     *m.formCategory,
			DefaultTags:         splitTags(*m.formTags),
			IsRecurring:         *m.formRecurring,
		}
		if tp.IsRecurring {
			tp.RecurringInterval = model.Interval(*m.formInterval)
		}
		if err := m.deps.Tasks.AddTemplate(tp); err != nil {
			return m, statusCmd(errStatus("Save failed", err))
		}
		return m, statusCmd(statusMsg{text: "Added template " + tp.Name})
	}

	return m, cmd
}

func (m templatesModel) view() string {
	w := m.width - 4
	if m.formActive && m.form != nil {
		content := lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render("New Template"), "", m.form.View())
		return panelStyle.Width(w).Render(content)
	}

	list := m.deps.Tasks.Templates()
	title := titleStyle.Render("Templates")
	if len(list) == 0 {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			title, "", mutedStyle.Render("No templates yet. Press n to create one.")))
	}

	lines := []string{title, ""}
	for i, tp := range list {
		cursor := "  "
		style := normalItemStyle
		if i == m.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		repeat := ""
		if tp.IsRecurring && tp.RecurringInterval != nil {
			repeat = accentStyle.Render(" ↻ " + string(*tp.RecurringInterval))
		}
		lines = append(lines, fmt.Sprintf("%s%s %s %s%s",
			cursor,
			categoryDot(tp.DefaultCategory),
			style.Render(fmt.Sprintf("%-20s", truncate(tp.Name, 20))),
			priorityStyle(tp.DefaultPriority).Render(fmt.Sprintf("%-8s", tp.DefaultPriority)),
			repeat))
		detail := tp.TemplateTitle
		if len(tp.DefaultTags) > 0 {
			detail += " [" + strings.Join(tp.DefaultTags, ", ") + "]"
		}
		lines = append(lines, "      "+mutedStyle.Render(truncate(detail, max(10, w-10))))
	}

	lines = append(lines, "")
	lines = append(lines, mutedStyle.Render("  enter: create task  n: new template  d: delete"))
	return panelStyle.Width(w).Render(strings.Join(lines, "\n"))
}
