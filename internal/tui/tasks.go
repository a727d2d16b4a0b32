package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/taskgenius/internal/model"
	"github.com/sadopc/taskgenius/internal/tasks"
)

type tasksModel struct {
	deps   Deps
	width  int
	height int

	cursor        int
	category      *model.Category
	showCompleted bool
	sortOrder     model.SortOrder
	search        string

	formActive bool
	form       *huh.Form
	formType   string // "task", "edit_task", "search"

	// Form field pointers (survive value copies)
	formTitle    *string
	formDesc     *string
	formPriority *model.Priority
	formCategory *model.Category
	formDue      *string
	formTags     *string

	editingID string
}

func newTasksModel(d Deps) tasksModel {
	title, desc, due, tags := "", "", "", ""
	prio, cat := model.PriorityMedium, model.CategoryPersonal
	prefs := d.Profile.Profile().Preferences
	return tasksModel{
		deps:          d,
		showCompleted: prefs.ShowCompletedTasks,
		sortOrder:     prefs.SortOrder,
		formTitle:     &title,
		formDesc:      &desc,
		formPriority:  &prio,
		formCategory:  &cat,
		formDue:       &due,
		formTags:      &tags,
	}
}

func (m *tasksModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

// rows is the filtered, sorted list the cursor moves over.
func (m tasksModel) rows() []model.Task {
	f := tasks.Filter{Category: m.category, ShowCompleted: m.showCompleted, Search: m.search}
	return tasks.Sort(tasks.Apply(m.deps.Tasks.Tasks(), f), m.sortOrder)
}

func (m tasksModel) selected() (model.Task, bool) {
	rows := m.rows()
	if m.cursor < 0 || m.cursor >= len(rows) {
		return model.Task{}, false
	}
	return rows[m.cursor], true
}

func (m tasksModel) clamp() tasksModel {
	if n := len(m.rows()); m.cursor >= n {
		m.cursor = max(0, n-1)
	}
	return m
}

func (m tasksModel) update(msg tea.Msg) (tasksModel, tea.Cmd) {
	if m.formActive && m.form != nil {
		return m.updateForm(msg)
	}

	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(km, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(km, keys.Down):
		if m.cursor < len(m.rows())-1 {
			m.cursor++
		}
	case key.Matches(km, keys.New):
		return m.showTaskForm(nil)
	case key.Matches(km, keys.Edit), key.Matches(km, keys.Enter):
		if t, ok := m.selected(); ok {
			return m.showTaskForm(&t)
		}
	case key.Matches(km, keys.Toggle):
		if t, ok := m.selected(); ok {
			if err := m.deps.Tasks.ToggleCompletion(t.ID); err != nil {
				return m, statusCmd(errStatus("Error", err))
			}
			return m.clamp(), nil
		}
	case key.Matches(km, keys.Delete):
		if t, ok := m.selected(); ok {
			if err := m.deps.Tasks.Delete(t.ID); err != nil {
				return m, statusCmd(errStatus("Error", err))
			}
			return m.clamp(), statusCmd(statusMsg{text: "Deleted " + t.Title})
		}
	case key.Matches(km, keys.Purge):
		n := len(tasks.Completed(m.deps.Tasks.Tasks()))
		if err := m.deps.Tasks.DeleteCompleted(); err != nil {
			return m, statusCmd(errStatus("Error", err))
		}
		return m.clamp(), statusCmd(statusMsg{text: fmt.Sprintf("Deleted %d completed tasks", n)})
	case key.Matches(km, keys.Filter):
		m.category = nextCategory(m.category)
		m.cursor = 0
	case key.Matches(km, keys.Completed):
		m.showCompleted = !m.showCompleted
		m = m.clamp()
	case key.Matches(km, keys.Sort):
		m.sortOrder = nextSortOrder(m.sortOrder)
	case key.Matches(km, keys.Search):
		return m.showSearchForm()
	case key.Matches(km, keys.Back):
		m.search = ""
		m.category = nil
		m.cursor = 0
	}
	return m, nil
}

func statusCmd(s statusMsg) tea.Cmd {
	return func() tea.Msg { return s }
}

// nextCategory cycles all → each category → all.
func nextCategory(c *model.Category) *model.Category {
	if c == nil {
		next := model.Categories[0]
		return &next
	}
	for i, v := range model.Categories {
		if v == *c && i+1 < len(model.Categories) {
			next := model.Categories[i+1]
			return &next
		}
	}
	return nil
}

func nextSortOrder(o model.SortOrder) model.SortOrder {
	for i, v := range model.SortOrders {
		if v == o {
			return model.SortOrders[(i+1)%len(model.SortOrders)]
		}
	}
	return model.SortOrders[0]
}

func priorityOptions() []huh.Option[model.Priority] {
	opts := make([]huh.Option[model.Priority], len(model.Priorities))
	for i, p := range model.Priorities {
		opts[i] = huh.NewOption(string(p), p)
	}
	return opts
}

func categoryOptions() []huh.Option[model.Category] {
	opts := make([]huh.Option[model.Category], len(model.Categories))
	for i, c := range model.Categories {
		opts[i] = huh.NewOption(string(c), c)
	}
	return opts
}

func required(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return errors.New(field + " is required")
		}
		return nil
	}
}

// showTaskForm opens the new-task form, or the edit form when t is set.
func (m tasksModel) showTaskForm(t *model.Task) (tasksModel, tea.Cmd) {
	prefs := m.deps.Profile.Profile().Preferences
	loc := m.deps.Now().Location()

	if t == nil {
		*m.formTitle, *m.formDesc, *m.formDue, *m.formTags = "", "", "", ""
		*m.formPriority = prefs.DefaultTaskPriority
		*m.formCategory = prefs.DefaultTaskCategory
		m.formType = "task"
		m.editingID = ""
	} else {
		*m.formTitle = t.Title
		*m.formDesc = t.Description
		*m.formPriority = t.Priority
		*m.formCategory = t.Category
		*m.formDue = ""
		if t.DueDate != nil {
			*m.formDue = t.DueDate.In(loc).Format(dateLayout)
		}
		*m.formTags = strings.Join(t.Tags, ", ")
		m.formType = "edit_task"
		m.editingID = t.ID
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Title").Value(m.formTitle).Validate(required("title")),
			huh.NewText().Title("Description").Lines(3).Value(m.formDesc),
			huh.NewSelect[model.Priority]().Title("Priority").Options(priorityOptions()...).Value(m.formPriority),
			huh.NewSelect[model.Category]().Title("Category").Options(categoryOptions()...).Value(m.formCategory),
			huh.NewInput().Title("Due date (YYYY-MM-DD, optional)").Value(m.formDue).
				Validate(func(s string) error {
					_, err := parseDue(s, loc)
					return err
				}),
			huh.NewInput().Title("Tags (comma-separated)").Value(m.formTags),
		),
	).WithShowHelp(true).WithShowErrors(true)

	m.formActive = true
	return m, m.form.Init()
}

func (m tasksModel) showSearchForm() (tasksModel, tea.Cmd) {
	*m.formTitle = m.search
	m.formType = "search"
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Search title, description or tags").Value(m.formTitle),
		),
	).WithShowHelp(false)

	m.formActive = true
	return m, m.form.Init()
}

func (m tasksModel) updateForm(msg tea.Msg) (tasksModel, tea.Cmd) {
	// Check for escape to cancel form
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			m.formActive = false
			m.form = nil
			return m, nil
		}
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		m.formActive = false
		switch m.formType {
		case "search":
			m.search = strings.TrimSpace(*m.formTitle)
			m.cursor = 0
			return m, nil
		case "task", "edit_task":
			return m.saveTask()
		}
	}

	return m, cmd
}

func (m tasksModel) saveTask() (tasksModel, tea.Cmd) {
	due, err := parseDue(*m.formDue, m.deps.Now().Location())
	if err != nil {
		return m, statusCmd(errStatus("Invalid task", err))
	}

	var t model.Task
	if m.formType == "edit_task" {
		existing, ok := m.deps.Tasks.Task(m.editingID)
		if !ok {
			return m, statusCmd(statusMsg{text: "Task no longer exists", isError: true})
		}
		t = existing
	} else {
		t = model.NewTask("", "", m.deps.Now())
	}
	t.Title = strings.TrimSpace(*m.formTitle)
	t.Description = strings.TrimSpace(*m.formDesc)
	t.Priority = *m.formPriority
	t.Category = *m.formCategory
	t.DueDate = due
	t.Tags = splitTags(*m.formTags)

	if m.formType == "edit_task" {
		err = m.deps.Tasks.Update(t)
	} else {
		err = m.deps.Tasks.Add(t)
	}
	if err != nil {
		return m, statusCmd(errStatus("Save failed", err))
	}
	return m.clamp(), statusCmd(statusMsg{text: "Saved " + t.Title})
}

func (m tasksModel) filterLabel() string {
	var parts []string
	if m.category != nil {
		parts = append(parts, string(*m.category))
	} else {
		parts = append(parts, "All")
	}
	parts = append(parts, "by "+string(m.sortOrder))
	if !m.showCompleted {
		parts = append(parts, "hiding completed")
	}
	if m.search != "" {
		parts = append(parts, fmt.Sprintf("matching %q", m.search))
	}
	return strings.Join(parts, " · ")
}

func (m tasksModel) view() string {
	w := m.width - 4
	if m.formActive && m.form != nil {
		title := titleStyle.Render("New Task")
		switch m.formType {
		case "edit_task":
			title = titleStyle.Render("Edit Task")
		case "search":
			title = titleStyle.Render("Search")
		}
		content := lipgloss.JoinVertical(lipgloss.Left, title, "", m.form.View())
		return panelStyle.Width(w).Render(content)
	}

	now := m.deps.Now()
	title := titleStyle.Render("Tasks") + "  " + mutedStyle.Render(m.filterLabel())
	rows := m.rows()

	if len(rows) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			"",
			mutedStyle.Render("No tasks here. Press n to create one."),
		)
		return panelStyle.Width(w).Render(content)
	}

	var lines []string
	lines = append(lines, title)
	lines = append(lines, "")

	// Table header
	lines = append(lines, mutedStyle.Render(fmt.Sprintf("  %-3s %-36s %-8s %-10s %-10s", "", "Title", "Priority", "Category", "Due")))

	// Keep the cursor on screen.
	visible := max(1, m.height-10)
	start := 0
	if m.cursor >= visible {
		start = m.cursor - visible + 1
	}
	end := min(len(rows), start+visible)

	for i := start; i < end; i++ {
		t := rows[i]
		cursor := "  "
		style := normalItemStyle
		if i == m.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		check := "[ ]"
		name := style.Render(fmt.Sprintf("%-36s", truncate(t.Title, 36)))
		if t.IsCompleted {
			check = successStyle.Render("[✓]")
			name = doneStyle.Render(fmt.Sprintf("%-36s", truncate(t.Title, 36)))
		}
		due := formatDue(t.DueDate, now)
		dueStyle := mutedStyle
		if t.Overdue(now) {
			dueStyle = errorStyle
		}
		tags := ""
		if len(t.Tags) > 0 {
			tags = mutedStyle.Render(" [" + strings.Join(t.Tags, ", ") + "]")
		}
		auto := ""
		if t.AutomationRuleID != nil {
			auto = accentStyle.Render(" ⚙")
		}
		lines = append(lines, fmt.Sprintf("%s%s %s %s %s %s %s%s%s",
			cursor, check, name,
			priorityStyle(t.Priority).Render(fmt.Sprintf("%-8s", t.Priority)),
			categoryDot(t.Category), fmt.Sprintf("%-8s", t.Category),
			dueStyle.Render(fmt.Sprintf("%-10s", due)), tags, auto))
	}

	lines = append(lines, "")
	lines = append(lines, mutedStyle.Render("  n: new  e: edit  space: done  d: delete  D: delete completed  f: category  c: completed  o: sort  /: search  esc: clear"))

	return panelStyle.Width(w).Render(strings.Join(lines, "\n"))
}
