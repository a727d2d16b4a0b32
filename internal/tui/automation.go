package tui

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/taskgenius/internal/model"
)

type rulePreset string

const (
	presetCustom     rulePreset = "Custom rule"
	presetDaily      rulePreset = "Daily reminder"
	presetWeekly     rulePreset = "Weekly task"
	presetCompletion rulePreset = "Completion reward"
)

// ruleDraft holds the new-rule form values. The form binds to its
// fields by pointer.
type ruleDraft struct {
	preset  rulePreset
	name    string
	trigger model.TriggerKind
	action  model.ActionKind

	clock    string
	weekday  int
	category model.Category

	taskTitle, taskDesc   string
	notifTitle, notifBody string

	target, from, to model.Category
}

func newRuleDraft() *ruleDraft {
	return &ruleDraft{
		preset:   presetCustom,
		trigger:  model.TriggerTimeOfDay,
		action:   model.ActionSendNotification,
		clock:    "09:00",
		weekday:  2,
		category: model.CategoryPersonal,
		target:   model.CategoryPersonal,
		from:     model.CategoryPersonal,
		to:       model.CategoryWork,
	}
}

func (d *ruleDraft) custom() bool { return d.preset == presetCustom }

func (d *ruleDraft) conditions() map[string]string {
	c := map[string]string{}
	set := func(k, v string) {
		if v = strings.TrimSpace(v); v != "" {
			c[k] = v
		}
	}
	switch d.trigger {
	case model.TriggerTimeOfDay:
		set(model.ParamTime, d.clock)
	case model.TriggerDayOfWeek:
		set(model.ParamDay, fmt.Sprint(d.weekday))
	case model.TriggerCategoryBased:
		set(model.ParamCategory, string(d.category))
	}
	switch d.action {
	case model.ActionCreateTask:
		set(model.ParamTaskTitle, d.taskTitle)
		set(model.ParamTaskDescription, d.taskDesc)
	case model.ActionSendNotification:
		set(model.ParamNotificationTitle, d.notifTitle)
		set(model.ParamNotificationBody, d.notifBody)
	case model.ActionMarkComplete:
		set(model.ParamTargetCategory, string(d.target))
	case model.ActionChangeCategory:
		set(model.ParamFromCategory, string(d.from))
		set(model.ParamToCategory, string(d.to))
	}
	return c
}

type automationModel struct {
	deps   Deps
	width  int
	height int
	cursor int

	formActive bool
	form       *huh.Form
	draft      *ruleDraft
}

func newAutomationModel(d Deps) automationModel {
	return automationModel{deps: d, draft: newRuleDraft()}
}

func (m *automationModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

// rules lists active rules first, each group in creation order.
func (m automationModel) rules() []model.AutomationRule {
	return append(m.deps.Rules.Active(), m.deps.Rules.Inactive()...)
}

func (m automationModel) update(msg tea.Msg) (automationModel, tea.Cmd) {
	if m.formActive && m.form != nil {
		return m.updateForm(msg)
	}

	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	rules := m.rules()
	switch {
	case key.Matches(km, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(km, keys.Down):
		if m.cursor < len(rules)-1 {
			m.cursor++
		}
	case key.Matches(km, keys.Toggle), key.Matches(km, keys.Enter):
		if m.cursor < len(rules) {
			r := rules[m.cursor]
			if err := m.deps.Rules.ToggleActive(r.ID); err != nil {
				return m, statusCmd(errStatus("Error", err))
			}
			state := "Paused"
			if !r.IsActive {
				state = "Activated"
			}
			return m, statusCmd(statusMsg{text: state + " " + r.Name})
		}
	case key.Matches(km, keys.Delete):
		if m.cursor < len(rules) {
			r := rules[m.cursor]
			if err := m.deps.Rules.Delete(r.ID); err != nil {
				return m, statusCmd(errStatus("Error", err))
			}
			if m.cursor >= len(rules)-1 && m.cursor > 0 {
				m.cursor--
			}
			return m, statusCmd(statusMsg{text: "Deleted " + r.Name})
		}
	case key.Matches(km, keys.New):
		return m.showForm()
	}
	return m, nil
}

func weekdayOptions() []huh.Option[int] {
	opts := make([]huh.Option[int], 0, 7)
	for d := time.Sunday; d <= time.Saturday; d++ {
		opts = append(opts, huh.NewOption(d.String(), model.CalendarWeekday(d)))
	}
	return opts
}

func validClock(s string) error {
	if _, _, ok := model.ParseClock(s); !ok {
		return errors.New("time must be HH:MM")
	}
	return nil
}

func (m automationModel) showForm() (automationModel, tea.Cmd) {
	*m.draft = *newRuleDraft()
	d := m.draft

	presets := []huh.Option[rulePreset]{
		huh.NewOption(string(presetCustom), presetCustom),
		huh.NewOption(string(presetDaily), presetDaily),
		huh.NewOption(string(presetWeekly), presetWeekly),
		huh.NewOption(string(presetCompletion), presetCompletion),
	}
	triggers := make([]huh.Option[model.TriggerKind], len(model.TriggerKinds))
	for i, k := range model.TriggerKinds {
		triggers[i] = huh.NewOption(string(k)+" - "+k.Description(), k)
	}
	actions := make([]huh.Option[model.ActionKind], len(model.ActionKinds))
	for i, k := range model.ActionKinds {
		actions[i] = huh.NewOption(string(k), k)
	}

	usesTrigger := func(k model.TriggerKind, p rulePreset) func() bool {
		return func() bool {
			return !(d.custom() && d.trigger == k || d.preset == p)
		}
	}
	usesAction := func(k model.ActionKind, presets ...rulePreset) func() bool {
		return func() bool {
			if d.custom() {
				return d.action != k
			}
			for _, p := range presets {
				if d.preset == p {
					return false
				}
			}
			return true
		}
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[rulePreset]().Title("Start from").Options(presets...).Value(&d.preset),
		),
		huh.NewGroup(
			huh.NewInput().Title("Rule name").Value(&d.name).Validate(required("name")),
			huh.NewSelect[model.TriggerKind]().Title("When").Options(triggers...).Value(&d.trigger),
			huh.NewSelect[model.ActionKind]().Title("Then").Options(actions...).Value(&d.action),
		).WithHideFunc(func() bool { return !d.custom() }),
		huh.NewGroup(
			huh.NewInput().Title("Time (HH:MM)").Value(&d.clock).Validate(validClock),
		).WithHideFunc(usesTrigger(model.TriggerTimeOfDay, presetDaily)),
		huh.NewGroup(
			huh.NewSelect[int]().Title("Day").Options(weekdayOptions()...).Value(&d.weekday),
		).WithHideFunc(usesTrigger(model.TriggerDayOfWeek, presetWeekly)),
		huh.NewGroup(
			huh.NewSelect[model.Category]().Title("Category").Options(categoryOptions()...).Value(&d.category),
		).WithHideFunc(usesTrigger(model.TriggerCategoryBased, presetWeekly)),
		huh.NewGroup(
			huh.NewInput().Title("Task title").Value(&d.taskTitle),
			huh.NewInput().Title("Task description").Value(&d.taskDesc),
		).WithHideFunc(usesAction(model.ActionCreateTask, presetWeekly)),
		huh.NewGroup(
			huh.NewInput().Title("Notification title").Value(&d.notifTitle),
			huh.NewInput().Title("Notification message").Value(&d.notifBody),
		).WithHideFunc(usesAction(model.ActionSendNotification, presetDaily, presetCompletion)),
		huh.NewGroup(
			huh.NewSelect[model.Category]().Title("Complete tasks in").Options(categoryOptions()...).Value(&d.target),
		).WithHideFunc(usesAction(model.ActionMarkComplete)),
		huh.NewGroup(
			huh.NewSelect[model.Category]().Title("Move tasks from").Options(categoryOptions()...).Value(&d.from),
			huh.NewSelect[model.Category]().Title("To").Options(categoryOptions()...).Value(&d.to),
		).WithHideFunc(usesAction(model.ActionChangeCategory)),
	).WithShowHelp(true).WithShowErrors(true)

	m.formActive = true
	return m, m.form.Init()
}

func (m automationModel) updateForm(msg tea.Msg) (automationModel, tea.Cmd) {
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
		r, err := m.saveDraft()
		if err != nil {
			return m, statusCmd(errStatus("Save failed", err))
		}
		return m, statusCmd(statusMsg{text: "Added rule " + r.Name})
	}
	return m, cmd
}

func orDefault(s, fallback string) string {
	if s = strings.TrimSpace(s); s != "" {
		return s
	}
	return fallback
}

func (m automationModel) saveDraft() (model.AutomationRule, error) {
	d := m.draft
	rules := m.deps.Rules
	switch d.preset {
	case presetDaily:
		return rules.DailyReminder(d.clock, orDefault(d.notifTitle, "Reminder"), d.notifBody)
	case presetWeekly:
		return rules.WeeklyTask(d.weekday, orDefault(d.taskTitle, "Weekly task"), d.taskDesc, d.category)
	case presetCompletion:
		return rules.CompletionReward(orDefault(d.notifTitle, "Great job!"), orDefault(d.notifBody, "You completed a task."))
	}
	r := model.NewRule(strings.TrimSpace(d.name), d.trigger, d.action, d.conditions(), m.deps.Now())
	return r, rules.Add(r)
}

// describeConditions renders a rule's parameters as "k=v" pairs.
func describeConditions(c map[string]string) string {
	ks := make([]string, 0, len(c))
	for k := range c {
		ks = append(ks, k)
	}
	sort.Strings(ks)
	parts := make([]string, len(ks))
	for i, k := range ks {
		parts[i] = k + "=" + c[k]
	}
	return strings.Join(parts, "  ")
}

func (m automationModel) view() string {
	w := m.width - 4
	if m.formActive && m.form != nil {
		content := lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render("New Automation Rule"), "", m.form.View())
		return panelStyle.Width(w).Render(content)
	}

	rules := m.rules()
	active := len(m.deps.Rules.Active())
	title := titleStyle.Render("Automation") + "  " +
		mutedStyle.Render(fmt.Sprintf("%d active · %d paused", active, len(rules)-active))

	if len(rules) == 0 {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			title, "", mutedStyle.Render("No rules. Press n to add one.")))
	}

	lines := []string{title, ""}
	for i, r := range rules {
		cursor := "  "
		style := normalItemStyle
		if i == m.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		dot := successStyle.Render("●")
		if !r.IsActive {
			dot = mutedStyle.Render("○")
			style = mutedStyle
		}
		flow := fmt.Sprintf("%s → %s", r.TriggerType, r.ActionType)
		warn := ""
		if r.DecodeTrigger() == nil || r.DecodeAction() == nil {
			warn = warningStyle.Render(" ⚠ invalid conditions")
		}
		lines = append(lines, fmt.Sprintf("%s%s %s %s%s",
			cursor, dot,
			style.Render(fmt.Sprintf("%-28s", truncate(r.Name, 28))),
			accentStyle.Render(flow), warn))
		if cond := describeConditions(r.Conditions); cond != "" {
			lines = append(lines, "     "+mutedStyle.Render(truncate(cond, max(10, w-10))))
		}
	}

	lines = append(lines, "")
	lines = append(lines, mutedStyle.Render("  space: pause/resume  n: new rule  d: delete"))
	return panelStyle.Width(w).Render(strings.Join(lines, "\n"))
}
