package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/taskgenius/internal/model"
	"github.com/sadopc/taskgenius/internal/profile"
)

type onboardingPage struct {
	title, body, icon string
	color             lipgloss.Color
}

var onboardingPages = []onboardingPage{
	{"Welcome to " + model.AppName, "Your intelligent task management companion that helps you stay organized and productive", "✔", colorPrimary},
	{"Smart Task Management", "Create, organize, and prioritize your tasks with intuitive categories and priorities", "☰", colorHighlight},
	{"Powerful Automation", "Set up automation rules to streamline your workflow and save time", "⚙", colorWarning},
	{"Track Your Progress", "Get insights into your productivity with detailed statistics and completion trends", "▇", colorSuccess},
	{"Let's Get Started", "Customize your experience to match your workflow", "☺", colorSecondary},
}

// onboardingModel is the first-run walkthrough. The last page collects
// the profile defaults.
type onboardingModel struct {
	deps   Deps
	width  int
	height int
	page   int

	form *huh.Form
	err  error

	username      *string
	category      *model.Category
	priority      *model.Priority
	notifications *bool
}

func newOnboardingModel(d Deps) onboardingModel {
	name := ""
	cat, prio := model.CategoryPersonal, model.PriorityMedium
	notify := true
	return onboardingModel{
		deps:          d,
		username:      &name,
		category:      &cat,
		priority:      &prio,
		notifications: &notify,
	}
}

func (o *onboardingModel) setSize(w, h int) {
	o.width = w
	o.height = h
}

func (o onboardingModel) lastPage() bool {
	return o.page == len(onboardingPages)-1
}

func (o onboardingModel) update(msg tea.Msg) (onboardingModel, tea.Cmd) {
	if o.lastPage() && o.form != nil {
		return o.updateForm(msg)
	}

	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return o, nil
	}
	switch {
	case key.Matches(km, keys.Right), key.Matches(km, keys.Enter):
		o.page++
		if o.lastPage() {
			return o.showForm()
		}
	case key.Matches(km, keys.Left):
		if o.page > 0 {
			o.page--
		}
	}
	return o, nil
}

func (o onboardingModel) showForm() (onboardingModel, tea.Cmd) {
	o.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("What should we call you?").Value(o.username).Validate(required("name")),
			huh.NewSelect[model.Category]().Title("Default task category").Options(categoryOptions()...).Value(o.category),
			huh.NewSelect[model.Priority]().Title("Default task priority").Options(priorityOptions()...).Value(o.priority),
			huh.NewConfirm().Title("Enable notifications").Description("Get reminded about your tasks").Value(o.notifications),
		),
	).WithShowHelp(true).WithShowErrors(true)
	return o, o.form.Init()
}

func (o onboardingModel) updateForm(msg tea.Msg) (onboardingModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.String() == "esc" {
		o.form = nil
		o.page--
		return o, nil
	}

	form, cmd := o.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		o.form = f
	}

	if o.form.State == huh.StateCompleted {
		err := o.deps.Profile.CompleteOnboarding(profile.Onboarding{
			Username:             *o.username,
			DefaultCategory:      *o.category,
			DefaultPriority:      *o.priority,
			NotificationsEnabled: *o.notifications,
		}, o.deps.Notifier)
		if err != nil {
			o.err = err
			return o.showForm()
		}
		return o, func() tea.Msg { return onboardingDoneMsg{} }
	}
	return o, cmd
}

func (o onboardingModel) dots() string {
	var b strings.Builder
	for i := range onboardingPages {
		if i == o.page {
			b.WriteString(accentStyle.Render("●"))
		} else {
			b.WriteString(mutedStyle.Render("○"))
		}
		b.WriteString(" ")
	}
	return b.String()
}

func (o onboardingModel) view() string {
	p := onboardingPages[o.page]
	icon := lipgloss.NewStyle().Foreground(p.color).Bold(true).Render(p.icon)
	title := lipgloss.NewStyle().Foreground(p.color).Bold(true).Render(p.title)
	body := lipgloss.NewStyle().Foreground(colorFg).Width(min(60, max(20, o.width-10))).Align(lipgloss.Center).Render(p.body)

	parts := []string{icon, "", title, "", body, ""}
	if o.lastPage() && o.form != nil {
		parts = append(parts, subtitleStyle.Render("Let's Personalize"), "", o.form.View())
		if o.err != nil {
			parts = append(parts, errorStyle.Render(o.err.Error()))
		}
	} else {
		parts = append(parts, mutedStyle.Render("←/→: back/next  enter: continue  ctrl+c: quit"))
	}
	parts = append(parts, "", o.dots())

	content := activePanelStyle.Padding(1, 4).Render(
		lipgloss.JoinVertical(lipgloss.Center, parts...),
	)
	return lipgloss.Place(o.width, o.height, lipgloss.Center, lipgloss.Center, content)
}
