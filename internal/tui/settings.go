package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/taskgenius/internal/model"
)

type settingsModel struct {
	deps   Deps
	width  int
	height int

	profile    model.UserProfile
	formActive bool
	form       *huh.Form
	formType   string // "edit", "reset"

	// Form values as pointers (survive value copies)
	username *string
	email    *string
	prefs    *model.Preferences
	confirm  *bool
}

func newSettingsModel(d Deps) settingsModel {
	name, email, confirm := "", "", false
	prefs := model.DefaultPreferences()
	return settingsModel{
		deps:     d,
		profile:  d.Profile.Profile(),
		username: &name,
		email:    &email,
		prefs:    &prefs,
		confirm:  &confirm,
	}
}

func (s *settingsModel) setSize(w, h int) {
	s.width = w
	s.height = h
}

func (s *settingsModel) refresh() {
	s.profile = s.deps.Profile.Profile()
}

func (s settingsModel) update(msg tea.Msg) (settingsModel, tea.Cmd) {
	if s.formActive && s.form != nil {
		return s.updateForm(msg)
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, keys.Enter), key.Matches(msg, keys.Edit):
			return s.showForm()
		case key.Matches(msg, keys.Reset):
			return s.showResetForm()
		}
	}
	return s, nil
}

func (s settingsModel) showForm() (settingsModel, tea.Cmd) {
	s.refresh()
	*s.username = s.profile.Username
	*s.email = ""
	if s.profile.Email != nil {
		*s.email = *s.profile.Email
	}
	*s.prefs = s.profile.Preferences

	themes := make([]huh.Option[model.Theme], len(model.Themes))
	for i, t := range model.Themes {
		themes[i] = huh.NewOption(string(t), t)
	}
	orders := make([]huh.Option[model.SortOrder], len(model.SortOrders))
	for i, o := range model.SortOrders {
		orders[i] = huh.NewOption(string(o), o)
	}

	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Username").Value(s.username).Validate(required("username")),
			huh.NewInput().Title("Email (optional)").Value(s.email),
		).Title("Profile"),
		huh.NewGroup(
			huh.NewSelect[model.Priority]().Title("Default priority").Options(priorityOptions()...).Value(&s.prefs.DefaultTaskPriority),
			huh.NewSelect[model.Category]().Title("Default category").Options(categoryOptions()...).Value(&s.prefs.DefaultTaskCategory),
			huh.NewSelect[model.SortOrder]().Title("Sort tasks by").Options(orders...).Value(&s.prefs.SortOrder),
			huh.NewConfirm().Title("Show completed tasks?").Value(&s.prefs.ShowCompletedTasks),
		).Title("Tasks"),
		huh.NewGroup(
			huh.NewSelect[model.Theme]().Title("Theme").Options(themes...).Value(&s.prefs.Theme),
			huh.NewConfirm().Title("Notifications").Value(&s.prefs.NotificationsEnabled),
			huh.NewConfirm().Title("Sound").Value(&s.prefs.SoundEnabled),
		).Title("General"),
	).WithShowHelp(true).WithShowErrors(true)

	s.formType = "edit"
	s.formActive = true
	return s, s.form.Init()
}

func (s settingsModel) showResetForm() (settingsModel, tea.Cmd) {
	*s.confirm = false
	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Reset all data?").
				Description("Deletes every task, template, rule and your profile. The app will exit.").
				Affirmative("Reset").
				Negative("Cancel").
				Value(s.confirm),
		),
	)
	s.formType = "reset"
	s.formActive = true
	return s, s.form.Init()
}

func (s settingsModel) updateForm(msg tea.Msg) (settingsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			s.formActive = false
			s.form = nil
			return s, nil
		}
	}

	form, cmd := s.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.form = f
	}

	if s.form.State == huh.StateCompleted {
		s.formActive = false
		if s.formType == "reset" {
			return s.reset()
		}
		return s.save()
	}

	return s, cmd
}

func (s settingsModel) save() (settingsModel, tea.Cmd) {
	p := s.deps.Profile
	wasEnabled := s.profile.Preferences.NotificationsEnabled

	if err := p.UpdateUsername(*s.username); err != nil {
		return s, statusCmd(errStatus("Settings", err))
	}
	if err := p.UpdateEmail(*s.email); err != nil {
		return s, statusCmd(errStatus("Settings", err))
	}
	if err := p.SetPreferences(*s.prefs); err != nil {
		return s, statusCmd(errStatus("Settings", err))
	}
	if s.prefs.NotificationsEnabled && !wasEnabled && s.deps.Notifier != nil {
		s.deps.Notifier.RequestPermission()
	}
	s.refresh()
	prefs := s.profile.Preferences
	return s, tea.Batch(
		statusCmd(statusMsg{text: "Settings saved"}),
		func() tea.Msg { return prefsChangedMsg{prefs: prefs} },
	)
}

func (s settingsModel) reset() (settingsModel, tea.Cmd) {
	if !*s.confirm {
		return s, nil
	}
	if err := s.deps.Profile.Reset(); err != nil {
		return s, statusCmd(errStatus("Reset failed", err))
	}
	return s, func() tea.Msg { return resetDoneMsg{} }
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func (s settingsModel) view() string {
	w := s.width - 4

	if s.formActive && s.form != nil {
		title := titleStyle.Render("Settings")
		if s.formType == "reset" {
			title = errorStyle.Bold(true).Render("Reset")
		}
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", s.form.View()),
		)
	}

	p := s.profile
	email := "-"
	if p.Email != nil {
		email = *p.Email
	}

	row := func(label, value string) string {
		return fmt.Sprintf("  %s %s", lipgloss.NewStyle().Width(24).Render(label), highlightStyle.Render(value))
	}

	rows := []string{
		titleStyle.Render("Settings"),
		"",
		subtitleStyle.Render("Profile"),
		row("Username", p.Username),
		row("Email", email),
		row("Member since", p.ProfileCreatedAt.Format("Jan 02, 2006")),
		"",
		subtitleStyle.Render("Preferences"),
		row("Default priority", string(p.Preferences.DefaultTaskPriority)),
		row("Default category", string(p.Preferences.DefaultTaskCategory)),
		row("Sort tasks by", string(p.Preferences.SortOrder)),
		row("Show completed", onOff(p.Preferences.ShowCompletedTasks)),
		row("Theme", string(p.Preferences.Theme)),
		row("Notifications", onOff(p.Preferences.NotificationsEnabled)),
		row("Sound", onOff(p.Preferences.SoundEnabled)),
		"",
		mutedStyle.Render("Press enter to edit settings, R to reset all data"),
	}

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}
