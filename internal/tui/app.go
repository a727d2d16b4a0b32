package tui

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/taskgenius/internal/automation"
	"github.com/sadopc/taskgenius/internal/export"
	"github.com/sadopc/taskgenius/internal/profile"
	"github.com/sadopc/taskgenius/internal/tasks"
)

// Deps are the stores and services the UI drives. All of them are used
// from the Bubble Tea update loop only.
type Deps struct {
	Tasks     *tasks.Store
	Rules     *automation.RuleStore
	Profile   *profile.Store
	Evaluator *automation.Evaluator

	// Inbox collects notifications for the status bar.
	Inbox *automation.Recorder
	// Notifier is asked for permission at the end of onboarding.
	Notifier automation.Notifier

	ExportDir string
	Now       func() time.Time
}

// App is the root Bubble Tea model.
type App struct {
	deps   Deps
	width  int
	height int

	activeView    viewState
	showHelp      bool
	exportPicking bool
	exportCursor  int

	onboarding *onboardingModel
	today      todayModel
	tasks      tasksModel
	templates  templatesModel
	automation automationModel
	reports    reportsModel
	settings   settingsModel

	help   help.Model
	status string
	banner string
}

func NewApp(d Deps) App {
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Inbox == nil {
		d.Inbox = &automation.Recorder{}
	}
	h := help.New()
	h.ShowAll = false

	a := App{
		deps:       d,
		activeView: viewToday,
		today:      newTodayModel(d),
		tasks:      newTasksModel(d),
		templates:  newTemplatesModel(d),
		automation: newAutomationModel(d),
		reports:    newReportsModel(d),
		settings:   newSettingsModel(d),
		help:       h,
	}
	if !d.Profile.OnboardingComplete() {
		o := newOnboardingModel(d)
		a.onboarding = &o
	}
	return a
}

func (a App) Init() tea.Cmd {
	return evalTickCmd(a.deps.Evaluator.Interval())
}

// evalTickCmd fires on the next multiple of every on the wall clock, so
// minute-based rules see each minute once.
func evalTickCmd(every time.Duration) tea.Cmd {
	return tea.Every(every, func(t time.Time) tea.Msg {
		return evalTickMsg(t)
	})
}

// Update handles msg and then surfaces any notifications raised while
// handling it.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	model, cmd := a.update(msg)
	app := model.(App)
	if sent := app.deps.Inbox.Drain(); len(sent) > 0 {
		app.banner = formatBanner(sent)
	}
	return app, cmd
}

func (a App) update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		contentHeight := a.height - 4 // header + footer
		a.today.setSize(a.width, contentHeight)
		a.tasks.setSize(a.width, contentHeight)
		a.templates.setSize(a.width, contentHeight)
		a.automation.setSize(a.width, contentHeight)
		a.reports.setSize(a.width, contentHeight)
		a.settings.setSize(a.width, contentHeight)
		if a.onboarding != nil {
			a.onboarding.setSize(a.width, a.height)
		}
		return a, nil

	case evalTickMsg:
		a.deps.Evaluator.Tick(time.Time(msg))
		return a, evalTickCmd(a.deps.Evaluator.Interval())

	case onboardingDoneMsg:
		a.onboarding = nil
		a.status = "Welcome, " + a.deps.Profile.Profile().Username
		a.settings.refresh()
		return a, nil

	case prefsChangedMsg:
		a.tasks.sortOrder = msg.prefs.SortOrder
		a.tasks.showCompleted = msg.prefs.ShowCompletedTasks
		a.tasks = a.tasks.clamp()
		return a, nil

	case resetDoneMsg:
		return a, tea.Quit

	case statusMsg:
		a.status = msg.text
		return a, nil

	case exportDoneMsg:
		a.status = "Exported to " + msg.path
		a.exportPicking = false
		return a, nil
	}

	if a.onboarding != nil {
		if msg, ok := msg.(tea.KeyMsg); ok && msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		o, cmd := a.onboarding.update(msg)
		a.onboarding = &o
		return a, cmd
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		// Export picker
		if a.exportPicking {
			return a.updateExportPicker(msg)
		}

		// If a child view is capturing input (e.g. form), delegate first.
		if a.isFormActive() {
			return a.updateActiveView(msg)
		}

		a.banner = ""
		switch {
		case key.Matches(msg, keys.Export):
			a.exportPicking = true
			a.exportCursor = 0
			return a, nil
		case key.Matches(msg, keys.Quit):
			return a, tea.Quit
		case key.Matches(msg, keys.Help):
			a.showHelp = !a.showHelp
			a.help.ShowAll = a.showHelp
			return a, nil
		case key.Matches(msg, keys.Tab1):
			return a.switchTo(viewToday), nil
		case key.Matches(msg, keys.Tab2):
			return a.switchTo(viewTasks), nil
		case key.Matches(msg, keys.Tab3):
			return a.switchTo(viewTemplates), nil
		case key.Matches(msg, keys.Tab4):
			return a.switchTo(viewAutomation), nil
		case key.Matches(msg, keys.Tab5):
			return a.switchTo(viewReports), nil
		case key.Matches(msg, keys.Tab6):
			return a.switchTo(viewSettings), nil
		case key.Matches(msg, keys.Tab) && a.activeView != viewReports:
			return a.switchTo((a.activeView + 1) % viewState(len(viewNames))), nil
		}
	}

	return a.updateActiveView(msg)
}

func (a App) switchTo(v viewState) App {
	a.activeView = v
	switch v {
	case viewReports:
		a.reports.refresh()
	case viewSettings:
		a.settings.refresh()
	}
	return a
}

func (a App) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.activeView {
	case viewToday:
		a.today, cmd = a.today.update(msg)
	case viewTasks:
		a.tasks, cmd = a.tasks.update(msg)
	case viewTemplates:
		a.templates, cmd = a.templates.update(msg)
	case viewAutomation:
		a.automation, cmd = a.automation.update(msg)
	case viewReports:
		a.reports, cmd = a.reports.update(msg)
	case viewSettings:
		a.settings, cmd = a.settings.update(msg)
	}
	return a, cmd
}

func (a App) isFormActive() bool {
	switch a.activeView {
	case viewTasks:
		return a.tasks.formActive
	case viewTemplates:
		return a.templates.formActive
	case viewAutomation:
		return a.automation.formActive
	case viewSettings:
		return a.settings.formActive
	}
	return false
}

func (a App) View() string {
	if a.width == 0 {
		return "Loading..."
	}
	if a.onboarding != nil {
		return a.onboarding.view()
	}

	header := a.renderHeader()
	footer := a.renderFooter()

	var content string
	switch a.activeView {
	case viewToday:
		content = a.today.view()
	case viewTasks:
		content = a.tasks.view()
	case viewTemplates:
		content = a.templates.view()
	case viewAutomation:
		content = a.automation.view()
	case viewReports:
		content = a.reports.view()
	case viewSettings:
		content = a.settings.view()
	}

	// Calculate available height for content
	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := a.height - headerHeight - footerHeight
	if contentHeight < 1 {
		contentHeight = 1
	}

	// Show export picker overlay
	if a.exportPicking {
		content = a.renderExportPicker()
	}

	content = lipgloss.NewStyle().
		Width(a.width).
		Height(contentHeight).
		MaxHeight(contentHeight).
		Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func (a App) renderHeader() string {
	var tabs []string
	for i, name := range viewNames {
		if viewState(i) == a.activeView {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}

	tabRow := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	title := lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Render("taskgenius")
	gap := a.width - lipgloss.Width(title) - lipgloss.Width(tabRow) - 4
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return headerStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Bottom, title, spacer, tabRow),
	)
}

func (a App) renderFooter() string {
	helpView := a.help.View(keys)

	right := ""
	if a.banner != "" {
		right = bannerStyle.Render(" 🔔 " + a.banner)
	} else if a.status != "" {
		right = mutedStyle.Render(" " + a.status)
	}

	left := footerStyle.Render(helpView)

	gap := a.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, right)
}

func formatBanner(sent []automation.Notification) string {
	last := sent[len(sent)-1]
	text := last.Title + ": " + last.Body
	if len(sent) > 1 {
		text += fmt.Sprintf(" (+%d more)", len(sent)-1)
	}
	return text
}

var exportFormats = []string{"JSON (everything)", "CSV (tasks)"}

func (a App) renderExportPicker() string {
	title := titleStyle.Render("Export Format")
	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")
	for i, f := range exportFormats {
		cursor := "  "
		style := normalItemStyle
		if i == a.exportCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(cursor+f))
	}
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  enter: export  esc: cancel"))

	w := a.width - 4
	return activePanelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (a App) updateExportPicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if a.exportCursor > 0 {
			a.exportCursor--
		}
	case key.Matches(msg, keys.Down):
		if a.exportCursor < len(exportFormats)-1 {
			a.exportCursor++
		}
	case key.Matches(msg, keys.Enter):
		a.exportPicking = false
		return a, a.doExport(a.exportCursor)
	case key.Matches(msg, keys.Back):
		a.exportPicking = false
	}
	return a, nil
}

// doExport snapshots the stores now and writes the file off the update
// loop.
func (a App) doExport(format int) tea.Cmd {
	now := a.deps.Now()
	dateStr := now.Format("2006-01-02")
	taskList := a.deps.Tasks.Tasks()

	if format == 1 {
		path := filepath.Join(a.deps.ExportDir, fmt.Sprintf("taskgenius-tasks-%s.csv", dateStr))
		return func() tea.Msg {
			if err := export.TasksToCSV(taskList, path); err != nil {
				return errStatus("CSV error", err)
			}
			return exportDoneMsg{path: path}
		}
	}

	bundle := export.NewBundle(a.deps.Profile.Profile(), taskList, a.deps.Tasks.Templates(), a.deps.Rules.Rules(), now)
	path := filepath.Join(a.deps.ExportDir, fmt.Sprintf("taskgenius-export-%s.json", dateStr))
	return func() tea.Msg {
		if err := export.ToJSON(bundle, path); err != nil {
			return errStatus("JSON error", err)
		}
		return exportDoneMsg{path: path}
	}
}
