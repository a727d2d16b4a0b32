package tui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sadopc/taskgenius/internal/automation"
	"github.com/sadopc/taskgenius/internal/model"
	"github.com/sadopc/taskgenius/internal/profile"
	"github.com/sadopc/taskgenius/internal/store"
	"github.com/sadopc/taskgenius/internal/tasks"
)

// Tuesday morning.
var testNow = time.Date(2025, 6, 10, 9, 30, 0, 0, time.Local)

func newTestDeps(t *testing.T) Deps {
	t.Helper()
	db, err := store.NewMemory()
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	now := func() time.Time { return testNow }
	ts, err := tasks.New(db, tasks.WithClock(now))
	if err != nil {
		t.Fatal(err)
	}
	rs, err := automation.NewRuleStore(db, now)
	if err != nil {
		t.Fatal(err)
	}
	inbox := &automation.Recorder{}
	return Deps{
		Tasks:     ts,
		Rules:     rs,
		Profile:   profile.New(db, now),
		Evaluator: automation.NewEvaluator(ts, rs, inbox, automation.WithNow(now)),
		Inbox:     inbox,
		Notifier:  inbox,
		ExportDir: t.TempDir(),
		Now:       now,
	}
}

// newTestApp returns a sized app past onboarding.
func newTestApp(t *testing.T) (App, Deps) {
	t.Helper()
	d := newTestDeps(t)
	if err := d.Profile.CompleteOnboarding(profile.Onboarding{Username: "ada"}, nil); err != nil {
		t.Fatal(err)
	}
	return send(NewApp(d), tea.WindowSizeMsg{Width: 120, Height: 40}), d
}

func send(a App, msg tea.Msg) App {
	m, _ := a.Update(msg)
	return m.(App)
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

var (
	space = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	enter = tea.KeyMsg{Type: tea.KeyEnter}
	right = tea.KeyMsg{Type: tea.KeyRight}
	tab   = tea.KeyMsg{Type: tea.KeyTab}
)

func addTask(t *testing.T, d Deps, title string, due *time.Time) model.Task {
	t.Helper()
	task := model.NewTask(title, "", testNow)
	task.DueDate = due
	if err := d.Tasks.Add(task); err != nil {
		t.Fatal(err)
	}
	return task
}

func complete(t *testing.T, d Deps, id string) {
	t.Helper()
	if err := d.Tasks.ToggleCompletion(id); err != nil {
		t.Fatal(err)
	}
}

// ============================================================
// Helper functions
// ============================================================

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "00:00:00"},
		{time.Second, "00:00:01"},
		{time.Minute, "00:01:00"},
		{time.Hour + time.Minute + time.Second, "01:01:01"},
		{25 * time.Hour, "25:00:00"},
		{-time.Hour, "00:00:00"},
	}
	for _, tt := range tests {
		got := formatDuration(tt.d)
		if got != tt.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestFormatDue(t *testing.T) {
	at := func(days int) *time.Time {
		d := testNow.AddDate(0, 0, days)
		return &d
	}
	tests := []struct {
		due  *time.Time
		want string
	}{
		{nil, ""},
		{at(0), "today"},
		{at(1), "tomorrow"},
		{at(-1), "yesterday"},
		{at(-3), "3d ago"},
		{at(3), at(3).Format("Mon")},
		{at(30), at(30).Format("Jan 02")},
	}
	for _, tt := range tests {
		if got := formatDue(tt.due, testNow); got != tt.want {
			t.Errorf("formatDue(%v) = %q, want %q", tt.due, got, tt.want)
		}
	}
}

func TestParseDue(t *testing.T) {
	due, err := parseDue("  ", time.Local)
	if err != nil || due != nil {
		t.Fatalf("empty input = %v, %v; want nil, nil", due, err)
	}

	due, err = parseDue("2025-06-12", time.Local)
	if err != nil {
		t.Fatal(err)
	}
	if due.Year() != 2025 || due.Month() != time.June || due.Day() != 12 || due.Location() != time.Local {
		t.Fatalf("parsed %v", due)
	}

	if _, err := parseDue("12/06/2025", time.Local); err == nil {
		t.Fatal("expected error for wrong layout")
	}
}

func TestSplitTags(t *testing.T) {
	got := splitTags(" a, b ,,c ,")
	if strings.Join(got, "|") != "a|b|c" {
		t.Fatalf("splitTags = %q", got)
	}
	if got := splitTags(""); got == nil || len(got) != 0 {
		t.Fatalf("splitTags(\"\") = %#v, want empty non-nil", got)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		s    string
		n    int
		want string
	}{
		{"hello", 10, "hello"},
		{"hello", 5, "hello"},
		{"hello", 4, "hel…"},
		{"hello", 1, "…"},
		{"hello", 0, ""},
		{"héllo wörld", 6, "héllo…"},
	}
	for _, tt := range tests {
		if got := truncate(tt.s, tt.n); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.s, tt.n, got, tt.want)
		}
	}
}

func TestFormatBanner(t *testing.T) {
	one := []automation.Notification{{Title: "Hi", Body: "there"}}
	if got := formatBanner(one); got != "Hi: there" {
		t.Fatalf("formatBanner = %q", got)
	}
	two := append(one, automation.Notification{Title: "Last", Body: "one"})
	if got := formatBanner(two); got != "Last: one (+1 more)" {
		t.Fatalf("formatBanner = %q", got)
	}
}

// ============================================================
// View state
// ============================================================

func TestViewNames(t *testing.T) {
	expected := []string{"Today", "Tasks", "Templates", "Automation", "Reports", "Settings"}
	if len(viewNames) != len(expected) {
		t.Fatalf("expected %d view names, got %d", len(expected), len(viewNames))
	}
	for i, name := range expected {
		if viewNames[i] != name {
			t.Fatalf("viewNames[%d] = %q, want %q", i, viewNames[i], name)
		}
	}
}

func TestViewStateConstants(t *testing.T) {
	if viewToday != 0 || viewTasks != 1 || viewTemplates != 2 || viewAutomation != 3 || viewReports != 4 || viewSettings != 5 {
		t.Fatal("view state constants out of order")
	}
}

// ============================================================
// App model
// ============================================================

func TestNewAppShowsOnboarding(t *testing.T) {
	d := newTestDeps(t)
	app := NewApp(d)

	if app.onboarding == nil {
		t.Fatal("onboarding should show on first run")
	}
	app = send(app, tea.WindowSizeMsg{Width: 120, Height: 40})
	if !strings.Contains(app.View(), "Welcome to "+model.AppName) {
		t.Fatal("first onboarding page should be the welcome page")
	}
}

func TestNewAppSkipsOnboardingWhenComplete(t *testing.T) {
	app, _ := newTestApp(t)

	if app.onboarding != nil {
		t.Fatal("onboarding should not show after completion")
	}
	if app.activeView != viewToday {
		t.Fatal("default view should be today")
	}
	if app.showHelp || app.exportPicking {
		t.Fatal("overlays should be hidden by default")
	}
	if app.isFormActive() {
		t.Fatal("no forms should be active initially")
	}
}

func TestOnboardingPages(t *testing.T) {
	d := newTestDeps(t)
	app := send(NewApp(d), tea.WindowSizeMsg{Width: 120, Height: 40})

	for i := 1; i < len(onboardingPages); i++ {
		app = send(app, right)
		if app.onboarding.page != i {
			t.Fatalf("after %d presses page = %d", i, app.onboarding.page)
		}
	}
	if app.onboarding.form == nil {
		t.Fatal("last page should show the personalisation form")
	}

	// Further presses go to the form, not past the last page.
	app = send(app, right)
	if app.onboarding.page != len(onboardingPages)-1 {
		t.Fatalf("page = %d", app.onboarding.page)
	}
}

func TestOnboardingEscLeavesForm(t *testing.T) {
	d := newTestDeps(t)
	app := NewApp(d)
	for range onboardingPages {
		app = send(app, right)
	}
	app = send(app, tea.KeyMsg{Type: tea.KeyEsc})
	if app.onboarding.form != nil || app.onboarding.lastPage() {
		t.Fatal("esc should go back from the form page")
	}
}

func TestOnboardingDone(t *testing.T) {
	d := newTestDeps(t)
	app := NewApp(d)
	if err := d.Profile.CompleteOnboarding(profile.Onboarding{Username: "grace"}, nil); err != nil {
		t.Fatal(err)
	}

	app = send(app, onboardingDoneMsg{})
	if app.onboarding != nil {
		t.Fatal("onboarding overlay should close")
	}
	if app.status != "Welcome, grace" {
		t.Fatalf("status = %q", app.status)
	}
	if app.settings.profile.Username != "grace" {
		t.Fatal("settings should pick up the new profile")
	}
}

func TestAppViewStates(t *testing.T) {
	app, d := newTestApp(t)
	due := testNow.Add(-time.Hour)
	addTask(t, d, "overdue", &due)

	for v := range viewNames {
		app = app.switchTo(viewState(v))
		if output := app.View(); output == "" {
			t.Fatalf("view %d rendered empty", v)
		}
	}
}

func TestAppLoadingState(t *testing.T) {
	app := NewApp(newTestDeps(t))
	if output := app.View(); output != "Loading..." {
		t.Fatalf("expected 'Loading...', got %q", output)
	}
}

func TestAppRenderHeaderContainsAllTabs(t *testing.T) {
	app, _ := newTestApp(t)

	header := app.renderHeader()
	for _, name := range viewNames {
		if !strings.Contains(header, name) {
			t.Fatalf("header missing tab %q", name)
		}
	}
}

func TestAppStatusMessage(t *testing.T) {
	app, _ := newTestApp(t)
	app = send(app, statusMsg{text: "test status"})

	if !strings.Contains(app.renderFooter(), "test status") {
		t.Fatal("footer should contain status message")
	}
}

func TestAppNumberKeysSwitchViews(t *testing.T) {
	app, _ := newTestApp(t)

	for i := range viewNames {
		app = send(app, runes(string(rune('1'+i))))
		if app.activeView != viewState(i) {
			t.Fatalf("key %d: activeView = %d", i+1, app.activeView)
		}
	}
}

func TestAppTabCyclesViews(t *testing.T) {
	app, _ := newTestApp(t)

	app = send(app, tab)
	if app.activeView != viewTasks {
		t.Fatalf("activeView = %d, want tasks", app.activeView)
	}

	// Reports uses tab for its own range toggle.
	app = app.switchTo(viewReports)
	app = send(app, tab)
	if app.activeView != viewReports {
		t.Fatal("tab should stay on reports")
	}
	if app.reports.mode != reportMonth {
		t.Fatal("tab should toggle the reports range")
	}
}

func TestAppExportPicker(t *testing.T) {
	app, _ := newTestApp(t)

	app = send(app, runes("x"))
	if !app.exportPicking {
		t.Fatal("x should open the export picker")
	}
	app = send(app, tea.KeyMsg{Type: tea.KeyEsc})
	if app.exportPicking {
		t.Fatal("esc should close the export picker")
	}
}

func TestAppExportWritesFile(t *testing.T) {
	app, d := newTestApp(t)
	addTask(t, d, "ship it", nil)

	for format := range exportFormats {
		msg := app.doExport(format)()
		done, ok := msg.(exportDoneMsg)
		if !ok {
			t.Fatalf("format %d: got %#v", format, msg)
		}
		if !strings.HasPrefix(done.path, d.ExportDir) || !strings.Contains(done.path, "2025-06-10") {
			t.Fatalf("path = %q", done.path)
		}
	}
}

func TestAppBannerFromNotifications(t *testing.T) {
	app, d := newTestApp(t)
	d.Evaluator.Attach()
	defer d.Evaluator.Detach()

	due := testNow.Add(-time.Hour)
	addTask(t, d, "overdue", &due)

	// Completing a task fires the default congratulation rule.
	app = send(app, space)
	if !strings.Contains(app.banner, "Great Job!") {
		t.Fatalf("banner = %q", app.banner)
	}
	if len(d.Inbox.Sent) != 0 {
		t.Fatal("inbox should be drained")
	}

	// Any plain key clears the banner.
	app = send(app, runes("2"))
	if app.banner != "" {
		t.Fatal("banner should clear on next key")
	}
}

func TestAppEvalTick(t *testing.T) {
	app, _ := newTestApp(t)
	at := time.Date(2025, 6, 10, 9, 0, 0, 0, time.Local)

	m, cmd := app.Update(evalTickMsg(at))
	app = m.(App)
	if cmd == nil {
		t.Fatal("tick should schedule the next tick")
	}
	// The default morning rule fires at 09:00.
	if !strings.Contains(app.banner, "Good Morning!") {
		t.Fatalf("banner = %q", app.banner)
	}
}

func TestEvalTickAlignsToClock(t *testing.T) {
	const every = 100 * time.Millisecond
	msg := evalTickCmd(every)()
	at, ok := msg.(evalTickMsg)
	if !ok {
		t.Fatalf("msg = %T, want evalTickMsg", msg)
	}
	tick := time.Time(at)
	if off := tick.Sub(tick.Truncate(every)); off > every/2 {
		t.Fatalf("tick %v is %v past the boundary", tick, off)
	}
}

func TestAppResetQuits(t *testing.T) {
	app, _ := newTestApp(t)
	_, cmd := app.Update(resetDoneMsg{})
	if cmd == nil {
		t.Fatal("reset should quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("reset should return tea.Quit")
	}
}

func TestAppPrefsChanged(t *testing.T) {
	app, _ := newTestApp(t)
	prefs := model.DefaultPreferences()
	prefs.SortOrder = model.SortAlphabetical
	prefs.ShowCompletedTasks = false

	app = send(app, prefsChangedMsg{prefs: prefs})
	if app.tasks.sortOrder != model.SortAlphabetical || app.tasks.showCompleted {
		t.Fatal("task list should follow saved preferences")
	}
}

// ============================================================
// Today model
// ============================================================

func TestTodayFocusOrder(t *testing.T) {
	_, d := newTestApp(t)
	later := testNow.Add(2 * time.Hour)
	yesterday := testNow.AddDate(0, 0, -1)
	nextWeek := testNow.AddDate(0, 0, 7)
	addTask(t, d, "later today", &later)
	addTask(t, d, "late", &yesterday)
	addTask(t, d, "someday", &nextWeek)
	addTask(t, d, "no date", nil)

	focus := newTodayModel(d).focus()
	if len(focus) != 2 {
		t.Fatalf("focus has %d tasks, want 2", len(focus))
	}
	if focus[0].Title != "late" || focus[1].Title != "later today" {
		t.Fatalf("focus order = %q, %q", focus[0].Title, focus[1].Title)
	}
}

func TestTodayToggle(t *testing.T) {
	_, d := newTestApp(t)
	due := testNow.Add(time.Hour)
	task := addTask(t, d, "water plants", &due)

	m := newTodayModel(d)
	m, cmd := m.update(space)
	if cmd == nil {
		t.Fatal("toggle should report status")
	}
	got, _ := d.Tasks.Task(task.ID)
	if !got.IsCompleted {
		t.Fatal("task should be completed")
	}
	if len(m.focus()) != 0 {
		t.Fatal("completed task should leave the focus list")
	}
}

func TestTodayView(t *testing.T) {
	_, d := newTestApp(t)
	m := newTodayModel(d)
	m.setSize(120, 36)
	if !strings.Contains(m.view(), "ada") {
		t.Fatal("today view should greet the user")
	}
}

// ============================================================
// Tasks model
// ============================================================

func TestNextCategoryCycles(t *testing.T) {
	var c *model.Category
	for i := range model.Categories {
		c = nextCategory(c)
		if c == nil || *c != model.Categories[i] {
			t.Fatalf("step %d = %v", i, c)
		}
	}
	if nextCategory(c) != nil {
		t.Fatal("should wrap back to all categories")
	}
}

func TestNextSortOrderWraps(t *testing.T) {
	last := model.SortOrders[len(model.SortOrders)-1]
	if nextSortOrder(last) != model.SortOrders[0] {
		t.Fatal("sort order should wrap")
	}
	if nextSortOrder(model.SortOrders[0]) != model.SortOrders[1] {
		t.Fatal("sort order should advance")
	}
}

func TestTasksRowsFollowFilter(t *testing.T) {
	_, d := newTestApp(t)
	a := addTask(t, d, "alpha", nil)
	addTask(t, d, "beta", nil)
	complete(t, d, a.ID)

	m := newTasksModel(d)
	m.sortOrder = model.SortAlphabetical
	if len(m.rows()) != 2 {
		t.Fatalf("rows = %d, want 2", len(m.rows()))
	}

	m, _ = m.update(runes("c"))
	if rows := m.rows(); len(rows) != 1 || rows[0].Title != "beta" {
		t.Fatalf("hiding completed: %v", rows)
	}

	m.search = "zzz"
	if len(m.rows()) != 0 {
		t.Fatal("search should filter")
	}
	m, _ = m.update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.search != "" {
		t.Fatal("esc should clear the search")
	}
}

func TestTasksToggleAndDelete(t *testing.T) {
	_, d := newTestApp(t)
	task := addTask(t, d, "only", nil)

	m := newTasksModel(d)
	m, _ = m.update(space)
	if got, _ := d.Tasks.Task(task.ID); !got.IsCompleted {
		t.Fatal("space should toggle completion")
	}

	m, _ = m.update(runes("d"))
	if _, ok := d.Tasks.Task(task.ID); ok {
		t.Fatal("d should delete the task")
	}
	if m.cursor != 0 {
		t.Fatalf("cursor = %d", m.cursor)
	}
}

func TestTasksPurgeCompleted(t *testing.T) {
	_, d := newTestApp(t)
	a := addTask(t, d, "a", nil)
	addTask(t, d, "b", nil)
	complete(t, d, a.ID)

	m := newTasksModel(d)
	m.update(runes("D"))
	if n := len(d.Tasks.Tasks()); n != 1 {
		t.Fatalf("tasks = %d, want 1", n)
	}
}

func TestTasksFormOpens(t *testing.T) {
	app, _ := newTestApp(t)
	app = send(app, runes("2"))
	app = send(app, runes("n"))

	if !app.isFormActive() {
		t.Fatal("n should open the task form")
	}
	if *app.tasks.formCategory != model.CategoryPersonal {
		t.Fatal("form should start from the default category")
	}

	// Keys go to the form, not the tabs.
	app = send(app, runes("3"))
	if app.activeView != viewTasks {
		t.Fatal("typing in a form must not switch views")
	}

	app = send(app, tea.KeyMsg{Type: tea.KeyEsc})
	if app.isFormActive() {
		t.Fatal("esc should cancel the form")
	}
}

func TestTasksEditFormPrefills(t *testing.T) {
	_, d := newTestApp(t)
	due := time.Date(2025, 6, 12, 0, 0, 0, 0, time.Local)
	task := model.NewTask("pay rent", "june", testNow)
	task.DueDate = &due
	task.Tags = []string{"home", "money"}
	if err := d.Tasks.Add(task); err != nil {
		t.Fatal(err)
	}

	m := newTasksModel(d)
	m, _ = m.update(runes("e"))
	if !m.formActive || m.formType != "edit_task" || m.editingID != task.ID {
		t.Fatal("e should open the edit form")
	}
	if *m.formTitle != "pay rent" || *m.formDue != "2025-06-12" || *m.formTags != "home, money" {
		t.Fatalf("prefill = %q %q %q", *m.formTitle, *m.formDue, *m.formTags)
	}
}

func TestTasksSaveEdit(t *testing.T) {
	_, d := newTestApp(t)
	task := addTask(t, d, "draft", nil)

	m := newTasksModel(d)
	m, _ = m.showTaskForm(&task)
	*m.formTitle = "final"
	*m.formDue = "2025-07-01"
	*m.formTags = "x, y"
	*m.formPriority = model.PriorityUrgent
	m, _ = m.saveTask()

	got, _ := d.Tasks.Task(task.ID)
	if got.Title != "final" || got.Priority != model.PriorityUrgent || got.DueDate == nil || len(got.Tags) != 2 {
		t.Fatalf("saved = %+v", got)
	}
	if got.CreatedAt != task.CreatedAt {
		t.Fatal("edit must keep the creation time")
	}
	if len(d.Tasks.Tasks()) != 1 {
		t.Fatal("edit must not add a task")
	}
}

// ============================================================
// Templates model
// ============================================================

func TestTemplatesEnterInstantiates(t *testing.T) {
	_, d := newTestApp(t)
	tp := d.Tasks.Templates()[0]

	m := newTemplatesModel(d)
	m.update(enter)

	all := d.Tasks.Tasks()
	if len(all) != 1 || all[0].Title != tp.TemplateTitle {
		t.Fatalf("tasks = %v", all)
	}
	if len(d.Tasks.Templates()) != 3 {
		t.Fatal("instantiating must keep the template")
	}
}

func TestTemplatesDelete(t *testing.T) {
	_, d := newTestApp(t)
	m := newTemplatesModel(d)
	m.cursor = 2
	m, _ = m.update(runes("d"))

	if len(d.Tasks.Templates()) != 2 {
		t.Fatal("d should delete the template")
	}
	if m.cursor != 1 {
		t.Fatalf("cursor = %d, want 1", m.cursor)
	}
}

// ============================================================
// Automation model
// ============================================================

func TestAutomationToggle(t *testing.T) {
	_, d := newTestApp(t)
	m := newAutomationModel(d)
	first := m.rules()[0]

	m.update(space)
	got, _ := d.Rules.Rule(first.ID)
	if got.IsActive {
		t.Fatal("space should pause the rule")
	}
	// Paused rules sort after active ones.
	rules := m.rules()
	if rules[len(rules)-1].ID != first.ID {
		t.Fatal("paused rule should move to the end")
	}
}

func TestAutomationDelete(t *testing.T) {
	_, d := newTestApp(t)
	m := newAutomationModel(d)
	n := len(d.Rules.Rules())

	m.update(runes("d"))
	if len(d.Rules.Rules()) != n-1 {
		t.Fatal("d should delete the rule")
	}
}

func TestRuleDraftConditions(t *testing.T) {
	d := newRuleDraft()
	d.trigger = model.TriggerCategoryBased
	d.category = model.CategoryWork
	d.action = model.ActionChangeCategory
	d.from = model.CategoryWork
	d.to = model.CategoryHealth
	d.taskTitle = "ignored"

	c := d.conditions()
	if len(c) != 3 || c[model.ParamCategory] != "Work" || c[model.ParamFromCategory] != "Work" || c[model.ParamToCategory] != "Health" {
		t.Fatalf("conditions = %v", c)
	}

	d = newRuleDraft()
	d.trigger = model.TriggerDayOfWeek
	d.weekday = 6
	d.action = model.ActionCreateTask
	d.taskTitle = "  "
	c = d.conditions()
	if c[model.ParamDay] != "6" {
		t.Fatalf("day = %q", c[model.ParamDay])
	}
	if _, ok := c[model.ParamTaskTitle]; ok {
		t.Fatal("blank optional params should be omitted")
	}
}

func TestSaveDraftPresets(t *testing.T) {
	_, d := newTestApp(t)
	m := newAutomationModel(d)
	before := len(d.Rules.Rules())

	m.draft.preset = presetDaily
	m.draft.clock = "07:15"
	r, err := m.saveDraft()
	if err != nil {
		t.Fatal(err)
	}
	if r.TriggerType != model.TriggerTimeOfDay || r.Conditions[model.ParamTime] != "07:15" {
		t.Fatalf("daily reminder = %+v", r)
	}

	m.draft = newRuleDraft()
	m.draft.name = "tidy"
	m.draft.trigger = model.TriggerTaskCompletion
	m.draft.action = model.ActionMarkComplete
	m.draft.target = model.CategoryShopping
	r, err = m.saveDraft()
	if err != nil {
		t.Fatal(err)
	}
	if r.Name != "tidy" || r.DecodeAction() == nil {
		t.Fatalf("custom rule = %+v", r)
	}
	if len(d.Rules.Rules()) != before+2 {
		t.Fatal("both rules should be stored")
	}
}

func TestValidClock(t *testing.T) {
	if validClock("09:30") != nil {
		t.Fatal("09:30 should be valid")
	}
	if validClock("9am") == nil {
		t.Fatal("9am should be rejected")
	}
}

func TestDescribeConditionsSorted(t *testing.T) {
	got := describeConditions(map[string]string{"time": "09:00", "notificationTitle": "Hi"})
	if got != "notificationTitle=Hi  time=09:00" {
		t.Fatalf("describeConditions = %q", got)
	}
}

// ============================================================
// Reports model
// ============================================================

func TestReportsRefresh(t *testing.T) {
	_, d := newTestApp(t)
	task := addTask(t, d, "done", nil)
	complete(t, d, task.ID)
	addTask(t, d, "open", nil)

	r := newReportsModel(d)
	r.setSize(120, 36)
	r.refresh()

	if r.stats.TotalTasksCreated != 2 || r.stats.TotalTasksCompleted != 1 || r.stats.CurrentStreak != 1 {
		t.Fatalf("stats = %+v", r.stats)
	}
	if len(r.days) != 7 || r.days[6].Count != 1 {
		t.Fatalf("days = %v", r.days)
	}
	if !model.SameDay(r.days[6].Date, testNow) {
		t.Fatal("the window should end today")
	}
	if cached := d.Profile.Profile().Stats; cached.TotalTasksCompleted != 1 {
		t.Fatal("refresh should cache stats on the profile")
	}
}

func TestReportsNavigation(t *testing.T) {
	_, d := newTestApp(t)
	r := newReportsModel(d)
	r.refresh()

	r, _ = r.update(tea.KeyMsg{Type: tea.KeyLeft})
	if r.offset != 1 || !model.SameDay(r.days[6].Date, testNow.AddDate(0, 0, -7)) {
		t.Fatalf("offset = %d, last day = %v", r.offset, r.days[6].Date)
	}
	r, _ = r.update(right)
	r, _ = r.update(right)
	if r.offset != 0 {
		t.Fatal("offset should not go into the future")
	}

	r, _ = r.update(tab)
	if len(r.days) != 30 {
		t.Fatalf("30-day mode has %d days", len(r.days))
	}
}

func TestByCount(t *testing.T) {
	got := byCount(map[string]int{"b": 1, "a": 1, "c": 5})
	if strings.Join(got, ",") != "c,a,b" {
		t.Fatalf("byCount = %v", got)
	}
}

// ============================================================
// Settings model
// ============================================================

func TestSettingsFormPrefills(t *testing.T) {
	_, d := newTestApp(t)
	s := newSettingsModel(d)
	s, _ = s.update(enter)

	if !s.formActive || s.formType != "edit" {
		t.Fatal("enter should open the settings form")
	}
	if *s.username != "ada" || *s.prefs != d.Profile.Profile().Preferences {
		t.Fatal("form should start from the stored profile")
	}
}

func TestSettingsSave(t *testing.T) {
	_, d := newTestApp(t)
	s := newSettingsModel(d)
	s, _ = s.showForm()
	*s.username = "lovelace"
	*s.email = "ada@example.com"
	s.prefs.Theme = model.ThemeDark

	s, cmd := s.save()
	if cmd == nil {
		t.Fatal("save should report status")
	}
	p := d.Profile.Profile()
	if p.Username != "lovelace" || p.Email == nil || p.Preferences.Theme != model.ThemeDark {
		t.Fatalf("profile = %+v", p)
	}
	if s.profile.Username != "lovelace" {
		t.Fatal("view should refresh after save")
	}
}

func TestSettingsResetNeedsConfirm(t *testing.T) {
	_, d := newTestApp(t)
	s := newSettingsModel(d)
	s, _ = s.update(runes("R"))
	if !s.formActive || s.formType != "reset" {
		t.Fatal("R should open the reset confirmation")
	}

	s, cmd := s.reset()
	if cmd != nil || !d.Profile.OnboardingComplete() {
		t.Fatal("declined reset must keep data")
	}

	*s.confirm = true
	_, cmd = s.reset()
	if cmd == nil {
		t.Fatal("confirmed reset should finish")
	}
	if _, ok := cmd().(resetDoneMsg); !ok {
		t.Fatal("reset should send resetDoneMsg")
	}
	if d.Profile.OnboardingComplete() {
		t.Fatal("reset should clear onboarding")
	}
}

// ============================================================
// Key bindings
// ============================================================

func TestKeyMapShortHelp(t *testing.T) {
	if len(keys.ShortHelp()) == 0 {
		t.Fatal("short help should have bindings")
	}
}

func TestKeyMapFullHelp(t *testing.T) {
	groups := keys.FullHelp()
	if len(groups) == 0 {
		t.Fatal("full help should have groups")
	}
	for i, g := range groups {
		if len(g) == 0 {
			t.Fatalf("full help group %d is empty", i)
		}
	}
}

// ============================================================
// Styles (smoke test — just verify they don't panic)
// ============================================================

func TestStylesRender(t *testing.T) {
	styles := []struct {
		name string
		fn   func() string
	}{
		{"activeTab", func() string { return activeTabStyle.Render("test") }},
		{"inactiveTab", func() string { return inactiveTabStyle.Render("test") }},
		{"panel", func() string { return panelStyle.Render("test") }},
		{"activePanel", func() string { return activePanelStyle.Render("test") }},
		{"bigNumber", func() string { return bigNumberStyle.Render("test") }},
		{"title", func() string { return titleStyle.Render("test") }},
		{"done", func() string { return doneStyle.Render("test") }},
		{"banner", func() string { return bannerStyle.Render("test") }},
		{"muted", func() string { return mutedStyle.Render("test") }},
		{"selectedItem", func() string { return selectedItemStyle.Render("test") }},
	}
	for _, s := range styles {
		if s.fn() == "" {
			t.Fatalf("style %q rendered empty", s.name)
		}
	}

	for _, p := range model.Priorities {
		if priorityStyle(p).Render(string(p)) == "" {
			t.Fatalf("priority %q rendered empty", p)
		}
	}
	for _, c := range model.Categories {
		if categoryDot(c) == "" {
			t.Fatalf("category %q has no dot", c)
		}
	}
}
