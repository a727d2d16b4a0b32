package automation

import (
	"context"
	"io"
	"log"
	"time"

	"github.com/sadopc/taskgenius/internal/model"
)

// DefaultInterval is the period of the time-based trigger check.
const DefaultInterval = 60 * time.Second

// TaskStore is what rule actions act on.
type TaskStore interface {
	Tasks() []model.Task
	Add(model.Task) error
	Update(model.Task) error
	ToggleCompletion(id string) error
	Subscribe(fn func([]model.Task)) func()
}

// RuleSource supplies the rules to evaluate.
type RuleSource interface {
	Active() []model.AutomationRule
}

// Evaluator runs active rules against the task store. Task-list
// changes check the data-driven triggers (task completion, category);
// clock ticks check the time-based ones (time of day, day of week).
//
// Nothing is de-duplicated: a rule fires on every pass in which its
// condition holds. Changes caused by a pass's own actions never start a
// nested pass. When a tick's actions change the task list, one data pass
// follows the tick.
type Evaluator struct {
	tasks    TaskStore
	rules    RuleSource
	notifier Notifier
	now      func() time.Time
	interval time.Duration
	window   time.Duration
	logger   *log.Logger

	evaluating bool
	missed     bool
	warned     map[string]bool
	detach     func()
}

type EvaluatorOption func(*Evaluator)

func WithNow(now func() time.Time) EvaluatorOption {
	return func(e *Evaluator) { e.now = now }
}

func WithInterval(d time.Duration) EvaluatorOption {
	return func(e *Evaluator) {
		if d > 0 {
			e.interval = d
		}
	}
}

// WithCompletionWindow overrides how recent a completion must be for
// task-completion rules.
func WithCompletionWindow(d time.Duration) EvaluatorOption {
	return func(e *Evaluator) {
		if d > 0 {
			e.window = d
		}
	}
}

func WithLogger(l *log.Logger) EvaluatorOption {
	return func(e *Evaluator) {
		if l != nil {
			e.logger = l
		}
	}
}

func NewEvaluator(ts TaskStore, rs RuleSource, n Notifier, opts ...EvaluatorOption) *Evaluator {
	e := &Evaluator{
		tasks:    ts,
		rules:    rs,
		notifier: n,
		now:      time.Now,
		interval: DefaultInterval,
		logger:   log.New(io.Discard, "", 0),
		warned:   map[string]bool{},
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Attach subscribes the evaluator to task-list changes.
func (e *Evaluator) Attach() {
	if e.detach != nil {
		return
	}
	e.detach = e.tasks.Subscribe(func(snapshot []model.Task) {
		e.OnTasksChanged(snapshot)
	})
}

func (e *Evaluator) Detach() {
	if e.detach != nil {
		e.detach()
		e.detach = nil
	}
}

func (e *Evaluator) Interval() time.Duration {
	return e.interval
}

// OnTasksChanged evaluates data-driven rules against snapshot and
// returns how many fired.
func (e *Evaluator) OnTasksChanged(snapshot []model.Task) int {
	return e.pass(e.now(), snapshot, false)
}

// Tick evaluates time-based rules at now and returns how many fired.
// If their actions changed the task list while attached, data-driven
// rules are then evaluated once against the result.
func (e *Evaluator) Tick(now time.Time) int {
	e.missed = false
	fired := e.pass(now, nil, true)
	if e.missed {
		e.missed = false
		e.pass(now, e.tasks.Tasks(), false)
	}
	return fired
}

// Run calls Tick every interval until ctx is done.
func (e *Evaluator) Run(ctx context.Context) error {
	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			e.Tick(e.now())
		}
	}
}

func (e *Evaluator) pass(now time.Time, snapshot []model.Task, timeBased bool) int {
	if e.evaluating {
		e.missed = true
		return 0
	}
	e.evaluating = true
	defer func() { e.evaluating = false }()

	fired := 0
	for _, rule := range e.rules.Active() {
		if rule.TriggerType.TimeBased() != timeBased {
			continue
		}
		trigger := rule.DecodeTrigger()
		if trigger == nil {
			e.warnOnce(rule, "unparseable trigger conditions")
			continue
		}
		if ct, ok := trigger.(model.CompletionTrigger); ok && e.window > 0 {
			ct.Window = e.window
			trigger = ct
		}
		if !Holds(trigger, now, snapshot) {
			continue
		}
		fired++
		e.execute(rule, now)
	}
	return fired
}

// Holds reports whether trigger is satisfied at now for tasks.
func Holds(trigger model.Trigger, now time.Time, tasks []model.Task) bool {
	switch t := trigger.(type) {
	case model.TimeOfDayTrigger:
		return now.Hour() == t.Hour && now.Minute() == t.Minute
	case model.DayOfWeekTrigger:
		return model.CalendarWeekday(now.Weekday()) == t.Weekday
	case model.CompletionTrigger:
		for _, task := range tasks {
			if task.CompletedAt == nil {
				continue
			}
			if d := now.Sub(*task.CompletedAt); d < t.Window {
				return true
			}
		}
	case model.CategoryTrigger:
		for _, task := range tasks {
			if task.Category == t.Category && !task.IsCompleted {
				return true
			}
		}
	}
	return false
}

func (e *Evaluator) execute(rule model.AutomationRule, now time.Time) {
	action := rule.DecodeAction()
	if action == nil {
		e.warnOnce(rule, "unparseable action conditions")
		return
	}
	e.logger.Printf("rule %q fired: %s", rule.Name, action.Kind())

	switch a := action.(type) {
	case model.CreateTaskAction:
		t := model.NewTask(a.Title, a.Description, now)
		id := rule.ID
		t.AutomationRuleID = &id
		if err := e.tasks.Add(t); err != nil {
			e.logger.Printf("rule %q: create task: %v", rule.Name, err)
		}

	case model.NotifyAction:
		if e.notifier != nil {
			e.notifier.Notify(rule.ID, a.Title, a.Body)
		}

	case model.MarkCompleteAction:
		for _, t := range e.tasks.Tasks() {
			if t.Category != a.Category || t.IsCompleted {
				continue
			}
			if err := e.tasks.ToggleCompletion(t.ID); err != nil {
				e.logger.Printf("rule %q: complete %s: %v", rule.Name, t.ID, err)
			}
		}

	case model.ChangeCategoryAction:
		for _, t := range e.tasks.Tasks() {
			if t.Category != a.From {
				continue
			}
			t.Category = a.To
			if err := e.tasks.Update(t); err != nil {
				e.logger.Printf("rule %q: recategorize %s: %v", rule.Name, t.ID, err)
			}
		}
	}
}

func (e *Evaluator) warnOnce(rule model.AutomationRule, msg string) {
	key := rule.ID + "|" + msg
	if e.warned[key] {
		return
	}
	e.warned[key] = true
	e.logger.Printf("rule %q: %s, skipped", rule.Name, msg)
}
