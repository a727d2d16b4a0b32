package automation

import (
	"fmt"
	"slices"
	"strconv"
	"time"

	"github.com/sadopc/taskgenius/internal/model"
	"github.com/sadopc/taskgenius/internal/observe"
	"github.com/sadopc/taskgenius/internal/store"
	"github.com/sadopc/taskgenius/internal/tasks"
)

// RuleStore owns the automation rule list.
type RuleStore struct {
	db    tasks.Persister
	now   func() time.Time
	rules []model.AutomationRule
	hub   observe.Hub[[]model.AutomationRule]
}

// NewRuleStore loads persisted rules. When none exist (or they fail to
// decode) the default rules are installed and saved immediately.
func NewRuleStore(db tasks.Persister, now func() time.Time) (*RuleStore, error) {
	if now == nil {
		now = time.Now
	}
	s := &RuleStore{db: db, now: now}
	if !db.Load(store.KeyRules, &s.rules) {
		if err := s.save(DefaultRules(now())); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// DefaultRules are the bootstrap rules for a fresh install.
func DefaultRules(now time.Time) []model.AutomationRule {
	return []model.AutomationRule{
		model.NewRule("Morning Tasks Creator", model.TriggerTimeOfDay, model.ActionSendNotification, map[string]string{
			model.ParamTime:              "09:00",
			model.ParamNotificationTitle: "Good Morning!",
			model.ParamNotificationBody:  "Time to review your tasks for today",
		}, now),
		model.NewRule("Task Completion Congratulations", model.TriggerTaskCompletion, model.ActionSendNotification, map[string]string{
			model.ParamNotificationTitle: "Great Job!",
			model.ParamNotificationBody:  "You've completed a task. Keep up the good work!",
		}, now),
	}
}

func (s *RuleStore) Rules() []model.AutomationRule {
	return cloneRules(s.rules)
}

func (s *RuleStore) Active() []model.AutomationRule {
	var out []model.AutomationRule
	for _, r := range s.rules {
		if r.IsActive {
			out = append(out, r.Clone())
		}
	}
	return out
}

func (s *RuleStore) Inactive() []model.AutomationRule {
	var out []model.AutomationRule
	for _, r := range s.rules {
		if !r.IsActive {
			out = append(out, r.Clone())
		}
	}
	return out
}

func (s *RuleStore) Rule(id string) (model.AutomationRule, bool) {
	if i := s.index(id); i >= 0 {
		return s.rules[i].Clone(), true
	}
	return model.AutomationRule{}, false
}

func (s *RuleStore) Subscribe(fn func([]model.AutomationRule)) func() {
	return s.hub.Subscribe(fn)
}

func (s *RuleStore) Add(r model.AutomationRule) error {
	if r.ID == "" {
		r.ID = model.NewID()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = s.now()
	}
	if r.Conditions == nil {
		r.Conditions = map[string]string{}
	}
	return s.save(append(slices.Clone(s.rules), r.Clone()))
}

// Update replaces the rule with the same id. Unknown ids are ignored.
func (s *RuleStore) Update(r model.AutomationRule) error {
	i := s.index(r.ID)
	if i < 0 {
		return nil
	}
	next := slices.Clone(s.rules)
	next[i] = r.Clone()
	return s.save(next)
}

func (s *RuleStore) Delete(id string) error {
	i := s.index(id)
	if i < 0 {
		return nil
	}
	return s.save(slices.Delete(slices.Clone(s.rules), i, i+1))
}

func (s *RuleStore) ToggleActive(id string) error {
	i := s.index(id)
	if i < 0 {
		return nil
	}
	next := slices.Clone(s.rules)
	next[i].IsActive = !next[i].IsActive
	return s.save(next)
}

// DailyReminder adds a time-of-day notification rule.
func (s *RuleStore) DailyReminder(at, title, message string) (model.AutomationRule, error) {
	r := model.NewRule("Daily Reminder: "+title, model.TriggerTimeOfDay, model.ActionSendNotification, map[string]string{
		model.ParamTime:              at,
		model.ParamNotificationTitle: title,
		model.ParamNotificationBody:  message,
	}, s.now())
	return r, s.Add(r)
}

// WeeklyTask adds a day-of-week rule that creates a task. day follows
// the 1=Sunday..7=Saturday convention.
func (s *RuleStore) WeeklyTask(day int, title, description string, c model.Category) (model.AutomationRule, error) {
	r := model.NewRule("Weekly Task: "+title, model.TriggerDayOfWeek, model.ActionCreateTask, map[string]string{
		model.ParamDay:             strconv.Itoa(day),
		model.ParamTaskTitle:       title,
		model.ParamTaskDescription: description,
		model.ParamCategory:        string(c),
	}, s.now())
	return r, s.Add(r)
}

// CompletionReward adds a task-completion notification rule.
func (s *RuleStore) CompletionReward(title, message string) (model.AutomationRule, error) {
	r := model.NewRule("Completion Reward", model.TriggerTaskCompletion, model.ActionSendNotification, map[string]string{
		model.ParamNotificationTitle: title,
		model.ParamNotificationBody:  message,
	}, s.now())
	return r, s.Add(r)
}

func (s *RuleStore) index(id string) int {
	for i := range s.rules {
		if s.rules[i].ID == id {
			return i
		}
	}
	return -1
}

// save persists next and only then makes it current.
func (s *RuleStore) save(next []model.AutomationRule) error {
	if err := s.db.Save(store.KeyRules, next); err != nil {
		return fmt.Errorf("save rules: %w", err)
	}
	s.rules = next
	s.hub.Publish(s.Rules)
	return nil
}

func cloneRules(in []model.AutomationRule) []model.AutomationRule {
	if in == nil {
		return nil
	}
	out := make([]model.AutomationRule, len(in))
	for i, r := range in {
		out[i] = r.Clone()
	}
	return out
}
