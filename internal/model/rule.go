package model

import (
	"strconv"
	"strings"
	"time"
)

type TriggerKind string

const (
	TriggerTimeOfDay      TriggerKind = "Time of Day"
	TriggerDayOfWeek      TriggerKind = "Day of Week"
	TriggerTaskCompletion TriggerKind = "Task Completion"
	TriggerCategoryBased  TriggerKind = "Category Based"
)

var TriggerKinds = []TriggerKind{TriggerTimeOfDay, TriggerDayOfWeek, TriggerTaskCompletion, TriggerCategoryBased}

// TimeBased reports whether the trigger is evaluated on clock ticks
// rather than on task-list changes.
func (k TriggerKind) TimeBased() bool {
	return k == TriggerTimeOfDay || k == TriggerDayOfWeek
}

func (k TriggerKind) Description() string {
	switch k {
	case TriggerTimeOfDay:
		return "Trigger at specific time"
	case TriggerDayOfWeek:
		return "Trigger on specific days"
	case TriggerTaskCompletion:
		return "Trigger when task is completed"
	case TriggerCategoryBased:
		return "Trigger based on category"
	}
	return ""
}

type ActionKind string

const (
	ActionCreateTask       ActionKind = "Create Task"
	ActionSendNotification ActionKind = "Send Notification"
	ActionMarkComplete     ActionKind = "Mark Complete"
	ActionChangeCategory   ActionKind = "Change Category"
)

var ActionKinds = []ActionKind{ActionCreateTask, ActionSendNotification, ActionMarkComplete, ActionChangeCategory}

// Condition keys understood by the evaluator.
const (
	ParamTime              = "time"
	ParamDay               = "day"
	ParamCategory          = "category"
	ParamTaskTitle         = "taskTitle"
	ParamTaskDescription   = "taskDescription"
	ParamNotificationTitle = "notificationTitle"
	ParamNotificationBody  = "notificationBody"
	ParamTargetCategory    = "targetCategory"
	ParamFromCategory      = "fromCategory"
	ParamToCategory        = "toCategory"
)

type AutomationRule struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	IsActive    bool              `json:"isActive"`
	TriggerType TriggerKind       `json:"triggerType"`
	ActionType  ActionKind        `json:"actionType"`
	Conditions  map[string]string `json:"conditions"`
	CreatedAt   time.Time         `json:"createdAt"`
}

func NewRule(name string, trigger TriggerKind, action ActionKind, conditions map[string]string, now time.Time) AutomationRule {
	if conditions == nil {
		conditions = map[string]string{}
	}
	return AutomationRule{
		ID:          NewID(),
		Name:        name,
		IsActive:    true,
		TriggerType: trigger,
		ActionType:  action,
		Conditions:  conditions,
		CreatedAt:   now,
	}
}

func (r AutomationRule) Clone() AutomationRule {
	c := r
	c.Conditions = make(map[string]string, len(r.Conditions))
	for k, v := range r.Conditions {
		c.Conditions[k] = v
	}
	return c
}

// Trigger is the decoded form of a rule's trigger kind and conditions.
type Trigger interface {
	Kind() TriggerKind
}

type TimeOfDayTrigger struct {
	Hour, Minute int
}

type DayOfWeekTrigger struct {
	// Weekday uses the 1=Sunday..7=Saturday convention.
	Weekday int
}

type CompletionTrigger struct {
	Window time.Duration
}

type CategoryTrigger struct {
	Category Category
}

func (TimeOfDayTrigger) Kind() TriggerKind  { return TriggerTimeOfDay }
func (DayOfWeekTrigger) Kind() TriggerKind  { return TriggerDayOfWeek }
func (CompletionTrigger) Kind() TriggerKind { return TriggerTaskCompletion }
func (CategoryTrigger) Kind() TriggerKind   { return TriggerCategoryBased }

// CompletionWindow is how far back a completion counts as recent.
const CompletionWindow = 60 * time.Second

// DecodeTrigger returns nil when the rule's conditions cannot be parsed
// for its trigger kind.
func (r AutomationRule) DecodeTrigger() Trigger {
	switch r.TriggerType {
	case TriggerTimeOfDay:
		h, m, ok := ParseClock(r.Conditions[ParamTime])
		if !ok {
			return nil
		}
		return TimeOfDayTrigger{Hour: h, Minute: m}
	case TriggerDayOfWeek:
		day, err := strconv.Atoi(r.Conditions[ParamDay])
		if err != nil {
			return nil
		}
		return DayOfWeekTrigger{Weekday: day}
	case TriggerTaskCompletion:
		return CompletionTrigger{Window: CompletionWindow}
	case TriggerCategoryBased:
		c, ok := ParseCategory(r.Conditions[ParamCategory])
		if !ok {
			return nil
		}
		return CategoryTrigger{Category: c}
	}
	return nil
}

// Action is the decoded form of a rule's action kind and conditions.
type Action interface {
	Kind() ActionKind
}

type CreateTaskAction struct {
	Title, Description string
}

type NotifyAction struct {
	Title, Body string
}

type MarkCompleteAction struct {
	Category Category
}

type ChangeCategoryAction struct {
	From, To Category
}

func (CreateTaskAction) Kind() ActionKind     { return ActionCreateTask }
func (NotifyAction) Kind() ActionKind         { return ActionSendNotification }
func (MarkCompleteAction) Kind() ActionKind   { return ActionMarkComplete }
func (ChangeCategoryAction) Kind() ActionKind { return ActionChangeCategory }

// AppName is the default notification title.
const AppName = "Task conGenius"

// DecodeAction fills defaults for optional text parameters and returns
// nil when a required category parameter is missing or unknown.
func (r AutomationRule) DecodeAction() Action {
	switch r.ActionType {
	case ActionCreateTask:
		return CreateTaskAction{
			Title:       r.param(ParamTaskTitle, "Automated Task"),
			Description: r.param(ParamTaskDescription, "Created by automation rule: "+r.Name),
		}
	case ActionSendNotification:
		return NotifyAction{
			Title: r.param(ParamNotificationTitle, AppName),
			Body:  r.param(ParamNotificationBody, "Automation rule triggered: "+r.Name),
		}
	case ActionMarkComplete:
		c, ok := ParseCategory(r.Conditions[ParamTargetCategory])
		if !ok {
			return nil
		}
		return MarkCompleteAction{Category: c}
	case ActionChangeCategory:
		from, ok1 := ParseCategory(r.Conditions[ParamFromCategory])
		to, ok2 := ParseCategory(r.Conditions[ParamToCategory])
		if !ok1 || !ok2 {
			return nil
		}
		return ChangeCategoryAction{From: from, To: to}
	}
	return nil
}

func (r AutomationRule) param(key, fallback string) string {
	if v, ok := r.Conditions[key]; ok {
		return v
	}
	return fallback
}

// ParseClock parses "HH:MM". Out-of-range values are accepted as long as
// both parts are integers; they simply never match a wall clock.
func ParseClock(s string) (hour, minute int, ok bool) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, 0, false
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, false
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, false
	}
	return h, m, true
}

// CalendarWeekday converts a time.Weekday to 1=Sunday..7=Saturday.
func CalendarWeekday(d time.Weekday) int {
	return int(d) + 1
}
