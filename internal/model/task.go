package model

import (
	"time"

	"github.com/google/uuid"
)

// Priority is ordered: Low < Medium < High < Urgent.
type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
	PriorityUrgent Priority = "Urgent"
)

var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent}

// Rank returns the ordinal of p, or -1 for an unknown value.
func (p Priority) Rank() int {
	for i, v := range Priorities {
		if v == p {
			return i
		}
	}
	return -1
}

func ParsePriority(s string) (Priority, bool) {
	for _, p := range Priorities {
		if string(p) == s {
			return p, true
		}
	}
	return "", false
}

type Category string

const (
	CategoryPersonal  Category = "Personal"
	CategoryWork      Category = "Work"
	CategoryHealth    Category = "Health"
	CategoryShopping  Category = "Shopping"
	CategoryFinance   Category = "Finance"
	CategoryEducation Category = "Education"
	CategoryOther     Category = "Other"
)

var Categories = []Category{
	CategoryPersonal,
	CategoryWork,
	CategoryHealth,
	CategoryShopping,
	CategoryFinance,
	CategoryEducation,
	CategoryOther,
}

// ParseCategory matches the exact stored name.
func ParseCategory(s string) (Category, bool) {
	for _, c := range Categories {
		if string(c) == s {
			return c, true
		}
	}
	return "", false
}

type Task struct {
	ID               string     `json:"id"`
	Title            string     `json:"title"`
	Description      string     `json:"description"`
	IsCompleted      bool       `json:"isCompleted"`
	Priority         Priority   `json:"priority"`
	Category         Category   `json:"category"`
	DueDate          *time.Time `json:"dueDate,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
	CompletedAt      *time.Time `json:"completedAt,omitempty"`
	Tags             []string   `json:"tags"`
	AutomationRuleID *string    `json:"automationRuleId,omitempty"`
}

// NewTask returns an incomplete task with a fresh id and the default
// Medium priority and Personal category.
func NewTask(title, description string, now time.Time) Task {
	return Task{
		ID:          NewID(),
		Title:       title,
		Description: description,
		Priority:    PriorityMedium,
		Category:    CategoryPersonal,
		CreatedAt:   now,
		Tags:        []string{},
	}
}

func NewID() string {
	return uuid.New().String()
}

func (t Task) Overdue(now time.Time) bool {
	if t.DueDate == nil || t.IsCompleted {
		return false
	}
	return t.DueDate.Before(now)
}

func (t Task) DueToday(now time.Time) bool {
	if t.DueDate == nil {
		return false
	}
	return SameDay(*t.DueDate, now)
}

// Upcoming reports a due date after now that does not fall today.
func (t Task) Upcoming(now time.Time) bool {
	if t.DueDate == nil {
		return false
	}
	return t.DueDate.After(now) && !SameDay(*t.DueDate, now)
}

// Clone returns a copy that shares no slices or pointers with t.
func (t Task) Clone() Task {
	c := t
	c.Tags = append([]string{}, t.Tags...)
	if t.DueDate != nil {
		d := *t.DueDate
		c.DueDate = &d
	}
	if t.CompletedAt != nil {
		d := *t.CompletedAt
		c.CompletedAt = &d
	}
	if t.AutomationRuleID != nil {
		id := *t.AutomationRuleID
		c.AutomationRuleID = &id
	}
	return c
}

// StartOfDay truncates t to local midnight in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func SameDay(a, b time.Time) bool {
	b = b.In(a.Location())
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
