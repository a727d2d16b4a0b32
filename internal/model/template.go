package model

import "time"

type RecurrenceInterval string

const (
	RecurDaily   RecurrenceInterval = "Daily"
	RecurWeekly  RecurrenceInterval = "Weekly"
	RecurMonthly RecurrenceInterval = "Monthly"
	RecurYearly  RecurrenceInterval = "Yearly"
)

var RecurrenceIntervals = []RecurrenceInterval{RecurDaily, RecurWeekly, RecurMonthly, RecurYearly}

type TaskTemplate struct {
	ID                  string              `json:"id"`
	Name                string              `json:"name"`
	TemplateTitle       string              `json:"templateTitle"`
	TemplateDescription string              `json:"templateDescription"`
	DefaultPriority     Priority            `json:"defaultPriority"`
	DefaultCategory     Category            `json:"defaultCategory"`
	DefaultTags         []string            `json:"defaultTags"`
	IsRecurring         bool                `json:"isRecurring"`
	RecurringInterval   *RecurrenceInterval `json:"recurringInterval,omitempty"`
}

// NewTask builds an incomplete task from the template's defaults. The
// template itself is left untouched.
func (tp TaskTemplate) NewTask(now time.Time) Task {
	return Task{
		ID:          NewID(),
		Title:       tp.TemplateTitle,
		Description: tp.TemplateDescription,
		Priority:    tp.DefaultPriority,
		Category:    tp.DefaultCategory,
		CreatedAt:   now,
		Tags:        append([]string{}, tp.DefaultTags...),
	}
}

func (tp TaskTemplate) Clone() TaskTemplate {
	c := tp
	c.DefaultTags = append([]string{}, tp.DefaultTags...)
	if tp.RecurringInterval != nil {
		iv := *tp.RecurringInterval
		c.RecurringInterval = &iv
	}
	return c
}

func Interval(iv RecurrenceInterval) *RecurrenceInterval {
	return &iv
}
