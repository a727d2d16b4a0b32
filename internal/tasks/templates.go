package tasks

import (
	"fmt"
	"slices"

	"github.com/sadopc/taskgenius/internal/model"
	"github.com/sadopc/taskgenius/internal/store"
)

// DefaultTemplates are installed the first time no template list exists.
func DefaultTemplates() []model.TaskTemplate {
	return []model.TaskTemplate{
		{
			ID:                  model.NewID(),
			Name:                "Morning Routine",
			TemplateTitle:       "Complete Morning Routine",
			TemplateDescription: "Exercise, breakfast, and planning",
			DefaultPriority:     model.PriorityHigh,
			DefaultCategory:     model.CategoryHealth,
			DefaultTags:         []string{"routine", "morning"},
			IsRecurring:         true,
			RecurringInterval:   model.Interval(model.RecurDaily),
		},
		{
			ID:                  model.NewID(),
			Name:                "Weekly Review",
			TemplateTitle:       "Weekly Review & Planning",
			TemplateDescription: "Review completed tasks and plan for next week",
			DefaultPriority:     model.PriorityMedium,
			DefaultCategory:     model.CategoryPersonal,
			DefaultTags:         []string{"planning", "review"},
			IsRecurring:         true,
			RecurringInterval:   model.Interval(model.RecurWeekly),
		},
		{
			ID:                  model.NewID(),
			Name:                "Shopping List",
			TemplateTitle:       "Grocery Shopping",
			TemplateDescription: "Buy weekly groceries",
			DefaultPriority:     model.PriorityMedium,
			DefaultCategory:     model.CategoryShopping,
			DefaultTags:         []string{"groceries", "shopping"},
			IsRecurring:         true,
			RecurringInterval:   model.Interval(model.RecurWeekly),
		},
	}
}

func (s *Store) Templates() []model.TaskTemplate {
	out := make([]model.TaskTemplate, len(s.templates))
	for i, tp := range s.templates {
		out[i] = tp.Clone()
	}
	return out
}

func (s *Store) AddTemplate(tp model.TaskTemplate) error {
	if tp.ID == "" {
		tp.ID = model.NewID()
	}
	if tp.DefaultTags == nil {
		tp.DefaultTags = []string{}
	}
	return s.saveTemplates(append(slices.Clone(s.templates), tp.Clone()))
}

func (s *Store) DeleteTemplate(id string) error {
	for i := range s.templates {
		if s.templates[i].ID == id {
			return s.saveTemplates(slices.Delete(slices.Clone(s.templates), i, i+1))
		}
	}
	return nil
}

// Instantiate adds a new task built from tp and returns it.
func (s *Store) Instantiate(tp model.TaskTemplate) (model.Task, error) {
	t := tp.NewTask(s.now())
	if err := s.Add(t); err != nil {
		return model.Task{}, err
	}
	return t, nil
}

func (s *Store) saveTemplates(next []model.TaskTemplate) error {
	if err := s.db.Save(store.KeyTemplates, next); err != nil {
		return fmt.Errorf("save templates: %w", err)
	}
	s.templates = next
	s.templateHub.Publish(s.Templates)
	return nil
}
