package tasks

import (
	"fmt"
	"slices"
	"time"

	"github.com/sadopc/taskgenius/internal/model"
	"github.com/sadopc/taskgenius/internal/observe"
	"github.com/sadopc/taskgenius/internal/store"
)

// Persister is the slice of the key-value store the task store needs.
type Persister interface {
	Load(key string, v any) bool
	Save(key string, v any) error
}

// Store owns the task and template lists. It must only be used from a
// single goroutine.
type Store struct {
	db  Persister
	now func() time.Time

	tasks     []model.Task
	templates []model.TaskTemplate

	taskHub     observe.Hub[[]model.Task]
	templateHub observe.Hub[[]model.TaskTemplate]
}

type Option func(*Store)

// WithClock overrides time.Now for completion and creation timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New loads tasks and templates from db. Undecodable documents are
// treated as absent; a missing template list is seeded with defaults.
func New(db Persister, opts ...Option) (*Store, error) {
	s := &Store{db: db, now: time.Now}
	for _, o := range opts {
		o(s)
	}

	if !db.Load(store.KeyTasks, &s.tasks) {
		s.tasks = nil
	}
	if !db.Load(store.KeyTemplates, &s.templates) {
		if err := s.saveTemplates(DefaultTemplates()); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Tasks returns a copy of the current task list.
func (s *Store) Tasks() []model.Task {
	return cloneTasks(s.tasks)
}

func (s *Store) Task(id string) (model.Task, bool) {
	if i := s.index(id); i >= 0 {
		return s.tasks[i].Clone(), true
	}
	return model.Task{}, false
}

// Subscribe registers fn to receive a snapshot after each task mutation.
func (s *Store) Subscribe(fn func([]model.Task)) func() {
	return s.taskHub.Subscribe(fn)
}

func (s *Store) SubscribeTemplates(fn func([]model.TaskTemplate)) func() {
	return s.templateHub.Subscribe(fn)
}

func (s *Store) Add(t model.Task) error {
	if t.ID == "" {
		t.ID = model.NewID()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = s.now()
	}
	if t.Tags == nil {
		t.Tags = []string{}
	}
	return s.commit(append(slices.Clone(s.tasks), t.Clone()))
}

// Update replaces the task with the same id. Unknown ids are ignored.
func (s *Store) Update(t model.Task) error {
	i := s.index(t.ID)
	if i < 0 {
		return nil
	}
	next := slices.Clone(s.tasks)
	next[i] = t.Clone()
	return s.commit(next)
}

func (s *Store) Delete(id string) error {
	i := s.index(id)
	if i < 0 {
		return nil
	}
	return s.commit(slices.Delete(slices.Clone(s.tasks), i, i+1))
}

// ToggleCompletion flips the completion flag and keeps CompletedAt in
// step with it. Unknown ids are ignored.
func (s *Store) ToggleCompletion(id string) error {
	i := s.index(id)
	if i < 0 {
		return nil
	}
	next := slices.Clone(s.tasks)
	t := &next[i]
	t.IsCompleted = !t.IsCompleted
	if t.IsCompleted {
		now := s.now()
		t.CompletedAt = &now
	} else {
		t.CompletedAt = nil
	}
	return s.commit(next)
}

// DeleteCompleted removes every completed task.
func (s *Store) DeleteCompleted() error {
	kept := make([]model.Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		if !t.IsCompleted {
			kept = append(kept, t)
		}
	}
	return s.commit(kept)
}

func (s *Store) index(id string) int {
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

// commit persists next and only then makes it current, so a failed
// write leaves the store as it was.
func (s *Store) commit(next []model.Task) error {
	if err := s.db.Save(store.KeyTasks, next); err != nil {
		return fmt.Errorf("save tasks: %w", err)
	}
	s.tasks = next
	s.taskHub.Publish(s.Tasks)
	return nil
}

func cloneTasks(in []model.Task) []model.Task {
	if in == nil {
		return nil
	}
	out := make([]model.Task, len(in))
	for i, t := range in {
		out[i] = t.Clone()
	}
	return out
}
