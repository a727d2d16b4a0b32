package profile

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sadopc/taskgenius/internal/model"
	"github.com/sadopc/taskgenius/internal/stats"
	"github.com/sadopc/taskgenius/internal/store"
)

var ErrEmptyUsername = errors.New("username must not be empty")

// KV is the slice of the key-value store the profile needs.
type KV interface {
	Load(key string, v any) bool
	Save(key string, v any) error
	Bool(key string) bool
	SetBool(key string, v bool) error
	Clear() error
}

// PermissionRequester asks the platform for notification permission.
type PermissionRequester interface {
	RequestPermission() bool
}

// Store holds the single user profile.
type Store struct {
	db      KV
	now     func() time.Time
	profile model.UserProfile
}

// New loads the persisted profile, falling back to a fresh one.
func New(db KV, now func() time.Time) *Store {
	if now == nil {
		now = time.Now
	}
	s := &Store{db: db, now: now}
	s.load()
	return s
}

func (s *Store) load() {
	var p model.UserProfile
	if !s.db.Load(store.KeyProfile, &p) {
		p = model.NewProfile(s.now())
	}
	s.profile = p
}

func (s *Store) Profile() model.UserProfile {
	p := s.profile
	if p.Email != nil {
		e := *p.Email
		p.Email = &e
	}
	p.Stats.CompletionByCategory = copyCounts(p.Stats.CompletionByCategory)
	p.Stats.CompletionByPriority = copyCounts(p.Stats.CompletionByPriority)
	return p
}

func (s *Store) Save(p model.UserProfile) error {
	if err := s.db.Save(store.KeyProfile, p); err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	s.profile = p
	return nil
}

func (s *Store) UpdateUsername(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyUsername
	}
	p := s.Profile()
	p.Username = name
	return s.Save(p)
}

// UpdateEmail stores email; an empty string clears it.
func (s *Store) UpdateEmail(email string) error {
	p := s.Profile()
	email = strings.TrimSpace(email)
	if email == "" {
		p.Email = nil
	} else {
		p.Email = &email
	}
	return s.Save(p)
}

func (s *Store) SetPreferences(prefs model.Preferences) error {
	p := s.Profile()
	p.Preferences = prefs
	return s.Save(p)
}

// UpdateStatistics recomputes and caches stats for tasks.
func (s *Store) UpdateStatistics(tasks []model.Task) (model.ProductivityStats, error) {
	st := stats.Compute(tasks, s.now())
	p := s.Profile()
	p.Stats = st
	return st, s.Save(p)
}

func (s *Store) OnboardingComplete() bool {
	return s.db.Bool(store.KeyOnboarding)
}

// Onboarding is what the first-run flow collects.
type Onboarding struct {
	Username             string
	DefaultCategory      model.Category
	DefaultPriority      model.Priority
	NotificationsEnabled bool
}

// CompleteOnboarding replaces the profile with a fresh one built from o
// and marks onboarding done. Notification permission is requested when
// o enables notifications and pr is non-nil.
func (s *Store) CompleteOnboarding(o Onboarding, pr PermissionRequester) error {
	name := strings.TrimSpace(o.Username)
	if name == "" {
		return ErrEmptyUsername
	}
	p := model.NewProfile(s.now())
	p.Username = name
	if o.DefaultCategory != "" {
		p.Preferences.DefaultTaskCategory = o.DefaultCategory
	}
	if o.DefaultPriority != "" {
		p.Preferences.DefaultTaskPriority = o.DefaultPriority
	}
	p.Preferences.NotificationsEnabled = o.NotificationsEnabled
	if err := s.Save(p); err != nil {
		return err
	}
	if err := s.db.SetBool(store.KeyOnboarding, true); err != nil {
		return fmt.Errorf("mark onboarding: %w", err)
	}
	if o.NotificationsEnabled && pr != nil {
		pr.RequestPermission()
	}
	return nil
}

// Reset deletes every stored document and returns to a fresh profile.
// Task and rule stores opened before Reset keep their in-memory state
// and must be reopened.
func (s *Store) Reset() error {
	if err := s.db.Clear(); err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	s.profile = model.NewProfile(s.now())
	return nil
}

func copyCounts(in map[string]int) map[string]int {
	if in == nil {
		return nil
	}
	out := make(map[string]int, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
